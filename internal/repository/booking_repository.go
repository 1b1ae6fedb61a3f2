package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/internal/query"
	"github.com/slotbook/service-booking/pkg/domain"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// BookingModel is the GORM model for the bookings table. The db tags serve
// the sqlx read path.
type BookingModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" db:"id"`
	CustomerName  string    `gorm:"type:varchar(255);not null" db:"customer_name"`
	CustomerEmail string    `gorm:"type:varchar(320);not null;uniqueIndex:uq_bookings_customer_email" db:"customer_email"`
	CustomerPhone int64     `gorm:"not null" db:"customer_phone"`
	Date          time.Time `gorm:"type:date;not null;uniqueIndex:uq_bookings_slot,priority:1" db:"date"`
	Time          string    `gorm:"type:time;not null;uniqueIndex:uq_bookings_slot,priority:2" db:"time"`
	Description   *string   `gorm:"type:text" db:"description"`
	Version       int64     `gorm:"not null;default:1" db:"version"`
	CreatedAt     time.Time `gorm:"not null" db:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" db:"updated_at"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return query.TableBookings
}

// GormBookingRepository is the PostgreSQL implementation of
// bookingDomain.Repository. Writes and single-row lookups go through GORM;
// list and search run the statements built by package query through sqlx.
type GormBookingRepository struct {
	db     *gorm.DB
	reader *sqlx.DB
	inTx   bool
}

// NewGormBookingRepository creates a new GormBookingRepository. reader must
// wrap the same pool as db.
func NewGormBookingRepository(db *gorm.DB, reader *sqlx.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db, reader: reader}
}

// FindByID retrieves a booking by its identifier, locking the row when
// called inside WithinTransaction.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	tx := r.db.WithContext(ctx)
	if r.inTx {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var model BookingModel
	if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// List returns one page of bookings matching filter and the total match count.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	listing, err := query.BuildList(filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.reader.GetContext(ctx, &total, listing.Count.SQL, listing.Count.Args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := r.reader.SelectContext(ctx, &models, listing.Select.SQL, listing.Select.Args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// SearchByName returns every booking whose customer name contains term.
func (r *GormBookingRepository) SearchByName(ctx context.Context, term string) ([]*bookingDomain.Booking, error) {
	stmt, err := query.BuildNameSearch(term)
	if err != nil {
		return nil, err
	}

	var models []BookingModel
	if err := r.reader.SelectContext(ctx, &models, stmt.SQL, stmt.Args...); err != nil {
		return nil, fmt.Errorf("failed to search bookings by name: %w", err)
	}
	return toDomainBookings(models)
}

// Save inserts a new booking and assigns the generated ID.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateWriteError("failed to save booking", err)
	}
	bk.AssignID(model.ID)
	return nil
}

// Update persists a replaced booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Replace bumped the version, so the stored row must still hold the previous one.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"customer_name":  model.CustomerName,
			"customer_email": model.CustomerEmail,
			"customer_phone": model.CustomerPhone,
			"date":           model.Date,
			"time":           model.Time,
			"description":    model.Description,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return translateWriteError("failed to update booking", result.Error)
	}

	if result.RowsAffected == 0 {
		return &bookingDomain.StaleVersionError{ID: model.ID, ExpectedVersion: expectedVersion}
	}

	return nil
}

// Delete removes a booking permanently.
func (r *GormBookingRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return nil
}

// WithinTransaction runs fn against a repository bound to a single
// transaction. Nested calls reuse the outer transaction.
func (r *GormBookingRepository) WithinTransaction(ctx context.Context, fn func(repo bookingDomain.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBookingRepository{db: tx, reader: r.reader, inTx: true})
	})
}

// translateWriteError maps unique violations to UniqueViolationError and
// wraps everything else.
func translateWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return &bookingDomain.UniqueViolationError{
			Constraint: constraintFor(pgErr.ConstraintName),
			Err:        err,
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func constraintFor(name string) bookingDomain.Constraint {
	switch {
	case name == string(bookingDomain.ConstraintEmail), strings.Contains(name, "email"):
		return bookingDomain.ConstraintEmail
	default:
		return bookingDomain.ConstraintSlot
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            bk.ID(),
		CustomerName:  bk.CustomerName(),
		CustomerEmail: bk.CustomerEmail(),
		CustomerPhone: bk.CustomerPhone(),
		Date:          bk.Date(),
		Time:          bk.Time().String(),
		Description:   bk.Description(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	tod, err := bookingDomain.ParseTimeOfDay(m.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to decode booking %d time: %w", m.ID, err)
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.CustomerName,
		m.CustomerEmail,
		m.CustomerPhone,
		m.Date,
		tod,
		m.Description,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
