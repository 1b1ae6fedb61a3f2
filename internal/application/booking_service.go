package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	bookingEvents "github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/internal/query"
	"github.com/slotbook/service-booking/pkg/domain"
	"github.com/slotbook/service-booking/pkg/kafka"
)

// BookingRequest is the body of a create or update request. Phone numbers
// are accepted as JSON numbers or digit strings.
type BookingRequest struct {
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	CustomerPhone PhoneNumber `json:"customer_phone"`
	Date          string      `json:"date"`
	Time          string      `json:"time"`
	Description   *string     `json:"description"`
	// Version, when set on update, must equal the stored version.
	Version *int64 `json:"version,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone int64     `json:"customer_phone"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Description   *string   `json:"description"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BookingPage is one page of a filtered booking list.
type BookingPage struct {
	TotalRecords int64        `json:"total_records"`
	Page         int          `json:"page"`
	Limit        int          `json:"limit"`
	TotalPages   int          `json:"total_pages"`
	Bookings     []BookingDTO `json:"bookings"`
}

const (
	SearchTypeID   = "id"
	SearchTypeName = "name"
)

// SearchResult is the outcome of SearchByIDOrName. Result is set for id
// searches; Results and TotalResults for name searches.
type SearchResult struct {
	SearchType   string       `json:"search_type"`
	Result       *BookingDTO  `json:"result,omitempty"`
	TotalResults int          `json:"total_results,omitempty"`
	Results      []BookingDTO `json:"results,omitempty"`
}

// EventPublisher publishes CloudEvents; *kafka.Producer implements it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo      bookingDomain.Repository
	validator *bookingDomain.Validator
	publisher EventPublisher
	topic     string
	logger    *zap.Logger

	now                  func() time.Time
	strictCustomerFilter bool
}

// Option configures a BookingService.
type Option func(*BookingService)

// WithClock sets the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

// WithStrictCustomerFilter controls whether a customer filter that matches
// nothing is reported as NOT_FOUND (true, the default) or as an empty page.
func WithStrictCustomerFilter(strict bool) Option {
	return func(s *BookingService) { s.strictCustomerFilter = strict }
}

// WithEventTopic overrides the topic lifecycle events are published to.
func WithEventTopic(topic string) Option {
	return func(s *BookingService) { s.topic = topic }
}

// NewBookingService creates a new BookingService. publisher may be nil, in
// which case no events are published.
func NewBookingService(
	repo bookingDomain.Repository,
	validator *bookingDomain.Validator,
	publisher EventPublisher,
	logger *zap.Logger,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		repo:                 repo,
		validator:            validator,
		publisher:            publisher,
		topic:                bookingEvents.TopicBookingEvents,
		logger:               logger,
		now:                  time.Now,
		strictCustomerFilter: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking validates req and stores a new booking at version 1.
func (s *BookingService) CreateBooking(ctx context.Context, req BookingRequest) (*BookingDTO, error) {
	details, err := s.validator.Validate(req.toInput())
	if err != nil {
		return nil, err
	}

	bk := bookingDomain.NewBooking(details, s.now())
	err = s.repo.WithinTransaction(ctx, func(repo bookingDomain.Repository) error {
		return repo.Save(ctx, bk)
	})
	if err != nil {
		return nil, s.translateError(err, "failed to create booking")
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.String("slot", bk.Slot().String()),
	)

	evt := bookingEvents.BookingCreatedEvent{
		BookingID:     bk.ID(),
		CustomerName:  bk.CustomerName(),
		CustomerEmail: bk.CustomerEmail(),
		Date:          bk.Date().Format(bookingDomain.DateLayout),
		Time:          bk.Time().String(),
		Version:       bk.Version(),
		OccurredAt:    s.now().UTC(),
	}
	s.publishEvent(ctx, bookingEvents.BookingCreated, bk.ID(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateError(err, "failed to get booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings returns one page of bookings, optionally filtered by exact
// date and partial customer name.
func (s *BookingService) ListBookings(ctx context.Context, page, limit int, dateFilter, customer string) (*BookingPage, error) {
	filter, err := query.ParseListParams(page, limit, dateFilter, customer)
	if err != nil {
		return nil, err
	}

	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.translateError(err, "failed to list bookings")
	}

	if filter.Customer != "" && total == 0 && s.strictCustomerFilter {
		return nil, domain.NewNotFoundError("Booking", "customer "+strconv.Quote(filter.Customer))
	}

	return &BookingPage{
		TotalRecords: total,
		Page:         filter.Page,
		Limit:        filter.Limit,
		TotalPages:   domain.TotalPages(total, filter.Limit),
		Bookings:     toBookingDTOs(bookings),
	}, nil
}

// SearchByIDOrName looks a booking up by ID when term is an integer, and by
// case-insensitive partial customer name otherwise. An integer term is never
// treated as a name.
func (s *BookingService) SearchByIDOrName(ctx context.Context, term string) (*SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewValidationError("search value is required")
	}

	id, err := strconv.ParseInt(term, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		// Integer syntax that no stored id can reach.
		return nil, domain.NewNotFoundError("Booking", term)
	}
	if err == nil {
		bk, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, s.translateError(err, "failed to search booking by id")
		}
		result := toBookingDTO(bk)
		return &SearchResult{SearchType: SearchTypeID, Result: &result}, nil
	}

	bookings, err := s.repo.SearchByName(ctx, term)
	if err != nil {
		return nil, s.translateError(err, "failed to search bookings by name")
	}
	if len(bookings) == 0 {
		return nil, domain.NewNotFoundError("Booking", "name "+strconv.Quote(term))
	}

	return &SearchResult{
		SearchType:   SearchTypeName,
		TotalResults: len(bookings),
		Results:      toBookingDTOs(bookings),
	}, nil
}

// UpdateBooking replaces every mutable field of a booking and bumps its
// version. Lookup, version check and write share one transaction.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, req BookingRequest) (*BookingDTO, error) {
	details, err := s.validator.Validate(req.toInput())
	if err != nil {
		return nil, err
	}

	var (
		bk       *bookingDomain.Booking
		previous bookingDomain.Slot
	)
	err = s.repo.WithinTransaction(ctx, func(repo bookingDomain.Repository) error {
		current, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != current.Version() {
			return domain.NewConflictError(
				fmt.Sprintf("version mismatch: booking is at version %d", current.Version()),
				"version",
			)
		}

		previous = current.Slot()
		current.Replace(details, s.now())
		if err := repo.Update(ctx, current); err != nil {
			return err
		}
		bk = current
		return nil
	})
	if err != nil {
		return nil, s.translateError(err, "failed to update booking")
	}

	s.logger.Info("booking updated",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("version", bk.Version()),
		zap.String("slot", bk.Slot().String()),
	)

	evt := bookingEvents.BookingUpdatedEvent{
		BookingID:    bk.ID(),
		PreviousDate: previous.Date.Format(bookingDomain.DateLayout),
		PreviousTime: previous.Time.String(),
		Date:         bk.Date().Format(bookingDomain.DateLayout),
		Time:         bk.Time().String(),
		Version:      bk.Version(),
		OccurredAt:   s.now().UTC(),
	}
	s.publishEvent(ctx, bookingEvents.BookingUpdated, bk.ID(), evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// DeleteBooking permanently removes a booking.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	var slot bookingDomain.Slot
	err := s.repo.WithinTransaction(ctx, func(repo bookingDomain.Repository) error {
		bk, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		slot = bk.Slot()
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return s.translateError(err, "failed to delete booking")
	}

	s.logger.Info("booking cancelled",
		zap.Int64("booking_id", id),
		zap.String("slot", slot.String()),
	)

	evt := bookingEvents.BookingCancelledEvent{
		BookingID:  id,
		Date:       slot.Date.Format(bookingDomain.DateLayout),
		Time:       slot.Time.String(),
		OccurredAt: s.now().UTC(),
	}
	s.publishEvent(ctx, bookingEvents.BookingCancelled, id, evt)
	return nil
}

// --- Helpers ---

// translateError maps storage errors to domain errors. DomainErrors pass
// through unchanged; anything unrecognised becomes an internal error.
func (s *BookingService) translateError(err error, msg string) error {
	var (
		uv    *bookingDomain.UniqueViolationError
		stale *bookingDomain.StaleVersionError
	)
	switch {
	case errors.As(err, &uv):
		if uv.Constraint == bookingDomain.ConstraintEmail {
			return domain.NewConflictError("duplicate email", "customer_email")
		}
		return domain.NewConflictError("slot already booked", "date", "time")
	case errors.As(err, &stale):
		return domain.NewConflictError("booking was modified by another request", "version")
	}

	if _, ok := domain.AsDomainError(err); ok {
		return err
	}

	s.logger.Error(msg, zap.Error(err))
	return domain.NewInternalError(msg, err)
}

func (s *BookingService) publishEvent(ctx context.Context, eventType string, bookingID int64, data interface{}) {
	if s.publisher == nil {
		return
	}

	subject := strconv.FormatInt(bookingID, 10)
	ce, err := kafka.NewCloudEvent(bookingEvents.Source, eventType, subject, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, s.topic, ce); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", s.topic),
			zap.String("type", eventType),
			zap.Int64("booking_id", bookingID),
			zap.Error(err),
		)
	}
}

func (r BookingRequest) toInput() bookingDomain.Input {
	return bookingDomain.Input{
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: string(r.CustomerPhone),
		Date:          r.Date,
		Time:          r.Time,
		Description:   r.Description,
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		CustomerName:  bk.CustomerName(),
		CustomerEmail: bk.CustomerEmail(),
		CustomerPhone: bk.CustomerPhone(),
		Date:          bk.Date().Format(bookingDomain.DateLayout),
		Time:          bk.Time().String(),
		Description:   bk.Description(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}
