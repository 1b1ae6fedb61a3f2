package booking

import (
	"context"
	"fmt"
	"time"
)

// ListFilter is a validated list request. Zero-valued filters are not applied.
type ListFilter struct {
	Page     int
	Limit    int
	Date     *time.Time
	Customer string
}

// Repository defines the persistence contract for bookings.
type Repository interface {
	// FindByID retrieves a booking by its identifier. Inside WithinTransaction
	// the row stays locked until the transaction ends.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// List returns one page of bookings matching filter, newest first, and
	// the total number of matches.
	List(ctx context.Context, filter ListFilter) ([]*Booking, int64, error)

	// SearchByName returns every booking whose customer name contains term,
	// ignoring case.
	SearchByName(ctx context.Context, term string) ([]*Booking, error)

	// Save inserts a new booking and assigns its ID.
	Save(ctx context.Context, booking *Booking) error

	// Update persists a replaced booking with optimistic locking on the
	// previous version.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking permanently.
	Delete(ctx context.Context, id int64) error

	// WithinTransaction runs fn against a repository bound to one
	// transaction, committing if fn returns nil and rolling back otherwise.
	WithinTransaction(ctx context.Context, fn func(repo Repository) error) error
}

// Constraint names a uniqueness rule enforced by storage.
type Constraint string

const (
	ConstraintSlot  Constraint = "uq_bookings_slot"
	ConstraintEmail Constraint = "uq_bookings_customer_email"
)

// UniqueViolationError is returned by a Repository when a write breaks a
// uniqueness rule.
type UniqueViolationError struct {
	Constraint Constraint
	Err        error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint %s violated", e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

// StaleVersionError is returned by Update when the stored version no longer
// matches the one the booking was loaded with.
type StaleVersionError struct {
	ID              int64
	ExpectedVersion int64
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("booking %d was modified concurrently (expected version %d)", e.ID, e.ExpectedVersion)
}
