// Package testutil provides in-memory fakes for unit tests.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	bookingDomain "github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/pkg/domain"
)

type store struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]*bookingDomain.Booking
}

// BookingRepository is an in-memory bookingDomain.Repository enforcing the
// same uniqueness rules as the bookings table. Transactions are serialized
// and rolled back on error.
type BookingRepository struct {
	s    *store
	inTx bool

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewBookingRepository creates an empty BookingRepository.
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{s: &store{bookings: make(map[int64]*bookingDomain.Booking)}}
}

func (r *BookingRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

// Len returns the number of stored bookings.
func (r *BookingRepository) Len() int {
	defer r.lock()()
	return len(r.s.bookings)
}

func (r *BookingRepository) FindByID(_ context.Context, id int64) (*bookingDomain.Booking, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	defer r.lock()()

	bk, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	return clone(bk), nil
}

func (r *BookingRepository) List(_ context.Context, filter bookingDomain.ListFilter) ([]*bookingDomain.Booking, int64, error) {
	if r.FailWith != nil {
		return nil, 0, r.FailWith
	}
	defer r.lock()()

	var matched []*bookingDomain.Booking
	for _, bk := range r.sorted() {
		if filter.Date != nil && !bk.Date().Equal(*filter.Date) {
			continue
		}
		if filter.Customer != "" && !strings.Contains(bk.CustomerName(), filter.Customer) {
			continue
		}
		matched = append(matched, bk)
	}

	total := int64(len(matched))
	start := domain.Offset(filter.Page, filter.Limit)
	if start >= len(matched) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *BookingRepository) SearchByName(_ context.Context, term string) ([]*bookingDomain.Booking, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	defer r.lock()()

	needle := strings.ToLower(term)
	var matched []*bookingDomain.Booking
	for _, bk := range r.sorted() {
		if strings.Contains(strings.ToLower(bk.CustomerName()), needle) {
			matched = append(matched, bk)
		}
	}
	return matched, nil
}

func (r *BookingRepository) Save(_ context.Context, bk *bookingDomain.Booking) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	defer r.lock()()

	if err := r.checkUnique(bk); err != nil {
		return err
	}
	r.s.nextID++
	bk.AssignID(r.s.nextID)
	r.s.bookings[bk.ID()] = clone(bk)
	return nil
}

func (r *BookingRepository) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	defer r.lock()()

	stored, ok := r.s.bookings[bk.ID()]
	if !ok || stored.Version() != bk.Version()-1 {
		return &bookingDomain.StaleVersionError{ID: bk.ID(), ExpectedVersion: bk.Version() - 1}
	}
	if err := r.checkUnique(bk); err != nil {
		return err
	}
	r.s.bookings[bk.ID()] = clone(bk)
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id int64) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	defer r.lock()()

	if _, ok := r.s.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", strconv.FormatInt(id, 10))
	}
	delete(r.s.bookings, id)
	return nil
}

func (r *BookingRepository) WithinTransaction(ctx context.Context, fn func(repo bookingDomain.Repository) error) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	if r.inTx {
		return fn(r)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := make(map[int64]*bookingDomain.Booking, len(r.s.bookings))
	for id, bk := range r.s.bookings {
		snapshot[id] = bk
	}
	nextID := r.s.nextID

	if err := fn(&BookingRepository{s: r.s, inTx: true}); err != nil {
		r.s.bookings = snapshot
		r.s.nextID = nextID
		return err
	}
	return nil
}

// checkUnique must be called with the store locked.
func (r *BookingRepository) checkUnique(bk *bookingDomain.Booking) error {
	for id, other := range r.s.bookings {
		if id == bk.ID() {
			continue
		}
		if other.Date().Equal(bk.Date()) && other.Time() == bk.Time() {
			return &bookingDomain.UniqueViolationError{Constraint: bookingDomain.ConstraintSlot}
		}
		if other.CustomerEmail() == bk.CustomerEmail() {
			return &bookingDomain.UniqueViolationError{Constraint: bookingDomain.ConstraintEmail}
		}
	}
	return nil
}

// sorted returns clones of every booking, newest ID first.
func (r *BookingRepository) sorted() []*bookingDomain.Booking {
	all := make([]*bookingDomain.Booking, 0, len(r.s.bookings))
	for _, bk := range r.s.bookings {
		all = append(all, clone(bk))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() > all[j].ID() })
	return all
}

func clone(bk *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		bk.ID(),
		bk.CustomerName(),
		bk.CustomerEmail(),
		bk.CustomerPhone(),
		bk.Date(),
		bk.Time(),
		bk.Description(),
		bk.Version(),
		bk.CreatedAt(),
		bk.UpdatedAt(),
	)
}
