package booking

import (
	"time"
)

// Details holds the client-supplied, validated fields of a booking.
type Details struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone int64
	Date          time.Time
	Time          TimeOfDay
	Description   *string
}

// Booking is the aggregate root for a reserved slot.
type Booking struct {
	id            int64
	customerName  string
	customerEmail string
	customerPhone int64
	date          time.Time
	timeOfDay     TimeOfDay
	description   *string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates an unsaved booking at version 1. The ID is assigned when
// the booking is persisted.
func NewBooking(d Details, now time.Time) *Booking {
	now = now.UTC()
	return &Booking{
		customerName:  d.CustomerName,
		customerEmail: d.CustomerEmail,
		customerPhone: d.CustomerPhone,
		date:          DateOf(d.Date),
		timeOfDay:     d.Time,
		description:   d.Description,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id int64,
	customerName string,
	customerEmail string,
	customerPhone int64,
	date time.Time,
	timeOfDay TimeOfDay,
	description *string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		customerName:  customerName,
		customerEmail: customerEmail,
		customerPhone: customerPhone,
		date:          DateOf(date),
		timeOfDay:     timeOfDay,
		description:   description,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the storage-assigned identifier, or 0 before the first save.
func (b *Booking) ID() int64 { return b.id }

func (b *Booking) CustomerName() string { return b.customerName }

func (b *Booking) CustomerEmail() string { return b.customerEmail }

func (b *Booking) CustomerPhone() int64 { return b.customerPhone }

// Date returns the booked calendar date as midnight UTC.
func (b *Booking) Date() time.Time { return b.date }

func (b *Booking) Time() TimeOfDay { return b.timeOfDay }

func (b *Booking) Description() *string { return b.description }

func (b *Booking) Version() int64 { return b.version }

func (b *Booking) CreatedAt() time.Time { return b.createdAt }

func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Slot returns the (date, time) pair the booking occupies.
func (b *Booking) Slot() Slot { return Slot{Date: b.date, Time: b.timeOfDay} }

// Details returns the mutable fields of the booking.
func (b *Booking) Details() Details {
	return Details{
		CustomerName:  b.customerName,
		CustomerEmail: b.customerEmail,
		CustomerPhone: b.customerPhone,
		Date:          b.date,
		Time:          b.timeOfDay,
		Description:   b.description,
	}
}

// AssignID records the storage-assigned identifier. It has no effect once an
// ID is set.
func (b *Booking) AssignID(id int64) {
	if b.id == 0 {
		b.id = id
	}
}

// Replace overwrites every mutable field, bumps the version and stamps the
// update time.
func (b *Booking) Replace(d Details, now time.Time) {
	b.customerName = d.CustomerName
	b.customerEmail = d.CustomerEmail
	b.customerPhone = d.CustomerPhone
	b.date = DateOf(d.Date)
	b.timeOfDay = d.Time
	b.description = d.Description
	b.version++
	b.updatedAt = now.UTC()
}

// Slot is the (date, time) pair a booking occupies.
type Slot struct {
	Date time.Time
	Time TimeOfDay
}

func (s Slot) String() string {
	return s.Date.Format(DateLayout) + " " + s.Time.String()
}
