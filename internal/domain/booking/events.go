package booking

import (
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

type BookingRequested struct {
	BookingID  BookingID
	PropertyID property.PropertyID
	GuestID    string
	Range      daterange.DateRange
	Guests     int
	TotalCents int64
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID
	PropertyID property.PropertyID
	HostID     property.HostID
	GuestID    string
	Range      daterange.DateRange
	At         time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingDeclined struct {
	BookingID   BookingID
	GuestID     string
	RefundCents int64
	At          time.Time
}

func (e BookingDeclined) EventName() string     { return "booking.declined" }
func (e BookingDeclined) AggregateID() string   { return string(e.BookingID) }
func (e BookingDeclined) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID     BookingID
	PropertyID    property.PropertyID
	HostID        property.HostID
	GuestID       string
	By            Actor
	RefundPercent int
	RefundCents   int64
	At            time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type BookingCompleted struct {
	BookingID  BookingID
	PropertyID property.PropertyID
	HostID     property.HostID
	At         time.Time
}

func (e BookingCompleted) EventName() string     { return "booking.completed" }
func (e BookingCompleted) AggregateID() string   { return string(e.BookingID) }
func (e BookingCompleted) OccurredAt() time.Time { return e.At }
