package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	// ErrIllegalTransition is an attempted transition from a terminal or
	// incompatible state; a caller bug, never retried.
	ErrIllegalTransition = errors.New("booking: illegal state transition")
	// ErrInvalidCancellation is raised when cancelling a stay that has
	// already concluded.
	ErrInvalidCancellation = errors.New("booking: stay already concluded")
	ErrInvalidGuests       = errors.New("booking: at least one adult is required")
	ErrBookingNotFound     = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Terminal reports whether no transition may ever leave the status.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Actor identifies which party performed a cancellation.
type Actor string

const (
	ActorGuest Actor = "guest"
	ActorHost  Actor = "host"
)

// Guests is the requested party composition. Infants never count toward a
// property's guest limit.
type Guests struct {
	Adults   int
	Children int
	Infants  int
}

// Counted returns the number of guests that occupy capacity.
func (g Guests) Counted() int { return g.Adults + g.Children }

// Cancellation is written exactly once when a booking leaves the active
// states, and never revised afterwards.
type Cancellation struct {
	At            time.Time
	By            Actor
	RefundPercent int
	RefundAmount  int64 // minor units, same currency as Price.Total
}

type Booking struct {
	ID         BookingID
	PropertyID property.PropertyID
	HostID     property.HostID
	GuestID    string
	Range      daterange.DateRange
	Guests     Guests
	Price      pricing.Breakdown
	Status     Status
	PolicyID   string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Cancellation *Cancellation

	Version int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	// Save persists the aggregate with an optimistic version check and
	// returns uow.ErrConcurrentUpdate on a lost race.
	Save(ctx context.Context, b *Booking) error
	ListByProperty(ctx context.Context, id property.PropertyID) ([]*Booking, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
	ListByHost(ctx context.Context, hostID property.HostID) ([]*Booking, error)
}

type CreateParams struct {
	ID         BookingID
	PropertyID property.PropertyID
	HostID     property.HostID
	GuestID    string
	Range      daterange.DateRange
	Guests     Guests
	Price      pricing.Breakdown
	PolicyID   string
	// InstantBook skips host approval: the booking is born CONFIRMED.
	InstantBook bool
	CreatedAt   time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if params.Guests.Adults < 1 {
		return nil, ErrInvalidGuests
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		HostID:     params.HostID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		Price:      params.Price,
		PolicyID:   params.PolicyID,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{BookingID: b.ID, PropertyID: b.PropertyID, GuestID: b.GuestID, Range: b.Range, Guests: b.Guests.Counted(), TotalCents: b.Price.Total.Amount, At: now})
	if params.InstantBook {
		b.Status = StatusConfirmed
		b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, HostID: b.HostID, GuestID: b.GuestID, Range: b.Range, At: now})
	}
	return b, nil
}

// Confirm transitions an accepted pending request to CONFIRMED. Callers must
// have re-validated availability inside the same transaction.
func (b *Booking) Confirm(now time.Time) error {
	if b.Status != StatusPending {
		return ErrIllegalTransition
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, HostID: b.HostID, GuestID: b.GuestID, Range: b.Range, At: b.UpdatedAt})
	return nil
}

// Decline is the host rejecting a pending request. No charge was captured,
// so the refund is always the full total.
func (b *Booking) Decline(now time.Time) error {
	if b.Status != StatusPending {
		return ErrIllegalTransition
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Cancellation = &Cancellation{
		At:            b.UpdatedAt,
		By:            ActorHost,
		RefundPercent: 100,
		RefundAmount:  b.Price.Total.Amount,
	}
	b.Record(BookingDeclined{BookingID: b.ID, GuestID: b.GuestID, RefundCents: b.Cancellation.RefundAmount, At: b.UpdatedAt})
	return nil
}

// Cancel moves an active booking to CANCELLED, computing the refund from
// the cancellation policy exactly once.
func (b *Booking) Cancel(actor Actor, policy CancellationPolicy, now time.Time) error {
	switch b.Status {
	case StatusPending, StatusConfirmed:
	default:
		return ErrIllegalTransition
	}
	now = now.UTC()
	if now.After(b.Range.CheckOut) {
		return ErrInvalidCancellation
	}
	percent := policy.Refund(b.CreatedAt, b.Range.CheckIn, now)
	b.Status = StatusCancelled
	b.UpdatedAt = now
	b.Cancellation = &Cancellation{
		At:            now,
		By:            actor,
		RefundPercent: percent,
		RefundAmount:  b.Price.Total.PercentFraction(int64(percent)).Amount,
	}
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, HostID: b.HostID, GuestID: b.GuestID, By: actor, RefundPercent: percent, RefundCents: b.Cancellation.RefundAmount, At: now})
	return nil
}

// Complete flips a confirmed booking whose checkout has passed to COMPLETED.
// There is no background scheduler; lifecycle operations call this lazily.
func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrIllegalTransition
	}
	now = now.UTC()
	if now.Before(b.Range.CheckOut) {
		return ErrIllegalTransition
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now
	b.Record(BookingCompleted{BookingID: b.ID, PropertyID: b.PropertyID, HostID: b.HostID, At: now})
	return nil
}

// EffectiveStatus is the single lazy-completion rule: every reader that
// aggregates bookings (earnings, dashboards, calendars) must use it so the
// answer to "is it completed" never diverges across components.
func (b *Booking) EffectiveStatus(now time.Time) Status {
	if b.Status == StatusConfirmed && !now.UTC().Before(b.Range.CheckOut) {
		return StatusCompleted
	}
	return b.Status
}
