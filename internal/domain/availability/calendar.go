package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

var (
	// ErrDateUnavailable reports a conflict with confirmed bookings or host
	// blocks. It is expected and surfaced to the guest to pick other dates.
	ErrDateUnavailable = errors.New("availability: dates are not available")
	ErrBlockNotFound   = errors.New("availability: block not found")
)

// ConflictError carries the occupied ranges that clash with a requested
// stay so the UI can render alternatives. It matches ErrDateUnavailable
// under errors.Is.
type ConflictError struct {
	Conflicts []daterange.DateRange
}

func (e *ConflictError) Error() string { return ErrDateUnavailable.Error() }

func (e *ConflictError) Unwrap() error { return ErrDateUnavailable }

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

// Block is one occupied range on a property calendar. Booking blocks carry
// the confirmed booking and guest identity for calendar rendering.
type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	BookingID string
	GuestID   string
	CreatedAt time.Time
}

// Calendar is the availability index of a single property, derived from its
// confirmed bookings and host-curated blocked dates. Pending bookings are
// deliberately excluded: several guests may hold overlapping pending
// requests on a manually approved property, and only the first accepted one
// removes inventory. Version backs the optimistic compare-and-swap that
// keeps concurrent accepts from double-booking.
type Calendar struct {
	PropertyID property.PropertyID
	Blocks     []Block
	Version    int64
}

type Repository interface {
	Calendar(ctx context.Context, id property.PropertyID) (*Calendar, error)
	// Save persists the calendar with an optimistic version check and
	// returns uow.ErrConcurrentUpdate on a lost race.
	Save(ctx context.Context, c *Calendar) error
}

// NewCalendar builds a calendar seeded with the property's blocked dates.
func NewCalendar(p *property.Property) *Calendar {
	c := &Calendar{PropertyID: p.ID}
	for _, day := range p.BlockedDays() {
		c.Blocks = append(c.Blocks, Block{
			Range:  daterange.SingleDay(day),
			Reason: ReasonHostBlock,
		})
	}
	return c
}

// ConfirmedStay is the slice of a confirmed booking the index needs.
type ConfirmedStay struct {
	BookingID string
	GuestID   string
	Range     daterange.DateRange
}

// Rebuild derives a calendar from scratch; repositories use it to
// reconstruct the index when no persisted projection exists.
func Rebuild(p *property.Property, confirmed []ConfirmedStay) *Calendar {
	c := NewCalendar(p)
	for _, stay := range confirmed {
		c.Blocks = append(c.Blocks, Block{
			Range:     stay.Range,
			Reason:    ReasonBooking,
			BookingID: stay.BookingID,
			GuestID:   stay.GuestID,
		})
	}
	return c
}

// IsAvailable reports whether the range is free, returning every
// conflicting occupied range otherwise.
func (c *Calendar) IsAvailable(r daterange.DateRange) (bool, []daterange.DateRange) {
	var conflicts []daterange.DateRange
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			conflicts = append(conflicts, block.Range)
		}
	}
	return len(conflicts) == 0, conflicts
}

// Reserve marks a confirmed stay on the calendar or fails with
// ErrDateUnavailable if any night is already occupied.
func (c *Calendar) Reserve(r daterange.DateRange, bookingID, guestID string, now time.Time) error {
	if ok, _ := c.IsAvailable(r); !ok {
		return ErrDateUnavailable
	}
	c.Blocks = append(c.Blocks, Block{
		Range:     r,
		Reason:    ReasonBooking,
		BookingID: bookingID,
		GuestID:   guestID,
		CreatedAt: now.UTC(),
	})
	return nil
}

// Release frees the stay held by the given booking id, typically after a
// confirmed booking is cancelled.
func (c *Calendar) Release(bookingID string) error {
	for i, block := range c.Blocks {
		if block.Reason == ReasonBooking && block.BookingID == bookingID {
			c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
			return nil
		}
	}
	return ErrBlockNotFound
}

type DayOccupancy string

const (
	DayAvailable DayOccupancy = "available"
	DayBooked    DayOccupancy = "booked"
	DayBlocked   DayOccupancy = "blocked"
)

// DayStatus tags one calendar day for rendering; booked days carry the
// occupying booking and guest identity.
type DayStatus struct {
	Date      time.Time
	Status    DayOccupancy
	BookingID string
	GuestID   string
}

// MonthView tags each day of the given month. Days are returned in order.
func (c *Calendar) MonthView(year int, month time.Month) []DayStatus {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	days := make([]DayStatus, 0, 31)
	for day := first; day.Before(next); day = day.AddDate(0, 0, 1) {
		status := DayStatus{Date: day, Status: DayAvailable}
		for _, block := range c.Blocks {
			if !block.Range.ContainsDate(day) {
				continue
			}
			if block.Reason == ReasonHostBlock {
				status.Status = DayBlocked
			} else {
				status.Status = DayBooked
				status.BookingID = block.BookingID
				status.GuestID = block.GuestID
			}
			break
		}
		days = append(days, status)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days
}
