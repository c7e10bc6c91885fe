package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

const acceptBookingKey = "booking.accept"

// ErrBookingNotOwned is returned when the acting host does not own the
// booking's property.
var ErrBookingNotOwned = errors.New("booking: not owned by host")

type AcceptBookingCommand struct {
	HostID    string
	BookingID string
}

func (c AcceptBookingCommand) Key() string { return acceptBookingKey }

type BookingActionResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// AcceptBookingHandler commits a host's approval of a pending request.
// Availability is re-validated against the current confirmed set inside the
// transaction, and the calendar write is an optimistic compare-and-swap:
// of two hosts racing to accept overlapping requests, at most one wins. A
// version conflict is retried once with fresh reads; a second conflict, or
// a failed re-check, leaves the booking pending and reports the dates as
// unavailable so the host can decline.
type AcceptBookingHandler struct {
	UoWFactory uow.Factory
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *AcceptBookingHandler) Handle(ctx context.Context, cmd AcceptBookingCommand) (*BookingActionResult, error) {
	now := h.now()

	b, err := h.attempt(ctx, cmd, now)
	if errors.Is(err, uow.ErrConcurrentUpdate) {
		b, err = h.attempt(ctx, cmd, now)
		if errors.Is(err, uow.ErrConcurrentUpdate) {
			err = domainavailability.ErrDateUnavailable
		}
	}
	if err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("booking accepted", "booking_id", b.ID, "property_id", b.PropertyID, "host_id", b.HostID)
	}
	notifyParties(ctx, h.Logger, h.Notifier, b)
	return &BookingActionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *AcceptBookingHandler) attempt(ctx context.Context, cmd AcceptBookingCommand, now time.Time) (*domainbooking.Booking, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	ctx = execContext(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.HostID != "" && b.HostID != domainproperty.HostID(cmd.HostID) {
		return nil, ErrBookingNotOwned
	}

	calendar, err := unit.Calendars().Calendar(ctx, b.PropertyID)
	if err != nil {
		return nil, err
	}
	if ok, conflicts := calendar.IsAvailable(b.Range); !ok {
		return nil, &domainavailability.ConflictError{Conflicts: conflicts}
	}

	if err := b.Confirm(now); err != nil {
		return nil, err
	}
	if err := calendar.Reserve(b.Range, string(b.ID), b.GuestID, now); err != nil {
		return nil, err
	}
	if err := unit.Calendars().Save(ctx, calendar); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

func (h *AcceptBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[AcceptBookingCommand, *BookingActionResult] = (*AcceptBookingHandler)(nil)
