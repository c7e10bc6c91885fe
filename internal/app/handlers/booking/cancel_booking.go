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

const cancelBookingKey = "booking.cancel"

// ErrActorNotParty is returned when the cancelling user is neither the
// booking's guest nor its host.
var ErrActorNotParty = errors.New("booking: actor is not a party to the booking")

type CancelBookingCommand struct {
	BookingID string
	ActorID   string
	Actor     domainbooking.Actor
}

func (c CancelBookingCommand) Key() string { return cancelBookingKey }

type CancelBookingResult struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	RefundPercent int    `json:"refund_percent"`
	RefundAmount  int64  `json:"refund_amount"`
}

// CancelBookingHandler moves a pending or confirmed booking to cancelled,
// computing the one-time refund from the property's cancellation policy. A
// confirmed stay releases its calendar block so the nights return to
// inventory.
type CancelBookingHandler struct {
	UoWFactory uow.Factory
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*CancelBookingResult, error) {
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
	if err := authorizeCancel(b, cmd); err != nil {
		return nil, err
	}

	wasConfirmed := b.Status == domainbooking.StatusConfirmed
	policy := domainbooking.PolicyByID(b.PolicyID)
	if err := b.Cancel(cmd.Actor, policy, h.now()); err != nil {
		return nil, err
	}

	if wasConfirmed {
		calendar, err := unit.Calendars().Calendar(ctx, b.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := calendar.Release(string(b.ID)); err != nil && !errors.Is(err, domainavailability.ErrBlockNotFound) {
			return nil, err
		}
		if err := unit.Calendars().Save(ctx, calendar); err != nil {
			return nil, err
		}
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	if h.Logger != nil {
		h.Logger.Info("booking cancelled", "booking_id", b.ID, "by", cmd.Actor, "refund_percent", b.Cancellation.RefundPercent)
	}
	notifyParties(ctx, h.Logger, h.Notifier, b)
	return &CancelBookingResult{
		BookingID:     string(b.ID),
		Status:        string(b.Status),
		RefundPercent: b.Cancellation.RefundPercent,
		RefundAmount:  b.Cancellation.RefundAmount,
	}, nil
}

func authorizeCancel(b *domainbooking.Booking, cmd CancelBookingCommand) error {
	switch cmd.Actor {
	case domainbooking.ActorGuest:
		if cmd.ActorID != "" && cmd.ActorID != b.GuestID {
			return ErrActorNotParty
		}
	case domainbooking.ActorHost:
		if cmd.ActorID != "" && domainproperty.HostID(cmd.ActorID) != b.HostID {
			return ErrActorNotParty
		}
	default:
		return ErrActorNotParty
	}
	return nil
}

func (h *CancelBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CancelBookingCommand, *CancelBookingResult] = (*CancelBookingHandler)(nil)
