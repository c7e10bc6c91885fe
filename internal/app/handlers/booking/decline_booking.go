package booking

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

const declineBookingKey = "booking.decline"

type DeclineBookingCommand struct {
	HostID    string
	BookingID string
}

func (c DeclineBookingCommand) Key() string { return declineBookingKey }

// DeclineBookingHandler rejects a pending request. No charge was captured,
// so declining is cost-free to the guest: the refund is always 100%.
type DeclineBookingHandler struct {
	UoWFactory uow.Factory
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeclineBookingHandler) Handle(ctx context.Context, cmd DeclineBookingCommand) (*BookingActionResult, error) {
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

	if err := b.Decline(h.now()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	if h.Logger != nil {
		h.Logger.Info("booking declined", "booking_id", b.ID, "host_id", b.HostID)
	}
	notifyParties(ctx, h.Logger, h.Notifier, b)
	return &BookingActionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *DeclineBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[DeclineBookingCommand, *BookingActionResult] = (*DeclineBookingHandler)(nil)
