package booking

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const completeBookingKey = "booking.complete"

type CompleteBookingCommand struct {
	BookingID string
}

func (c CompleteBookingCommand) Key() string { return completeBookingKey }

// CompleteBookingHandler persists the confirmed-to-completed transition for
// a stay whose checkout has passed. There is no background scheduler:
// readers derive completion lazily via EffectiveStatus, and this command is
// the single write-capable access that makes it durable.
type CompleteBookingHandler struct {
	UoWFactory uow.Factory
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CompleteBookingHandler) Handle(ctx context.Context, cmd CompleteBookingCommand) (*BookingActionResult, error) {
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
	if err := b.Complete(h.now()); err != nil {
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
		h.Logger.Info("booking completed", "booking_id", b.ID)
	}
	notifyParties(ctx, h.Logger, h.Notifier, b)
	return &BookingActionResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *CompleteBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[CompleteBookingCommand, *BookingActionResult] = (*CompleteBookingHandler)(nil)
