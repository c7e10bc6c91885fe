package booking

import (
	"context"
	"log/slog"

	"staybook/internal/app/policies"
	domainbooking "staybook/internal/domain/booking"
)

// notifyParties delivers the booking's pending events to the interested
// parties. Delivery is fire-and-forget: a failure is logged and never rolls
// back the committed transition.
func notifyParties(ctx context.Context, logger *slog.Logger, notifier policies.Notifier, b *domainbooking.Booking) {
	if notifier == nil {
		b.ClearEvents()
		return
	}
	for _, ev := range b.PendingEvents() {
		for _, userID := range recipients(b, ev.EventName()) {
			if err := notifier.Notify(ctx, userID, ev.EventName(), ev); err != nil && logger != nil {
				logger.Warn("notification delivery failed", "event", ev.EventName(), "user_id", userID, "booking_id", b.ID, "error", err)
			}
		}
	}
	b.ClearEvents()
}

func recipients(b *domainbooking.Booking, event string) []string {
	host := string(b.HostID)
	switch event {
	case domainbooking.BookingRequested{}.EventName():
		return []string{host}
	case domainbooking.BookingDeclined{}.EventName():
		return []string{b.GuestID}
	default:
		return []string{b.GuestID, host}
	}
}
