package reporting

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
)

const listGuestBookingsKey = "guest.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type ListGuestBookingsHandler struct {
	UoWFactory uow.Factory
	Now        func() time.Time
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (dto.BookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return dto.BookingCollection{}, errors.New("reporting: guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return dto.BookingCollection{}, err
	}

	now := nowOrDefault(h.Now)
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, dto.MapBookingSummary(b, now))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return dto.BookingCollection{Items: items}, nil
}

func nowOrDefault(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}

var _ queries.Handler[ListGuestBookingsQuery, dto.BookingCollection] = (*ListGuestBookingsHandler)(nil)
