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
	domainbooking "staybook/internal/domain/booking"
	domainproperty "staybook/internal/domain/property"
)

const hostEarningsKey = "host.earnings"

type HostEarningsQuery struct {
	HostID string
}

func (q HostEarningsQuery) Key() string { return hostEarningsKey }

// HostEarningsHandler aggregates host payouts over completed stays. Like
// every aggregator it derives completion lazily through EffectiveStatus, so
// a confirmed booking past checkout counts as earned even before the
// transition has been persisted.
type HostEarningsHandler struct {
	UoWFactory uow.Factory
	Now        func() time.Time
}

func (h *HostEarningsHandler) Handle(ctx context.Context, q HostEarningsQuery) (dto.HostEarnings, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.HostEarnings{}, errors.New("reporting: host id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HostEarnings{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByHost(execCtx, domainproperty.HostID(hostID))
	if err != nil {
		return dto.HostEarnings{}, err
	}

	now := nowOrDefault(h.Now)
	out := dto.HostEarnings{HostID: hostID}
	var totalCents int64
	var currency string
	for _, b := range bookings {
		switch b.EffectiveStatus(now) {
		case domainbooking.StatusCompleted:
			out.CompletedBookings++
			totalCents += b.Price.HostPayout.Amount
			if currency == "" {
				currency = b.Price.HostPayout.Currency
			}
			out.Lines = append(out.Lines, dto.EarningsLine{
				BookingID:  string(b.ID),
				PropertyID: string(b.PropertyID),
				CheckOut:   b.Range.CheckOut.Format("2006-01-02"),
				HostPayout: dto.MapMoney(b.Price.HostPayout),
			})
		case domainbooking.StatusConfirmed:
			out.UpcomingBookings++
		}
	}
	sort.Slice(out.Lines, func(i, j int) bool {
		return out.Lines[i].CheckOut < out.Lines[j].CheckOut
	})
	out.TotalPayout = dto.MoneyDTO{Amount: totalCents, Currency: currency}
	return out, nil
}

var _ queries.Handler[HostEarningsQuery, dto.HostEarnings] = (*HostEarningsHandler)(nil)
