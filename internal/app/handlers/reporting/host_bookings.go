package reporting

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
)

const (
	listHostBookingsKey    = "host.bookings.list"
	allStatusesFilterValue = "ALL"
)

type ListHostBookingsQuery struct {
	HostID string
	// Status filters on the effective status; empty means PENDING (the
	// host's inbox view), "ALL" disables the filter.
	Status string
}

func (q ListHostBookingsQuery) Key() string { return listHostBookingsKey }

type ListHostBookingsHandler struct {
	UoWFactory uow.Factory
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *ListHostBookingsHandler) Handle(ctx context.Context, q ListHostBookingsQuery) (dto.BookingCollection, error) {
	hostID := strings.TrimSpace(q.HostID)
	if hostID == "" {
		return dto.BookingCollection{}, errors.New("reporting: host id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.BookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByHost(execCtx, domainproperty.HostID(hostID))
	if err != nil {
		return dto.BookingCollection{}, err
	}

	statusFilter := strings.ToUpper(strings.TrimSpace(q.Status))
	if statusFilter == "" {
		statusFilter = "PENDING"
	}
	allStatuses := statusFilter == allStatusesFilterValue

	now := nowOrDefault(h.Now)
	items := make([]dto.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summary := dto.MapBookingSummary(b, now)
		if !allStatuses && summary.Status != statusFilter {
			continue
		}
		items = append(items, summary)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if h.Logger != nil {
		h.Logger.Debug("host bookings listed", "host_id", hostID, "count", len(items), "status", statusFilter)
	}
	return dto.BookingCollection{Items: items}, nil
}

var _ queries.Handler[ListHostBookingsQuery, dto.BookingCollection] = (*ListHostBookingsHandler)(nil)
