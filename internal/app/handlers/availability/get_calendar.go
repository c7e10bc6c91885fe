package availability

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainproperty "staybook/internal/domain/property"
)

const getCalendarKey = "availability.calendar"

type GetCalendarQuery struct {
	PropertyID string
	Year       int
	Month      time.Month
}

func (q GetCalendarQuery) Key() string { return getCalendarKey }

// GetCalendarHandler renders one month of a property's availability for
// calendar display: each day tagged available, booked or blocked, with the
// occupying guest on booked days.
type GetCalendarHandler struct {
	UoWFactory uow.Factory
}

func (h *GetCalendarHandler) Handle(ctx context.Context, q GetCalendarQuery) (dto.Calendar, error) {
	if q.Month < time.January || q.Month > time.December {
		return dto.Calendar{}, fmt.Errorf("availability: invalid month %d", q.Month)
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Calendar{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	calendar, err := unit.Calendars().Calendar(execCtx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return dto.Calendar{}, err
	}
	days := calendar.MonthView(q.Year, q.Month)
	return dto.MapCalendar(q.PropertyID, q.Year, q.Month, days), nil
}

var _ queries.Handler[GetCalendarQuery, dto.Calendar] = (*GetCalendarHandler)(nil)
