package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainavailability "staybook/internal/domain/availability"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/infra/storage/memory"
)

func setupCalendarStore(t *testing.T) memory.Factory {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	p := &domainproperty.Property{
		ID:   "prop-1",
		Host: "host-1",
		BlockedDates: []time.Time{
			time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.Properties().Save(ctx, p))

	calendar, err := store.Calendars().Calendar(ctx, p.ID)
	require.NoError(t, err)
	stay, err := daterange.New(
		time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.July, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, calendar.Reserve(stay, "bk-1", "guest-1", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, store.Calendars().Save(ctx, calendar))
	return memory.Factory{Store: store}
}

func TestGetCalendar(t *testing.T) {
	ctx := context.Background()
	h := &GetCalendarHandler{UoWFactory: setupCalendarStore(t)}

	out, err := h.Handle(ctx, GetCalendarQuery{PropertyID: "prop-1", Year: 2026, Month: time.July})
	require.NoError(t, err)

	assert.Equal(t, "prop-1", out.PropertyID)
	assert.Equal(t, 2026, out.Year)
	assert.Equal(t, 7, out.Month)
	require.Len(t, out.Days, 31)

	byDay := make(map[int]string, len(out.Days))
	for _, d := range out.Days {
		byDay[d.Date.Day()] = d.Status
	}
	assert.Equal(t, string(domainavailability.DayBlocked), byDay[4])
	assert.Equal(t, string(domainavailability.DayBooked), byDay[10])
	assert.Equal(t, string(domainavailability.DayBooked), byDay[11])
	assert.Equal(t, string(domainavailability.DayAvailable), byDay[12])
}

func TestGetCalendarValidation(t *testing.T) {
	ctx := context.Background()
	h := &GetCalendarHandler{UoWFactory: setupCalendarStore(t)}

	t.Run("InvalidMonth", func(t *testing.T) {
		_, err := h.Handle(ctx, GetCalendarQuery{PropertyID: "prop-1", Year: 2026, Month: 13})
		assert.Error(t, err)
	})

	t.Run("UnknownProperty", func(t *testing.T) {
		_, err := h.Handle(ctx, GetCalendarQuery{PropertyID: "prop-404", Year: 2026, Month: time.July})
		assert.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
	})
}
