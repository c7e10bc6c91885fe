package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, checkIn, checkOut time.Time) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(checkIn, checkOut)
	require.NoError(t, err)
	return r
}

func testProperty() *property.Property {
	return &property.Property{
		ID:   "prop-1",
		Host: "host-1",
		BlockedDates: []time.Time{
			date(2026, time.July, 4),
		},
	}
}

func TestNewCalendar(t *testing.T) {
	c := NewCalendar(testProperty())

	require.Len(t, c.Blocks, 1)
	assert.Equal(t, ReasonHostBlock, c.Blocks[0].Reason)
	assert.True(t, c.Blocks[0].Range.ContainsDate(date(2026, time.July, 4)))
}

func TestIsAvailable(t *testing.T) {
	c := NewCalendar(testProperty())
	now := date(2026, time.June, 1)
	require.NoError(t, c.Reserve(mustRange(t, date(2026, time.July, 10), date(2026, time.July, 15)), "bk-1", "guest-1", now))

	t.Run("FreeRange", func(t *testing.T) {
		ok, conflicts := c.IsAvailable(mustRange(t, date(2026, time.July, 20), date(2026, time.July, 25)))
		assert.True(t, ok)
		assert.Empty(t, conflicts)
	})

	t.Run("SameDayTurnover", func(t *testing.T) {
		ok, _ := c.IsAvailable(mustRange(t, date(2026, time.July, 15), date(2026, time.July, 18)))
		assert.True(t, ok)
	})

	t.Run("BookedRangeConflicts", func(t *testing.T) {
		ok, conflicts := c.IsAvailable(mustRange(t, date(2026, time.July, 14), date(2026, time.July, 18)))
		assert.False(t, ok)
		require.Len(t, conflicts, 1)
		assert.Equal(t, "[2026-07-10, 2026-07-15)", conflicts[0].String())
	})

	t.Run("HostBlockConflicts", func(t *testing.T) {
		ok, conflicts := c.IsAvailable(mustRange(t, date(2026, time.July, 3), date(2026, time.July, 6)))
		assert.False(t, ok)
		assert.Len(t, conflicts, 1)
	})

	t.Run("ReportsEveryConflict", func(t *testing.T) {
		ok, conflicts := c.IsAvailable(mustRange(t, date(2026, time.July, 1), date(2026, time.July, 31)))
		assert.False(t, ok)
		assert.Len(t, conflicts, 2)
	})
}

func TestReserveAndRelease(t *testing.T) {
	c := NewCalendar(testProperty())
	now := date(2026, time.June, 1)
	r := mustRange(t, date(2026, time.July, 10), date(2026, time.July, 15))

	require.NoError(t, c.Reserve(r, "bk-1", "guest-1", now))

	t.Run("DoubleReserveFails", func(t *testing.T) {
		err := c.Reserve(r, "bk-2", "guest-2", now)
		assert.ErrorIs(t, err, ErrDateUnavailable)
	})

	t.Run("ReleaseFreesTheRange", func(t *testing.T) {
		require.NoError(t, c.Release("bk-1"))
		ok, _ := c.IsAvailable(r)
		assert.True(t, ok)
	})

	t.Run("ReleaseUnknownBooking", func(t *testing.T) {
		assert.ErrorIs(t, c.Release("bk-404"), ErrBlockNotFound)
	})

	t.Run("ReleaseNeverTouchesHostBlocks", func(t *testing.T) {
		ok, _ := c.IsAvailable(mustRange(t, date(2026, time.July, 4), date(2026, time.July, 5)))
		assert.False(t, ok)
	})
}

func TestRebuild(t *testing.T) {
	confirmed := []ConfirmedStay{
		{BookingID: "bk-1", GuestID: "guest-1", Range: mustRange(t, date(2026, time.July, 10), date(2026, time.July, 15))},
	}
	c := Rebuild(testProperty(), confirmed)

	require.Len(t, c.Blocks, 2)
	ok, _ := c.IsAvailable(mustRange(t, date(2026, time.July, 12), date(2026, time.July, 13)))
	assert.False(t, ok)
}

func TestConflictError(t *testing.T) {
	err := error(&ConflictError{Conflicts: []daterange.DateRange{
		mustRange(t, date(2026, time.July, 10), date(2026, time.July, 15)),
	}})
	assert.ErrorIs(t, err, ErrDateUnavailable)
}

func TestMonthView(t *testing.T) {
	c := NewCalendar(testProperty())
	now := date(2026, time.June, 1)
	require.NoError(t, c.Reserve(mustRange(t, date(2026, time.July, 10), date(2026, time.July, 12)), "bk-1", "guest-1", now))

	days := c.MonthView(2026, time.July)
	require.Len(t, days, 31)

	byDay := make(map[int]DayStatus, len(days))
	for _, d := range days {
		byDay[d.Date.Day()] = d
	}

	assert.Equal(t, DayBlocked, byDay[4].Status)
	assert.Equal(t, DayBooked, byDay[10].Status)
	assert.Equal(t, "bk-1", byDay[10].BookingID)
	assert.Equal(t, "guest-1", byDay[10].GuestID)
	assert.Equal(t, DayBooked, byDay[11].Status)
	// Checkout day is back in inventory.
	assert.Equal(t, DayAvailable, byDay[12].Status)
	assert.Equal(t, DayAvailable, byDay[1].Status)
}
