package daterange

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be at least one day after checkin")
)

// DateRange represents a half-open stay window [checkIn, checkOut) with
// whole-day granularity. A checkout on day N and a check-in on day N do
// not conflict, which allows same-day turnover.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// Day truncates a timestamp to its civil day at UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// New builds a validated range, normalizing both endpoints to UTC midnight.
func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// SingleDay returns the one-night range covering the given date.
func SingleDay(date time.Time) DateRange {
	d := Day(date)
	return DateRange{CheckIn: d, CheckOut: d.AddDate(0, 0, 1)}
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if dr.Nights() < 1 {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the integer stay duration in nights.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

// Overlaps reports whether two half-open ranges share at least one night.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

// ContainsDate reports whether the given date falls inside the stay window.
func (dr DateRange) ContainsDate(t time.Time) bool {
	d := Day(t)
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

func (dr DateRange) Equal(other DateRange) bool {
	return dr.CheckIn.Equal(other.CheckIn) && dr.CheckOut.Equal(other.CheckOut)
}

func (dr DateRange) String() string {
	const layout = "2006-01-02"
	return fmt.Sprintf("[%s, %s)", dr.CheckIn.Format(layout), dr.CheckOut.Format(layout))
}
