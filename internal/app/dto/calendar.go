package dto

import (
	"time"

	domainavailability "staybook/internal/domain/availability"
)

type CalendarDay struct {
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	BookingID string    `json:"booking_id,omitempty"`
	GuestID   string    `json:"guest_id,omitempty"`
}

type Calendar struct {
	PropertyID string        `json:"property_id"`
	Year       int           `json:"year"`
	Month      int           `json:"month"`
	Days       []CalendarDay `json:"days"`
}

func MapCalendar(propertyID string, year int, month time.Month, days []domainavailability.DayStatus) Calendar {
	out := Calendar{PropertyID: propertyID, Year: year, Month: int(month)}
	for _, d := range days {
		out.Days = append(out.Days, CalendarDay{
			Date:      d.Date,
			Status:    string(d.Status),
			BookingID: d.BookingID,
			GuestID:   d.GuestID,
		})
	}
	return out
}
