package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type PriceBreakdownDTO struct {
	Nights          int      `json:"nights"`
	NightlyRate     MoneyDTO `json:"nightly_rate"`
	Subtotal        MoneyDTO `json:"subtotal"`
	DiscountPercent int      `json:"discount_percent"`
	DiscountAmount  MoneyDTO `json:"discount_amount"`
	CleaningFee     MoneyDTO `json:"cleaning_fee"`
	GuestServiceFee MoneyDTO `json:"guest_service_fee"`
	Tax             MoneyDTO `json:"tax"`
	Total           MoneyDTO `json:"total"`
	HostPayout      MoneyDTO `json:"host_payout"`
}

type CancellationDTO struct {
	At            time.Time `json:"at"`
	By            string    `json:"by"`
	RefundPercent int       `json:"refund_percent"`
	RefundAmount  MoneyDTO  `json:"refund_amount"`
}

type BookingSummary struct {
	ID           string            `json:"id"`
	PropertyID   string            `json:"property_id"`
	HostID       string            `json:"host_id"`
	GuestID      string            `json:"guest_id"`
	CheckIn      time.Time         `json:"check_in"`
	CheckOut     time.Time         `json:"check_out"`
	Adults       int               `json:"adults"`
	Children     int               `json:"children"`
	Infants      int               `json:"infants"`
	Status       string            `json:"status"`
	Price        PriceBreakdownDTO `json:"price"`
	CreatedAt    time.Time         `json:"created_at"`
	Cancellation *CancellationDTO  `json:"cancellation,omitempty"`
}

type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}

// MapBookingSummary renders a booking with its lazily computed status: a
// confirmed stay whose checkout has passed is reported as completed.
func MapBookingSummary(b *domainbooking.Booking, now time.Time) BookingSummary {
	s := BookingSummary{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		HostID:     string(b.HostID),
		GuestID:    b.GuestID,
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Adults:     b.Guests.Adults,
		Children:   b.Guests.Children,
		Infants:    b.Guests.Infants,
		Status:     string(b.EffectiveStatus(now)),
		Price:      MapPriceBreakdown(b.Price),
		CreatedAt:  b.CreatedAt,
	}
	if b.Cancellation != nil {
		s.Cancellation = &CancellationDTO{
			At:            b.Cancellation.At,
			By:            string(b.Cancellation.By),
			RefundPercent: b.Cancellation.RefundPercent,
			RefundAmount:  MoneyDTO{Amount: b.Cancellation.RefundAmount, Currency: b.Price.Total.Currency},
		}
	}
	return s
}
