package dto

type EarningsLine struct {
	BookingID  string   `json:"booking_id"`
	PropertyID string   `json:"property_id"`
	CheckOut   string   `json:"check_out"`
	HostPayout MoneyDTO `json:"host_payout"`
}

type HostEarnings struct {
	HostID            string         `json:"host_id"`
	CompletedBookings int            `json:"completed_bookings"`
	UpcomingBookings  int            `json:"upcoming_bookings"`
	TotalPayout       MoneyDTO       `json:"total_payout"`
	Lines             []EarningsLine `json:"lines"`
}
