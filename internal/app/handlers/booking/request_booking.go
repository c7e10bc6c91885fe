package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/policies"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

const requestBookingKey = "booking.request"

type RequestBookingCommand struct {
	CommandID  string
	PropertyID string
	GuestID    string
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
	Infants    int
}

func (c RequestBookingCommand) Key() string { return requestBookingKey }

type RequestBookingResult struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
}

// RequestBookingHandler turns a guest's stay request into a validated,
// priced booking: pending on manually approved properties, confirmed
// directly when the property has instant book enabled.
type RequestBookingHandler struct {
	UoWFactory uow.Factory
	Rates      domainpricing.FeeRates
	Notifier   policies.Notifier
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *RequestBookingHandler) Handle(ctx context.Context, cmd RequestBookingCommand) (*RequestBookingResult, error) {
	dr, err := domainrange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()

	b, err := h.attempt(ctx, cmd, dr, now)
	if errors.Is(err, uow.ErrConcurrentUpdate) {
		// Lost an instant-book race: one retry with fresh reads, then the
		// conflict surfaces as unavailable dates.
		b, err = h.attempt(ctx, cmd, dr, now)
		if errors.Is(err, uow.ErrConcurrentUpdate) {
			err = &domainavailability.ConflictError{Conflicts: []domainrange.DateRange{dr}}
		}
	}
	if err != nil {
		return nil, err
	}

	notifyParties(ctx, h.Logger, h.Notifier, b)
	return &RequestBookingResult{BookingID: string(b.ID), Status: string(b.Status)}, nil
}

func (h *RequestBookingHandler) attempt(ctx context.Context, cmd RequestBookingCommand, dr domainrange.DateRange, now time.Time) (*domainbooking.Booking, error) {
	unit, err := h.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	ctx = execContext(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	prop, err := unit.Properties().ByID(ctx, domainproperty.PropertyID(cmd.PropertyID))
	if err != nil {
		return nil, err
	}
	if err := prop.ValidateStay(dr, cmd.Adults, cmd.Children); err != nil {
		return nil, err
	}

	calendar, err := unit.Calendars().Calendar(ctx, prop.ID)
	if err != nil {
		return nil, err
	}
	// Overlapping pending requests are expected on manually approved
	// properties; only confirmed stays and host blocks remove inventory.
	if ok, conflicts := calendar.IsAvailable(dr); !ok {
		return nil, &domainavailability.ConflictError{Conflicts: conflicts}
	}

	price, err := domainpricing.Quote(domainpricing.QuoteInput{
		BasePricePerNight:      prop.Pricing.BasePricePerNight,
		CleaningFee:            prop.Pricing.CleaningFee,
		WeeklyDiscountPercent:  prop.Pricing.WeeklyDiscountPercent,
		MonthlyDiscountPercent: prop.Pricing.MonthlyDiscountPercent,
		Range:                  dr,
		Rates:                  h.Rates,
	})
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:          domainbooking.BookingID(cmd.CommandID),
		PropertyID:  prop.ID,
		HostID:      prop.Host,
		GuestID:     cmd.GuestID,
		Range:       dr,
		Guests:      domainbooking.Guests{Adults: cmd.Adults, Children: cmd.Children, Infants: cmd.Infants},
		Price:       price,
		PolicyID:    prop.CancellationPolicyID,
		InstantBook: prop.InstantBook,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if prop.InstantBook {
		if err := calendar.Reserve(dr, string(b.ID), b.GuestID, now); err != nil {
			return nil, err
		}
		if err := unit.Calendars().Save(ctx, calendar); err != nil {
			return nil, err
		}
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return b, nil
}

func (h *RequestBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

var _ commands.Handler[RequestBookingCommand, *RequestBookingResult] = (*RequestBookingHandler)(nil)
