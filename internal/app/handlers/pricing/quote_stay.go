package pricing

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	domainrange "staybook/internal/domain/shared/daterange"
)

const quoteStayKey = "pricing.quote"

type QuoteStayQuery struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
	Adults     int
	Children   int
}

func (q QuoteStayQuery) Key() string { return quoteStayKey }

// QuoteStayHandler prices a stay without persisting anything, for the
// booking-form price breakdown. It runs the same validation and calculator
// as booking creation, so the preview always matches the charged total.
type QuoteStayHandler struct {
	UoWFactory uow.Factory
	Rates      domainpricing.FeeRates
}

func (h *QuoteStayHandler) Handle(ctx context.Context, q QuoteStayQuery) (dto.PriceBreakdownDTO, error) {
	dr, err := domainrange.New(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.PriceBreakdownDTO{}, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.PriceBreakdownDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := unit.Properties().ByID(execCtx, domainproperty.PropertyID(q.PropertyID))
	if err != nil {
		return dto.PriceBreakdownDTO{}, err
	}
	if err := prop.ValidateStay(dr, q.Adults, q.Children); err != nil {
		return dto.PriceBreakdownDTO{}, err
	}

	breakdown, err := domainpricing.Quote(domainpricing.QuoteInput{
		BasePricePerNight:      prop.Pricing.BasePricePerNight,
		CleaningFee:            prop.Pricing.CleaningFee,
		WeeklyDiscountPercent:  prop.Pricing.WeeklyDiscountPercent,
		MonthlyDiscountPercent: prop.Pricing.MonthlyDiscountPercent,
		Range:                  dr,
		Rates:                  h.Rates,
	})
	if err != nil {
		return dto.PriceBreakdownDTO{}, err
	}
	return dto.MapPriceBreakdown(breakdown), nil
}

var _ queries.Handler[QuoteStayQuery, dto.PriceBreakdownDTO] = (*QuoteStayHandler)(nil)
