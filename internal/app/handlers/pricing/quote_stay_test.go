package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

func quoteHandler(t *testing.T) *QuoteStayHandler {
	t.Helper()
	store := memory.NewStore()
	p := &domainproperty.Property{
		ID:          "prop-1",
		Host:        "host-1",
		MaxGuests:   4,
		MinimumStay: 1,
		Pricing: domainproperty.PricingConfig{
			BasePricePerNight:      money.Must(10000, "USD"),
			CleaningFee:            money.Must(0, "USD"),
			WeeklyDiscountPercent:  10,
			MonthlyDiscountPercent: 20,
		},
	}
	require.NoError(t, store.Properties().Save(context.Background(), p))
	return &QuoteStayHandler{
		UoWFactory: memory.Factory{Store: store},
		Rates:      domainpricing.FeeRates{GuestServiceBps: 1200, HostServiceBps: 300, TaxBps: 800},
	}
}

func TestQuoteStay(t *testing.T) {
	ctx := context.Background()
	h := quoteHandler(t)
	checkIn := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	t.Run("MatchesBookingCharges", func(t *testing.T) {
		out, err := h.Handle(ctx, QuoteStayQuery{
			PropertyID: "prop-1",
			CheckIn:    checkIn,
			CheckOut:   checkIn.AddDate(0, 0, 3),
			Adults:     2,
		})
		require.NoError(t, err)

		assert.Equal(t, 3, out.Nights)
		assert.Equal(t, int64(30000), out.Subtotal.Amount)
		assert.Equal(t, int64(3600), out.GuestServiceFee.Amount)
		assert.Equal(t, int64(2688), out.Tax.Amount)
		assert.Equal(t, int64(36288), out.Total.Amount)
		assert.Equal(t, int64(35199), out.HostPayout.Amount)
	})

	t.Run("AppliesWeeklyDiscount", func(t *testing.T) {
		out, err := h.Handle(ctx, QuoteStayQuery{
			PropertyID: "prop-1",
			CheckIn:    checkIn,
			CheckOut:   checkIn.AddDate(0, 0, 7),
			Adults:     2,
		})
		require.NoError(t, err)
		assert.Equal(t, 10, out.DiscountPercent)
	})

	t.Run("EnforcesStayRules", func(t *testing.T) {
		_, err := h.Handle(ctx, QuoteStayQuery{
			PropertyID: "prop-1",
			CheckIn:    checkIn,
			CheckOut:   checkIn.AddDate(0, 0, 2),
			Adults:     5,
		})
		assert.ErrorIs(t, err, domainproperty.ErrInvalidStayRequest)
	})

	t.Run("UnknownProperty", func(t *testing.T) {
		_, err := h.Handle(ctx, QuoteStayQuery{
			PropertyID: "prop-404",
			CheckIn:    checkIn,
			CheckOut:   checkIn.AddDate(0, 0, 2),
			Adults:     2,
		})
		assert.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
	})
}
