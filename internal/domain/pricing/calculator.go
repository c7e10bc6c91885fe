package pricing

import (
	"errors"
	"fmt"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrInvalidPricingInput flags a malformed property pricing config. It is a
// data-integrity fault: logged and rejected, never retried.
var ErrInvalidPricingInput = errors.New("pricing: invalid pricing input")

const (
	weeklyTierNights  = 7
	monthlyTierNights = 28
)

// FeeRates carries platform fee and tax rates in basis points so quotes are
// integer arithmetic end to end. The constants themselves are configuration.
type FeeRates struct {
	GuestServiceBps int64
	HostServiceBps  int64
	TaxBps          int64
}

func (r FeeRates) validate() error {
	for _, bps := range []int64{r.GuestServiceBps, r.HostServiceBps, r.TaxBps} {
		if bps < 0 || bps > 10_000 {
			return fmt.Errorf("%w: rate %d bps outside [0, 10000]", ErrInvalidPricingInput, bps)
		}
	}
	return nil
}

// QuoteInput is everything a quote depends on; two identical inputs always
// produce identical breakdowns.
type QuoteInput struct {
	BasePricePerNight      money.Money
	CleaningFee            money.Money
	WeeklyDiscountPercent  int
	MonthlyDiscountPercent int
	Range                  daterange.DateRange
	Rates                  FeeRates
}

// Breakdown is the itemized price of a stay, computed once at booking
// creation and immutable thereafter.
type Breakdown struct {
	Nights          int
	NightlyRate     money.Money // effective average rate after discount, display only
	Subtotal        money.Money
	DiscountPercent int
	DiscountAmount  money.Money
	CleaningFee     money.Money
	GuestServiceFee money.Money
	Tax             money.Money
	Total           money.Money
	HostPayout      money.Money
}

// Quote computes the itemized price for a stay. All arithmetic runs in minor
// currency units; fractional results round half to even.
func Quote(in QuoteInput) (Breakdown, error) {
	nights := in.Range.Nights()
	if nights < 1 {
		return Breakdown{}, fmt.Errorf("%w: stay must be at least one night", ErrInvalidPricingInput)
	}
	if in.BasePricePerNight.Amount < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative base price", ErrInvalidPricingInput)
	}
	if in.CleaningFee.Amount < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative cleaning fee", ErrInvalidPricingInput)
	}
	if err := in.Rates.validate(); err != nil {
		return Breakdown{}, err
	}
	for _, pct := range []int{in.WeeklyDiscountPercent, in.MonthlyDiscountPercent} {
		if pct < 0 || pct > 100 {
			return Breakdown{}, fmt.Errorf("%w: discount %d%% outside [0, 100]", ErrInvalidPricingInput, pct)
		}
	}
	currency := in.BasePricePerNight.Currency
	cleaning := in.CleaningFee
	if cleaning.Currency == "" {
		cleaning.Currency = currency
	}
	if cleaning.Currency != currency {
		return Breakdown{}, fmt.Errorf("%w: cleaning fee currency mismatch", ErrInvalidPricingInput)
	}

	subtotal := in.BasePricePerNight.Multiply(int64(nights))

	// Weekly and monthly discounts never stack; the longer-stay tier wins outright.
	discountPercent := 0
	switch {
	case nights >= monthlyTierNights:
		discountPercent = in.MonthlyDiscountPercent
	case nights >= weeklyTierNights:
		discountPercent = in.WeeklyDiscountPercent
	}
	discountAmount := subtotal.PercentFraction(int64(discountPercent))
	discounted, err := subtotal.Sub(discountAmount)
	if err != nil {
		return Breakdown{}, err
	}

	feeBase, err := discounted.Add(cleaning)
	if err != nil {
		return Breakdown{}, err
	}
	guestFee := feeBase.BpsFraction(in.Rates.GuestServiceBps)

	taxBase, err := feeBase.Add(guestFee)
	if err != nil {
		return Breakdown{}, err
	}
	tax := taxBase.BpsFraction(in.Rates.TaxBps)

	total, err := taxBase.Add(tax)
	if err != nil {
		return Breakdown{}, err
	}

	// The host fee is levied on the gross total, not the subtotal.
	payout := total.BpsFraction(10_000 - in.Rates.HostServiceBps)

	return Breakdown{
		Nights:          nights,
		NightlyRate:     discounted.DivideBy(int64(nights)),
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		CleaningFee:     cleaning,
		GuestServiceFee: guestFee,
		Tax:             tax,
		Total:           total,
		HostPayout:      payout,
	}, nil
}
