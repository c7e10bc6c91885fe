package dto

import (
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
)

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

func MapPriceBreakdown(p domainpricing.Breakdown) PriceBreakdownDTO {
	return PriceBreakdownDTO{
		Nights:          p.Nights,
		NightlyRate:     MapMoney(p.NightlyRate),
		Subtotal:        MapMoney(p.Subtotal),
		DiscountPercent: p.DiscountPercent,
		DiscountAmount:  MapMoney(p.DiscountAmount),
		CleaningFee:     MapMoney(p.CleaningFee),
		GuestServiceFee: MapMoney(p.GuestServiceFee),
		Tax:             MapMoney(p.Tax),
		Total:           MapMoney(p.Total),
		HostPayout:      MapMoney(p.HostPayout),
	}
}
