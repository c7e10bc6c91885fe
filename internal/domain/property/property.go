package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

// ErrInvalidStayRequest covers every guest-count and stay-length violation.
// The wrapped message names the violated rule for the caller.
var ErrInvalidStayRequest = errors.New("property: invalid stay request")

type PropertyID string
type HostID string

// PricingConfig is the host-curated price sheet for a property.
type PricingConfig struct {
	BasePricePerNight      money.Money
	CleaningFee            money.Money
	WeeklyDiscountPercent  int
	MonthlyDiscountPercent int
}

// Property is a read-only snapshot passed into booking operations.
// The engine never mutates it.
type Property struct {
	ID                   PropertyID
	Host                 HostID
	Title                string
	MaxGuests            int
	MinimumStay          int
	MaximumStay          int // 0 means no upper bound
	InstantBook          bool
	CancellationPolicyID string
	Pricing              PricingConfig
	BlockedDates         []time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

var ErrPropertyNotFound = errors.New("property: not found")

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	Save(ctx context.Context, p *Property) error
}

// ValidateStay enforces the stay-length and guest-count invariants for a
// requested stay. Infants do not count toward the guest limit.
func (p *Property) ValidateStay(r daterange.DateRange, adults, children int) error {
	if adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrInvalidStayRequest)
	}
	if adults+children > p.MaxGuests {
		return fmt.Errorf("%w: %d guests exceed the limit of %d", ErrInvalidStayRequest, adults+children, p.MaxGuests)
	}
	nights := r.Nights()
	if nights < p.MinimumStay {
		return fmt.Errorf("%w: minimum stay is %d nights, requested %d", ErrInvalidStayRequest, p.MinimumStay, nights)
	}
	if p.MaximumStay > 0 && nights > p.MaximumStay {
		return fmt.Errorf("%w: maximum stay is %d nights, requested %d", ErrInvalidStayRequest, p.MaximumStay, nights)
	}
	return nil
}

// BlockedDays returns the host-curated blocked dates normalized to civil days.
func (p *Property) BlockedDays() []time.Time {
	out := make([]time.Time, 0, len(p.BlockedDates))
	for _, d := range p.BlockedDates {
		out = append(out, daterange.Day(d))
	}
	return out
}
