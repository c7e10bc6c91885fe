package booking

import "time"

// gracePeriod is the window after booking creation during which cancelling
// before check-in is always fully refunded, regardless of policy.
const gracePeriod = 48 * time.Hour

// CancellationPolicy is one entry of the fixed, non-editable policy catalog.
type CancellationPolicy struct {
	ID            string
	RefundPercent int
	// CutoffHours is how many hours before check-in a cancellation must
	// land to earn RefundPercent; later cancellations refund nothing.
	CutoffHours int
}

var (
	PolicyFlexible = CancellationPolicy{ID: "flexible", RefundPercent: 100, CutoffHours: 24}
	PolicyModerate = CancellationPolicy{ID: "moderate", RefundPercent: 100, CutoffHours: 120}
	PolicyStrict   = CancellationPolicy{ID: "strict", RefundPercent: 50, CutoffHours: 168}
)

// PolicyByID resolves a catalog entry. Properties with an unknown or unset
// policy id fall back to flexible, mirroring the marketplace default of
// never penalizing the guest for host misconfiguration.
func PolicyByID(id string) CancellationPolicy {
	switch id {
	case PolicyModerate.ID:
		return PolicyModerate
	case PolicyStrict.ID:
		return PolicyStrict
	default:
		return PolicyFlexible
	}
}

// Refund returns the refund percentage for a cancellation, evaluating the
// grace-period override before the policy cutoff.
func (p CancellationPolicy) Refund(createdAt, checkIn, cancelledAt time.Time) int {
	if cancelledAt.Sub(createdAt) <= gracePeriod && cancelledAt.Before(checkIn) {
		return 100
	}
	hoursUntilCheckIn := checkIn.Sub(cancelledAt).Hours()
	if hoursUntilCheckIn >= float64(p.CutoffHours) {
		return p.RefundPercent
	}
	return 0
}
