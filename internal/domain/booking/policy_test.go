package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicyByID(t *testing.T) {
	assert.Equal(t, PolicyFlexible, PolicyByID("flexible"))
	assert.Equal(t, PolicyModerate, PolicyByID("moderate"))
	assert.Equal(t, PolicyStrict, PolicyByID("strict"))

	t.Run("UnknownFallsBackToFlexible", func(t *testing.T) {
		assert.Equal(t, PolicyFlexible, PolicyByID("super-strict"))
		assert.Equal(t, PolicyFlexible, PolicyByID(""))
	})
}

func TestRefund(t *testing.T) {
	createdAt := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	checkIn := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	t.Run("GracePeriodOverridesPolicy", func(t *testing.T) {
		cancelledAt := createdAt.Add(47 * time.Hour)
		assert.Equal(t, 100, PolicyStrict.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("GracePeriodBoundaryInclusive", func(t *testing.T) {
		cancelledAt := createdAt.Add(48 * time.Hour)
		assert.Equal(t, 100, PolicyStrict.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("GraceExpiredFallsThroughToPolicy", func(t *testing.T) {
		// 49h after creation, but still 168h+ before check-in.
		cancelledAt := createdAt.Add(49 * time.Hour)
		assert.Equal(t, 50, PolicyStrict.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("GraceNeverAppliesAfterCheckIn", func(t *testing.T) {
		lateCreated := checkIn.Add(-time.Hour)
		cancelledAt := checkIn.Add(time.Hour)
		assert.Equal(t, 0, PolicyStrict.Refund(lateCreated, checkIn, cancelledAt))
	})

	t.Run("CutoffBoundaryInclusive", func(t *testing.T) {
		cancelledAt := checkIn.Add(-168 * time.Hour)
		assert.Equal(t, 50, PolicyStrict.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("InsideCutoffRefundsNothing", func(t *testing.T) {
		cancelledAt := checkIn.Add(-167 * time.Hour)
		assert.Equal(t, 0, PolicyStrict.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("FlexibleDayBefore", func(t *testing.T) {
		cancelledAt := checkIn.Add(-25 * time.Hour)
		assert.Equal(t, 100, PolicyFlexible.Refund(createdAt, checkIn, cancelledAt))
	})

	t.Run("ModerateFiveDaysBefore", func(t *testing.T) {
		cancelledAt := checkIn.Add(-121 * time.Hour)
		assert.Equal(t, 100, PolicyModerate.Refund(createdAt, checkIn, cancelledAt))
		assert.Equal(t, 0, PolicyModerate.Refund(createdAt, checkIn, checkIn.Add(-119*time.Hour)))
	})
}
