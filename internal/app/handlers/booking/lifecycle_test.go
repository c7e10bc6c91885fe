package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/policies"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperty "staybook/internal/domain/property"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func testRates() domainpricing.FeeRates {
	return domainpricing.FeeRates{GuestServiceBps: 1200, HostServiceBps: 300, TaxBps: 800}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	users  []string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, event string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.users = append(n.users, userID)
	return nil
}

func setupStore(t *testing.T, instantBook bool) memory.Factory {
	t.Helper()
	store := memory.NewStore()
	p := &domainproperty.Property{
		ID:                   "prop-1",
		Host:                 "host-1",
		Title:                "Sea View Loft",
		MaxGuests:            4,
		MinimumStay:          2,
		MaximumStay:          30,
		InstantBook:          instantBook,
		CancellationPolicyID: "moderate",
		Pricing: domainproperty.PricingConfig{
			BasePricePerNight:      money.Must(10000, "USD"),
			CleaningFee:            money.Must(5000, "USD"),
			WeeklyDiscountPercent:  10,
			MonthlyDiscountPercent: 20,
		},
	}
	require.NoError(t, store.Properties().Save(context.Background(), p))
	return memory.Factory{Store: store}
}

func requestCommand(id string) RequestBookingCommand {
	return RequestBookingCommand{
		CommandID:  id,
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		CheckIn:    time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC),
		Adults:     2,
	}
}

func TestRequestBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("ManualApprovalStaysPending", func(t *testing.T) {
		factory := setupStore(t, false)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		result, err := h.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)
		assert.Equal(t, "PENDING", result.Status)

		b, err := factory.Store.Bookings().ByID(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusPending, b.Status)
		assert.Equal(t, int64(66528), b.Price.Total.Amount)
		assert.Equal(t, "moderate", b.PolicyID)
	})

	t.Run("PendingRequestsDoNotBlockEachOther", func(t *testing.T) {
		factory := setupStore(t, false)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		_, err := h.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)

		second := requestCommand("bk-2")
		second.GuestID = "guest-2"
		result, err := h.Handle(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", result.Status)
	})

	t.Run("InstantBookConfirmsAndReserves", func(t *testing.T) {
		factory := setupStore(t, true)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		result, err := h.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", result.Status)

		second := requestCommand("bk-2")
		second.GuestID = "guest-2"
		_, err = h.Handle(ctx, second)
		var conflict *domainavailability.ConflictError
		require.ErrorAs(t, err, &conflict)
		require.Len(t, conflict.Conflicts, 1)
		assert.Equal(t, "[2026-07-10, 2026-07-15)", conflict.Conflicts[0].String())
	})

	t.Run("StayRuleViolations", func(t *testing.T) {
		factory := setupStore(t, false)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		tooShort := requestCommand("bk-1")
		tooShort.CheckOut = tooShort.CheckIn.AddDate(0, 0, 1)
		_, err := h.Handle(ctx, tooShort)
		assert.ErrorIs(t, err, domainproperty.ErrInvalidStayRequest)

		tooMany := requestCommand("bk-2")
		tooMany.Adults = 3
		tooMany.Children = 2
		_, err = h.Handle(ctx, tooMany)
		assert.ErrorIs(t, err, domainproperty.ErrInvalidStayRequest)

		noAdults := requestCommand("bk-3")
		noAdults.Adults = 0
		noAdults.Infants = 1
		_, err = h.Handle(ctx, noAdults)
		assert.ErrorIs(t, err, domainproperty.ErrInvalidStayRequest)
	})

	t.Run("InfantsDoNotCount", func(t *testing.T) {
		factory := setupStore(t, false)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		cmd := requestCommand("bk-1")
		cmd.Adults = 3
		cmd.Children = 1
		cmd.Infants = 2
		_, err := h.Handle(ctx, cmd)
		assert.NoError(t, err)
	})

	t.Run("UnknownProperty", func(t *testing.T) {
		factory := setupStore(t, false)
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}

		cmd := requestCommand("bk-1")
		cmd.PropertyID = "prop-404"
		_, err := h.Handle(ctx, cmd)
		assert.ErrorIs(t, err, domainproperty.ErrPropertyNotFound)
	})

	t.Run("NotifiesHostOnRequest", func(t *testing.T) {
		factory := setupStore(t, false)
		notifier := &recordingNotifier{}
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: notifier, Now: fixedNow}

		_, err := h.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)
		require.Len(t, notifier.events, 1)
		assert.Equal(t, "booking.requested", notifier.events[0])
		assert.Equal(t, "host-1", notifier.users[0])
	})
}

func TestAcceptBooking(t *testing.T) {
	ctx := context.Background()

	pendingBooking := func(t *testing.T, factory memory.Factory, id, guestID string) {
		t.Helper()
		h := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}
		cmd := requestCommand(id)
		cmd.GuestID = guestID
		_, err := h.Handle(ctx, cmd)
		require.NoError(t, err)
	}

	t.Run("AcceptConfirmsAndReserves", func(t *testing.T) {
		factory := setupStore(t, false)
		pendingBooking(t, factory, "bk-1", "guest-1")
		h := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		result, err := h.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: "bk-1"})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", result.Status)

		calendar, err := factory.Store.Calendars().Calendar(ctx, "prop-1")
		require.NoError(t, err)
		ok, _ := calendar.IsAvailable(requestRange(t))
		assert.False(t, ok)
	})

	t.Run("WrongHost", func(t *testing.T) {
		factory := setupStore(t, false)
		pendingBooking(t, factory, "bk-1", "guest-1")
		h := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		_, err := h.Handle(ctx, AcceptBookingCommand{HostID: "host-2", BookingID: "bk-1"})
		assert.ErrorIs(t, err, ErrBookingNotOwned)
	})

	t.Run("SecondOverlappingAcceptFails", func(t *testing.T) {
		factory := setupStore(t, false)
		pendingBooking(t, factory, "bk-1", "guest-1")
		pendingBooking(t, factory, "bk-2", "guest-2")
		h := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		_, err := h.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: "bk-1"})
		require.NoError(t, err)

		_, err = h.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: "bk-2"})
		assert.ErrorIs(t, err, domainavailability.ErrDateUnavailable)

		// The losing request is still pending, not cancelled.
		b, err := factory.Store.Bookings().ByID(ctx, "bk-2")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusPending, b.Status)
	})

	t.Run("AcceptDeclinedFails", func(t *testing.T) {
		factory := setupStore(t, false)
		pendingBooking(t, factory, "bk-1", "guest-1")
		decline := &DeclineBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err := decline.Handle(ctx, DeclineBookingCommand{HostID: "host-1", BookingID: "bk-1"})
		require.NoError(t, err)

		h := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err = h.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: "bk-1"})
		assert.ErrorIs(t, err, domainbooking.ErrIllegalTransition)
	})

	t.Run("ConcurrentAcceptsConfirmExactlyOne", func(t *testing.T) {
		factory := setupStore(t, false)
		pendingBooking(t, factory, "bk-1", "guest-1")
		pendingBooking(t, factory, "bk-2", "guest-2")
		h := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, id := range []string{"bk-1", "bk-2"} {
			wg.Add(1)
			go func(bookingID string) {
				defer wg.Done()
				_, err := h.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: bookingID})
				results <- err
			}(id)
		}
		wg.Wait()
		close(results)

		var confirmed, conflicted int
		for err := range results {
			if err == nil {
				confirmed++
				continue
			}
			assert.ErrorIs(t, err, domainavailability.ErrDateUnavailable)
			conflicted++
		}
		assert.Equal(t, 1, confirmed)
		assert.Equal(t, 1, conflicted)
	})
}

func requestRange(t *testing.T) daterange.DateRange {
	t.Helper()
	cmd := requestCommand("")
	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	require.NoError(t, err)
	return dr
}

func TestDeclineBooking(t *testing.T) {
	ctx := context.Background()
	factory := setupStore(t, false)
	req := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}
	_, err := req.Handle(ctx, requestCommand("bk-1"))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	h := &DeclineBookingHandler{UoWFactory: factory, Notifier: notifier, Now: fixedNow}
	result, err := h.Handle(ctx, DeclineBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", result.Status)

	b, err := factory.Store.Bookings().ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.NotNil(t, b.Cancellation)
	assert.Equal(t, 100, b.Cancellation.RefundPercent)
	assert.Equal(t, b.Price.Total.Amount, b.Cancellation.RefundAmount)

	// Declines notify only the guest.
	require.Len(t, notifier.users, 1)
	assert.Equal(t, "guest-1", notifier.users[0])

	_, err = h.Handle(ctx, DeclineBookingCommand{HostID: "host-1", BookingID: "bk-1"})
	assert.ErrorIs(t, err, domainbooking.ErrIllegalTransition)
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	confirmedBooking := func(t *testing.T, factory memory.Factory) {
		t.Helper()
		req := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err := req.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)
		accept := &AcceptBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err = accept.Handle(ctx, AcceptBookingCommand{HostID: "host-1", BookingID: "bk-1"})
		require.NoError(t, err)
	}

	t.Run("GuestCancelReleasesCalendar", func(t *testing.T) {
		factory := setupStore(t, false)
		confirmedBooking(t, factory)
		h := &CancelBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		result, err := h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "guest-1", Actor: domainbooking.ActorGuest})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", result.Status)
		// Cancelled inside the 48h grace window: full refund.
		assert.Equal(t, 100, result.RefundPercent)

		calendar, err := factory.Store.Calendars().Calendar(ctx, "prop-1")
		require.NoError(t, err)
		ok, _ := calendar.IsAvailable(requestRange(t))
		assert.True(t, ok)
	})

	t.Run("LateCancelRefundsNothing", func(t *testing.T) {
		factory := setupStore(t, false)
		confirmedBooking(t, factory)
		lateNow := time.Date(2026, time.July, 9, 12, 0, 0, 0, time.UTC)
		h := &CancelBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: func() time.Time { return lateNow }}

		result, err := h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "guest-1", Actor: domainbooking.ActorGuest})
		require.NoError(t, err)
		assert.Equal(t, 0, result.RefundPercent)
		assert.Equal(t, int64(0), result.RefundAmount)
	})

	t.Run("PendingCancelSkipsCalendar", func(t *testing.T) {
		factory := setupStore(t, false)
		req := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err := req.Handle(ctx, requestCommand("bk-1"))
		require.NoError(t, err)

		h := &CancelBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}
		result, err := h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "guest-1", Actor: domainbooking.ActorGuest})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", result.Status)
	})

	t.Run("StrangerCannotCancel", func(t *testing.T) {
		factory := setupStore(t, false)
		confirmedBooking(t, factory)
		h := &CancelBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}

		_, err := h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "guest-999", Actor: domainbooking.ActorGuest})
		assert.ErrorIs(t, err, ErrActorNotParty)

		_, err = h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "host-999", Actor: domainbooking.ActorHost})
		assert.ErrorIs(t, err, ErrActorNotParty)
	})

	t.Run("HostCancelFullRefund", func(t *testing.T) {
		factory := setupStore(t, false)
		confirmedBooking(t, factory)
		// Outside grace, outside cutoff: the moderate policy still pays 100%.
		h := &CancelBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: func() time.Time {
			return time.Date(2026, time.June, 20, 12, 0, 0, 0, time.UTC)
		}}

		result, err := h.Handle(ctx, CancelBookingCommand{BookingID: "bk-1", ActorID: "host-1", Actor: domainbooking.ActorHost})
		require.NoError(t, err)
		assert.Equal(t, 100, result.RefundPercent)
	})
}

func TestCompleteBooking(t *testing.T) {
	ctx := context.Background()
	factory := setupStore(t, true)
	req := &RequestBookingHandler{UoWFactory: factory, Rates: testRates(), Notifier: policies.NopNotifier{}, Now: fixedNow}
	_, err := req.Handle(ctx, requestCommand("bk-1"))
	require.NoError(t, err)

	afterCheckout := time.Date(2026, time.July, 16, 0, 0, 0, 0, time.UTC)
	h := &CompleteBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: func() time.Time { return afterCheckout }}

	t.Run("BeforeCheckoutFails", func(t *testing.T) {
		early := &CompleteBookingHandler{UoWFactory: factory, Notifier: policies.NopNotifier{}, Now: fixedNow}
		_, err := early.Handle(ctx, CompleteBookingCommand{BookingID: "bk-1"})
		assert.ErrorIs(t, err, domainbooking.ErrIllegalTransition)
	})

	t.Run("PersistsCompletion", func(t *testing.T) {
		result, err := h.Handle(ctx, CompleteBookingCommand{BookingID: "bk-1"})
		require.NoError(t, err)
		assert.Equal(t, "COMPLETED", result.Status)

		b, err := factory.Store.Bookings().ByID(ctx, "bk-1")
		require.NoError(t, err)
		assert.Equal(t, domainbooking.StatusCompleted, b.Status)
	})
}
