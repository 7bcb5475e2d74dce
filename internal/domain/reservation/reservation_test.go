package reservation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivehub/service-booking/internal/domain/pricing"
	"github.com/drivehub/service-booking/internal/domain/shared"
)

func newTestReservation(t *testing.T, holdFor time.Duration) *Reservation {
	t.Helper()
	from, err := shared.ParseDate("2024-06-01")
	require.NoError(t, err)
	period, err := shared.NewDateRange(from, from.AddDays(3))
	require.NoError(t, err)

	breakdown := pricing.Breakdown{
		RentalDays: 3,
		BaseCents:  15000,
		TaxCents:   3600,
		TotalCents: 18600,
	}
	customer := Customer{FirstName: "Maija", LastName: "Virtanen", Email: "maija@example.com"}

	return NewReservation(
		uuid.New(), uuid.New(), uuid.New(),
		period,
		"10:00", "10:00",
		uuid.New(), uuid.New(),
		customer,
		breakdown,
		5000,
		nil, nil, nil,
		holdFor,
	)
}

func TestNewReservation(t *testing.T) {
	r := newTestReservation(t, 30*time.Minute)

	assert.Equal(t, StatusPending, r.Status())
	assert.Equal(t, PaymentUnpaid, r.PaymentStatus())
	assert.Equal(t, int64(1), r.Version())
	assert.WithinDuration(t, time.Now().UTC().Add(30*time.Minute), r.ExpiresAt(), 5*time.Second)
	assert.Equal(t, int64(18600), r.AmountRemainingCents())
}

func TestBookingNumber(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")
	num := BookingNumber(id)

	assert.Equal(t, "BK-A1B2C3D4", num)
	assert.True(t, strings.HasPrefix(num, "BK-"))
	assert.Len(t, num, 11)
}

func TestRecordPayment(t *testing.T) {
	t.Run("deposit confirms", func(t *testing.T) {
		r := newTestReservation(t, time.Hour)
		require.NoError(t, r.RecordPayment(5000))

		assert.Equal(t, StatusConfirmed, r.Status())
		assert.Equal(t, PaymentDepositPaid, r.PaymentStatus())
		assert.Equal(t, int64(13600), r.AmountRemainingCents())
	})

	t.Run("payments accumulate to paid", func(t *testing.T) {
		r := newTestReservation(t, time.Hour)
		require.NoError(t, r.RecordPayment(5000))
		require.NoError(t, r.RecordPayment(13600))

		assert.Equal(t, PaymentPaid, r.PaymentStatus())
		assert.Zero(t, r.AmountRemainingCents())
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		r := newTestReservation(t, time.Hour)
		assert.Error(t, r.RecordPayment(0))
	})

	t.Run("rejects payment on cancelled", func(t *testing.T) {
		r := newTestReservation(t, time.Hour)
		require.NoError(t, r.Cancel())
		assert.Error(t, r.RecordPayment(5000))
	})
}

func TestLifecycleTransitions(t *testing.T) {
	r := newTestReservation(t, time.Hour)

	// pending → confirmed → in_progress → completed
	require.NoError(t, r.RecordPayment(18600))
	require.NoError(t, r.StartRental())
	assert.Equal(t, StatusInProgress, r.Status())
	require.NoError(t, r.Complete())
	assert.Equal(t, StatusCompleted, r.Status())

	// no transitions out of completed
	assert.Error(t, r.Cancel())
	assert.Error(t, r.StartRental())
}

func TestInvalidTransitions(t *testing.T) {
	r := newTestReservation(t, time.Hour)

	assert.Error(t, r.StartRental(), "cannot pick up an unconfirmed reservation")
	assert.Error(t, r.Complete(), "cannot return a vehicle never picked up")
	assert.Error(t, r.MarkNoShow(), "no-show requires a confirmed reservation")
}

func TestCancelBeforePickup(t *testing.T) {
	r := newTestReservation(t, time.Hour)
	require.NoError(t, r.RecordPayment(5000))
	require.NoError(t, r.Cancel())
	assert.Equal(t, StatusCancelled, r.Status())
}

func TestExpire(t *testing.T) {
	t.Run("past hold window", func(t *testing.T) {
		r := newTestReservation(t, -time.Minute)
		now := time.Now().UTC()

		assert.True(t, r.IsExpired(now))
		require.NoError(t, r.Expire(now))
		assert.Equal(t, StatusCancelled, r.Status())
	})

	t.Run("not yet expired", func(t *testing.T) {
		r := newTestReservation(t, time.Hour)
		assert.False(t, r.IsExpired(time.Now().UTC()))
		assert.Error(t, r.Expire(time.Now().UTC()))
	})

	t.Run("confirmed never expires", func(t *testing.T) {
		r := newTestReservation(t, -time.Minute)
		require.NoError(t, r.RecordPayment(18600))
		assert.False(t, r.IsExpired(time.Now().UTC()))
		assert.Error(t, r.Expire(time.Now().UTC()))
	})
}

func TestBlockingStatuses(t *testing.T) {
	assert.True(t, StatusPending.Blocking())
	assert.True(t, StatusConfirmed.Blocking())
	assert.True(t, StatusInProgress.Blocking())
	assert.False(t, StatusCompleted.Blocking())
	assert.False(t, StatusCancelled.Blocking())
	assert.False(t, StatusNoShow.Blocking())
}

func TestNewBookedBlock(t *testing.T) {
	r := newTestReservation(t, time.Hour)
	block := NewBookedBlock(r)

	assert.Equal(t, r.TenantID(), block.TenantID)
	assert.Equal(t, r.VehicleID(), block.VehicleID)
	require.NotNil(t, block.ReservationID)
	assert.Equal(t, r.ID(), *block.ReservationID)
	assert.Equal(t, r.Period(), block.Period)
	assert.Equal(t, BlockReasonBooked, block.Reason)
}
