package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_HappyPath(t *testing.T) {
	chain := []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusShipping, StatusDelivered}
	for i := 0; i < len(chain)-1; i++ {
		assert.True(t, CanTransition(chain[i], chain[i+1]), "%s -> %s", chain[i], chain[i+1])
	}
	assert.True(t, CanTransition(StatusPendingPayment, StatusConfirmed))
}

func TestCanTransition_Cancellation(t *testing.T) {
	for _, from := range []Status{StatusPendingPayment, StatusPending, StatusConfirmed, StatusPreparing} {
		assert.True(t, CanTransition(from, StatusCancelled), "from %s", from)
	}
	assert.False(t, CanTransition(StatusShipping, StatusCancelled))
	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
}

func TestCanTransition_Terminals(t *testing.T) {
	for to := range validNext {
		assert.False(t, CanTransition(StatusDelivered, to), "DELIVERED -> %s", to)
		assert.False(t, CanTransition(StatusRefunded, to), "REFUNDED -> %s", to)
	}
	assert.True(t, CanTransition(StatusCancelled, StatusRefunded))
}

func TestCanTransition_NoSkipping(t *testing.T) {
	assert.False(t, CanTransition(StatusPending, StatusPreparing))
	assert.False(t, CanTransition(StatusConfirmed, StatusShipping))
	assert.False(t, CanTransition(StatusPreparing, StatusDelivered))
	assert.False(t, CanTransition(StatusDelivered, StatusPending))
}

func TestNextFulfillment(t *testing.T) {
	next, ok := NextFulfillment(StatusConfirmed)
	assert.True(t, ok)
	assert.Equal(t, StatusPreparing, next)

	next, ok = NextFulfillment(StatusShipping)
	assert.True(t, ok)
	assert.Equal(t, StatusDelivered, next)

	_, ok = NextFulfillment(StatusPending)
	assert.False(t, ok)
	_, ok = NextFulfillment(StatusDelivered)
	assert.False(t, ok)
}

func TestStatusOpen(t *testing.T) {
	assert.True(t, StatusPending.Open())
	assert.True(t, StatusShipping.Open())
	assert.False(t, StatusPendingPayment.Open())
	assert.False(t, StatusDelivered.Open())
	assert.False(t, StatusCancelled.Open())
}
