package live_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/batchbook/internal/live"
)

func TestHub_NotifyReachesSubscribersOfKind(t *testing.T) {
	hub := live.NewHub()

	sales, cancelSales := hub.Subscribe(live.KindSales)
	defer cancelSales()

	batches, cancelBatches := hub.Subscribe(live.KindBatches)
	defer cancelBatches()

	hub.Notify(context.Background(), live.KindSales)

	select {
	case <-sales:
	default:
		t.Fatal("sales subscriber was not signalled")
	}

	select {
	case <-batches:
		t.Fatal("batches subscriber should not be signalled")
	default:
	}
}

func TestHub_CoalescesPendingSignals(t *testing.T) {
	hub := live.NewHub()

	ch, cancel := hub.Subscribe(live.KindExpenses)
	defer cancel()

	for range 5 {
		hub.Notify(context.Background(), live.KindExpenses)
	}

	<-ch

	select {
	case <-ch:
		t.Fatal("expected a single coalesced signal")
	default:
	}
}

func TestHub_CancelReleasesSubscription(t *testing.T) {
	hub := live.NewHub()

	ch, cancel := hub.Subscribe(live.KindBatches)
	assert.Equal(t, 1, hub.Subscribers(live.KindBatches))

	cancel()
	cancel()

	assert.Equal(t, 0, hub.Subscribers(live.KindBatches))

	_, open := <-ch
	assert.False(t, open)

	hub.Notify(context.Background(), live.KindBatches)
}

func TestKind_Valid(t *testing.T) {
	assert.True(t, live.KindSales.Valid())
	assert.False(t, live.Kind("users").Valid())
}
