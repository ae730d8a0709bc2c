package ping

import (
	"context"
	"testing"
	"time"

	"easyncd/core/domain"
	in "easyncd/core/port/in"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPingWakesOnNotify(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	svc := NewService(bus)

	done := make(chan domain.PingResult, 1)
	go func() {
		res, err := svc.Ping(context.Background(), in.PingRequest{
			UserID:      1,
			Heartbeat:   60 * time.Second,
			Collections: []string{"1"},
		})
		require.NoError(t, err)
		done <- res
	}()

	time.Sleep(20 * time.Millisecond)
	bus.Notify(1, "1")

	select {
	case res := <-done:
		require.Equal(t, domain.PingChangesAvailable, res.Status)
		require.Contains(t, res.Changed, "1")
	case <-time.After(2 * time.Second):
		t.Fatal("ping did not wake on notify")
	}
}

func TestSubscriptionIgnoresNotifyForUnrelatedCollection(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	sub := bus.subscribe(1, []string{"1"})
	defer bus.unsubscribe(sub)

	bus.Notify(1, "2") // different collection, must not signal this subscriber

	select {
	case <-sub.signal:
		t.Fatal("subscription woke for a collection it does not watch")
	default:
	}
}

func TestPingRejectsTooManyFolders(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	svc := NewService(bus)
	folders := make([]string, domain.MaxPingFolders+1)
	for i := range folders {
		folders[i] = "c"
	}
	res, err := svc.Ping(context.Background(), in.PingRequest{UserID: 1, Heartbeat: time.Minute, Collections: folders})
	require.NoError(t, err)
	require.Equal(t, domain.PingTooManyFolders, res.Status)
}

func TestNotifyIsNoOpWithoutSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	require.NotPanics(t, func() { bus.Notify(42, "1") })
}
