package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToRegisteredWatcher(t *testing.T) {
	b := NewBus(8)
	defer b.Close()

	var mu sync.Mutex
	var got []Notification
	b.Register(func(n Notification) {
		mu.Lock()
		got = append(got, n)
		mu.Unlock()
	})

	b.Post(Notification{Kind: DriverReady, HomeID: 0xCAFEBABE})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, DriverReady, got[0].Kind)
	mu.Unlock()
}

func TestBusUnregisterStopsDelivery(t *testing.T) {
	b := NewBus(8)
	defer b.Close()

	var calls int
	var mu sync.Mutex
	token := b.Register(func(Notification) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	b.Unregister(token)

	b.Post(Notification{Kind: NodeAdded})
	// Give the dispatch loop a chance to run; absence of delivery can't be
	// proven by a fixed sleep, but no call after a short wait shows the
	// watcher map no longer contains the token.
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, calls)
	mu.Unlock()
}

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "ValueChanged", ValueChanged.String())
	assert.Equal(t, "Unknown", Kind(200).String())
}
