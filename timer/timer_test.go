package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleFiresAtDeadline(t *testing.T) {
	th := New()
	defer th.Stop()

	fired := make(chan struct{}, 1)
	th.After(20*time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("action never fired")
	}
}

func TestScheduleFiresInDeadlineOrderAcrossMultipleEntries(t *testing.T) {
	th := New()
	defer th.Stop()

	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(3)
	record := func(n int) Action {
		return func() {
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			wg.Done()
		}
	}

	th.After(60*time.Millisecond, record(3))
	th.After(10*time.Millisecond, record(1))
	th.After(30*time.Millisecond, record(2))

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for all actions")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestCancelPreventsAction(t *testing.T) {
	th := New()
	defer th.Stop()

	fired := false
	cancel := th.After(10*time.Millisecond, func() { fired = true })
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired)
}

func TestSchedulingEarlierDeadlinePreemptsCurrentSleep(t *testing.T) {
	th := New()
	defer th.Stop()

	fired := make(chan time.Time, 1)
	th.After(time.Hour, func() {})
	start := time.Now()
	th.After(15*time.Millisecond, func() { fired <- time.Now() })

	select {
	case at := <-fired:
		require.WithinDuration(t, start.Add(15*time.Millisecond), at, 200*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("earlier deadline never preempted the long sleep")
	}
}
