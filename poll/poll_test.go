package poll

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickRoundRobinsAcrossEqualIntensityTargets(t *testing.T) {
	var mu sync.Mutex
	counts := map[uint8]int{}

	th, err := New(time.Hour, func(target Target) error {
		mu.Lock()
		counts[target.NodeID]++
		mu.Unlock()
		return nil
	}, func() bool { return true })
	require.NoError(t, err)

	th.Enable(Target{NodeID: 5, Intensity: 1})
	th.Enable(Target{NodeID: 7, Intensity: 1})

	for i := 0; i < 10; i++ {
		th.tick()
	}

	mu.Lock()
	defer mu.Unlock()
	diff := counts[5] - counts[7]
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, 1)
}

func TestTickSkippedWhenNotReady(t *testing.T) {
	called := false
	th, err := New(time.Hour, func(Target) error {
		called = true
		return nil
	}, func() bool { return false })
	require.NoError(t, err)

	th.Enable(Target{NodeID: 1, Intensity: 1})
	th.tick()

	assert.False(t, called)
}

func TestDisableRemovesTargetFromRotation(t *testing.T) {
	var calls []uint8
	th, err := New(time.Hour, func(target Target) error {
		calls = append(calls, target.NodeID)
		return nil
	}, func() bool { return true })
	require.NoError(t, err)

	th.Enable(Target{NodeID: 1, Intensity: 1})
	th.Enable(Target{NodeID: 2, Intensity: 1})
	th.Disable(1, 0, 0, 0)

	th.tick()
	th.tick()

	for _, n := range calls {
		assert.Equal(t, uint8(2), n)
	}
}
