// Package poll implements the polling auxiliary thread of spec.md §5/§8
// scenario 6: a round-robin cursor over every value with non-zero poll
// intensity, ticked by go-co-op/gocron/v2 the same way the teacher's wider
// corpus schedules its periodic background workers
// (cc-backend/internal/taskmanager's s.NewJob(gocron.DurationJob(...))
// idiom), generalized from named one-off workers to a single recurring
// tick that fires one Get per call in round-robin order.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/go-zwave/zwave/clog"
)

// Target is one value eligible for polling.
type Target struct {
	NodeID   uint8
	ClassID  uint8
	Instance uint8
	Index    uint8
	// Intensity is the number of this target's round-robin turns between
	// successive refreshes; 1 polls on every turn, 2 on every other turn,
	// etc. Each tick gives one target its turn.
	Intensity uint32
}

// Requester issues the Get for one poll target. Errors are logged, never
// fatal to the poll thread.
type Requester func(t Target) error

// Ready reports whether polling should currently run at all — spec.md
// §4.4 pauses polling while any node has not yet reached StageComplete.
type Ready func() bool

// Thread is the polling auxiliary thread.
type Thread struct {
	clog.Clog

	mu      sync.Mutex
	targets []Target
	cursor  int
	ticks   map[int]uint32 // index into targets -> turns since last poll

	requester Requester
	ready     Ready

	scheduler gocron.Scheduler
	paused    atomic.Bool
}

// New returns a Thread that calls requester once per tick, in round-robin
// order across registered targets, at the given period.
func New(period time.Duration, requester Requester, ready Ready) (*Thread, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	t := &Thread{
		Clog:      clog.NewLogger("poll => "),
		ticks:     make(map[int]uint32),
		requester: requester,
		ready:     ready,
		scheduler: s,
	}
	_, err = s.NewJob(
		gocron.DurationJob(period),
		gocron.NewTask(t.tick),
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Start begins ticking.
func (t *Thread) Start() { t.scheduler.Start() }

// Stop halts the scheduler.
func (t *Thread) Stop(ctx context.Context) error {
	return t.scheduler.Shutdown()
}

// Enable registers target for polling, or updates its intensity if
// already registered.
func (t *Thread) Enable(target Target) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.targets {
		if existing.NodeID == target.NodeID && existing.ClassID == target.ClassID &&
			existing.Instance == target.Instance && existing.Index == target.Index {
			t.targets[i].Intensity = target.Intensity
			return
		}
	}
	t.targets = append(t.targets, target)
}

// Disable removes a target from the poll rotation.
func (t *Thread) Disable(nodeID, classID, instance, index uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, existing := range t.targets {
		if existing.NodeID == nodeID && existing.ClassID == classID &&
			existing.Instance == instance && existing.Index == index {
			t.targets = append(t.targets[:i], t.targets[i+1:]...)
			// Removing index i shifts every target after it down by one, so
			// ticks (keyed by index) must be reindexed along with it instead
			// of just dropping entry i — otherwise every later target's
			// countdown is silently swapped with its neighbor's.
			reindexed := make(map[int]uint32, len(t.ticks))
			for idx, count := range t.ticks {
				switch {
				case idx < i:
					reindexed[idx] = count
				case idx > i:
					reindexed[idx-1] = count
				}
			}
			t.ticks = reindexed
			if t.cursor > i {
				t.cursor--
			}
			if len(t.targets) > 0 {
				t.cursor %= len(t.targets)
			} else {
				t.cursor = 0
			}
			return
		}
	}
}

// tick advances the round-robin cursor by one target and issues a Get if
// that target's intensity countdown has reached zero. A single call
// services exactly one target, matching spec.md §8 scenario 6's fairness
// requirement across many targets of equal intensity.
func (t *Thread) tick() {
	if t.ready != nil && !t.ready() {
		return
	}
	t.mu.Lock()
	if len(t.targets) == 0 {
		t.mu.Unlock()
		return
	}
	idx := t.cursor
	t.cursor = (t.cursor + 1) % len(t.targets)
	target := t.targets[idx]

	t.ticks[idx]++
	due := target.Intensity == 0 || t.ticks[idx] >= target.Intensity
	if due {
		t.ticks[idx] = 0
	}
	t.mu.Unlock()

	if !due {
		return
	}
	if err := t.requester(target); err != nil {
		t.Warn("poll request failed for node=%d class=0x%02x: %v", target.NodeID, target.ClassID, err)
	}
}
