// Package queue implements the transmit engine's send queue (spec.md
// §4.3): five priority lanes, round-robin serviced across the node
// addresses with pending work inside each lane, with sleeping battery
// nodes diverted to a per-node wake-up holding area instead of starving
// the lanes other nodes depend on. Grounded on the teacher's single
// sendASDU/sendRaw channel pair (cs104/client.go), generalized from one
// unprioritized channel into the priority/fairness scheme spec.md
// requires.
package queue

import (
	"sync"

	"github.com/go-zwave/zwave/msg"
)

const numPriorities = 5

// SleepChecker reports whether nodeID is a sleeping battery node that
// should have its non-wake-up traffic held rather than sent immediately.
type SleepChecker func(nodeID uint8) bool

// lane holds one priority level's pending work, round-robin across nodes.
type lane struct {
	byNode map[uint8][]*msg.Msg
	order  []uint8 // round-robin cursor order of node ids with pending work
	pos    int
}

func newLane() *lane {
	return &lane{byNode: make(map[uint8][]*msg.Msg)}
}

func (l *lane) push(m *msg.Msg) {
	q, exists := l.byNode[m.NodeID]
	if !exists {
		l.order = append(l.order, m.NodeID)
	}
	l.byNode[m.NodeID] = append(q, m)
}

func (l *lane) empty() bool {
	return len(l.order) == 0
}

// pop removes and returns the next Msg in round-robin node order, or nil
// if the lane has nothing pending.
func (l *lane) pop() *msg.Msg {
	if len(l.order) == 0 {
		return nil
	}
	for i := 0; i < len(l.order); i++ {
		idx := (l.pos + i) % len(l.order)
		nodeID := l.order[idx]
		q := l.byNode[nodeID]
		if len(q) == 0 {
			continue
		}
		m := q[0]
		l.byNode[nodeID] = q[1:]
		if len(l.byNode[nodeID]) == 0 {
			delete(l.byNode, nodeID)
			l.order = append(l.order[:idx], l.order[idx+1:]...)
			if len(l.order) > 0 {
				l.pos = idx % len(l.order)
			} else {
				l.pos = 0
			}
		} else {
			l.pos = (idx + 1) % len(l.order)
		}
		return m
	}
	return nil
}

// Queue is the driver's outbound send queue.
type Queue struct {
	mu    sync.Mutex
	lanes [numPriorities]*lane

	// wakeup holds traffic for nodes currently reported asleep, keyed by
	// node id, until Release is called for that node.
	wakeup map[uint8][]*msg.Msg

	isAsleep SleepChecker

	notify chan struct{}
}

// New returns an empty Queue. isAsleep may be nil, in which case no node is
// ever considered asleep.
func New(isAsleep SleepChecker) *Queue {
	q := &Queue{
		wakeup: make(map[uint8][]*msg.Msg),
		notify: make(chan struct{}, 1),
	}
	for i := range q.lanes {
		q.lanes[i] = newLane()
	}
	q.isAsleep = isAsleep
	return q
}

// Push enqueues m. WakeUp-priority messages and controller-scope messages
// (NodeID == 0) are never diverted to the sleep holding area; everything
// else bound for a node currently reported asleep is held until Release.
func (q *Queue) Push(m *msg.Msg) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if m.Priority != msg.PriorityWakeUp && m.NodeID != 0 && q.isAsleep != nil && q.isAsleep(m.NodeID) {
		q.wakeup[m.NodeID] = append(q.wakeup[m.NodeID], m)
		return
	}
	q.lanes[m.Priority].push(m)
	q.signal()
}

// Release moves everything held for nodeID's sleep window back into its
// normal priority lanes. Called when the node's WakeUp notification
// arrives.
func (q *Queue) Release(nodeID uint8) {
	q.mu.Lock()
	defer q.mu.Unlock()
	pending := q.wakeup[nodeID]
	delete(q.wakeup, nodeID)
	for _, m := range pending {
		q.lanes[m.Priority].push(m)
	}
	if len(pending) > 0 {
		q.signal()
	}
}

// Pop removes and returns the next Msg to send, scanning priority lanes
// from Immediate to WakeUp and round-robining across nodes within the
// first non-empty lane. It returns nil, false if nothing is pending.
func (q *Queue) Pop() (*msg.Msg, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, l := range q.lanes {
		if l.empty() {
			continue
		}
		if m := l.pop(); m != nil {
			return m, true
		}
	}
	return nil, false
}

// Notify returns a channel that receives a value whenever Push adds work
// to an immediately-sendable lane. The engine's run loop selects on it
// alongside its other events instead of busy-polling Pop.
func (q *Queue) Notify() <-chan struct{} {
	return q.notify
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Len reports the total number of messages currently pending across all
// lanes, excluding anything held in the sleep holding area.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, l := range q.lanes {
		for _, bn := range l.byNode {
			n += len(bn)
		}
	}
	return n
}
