// Package node models one Z-Wave node as tracked by the driver: its
// protocol-level identity, its command-class support table, its value
// registry, and the ordered discovery pipeline of spec.md §4.4 that
// advances it from first contact to StageComplete. Grounded on the
// teacher's per-connection state (cs104.Client fields) generalized from
// "one state machine per TCP session" to "one state machine per mesh
// node", with Stage's enum/String() idiom borrowed from asdu/identifier.go.
package node

import (
	"sync"

	"github.com/go-zwave/zwave/value"
)

// ClassSupport records one command class a node reports supporting: the
// version it implements and how many instances of it the node exposes.
type ClassSupport struct {
	Version   uint8
	Instances uint8
}

// Node is one device on the mesh.
type Node struct {
	mu sync.RWMutex

	HomeID uint32
	NodeID uint8

	Generic  uint8
	Specific uint8
	Basic    uint8

	// Listening is true for mains-powered nodes that always receive;
	// FrequentlyListening is true for FLiRS battery nodes that listen in
	// short bursts; neither implies the other.
	Listening          bool
	FrequentlyListening bool

	// Awake is relevant only to non-listening battery nodes: false means
	// traffic must wait in the wake-up queue (spec.md §4.3).
	Awake bool

	stage       Stage
	stageRetry  int
	queryFailed bool

	classes map[uint8]ClassSupport

	Values *value.Registry
}

// New returns a freshly discovered Node at StageProtocolInfo.
func New(homeID uint32, nodeID uint8, watcher value.WatchFunc) *Node {
	return &Node{
		HomeID:  homeID,
		NodeID:  nodeID,
		classes: make(map[uint8]ClassSupport),
		Values:  value.NewRegistry(watcher),
	}
}

// Stage returns the node's current discovery stage.
func (n *Node) Stage() Stage {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stage
}

// QueryFailed reports whether the node permanently failed a discovery
// stage (spec.md §4.4's 3-retry-then-advance policy) at any point in its
// pipeline.
func (n *Node) QueryFailed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.queryFailed
}

// MaxStageRetries is the number of failed attempts at a single discovery
// stage after which the pipeline gives up on it and advances anyway,
// leaving QueryFailed set (spec.md §4.4): the first MaxStageRetries-1
// failures are retried.
const MaxStageRetries = 3

// RetryStage records one failed attempt at the current stage. It reports
// whether the caller should retry (true) or give up and advance (false).
func (n *Node) RetryStage() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stageRetry++
	if n.stageRetry < MaxStageRetries {
		return true
	}
	n.queryFailed = true
	return false
}

// AdvanceStage moves the node to the next stage in the pipeline and resets
// the per-stage retry counter. It reports the new stage and whether the
// node just reached StageComplete.
func (n *Node) AdvanceStage() (Stage, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stageRetry = 0
	next, _ := n.stage.Next()
	n.stage = next
	return n.stage, n.stage == StageComplete
}

// SetStage forces the node directly to stage, used when cached persistence
// state lets discovery skip ahead (spec.md's CacheLoad stage).
func (n *Node) SetStage(stage Stage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stage = stage
	n.stageRetry = 0
}

// AddClass records that the node supports classID at the given version
// with the given instance count, overwriting any prior entry.
func (n *Node) AddClass(classID uint8, version, instances uint8) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.classes[classID] = ClassSupport{Version: version, Instances: instances}
}

// Class returns the node's recorded support for classID, if any.
func (n *Node) Class(classID uint8) (ClassSupport, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.classes[classID]
	return c, ok
}

// Classes returns a snapshot of every command class this node supports.
func (n *Node) Classes() map[uint8]ClassSupport {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make(map[uint8]ClassSupport, len(n.classes))
	for k, v := range n.classes {
		out[k] = v
	}
	return out
}

// SetAwake records whether the node is currently reachable without
// waiting for its next WakeUp notification.
func (n *Node) SetAwake(awake bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Awake = awake
}

// IsAsleep reports whether the node is a non-listening node that is not
// currently awake — the predicate the send queue's SleepChecker uses to
// divert traffic (spec.md §4.3).
func (n *Node) IsAsleep() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return !n.Listening && !n.Awake
}
