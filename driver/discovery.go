package driver

import (
	"time"

	"github.com/go-zwave/zwave/ccreg/classes"
	"github.com/go-zwave/zwave/msg"
	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/notify"
)

// stageRetryBackoff is the delay the timer thread imposes between a failed
// discovery stage and its retry, so a temporarily unreachable node isn't
// hammered three times back-to-back (spec.md §5's timer thread backs
// "stage timeouts, retry back-off, and wake-up scheduling").
const stageRetryBackoff = 250 * time.Millisecond

// stageCommand returns the command-class payload to send for each stage
// that has one, keyed by stage. A stage absent from the map requires no
// outbound request and is simply advanced past (spec.md §4.4's
// CacheLoad/Neighbors/Session stages, among others, have no command-class
// analogue in this implementation's scope).
func stageCommand(n *node.Node) map[node.Stage][]byte {
	return map[node.Stage][]byte{
		node.StageManufacturerSpecific: classes.ManufacturerSpecific{}.BuildGet(1, 1),
		node.StageWakeUp:               classes.WakeUp{}.BuildGet(1, 1),
		node.StageVersions:             classes.Version{}.BuildGet(1, 1),
	}
}

// runDiscovery drives n through the ordered stage sequence of spec.md
// §4.4, sending one request per stage (where one applies), waiting for
// the transmit engine to report the outcome, and retrying until
// node.MaxStageRetries attempts have failed before advancing anyway with
// QueryFailed set.
func (d *Driver) runDiscovery(n *node.Node) {
	d.bus.Post(notify.Notification{Kind: notify.NodeProtocolInfo, HomeID: n.HomeID, NodeID: n.NodeID})

	commands := stageCommand(n)
	for {
		stage := n.Stage()
		if stage == node.StageComplete {
			break
		}

		payload, hasCommand := commands[stage]
		if hasCommand {
			err := d.sendToNode(n.NodeID, msg.PriorityNodeQuery, payload, true)
			if err != nil {
				if n.RetryStage() {
					d.waitStageBackoff()
					continue
				}
				d.Warn("node %d query failed at stage %s: %v", n.NodeID, stage, err)
			}
		}

		next, complete := n.AdvanceStage()
		if stage == node.StageProtocolInfo {
			d.bus.Post(notify.Notification{Kind: notify.NodeReady, HomeID: n.HomeID, NodeID: n.NodeID})
		}
		if complete {
			d.bus.Post(notify.Notification{Kind: notify.NodeQueriesComplete, HomeID: n.HomeID, NodeID: n.NodeID})
			if d.allNodesComplete() {
				d.bus.Post(notify.Notification{Kind: notify.AllNodesQueried, HomeID: n.HomeID})
			}
			break
		}
		_ = next
	}
}

// waitStageBackoff blocks until the timer thread fires stageRetryBackoff
// after now, or until the driver is closed.
func (d *Driver) waitStageBackoff() {
	done := make(chan struct{})
	d.timerT.After(stageRetryBackoff, func() { close(done) })
	select {
	case <-done:
	case <-d.ctx.Done():
	}
}
