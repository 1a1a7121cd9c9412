package classes

import (
	"encoding/binary"
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classWakeUp = 0x84

const (
	wakeUpIntervalSet       = 0x04
	wakeUpIntervalGet       = 0x05
	wakeUpIntervalReport    = 0x06
	wakeUpNotification      = 0x07
	wakeUpNoMoreInformation = 0x08
)

// WakeUp implements COMMAND_CLASS_WAKE_UP. Its Notification command is the
// signal spec.md §4.3 uses to release a sleeping node's diverted queue; it
// carries no device value worth storing beyond the interval itself.
type WakeUp struct{}

func (WakeUp) ID() uint8         { return classWakeUp }
func (WakeUp) Name() string      { return "WakeUp" }
func (WakeUp) MinVersion() uint8 { return 1 }
func (WakeUp) MaxVersion() uint8 { return 2 }

func (c WakeUp) intervalValueID(n *node.Node, instance uint8) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreSystem, c.ID(), instance, 0, value.TypeInt)
}

// IsNotification reports whether payload is an unsolicited
// WakeUp.Notification, the driver's cue to mark the node awake and
// release its wake-up queue (handled by the driver package, not here,
// since it needs queue.Release which ccreg must not import to avoid a
// dependency cycle back through the driver).
func (WakeUp) IsNotification(payload []byte) bool {
	return len(payload) >= 1 && payload[0] == wakeUpNotification
}

func (c WakeUp) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 1 {
		return false, fmt.Errorf("classes: WakeUp report too short")
	}
	switch payload[0] {
	case wakeUpNotification:
		n.SetAwake(true)
		return false, nil
	case wakeUpIntervalReport:
		if len(payload) < 4 {
			return false, fmt.Errorf("classes: WakeUp interval report too short")
		}
		interval := int(binary.BigEndian.Uint32(append([]byte{0}, payload[1:4]...)))
		id := c.intervalValueID(n, instance)
		n.Values.Add(value.New(id, "Wake-up Interval", "seconds"))
		n.Values.Apply(id, interval)
		return false, nil
	default:
		return false, nil
	}
}

func (WakeUp) BuildGet(version, instance uint8) []byte {
	return []byte{classWakeUp, wakeUpIntervalGet}
}

func (WakeUp) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	seconds, ok := newValue.(int)
	if !ok {
		return nil, fmt.Errorf("classes: WakeUp.Set wants int seconds, got %T", newValue)
	}
	b := make([]byte, 3)
	b[0] = byte(seconds >> 16)
	b[1] = byte(seconds >> 8)
	b[2] = byte(seconds)
	// node id of the notification target (the controller) is appended by
	// the driver, which knows its own assigned node id; zero here is
	// replaced before the frame is sent.
	return append([]byte{classWakeUp, wakeUpIntervalSet}, append(b, 0x00)...), nil
}

// BuildNoMoreInformation returns the frame payload sent as the final
// message to a node before it returns to sleep (spec.md §8 scenario 3).
func (WakeUp) BuildNoMoreInformation() []byte {
	return []byte{classWakeUp, wakeUpNoMoreInformation}
}
