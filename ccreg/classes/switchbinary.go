package classes

import (
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classSwitchBinary = 0x25

const (
	switchBinaryGet    = 0x02
	switchBinaryReport = 0x03
	switchBinarySet    = 0x01
)

// SwitchBinary implements COMMAND_CLASS_SWITCH_BINARY (spec.md §8 scenario
// 1's on/off switch), versions 1-1: Get/Report/Set with a single Bool
// value per instance.
type SwitchBinary struct{}

func (SwitchBinary) ID() uint8         { return classSwitchBinary }
func (SwitchBinary) Name() string      { return "SwitchBinary" }
func (SwitchBinary) MinVersion() uint8 { return 1 }
func (SwitchBinary) MaxVersion() uint8 { return 1 }

func (c SwitchBinary) valueID(n *node.Node, instance uint8) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreBasic, c.ID(), instance, 0, value.TypeBool)
}

func (c SwitchBinary) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 2 {
		return false, fmt.Errorf("classes: SwitchBinary report too short")
	}
	if payload[0] != switchBinaryReport {
		return false, nil
	}
	on := payload[1] != 0x00
	id := c.valueID(n, instance)
	v := n.Values.Add(value.New(id, "Switch", ""))
	result := n.Values.Apply(id, on)
	_ = v
	return result.RequestRefresh, nil
}

func (SwitchBinary) BuildGet(version, instance uint8) []byte {
	return []byte{classSwitchBinary, switchBinaryGet}
}

func (SwitchBinary) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	on, ok := newValue.(bool)
	if !ok {
		return nil, fmt.Errorf("classes: SwitchBinary.Set wants bool, got %T", newValue)
	}
	level := byte(0x00)
	if on {
		level = 0xFF
	}
	return []byte{classSwitchBinary, switchBinarySet, level}, nil
}
