package classes

import (
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classSwitchMultilevel = 0x26

const (
	switchMultilevelGet    = 0x01
	switchMultilevelReport = 0x03
	switchMultilevelSet    = 0x04
)

// switchMultilevelDurationVersion is the version SWITCH_MULTILEVEL_SET
// gained its trailing dimming-duration byte (SwitchMultilevel.h's
// m_duration field exists only from this version on).
const switchMultilevelDurationVersion = 2

// switchMultilevelTargetVersion is the version SWITCH_MULTILEVEL_REPORT
// grew from a single current-value byte into current/target/duration.
const switchMultilevelTargetVersion = 4

// SwitchMultilevel implements COMMAND_CLASS_SWITCH_MULTILEVEL (dimmers),
// the version-gated payload shape SPEC_FULL.md's supplemented-features
// section calls out: Set carries a dimming duration from v2 on, and Report
// grows a target-value/duration pair from v4 on, exactly as
// CommandClass.cpp dispatches differently depending on the negotiated
// m_version.
type SwitchMultilevel struct{}

func (SwitchMultilevel) ID() uint8         { return classSwitchMultilevel }
func (SwitchMultilevel) Name() string      { return "SwitchMultilevel" }
func (SwitchMultilevel) MinVersion() uint8 { return 1 }
func (SwitchMultilevel) MaxVersion() uint8 { return 4 }

func (c SwitchMultilevel) levelValueID(n *node.Node, instance uint8) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreBasic, c.ID(), instance, 0, value.TypeByte)
}

func (c SwitchMultilevel) targetValueID(n *node.Node, instance uint8) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreBasic, c.ID(), instance, 1, value.TypeByte)
}

func (c SwitchMultilevel) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 2 {
		return false, fmt.Errorf("classes: SwitchMultilevel report too short")
	}
	if payload[0] != switchMultilevelReport {
		return false, nil
	}

	level := payload[1]
	id := c.levelValueID(n, instance)
	n.Values.Add(value.New(id, "Level", "%"))
	result := n.Values.Apply(id, level)
	refresh := result.RequestRefresh

	// Versions below 4 never send target/duration; nothing more to parse.
	if version < switchMultilevelTargetVersion || len(payload) < 4 {
		return refresh, nil
	}

	targetID := c.targetValueID(n, instance)
	n.Values.Add(value.New(targetID, "Target Level", "%"))
	targetResult := n.Values.Apply(targetID, payload[2])
	return refresh || targetResult.RequestRefresh, nil
}

func (SwitchMultilevel) BuildGet(version, instance uint8) []byte {
	return []byte{classSwitchMultilevel, switchMultilevelGet}
}

func (SwitchMultilevel) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	level, ok := newValue.(byte)
	if !ok {
		asInt, ok := newValue.(int)
		if !ok {
			return nil, fmt.Errorf("classes: SwitchMultilevel.Set wants byte or int, got %T", newValue)
		}
		level = byte(asInt)
	}
	if level > 0x63 && level != 0xFF {
		return nil, fmt.Errorf("classes: SwitchMultilevel.Set level %d out of range", level)
	}

	out := []byte{classSwitchMultilevel, switchMultilevelSet, level}
	if version >= switchMultilevelDurationVersion {
		// Factory-default dimming duration: instant.
		out = append(out, 0x00)
	}
	return out, nil
}
