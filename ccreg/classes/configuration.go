package classes

import (
	"fmt"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

const classConfiguration = 0x70

const (
	configurationSet    = 0x04
	configurationGet    = 0x05
	configurationReport = 0x06
)

// Configuration implements COMMAND_CLASS_CONFIGURATION: manufacturer
// parameters addressed by a one-byte index, values sized 1/2/4 bytes per
// parameter. spec.md §4.4 calls the Configuration discovery stage a no-op
// for devices whose product database declares no parameters; that lookup
// is out of scope (§1's Out-of-scope product/manufacturer database), so
// this implementation only decodes whatever parameters are explicitly
// queried by the driver.
type Configuration struct{}

func (Configuration) ID() uint8         { return classConfiguration }
func (Configuration) Name() string      { return "Configuration" }
func (Configuration) MinVersion() uint8 { return 1 }
func (Configuration) MaxVersion() uint8 { return 4 }

func (c Configuration) valueID(n *node.Node, param uint8) value.ID {
	return value.NewID(n.HomeID, n.NodeID, value.GenreConfig, c.ID(), 1, param, value.TypeInt)
}

func (c Configuration) HandleReport(n *node.Node, version, instance uint8, payload []byte) (bool, error) {
	if len(payload) < 3 {
		return false, fmt.Errorf("classes: Configuration report too short")
	}
	if payload[0] != configurationReport {
		return false, nil
	}
	param := payload[1]
	size := payload[2] & 0x07
	if len(payload) < int(3+size) {
		return false, fmt.Errorf("classes: Configuration report truncated")
	}
	var raw int32
	for i := uint8(0); i < size; i++ {
		raw = raw<<8 | int32(payload[3+i])
	}
	switch size {
	case 1:
		raw = int32(int8(raw))
	case 2:
		raw = int32(int16(raw))
	}
	id := c.valueID(n, param)
	n.Values.Add(value.New(id, fmt.Sprintf("Parameter %d", param), ""))
	result := n.Values.Apply(id, int(raw))
	return result.RequestRefresh, nil
}

// BuildGetParam returns a Get for a specific configuration parameter.
// BuildGet alone cannot express which parameter without a convention, so
// the driver calls this directly rather than through the Class interface
// whenever it needs a named parameter refreshed.
func (Configuration) BuildGetParam(param uint8) []byte {
	return []byte{classConfiguration, configurationGet, param}
}

func (Configuration) BuildGet(version, instance uint8) []byte {
	return []byte{classConfiguration, configurationGet, 1}
}

// BuildSetParam sets one parameter to value, encoded in the narrowest
// size (1, 2 or 4 bytes) that fits.
func (Configuration) BuildSetParam(param uint8, val int32) []byte {
	var size byte
	switch {
	case val > 0x7fff || val < -0x8000:
		size = 4
	case val > 0x7f || val < -0x80:
		size = 2
	default:
		size = 1
	}
	out := []byte{classConfiguration, configurationSet, param, size}
	for i := int(size) - 1; i >= 0; i-- {
		out = append(out, byte(val>>(uint(i)*8)))
	}
	return out
}

func (c Configuration) BuildSet(version, instance uint8, newValue any) ([]byte, error) {
	pv, ok := newValue.(struct {
		Param uint8
		Value int32
	})
	if !ok {
		return nil, fmt.Errorf("classes: Configuration.Set wants {Param,Value}, got %T", newValue)
	}
	return c.BuildSetParam(pv.Param, pv.Value), nil
}
