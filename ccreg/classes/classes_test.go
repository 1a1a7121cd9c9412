package classes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwave/zwave/node"
)

func TestSwitchBinaryBuildSetMatchesWireBytes(t *testing.T) {
	var c SwitchBinary
	payload, err := c.BuildSet(1, 1, true)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x25, 0x01, 0xFF}, payload)
}

func TestSwitchBinaryHandleReportCommitsOnFirstObservation(t *testing.T) {
	var c SwitchBinary
	n := node.New(0x11223344, 5, nil)

	refresh, err := c.HandleReport(n, 1, 1, []byte{0x03, 0xFF})
	require.NoError(t, err)
	assert.False(t, refresh)

	id := c.valueID(n, 1)
	v, ok := n.Values.Get(id)
	require.True(t, ok)
	current, isSet := v.Current()
	assert.True(t, isSet)
	assert.Equal(t, true, current)
}

func TestDecodeDecimalRoundTripsWithEncodeDecimal(t *testing.T) {
	encoded := encodeDecimal(20.0, 1, 0)
	value, scale, err := decodeDecimal(encoded)
	require.NoError(t, err)
	assert.Equal(t, 20.0, value)
	assert.Equal(t, uint8(0), scale)

	encoded99 := encodeDecimal(99.0, 1, 0)
	value99, _, err := decodeDecimal(encoded99)
	require.NoError(t, err)
	assert.Equal(t, 99.0, value99)
}

func TestSensorMultilevelChangeConfirmationFlow(t *testing.T) {
	var c SensorMultilevel
	n := node.New(1, 5, nil)

	report := append([]byte{sensorMultilevelReport, 0x01}, encodeDecimal(20.0, 1, 0)...)
	refresh, err := c.HandleReport(n, 1, 1, report)
	require.NoError(t, err)
	assert.False(t, refresh)

	jump := append([]byte{sensorMultilevelReport, 0x01}, encodeDecimal(99.0, 1, 0)...)
	refresh, err = c.HandleReport(n, 1, 1, jump)
	require.NoError(t, err)
	assert.True(t, refresh, "disagreeing report must request a confirmation refresh")

	id := c.valueID(n, 1, 0x01)
	v, _ := n.Values.Get(id)
	current, _ := v.Current()
	assert.Equal(t, 20.0, current, "candidate must not be visible until confirmed")

	confirm := append([]byte{sensorMultilevelReport, 0x01}, encodeDecimal(99.0, 1, 0)...)
	refresh, err = c.HandleReport(n, 1, 1, confirm)
	require.NoError(t, err)
	assert.False(t, refresh)
	current, _ = v.Current()
	assert.Equal(t, 99.0, current)
}

func TestSwitchMultilevelBuildSetOmitsDurationBelowV2(t *testing.T) {
	var c SwitchMultilevel
	payload, err := c.BuildSet(1, 1, byte(0x32))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x26, 0x04, 0x32}, payload)
}

func TestSwitchMultilevelBuildSetAppendsDurationFromV2(t *testing.T) {
	var c SwitchMultilevel
	payload, err := c.BuildSet(2, 1, byte(0x32))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x26, 0x04, 0x32, 0x00}, payload)
}

func TestSwitchMultilevelHandleReportIgnoresTargetBelowV4(t *testing.T) {
	var c SwitchMultilevel
	n := node.New(1, 7, nil)

	_, err := c.HandleReport(n, 3, 1, []byte{switchMultilevelReport, 0x32, 0x64, 0x05})
	require.NoError(t, err)

	_, ok := n.Values.Get(c.targetValueID(n, 1))
	assert.False(t, ok, "versions below 4 never report a target value")
}

func TestSwitchMultilevelHandleReportParsesTargetFromV4(t *testing.T) {
	var c SwitchMultilevel
	n := node.New(1, 7, nil)

	_, err := c.HandleReport(n, 4, 1, []byte{switchMultilevelReport, 0x32, 0x64, 0x05})
	require.NoError(t, err)

	v, ok := n.Values.Get(c.targetValueID(n, 1))
	require.True(t, ok)
	current, _ := v.Current()
	assert.Equal(t, byte(0x64), current)
}

func TestWakeUpNotificationMarksNodeAwake(t *testing.T) {
	var c WakeUp
	n := node.New(1, 9, nil)
	assert.True(t, n.IsAsleep())

	_, err := c.HandleReport(n, 1, 1, []byte{wakeUpNotification})
	require.NoError(t, err)
	assert.False(t, n.IsAsleep())
}
