package frame_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwave/zwave/frame"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f := frame.Frame{Type: frame.TypeRequest, Payload: []byte{0x13, 0x05, 0x03, 0x25, 0x01, 0xFF, 0x05, 0x2A}}
	wire, err := frame.Encode(f)
	require.NoError(t, err)

	r := frame.NewReader(bytes.NewReader(wire))
	ev, err := r.Next()
	require.NoError(t, err)
	assert.False(t, ev.IsControl)
	assert.Equal(t, f.Type, ev.Frame.Type)
	assert.Equal(t, f.Payload, ev.Frame.Payload)
	assert.Equal(t, byte(0x13), ev.Frame.FunctionID())
}

func TestReaderToleratesJunkBeforeSOF(t *testing.T) {
	f := frame.Frame{Type: frame.TypeResponse, Payload: []byte{0x01, 0x01}}
	wire, err := frame.Encode(f)
	require.NoError(t, err)

	stream := append([]byte{0x00, 0xAA, 0xFF}, wire...)
	r := frame.NewReader(bytes.NewReader(stream))
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, f.Payload, ev.Frame.Payload)
}

func TestControlSymbolsDeliveredOutOfBand(t *testing.T) {
	stream := []byte{frame.ACK, frame.NAK, frame.CAN}
	r := frame.NewReader(bytes.NewReader(stream))

	for _, want := range stream {
		ev, err := r.Next()
		require.NoError(t, err)
		require.True(t, ev.IsControl)
		assert.Equal(t, want, ev.Control)
	}
}

func TestBadChecksumYieldsErrAndDropsFrame(t *testing.T) {
	f := frame.Frame{Type: frame.TypeRequest, Payload: []byte{0x13, 0x05}}
	wire, err := frame.Encode(f)
	require.NoError(t, err)
	wire[len(wire)-1] ^= 0xFF // corrupt checksum

	r := frame.NewReader(bytes.NewReader(wire))
	_, err = r.Next()
	assert.ErrorIs(t, err, frame.ErrChecksum)
}

func TestChecksumFormula(t *testing.T) {
	// SOF 09 00 13 05 03 25 01 FF 05 <cb> <chk> from spec.md scenario 1,
	// verified against the XOR formula directly.
	length := byte(0x09)
	typ := byte(0x00)
	payload := []byte{0x13, 0x05, 0x03, 0x25, 0x01, 0xFF, 0x05, 0x2A}
	f := frame.Frame{Type: typ, Payload: payload}
	wire, err := frame.Encode(f)
	require.NoError(t, err)
	require.Equal(t, length, wire[1])

	want := byte(0xFF)
	want ^= length ^ typ
	for _, b := range payload {
		want ^= b
	}
	assert.Equal(t, want, wire[len(wire)-1])
}
