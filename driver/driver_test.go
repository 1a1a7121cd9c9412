package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwave/zwave/node"
	"github.com/go-zwave/zwave/value"
)

func TestConfigValidRejectsNonPositivePollPeriod(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PollPeriod = 0
	assert.Error(t, cfg.Valid())
}

func TestParseTransportURI(t *testing.T) {
	tr, err := parseTransportURI("serial:/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "serial:/dev/ttyUSB0", tr.String())

	tr, err = parseTransportURI("tcp:127.0.0.1:4901")
	require.NoError(t, err)
	assert.Equal(t, "tcp:127.0.0.1:4901", tr.String())

	_, err = parseTransportURI("bogus:foo")
	assert.ErrorIs(t, err, ErrBadTransport)
}

func TestGetValueUnknownNodeReturnsFalse(t *testing.T) {
	d := New(DefaultConfig())
	id := value.NewID(1, 9, value.GenreBasic, 0x25, 1, 0, value.TypeBool)
	_, ok := d.GetValue(id)
	assert.False(t, ok)
}

func TestSetValueUnknownNodeReturnsError(t *testing.T) {
	d := New(DefaultConfig())
	id := value.NewID(1, 9, value.GenreBasic, 0x25, 1, 0, value.TypeBool)
	err := d.SetValue(id, true)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestSetValueUnknownClassReturnsError(t *testing.T) {
	d := New(DefaultConfig())
	d.homeID = 1
	d.nodes[9] = node.New(1, 9, nil)
	id := value.NewID(1, 9, value.GenreBasic, 0xEE, 1, 0, value.TypeBool)
	err := d.SetValue(id, true)
	assert.ErrorIs(t, err, ErrUnknownClass)
}
