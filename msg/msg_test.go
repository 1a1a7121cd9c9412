package msg

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-zwave/zwave/frame"
)

func TestMatchesReplyRequiresFunctionIDAndOptionalNode(t *testing.T) {
	m := New(5, PriorityCommand, frame.Frame{Type: frame.TypeRequest, Payload: []byte{0x13}}, 3)
	m.WithExpectedReplyFromNode(0x04, 5)

	assert.True(t, m.MatchesReply(5, frame.Frame{Payload: []byte{0x04}}))
	assert.False(t, m.MatchesReply(6, frame.Frame{Payload: []byte{0x04}}), "wrong node")
	assert.False(t, m.MatchesReply(5, frame.Frame{Payload: []byte{0x05}}), "wrong function id")
}

func TestExhaustedRetries(t *testing.T) {
	m := New(1, PriorityCommand, frame.Frame{}, 2)
	assert.False(t, m.ExhaustedRetries())
	m.Attempt = 2
	assert.True(t, m.ExhaustedRetries())
}

func TestFinishInvokesCallback(t *testing.T) {
	var gotErr error
	called := false
	m := New(1, PriorityCommand, frame.Frame{}, 1)
	m.Callback = func(err error) {
		called = true
		gotErr = err
	}
	m.Finish(nil)
	assert.True(t, called)
	assert.NoError(t, gotErr)
}
