package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-zwave/zwave/frame"
	"github.com/go-zwave/zwave/msg"
)

func mkMsg(node uint8, p msg.Priority) *msg.Msg {
	return msg.New(node, p, frame.Frame{}, 3)
}

func TestPopServicesHighestPriorityFirst(t *testing.T) {
	q := New(nil)
	q.Push(mkMsg(1, msg.PriorityPoll))
	q.Push(mkMsg(1, msg.PriorityImmediate))

	m, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, msg.PriorityImmediate, m.Priority)
}

func TestPopRoundRobinsAcrossNodesWithinALane(t *testing.T) {
	q := New(nil)
	q.Push(mkMsg(1, msg.PriorityCommand))
	q.Push(mkMsg(2, msg.PriorityCommand))
	q.Push(mkMsg(1, msg.PriorityCommand))

	first, _ := q.Pop()
	second, _ := q.Pop()
	third, _ := q.Pop()

	assert.Equal(t, uint8(1), first.NodeID)
	assert.Equal(t, uint8(2), second.NodeID)
	assert.Equal(t, uint8(1), third.NodeID)
}

func TestSleepingNodeTrafficIsDivertedUntilReleased(t *testing.T) {
	asleep := map[uint8]bool{9: true}
	q := New(func(nodeID uint8) bool { return asleep[nodeID] })

	q.Push(mkMsg(9, msg.PriorityCommand))
	_, ok := q.Pop()
	assert.False(t, ok, "message for a sleeping node must not be immediately dequeuable")

	asleep[9] = false
	q.Release(9)

	m, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, uint8(9), m.NodeID)
}

func TestWakeUpPriorityBypassesSleepDiversion(t *testing.T) {
	q := New(func(uint8) bool { return true })
	q.Push(mkMsg(3, msg.PriorityWakeUp))

	m, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, msg.PriorityWakeUp, m.Priority)
}

func TestPopOnEmptyQueueReturnsFalse(t *testing.T) {
	q := New(nil)
	_, ok := q.Pop()
	assert.False(t, ok)
}
