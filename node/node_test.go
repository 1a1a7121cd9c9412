package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceStageWalksPipelineInOrder(t *testing.T) {
	n := New(0xAABBCCDD, 4, nil)
	assert.Equal(t, StageProtocolInfo, n.Stage())

	stage, complete := n.AdvanceStage()
	assert.Equal(t, StageWakeUp, stage)
	assert.False(t, complete)
}

func TestAdvanceStageStopsAtComplete(t *testing.T) {
	n := New(1, 1, nil)
	n.SetStage(StageConfiguration)

	stage, complete := n.AdvanceStage()
	assert.Equal(t, StageComplete, stage)
	assert.True(t, complete)
}

func TestRetryStageGivesUpAfterMaxRetries(t *testing.T) {
	n := New(1, 1, nil)

	assert.True(t, n.RetryStage())
	assert.True(t, n.RetryStage())
	assert.False(t, n.RetryStage(), "third failure exhausts the retry budget")
	assert.True(t, n.QueryFailed())
}

func TestAdvanceStageResetsRetryCounter(t *testing.T) {
	n := New(1, 1, nil)
	n.RetryStage()
	n.RetryStage()
	n.AdvanceStage()

	assert.True(t, n.RetryStage())
	assert.False(t, n.QueryFailed(), "retry counter should reset after advancing, not exhaust early")
}

func TestIsAsleepOnlyAppliesToNonListeningNodes(t *testing.T) {
	listening := New(1, 2, nil)
	listening.Listening = true
	assert.False(t, listening.IsAsleep())

	battery := New(1, 3, nil)
	assert.True(t, battery.IsAsleep(), "non-listening node defaults to asleep until a WakeUp is seen")

	battery.SetAwake(true)
	assert.False(t, battery.IsAsleep())
}

func TestAddClassAndClassesSnapshot(t *testing.T) {
	n := New(1, 2, nil)
	n.AddClass(0x25, 1, 1) // SwitchBinary v1, 1 instance

	c, ok := n.Class(0x25)
	assert.True(t, ok)
	assert.Equal(t, uint8(1), c.Version)

	all := n.Classes()
	assert.Len(t, all, 1)
}
