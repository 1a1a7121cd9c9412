package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValue() *Value {
	id := NewID(0x12345678, 7, GenreUser, 0x26, 0, 0, TypeDecimal)
	return New(id, "Level", "%")
}

func TestOnValueChangedFirstReadingCommitsAndNotifies(t *testing.T) {
	v := newTestValue()

	res := v.OnValueChanged(20.0)

	assert.True(t, res.Committed)
	assert.True(t, res.ShouldNotify)
	assert.False(t, res.RequestRefresh)

	stored, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, 20.0, stored)
}

func TestOnValueChangedNoChangeIsSilent(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)

	res := v.OnValueChanged(20.0)

	assert.False(t, res.Committed)
	assert.False(t, res.ShouldNotify)
	assert.False(t, res.RequestRefresh)
}

// Reproduces spec.md §8 scenario 4: a SensorMultilevel report jumps from
// 20.0 to 99.0. The first disagreeing report must not commit; it must hold
// as a candidate and ask for one confirming refresh.
func TestOnValueChangedDisagreementRequestsRefreshBeforeCommitting(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)

	res := v.OnValueChanged(99.0)

	assert.False(t, res.Committed)
	assert.False(t, res.ShouldNotify)
	assert.True(t, res.RequestRefresh)
	assert.True(t, v.CheckingChange())

	stored, _ := v.Current()
	assert.Equal(t, 20.0, stored, "candidate must not be visible until confirmed")
}

func TestOnValueChangedCandidateConfirmedCommits(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)
	v.OnValueChanged(99.0) // candidate = 99.0, checking

	res := v.OnValueChanged(99.0) // refresh reply agrees with candidate

	assert.True(t, res.Committed)
	assert.True(t, res.ShouldNotify)
	assert.False(t, v.CheckingChange())

	stored, _ := v.Current()
	assert.Equal(t, 99.0, stored)
}

func TestOnValueChangedCandidateRefutedRevertsSilently(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)
	v.OnValueChanged(99.0) // candidate = 99.0, checking

	res := v.OnValueChanged(20.0) // refresh reply agrees with the old stored value

	assert.False(t, res.Committed)
	assert.False(t, res.ShouldNotify)
	assert.False(t, v.CheckingChange())

	stored, _ := v.Current()
	assert.Equal(t, 20.0, stored)
}

func TestOnValueChangedThirdReadingDuringConfirmationRestartsDebounce(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)
	v.OnValueChanged(99.0) // candidate = 99.0, checking

	res := v.OnValueChanged(50.0) // neither stored nor candidate

	assert.False(t, res.Committed)
	assert.True(t, res.RequestRefresh)
	assert.True(t, v.CheckingChange())
}

func TestRequestSetClearsOnlyWhenConfirmed(t *testing.T) {
	v := newTestValue()
	v.OnValueChanged(20.0)

	v.RequestSet(45.0)
	pending, ok := v.Pending()
	require.True(t, ok)
	assert.Equal(t, 45.0, pending)

	v.OnValueChanged(45.0) // device reports the requested level: held as a candidate
	v.OnValueChanged(45.0) // refresh reply confirms the candidate

	_, ok = v.Pending()
	assert.False(t, ok, "pending should clear once the device confirms a reading")
}
