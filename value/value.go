// Package value implements the typed leaf setting model of spec.md §3/§4.6:
// ValueID, the ten Value variants, the change-confirmation protocol that
// debounces spurious single-packet glitches (§4.5, §9), and a node-scoped
// registry with watcher notification ordering guarantees.
package value

import "bytes"

// ListItem is one entry of a List-typed value's allowed values
// (persistence.go's XML schema calls these <Item> elements, spec.md §6).
type ListItem struct {
	Label string
	Value int
}

// Value is one polymorphic, user-visible setting on one instance of one
// command class of one node. It is owned by exactly one Node; callers
// outside the owning node re-resolve it through a Registry under the node
// lock rather than holding a pointer (see design note in DESIGN.md on
// replacing the source's AddRef/Release Value ownership).
type Value struct {
	ID ID

	Label     string
	Units     string
	Help      string
	ReadOnly  bool
	WriteOnly bool
	// PollIntensity is 0 (never polled) or the number of this value's
	// round-robin poll turns between successive refreshes.
	PollIntensity uint32

	ListItems []ListItem

	// isSet distinguishes "never observed" from "observed to be the zero
	// value".
	isSet bool
	// stored is the last confirmed reading.
	stored any
	// pending is the value a client Set() requested; it is cleared when
	// OnValueChanged next commits a confirmed reading.
	pending    any
	hasPending bool

	// checkingChange and candidate implement the single-packet-glitch
	// debounce: a reading that disagrees with stored is held as candidate
	// until a second, confirming report arrives.
	checkingChange bool
	candidate      any
}

// New returns a Value for id (whose Type field names the variant) with no
// reading observed yet.
func New(id ID, label, units string) *Value {
	return &Value{ID: id, Label: label, Units: units}
}

// IsSet reports whether any reading has ever been committed.
func (v *Value) IsSet() bool { return v.isSet }

// Current returns the last confirmed reading and whether one exists.
func (v *Value) Current() (any, bool) { return v.stored, v.isSet }

// Pending returns the value requested by the most recent Set call that has
// not yet been confirmed by the device, if any.
func (v *Value) Pending() (any, bool) { return v.pending, v.hasPending }

// CheckingChange reports whether a candidate reading is awaiting
// confirmation (spec.md §4.5's debounce in progress).
func (v *Value) CheckingChange() bool { return v.checkingChange }

// RequestSet records the caller's intent to change the value. It does NOT
// commit anything: per spec.md §9's resolved Open Question, the stored
// value only commits once the device's own report round-trips back through
// OnValueChanged and passes confirmation, identically for every Value
// type — there is no String-specific short-circuit.
func (v *Value) RequestSet(newValue any) {
	v.pending = newValue
	v.hasPending = true
}

// ChangeResult is OnValueChanged's verdict: whether to commit the reading
// into Current, whether to notify watchers, and whether the caller should
// issue one additional refresh request to the device before either
// happens.
type ChangeResult struct {
	Committed      bool
	ShouldNotify   bool
	RequestRefresh bool
}

// OnValueChanged applies the change-confirmation protocol of spec.md §4.5
// to one inbound reading from the device:
//
//   - never set before            -> store and notify
//   - confirms the stored reading -> clear the pending confirmation, no notify
//   - confirms the held candidate -> commit the candidate and notify
//   - disagrees with both         -> restart confirmation against the newest reading
//   - differs from stored, no confirmation pending -> hold as candidate,
//     request one refresh
func (v *Value) OnValueChanged(reading any) ChangeResult {
	if !v.isSet {
		v.stored = reading
		v.isSet = true
		v.clearPendingIfConfirmed()
		return ChangeResult{Committed: true, ShouldNotify: true}
	}

	if v.checkingChange {
		switch {
		case equal(reading, v.stored):
			// Spurious glitch: the confirming read agrees with what we
			// already had, not with the candidate. Drop the candidate.
			v.checkingChange = false
			v.candidate = nil
			return ChangeResult{}
		case equal(reading, v.candidate):
			v.stored = v.candidate
			v.checkingChange = false
			v.candidate = nil
			v.clearPendingIfConfirmed()
			return ChangeResult{Committed: true, ShouldNotify: true}
		default:
			v.candidate = reading
			return ChangeResult{RequestRefresh: true}
		}
	}

	if equal(reading, v.stored) {
		return ChangeResult{}
	}

	v.checkingChange = true
	v.candidate = reading
	return ChangeResult{RequestRefresh: true}
}

func (v *Value) clearPendingIfConfirmed() {
	if v.hasPending {
		v.hasPending = false
		v.pending = nil
	}
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	// []byte (Raw readings) isn't comparable with ==; compare by content
	// instead of letting the equality fall through to a runtime panic.
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return a == b
}
