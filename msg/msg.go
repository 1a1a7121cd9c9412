package msg

import (
	"github.com/rs/xid"

	"github.com/go-zwave/zwave/frame"
)

// ExpectedReply describes what the transmit engine must see before it
// considers a Msg's reply phase satisfied (spec.md §4.2's
// WaitingForReply state): the function ID of the report frame and,
// optionally, the node ID it must originate from.
type ExpectedReply struct {
	FunctionID byte
	NodeID     uint8
	// HasNodeID distinguishes "any node" (controller-scope replies, e.g.
	// GetVersion) from "must match NodeID exactly".
	HasNodeID bool
}

// Msg is one unit of outbound work: a frame payload bound for the
// controller or a specific node, carrying everything the transmit engine
// and queue need to route, retry and trace it.
type Msg struct {
	// TraceID is a short per-message correlation id for logs, minted once
	// per Msg and carried through every log line concerning it.
	TraceID xid.ID

	NodeID   uint8
	Priority Priority

	Frame frame.Frame

	// CallbackID is the session id the controller echoes back in an
	// unsolicited completion report for commands sent with a callback
	// function (spec.md §4.2's WaitingForCallback state). HasCallback, not
	// a zero CallbackID, is what marks a Msg as expecting no callback.
	CallbackID byte
	HasCallback bool

	Expected    ExpectedReply
	HasExpected bool
	Attempt     int
	MaxAttempts int

	// Callback reports the Msg's terminal outcome (ok or the error that
	// exhausted its retries) back to whatever enqueued it.
	Callback func(err error)
}

// New returns a Msg addressed to nodeID (0 for controller-scope commands)
// carrying f, with a freshly minted trace id and the given retry budget.
func New(nodeID uint8, priority Priority, f frame.Frame, maxAttempts int) *Msg {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Msg{
		TraceID:     xid.New(),
		NodeID:      nodeID,
		Priority:    priority,
		Frame:       f,
		MaxAttempts: maxAttempts,
	}
}

// WithExpectedReply records the report frame this Msg's WaitingForReply
// phase waits for.
func (m *Msg) WithExpectedReply(functionID byte) *Msg {
	m.Expected = ExpectedReply{FunctionID: functionID}
	m.HasExpected = true
	return m
}

// WithExpectedReplyFromNode is WithExpectedReply scoped to reports
// originating from a specific node.
func (m *Msg) WithExpectedReplyFromNode(functionID byte, nodeID uint8) *Msg {
	m.Expected = ExpectedReply{FunctionID: functionID, NodeID: nodeID, HasNodeID: true}
	m.HasExpected = true
	return m
}

// WithCallback records the session id this Msg's WaitingForCallback phase
// waits to see echoed back in an unsolicited completion report.
func (m *Msg) WithCallback(callbackID byte) *Msg {
	m.CallbackID = callbackID
	m.HasCallback = true
	return m
}

// MatchesCallback reports whether f is the completion report for this
// Msg's CallbackID. Callback reports carry the function id of the command
// that was sent plus the echoed session id as their second payload byte,
// the convention ZW_SendData-style commands use.
func (m *Msg) MatchesCallback(f frame.Frame) bool {
	if !m.HasCallback {
		return false
	}
	if f.FunctionID() != m.Frame.FunctionID() {
		return false
	}
	if len(f.Payload) < 2 {
		return false
	}
	return f.Payload[1] == m.CallbackID
}

// MatchesReply reports whether f satisfies this Msg's ExpectedReply.
func (m *Msg) MatchesReply(nodeID uint8, f frame.Frame) bool {
	if !m.HasExpected {
		return false
	}
	if f.FunctionID() != m.Expected.FunctionID {
		return false
	}
	if m.Expected.HasNodeID && m.Expected.NodeID != nodeID {
		return false
	}
	return true
}

// ExhaustedRetries reports whether this Msg has used up its attempt
// budget.
func (m *Msg) ExhaustedRetries() bool {
	return m.Attempt >= m.MaxAttempts
}

// Finish invokes Callback, if set, with the terminal error (nil on
// success).
func (m *Msg) Finish(err error) {
	if m.Callback != nil {
		m.Callback(err)
	}
}
