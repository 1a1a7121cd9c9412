package engine

import "errors"

var (
	// ErrAckTimeout means the controller never ACKed a sent frame within
	// the ACK window.
	ErrAckTimeout = errors.New("engine: ACK timeout")
	// ErrCallbackTimeout means the controller ACKed the frame but never
	// delivered the matching callback report.
	ErrCallbackTimeout = errors.New("engine: callback timeout")
	// ErrReplyTimeout means the expected node reply never arrived.
	ErrReplyTimeout = errors.New("engine: reply timeout")
	// ErrCancelled means the driver shut down with this message still
	// in flight.
	ErrCancelled = errors.New("engine: cancelled")
	// ErrNAK means the controller NAKed the frame.
	ErrNAK = errors.New("engine: NAK received")
	// ErrCAN means the controller cancelled the transaction.
	ErrCAN = errors.New("engine: CAN received")
)
