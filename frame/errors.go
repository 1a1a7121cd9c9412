package frame

import "errors"

// Decode/encode errors, matching the taxonomy in spec.md §7.
var (
	// ErrFrameTooLarge is returned by Encode when the payload would not
	// fit in a single framed packet.
	ErrFrameTooLarge = errors.New("frame: payload too large for one packet")
	// ErrChecksum is a FrameError: the receiver computed a different
	// checksum than the one on the wire. The caller must reply NAK and
	// drop the frame (spec.md §4.1).
	ErrChecksum = errors.New("frame: checksum mismatch")
	// ErrClosed names a closed transport. Reader.Next does not return it;
	// it passes the underlying reader's own error through unchanged.
	ErrClosed = errors.New("frame: transport closed")
)
