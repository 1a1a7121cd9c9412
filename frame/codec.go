package frame

import (
	"bufio"
	"io"
)

// Event is one unit handed back by Reader.Next: either a control symbol
// (ACK/NAK/CAN) or a full framed packet, never both.
type Event struct {
	IsControl bool
	Control   byte
	Frame     Frame
}

// Reader decodes the byte stream produced by a Transport into a sequence of
// Events, tolerating arbitrary inter-frame junk and never blocking past one
// MaxFrameLen-bounded frame (spec.md §4.1).
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, MaxFrameLen+4)}
}

// Next blocks until a control symbol or a complete, checksum-verified frame
// is available, or the underlying reader errors (e.g. the transport was
// closed). A checksum failure is reported as (Event{}, ErrChecksum); the
// caller must NAK and may keep calling Next to continue reading — the
// offending frame itself has already been dropped.
func (d *Reader) Next() (Event, error) {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return Event{}, err
		}
		switch b {
		case ACK, NAK, CAN:
			return Event{IsControl: true, Control: b}, nil
		case SOF:
			return d.readFrame()
		default:
			// junk byte outside of a frame: discard and keep scanning
			continue
		}
	}
}

func (d *Reader) readFrame() (Event, error) {
	length, err := d.r.ReadByte()
	if err != nil {
		return Event{}, err
	}
	if length == 0 {
		// a zero-length frame has no type byte; treat as junk and resume
		// scanning rather than blocking on a frame that can't exist.
		return d.Next()
	}
	body := make([]byte, int(length))
	if _, err := io.ReadFull(d.r, body); err != nil {
		return Event{}, err
	}
	cksum, err := d.r.ReadByte()
	if err != nil {
		return Event{}, err
	}
	typ := body[0]
	payload := body[1:]
	if checksum(length, typ, payload) != cksum {
		return Event{}, ErrChecksum
	}
	return Event{Frame: Frame{Type: typ, Payload: payload}}, nil
}
