// Package transport provides the abstract byte stream the driver speaks
// the serial-API framing over (spec.md §4.1 component 1): open, read,
// write, close. Concrete variants: Serial (USB/serial controller stick),
// TCP (network-bridged controller) and EncryptedTCP (TCP secured with a
// Noise handshake). The driver core consumes all of them through the
// Transport interface only.
package transport

import "context"

// Transport is the fixed interface the driver core consumes every
// concrete byte stream through. Read and Write behave like io.Reader /
// io.Writer; Open and Close are idempotent the way driver.Driver's
// Open/Close are (spec.md §5 "Resource scoping").
type Transport interface {
	Open(ctx context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	// String identifies the transport for log lines, e.g. "serial:/dev/ttyACM0".
	String() string
}
