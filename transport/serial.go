package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tarm/serial"
)

// Serial is the USB/serial controller-stick Transport, the primary way a
// Z-Wave controller is attached. Grounded on amken3d-gopper's
// HostTransport, which wraps the same kind of io.ReadWriteCloser serial
// port underneath a host-side protocol engine.
type Serial struct {
	path string
	baud int

	mu   sync.Mutex
	port *serial.Port
}

// NewSerial returns a Serial transport for the given device path
// (e.g. "/dev/ttyACM0" or "COM3") at the Z-Wave controller's fixed baud
// rate of 115200.
func NewSerial(path string) *Serial {
	return &Serial{path: path, baud: 115200}
}

func (s *Serial) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return nil // idempotent
	}
	cfg := &serial.Config{
		Name:        s.path,
		Baud:        s.baud,
		ReadTimeout: 100 * time.Millisecond,
	}
	p, err := serial.OpenPort(cfg)
	if err != nil {
		return fmt.Errorf("transport: open serial %s: %w", s.path, err)
	}
	s.port = p
	return nil
}

func (s *Serial) Read(p []byte) (int, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return 0, ErrNotOpen
	}
	return port.Read(p)
}

func (s *Serial) Write(p []byte) (int, error) {
	s.mu.Lock()
	port := s.port
	s.mu.Unlock()
	if port == nil {
		return 0, ErrNotOpen
	}
	return port.Write(p)
}

func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil // idempotent
	}
	err := s.port.Close()
	s.port = nil
	return err
}

func (s *Serial) String() string { return fmt.Sprintf("serial:%s", s.path) }

var _ Transport = (*Serial)(nil)
