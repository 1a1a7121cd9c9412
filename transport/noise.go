package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/flynn/noise"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherAESGCM, noise.HashSHA256)

// EncryptedTCP is TCP secured with a Noise NN handshake (no static keys,
// anonymous), for a controller reachable only over an untrusted network
// link. This secures the *transport*; it adds no Z-Wave-level
// cryptography and doesn't touch the non-goal of radio-level crypto.
// Grounded directly on Atsika-aznet's crypto.go (Noise handshake state
// machine, length-prefixed Seal/Unseal chunking).
type EncryptedTCP struct {
	tcp *TCP

	mu   sync.Mutex
	send *noise.CipherState
	recv *noise.CipherState
	// pending holds decrypted bytes not yet consumed by a Read call.
	pending []byte
}

// NewEncryptedTCP returns an EncryptedTCP transport dialing addr and
// performing the Noise handshake as the initiator once the TCP connection
// is up.
func NewEncryptedTCP(addr string) *EncryptedTCP {
	return &EncryptedTCP{tcp: NewTCP(addr)}
}

func (e *EncryptedTCP) Open(ctx context.Context) error {
	if err := e.tcp.Open(ctx); err != nil {
		return err
	}
	e.mu.Lock()
	done := e.send != nil
	e.mu.Unlock()
	if done {
		return nil // idempotent
	}
	return e.handshake()
}

func (e *EncryptedTCP) handshake() error {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite: cipherSuite,
		Pattern:     noise.HandshakeNN,
		Initiator:   true,
	})
	if err != nil {
		return fmt.Errorf("transport: noise init: %w", err)
	}

	// -> e
	msg, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return fmt.Errorf("transport: noise handshake write: %w", err)
	}
	if err := e.writeFrame(msg); err != nil {
		return err
	}

	// <- e, ee
	reply, err := e.readFrame()
	if err != nil {
		return fmt.Errorf("transport: noise handshake read: %w", err)
	}
	_, cs1, cs2, err := hs.ReadMessage(nil, reply)
	if err != nil {
		return fmt.Errorf("transport: noise handshake decode: %w", err)
	}
	if cs1 == nil || cs2 == nil {
		return fmt.Errorf("transport: noise handshake did not complete")
	}
	e.mu.Lock()
	e.send, e.recv = cs1, cs2
	e.mu.Unlock()
	return nil
}

// writeFrame/readFrame move raw (unencrypted, handshake-phase) length
// prefixed messages directly over the underlying TCP transport.
func (e *EncryptedTCP) writeFrame(msg []byte) error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(msg)))
	if _, err := e.tcp.Write(hdr[:]); err != nil {
		return err
	}
	_, err := e.tcp.Write(msg)
	return err
}

func (e *EncryptedTCP) readFrame() ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(readerFunc(e.tcp.Read), hdr[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr[:])
	buf := make([]byte, length)
	if _, err := io.ReadFull(readerFunc(e.tcp.Read), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readerFunc adapts a Read method value to io.Reader for io.ReadFull.
type readerFunc func([]byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }

// Read decrypts application-layer chunks as they arrive, buffering any
// decrypted bytes beyond what the caller asked for.
func (e *EncryptedTCP) Read(p []byte) (int, error) {
	e.mu.Lock()
	if len(e.pending) > 0 {
		n := copy(p, e.pending)
		e.pending = e.pending[n:]
		e.mu.Unlock()
		return n, nil
	}
	recv := e.recv
	e.mu.Unlock()
	if recv == nil {
		return 0, ErrNotOpen
	}

	ciphertext, err := e.readFrame()
	if err != nil {
		return 0, err
	}
	plaintext, err := recv.Decrypt(nil, nil, ciphertext)
	if err != nil {
		return 0, fmt.Errorf("transport: noise decrypt: %w", err)
	}

	e.mu.Lock()
	n := copy(p, plaintext)
	e.pending = append(e.pending, plaintext[n:]...)
	e.mu.Unlock()
	return n, nil
}

// Write encrypts and frames one application-layer chunk per call, mirroring
// Atsika-aznet's SealData (4-byte length prefix + AES-GCM tag).
func (e *EncryptedTCP) Write(p []byte) (int, error) {
	e.mu.Lock()
	send := e.send
	e.mu.Unlock()
	if send == nil {
		return 0, ErrNotOpen
	}
	ciphertext, err := send.Encrypt(nil, nil, p)
	if err != nil {
		return 0, fmt.Errorf("transport: noise encrypt: %w", err)
	}
	if err := e.writeFrame(ciphertext); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (e *EncryptedTCP) Close() error { return e.tcp.Close() }

func (e *EncryptedTCP) String() string { return "noise+" + e.tcp.String() }

var _ Transport = (*EncryptedTCP)(nil)
