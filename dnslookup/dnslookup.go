// Package dnslookup implements the DNS auxiliary thread of spec.md §5/§6:
// a single goroutine draining a FIFO of TXT lookup requests (one
// outstanding lookup at a time, as the original single-threaded
// resolver did) and always posting a DnsResult back to the driver — even
// when the lookup failed — so a caller waiting on that node is never left
// hanging. Grounded directly on DNSThread.cpp's sendRequest/processResult
// pair: push onto a list under a lock, signal an event, pop-and-resolve
// one at a time on the worker goroutine, report the outcome unconditionally.
package dnslookup

import (
	"context"
	"net"
	"sync"

	"github.com/go-zwave/zwave/clog"
)

// Status mirrors DNSThread.cpp's DNSLookup::status codes.
type Status uint8

const (
	StatusPending Status = iota
	StatusOK
	StatusFailed
)

// Lookup is one request/result pair.
type Lookup struct {
	NodeID uint8
	Query  string
	Result string
	Status Status
}

// ResultHandler receives the completed Lookup, success or failure.
type ResultHandler func(Lookup)

// Resolver is the stdlib TXT lookup used by default; callers needing a
// stub for tests can inject a narrower function via NewWithResolver.
type Resolver func(ctx context.Context, query string) (string, error)

func defaultResolver(ctx context.Context, query string) (string, error) {
	var r net.Resolver
	records, err := r.LookupTXT(ctx, query)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", nil
	}
	return records[0], nil
}

// Thread is the DNS auxiliary thread.
type Thread struct {
	clog.Clog

	mu    sync.Mutex
	queue []Lookup

	signal chan struct{}
	done   chan struct{}
	once   sync.Once

	resolver Resolver
	onResult ResultHandler
}

// New starts a Thread using the stdlib resolver.
func New(onResult ResultHandler) *Thread {
	return NewWithResolver(defaultResolver, onResult)
}

// NewWithResolver starts a Thread using a caller-supplied resolver, e.g. a
// fake for tests.
func NewWithResolver(resolver Resolver, onResult ResultHandler) *Thread {
	t := &Thread{
		Clog:     clog.NewLogger("dnslookup => "),
		signal:   make(chan struct{}, 1),
		done:     make(chan struct{}),
		resolver: resolver,
		onResult: onResult,
	}
	go t.run()
	return t
}

// SendRequest queues a TXT lookup for nodeID.
func (t *Thread) SendRequest(nodeID uint8, query string) {
	t.Debug("queuing lookup on %s for node %d", query, nodeID)
	t.mu.Lock()
	t.queue = append(t.queue, Lookup{NodeID: nodeID, Query: query, Status: StatusPending})
	t.mu.Unlock()
	select {
	case t.signal <- struct{}{}:
	default:
	}
}

// Stop halts the thread; any queued-but-unprocessed lookups are dropped.
func (t *Thread) Stop() {
	t.once.Do(func() { close(t.done) })
}

func (t *Thread) run() {
	for {
		select {
		case <-t.done:
			return
		case <-t.signal:
			t.drain()
		}
	}
}

func (t *Thread) drain() {
	for {
		t.mu.Lock()
		if len(t.queue) == 0 {
			t.mu.Unlock()
			return
		}
		lookup := t.queue[0]
		t.queue = t.queue[1:]
		t.mu.Unlock()

		result, err := t.resolver(context.Background(), lookup.Query)
		if err != nil {
			t.Warn("lookup on %s failed: %v", lookup.Query, err)
			lookup.Status = StatusFailed
		} else {
			t.Debug("lookup for %s returned %s", lookup.Query, result)
			lookup.Result = result
			lookup.Status = StatusOK
		}

		// Always post a result, success or failure, so the caller driving
		// discovery for this node is never left waiting indefinitely.
		if t.onResult != nil {
			t.onResult(lookup)
		}
	}
}
