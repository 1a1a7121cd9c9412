package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Notification is one event posted to the Bus.
type Notification struct {
	Kind    Kind
	HomeID  uint32
	NodeID  uint8
	ValueID any // value.ID; typed any here to avoid an import cycle with package value
	Detail  string
}

// Watcher receives every Notification posted after it registers, in
// posting order.
type Watcher func(Notification)

// Bus is the driver-wide notification bus of spec.md §6. While the buffer
// has room, posts do not wait on watcher execution: a single dispatch
// goroutine drains an
// internal channel and invokes watchers serially, the same separation the
// teacher keeps between its I/O goroutine and the notifyHandler callback it
// invokes out-of-band.
type Bus struct {
	mu       sync.RWMutex
	watchers map[uuid.UUID]Watcher

	queue chan Notification
	done  chan struct{}
	once  sync.Once
}

// NewBus starts a Bus with the given pending-notification buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	b := &Bus{
		watchers: make(map[uuid.UUID]Watcher),
		queue:    make(chan Notification, buffer),
		done:     make(chan struct{}),
	}
	go b.dispatchLoop()
	return b
}

// Register adds w and returns a token usable with Unregister.
func (b *Bus) Register(w Watcher) uuid.UUID {
	token := uuid.New()
	b.mu.Lock()
	b.watchers[token] = w
	b.mu.Unlock()
	return token
}

// Unregister removes the watcher previously returned by Register.
func (b *Bus) Unregister(token uuid.UUID) {
	b.mu.Lock()
	delete(b.watchers, token)
	b.mu.Unlock()
}

// Post enqueues n for delivery. If the buffer is full, Post blocks until
// the dispatch goroutine takes a notification off it or the Bus is closed.
func (b *Bus) Post(n Notification) {
	select {
	case b.queue <- n:
	case <-b.done:
	}
}

func (b *Bus) dispatchLoop() {
	for {
		select {
		case n := <-b.queue:
			b.mu.RLock()
			watchers := make([]Watcher, 0, len(b.watchers))
			for _, w := range b.watchers {
				watchers = append(watchers, w)
			}
			b.mu.RUnlock()
			for _, w := range watchers {
				w(n)
			}
		case <-b.done:
			return
		}
	}
}

// Close stops the dispatch goroutine. Posts after Close are dropped.
func (b *Bus) Close() {
	b.once.Do(func() { close(b.done) })
}
