// Package engine implements the transmit engine of spec.md §4.2: the
// single-in-flight-message state machine (Idle -> Sent -> WaitingForAck ->
// WaitingForCallback -> WaitingForReply -> Done) that drains the send
// queue, frames and writes each message, tracks ACK/NAK/CAN and timeouts,
// and retries up to budget before giving up. Grounded directly on the
// teacher's cs104.Client.run() select loop over a ticker and a receive
// channel, generalized from IEC104's sequence-numbered I-frame windowing
// to Z-Wave's simpler one-at-a-time ACK/callback/reply handshake.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/go-zwave/zwave/clog"
	"github.com/go-zwave/zwave/frame"
	"github.com/go-zwave/zwave/msg"
	"github.com/go-zwave/zwave/queue"
	"github.com/go-zwave/zwave/transport"
)

// Defaults for the three timeout phases, per spec.md §4.2.
const (
	DefaultAckTimeout      = 1 * time.Second
	DefaultCallbackTimeout = 5 * time.Second
	DefaultReplyTimeout    = 5 * time.Second
)

// ReportHandler is invoked for every inbound data frame that the state
// machine does not itself consume as the in-flight message's ACK,
// callback or reply — i.e. every unsolicited report from a node. It is
// the command-class dispatcher's entry point.
type ReportHandler func(f frame.Frame)

// Engine is the transmit engine: one goroutine draining a Queue, framing
// and writing each Msg, and tracking its ACK/callback/reply life cycle.
type Engine struct {
	clog.Clog

	transport transport.Transport
	queue     *queue.Queue
	reports   ReportHandler

	ackTimeout      time.Duration
	callbackTimeout time.Duration
	replyTimeout    time.Duration

	rcvEvents chan frame.Event
	rcvErr    chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an Engine reading/writing over t and draining q. reports may
// be nil.
func New(t transport.Transport, q *queue.Queue, reports ReportHandler) *Engine {
	return &Engine{
		Clog:            clog.NewLogger("engine => "),
		transport:       t,
		queue:           q,
		reports:         reports,
		ackTimeout:      DefaultAckTimeout,
		callbackTimeout: DefaultCallbackTimeout,
		replyTimeout:    DefaultReplyTimeout,
		rcvEvents:       make(chan frame.Event, 32),
		rcvErr:          make(chan error, 1),
	}
}

// Start begins draining the queue and reading the transport. It returns
// once both internal goroutines have been launched; call Stop (or cancel
// ctx) to shut down.
func (e *Engine) Start(ctx context.Context) {
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.wg.Add(2)
	go e.recvLoop()
	go e.run()
}

// Stop cancels the engine and waits for both goroutines to exit.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()
}

func (e *Engine) recvLoop() {
	defer e.wg.Done()
	r := frame.NewReader(readerAdapter{e.transport})
	for {
		ev, err := r.Next()
		if err != nil {
			if err == frame.ErrChecksum {
				e.Warn("dropped frame with bad checksum, NAKing")
				if _, werr := e.transport.Write([]byte{frame.NAK}); werr != nil {
					e.Error("NAK write failed: %v", werr)
				}
				continue
			}
			select {
			case e.rcvErr <- err:
			default:
			}
			return
		}
		select {
		case e.rcvEvents <- ev:
		case <-e.ctx.Done():
			return
		}
	}
}

// readerAdapter satisfies io.Reader over the Transport interface, which
// exposes Read directly but is not itself an io.Reader to keep Transport
// minimal for implementers (mirrors the teacher's raw net.Conn usage,
// adapted to our Transport abstraction instead of net.Conn directly).
type readerAdapter struct {
	t transport.Transport
}

func (a readerAdapter) Read(p []byte) (int, error) { return a.t.Read(p) }

func (e *Engine) sendFrame(m *msg.Msg) {
	e.Debug("TX node=%d trace=%s frame=%s attempt=%d/%d", m.NodeID, m.TraceID, m.Frame, m.Attempt+1, m.MaxAttempts)
	payload, err := frame.Encode(m.Frame)
	if err != nil {
		e.Error("encode failed trace=%s: %v", m.TraceID, err)
		return
	}
	if _, err := e.transport.Write(payload); err != nil {
		e.Error("write failed trace=%s: %v", m.TraceID, err)
	}
}

// run is the state machine: drains the queue one message at a time,
// tracking it through Sent/WaitingForAck/WaitingForCallback/WaitingForReply
// until Done or its retry budget is exhausted.
func (e *Engine) run() {
	defer e.wg.Done()

	var current *msg.Msg
	state := Idle

	var timer *time.Timer
	var timeoutC <-chan time.Time

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	arm := func(d time.Duration) {
		stopTimer()
		timer = time.NewTimer(d)
		timeoutC = timer.C
	}

	finish := func(err error) {
		if current != nil {
			if err != nil {
				e.Warn("msg failed trace=%s node=%d: %v", current.TraceID, current.NodeID, err)
			} else {
				e.Debug("msg done trace=%s node=%d", current.TraceID, current.NodeID)
			}
			current.Finish(err)
		}
		current = nil
		state = Idle
		stopTimer()
		timeoutC = nil
	}

	// advance moves the in-flight message to whichever of
	// WaitingForCallback/WaitingForReply/Done applies next, after its ACK
	// (or its callback) has just been satisfied.
	advance := func() {
		switch {
		case state == WaitingForAck && current.HasCallback:
			state = WaitingForCallback
			arm(e.callbackTimeout)
		case state != WaitingForReply && current.HasExpected:
			state = WaitingForReply
			arm(e.replyTimeout)
		default:
			finish(nil)
		}
	}

	retry := func(sentinel error) {
		current.Attempt++
		if current.ExhaustedRetries() {
			finish(sentinel)
			return
		}
		e.sendFrame(current)
		state = WaitingForAck
		arm(e.ackTimeout)
	}

	for {
		if state == Idle {
			if m, ok := e.queue.Pop(); ok {
				current = m
				e.sendFrame(current)
				state = WaitingForAck
				arm(e.ackTimeout)
			}
		}

		select {
		case <-e.ctx.Done():
			if current != nil {
				finish(ErrCancelled)
			}
			return

		case err := <-e.rcvErr:
			e.Error("receive loop stopped: %v", err)
			if current != nil {
				finish(err)
			}
			return

		case <-e.queue.Notify():
			continue

		case ev := <-e.rcvEvents:
			if ev.IsControl {
				switch ev.Control {
				case frame.ACK:
					if state == WaitingForAck {
						advance()
					}
				case frame.NAK:
					if state == WaitingForAck {
						retry(ErrNAK)
					}
				case frame.CAN:
					if state == WaitingForAck {
						retry(ErrCAN)
					}
				}
				continue
			}

			if state == WaitingForCallback && current != nil && current.MatchesCallback(ev.Frame) {
				advance()
				continue
			}
			if state == WaitingForReply && current != nil && current.MatchesReply(current.NodeID, ev.Frame) {
				finish(nil)
				continue
			}
			if e.reports != nil {
				e.reports(ev.Frame)
			}

		case <-timeoutC:
			switch state {
			case WaitingForAck:
				retry(ErrAckTimeout)
			case WaitingForCallback:
				finish(ErrCallbackTimeout)
			case WaitingForReply:
				finish(ErrReplyTimeout)
			}
		}
	}
}
