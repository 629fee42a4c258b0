// Package transport is the non-blocking Unix-domain-socket connection
// engine: one dedicated reader goroutine running a poll/read loop, one
// long-lived lifecycle goroutine running connect/disconnect/error
// hooks, and a send path serialized under its own mutex.
//
// Grounded directly on the reference client's connect()/mainThread()
// algorithm, with its "spawn a maintenance thread per transition"
// pattern (flagged as brittle — see Design Notes) replaced by a single
// goroutine draining a channel of lifecycle events, the way the
// teacher's transport package channels responses through recvLoop
// instead of per-request goroutines.
package transport

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"binrpc/binlog"
	"binrpc/framing"
)

const (
	readChunkSize         = 1024
	pollTimeout           = 100 * time.Millisecond
	defaultReconnectDelay = 10 * time.Second
	reconnectRetryWait    = 2 * time.Second
)

// EngineOption configures an Engine at construction time. The
// reference implementation hardcodes its reconnect backoff; this
// implementation exposes it as a tunable per Configuration (the client
// package's WithReconnectBackoff threads through to here).
type EngineOption func(*Engine)

// WithReconnectBackoff overrides the default 10-second delay between
// reconnect attempts once a connection has been lost.
func WithReconnectBackoff(d time.Duration) EngineOption {
	return func(e *Engine) { e.reconnectBackoff = d }
}

// ErrNotConnected is returned by Send when there is no live connection.
var ErrNotConnected = errors.New("transport: not connected")

// Hooks are invoked from the engine's single lifecycle goroutine, never
// concurrently, and never from the reader goroutine directly.
type Hooks struct {
	OnConnect      func()
	OnDisconnect   func()
	OnConnectError func()
}

type lifecycleKind int

const (
	eventConnect lifecycleKind = iota
	eventDisconnect
	eventConnectError
)

// FrameHandler receives one fully reassembled frame. It is called from
// the reader goroutine; implementations that need to hand work off to
// other goroutines (the bounded multi-queue, in this client) must not
// block here beyond a bounded enqueue attempt.
type FrameHandler func(t framing.Type, data []byte)

// Engine owns one logical connection to a Unix-domain-socket endpoint,
// reconnecting on failure and feeding reassembled frames to a
// FrameHandler.
type Engine struct {
	path    string
	log     binlog.Logger
	hooks   Hooks
	onFrame FrameHandler

	stateMu sync.Mutex
	fd      int
	closed  bool

	sendMu sync.Mutex

	stopCh    chan struct{}
	readDone  chan struct{}
	lifecycle chan lifecycleKind
	lifeDone  chan struct{}

	reconnectBackoff time.Duration
}

// New builds an Engine for the given socket path. It does nothing until
// Start is called.
func New(path string, onFrame FrameHandler, hooks Hooks, logger binlog.Logger, opts ...EngineOption) *Engine {
	if logger == nil {
		logger = binlog.Nop{}
	}
	e := &Engine{
		path:             path,
		log:              logger,
		hooks:            hooks,
		onFrame:          onFrame,
		fd:               -1,
		closed:           true,
		reconnectBackoff: defaultReconnectDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start spawns the reader and lifecycle goroutines. Not safe to call
// more than once without an intervening Stop.
func (e *Engine) Start() {
	e.stopCh = make(chan struct{})
	e.readDone = make(chan struct{})
	e.lifecycle = make(chan lifecycleKind, 8)
	e.lifeDone = make(chan struct{})

	go e.lifecycleLoop()
	go e.readLoop()
}

// Stop closes the connection, signals both goroutines, and waits for
// them to exit. Stop on an Engine that was never started does nothing.
func (e *Engine) Stop() {
	if e.stopCh == nil {
		return
	}
	close(e.stopCh)
	e.stateMu.Lock()
	e.closed = true
	if e.fd != -1 {
		unix.Close(e.fd)
		e.fd = -1
	}
	e.stateMu.Unlock()

	<-e.readDone
	close(e.lifecycle)
	<-e.lifeDone
}

// Connected reports whether the engine currently holds a live
// connection.
func (e *Engine) Connected() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return !e.closed
}

// Send writes a complete frame to the connection under the dedicated
// send mutex, retrying on EAGAIN and returning an error on any other
// short send — the caller (the RPC correlation layer) turns a non-nil
// error into a faultCode -32500 Variable.
func (e *Engine) Send(data []byte) error {
	e.stateMu.Lock()
	fd, closed := e.fd, e.closed
	e.stateMu.Unlock()
	if closed || fd == -1 {
		return ErrNotConnected
	}

	e.sendMu.Lock()
	defer e.sendMu.Unlock()

	sent := 0
	for sent < len(data) {
		n, err := unix.Write(fd, data[sent:])
		if err != nil {
			if err == unix.EAGAIN {
				runtime.Gosched()
				continue
			}
			return fmt.Errorf("transport: send: %w", err)
		}
		if n <= 0 {
			return fmt.Errorf("transport: short send (%d of %d bytes)", sent, len(data))
		}
		sent += n
	}
	return nil
}

func (e *Engine) lifecycleLoop() {
	defer close(e.lifeDone)
	for kind := range e.lifecycle {
		switch kind {
		case eventConnect:
			if e.hooks.OnConnect != nil {
				e.hooks.OnConnect()
			}
		case eventDisconnect:
			if e.hooks.OnDisconnect != nil {
				e.hooks.OnDisconnect()
			}
		case eventConnectError:
			if e.hooks.OnConnectError != nil {
				e.hooks.OnConnectError()
			}
		}
	}
}

func (e *Engine) emit(kind lifecycleKind) {
	select {
	case e.lifecycle <- kind:
	default:
		e.log.Warning("lifecycle event dropped: channel full")
	}
}

// readLoop is the reader goroutine: connect-or-wait, poll, read, feed
// the framing state machine, dispatch completed frames.
func (e *Engine) readLoop() {
	defer close(e.readDone)

	e.tryConnect()

	buf := make([]byte, readChunkSize)
	framer := framing.New()

	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		e.stateMu.Lock()
		fd, closed := e.fd, e.closed
		e.stateMu.Unlock()

		if closed {
			e.tryConnect()
			e.stateMu.Lock()
			fd, closed = e.fd, e.closed
			e.stateMu.Unlock()
			if closed {
				if !e.sleepOrStop(e.reconnectBackoff) {
					return
				}
				continue
			}
			// A new connection starts a new byte stream: drop any partial
			// frame left over from the connection that was lost.
			framer.Reset()
		}

		ready, err := pollFD(fd, unix.POLLIN, pollTimeout)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			e.markDisconnected()
			if !e.sleepOrStop(e.reconnectBackoff) {
				return
			}
			continue
		}
		if !ready {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil || n <= 0 {
			e.markDisconnected()
			if !e.sleepOrStop(e.reconnectBackoff) {
				return
			}
			continue
		}

		e.feed(framer, buf[:n])
	}
}

func (e *Engine) feed(framer *framing.Framer, chunk []byte) {
	for len(chunk) > 0 {
		consumed, err := framer.Process(chunk)
		chunk = chunk[consumed:]
		if err != nil {
			e.log.Error("framing error, resetting", "err", err.Error())
			framer.Reset()
			continue
		}
		if framer.Finished() {
			data := append([]byte(nil), framer.Data()...)
			t := framer.Type()
			framer.Reset()
			if e.onFrame != nil {
				e.onFrame(t, data)
			}
		} else if consumed == 0 {
			return
		}
	}
}

func (e *Engine) markDisconnected() {
	e.stateMu.Lock()
	alreadyClosed := e.closed
	e.closed = true
	if e.fd != -1 {
		unix.Close(e.fd)
		e.fd = -1
	}
	e.stateMu.Unlock()
	if !alreadyClosed {
		e.log.Warning("connection to IPC server closed")
		e.emit(eventDisconnect)
	}
}

// tryConnect implements the reconnect-once-then-maintenance-callback
// pattern: one retry after a short delay, then give up until the main
// loop's 10-second backoff tries again.
func (e *Engine) tryConnect() {
	for attempt := 0; attempt < 2; attempt++ {
		fd, err := dialOnce(e.path)
		if err == nil {
			e.stateMu.Lock()
			e.fd = fd
			e.closed = false
			e.stateMu.Unlock()
			e.emit(eventConnect)
			return
		}
		if attempt == 0 {
			e.log.Debug("socket closed, trying again", "err", err.Error())
			if !e.sleepOrStop(reconnectRetryWait) {
				return
			}
			continue
		}
		e.log.Error("could not connect to socket", "path", e.path, "err", err.Error())
	}
	e.stateMu.Lock()
	e.closed = true
	e.stateMu.Unlock()
	e.emit(eventConnectError)
}

// sleepOrStop sleeps for d unless stopCh fires first, in which case it
// returns false so callers can bail out of their loop immediately.
func (e *Engine) sleepOrStop(d time.Duration) bool {
	select {
	case <-e.stopCh:
		return false
	case <-time.After(d):
		return true
	}
}
