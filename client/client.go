// Package client is the public facade: it wires the framing state
// machine, the bounded multi-queue, the connection engine, the onion
// middleware chain, and the RPC correlation layer into one
// bidirectional RPC client over a single Unix-domain-socket peer.
//
// Grounded on the reference client's IIpcClient (connect/mainThread/
// invoke/processQueueEntry/init), restructured so the transport engine
// stays ignorant of RPC semantics: the setPid handshake is a closure
// composed here over transport.Hooks.OnConnect, not code living inside
// the connection engine itself.
package client

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"binrpc/binlog"
	"binrpc/client/typedmethod"
	"binrpc/framing"
	"binrpc/middleware"
	"binrpc/queue"
	"binrpc/rpc"
	"binrpc/transport"
	"binrpc/variable"
)

const (
	defaultQueueCapacity = 100000
	defaultWorkerCount   = 10
	defaultInvokeTimeout = 10 * time.Second

	queueRequests  = 0
	queueResponses = 1
)

// LocalMethod is a server-initiated RPC handler registered against a
// method name: it receives the decoded argument array and returns the
// result Variable (use variable.NewFault for an error response).
type LocalMethod func(args []*variable.Variable) *variable.Variable

// Client is one logical connection to an RPC peer: it can both invoke
// methods on the peer and serve methods the peer invokes on it.
type Client struct {
	path string
	log  binlog.Logger

	queueCapacity    int
	workerCount      int
	invokeTimeout    time.Duration
	reconnectBackoff time.Duration

	rateLimitEnabled bool
	rateLimitRPS     float64
	rateLimitBurst   int

	userOnConnect      func()
	userOnDisconnect   func()
	userOnConnectError func()

	methodsMu sync.RWMutex
	methods   map[string]LocalMethod

	pendingMu sync.Mutex
	pending   map[int64]*pendingCall
	callerSeq int64
	packetSeq int32

	dispatchChain middleware.HandlerFunc

	queues *queue.MultiQueue
	engine *transport.Engine

	stopped   atomic.Bool
	disposing atomic.Bool
	stopOnce  sync.Once
}

// New builds a Client bound to a Unix-domain-socket path. It does
// nothing until Start is called.
func New(path string, opts ...Option) *Client {
	c := &Client{
		path:             path,
		log:              &binlog.StdLogger{},
		queueCapacity:    defaultQueueCapacity,
		workerCount:      defaultWorkerCount,
		invokeTimeout:    defaultInvokeTimeout,
		reconnectBackoff: 0, // resolved below once options have run
		methods:          make(map[string]LocalMethod),
		pending:          make(map[int64]*pendingCall),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = binlog.Nop{}
	}
	if c.reconnectBackoff <= 0 {
		c.reconnectBackoff = 10 * time.Second
	}

	c.registerReservedMethods()
	c.dispatchChain = c.buildDispatchChain()
	c.queues = queue.New(2, c.queueCapacity, c.handleQueueItem, c.log)

	engineOpts := []transport.EngineOption{transport.WithReconnectBackoff(c.reconnectBackoff)}
	hooks := transport.Hooks{
		OnConnect:      c.onTransportConnect,
		OnDisconnect:   c.onTransportDisconnect,
		OnConnectError: c.onTransportConnectError,
	}
	c.engine = transport.New(path, c.handleFrame, hooks, c.log, engineOpts...)
	return c
}

func (c *Client) buildDispatchChain() middleware.HandlerFunc {
	chain := []middleware.Middleware{middleware.LoggingMiddleware(c.log)}
	if c.rateLimitEnabled {
		chain = append(chain, middleware.RateLimitMiddleware(c.rateLimitRPS, c.rateLimitBurst))
	}
	return middleware.Chain(chain...)(c.localDispatch)
}

// Register installs or replaces the handler for method, including
// overriding one of the reserved method defaults.
func (c *Client) Register(method string, handler LocalMethod) {
	c.methodsMu.Lock()
	defer c.methodsMu.Unlock()
	c.methods[method] = handler
}

// RegisterTyped installs handler, a func(*Args, *Reply) error, as the
// handler for method via the typed-method adapter's reflection+JSON
// bridge. Returns an error if handler's signature doesn't match the
// convention.
func (c *Client) RegisterTyped(method string, handler any) error {
	adapted, err := typedmethod.Adapt(handler)
	if err != nil {
		return err
	}
	c.Register(method, LocalMethod(adapted))
	return nil
}

func (c *Client) localDispatch(ctx context.Context, req *middleware.Request) *variable.Variable {
	c.methodsMu.RLock()
	handler, ok := c.methods[req.Method]
	c.methodsMu.RUnlock()
	if !ok {
		return variable.NewFault(FaultCodeMethodNotFound, "Requested method not found.")
	}
	return handler(req.Args)
}

// Start spawns the queue workers and the connection engine's reader
// and lifecycle goroutines.
func (c *Client) Start() {
	c.queues.Start(queueRequests, false, c.workerCount)
	c.queues.Start(queueResponses, false, c.workerCount)
	c.engine.Start()
}

// Stop tears the connection and queues down and wakes every
// outstanding Invoke. Idempotent.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		c.wakeAllPending()
		c.engine.Stop()
		c.queues.Stop(queueRequests)
		c.queues.Stop(queueResponses)
	})
}

// Dispose marks the client as disposing (so Invoke never blocks again)
// and stops it. A disposed Client cannot be restarted.
func (c *Client) Dispose() {
	c.disposing.Store(true)
	c.Stop()
}

func (c *Client) isStopped() bool {
	return c.stopped.Load() || c.disposing.Load()
}

// onTransportConnect runs the setPid handshake before the user's
// onConnect hook, matching the reference implementation's init(): a
// handshake failure is logged as critical but does not prevent the
// user hook from firing, since the connection itself is up.
func (c *Client) onTransportConnect() {
	result := c.Invoke("setPid", variable.Int(int32(os.Getpid())))
	if result.IsError {
		fault := result.Fault()
		c.log.Critical("could not transmit PID to server", "faultCode", fault.FaultCode, "faultString", fault.FaultString)
	}
	if c.userOnConnect != nil {
		c.userOnConnect()
	}
}

func (c *Client) onTransportDisconnect() {
	if c.userOnDisconnect != nil {
		c.userOnDisconnect()
	}
}

func (c *Client) onTransportConnectError() {
	if c.userOnConnectError != nil {
		c.userOnConnectError()
	}
}

// handleFrame is the connection engine's FrameHandler: it routes a
// completed frame onto queue 0 (requests) or queue 1 (responses) by
// type, dropping it with a logged error if the queue is full.
func (c *Client) handleFrame(t framing.Type, data []byte) {
	idx := queueRequests
	if t == framing.TypeResponse {
		idx = queueResponses
	}
	if !c.queues.Enqueue(idx, data, false) {
		c.log.Error("queue full, dropping frame", "queue", idx)
	}
}

func (c *Client) handleQueueItem(index int, item any) {
	frame, ok := item.([]byte)
	if !ok {
		return
	}
	if index == queueRequests {
		c.dispatchRequest(frame)
	} else {
		c.dispatchResponse(frame)
	}
}

// dispatchRequest handles a server-initiated request: decode, run the
// middleware chain to the local method table, and reply with
// [callerPacketID, result], per the invocation convention.
func (c *Client) dispatchRequest(frame []byte) {
	method, params := rpc.DecodeRequest(frame)
	if len(params) != 3 || params[2].Type != variable.TypeArray {
		c.log.Error("malformed request frame, dropping", "method", method)
		return
	}
	packetID := params[1]
	req := &middleware.Request{Method: method, Args: params[2].Array}

	result := c.dispatchChain(context.Background(), req)

	reply := rpc.EncodeResponse(variable.Arr(packetID, result), result.IsError)
	if err := c.engine.Send(reply); err != nil {
		c.log.Error("failed to send response", "method", method, "err", err.Error())
	}
}

// dispatchResponse handles a reply to one of our own outbound Invoke
// calls: decode the [callerID, packetID, result] envelope and deliver
// it to the waiting pendingCall.
func (c *Client) dispatchResponse(frame []byte) {
	result := rpc.DecodeResponse(frame)
	if result.Type != variable.TypeArray || len(result.Array) != 3 {
		c.log.Error("response has wrong array size, dropping")
		return
	}
	callerID := result.Array[0].Integer64
	packetID := result.Array[1].Integer
	c.deliverResponse(callerID, packetID, result.Array[2])
}
