package client

import (
	"sync"
	"sync/atomic"
	"time"

	"binrpc/rpc"
	"binrpc/variable"
)

// Fault codes the correlation layer itself produces, as opposed to
// faults a remote handler chooses to return.
const (
	FaultCodeMethodNotFound = -32601
	FaultCodeNoResponse     = -1
	FaultCodeTransportError = -32500
)

// pendingCall is the Go analogue of RequestInfo+ResponseSlot: a single
// in-flight Invoke waits on it, keyed by callerID in Client.pending.
// Per the caller-identity expansion, one is allocated per Invoke call
// and torn down when it returns, rather than reused per OS thread.
type pendingCall struct {
	mu       sync.Mutex
	cond     *sync.Cond
	packetID int32
	finished bool
	timedOut bool
	result   *variable.Variable
}

func newPendingCall(packetID int32) *pendingCall {
	pc := &pendingCall{packetID: packetID}
	pc.cond = sync.NewCond(&pc.mu)
	return pc
}

// timeout marks the call as timed out and wakes its waiter; installed
// as the invoke-timeout callback.
func (pc *pendingCall) timeout() {
	pc.mu.Lock()
	pc.timedOut = true
	pc.mu.Unlock()
	pc.cond.Broadcast()
}

// wake wakes the waiter without changing its state, so it re-checks
// its predicate; used by Stop/Dispose to unblock every outstanding
// Invoke against a connection that is never coming back.
func (pc *pendingCall) wake() {
	pc.mu.Lock()
	pc.mu.Unlock()
	pc.cond.Broadcast()
}

// Invoke sends an outbound RPC request and blocks until a matching
// response arrives or the invoke timeout elapses, per the correlation
// layer's algorithm: allocate a callerID and packetID, register a
// pendingCall, encode and send the [callerID, packetID, args] envelope,
// wait on the call's condition variable, and always tear the call down
// on the way out.
func (c *Client) Invoke(method string, args ...*variable.Variable) *variable.Variable {
	callerID := atomic.AddInt64(&c.callerSeq, 1)
	packetID := atomic.AddInt32(&c.packetSeq, 1)

	pc := newPendingCall(packetID)
	c.pendingMu.Lock()
	c.pending[callerID] = pc
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, callerID)
		c.pendingMu.Unlock()
	}()

	envelope := []*variable.Variable{
		variable.Int64(callerID),
		variable.Int(packetID),
		variable.Arr(args...),
	}
	if err := c.engine.Send(rpc.EncodeRequest(method, envelope)); err != nil {
		return variable.NewFault(FaultCodeTransportError, err.Error())
	}

	timer := time.AfterFunc(c.invokeTimeout, pc.timeout)
	defer timer.Stop()

	pc.mu.Lock()
	for !pc.finished && !pc.timedOut && !c.isStopped() {
		pc.cond.Wait()
	}
	result := pc.result
	finished := pc.finished
	pc.mu.Unlock()

	if !finished {
		return variable.NewFault(FaultCodeNoResponse, "No response received.")
	}
	return result
}

// InvokeWithRetry wraps Invoke with exponential-backoff retry on a
// transport-level or timeout fault, per the Retry expansion. Invoke
// itself never retries; this is strictly an opt-in outer layer.
func (c *Client) InvokeWithRetry(method string, maxRetries int, args ...*variable.Variable) *variable.Variable {
	backoff := 100 * time.Millisecond
	var result *variable.Variable
	for attempt := 0; ; attempt++ {
		result = c.Invoke(method, args...)
		if !result.IsError {
			return result
		}
		fault := result.Fault()
		retryable := fault.FaultCode == FaultCodeTransportError || fault.FaultCode == FaultCodeNoResponse
		if !retryable || attempt >= maxRetries {
			return result
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}

// deliverResponse is called from the queue-1 worker when a response
// frame decodes into the expected 3-element [callerID, packetID,
// result] shape. A response naming a caller with no pendingCall left,
// or carrying the wrong packet id, is logged and dropped.
func (c *Client) deliverResponse(callerID int64, packetID int32, result *variable.Variable) {
	c.pendingMu.Lock()
	pc, ok := c.pending[callerID]
	c.pendingMu.Unlock()
	if !ok {
		c.log.Warning("response for unknown or already-completed caller, dropping", "callerID", callerID)
		return
	}

	pc.mu.Lock()
	if pc.packetID != packetID {
		pc.mu.Unlock()
		c.log.Warning("response packet id mismatch, dropping", "callerID", callerID, "want", pc.packetID, "got", packetID)
		return
	}
	pc.result = result
	pc.finished = true
	pc.mu.Unlock()
	pc.cond.Broadcast()
}

// wakeAllPending broadcasts every outstanding pendingCall, used by
// Stop/Dispose so no Invoke call is left blocked on a connection that
// is never coming back.
func (c *Client) wakeAllPending() {
	c.pendingMu.Lock()
	calls := make([]*pendingCall, 0, len(c.pending))
	for _, pc := range c.pending {
		calls = append(calls, pc)
	}
	c.pendingMu.Unlock()
	for _, pc := range calls {
		pc.wake()
	}
}
