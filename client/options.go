package client

import (
	"time"

	"binrpc/binlog"
)

// Option configures a Client at construction time. Tunables the
// reference implementation leaves as constants (queue depth, worker
// count, invoke timeout, reconnect backoff, rate limiting) are exposed
// this way instead, per the Configuration expansion.
type Option func(*Client)

// WithLogger injects the logging sink every layer writes through.
// Defaults to a StdLogger with Verbose=false.
func WithLogger(logger binlog.Logger) Option {
	return func(c *Client) { c.log = logger }
}

// WithQueueCapacity sets the bounded multi-queue's per-queue capacity.
// Defaults to 100000, matching the reference implementation.
func WithQueueCapacity(n int) Option {
	return func(c *Client) { c.queueCapacity = n }
}

// WithWorkerCount sets the worker goroutine pool size for each queue.
// Defaults to 10, matching the reference implementation.
func WithWorkerCount(n int) Option {
	return func(c *Client) { c.workerCount = n }
}

// WithInvokeTimeout overrides the default 10-second bound Invoke waits
// for a matching response before returning a faultCode -1 Variable.
func WithInvokeTimeout(d time.Duration) Option {
	return func(c *Client) { c.invokeTimeout = d }
}

// WithReconnectBackoff overrides the default 10-second delay the
// connection engine waits between reconnect attempts.
func WithReconnectBackoff(d time.Duration) Option {
	return func(c *Client) { c.reconnectBackoff = d }
}

// WithRateLimit enables the rate-limit middleware on inbound
// local-method dispatch (queue 0), guarding against a misbehaving or
// compromised peer flooding server-initiated requests. Disabled
// (unlimited) by default.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		c.rateLimitEnabled = true
		c.rateLimitRPS = requestsPerSecond
		c.rateLimitBurst = burst
	}
}

// WithOnConnect registers a hook fired after a successful connect and
// the setPid handshake, from the client's single lifecycle goroutine.
func WithOnConnect(fn func()) Option {
	return func(c *Client) { c.userOnConnect = fn }
}

// WithOnDisconnect registers a hook fired when the connection is lost,
// from the client's single lifecycle goroutine.
func WithOnDisconnect(fn func()) Option {
	return func(c *Client) { c.userOnDisconnect = fn }
}

// WithOnConnectError registers a hook fired when both connect attempts
// fail, from the client's single lifecycle goroutine.
func WithOnConnectError(fn func()) Option {
	return func(c *Client) { c.userOnConnectError = fn }
}
