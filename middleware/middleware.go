// Package middleware implements the onion-model chain that wraps
// inbound local-method dispatch (queue 0 of the bounded multi-queue)
// with cross-cutting concerns — logging and rate limiting — before the
// request reaches the local method table.
//
// Onion model execution order is unchanged from the teacher's chain:
//
//	Chain(A, B, C)(handler)  →  A(B(C(handler)))
//
// Only the request/response shape changed, from *message.RPCMessage to
// the dynamic *variable.Variable world the wire protocol actually
// carries.
package middleware

import (
	"context"

	"binrpc/variable"
)

// Request is what queue-0 dispatch hands to the middleware chain: the
// inbound method name and its already-decoded argument array.
type Request struct {
	Method string
	Args   []*variable.Variable
}

// HandlerFunc is the request handler signature shared by the business
// handler (the local method table lookup+invoke) and every middleware
// layer wrapping it.
type HandlerFunc func(ctx context.Context, req *Request) *variable.Variable

// Middleware decorates a HandlerFunc with additional behavior.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain composes middlewares so the first one is outermost: it runs
// first on the way in and last on the way out.
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
