package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"binrpc/variable"
)

// FaultCodeRateLimited is returned when RateLimitMiddleware rejects an
// inbound request. It has no analog on the wire protocol's reserved
// fault codes (§7); it is purely a local-dispatch-time guard against a
// misbehaving or compromised peer.
const FaultCodeRateLimited = -32000

// RateLimitMiddleware guards local-method dispatch with a token-bucket
// limiter (grounded on the teacher's RateLimitMiddleware). The limiter
// is constructed once, shared across every request the chain handles —
// building it per-request would hand every caller a fresh full bucket
// and defeat the point of rate limiting.
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *variable.Variable {
			if !limiter.Allow() {
				return variable.NewFault(FaultCodeRateLimited, "rate limit exceeded")
			}
			return next(ctx, req)
		}
	}
}
