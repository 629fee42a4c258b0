package middleware

import (
	"context"
	"time"

	"binrpc/binlog"
	"binrpc/variable"
)

// LoggingMiddleware records the inbound method name and dispatch
// duration at debug level, and the fault (if any) at warning level,
// mirroring the teacher's LoggingMiddleware.
func LoggingMiddleware(logger binlog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) *variable.Variable {
			start := time.Now()
			result := next(ctx, req)
			logger.Debug("dispatched local method", "method", req.Method, "duration", time.Since(start))
			if result != nil && result.IsError {
				logger.Warning("local method returned fault", "method", req.Method, "faultCode", result.Get("faultCode"))
			}
			return result
		}
	}
}
