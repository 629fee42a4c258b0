package middleware

import (
	"context"
	"testing"

	"binrpc/binlog"
	"binrpc/variable"
)

func echoHandler(ctx context.Context, req *Request) *variable.Variable {
	return variable.Str("ok")
}

func TestLoggingPassesThroughResult(t *testing.T) {
	handler := LoggingMiddleware(binlog.Nop{})(echoHandler)
	result := handler(context.Background(), &Request{Method: "echo"})
	if result.String != "ok" {
		t.Fatalf("got %+v", result)
	}
}

func TestLoggingSurfacesFault(t *testing.T) {
	faulting := func(ctx context.Context, req *Request) *variable.Variable {
		return variable.NewFault(-32601, "method not found")
	}
	handler := LoggingMiddleware(binlog.Nop{})(faulting)
	result := handler(context.Background(), &Request{Method: "missing"})
	if !result.IsError {
		t.Fatal("expected fault to pass through unchanged")
	}
}

func TestRateLimitAllowsBurstThenRejects(t *testing.T) {
	handler := RateLimitMiddleware(1, 2)(echoHandler)
	req := &Request{Method: "echo"}

	for i := 0; i < 2; i++ {
		result := handler(context.Background(), req)
		if result.IsError {
			t.Fatalf("request %d should pass within burst", i)
		}
	}
	result := handler(context.Background(), req)
	if !result.IsError || result.Get("faultCode").Integer != FaultCodeRateLimited {
		t.Fatalf("request 3 should be rate limited, got %+v", result)
	}
}

func TestChainRunsOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(ctx context.Context, req *Request) *variable.Variable {
				order = append(order, name+":before")
				result := next(ctx, req)
				order = append(order, name+":after")
				return result
			}
		}
	}
	chained := Chain(mark("A"), mark("B"))
	handler := chained(echoHandler)
	handler(context.Background(), &Request{Method: "x"})

	want := []string{"A:before", "B:before", "B:after", "A:after"}
	if len(order) != len(want) {
		t.Fatalf("got %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}
