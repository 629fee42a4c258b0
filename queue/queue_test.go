package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"binrpc/binlog"
)

func TestEnqueueDeliversAllItems(t *testing.T) {
	var delivered int64
	var wg sync.WaitGroup
	wg.Add(100)
	q := New(1, 16, func(index int, item any) {
		atomic.AddInt64(&delivered, 1)
		wg.Done()
	}, binlog.Nop{})
	q.Start(0, true, 4)
	defer q.Stop(0)

	for i := 0; i < 100; i++ {
		if !q.Enqueue(0, i, false) {
			t.Fatalf("enqueue %d unexpectedly rejected", i)
		}
	}
	waitOrTimeout(t, &wg, time.Second)
	if got := atomic.LoadInt64(&delivered); got != 100 {
		t.Fatalf("delivered %d, want 100", got)
	}
}

func TestEnqueueDropsWhenFullAndNotWaiting(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{}, 1)
	q := New(1, 2, func(index int, item any) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-block
	}, binlog.Nop{})
	q.Start(0, false, 1)
	defer func() {
		close(block)
		q.Stop(0)
	}()

	if !q.Enqueue(0, "a", false) {
		t.Fatal("first enqueue should succeed")
	}
	<-started // worker is now blocked processing "a"

	if !q.Enqueue(0, "b", false) {
		t.Fatal("second enqueue should fill the buffer and succeed")
	}
	if !q.Enqueue(0, "c", false) {
		t.Fatal("third enqueue should fill the buffer and succeed")
	}
	if q.Enqueue(0, "d", false) {
		t.Fatal("fourth enqueue should be rejected: queue full, wait disabled")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	q := New(1, 4, func(int, any) {}, binlog.Nop{})
	q.Start(0, true, 2)
	q.Stop(0)
	q.Stop(0) // must not hang or panic
}

func TestEnqueueAfterStopIsDropped(t *testing.T) {
	q := New(1, 4, func(int, any) {}, binlog.Nop{})
	q.Start(0, true, 1)
	q.Stop(0)
	if !q.Enqueue(0, "x", false) {
		t.Fatal("enqueue after stop should report success (silently dropped)")
	}
}

func TestIndependentQueuesDoNotInterfere(t *testing.T) {
	var q0, q1 int64
	var wg sync.WaitGroup
	wg.Add(20)
	q := New(2, 8, func(index int, item any) {
		if index == 0 {
			atomic.AddInt64(&q0, 1)
		} else {
			atomic.AddInt64(&q1, 1)
		}
		wg.Done()
	}, binlog.Nop{})
	q.Start(0, true, 2)
	q.Start(1, true, 2)
	defer q.Stop(0)
	defer q.Stop(1)

	for i := 0; i < 10; i++ {
		q.Enqueue(0, i, false)
		q.Enqueue(1, i, false)
	}
	waitOrTimeout(t, &wg, time.Second)
	if q0 != 10 || q1 != 10 {
		t.Fatalf("q0=%d q1=%d, want 10/10", q0, q1)
	}
}

func TestHandlerPanicDoesNotKillWorker(t *testing.T) {
	var processed int64
	var wg sync.WaitGroup
	wg.Add(1)
	q := New(1, 4, func(index int, item any) {
		if item == "boom" {
			panic("handler exploded")
		}
		atomic.AddInt64(&processed, 1)
		wg.Done()
	}, binlog.Nop{})
	q.Start(0, true, 1)
	defer q.Stop(0)

	q.Enqueue(0, "boom", false)
	q.Enqueue(0, "ok", false)
	waitOrTimeout(t, &wg, time.Second)
	if atomic.LoadInt64(&processed) != 1 {
		t.Fatal("worker should survive a handler panic and keep processing")
	}
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for delivery")
	}
}
