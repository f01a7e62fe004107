package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoop_ProcessesSubmittedItems(t *testing.T) {
	var sum atomic.Int64
	l, err := New(Config[int]{
		Handler: HandlerFunc[int](func(item int) error {
			sum.Add(int64(item))
			return nil
		}),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 1; i <= 10; i++ {
		if err := l.Submit(ctx, i); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	if err := l.DrainTimeout(time.Second); err != nil {
		t.Fatalf("DrainTimeout failed: %v", err)
	}

	if got := sum.Load(); got != 55 {
		t.Errorf("sum = %d, want 55", got)
	}
}

func TestLoop_RequiresHandler(t *testing.T) {
	if _, err := New(Config[int]{}); err == nil {
		t.Errorf("expected error for missing handler")
	}
}

func TestLoop_SubmitBeforeStart(t *testing.T) {
	l, err := New(Config[int]{Handler: HandlerFunc[int](func(int) error { return nil })})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := l.Submit(context.Background(), 1); err == nil {
		t.Errorf("expected error when submitting before start")
	}
}

func TestLoop_SubmitAfterStop(t *testing.T) {
	l, err := New(Config[int]{Handler: HandlerFunc[int](func(int) error { return nil })})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := l.DrainTimeout(time.Second); err != nil {
		t.Fatalf("DrainTimeout failed: %v", err)
	}
	if err := l.Submit(ctx, 1); err == nil {
		t.Errorf("expected error when submitting after stop")
	}
}

func TestLoop_StartOnce(t *testing.T) {
	l, err := New(Config[int]{Handler: HandlerFunc[int](func(int) error { return nil })})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := l.Start(ctx); err == nil {
		t.Errorf("expected error on second start")
	}
}
