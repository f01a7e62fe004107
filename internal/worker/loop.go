package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// Handler processes items submitted to the loop.
type Handler[T any] interface {
	Handle(item T) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc[T any] func(item T) error

func (f HandlerFunc[T]) Handle(item T) error {
	return f(item)
}

// Config controls the behaviour of the single thread loop.
type Config[T any] struct {
	Handler   Handler[T]
	QueueSize int
	Logger    *slog.Logger
}

// Loop delivers incoming items to the provided handler on a single goroutine.
// It serializes all mutations behind one consumer, so handlers never need locks.
type Loop[T any] struct {
	handler Handler[T]
	queue   chan T
	logger  *slog.Logger

	started atomic.Bool
	stopped atomic.Bool

	done chan struct{}
}

// New creates a Loop with the supplied configuration.
func New[T any](cfg Config[T]) (*Loop[T], error) {
	if cfg.Handler == nil {
		return nil, errors.New("loop: handler is required")
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop[T]{
		handler: cfg.Handler,
		queue:   make(chan T, queueSize),
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start launches the single-thread loop. It must be called once.
func (l *Loop[T]) Start(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return errors.New("loop: start called multiple times")
	}
	go l.run(ctx)
	return nil
}

func (l *Loop[T]) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop: context cancelled, shutting down", "error", ctx.Err())
			return
		case item, ok := <-l.queue:
			if !ok {
				l.logger.Info("loop: queue closed, exiting")
				return
			}
			if err := l.handler.Handle(item); err != nil {
				l.logger.Error("loop: handler error", "error", err)
			}
		}
	}
}

// Submit enqueues an item to be processed by the loop.
func (l *Loop[T]) Submit(ctx context.Context, item T) error {
	if !l.started.Load() {
		return errors.New("loop: not started")
	}
	if l.stopped.Load() {
		return errors.New("loop: stopped")
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case l.queue <- item:
		return nil
	}
}

// Stop drains the loop and waits for graceful completion.
func (l *Loop[T]) Stop(ctx context.Context) error {
	if !l.stopped.CompareAndSwap(false, true) {
		return errors.New("loop: stop called multiple times")
	}
	close(l.queue)
	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DrainTimeout closes the queue and waits for completion with the given timeout.
func (l *Loop[T]) DrainTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return l.Stop(ctx)
}
