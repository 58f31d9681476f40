package sink

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Sammers21/owl-esports/pkg/types"
)

// Dispatcher is a one-way mailbox in front of a Sink. Send never blocks;
// a single goroutine delivers in order and only logs failures.
type Dispatcher struct {
	inbox   chan types.Delivery
	sink    Sink
	timeout time.Duration
	logger  *zap.Logger
	observe func(sink string, err error)

	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type DispatcherOption func(*Dispatcher)

func WithTimeout(d time.Duration) DispatcherOption {
	return func(x *Dispatcher) { x.timeout = d }
}

func WithLogger(l *zap.Logger) DispatcherOption {
	return func(x *Dispatcher) { x.logger = l }
}

func WithBuffer(n int) DispatcherOption {
	return func(x *Dispatcher) { x.inbox = make(chan types.Delivery, n) }
}

// WithObserver is called after every delivery attempt.
func WithObserver(fn func(sink string, err error)) DispatcherOption {
	return func(x *Dispatcher) { x.observe = fn }
}

func NewDispatcher(parent context.Context, s Sink, opts ...DispatcherOption) *Dispatcher {
	ctx, cancel := context.WithCancel(parent)
	d := &Dispatcher{
		inbox:   make(chan types.Delivery, 16),
		sink:    s,
		timeout: 10 * time.Second,
		logger:  zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.loop()
	return d
}

// Send queues d. It reports false when the dispatcher is closed or full.
func (d *Dispatcher) Send(del types.Delivery) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.inbox <- del:
		return true
	default:
		d.logger.Warn("delivery queue full, dropping pick line",
			zap.String("sink", d.sink.Name()), zap.String("match", del.Match))
		return false
	}
}

// Close stops accepting deliveries and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.inbox)
	}
	d.mu.Unlock()
	<-d.done
	d.cancel()
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for {
		select {
		case <-d.ctx.Done():
			return
		case del, ok := <-d.inbox:
			if !ok {
				return
			}
			d.deliver(del)
		}
	}
}

func (d *Dispatcher) deliver(del types.Delivery) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	err := d.sink.Deliver(ctx, del)
	if d.observe != nil {
		d.observe(d.sink.Name(), err)
	}
	if err != nil {
		d.logger.Error("pick line delivery failed",
			zap.String("sink", d.sink.Name()),
			zap.String("match", del.Match),
			zap.Error(err))
		return
	}
	d.logger.Info("pick line delivered",
		zap.String("sink", d.sink.Name()),
		zap.String("match", del.Match),
		zap.String("line", del.PickLine))
}
