package backend

import (
	"context"
	"sync"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

// eventQueueSize bounds events waiting for the sink.
const eventQueueSize = 64

// EventSink is told about mutations that reached the store.
type EventSink interface {
	NotifyCreated(ctx context.Context, in core.TransactionInput) error
	NotifyDeleted(ctx context.Context, id int64) error
}

// Notifying forwards successful creates and deletes to an EventSink from a
// background goroutine, so a slow sink never delays the mutation. Sink
// failures are logged; events arriving while the queue is full are dropped.
// Close drains the queue.
type Notifying struct {
	Backend
	sink   EventSink
	logger *applog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan pendingEvent
	done   chan struct{}
}

type pendingEvent struct {
	ctx  context.Context
	op   string
	id   int64
	send func(ctx context.Context) error
}

func WithEvents(b Backend, sink EventSink, logger *applog.Logger) *Notifying {
	return newNotifying(b, sink, logger, eventQueueSize)
}

func newNotifying(b Backend, sink EventSink, logger *applog.Logger, size int) *Notifying {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	n := &Notifying{
		Backend: b,
		sink:    sink,
		logger:  logger.WithComponent(applog.ComponentEvents),
		queue:   make(chan pendingEvent, size),
		done:    make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *Notifying) CreateTransaction(ctx context.Context, in core.TransactionInput) error {
	if err := n.Backend.CreateTransaction(ctx, in); err != nil {
		return err
	}
	n.enqueue(pendingEvent{ctx: ctx, op: applog.OpCreate, send: func(ctx context.Context) error {
		return n.sink.NotifyCreated(ctx, in)
	}})
	return nil
}

func (n *Notifying) DeleteTransaction(ctx context.Context, id int64) error {
	if err := n.Backend.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	n.enqueue(pendingEvent{ctx: ctx, op: applog.OpDelete, id: id, send: func(ctx context.Context) error {
		return n.sink.NotifyDeleted(ctx, id)
	}})
	return nil
}

// enqueue never blocks. The event keeps the request's values but not its
// cancellation.
func (n *Notifying) enqueue(ev pendingEvent) {
	ev.ctx = context.WithoutCancel(ev.ctx)

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.logger.WarnContext(ev.ctx, "Transaction event dropped after close",
			applog.FieldOperation, ev.op)
		return
	}
	select {
	case n.queue <- ev:
	default:
		n.logger.WarnContext(ev.ctx, "Transaction event dropped, queue full",
			applog.FieldOperation, ev.op,
			applog.FieldTransactionID, ev.id)
	}
}

func (n *Notifying) run() {
	defer close(n.done)
	for ev := range n.queue {
		if err := ev.send(ev.ctx); err != nil {
			n.logger.WarnContext(ev.ctx, "Transaction event not published",
				applog.FieldOperation, ev.op,
				applog.FieldTransactionID, ev.id,
				applog.FieldError, err)
		}
	}
}

// Close stops accepting events and waits until queued ones were handed to
// the sink. It does not close the sink.
func (n *Notifying) Close() error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()
	<-n.done
	return nil
}
