package bus

import (
	"context"
	"sync"

	"riskgate/internal/engine"
	"riskgate/internal/order"
	"riskgate/internal/schema"
	"riskgate/pkg/exception"
)

// Kind tells the engine loop what to do with an event.
type Kind uint8

const (
	KindOpen Kind = iota + 1
	KindMessage
	KindClose
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindMessage:
		return "message"
	case KindClose:
		return "close"
	case KindQuery:
		return "query"
	default:
		return "unknown"
	}
}

// Event is the unit passed from connection goroutines to the engine loop.
type Event struct {
	Kind    Kind
	Conn    order.ConnID
	Header  schema.Header
	Message schema.Message

	// Reply receives exactly one value when set. It must be buffered.
	Reply chan<- Reply
}

// Reply carries the engine's answer to one event.
type Reply struct {
	Result   engine.Result
	Err      error
	Released int
	Snapshot engine.Snapshot
}

// Queue is a bounded event queue with a single consumer.
type Queue struct {
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:   make(chan Event, capacity),
		done: make(chan struct{}),
	}
}

// TryPublish enqueues an event without blocking.
func (q *Queue) TryPublish(e Event) error {
	select {
	case <-q.done:
		return exception.ErrQueueClosed
	default:
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return exception.ErrQueueFull
	}
}

// Publish enqueues an event, waiting for room.
func (q *Queue) Publish(ctx context.Context, e Event) error {
	select {
	case <-q.done:
		return exception.ErrQueueClosed
	default:
	}
	select {
	case <-q.done:
		return exception.ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- e:
		return nil
	}
}

// Call publishes an event and waits for the consumer's reply.
func (q *Queue) Call(ctx context.Context, e Event) (Reply, error) {
	reply := make(chan Reply, 1)
	e.Reply = reply
	if err := q.Publish(ctx, e); err != nil {
		return Reply{}, err
	}
	select {
	case r := <-reply:
		return r, nil
	case <-q.done:
		return Reply{}, exception.ErrQueueClosed
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Done is closed once the queue stops accepting events.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Close stops the queue from accepting new events. Queued events are dropped.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

// Run consumes events until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			return
		case e := <-q.ch:
			handler(e)
		}
	}
}

// Respond delivers r to the event's reply channel, if any.
func (e Event) Respond(r Reply) {
	if e.Reply == nil {
		return
	}
	select {
	case e.Reply <- r:
	default:
	}
}
