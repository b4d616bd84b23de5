package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

const streamBuffer = 64

// Stream runs the pipeline in its own goroutine and delivers events on the
// returned channel, which is closed when the run ends. The run never waits on
// the reader: events queue without bound until the reader takes them. The run
// is detached from ctx; once ctx is done, queued and later events are dropped
// and the run still finishes. The error channel yields exactly one value.
func (p *Pipeline) Stream(ctx context.Context, in Input, userID uuid.UUID) (<-chan Event, <-chan error) {
	events := make(chan Event, streamBuffer)
	errc := make(chan error, 1)
	q := newEventQueue()

	go func() {
		defer close(events)
		for {
			e, ok := q.pop()
			if !ok {
				return
			}
			if ctx.Err() != nil {
				continue
			}
			select {
			case events <- e:
			case <-ctx.Done():
			}
		}
	}()

	go func() {
		_, err := p.Run(context.WithoutCancel(ctx), in, userID, q.push)
		q.close()
		errc <- err
	}()

	return events, errc
}

// eventQueue is an unbounded FIFO between the run and the forwarder
type eventQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Event
	closed bool
}

func newEventQueue() *eventQueue {
	q := &eventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *eventQueue) push(e Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, e)
	q.cond.Signal()
}

func (q *eventQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// pop blocks until an event is queued. It reports false once the queue is
// closed and drained.
func (q *eventQueue) pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Event{}, false
	}
	e := q.items[0]
	q.items[0] = Event{}
	q.items = q.items[1:]
	return e, true
}
