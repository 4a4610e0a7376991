package duckclient

import (
	"context"
	"sync"
)

// Queue is an unbounded FIFO of messages shared by one producer side and
// one consumer side. The lock is held only while the slice is mutated,
// never across I/O.
type Queue struct {
	mu    sync.Mutex
	items []Message
	ready chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends m and wakes a waiting consumer. The caller gives up
// ownership of m.
func (q *Queue) Push(m Message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// TryPop removes and returns the oldest message. It never blocks: when the
// queue is empty, or the other side currently holds the lock, it returns
// false.
func (q *Queue) TryPop() (Message, bool) {
	if !q.mu.TryLock() {
		return nil, false
	}
	defer q.mu.Unlock()
	return q.popLocked()
}

// Pop removes and returns the oldest message, waiting until one is
// available or ctx is done.
func (q *Queue) Pop(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		m, ok := q.popLocked()
		q.mu.Unlock()
		if ok {
			return m, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (q *Queue) popLocked() (Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	m := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	} else {
		// Keep the wake signal armed while items remain.
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return m, true
}

// Ready returns a channel that receives a value after a push. A receive
// is a hint, not a guarantee that TryPop will succeed.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
