package tasks

import "sync"

// Queue is the ready queue: a FIFO of task IDs pushed by any number of
// timer workers and popped by the loop goroutine. It neither prioritizes
// nor deduplicates.
type Queue struct {
	mu    sync.Mutex
	items []ID
	// ready holds at most one pending wake-up for an idle consumer.
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Push appends id and wakes the consumer if it is waiting.
func (q *Queue) Push(id ID) {
	q.mu.Lock()
	q.items = append(q.items, id)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest id.
func (q *Queue) Pop() (ID, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return 0, false
	}
	id := q.items[0]
	q.items[0] = 0
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// drop the backing array so a burst does not pin memory
		q.items = nil
	}
	return id, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Ready returns a channel that receives after a Push. A receive does not
// guarantee the queue is non-empty; callers re-check Len.
func (q *Queue) Ready() <-chan struct{} {
	return q.ready
}
