package worker

import (
	"sync"
	"sync/atomic"
)

// eventQueue 生产端永不阻塞的事件队列
// 积压超过 limit 时丢弃最旧的待发事件并计数
type eventQueue struct {
	mu      sync.Mutex
	pending []Event
	closed  bool
	limit   int
	notify  chan struct{}
	dropped atomic.Int64
}

func newEventQueue(limit int) *eventQueue {
	if limit <= 0 {
		limit = DefaultEventBuffer
	}
	return &eventQueue{
		limit:  limit,
		notify: make(chan struct{}, 1),
	}
}

// push 追加事件，返回本次因超限丢弃的数量
func (q *eventQueue) push(e Event) int {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0
	}
	q.pending = append(q.pending, e)
	drop := len(q.pending) - q.limit
	if drop > 0 {
		q.pending = append(q.pending[:0], q.pending[drop:]...)
		q.dropped.Add(int64(drop))
	} else {
		drop = 0
	}
	q.mu.Unlock()

	q.wake()
	return drop
}

// close 标记不再有新事件，已排队的事件仍会送达
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wake()
}

func (q *eventQueue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pump 按顺序把事件送入 out，队列关闭且排空后关闭 out
func (q *eventQueue) pump(out chan<- Event) {
	defer close(out)
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			e := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			out <- e
			continue
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return
		}
		<-q.notify
	}
}
