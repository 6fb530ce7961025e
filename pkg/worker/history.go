package worker

import "sync"

// History 消费端的事件记录，只保留最近 N 条，并按类型计数
type History struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
	counts map[EventKind]int
	last   *Event
}

// NewHistory 创建容量为 size 的记录
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultEventBuffer
	}
	return &History{
		events: make([]Event, size),
		counts: make(map[EventKind]int),
	}
}

// Add 记录一个事件
func (h *History) Add(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events[h.next] = e
	h.last = &h.events[h.next]
	h.next = (h.next + 1) % len(h.events)
	if h.next == 0 {
		h.full = true
	}
	h.counts[e.Kind]++
}

// Events 按先后顺序返回保留的事件
func (h *History) Events() []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.full {
		return append([]Event(nil), h.events[:h.next]...)
	}
	out := make([]Event, 0, len(h.events))
	out = append(out, h.events[h.next:]...)
	return append(out, h.events[:h.next]...)
}

// Count 返回某类事件的累计数量，包括已被淘汰的
func (h *History) Count(kind EventKind) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[kind]
}

// Last 最近一个事件
func (h *History) Last() (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return Event{}, false
	}
	return *h.last, true
}
