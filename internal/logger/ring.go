package logger

import "sync"

// ring 固定容量的日志环形缓存，写满后覆盖最旧的条目
type ring struct {
	mu    sync.Mutex
	buf   []Entry
	next  int
	count int
}

func newRing(size int) *ring {
	if size <= 0 {
		size = DefaultRecentSize
	}
	return &ring{buf: make([]Entry, size)}
}

func (r *ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = e
	r.next = (r.next + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

func (r *ring) last(limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Entry, n)
	start := r.next - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+i)%len(r.buf)]
	}
	return out
}
