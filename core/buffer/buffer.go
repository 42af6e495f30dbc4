package buffer

import (
	"sync"

	"go.uber.org/atomic"
)

// Buffer is a reference-counted memory region. The reference count is the
// sole arbiter of its lifetime: when it reaches zero the buffer goes back to
// the free list of the pool that produced it.
type Buffer struct {
	data []byte
	refs *atomic.Int32
	pool *Pool
}

// New allocates a standalone buffer with one owned reference.
func New(size int) *Buffer {
	return &Buffer{
		data: make([]byte, size),
		refs: atomic.NewInt32(1),
	}
}

func (b *Buffer) Data() []byte {
	return b.data
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) Refs() int32 {
	return b.refs.Load()
}

// Ref adds an owned reference and returns the buffer for chaining.
func (b *Buffer) Ref() *Buffer {
	b.refs.Inc()
	return b
}

// Unref drops one reference. Releasing more references than were taken is a
// programming error.
func (b *Buffer) Unref() {
	n := b.refs.Dec()
	if n < 0 {
		panic("buffer: reference count underflow")
	}
	if n == 0 && b.pool != nil {
		b.pool.release(b)
	}
}

// Pool caches buffers for one decoder instance. Every buffer is at least
// BufferCapacity bytes long; the capacity grows when a larger request
// arrives and never shrinks.
type Pool struct {
	mu       sync.Mutex
	capacity int
	free     []*Buffer
	closed   bool

	outstanding *atomic.Int32
}

func NewPool(capacity int) *Pool {
	return &Pool{
		capacity:    capacity,
		outstanding: atomic.NewInt32(0),
	}
}

func (p *Pool) BufferCapacity() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capacity
}

func (p *Pool) SetBufferCapacity(capacity int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if capacity > p.capacity {
		p.capacity = capacity
	}
}

// Get returns a buffer of at least the current capacity with one owned
// reference, reusing a free buffer when possible. Returns nil once the pool
// is closed.
func (p *Pool) Get() *Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	var b *Buffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free = p.free[:n-1]
		if len(b.data) < p.capacity {
			b.data = make([]byte, p.capacity)
		}
	} else {
		b = &Buffer{
			data: make([]byte, p.capacity),
			refs: atomic.NewInt32(0),
			pool: p,
		}
	}

	b.refs.Store(1)
	p.outstanding.Inc()
	return b
}

// Outstanding reports how many buffers are currently referenced outside the
// free list.
func (p *Pool) Outstanding() int32 {
	return p.outstanding.Load()
}

func (p *Pool) release(b *Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.outstanding.Dec()
	if p.closed {
		return
	}
	p.free = append(p.free, b)
}

// Close drops the free list. Buffers still referenced stay valid until their
// last Unref.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.free = nil
}
