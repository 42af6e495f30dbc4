package frame

import (
	"sync"

	"github.com/pingostack/govpx/core/errcode"
	"github.com/pingostack/govpx/core/video"
)

// Creator builds frames for a pool. The default creator allocates per the
// pool descriptor; EmptyCreator builds descriptor-only frames meant to have
// a shared buffer attached later.
type Creator interface {
	NewFrame(desc video.FrameDescriptor) (*Frame, error)
}

type defaultCreator struct{}

func (defaultCreator) NewFrame(desc video.FrameDescriptor) (*Frame, error) {
	return New(desc)
}

type emptyCreator struct{}

func (emptyCreator) NewFrame(desc video.FrameDescriptor) (*Frame, error) {
	return &Frame{Desc: desc}, nil
}

func EmptyCreator() Creator {
	return emptyCreator{}
}

// Pool recycles frames of one fixed geometry. Geometry is set by Configure
// exactly once per decoding session; the decoder guards the latch.
type Pool struct {
	mu      sync.Mutex
	desc    *video.FrameDescriptor
	creator Creator
	idle    []*Frame
	closed  bool
}

func NewPool() *Pool {
	return &Pool{}
}

// Configure sets the pool geometry and allocation strategy and discards any
// idle frames of a previous shape. A nil creator selects the default
// allocating creator.
func (p *Pool) Configure(desc video.FrameDescriptor, creator Creator) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if creator == nil {
		creator = defaultCreator{}
	}
	p.desc = &desc
	p.creator = creator
	p.idle = nil
}

func (p *Pool) Configured() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.desc != nil
}

func (p *Pool) Descriptor() (video.FrameDescriptor, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.desc == nil {
		return video.FrameDescriptor{}, false
	}
	return *p.desc, true
}

// Get returns an idle frame or creates a new one. The frame returns to the
// pool through Release/Put.
func (p *Pool) Get() (*Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errcode.ErrPoolClosed
	}
	if p.desc == nil {
		return nil, errcode.ErrPoolNotConfigured
	}

	if n := len(p.idle); n > 0 {
		f := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return f, nil
	}

	f, err := p.creator.NewFrame(*p.desc)
	if err != nil {
		return nil, err
	}
	f.pool = p
	return f, nil
}

// Put returns a frame to the pool. Shared backing buffers are detached so
// their reference goes back to the decoder's buffer pool immediately.
func (p *Pool) Put(f *Frame) {
	if f == nil {
		return
	}

	if f.shared && f.buf != nil {
		f.buf.Unref()
		f.buf = nil
		f.planes = nil
		f.shared = false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.idle = append(p.idle, f)
}

func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.idle = nil
}
