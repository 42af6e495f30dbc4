package frame

import (
	"github.com/pingostack/govpx/core/buffer"
	"github.com/pingostack/govpx/core/video"
	"github.com/pkg/errors"
)

// Plane locates one plane inside a frame's backing buffer.
type Plane struct {
	Offset int
	Stride int
}

// Frame is a decoded video frame: a descriptor plus per-plane views into a
// single reference-counted backing buffer. A frame either owns a private
// buffer or shares one produced by the decoder's allocator bridge.
type Frame struct {
	Desc   video.FrameDescriptor
	buf    *buffer.Buffer
	planes []Plane
	shared bool
	pool   *Pool
}

// New allocates a self-contained frame laid out tightly per the descriptor.
func New(desc video.FrameDescriptor) (*Frame, error) {
	n := desc.PixelFormat.PlaneCount()
	if n == 0 {
		return nil, errors.Errorf("cannot allocate frame for format %s", desc.PixelFormat)
	}

	planes := make([]Plane, n)
	total := 0
	for i := 0; i < n; i++ {
		stride := int(desc.PixelFormat.PlaneWidth(i, desc.Width)) * desc.PixelFormat.BytesPerSample()
		planes[i] = Plane{Offset: total, Stride: stride}
		total += stride * int(desc.PixelFormat.PlaneHeight(i, desc.Height))
	}

	return &Frame{Desc: desc, buf: buffer.New(total), planes: planes}, nil
}

// NewFromPlanes copies externally owned plane data into a fresh
// self-contained frame, keeping the source strides.
func NewFromPlanes(desc video.FrameDescriptor, data [][]byte, strides []int) (*Frame, error) {
	n := desc.PixelFormat.PlaneCount()
	if len(data) != n || len(strides) != n {
		return nil, errors.Errorf("format %s needs %d planes, got %d", desc.PixelFormat, n, len(data))
	}

	planes := make([]Plane, n)
	total := 0
	for i := 0; i < n; i++ {
		planes[i] = Plane{Offset: total, Stride: strides[i]}
		total += strides[i] * int(desc.PixelFormat.PlaneHeight(i, desc.Height))
	}

	buf := buffer.New(total)
	for i := 0; i < n; i++ {
		size := planes[i].Stride * int(desc.PixelFormat.PlaneHeight(i, desc.Height))
		if len(data[i]) < size {
			buf.Unref()
			return nil, errors.Errorf("plane %d has %d bytes, need %d", i, len(data[i]), size)
		}
		copy(buf.Data()[planes[i].Offset:planes[i].Offset+size], data[i][:size])
	}

	return &Frame{Desc: desc, buf: buf, planes: planes}, nil
}

// NewShared wraps a shared backing buffer without copying. The caller hands
// over one owned reference to buf; it is released with the frame.
func NewShared(desc video.FrameDescriptor, buf *buffer.Buffer, planes []Plane) *Frame {
	return &Frame{Desc: desc, buf: buf, planes: planes, shared: true}
}

// AttachShared points an empty pooled frame at a shared backing buffer,
// taking over one owned reference to buf. Any previously attached shared
// buffer is released first.
func (f *Frame) AttachShared(desc video.FrameDescriptor, buf *buffer.Buffer, planes []Plane) {
	if f.shared && f.buf != nil {
		f.buf.Unref()
	}
	f.Desc = desc
	f.buf = buf
	f.planes = planes
	f.shared = true
}

func (f *Frame) PlaneCount() int {
	return len(f.planes)
}

func (f *Frame) Stride(plane int) int {
	return f.planes[plane].Stride
}

// Plane returns the byte view of one plane. For shared buffers the view is
// clamped to the buffer's end since the last plane may be tightly sized.
func (f *Frame) Plane(plane int) []byte {
	p := f.planes[plane]
	end := p.Offset + p.Stride*int(f.Desc.PixelFormat.PlaneHeight(plane, f.Desc.Height))
	if end > f.buf.Len() {
		end = f.buf.Len()
	}
	return f.buf.Data()[p.Offset:end]
}

// CopyFrom copies the visible sample rows of src into f. Both frames must
// share pixel format and geometry; strides may differ.
func (f *Frame) CopyFrom(src *Frame) error {
	if f.Desc.PixelFormat != src.Desc.PixelFormat || f.Desc.Width != src.Desc.Width || f.Desc.Height != src.Desc.Height {
		return errors.Errorf("cannot copy frame %s into %s", src.Desc, f.Desc)
	}
	f.Desc = src.Desc

	for plane := 0; plane < len(f.planes); plane++ {
		rowBytes := int(f.Desc.PixelFormat.PlaneWidth(plane, f.Desc.Width)) * f.Desc.PixelFormat.BytesPerSample()
		height := int(f.Desc.PixelFormat.PlaneHeight(plane, f.Desc.Height))
		dst := f.Plane(plane)
		from := src.Plane(plane)
		for row := 0; row < height; row++ {
			copy(dst[row*f.Stride(plane):row*f.Stride(plane)+rowBytes], from[row*src.Stride(plane):])
		}
	}
	return nil
}

// Release returns the frame to its pool, or drops the backing buffer
// reference for standalone frames. Safe to call once per frame.
func (f *Frame) Release() {
	if f.pool != nil {
		f.pool.Put(f)
		return
	}
	if f.buf != nil {
		f.buf.Unref()
		f.buf = nil
		f.planes = nil
	}
}
