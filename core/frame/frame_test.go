package frame

import (
	"testing"

	"github.com/pingostack/govpx/core/buffer"
	"github.com/pingostack/govpx/core/errcode"
	"github.com/pingostack/govpx/core/video"
	"github.com/pkg/errors"
)

func testDescriptor(t *testing.T, w, h uint32) video.FrameDescriptor {
	t.Helper()
	desc, err := video.NewFrameDescriptor(video.PixelFormatI420, w, h)
	if err != nil {
		t.Fatal(err)
	}
	return desc
}

func TestNewAllocatesPlaneLayout(t *testing.T) {
	f, err := New(testDescriptor(t, 16, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Release()

	if got := f.PlaneCount(); got != 3 {
		t.Fatalf("plane count: expect 3, got %d", got)
	}
	if got := len(f.Plane(0)); got != 16*8 {
		t.Fatalf("luma size: expect %d, got %d", 16*8, got)
	}
	if got := len(f.Plane(1)); got != 8*4 {
		t.Fatalf("chroma size: expect %d, got %d", 8*4, got)
	}
	if got := f.Stride(1); got != 8 {
		t.Fatalf("chroma stride: expect 8, got %d", got)
	}
}

func TestNewFromPlanesCopies(t *testing.T) {
	desc := testDescriptor(t, 4, 2)

	y := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	u := []byte{9, 10}
	v := []byte{11, 12}

	f, err := NewFromPlanes(desc, [][]byte{y, u, v}, []int{4, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	defer f.Release()

	y[0] = 99
	if f.Plane(0)[0] != 1 {
		t.Fatal("expect plane data to be copied, not aliased")
	}
	if f.Plane(2)[1] != 12 {
		t.Fatalf("chroma content: expect 12, got %d", f.Plane(2)[1])
	}

	if _, err := NewFromPlanes(desc, [][]byte{y, u}, []int{4, 2}); err == nil {
		t.Fatal("expect error for missing plane")
	}
	if _, err := NewFromPlanes(desc, [][]byte{y, u, v[:1]}, []int{4, 2, 2}); err == nil {
		t.Fatal("expect error for short plane")
	}
}

func TestCopyFromRejectsShapeMismatch(t *testing.T) {
	a, err := New(testDescriptor(t, 16, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Release()

	b, err := New(testDescriptor(t, 32, 8))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Release()

	if err := a.CopyFrom(b); err == nil {
		t.Fatal("expect error for geometry mismatch")
	}
}

func TestSharedFrameReleasesBuffer(t *testing.T) {
	desc := testDescriptor(t, 4, 2)
	buf := buffer.New(16)

	f := NewShared(desc, buf.Ref(), []Plane{{Offset: 0, Stride: 4}, {Offset: 8, Stride: 2}, {Offset: 12, Stride: 2}})
	if got := buf.Refs(); got != 2 {
		t.Fatalf("refs after attach: expect 2, got %d", got)
	}

	f.Release()
	if got := buf.Refs(); got != 1 {
		t.Fatalf("refs after release: expect 1, got %d", got)
	}
	buf.Unref()
}

func TestPoolConfigureAndRecycle(t *testing.T) {
	p := NewPool()

	if _, err := p.Get(); !errors.Is(err, errcode.ErrPoolNotConfigured) {
		t.Fatalf("unconfigured pool: expect ErrPoolNotConfigured, got %v", err)
	}

	p.Configure(testDescriptor(t, 16, 8), nil)
	f, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Plane(0)) != 16*8 {
		t.Fatal("default creator must allocate planes")
	}

	f.Release()
	f2, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if f2 != f {
		t.Fatal("expect released frame to be recycled")
	}
	f2.Release()
}

func TestPoolEmptyCreatorAndSharedDetach(t *testing.T) {
	p := NewPool()
	desc := testDescriptor(t, 4, 2)
	p.Configure(desc, EmptyCreator())

	f, err := p.Get()
	if err != nil {
		t.Fatal(err)
	}
	if f.PlaneCount() != 0 {
		t.Fatal("empty creator must not allocate planes")
	}

	buf := buffer.New(16)
	f.AttachShared(desc, buf.Ref(), []Plane{{Offset: 0, Stride: 4}, {Offset: 8, Stride: 2}, {Offset: 12, Stride: 2}})
	if got := buf.Refs(); got != 2 {
		t.Fatalf("refs after attach: expect 2, got %d", got)
	}

	// Put must detach the shared buffer so the decoder's pool gets it back
	f.Release()
	if got := buf.Refs(); got != 1 {
		t.Fatalf("refs after pooled release: expect 1, got %d", got)
	}
	buf.Unref()
}
