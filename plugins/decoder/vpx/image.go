//go:build (darwin || linux) && (amd64 || arm64)

package vpx

import (
	"unsafe"

	"github.com/pingostack/govpx/core/buffer"
	"github.com/pingostack/govpx/core/errcode"
	"github.com/pingostack/govpx/core/frame"
	"github.com/pingostack/govpx/core/video"
	"github.com/pingostack/govpx/pkg/handles"
	"github.com/pkg/errors"
)

// image wraps one decoded vpx_image_t. The descriptor and plane data must be
// extracted before the next decode call invalidates them; only bridge-backed
// buffers (fbPriv != 0) are refcounted separately and may outlive the image.
type image struct {
	raw *vpxImage
}

func (img *image) hasFrameBuffer() bool {
	return img.raw.fbPriv != 0
}

func (img *image) descriptor() (video.FrameDescriptor, error) {
	raw := img.raw

	format, ok := pixelFormatOf(raw.fmt, raw.bitDepth)
	if !ok {
		return video.FrameDescriptor{}, &errcode.UnsupportedFormatError{Format: raw.fmt, BitDepth: raw.bitDepth}
	}

	desc, err := video.NewFrameDescriptor(format, raw.dW, raw.dH)
	if err != nil {
		return video.FrameDescriptor{}, err
	}
	desc.ColorRange = colorRangeOf(raw.colorRange)
	desc.ColorMatrix = colorMatrixOf(raw.cs)
	return desc, nil
}

// toFrame copies every plane into a fresh self-contained frame.
func (img *image) toFrame() (*frame.Frame, error) {
	desc, err := img.descriptor()
	if err != nil {
		return nil, err
	}

	n := desc.PixelFormat.PlaneCount()
	data := make([][]byte, n)
	strides := make([]int, n)
	for plane := 0; plane < n; plane++ {
		height := int(desc.PixelFormat.PlaneHeight(plane, desc.Height))
		stride := int(img.raw.stride[plane])
		data[plane] = unsafe.Slice((*byte)(unsafe.Pointer(img.raw.planes[plane])), stride*height)
		strides[plane] = stride
	}

	return frame.NewFromPlanes(desc, data, strides)
}

// toSharedBuffer reconstructs the pool buffer backing a zero-copy image and
// locates each plane as an offset into it. The fbPriv handle keeps its own
// reference untouched; the caller receives one additional owned reference,
// released with the frame. Any out-of-range offset aborts with an
// IntegrityError before anything is handed out.
func (img *image) toSharedBuffer() (*buffer.Buffer, []frame.Plane, video.FrameDescriptor, error) {
	desc, err := img.descriptor()
	if err != nil {
		return nil, nil, video.FrameDescriptor{}, err
	}

	buf, ok := handles.Lookup(img.raw.fbPriv).(*buffer.Buffer)
	if !ok {
		return nil, nil, video.FrameDescriptor{}, errors.New("image frame buffer handle not registered")
	}
	if buf.Len() == 0 {
		return nil, nil, video.FrameDescriptor{}, &errcode.IntegrityError{Plane: 0, Offset: 0, Length: 0}
	}
	base := uintptr(unsafe.Pointer(&buf.Data()[0]))

	n := desc.PixelFormat.PlaneCount()
	planes := make([]frame.Plane, 0, n)
	for plane := 0; plane < n; plane++ {
		offset := int(int64(img.raw.planes[plane]) - int64(base))
		if offset < 0 || offset >= buf.Len() {
			return nil, nil, video.FrameDescriptor{}, &errcode.IntegrityError{Plane: plane, Offset: offset, Length: buf.Len()}
		}
		planes = append(planes, frame.Plane{Offset: offset, Stride: int(img.raw.stride[plane])})
	}

	return buf.Ref(), planes, desc, nil
}
