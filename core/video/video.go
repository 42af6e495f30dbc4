package video

import "fmt"

type CodecType uint8

const (
	CodecTypeUnknown CodecType = iota
	CodecTypeVP8
	CodecTypeVP9
)

func (c CodecType) String() string {
	switch c {
	case CodecTypeVP8:
		return "vp8"
	case CodecTypeVP9:
		return "vp9"
	}
	return "unknown"
}

type PixelFormat uint8

const (
	PixelFormatUnknown PixelFormat = iota
	PixelFormatYV12
	PixelFormatI420
	PixelFormatI422
	PixelFormatI444
	PixelFormatNV12
	PixelFormatI010
	PixelFormatI012
	PixelFormatI210
	PixelFormatI212
	PixelFormatI410
	PixelFormatI412
)

func (p PixelFormat) String() string {
	switch p {
	case PixelFormatYV12:
		return "yv12"
	case PixelFormatI420:
		return "i420"
	case PixelFormatI422:
		return "i422"
	case PixelFormatI444:
		return "i444"
	case PixelFormatNV12:
		return "nv12"
	case PixelFormatI010:
		return "i010"
	case PixelFormatI012:
		return "i012"
	case PixelFormatI210:
		return "i210"
	case PixelFormatI212:
		return "i212"
	case PixelFormatI410:
		return "i410"
	case PixelFormatI412:
		return "i412"
	}
	return "unknown"
}

// PlaneCount returns the number of planes carried by the format. NV12 keeps
// its chroma interleaved in a single plane.
func (p PixelFormat) PlaneCount() int {
	switch p {
	case PixelFormatUnknown:
		return 0
	case PixelFormatNV12:
		return 2
	}
	return 3
}

// BytesPerSample is 2 for formats stored in 16-bit containers, 1 otherwise.
func (p PixelFormat) BytesPerSample() int {
	switch p {
	case PixelFormatI010, PixelFormatI012, PixelFormatI210, PixelFormatI212, PixelFormatI410, PixelFormatI412:
		return 2
	}
	return 1
}

func (p PixelFormat) chromaShift() (x, y uint32) {
	switch p {
	case PixelFormatYV12, PixelFormatI420, PixelFormatNV12, PixelFormatI010, PixelFormatI012:
		return 1, 1
	case PixelFormatI422, PixelFormatI210, PixelFormatI212:
		return 1, 0
	}
	return 0, 0
}

// PlaneWidth returns the width in samples of the given plane. The NV12 chroma
// plane spans the full width because U and V samples interleave.
func (p PixelFormat) PlaneWidth(plane int, width uint32) uint32 {
	if plane == 0 {
		return width
	}
	if p == PixelFormatNV12 {
		return width
	}
	x, _ := p.chromaShift()
	return (width + (1 << x) - 1) >> x
}

func (p PixelFormat) PlaneHeight(plane int, height uint32) uint32 {
	if plane == 0 {
		return height
	}
	_, y := p.chromaShift()
	return (height + (1 << y) - 1) >> y
}

type ColorRange uint8

const (
	ColorRangeVideo ColorRange = iota
	ColorRangeFull
)

func (r ColorRange) String() string {
	switch r {
	case ColorRangeVideo:
		return "video"
	case ColorRangeFull:
		return "full"
	}
	return "unknown"
}

type ColorMatrix uint8

const (
	ColorMatrixUnspecified ColorMatrix = iota
	ColorMatrixBT470BG
	ColorMatrixBT709
	ColorMatrixSMPTE170M
	ColorMatrixSMPTE240M
	ColorMatrixBT2020NCL
	ColorMatrixReserved
	ColorMatrixIdentity
)

func (m ColorMatrix) String() string {
	switch m {
	case ColorMatrixBT470BG:
		return "bt470bg"
	case ColorMatrixBT709:
		return "bt709"
	case ColorMatrixSMPTE170M:
		return "smpte170m"
	case ColorMatrixSMPTE240M:
		return "smpte240m"
	case ColorMatrixBT2020NCL:
		return "bt2020ncl"
	case ColorMatrixReserved:
		return "reserved"
	case ColorMatrixIdentity:
		return "identity"
	}
	return "unspecified"
}

type FrameDescriptor struct {
	PixelFormat PixelFormat
	Width       uint32
	Height      uint32
	ColorRange  ColorRange
	ColorMatrix ColorMatrix
}

func NewFrameDescriptor(format PixelFormat, width, height uint32) (FrameDescriptor, error) {
	if format == PixelFormatUnknown {
		return FrameDescriptor{}, fmt.Errorf("frame descriptor with unknown pixel format")
	}
	if width == 0 || height == 0 {
		return FrameDescriptor{}, fmt.Errorf("frame descriptor with empty geometry %dx%d", width, height)
	}
	return FrameDescriptor{PixelFormat: format, Width: width, Height: height}, nil
}

func (d FrameDescriptor) String() string {
	return fmt.Sprintf("%s %dx%d %s/%s", d.PixelFormat, d.Width, d.Height, d.ColorRange, d.ColorMatrix)
}
