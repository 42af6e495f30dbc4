//go:build (darwin || linux) && (amd64 || arm64)

package vpx

import (
	"testing"
	"unsafe"
)

// stubLib replaces the libvpx entry points with a synthetic decoder. Each
// decode call makes the images queued in s.images available through the
// iteration cursor, mirroring how vpx_codec_get_frame walks buffered output.
type stubLib struct {
	initCalls    int
	initRet      int32
	decodeCalls  int
	decodeRet    int32
	flushCalls   int
	destroyCalls int
	onDestroy    func()

	images []*vpxImage

	fbGet     uintptr
	fbRelease uintptr
	fbPriv    uintptr
}

func installStub(t *testing.T) *stubLib {
	t.Helper()

	// consume the load guard so NewDecoder never touches a real library
	loadOnce.Do(func() {})
	loadErr = nil

	s := &stubLib{}

	vpxCodecVP8DX = func() uintptr { return 8 }
	vpxCodecVP9DX = func() uintptr { return 9 }
	vpxCodecDecInitVer = func(ctx, iface, cfg uintptr, flags int64, ver int32) int32 {
		s.initCalls++
		return s.initRet
	}
	vpxCodecDecode = func(ctx, data uintptr, size uint32, userPriv uintptr, deadline int64) int32 {
		s.decodeCalls++
		if data == 0 {
			s.flushCalls++
		}
		return s.decodeRet
	}
	vpxCodecGetFrame = func(ctx, iter uintptr) uintptr {
		cursor := (*uintptr)(unsafe.Pointer(iter))
		if int(*cursor) >= len(s.images) {
			return 0
		}
		img := s.images[*cursor]
		*cursor++
		return uintptr(unsafe.Pointer(img))
	}
	vpxCodecSetFrameBufferFunctions = func(ctx, get, release, priv uintptr) int32 {
		s.fbGet = get
		s.fbRelease = release
		s.fbPriv = priv
		return 0
	}
	vpxCodecDestroy = func(ctx uintptr) int32 {
		s.destroyCalls++
		if s.onDestroy != nil {
			s.onDestroy()
		}
		return 0
	}
	vpxCodecError = func(ctx uintptr) string { return "stub failure" }
	vpxCodecErrToString = func(err int32) string { return "stub failure" }
	vpxCodecVersionStr = func() string { return "stub" }

	return s
}

// testImage builds a synthetic I420 image over freshly allocated plane
// memory. The returned slices keep the planes alive for the test's duration.
type testImage struct {
	img    *vpxImage
	planes [][]byte
}

func newTestImage(t *testing.T, w, h uint32) *testImage {
	t.Helper()

	yStride := int(w)
	cStride := int(w+1) / 2
	cHeight := int(h+1) / 2
	y := make([]byte, yStride*int(h))
	u := make([]byte, cStride*cHeight)
	v := make([]byte, cStride*cHeight)

	img := &vpxImage{
		fmt:        vpxImgFmtI420,
		cs:         vpxCSBT709,
		colorRange: vpxCRFullRange,
		w:          w,
		h:          h,
		bitDepth:   8,
		dW:         w,
		dH:         h,
	}
	img.planes[0] = uintptr(unsafe.Pointer(&y[0]))
	img.planes[1] = uintptr(unsafe.Pointer(&u[0]))
	img.planes[2] = uintptr(unsafe.Pointer(&v[0]))
	img.stride[0] = int32(yStride)
	img.stride[1] = int32(cStride)
	img.stride[2] = int32(cStride)

	return &testImage{img: img, planes: [][]byte{y, u, v}}
}

// layoutI420 lays an I420 image out inside bridge-acquired memory, the way
// the decoder does when frame buffer callbacks are registered.
func layoutI420(fb *vpxFrameBuffer, w, h uint32, yStride, cStride, ySize, cSize int) *vpxImage {
	img := &vpxImage{
		fmt:        vpxImgFmtI420,
		cs:         vpxCSBT709,
		colorRange: vpxCRFullRange,
		w:          w,
		h:          h,
		bitDepth:   8,
		dW:         w,
		dH:         h,
		fbPriv:     fb.priv,
	}
	img.planes[0] = fb.data
	img.planes[1] = fb.data + uintptr(ySize)
	img.planes[2] = fb.data + uintptr(ySize+cSize)
	img.stride[0] = int32(yStride)
	img.stride[1] = int32(cStride)
	img.stride[2] = int32(cStride)
	return img
}
