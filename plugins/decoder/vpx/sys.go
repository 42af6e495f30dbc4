//go:build (darwin || linux) && (amd64 || arm64)

// Package vpx plugs libvpx's VP8 and VP9 decoders into the decoder registry.
//
// libvpx is loaded dynamically at runtime through purego; no cgo is
// involved. Library locations checked, in order: the VPX_LIB_PATH
// environment variable, the bare soname, then common system paths.
package vpx

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

var (
	loadOnce sync.Once
	loadErr  error
)

// libvpx entry points, resolved at load time. Kept as package vars so the
// protocol tests can swap in a synthetic decoder.
var (
	vpxCodecVP8DX                   func() uintptr
	vpxCodecVP9DX                   func() uintptr
	vpxCodecDecInitVer              func(ctx, iface, cfg uintptr, flags int64, ver int32) int32
	vpxCodecDecode                  func(ctx, data uintptr, size uint32, userPriv uintptr, deadline int64) int32
	vpxCodecGetFrame                func(ctx, iter uintptr) uintptr
	vpxCodecSetFrameBufferFunctions func(ctx, get, release, priv uintptr) int32
	vpxCodecDestroy                 func(ctx uintptr) int32
	vpxCodecError                   func(ctx uintptr) string
	vpxCodecErrToString             func(err int32) string
	vpxCodecVersionStr              func() string
)

// VPX_DECODER_ABI_VERSION for libvpx 1.x: 3 + (4 + VPX_IMAGE_ABI_VERSION 5).
const vpxDecoderABIVersion = 12

const vpxCodecOK = 0

// vpx_img_fmt_t
const (
	vpxImgFmtPlanar       = 0x100
	vpxImgFmtUVFlip       = 0x200
	vpxImgFmtHighBitDepth = 0x800

	vpxImgFmtYV12   = vpxImgFmtPlanar | vpxImgFmtUVFlip | 1
	vpxImgFmtI420   = vpxImgFmtPlanar | 2
	vpxImgFmtI422   = vpxImgFmtPlanar | 5
	vpxImgFmtI444   = vpxImgFmtPlanar | 6
	vpxImgFmtNV12   = vpxImgFmtPlanar | 9
	vpxImgFmtI42016 = vpxImgFmtI420 | vpxImgFmtHighBitDepth
	vpxImgFmtI42216 = vpxImgFmtI422 | vpxImgFmtHighBitDepth
	vpxImgFmtI44416 = vpxImgFmtI444 | vpxImgFmtHighBitDepth
)

// vpx_color_space_t
const (
	vpxCSUnknown  = 0
	vpxCSBT601    = 1
	vpxCSBT709    = 2
	vpxCSSMPTE170 = 3
	vpxCSSMPTE240 = 4
	vpxCSBT2020   = 5
	vpxCSReserved = 6
	vpxCSSRGB     = 7
)

// vpx_color_range_t
const (
	vpxCRStudioRange = 0
	vpxCRFullRange   = 1
)

// vpxImage mirrors vpx_image_t on 64-bit platforms. The image and the plane
// memory it points at belong to the decoder and are only valid until the
// next decode call; fbPriv is the bridge's buffer handle when the planes
// live in pool memory.
type vpxImage struct {
	fmt          uint32
	cs           int32
	colorRange   int32
	w            uint32
	h            uint32
	bitDepth     uint32
	dW           uint32
	dH           uint32
	rW           uint32
	rH           uint32
	xChromaShift uint32
	yChromaShift uint32
	planes       [4]uintptr
	stride       [4]int32
	bps          int32
	_            int32
	userPriv     uintptr
	imgData      uintptr
	imgDataOwner int32
	selfAllocd   int32
	fbPriv       uintptr
}

// vpxCodecCtx mirrors vpx_codec_ctx_t on 64-bit platforms.
type vpxCodecCtx struct {
	name      uintptr
	iface     uintptr
	err       int32
	_         int32
	errDetail uintptr
	initFlags int64
	config    uintptr
	priv      uintptr
}

// vpxDecCfg mirrors vpx_codec_dec_cfg_t.
type vpxDecCfg struct {
	threads uint32
	w       uint32
	h       uint32
}

// vpxFrameBuffer mirrors vpx_codec_frame_buffer_t.
type vpxFrameBuffer struct {
	data uintptr
	size uintptr
	priv uintptr
}

func load() error {
	loadOnce.Do(func() {
		loadErr = loadLibrary()
	})
	return loadErr
}

func loadLibrary() error {
	var lastErr error
	for _, path := range libraryPaths() {
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		registerSymbols(handle)
		return nil
	}
	if lastErr != nil {
		return errors.Wrap(lastErr, "load libvpx")
	}
	return errors.New("libvpx not found")
}

func libraryPaths() []string {
	libName := "libvpx.so"
	if runtime.GOOS == "darwin" {
		libName = "libvpx.dylib"
	}

	var paths []string
	if env := os.Getenv("VPX_LIB_PATH"); env != "" {
		paths = append(paths, env, filepath.Join(env, libName))
	}
	paths = append(paths, libName)

	switch runtime.GOOS {
	case "darwin":
		paths = append(paths,
			"/usr/local/lib/libvpx.dylib",
			"/opt/homebrew/lib/libvpx.dylib",
		)
	case "linux":
		paths = append(paths,
			"libvpx.so.9",
			"libvpx.so.8",
			"libvpx.so.7",
			"/usr/local/lib/libvpx.so",
			"/usr/lib/libvpx.so",
		)
	}
	return paths
}

func registerSymbols(handle uintptr) {
	purego.RegisterLibFunc(&vpxCodecVP8DX, handle, "vpx_codec_vp8_dx")
	purego.RegisterLibFunc(&vpxCodecVP9DX, handle, "vpx_codec_vp9_dx")
	purego.RegisterLibFunc(&vpxCodecDecInitVer, handle, "vpx_codec_dec_init_ver")
	purego.RegisterLibFunc(&vpxCodecDecode, handle, "vpx_codec_decode")
	purego.RegisterLibFunc(&vpxCodecGetFrame, handle, "vpx_codec_get_frame")
	purego.RegisterLibFunc(&vpxCodecSetFrameBufferFunctions, handle, "vpx_codec_set_frame_buffer_functions")
	purego.RegisterLibFunc(&vpxCodecDestroy, handle, "vpx_codec_destroy")
	purego.RegisterLibFunc(&vpxCodecError, handle, "vpx_codec_error")
	purego.RegisterLibFunc(&vpxCodecErrToString, handle, "vpx_codec_err_to_string")
	purego.RegisterLibFunc(&vpxCodecVersionStr, handle, "vpx_codec_version_str")
}

// Version returns the libvpx version string, loading the library if needed.
func Version() (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	return vpxCodecVersionStr(), nil
}
