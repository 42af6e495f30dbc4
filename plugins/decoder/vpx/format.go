//go:build (darwin || linux) && (amd64 || arm64)

package vpx

import "github.com/pingostack/govpx/core/video"

// pixelFormatOf maps a (vpx_img_fmt, bit depth) pair to the canonical pixel
// format. The 8-bit formats ignore the reported depth; high-bit-depth
// containers are only defined for 10 and 12 bit samples.
func pixelFormatOf(format uint32, depth uint32) (video.PixelFormat, bool) {
	switch format {
	case vpxImgFmtYV12:
		return video.PixelFormatYV12, true
	case vpxImgFmtI420:
		return video.PixelFormatI420, true
	case vpxImgFmtI422:
		return video.PixelFormatI422, true
	case vpxImgFmtI444:
		return video.PixelFormatI444, true
	case vpxImgFmtNV12:
		return video.PixelFormatNV12, true
	case vpxImgFmtI42016:
		switch depth {
		case 10:
			return video.PixelFormatI010, true
		case 12:
			return video.PixelFormatI012, true
		}
	case vpxImgFmtI42216:
		switch depth {
		case 10:
			return video.PixelFormatI210, true
		case 12:
			return video.PixelFormatI212, true
		}
	case vpxImgFmtI44416:
		switch depth {
		case 10:
			return video.PixelFormatI410, true
		case 12:
			return video.PixelFormatI412, true
		}
	}
	return video.PixelFormatUnknown, false
}

func colorRangeOf(r int32) video.ColorRange {
	if r == vpxCRFullRange {
		return video.ColorRangeFull
	}
	return video.ColorRangeVideo
}

func colorMatrixOf(cs int32) video.ColorMatrix {
	switch cs {
	case vpxCSBT601:
		return video.ColorMatrixBT470BG
	case vpxCSBT709:
		return video.ColorMatrixBT709
	case vpxCSSMPTE170:
		return video.ColorMatrixSMPTE170M
	case vpxCSSMPTE240:
		return video.ColorMatrixSMPTE240M
	case vpxCSBT2020:
		return video.ColorMatrixBT2020NCL
	case vpxCSReserved:
		return video.ColorMatrixReserved
	case vpxCSSRGB:
		return video.ColorMatrixIdentity
	}
	return video.ColorMatrixUnspecified
}
