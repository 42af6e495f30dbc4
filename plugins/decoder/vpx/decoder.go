//go:build (darwin || linux) && (amd64 || arm64)

package vpx

import (
	"context"
	"runtime"
	"unsafe"

	"github.com/pingostack/govpx/core/buffer"
	"github.com/pingostack/govpx/core/errcode"
	"github.com/pingostack/govpx/core/frame"
	"github.com/pingostack/govpx/core/packet"
	"github.com/pingostack/govpx/core/plugin"
	"github.com/pingostack/govpx/core/video"
	"github.com/pingostack/govpx/pkg/handles"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
)

func init() {
	plugin.RegisterDecoder(&plugin.DecoderPlugin{
		CodecType: video.CodecTypeVP8,
		CreateDecoder: func(ctx context.Context) (plugin.VideoDecoder, error) {
			return NewDecoder(video.CodecTypeVP8)
		},
	})
	plugin.RegisterDecoder(&plugin.DecoderPlugin{
		CodecType: video.CodecTypeVP9,
		CreateDecoder: func(ctx context.Context) (plugin.VideoDecoder, error) {
			return NewDecoder(video.CodecTypeVP9)
		},
	})
}

// Decoder drives one libvpx decoder context. Instances may be handed between
// workers but every stateful call mutates the context and the frame
// iteration cursor, so concurrent use of one instance is undefined.
type Decoder struct {
	codecType  video.CodecType
	ctx        *vpxCodecCtx
	iter       uintptr
	pool       *buffer.Pool
	poolHandle uintptr
	closed     bool

	poolConfigured *atomic.Bool
	poolDesc       video.FrameDescriptor
}

// NewDecoder initializes a libvpx context for the given codec. Only VP9
// supports external frame buffers, so the allocator bridge is registered
// for VP9 alone.
func NewDecoder(codecType video.CodecType) (*Decoder, error) {
	switch codecType {
	case video.CodecTypeVP8, video.CodecTypeVP9:
	default:
		return nil, &errcode.UnsupportedCodecError{Codec: codecType.String()}
	}

	if err := load(); err != nil {
		return nil, err
	}

	var iface uintptr
	if codecType == video.CodecTypeVP8 {
		iface = vpxCodecVP8DX()
	} else {
		iface = vpxCodecVP9DX()
	}

	d := &Decoder{
		codecType:      codecType,
		ctx:            &vpxCodecCtx{},
		poolConfigured: atomic.NewBool(false),
	}

	cfg := &vpxDecCfg{}
	ret := vpxCodecDecInitVer(
		uintptr(unsafe.Pointer(d.ctx)),
		iface,
		uintptr(unsafe.Pointer(cfg)),
		0,
		vpxDecoderABIVersion,
	)
	runtime.KeepAlive(cfg)
	if ret != vpxCodecOK {
		return nil, &errcode.DecodeError{Op: "init", Detail: vpxCodecErrToString(ret)}
	}

	// The handle is the pool's long-lived owning reference; the bridge
	// callbacks only borrow it.
	d.pool = buffer.NewPool(0)
	d.poolHandle = handles.Register(d.pool)

	if codecType == video.CodecTypeVP9 {
		get, release := frameBufferCallbacks()
		vpxCodecSetFrameBufferFunctions(uintptr(unsafe.Pointer(d.ctx)), get, release, d.poolHandle)
	}

	return d, nil
}

// Configure is a no-op: decode parameters are fixed at construction.
func (d *Decoder) Configure(options interface{}) error {
	return nil
}

func (d *Decoder) SetOption(name string, value interface{}) error {
	return nil
}

func (d *Decoder) CodecType() video.CodecType {
	return d.codecType
}

// SendPacket feeds one compressed packet to the decoder. An empty or nil
// packet is the flush signal forcing emission of buffered frames. Every
// call restarts frame iteration: a decode call may produce zero or more
// ready images and the cursor is per call.
func (d *Decoder) SendPacket(pkt *packet.Packet) error {
	var data uintptr
	var size uint32
	if pkt.Len() > 0 {
		data = uintptr(unsafe.Pointer(&pkt.Data[0]))
		size = uint32(len(pkt.Data))
	}

	ret := vpxCodecDecode(uintptr(unsafe.Pointer(d.ctx)), data, size, 0, 0)
	if pkt != nil {
		runtime.KeepAlive(pkt.Data)
	}

	d.iter = 0

	if ret != vpxCodecOK {
		return &errcode.DecodeError{Op: "decode", Detail: d.lastError()}
	}
	return nil
}

// Flush sends the empty input signal; drain the result with repeated
// ReceiveFrame until ErrAgain.
func (d *Decoder) Flush() error {
	return d.SendPacket(&packet.Packet{})
}

// ReceiveFrame pulls the next decoded frame. ErrAgain means no frame is
// available until more input arrives. With a frame pool supplied, the first
// frame latches the pool geometry; without one, each frame is either copied
// out or attached zero-copy to its backing pool buffer.
func (d *Decoder) ReceiveFrame(pool *frame.Pool) (*frame.Frame, error) {
	img, err := d.nextImage()
	if err != nil {
		return nil, err
	}

	if pool == nil {
		if !img.hasFrameBuffer() {
			return img.toFrame()
		}

		buf, planes, desc, err := img.toSharedBuffer()
		if err != nil {
			return nil, err
		}
		return frame.NewShared(desc, buf, planes), nil
	}

	if !img.hasFrameBuffer() {
		desc, err := img.descriptor()
		if err != nil {
			return nil, err
		}
		if err := d.latchPool(pool, desc, nil); err != nil {
			return nil, err
		}

		src, err := img.toFrame()
		if err != nil {
			return nil, err
		}
		defer src.Release()

		dst, err := pool.Get()
		if err != nil {
			return nil, err
		}
		if err := dst.CopyFrom(src); err != nil {
			dst.Release()
			return nil, err
		}
		return dst, nil
	}

	buf, planes, desc, err := img.toSharedBuffer()
	if err != nil {
		return nil, err
	}
	// The pool must not allocate backing memory of its own here; frames get
	// the decoder's buffer attached instead.
	if err := d.latchPool(pool, desc, frame.EmptyCreator()); err != nil {
		buf.Unref()
		return nil, err
	}
	dst, err := pool.Get()
	if err != nil {
		buf.Unref()
		return nil, err
	}
	dst.AttachShared(desc, buf, planes)
	return dst, nil
}

// latchPool configures the supplied frame pool from the first decoded frame,
// exactly once per decoder instance. A differently shaped later frame is a
// protocol violation by the decoder, not a reconfigure.
func (d *Decoder) latchPool(pool *frame.Pool, desc video.FrameDescriptor, creator frame.Creator) error {
	if d.poolConfigured.CompareAndSwap(false, true) {
		d.poolDesc = desc
		pool.Configure(desc, creator)
		return nil
	}
	if d.poolDesc != desc {
		return errors.Errorf("frame shape changed from %s to %s", d.poolDesc, desc)
	}
	return nil
}

func (d *Decoder) nextImage() (*image, error) {
	ptr := vpxCodecGetFrame(uintptr(unsafe.Pointer(d.ctx)), uintptr(unsafe.Pointer(&d.iter)))
	if ptr == 0 {
		return nil, errcode.ErrAgain
	}
	return &image{raw: (*vpxImage)(unsafe.Pointer(ptr))}, nil
}

func (d *Decoder) lastError() string {
	return vpxCodecError(uintptr(unsafe.Pointer(d.ctx)))
}

// Close destroys the codec context before dropping the pool's owning handle:
// libvpx may still release frame buffers during vpx_codec_destroy.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	if d.ctx != nil {
		vpxCodecDestroy(uintptr(unsafe.Pointer(d.ctx)))
	}
	if d.poolHandle != 0 {
		handles.Unregister(d.poolHandle)
		d.poolHandle = 0
	}
	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
	}
	return nil
}
