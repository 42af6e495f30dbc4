package plugin

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/pingostack/govpx/core/frame"
	"github.com/pingostack/govpx/core/packet"
	"github.com/pingostack/govpx/core/video"
)

// VideoDecoder is the uniform decoder contract. SendPacket, ReceiveFrame and
// Flush mutate decoder state and must be serialized by the caller; one
// decoder instance per worker is the expected arrangement.
type VideoDecoder interface {
	io.Closer
	Configure(options interface{}) error
	SetOption(name string, value interface{}) error
	SendPacket(pkt *packet.Packet) error
	ReceiveFrame(pool *frame.Pool) (*frame.Frame, error)
	Flush() error
	CodecType() video.CodecType
}

type DecoderPlugin struct {
	CreateDecoder func(ctx context.Context) (VideoDecoder, error)
	CodecType     video.CodecType
}

var decoderTypes = map[video.CodecType]*DecoderPlugin{}
var decoderLock sync.Mutex

// RegisterDecoder populates the process-wide registry. Plugins call it from
// init(), before first use; the registry is read-only afterwards.
func RegisterDecoder(plugin *DecoderPlugin) {
	decoderLock.Lock()
	defer decoderLock.Unlock()

	decoderTypes[plugin.CodecType] = plugin
}

func CreateDecoder(ctx context.Context, codecType video.CodecType) (decoder VideoDecoder, err error) {
	plugin, ok := decoderTypes[codecType]
	if !ok {
		return nil, fmt.Errorf("decoder %s not found", codecType)
	}
	return plugin.CreateDecoder(ctx)
}
