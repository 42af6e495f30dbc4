package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAgain reports that no decoded frame is ready yet. It is an expected
	// control-flow signal: feed another packet or flush, then retry.
	ErrAgain = errors.New("no frame available")

	// ErrPoolClosed reports a Get on a closed buffer or frame pool.
	ErrPoolClosed = errors.New("pool closed")

	// ErrPoolNotConfigured reports a Get on a frame pool whose geometry has
	// not been latched yet.
	ErrPoolNotConfigured = errors.New("pool not configured")
)

type UnsupportedCodecError struct {
	Codec string
}

func (e *UnsupportedCodecError) Error() string {
	return fmt.Sprintf("unsupported codec %s", e.Codec)
}

// UnsupportedFormatError carries the raw image format code so the offending
// combination shows up in diagnostics.
type UnsupportedFormatError struct {
	Format   uint32
	BitDepth uint32
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format 0x%x with bit depth %d", e.Format, e.BitDepth)
}

// IntegrityError reports a zero-copy plane pointer outside its claimed
// backing buffer. The decoder handed back memory that did not come from the
// frame buffer bridge.
type IntegrityError struct {
	Plane  int
	Offset int
	Length int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("invalid frame buffer offset %d for plane %d, buffer length %d", e.Offset, e.Plane, e.Length)
}

// DecodeError wraps a non-OK status from the codec library together with its
// error string.
type DecodeError struct {
	Op     string
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Detail)
}
