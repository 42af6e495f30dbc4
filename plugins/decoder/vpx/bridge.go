//go:build (darwin || linux) && (amd64 || arm64)

package vpx

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pingostack/govpx/core/buffer"
	"github.com/pingostack/govpx/pkg/handles"
)

// The allocator bridge lets libvpx write decoded planes straight into pool
// buffers. Both callbacks run synchronously on the decode call stack, never
// from another thread, so the pool needs no extra locking here beyond its
// own.

// getFrameBuffer services vpx_get_frame_buffer_cb_fn. poolHandle is a
// borrowed token: the pool's owning reference stays with the decoder until
// Close. On success fb.priv carries one owned buffer reference that
// releaseFrameBuffer gives back.
func getFrameBuffer(poolHandle uintptr, minSize uintptr, fb *vpxFrameBuffer) int32 {
	pool, ok := handles.Lookup(poolHandle).(*buffer.Pool)
	if !ok || fb == nil {
		return -1
	}

	if pool.BufferCapacity() < int(minSize) {
		pool.SetBufferCapacity(int(minSize))
	}

	buf := pool.Get()
	if buf == nil {
		return -1
	}
	if buf.Len() < int(minSize) {
		buf.Unref()
		return -1
	}

	if buf.Len() > 0 {
		fb.data = uintptr(unsafe.Pointer(&buf.Data()[0]))
	} else {
		fb.data = 0
	}
	fb.size = uintptr(buf.Len())
	fb.priv = handles.Register(buf)
	return 0
}

// releaseFrameBuffer drops the owned reference carried by fb.priv. A zero
// handle is a no-op, not an error.
func releaseFrameBuffer(_ uintptr, fb *vpxFrameBuffer) int32 {
	if fb == nil || fb.priv == 0 {
		return 0
	}
	if buf, ok := handles.Lookup(fb.priv).(*buffer.Buffer); ok {
		buf.Unref()
	}
	handles.Unregister(fb.priv)
	fb.priv = 0
	return 0
}

var (
	callbackOnce         sync.Once
	getFrameBufferCB     uintptr
	releaseFrameBufferCB uintptr
)

// frameBufferCallbacks returns the C-callable entry points for the bridge.
// purego callbacks are process-wide and never freed, so they are created
// once and shared by every decoder instance.
func frameBufferCallbacks() (get, release uintptr) {
	callbackOnce.Do(func() {
		getFrameBufferCB = purego.NewCallback(func(priv, minSize, fb uintptr) int32 {
			return getFrameBuffer(priv, minSize, (*vpxFrameBuffer)(unsafe.Pointer(fb)))
		})
		releaseFrameBufferCB = purego.NewCallback(func(priv, fb uintptr) int32 {
			return releaseFrameBuffer(priv, (*vpxFrameBuffer)(unsafe.Pointer(fb)))
		})
	})
	return getFrameBufferCB, releaseFrameBufferCB
}
