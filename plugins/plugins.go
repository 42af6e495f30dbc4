//go:build (darwin || linux) && (amd64 || arm64)

package plugins

import (
	_ "github.com/pingostack/govpx/plugins/decoder/vpx"
)
