// Package dsp holds the pixel-level primitives shared by the lossless
// decode path: the subtract-green inverse and box-filter rescaling. It
// mirrors the role of libwebp's dsp/
// directory, trimmed to what a VP8L-only decoder exercises; the lossy-VP8
// transform, prediction, filtering and quantisation tables that the same
// directory carries upstream have no caller here and are not ported. The
// per-pixel spatial predictor inverses live in internal/lossless, next to
// the tiled mode-image state they read; a second, duplicate table of
// predictor functions here would have no caller of its own now that the
// lossless encoder (the table's only consumer, for predictor-mode search)
// is gone.
package dsp

import "sync"

var initOnce sync.Once

// Init is the package's one-time setup hook, safe to call from multiple
// goroutines or decoders. The package has no lookup tables to build, so
// the call does no work.
func Init() {
	initOnce.Do(func() {})
}
