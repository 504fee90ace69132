//go:build !(goexperiment.simd && amd64)

package csvflow

// newAcceleratedIndexer has no accelerated backend on this build
// configuration (requires Go 1.26 with GOEXPERIMENT=simd on amd64; see
// indexer_simd.go), so NewSeparatorIndexer always falls back to
// scalarIndexer.
func newAcceleratedIndexer(delimiter, quote byte) SeparatorIndexer {
	return nil
}
