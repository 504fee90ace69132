//go:build goexperiment.simd && amd64

package csvflow

import "testing"

// TestAVX512Indexer_MatchesScalar checks the accelerated backend against
// the portable one on inputs that exercise both the full-word AVX-512 path
// and the scalar tail, grounded on the teacher's avx_test.go comparison
// style (SIMD output must match the scalar fallback bit-for-bit).
func TestAVX512Indexer_MatchesScalar(t *testing.T) {
	if !useAVX512SepIndex {
		t.Skip("AVX-512 not available on this CPU")
	}
	inputs := []string{
		"a,b,c\n",
		"a,b,c\n1,2,3\n",
		`"quoted, field",b` + "\n",
		string(make([]byte, 130)), // exercises two full 64-byte words plus a tail
	}
	for _, in := range inputs {
		scalar := (&scalarIndexer{delimiter: ',', quote: '"'}).Index([]byte(in), false)
		accel := (&avx512Indexer{delimiter: ',', quote: '"'}).Index([]byte(in), false)
		if len(scalar.Separators) != len(accel.Separators) {
			t.Fatalf("input %q: separator count mismatch: scalar=%d accel=%d",
				in, len(scalar.Separators), len(accel.Separators))
		}
		for i := range scalar.Separators {
			if scalar.Separators[i] != accel.Separators[i] {
				t.Errorf("input %q: separator[%d] scalar=%d accel=%d", in, i, scalar.Separators[i], accel.Separators[i])
			}
		}
		if scalar.ProcessedBytes != accel.ProcessedBytes {
			t.Errorf("input %q: ProcessedBytes scalar=%d accel=%d", in, scalar.ProcessedBytes, accel.ProcessedBytes)
		}
		if scalar.EndInQuote != accel.EndInQuote {
			t.Errorf("input %q: EndInQuote scalar=%v accel=%v", in, scalar.EndInQuote, accel.EndInQuote)
		}
	}
}

func TestNewAcceleratedIndexer_NilWithoutCPUSupport(t *testing.T) {
	if useAVX512SepIndex {
		t.Skip("this CPU does support AVX-512; nothing to assert here")
	}
	if idx := newAcceleratedIndexer(',', '"'); idx != nil {
		t.Error("expected newAcceleratedIndexer to return nil without AVX-512 support")
	}
}
