package csvflow

import (
	"strings"
	"testing"
)

func TestParse_Basic(t *testing.T) {
	recs, err := Parse([]byte("name,age\nAlice,30\nBob,25\n"), Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if v, _ := recs[0].ByName("name"); v != "Alice" {
		t.Errorf("recs[0].ByName(name) = %q", v)
	}
}

func TestParse_MaxBinarySizeExceeded(t *testing.T) {
	data := []byte(strings.Repeat("a,b\n", 100))
	_, err := Parse(data, Options{MaxBinarySize: 10})
	if err == nil {
		t.Fatal("expected a BinarySizeExceeded error")
	}
	if e, ok := AsError(err); !ok || e.Kind != BinarySizeExceeded {
		t.Errorf("got %v, want BinarySizeExceeded", err)
	}
}

func TestParseReader_Basic(t *testing.T) {
	r := strings.NewReader("a,b\n1,2\n")
	recs, err := ParseReader(r, Options{OutputFormat: OutputArray})
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if got := recs[0].Values(); got[0] != "1" || got[1] != "2" {
		t.Errorf("got %v", got)
	}
}

func TestParseReader_MaxBinarySizeExceeded(t *testing.T) {
	r := strings.NewReader(strings.Repeat("a,b\n", 1000))
	_, err := ParseReader(r, Options{MaxBinarySize: 10})
	if err == nil {
		t.Fatal("expected a BinarySizeExceeded error")
	}
	if e, ok := AsError(err); !ok || e.Kind != BinarySizeExceeded {
		t.Errorf("got %v, want BinarySizeExceeded", err)
	}
}

func TestParse_IndexedLexerMatchesDirectLexer(t *testing.T) {
	input := []byte(`name,"quoted, field",age` + "\n" + `Alice,"b""c",30` + "\n")
	direct, err := Parse(input, Options{})
	if err != nil {
		t.Fatalf("Parse (direct): %v", err)
	}
	indexed, err := Parse(input, Options{UseIndexedLexer: true})
	if err != nil {
		t.Fatalf("Parse (indexed): %v", err)
	}
	if len(direct) != len(indexed) {
		t.Fatalf("record count mismatch: direct=%d indexed=%d", len(direct), len(indexed))
	}
	for i := range direct {
		if !equalValues(direct[i].Values(), indexed[i].Values()) {
			t.Errorf("record %d mismatch: direct=%v indexed=%v", i, direct[i].Values(), indexed[i].Values())
		}
	}
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
