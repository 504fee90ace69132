package csvflow

import (
	"reflect"
	"testing"
)

func TestRecord_ByIndexAndByName(t *testing.T) {
	h := newHeader([]string{"a", "b", "c"})
	r := Record{header: h, values: []string{"1", "2"}}

	if v, ok := r.ByIndex(0); !ok || v != "1" {
		t.Errorf("ByIndex(0) = %q, %v", v, ok)
	}
	if _, ok := r.ByIndex(5); ok {
		t.Error("ByIndex(5) should report ok=false")
	}
	if v, ok := r.ByName("a"); !ok || v != "1" {
		t.Errorf("ByName(a) = %q, %v", v, ok)
	}
	// "c" is beyond this record's own arity (Keep strategy, short record).
	if _, ok := r.ByName("c"); ok {
		t.Error("ByName(c) should report ok=false when the value is absent")
	}
	if _, ok := r.ByName("nope"); ok {
		t.Error("ByName on an unknown name should report ok=false")
	}
}

func TestRecord_Map(t *testing.T) {
	h := newHeader([]string{"a", "b", "c"})
	r := Record{header: h, values: []string{"1", "2"}}
	got := r.Map()
	want := map[string]string{"a": "1", "b": "2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Map() = %v, want %v", got, want)
	}
}

func TestRecord_ArrayMode(t *testing.T) {
	r := Record{values: []string{"x", "y"}}
	if r.IsObject() {
		t.Error("array-mode record should not report IsObject")
	}
	if m := r.Map(); m != nil {
		t.Errorf("Map() on array-mode record should be nil, got %v", m)
	}
	if _, ok := r.ByName("x"); ok {
		t.Error("ByName on array-mode record should always report ok=false")
	}
}

func TestHeader_NilSafe(t *testing.T) {
	var h *Header
	if h.Len() != 0 {
		t.Errorf("nil Header.Len() = %d, want 0", h.Len())
	}
	if h.Names() != nil {
		t.Error("nil Header.Names() should be nil")
	}
}
