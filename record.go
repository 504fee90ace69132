package csvflow

// Header is the ordered, immutable-once-resolved list of field names an
// Assembler binds object-mode Records against, per spec §3 "Header".
type Header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) *Header {
	idx := make(map[string]int, len(names))
	for i, n := range names {
		idx[n] = i
	}
	return &Header{names: names, index: idx}
}

// Len returns the header's arity.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}

// Names returns the header's field names in order.
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return h.names
}

// Record is one assembled row, in whichever shape (Object or Array) the
// owning Assembler was constructed with. The access pattern mirrors a
// format-agnostic decoded-record abstraction: positional and, in object
// mode, by-name lookup over the same underlying values.
type Record struct {
	header *Header // non-nil only in object mode
	values []string
}

// Len reports the number of fields in the record.
func (r *Record) Len() int {
	return len(r.values)
}

// ByIndex returns the field value at position i and true if present.
func (r *Record) ByIndex(i int) (string, bool) {
	if i < 0 || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// ByName returns the field value bound to name and true if present. It
// always returns ok=false in array mode, or for a name beyond the arity
// of this particular record (the column-count policy's "left absent"
// case).
func (r *Record) ByName(name string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	idx, ok := r.header.index[name]
	if !ok || idx >= len(r.values) {
		return "", false
	}
	return r.values[idx], true
}

// Names returns the header names bound to this record, or nil in array
// mode.
func (r *Record) Names() []string {
	return r.header.Names()
}

// Values returns the ordered field values regardless of output format.
func (r *Record) Values() []string {
	return r.values
}

// IsObject reports whether this record carries a header binding.
func (r *Record) IsObject() bool {
	return r.header != nil
}

// Map materializes the object-mode representation: header name to value,
// in header order, for as many fields as this record actually carries.
// It returns nil in array mode.
func (r *Record) Map() map[string]string {
	if r.header == nil {
		return nil
	}
	names := r.header.names
	n := len(r.values)
	if n > len(names) {
		n = len(names)
	}
	m := make(map[string]string, n)
	for i := 0; i < n; i++ {
		m[names[i]] = r.values[i]
	}
	return m
}
