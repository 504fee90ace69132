package csvflow

// Assembler consumes a Token stream and materializes Records: it resolves
// the header, applies the column-count policy, enforces the per-record
// field-count safety limit, and honors skipEmptyLines. See spec §4.2.
type Assembler struct {
	opts resolvedOptions

	header         *Header
	headerResolved bool // true once the header is known (explicit, headerless, or auto-detected)

	fields     []string
	fieldCount int
	rowNumber  int // row number of the record currently being accumulated

	drained bool
}

// NewAssembler constructs an Assembler from opts, validating the header
// (if supplied) once at construction (spec §4.2).
func NewAssembler(opts Options) (*Assembler, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newAssemblerFromResolved(ro)
}

func newAssemblerFromResolved(ro resolvedOptions) (*Assembler, error) {
	a := &Assembler{opts: ro, rowNumber: 1}
	if ro.headerSet {
		if ro.headerless {
			a.headerResolved = true // array mode, no header binding
		} else {
			if bounded(ro.maxFieldCount) && len(ro.header) > ro.maxFieldCount {
				return nil, &Error{Kind: FieldCountExceeded, Message: "configured header exceeds MaxFieldCount", Source: ro.source}
			}
			a.header = newHeader(ro.header)
			a.headerResolved = true
		}
	}
	return a, nil
}

func bounded(n int) bool { return n != 0 }

// Assemble consumes a batch of tokens, returning zero or more Records. It
// retains any partial trailing record (not yet closed by a
// RecordDelimiter) across calls; call Flush once all tokens have been
// delivered.
func (a *Assembler) Assemble(tokens []Token) ([]Record, error) {
	if a.drained {
		return nil, newOptionError("Assembler used after flush; construct a new one")
	}
	var out []Record
	for _, tok := range tokens {
		switch tok.Kind {
		case FieldToken:
			a.fields = append(a.fields, tok.Value)
			a.fieldCount++
			if bounded(a.opts.maxFieldCount) && a.fieldCount > a.opts.maxFieldCount {
				a.drained = true
				return out, newParseError(FieldCountExceeded, tok.Loc, a.opts.source,
					"record exceeds MaxFieldCount (%d)", a.opts.maxFieldCount)
			}
		case FieldDelimiterToken:
			// Structural only; the preceding Field token already captured
			// the value.
		case RecordDelimiterToken:
			rec, err := a.closeRow(tok.Loc.RowNumber)
			if err != nil {
				a.drained = true
				return out, err
			}
			if rec != nil {
				out = append(out, *rec)
			}
		}
	}
	return out, nil
}

// Flush emits any trailing record not yet closed by a RecordDelimiter, and
// marks the Assembler drained.
func (a *Assembler) Flush() ([]Record, error) {
	if a.drained {
		return nil, nil
	}
	a.drained = true
	if len(a.fields) == 0 {
		return nil, nil
	}
	rec, err := a.closeRow(a.rowNumber)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return []Record{*rec}, nil
}

// closeRow resolves the accumulated fields as either the header (first
// row, auto-detect mode) or a data record, and resets accumulation state.
func (a *Assembler) closeRow(rowNumber int) (*Record, error) {
	fields := a.fields
	a.fields = nil
	a.fieldCount = 0
	a.rowNumber = rowNumber + 1

	if !a.headerResolved {
		if err := validateHeaderNames(fields); err != nil {
			if e, ok := err.(*Error); ok {
				e.Location = &Location{RowNumber: rowNumber}
				e.Source = a.opts.source
			}
			return nil, err
		}
		a.header = newHeader(append([]string(nil), fields...))
		a.headerResolved = true
		return nil, nil
	}

	return a.finalizeRecord(fields, rowNumber)
}

// finalizeRecord applies skipEmptyLines and the column-count policy to a
// row's fields, returning nil, nil when the row should be dropped.
func (a *Assembler) finalizeRecord(fields []string, rowNumber int) (*Record, error) {
	if a.opts.skipEmpty && len(fields) == 1 && fields[0] == "" {
		return nil, nil
	}

	// Headerless (explicit Header: []string{}) only supports Keep: every
	// record is emitted with its own arity, as an array.
	if a.header == nil {
		return &Record{values: fields}, nil
	}

	k := a.header.Len()
	switch a.opts.strategy {
	case Keep:
		// No-op: Record.Map/ByName already clamp to min(len(values), k),
		// and arrays emit all fields as read.
	case Pad:
		if len(fields) > k {
			return nil, newParseError(ColumnCountMismatch, Location{RowNumber: rowNumber}, a.opts.source,
				"record has %d fields, want %d (strategy=pad)", len(fields), k)
		}
		fields = padTo(fields, k)
	case Truncate:
		if len(fields) > k {
			fields = fields[:k]
		}
		fields = padTo(fields, k)
	case Strict:
		if len(fields) != k {
			return nil, newParseError(ColumnCountMismatch, Location{RowNumber: rowNumber}, a.opts.source,
				"record has %d fields, want exactly %d (strategy=strict)", len(fields), k)
		}
	}

	var header *Header
	if a.opts.outputFormat == OutputObject {
		header = a.header
	}
	return &Record{header: header, values: fields}, nil
}

func padTo(fields []string, k int) []string {
	if len(fields) >= k {
		return fields
	}
	padded := make([]string, k)
	copy(padded, fields)
	return padded
}
