package csvflow

// OutputFormat selects the Record shape an Assembler produces.
type OutputFormat int

const (
	// OutputObject maps header name to field value. The default.
	OutputObject OutputFormat = iota
	// OutputArray emits an ordered sequence of field values.
	OutputArray
)

// ColumnCountStrategy selects how the Assembler reconciles a record's
// arity against the header arity k. Headerless mode (Header: []string{})
// accepts only Keep, so no k applies there. See spec §4.2.
type ColumnCountStrategy int

const (
	// Keep emits each record with its own arity; no padding or rejection.
	Keep ColumnCountStrategy = iota
	// Pad extends short records with empty strings to length k and
	// rejects records longer than k.
	Pad
	// Strict rejects any record whose arity is not exactly k.
	Strict
	// Truncate drops fields beyond index k-1 and pads short records.
	Truncate
)

func (s ColumnCountStrategy) String() string {
	switch s {
	case Keep:
		return "keep"
	case Pad:
		return "pad"
	case Strict:
		return "strict"
	case Truncate:
		return "truncate"
	default:
		return "unknown"
	}
}

const (
	// DefaultMaxFieldCount is the hard cap on fields per record.
	DefaultMaxFieldCount = 100_000
	// DefaultMaxBufferSize is the hard cap on unterminated buffered
	// characters (protects against unterminated quotes).
	DefaultMaxBufferSize = 10 * (1 << 20)
	// DefaultMaxBinarySize is the hard cap on total binary input for
	// one-shot entry points.
	DefaultMaxBinarySize = 100 * (1 << 20)

	// Unbounded is passed as MaxFieldCount/MaxBinarySize to explicitly
	// request no cap (spec §3's "positive integer or ∞"). It is distinct
	// from the zero value, which means "unset, use the default" — so a
	// caller can tell "use the 100,000 default" from "disable the cap"
	// without a separate boolean.
	Unbounded = -1
)

// CancelToken is the cooperative cancellation contract referenced by spec
// §3 "signal" and §4.3/§5. It mirrors context.Context's cancellation half
// so callers can pass a context.Context directly.
type CancelToken interface {
	// Done returns a channel that is closed when the token fires.
	Done() <-chan struct{}
	// Err returns the reason the token fired: nil while still live,
	// otherwise a non-nil error. Implementations that carry deadline
	// semantics should return context.DeadlineExceeded-compatible errors
	// so Pipeline can distinguish AbortError from TimeoutError via
	// errors.Is(err, context.DeadlineExceeded).
	Err() error
}

// Options configures a Lexer, Assembler, or Pipeline. The zero value is
// valid: every unset field takes its documented default. Populate the
// fields you care about, then pass to NewLexer/NewAssembler/NewPipeline,
// which validate once at construction.
type Options struct {
	// Delimiter separates fields of the same record. Must be exactly one
	// byte, not equal to CR, LF, or Quotation. Default: ','.
	Delimiter byte
	// Quotation is the quote character. Same exclusions as Delimiter.
	// Default: '"'.
	Quotation byte

	// Header, when non-nil, is used verbatim: a non-empty slice means the
	// first input row is data; an empty (non-nil) slice means explicit
	// headerless mode (OutputFormat must be OutputArray). A nil Header
	// means auto-detect: the first record becomes the header.
	Header []string

	// OutputFormat selects Record shape. Default: OutputObject.
	OutputFormat OutputFormat

	// ColumnCountStrategy selects the column-count reconciliation policy.
	// Default: Keep. Headerless mode requires Keep.
	ColumnCountStrategy ColumnCountStrategy

	// SkipEmptyLines drops a record that is exactly one empty field.
	SkipEmptyLines bool

	// MaxFieldCount caps fields per record. Zero means "use the default";
	// Unbounded (-1) means no cap. Default: DefaultMaxFieldCount.
	MaxFieldCount int
	// MaxBufferSize caps unterminated buffered characters. Default:
	// DefaultMaxBufferSize. Must be positive.
	MaxBufferSize int
	// MaxBinarySize caps total binary input for one-shot APIs. Zero means
	// "use the default"; Unbounded (-1) means no cap. Default:
	// DefaultMaxBinarySize.
	MaxBinarySize int64

	// IgnoreBOM disables BOM (U+FEFF) stripping at the start of input.
	IgnoreBOM bool

	// Source is a diagnostic label included in errors.
	Source string

	// Signal cancels the operation cooperatively. Nil means no
	// cancellation.
	Signal CancelToken

	// UseIndexedLexer selects the Separator-Indexer-backed Lexer
	// construction (see lexer_indexed.go), which pre-scans buffered input
	// with a SeparatorIndexer and feeds the released part to the same
	// state machine the direct Lexer uses. Both produce the same token
	// sequence.
	UseIndexedLexer bool
}

// resolvedOptions is the validated, compact form of Options computed once
// at construction and threaded through Lexer/Assembler/Pipeline. Policy is
// stored as small values (bytes, enums) rather than re-deriving it from
// Options on every call, mirroring the teacher's extendedOptions split
// between public policy fields and internal mechanism state.
type resolvedOptions struct {
	delimiter byte
	quote     byte

	headerSet     bool // true if Options.Header was non-nil
	header        []string
	headerless    bool // explicit Header == []string{}

	outputFormat OutputFormat
	strategy     ColumnCountStrategy
	skipEmpty    bool

	maxFieldCount int // 0 means unbounded
	maxBufferSize int
	maxBinarySize int64 // 0 means unbounded

	ignoreBOM bool
	source    string
	signal    CancelToken

	useIndexedLexer bool
}

// resolveOptions validates opts and returns its compact internal form, or an
// *Error of Kind InvalidOption. Validation happens exactly once, at
// construction, never re-checked per call (spec §6 "at construction").
func resolveOptions(opts Options) (resolvedOptions, error) {
	r := resolvedOptions{
		delimiter:       ',',
		quote:           '"',
		outputFormat:    opts.OutputFormat,
		strategy:        opts.ColumnCountStrategy,
		skipEmpty:       opts.SkipEmptyLines,
		maxFieldCount:   DefaultMaxFieldCount,
		maxBufferSize:   DefaultMaxBufferSize,
		maxBinarySize:   DefaultMaxBinarySize,
		ignoreBOM:       opts.IgnoreBOM,
		source:          opts.Source,
		signal:          opts.Signal,
		useIndexedLexer: opts.UseIndexedLexer,
	}

	if opts.Delimiter != 0 {
		r.delimiter = opts.Delimiter
	}
	if opts.Quotation != 0 {
		r.quote = opts.Quotation
	}
	if r.delimiter == r.quote {
		return r, newOptionError("delimiter and quotation must differ, both are %q", r.delimiter)
	}
	if r.delimiter == '\r' || r.delimiter == '\n' {
		return r, newOptionError("delimiter must not be CR or LF")
	}
	if r.quote == '\r' || r.quote == '\n' {
		return r, newOptionError("quotation must not be CR or LF")
	}

	if opts.Header != nil {
		r.headerSet = true
		r.headerless = len(opts.Header) == 0
		if r.headerless && opts.OutputFormat != OutputArray {
			return r, newOptionError("headerless input (Header: []string{}) requires OutputFormat: OutputArray")
		}
		if r.headerless && opts.ColumnCountStrategy != Keep {
			return r, newOptionError("headerless input (Header: []string{}) only supports ColumnCountStrategy: Keep")
		}
		if !r.headerless {
			if err := validateHeaderNames(opts.Header); err != nil {
				return r, err
			}
		}
		r.header = append([]string(nil), opts.Header...)
	}

	switch {
	case opts.MaxFieldCount == Unbounded:
		r.maxFieldCount = 0 // internal sentinel for unbounded; see bounded()
	case opts.MaxFieldCount < 0:
		return r, newOptionError("MaxFieldCount must be positive, 0 (default), or Unbounded, got %d", opts.MaxFieldCount)
	case opts.MaxFieldCount != 0:
		r.maxFieldCount = opts.MaxFieldCount
	}

	if opts.MaxBufferSize < 0 {
		return r, newOptionError("MaxBufferSize must be positive, got %d", opts.MaxBufferSize)
	}
	if opts.MaxBufferSize != 0 {
		r.maxBufferSize = opts.MaxBufferSize
	}

	switch {
	case opts.MaxBinarySize == Unbounded:
		r.maxBinarySize = 0 // internal sentinel for unbounded
	case opts.MaxBinarySize < 0:
		return r, newOptionError("MaxBinarySize must be positive, 0 (default), or Unbounded, got %d", opts.MaxBinarySize)
	case opts.MaxBinarySize != 0:
		r.maxBinarySize = opts.MaxBinarySize
	}

	return r, nil
}

// validateHeaderNames checks that every name is non-empty and pairwise
// unique, returning a DuplicateHeader *Error on the first violation found.
func validateHeaderNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return &Error{Kind: DuplicateHeader, Message: "header entries must be non-empty"}
		}
		if _, dup := seen[name]; dup {
			return &Error{Kind: DuplicateHeader, Message: "duplicate header name " + name}
		}
		seen[name] = struct{}{}
	}
	return nil
}
