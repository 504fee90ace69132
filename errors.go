package csvflow

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an Error, matching the taxonomy of
// spec §7. Every error the package returns is either an *Error or wraps one.
type Kind int

const (
	// InvalidOption signals a construction-time option violation (bad
	// delimiter/quotation, invalid header/outputFormat pairing, ...).
	InvalidOption Kind = iota
	// ParseError is the umbrella kind for Lexer/Assembler parse failures
	// that don't have a more specific Kind below.
	ParseError
	// UnexpectedEOFInQuotedField is raised when a Lexer is flushed while
	// still inside a quoted field (state S2_InQuoted).
	UnexpectedEOFInQuotedField
	// UnexpectedCharacterAfterQuote is raised when a character other than
	// the quote, delimiter, or record terminator follows a closing quote.
	UnexpectedCharacterAfterQuote
	// DuplicateHeader is raised when header entries are not pairwise
	// unique, or an entry is empty.
	DuplicateHeader
	// ColumnCountMismatch is raised by the pad and strict column count
	// strategies when a record's arity violates the policy (truncate never
	// raises it).
	ColumnCountMismatch
	// FieldCountExceeded is raised when a record's field count exceeds
	// maxFieldCount.
	FieldCountExceeded
	// BufferOverflow is raised when unterminated buffered text exceeds
	// maxBufferSize.
	BufferOverflow
	// BinarySizeExceeded is raised by one-shot entry points before
	// parsing begins, when the input exceeds maxBinarySize.
	BinarySizeExceeded
	// Cancelled is raised when a cancellation token fires mid-pipeline.
	Cancelled
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case InvalidOption:
		return "InvalidOption"
	case ParseError:
		return "ParseError"
	case UnexpectedEOFInQuotedField:
		return "UnexpectedEOFInQuotedField"
	case UnexpectedCharacterAfterQuote:
		return "UnexpectedCharacterAfterQuote"
	case DuplicateHeader:
		return "DuplicateHeader"
	case ColumnCountMismatch:
		return "ColumnCountMismatch"
	case FieldCountExceeded:
		return "FieldCountExceeded"
	case BufferOverflow:
		return "BufferOverflow"
	case BinarySizeExceeded:
		return "BinarySizeExceeded"
	case Cancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// CancelReason distinguishes the two ways a Cancelled error can arise.
type CancelReason int

const (
	// AbortError means the cancellation token's Done channel fired
	// without an attached deadline having elapsed.
	AbortError CancelReason = iota
	// TimeoutError means the cancellation token carried timeout
	// semantics (context.DeadlineExceeded).
	TimeoutError
)

func (r CancelReason) String() string {
	if r == TimeoutError {
		return "TimeoutError"
	}
	return "AbortError"
}

// Error is the structured error value returned by every construction and
// parsing entry point in this package. It carries a Kind, a location when
// the error is localizable, and the optional diagnostic source label from
// Options.Source.
type Error struct {
	Kind     Kind
	Message  string
	Location *Location
	Source   string
	Reason   CancelReason // meaningful iff Kind == Cancelled
	Err      error        // wrapped cause, if any
}

// Error formats the error, including location and source label when present.
func (e *Error) Error() string {
	msg := e.Message
	if e.Kind == Cancelled {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	switch {
	case e.Location != nil && e.Source != "":
		return fmt.Sprintf("csvflow: %s: %s at line %d, column %d (row %d) [source=%s]",
			e.Kind, msg, e.Location.Start.Line, e.Location.Start.Column, e.Location.RowNumber, e.Source)
	case e.Location != nil:
		return fmt.Sprintf("csvflow: %s: %s at line %d, column %d (row %d)",
			e.Kind, msg, e.Location.Start.Line, e.Location.Start.Column, e.Location.RowNumber)
	case e.Source != "":
		return fmt.Sprintf("csvflow: %s: %s [source=%s]", e.Kind, msg, e.Source)
	default:
		return fmt.Sprintf("csvflow: %s: %s", e.Kind, msg)
	}
}

// Unwrap returns the wrapped cause, if any, so *Error participates in
// errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's Kind, so callers can
// write errors.Is(err, csvflow.ErrFieldCountExceeded) without a type
// assertion.
func (e *Error) Is(target error) bool {
	sentinel, ok := target.(*kindSentinel)
	return ok && sentinel.kind == e.Kind
}

// kindSentinel is an error value that only ever appears as the target of
// errors.Is, matching any *Error with the same Kind.
type kindSentinel struct{ kind Kind }

func (s *kindSentinel) Error() string { return "csvflow: " + s.kind.String() }

// Sentinel errors for errors.Is comparisons, one per Kind, mirroring the
// teacher's ErrBareQuote/ErrQuote/ErrFieldCount/ErrInputTooLarge pattern.
var (
	ErrInvalidOption                 error = &kindSentinel{InvalidOption}
	ErrParse                         error = &kindSentinel{ParseError}
	ErrUnexpectedEOFInQuotedField    error = &kindSentinel{UnexpectedEOFInQuotedField}
	ErrUnexpectedCharacterAfterQuote error = &kindSentinel{UnexpectedCharacterAfterQuote}
	ErrDuplicateHeader               error = &kindSentinel{DuplicateHeader}
	ErrColumnCountMismatch           error = &kindSentinel{ColumnCountMismatch}
	ErrFieldCountExceeded            error = &kindSentinel{FieldCountExceeded}
	ErrBufferOverflow                error = &kindSentinel{BufferOverflow}
	ErrBinarySizeExceeded            error = &kindSentinel{BinarySizeExceeded}
	ErrCancelled                     error = &kindSentinel{Cancelled}
)

func newOptionError(format string, args ...any) *Error {
	return &Error{Kind: InvalidOption, Message: fmt.Sprintf(format, args...)}
}

func newParseError(kind Kind, loc Location, source string, format string, args ...any) *Error {
	l := loc
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Location: &l, Source: source}
}

func newCancelledError(source string, reason CancelReason, cause error) *Error {
	return &Error{Kind: Cancelled, Message: "operation cancelled", Source: source, Reason: reason, Err: cause}
}

// AsError unwraps err into a *Error via errors.As, returning ok=false if
// err is nil or not (or does not wrap) a *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
