package csvflow

import "unicode/utf8"

// lexState is the Lexer's current position in the state machine of
// spec §4.1.
type lexState int

const (
	// stateFieldStart is S0: about to read the first character of a field.
	stateFieldStart lexState = iota
	// stateInUnquoted is S1: accumulating an unquoted field.
	stateInUnquoted
	// stateInQuoted is S2: inside a quoted field.
	stateInQuoted
	// stateQuoteSeen is S3: saw a quote while in S2.
	stateQuoteSeen
)

// TokenSource is the contract shared by Lexer and the indexer-backed
// lexer in lexer_indexed.go: feed it chunks, get back tokens.
type TokenSource interface {
	Lex(chunk []byte, stream bool) ([]Token, error)
	Reset()
}

// Lexer is a resumable, chunk-boundary-safe CSV tokenizer implementing the
// state machine of spec §4.1: S0_FieldStart, S1_InUnquoted, S2_InQuoted,
// S3_QuoteSeen. It never makes a decision that depends on a byte it has
// not yet seen — a trailing lone CR, a doubled quote, and a multibyte rune
// split across chunk boundaries are all buffered until disambiguated.
type Lexer struct {
	opts resolvedOptions

	state lexState
	buf   []byte // unconsumed remainder carried across Lex calls
	field []byte // bytes accumulated for the field currently being read

	pos Pos // location immediately after the last consumed unit
	row int // 1-based row number of the record currently being read

	fieldStart    Pos  // location where the current field began
	fieldStarted  bool // true once beginField has been called for this field
	afterDelim    bool // true if the last emitted token was a FieldDelimiter
	checkedBOM    bool
	drained       bool
}

var bomBytes = [3]byte{0xEF, 0xBB, 0xBF}

// NewLexer constructs a Lexer from opts, validating delimiter/quotation
// constraints once at construction (spec §6).
func NewLexer(opts Options) (*Lexer, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newLexerFromResolved(ro), nil
}

func newLexerFromResolved(ro resolvedOptions) *Lexer {
	return &Lexer{
		opts: ro,
		pos:  Pos{Line: 1, Column: 1, Offset: 0},
		row:  1,
	}
}

// Reset clears the Lexer's buffer and state back to construction-time
// defaults. The Lexer must not be reused after a flush without a Reset.
func (l *Lexer) Reset() {
	opts := l.opts
	*l = *newLexerFromResolved(opts)
}

// Lex appends chunk (if non-empty) to the internal buffer and emits all
// complete tokens. If stream is false, chunk is treated as the final
// input: any trailing token is emitted and the Lexer is marked drained.
// A drained Lexer must not be reused (except via Reset).
func (l *Lexer) Lex(chunk []byte, stream bool) ([]Token, error) {
	if l.drained {
		return nil, newOptionError("Lexer used after drain; call Reset first")
	}
	if l.opts.signal != nil {
		if err := l.opts.signal.Err(); err != nil {
			l.drained = true
			return nil, newCancelledError(l.opts.source, cancelReasonFor(err), err)
		}
	}

	if len(chunk) > 0 {
		l.buf = append(l.buf, chunk...)
	}
	flush := !stream

	l.stripBOM(flush)

	tokens, pos, err := l.run(flush)
	l.buf = l.buf[pos:]

	if err != nil {
		l.drained = true
		return tokens, err
	}

	if overflow := len(l.buf) + len(l.field); overflow > l.opts.maxBufferSize {
		l.drained = true
		return tokens, newParseError(BufferOverflow, l.currentLocation(), l.opts.source,
			"unterminated buffered input exceeds MaxBufferSize (%d)", l.opts.maxBufferSize)
	}

	if flush {
		l.drained = true
	}
	return tokens, nil
}

func (l *Lexer) currentLocation() Location {
	return Location{Start: l.pos, End: l.pos, RowNumber: l.row}
}

// stripBOM strips a leading U+FEFF BOM from l.buf exactly once, only when
// it is the very first thing ever seen and IgnoreBOM is false. Because the
// BOM is 3 bytes, it may be split across chunks; stripBOM waits for enough
// bytes (or flush) before deciding.
func (l *Lexer) stripBOM(flush bool) {
	if l.checkedBOM {
		return
	}
	if l.opts.ignoreBOM {
		l.checkedBOM = true
		return
	}
	n := len(l.buf)
	if n >= 3 {
		if l.buf[0] == bomBytes[0] && l.buf[1] == bomBytes[1] && l.buf[2] == bomBytes[2] {
			l.buf = l.buf[3:]
		}
		l.checkedBOM = true
		return
	}
	for i := 0; i < n; i++ {
		if l.buf[i] != bomBytes[i] {
			l.checkedBOM = true
			return
		}
	}
	if flush {
		l.checkedBOM = true
	}
	// else: buf is a strict prefix of the BOM and more input may arrive; wait.
}

// run processes l.buf from the start, emitting complete tokens. It returns
// the tokens, the number of leading bytes of l.buf it fully consumed (the
// caller trims the buffer to the remainder), and an error if the state
// machine fails.
func (l *Lexer) run(flush bool) ([]Token, int, error) {
	var tokens []Token
	pos := 0
	n := len(l.buf)

	for {
		if pos >= n {
			if !flush {
				return tokens, pos, nil
			}
			tok, err := l.finalize()
			if err != nil {
				return tokens, pos, err
			}
			if tok != nil {
				tokens = append(tokens, *tok)
			}
			return tokens, pos, nil
		}

		b := l.buf[pos]

		switch b {
		case l.opts.quote:
			switch l.state {
			case stateFieldStart:
				l.beginField()
				l.advance(false)
				pos++
				l.state = stateInQuoted
			case stateInQuoted:
				l.advance(false)
				pos++
				l.state = stateQuoteSeen
			case stateQuoteSeen:
				// Doubled quote: append one literal quote, back to S2.
				l.field = append(l.field, l.opts.quote)
				l.advance(false)
				pos++
				l.state = stateInQuoted
			case stateInUnquoted:
				// A quote mid-unquoted-field is ordinary content.
				l.field = append(l.field, b)
				l.advance(false)
				pos++
			}
			continue
		}

		switch l.state {
		case stateFieldStart:
			switch b {
			case l.opts.delimiter:
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.emitFieldDelimiter())
				l.advance(false)
				pos++
			case '\n':
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.consumeEOL(EOLLF))
				pos++
			case '\r':
				eol, consumed, need := l.lookAheadCRLF(pos, flush)
				if need {
					return tokens, pos, nil
				}
				if eol {
					tokens = append(tokens, l.emitField())
					tokens = append(tokens, l.consumeEOL(EOLCRLF))
					pos += consumed
				} else {
					l.beginField()
					l.field = append(l.field, '\r')
					l.advance(false)
					pos++
					l.state = stateInUnquoted
				}
			default:
				size, complete := stepRune(l.buf[pos:], flush)
				if !complete {
					return tokens, pos, nil
				}
				l.beginField()
				l.field = append(l.field, l.buf[pos:pos+size]...)
				l.advance(false)
				pos += size
				l.state = stateInUnquoted
			}

		case stateInUnquoted:
			switch b {
			case l.opts.delimiter:
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.emitFieldDelimiter())
				l.advance(false)
				pos++
				l.state = stateFieldStart
			case '\n':
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.consumeEOL(EOLLF))
				pos++
				l.state = stateFieldStart
			case '\r':
				eol, consumed, need := l.lookAheadCRLF(pos, flush)
				if need {
					return tokens, pos, nil
				}
				if eol {
					tokens = append(tokens, l.emitField())
					tokens = append(tokens, l.consumeEOL(EOLCRLF))
					pos += consumed
					l.state = stateFieldStart
				} else {
					l.field = append(l.field, '\r')
					l.advance(false)
					pos++
				}
			default:
				size, complete := stepRune(l.buf[pos:], flush)
				if !complete {
					return tokens, pos, nil
				}
				l.field = append(l.field, l.buf[pos:pos+size]...)
				l.advance(false)
				pos += size
			}

		case stateInQuoted:
			isNL := b == '\n'
			size, complete := stepRune(l.buf[pos:], flush)
			if !complete {
				return tokens, pos, nil
			}
			l.field = append(l.field, l.buf[pos:pos+size]...)
			l.advance(isNL)
			pos += size

		case stateQuoteSeen:
			switch b {
			case l.opts.delimiter:
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.emitFieldDelimiter())
				l.advance(false)
				pos++
				l.state = stateFieldStart
			case '\n':
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.consumeEOL(EOLLF))
				pos++
				l.state = stateFieldStart
			case '\r':
				eol, consumed, need := l.lookAheadCRLF(pos, flush)
				if need {
					return tokens, pos, nil
				}
				if !eol {
					return tokens, pos, newParseError(UnexpectedCharacterAfterQuote, l.currentLocation(), l.opts.source,
						"unexpected character after closing quote")
				}
				tokens = append(tokens, l.emitField())
				tokens = append(tokens, l.consumeEOL(EOLCRLF))
				pos += consumed
				l.state = stateFieldStart
			default:
				return tokens, pos, newParseError(UnexpectedCharacterAfterQuote, l.currentLocation(), l.opts.source,
					"unexpected character %q after closing quote", rune(b))
			}
		}
	}
}

// lookAheadCRLF decides whether the '\r' at buf[pos] begins a CRLF pair.
// need=true means the decision cannot be made yet (stream:true and no more
// buffered bytes); the caller must return and wait for the next chunk.
func (l *Lexer) lookAheadCRLF(pos int, flush bool) (eol bool, consumed int, need bool) {
	if pos+1 < len(l.buf) {
		if l.buf[pos+1] == '\n' {
			return true, 2, false
		}
		return false, 1, false
	}
	if !flush {
		return false, 0, true
	}
	return false, 1, false
}

// stepRune reports the byte length of the rune at the start of buf. If buf
// does not hold a complete rune and more input may arrive (flush is
// false), complete is false and the caller must wait for more bytes.
func stepRune(buf []byte, flush bool) (size int, complete bool) {
	if len(buf) == 0 {
		return 0, false
	}
	if buf[0] < utf8.RuneSelf {
		return 1, true
	}
	if !utf8.FullRune(buf) && !flush {
		return 0, false
	}
	_, size = utf8.DecodeRune(buf)
	return size, true
}

func (l *Lexer) beginField() {
	if !l.fieldStarted {
		l.fieldStart = l.pos
		l.fieldStarted = true
	}
}

// advance moves the current position forward by one consumed unit
// (character). isNewline resets the column to 1 and increments the line,
// matching spec §3's "column is reset after each record delimiter" and
// §8.3's "line increases by the number of \n consumed".
func (l *Lexer) advance(isNewline bool) {
	l.pos.Offset++
	if isNewline {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column++
	}
}

func (l *Lexer) emitField() Token {
	var start Pos
	if l.fieldStarted {
		start = l.fieldStart
	} else {
		start = l.pos
	}
	loc := Location{Start: start, End: l.pos, RowNumber: l.row}
	value := string(l.field)
	l.field = l.field[:0]
	l.fieldStarted = false
	l.afterDelim = false
	return fieldToken(value, loc)
}

func (l *Lexer) emitFieldDelimiter() Token {
	loc := Location{Start: l.pos, End: l.pos, RowNumber: l.row}
	l.afterDelim = true
	return fieldDelimiterToken(loc)
}

// consumeEOL advances past the record terminator (one unit for LF, two for
// CRLF) and returns the RecordDelimiter token spanning it.
func (l *Lexer) consumeEOL(eol EOL) Token {
	start := l.pos
	row := l.row
	if eol == EOLCRLF {
		l.advance(false) // CR
		l.advance(true)  // LF
	} else {
		l.advance(true)
	}
	l.row++
	l.afterDelim = false
	return recordDelimiterToken(eol, Location{Start: start, End: l.pos, RowNumber: row})
}

// finalize resolves the terminal state at true EOF (flush with nothing
// left buffered), per spec §4.1's "Terminal states on successful drain".
func (l *Lexer) finalize() (*Token, error) {
	switch l.state {
	case stateFieldStart:
		if l.afterDelim {
			tok := l.emitField()
			return &tok, nil
		}
		return nil, nil
	case stateInUnquoted, stateQuoteSeen:
		tok := l.emitField()
		return &tok, nil
	case stateInQuoted:
		return nil, newParseError(UnexpectedEOFInQuotedField, l.currentLocation(), l.opts.source,
			"unexpected end of input inside quoted field")
	default:
		return nil, nil
	}
}

func cancelReasonFor(err error) CancelReason {
	if err == nil {
		return AbortError
	}
	if err.Error() == "context deadline exceeded" {
		return TimeoutError
	}
	return AbortError
}
