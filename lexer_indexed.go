package csvflow

// IndexedLexer is an alternative Lexer construction that puts a
// SeparatorIndexer pre-scan in front of the character-level state machine
// (spec §4.1 "Alternative lexer via Separator Indexer"); the state machine
// still reads every released byte itself. It is functionally
// equivalent to Lexer and produces the same token sequence for the same
// input: the indexer performs the structural pre-scan (quote/separator
// bitmasks) to find how much of the buffered input is safe to release up
// to the last complete record separator, per the ProcessedBytes contract
// of spec §6; the released segment is then handed to the same S0..S3
// state machine Lexer uses, so correctness never depends on duplicating
// the quote/escape logic in two places.
//
// This mirrors the teacher's two-phase scanBuffer-then-parseBuffer
// composition (reader.go's initialize()), generalized from "scan the
// whole buffer up front" to "scan and release per chunk".
type IndexedLexer struct {
	inner   *Lexer
	indexer SeparatorIndexer

	rawBuf []byte
	opts   resolvedOptions
}

// NewIndexedLexer constructs an IndexedLexer from opts, selecting the best
// available SeparatorIndexer for this process (see NewSeparatorIndexer).
func NewIndexedLexer(opts Options) (*IndexedLexer, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &IndexedLexer{
		inner:   newLexerFromResolved(ro),
		indexer: NewSeparatorIndexer(ro.delimiter, ro.quote),
		opts:    ro,
	}, nil
}

// Reset clears the IndexedLexer back to construction-time defaults.
func (il *IndexedLexer) Reset() {
	il.inner.Reset()
	il.rawBuf = nil
}

// Lex implements TokenSource.
func (il *IndexedLexer) Lex(chunk []byte, stream bool) ([]Token, error) {
	if len(chunk) > 0 {
		il.rawBuf = append(il.rawBuf, chunk...)
	}
	flush := !stream

	var safe int
	if flush {
		safe = len(il.rawBuf)
	} else {
		// rawBuf always starts outside any quote: ProcessedBytes only ever
		// ends just after a record separator found outside a quote, or
		// just before an unquoted CR that is the last buffered byte (see
		// scalarIndexer/avx512Indexer.Index), and the unreleased remainder
		// below is re-presented from byte 0 on the next call. So the quote
		// state entering this scan is always
		// false — it must never be threaded from the previous call's
		// EndInQuote, which reflects the state at the end of the whole
		// buffer (possibly still inside an unclosed quote), not at
		// ProcessedBytes.
		res := il.indexer.Index(il.rawBuf, false)
		safe = int(res.ProcessedBytes)
		if held := len(il.rawBuf) - safe; held > il.opts.maxBufferSize {
			return nil, newParseError(BufferOverflow, il.inner.currentLocation(), il.opts.source,
				"unterminated buffered input exceeds MaxBufferSize (%d)", il.opts.maxBufferSize)
		}
	}

	segment := il.rawBuf[:safe]
	remainder := append([]byte(nil), il.rawBuf[safe:]...)
	il.rawBuf = remainder

	return il.inner.Lex(segment, !flush)
}
