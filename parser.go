package csvflow

import (
	"bytes"
	"io"
)

// Parse decodes all of data as CSV in one shot, composing a Lexer and
// Assembler without any channel machinery. It is the convenience
// counterpart to Pipeline for callers who already hold the full input in
// memory (spec §5 "One-shot entry points").
func Parse(data []byte, opts Options) ([]Record, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	if ro.maxBinarySize != 0 && int64(len(data)) > ro.maxBinarySize {
		return nil, &Error{Kind: BinarySizeExceeded, Message: "input exceeds MaxBinarySize", Source: opts.Source}
	}

	var source TokenSource
	if ro.useIndexedLexer {
		source, err = NewIndexedLexer(opts)
		if err != nil {
			return nil, err
		}
	} else {
		source = newLexerFromResolved(ro)
	}

	asm, err := newAssemblerFromResolved(ro)
	if err != nil {
		return nil, err
	}

	tokens, err := source.Lex(data, false)
	if err != nil {
		return nil, err
	}
	records, err := asm.Assemble(tokens)
	if err != nil {
		return nil, err
	}
	tail, err := asm.Flush()
	if err != nil {
		return nil, err
	}
	return append(records, tail...), nil
}

// ParseReader drains r (bounded by opts.MaxBinarySize, enforced before any
// parsing begins, mirroring the teacher's readInput/ErrInputTooLarge
// technique) and decodes it as CSV.
func ParseReader(r io.Reader, opts Options) ([]Record, error) {
	ro, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	limit := ro.maxBinarySize

	var buf bytes.Buffer
	if limit == 0 {
		if _, err := buf.ReadFrom(r); err != nil {
			return nil, err
		}
	} else {
		if _, err := buf.ReadFrom(io.LimitReader(r, limit+1)); err != nil {
			return nil, err
		}
		if int64(buf.Len()) > limit {
			return nil, &Error{Kind: BinarySizeExceeded, Message: "input exceeds MaxBinarySize", Source: opts.Source}
		}
	}

	return Parse(buf.Bytes(), opts)
}
