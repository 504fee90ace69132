package csvflow

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"
)

// Default channel capacities for the Lexer and Assembler stages, overridable
// via PipelineOptions. See spec §4.3 "Concurrency & Resource Model":
// backpressure is expressed naturally through blocking sends on bounded
// channels rather than an explicit rate limiter.
const (
	DefaultLexerReadQueueSize      = 1024 // token batches (one per Lex call) buffered between Lexer and Assembler; tokens per batch are not capped
	DefaultAssemblerReadQueueSize  = 256  // record batches (one per Assemble call) buffered between Assembler and the consumer; records per batch are not capped
	defaultReadChunkSize           = 64 * 1024
)

// PipelineOptions configures a Pipeline in addition to the shared Options.
type PipelineOptions struct {
	Options

	// TokenQueueSize overrides DefaultLexerReadQueueSize. It counts token
	// batches, not individual tokens.
	TokenQueueSize int
	// RecordQueueSize overrides DefaultAssemblerReadQueueSize. It counts
	// record batches, not individual records.
	RecordQueueSize int
	// ChunkSize is how many bytes the Pipeline reads from its io.Reader per
	// iteration. Default: 64 KiB.
	ChunkSize int
}

// Pipeline composes a Lexer and Assembler over an io.Reader, running the
// read/lex and assemble stages as separate goroutines connected by bounded
// channels (spec §4.3). It is the streaming counterpart to Parse/ParseReader.
type Pipeline struct {
	opts      resolvedOptions
	source    TokenSource
	assembler *Assembler
	reader    io.Reader

	tokenQueueSize  int
	recordQueueSize int
	chunkSize       int
}

// NewPipeline constructs a Pipeline reading CSV data from r.
func NewPipeline(r io.Reader, opts PipelineOptions) (*Pipeline, error) {
	ro, err := resolveOptions(opts.Options)
	if err != nil {
		return nil, err
	}

	var source TokenSource
	if ro.useIndexedLexer {
		il, err := NewIndexedLexer(opts.Options)
		if err != nil {
			return nil, err
		}
		source = il
	} else {
		source = newLexerFromResolved(ro)
	}

	asm, err := newAssemblerFromResolved(ro)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		opts:            ro,
		source:          source,
		assembler:       asm,
		reader:          r,
		tokenQueueSize:  DefaultLexerReadQueueSize,
		recordQueueSize: DefaultAssemblerReadQueueSize,
		chunkSize:       defaultReadChunkSize,
	}
	if opts.TokenQueueSize > 0 {
		p.tokenQueueSize = opts.TokenQueueSize
	}
	if opts.RecordQueueSize > 0 {
		p.recordQueueSize = opts.RecordQueueSize
	}
	if opts.ChunkSize > 0 {
		p.chunkSize = opts.ChunkSize
	}
	return p, nil
}

// Run drives the pipeline to completion, invoking emit for every Record in
// input order. It returns the first error encountered by any stage (an
// io.Reader error, a Lexer/Assembler *Error, or a Cancelled error if ctx is
// done or opts.Signal fires), after all goroutines have exited.
//
// Run is one-shot: construct a new Pipeline to process another source.
func (p *Pipeline) Run(ctx context.Context, emit func(Record) error) error {
	ctx, cancel := p.withSignal(ctx)
	defer cancel()

	tokens := make(chan []Token, p.tokenQueueSize)
	records := make(chan []Record, p.recordQueueSize)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(tokens)
		buf := make([]byte, p.chunkSize)
		for {
			n, readErr := p.reader.Read(buf)
			if n > 0 {
				toks, lexErr := p.source.Lex(buf[:n], true)
				if lexErr != nil {
					return lexErr
				}
				if len(toks) > 0 {
					select {
					case tokens <- toks:
					case <-ctx.Done():
						return p.cancelError(ctx)
					}
				}
			}
			if readErr != nil {
				if readErr == io.EOF {
					toks, lexErr := p.source.Lex(nil, false)
					if lexErr != nil {
						return lexErr
					}
					if len(toks) > 0 {
						select {
						case tokens <- toks:
						case <-ctx.Done():
							return p.cancelError(ctx)
						}
					}
					return nil
				}
				return readErr
			}
			select {
			case <-ctx.Done():
				return p.cancelError(ctx)
			default:
			}
		}
	})

	g.Go(func() error {
		defer close(records)
		for toks := range tokens {
			recs, err := p.assembler.Assemble(toks)
			if err != nil {
				return err
			}
			if len(recs) > 0 {
				select {
				case records <- recs:
				case <-ctx.Done():
					return p.cancelError(ctx)
				}
			}
		}
		recs, err := p.assembler.Flush()
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			select {
			case records <- recs:
			case <-ctx.Done():
				return p.cancelError(ctx)
			}
		}
		return nil
	})

	g.Go(func() error {
		for batch := range records {
			for _, rec := range batch {
				if err := emit(rec); err != nil {
					return err
				}
				select {
				case <-ctx.Done():
					return p.cancelError(ctx)
				default:
				}
			}
		}
		return nil
	})

	return g.Wait()
}

// withSignal merges opts.Signal (if any) into ctx, so a single ctx.Done()
// check downstream covers both cancellation sources.
func (p *Pipeline) withSignal(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.opts.signal == nil {
		return context.WithCancel(ctx)
	}
	merged, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-p.opts.signal.Done():
			cancel()
		case <-merged.Done():
		}
	}()
	return merged, cancel
}

// cancelError classifies why ctx is done into AbortError vs TimeoutError,
// per spec §7's Cancelled{AbortError|TimeoutError} distinction.
func (p *Pipeline) cancelError(ctx context.Context) error {
	var cause error
	if p.opts.signal != nil {
		cause = p.opts.signal.Err()
	}
	if cause == nil {
		cause = ctx.Err()
	}
	reason := AbortError
	if errors.Is(cause, context.DeadlineExceeded) {
		reason = TimeoutError
	}
	return newCancelledError(p.opts.source, reason, cause)
}
