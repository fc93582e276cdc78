package drill2exc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Converter defaults.
const (
	DefaultSentinel      = "T1"
	DefaultFrom          = "X-"
	DefaultTo            = "X"
	DefaultMaxLineLength = 4096

	// MinLineLength keeps the line reader large enough for any sane sentinel.
	MinLineLength = 16

	// OutputPermissions is the mode of the converted file.
	OutputPermissions = 0o644
)

// converterState tracks where the converter is in the drill file.
type converterState int

const (
	stateSkippingHeader converterState = iota
	stateRewriting
)

// Stats summarizes a conversion run.
type Stats struct {
	HeaderLines int // Lines dropped before and including the sentinel
	Lines       int // Lines written after the sentinel
	Replaced    int // Lines on which a replacement happened
}

// Converter rewrites a drill file: it drops the tool header up to and
// including the sentinel line, then replaces the first occurrence of From
// with To on every following line.
type Converter struct {
	sentinel      string
	from          string
	to            string
	maxLineLength int
	logger        *slog.Logger
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithSentinel sets the line that ends the header block.
func WithSentinel(s string) ConverterOption {
	return func(c *Converter) { c.sentinel = s }
}

// WithReplacement sets the substitution applied to each record line.
func WithReplacement(from, to string) ConverterOption {
	return func(c *Converter) {
		c.from = from
		c.to = to
	}
}

// WithMaxLineLength bounds the length of a single line, terminator included.
func WithMaxLineLength(n int) ConverterOption {
	return func(c *Converter) { c.maxLineLength = n }
}

// WithConverterLogger sets the logger used for conversion diagnostics.
func WithConverterLogger(l *slog.Logger) ConverterOption {
	return func(c *Converter) { c.logger = l }
}

// NewConverter creates a Converter with the default EAGLE rewrite rules.
func NewConverter(opts ...ConverterOption) (*Converter, error) {
	c := &Converter{
		sentinel:      DefaultSentinel,
		from:          DefaultFrom,
		to:            DefaultTo,
		maxLineLength: DefaultMaxLineLength,
		logger:        discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.sentinel == "" {
		return nil, ErrEmptySentinel
	}
	if c.from == "" {
		return nil, ErrEmptyPattern
	}
	if c.maxLineLength < MinLineLength {
		return nil, fmt.Errorf("%w: max line length %d (minimum %d)", ErrLineTooLong, c.maxLineLength, MinLineLength)
	}
	return c, nil
}

// Convert reads drill lines from r and writes the rewritten lines to w.
// Returns ErrSentinelNotFound if r ends before the sentinel line.
func (c *Converter) Convert(ctx context.Context, r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	reader := bufio.NewReaderSize(r, c.maxLineLength)
	writer := bufio.NewWriter(w)
	line := NewBuffer(c.maxLineLength)
	state := stateSkippingHeader

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		raw, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) && atEOF(reader) {
			err = io.EOF
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			return stats, fmt.Errorf("%w: line %d longer than %d bytes",
				ErrLineTooLong, stats.HeaderLines+stats.Lines+1, c.maxLineLength)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("reading drill file: %w", err)
		}
		if len(raw) == 0 && errors.Is(err, io.EOF) {
			break
		}

		content, eol := splitLineEnding(raw)

		switch state {
		case stateSkippingHeader:
			stats.HeaderLines++
			if string(content) == c.sentinel {
				c.logger.Debug("header skipped", "lines", stats.HeaderLines)
				state = stateRewriting
			}

		case stateRewriting:
			if resetErr := line.Reset(string(content)); resetErr != nil {
				return stats, resetErr
			}
			replaceErr := line.ReplaceFirst(c.from, c.to)
			switch {
			case replaceErr == nil:
				stats.Replaced++
			case !errors.Is(replaceErr, ErrNotFound):
				return stats, fmt.Errorf("line %d: %w", stats.HeaderLines+stats.Lines+1, replaceErr)
			}
			if _, werr := writer.Write(line.Bytes()); werr != nil {
				return stats, fmt.Errorf("%w: %v", ErrWriteOutput, werr)
			}
			if _, werr := writer.Write(eol); werr != nil {
				return stats, fmt.Errorf("%w: %v", ErrWriteOutput, werr)
			}
			stats.Lines++
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	if state == stateSkippingHeader {
		return stats, fmt.Errorf("%w: %q not seen in %d lines", ErrSentinelNotFound, c.sentinel, stats.HeaderLines)
	}

	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}

	c.logger.Debug("drill file converted", "lines", stats.Lines, "replaced", stats.Replaced)
	return stats, nil
}

// ConvertFile converts src into dst. The output is written to a temporary
// file next to dst and renamed on success, so dst is never left half-written.
func (c *Converter) ConvertFile(ctx context.Context, src, dst string) (stats Stats, err error) {
	in, err := os.Open(src) // #nosec G304 -- path derived from the board path
	if err != nil {
		return stats, fmt.Errorf("opening drill file: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	stats, err = c.Convert(ctx, in, tmp)
	if err != nil {
		return stats, err
	}

	if err = tmp.Chmod(OutputPermissions); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err = tmp.Close(); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return stats, nil
}

// atEOF reports whether r has no bytes left. A full buffer followed by EOF
// is an unterminated last line that fits the limit exactly.
func atEOF(r *bufio.Reader) bool {
	_, err := r.Peek(1)
	return errors.Is(err, io.EOF)
}

// splitLineEnding separates a raw line into content and terminator.
func splitLineEnding(raw []byte) (content, eol []byte) {
	switch {
	case bytes.HasSuffix(raw, []byte("\r\n")):
		return raw[:len(raw)-2], raw[len(raw)-2:]
	case bytes.HasSuffix(raw, []byte("\n")):
		return raw[:len(raw)-1], raw[len(raw)-1:]
	default:
		return raw, nil
	}
}
