package linecsv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrMalformedQuote is reported when a field opens with a quote but does not close it.
	ErrMalformedQuote = errors.New("linecsv: quote mismatch in field")
	// ErrTrailingText is reported when an unclosed candidate is left after the last comma.
	ErrTrailingText = errors.New("linecsv: trailing text after last field")
	// ErrUnterminatedQuote is reported when the stream ends inside a quoted field.
	ErrUnterminatedQuote = errors.New("linecsv: unterminated quoted record")
	// ErrFieldCount is reported when a record does not have the expected number of fields.
	ErrFieldCount = errors.New("linecsv: wrong number of fields")
	// ErrFieldConversion is reported by record mapping when a value cannot be stored.
	ErrFieldConversion = errors.New("linecsv: field conversion failed")
)

// DiagnosticKind classifies a non-fatal anomaly found while decoding or mapping.
type DiagnosticKind int

const (
	MalformedQuote DiagnosticKind = iota + 1
	TrailingText
	UnterminatedQuotedRecord
	FieldCount
	FieldConversionFailure
)

// String returns the snake_case name of k.
func (k DiagnosticKind) String() string {
	switch k {
	case MalformedQuote:
		return "malformed_quote"
	case TrailingText:
		return "trailing_text"
	case UnterminatedQuotedRecord:
		return "unterminated_quoted_record"
	case FieldCount:
		return "field_count"
	case FieldConversionFailure:
		return "field_conversion_failure"
	default:
		return "unknown"
	}
}

func (k DiagnosticKind) sentinel() error {
	switch k {
	case MalformedQuote:
		return ErrMalformedQuote
	case TrailingText:
		return ErrTrailingText
	case UnterminatedQuotedRecord:
		return ErrUnterminatedQuote
	case FieldCount:
		return ErrFieldCount
	default:
		return ErrFieldConversion
	}
}

// Diagnostic describes one anomaly. Positions that are unknown are left at -1
// (Record, Field) or 0 (Line).
type Diagnostic struct {
	Kind DiagnosticKind
	// Line is the physical line on which the logical line ended.
	Line int
	// Record is the zero-based index of the record within its document.
	Record int
	// Field is the zero-based field index inside the record.
	Field int
	// Column names the header column for mapping failures.
	Column string
	// Text is the offending field or line text.
	Text string
	// Err carries a cause more specific than the kind's sentinel.
	Err error
}

func newDiagnostic(kind DiagnosticKind, field int, text string) Diagnostic {
	return Diagnostic{Kind: kind, Record: -1, Field: field, Text: text}
}

// Error formats d including whatever position information it carries.
func (d Diagnostic) Error() string {
	msg := d.Kind.sentinel().Error()
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	switch {
	case d.Column != "":
		return fmt.Sprintf("%s (record %d, column %q, text %q)", msg, d.Record, d.Column, d.Text)
	case d.Line > 0:
		return fmt.Sprintf("%s (line %d, field %d, text %q)", msg, d.Line, d.Field, d.Text)
	default:
		return fmt.Sprintf("%s (field %d, text %q)", msg, d.Field, d.Text)
	}
}

// Unwrap returns the kind's sentinel followed by Err when it is set, so both
// match with errors.Is.
func (d Diagnostic) Unwrap() []error {
	if d.Err != nil {
		return []error{d.Kind.sentinel(), d.Err}
	}
	return []error{d.Kind.sentinel()}
}

// DiagnosticSink receives diagnostics as they are found.
type DiagnosticSink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to DiagnosticSink.
type SinkFunc func(Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

type multiSink []DiagnosticSink

func (m multiSink) Report(d Diagnostic) {
	for _, s := range m {
		s.Report(d)
	}
}

// MultiSink fans every diagnostic out to each non-nil sink in order.
func MultiSink(sinks ...DiagnosticSink) DiagnosticSink {
	out := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Diagnostics collects reported diagnostics. It is safe for concurrent use.
type Diagnostics struct {
	mu     sync.Mutex
	events []Diagnostic
}

// Report appends d.
func (c *Diagnostics) Report(d Diagnostic) {
	c.mu.Lock()
	c.events = append(c.events, d)
	c.mu.Unlock()
}

// Events returns a copy of everything reported so far.
func (c *Diagnostics) Events() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(c.events))
	copy(out, c.events)
	return out
}

// Len reports how many diagnostics were collected.
func (c *Diagnostics) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Reset drops all collected diagnostics.
func (c *Diagnostics) Reset() {
	c.mu.Lock()
	c.events = nil
	c.mu.Unlock()
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink returns a sink that writes each diagnostic as a warning to logger.
// A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger) DiagnosticSink {
	if logger == nil {
		logger = slog.Default()
	}
	return logSink{logger: logger}
}

func (s logSink) Report(d Diagnostic) {
	attrs := []slog.Attr{
		slog.String("kind", d.Kind.String()),
		slog.String("text", d.Text),
	}
	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}
	if d.Record >= 0 {
		attrs = append(attrs, slog.Int("record", d.Record))
	}
	if d.Field >= 0 {
		attrs = append(attrs, slog.Int("field", d.Field))
	}
	if d.Column != "" {
		attrs = append(attrs, slog.String("column", d.Column))
	}
	if d.Err != nil {
		attrs = append(attrs, slog.String("error", d.Err.Error()))
	}
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, "csv diagnostic", attrs...)
}
