package linecsv

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDiagnosticError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		diag Diagnostic
		want []string
	}{
		{
			name: "fieldOnly",
			diag: newDiagnostic(MalformedQuote, 2, "\"abc"),
			want: []string{"quote mismatch", "field 2", `"\"abc"`},
		},
		{
			name: "withLine",
			diag: Diagnostic{Kind: TrailingText, Line: 7, Record: 3, Field: 1, Text: "x"},
			want: []string{"trailing text", "line 7", "field 1"},
		},
		{
			name: "withColumn",
			diag: Diagnostic{Kind: FieldConversionFailure, Record: 4, Field: -1, Column: "price", Text: "ten", Err: errors.New("not a number")},
			want: []string{"conversion failed: not a number", "record 4", `column "price"`},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := tc.diag.Error()
			for _, part := range tc.want {
				if !strings.Contains(got, part) {
					t.Fatalf("Error() = %q, missing %q", got, part)
				}
			}
		})
	}
}

func TestDiagnosticUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("cause")
	d := Diagnostic{Kind: FieldConversionFailure, Err: cause}
	if !errors.Is(d, ErrFieldConversion) || !errors.Is(d, cause) {
		t.Fatalf("diagnostic should match both sentinel and cause")
	}

	var target Diagnostic
	var err error = Diagnostic{Kind: FieldCount}
	if !errors.As(err, &target) || target.Kind != FieldCount {
		t.Fatalf("errors.As should recover the Diagnostic")
	}
}

func TestDiagnosticKindString(t *testing.T) {
	t.Parallel()

	kinds := map[DiagnosticKind]string{
		MalformedQuote:           "malformed_quote",
		TrailingText:             "trailing_text",
		UnterminatedQuotedRecord: "unterminated_quoted_record",
		FieldCount:               "field_count",
		FieldConversionFailure:   "field_conversion_failure",
		DiagnosticKind(0):        "unknown",
	}
	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

func TestDiagnosticsCollector(t *testing.T) {
	t.Parallel()

	var c Diagnostics
	if c.Events() != nil || c.Len() != 0 {
		t.Fatalf("fresh collector should be empty")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Report(newDiagnostic(MalformedQuote, i, "x"))
		}(i)
	}
	wg.Wait()

	if c.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", c.Len())
	}
	events := c.Events()
	events[0].Text = "mutated"
	if c.Events()[0].Text == "mutated" {
		t.Fatalf("Events() should return a copy")
	}

	c.Reset()
	if c.Len() != 0 {
		t.Fatalf("Reset() should drop events")
	}
}

func TestMultiSink(t *testing.T) {
	t.Parallel()

	var a, b Diagnostics
	var calls int
	sink := MultiSink(&a, nil, SinkFunc(func(Diagnostic) { calls++ }), &b)
	sink.Report(newDiagnostic(TrailingText, 0, "x"))

	if a.Len() != 1 || b.Len() != 1 || calls != 1 {
		t.Fatalf("MultiSink delivered a=%d b=%d func=%d, want 1 each", a.Len(), b.Len(), calls)
	}
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger)

	sink.Report(Diagnostic{Kind: MalformedQuote, Line: 3, Record: 1, Field: 0, Text: "\"abc"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["kind"] != "malformed_quote" || entry["text"] != "\"abc" {
		t.Fatalf("unexpected log entry %v", entry)
	}
	if entry["line"] != float64(3) || entry["record"] != float64(1) {
		t.Fatalf("log entry missing position: %v", entry)
	}
	if _, ok := entry["column"]; ok {
		t.Fatalf("empty column should not be logged: %v", entry)
	}
}
