package linecsv

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const defaultBufferSize = 1 << 10 // 1024 bytes

// LineAssembler turns physical lines from a stream into logical CSV lines,
// joining consecutive lines while a quoted field is left open.
type LineAssembler struct {
	src *bufio.Reader

	// Sink receives an UnterminatedQuotedRecord diagnostic when the stream
	// ends inside a quoted field. It may be nil.
	Sink DiagnosticSink

	line int
	done bool
}

// NewLineAssembler creates a LineAssembler reading from r, panicking if r is nil.
func NewLineAssembler(r io.Reader) *LineAssembler {
	if r == nil {
		panic("linecsv: reader source cannot be nil")
	}
	return &LineAssembler{src: bufio.NewReaderSize(r, defaultBufferSize)}
}

// Next returns the next logical line without its terminator. Physical lines
// end at LF with an optional preceding CR and are joined with a single LF.
// io.EOF signals that no line remains. If the stream ends while a quote is
// still open the accumulated text is returned with a nil error; the odd quote
// count is left for the caller to inspect.
func (a *LineAssembler) Next() (string, error) {
	if a == nil || a.src == nil {
		return "", io.EOF
	}

	first, err := a.readPhysical()
	if err != nil {
		return "", err
	}
	quotes := strings.Count(first, `"`)
	if quotes%2 == 0 {
		return first, nil
	}

	var b strings.Builder
	b.WriteString(first)
	for quotes%2 != 0 {
		next, err := a.readPhysical()
		if err == io.EOF {
			text := b.String()
			if a.Sink != nil {
				a.Sink.Report(Diagnostic{
					Kind:   UnterminatedQuotedRecord,
					Line:   a.line,
					Record: -1,
					Field:  -1,
					Text:   text,
				})
			}
			return text, nil
		}
		if err != nil {
			return "", err
		}
		b.WriteString(newline)
		b.WriteString(next)
		quotes += strings.Count(next, `"`)
	}
	return b.String(), nil
}

// Line reports the number of physical lines consumed so far.
func (a *LineAssembler) Line() int {
	if a == nil {
		return 0
	}
	return a.line
}

// readPhysical returns one physical line with its LF or CRLF terminator
// removed. A final line without a terminator is still returned.
func (a *LineAssembler) readPhysical() (string, error) {
	if a.done {
		return "", io.EOF
	}
	s, err := a.src.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			return "", err
		}
		a.done = true
		if s == "" {
			return "", io.EOF
		}
	}
	a.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}

// Reader decodes a whole CSV document record by record.
type Reader struct {
	asm *LineAssembler

	// KeepEmptyLines returns empty logical lines as single-field records
	// instead of skipping them.
	KeepEmptyLines bool
	// FieldsPerRecord, when positive, reports a FieldCount diagnostic for every
	// record of a different width. The record is still returned.
	FieldsPerRecord int
	// Sink receives every diagnostic as it is found. It may be nil.
	Sink DiagnosticSink

	diags   Diagnostics
	records int
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	rd := &Reader{asm: NewLineAssembler(r)}
	rd.asm.Sink = SinkFunc(func(d Diagnostic) {
		d.Record = rd.records
		rd.report(d)
	})
	return rd
}

// Read returns the next record. io.EOF signals that no more records remain;
// any other error comes from the underlying stream. Malformed CSV never
// produces an error, only diagnostics.
func (r *Reader) Read() (Record, error) {
	if r == nil || r.asm == nil {
		return nil, io.EOF
	}

	for {
		line, err := r.asm.Next()
		if err != nil {
			return nil, err
		}
		if line == "" && !r.KeepEmptyLines {
			continue
		}

		rec, diags := DecodeLine(line)
		for _, d := range diags {
			d.Line = r.asm.Line()
			d.Record = r.records
			r.report(d)
		}
		if r.FieldsPerRecord > 0 && len(rec) != r.FieldsPerRecord {
			r.report(Diagnostic{
				Kind:   FieldCount,
				Line:   r.asm.Line(),
				Record: r.records,
				Field:  -1,
				Text:   line,
				Err:    fmt.Errorf("got %d fields, want %d", len(rec), r.FieldsPerRecord),
			})
		}
		r.records++
		return rec, nil
	}
}

// ReadAll reads until io.EOF and returns every record. It returns nil and the
// first stream error if reading fails.
func (r *Reader) ReadAll() (Document, error) {
	var doc Document
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return doc, nil
		}
		if err != nil {
			return nil, err
		}
		doc = append(doc, rec)
	}
}

// Diagnostics returns every diagnostic reported so far.
func (r *Reader) Diagnostics() []Diagnostic {
	if r == nil {
		return nil
	}
	return r.diags.Events()
}

// Line reports the physical line number of the last line consumed.
func (r *Reader) Line() int {
	if r == nil {
		return 0
	}
	return r.asm.Line()
}

func (r *Reader) report(d Diagnostic) {
	r.diags.Report(d)
	if r.Sink != nil {
		r.Sink.Report(d)
	}
}
