// # LineCSV: A Permissive CSV Codec for Go
//
// LineCSV parses CSV text into records and serializes records back into RFC 4180 style text. It is built for hand-edited files: multi-line quoted fields, doubled quotes, and mixed CRLF/LF line endings are accepted, and malformed quoting never aborts a decode.
//
// # Features
//
// - `LineAssembler` joins physical lines into one logical line while the quote count is odd.
// - `DecodeLine` and `EncodeRecord` convert between a logical line and a `Record`.
// - Buffered `Reader` and `Writer` for whole documents, with a selectable line terminator.
// - Structured diagnostics (`MalformedQuote`, `TrailingText`, `UnterminatedQuotedRecord`, `FieldCount`) delivered to a `DiagnosticSink` instead of failing.
// - Comma is the only delimiter and double quote the only quoting character.
//
// # Getting Started
//
//	r := linecsv.NewReader(f)
//	doc, err := r.ReadAll()
//	for _, d := range r.Diagnostics() {
//		log.Println(d)
//	}
//
// The `recordmap` package maps documents onto slices of structs using the first record as a header.
package linecsv

// Record is one logical CSV row. Field order is significant.
type Record []string

// Clone returns a copy of r that shares no storage with it.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// Document is an ordered sequence of records. By convention the first record
// names the fields of the rest, but the codec does not enforce it.
type Document []Record

// Header returns the first record, or nil for an empty document.
func (d Document) Header() Record {
	if len(d) == 0 {
		return nil
	}
	return d[0]
}

// Rows returns every record after the header.
func (d Document) Rows() []Record {
	if len(d) < 2 {
		return nil
	}
	return d[1:]
}
