package linecsv

import (
	"strings"
)

const (
	comma   = ','
	quote   = '"'
	newline = "\n"
	crlf    = "\r\n"
)

// IsComplete reports whether text holds an even number of quote characters,
// i.e. no quoted field is left open.
func IsComplete(text string) bool {
	return strings.Count(text, `"`)%2 == 0
}

// DecodeLine splits one logical line into its fields. Commas inside quoted
// fields are recovered by joining split segments until the candidate's quote
// count is even again. Malformed input never fails: anomalies are returned as
// diagnostics and the best-effort record is always produced.
func DecodeLine(line string) (Record, []Diagnostic) {
	var (
		record  = make(Record, 0, strings.Count(line, ",")+1)
		diags   []Diagnostic
		pending strings.Builder
		quotes  int
		open    bool
	)

	rest := line
	for {
		idx := strings.IndexByte(rest, comma)
		segment := rest
		if idx >= 0 {
			segment = rest[:idx]
		}

		if open {
			pending.WriteByte(comma)
		}
		pending.WriteString(segment)
		quotes += strings.Count(segment, `"`)

		if quotes%2 == 0 {
			raw := pending.String()
			field, ok := UnescapeField(raw)
			if !ok {
				diags = append(diags, newDiagnostic(MalformedQuote, len(record), strings.TrimSpace(raw)))
			}
			record = append(record, field)
			pending.Reset()
			quotes = 0
			open = false
		} else {
			open = true
		}

		if idx < 0 {
			break
		}
		rest = rest[idx+1:]
	}

	if open {
		diags = append(diags, newDiagnostic(TrailingText, len(record), pending.String()))
	}
	return record, diags
}

// UnescapeField finalizes one raw field: surrounding whitespace is trimmed, a
// fully quoted value loses its outer quotes and has doubled quotes collapsed,
// and CRLF pairs become a single line feed. It reports false when the value
// opens a quote without closing it; the trimmed text is then kept as is.
func UnescapeField(raw string) (string, bool) {
	field := strings.TrimSpace(raw)
	ok := true
	if len(field) > 0 && field[0] == quote {
		if len(field) >= 2 && field[len(field)-1] == quote {
			field = field[1 : len(field)-1]
			if strings.Contains(field, `""`) {
				field = strings.ReplaceAll(field, `""`, `"`)
			}
		} else {
			// The leading quote stays in the value; callers have relied on it.
			ok = false
		}
	}
	return normalizeBreaks(field), ok
}

// EncodeRecord joins the escaped fields of rec with commas. The result carries
// no line terminator.
func EncodeRecord(rec Record) string {
	var b strings.Builder
	for i, field := range rec {
		if i > 0 {
			b.WriteByte(comma)
		}
		b.WriteString(EscapeField(field))
	}
	return b.String()
}

// EscapeField doubles every quote in field and wraps the result in quotes when
// it contains a comma, a quote or a line feed. CRLF pairs are written as a
// single line feed.
func EscapeField(field string) string {
	if strings.Contains(field, `"`) {
		field = strings.ReplaceAll(field, `"`, `""`)
	}
	if fieldNeedsQuote(field) {
		field = `"` + field + `"`
	}
	return normalizeBreaks(field)
}

// EncodeDocument encodes each record of doc into one bare line.
func EncodeDocument(doc Document) []string {
	lines := make([]string, len(doc))
	for i, rec := range doc {
		lines[i] = EncodeRecord(rec)
	}
	return lines
}

func fieldNeedsQuote(field string) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, comma, '\n':
			return true
		}
	}
	return false
}

// normalizeBreaks rewrites CRLF as LF until none is left, so "\r\r\n" also
// ends up as a single LF.
func normalizeBreaks(s string) string {
	for strings.Contains(s, crlf) {
		s = strings.ReplaceAll(s, crlf, newline)
	}
	return s
}
