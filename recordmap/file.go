package recordmap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oleg578/linecsv"
)

// Decode reads a whole document from r and unmarshals it into out. Codec
// diagnostics and conversion failures both go to sink.
func (m *Mapper) Decode(r io.Reader, out any, sink linecsv.DiagnosticSink) error {
	cr := linecsv.NewReader(r)
	cr.Sink = sink
	doc, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("recordmap: read: %w", err)
	}
	return m.Unmarshal(doc, out, sink)
}

// Encode marshals rows and writes them to w, one record per line.
func (m *Mapper) Encode(w io.Writer, rows any, useCRLF bool) error {
	doc, err := m.Marshal(rows)
	if err != nil {
		return err
	}
	cw := linecsv.NewWriter(w)
	cw.UseCRLF = useCRLF
	if err := cw.WriteAll(doc); err != nil {
		return fmt.Errorf("recordmap: write: %w", err)
	}
	if err := cw.Flush(); err != nil {
		return fmt.Errorf("recordmap: write: %w", err)
	}
	return nil
}

// ImportFile opens path and decodes it into out.
func (m *Mapper) ImportFile(path string, out any, sink linecsv.DiagnosticSink) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("recordmap: open %s: %w", path, err)
	}
	defer f.Close()

	return m.Decode(f, out, sink)
}

// ExportFile creates or truncates path and encodes rows into it.
func (m *Mapper) ExportFile(path string, rows any, useCRLF bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("recordmap: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("recordmap: close %s: %w", path, cerr))
		}
	}()

	return m.Encode(f, rows, useCRLF)
}
