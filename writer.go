package linecsv

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("linecsv: writer is nil")
	errWriterNoTarget = errors.New("linecsv: writer destination cannot be nil")
)

// Writer emits encoded records, one per line, through an internal buffer.
type Writer struct {
	dst *bufio.Writer

	// UseCRLF terminates records with \r\n instead of \n. Line breaks inside
	// fields are always written as \n.
	UseCRLF bool

	err error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{dst: bufio.NewWriterSize(w, defaultBufferSize)}
}

// Reset updates the underlying writer while preserving the configuration flags.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

// Write emits a single record followed by the configured line terminator.
func (w *Writer) Write(record Record) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	if _, err := w.dst.WriteString(EncodeRecord(record)); err != nil {
		w.err = err
		return err
	}
	terminator := newline
	if w.UseCRLF {
		terminator = crlf
	}
	if _, err := w.dst.WriteString(terminator); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteAll writes every record of doc, stopping at the first error.
func (w *Writer) WriteAll(doc Document) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range doc {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}
