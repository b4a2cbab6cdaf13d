// Package recordmap maps linecsv documents onto slices of structs and back.
//
// The first record of a document is a header naming struct fields. Columns
// are matched against the `csv` struct tag, or the field name when no tag is
// set; `csv:"-"` excludes a field. Values that cannot be converted are
// reported as FieldConversionFailure diagnostics and the destination keeps its
// previous value, so a single bad cell never aborts an import.
//
// Supported field types are strings, booleans, signed and unsigned integers,
// floats, uuid.UUID, types implementing encoding.TextMarshaler and
// encoding.TextUnmarshaler (enum names, colours and the like), pointers to any
// of these, and object references resolved by name through a registered
// ResolveFunc.
package recordmap

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/oleg578/linecsv"
)

var (
	// ErrNoHeader is returned when a document has no header record.
	ErrNoHeader = errors.New("recordmap: document has no header")
	// ErrInvalidTarget is returned when the destination is not a pointer to a slice of structs.
	ErrInvalidTarget = errors.New("recordmap: target must be a pointer to a slice of structs")
	// ErrUnsupportedType is returned when a mapped struct field has a type that cannot be converted.
	ErrUnsupportedType = errors.New("recordmap: unsupported field type")

	// ErrUnknownColumn is attached to diagnostics for header columns with no matching field.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrMissingValue is attached to diagnostics for records shorter than the header.
	ErrMissingValue = errors.New("missing value")
	// ErrUnresolved is attached to diagnostics for object names the resolver could not find.
	ErrUnresolved = errors.New("object not found")
)

// Namer is implemented by object references that are exported by name.
type Namer interface {
	Name() string
}

// ResolveFunc looks up an object by name. It returns a nil error and a nil
// value when the name is valid but refers to nothing.
type ResolveFunc func(name string) (any, error)

// Mapper converts between documents and struct slices. The zero value is not
// usable; create one with New. A Mapper is safe for concurrent use.
type Mapper struct {
	mu        sync.RWMutex
	resolvers map[reflect.Type]ResolveFunc
}

// New returns a Mapper with no resolvers registered.
func New() *Mapper {
	return &Mapper{resolvers: make(map[reflect.Type]ResolveFunc)}
}

// RegisterResolver makes fields of type typ object references: they are
// exported through Namer and imported by calling fn with the cell text.
func (m *Mapper) RegisterResolver(typ reflect.Type, fn ResolveFunc) {
	m.mu.Lock()
	m.resolvers[typ] = fn
	m.mu.Unlock()
}

func (m *Mapper) resolver(typ reflect.Type) (ResolveFunc, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.resolvers[typ]
	return fn, ok
}

var defaultMapper = New()

// Marshal converts rows with a Mapper that has no resolvers.
func Marshal(rows any) (linecsv.Document, error) {
	return defaultMapper.Marshal(rows)
}

// Unmarshal fills out with a Mapper that has no resolvers.
func Unmarshal(doc linecsv.Document, out any, sink linecsv.DiagnosticSink) error {
	return defaultMapper.Unmarshal(doc, out, sink)
}

// column binds one header name to a struct field.
type column struct {
	name  string
	index int
	typ   reflect.Type
}

// columns lists the mapped fields of struct type t in declaration order.
func (m *Mapper) columns(t reflect.Type) ([]column, error) {
	cols := make([]column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("csv"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if !m.supported(f.Type) {
			return nil, fmt.Errorf("%w: %s.%s is %s", ErrUnsupportedType, t.Name(), f.Name, f.Type)
		}
		cols = append(cols, column{name: name, index: i, typ: f.Type})
	}
	return cols, nil
}

// Marshal converts a slice of structs (or pointers to structs) into a
// document whose first record is the header.
func (m *Mapper) Marshal(rows any) (linecsv.Document, error) {
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%w, got %T", ErrInvalidTarget, rows)
	}
	elem, isPtr, err := structElem(v.Type().Elem())
	if err != nil {
		return nil, err
	}
	cols, err := m.columns(elem)
	if err != nil {
		return nil, err
	}

	header := make(linecsv.Record, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	doc := make(linecsv.Document, 0, v.Len()+1)
	doc = append(doc, header)

	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		if isPtr {
			if item.IsNil() {
				doc = append(doc, make(linecsv.Record, len(cols)))
				continue
			}
			item = item.Elem()
		}
		rec := make(linecsv.Record, len(cols))
		for j, c := range cols {
			s, err := m.format(item.Field(c.index))
			if err != nil {
				return nil, fmt.Errorf("recordmap: row %d column %q: %w", i, c.name, err)
			}
			rec[j] = s
		}
		doc = append(doc, rec)
	}
	return doc, nil
}

// Unmarshal replaces the contents of out, a pointer to a slice of structs or
// struct pointers, with one element per data record of doc. Conversion
// problems go to sink (which may be nil) and never fail the call.
func (m *Mapper) Unmarshal(doc linecsv.Document, out any, sink linecsv.DiagnosticSink) error {
	pv := reflect.ValueOf(out)
	if pv.Kind() != reflect.Pointer || pv.IsNil() || pv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("%w, got %T", ErrInvalidTarget, out)
	}
	sv := pv.Elem()
	elem, isPtr, err := structElem(sv.Type().Elem())
	if err != nil {
		return err
	}
	if len(doc) == 0 {
		return ErrNoHeader
	}
	cols, err := m.columns(elem)
	if err != nil {
		return err
	}
	if sink == nil {
		sink = linecsv.SinkFunc(func(linecsv.Diagnostic) {})
	}

	header := doc.Header()
	bound := bindHeader(header, cols)
	for j, c := range bound {
		if c == nil {
			sink.Report(linecsv.Diagnostic{
				Kind:   linecsv.FieldConversionFailure,
				Record: 0,
				Field:  j,
				Column: header[j],
				Text:   header[j],
				Err:    ErrUnknownColumn,
			})
		}
	}

	result := reflect.MakeSlice(sv.Type(), 0, len(doc)-1)
	for i := 1; i < len(doc); i++ {
		rec := doc[i]
		item := reflect.New(elem).Elem()
		for j, c := range bound {
			if c == nil {
				continue
			}
			if j >= len(rec) {
				sink.Report(linecsv.Diagnostic{
					Kind:   linecsv.FieldConversionFailure,
					Record: i,
					Field:  j,
					Column: c.name,
					Err:    ErrMissingValue,
				})
				continue
			}
			if err := m.assign(item.Field(c.index), rec[j]); err != nil {
				sink.Report(linecsv.Diagnostic{
					Kind:   linecsv.FieldConversionFailure,
					Record: i,
					Field:  j,
					Column: c.name,
					Text:   rec[j],
					Err:    err,
				})
			}
		}
		if isPtr {
			result = reflect.Append(result, item.Addr())
		} else {
			result = reflect.Append(result, item)
		}
	}
	sv.Set(result)
	return nil
}

// bindHeader returns, for each header position, the column it fills or nil.
// Exact names win over case-insensitive matches.
func bindHeader(header linecsv.Record, cols []column) []*column {
	exact := make(map[string]*column, len(cols))
	folded := make(map[string]*column, len(cols))
	for i := range cols {
		c := &cols[i]
		exact[c.name] = c
		if _, dup := folded[strings.ToLower(c.name)]; !dup {
			folded[strings.ToLower(c.name)] = c
		}
	}

	bound := make([]*column, len(header))
	used := make(map[*column]bool, len(cols))
	for j, h := range header {
		c, ok := exact[h]
		if !ok {
			c, ok = folded[strings.ToLower(h)]
		}
		if !ok || used[c] {
			continue
		}
		used[c] = true
		bound[j] = c
	}
	return bound
}

func structElem(t reflect.Type) (reflect.Type, bool, error) {
	isPtr := false
	if t.Kind() == reflect.Pointer {
		isPtr = true
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, false, fmt.Errorf("%w, element is %s", ErrInvalidTarget, t)
	}
	return t, isPtr, nil
}
