package recordmap

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	uuidType            = reflect.TypeOf(uuid.UUID{})
	namerType           = reflect.TypeOf((*Namer)(nil)).Elem()
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// supported reports whether values of t can be both formatted and assigned.
func (m *Mapper) supported(t reflect.Type) bool {
	if _, ok := m.resolver(t); ok {
		return true
	}
	if t == uuidType {
		return true
	}
	if t.Implements(textMarshalerType) && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return true
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Pointer:
		return m.supported(t.Elem())
	}
	return false
}

// format renders one field value as cell text.
func (m *Mapper) format(v reflect.Value) (string, error) {
	t := v.Type()

	if _, ok := m.resolver(t); ok {
		if isNil(v) {
			return "", nil
		}
		if t.Implements(namerType) {
			return v.Interface().(Namer).Name(), nil
		}
		return "", fmt.Errorf("%s has a resolver but does not implement Namer", t)
	}

	if t == uuidType {
		id := v.Interface().(uuid.UUID)
		if id == uuid.Nil {
			return "", nil
		}
		return id.String(), nil
	}

	if t.Implements(textMarshalerType) && t.Kind() != reflect.Pointer {
		b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	switch t.Kind() {
	case reflect.String:
		return v.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'g', -1, t.Bits()), nil
	case reflect.Pointer:
		if v.IsNil() {
			return "", nil
		}
		return m.format(v.Elem())
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

// assign converts text and stores it in dst. On error dst is not modified.
func (m *Mapper) assign(dst reflect.Value, text string) error {
	t := dst.Type()

	if fn, ok := m.resolver(t); ok {
		return resolveInto(dst, fn, text)
	}

	if t == uuidType {
		if strings.TrimSpace(text) == "" {
			dst.Set(reflect.ValueOf(uuid.Nil))
			return nil
		}
		id, err := uuid.Parse(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("invalid uuid: %w", err)
		}
		dst.Set(reflect.ValueOf(id))
		return nil
	}

	if t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		nv := reflect.New(t)
		if err := nv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return err
		}
		dst.Set(nv.Elem())
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		dst.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return fmt.Errorf("value %q is not a valid bool", text)
		}
		dst.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, t.Bits())
		if err != nil {
			return fmt.Errorf("value %q is not a valid int: %w", text, numError(err))
		}
		dst.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(strings.TrimSpace(text), 10, t.Bits())
		if err != nil {
			return fmt.Errorf("value %q is not a valid uint: %w", text, numError(err))
		}
		dst.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), t.Bits())
		if err != nil {
			return fmt.Errorf("value %q is not a valid float: %w", text, numError(err))
		}
		dst.SetFloat(f)
	case reflect.Pointer:
		if text == "" {
			dst.Set(reflect.Zero(t))
			return nil
		}
		nv := reflect.New(t.Elem())
		if err := m.assign(nv.Elem(), text); err != nil {
			return err
		}
		dst.Set(nv)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return nil
}

func resolveInto(dst reflect.Value, fn ResolveFunc, name string) error {
	t := dst.Type()
	if name == "" {
		dst.Set(reflect.Zero(t))
		return nil
	}
	obj, err := fn(name)
	if err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("%w: %s %q", ErrUnresolved, t, name)
	}
	ov := reflect.ValueOf(obj)
	if !ov.Type().AssignableTo(t) {
		return fmt.Errorf("resolver returned %s, want %s", ov.Type(), t)
	}
	dst.Set(ov)
	return nil
}

// numError strips the strconv wrapper, which repeats the input text.
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
