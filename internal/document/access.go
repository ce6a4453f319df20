package document

import "fmt"

// Scalar is the set of Go types that map onto a scalar Value.
type Scalar interface {
	~bool | ~int | ~int32 | ~int64 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64 | ~string
}

// Get reads a scalar field and converts it to T.
func Get[T Scalar](r Reader, id int, path string) (T, error) {
	var zero T
	v, err := r.Value(id, path)
	if err != nil {
		return zero, err
	}
	return fromValue[T](v, path)
}

// GetOr reads a scalar field, returning def when it is missing.
func GetOr[T Scalar](r Reader, id int, path string, def T) T {
	v, err := Get[T](r, id, path)
	if err != nil {
		return def
	}
	return v
}

// Put writes a scalar field, creating it when missing.
func Put[T Scalar](w Writer, id int, path string, val T) error {
	return w.Set(id, path, toValue(val))
}

// GetArray reads every item of a scalar array.
func GetArray[T Scalar](r Reader, id int, path string) ([]T, error) {
	v, err := r.Value(id, path)
	if err != nil {
		return nil, err
	}
	if v.Kind != KindArray {
		return nil, fmt.Errorf("%w: %q", ErrNotAnArray, path)
	}
	out := make([]T, len(v.Items))
	for i, item := range v.Items {
		if out[i], err = fromValue[T](item, Join(path, i)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PutArray replaces a scalar array with vals.
func PutArray[T Scalar](w Writer, id int, path string, vals []T) error {
	items := make([]Value, len(vals))
	elem := KindInvalid
	for i, val := range vals {
		items[i] = toValue(val)
		elem = items[i].Kind
	}
	if elem == KindInvalid {
		var zero T
		elem = toValue(zero).Kind
	}
	return w.Set(id, path, Array(elem, items...))
}

func fromValue[T Scalar](v Value, path string) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *bool:
		*p = v.I != 0
	case *string:
		if !v.Kind.IsTextual() {
			return out, fmt.Errorf("%w: %q is %s, want text", ErrKindMismatch, path, v.Kind)
		}
		*p = v.S
	case *float32:
		*p = float32(numeric(v))
	case *float64:
		*p = numeric(v)
	default:
		if !v.Kind.IsScalar() || v.Kind.IsTextual() || v.Kind == KindVector {
			return out, fmt.Errorf("%w: %q is %s, want number", ErrKindMismatch, path, v.Kind)
		}
		i := v.I
		if v.Kind == KindFloat {
			i = int64(v.F)
		}
		switch p := any(&out).(type) {
		case *int:
			*p = int(i)
		case *int32:
			*p = int32(i)
		case *int64:
			*p = i
		case *uint16:
			*p = uint16(i)
		case *uint32:
			*p = uint32(i)
		case *uint64:
			*p = uint64(i)
		default:
			return out, fmt.Errorf("%w: unsupported target %T for %q", ErrKindMismatch, out, path)
		}
	}
	return out, nil
}

func numeric(v Value) float64 {
	if v.Kind == KindFloat {
		return v.F
	}
	return float64(v.I)
}

func toValue[T Scalar](val T) Value {
	switch x := any(val).(type) {
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	}
	return Value{}
}
