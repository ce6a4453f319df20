package docio

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/nifconv/internal/document"
)

type wireFile struct {
	Version string      `yaml:"version"`
	Blocks  []wireBlock `yaml:"blocks"`
}

type wireBlock struct {
	Type   string      `yaml:"type"`
	Fields []wireValue `yaml:"fields,omitempty"`
}

// wireValue carries one value. Scalars and vectors use Value, structs use
// Fields and arrays use Elem with Items. Name is empty for array items.
type wireValue struct {
	Name   string      `yaml:"name,omitempty"`
	Kind   string      `yaml:"kind"`
	Value  yaml.Node   `yaml:"value,omitempty"`
	Elem   string      `yaml:"elem,omitempty"`
	Fields []wireValue `yaml:"fields,omitempty"`
	Items  []wireValue `yaml:"items,omitempty"`
}

func toWire(name string, v document.Value) (wireValue, error) {
	w := wireValue{Name: name, Kind: v.Kind.String()}
	var payload any
	switch v.Kind {
	case document.KindBool:
		payload = v.AsBool()
	case document.KindInt:
		payload = v.AsInt()
	case document.KindUint:
		payload = v.AsUint()
	case document.KindFlags:
		payload = v.AsFlags()
	case document.KindFloat:
		payload = v.AsFloat()
	case document.KindString, document.KindEnum:
		payload = v.AsString()
	case document.KindRef, document.KindPtr:
		payload = v.Link()
	case document.KindVector:
		payload = v.AsVector()
	case document.KindStruct:
		for _, f := range v.Fields {
			fw, err := toWire(f.Name, f.Value)
			if err != nil {
				return w, err
			}
			w.Fields = append(w.Fields, fw)
		}
		return w, nil
	case document.KindArray:
		w.Elem = v.Elem.String()
		for i, item := range v.Items {
			iw, err := toWire("", item)
			if err != nil {
				return w, fmt.Errorf("item %d: %w", i, err)
			}
			w.Items = append(w.Items, iw)
		}
		return w, nil
	default:
		return w, fmt.Errorf("%w: cannot encode kind %s", ErrMalformed, v.Kind)
	}
	if err := w.Value.Encode(payload); err != nil {
		return w, fmt.Errorf("encoding %s value: %w", v.Kind, err)
	}
	return w, nil
}

func fromWire(w wireValue) (document.Value, error) {
	kind, err := document.ParseKind(w.Kind)
	if err != nil {
		return document.Value{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch kind {
	case document.KindStruct:
		fields := make([]document.Field, 0, len(w.Fields))
		for _, fw := range w.Fields {
			fv, err := fromWire(fw)
			if err != nil {
				return document.Value{}, fmt.Errorf("field %q: %w", fw.Name, err)
			}
			fields = append(fields, document.F(fw.Name, fv))
		}
		return document.Struct(fields...), nil
	case document.KindArray:
		elem, err := document.ParseKind(w.Elem)
		if err != nil {
			return document.Value{}, fmt.Errorf("%w: array element: %v", ErrMalformed, err)
		}
		items := make([]document.Value, 0, len(w.Items))
		for i, iw := range w.Items {
			iv, err := fromWire(iw)
			if err != nil {
				return document.Value{}, fmt.Errorf("item %d: %w", i, err)
			}
			items = append(items, iv)
		}
		return document.Array(elem, items...), nil
	}

	if w.Value.Kind == 0 {
		return document.Zero(kind), nil
	}
	var v document.Value
	switch kind {
	case document.KindBool:
		var b bool
		err = w.Value.Decode(&b)
		v = document.Bool(b)
	case document.KindInt:
		var i int64
		err = w.Value.Decode(&i)
		v = document.Int(i)
	case document.KindUint:
		var u uint64
		err = w.Value.Decode(&u)
		v = document.Uint(u)
	case document.KindFlags:
		var f uint32
		err = w.Value.Decode(&f)
		v = document.Flags(f)
	case document.KindFloat:
		var f float64
		err = w.Value.Decode(&f)
		v = document.Float(f)
	case document.KindString:
		var s string
		err = w.Value.Decode(&s)
		v = document.String(s)
	case document.KindEnum:
		var s string
		err = w.Value.Decode(&s)
		v = document.Enum(s)
	case document.KindRef:
		var id int
		err = w.Value.Decode(&id)
		v = document.Ref(id)
	case document.KindPtr:
		var id int
		err = w.Value.Decode(&id)
		v = document.Ptr(id)
	case document.KindVector:
		var xs []float64
		err = w.Value.Decode(&xs)
		v = document.Vector(xs...)
	default:
		return document.Value{}, fmt.Errorf("%w: cannot decode kind %s", ErrMalformed, kind)
	}
	if err != nil {
		return document.Value{}, fmt.Errorf("%w: %s value at line %d: %v", ErrMalformed, kind, w.Value.Line, err)
	}
	return v, nil
}
