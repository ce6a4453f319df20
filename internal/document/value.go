package document

import (
	"fmt"
	"strings"
)

// Kind identifies how a Value stores its payload.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindEnum
	KindFlags
	KindRef
	KindPtr
	KindVector
	KindStruct
	KindArray
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindUint:    "uint",
	KindFloat:   "float",
	KindString:  "string",
	KindEnum:    "enum",
	KindFlags:   "flags",
	KindRef:     "ref",
	KindPtr:     "ptr",
	KindVector:  "vector",
	KindStruct:  "struct",
	KindArray:   "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == strings.ToLower(s) {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("unknown value kind %q", s)
}

// IsLink reports whether values of this kind reference another block.
func (k Kind) IsLink() bool {
	return k == KindRef || k == KindPtr
}

// IsTextual reports whether values of this kind are copied through the
// string path.
func (k Kind) IsTextual() bool {
	return k == KindString || k == KindEnum
}

// IsScalar reports whether values of this kind carry no nested values.
func (k Kind) IsScalar() bool {
	return k != KindStruct && k != KindArray && k != KindInvalid
}

// Value is a single field payload. Only the members matching Kind are
// meaningful; links use I and hold -1 when absent.
type Value struct {
	Kind   Kind
	I      int64
	F      float64
	S      string
	V      []float64
	Fields []Field
	Items  []Value
	Elem   Kind
}

// Field is a named Value inside a block or a struct value.
type Field struct {
	Name  string
	Value Value
}

func Bool(b bool) Value {
	if b {
		return Value{Kind: KindBool, I: 1}
	}
	return Value{Kind: KindBool}
}

func Int(i int64) Value        { return Value{Kind: KindInt, I: i} }
func Uint(u uint64) Value      { return Value{Kind: KindUint, I: int64(u)} }
func Float(f float64) Value    { return Value{Kind: KindFloat, F: f} }
func String(s string) Value    { return Value{Kind: KindString, S: s} }
func Enum(option string) Value { return Value{Kind: KindEnum, S: option} }
func Flags(bits uint32) Value  { return Value{Kind: KindFlags, I: int64(bits)} }
func Ref(id int) Value         { return Value{Kind: KindRef, I: int64(normalizeLink(id))} }
func Ptr(id int) Value         { return Value{Kind: KindPtr, I: int64(normalizeLink(id))} }

// Vector holds a fixed-width tuple such as a position, a colour or a
// flattened matrix.
func Vector(xs ...float64) Value {
	return Value{Kind: KindVector, V: append([]float64(nil), xs...)}
}

// Struct groups named fields.
func Struct(fields ...Field) Value {
	return Value{Kind: KindStruct, Fields: fields}
}

// Array holds homogeneous items of kind elem.
func Array(elem Kind, items ...Value) Value {
	return Value{Kind: KindArray, Elem: elem, Items: items}
}

// RefArray is a convenience for arrays of child links.
func RefArray(ids ...int) Value {
	items := make([]Value, len(ids))
	for i, id := range ids {
		items[i] = Ref(id)
	}
	return Array(KindRef, items...)
}

// F builds a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

func normalizeLink(id int) int {
	if id < 0 {
		return -1
	}
	return id
}

// Zero returns the zero value of a kind. Links are absent (-1).
func Zero(k Kind) Value {
	switch k {
	case KindRef, KindPtr:
		return Value{Kind: k, I: -1}
	default:
		return Value{Kind: k}
	}
}

// zeroLike returns a value with the same shape as v but zeroed payload.
func zeroLike(v Value) Value {
	switch v.Kind {
	case KindStruct:
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = Field{Name: f.Name, Value: zeroLike(f.Value)}
		}
		return Value{Kind: KindStruct, Fields: fields}
	case KindArray:
		return Value{Kind: KindArray, Elem: v.Elem}
	case KindVector:
		return Value{Kind: KindVector, V: make([]float64, len(v.V))}
	default:
		return Zero(v.Kind)
	}
}

// Clone returns a deep copy.
func (v Value) Clone() Value {
	out := v
	if v.V != nil {
		out.V = append([]float64(nil), v.V...)
	}
	if v.Fields != nil {
		out.Fields = make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			out.Fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
		}
	}
	if v.Items != nil {
		out.Items = make([]Value, len(v.Items))
		for i, item := range v.Items {
			out.Items[i] = item.Clone()
		}
	}
	return out
}

// Link returns the referenced block id, or -1.
func (v Value) Link() int {
	if !v.Kind.IsLink() {
		return -1
	}
	return int(v.I)
}

func (v Value) AsBool() bool        { return v.I != 0 }
func (v Value) AsInt() int64        { return v.I }
func (v Value) AsUint() uint64      { return uint64(v.I) }
func (v Value) AsFlags() uint32     { return uint32(v.I) }
func (v Value) AsFloat() float64    { return v.F }
func (v Value) AsString() string    { return v.S }
func (v Value) AsVector() []float64 { return v.V }

// Lookup returns the named member of a struct value.
func (v *Value) Lookup(name string) *Value {
	for i := range v.Fields {
		if v.Fields[i].Name == name {
			return &v.Fields[i].Value
		}
	}
	return nil
}

// Len returns the number of items of an array value, 0 otherwise.
func (v Value) Len() int {
	if v.Kind != KindArray {
		return 0
	}
	return len(v.Items)
}

// Equal compares two values structurally.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind || v.I != o.I || v.F != o.F || v.S != o.S || v.Elem != o.Elem {
		return false
	}
	if len(v.V) != len(o.V) || len(v.Fields) != len(o.Fields) || len(v.Items) != len(o.Items) {
		return false
	}
	for i := range v.V {
		if v.V[i] != o.V[i] {
			return false
		}
	}
	for i := range v.Fields {
		if v.Fields[i].Name != o.Fields[i].Name || !v.Fields[i].Value.Equal(o.Fields[i].Value) {
			return false
		}
	}
	for i := range v.Items {
		if !v.Items[i].Equal(o.Items[i]) {
			return false
		}
	}
	return true
}

// walkLinks visits every link value reachable inside v.
func (v *Value) walkLinks(fn func(l *Value)) {
	switch v.Kind {
	case KindRef, KindPtr:
		fn(v)
	case KindStruct:
		for i := range v.Fields {
			v.Fields[i].Value.walkLinks(fn)
		}
	case KindArray:
		for i := range v.Items {
			v.Items[i].walkLinks(fn)
		}
	}
}
