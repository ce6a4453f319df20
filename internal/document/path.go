package document

import (
	"fmt"
	"strconv"
	"strings"
)

// PathSep separates the segments of a field path. Numeric segments index
// into arrays: "Controlled Blocks/2/Node Name".
const PathSep = "/"

// Join builds a field path from segments.
func Join(segments ...any) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = fmt.Sprint(s)
	}
	return strings.Join(parts, PathSep)
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSep)
}

func parseIndex(seg string) (int, bool) {
	if seg == "" || seg[0] < '0' || seg[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return n, true
}

// resolve walks path inside b. With create set, missing named members are
// added and invalid placeholders are promoted to structs; array items are
// never created implicitly. The returned parent is nil for top-level fields.
func resolve(b *Block, path string, create bool) (slot, parent *Value, err error) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return nil, nil, fmt.Errorf("%w: empty path", ErrNoSuchField)
	}

	slot = b.Lookup(segs[0])
	if slot == nil {
		if !create {
			return nil, nil, fmt.Errorf("%w: %q in %s", ErrNoSuchField, segs[0], b.Type)
		}
		b.Fields = append(b.Fields, Field{Name: segs[0]})
		slot = &b.Fields[len(b.Fields)-1].Value
	}

	for _, seg := range segs[1:] {
		parent = slot
		if idx, ok := parseIndex(seg); ok {
			if slot.Kind != KindArray {
				return nil, nil, fmt.Errorf("%w: %q in %s", ErrNotAnArray, path, b.Type)
			}
			if idx >= len(slot.Items) {
				return nil, nil, fmt.Errorf("%w: %q has %d items in %s", ErrIndexRange, path, len(slot.Items), b.Type)
			}
			slot = &slot.Items[idx]
			continue
		}

		switch slot.Kind {
		case KindInvalid:
			if !create {
				return nil, nil, fmt.Errorf("%w: %q in %s", ErrNoSuchField, path, b.Type)
			}
			slot.Kind = KindStruct
		case KindStruct:
		default:
			return nil, nil, fmt.Errorf("%w: %q is %s in %s", ErrKindMismatch, path, slot.Kind, b.Type)
		}

		next := slot.Lookup(seg)
		if next == nil {
			if !create {
				return nil, nil, fmt.Errorf("%w: %q in %s", ErrNoSuchField, path, b.Type)
			}
			slot.Fields = append(slot.Fields, Field{Name: seg})
			next = &slot.Fields[len(slot.Fields)-1].Value
		}
		slot = next
	}
	return slot, parent, nil
}

// coerce keeps the declared kind of an existing slot when the incoming
// scalar is compatible with it.
func coerce(existing Kind, v Value) Value {
	if existing == KindInvalid || existing == v.Kind {
		return v
	}
	switch existing {
	case KindFlags, KindUint, KindInt, KindBool:
		switch v.Kind {
		case KindFlags, KindUint, KindInt, KindBool:
			return Value{Kind: existing, I: v.I}
		case KindFloat:
			return Value{Kind: existing, I: int64(v.F)}
		}
	case KindFloat:
		switch v.Kind {
		case KindInt, KindUint, KindFlags:
			return Float(float64(v.I))
		}
	case KindEnum, KindString:
		if v.Kind.IsTextual() {
			return Value{Kind: existing, S: v.S}
		}
	case KindRef, KindPtr:
		if v.Kind.IsLink() || v.Kind == KindInt {
			return Value{Kind: existing, I: int64(normalizeLink(int(v.I)))}
		}
	}
	return v
}
