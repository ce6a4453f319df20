// Package enummap translates enum option names between the legacy and the
// modern vocabulary with declarative tables.
package enummap

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrUnmapped = errors.New("enum option has no mapping")

// Map is a named legacy -> modern option table.
type Map struct {
	Name    string
	entries map[string]string
}

// Pair is one table row.
type Pair struct{ From, To string }

// New builds a map. Duplicate keys are a programming error and panic.
func New(name string, pairs ...Pair) *Map {
	m := &Map{Name: name, entries: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		if _, dup := m.entries[p.From]; dup {
			panic(fmt.Sprintf("enummap %s: duplicate option %q", name, p.From))
		}
		m.entries[p.From] = p.To
	}
	return m
}

// Translate returns the modern option for a legacy one.
func (m *Map) Translate(option string) (string, error) {
	to, ok := m.entries[option]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", ErrUnmapped, m.Name, option)
	}
	return to, nil
}

// Override returns a copy of m with entries replaced or added.
func (m *Map) Override(entries map[string]string) *Map {
	out := &Map{Name: m.Name, entries: maps.Clone(m.entries)}
	maps.Copy(out.entries, entries)
	return out
}

// Keys lists the legacy options in sorted order.
func (m *Map) Keys() []string {
	return slices.Sorted(maps.Keys(m.entries))
}

func (m *Map) Len() int { return len(m.entries) }

// Set groups the maps used by one conversion.
type Set struct {
	Material *Map
	Layer    *Map
}

// Defaults returns fresh copies of the built-in tables.
func Defaults() Set {
	return Set{Material: HavokMaterial(), Layer: HavokLayer()}
}

// Lookup returns a map of the set by profile name.
func (s Set) Lookup(name string) (*Map, bool) {
	switch name {
	case "havok_material":
		return s.Material, true
	case "havok_layer":
		return s.Layer, true
	}
	return nil, false
}

// Replace swaps a map of the set by profile name.
func (s *Set) Replace(name string, m *Map) bool {
	switch name {
	case "havok_material":
		s.Material = m
	case "havok_layer":
		s.Layer = m
	default:
		return false
	}
	return true
}
