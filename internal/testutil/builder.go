// Package testutil builds source documents and runs conversions for rule
// tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/document"
)

// Doc is a legacy document under construction. Every mutation fails the
// test on error.
type Doc struct {
	*document.Arena
	t testing.TB
}

// Legacy starts an empty legacy-version document.
func Legacy(t testing.TB) *Doc {
	t.Helper()
	return &Doc{Arena: document.New(document.VersionLegacy, document.LegacySchema()), t: t}
}

// Add inserts a block carrying the given top-level fields and returns its
// id.
func (d *Doc) Add(typ string, fields ...document.Field) int {
	d.t.Helper()
	id := d.InsertBlock(typ)
	for _, f := range fields {
		require.NoError(d.t, d.Set(id, f.Name, f.Value), "set %s on %s", f.Name, typ)
	}
	return id
}

// Put writes one value at a path.
func (d *Doc) Put(id int, path string, v document.Value) *Doc {
	d.t.Helper()
	require.NoError(d.t, d.Set(id, path, v), "set %s on block %d", path, id)
	return d
}

// LinkTo points a reference field at target.
func (d *Doc) LinkTo(id int, path string, target int) *Doc {
	d.t.Helper()
	require.NoError(d.t, d.SetLink(id, path, target), "link %s on block %d", path, id)
	return d
}

// Vectors wraps float tuples into an array value.
func Vectors(vs ...[]float64) document.Value {
	items := make([]document.Value, len(vs))
	for i, v := range vs {
		items[i] = document.Vector(v...)
	}
	return document.Array(document.KindVector, items...)
}

// Uints wraps unsigned values into an array value.
func Uints(vs ...uint64) document.Value {
	items := make([]document.Value, len(vs))
	for i, v := range vs {
		items[i] = document.Uint(v)
	}
	return document.Array(document.KindUint, items...)
}
