package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestHash(t *testing.T) {
	t.Parallel()
	a := Hash([]byte("version: legacy"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Hash([]byte("version: legacy")))
	assert.NotEqual(t, a, Hash([]byte("version: modern")))
}

func TestLedger_PutLookupFresh(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	ctx := context.Background()
	l := open(t)
	at := time.UnixMilli(1_700_000_000_000)
	rec := Record{Source: "meshes/a.nif.yaml", Hash: Hash([]byte("a")), Output: "out/a.nif.yaml", Success: true, Warnings: 2, ConvertedAt: at}

	// --- Act ---
	require.NoError(t, l.Put(ctx, rec))
	got, err := l.Lookup(ctx, rec.Source)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	fresh, err := l.Fresh(ctx, rec.Source, rec.Hash)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = l.Fresh(ctx, rec.Source, Hash([]byte("changed")))
	require.NoError(t, err)
	assert.False(t, fresh, "a changed source is converted again")

	fresh, err = l.Fresh(ctx, "meshes/unknown.nif.yaml", rec.Hash)
	require.NoError(t, err)
	assert.False(t, fresh)
}

func TestLedger_FailedRecordIsNotFresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := open(t)
	h := Hash([]byte("b"))
	require.NoError(t, l.Put(ctx, Record{Source: "b", Hash: h, Output: "out/b", Errors: 1}))
	require.NoError(t, l.Put(ctx, Record{Source: "b", Hash: h, Output: "out/b", Errors: 3}))

	fresh, err := l.Fresh(ctx, "b", h)
	require.NoError(t, err)
	assert.False(t, fresh)

	got, err := l.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Errors, "records are replaced")
	assert.False(t, got.ConvertedAt.IsZero())

	_, err = l.Lookup(ctx, "c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLedger_ConcurrentPuts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := open(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := filepath.Join("meshes", string(rune('a'+i)))
			assert.NoError(t, l.Put(ctx, Record{Source: src, Hash: Hash([]byte(src)), Output: src, Success: true}))
		}(i)
	}
	wg.Wait()

	n, err := l.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
