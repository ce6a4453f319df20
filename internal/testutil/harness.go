package testutil

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/lod"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Logger returns a debug logger writing into buf. Setting NIFCONV_TEST_LOGS
// mirrors the output to stderr.
func Logger(buf *SafeBuffer) *slog.Logger {
	var w io.Writer = buf
	if os.Getenv("NIFCONV_TEST_LOGS") == "true" {
		w = io.MultiWriter(buf, os.Stderr)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Run converts src with the given rule modules and an audited run. The
// returned result never carries a start-up error.
func Run(t testing.TB, src document.Reader, modules ...convert.Module) convert.Result {
	t.Helper()
	return RunFile(t, src, lod.Props{}, modules...)
}

// RunFile is Run for a document whose path implies a file role.
func RunFile(t testing.TB, src document.Reader, file lod.Props, modules ...convert.Module) convert.Result {
	t.Helper()
	buf := &SafeBuffer{}
	res := convert.Convert(context.Background(), convert.NewDispatcher(modules...), src, convert.Options{
		Audit:  true,
		Logger: Logger(buf),
		File:   file,
	})
	require.NoError(t, res.Err)
	require.NotNil(t, res.Dest)
	return res
}

// OfType lists the destination blocks of one type in index order.
func OfType(r document.Reader, typ string) []int {
	var out []int
	for id := 0; id < r.BlockCount(); id++ {
		if r.TypeName(id) == typ {
			out = append(out, id)
		}
	}
	return out
}

// Only returns the single destination block of a type.
func Only(t testing.TB, r document.Reader, typ string) int {
	t.Helper()
	ids := OfType(r, typ)
	require.Len(t, ids, 1, "blocks of type %s", typ)
	return ids[0]
}

// Codes lists the codes of every diagnostic of a severity.
func Codes(ds []diagnostic.Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}
