package profile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/ctxlog"
)

func testCtx() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const full = `
batch {
  workers  = 2 * 4
  pattern  = "**/*.nif.yaml"
  audit    = true
}

textures {
  root   = "textures\\"
  folder = "fnv\\"
}

enum_map "havok_layer" {
  entries = { FOL_DEADBIP = "FO4L_BIPED" }
}

exact_copy = ["NiFloatExtraData", "BSXFlags"]
`

func TestParse_Full(t *testing.T) {
	t.Parallel()
	// --- Act ---
	p, err := Parse(testCtx(), "full.hcl", []byte(full))

	// --- Assert ---
	require.NoError(t, err)
	require.NotNil(t, p.Batch.Workers)
	assert.Equal(t, 8, *p.Batch.Workers)
	assert.Equal(t, "**/*.nif.yaml", *p.Batch.Pattern)
	assert.True(t, *p.Batch.Audit)
	assert.Nil(t, p.Batch.Compress, "unset values stay nil")
	assert.Equal(t, `textures\`, p.Textures.Root)
	assert.Equal(t, `fnv\`, p.Textures.Folder)
	assert.Equal(t, []string{"NiFloatExtraData", "BSXFlags"}, p.ExactCopy)

	got, err := p.Enums().Layer.Translate("FOL_DEADBIP")
	require.NoError(t, err)
	assert.Equal(t, "FO4L_BIPED", got)
	got, err = p.Enums().Layer.Translate("FOL_STATIC")
	require.NoError(t, err)
	assert.Equal(t, "FO4L_STATIC", got, "other entries are kept")
}

func TestParse_Variables(t *testing.T) {
	t.Parallel()
	src := `
batch {
  workers = cell_size / 1024
  pattern = "**/*.${legacy.name}.yaml"
}
`
	p, err := Parse(testCtx(), "vars.hcl", []byte(src))

	require.NoError(t, err)
	assert.Equal(t, 4, *p.Batch.Workers)
	assert.Equal(t, "**/*.legacy.yaml", *p.Batch.Pattern)
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		src  string
	}{
		{"syntax", "batch {"},
		{"unknown block", `render { fast = true }`},
		{"unknown enum map", `enum_map "bogus" { entries = {} }`},
		{"wrong type", `batch { workers = "many" }`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(testCtx(), tc.name+".hcl", []byte(tc.src))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "profile.hcl")
	require.NoError(t, os.WriteFile(path, []byte(full), 0o600))

	// --- Act ---
	p, err := Load(testCtx(), path)
	def, defErr := Load(testCtx(), "")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 8, *p.Batch.Workers)
	require.NoError(t, defErr)
	assert.Equal(t, Default(), def)

	_, err = Load(testCtx(), filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
