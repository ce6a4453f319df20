package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/batch"
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/docio"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/testutil"
)

// setupApp creates an app with debug logging captured in a buffer.
func setupApp(t *testing.T, cfg Config) (*App, *testutil.SafeBuffer) {
	t.Helper()
	logs := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	c, err := NewConfig(cfg)
	require.NoError(t, err)
	a := NewApp(logs, c)
	t.Cleanup(func() {
		if os.Getenv("NIFCONV_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, logs
}

func writeDoc(t *testing.T, path, typ string) {
	t.Helper()
	doc := document.New(document.VersionLegacy, document.LegacySchema())
	id := doc.InsertBlock(typ)
	require.NoError(t, doc.Set(id, "Name", document.String("Root")))
	raw, err := docio.Marshal(path, doc)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, raw, 0o600))
}

func TestModules_MatchLegacySchema(t *testing.T) {
	t.Parallel()
	d := convert.NewDispatcher(Modules([]string{"NiNode", "BSXFlags"})...)
	require.NoError(t, d.Validate(document.LegacySchema()))
	_, ok := d.Rule("BSXFlags")
	assert.True(t, ok)
}

func TestNewConfig(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"minimal", Config{InputPath: "in"}, false},
		{"no input", Config{}, true},
		{"negative workers", Config{InputPath: "in", Workers: -1}, true},
		{"port out of range", Config{InputPath: "in", HealthcheckPort: 70000}, true},
		{"bad notify url", Config{InputPath: "in", NotifyURL: "localhost"}, true},
		{"notify url", Config{InputPath: "in", NotifyURL: "http://localhost:3000/socket.io/"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewConfig(tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "text", c.LogFormat)
			assert.Equal(t, "info", c.LogLevel)
		})
	}
}

func TestRun_ConvertsDirectory(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	in, out := t.TempDir(), t.TempDir()
	writeDoc(t, filepath.Join(in, "meshes", "a.nif.yaml"), "NiNode")
	writeDoc(t, filepath.Join(in, "meshes", "b.nif.yaml"), "NiNode")
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o600))
	a, logs := setupApp(t, Config{InputPath: in, OutputPath: out, Workers: 2})

	// --- Act ---
	summary, err := a.Run(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Converted)
	assert.FileExists(t, filepath.Join(out, "meshes", "a.nif.yaml"))
	assert.FileExists(t, filepath.Join(out, "meshes", "b.nif.yaml"))
	assert.FileExists(t, filepath.Join(out, batch.SummaryFile))
	assert.Contains(t, logs.String(), "Batch finished.")
	assert.Contains(t, logs.String(), "runID="+summary.RunID)
}

func TestRun_FailedDocumentsAreReported(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	in := t.TempDir()
	src := filepath.Join(in, "odd.nif.yaml")
	writeDoc(t, src, "NiUnknownThing")
	a, _ := setupApp(t, Config{InputPath: src})

	// --- Act ---
	summary, err := a.Run(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, ErrDocumentsFailed)
	require.NotNil(t, summary)
	assert.Equal(t, []string{"odd.nif.yaml"}, summary.FailedList)
	assert.FileExists(t, filepath.Join(in, "odd.converted.nif.yaml"), "failed documents are still written")
	assert.FileExists(t, filepath.Join(in, batch.SummaryFile))
}

func TestRun_NothingToConvert(t *testing.T) {
	t.Parallel()
	a, logs := setupApp(t, Config{InputPath: t.TempDir()})

	summary, err := a.Run(context.Background())

	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Contains(t, logs.String(), "No documents matched")
}

func TestSettings_CommandLineWinsOverProfile(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.hcl")
	src := `
batch {
  workers  = 3
  pattern  = "**/*.yaml"
  audit    = true
  compress = true
}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	off := false
	a, _ := setupApp(t, Config{InputPath: dir, ProfilePath: path, Workers: 5, Compress: &off})

	// --- Act ---
	s := a.settings()

	// --- Assert ---
	assert.Equal(t, settings{workers: 5, pattern: "**/*.yaml", audit: true, compress: false}, s)
}

func TestNewApp_PanicsOnBadProfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("batch {"), 0o600))
	c, err := NewConfig(Config{InputPath: "in", ProfilePath: path})
	require.NoError(t, err)

	assert.Panics(t, func() { NewApp(&testutil.SafeBuffer{}, c) })
}

func TestHTTPHandlers(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	in := t.TempDir()
	writeDoc(t, filepath.Join(in, "a.nif.yaml"), "NiNode")
	a, _ := setupApp(t, Config{InputPath: in, OutputPath: t.TempDir()})
	srv := httptest.NewServer(a.mux())
	defer srv.Close()

	// --- Act & Assert ---
	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/progress")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "no batch yet")

	_, err = a.Run(context.Background())
	require.NoError(t, err)

	resp, err = http.Get(srv.URL + "/progress")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap batch.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, 1, snap.Documents)
	assert.Equal(t, 1, snap.Done)
}
