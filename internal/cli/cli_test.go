package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	cfg, exit, err := Parse([]string{"meshes"}, &out)

	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "meshes", cfg.InputPath)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "/", cfg.NotifyNamespace)
	assert.Nil(t, cfg.Audit, "unset booleans defer to the profile")
	assert.Nil(t, cfg.Compress)
	assert.Zero(t, cfg.Workers)
}

func TestParse_AllFlags(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	args := []string{
		"-i", "in", "-o", "out", "-profile", "p.hcl", "-pattern", "**/*.yaml",
		"-workers", "4", "-audit", "-compress=false", "-ledger", "runs.db",
		"-healthcheck-port", "8080", "-notify-url", "http://localhost:3000/socket.io/",
		"-notify-namespace", "/progress", "-log-format", "JSON", "-log-level", "Debug",
	}

	// --- Act ---
	cfg, exit, err := Parse(args, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, "in", cfg.InputPath)
	assert.Equal(t, "out", cfg.OutputPath)
	assert.Equal(t, "p.hcl", cfg.ProfilePath)
	assert.Equal(t, "**/*.yaml", cfg.Pattern)
	assert.Equal(t, 4, cfg.Workers)
	require.NotNil(t, cfg.Audit)
	assert.True(t, *cfg.Audit)
	require.NotNil(t, cfg.Compress)
	assert.False(t, *cfg.Compress)
	assert.Equal(t, "runs.db", cfg.LedgerPath)
	assert.Equal(t, 8080, cfg.HealthcheckPort)
	assert.Equal(t, "/progress", cfg.NotifyNamespace)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_LongFlagWinsOverPositional(t *testing.T) {
	t.Parallel()
	cfg, _, err := Parse([]string{"-input", "a"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "a", cfg.InputPath)
}

func TestParse_HelpAndMissingInput(t *testing.T) {
	t.Parallel()
	for _, args := range [][]string{{"-h"}, {}} {
		var out bytes.Buffer
		cfg, exit, err := Parse(args, &out)
		require.NoError(t, err)
		assert.True(t, exit)
		assert.Nil(t, cfg)
		assert.Contains(t, out.String(), "nifconv [options] [INPUT]")
	}
}

func TestParse_UsageErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-bogus", "in"}},
		{"bad log format", []string{"-log-format", "xml", "in"}},
		{"bad log level", []string{"-log-level", "trace", "in"}},
		{"negative workers", []string{"-workers", "-2", "in"}},
		{"bad notify url", []string{"-notify-url", "nope", "in"}},
		{"two inputs", []string{"a", "b"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, exit, err := Parse(tc.args, &bytes.Buffer{})
			assert.False(t, exit)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, ExitUsage, exitErr.Code)
		})
	}
}
