package copier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

func pair(t *testing.T) (*document.Arena, *document.Arena) {
	t.Helper()
	src := document.New(document.VersionLegacy, nil)
	id := src.InsertBlock("NiStringExtraData")
	require.NoError(t, src.Set(id, "Name", document.String("UPB")))
	require.NoError(t, src.Set(id, "String Data", document.String("mass = 10")))
	require.NoError(t, src.Set(id, "Flags", document.Flags(0x8000000e)))
	require.NoError(t, src.Set(id, "Keys", document.Array(document.KindStruct,
		document.Struct(document.F("Time", document.Float(0)), document.F("Value", document.String("start"))),
		document.Struct(document.F("Time", document.Float(1.5)), document.F("Value", document.String("end"))),
	)))
	require.NoError(t, src.Set(id, "Controller", document.Ref(-1)))

	dst := document.New(document.VersionModern, nil)
	dst.InsertBlock("NiStringExtraData")
	return src, dst
}

func TestCopy_ScalarsAndFlags(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := pair(t)
	require.NoError(t, dst.Set(0, "Name", document.Enum("")))
	c := New(dst, 0, src, 0, Options{})

	// --- Act ---
	require.NoError(t, c.Copy("Name", "Flags"))

	// --- Assert ---
	name, _ := dst.Value(0, "Name")
	assert.Equal(t, document.KindEnum, name.Kind)
	assert.Equal(t, "UPB", name.AsString())
	flags, _ := dst.Value(0, "Flags")
	assert.Equal(t, uint32(0x8000000e), flags.AsFlags())
	assert.Equal(t, Processed, c.State("Flags"))
	assert.Equal(t, Unused, c.State("String Data"))
}

func TestCopyArray_RequiresPresizedDestination(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := pair(t)
	c := New(dst, 0, src, 0, Options{})
	require.NoError(t, dst.ResizeArray(0, "Keys", 1))

	// --- Act ---
	err := c.CopyArray("Keys")

	// --- Assert ---
	require.ErrorIs(t, err, ErrArraySizeMismatch)
	assert.Equal(t, Unused, c.State("Keys"))

	require.NoError(t, c.MatchArray("Keys", "Keys"))
	require.NoError(t, c.CopyArray("Keys"))
	v, err := document.Get[string](dst, 0, "Keys/1/Value")
	require.NoError(t, err)
	assert.Equal(t, "end", v)
}

func TestCopyArray_MissingDestinationIsMismatch(t *testing.T) {
	t.Parallel()
	src, dst := pair(t)
	c := New(dst, 0, src, 0, Options{})

	assert.ErrorIs(t, c.CopyArray("Keys"), ErrArraySizeMismatch)
}

func TestCopy_RefusesLinks(t *testing.T) {
	t.Parallel()
	src, dst := pair(t)
	c := New(dst, 0, src, 0, Options{})

	assert.ErrorIs(t, c.Copy("Controller"), ErrLinkCopy)
	assert.Equal(t, -1, c.Link("Controller"))
	assert.Equal(t, Processed, c.State("Controller"))
}

func TestFinish_ReportsExactlyUntouchedLeaves(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := pair(t)
	var diags diagnostic.Diagnostics
	c := New(dst, 0, src, 0, Options{Audit: true, Diags: &diags})
	require.NoError(t, c.Copy("Name"))
	c.Ignore("Flags")
	c.Processed("Keys/0")
	_ = c.Link("Controller")

	// --- Act ---
	unused := c.Finish()

	// --- Assert ---
	assert.Equal(t, []string{"String Data", "Keys/1/Time", "Keys/1/Value"}, unused)
	assert.Len(t, diags.Infos, 3)
	assert.True(t, diags.Success())
	assert.Nil(t, c.Finish())
}

func TestFinish_DumpsAuditedBlockAtDebug(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := pair(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := New(dst, 0, src, 0, Options{Audit: true, Logger: logger})

	// --- Act ---
	unused := c.Finish()

	// --- Assert ---
	require.NotEmpty(t, unused)
	assert.Equal(t, 1, strings.Count(logs.String(), `msg="Audited block."`))
	assert.Contains(t, logs.String(), "dump=")
}

func TestFinish_SilentWithoutAudit(t *testing.T) {
	t.Parallel()
	src, dst := pair(t)
	var diags diagnostic.Diagnostics
	c := New(dst, 0, src, 0, Options{Diags: &diags})

	assert.Empty(t, c.Finish())
	assert.Zero(t, diags.Len())
}

func TestRead_MarksProcessed(t *testing.T) {
	t.Parallel()
	src, dst := pair(t)
	c := New(dst, 0, src, 0, Options{})

	s, err := Read[string](c, "String Data")

	require.NoError(t, err)
	assert.Equal(t, "mass = 10", s)
	assert.Equal(t, Processed, c.State("String Data"))
	assert.Equal(t, float32(2), ReadOr[float32](c, "Missing", 2))
}
