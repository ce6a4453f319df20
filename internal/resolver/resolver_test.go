package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/registry"
)

// fixture: source 0 -> {1, 2}, 2 -> 3. destination has one block per test.
func fixture(t *testing.T) (*document.Arena, *document.Arena) {
	t.Helper()
	src := document.New(document.VersionLegacy, nil)
	for i := 0; i < 4; i++ {
		src.InsertBlock("NiNode")
	}
	require.NoError(t, src.Set(0, "Children", document.RefArray(1, 2)))
	require.NoError(t, src.Set(2, "Children", document.RefArray(3)))

	dst := document.New(document.VersionModern, nil)
	dst.InsertBlock("NiNode")
	dst.InsertBlock("NiNode")
	return src, dst
}

func TestResolveAll_WritesForwardReference(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src, registry.WithDropper(res.Dropper(dst)))
	require.NoError(t, reg.MarkHandled(0, 0))
	res.Defer(1, Slot{Block: 0, Path: "Extra"})
	require.NoError(t, reg.MarkHandled(1, 1))

	// --- Act ---
	var diags diagnostic.Diagnostics
	n := res.ResolveAll(dst, reg, &diags)

	// --- Assert ---
	assert.Equal(t, 1, n)
	assert.True(t, diags.Success())
	got, ok := dst.Link(0, "Extra")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestResolveAll_DanglingTargetIsAbsentAndFails(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src)
	res.Defer(3, Slot{Block: 1, Path: "Target"})

	// --- Act ---
	var diags diagnostic.Diagnostics
	res.ResolveAll(dst, reg, &diags)

	// --- Assert ---
	assert.False(t, diags.Success())
	assert.Len(t, diags.ByCode(diagnostic.CodeDanglingLink), 1)
	v, err := dst.Value(1, "Target")
	require.NoError(t, err)
	assert.Equal(t, -1, v.Link())
}

func TestResolveAll_IgnoredTargetIsSilentlyAbsent(t *testing.T) {
	t.Parallel()
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src)
	reg.Ignore(3, false)
	res.Defer(3, Slot{Block: 1, Path: "Target"})

	var diags diagnostic.Diagnostics
	res.ResolveAll(dst, reg, &diags)

	assert.Zero(t, diags.Len())
	v, _ := dst.Value(1, "Target")
	assert.Equal(t, -1, v.Link())
}

func TestResolveAll_SecondCallIsNoop(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src)
	require.NoError(t, reg.MarkHandled(1, 1))
	res.Defer(1, Slot{Block: 0, Path: "Extra"})
	var diags diagnostic.Diagnostics
	res.ResolveAll(dst, reg, &diags)
	before, _ := dst.Value(0, "Extra")

	// --- Act ---
	n := res.ResolveAll(dst, reg, &diags)

	// --- Assert ---
	after, _ := dst.Value(0, "Extra")
	assert.Zero(t, n)
	assert.Zero(t, res.Pending())
	assert.True(t, before.Equal(after))
}

func TestIgnoreCascade_DropsQueuedLinksAndPreservesMappings(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src, registry.WithDropper(res.Dropper(dst)))
	require.NoError(t, reg.MarkHandled(1, 1))
	res.Defer(0, Slot{Block: 1, Path: "Parent"})
	res.Defer(2, Slot{Block: 0, Path: "Children/0"})
	res.Defer(3, Slot{Block: 0, Path: "Grandchild"})

	// --- Act ---
	reg.Ignore(0, true)

	// --- Assert ---
	assert.True(t, reg.IsHandled(1))
	mapped, ok := reg.Resolve(1)
	assert.True(t, ok)
	assert.Equal(t, 1, mapped)
	assert.True(t, reg.IsIgnored(2))
	assert.True(t, reg.IsIgnored(3))
	assert.Zero(t, res.PendingTo(0))
	assert.Zero(t, res.PendingTo(2))
	assert.Zero(t, res.Pending())
}

func TestDefer_DuplicateSlotLastWriteWins(t *testing.T) {
	t.Parallel()
	src, dst := fixture(t)
	res := New(nil)
	reg := registry.New(src)
	require.NoError(t, reg.MarkHandled(0, 0))
	require.NoError(t, reg.MarkHandled(1, 1))
	res.Defer(0, Slot{Block: 1, Path: "Target"})
	res.Defer(1, Slot{Block: 1, Path: "Target"})

	var diags diagnostic.Diagnostics
	res.ResolveAll(dst, reg, &diags)

	got, _ := dst.Link(1, "Target")
	assert.Equal(t, 1, got)
}
