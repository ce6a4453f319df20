package convert

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/controller"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// ruleSet registers closures under type tags.
type ruleSet map[string]Rule

func (s ruleSet) Register(d *Dispatcher) {
	for tag, rule := range s {
		d.Register(rule, tag)
	}
}

func source() *document.Arena {
	return document.New(document.VersionLegacy, document.LegacySchema())
}

// copyRule converts a block into the same type, copying every scalar
// field through the copier and deferring its links.
func copyRule(ctx *Context, src int) (int, error) {
	dst, err := ctx.NewBlock(ctx.Source().TypeName(src), src)
	if err != nil {
		return dst, err
	}
	b, err := ctx.Source().Block(src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	for _, f := range b.Fields {
		if f.Value.Kind.IsLink() {
			ctx.Relink(c, f.Name)
			c.Processed(f.Name)
			continue
		}
		if err := c.Copy(f.Name); err != nil {
			return dst, err
		}
	}
	c.Finish()
	return dst, nil
}

func TestConvert_SingleBlock(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	a := src.InsertBlock("A")
	require.NoError(t, src.Set(a, "count", document.Uint(5)))
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{Audit: true})

	// --- Assert ---
	require.NoError(t, res.Err)
	assert.True(t, res.Success)
	assert.Zero(t, res.Diagnostics.Len())
	require.Equal(t, 1, res.Dest.BlockCount())
	assert.Equal(t, "A", res.Dest.TypeName(0))
	assert.Equal(t, uint64(5), document.GetOr(res.Dest, 0, "count", uint64(0)))
	assert.Equal(t, 1, res.Handled)
}

func TestConvert_ForwardLinkIsDeferred(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	// A points back at B, which is visited after A.
	src := source()
	a := src.InsertBlock("A")
	b := src.InsertBlock("B")
	require.NoError(t, src.Set(a, "Peer", document.Ptr(b)))
	require.NoError(t, src.Set(b, "size", document.Int(7)))
	d := NewDispatcher(ruleSet{"A": copyRule, "B": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	require.True(t, res.Success, "%v", res.Diagnostics.Err())
	target, ok := res.Dest.Link(0, "Peer")
	require.True(t, ok)
	assert.Equal(t, "B", res.Dest.TypeName(target))
	assert.Equal(t, int64(7), document.GetOr(res.Dest, target, "size", int64(0)))
}

func TestConvert_SharedChildConvertedOnce(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	shared := src.InsertBlock("Leaf")
	for range 2 {
		n := src.InsertBlock("Node")
		require.NoError(t, src.Set(n, "Child", document.Ref(shared)))
	}
	calls := 0
	d := NewDispatcher(ruleSet{
		"Leaf": func(ctx *Context, src int) (int, error) {
			calls++
			return ctx.NewBlock("Leaf", src)
		},
		"Node": func(ctx *Context, src int) (int, error) {
			dst, err := ctx.NewBlock("Node", src)
			if err != nil {
				return dst, err
			}
			ctx.ChildLink(ctx.Copier(dst, src), "Child")
			return dst, nil
		},
	})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	require.True(t, res.Success, "%v", res.Diagnostics.Err())
	assert.Equal(t, 1, calls)
	var leaves []int
	for id := range res.Dest.BlockCount() {
		if res.Dest.TypeName(id) == "Node" {
			leaf, ok := res.Dest.Link(id, "Child")
			require.True(t, ok)
			leaves = append(leaves, leaf)
		}
	}
	require.Len(t, leaves, 2)
	assert.Equal(t, leaves[0], leaves[1])
}

func TestConvert_UnregisteredType(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	m := src.InsertBlock("Mystery")
	leaf := src.InsertBlock("A")
	require.NoError(t, src.Set(m, "Child", document.Ref(leaf)))
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	assert.False(t, res.Success)
	found := res.Diagnostics.ByCode(diagnostic.CodeUnregisteredType)
	require.Len(t, found, 1)
	assert.Equal(t, m, found[0].Block)
	assert.Equal(t, "Mystery", found[0].BlockType)
	assert.Empty(t, res.Diagnostics.ByCode(diagnostic.CodeUnhandledBlock), "the subtree is ignored, not left over")
}

func TestConvert_UnreachableBlocksReported(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	// Two blocks owning each other have no root.
	src := source()
	a := src.InsertBlock("A")
	b := src.InsertBlock("A")
	require.NoError(t, src.Set(a, "Next", document.Ref(b)))
	require.NoError(t, src.Set(b, "Next", document.Ref(a)))
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	assert.False(t, res.Success)
	assert.False(t, res.Diagnostics.HasErrors())
	assert.Len(t, res.Diagnostics.ByCode(diagnostic.CodeUnhandledBlock), 2)
}

func TestConvert_UnhandledBlockDumpedAtDebug(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	a := src.InsertBlock("Orphaned")
	b := src.InsertBlock("Orphaned")
	require.NoError(t, src.Set(a, "Next", document.Ref(b)))
	require.NoError(t, src.Set(b, "Next", document.Ref(a)))
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// --- Act ---
	res := Convert(context.Background(), NewDispatcher(), src, Options{Logger: logger})

	// --- Assert ---
	require.Len(t, res.Diagnostics.ByCode(diagnostic.CodeUnhandledBlock), 2)
	out := logs.String()
	assert.Equal(t, 2, strings.Count(out, `msg="Unhandled block."`))
	assert.Contains(t, out, "Orphaned")
	assert.Contains(t, out, "dump=")
}

func TestSequence_IgnoredSequenceIsNotCopied(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	root := src.InsertBlock("A")
	seq := src.InsertBlock("NiControllerSequence")
	require.NoError(t, src.Set(root, "Sequence", document.Ref(seq)))
	var got int
	var seqErr error
	d := NewDispatcher(ruleSet{"A": func(ctx *Context, s int) (int, error) {
		dst, err := ctx.NewBlock("A", s)
		if err != nil {
			return dst, err
		}
		ctx.Ignore(seq, false)
		got, seqErr = ctx.Sequence(seq)
		return dst, nil
	}})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	require.NoError(t, seqErr)
	assert.Equal(t, -1, got)
	assert.True(t, res.Success, res.Diagnostics.Err())
	assert.Equal(t, 1, res.Dest.BlockCount(), "no orphan sequence in the output")
}

func TestConvert_DanglingLink(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	// The rule defers a child it never converts.
	src := source()
	a := src.InsertBlock("A")
	b := src.InsertBlock("A")
	require.NoError(t, src.Set(a, "Next", document.Ref(b)))
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	assert.False(t, res.Success)
	assert.Len(t, res.Diagnostics.ByCode(diagnostic.CodeDanglingLink), 1)
	assert.Len(t, res.Diagnostics.ByCode(diagnostic.CodeUnhandledBlock), 1)
	_, ok := res.Dest.Link(0, "Next")
	assert.False(t, ok)
}

func TestConvert_Cancelled(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// --- Act ---
	res := Convert(ctx, NewDispatcher(), source(), Options{})

	// --- Assert ---
	assert.ErrorIs(t, res.Err, ErrCancelled)
	assert.Nil(t, res.Dest)
	assert.False(t, res.Success)
}

func TestConvert_ProgressCountsEveryBlock(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	for range 4 {
		src.InsertBlock("A")
	}
	total := 0
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{Progress: func(n int) { total += n }})

	// --- Assert ---
	require.True(t, res.Success)
	assert.Equal(t, 4, total)
}

func TestConvert_SharedControllerIsCloned(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := source()
	seq := src.InsertBlock("NiControllerSequence")
	ctl := src.InsertBlock("BSMaterialEmittanceMultController")
	interp := src.InsertBlock("NiFloatInterpolator")
	require.NoError(t, src.Set(ctl, "Interpolator", document.Ref(interp)))
	require.NoError(t, src.Set(ctl, "Flags", document.Flags(8)))
	require.NoError(t, src.Set(ctl, "Next Controller", document.Ref(-1)))
	require.NoError(t, src.Set(interp, "Value", document.Float(1.5)))
	require.NoError(t, src.Set(seq, "Controlled Blocks", document.Array(document.KindStruct,
		document.Struct(
			document.F("Interpolator", document.Ref(interp)),
			document.F("Controller", document.Ref(ctl)),
			document.F("Node Name", document.String("Glow0")),
			document.F("Property Type", document.String("BSShaderPPLightingProperty")),
			document.F("Controller Type", document.String("BSMaterialEmittanceMultController")),
		),
	)))
	require.NoError(t, src.Set(seq, "Num Controlled Blocks", document.Uint(1)))
	for i := range 3 {
		shader := src.InsertBlock("BSShaderNoLightingProperty")
		require.NoError(t, src.Set(shader, "Name", document.String("Glow"+string(rune('0'+i)))))
		require.NoError(t, src.Set(shader, "Controller", document.Ref(ctl)))
	}

	d := NewDispatcher(ruleSet{
		"NiControllerSequence": func(ctx *Context, src int) (int, error) { return ctx.Sequence(src) },
		"NiFloatInterpolator":  func(ctx *Context, src int) (int, error) { return ctx.Exact(src) },
		"BSShaderNoLightingProperty": func(ctx *Context, src int) (int, error) {
			dst, err := ctx.NewBlock("BSEffectShaderProperty", src)
			if err != nil {
				return dst, err
			}
			name := document.GetOr(ctx.Source(), src, "Name", "")
			ctx.Controllers(controller.Request{Owner: dst, Source: src, Name: name, Target: dst})
			return dst, nil
		},
	})

	// --- Act ---
	res := Convert(context.Background(), d, src, Options{})

	// --- Assert ---
	require.True(t, res.Success, "%v", res.Diagnostics.Err())
	out := 0
	require.Equal(t, "NiControllerSequence", res.Dest.TypeName(out))
	require.Equal(t, 3, res.Dest.Len(out, "Controlled Blocks"))
	assert.Equal(t, uint64(3), document.GetOr(res.Dest, out, "Num Controlled Blocks", uint64(0)))

	controllers := map[int]bool{}
	names := map[string]bool{}
	for i := range 3 {
		entry := document.Join("Controlled Blocks", i)
		c, ok := res.Dest.Link(out, document.Join(entry, "Controller"))
		require.True(t, ok)
		controllers[c] = true
		names[document.GetOr(res.Dest, out, document.Join(entry, "Node Name"), "")] = true
		assert.Equal(t, "BSEffectShaderPropertyFloatController", res.Dest.TypeName(c))
		assert.Equal(t, "BSEffectShaderPropertyFloatController", document.GetOr(res.Dest, out, document.Join(entry, "Controller Type"), ""))
		assert.Equal(t, "BSEffectShaderProperty", document.GetOr(res.Dest, out, document.Join(entry, "Property Type"), ""))
		target, ok := res.Dest.Link(c, "Target")
		require.True(t, ok)
		assert.Equal(t, "BSEffectShaderProperty", res.Dest.TypeName(target))
	}
	assert.Len(t, controllers, 3)
	assert.Equal(t, map[string]bool{"Glow0": true, "Glow1": true, "Glow2": true}, names)
}

func TestDispatcher_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := NewDispatcher(ruleSet{"A": copyRule})

	// --- Act & Assert ---
	assert.PanicsWithValue(t, "rule for type 'A' already registered", func() {
		d.Register(copyRule, "A")
	})
}

func TestDispatcher_Validate(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	known := NewDispatcher(ruleSet{"NiNode": copyRule})
	unknown := NewDispatcher(ruleSet{"NiNode": copyRule, "NiImaginary": copyRule})

	// --- Act & Assert ---
	assert.NoError(t, known.Validate(document.LegacySchema()))
	err := unknown.Validate(document.LegacySchema())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NiImaginary")
	assert.Equal(t, []string{"NiImaginary", "NiNode"}, unknown.Types())
}

func TestTextures_Rewrite(t *testing.T) {
	t.Parallel()
	tx := DefaultTextures()
	cases := map[string]string{
		`textures\clutter\cup.dds`:           `textures\new_vegas\clutter\cup.dds`,
		`Data\Textures\clutter\cup.dds`:      `Textures\new_vegas\clutter\cup.dds`,
		`textures\new_vegas\clutter\cup.dds`: `textures\new_vegas\clutter\cup.dds`,
		`meshes\foo.dds`:                     `meshes\foo.dds`,
		``:                                   ``,
	}
	for in, want := range cases {
		assert.Equal(t, want, tx.Rewrite(in), in)
	}
}
