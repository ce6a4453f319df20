package lod

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
)

// landscapeTile builds root -> {land, water} with a multibound at level 4,
// cell (1, 2).
func landscapeTile(t *testing.T, shapes int) *document.Arena {
	t.Helper()
	d := document.New(document.VersionModern, document.ModernSchema())
	root := d.InsertBlock("BSMultiBoundNode")
	bound := d.InsertBlock("BSMultiBound")
	aabb := d.InsertBlock("BSMultiBoundAABB")
	require.NoError(t, d.Set(root, "Translation", document.Vector(4096, 8192, 10)))
	require.NoError(t, d.SetLink(root, "Multi Bound", bound))
	require.NoError(t, d.SetLink(bound, "Data", aabb))
	require.NoError(t, d.Set(aabb, "Position", document.Vector(4096+8192, 8192+8192, 5)))

	var children []int
	for i := 0; i < shapes; i++ {
		shape := d.InsertBlock("BSTriShape")
		shader := d.InsertBlock("BSLightingShaderProperty")
		require.NoError(t, d.Set(shape, "Translation", document.Vector(0, 0, 0)))
		require.NoError(t, d.SetLink(shape, "Shader Property", shader))
		require.NoError(t, d.Set(shape, "Vertex Data", document.Array(document.KindStruct,
			document.Struct(document.F("Vertex", document.Vector(0, 0, float64(-2*i)))),
			document.Struct(document.F("Vertex", document.Vector(0, 0, float64(3*i)))),
		)))
		children = append(children, shape)
	}
	require.NoError(t, d.Set(root, "Children", document.RefArray(children...)))
	require.NoError(t, d.Set(root, "Num Children", document.Uint(uint64(len(children)))))
	return d
}

func TestLandscape_SplitsWaterIntoBranch(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := landscapeTile(t, 3)
	var diags diagnostic.Diagnostics
	p := &Pass{Dst: d, Props: Props{Type: LODLandscape, Level: 4, X: 1, Y: 2}, Diags: &diags}

	// --- Act ---
	err := p.Landscape()

	// --- Assert ---
	require.NoError(t, err)
	assert.NoError(t, diags.Err())

	children := d.LinkArray(0, "Children")
	require.Len(t, children, 2)
	assert.Equal(t, uint64(2), document.GetOr(d, 0, "Num Children", uint64(0)))
	land, water := children[0], children[1]
	assert.Equal(t, "Land", document.GetOr(d, land, "Name", ""))
	assert.Equal(t, "BSMultiBoundNode", d.TypeName(water))
	assert.Equal(t, "WATER", document.GetOr(d, water, "Name", ""))
	assert.Len(t, d.LinkArray(water, "Children"), 2)

	shader, _ := d.Link(land, "Shader Property")
	v, err := d.Value(shader, "Skyrim Shader Type")
	require.NoError(t, err)
	assert.Equal(t, "LOD Landscape Noise", v.S)

	bound, _ := d.Link(water, "Multi Bound")
	aabb, ok := d.Link(bound, "Data")
	require.True(t, ok)
	pos, _ := d.Value(aabb, "Position")
	ext, _ := d.Value(aabb, "Extent")
	// water vertices span z in [-4, 6] at level 4.
	assert.Equal(t, []float64{8192, 8192, 4}, pos.V)
	assert.Equal(t, []float64{8192, 8192, 20}, ext.V)

	rootPos, _ := d.Value(0, "Translation")
	assert.Equal(t, []float64{0, 0, 10}, rootPos.V)
}

func TestLandscape_WaterShaderSettings(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := landscapeTile(t, 2)
	var diags diagnostic.Diagnostics
	p := &Pass{Dst: d, Props: Props{Type: LODLandscape, Level: 4, X: 1, Y: 2}, Diags: &diags}

	// --- Act ---
	require.NoError(t, p.Landscape())

	// --- Assert ---
	water := d.LinkArray(0, "Children")[1]
	shape := d.LinkArray(water, "Children")[0]
	shader, _ := d.Link(shape, "Shader Property")
	assert.Equal(t, flags.Modern(flags.Word1, "ZBuffer_Test"), document.GetOr(d, shader, "Shader Flags 1", uint32(0)))
	assert.Equal(t, 100.0, document.GetOr(d, shader, "Soft Falloff Depth", 0.0))
	assert.Equal(t, uint64(255), document.GetOr(d, shader, "Lighting Influence", uint64(0)))
}

func TestLandscape_MisplacedTranslationIsReported(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := landscapeTile(t, 1)
	var diags diagnostic.Diagnostics
	p := &Pass{Dst: d, Props: Props{Type: LODLandscape, Level: 4, X: 5, Y: 2}, Diags: &diags}

	// --- Act ---
	require.NoError(t, p.Landscape())

	// --- Assert ---
	assert.NotEmpty(t, diags.ByCode(diagnostic.CodeFileTypeMismatch))
}

// rejectingWriter fails every write to one field path.
type rejectingWriter struct {
	*document.Arena
	path string
}

var errRejected = errors.New("rejected")

func (w rejectingWriter) Set(id int, path string, v document.Value) error {
	if path == w.path {
		return errRejected
	}
	return w.Arena.Set(id, path, v)
}

func TestLandscape_FailedWriteIsReported(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := landscapeTile(t, 1)
	var diags diagnostic.Diagnostics
	p := &Pass{
		Dst:   rejectingWriter{Arena: d, path: "Culling Mode"},
		Props: Props{Type: LODLandscape, Level: 4, X: 1, Y: 2},
		Diags: &diags,
	}

	// --- Act ---
	err := p.Landscape()

	// --- Assert ---
	require.NoError(t, err)
	failed := diags.ByCode(diagnostic.CodeRuleFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 0, failed[0].Block)
	assert.Equal(t, "Culling Mode", failed[0].FieldPath)
	assert.Contains(t, failed[0].Message, errRejected.Error())
	assert.Equal(t, "chunk", document.GetOr(d, 0, "Name", ""))
}

func TestLandscape_RejectsUnknownRoot(t *testing.T) {
	t.Parallel()
	d := document.New(document.VersionModern, nil)
	d.InsertBlock("NiNode")
	var diags diagnostic.Diagnostics
	p := &Pass{Dst: d, Props: Props{Type: LODLandscape, Level: 4}, Diags: &diags}

	err := p.Landscape()

	assert.ErrorIs(t, err, ErrInvalidStructure)
	assert.True(t, diags.HasErrors())
}

func TestObjects_WrapsRootAndAddsAlpha(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	d := document.New(document.VersionModern, document.ModernSchema())
	root := d.InsertBlock("BSMultiBoundNode")
	shape := d.InsertBlock("BSSubIndexTriShape")
	shader := d.InsertBlock("BSLightingShaderProperty")
	require.NoError(t, d.Set(root, "Name", document.String("tile")))
	require.NoError(t, d.Set(root, "Children", document.RefArray(shape)))
	require.NoError(t, d.SetLink(shape, "Shader Property", shader))
	var diags diagnostic.Diagnostics
	p := &Pass{Dst: d, Props: Props{Type: LODObject}, Diags: &diags}

	// --- Act ---
	err := p.Objects()

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, "NiNode", d.TypeName(0))
	assert.Equal(t, "obj", document.GetOr(d, 0, "Name", ""))
	assert.Equal(t, []int{1}, d.LinkArray(0, "Children"))
	assert.Equal(t, "", document.GetOr(d, 1, "Name", "x"))
	assert.Equal(t, "obj", document.GetOr(d, 2, "Name", ""))

	alpha, ok := d.Link(2, "Alpha Property")
	require.True(t, ok)
	assert.Equal(t, "NiAlphaProperty", d.TypeName(alpha))
	assert.Equal(t, uint32(4844), document.GetOr(d, alpha, "Flags", uint32(0)))
}
