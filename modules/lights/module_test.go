package lights

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/testutil"
)

func TestOnLight_Point(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := testutil.Legacy(t)
	src.Add("NiPointLight",
		document.F("Name", document.String("Lamp")),
		document.F("Switch State", document.Bool(true)),
		document.F("Num Affected Nodes", document.Uint(0)),
		document.F("Dimmer", document.Float(0.8)),
		document.F("Diffuse Color", document.Vector(1, 0.5, 0.25)),
		document.F("Constant Attenuation", document.Float(0)),
		document.F("Linear Attenuation", document.Float(0.01)),
		document.F("Quadratic Attenuation", document.Float(0)))

	// --- Act ---
	res := testutil.Run(t, src, &Module{})

	// --- Assert ---
	require.True(t, res.Success, res.Diagnostics.Err())
	dst := res.Dest
	l := testutil.Only(t, dst, "NiPointLight")
	assert.Equal(t, 0.8, document.GetOr(dst, l, "Dimmer", 0.0))
	assert.Equal(t, 0.01, document.GetOr(dst, l, "Linear Attenuation", 0.0))
	assert.False(t, dst.Has(l, "Switch State"))
	assert.Empty(t, res.Diagnostics.Infos)
}

func TestOnLight_AmbientHasNoAttenuation(t *testing.T) {
	t.Parallel()
	src := testutil.Legacy(t)
	src.Add("NiAmbientLight",
		document.F("Name", document.String("Sky")),
		document.F("Ambient Color", document.Vector(0.1, 0.1, 0.1)),
		document.F("Linear Attenuation", document.Float(0.5)))

	res := testutil.Run(t, src, &Module{})

	require.True(t, res.Success)
	l := testutil.Only(t, res.Dest, "NiAmbientLight")
	assert.False(t, res.Dest.Has(l, "Linear Attenuation"))
	unused := res.Diagnostics.ByCode(diagnostic.CodeUnusedField)
	require.Len(t, unused, 1)
	assert.Equal(t, "Linear Attenuation", unused[0].FieldPath)
}

func TestOnCamera(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := testutil.Legacy(t)
	cam := src.Add("NiCamera",
		document.F("Name", document.String("Cam")),
		document.F("Frustum Near", document.Float(1)),
		document.F("Frustum Far", document.Float(5000)),
		document.F("LOD Adjust", document.Float(1)))
	mat := src.Add("NiMaterialProperty", document.F("Alpha", document.Float(1)))
	src.Put(cam, "Properties", document.RefArray(mat)).Put(cam, "Num Properties", document.Uint(1))

	// --- Act ---
	res := testutil.Run(t, src, &Module{})

	// --- Assert ---
	assert.False(t, res.Success, "properties on a camera are reported")
	assert.Contains(t, testutil.Codes(res.Diagnostics.Errors), diagnostic.CodeUnsupported)
	assert.Empty(t, res.Diagnostics.ByCode(diagnostic.CodeUnhandledBlock))
	c := testutil.Only(t, res.Dest, "NiCamera")
	assert.Equal(t, 5000.0, document.GetOr(res.Dest, c, "Frustum Far", 0.0))
	assert.False(t, res.Dest.Has(c, "Properties"))
}
