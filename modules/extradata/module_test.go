package extradata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/testutil"
	"github.com/specialistvlad/nifconv/modules/nodes"
)

func TestOnFurnitureMarker(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := testutil.Legacy(t)
	position := func(x float64) document.Value {
		return document.Struct(
			document.F("Offset", document.Vector(x, 0, 40)),
			document.F("Orientation", document.Uint(0)),
			document.F("Position Ref 1", document.Uint(1)),
			document.F("Position Ref 2", document.Uint(2)))
	}
	src.Add("BSFurnitureMarker",
		document.F("Name", document.String("FRN")),
		document.F("Num Positions", document.Uint(2)),
		document.F("Positions", document.Array(document.KindStruct, position(-20), position(20))))

	// --- Act ---
	res := testutil.Run(t, src, &Module{})

	// --- Assert ---
	require.True(t, res.Success, res.Diagnostics.Err())
	dst := res.Dest
	m := testutil.Only(t, dst, "BSFurnitureMarkerNode")
	assert.Equal(t, "FRN", document.GetOr(dst, m, "Name", ""))
	assert.Equal(t, 2, dst.Len(m, "Positions"))
	v, err := dst.Value(m, "Positions/1/Offset")
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 0, 40}, v.AsVector())
	assert.False(t, dst.Has(m, "Positions/0/Orientation"))
	assert.Empty(t, res.Diagnostics.Infos, "every source field is accounted for")
}

func TestOnDecalPlacement_Dropped(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := testutil.Legacy(t)
	root := src.Add("NiNode", document.F("Name", document.String("Root")))
	decal := src.Add("BSDecalPlacementVectorExtraData", document.F("Name", document.String("Decal")))
	src.Put(root, "Extra Data List", document.RefArray(decal)).Put(root, "Num Extra Data List", document.Uint(1))

	// --- Act ---
	res := testutil.Run(t, src, &Module{}, &nodes.Module{})

	// --- Assert ---
	require.True(t, res.Success, res.Diagnostics.Err())
	assert.Equal(t, 1, res.Dest.BlockCount())
	assert.Empty(t, res.Dest.LinkArray(0, "Extra Data List"))
	assert.Equal(t, uint64(0), document.GetOr[uint64](res.Dest, 0, "Num Extra Data List", 9))
	assert.Equal(t, 2, res.Handled)
}
