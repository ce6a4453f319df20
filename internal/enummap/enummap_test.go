package enummap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHavokMaterial(t *testing.T) {
	t.Parallel()
	m := HavokMaterial()
	tests := map[string]string{
		"FO_HAV_MAT_HEAVY_STONE":                "FO4_HAV_MAT_STONE_HEAVY",
		"FO_HAV_MAT_BOTTLECAP":                  "FO4_HAV_MAT_COIN",
		"FO_HAV_MAT_LUNCHBOX":                   "FO4_HAV_MAT_GENERIC",
		"FO_HAV_MAT_METAL_PLATFORM":             "FO4_HAV_MAT_METAL",
		"FO_HAV_MAT_STONE_STAIRS":               "FO4_HAV_MAT_STONE_STAIRS",
		"FO_HAV_MAT_METAL_STAIRS":               "FO4_HAV_MAT_METAL",
		"FO_HAV_MAT_HEAVY_WOOD_STAIRS":          "FO4_HAV_MAT_WOOD_HEAVY",
		"FO_HAV_MAT_HEAVY_WOOD_STAIRS_PLATFORM": "FO4_HAV_MAT_WOOD_STAIRS",
		"FO_HAV_MAT_BOTTLECAP_STAIRS_PLATFORM":  "FO4_HAV_MAT_GENERIC",
		"FO_HAV_MAT_PISTOL_STAIRS_PLATFORM":     "FO4_HAV_MAT_WEAPON_PISTOL",
	}
	for from, want := range tests {
		got, err := m.Translate(from)
		require.NoError(t, err, from)
		assert.Equal(t, want, got, from)
	}
	assert.Equal(t, 4*len(materialBases), m.Len())
}

func TestHavokLayer(t *testing.T) {
	t.Parallel()
	m := HavokLayer()

	got, err := m.Translate("FOL_CHARCONTROLLER")
	require.NoError(t, err)
	assert.Equal(t, "FO4L_CHARACTER_CONTROLLER", got)

	_, err = m.Translate("FOL_BOGUS")
	assert.ErrorIs(t, err, ErrUnmapped)
}

func TestOverride_DoesNotMutateOriginal(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	base := HavokLayer()

	// --- Act ---
	over := base.Override(map[string]string{"FOL_DEADBIP": "FO4L_BIPED"})

	// --- Assert ---
	got, _ := over.Translate("FOL_DEADBIP")
	assert.Equal(t, "FO4L_BIPED", got)
	got, _ = base.Translate("FOL_DEADBIP")
	assert.Equal(t, "FO4L_UNIDENTIFIED", got)
}

func TestNew_DuplicatePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { New("x", Pair{"A", "B"}, Pair{"A", "C"}) })
}

func TestSet_LookupAndReplace(t *testing.T) {
	t.Parallel()
	s := Defaults()
	m, ok := s.Lookup("havok_layer")
	require.True(t, ok)
	require.True(t, s.Replace("havok_layer", m.Override(map[string]string{"FOL_NULL": "FO4L_STATIC"})))

	got, _ := s.Layer.Translate("FOL_NULL")
	assert.Equal(t, "FO4L_STATIC", got)
	assert.False(t, s.Replace("nope", m))
}
