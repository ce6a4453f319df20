package lod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		path string
		want Props
	}{
		{
			name: "standard mesh",
			path: "meshes/architecture/wall01.nif.yaml",
			want: Props{Type: Standard},
		},
		{
			name: "landscape tile",
			path: "meshes/landscape/lod/wasteland/wasteland.level4.x-8.y12.nif.yaml",
			want: Props{Type: LODLandscape, Worldspace: "wasteland", Level: 4, X: -8, Y: 12,
				Output: "terrain/wasteland/wasteland.4.-8.12.btr.yaml"},
		},
		{
			name: "object tile compressed",
			path: "landscape/lod/wasteland/blocks/wasteland.level8.x0.y-16.nif.yaml.zst",
			want: Props{Type: LODObject, Worldspace: "wasteland", Level: 8, X: 0, Y: -16,
				Output: "terrain/wasteland/objects/wasteland.8.0.-16.bto.yaml.zst"},
		},
		{
			name: "high level object",
			path: "landscape/lod/wasteland/blocks/wasteland.level4.high.x4.y8.nif",
			want: Props{Type: LODObjectHigh, Worldspace: "wasteland", X: 4, Y: 8},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Act ---
			got, err := Detect(tc.path)

			// --- Assert ---
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetect_RejectsMalformedNames(t *testing.T) {
	t.Parallel()
	for _, p := range []string{
		"meshes/readme.txt",
		"landscape/lod/ws/ws.level4.x1.nif",
		"landscape/lod/ws/ws.level4.high.x1.y2.nif",
		"landscape/lod/ws/ws.lvl4.x1.y2.nif",
		"landscape/lod/ws/ws.level4.xa.y2.nif",
	} {
		_, err := Detect(p)
		assert.ErrorIs(t, err, ErrUnrecognizedFile, p)
	}
}

func TestLogicalName_StripsCodecSuffixes(t *testing.T) {
	t.Parallel()
	base, suffix := LogicalName("rock.nif.yaml.zst")
	assert.Equal(t, "rock.nif", base)
	assert.Equal(t, ".yaml.zst", suffix)

	base, suffix = LogicalName("rock.nif")
	assert.Equal(t, "rock.nif", base)
	assert.Empty(t, suffix)
}

func TestProps_Check(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Props{Type: Standard}.Check(false, false))
	assert.NoError(t, Props{Type: LODLandscape}.Check(true, false))
	assert.NoError(t, Props{Type: LODObject}.Check(false, true))
	assert.ErrorIs(t, Props{Type: Standard}.Check(true, false), ErrFileTypeMismatch)
	assert.ErrorIs(t, Props{Type: LODObject}.Check(false, false), ErrFileTypeMismatch)
}
