package exact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/testutil"
	"github.com/specialistvlad/nifconv/modules/nodes"
)

func TestRegister_ExtraSkipsConvertedTypes(t *testing.T) {
	t.Parallel()
	var d *convert.Dispatcher
	require.NotPanics(t, func() {
		d = convert.NewDispatcher(&nodes.Module{}, &Module{Extra: []string{"NiNode", "BSInvMarker"}})
	})
	_, ok := d.Rule("BSInvMarker")
	assert.True(t, ok)
	assert.Contains(t, d.Types(), "BSXFlags")
}

func TestOnExact_CopiesFieldsAndChildren(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	src := testutil.Legacy(t)
	bound := src.Add("BSBound",
		document.F("Name", document.String("BBX")),
		document.F("Center", document.Vector(0, 0, 10)),
		document.F("Dimensions", document.Vector(5, 5, 10)))

	// --- Act ---
	res := testutil.Run(t, src, &Module{})

	// --- Assert ---
	require.True(t, res.Success, res.Diagnostics.Err())
	require.Equal(t, 1, res.Dest.BlockCount())
	b, err := res.Dest.Block(0)
	require.NoError(t, err)
	want, err := src.Block(bound)
	require.NoError(t, err)
	assert.Equal(t, want, b)
}
