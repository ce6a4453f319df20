package animation

import "github.com/specialistvlad/nifconv/internal/convert"

// Module implements the convert.Module interface for animation blocks
// reached outside a controller chain: standalone sequences, interpolators
// and their key data.
type Module struct{}

// Interpolators keep their layout; their key data is converted with them.
var Interpolators = []string{
	"NiFloatInterpolator",
	"NiPoint3Interpolator",
	"NiBoolInterpolator",
	"NiBoolTimelineInterpolator",
	"NiTransformInterpolator",
	"NiPathInterpolator",
	"NiLookAtInterpolator",
}

// Data are the key data blocks interpolators own.
var Data = []string{
	"NiFloatData",
	"NiPosData",
	"NiBoolData",
	"NiTransformData",
	"NiColorData",
}

// OnSequence converts a controller sequence. Its entries are completed
// once every controller in the document has been converted.
func OnSequence(ctx *convert.Context, src int) (int, error) {
	return ctx.Sequence(src)
}

// OnInterpolator copies an interpolator or key data block field for field.
func OnInterpolator(ctx *convert.Context, src int) (int, error) {
	return ctx.Exact(src)
}

// Register registers the animation rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnSequence, "NiControllerSequence")
	d.Register(OnInterpolator, Interpolators...)
	d.Register(OnInterpolator, Data...)
	d.Register(OnInterpolator, "NiDefaultAVObjectPalette")
}
