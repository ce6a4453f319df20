package exact

import (
	"log/slog"

	"github.com/specialistvlad/nifconv/internal/convert"
)

// Module implements the convert.Module interface for blocks whose layout
// did not change between versions. Extra adds types from the profile;
// types another module already converts are left to it.
type Module struct {
	Extra []string
}

// Defaults are copied field for field.
var Defaults = []string{
	"BSXFlags",
	"NiStringExtraData",
	"NiTextKeyExtraData",
	"NiFloatExtraData",
	"NiIntegerExtraData",
	"NiBinaryExtraData",
	"BSBound",
	"BSWArray",
	"NiAlphaProperty",
	"BSMultiBoundAABB",
	"BSMultiBoundOBB",
}

// OnExact copies a block and converts the blocks it owns.
func OnExact(ctx *convert.Context, src int) (int, error) {
	return ctx.Exact(src)
}

// Register registers the exact copy rule with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnExact, Defaults...)
	for _, t := range m.Extra {
		if _, ok := d.Rule(t); ok {
			slog.Debug("Exact copy type already has a rule.", "type", t)
			continue
		}
		d.Register(OnExact, t)
	}
}
