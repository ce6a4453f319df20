package app

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/modules/animation"
	"github.com/specialistvlad/nifconv/modules/collision"
	"github.com/specialistvlad/nifconv/modules/exact"
	"github.com/specialistvlad/nifconv/modules/extradata"
	"github.com/specialistvlad/nifconv/modules/geometry"
	"github.com/specialistvlad/nifconv/modules/lights"
	"github.com/specialistvlad/nifconv/modules/nodes"
	"github.com/specialistvlad/nifconv/modules/particles"
)

// coreModules is the definitive list of rule modules compiled into the
// nifconv binary.
var coreModules = []convert.Module{
	&nodes.Module{},
	&extradata.Module{},
	&geometry.Module{},
	&collision.Module{},
	&particles.Module{},
	&lights.Module{},
	&animation.Module{},
}

// Modules returns the core modules followed by the exact-copy module.
// The exact-copy module must come last so that extra types already
// converted by a rule are skipped.
func Modules(extraExact []string) []convert.Module {
	mods := make([]convert.Module, 0, len(coreModules)+1)
	mods = append(mods, coreModules...)
	return append(mods, &exact.Module{Extra: extraExact})
}
