package nodes

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/rules"
)

// Module implements the convert.Module interface for scene graph nodes.
type Module struct{}

// Types are the node tags that keep their type across versions.
var Types = []string{
	"NiNode",
	"BSFadeNode",
	"BSOrderedNode",
	"NiBillboardNode",
	"BSValueNode",
	"BSDamageStage",
	"BSBlastNode",
	"BSDebrisNode",
	"BSMasterParticleSystem",
	"BSMultiBoundNode",
}

// OnNode converts a node and, recursively, its subtree.
func OnNode(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	dst, err := rules.NewObject(ctx, typ, src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	if _, err := rules.Header(ctx, c); err != nil {
		return dst, err
	}
	c.Ignore("Num Properties", "Properties", "Num Effects", "Effects")

	rules.Children(ctx, c, "Children", "Num Children")

	switch typ {
	case "BSOrderedNode":
		err = c.CopyIfPresent("Alpha Sort Bound", "Static Bound")
	case "NiBillboardNode":
		err = c.CopyIfPresent("Billboard Mode")
	case "BSValueNode":
		err = c.CopyIfPresent("Value", "Value Node Flags")
	case "BSDamageStage", "BSBlastNode", "BSDebrisNode":
		err = c.CopyIfPresent("Min", "Max", "Current")
	case "BSMasterParticleSystem":
		if err = c.CopyIfPresent("Max Emitter Objects", "Num Particle Systems"); err == nil {
			err = ctx.RelinkArray(c, "Particle Systems")
		}
	case "BSMultiBoundNode":
		if err = c.CopyIfPresent("Culling Mode"); err == nil && c.Has("Multi Bound") {
			ctx.ChildLink(c, "Multi Bound")
		}
	}
	if err != nil {
		return dst, err
	}
	c.Finish()
	return dst, nil
}

// OnMultiBound converts a multi bound and its bounding volume.
func OnMultiBound(ctx *convert.Context, src int) (int, error) {
	dst, err := ctx.NewBlock("BSMultiBound", src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	ctx.ChildLink(c, "Data")
	c.Finish()
	return dst, nil
}

// Register registers the node rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnNode, Types...)
	d.Register(OnMultiBound, "BSMultiBound")
}
