package particles

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/rules"
	"github.com/specialistvlad/nifconv/internal/rules/shading"
)

// Module implements the convert.Module interface for particle systems.
type Module struct{}

// Modifiers keep their layout across versions. Owned links such as
// colliders and colour data are converted with them, back references to
// the particle system are relinked.
var Modifiers = []string{
	"NiPSysAgeDeathModifier",
	"NiPSysBoundUpdateModifier",
	"NiPSysBoxEmitter",
	"NiPSysColorModifier",
	"NiPSysColliderManager",
	"NiPSysCylinderEmitter",
	"NiPSysDragModifier",
	"NiPSysGravityModifier",
	"NiPSysGrowFadeModifier",
	"NiPSysMeshEmitter",
	"NiPSysPositionModifier",
	"NiPSysRotationModifier",
	"NiPSysSpawnModifier",
	"NiPSysSphereEmitter",
	"NiPSysBombModifier",
	"BSPSysSimpleColorModifier",
	"BSPSysLODModifier",
	"BSPSysScaleModifier",
	"BSPSysInheritVelocityModifier",
	"BSPSysRecycleBoundModifier",
	"BSPSysSubTexModifier",
	"BSPSysStripUpdateModifier",
	"BSWindModifier",
}

// Colliders are the collider types a collider manager may chain.
var Colliders = []string{
	"NiPSysSphericalCollider",
	"NiPSysPlanarCollider",
}

// OnParticleSystem converts a particle system. Plain systems always get an
// effect shader; strip systems pick theirs from the legacy shader.
func OnParticleSystem(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	dst, err := rules.NewObject(ctx, typ, src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	name, err := rules.Header(ctx, c)
	if err != nil {
		return dst, err
	}

	if c.Len("Properties") > 0 {
		if _, err := shading.Build(ctx, shading.Request{
			Source: src,
			Owner:  dst,
			Name:   name,
			Effect: typ == "NiParticleSystem",
		}); err != nil {
			return dst, err
		}
	}
	c.Processed("Num Properties", "Properties")

	if c.Has("Skin Instance") {
		ctx.IgnoreLink(c, "Skin Instance", true)
	}
	c.Ignore("Material Data", "Num Materials", "Active Material", "Material Needs Update")
	if err := c.CopyIfPresent("World Space"); err != nil {
		return dst, err
	}
	rules.Children(ctx, c, "Modifiers", "Num Modifiers")
	if c.Has("Data") {
		ctx.ChildLink(c, "Data")
	}
	c.Finish()
	return dst, nil
}

var psysDataFields = []string{
	"Group ID", "BS Max Vertices", "Keep Flags", "Compress Flags",
	"Has Vertices", "BS Vector Flags", "Has Normals", "Center", "Radius",
	"Has Vertex Colors", "Consistency Flags", "Has Radii", "Num Active",
	"Has Sizes", "Has Rotations", "Has Rotation Angles", "Has Rotation Axes",
	"Has Texture Indices", "Num Subtexture Offsets", "Subtexture Offsets",
	"Has Rotation Speeds",
}

// OnParticleData converts particle data. Strip data becomes plain particle
// data; its strip settings and vertex budget are dropped.
func OnParticleData(ctx *convert.Context, src int) (int, error) {
	strip := ctx.Source().TypeName(src) == "BSStripPSysData"
	dst, err := ctx.NewBlock("NiPSysData", src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	for _, f := range psysDataFields {
		if strip && f == "BS Max Vertices" {
			c.Ignore(f)
			continue
		}
		if err := c.CopyIfPresent(f); err != nil {
			return dst, err
		}
	}
	if c.Has("Additional Data") {
		ctx.IgnoreLink(c, "Additional Data", false)
	}
	c.Ignore("Max Point Count", "Start Cap Size", "End Cap Size", "Do Z Prepass")
	c.Finish()
	return dst, nil
}

func onExact(ctx *convert.Context, src int) (int, error) { return ctx.Exact(src) }

// Register registers the particle rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnParticleSystem, "NiParticleSystem", "BSStripParticleSystem")
	d.Register(OnParticleData, "NiPSysData", "BSStripPSysData")
	d.Register(onExact, Modifiers...)
	d.Register(onExact, Colliders...)
}
