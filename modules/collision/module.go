package collision

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/rules"
)

// Module implements the convert.Module interface for Havok collision:
// collision objects, rigid bodies with their shape trees, phantoms and
// constraints.
type Module struct{}

// havokScale is the factor legacy Havok positions are stored at.
const havokScale = 0.1

// OnCollisionObject converts a collision object. Its target is the node
// that owns it, relinked once that node exists.
func OnCollisionObject(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	dst, err := ctx.NewBlock(typ, src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	if err := c.CopyIfPresent("Flags"); err != nil {
		return dst, err
	}
	ctx.Relink(c, "Target")
	ctx.ChildLink(c, "Body")
	if typ == "bhkBlendCollisionObject" {
		if err := c.CopyIfPresent("Heir Gain", "Vel Gain"); err != nil {
			return dst, err
		}
	}
	c.Finish()
	return dst, nil
}

// rigidBodySpecial are the fields OnRigidBody computes instead of copying.
var rigidBodySpecial = map[string]bool{
	"Shape":               true,
	"Layer":               true,
	"Havok Filter Copy":   true,
	"Mass":                true,
	"Motion System":       true,
	"Solver Deactivation": true,
	"Quality Type":        true,
	"Deactivator Type":    true,
	"Num Constraints":     true,
	"Constraints":         true,
	"Time Factor":         true,
	"Unused Byte 1":       true,
	"Unused Byte 2":       true,
	"Unknown Int 1":       true,
	"Unknown Int 2":       true,
	"Unknown Bytes 1":     true,
	"Unused Bytes":        true,
	"Unused":              true,
	"Unused 2":            true,
}

// OnRigidBody converts a rigid body and its shape tree. A massless body
// becomes fixed; the scale collected from the shapes is collapsed into
// its position.
func OnRigidBody(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	dst, err := ctx.NewBlock(typ, src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	w := ctx.Dest()

	var sc scale
	if shape := c.Link("Shape"); shape >= 0 {
		id := convertShape(ctx, shape, &sc)
		if err := w.SetLink(dst, "Shape", id); err != nil {
			return dst, err
		}
	}

	if err := layer(ctx, c, "Layer"); err != nil {
		return dst, err
	}
	if err := layer(ctx, c, document.Join("Havok Filter Copy", "Layer")); err != nil {
		return dst, err
	}
	if err := c.CopyIfPresent(document.Join("Havok Filter Copy", "Flags and Part Number"),
		document.Join("Havok Filter Copy", "Group")); err != nil {
		return dst, err
	}

	if err := copyRest(ctx, c); err != nil {
		return dst, err
	}
	if typ == "bhkSimpleShapePhantom" {
		c.Finish()
		return dst, nil
	}
	if sc.set {
		for _, f := range []string{"Translation", "Center"} {
			if err := rules.ScaleField(w, dst, f, havokScale); err != nil {
				return dst, err
			}
		}
	}
	if err := w.Set(dst, "Time Factor", document.Float(1)); err != nil {
		return dst, err
	}
	if err := w.Set(dst, "Rolling Friction Multiplier", document.Float(0)); err != nil {
		return dst, err
	}
	if err := motion(c); err != nil {
		return dst, err
	}
	if c.Has("Constraints") {
		rules.Children(ctx, c, "Constraints", "Num Constraints")
	}
	c.Finish()
	return dst, nil
}

// copyRest copies every plain field the rigid body rule does not compute.
func copyRest(ctx *convert.Context, c *copier.Copier) error {
	b, err := ctx.Source().Block(c.SourceID())
	if err != nil {
		return err
	}
	for _, f := range b.Fields {
		if rigidBodySpecial[f.Name] || f.Value.Kind.IsLink() {
			continue
		}
		if err := c.CopyAs(f.Name, f.Name); err != nil {
			return err
		}
	}
	c.Ignore("Deactivator Type", "Time Factor", "Unused Byte 1", "Unused Byte 2", "Unknown Int 1",
		"Unknown Int 2", "Unknown Bytes 1", "Unused Bytes", "Unused", "Unused 2")
	return nil
}

// layer translates a collision layer through the layer map.
func layer(ctx *convert.Context, c *copier.Copier, path string) error {
	opt, err := copier.Read[string](c, path)
	if err != nil {
		return nil
	}
	return c.Set(path, document.Enum(ctx.Enum(c.SourceID(), "havok_layer", opt)))
}

func motion(c *copier.Copier) error {
	mass := copier.ReadOr(c, "Mass", 0.0)
	if err := c.Set("Mass", document.Float(mass)); err != nil {
		return err
	}
	if mass == 0 {
		c.Processed("Motion System", "Solver Deactivation", "Quality Type")
		if err := c.Set("Motion System", document.Enum("MO_SYS_INVALID")); err != nil {
			return err
		}
		if err := c.Set("Enable Deactivation", document.Bool(false)); err != nil {
			return err
		}
		return c.Set("Quality Type", document.Enum("MO_QUAL_FIXED"))
	}

	system := copier.ReadOr(c, "Motion System", "MO_SYS_INVALID")
	if system == "MO_SYS_FIXED" {
		system = "MO_SYS_INVALID"
	}
	if err := c.Set("Motion System", document.Enum(system)); err != nil {
		return err
	}
	switch solver := copier.ReadOr(c, "Solver Deactivation", ""); solver {
	case "", "SOLVER_DEACTIVATION_INVALID", "SOLVER_DEACTIVATION_OFF":
	default:
		if err := c.Set("Enable Deactivation", document.Bool(true)); err != nil {
			return err
		}
		if err := c.Set("Solver Deactivation", document.Enum(solver)); err != nil {
			return err
		}
	}
	return c.CopyIfPresent("Quality Type")
}

// OnConstraint copies a constraint; its entities are relinked to the
// converted rigid bodies.
func OnConstraint(ctx *convert.Context, src int) (int, error) {
	return ctx.Exact(src)
}

// OnLiquidAction copies a liquid action with its user data cleared.
func OnLiquidAction(ctx *convert.Context, src int) (int, error) {
	dst, err := ctx.Exact(src)
	if err != nil {
		return dst, err
	}
	return dst, ctx.Dest().Set(dst, "User Data", document.Uint(0))
}

// Register registers the collision rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnCollisionObject, "bhkCollisionObject", "bhkBlendCollisionObject", "bhkSPCollisionObject")
	d.Register(OnRigidBody, "bhkRigidBody", "bhkRigidBodyT", "bhkSimpleShapePhantom")
	d.Register(OnConstraint,
		"bhkLimitedHingeConstraint",
		"bhkRagdollConstraint",
		"bhkHingeConstraint",
		"bhkMalleableConstraint",
		"bhkPrismaticConstraint",
		"bhkBreakableConstraint",
		"bhkStiffSpringConstraint",
		"bhkOrientHingedBodyAction",
	)
	d.Register(OnLiquidAction, "bhkLiquidAction")
}
