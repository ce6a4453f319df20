// Package rules holds the building blocks shared by the conversion rule
// modules: the scene-object header every node-like block carries, extra
// data lists and small vector helpers.
package rules

import (
	"github.com/specialistvlad/nifconv/internal/controller"
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// NewObject inserts the destination block of a scene object. Progress of
// controlled objects is held until the controller phases ran.
func NewObject(ctx *convert.Context, typeTag string, src int) (int, error) {
	if _, ok := ctx.Source().Link(src, "Controller"); ok {
		ctx.Hold()
	}
	return ctx.NewBlock(typeTag, src)
}

// Header copies the fields shared by every scene object and converts what
// hangs off them: extra data, the controller chain and the collision
// object. It returns the object's name.
func Header(ctx *convert.Context, c *copier.Copier) (string, error) {
	if err := c.CopyIfPresent("Name"); err != nil {
		return "", err
	}
	name := copier.ReadOr(c, "Name", "")

	ExtraData(ctx, c)

	if c.Has("Controller") {
		ctx.Controllers(controller.Request{
			Owner:  c.DestID(),
			Source: c.SourceID(),
			Name:   name,
			Target: -1,
		})
		c.Processed("Controller")
	}

	if err := c.CopyIfPresent("Flags", "Translation", "Rotation", "Scale"); err != nil {
		return name, err
	}
	if c.Has("Collision Object") {
		ctx.ChildLink(c, "Collision Object")
	}
	return name, nil
}

// ExtraData converts the extra data list. Dropped entries are removed and
// the count follows the list.
func ExtraData(ctx *convert.Context, c *copier.Copier) {
	if !c.Has("Extra Data List") {
		return
	}
	out := ctx.Children(c.DestID(), "Extra Data List", c.Links("Extra Data List"))
	c.Processed("Num Extra Data List")
	if err := c.Set("Num Extra Data List", document.Uint(uint64(len(out)))); err != nil {
		ctx.Errorf(c.SourceID(), diagnostic.CodeRuleFailed, "extra data count: %v", err)
	}
}

// Children converts a child list and rewrites its count field.
func Children(ctx *convert.Context, c *copier.Copier, list, count string) []int {
	if !c.Has(list) {
		return nil
	}
	out := ctx.Children(c.DestID(), list, c.Links(list))
	c.Processed(count)
	if err := c.Set(count, document.Uint(uint64(len(out)))); err != nil {
		ctx.Errorf(c.SourceID(), diagnostic.CodeRuleFailed, "%s: %v", count, err)
	}
	return out
}

// Scaled returns v multiplied by f.
func Scaled(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * f
	}
	return out
}

// ScaleField multiplies a vector or float field of a destination block in
// place. Missing fields are left alone.
func ScaleField(w document.Writer, id int, path string, f float64) error {
	v, err := w.Value(id, path)
	if err != nil {
		return nil
	}
	switch v.Kind {
	case document.KindVector:
		return w.Set(id, path, document.Vector(Scaled(v.AsVector(), f)...))
	case document.KindFloat:
		return w.Set(id, path, document.Float(v.AsFloat()*f))
	}
	return nil
}
