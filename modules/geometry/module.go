package geometry

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
	"github.com/specialistvlad/nifconv/internal/rules"
	"github.com/specialistvlad/nifconv/internal/rules/shading"
)

// ErrNoData is returned for shapes without a geometry data block.
var ErrNoData = errors.New("shape has no geometry data")

// Module implements the convert.Module interface for legacy triangle
// geometry. Every variant becomes a packed-vertex modern shape.
type Module struct{}

// OnTriShape converts strips, triangle lists and segmented shapes.
func OnTriShape(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	out := "BSTriShape"
	if typ == "BSSegmentedTriShape" {
		out = "BSSubIndexTriShape"
	}
	dst, err := rules.NewObject(ctx, out, src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	name, err := rules.Header(ctx, c)
	if err != nil {
		return dst, err
	}
	if name == "" {
		ctx.Warnf(src, diagnostic.CodeUnknownStructure, "%s has no name", typ)
	}

	shade, err := shading.Build(ctx, shading.Request{Source: src, Owner: dst, Name: name})
	if err != nil {
		return dst, err
	}
	c.Processed("Num Properties", "Properties")

	data := c.Link("Data")
	if data < 0 {
		return dst, ErrNoData
	}
	if err := shapeData(ctx, dst, data, shade.Shader); err != nil {
		return dst, err
	}

	if typ == "NiTriStrips" && shade.Legacy == "BSShaderPPLightingProperty" &&
		flags.ModelSpaceNormals(document.GetOr[uint32](ctx.Source(), data, "BS Vector Flags", 0)) {
		if err := shading.AddFlags(ctx.Dest(), shade.Shader, flags.Word1, flags.Modern(flags.Word1, "Model_Space_Normals")); err != nil {
			return dst, err
		}
	}

	if c.Has("Skin Instance") {
		if err := skinInstance(ctx, c, dst, shade.Shader); err != nil {
			return dst, fmt.Errorf("skin: %w", err)
		}
	}
	if typ == "BSSegmentedTriShape" {
		if err := segments(c, ctx.Dest(), dst); err != nil {
			return dst, err
		}
	}
	c.Ignore("Num Materials", "Material Name", "Material Extra Data", "Active Material",
		"Dirty Flag", "Has Shader", "Shader Name", "Unknown Integer")
	c.Finish()
	return dst, nil
}

// shapeData folds the legacy data block into the shape itself. Data
// blocks shared by several shapes are rebuilt for each of them.
func shapeData(ctx *convert.Context, shape, data, shader int) error {
	src, dst := ctx.Source(), ctx.Dest()
	g := readGeometry(src, data)
	ctx.Ignore(data, true)

	if level := ctx.File().Level; level > 1 {
		g.scaleDown(float64(level))
		scale := document.GetOr(dst, shape, "Scale", 1.0)
		if err := dst.Set(shape, "Scale", document.Float(scale*float64(level))); err != nil {
			return err
		}
	}

	if s := g.uvScale(); s > 1 {
		uv := []float64{1, 1}
		if v, err := dst.Value(shader, "UV Scale"); err == nil && len(v.AsVector()) == 2 {
			uv = v.AsVector()
		}
		if err := dst.Set(shader, "UV Scale", document.Vector(rules.Scaled(uv, s)...)); err != nil {
			return err
		}
	}
	if i := g.overflows(); i >= 0 {
		ctx.Warnf(data, diagnostic.CodeUnknownStructure, "vertex %d exceeds half float range", i)
	}
	return g.write(dst, shape, g.desc())
}

// segments copies the segment table of a segmented shape and totals the
// primitive count.
func segments(c *copier.Copier, w document.Writer, dst int) error {
	if err := c.CopyIfPresent("Num Segments"); err != nil {
		return err
	}
	n := c.Len("Segment")
	if err := w.Set(dst, "Total Segments", document.Uint(uint64(n))); err != nil {
		return err
	}
	if err := w.ResizeArray(dst, "Segment", n); err != nil {
		return err
	}
	var primitives uint64
	for i := 0; i < n; i++ {
		base := document.Join("Segment", i)
		if err := c.CopyAs(document.Join(base, "Start Index"), document.Join(base, "Index")); err != nil {
			return err
		}
		if err := c.CopyAs(document.Join(base, "Num Primitives"), document.Join(base, "Num Tris in Segment")); err != nil {
			return err
		}
		primitives += copier.ReadOr[uint64](c, document.Join(base, "Num Tris in Segment"), 0)
		c.Ignore(document.Join(base, "Flags"))
	}
	return w.Set(dst, "Num Primitives", document.Uint(primitives))
}

// Register registers the geometry rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnTriShape, "NiTriShape", "NiTriStrips", "BSSegmentedTriShape")
}
