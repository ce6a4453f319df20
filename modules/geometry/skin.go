package geometry

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
	"github.com/specialistvlad/nifconv/internal/rules/shading"
	"github.com/specialistvlad/nifconv/internal/skin"
)

// skinInstance converts the skin instance of a shape into a modern skin
// instance with bone data, and packs the vertex weights into the shape's
// vertex data.
func skinInstance(ctx *convert.Context, c *copier.Copier, shape, shader int) error {
	inst := c.Link("Skin Instance")
	if inst < 0 {
		return nil
	}
	dst := ctx.Dest()
	out := dst.InsertBlock("BSSkin::Instance")
	ctx.Claim(inst, out)
	if err := dst.SetLink(shape, "Skin", out); err != nil {
		return err
	}

	ic := ctx.Copier(out, inst)
	ctx.Relink(ic, "Skeleton Root")
	if err := ctx.RelinkArray(ic, "Bones"); err != nil {
		return err
	}
	if err := ic.CopyIfPresent("Num Bones"); err != nil {
		return err
	}
	ic.Ignore("Num Partitions", "Partitions")
	ctx.IgnoreLink(ic, "Skin Partition", true)

	if data := ic.Link("Data"); data >= 0 {
		bd, err := boneData(ctx, shape, data)
		if err != nil {
			return err
		}
		if err := dst.SetLink(out, "Data", bd); err != nil {
			return err
		}
	}
	ic.Finish()

	desc := document.GetOr[uint32](dst, shape, "Vertex Desc", 0) | flags.VertexSkinned
	n := dst.Len(shape, "Vertex Data")
	tris := document.GetOr(dst, shape, "Num Triangles", 0)
	if err := dst.Set(shape, "Vertex Desc", document.Flags(desc)); err != nil {
		return err
	}
	if err := dst.Set(shape, "Data Size", document.Uint(dataSize(desc, n, tris))); err != nil {
		return err
	}
	return shading.AddFlags(dst, shader, flags.Word1, flags.Modern(flags.Word1, "Skinned"))
}

func boneData(ctx *convert.Context, shape, data int) (int, error) {
	src, dst := ctx.Source(), ctx.Dest()
	out := dst.InsertBlock("BSSkin::BoneData")
	ctx.Claim(data, out)

	dc := ctx.Copier(out, data)
	dc.Ignore("Skin Transform")
	n := dc.Len("Bone List")
	if err := dst.ResizeArray(out, "Bone List", n); err != nil {
		return out, err
	}
	if err := dst.Set(out, "Num Bones", document.Uint(uint64(n))); err != nil {
		return out, err
	}
	dc.Processed("Num Bones")
	for i := 0; i < n; i++ {
		base := document.Join("Bone List", i)
		pairs := [][2]string{
			{"Rotation", "Skin Transform/Rotation"},
			{"Translation", "Skin Transform/Translation"},
			{"Scale", "Skin Transform/Scale"},
			{"Bounding Sphere/Center", "Bounding Sphere Offset"},
			{"Bounding Sphere/Radius", "Bounding Sphere Radius"},
		}
		for _, p := range pairs {
			from := document.Join(base, p[1])
			if !dc.Has(from) {
				continue
			}
			if err := dc.CopyAs(document.Join(base, p[0]), from); err != nil {
				return out, err
			}
		}
		dc.Ignore(document.Join(base, "Num Vertices"))
		dc.Processed(document.Join(base, "Vertex Weights"))
	}

	if copier.ReadOr(dc, "Has Vertex Weights", true) {
		influences, err := skin.Influences(src, data)
		if err != nil {
			return out, err
		}
		packed, err := skin.Pack(dst.Len(shape, "Vertex Data"), influences)
		if err != nil {
			return out, err
		}
		packed.Report(ctx.Diagnostics(), diagnostic.At(data, src.TypeName(data)))
		if err := packed.Write(dst, shape); err != nil {
			return out, err
		}
	}
	dc.Finish()
	return out, nil
}
