package shading

import (
	"fmt"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
)

var falloffs = []string{"Falloff Start Angle", "Falloff Stop Angle", "Falloff Start Opacity", "Falloff Stop Opacity"}

// lighting folds a per-pixel or unlit legacy shader.
func (b *builder) lighting(c *copier.Copier) error {
	pp := b.ctx.Source().TypeName(c.SourceID()) == "BSShaderPPLightingProperty"
	c.Processed("Shader Flags", "Shader Flags 2")
	c.Ignore("Shader Type", "Texture Clamp Mode")
	b.set("Texture Clamp Mode", document.Uint(3))

	switch {
	case b.kind == flags.Lighting && pp:
		if ts := c.Link("Texture Set"); ts >= 0 {
			id, err := TextureSet(b.ctx, ts)
			if err != nil {
				return err
			}
			if err := b.ctx.Dest().SetLink(b.shader, "Texture Set", id); err != nil {
				return err
			}
		}
		c.Ignore("Refraction Fire Period", "Parallax Max Passes", "Parallax Scale")
		return c.CopyIfPresent("Environment Map Scale", "Refraction Strength", "Emissive Color")

	case b.kind == flags.Lighting:
		file := copier.ReadOr(c, "File Name", "")
		c.Ignore(falloffs...)
		c.Ignore("Environment Map Scale")
		id, err := NewTextureSet(b.ctx, file)
		if err != nil {
			return err
		}
		return b.ctx.Dest().SetLink(b.shader, "Texture Set", id)

	case pp:
		ts := c.Link("Texture Set")
		if ts >= 0 {
			paths, err := document.GetArray[string](b.ctx.Source(), ts, "Textures")
			if err != nil {
				return err
			}
			if len(paths) < 6 {
				return fmt.Errorf("texture set %d has %d textures, effect shaders need 6", ts, len(paths))
			}
			rw := b.ctx.Textures().Rewrite
			b.set("Source Texture", document.String(rw(paths[0])))
			b.set("Normal Texture", document.String(rw(paths[1])))
			b.set("Env Map Texture", document.String(rw(paths[4])))
			b.set("Env Mask Texture", document.String(rw(paths[5])))
			b.ctx.Ignore(ts, false)
		}
		c.Ignore("Refraction Strength", "Refraction Fire Period", "Parallax Max Passes", "Parallax Scale", "Emissive Color")
		b.set("Emissive Color", document.Vector(1, 1, 1, 1))
		b.fullFalloff()
		return c.CopyIfPresent("Environment Map Scale")

	default:
		if file := copier.ReadOr(c, "File Name", ""); file != "" {
			b.set("Source Texture", document.String(b.ctx.Textures().Rewrite(file)))
		}
		c.Ignore(falloffs...)
		c.Ignore("Environment Map Scale")
		b.fullFalloff()
		return nil
	}
}

func (b *builder) fullFalloff() {
	for _, f := range falloffs {
		b.set(f, document.Float(1))
	}
}

// shaderProperty folds the single-texture legacy shaders.
func (b *builder) shaderProperty(c *copier.Copier) error {
	c.Processed("Shader Flags", "Shader Flags 2")
	c.Ignore("Shader Type")

	switch b.ctx.Source().TypeName(c.SourceID()) {
	case "WaterShaderProperty":
		scale := copier.ReadOr(c, "Environment Map Scale", 1.0)
		if scale != 1 {
			b.set("UV Scale", document.Vector(scale, scale))
		}
		c.Ignore("Texture Clamp Mode")
		return nil

	case "TallGrassShaderProperty":
		id, err := NewTextureSet(b.ctx, copier.ReadOr(c, "File Name", ""))
		if err != nil {
			return err
		}
		c.Ignore("Environment Map Scale", "Texture Clamp Mode")
		return b.ctx.Dest().SetLink(b.shader, "Texture Set", id)

	case "SkyShaderProperty":
		b.source(c)
		c.Ignore("Environment Map Scale", "Texture Clamp Mode")
		return c.CopyIfPresent("Sky Object Type")

	default:
		b.source(c)
		return c.CopyIfPresent("Texture Clamp Mode", "Environment Map Scale")
	}
}

func (b *builder) source(c *copier.Copier) {
	if file := copier.ReadOr(c, "File Name", ""); file != "" {
		b.set("Source Texture", document.String(b.ctx.Textures().Rewrite(file)))
	}
}

// material keeps the emissive part of a legacy material.
func (b *builder) material(c *copier.Copier) error {
	c.Ignore("Ambient Color", "Diffuse Color", "Specular Color", "Glossiness")
	if b.kind == flags.Sky || b.kind == flags.Water {
		c.Ignore("Emissive Color", "Emissive Mult", "Alpha")
		return nil
	}
	if c.Has("Emissive Mult") {
		if err := c.CopyAs("Emissive Multiple", "Emissive Mult"); err != nil {
			return err
		}
	}
	if rgb := c.Vector("Emissive Color"); len(rgb) >= 3 {
		b.set("Emissive Color", document.Vector(rgb[0], rgb[1], rgb[2], 1))
	}
	if b.kind == flags.Lighting {
		return c.CopyIfPresent("Alpha")
	}
	c.Ignore("Alpha")
	return nil
}

// texturing keeps only the base map, and only on effect shaders.
func (b *builder) texturing(c *copier.Copier) error {
	src := b.ctx.Source()
	if b.kind == flags.Sky || b.kind == flags.Water {
		return fmt.Errorf("texturing property on a %s shader", b.kind)
	}
	if b.kind == flags.Effect && copier.ReadOr(c, "Has Base Texture", false) {
		tex := c.Link(document.Join("Base Texture", "Source"))
		if tex >= 0 {
			file := document.GetOr(src, tex, "File Name", "")
			b.set("Source Texture", document.String(b.ctx.Textures().Rewrite(file)))
		}
	}
	blk, err := src.Block(c.SourceID())
	if err != nil {
		return err
	}
	for _, l := range blk.Links() {
		if l.Target >= 0 && l.Path != "Controller" {
			b.ctx.Ignore(l.Target, false)
		}
	}
	for _, f := range blk.Fields {
		c.Ignore(f.Name)
	}
	return nil
}

// TextureSet converts a legacy texture set: paths are rewritten and the
// list is padded to the modern slot count.
func TextureSet(ctx *convert.Context, src int) (int, error) {
	paths, err := document.GetArray[string](ctx.Source(), src, "Textures")
	if err != nil {
		return -1, err
	}
	id, err := writeTextureSet(ctx, paths)
	if err != nil {
		return id, err
	}
	ctx.Claim(src, id)
	return id, nil
}

// NewTextureSet builds a texture set holding a single diffuse path.
func NewTextureSet(ctx *convert.Context, file string) (int, error) {
	return writeTextureSet(ctx, []string{file})
}

func writeTextureSet(ctx *convert.Context, paths []string) (int, error) {
	out := make([]string, TextureSlots)
	for i := 0; i < len(paths) && i < TextureSlots; i++ {
		if paths[i] != "" {
			out[i] = ctx.Textures().Rewrite(paths[i])
		}
	}
	id := ctx.Dest().InsertBlock("BSShaderTextureSet")
	if err := document.PutArray(ctx.Dest(), id, "Textures", out); err != nil {
		return id, err
	}
	return id, document.Put(ctx.Dest(), id, "Num Textures", uint32(TextureSlots))
}
