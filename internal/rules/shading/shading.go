// Package shading folds the legacy property list of a shape into one
// modern shader block.
package shading

import (
	"github.com/specialistvlad/nifconv/internal/controller"
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
)

// TextureSlots is the texture count of a modern texture set.
const TextureSlots = 10

// Request describes the shape whose properties are folded.
type Request struct {
	// Source is the legacy shape holding "Properties".
	Source int
	// Owner is the destination shape receiving the shader links.
	Owner int
	// Name labels controllers cloned onto the shader.
	Name string
	// Effect forces an effect shader regardless of the legacy shader.
	Effect bool
}

// Result is what the shape rule needs back.
type Result struct {
	Shader int
	Kind   flags.ShaderKind
	// Legacy is the type tag of the legacy shader property, empty when the
	// shape had none.
	Legacy     string
	AlphaBlend bool
}

type builder struct {
	ctx    *convert.Context
	req    Request
	kind   flags.ShaderKind
	shader int
}

// Build inserts the shader of a shape, links it as "Shader Property" and
// converts the alpha property. Properties that fail are reported and the
// shader is still returned.
func Build(ctx *convert.Context, req Request) (Result, error) {
	src, dst := ctx.Source(), ctx.Dest()
	props := src.LinkArray(req.Source, "Properties")

	legacy, alpha := -1, -1
	for _, p := range props {
		switch {
		case p < 0:
		case src.TypeName(p) == "NiAlphaProperty":
			alpha = p
		case legacy < 0 && src.IsA(p, "BSShaderProperty"):
			legacy = p
		}
	}

	var res Result
	facts := flags.Facts{}
	if legacy >= 0 {
		res.Legacy = src.TypeName(legacy)
		facts.Shader = res.Legacy
		facts.Flags1 = document.GetOr[uint32](src, legacy, "Shader Flags", 0)
	}
	if alpha >= 0 {
		res.AlphaBlend = document.GetOr[uint32](src, alpha, "Flags", 0)&1 != 0
		facts.AlphaBlend = res.AlphaBlend
	}
	choice := flags.Choose(facts)
	if req.Effect {
		choice = flags.Choice{Kind: flags.Effect}
	}
	res.Kind = choice.Kind

	b := &builder{ctx: ctx, req: req, kind: choice.Kind}
	b.shader = dst.InsertBlock(choice.Kind.Block())
	res.Shader = b.shader
	if err := dst.SetLink(req.Owner, "Shader Property", b.shader); err != nil {
		return res, err
	}
	b.set("Shader Flags 1", document.Flags(0))
	b.set("Shader Flags 2", document.Flags(0))
	if choice.ZeroSpecular {
		b.set("Specular Strength", document.Float(0))
	}

	for _, p := range props {
		if p < 0 {
			continue
		}
		b.property(p)
	}

	if legacy >= 0 {
		out := flags.Translate(flags.Input{
			Flags1: facts.Flags1,
			Flags2: document.GetOr[uint32](src, legacy, "Shader Flags 2", 0),
		}, b.kind)
		b.or(flags.Word1, out.Flags1)
		b.or(flags.Word2, out.Flags2)
		if out.EnvironmentMap && b.kind == flags.Lighting {
			b.set("Skyrim Shader Type", document.Enum("Environment Map"))
		}
		ctx.Flags.Landscape = ctx.Flags.Landscape || out.LODLandscape
		ctx.Flags.Building = ctx.Flags.Building || out.LODBuilding
	} else {
		color := b.vector("Emissive Color", 4)
		color[3] = 0
		b.set("Emissive Color", document.Vector(color...))
	}

	add1, add2, white := flags.AlphaFinalize(b.kind, res.Legacy, res.AlphaBlend)
	b.or(flags.Word1, add1)
	b.or(flags.Word2, add2)
	if white {
		b.set("Emissive Color", document.Vector(1, 1, 1, 1))
	}
	return res, nil
}

// AddFlags ORs bits into one word of a destination shader.
func AddFlags(w document.Writer, shader int, word flags.Word, bits uint32) error {
	if bits == 0 {
		return nil
	}
	path := word.Field(true)
	cur := document.GetOr[uint32](w, shader, path, 0)
	return w.Set(shader, path, document.Flags(cur|bits))
}

func (b *builder) set(path string, v document.Value) {
	if err := b.ctx.Dest().Set(b.shader, path, v); err != nil {
		b.ctx.Logger().Warn("Failed to set shader field.", "shader", b.shader, "field", path, "error", err)
	}
}

func (b *builder) or(word flags.Word, bits uint32) {
	if err := AddFlags(b.ctx.Dest(), b.shader, word, bits); err != nil {
		b.ctx.Logger().Warn("Failed to set shader flags.", "shader", b.shader, "error", err)
	}
}

// vector reads a destination vector padded to n components.
func (b *builder) vector(path string, n int) []float64 {
	out := make([]float64, n)
	if v, err := b.ctx.Dest().Value(b.shader, path); err == nil {
		copy(out, v.AsVector())
	}
	return out
}

func (b *builder) property(p int) {
	ctx := b.ctx
	switch typ := ctx.Source().TypeName(p); typ {
	case "NiAlphaProperty":
		ctx.Child(b.req.Owner, "Alpha Property", p)
		return
	case "NiStencilProperty":
		ctx.Ignore(p, true)
		return
	case "BSShaderPPLightingProperty", "BSShaderNoLightingProperty",
		"TileShaderProperty", "TallGrassShaderProperty", "SkyShaderProperty", "WaterShaderProperty",
		"NiMaterialProperty", "NiTexturingProperty":
	default:
		ctx.Errorf(p, diagnostic.CodeUnsupported, "no way to fold %s into a %s shader", typ, b.kind)
		ctx.Ignore(p, true)
		return
	}

	ctx.Claim(p, b.shader)
	c := ctx.Copier(b.shader, p)
	c.Ignore("Name", "Flags", "Num Extra Data List", "Extra Data List")
	if c.Has("Controller") {
		ctx.Controllers(controller.Request{
			Owner:  b.shader,
			Source: p,
			Name:   b.req.Name,
			Target: b.shader,
		})
		c.Processed("Controller")
	}

	var err error
	switch ctx.Source().TypeName(p) {
	case "BSShaderPPLightingProperty", "BSShaderNoLightingProperty":
		err = b.lighting(c)
	case "NiMaterialProperty":
		err = b.material(c)
	case "NiTexturingProperty":
		err = b.texturing(c)
	default:
		err = b.shaderProperty(c)
	}
	if err != nil {
		ctx.Errorf(p, diagnostic.CodeRuleFailed, "%v", err)
	}
	c.Finish()
}
