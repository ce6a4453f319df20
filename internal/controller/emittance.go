package controller

import (
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// FinalizeControlled reconciles the emissive controllers of every effect
// shader that received a controller chain. The modern effect shader
// animates emissive colour and multiple separately, so a lone multiple
// controller gains a colour controller holding the static colour, and a
// shader without a multiple animation gets a neutral multiple.
func (a *Assembler) FinalizeControlled(dst document.Writer, diags *diagnostic.Diagnostics) {
	for _, owner := range a.owners {
		if dst.TypeName(owner) == "BSEffectShaderProperty" {
			a.emittance(dst, owner, diags)
		}
	}
}

func (a *Assembler) emittance(dst document.Writer, owner int, diags *diagnostic.Diagnostics) {
	at := diagnostic.At(owner, dst.TypeName(owner))
	mult, color := -1, -1

	seen := map[int]bool{}
	for ctl, ok := dst.Link(owner, "Controller"); ok && !seen[ctl]; ctl, ok = dst.Link(ctl, "Next Controller") {
		seen[ctl] = true
		switch dst.TypeName(ctl) {
		case "BSEffectShaderPropertyFloatController":
			if document.GetOr(dst, ctl, "Type of Controlled Variable", uint64(99)) != effectVariables["EmissiveMultiple"] {
				continue
			}
			if mult >= 0 {
				diags.AddError(diagnostic.CodeUnsupported, at, "multiple emissive multiple controllers")
				continue
			}
			mult = ctl
		case "BSEffectShaderPropertyColorController":
			if document.GetOr(dst, ctl, "Type of Controlled Color", uint64(99)) != effectColors["Emissive Color"] {
				continue
			}
			if color >= 0 {
				diags.AddError(diagnostic.CodeUnsupported, at, "multiple emissive color controllers")
				continue
			}
			color = ctl
		}
	}

	neutral := func() {
		if document.GetOr(dst, owner, "Emissive Multiple", 0.0) == 0 {
			_ = dst.Set(owner, "Emissive Multiple", document.Float(1))
			_ = dst.Set(owner, "Emissive Color", document.Vector(1, 1, 1, 1))
		}
	}

	switch {
	case mult < 0:
		neutral()
	case color < 0:
		a.addColorController(dst, owner, mult, diags)
	}
}

func (a *Assembler) addColorController(dst document.Writer, owner, mult int, diags *diagnostic.Diagnostics) {
	interp, ok := dst.Link(mult, "Interpolator")
	if !ok {
		return
	}
	if typ := dst.TypeName(interp); typ != "NiFloatInterpolator" {
		diags.AddWarning(diagnostic.CodeUnsupported, diagnostic.At(interp, typ),
			"emissive colour not animated for interpolator type %s", typ)
		return
	}

	rgb := []float64{1, 1, 1}
	if v, err := dst.Value(owner, "Emissive Color"); err == nil && len(v.V) >= 3 {
		rgb = v.V[:3]
	}

	color := dst.InsertBlock("BSEffectShaderPropertyColorController")
	_ = dst.Set(color, "Type of Controlled Color", document.Uint(effectColors["Emissive Color"]))
	next, _ := dst.Link(mult, "Next Controller")
	_ = dst.SetLink(mult, "Next Controller", color)
	_ = dst.SetLink(color, "Next Controller", next)

	c := copier.New(dst, color, dst, mult, copier.Options{})
	_ = c.CopyIfPresent("Flags", "Frequency", "Phase", "Start Time", "Stop Time")
	if target, ok := dst.Link(mult, "Target"); ok {
		_ = dst.SetLink(color, "Target", target)
	}
	_ = dst.SetLink(color, "Interpolator", colorInterpolator(dst, interp, rgb))
}

// colorInterpolator builds a point interpolator keyed at the times of a
// float interpolator, holding a constant colour.
func colorInterpolator(dst document.Writer, floatInterp int, rgb []float64) int {
	out := dst.InsertBlock("NiPoint3Interpolator")
	data, ok := dst.Link(floatInterp, "Data")
	if !ok {
		return out
	}
	keys, _ := dst.Value(data, "Data/Keys")
	items := make([]document.Value, 0, keys.Len())
	for _, key := range keys.Items {
		t := 0.0
		if tv := key.Lookup("Time"); tv != nil {
			t = tv.F
		}
		items = append(items, document.Struct(
			document.F("Time", document.Float(t)),
			document.F("Value", document.Vector(rgb...)),
		))
	}

	pos := dst.InsertBlock("NiPosData")
	_ = dst.Set(pos, "Data/Num Keys", document.Uint(uint64(len(items))))
	_ = dst.Set(pos, "Data/Interpolation", document.Enum("LINEAR_KEY"))
	_ = dst.Set(pos, "Data/Keys", document.Array(document.KindStruct, items...))
	_ = dst.SetLink(out, "Data", pos)
	return out
}
