package controller

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// Request names one controller link to convert.
type Request struct {
	// Owner is the destination block receiving the chain.
	Owner int
	// Source is the source block holding the link.
	Source int
	// Path is the link field on Source, "Controller" when empty.
	Path string
	// Name labels the owner on clones and controlled entries.
	Name string
	// Target overrides the controller target; -1 relinks the source one.
	Target int
}

// detached link paths of an exactly copied controller; the assembler
// rebuilds them itself.
var detached = []string{
	"Next Controller",
	"Target",
	"Interpolator",
	"Visibility Interpolator",
	"Object Palette",
	"Controller Sequences",
}

// Attach converts the controller chain linked from req.Source and appends
// it to the owner's chain. It returns the first destination controller,
// or -1 when the source has none or it was dropped.
func (a *Assembler) Attach(h Host, req Request) (int, error) {
	if req.Path == "" {
		req.Path = "Controller"
	}
	ctl, ok := h.Source().Link(req.Source, req.Path)
	if !ok {
		return -1, nil
	}
	if !a.owned[req.Owner] {
		a.owned[req.Owner] = true
		a.owners = append(a.owners, req.Owner)
	}
	return a.attach(h, req, ctl, make(map[int]bool))
}

func (a *Assembler) attach(h Host, req Request, ctl int, walk map[int]bool) (int, error) {
	src, dst := h.Source(), h.Dest()
	at := diagnostic.At(ctl, src.TypeName(ctl))
	if walk[ctl] {
		h.Diagnostics().AddError(diagnostic.CodeUnknownStructure, at, "controller chain loops back to %d", ctl)
		return -1, fmt.Errorf("%w: source %d", ErrControllerLoop, ctl)
	}
	walk[ctl] = true

	p, err := decide(src, ctl, dst.TypeName(req.Owner))
	if err != nil {
		h.Diagnostics().AddError(diagnostic.CodeUnsupported, at, "%v", err)
		h.Ignore(ctl, true)
		return -1, err
	}

	switch p.action {
	case actSkip:
		h.Ignore(ctl, false)
		if interp, ok := src.Link(ctl, "Interpolator"); ok {
			h.Ignore(interp, true)
		}
		next := req
		next.Source, next.Path = ctl, "Next Controller"
		nextCtl, ok := src.Link(ctl, "Next Controller")
		if !ok {
			return -1, nil
		}
		return a.attach(h, next, nextCtl, walk)
	case actDrop:
		h.Logger().Debug("Dropping controller.", "block", ctl, "type", src.TypeName(ctl))
		h.Ignore(ctl, true)
		return -1, nil
	}

	out, err := a.build(h, p, ctl)
	if err != nil {
		h.Diagnostics().AddError(diagnostic.CodeRuleFailed, at, "controller: %v", err)
		return -1, err
	}
	if err := a.track(h, ctl, out, req.Name); err != nil {
		h.Diagnostics().AddError(diagnostic.CodeConflict, at, "%v", err)
	}

	srcTarget, hasTarget := src.Link(ctl, "Target")
	switch {
	case req.Target >= 0:
		err = dst.SetLink(out, "Target", req.Target)
	case hasTarget:
		h.Defer(out, "Target", srcTarget)
	}
	if err != nil {
		return -1, err
	}

	var errs []error
	for _, path := range []string{"Interpolator", "Visibility Interpolator", "Object Palette"} {
		errs = append(errs, a.convertLink(h, out, ctl, path))
	}
	for i, seq := range src.LinkArray(ctl, "Controller Sequences") {
		if seq < 0 {
			continue
		}
		id, err := a.Sequence(h, seq)
		if err == nil {
			err = dst.SetLink(out, document.Join("Controller Sequences", i), id)
		}
		errs = append(errs, err)
	}

	if nextCtl, ok := src.Link(ctl, "Next Controller"); ok {
		next := Request{Owner: out, Source: ctl, Path: "Next Controller", Name: req.Name, Target: -1}
		if t, ok := src.Link(nextCtl, "Target"); req.Target >= 0 && ok && hasTarget && t == srcTarget {
			next.Target = req.Target
		}
		_, err := a.attach(h, next, nextCtl, walk)
		errs = append(errs, err)
	}

	if err := Place(dst, req.Owner, req.Path, out); err != nil {
		h.Diagnostics().AddError(diagnostic.CodeUnknownStructure, diagnostic.At(req.Owner, dst.TypeName(req.Owner)).On(req.Path), "%v", err)
		errs = append(errs, err)
	}
	return out, errors.Join(errs...)
}

// build creates the destination controller for one source controller.
func (a *Assembler) build(h Host, p plan, ctl int) (int, error) {
	src, dst := h.Source(), h.Dest()
	at := diagnostic.At(ctl, src.TypeName(ctl))

	if p.action == actExact {
		if !p.allowed {
			h.Diagnostics().AddError(diagnostic.CodeUnsupported, at, "controller type %s is not in the exact copy list", src.TypeName(ctl))
		}
		return h.CopyBlock(ctl, detached...)
	}

	out := dst.InsertBlock(p.block)
	if err := dst.Set(out, p.field, document.Uint(p.value)); err != nil {
		return out, err
	}
	if p.warning != "" {
		h.Diagnostics().AddWarning(diagnostic.CodeUnsupported, at, "%s", p.warning)
	}

	c := h.Copier(out, ctl)
	if err := c.CopyIfPresent("Flags", "Frequency", "Phase", "Start Time", "Stop Time"); err != nil {
		return out, err
	}
	c.Ignore("Next Controller", "Target", "Interpolator")
	switch src.TypeName(ctl) {
	case "NiTextureTransformController":
		c.Ignore("Texture Slot", "Shader Map", "Operation")
	case "NiMaterialColorController", "NiLightColorController":
		c.Ignore("Target Color")
	}
	c.Finish()
	return out, nil
}

// track records a fresh controller or registers a clone of one already
// converted for another owner.
func (a *Assembler) track(h Host, ctl, out int, owner string) error {
	reg := h.Registry()
	if origin, ok := reg.Resolve(ctl); ok {
		rec, found := a.records[origin]
		if !found {
			rec = a.addRecord(origin, "", h.Dest().TypeName(origin))
		}
		return rec.Add(out, owner)
	}
	a.addRecord(out, owner, h.Dest().TypeName(out))
	return reg.MarkHandled(ctl, out)
}

// convertLink converts the block linked at path and links the result.
func (a *Assembler) convertLink(h Host, out, ctl int, path string) error {
	target, ok := h.Source().Link(ctl, path)
	if !ok {
		return nil
	}
	id, err := h.Convert(target)
	if err != nil {
		return err
	}
	return h.Dest().SetLink(out, path, id)
}
