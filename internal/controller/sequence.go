package controller

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

const entries = "Controlled Blocks"

// Sequence converts a controller sequence once and queues it for
// FinalizeSequences. Its progress is withheld until then. An ignored
// sequence yields -1.
func (a *Assembler) Sequence(h Host, seq int) (int, error) {
	reg, src, dst := h.Registry(), h.Source(), h.Dest()
	if out, ok := reg.Resolve(seq); ok {
		return out, nil
	}
	if reg.IsHandled(seq) {
		return -1, nil
	}

	out, err := h.CopyBlock(seq, "Text Keys")
	if err != nil {
		return -1, err
	}
	reg.HoldNext()
	if err := reg.MarkHandled(seq, out); err != nil {
		return out, err
	}
	a.sequences = append(a.sequences, out)
	a.seqState[out] = ConvertedInline

	var errs []error
	for i := 0; i < src.Len(seq, entries); i++ {
		path := document.Join(entries, i, "Interpolator")
		interp, ok := src.Link(seq, path)
		if !ok {
			continue
		}
		id, err := h.Convert(interp)
		if err == nil {
			err = dst.SetLink(out, path, id)
		}
		errs = append(errs, err)
	}
	if keys, ok := src.Link(seq, "Text Keys"); ok {
		id, err := h.Convert(keys)
		if err == nil {
			err = dst.SetLink(out, "Text Keys", id)
		}
		errs = append(errs, err)
	}
	return out, errors.Join(errs...)
}

// FinalizeSequences runs phase 2 over every queued sequence. Entry type
// names are back-filled from the now final destination blocks and every
// clone of an entry's controller gains its own entry. A clone without an
// owner name stops the pass with ErrMissingCloneOwner. Finalized sequences
// are left alone on later calls.
func (a *Assembler) FinalizeSequences(dst document.Writer, diags *diagnostic.Diagnostics) error {
	for _, seq := range a.sequences {
		if a.seqState[seq] == Finalized {
			continue
		}
		if err := a.finalize(dst, seq, diags); err != nil {
			return err
		}
		a.seqState[seq] = Finalized
	}
	return nil
}

func (a *Assembler) finalize(dst document.Writer, seq int, diags *diagnostic.Diagnostics) error {
	at := diagnostic.At(seq, dst.TypeName(seq))
	if !dst.Has(seq, entries) {
		diags.AddError(diagnostic.CodeUnknownStructure, at, "sequence has no controlled blocks")
		return nil
	}

	original := dst.Len(seq, entries)
	total := original
	for i := 0; i < original; i++ {
		entry := document.Join(entries, i)
		ctl, ok := dst.Link(seq, document.Join(entry, "Controller"))
		if err := backfill(dst, seq, entry, ctl); err != nil {
			return err
		}
		if !ok {
			continue
		}
		rec, found := a.records[ctl]
		if !found || len(rec.Clones) == 0 {
			continue
		}

		item, err := dst.Value(seq, entry)
		if err != nil {
			return err
		}
		for _, clone := range rec.Clones {
			if clone.Owner == "" {
				node := document.GetOr(dst, seq, document.Join(entry, "Node Name"), "")
				diags.AddError(diagnostic.CodeMissingCloneOwner, at.On(entry),
					"no owner name for clone %d of controlled block %q", clone.Block, node)
				return fmt.Errorf("%w: clone %d of controller %d", ErrMissingCloneOwner, clone.Block, ctl)
			}
			if err := dst.ResizeArray(seq, entries, total+1); err != nil {
				return err
			}
			path := document.Join(entries, total)
			total++
			if err := dst.Set(seq, path, item); err != nil {
				return err
			}
			if err := dst.SetLink(seq, document.Join(path, "Controller"), clone.Block); err != nil {
				return err
			}
			if err := dst.Set(seq, document.Join(path, "Node Name"), document.String(clone.Owner)); err != nil {
				return err
			}
			if err := backfill(dst, seq, path, clone.Block); err != nil {
				return err
			}
		}
	}
	return dst.Set(seq, "Num Controlled Blocks", document.Uint(uint64(total)))
}

// backfill rewrites the recorded type names of a controlled entry that
// carries them.
func backfill(dst document.Writer, seq int, entry string, ctl int) error {
	set := func(field, value string) error {
		path := document.Join(entry, field)
		if document.GetOr(dst, seq, path, "") == "" || value == "" {
			return nil
		}
		return dst.Set(seq, path, document.String(value))
	}
	if ctl < 0 {
		return nil
	}
	typ := dst.TypeName(ctl)
	if typ == "NiMultiTargetTransformController" {
		typ = "NiTransformController"
	}
	if err := set("Controller Type", typ); err != nil {
		return err
	}
	property := ""
	if target, ok := dst.Link(ctl, "Target"); ok {
		property = dst.TypeName(target)
	}
	if property == "" {
		switch ShaderOf(typ) {
		case Effect:
			property = "BSEffectShaderProperty"
		case Lighting:
			property = "BSLightingShaderProperty"
		}
	}
	return set("Property Type", property)
}
