// Package resolver queues destination link writes whose target has not
// been converted yet and resolves them once the whole graph is visited.
package resolver

import (
	"log/slog"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// Slot addresses one link field of a destination block.
type Slot struct {
	Block int
	Path  string
}

// Lookup answers what a source block became.
type Lookup interface {
	Resolve(src int) (int, bool)
	IsHandled(src int) bool
}

type pending struct {
	target int
	slot   Slot
}

// Resolver is the deferred link queue of one conversion.
type Resolver struct {
	logger *slog.Logger
	queue  []pending
	slots  map[Slot]int
}

func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger, slots: make(map[Slot]int)}
}

// Defer records that slot must point at whatever srcTarget becomes. A
// negative target is a no-op. Repeated slots are kept; the last write wins.
func (r *Resolver) Defer(srcTarget int, slot Slot) {
	if srcTarget < 0 {
		return
	}
	if prev, ok := r.slots[slot]; ok {
		r.logger.Warn("Link slot deferred twice, last write wins.",
			"block", slot.Block, "field", slot.Path, "previousTarget", prev, "target", srcTarget)
	}
	r.slots[slot] = srcTarget
	r.queue = append(r.queue, pending{target: srcTarget, slot: slot})
}

// Pending returns the number of queued links.
func (r *Resolver) Pending() int { return len(r.queue) }

// PendingTo returns the number of queued links targeting srcTarget.
func (r *Resolver) PendingTo(srcTarget int) int {
	n := 0
	for _, p := range r.queue {
		if p.target == srcTarget {
			n++
		}
	}
	return n
}

// Targets lists the distinct source targets still queued.
func (r *Resolver) Targets() []int {
	seen := make(map[int]bool)
	var out []int
	for _, p := range r.queue {
		if !seen[p.target] {
			seen[p.target] = true
			out = append(out, p.target)
		}
	}
	return out
}

// Dropper returns a registry.Dropper writing absent links into dst.
func (r *Resolver) Dropper(dst document.Writer) *Drop {
	return &Drop{r: r, dst: dst}
}

// Drop removes queued links to one target and clears their slots.
type Drop struct {
	r   *Resolver
	dst document.Writer
}

func (d *Drop) Drop(srcTarget int) int {
	return d.r.drop(d.dst, srcTarget)
}

func (r *Resolver) drop(dst document.Writer, srcTarget int) int {
	kept := r.queue[:0]
	dropped := 0
	for _, p := range r.queue {
		if p.target != srcTarget {
			kept = append(kept, p)
			continue
		}
		dropped++
		delete(r.slots, p.slot)
		if err := dst.SetLink(p.slot.Block, p.slot.Path, -1); err != nil {
			r.logger.Warn("Failed to clear dropped link.", "block", p.slot.Block, "field", p.slot.Path, "error", err)
		}
	}
	r.queue = kept
	return dropped
}

// ResolveAll writes every queued link and empties the queue. A target that
// was ignored resolves to absent silently; a target never handled resolves
// to absent with a dangling-link error. Calling it again is a no-op.
func (r *Resolver) ResolveAll(dst document.Writer, lookup Lookup, diags *diagnostic.Diagnostics) int {
	resolved := 0
	for _, p := range r.queue {
		at := diagnostic.At(p.slot.Block, dst.TypeName(p.slot.Block)).On(p.slot.Path)
		target, ok := lookup.Resolve(p.target)
		if !ok {
			target = -1
			if !lookup.IsHandled(p.target) {
				diags.AddError(diagnostic.CodeDanglingLink, at, "link target %d was never converted", p.target)
			}
		}
		if err := dst.SetLink(p.slot.Block, p.slot.Path, target); err != nil {
			diags.AddError(diagnostic.CodeDanglingLink, at, "cannot write resolved link: %v", err)
			continue
		}
		if target >= 0 {
			resolved++
		}
	}
	r.logger.Debug("Deferred links resolved.", "queued", len(r.queue), "resolved", resolved)
	r.queue = nil
	r.slots = make(map[Slot]int)
	return resolved
}
