package registry

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/document"
)

// ErrConflictingMapping is returned when a handled source block is marked
// again with a different destination.
var ErrConflictingMapping = errors.New("conflicting mapping")

// Dropper removes queued deferred links that target a source block.
type Dropper interface {
	Drop(srcTarget int) int
}

// Option configures a Registry.
type Option func(*Registry)

// WithDropper lets cascading ignores purge the deferred link queue.
func WithDropper(d Dropper) Option {
	return func(r *Registry) { r.dropper = d }
}

// WithProgress installs a callback receiving handled-block increments.
func WithProgress(fn func(delta int)) Option {
	return func(r *Registry) { r.onProgress = fn }
}

// Registry maps source block ids to destination block ids.
type Registry struct {
	src        document.Reader
	dropper    Dropper
	onProgress func(delta int)

	handled []bool
	mapping []int

	holdNext bool
	held     int
}

// New creates a registry sized for src.
func New(src document.Reader, opts ...Option) *Registry {
	n := src.BlockCount()
	r := &Registry{
		src:     src,
		handled: make([]bool, n),
		mapping: make([]int, n),
	}
	for i := range r.mapping {
		r.mapping[i] = -1
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) valid(src int) bool { return src >= 0 && src < len(r.handled) }

// MarkHandled records that src became dst. A negative dst marks src handled
// without a destination. Repeating the same mapping is a no-op.
func (r *Registry) MarkHandled(src, dst int) error {
	if !r.valid(src) {
		return fmt.Errorf("%w: source %d", document.ErrNoSuchBlock, src)
	}
	if dst < 0 {
		dst = -1
	}
	if r.handled[src] {
		if r.mapping[src] == dst {
			return nil
		}
		return fmt.Errorf("%w: source %d (%s) already maps to %d, not %d",
			ErrConflictingMapping, src, r.src.TypeName(src), r.mapping[src], dst)
	}
	r.handled[src] = true
	r.mapping[src] = dst
	r.progress()
	return nil
}

// IsHandled reports whether src was mapped or ignored.
func (r *Registry) IsHandled(src int) bool {
	return r.valid(src) && r.handled[src]
}

// IsIgnored reports whether src is handled without a destination.
func (r *Registry) IsIgnored(src int) bool {
	return r.IsHandled(src) && r.mapping[src] < 0
}

// Resolve returns the destination id of src, if it has one.
func (r *Registry) Resolve(src int) (int, bool) {
	if !r.IsHandled(src) || r.mapping[src] < 0 {
		return -1, false
	}
	return r.mapping[src], true
}

// Ignore marks src handled with no destination. A block that already has a
// mapping keeps it. With cascade, deferred links targeting src are dropped
// and every block reachable through its child links is ignored as well.
func (r *Registry) Ignore(src int, cascade bool) {
	r.ignore(src, cascade, make(map[int]bool))
}

func (r *Registry) ignore(src int, cascade bool, visited map[int]bool) {
	if !r.valid(src) || visited[src] {
		return
	}
	visited[src] = true
	if r.handled[src] && r.mapping[src] >= 0 {
		return
	}
	if !r.handled[src] {
		r.handled[src] = true
		r.progress()
	}
	if !cascade {
		return
	}
	if r.dropper != nil {
		r.dropper.Drop(src)
	}
	for _, child := range r.src.ChildLinks(src) {
		r.ignore(child, true, visited)
	}
}

// Unhandled lists every source block never handled, in id order.
func (r *Registry) Unhandled() []int {
	var out []int
	for id, h := range r.handled {
		if !h {
			out = append(out, id)
		}
	}
	return out
}

// HandledCount returns how many source blocks are handled.
func (r *Registry) HandledCount() int {
	n := 0
	for _, h := range r.handled {
		if h {
			n++
		}
	}
	return n
}

// Len returns the number of source blocks tracked.
func (r *Registry) Len() int { return len(r.handled) }

// HoldNext withholds the progress increment of the next handled block until
// ReleaseHeld is called. Owners finalized in a later phase use it.
func (r *Registry) HoldNext() { r.holdNext = true }

// ReleaseHeld reports every withheld increment.
func (r *Registry) ReleaseHeld() {
	if r.held > 0 && r.onProgress != nil {
		r.onProgress(r.held)
	}
	r.held = 0
}

func (r *Registry) progress() {
	if r.holdNext {
		r.holdNext = false
		r.held++
		return
	}
	if r.onProgress != nil {
		r.onProgress(1)
	}
}
