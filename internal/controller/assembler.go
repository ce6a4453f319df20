package controller

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/registry"
)

var (
	// ErrMissingCloneOwner is returned by FinalizeSequences when a clone
	// carries no owner name to label its controlled entry with.
	ErrMissingCloneOwner = errors.New("controller clone has no owner name")
	ErrControllerLoop    = errors.New("controller chain loops")
	ErrUnknownShader     = errors.New("controller owner is not a shader property")
	ErrDuplicateClone    = errors.New("invalid controller clone")
)

func unknownShader(ownerType, controllerType string) error {
	return fmt.Errorf("%w: %s on %s", ErrUnknownShader, controllerType, ownerType)
}

// Host is the conversion run the assembler works inside.
type Host interface {
	Source() document.Reader
	Dest() document.Writer
	Registry() *registry.Registry
	Diagnostics() *diagnostic.Diagnostics
	Logger() *slog.Logger
	// Copier binds a field copier with the run's audit settings.
	Copier(dst, src int) *copier.Copier
	// Convert dispatches a source block, returning what it became.
	Convert(src int) (int, error)
	// CopyBlock clones a source block into the destination. Its links are
	// deferred to whatever their targets become, except paths under
	// detach, which stay absent. The source is not marked handled.
	CopyBlock(src int, detach ...string) (int, error)
	Defer(dst int, path string, srcTarget int)
	Ignore(src int, cascade bool)
}

// State is the lifecycle of a record or a sequence.
type State uint8

const (
	Unvisited State = iota
	ConvertedInline
	Finalized
)

func (s State) String() string {
	switch s {
	case ConvertedInline:
		return "converted-inline"
	case Finalized:
		return "finalized"
	default:
		return "unvisited"
	}
}

// Clone is an extra destination controller built for another owner of a
// shared source controller.
type Clone struct {
	Block int
	Owner string
}

// Record tracks one converted source controller.
type Record struct {
	Origin int
	Owner  string
	Type   string
	Clones []Clone
}

// Add appends a clone. The origin and repeated blocks are rejected.
func (r *Record) Add(block int, owner string) error {
	if block == r.Origin {
		return fmt.Errorf("%w: %d is the origin", ErrDuplicateClone, block)
	}
	for _, c := range r.Clones {
		if c.Block == block {
			return fmt.Errorf("%w: %d already recorded", ErrDuplicateClone, block)
		}
	}
	r.Clones = append(r.Clones, Clone{Block: block, Owner: owner})
	return nil
}

// Assembler holds the controller state of one conversion run.
type Assembler struct {
	records   map[int]*Record
	order     []int
	sequences []int
	seqState  map[int]State
	owners    []int
	owned     map[int]bool
}

func New() *Assembler {
	return &Assembler{
		records:  make(map[int]*Record),
		seqState: make(map[int]State),
		owned:    make(map[int]bool),
	}
}

// Record returns the record whose origin is the destination controller id.
func (a *Assembler) Record(origin int) (*Record, bool) {
	r, ok := a.records[origin]
	return r, ok
}

// Records lists every record in creation order.
func (a *Assembler) Records() []*Record {
	out := make([]*Record, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.records[id])
	}
	return out
}

// Sequences lists the destination sequences awaiting or past phase 2.
func (a *Assembler) Sequences() []int { return append([]int(nil), a.sequences...) }

// SequenceState reports the phase of a destination sequence.
func (a *Assembler) SequenceState(seq int) State { return a.seqState[seq] }

// Owners lists destination blocks that received a controller chain.
func (a *Assembler) Owners() []int { return append([]int(nil), a.owners...) }

func (a *Assembler) addRecord(origin int, owner, typ string) *Record {
	r := &Record{Origin: origin, Owner: owner, Type: typ}
	a.records[origin] = r
	a.order = append(a.order, origin)
	return r
}

// Place appends controller at the end of the chain that starts at the
// owner's path field.
func Place(dst document.Writer, owner int, path string, controller int) error {
	block, field := owner, path
	seen := map[int]bool{owner: true}
	for {
		next, ok := dst.Link(block, field)
		if !ok {
			break
		}
		if seen[next] || next == controller {
			return fmt.Errorf("%w: block %d reached twice from %d", ErrControllerLoop, next, owner)
		}
		seen[next] = true
		block, field = next, "Next Controller"
	}
	return dst.SetLink(block, field, controller)
}
