package document

import "fmt"

// Arena is the in-memory Document: a dense slice of blocks whose links are
// plain indices into the same slice.
type Arena struct {
	version string
	schema  *Schema
	blocks  []*Block
}

var _ Writer = (*Arena)(nil)

// New creates an empty document for the given schema version.
func New(version string, schema *Schema) *Arena {
	return &Arena{version: version, schema: schema}
}

// FromBlocks wraps already decoded blocks. The slice is owned by the arena
// afterwards.
func FromBlocks(version string, schema *Schema, blocks []*Block) *Arena {
	return &Arena{version: version, schema: schema, blocks: blocks}
}

func (a *Arena) Version() string { return a.version }

func (a *Arena) Schema() *Schema { return a.schema }

// Blocks exposes the backing slice for encoders.
func (a *Arena) Blocks() []*Block { return a.blocks }

func (a *Arena) BlockCount() int { return len(a.blocks) }

func (a *Arena) valid(id int) bool { return id >= 0 && id < len(a.blocks) }

func (a *Arena) Block(id int) (*Block, error) {
	if !a.valid(id) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoSuchBlock, id, len(a.blocks))
	}
	return a.blocks[id], nil
}

func (a *Arena) TypeName(id int) string {
	if !a.valid(id) {
		return ""
	}
	return a.blocks[id].Type
}

func (a *Arena) IsA(id int, typeTag string) bool {
	if !a.valid(id) {
		return false
	}
	return a.schema.Inherits(a.blocks[id].Type, typeTag)
}

func (a *Arena) Value(id int, path string) (Value, error) {
	b, err := a.Block(id)
	if err != nil {
		return Value{}, err
	}
	slot, _, err := resolve(b, path, false)
	if err != nil {
		return Value{}, err
	}
	return slot.Clone(), nil
}

func (a *Arena) Has(id int, path string) bool {
	b, err := a.Block(id)
	if err != nil {
		return false
	}
	_, _, err = resolve(b, path, false)
	return err == nil
}

func (a *Arena) Len(id int, path string) int {
	b, err := a.Block(id)
	if err != nil {
		return 0
	}
	slot, _, err := resolve(b, path, false)
	if err != nil {
		return 0
	}
	return slot.Len()
}

// Link returns the target of a link field. Targets outside the current
// block range read as absent.
func (a *Arena) Link(id int, path string) (int, bool) {
	b, err := a.Block(id)
	if err != nil {
		return -1, false
	}
	slot, _, err := resolve(b, path, false)
	if err != nil || !slot.Kind.IsLink() {
		return -1, false
	}
	target := slot.Link()
	if !a.valid(target) {
		return -1, false
	}
	return target, true
}

func (a *Arena) LinkArray(id int, path string) []int {
	b, err := a.Block(id)
	if err != nil {
		return nil
	}
	slot, _, err := resolve(b, path, false)
	if err != nil || slot.Kind != KindArray {
		return nil
	}
	out := make([]int, len(slot.Items))
	for i, item := range slot.Items {
		out[i] = -1
		if t := item.Link(); a.valid(t) {
			out[i] = t
		}
	}
	return out
}

func (a *Arena) linksOfKind(id int, kind Kind) []int {
	if !a.valid(id) {
		return nil
	}
	var out []int
	b := a.blocks[id]
	for i := range b.Fields {
		b.Fields[i].Value.walkLinks(func(l *Value) {
			if l.Kind == kind && a.valid(l.Link()) {
				out = append(out, l.Link())
			}
		})
	}
	return out
}

// ChildLinks returns the owning (downward) references of a block.
func (a *Arena) ChildLinks(id int) []int { return a.linksOfKind(id, KindRef) }

// ParentLinks returns the back references (pointers) held by a block.
func (a *Arena) ParentLinks(id int) []int { return a.linksOfKind(id, KindPtr) }

// Parent returns the first block holding a child link to id, or -1.
func (a *Arena) Parent(id int) int {
	for p := range a.blocks {
		for _, c := range a.ChildLinks(p) {
			if c == id {
				return p
			}
		}
	}
	return -1
}

// Roots returns every block that no other block owns, in index order.
func (a *Arena) Roots() []int {
	owned := make([]bool, len(a.blocks))
	for p := range a.blocks {
		for _, c := range a.ChildLinks(p) {
			if c != p {
				owned[c] = true
			}
		}
	}
	var roots []int
	for id, o := range owned {
		if !o {
			roots = append(roots, id)
		}
	}
	return roots
}

func (a *Arena) Set(id int, path string, v Value) error {
	b, err := a.Block(id)
	if err != nil {
		return err
	}
	slot, parent, err := resolve(b, path, true)
	if err != nil {
		return err
	}
	*slot = coerce(slot.Kind, v.Clone())
	if parent != nil && parent.Kind == KindArray && parent.Elem == KindInvalid {
		parent.Elem = slot.Kind
	}
	return nil
}

func (a *Arena) SetLink(id int, path string, target int) error {
	if target >= len(a.blocks) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidTarget, target, len(a.blocks))
	}
	b, err := a.Block(id)
	if err != nil {
		return err
	}
	slot, parent, err := resolve(b, path, true)
	if err != nil {
		return err
	}
	kind := KindRef
	if slot.Kind == KindPtr {
		kind = KindPtr
	} else if slot.Kind != KindInvalid && slot.Kind != KindRef {
		return fmt.Errorf("%w: %q is %s in %s", ErrKindMismatch, path, slot.Kind, b.Type)
	}
	*slot = Value{Kind: kind, I: int64(normalizeLink(target))}
	if parent != nil && parent.Kind == KindArray && parent.Elem == KindInvalid {
		parent.Elem = kind
	}
	return nil
}

// ResizeArray grows or truncates an array, creating it when missing. New
// items copy the shape of the first existing item with zeroed payload.
func (a *Arena) ResizeArray(id int, path string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrIndexRange, n)
	}
	b, err := a.Block(id)
	if err != nil {
		return err
	}
	slot, _, err := resolve(b, path, true)
	if err != nil {
		return err
	}
	switch slot.Kind {
	case KindInvalid:
		*slot = Value{Kind: KindArray}
	case KindArray:
	default:
		return fmt.Errorf("%w: %q is %s in %s", ErrNotAnArray, path, slot.Kind, b.Type)
	}

	if n <= len(slot.Items) {
		slot.Items = slot.Items[:n]
		return nil
	}
	template := Zero(slot.Elem)
	if len(slot.Items) > 0 {
		template = zeroLike(slot.Items[0])
	}
	for len(slot.Items) < n {
		slot.Items = append(slot.Items, template.Clone())
	}
	return nil
}

func (a *Arena) InsertBlock(typeTag string) int {
	a.blocks = append(a.blocks, &Block{Type: typeTag})
	return len(a.blocks) - 1
}

// InsertBlockAt inserts a block at index at, shifting every later block and
// every link that pointed at it.
func (a *Arena) InsertBlockAt(typeTag string, at int) int {
	if at < 0 || at >= len(a.blocks) {
		return a.InsertBlock(typeTag)
	}
	a.rewriteLinks(func(t int) int {
		if t >= at {
			return t + 1
		}
		return t
	})
	a.blocks = append(a.blocks, nil)
	copy(a.blocks[at+1:], a.blocks[at:])
	a.blocks[at] = &Block{Type: typeTag}
	return at
}

// RemoveBlock deletes a block. Links to it become absent; links past it are
// shifted down.
func (a *Arena) RemoveBlock(id int) error {
	if !a.valid(id) {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchBlock, id, len(a.blocks))
	}
	a.blocks = append(a.blocks[:id], a.blocks[id+1:]...)
	a.rewriteLinks(func(t int) int {
		switch {
		case t == id:
			return -1
		case t > id:
			return t - 1
		}
		return t
	})
	return nil
}

func (a *Arena) rewriteLinks(fn func(int) int) {
	for _, b := range a.blocks {
		if b == nil {
			continue
		}
		for i := range b.Fields {
			b.Fields[i].Value.walkLinks(func(l *Value) {
				if l.I >= 0 {
					l.I = int64(fn(int(l.I)))
				}
			})
		}
	}
}
