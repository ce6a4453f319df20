package document

import "errors"

var (
	ErrNoSuchBlock   = errors.New("no such block")
	ErrNoSuchField   = errors.New("no such field")
	ErrKindMismatch  = errors.New("value kind mismatch")
	ErrIndexRange    = errors.New("array index out of range")
	ErrNotAnArray    = errors.New("field is not an array")
	ErrInvalidTarget = errors.New("link target out of range")
)

// Block is a typed record inside a Document.
type Block struct {
	Type   string
	Fields []Field
}

// Lookup returns the named top-level field of the block.
func (b *Block) Lookup(name string) *Value {
	for i := range b.Fields {
		if b.Fields[i].Name == name {
			return &b.Fields[i].Value
		}
	}
	return nil
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	out := &Block{Type: b.Type, Fields: make([]Field, len(b.Fields))}
	for i, f := range b.Fields {
		out.Fields[i] = Field{Name: f.Name, Value: f.Value.Clone()}
	}
	return out
}

// Reader is the read side of a document. Block identifiers are dense
// indices that only have meaning inside the document that issued them.
type Reader interface {
	Version() string
	BlockCount() int
	Block(id int) (*Block, error)
	TypeName(id int) string
	IsA(id int, typeTag string) bool
	Value(id int, path string) (Value, error)
	Has(id int, path string) bool
	Len(id int, path string) int
	Link(id int, path string) (int, bool)
	LinkArray(id int, path string) []int
	ChildLinks(id int) []int
	ParentLinks(id int) []int
	Parent(id int) int
	Roots() []int
}

// Writer is the mutable side of a document.
type Writer interface {
	Reader
	Set(id int, path string, v Value) error
	SetLink(id int, path string, target int) error
	ResizeArray(id int, path string, n int) error
	InsertBlock(typeTag string) int
	InsertBlockAt(typeTag string, at int) int
	RemoveBlock(id int) error
}

// LinkField is one link value inside a block, addressed by its path.
type LinkField struct {
	Path   string
	Kind   Kind
	Target int
}

// Links lists every link value of the block in field order.
func (b *Block) Links() []LinkField {
	var out []LinkField
	for _, f := range b.Fields {
		collectLinks(f.Name, f.Value, &out)
	}
	return out
}

func collectLinks(path string, v Value, out *[]LinkField) {
	switch v.Kind {
	case KindRef, KindPtr:
		*out = append(*out, LinkField{Path: path, Kind: v.Kind, Target: v.Link()})
	case KindStruct:
		for _, f := range v.Fields {
			collectLinks(Join(path, f.Name), f.Value, out)
		}
	case KindArray:
		for i, item := range v.Items {
			collectLinks(Join(path, i), item, out)
		}
	}
}
