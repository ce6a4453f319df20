package lod

import (
	"fmt"
	"math"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
)

// Pass rewrites a fully converted and resolved destination document.
// Problems are recorded in Diags; the returned error is only set when the
// structure is unusable and the pass stopped early.
type Pass struct {
	Dst   document.Writer
	Props Props
	Diags *diagnostic.Diagnostics
}

func (p *Pass) fail(at diagnostic.Subject, format string, args ...any) error {
	d := p.Diags.AddError(diagnostic.CodeUnknownStructure, at, format, args...)
	return fmt.Errorf("%w: %s", ErrInvalidStructure, d.Message)
}

func (p *Pass) at(id int) diagnostic.Subject {
	return diagnostic.At(id, p.Dst.TypeName(id))
}

func (p *Pass) vector(id int, path string) []float64 {
	v, err := p.Dst.Value(id, path)
	if err != nil || len(v.V) < 3 {
		return []float64{0, 0, 0}
	}
	return v.AsVector()
}

// set writes a field and records a failed write as an error diagnostic.
func (p *Pass) set(id int, path string, v document.Value) {
	if err := p.Dst.Set(id, path, v); err != nil {
		p.Diags.AddError(diagnostic.CodeRuleFailed, p.at(id).On(path), "lod: %v", err)
	}
}

func (p *Pass) link(id int, path string, target int) {
	if err := p.Dst.SetLink(id, path, target); err != nil {
		p.Diags.AddError(diagnostic.CodeRuleFailed, p.at(id).On(path), "lod: %v", err)
	}
}

func (p *Pass) setChildren(id int, children []int) error {
	if err := p.Dst.Set(id, "Children", document.RefArray(children...)); err != nil {
		return err
	}
	return p.Dst.Set(id, "Num Children", document.Uint(uint64(len(children))))
}

func (p *Pass) half() float64 {
	return float64(CellSize * p.Props.Level / 2)
}

// Landscape splits the water shapes of a landscape tile into a WATER
// branch, moves the tile to local coordinates and recomputes its bounds.
// The first shape of the root is the land; every later shape is water.
func (p *Pass) Landscape() error {
	const root = 0
	if p.Dst.TypeName(root) != "BSMultiBoundNode" {
		return p.fail(p.at(root), "invalid landscape root %s", p.Dst.TypeName(root))
	}
	p.set(root, "Name", document.String("chunk"))
	p.set(root, "Culling Mode", document.Uint(1))

	t := p.vector(root, "Translation")
	if float64(CellSize*p.Props.X) != t[0] || float64(CellSize*p.Props.Y) != t[1] {
		p.Diags.AddError(diagnostic.CodeFileTypeMismatch, p.at(root).On("Translation"),
			"file name translation (%d, %d) does not match data (%g, %g)", p.Props.X, p.Props.Y, t[0], t[1])
	}
	p.set(root, "Translation", document.Vector(0, 0, t[2]))

	p.rootBound(root)

	children := p.Dst.LinkArray(root, "Children")
	water := -1
	land := -1
	for i, child := range children {
		switch p.Dst.TypeName(child) {
		case "BSTriShape", "BSSubIndexTriShape":
			if land < 0 {
				land = child
				if err := p.land(child); err != nil {
					return err
				}
				continue
			}
			if err := p.moveToWater(child, &water); err != nil {
				return err
			}
			children[i] = -1
			if !contains(children, water) {
				children[i] = water
			}
		case "BSMultiBoundNode":
			p.set(child, "Name", document.String("WATER"))
		default:
			return p.fail(p.at(child), "unknown LOD structure with block %s", p.Dst.TypeName(child))
		}
	}

	kept := children[:0]
	for _, c := range children {
		if c >= 0 {
			kept = append(kept, c)
		}
	}
	if err := p.setChildren(root, kept); err != nil {
		return err
	}
	if water >= 0 {
		p.waterBound(water)
	}
	return nil
}

func contains(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (p *Pass) rootBound(root int) {
	bound, _ := p.Dst.Link(root, "Multi Bound")
	aabb, ok := p.Dst.Link(bound, "Data")
	if !ok {
		p.Diags.AddError(diagnostic.CodeUnknownStructure, p.at(root), "invalid multi bound in LOD")
		return
	}
	pos := p.vector(aabb, "Position")
	wantX := float64(CellSize*p.Props.X) + p.half()
	wantY := float64(CellSize*p.Props.Y) + p.half()
	if pos[0] != wantX || pos[1] != wantY {
		p.Diags.AddError(diagnostic.CodeUnknownStructure, p.at(aabb).On("Position"),
			"unknown multi bound positioning (%g, %g)", pos[0], pos[1])
	}
	p.set(aabb, "Position", document.Vector(p.half(), p.half(), pos[2]))
}

func (p *Pass) land(shape int) error {
	shader, ok := p.Dst.Link(shape, "Shader Property")
	if !ok {
		return p.fail(p.at(shape), "shader property not found")
	}
	if t := p.vector(shape, "Translation"); t[0] != 0 || t[1] != 0 {
		return p.fail(p.at(shape), "translated land shape")
	}
	p.set(shader, "Skyrim Shader Type", document.Enum("LOD Landscape Noise"))
	p.set(shader, "Shader Flags 1", document.Flags(
		flags.Modern(flags.Word1, "Model_Space_Normals")|flags.Modern(flags.Word1, "Own_Emit")|flags.Modern(flags.Word1, "ZBuffer_Test")))
	p.set(shader, "Shader Flags 2", document.Flags(
		flags.Modern(flags.Word2, "ZBuffer_Write")|flags.Modern(flags.Word2, "LOD_Landscape")))
	return p.Dst.Set(shape, "Name", document.String("Land"))
}

func (p *Pass) moveToWater(shape int, water *int) error {
	if _, ok := p.Dst.Link(shape, "Shader Property"); !ok {
		return p.fail(p.at(shape), "shader property not found")
	}
	if t := p.vector(shape, "Translation"); t[0] != 0 || t[1] != 0 {
		p.set(shape, "Translation", document.Vector(0, 0, t[2]))
	}
	p.waterShader(shape)
	if *water >= 0 {
		return p.setChildren(*water, append(p.Dst.LinkArray(*water, "Children"), shape))
	}

	node := p.Dst.InsertBlock("BSMultiBoundNode")
	p.set(node, "Name", document.String("WATER"))
	p.set(node, "Culling Mode", document.Uint(1))
	if err := p.setChildren(node, []int{shape}); err != nil {
		return err
	}
	bound := p.Dst.InsertBlock("BSMultiBound")
	aabb := p.Dst.InsertBlock("BSMultiBoundAABB")
	p.link(node, "Multi Bound", bound)
	p.link(bound, "Data", aabb)
	p.set(aabb, "Position", document.Vector(p.half(), p.half(), 0))
	p.set(aabb, "Extent", document.Vector(p.half(), p.half(), 0))
	*water = node
	return nil
}

func (p *Pass) waterShader(shape int) {
	shader, ok := p.Dst.Link(shape, "Shader Property")
	if !ok {
		return
	}
	set := func(path string, v document.Value) { p.set(shader, path, v) }
	set("Shader Flags 1", document.Flags(flags.Modern(flags.Word1, "ZBuffer_Test")))
	set("Shader Flags 2", document.Flags(flags.Modern(flags.Word2, "ZBuffer_Write")))
	set("Texture Clamp Mode", document.Uint(3))
	set("Lighting Influence", document.Uint(255))
	set("Falloff Start Angle", document.Float(0))
	set("Falloff Stop Angle", document.Float(0))
	set("Emissive Multiple", document.Float(1))
	set("Soft Falloff Depth", document.Float(100))
	set("Environment Map Scale", document.Float(1))
}

// waterBound fits the z range of the water bound to the water vertices.
func (p *Pass) waterBound(water int) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, shape := range p.Dst.LinkArray(water, "Children") {
		n := p.Dst.Len(shape, "Vertex Data")
		for i := 0; i < n; i++ {
			z := p.vector(shape, document.Join("Vertex Data", i, "Vertex"))[2]
			lo = math.Min(lo, z)
			hi = math.Max(hi, z)
		}
	}
	if math.IsInf(lo, 1) {
		return
	}
	level := float64(p.Props.Level)
	extent := (hi - lo) * level / 2
	position := hi*level - extent

	bound, _ := p.Dst.Link(water, "Multi Bound")
	aabb, ok := p.Dst.Link(bound, "Data")
	if !ok {
		return
	}
	pos := p.vector(aabb, "Position")
	ext := p.vector(aabb, "Extent")
	p.set(aabb, "Position", document.Vector(pos[0], pos[1], position))
	p.set(aabb, "Extent", document.Vector(ext[0], ext[1], extent))
}

// Objects wraps an object LOD into an "obj" root node, or appends it to an
// existing one, and gives every sub-index shape the fixed LOD alpha
// property.
func (p *Pass) Objects() error {
	root := 0
	if p.Dst.TypeName(0) == "NiNode" && document.GetOr(p.Dst, 0, "Name", "") == "obj" {
		root = -1
		for id := 1; id < p.Dst.BlockCount(); id++ {
			if p.Dst.Parent(id) == -1 {
				root = id
				break
			}
		}
		if root < 0 {
			return p.fail(p.at(0), "failed to find new root")
		}
		if err := p.setChildren(0, append(p.Dst.LinkArray(0, "Children"), root)); err != nil {
			return err
		}
	} else {
		wrapper := p.Dst.InsertBlockAt("NiNode", 0)
		p.set(wrapper, "Name", document.String("obj"))
		root = 1
		if err := p.setChildren(wrapper, []int{root}); err != nil {
			return err
		}
	}

	if p.Dst.TypeName(root) != "BSMultiBoundNode" {
		return p.fail(p.at(root), "invalid object LOD root %s", p.Dst.TypeName(root))
	}
	p.set(root, "Name", document.String(""))

	for _, child := range p.Dst.LinkArray(root, "Children") {
		if p.Dst.TypeName(child) != "BSSubIndexTriShape" {
			return p.fail(p.at(child), "unknown LOD structure with block %s", p.Dst.TypeName(child))
		}
		p.set(child, "Name", document.String("obj"))
		if _, ok := p.Dst.Link(child, "Shader Property"); !ok {
			return p.fail(p.at(child), "shader property not found")
		}
		alpha := p.Dst.InsertBlock("NiAlphaProperty")
		p.set(alpha, "Flags", document.Flags(4844))
		p.set(alpha, "Threshold", document.Uint(128))
		if err := p.Dst.SetLink(child, "Alpha Property", alpha); err != nil {
			return err
		}
	}
	return nil
}
