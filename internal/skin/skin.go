// Package skin packs per-bone vertex weight lists into the fixed-width
// per-vertex encoding of the modern format.
package skin

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

// Width is the number of influences one vertex can hold.
const Width = 4

var ErrVertexRange = errors.New("vertex index out of range")

// Influence is one (bone, vertex, weight) triple of the legacy encoding.
type Influence struct {
	Bone   int
	Vertex int
	Weight float64
}

// Slot is one packed (bone, weight) pair.
type Slot struct {
	Bone   int
	Weight float64
}

// Result holds the packed vertices and every influence that did not fit.
type Result struct {
	Vertices [][Width]Slot
	Dropped  []Influence
}

// Pack writes each influence into the first free slot of its vertex. A slot
// is free while its weight is zero. Influences arriving after a vertex is
// full are dropped; the remaining weights are not renormalized.
func Pack(vertexCount int, influences []Influence) (Result, error) {
	res := Result{Vertices: make([][Width]Slot, vertexCount)}
	for _, in := range influences {
		if in.Vertex < 0 || in.Vertex >= vertexCount {
			return res, fmt.Errorf("%w: bone %d references vertex %d of %d", ErrVertexRange, in.Bone, in.Vertex, vertexCount)
		}
		slots := &res.Vertices[in.Vertex]
		placed := false
		for i := range slots {
			if slots[i].Weight == 0 {
				slots[i] = Slot{Bone: in.Bone, Weight: in.Weight}
				placed = true
				break
			}
		}
		if !placed {
			res.Dropped = append(res.Dropped, in)
		}
	}
	return res, nil
}

// Report adds one truncation warning per dropped influence.
func (r Result) Report(diags *diagnostic.Diagnostics, at diagnostic.Subject) {
	for _, d := range r.Dropped {
		diags.AddWarning(diagnostic.CodeInfluenceDropped, at,
			"vertex %d already has %d influences, dropped bone %d (weight %g)", d.Vertex, Width, d.Bone, d.Weight)
	}
}

// Populated returns how many slots of vertex v carry a weight.
func (r Result) Populated(v int) int {
	n := 0
	for _, s := range r.Vertices[v] {
		if s.Weight != 0 {
			n++
		}
	}
	return n
}

// Influences reads the per-bone weight lists of a legacy skin data block:
// "Bone List/<bone>/Vertex Weights/<i>" with "Index" and "Weight".
func Influences(r document.Reader, skinData int) ([]Influence, error) {
	var out []Influence
	bones := r.Len(skinData, "Bone List")
	for b := 0; b < bones; b++ {
		base := document.Join("Bone List", b, "Vertex Weights")
		n := r.Len(skinData, base)
		for i := 0; i < n; i++ {
			idx, err := document.Get[int](r, skinData, document.Join(base, i, "Index"))
			if err != nil {
				return nil, err
			}
			w, err := document.Get[float64](r, skinData, document.Join(base, i, "Weight"))
			if err != nil {
				return nil, err
			}
			out = append(out, Influence{Bone: b, Vertex: idx, Weight: w})
		}
	}
	return out, nil
}

// Write stores packed slots into "Vertex Data/<v>/Bone Weights" and
// "Bone Indices" of a destination shape. The vertex array must already be
// sized.
func (r Result) Write(w document.Writer, shape int) error {
	if have := w.Len(shape, "Vertex Data"); have != len(r.Vertices) {
		return fmt.Errorf("vertex data has %d entries, packed %d", have, len(r.Vertices))
	}
	for v, slots := range r.Vertices {
		weights := make([]float64, Width)
		indices := make([]uint16, Width)
		for i, s := range slots {
			weights[i] = s.Weight
			indices[i] = uint16(s.Bone)
		}
		if err := document.PutArray(w, shape, document.Join("Vertex Data", v, "Bone Weights"), weights); err != nil {
			return err
		}
		if err := document.PutArray(w, shape, document.Join("Vertex Data", v, "Bone Indices"), indices); err != nil {
			return err
		}
	}
	return nil
}
