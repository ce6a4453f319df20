package geometry

import (
	"math"

	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/flags"
	"github.com/specialistvlad/nifconv/internal/rules"
)

// halfMax is the largest magnitude a half float rounds to without
// overflowing.
const halfMax = 65520

// geometry is the legacy vertex and index data of one shape, flattened.
type geometry struct {
	vertices   [][]float64
	normals    [][]float64
	tangents   [][]float64
	bitangents [][]float64
	uvs        [][]float64
	colors     [][]float64
	triangles  [][3]int

	vectorFlags uint32
	center      []float64
	radius      float64
}

func vectors(r document.Reader, id int, path string) [][]float64 {
	v, err := r.Value(id, path)
	if err != nil || v.Kind != document.KindArray {
		return nil
	}
	out := make([][]float64, len(v.Items))
	for i, item := range v.Items {
		out[i] = item.AsVector()
	}
	return out
}

// present returns the array at path when the flag field allows it. A
// missing flag counts as set.
func present(r document.Reader, id int, flag, path string) [][]float64 {
	if !document.GetOr(r, id, flag, true) {
		return nil
	}
	return vectors(r, id, path)
}

func readGeometry(r document.Reader, data int) *geometry {
	g := &geometry{
		vertices:    present(r, data, "Has Vertices", "Vertices"),
		normals:     present(r, data, "Has Normals", "Normals"),
		colors:      present(r, data, "Has Vertex Colors", "Vertex Colors"),
		vectorFlags: document.GetOr[uint32](r, data, "BS Vector Flags", 0),
		center:      vectors3(r, data, "Center"),
		radius:      document.GetOr(r, data, "Radius", 0.0),
	}
	if g.vectorFlags&4096 != 0 {
		g.tangents = vectors(r, data, "Tangents")
		g.bitangents = vectors(r, data, "Bitangents")
	}
	if g.vectorFlags&1 != 0 || r.Has(data, "UV Sets") {
		g.uvs = vectors(r, data, document.Join("UV Sets", 0))
	}

	switch {
	case r.Has(data, "Points"):
		g.triangles = stripTriangles(strips(r, data))
	case r.Has(data, "Triangles"):
		for _, t := range vectors(r, data, "Triangles") {
			if len(t) < 3 {
				continue
			}
			g.triangles = append(g.triangles, [3]int{int(t[0]), int(t[1]), int(t[2])})
		}
	}
	return g
}

func vectors3(r document.Reader, id int, path string) []float64 {
	out := make([]float64, 3)
	if v, err := r.Value(id, path); err == nil {
		copy(out, v.AsVector())
	}
	return out
}

func strips(r document.Reader, data int) [][]int {
	n := r.Len(data, "Points")
	out := make([][]int, 0, n)
	for i := 0; i < n; i++ {
		pts, err := document.GetArray[int](r, data, document.Join("Points", i))
		if err != nil {
			continue
		}
		out = append(out, pts)
	}
	return out
}

// stripTriangles unrolls triangle strips. Degenerate triangles are
// skipped and every odd triangle has its first two corners swapped to
// keep a consistent winding.
func stripTriangles(strips [][]int) [][3]int {
	var out [][3]int
	for _, s := range strips {
		for j := 0; j+2 < len(s); j++ {
			a, b, c := s[j], s[j+1], s[j+2]
			if a == b || b == c || a == c {
				continue
			}
			if j%2 == 0 {
				out = append(out, [3]int{a, b, c})
			} else {
				out = append(out, [3]int{b, a, c})
			}
		}
	}
	return out
}

// scaleDown divides positions by a LOD level.
func (g *geometry) scaleDown(level float64) {
	for i, v := range g.vertices {
		g.vertices[i] = rules.Scaled(v, 1/level)
	}
	g.center = rules.Scaled(g.center, 1/level)
	g.radius /= level
}

// uvScale brings texture coordinates back into half float range and
// returns the factor the shader has to scale them up by again.
func (g *geometry) uvScale() float64 {
	scale := 1.0
	for _, uv := range g.uvs {
		for _, x := range uv {
			if math.Abs(x) >= halfMax {
				scale = math.Max(scale, math.Ceil(math.Abs(x)/halfMax))
			}
		}
	}
	if scale > 1 {
		for i, uv := range g.uvs {
			g.uvs[i] = rules.Scaled(uv, 1/scale)
		}
	}
	return scale
}

// overflows reports the first vertex whose position does not fit in a
// half float, or -1.
func (g *geometry) overflows() int {
	for i, v := range g.vertices {
		for _, x := range v {
			if !math.IsInf(x, 0) && !math.IsNaN(x) && math.Abs(x) >= halfMax {
				return i
			}
		}
	}
	return -1
}

func (g *geometry) desc() uint32 {
	return flags.VertexDesc(0, flags.VertexSource{
		VectorFlags:     g.vectorFlags,
		HasVertices:     len(g.vertices) > 0,
		HasNormals:      len(g.normals) > 0,
		HasVertexColors: len(g.colors) > 0,
	})
}

func at(vs [][]float64, i, n int) []float64 {
	out := make([]float64, n)
	if i < len(vs) {
		copy(out, vs[i])
	}
	return out
}

// write stores the packed vertex layout, the triangle list and the
// bounding sphere on a modern shape.
func (g *geometry) write(w document.Writer, shape int, desc uint32) error {
	items := make([]document.Value, len(g.vertices))
	for i := range g.vertices {
		bitan := at(g.bitangents, i, 3)
		fields := []document.Field{document.F("Vertex", document.Vector(at(g.vertices, i, 3)...))}
		if desc&flags.VertexTangent != 0 {
			fields = append(fields, document.F("Bitangent X", document.Float(bitan[0])))
		}
		if desc&flags.VertexUV != 0 {
			fields = append(fields, document.F("UV", document.Vector(at(g.uvs, i, 2)...)))
		}
		if desc&flags.VertexNormal != 0 {
			fields = append(fields, document.F("Normal", document.Vector(at(g.normals, i, 3)...)))
			if desc&flags.VertexTangent != 0 {
				fields = append(fields,
					document.F("Bitangent Y", document.Float(bitan[1])),
					document.F("Tangent", document.Vector(at(g.tangents, i, 3)...)),
					document.F("Bitangent Z", document.Float(bitan[2])))
			}
		}
		if desc&flags.VertexColors != 0 {
			fields = append(fields, document.F("Vertex Colors", document.Vector(at(g.colors, i, 4)...)))
		}
		items[i] = document.Struct(fields...)
	}
	tris := make([]document.Value, len(g.triangles))
	for i, t := range g.triangles {
		tris[i] = document.Vector(float64(t[0]), float64(t[1]), float64(t[2]))
	}

	set := []struct {
		path string
		v    document.Value
	}{
		{"Vertex Desc", document.Flags(desc)},
		{"Num Vertices", document.Uint(uint64(len(g.vertices)))},
		{"Num Triangles", document.Uint(uint64(len(g.triangles)))},
		{"Data Size", document.Uint(dataSize(desc, len(g.vertices), len(g.triangles)))},
		{"Vertex Data", document.Array(document.KindStruct, items...)},
		{"Triangles", document.Array(document.KindVector, tris...)},
		{document.Join("Bounding Sphere", "Center"), document.Vector(g.center...)},
		{document.Join("Bounding Sphere", "Radius"), document.Float(g.radius)},
	}
	for _, s := range set {
		if err := w.Set(shape, s.path, s.v); err != nil {
			return err
		}
	}
	return nil
}

func dataSize(desc uint32, vertices, triangles int) uint64 {
	return uint64(flags.VertexSize(desc)*vertices + 6*triangles)
}
