package collision

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/rules"
)

var (
	ErrZeroRadius  = errors.New("collision shape radius of 0")
	ErrMixedRadius = errors.New("collision shapes of one body disagree on radius")
	ErrShapeType   = errors.New("unsupported collision shape")
)

// packedScale is the axis scale of packed strip shapes behind a transform.
const packedScale = 7

// scale is the uniform scale one rigid body's shapes were authored at. The
// legacy radius of convex shapes carries it.
type scale struct {
	set    bool
	radius float64
}

func (s *scale) update(r float64) error {
	switch {
	case r == 0:
		return ErrZeroRadius
	case !s.set:
		s.set, s.radius = true, r
	case s.radius != r:
		return fmt.Errorf("%w: %g and %g", ErrMixedRadius, s.radius, r)
	}
	return nil
}

func (s *scale) factor() float64 {
	if !s.set {
		return 1
	}
	return s.radius
}

// convertShape converts a shape subtree. Shapes shared between bodies are
// converted once. Failures are reported and yield -1.
func convertShape(ctx *convert.Context, src int, sc *scale) int {
	if src < 0 {
		return -1
	}
	if id, ok := ctx.Registry().Resolve(src); ok {
		return id
	}
	id, err := shape(ctx, src, sc)
	if err != nil {
		ctx.Errorf(src, diagnostic.CodeUnsupported, "%v", err)
		if id < 0 {
			ctx.Ignore(src, true)
		}
	}
	return id
}

func shape(ctx *convert.Context, src int, sc *scale) (int, error) {
	r, w := ctx.Source(), ctx.Dest()
	s := &shapeRule{ctx: ctx, src: src, sc: sc}

	switch typ := r.TypeName(src); typ {
	case "bhkMoppBvTreeShape":
		if err := s.copy("Shape"); err != nil {
			return s.dst, err
		}
		if err := w.Set(s.dst, "Build Type", document.Uint(1)); err != nil {
			return s.dst, err
		}
		return s.dst, s.inner("Shape")

	case "bhkListShape":
		if err := s.copy("Sub Shapes"); err != nil {
			return s.dst, err
		}
		s.material()
		for i, sub := range r.LinkArray(src, "Sub Shapes") {
			if err := w.SetLink(s.dst, document.Join("Sub Shapes", i), convertShape(ctx, sub, sc)); err != nil {
				return s.dst, err
			}
		}
		return s.dst, nil

	case "bhkConvexVerticesShape":
		if err := s.copy(); err != nil {
			return s.dst, err
		}
		s.radius(document.GetOr(r, src, "Radius", 0.0))
		n := w.Len(s.dst, "Vertices")
		for i := 0; i < n; i++ {
			if err := rules.ScaleField(w, s.dst, document.Join("Vertices", i), sc.factor()); err != nil {
				return s.dst, err
			}
		}
		s.material()
		return s.dst, w.Set(s.dst, "Radius", document.Float(0))

	case "bhkConvexTransformShape":
		if err := s.copy("Shape"); err != nil {
			return s.dst, err
		}
		s.material()
		s.radius(document.GetOr(r, src, "Radius", 0.0))
		if m, err := w.Value(s.dst, "Transform"); err == nil {
			if err := w.Set(s.dst, "Transform", document.Vector(scaleColumns(m.AsVector(), sc.factor())...)); err != nil {
				return s.dst, err
			}
		}
		return s.dst, s.inner("Shape")

	case "bhkTransformShape":
		if err := s.copy("Shape"); err != nil {
			return s.dst, err
		}
		s.material()
		if err := s.inner("Shape"); err != nil {
			return s.dst, err
		}
		m, err := w.Value(s.dst, "Transform")
		if err != nil {
			return s.dst, nil
		}
		mat := m.AsVector()
		if len(mat) == 16 {
			for c := 0; c < 3; c++ {
				mat[12+c] *= havokScale
			}
			switch leaf := leafShape(r, src); leaf {
			case "bhkPackedNiTriStripsShape":
				for d := 0; d < 3; d++ {
					mat[d*4+d] *= packedScale
				}
			case "bhkBoxShape", "bhkSphereShape":
			default:
				ctx.Errorf(src, diagnostic.CodeUnsupported, "transform over %s", leaf)
			}
		}
		return s.dst, w.Set(s.dst, "Transform", document.Vector(mat...))

	case "bhkBoxShape":
		if err := s.copy(); err != nil {
			return s.dst, err
		}
		s.radius(document.GetOr(r, src, "Radius", 0.0))
		s.material()
		if err := rules.ScaleField(w, s.dst, "Dimensions", sc.factor()); err != nil {
			return s.dst, err
		}
		return s.dst, w.Set(s.dst, "Radius", document.Float(0))

	case "bhkCapsuleShape":
		if err := s.copy(); err != nil {
			return s.dst, err
		}
		s.material()
		s.radius(havokScale)
		radius := document.GetOr(r, src, "Radius", 0.0) * havokScale
		for _, f := range []string{"Radius", "Radius 1", "Radius 2"} {
			if err := w.Set(s.dst, f, document.Float(radius)); err != nil {
				return s.dst, err
			}
		}
		for _, f := range []string{"First Point", "Second Point"} {
			if err := rules.ScaleField(w, s.dst, f, havokScale); err != nil {
				return s.dst, err
			}
		}
		return s.dst, nil

	case "bhkSphereShape":
		s.dst = w.InsertBlock(typ)
		if err := ctx.Registry().MarkHandled(src, s.dst); err != nil {
			return s.dst, err
		}
		s.material()
		s.radius(havokScale)
		return s.dst, w.Set(s.dst, "Radius", document.Float(document.GetOr(r, src, "Radius", 0.0)*havokScale))

	default:
		return -1, fmt.Errorf("%w: %s", ErrShapeType, typ)
	}
}

type shapeRule struct {
	ctx *convert.Context
	src int
	dst int
	sc  *scale
}

func (s *shapeRule) copy(detach ...string) error {
	dst, err := s.ctx.CopyBlock(s.src, detach...)
	s.dst = dst
	if err != nil {
		return err
	}
	return s.ctx.Registry().MarkHandled(s.src, dst)
}

func (s *shapeRule) inner(path string) error {
	child, ok := s.ctx.Source().Link(s.src, path)
	if !ok {
		return nil
	}
	return s.ctx.Dest().SetLink(s.dst, path, convertShape(s.ctx, child, s.sc))
}

func (s *shapeRule) radius(r float64) {
	if err := s.sc.update(r); err != nil {
		s.ctx.Errorf(s.src, diagnostic.CodeUnknownStructure, "%v", err)
	}
}

// material translates the Havok material, stored either directly or in a
// material struct.
func (s *shapeRule) material() {
	r := s.ctx.Source()
	path := "Material"
	if r.Has(s.src, document.Join("Material", "Material")) {
		path = document.Join("Material", "Material")
	}
	opt, err := document.Get[string](r, s.src, path)
	if err != nil {
		return
	}
	out := s.ctx.Enum(s.src, "havok_material", opt)
	if err := s.ctx.Dest().Set(s.dst, path, document.Enum(out)); err != nil {
		s.ctx.Logger().Warn("Failed to set shape material.", "block", s.dst, "error", err)
	}
}

// leafShape looks through a transform and an optional MOPP tree to the
// shape that carries the geometry.
func leafShape(r document.Reader, transform int) string {
	inner, ok := r.Link(transform, "Shape")
	if !ok {
		return ""
	}
	if r.TypeName(inner) == "bhkMoppBvTreeShape" {
		if leaf, ok := r.Link(inner, "Shape"); ok {
			return r.TypeName(leaf)
		}
	}
	return r.TypeName(inner)
}

// scaleColumns multiplies a row-major 4x4 matrix by a uniform scale on the
// right, scaling its first three columns.
func scaleColumns(m []float64, f float64) []float64 {
	out := append([]float64(nil), m...)
	if len(out) != 16 {
		return out
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 3; col++ {
			out[row*4+col] *= f
		}
	}
	return out
}
