package copier

import "github.com/specialistvlad/nifconv/internal/document"

// Read returns a typed source value and marks it processed.
func Read[T document.Scalar](c *Copier, path string) (T, error) {
	v, err := document.Get[T](c.src, c.srcID, path)
	if err != nil {
		return v, err
	}
	c.Processed(path)
	return v, nil
}

// ReadOr is Read with a fallback for missing fields.
func ReadOr[T document.Scalar](c *Copier, path string, def T) T {
	v, err := Read[T](c, path)
	if err != nil {
		return def
	}
	return v
}

// Vector returns a source vector and marks it processed.
func (c *Copier) Vector(path string) []float64 {
	v, err := c.Value(path)
	if err != nil {
		return nil
	}
	return v.AsVector()
}
