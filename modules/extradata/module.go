package extradata

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/document"
)

// Module implements the convert.Module interface for extra data blocks
// that change shape between versions. Extra data that keeps its layout is
// covered by the exact copy module.
type Module struct{}

// OnFurnitureMarker turns a furniture marker into a furniture marker node.
// Only the offsets of the positions survive.
func OnFurnitureMarker(ctx *convert.Context, src int) (int, error) {
	dst, err := ctx.NewBlock("BSFurnitureMarkerNode", src)
	if err != nil {
		return dst, err
	}
	c := ctx.Copier(dst, src)
	if err := c.CopyIfPresent("Name", "Num Positions"); err != nil {
		return dst, err
	}
	n := c.Len("Positions")
	if err := ctx.Dest().ResizeArray(dst, "Positions", n); err != nil {
		return dst, err
	}
	for i := 0; i < n; i++ {
		at := document.Join("Positions", i)
		if err := c.CopyAs(document.Join(at, "Offset"), document.Join(at, "Offset")); err != nil {
			return dst, err
		}
		c.Ignore(document.Join(at, "Orientation"), document.Join(at, "Position Ref 1"), document.Join(at, "Position Ref 2"))
	}
	c.Processed("Positions")
	c.Finish()
	return dst, nil
}

// OnDecalPlacement drops decal placement vectors; the modern format has
// no counterpart.
func OnDecalPlacement(ctx *convert.Context, src int) (int, error) {
	ctx.Ignore(src, false)
	return -1, nil
}

// Register registers the extra data rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnFurnitureMarker, "BSFurnitureMarker")
	d.Register(OnDecalPlacement, "BSDecalPlacementVectorExtraData")
}
