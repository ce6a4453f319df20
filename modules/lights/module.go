package lights

import (
	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/rules"
)

// Module implements the convert.Module interface for lights and cameras.
type Module struct{}

// OnLight converts point and ambient lights. The affected node list and
// switch state have no modern counterpart.
func OnLight(ctx *convert.Context, src int) (int, error) {
	typ := ctx.Source().TypeName(src)
	dst, c, err := object(ctx, typ, src)
	if err != nil {
		return dst, err
	}
	c.Ignore("Switch State", "Num Affected Nodes", "Affected Nodes")
	if err := c.CopyIfPresent("Dimmer", "Ambient Color", "Diffuse Color", "Specular Color"); err != nil {
		return dst, err
	}
	if typ == "NiPointLight" {
		if err := c.CopyIfPresent("Constant Attenuation", "Linear Attenuation", "Quadratic Attenuation"); err != nil {
			return dst, err
		}
	}
	c.Finish()
	return dst, nil
}

var cameraFields = []string{
	"Camera Flags",
	"Frustum Left", "Frustum Right", "Frustum Top", "Frustum Bottom", "Frustum Near", "Frustum Far",
	"Use Orthographic Projection",
	"Viewport Left", "Viewport Right", "Viewport Top", "Viewport Bottom",
	"LOD Adjust",
	"Num Screen Polygons", "Num Screen Textures",
}

// OnCamera converts a camera. Its scene link is dropped.
func OnCamera(ctx *convert.Context, src int) (int, error) {
	dst, c, err := object(ctx, "NiCamera", src)
	if err != nil {
		return dst, err
	}
	c.Ignore("Scene")
	if err := c.CopyIfPresent(cameraFields...); err != nil {
		return dst, err
	}
	c.Finish()
	return dst, nil
}

func object(ctx *convert.Context, typ string, src int) (int, *copier.Copier, error) {
	dst, err := rules.NewObject(ctx, typ, src)
	if err != nil {
		return dst, nil, err
	}
	c := ctx.Copier(dst, src)
	if _, err := rules.Header(ctx, c); err != nil {
		return dst, c, err
	}
	properties(ctx, c)
	return dst, c, nil
}

// properties drops the property list of objects that cannot carry a
// shader. Anything in it is reported.
func properties(ctx *convert.Context, c *copier.Copier) {
	c.Processed("Num Properties")
	for _, p := range c.Links("Properties") {
		if p < 0 {
			continue
		}
		ctx.Errorf(p, diagnostic.CodeUnsupported, "%s on a %s is not converted",
			ctx.Source().TypeName(p), ctx.Source().TypeName(c.SourceID()))
		ctx.Ignore(p, true)
	}
}

// Register registers the light and camera rules with the dispatcher.
func (m *Module) Register(d *convert.Dispatcher) {
	d.Register(OnLight, "NiPointLight", "NiAmbientLight")
	d.Register(OnCamera, "NiCamera")
}
