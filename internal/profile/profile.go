// Package profile loads HCL conversion profiles. A profile sets batch
// defaults, changes the texture path rewrite, overrides enum-map entries
// and extends the set of block types copied verbatim.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/ctxlog"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/enummap"
	"github.com/specialistvlad/nifconv/internal/lod"
)

var ErrUnknownEnumMap = errors.New("unknown enum map")

// Profile is the decoded content of a profile file. Batch settings are
// pointers so that callers can tell unset values from zero values.
type Profile struct {
	Batch     Batch
	Textures  convert.Textures
	EnumMaps  map[string]map[string]string
	ExactCopy []string
}

// Batch holds the batch defaults of a profile.
type Batch struct {
	Workers  *int
	Pattern  *string
	Audit    *bool
	Compress *bool
}

type fileRoot struct {
	Batch     *batchBlock     `hcl:"batch,block"`
	Textures  *texturesBlock  `hcl:"textures,block"`
	EnumMaps  []*enumMapBlock `hcl:"enum_map,block"`
	ExactCopy []string        `hcl:"exact_copy,optional"`
}

type batchBlock struct {
	Workers  *int    `hcl:"workers,optional"`
	Pattern  *string `hcl:"pattern,optional"`
	Audit    *bool   `hcl:"audit,optional"`
	Compress *bool   `hcl:"compress,optional"`
}

type texturesBlock struct {
	Root   *string `hcl:"root,optional"`
	Folder *string `hcl:"folder,optional"`
}

type enumMapBlock struct {
	Name    string            `hcl:"name,label"`
	Entries map[string]string `hcl:"entries"`
}

// Default is the profile used when no file is given.
func Default() *Profile {
	return &Profile{Textures: convert.DefaultTextures(), EnumMaps: map[string]map[string]string{}}
}

// EvalContext exposes the variables available to profile expressions.
func EvalContext() *hcl.EvalContext {
	version := func(name string) cty.Value {
		return cty.ObjectVal(map[string]cty.Value{"name": cty.StringVal(name)})
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"cell_size": cty.NumberIntVal(lod.CellSize),
			"legacy":    version(document.VersionLegacy),
			"modern":    version(document.VersionModern),
		},
	}
}

// Load parses the profile at path. An empty path yields Default.
func Load(ctx context.Context, path string) (*Profile, error) {
	logger := ctxlog.FromContext(ctx)
	if path == "" {
		logger.Debug("No profile given, using defaults.")
		return Default(), nil
	}
	logger.Debug("Loading profile.", "path", path)

	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, diags)
	}
	return decode(ctx, path, file.Body)
}

// Parse is Load for in-memory profile source.
func Parse(ctx context.Context, filename string, src []byte) (*Profile, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse profile %s: %w", filename, diags)
	}
	return decode(ctx, filename, file.Body)
}

func decode(ctx context.Context, name string, body hcl.Body) (*Profile, error) {
	var root fileRoot
	if diags := gohcl.DecodeBody(body, EvalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode profile %s: %w", name, diags)
	}

	p := Default()
	if b := root.Batch; b != nil {
		p.Batch = Batch{Workers: b.Workers, Pattern: b.Pattern, Audit: b.Audit, Compress: b.Compress}
	}
	if t := root.Textures; t != nil {
		if t.Root != nil {
			p.Textures.Root = *t.Root
		}
		if t.Folder != nil {
			p.Textures.Folder = *t.Folder
		}
	}
	known := enummap.Defaults()
	for _, m := range root.EnumMaps {
		if _, ok := known.Lookup(m.Name); !ok {
			return nil, fmt.Errorf("%w %q in %s", ErrUnknownEnumMap, m.Name, name)
		}
		if p.EnumMaps[m.Name] == nil {
			p.EnumMaps[m.Name] = map[string]string{}
		}
		for from, to := range m.Entries {
			p.EnumMaps[m.Name][from] = to
		}
	}
	p.ExactCopy = root.ExactCopy

	ctxlog.FromContext(ctx).Debug("Profile loaded.",
		"path", name,
		"enum_maps", len(p.EnumMaps),
		"exact_copy", len(p.ExactCopy))
	return p, nil
}

// Enums returns the built-in enum maps with the profile's overrides.
func (p *Profile) Enums() enummap.Set {
	set := enummap.Defaults()
	for name, entries := range p.EnumMaps {
		if m, ok := set.Lookup(name); ok {
			set.Replace(name, m.Override(entries))
		}
	}
	return set
}
