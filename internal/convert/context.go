package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/nifconv/internal/controller"
	"github.com/specialistvlad/nifconv/internal/copier"
	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/enummap"
	"github.com/specialistvlad/nifconv/internal/lod"
	"github.com/specialistvlad/nifconv/internal/registry"
	"github.com/specialistvlad/nifconv/internal/resolver"
)

// Textures configures the texture path rewrite.
type Textures struct {
	Root   string
	Folder string
}

// DefaultTextures inserts "new_vegas\" after the textures root.
func DefaultTextures() Textures {
	return Textures{Root: `textures\`, Folder: `new_vegas\`}
}

// Rewrite strips a leading data directory and inserts the folder after
// the textures root. Paths outside the root are only stripped.
func (t Textures) Rewrite(path string) string {
	if path == "" {
		return path
	}
	if len(path) >= 5 && strings.EqualFold(path[:5], `data\`) {
		path = path[5:]
	}
	if t.Folder == "" || len(path) < len(t.Root) || !strings.EqualFold(path[:len(t.Root)], t.Root) {
		return path
	}
	rest := path[len(t.Root):]
	if len(rest) >= len(t.Folder) && strings.EqualFold(rest[:len(t.Folder)], t.Folder) {
		return path
	}
	return path[:len(t.Root)] + t.Folder + rest
}

// RunFlags are facts discovered mid-traversal and consumed after it.
type RunFlags struct {
	Landscape bool
	Building  bool
}

// Context is the state of one document-to-document run. It is never
// shared between runs.
type Context struct {
	src   document.Reader
	dst   document.Writer
	disp  *Dispatcher
	reg   *registry.Registry
	links *resolver.Resolver
	asm   *controller.Assembler
	diags *diagnostic.Diagnostics

	logger   *slog.Logger
	audit    bool
	enums    enummap.Set
	textures Textures
	file     lod.Props

	Flags RunFlags
}

var _ controller.Host = (*Context)(nil)

func newContext(src document.Reader, dst document.Writer, disp *Dispatcher, opts Options, diags *diagnostic.Diagnostics) *Context {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	links := resolver.New(opts.Logger)
	regOpts := []registry.Option{registry.WithDropper(links.Dropper(dst))}
	if opts.Progress != nil {
		regOpts = append(regOpts, registry.WithProgress(opts.Progress))
	}
	return &Context{
		src:      src,
		dst:      dst,
		disp:     disp,
		reg:      registry.New(src, regOpts...),
		links:    links,
		asm:      controller.New(),
		diags:    diags,
		logger:   opts.Logger,
		audit:    opts.Audit,
		enums:    opts.Enums,
		textures: opts.Textures,
		file:     opts.File,
	}
}

func (c *Context) Source() document.Reader              { return c.src }
func (c *Context) Dest() document.Writer                { return c.dst }
func (c *Context) Registry() *registry.Registry         { return c.reg }
func (c *Context) Links() *resolver.Resolver            { return c.links }
func (c *Context) Assembler() *controller.Assembler     { return c.asm }
func (c *Context) Diagnostics() *diagnostic.Diagnostics { return c.diags }
func (c *Context) Logger() *slog.Logger                 { return c.logger }
func (c *Context) Enums() enummap.Set                   { return c.enums }
func (c *Context) Textures() Textures                   { return c.textures }
func (c *Context) File() lod.Props                      { return c.file }

// at names a source block in diagnostics.
func (c *Context) at(src int) diagnostic.Subject {
	return diagnostic.At(src, c.src.TypeName(src))
}

// Errorf records an error diagnostic about a source block.
func (c *Context) Errorf(src int, code, format string, args ...any) {
	d := c.diags.AddError(code, c.at(src), format, args...)
	diagnostic.Log(context.Background(), c.logger, d)
}

// Warnf records a warning diagnostic about a source block.
func (c *Context) Warnf(src int, code, format string, args ...any) {
	d := c.diags.AddWarning(code, c.at(src), format, args...)
	diagnostic.Log(context.Background(), c.logger, d)
}

// reportedError marks a failure that already has a diagnostic.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Convert dispatches a source block. A block converted earlier returns its
// existing destination; cycles stop there because rules mark their source
// handled before they recurse. Failures are recorded as diagnostics and
// the block is left handled so siblings carry on.
func (c *Context) Convert(src int) (int, error) {
	if src < 0 || src >= c.src.BlockCount() {
		return -1, fmt.Errorf("%w: %d", document.ErrNoSuchBlock, src)
	}
	if c.reg.IsHandled(src) {
		dst, _ := c.reg.Resolve(src)
		return dst, nil
	}

	typ := c.src.TypeName(src)
	rule, ok := c.disp.Rule(typ)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnregisteredType, typ)
		c.Errorf(src, diagnostic.CodeUnregisteredType, "no rule converts %s", typ)
		c.reg.Ignore(src, true)
		return -1, &reportedError{err}
	}

	c.logger.Debug("Converting block.", "block", src, "type", typ)
	dst, err := rule(c, src)
	if err != nil {
		var rep *reportedError
		if !errors.As(err, &rep) {
			c.Errorf(src, codeFor(err), "%v", err)
		}
		if !c.reg.IsHandled(src) {
			c.reg.Ignore(src, false)
		}
		if mapped, ok := c.reg.Resolve(src); ok {
			dst = mapped
		}
		return dst, &reportedError{fmt.Errorf("convert %s %d: %w", typ, src, err)}
	}
	if !c.reg.IsHandled(src) {
		if err := c.reg.MarkHandled(src, dst); err != nil {
			c.Errorf(src, diagnostic.CodeConflict, "%v", err)
		}
	}
	return dst, nil
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, copier.ErrArraySizeMismatch):
		return diagnostic.CodeArraySizeMismatch
	case errors.Is(err, registry.ErrConflictingMapping):
		return diagnostic.CodeConflict
	case errors.Is(err, ErrUnregisteredType):
		return diagnostic.CodeUnregisteredType
	case errors.Is(err, controller.ErrMissingCloneOwner):
		return diagnostic.CodeMissingCloneOwner
	}
	return diagnostic.CodeRuleFailed
}

// NewBlock inserts a destination block for src and marks src handled
// before any child is visited.
func (c *Context) NewBlock(typeTag string, src int) (int, error) {
	dst := c.dst.InsertBlock(typeTag)
	if err := c.reg.MarkHandled(src, dst); err != nil {
		return dst, err
	}
	return dst, nil
}

// Hold withholds the progress of the next handled block until the
// finalizing phases ran.
func (c *Context) Hold() { c.reg.HoldNext() }

// Copier binds a copier with the run's audit settings.
func (c *Context) Copier(dst, src int) *copier.Copier {
	return copier.New(c.dst, dst, c.src, src, copier.Options{Audit: c.audit, Diags: c.diags, Logger: c.logger})
}

// Defer points dst's path at whatever srcTarget becomes. The slot reads
// absent until the links are resolved.
func (c *Context) Defer(dst int, path string, srcTarget int) {
	if err := c.dst.SetLink(dst, path, -1); err != nil {
		c.logger.Warn("Failed to prepare deferred link.", "block", dst, "field", path, "error", err)
		return
	}
	c.links.Defer(srcTarget, resolver.Slot{Block: dst, Path: path})
}

// DeferArray writes a link array whose items are all deferred.
func (c *Context) DeferArray(dst int, path string, srcTargets []int) error {
	if err := c.dst.Set(dst, path, document.RefArray(make([]int, len(srcTargets))...)); err != nil {
		return err
	}
	for i, t := range srcTargets {
		c.Defer(dst, document.Join(path, i), t)
	}
	return nil
}

// Relink defers a link field of the same name from src to dst. Back
// references stay pointers.
func (c *Context) Relink(cp *copier.Copier, path string) {
	t := cp.Link(path)
	if t < 0 {
		return
	}
	if v, err := c.src.Value(cp.SourceID(), path); err == nil && v.Kind == document.KindPtr {
		_ = c.dst.Set(cp.DestID(), path, document.Ptr(-1))
	}
	c.Defer(cp.DestID(), path, t)
}

// RelinkArray defers every item of a link array of the same name.
func (c *Context) RelinkArray(cp *copier.Copier, path string) error {
	if !cp.Has(path) {
		return nil
	}
	links := cp.Links(path)
	if v, err := c.src.Value(cp.SourceID(), path); err == nil && v.Elem == document.KindPtr {
		items := make([]document.Value, len(links))
		for i := range items {
			items[i] = document.Ptr(-1)
		}
		if err := c.dst.Set(cp.DestID(), path, document.Array(document.KindPtr, items...)); err != nil {
			return err
		}
		for i, t := range links {
			c.Defer(cp.DestID(), document.Join(path, i), t)
		}
		return nil
	}
	return c.DeferArray(cp.DestID(), path, links)
}

// Child converts a source block right away and writes the result into
// dst's path. Failures of the child are already recorded and do not fail
// the caller.
func (c *Context) Child(dst int, path string, src int) int {
	if src < 0 {
		return -1
	}
	id, err := c.Convert(src)
	if err != nil {
		c.logger.Debug("Child conversion failed.", "block", src, "error", err)
	}
	if err := c.dst.SetLink(dst, path, id); err != nil {
		c.Errorf(src, diagnostic.CodeRuleFailed, "link %q: %v", path, err)
	}
	return id
}

// ChildLink converts the block linked at path in the copier's source and
// links the result under the same path.
func (c *Context) ChildLink(cp *copier.Copier, path string) int {
	return c.Child(cp.DestID(), path, cp.Link(path))
}

// Children converts every block of a source link array right away. Absent
// and dropped items are removed from the destination array.
func (c *Context) Children(dst int, path string, srcs []int) []int {
	var out []int
	for _, s := range srcs {
		if s < 0 {
			continue
		}
		id, err := c.Convert(s)
		if err != nil {
			c.logger.Debug("Child conversion failed.", "block", s, "error", err)
		}
		if id >= 0 {
			out = append(out, id)
		}
	}
	if err := c.dst.Set(dst, path, document.RefArray(out...)); err != nil {
		c.logger.Warn("Failed to write children.", "block", dst, "field", path, "error", err)
	}
	return out
}

// Ignore marks a source block handled with no destination.
func (c *Context) Ignore(src int, cascade bool) { c.reg.Ignore(src, cascade) }

// IgnoreLink ignores the block linked at path in the copier's source.
func (c *Context) IgnoreLink(cp *copier.Copier, path string, cascade bool) {
	if t := cp.Link(path); t >= 0 {
		c.reg.Ignore(t, cascade)
	}
}

// CopyBlock clones a source block into the destination, deferring every
// link except those under the detach paths.
func (c *Context) CopyBlock(src int, detach ...string) (int, error) {
	b, err := c.src.Block(src)
	if err != nil {
		return -1, err
	}
	dst := c.dst.InsertBlock(b.Type)
	for _, f := range b.Fields {
		if err := c.dst.Set(dst, f.Name, f.Value); err != nil {
			return dst, fmt.Errorf("copy %s field %q: %w", b.Type, f.Name, err)
		}
	}
	for _, l := range b.Links() {
		if err := c.dst.SetLink(dst, l.Path, -1); err != nil {
			return dst, err
		}
		if l.Target < 0 || detached(l.Path, detach) {
			continue
		}
		c.links.Defer(l.Target, resolver.Slot{Block: dst, Path: l.Path})
	}
	return dst, nil
}

func detached(path string, detach []string) bool {
	for _, d := range detach {
		if path == d || strings.HasPrefix(path, d+document.PathSep) {
			return true
		}
	}
	return false
}

// Claim maps src to dst unless an earlier rule already settled src.
// Shared legacy blocks folded into several destination blocks keep their
// first mapping.
func (c *Context) Claim(src, dst int) {
	if src < 0 || c.reg.IsHandled(src) {
		return
	}
	if err := c.reg.MarkHandled(src, dst); err != nil {
		c.logger.Debug("Claim lost to an earlier mapping.", "block", src, "error", err)
	}
}

// Exact copies a block field for field and marks it handled. Owned
// children are converted right away, back references are deferred and a
// controller chain is attached through the assembler.
func (c *Context) Exact(src int) (int, error) {
	dst, err := c.CopyBlock(src, "Controller")
	if err != nil {
		return dst, err
	}
	if err := c.reg.MarkHandled(src, dst); err != nil {
		return dst, err
	}
	if c.src.Has(src, "Controller") {
		c.Controllers(controller.Request{
			Owner:  dst,
			Source: src,
			Name:   document.GetOr(c.src, src, "Name", ""),
			Target: -1,
		})
	}
	b, _ := c.src.Block(src)
	for _, l := range b.Links() {
		if l.Kind != document.KindRef || l.Target < 0 || detached(l.Path, []string{"Controller"}) {
			continue
		}
		if _, err := c.Convert(l.Target); err != nil {
			c.logger.Debug("Child conversion failed.", "block", l.Target, "error", err)
		}
	}
	return dst, nil
}

// Controllers converts the controller chain of an owner. Problems are
// recorded by the assembler.
func (c *Context) Controllers(req controller.Request) int {
	id, err := c.asm.Attach(c, req)
	if err != nil {
		c.logger.Debug("Controller chain incomplete.", "owner", req.Owner, "error", err)
	}
	return id
}

// Sequence converts a controller sequence.
func (c *Context) Sequence(src int) (int, error) {
	return c.asm.Sequence(c, src)
}

// Enum translates an enum option through a named map. Unmapped options are
// reported and returned unchanged.
func (c *Context) Enum(src int, mapName, option string) string {
	m, ok := c.enums.Lookup(mapName)
	if !ok {
		c.Errorf(src, diagnostic.CodeUnmappedEnum, "no enum map %q", mapName)
		return option
	}
	out, err := m.Translate(option)
	if err != nil {
		c.Errorf(src, diagnostic.CodeUnmappedEnum, "%v", err)
		return option
	}
	return out
}
