// Package copier moves field values from one source block into one
// destination block and audits which source fields no rule touched.
package copier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
)

var (
	// ErrArraySizeMismatch is returned by CopyArray when the destination
	// array was not sized to the source length beforehand.
	ErrArraySizeMismatch = errors.New("array size mismatch")
	// ErrLinkCopy is returned when a raw copy would carry a source link id
	// into the destination document.
	ErrLinkCopy = errors.New("link fields must be relinked, not copied")
)

// State is the audit tag of one source field.
type State uint8

const (
	Unused State = iota
	Processed
	Ignored
)

func (s State) String() string {
	switch s {
	case Processed:
		return "processed"
	case Ignored:
		return "ignored"
	default:
		return "unused"
	}
}

// Options configure auditing.
type Options struct {
	Audit  bool
	Diags  *diagnostic.Diagnostics
	Logger *slog.Logger
}

// Copier is bound to one (destination block, source block) pair.
type Copier struct {
	dst   document.Writer
	dstID int
	src   document.Reader
	srcID int

	opts   Options
	states map[string]State
	done   bool
}

// New binds a copier. Options may be zero.
func New(dst document.Writer, dstID int, src document.Reader, srcID int, opts Options) *Copier {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Copier{
		dst:    dst,
		dstID:  dstID,
		src:    src,
		srcID:  srcID,
		opts:   opts,
		states: make(map[string]State),
	}
}

func (c *Copier) DestID() int   { return c.dstID }
func (c *Copier) SourceID() int { return c.srcID }

func (c *Copier) mark(path string, s State) {
	if cur, ok := c.states[path]; ok && cur == Processed {
		return
	}
	c.states[path] = s
}

// Ignore documents that source fields are deliberately dropped.
func (c *Copier) Ignore(paths ...string) {
	for _, p := range paths {
		c.mark(p, Ignored)
	}
}

// Processed documents that source fields are consumed elsewhere in a rule.
func (c *Copier) Processed(paths ...string) {
	for _, p := range paths {
		c.mark(p, Processed)
	}
}

// State returns the audit tag covering a source path.
func (c *Copier) State(path string) State {
	best, bestLen := Unused, -1
	for p, s := range c.states {
		if covers(p, path) && len(p) > bestLen {
			best, bestLen = s, len(p)
		}
	}
	return best
}

func covers(prefix, path string) bool {
	return prefix == path || strings.HasPrefix(path, prefix+document.PathSep)
}

// Value reads a source value and marks it processed.
func (c *Copier) Value(path string) (document.Value, error) {
	v, err := c.src.Value(c.srcID, path)
	if err != nil {
		return document.Value{}, err
	}
	c.Processed(path)
	return v, nil
}

// Has reports whether the source block carries path, without marking it.
func (c *Copier) Has(path string) bool { return c.src.Has(c.srcID, path) }

// Len returns the length of a source array, without marking it.
func (c *Copier) Len(path string) int { return c.src.Len(c.srcID, path) }

// Link reads a source link and marks it processed.
func (c *Copier) Link(path string) int {
	c.Processed(path)
	target, ok := c.src.Link(c.srcID, path)
	if !ok {
		return -1
	}
	return target
}

// Links reads a source link array and marks it processed.
func (c *Copier) Links(path string) []int {
	c.Processed(path)
	return c.src.LinkArray(c.srcID, path)
}

// Copy copies a field under the same name.
func (c *Copier) Copy(names ...string) error {
	for _, name := range names {
		if err := c.CopyAs(name, name); err != nil {
			return err
		}
	}
	return nil
}

// CopyIfPresent copies fields that exist on the source, skipping others.
func (c *Copier) CopyIfPresent(names ...string) error {
	for _, name := range names {
		if !c.Has(name) {
			continue
		}
		if err := c.CopyAs(name, name); err != nil {
			return err
		}
	}
	return nil
}

// CopyAs copies the source value at srcPath into dstPath. Textual kinds
// take the string path, flag kinds keep their raw bits and every other
// scalar is coerced to the kind already declared at the destination.
// Arrays are resized to the source length.
func (c *Copier) CopyAs(dstPath, srcPath string) error {
	v, err := c.src.Value(c.srcID, srcPath)
	if err != nil {
		return fmt.Errorf("copy %q: %w", srcPath, err)
	}
	if hasLinks(v) {
		return fmt.Errorf("copy %q: %w", srcPath, ErrLinkCopy)
	}
	c.Processed(srcPath)
	return c.write(dstPath, v)
}

func (c *Copier) write(dstPath string, v document.Value) error {
	switch {
	case v.Kind.IsTextual():
		cur, err := c.dst.Value(c.dstID, dstPath)
		if err == nil && cur.Kind.IsTextual() {
			cur.S = v.S
			return c.dst.Set(c.dstID, dstPath, cur)
		}
	case v.Kind == document.KindFlags:
		return c.dst.Set(c.dstID, dstPath, document.Flags(v.AsFlags()))
	}
	return c.dst.Set(c.dstID, dstPath, v)
}

// CopyArray copies an array under the same name. The destination array
// must already hold exactly as many items as the source.
func (c *Copier) CopyArray(name string) error {
	return c.CopyArrayAs(name, name)
}

// CopyArrayAs copies every item of srcPath into the pre-sized dstPath.
func (c *Copier) CopyArrayAs(dstPath, srcPath string) error {
	v, err := c.src.Value(c.srcID, srcPath)
	if err != nil {
		return fmt.Errorf("copy array %q: %w", srcPath, err)
	}
	if v.Kind != document.KindArray {
		return fmt.Errorf("copy array %q: %w", srcPath, document.ErrNotAnArray)
	}
	if hasLinks(v) {
		return fmt.Errorf("copy array %q: %w", srcPath, ErrLinkCopy)
	}
	if have := c.dst.Len(c.dstID, dstPath); !c.dst.Has(c.dstID, dstPath) || have != len(v.Items) {
		return fmt.Errorf("%w: %q has %d items, source %q has %d",
			ErrArraySizeMismatch, dstPath, have, srcPath, len(v.Items))
	}
	c.Processed(srcPath)
	for i, item := range v.Items {
		if err := c.write(document.Join(dstPath, i), item); err != nil {
			return fmt.Errorf("copy array %q item %d: %w", srcPath, i, err)
		}
	}
	return nil
}

// MatchArray sizes dstPath to the length of srcPath without copying.
func (c *Copier) MatchArray(dstPath, srcPath string) error {
	return c.dst.ResizeArray(c.dstID, dstPath, c.src.Len(c.srcID, srcPath))
}

// Set writes a computed destination value.
func (c *Copier) Set(dstPath string, v document.Value) error {
	return c.dst.Set(c.dstID, dstPath, v)
}

// Finish closes the audit. Every source leaf that was neither copied,
// ignored nor marked processed is reported as unused when auditing is on.
func (c *Copier) Finish() []string {
	if c.done {
		return nil
	}
	c.done = true
	if !c.opts.Audit {
		return nil
	}
	b, err := c.src.Block(c.srcID)
	if err != nil {
		return nil
	}
	var unused []string
	for _, f := range b.Fields {
		leaves(f.Name, f.Value, func(path string) {
			if c.State(path) == Unused {
				unused = append(unused, path)
			}
		})
	}
	for _, path := range unused {
		at := diagnostic.At(c.srcID, b.Type).On(path)
		if c.opts.Diags != nil {
			c.opts.Diags.AddInfo(diagnostic.CodeUnusedField, at, "source field %q was not converted", path)
		}
		c.opts.Logger.Debug("Unused source field.", "block", c.srcID, "type", b.Type, "field", path)
	}
	if len(unused) > 0 && c.opts.Logger.Enabled(context.Background(), slog.LevelDebug) {
		c.opts.Logger.Debug("Audited block.", "block", c.srcID, "dump", document.Dump(c.src, c.srcID))
	}
	return unused
}

func leaves(path string, v document.Value, fn func(string)) {
	switch v.Kind {
	case document.KindStruct:
		if len(v.Fields) == 0 {
			fn(path)
		}
		for _, f := range v.Fields {
			leaves(document.Join(path, f.Name), f.Value, fn)
		}
	case document.KindArray:
		if len(v.Items) == 0 {
			fn(path)
		}
		for i, item := range v.Items {
			leaves(document.Join(path, i), item, fn)
		}
	default:
		fn(path)
	}
}

func hasLinks(v document.Value) bool {
	switch v.Kind {
	case document.KindRef, document.KindPtr:
		return true
	case document.KindStruct:
		for _, f := range v.Fields {
			if hasLinks(f.Value) {
				return true
			}
		}
	case document.KindArray:
		if v.Elem.IsLink() {
			return true
		}
		for _, item := range v.Items {
			if hasLinks(item) {
				return true
			}
		}
	}
	return false
}
