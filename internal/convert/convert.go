package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/specialistvlad/nifconv/internal/diagnostic"
	"github.com/specialistvlad/nifconv/internal/document"
	"github.com/specialistvlad/nifconv/internal/enummap"
	"github.com/specialistvlad/nifconv/internal/lod"
)

// ErrCancelled is returned in Result.Err when the context ended before the
// run started.
var ErrCancelled = errors.New("conversion cancelled")

// Options configures one conversion run.
type Options struct {
	// Audit reports source fields no rule touched.
	Audit  bool
	Logger *slog.Logger
	// Progress receives handled-block increments.
	Progress func(delta int)
	Enums    enummap.Set
	Textures Textures
	// File is the role derived from the document path. The zero value
	// skips the file type check.
	File lod.Props
}

// Result is the outcome of one run. Success is false when an error was
// recorded or a source block was left unhandled.
type Result struct {
	Dest        *document.Arena
	Diagnostics diagnostic.Diagnostics
	Success     bool
	Flags       RunFlags
	// Handled counts source blocks with a settled outcome.
	Handled int
	Blocks  int
	Err     error
}

// Convert runs the whole pipeline for one document: dispatch from every
// root, resolve deferred links, finalize controller sequences and
// emittance controllers, run the LOD passes and report leftovers.
func Convert(ctx context.Context, d *Dispatcher, src document.Reader, opts Options) Result {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Enums.Material == nil || opts.Enums.Layer == nil {
		opts.Enums = enummap.Defaults()
	}
	if opts.Textures == (Textures{}) {
		opts.Textures = DefaultTextures()
	}
	res := Result{Blocks: src.BlockCount()}
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrCancelled, err)
		return res
	}

	dst := document.New(document.VersionModern, document.ModernSchema())
	diags := &diagnostic.Diagnostics{}
	c := newContext(src, dst, d, opts, diags)
	logger := opts.Logger

	roots := src.Roots()
	logger.Debug("Starting conversion.", "blocks", src.BlockCount(), "roots", len(roots))
	for _, root := range roots {
		if _, err := c.Convert(root); err != nil {
			logger.Debug("Root conversion failed.", "block", root, "error", err)
		}
	}

	resolved := c.links.ResolveAll(dst, c.reg, diags)
	logger.Debug("Links resolved.", "count", resolved)

	failed := false
	if err := c.asm.FinalizeSequences(dst, diags); err != nil {
		logger.Error("Finalizing controller sequences failed.", "error", err)
		failed = true
	}
	c.asm.FinalizeControlled(dst, diags)
	c.reg.ReleaseHeld()

	pass := &lod.Pass{Dst: dst, Props: opts.File, Diags: diags}
	if c.Flags.Landscape {
		if err := pass.Landscape(); err != nil {
			logger.Error("Landscape LOD restructuring failed.", "error", err)
		}
	}
	if c.Flags.Building {
		if err := pass.Objects(); err != nil {
			logger.Error("Object LOD restructuring failed.", "error", err)
		}
	}

	for _, id := range c.reg.Unhandled() {
		failed = true
		d := diags.AddWarning(diagnostic.CodeUnhandledBlock, c.at(id), "block was never converted")
		diagnostic.Log(ctx, logger, d)
		if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("Unhandled block.", "block", id, "dump", document.Dump(src, id))
		}
	}

	if opts.File.Type != lod.Invalid {
		if err := opts.File.Check(c.Flags.Landscape, c.Flags.Building); err != nil {
			diags.AddError(diagnostic.CodeFileTypeMismatch, diagnostic.None, "%v", err)
		}
	}

	res.Dest = dst
	res.Diagnostics = *diags
	res.Flags = c.Flags
	res.Handled = c.reg.HandledCount()
	res.Success = diags.Success() && !failed
	logger.Info("Conversion finished.",
		"success", res.Success,
		"handled", res.Handled,
		"blocks", res.Blocks,
		"errors", len(diags.Errors),
		"warnings", len(diags.Warnings))
	return res
}
