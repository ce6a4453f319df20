package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/nifconv/internal/batch"
	"github.com/specialistvlad/nifconv/internal/ctxlog"
	"github.com/specialistvlad/nifconv/internal/fsutil"
	"github.com/specialistvlad/nifconv/internal/ledger"
	"github.com/specialistvlad/nifconv/internal/notify"
)

// ErrDocumentsFailed is returned by Run when the batch finished but at
// least one document failed.
var ErrDocumentsFailed = errors.New("some documents failed to convert")

// settings are the batch values after merging the command line over the
// profile.
type settings struct {
	workers  int
	pattern  string
	audit    bool
	compress bool
}

func (a *App) settings() settings {
	s := settings{workers: a.config.Workers, pattern: a.config.Pattern}
	pb := a.profile.Batch
	if s.workers == 0 && pb.Workers != nil {
		s.workers = *pb.Workers
	}
	if s.pattern == "" && pb.Pattern != nil {
		s.pattern = *pb.Pattern
	}
	switch {
	case a.config.Audit != nil:
		s.audit = *a.config.Audit
	case pb.Audit != nil:
		s.audit = *pb.Audit
	}
	switch {
	case a.config.Compress != nil:
		s.compress = *a.config.Compress
	case pb.Compress != nil:
		s.compress = *pb.Compress
	}
	return s
}

// summaryDir is where summary.yaml goes: the output root, or the input
// directory when outputs are written next to their inputs.
func (a *App) summaryDir() string {
	if a.config.OutputPath != "" {
		return a.config.OutputPath
	}
	if info, err := os.Stat(a.config.InputPath); err == nil && !info.IsDir() {
		return filepath.Dir(a.config.InputPath)
	}
	return a.config.InputPath
}

// Run discovers the input documents, converts them on the worker pool and
// writes the batch summary. The summary is returned even when the batch
// was cancelled or documents failed.
func (a *App) Run(ctx context.Context) (*batch.Summary, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	s := a.settings()

	files, err := fsutil.FindDocuments(a.config.InputPath, s.pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to discover input documents: %w", err)
	}
	a.logger.Info("Input documents discovered.", "count", len(files), "input", a.config.InputPath)
	if len(files) == 0 {
		a.logger.Warn("No documents matched, nothing to convert.", "pattern", s.pattern)
		return nil, nil
	}
	jobs := batch.Plan(a.config.InputPath, a.config.OutputPath, files, s.compress)

	opts := batch.Options{
		Workers:  s.workers,
		Audit:    s.audit,
		Enums:    a.profile.Enums(),
		Textures: a.profile.Textures,
	}
	if a.config.LedgerPath != "" {
		l, err := ledger.Open(a.config.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		defer l.Close()
		opts.Ledger = l
		a.logger.Debug("Ledger opened.", "path", l.Path())
	}
	if a.config.NotifyURL != "" {
		n, err := notify.Dial(ctx, a.config.NotifyURL, notify.Options{Namespace: a.config.NotifyNamespace})
		if err != nil {
			a.logger.Warn("Progress notifier unavailable, continuing without it.", "error", err)
		} else {
			defer n.Close()
			opts.Notifier = n
		}
	}

	runner := batch.New(a.dispatcher, opts)
	a.runner.Store(runner)
	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	summary, runErr := runner.Run(ctx, jobs)
	if summary == nil {
		return nil, runErr
	}

	dir := a.summaryDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return summary, errors.Join(runErr, fmt.Errorf("failed to create summary directory: %w", err))
	}
	path := filepath.Join(dir, batch.SummaryFile)
	if err := summary.Write(path); err != nil {
		return summary, errors.Join(runErr, err)
	}
	a.logger.Info("Summary written.", "path", path, "run_id", summary.RunID)
	for _, failed := range summary.FailedList {
		a.logger.Warn("Failed document.", "document", failed)
	}

	if runErr != nil {
		return summary, runErr
	}
	if !summary.OK() {
		return summary, fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, summary.Failed, summary.Total)
	}
	a.logger.Debug("App.Run method finished.")
	return summary, nil
}
