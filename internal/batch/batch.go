package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/specialistvlad/nifconv/internal/convert"
	"github.com/specialistvlad/nifconv/internal/ctxlog"
	"github.com/specialistvlad/nifconv/internal/docio"
	"github.com/specialistvlad/nifconv/internal/enummap"
	"github.com/specialistvlad/nifconv/internal/ledger"
	"github.com/specialistvlad/nifconv/internal/lod"
)

var ErrNoJobs = errors.New("no documents to convert")

// Ledger remembers converted sources across runs.
type Ledger interface {
	Fresh(ctx context.Context, source, hash string) (bool, error)
	Put(ctx context.Context, r ledger.Record) error
}

// Notifier receives progress as documents finish.
type Notifier interface {
	Progress(done, total int)
	Document(path string, success bool)
}

// Options configures a Runner.
type Options struct {
	Workers  int
	Audit    bool
	Enums    enummap.Set
	Textures convert.Textures
	// Ledger and Notifier are optional.
	Ledger   Ledger
	Notifier Notifier
	// RunID identifies the batch in logs and the summary. A random one is
	// generated when empty.
	RunID string
}

// Outcome is the result of one job.
type Outcome struct {
	Job     Job
	Success bool
	Skipped bool
	// Cancelled jobs were never started.
	Cancelled bool
	Written   bool
	Result    *convert.Result
	Err       error
	Duration  time.Duration
}

// Runner converts jobs on a worker pool.
type Runner struct {
	dispatcher *convert.Dispatcher
	opts       Options
	progress   *Progress
	writer     *Writer
}

// New creates a Runner. The dispatcher is shared read-only by all workers.
func New(d *convert.Dispatcher, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Runner{
		dispatcher: d,
		opts:       opts,
		progress:   newProgress(opts.RunID, 0),
		writer:     NewWriter(),
	}
}

func (r *Runner) RunID() string { return r.opts.RunID }

// Progress exposes the aggregator for status endpoints.
func (r *Runner) Progress() *Progress { return r.progress }

type indexedJob struct {
	index int
	job   Job
}

// Run converts every job and returns the summary. When ctx is cancelled,
// documents that have not started are reported as cancelled and the
// context error is returned along with the summary.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Summary, error) {
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}
	ctx, logger := ctxlog.With(ctx, "runID", r.opts.RunID)
	started := time.Now()

	r.progress.mu.Lock()
	r.progress.s.Documents = len(jobs)
	r.progress.mu.Unlock()

	workers := min(r.opts.Workers, len(jobs))
	logger.Info("Starting batch.", "documents", len(jobs), "workers", workers)

	outcomes := make([]Outcome, len(jobs))
	queue := make(chan indexedJob)
	var wg sync.WaitGroup
	for i := 1; i <= workers; i++ {
		wg.Add(1)
		go r.worker(ctx, queue, outcomes, &wg, i)
	}

	for i, job := range jobs {
		// Workers check ctx too; this only stops feeding early.
		if ctx.Err() != nil {
			outcomes[i] = Outcome{Job: job, Cancelled: true}
			continue
		}
		select {
		case queue <- indexedJob{index: i, job: job}:
		case <-ctx.Done():
			outcomes[i] = Outcome{Job: job, Cancelled: true}
		}
	}
	close(queue)
	wg.Wait()

	summary := newSummary(r.opts.RunID, started, outcomes)
	logger.Info("Batch finished.",
		"converted", summary.Converted,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"cancelled", summary.Cancelled,
		"high_level_lods", len(summary.HighLevel),
		"duration", summary.Duration)

	if err := ctx.Err(); err != nil {
		r.progress.cancel()
		return summary, fmt.Errorf("batch cancelled: %w", err)
	}
	return summary, nil
}

// worker is the processing loop of one pool member.
func (r *Runner) worker(ctx context.Context, queue <-chan indexedJob, outcomes []Outcome, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for item := range queue {
		if ctx.Err() != nil {
			outcomes[item.index] = Outcome{Job: item.job, Cancelled: true}
			continue
		}
		docCtx, docLogger := ctxlog.With(ctx, "workerID", workerID, "document", item.job.Rel)
		start := time.Now()
		o, began := r.process(docCtx, item.job)
		o.Duration = time.Since(start)
		outcomes[item.index] = o

		snap := r.progress.finish(o, began)
		r.report(docLogger, o)
		if r.opts.Notifier != nil && !o.Cancelled {
			r.opts.Notifier.Document(item.job.Rel, o.Success)
			r.opts.Notifier.Progress(snap.Done, snap.Documents)
		}
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// process converts one document. The second result reports whether block
// progress was registered for it.
func (r *Runner) process(ctx context.Context, job Job) (Outcome, bool) {
	logger := ctxlog.FromContext(ctx)
	out := Outcome{Job: job}

	switch job.File.Type {
	case lod.Invalid:
		out.Err = job.DetectErr
		if out.Err == nil {
			out.Err = lod.ErrUnrecognizedFile
		}
		return out, false
	case lod.LODObjectHigh:
		logger.Info("High level LOD collected.")
		out.Success = true
		return out, false
	}

	raw, err := os.ReadFile(job.Source)
	if err != nil {
		out.Err = fmt.Errorf("reading source: %w", err)
		return out, false
	}
	hash := ledger.Hash(raw)
	if r.opts.Ledger != nil {
		fresh, err := r.opts.Ledger.Fresh(ctx, job.Source, hash)
		if err != nil {
			logger.Warn("Ledger lookup failed, converting anyway.", "error", err)
		}
		if fresh {
			out.Success, out.Skipped = true, true
			return out, false
		}
	}

	doc, err := docio.Unmarshal(job.Source, raw)
	if err != nil {
		out.Err = fmt.Errorf("decoding source: %w", err)
		return out, false
	}

	res := convert.Convert(ctx, r.dispatcher, doc, convert.Options{
		Audit:    r.opts.Audit,
		Logger:   logger,
		Progress: r.progress.Blocks(doc.BlockCount()),
		Enums:    r.opts.Enums,
		Textures: r.opts.Textures,
		File:     job.File,
	})
	if errors.Is(res.Err, convert.ErrCancelled) {
		out.Cancelled = true
		return out, true
	}
	out.Result = &res
	out.Success = res.Success
	if res.Err != nil {
		out.Err = res.Err
		out.Success = false
	}

	// The document is converted; finish it even if the batch is cancelled
	// meanwhile.
	ctx = context.WithoutCancel(ctx)
	if res.Dest != nil {
		data, err := docio.Marshal(job.Output, res.Dest)
		if err == nil {
			var prev int
			prev, err = r.writer.Write(job.Output, data)
			if prev > 0 {
				logger.Warn("Output written more than once in this batch.", "output", job.Output)
			}
		}
		if err != nil {
			out.Err = errors.Join(out.Err, err)
			out.Success = false
		} else {
			out.Written = true
		}
	}

	if r.opts.Ledger != nil {
		rec := ledger.Record{
			Source:   job.Source,
			Hash:     hash,
			Output:   job.Output,
			Success:  out.Success,
			Errors:   len(res.Diagnostics.Errors),
			Warnings: len(res.Diagnostics.Warnings),
		}
		if err := r.opts.Ledger.Put(ctx, rec); err != nil {
			logger.Warn("Failed to update ledger.", "error", err)
		} else if logger.Enabled(ctx, slog.LevelDebug) {
			logger.Debug("Ledger record stored.", "record", spew.Sdump(rec))
		}
	}
	return out, true
}

func (r *Runner) report(logger *slog.Logger, o Outcome) {
	switch {
	case o.Cancelled:
		logger.Debug("Document cancelled before it started.")
	case o.Skipped:
		logger.Info("Document unchanged since last successful run, skipped.")
	case o.Success:
		logger.Info("Document converted.", "output", o.Job.Output, "duration", o.Duration)
	default:
		attrs := []any{"output", o.Job.Output, "written", o.Written}
		if o.Err != nil {
			attrs = append(attrs, "error", o.Err)
		}
		if o.Result != nil {
			attrs = append(attrs, "errors", len(o.Result.Diagnostics.Errors), "warnings", len(o.Result.Diagnostics.Warnings))
		}
		logger.Warn("Document failed.", attrs...)
	}
}
