// Package batch drives generation and persistence for every input index.
//
// For each index in ascending order the [Runner] builds the poster atlas,
// tip card and painting, converts them to RGB for JPEG output, and writes
// them to the output [output.Layout] as <index>.<ext>.
//
// # Scheduling
//
// With the default of one worker the run is strictly sequential. More
// workers process indices concurrently through a bounded errgroup; file names
// and failure reports stay keyed by index, never by completion order.
//
// # Failures
//
// Every save of an index is attempted before the index reports. By default
// the first failing index aborts the batch. With [Options.KeepGoing] save
// failures are collected in the [Summary] instead and the run continues.
// Generation errors always abort.
//
// # Usage
//
//	runner := batch.NewRunner(output.Layout{Root: "output"}, logger)
//	summary, err := runner.Run(ctx, rc, batch.Options{Workers: 4})
package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/lethalposters/pkg/errors"
	"github.com/matzehuels/lethalposters/pkg/generate"
	"github.com/matzehuels/lethalposters/pkg/observability"
	"github.com/matzehuels/lethalposters/pkg/output"
)

// =============================================================================
// Options
// =============================================================================

const (
	// DefaultWorkers keeps the batch strictly sequential.
	DefaultWorkers = 1

	// MaxWorkers bounds the worker pool.
	MaxWorkers = 64
)

// Options configures a batch run.
type Options struct {
	Workers   int  `toml:"workers"`
	KeepGoing bool `toml:"keep_going"`
}

// ValidateAndSetDefaults checks the worker count and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Workers < 1 || o.Workers > MaxWorkers {
		return errors.New(errors.ErrCodeInvalidConfig, "workers %d is invalid (must be 1-%d)", o.Workers, MaxWorkers)
	}
	return nil
}

// =============================================================================
// Summary
// =============================================================================

// Failure records a failed index.
type Failure struct {
	Index int
	Err   error
}

// Summary describes a finished (or aborted) batch run.
type Summary struct {
	RunID     string
	Images    int // number of input images
	Processed int // indices whose outputs were all written
	Written   int // files written
	Failures  []Failure
	Duration  time.Duration
}

// Err joins every recorded failure, or returns nil when there are none.
func (s *Summary) Err() error {
	errs := make([]error, len(s.Failures))
	for i, f := range s.Failures {
		errs[i] = f.Err
	}
	return stderrors.Join(errs...)
}

// =============================================================================
// Runner
// =============================================================================

// Runner generates and persists every output of a run.
// It holds no per-run state and may be reused.
type Runner struct {
	Layout output.Layout
	Logger *log.Logger
}

// NewRunner creates a runner writing below layout.
// If logger is nil, output is discarded.
func NewRunner(layout output.Layout, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{Layout: layout, Logger: logger}
}

// Run processes every index of rc. The returned summary is non-nil even when
// an error aborts the run.
func (r *Runner) Run(ctx context.Context, rc *generate.RunContext, opts Options) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString(), Images: rc.Len()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return summary, err
	}
	if err := r.Layout.Ensure(); err != nil {
		return summary, errors.Wrap(errors.ErrCodePersistence, err, "prepare output directories")
	}

	logger := r.Logger.With("run", summary.RunID[:8])
	hooks := observability.Batch()
	start := time.Now()
	hooks.OnBatchStart(ctx, summary.RunID, rc.Len())
	logger.Debug("starting batch", "images", rc.Len(), "workers", opts.Workers, "format", rc.Spec())

	var err error
	if opts.Workers == 1 {
		err = r.runSequential(ctx, logger, rc, opts, summary)
	} else {
		err = r.runPool(ctx, logger, rc, opts, summary)
	}

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Index < summary.Failures[j].Index
	})
	if err == nil {
		err = summary.Err()
	}
	summary.Duration = time.Since(start)
	hooks.OnBatchComplete(ctx, summary.RunID, summary.Written, summary.Duration, err)
	return summary, err
}

func (r *Runner) runSequential(ctx context.Context, logger *log.Logger, rc *generate.RunContext, opts Options, summary *Summary) error {
	for i := 0; i < rc.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		written, err := r.processIndex(ctx, logger, rc, i)
		summary.Written += written
		if err == nil {
			summary.Processed++
			continue
		}
		if !opts.KeepGoing || !errors.Is(err, errors.ErrCodePersistence) {
			return err
		}
		summary.Failures = append(summary.Failures, Failure{Index: i, Err: err})
	}
	return nil
}

func (r *Runner) runPool(ctx context.Context, logger *log.Logger, rc *generate.RunContext, opts Options, summary *Summary) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	var mu sync.Mutex
	for i := 0; i < rc.Len(); i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			written, err := r.processIndex(gctx, logger, rc, i)

			mu.Lock()
			defer mu.Unlock()
			summary.Written += written
			switch {
			case err == nil:
				summary.Processed++
				return nil
			case opts.KeepGoing && errors.Is(err, errors.ErrCodePersistence):
				summary.Failures = append(summary.Failures, Failure{Index: i, Err: err})
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// processIndex generates and saves the three outputs of one index. Every save
// is attempted; failures are joined and returned together.
func (r *Runner) processIndex(ctx context.Context, logger *log.Logger, rc *generate.RunContext, index int) (int, error) {
	hooks := observability.Batch()
	start := time.Now()
	hooks.OnIndexStart(ctx, index)

	results, err := generate.All(rc, index)
	if err != nil {
		err = fmt.Errorf("generate index %d: %w", index, err)
		hooks.OnIndexComplete(ctx, index, time.Since(start), err)
		return 0, err
	}
	logger.Debug("generated images", "index", index, "duration", time.Since(start).Round(time.Millisecond))

	spec := rc.Spec()
	written := 0
	var errs []error
	for _, res := range results {
		path := r.Layout.Path(res.Category, index, spec)
		saveStart := time.Now()
		err := output.Save(res.Image, path, spec)
		hooks.OnSave(ctx, index, string(res.Category), path, time.Since(saveStart), err)
		if err != nil {
			logger.Error("failed to save image", "index", index, "category", res.Category, "path", path, "err", err)
			errs = append(errs, &errors.PersistenceError{Index: index, Category: string(res.Category), Path: path, Err: err})
			continue
		}
		written++
	}

	err = stderrors.Join(errs...)
	duration := time.Since(start)
	hooks.OnIndexComplete(ctx, index, duration, err)
	if err == nil {
		logger.Debug("saved images", "index", index, "source", rc.Images().Name(index), "duration", duration.Round(time.Millisecond))
	}
	return written, err
}
