package scheduler

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/cruciblehq/pkgerd/internal/errctx"
	"github.com/cruciblehq/pkgerd/internal/imagecache"
	"github.com/cruciblehq/pkgerd/internal/job"
)

// Runnable is the subset of *job.Job the scheduler drives. Narrowed so
// tests can fake an entire batch run without a live containerd socket.
type Runnable interface {
	Run(ctx context.Context, deps job.Deps) error
	SetPreparedTag(tag string)
	ImageKey() string
}

// imagePreparer is the subset of *imagecache.Provider used to resolve
// one image's dependency-install tag, narrowed the same way.
type imagePreparer interface {
	Prepare(ctx context.Context, req imagecache.Request) (string, error)
}

// Descriptor pairs a runnable job with the imagecache request needed
// to resolve its base image ahead of Run, so concurrent jobs sharing
// an ImageKey can coalesce behind a single Prepare call (§4.6).
type Descriptor struct {
	Job      Runnable
	ImageReq imagecache.Request
}

// Result records one job's terminal outcome.
type Result struct {
	ImageKey string
	Err      error
}

// Report summarizes a batch run (§4.6: "exit code 1 if any job ended in
// Failed or Cancelled; 0 otherwise").
type Report struct {
	Results  []Result
	ExitCode int
}

// Config bundles the collaborators shared by every job in a batch.
type Config struct {
	Images      imagePreparer
	Deps        job.Deps // Engine/Fetcher/Packager/HostOut, reused across jobs
	Concurrency int      // 0 defaults to one worker per distinct ImageKey in the batch
}

// Scheduler runs a batch of jobs with bounded, per-image-coalesced
// concurrency (C6, §4.6).
type Scheduler struct {
	cfg Config
	sf  singleflight.Group
}

// New constructs a Scheduler bound to cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{cfg: cfg}
}

// WithSignalCancellation derives a context that is cancelled on the
// first SIGINT or SIGTERM (§4.6: "an external signal flips a global
// cancellation token"). The caller must invoke the returned stop func.
func WithSignalCancellation(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Run drives every descriptor to a terminal state and returns once all
// have finished, regardless of individual failures (§4.6: "a Failed job
// does not cancel peers; it only contributes to the final exit code").
// Cancelling ctx propagates into every running job between steps.
func (s *Scheduler) Run(ctx context.Context, descriptors []Descriptor) Report {
	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = distinctImageCount(descriptors)
		if concurrency == 0 {
			concurrency = 1
		}
	}

	sem := semaphore.NewWeighted(int64(concurrency))
	results := make([]Result, len(descriptors))

	// g.Go's functions always return nil: a failing job is recorded in
	// results, not propagated as the group's error, since a Failed job
	// must not cancel its peers (§4.6). gctx is therefore only ever
	// cancelled by ctx itself (e.g. WithSignalCancellation).
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range descriptors {
		i, d := i, d
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = Result{ImageKey: d.Job.ImageKey(), Err: err}
				return nil
			}
			defer sem.Release(1)

			err := s.runOne(ctx, d)
			results[i] = Result{ImageKey: d.Job.ImageKey(), Err: err}
			return nil
		})
	}
	g.Wait()

	return buildReport(results)
}

// runOne resolves d's image (coalescing with any concurrent sibling
// sharing the same ImageKey) and then runs the job itself.
func (s *Scheduler) runOne(ctx context.Context, d Descriptor) error {
	if err := ctx.Err(); err != nil {
		return errctx.Wrap(ErrScheduler, err)
	}

	tag, err, _ := s.sf.Do(d.Job.ImageKey(), func() (any, error) {
		return s.cfg.Images.Prepare(ctx, d.ImageReq)
	})
	if err != nil {
		return errctx.Wrap(ErrScheduler, err)
	}
	d.Job.SetPreparedTag(tag.(string))

	slog.Debug("running job", "image_key", d.Job.ImageKey())
	return d.Job.Run(ctx, s.cfg.Deps)
}

func distinctImageCount(descriptors []Descriptor) int {
	seen := make(map[string]struct{}, len(descriptors))
	for _, d := range descriptors {
		seen[d.Job.ImageKey()] = struct{}{}
	}
	return len(seen)
}

func buildReport(results []Result) Report {
	report := Report{Results: results}
	for _, r := range results {
		if r.Err != nil {
			report.ExitCode = 1
		}
	}
	return report
}
