// Package tasks runs periodic housekeeping jobs alongside the HTTP server.
package tasks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/papilloncast/internal/app/system/metrics"
	"go.uber.org/zap"
)

// ErrUnknownJob is returned by Trigger for a name that was never registered.
var ErrUnknownJob = errors.New("unknown job")

// Job is a named function run once at start and then every Every.
type Job struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// Runner owns the job goroutines. Register everything before Start.
type Runner struct {
	logger *zap.Logger
	jobs   map[string]Job

	wg       sync.WaitGroup
	stop     context.CancelFunc
	mu       sync.Mutex
	inFlight map[string]int
}

// New creates an empty Runner.
func New(logger *zap.Logger) *Runner {
	return &Runner{
		logger:   logger,
		jobs:     make(map[string]Job),
		inFlight: make(map[string]int),
	}
}

// Register adds job, replacing an earlier job with the same name.
func (r *Runner) Register(job Job) {
	r.jobs[job.Name] = job
}

// Start launches one goroutine per job. Jobs see a context that is
// cancelled by Stop.
func (r *Runner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.stop = cancel
	for _, job := range r.jobs {
		r.wg.Add(1)
		go r.loop(ctx, job)
	}
}

// Stop cancels all jobs and waits for them until ctx is done. On timeout it
// logs the jobs that are still executing and returns ctx.Err().
func (r *Runner) Stop(ctx context.Context) error {
	if r.stop != nil {
		r.stop()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("background task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("background task runner did not stop in time",
			zap.Strings("still_running", r.running()))
		return ctx.Err()
	}
}

// Trigger runs the named job once on the caller's goroutine.
func (r *Runner) Trigger(ctx context.Context, name string) error {
	job, ok := r.jobs[name]
	if !ok {
		return ErrUnknownJob
	}
	return r.execute(ctx, job)
}

// Jobs returns the registered job names in sorted order.
func (r *Runner) Jobs() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runner) loop(ctx context.Context, job Job) {
	defer r.wg.Done()

	_ = r.execute(ctx, job)
	if job.Every <= 0 {
		return
	}

	t := time.NewTicker(job.Every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = r.execute(ctx, job)
		}
	}
}

func (r *Runner) execute(ctx context.Context, job Job) error {
	r.track(job.Name, 1)
	defer r.track(job.Name, -1)

	start := time.Now()
	err := job.Run(ctx)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.TaskRuns.WithLabelValues(job.Name, metrics.OutcomeOK).Inc()
		r.logger.Debug("job done", zap.String("job", job.Name), zap.Duration("took", elapsed))
	case ctx.Err() != nil:
		// Shutdown, not a failure.
		r.logger.Debug("job cancelled", zap.String("job", job.Name))
	default:
		metrics.TaskRuns.WithLabelValues(job.Name, metrics.OutcomeError).Inc()
		r.logger.Error("job failed",
			zap.String("job", job.Name),
			zap.Duration("took", elapsed),
			zap.Error(err))
	}
	return err
}

func (r *Runner) track(name string, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight[name] += delta
	if r.inFlight[name] <= 0 {
		delete(r.inFlight, name)
	}
}

func (r *Runner) running() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.inFlight))
	for name := range r.inFlight {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
