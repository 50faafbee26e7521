package async

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

// Summarizer runs the summary pipeline for one job.
type Summarizer interface {
	Run(ctx context.Context, cleanedText string) (entity.JobResult, error)
}

// Observer is told about every terminal transition, after the status is stored.
type Observer interface {
	JobFinished(ctx context.Context, id string, st entity.JobStatus)
}

type ActorOption func(*Actor)

// WithJobTimeout bounds a single pipeline run. Zero leaves it unbounded.
func WithJobTimeout(d time.Duration) ActorOption {
	return func(a *Actor) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithObserver(o Observer) ActorOption {
	return func(a *Actor) { a.observer = o }
}

// Actor owns the status of one job. All mutations happen under mu, and the
// pipeline runs outside the lock so Status stays responsive while a run is in flight.
type Actor struct {
	id       string
	run      Summarizer
	logger   *slog.Logger
	timeout  time.Duration
	observer Observer

	mu     sync.Mutex
	status entity.JobStatus
	input  entity.JobInput
	done   chan struct{} // closed when the current attempt reaches a terminal state
}

func NewActor(id string, run Summarizer, logger *slog.Logger, opts ...ActorOption) *Actor {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Actor{
		id:     id,
		run:    run,
		logger: logger.With("job_id", id),
		status: entity.JobStatus{State: constants.JobStateQueued},
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Actor) ID() string { return a.id }

// Start moves the job to Running and launches the pipeline on its own goroutine.
// It is a no-op returning false while the job is Running or Done. A job that
// ended in Error may be started again.
//
// The run is detached from ctx cancellation; only the job timeout bounds it.
func (a *Actor) Start(ctx context.Context, input entity.JobInput) bool {
	a.mu.Lock()
	switch a.status.State {
	case constants.JobStateRunning, constants.JobStateDone:
		state := a.status.State
		a.mu.Unlock()
		a.logger.DebugContext(ctx, "job.start.ignored", "state", state)
		return false
	}
	started := time.Now().UTC()
	a.status = entity.JobStatus{State: constants.JobStateRunning, StartedAt: &started}
	a.input = input
	done := make(chan struct{})
	a.done = done
	a.mu.Unlock()

	a.logger.InfoContext(ctx, "job.start", "text_len", len(input.CleanedText), "language", input.DetectedLanguage)
	go a.execute(context.WithoutCancel(ctx), input.CleanedText, done)
	return true
}

// Status returns a snapshot of the current status. It never waits on a run.
func (a *Actor) Status() entity.JobStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status.Clone()
}

// Input returns the input of the latest start attempt.
func (a *Actor) Input() entity.JobInput {
	a.mu.Lock()
	defer a.mu.Unlock()
	in := a.input
	in.Sections = slices.Clone(a.input.Sections)
	return in
}

// Wait blocks until the current attempt is terminal or ctx is done, then
// returns the latest snapshot. A job that was never started returns at once.
func (a *Actor) Wait(ctx context.Context) (entity.JobStatus, error) {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done == nil {
		return a.Status(), nil
	}
	select {
	case <-done:
		return a.Status(), nil
	case <-ctx.Done():
		return a.Status(), ctx.Err()
	}
}

func (a *Actor) execute(ctx context.Context, text string, done chan struct{}) {
	defer close(done)

	ctx = common.WithJobID(ctx, a.id)
	runCtx, cancel := common.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	res, err := a.runSafely(runCtx, text)
	st := a.finish(res, err)

	if err != nil {
		a.logger.ErrorContext(ctx, "job.error", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
	} else {
		a.logger.InfoContext(ctx, "job.done", "elapsed_ms", time.Since(start).Milliseconds())
	}
	if a.observer != nil {
		a.observer.JobFinished(ctx, a.id, st)
	}
}

func (a *Actor) runSafely(ctx context.Context, text string) (res entity.JobResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()
	return a.run.Run(ctx, text)
}

func (a *Actor) finish(res entity.JobResult, err error) entity.JobStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	completed := time.Now().UTC()
	next := entity.JobStatus{StartedAt: a.status.StartedAt, CompletedAt: &completed}
	if err != nil {
		msg := err.Error()
		next.State = constants.JobStateError
		next.Error = &msg
	} else {
		r := res.Clone()
		next.State = constants.JobStateDone
		next.Result = &r
	}
	a.status = next
	return next.Clone()
}
