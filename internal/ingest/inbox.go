package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/async"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

// JobRunner starts jobs and waits for them to finish.
type JobRunner interface {
	Start(ctx context.Context, text string) (string, error)
	Wait(ctx context.Context, id string) (entity.JobStatus, error)
}

// Output is what the inbox writes next to each processed note.
type Output struct {
	JobID  string           `json:"jobId"`
	Source string           `json:"source"`
	Status entity.JobStatus `json:"status"`
}

// InboxConfig configures a watched note directory.
type InboxConfig struct {
	Dir      string
	Debounce time.Duration
	Workers  int
	Timeout  time.Duration // per note, covering cleaning and generation
}

// Inbox turns note files dropped into a directory into summary jobs.
type Inbox struct {
	cfg    InboxConfig
	jobs   JobRunner
	logger *slog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewInbox(cfg InboxConfig, jobs JobRunner, logger *slog.Logger) *Inbox {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	return &Inbox{cfg: cfg, jobs: jobs, logger: logger, inFlight: make(map[string]struct{})}
}

// Run watches the inbox until ctx is done, then drains in-flight notes.
// Existing notes without an up-to-date result are processed on startup.
func (in *Inbox) Run(ctx context.Context) error {
	events, errs, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{in.cfg.Dir},
		InitialScan: true,
		Debounce:    in.cfg.Debounce,
		Logger:      in.logger,
	})
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	q := async.NewQueue(in.Process, in.logger,
		async.WithWorkers(in.cfg.Workers),
		async.WithProcessTimeout(in.cfg.Timeout),
	)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), in.cfg.Timeout)
		defer cancel()
		q.Shutdown(shutdownCtx)
	}()

	in.logger.InfoContext(ctx, "inbox.started", "dir", in.cfg.Dir, "workers", in.cfg.Workers)
	for {
		select {
		case p, ok := <-events:
			if !ok {
				return nil
			}
			if err := q.Enqueue(ctx, async.Task{Path: p}); err != nil {
				in.logger.WarnContext(ctx, "inbox.enqueue_failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			in.logger.WarnContext(ctx, "inbox.watch_error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

// Process summarizes one note and writes its result file. A note is skipped
// while another worker holds it, or when a Done result newer than the note exists.
func (in *Inbox) Process(ctx context.Context, task async.Task) error {
	src := task.Path
	out := OutputPath(src)

	if !in.claim(src) {
		in.logger.DebugContext(ctx, "inbox.note.in_flight", "path", src)
		return nil
	}
	defer in.release(src)

	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat note: %w", err)
	}
	done, err := doneSince(out, srcInfo.ModTime())
	if err != nil {
		return err
	}
	if done {
		in.logger.DebugContext(ctx, "inbox.note.up_to_date", "path", src)
		return nil
	}

	b, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	id, err := in.jobs.Start(ctx, string(b))
	if err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	st, err := in.jobs.Wait(ctx, id)
	if err != nil {
		return fmt.Errorf("wait job %s: %w", id, err)
	}

	if err := writeJSON(out, Output{JobID: id, Source: filepath.Base(src), Status: st}); err != nil {
		return err
	}
	in.logger.InfoContext(ctx, "inbox.note.done", "path", src, "job_id", id, "state", st.State)
	if st.State != constants.JobStateDone {
		return fmt.Errorf("job %s ended in %s", id, st.State)
	}
	return nil
}

func (in *Inbox) claim(path string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if _, ok := in.inFlight[path]; ok {
		return false
	}
	in.inFlight[path] = struct{}{}
	return true
}

func (in *Inbox) release(path string) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.inFlight, path)
}

// doneSince reports whether the result file holds a Done status written no
// earlier than since. Failed results are retried.
func doneSince(out string, since time.Time) (bool, error) {
	info, err := os.Stat(out)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat result: %w", err)
	}
	if info.ModTime().Before(since) {
		return false, nil
	}
	b, err := os.ReadFile(out)
	if err != nil {
		return false, fmt.Errorf("read result: %w", err)
	}
	var prev Output
	if err := json.Unmarshal(b, &prev); err != nil {
		return false, nil
	}
	return prev.Status.State == constants.JobStateDone, nil
}

// OutputPath returns the result file path for a note.
func OutputPath(notePath string) string {
	return strings.TrimSuffix(notePath, filepath.Ext(notePath)) + constants.SummarySuffix
}

// writeJSON writes via a temp file so readers never see a partial result.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename result: %w", err)
	}
	return nil
}
