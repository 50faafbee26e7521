package ingest_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/async"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/ingest"
)

type fakeRunner struct {
	mu    sync.Mutex
	texts []string
	fail  bool
}

func (f *fakeRunner) Start(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return "job-" + string(rune('a'+len(f.texts)-1)), nil
}

func (f *fakeRunner) Wait(context.Context, string) (entity.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		msg := "generation failed: boom"
		return entity.JobStatus{State: constants.JobStateError, Error: &msg}, nil
	}
	return entity.JobStatus{
		State:  constants.JobStateDone,
		Result: &entity.JobResult{Summary: "S", Decisions: []string{}, ActionItems: []string{}, Risks: []string{}},
	}, nil
}

func (f *fakeRunner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

func readOutput(t *testing.T, path string) ingest.Output {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var out ingest.Output
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestOutputPath(t *testing.T) {
	t.Parallel()

	require.Equal(t, filepath.Join("in", "standup.summary.json"), ingest.OutputPath(filepath.Join("in", "standup.md")))
	require.Equal(t, "notes.summary.json", ingest.OutputPath("notes.txt"))
}

func TestInboxProcess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "standup.txt")
	require.NoError(t, os.WriteFile(note, []byte("we shipped"), 0o644))

	runner := &fakeRunner{}
	inbox := ingest.NewInbox(ingest.InboxConfig{Dir: dir}, runner, nil)

	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	out := readOutput(t, ingest.OutputPath(note))
	require.Equal(t, "job-a", out.JobID)
	require.Equal(t, "standup.txt", out.Source)
	require.Equal(t, constants.JobStateDone, out.Status.State)
	require.Equal(t, "S", out.Status.Result.Summary)

	// Result is newer than the note: nothing to do.
	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, 1, runner.calls())

	// Touching the note makes it stale again.
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(note, future, future))
	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, 2, runner.calls())
}

func TestInboxProcessFailedJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "retro.md")
	require.NoError(t, os.WriteFile(note, []byte("notes"), 0o644))

	inbox := ingest.NewInbox(ingest.InboxConfig{Dir: dir}, &fakeRunner{fail: true}, nil)
	err := inbox.Process(t.Context(), async.Task{Path: note})
	require.Error(t, err)

	out := readOutput(t, ingest.OutputPath(note))
	require.Equal(t, constants.JobStateError, out.Status.State)
	require.Nil(t, out.Status.Result)

	err = inbox.Process(t.Context(), async.Task{Path: filepath.Join(dir, "missing.txt")})
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInboxRunInitialScan(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "standup.txt")
	require.NoError(t, os.WriteFile(note, []byte("we shipped"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.txt"), []byte("x"), 0o644))

	runner := &fakeRunner{}
	inbox := ingest.NewInbox(ingest.InboxConfig{Dir: dir, Workers: 1, Timeout: 5 * time.Second}, runner, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- inbox.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := os.Stat(ingest.OutputPath(note))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("inbox did not stop")
	}
	require.Equal(t, 1, runner.calls())
}

// gatedRunner holds Wait until release is closed.
type gatedRunner struct {
	fakeRunner
	entered chan struct{}
	release chan struct{}
}

func (g *gatedRunner) Wait(ctx context.Context, id string) (entity.JobStatus, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeRunner.Wait(ctx, id)
}

func TestInboxProcessSkipsNoteInFlight(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "standup.txt")
	require.NoError(t, os.WriteFile(note, []byte("we shipped"), 0o644))

	runner := &gatedRunner{entered: make(chan struct{}, 1), release: make(chan struct{})}
	inbox := ingest.NewInbox(ingest.InboxConfig{Dir: dir}, runner, nil)

	first := make(chan error, 1)
	go func() { first <- inbox.Process(t.Context(), async.Task{Path: note}) }()
	<-runner.entered

	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, 1, runner.calls())

	close(runner.release)
	require.NoError(t, <-first)
	require.Equal(t, 1, runner.calls())
	require.Equal(t, "job-a", readOutput(t, ingest.OutputPath(note)).JobID)
}

func TestInboxProcessRetriesFailedResult(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	note := filepath.Join(dir, "retro.md")
	require.NoError(t, os.WriteFile(note, []byte("notes"), 0o644))

	runner := &fakeRunner{fail: true}
	inbox := ingest.NewInbox(ingest.InboxConfig{Dir: dir}, runner, nil)
	require.Error(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, constants.JobStateError, readOutput(t, ingest.OutputPath(note)).Status.State)

	runner.mu.Lock()
	runner.fail = false
	runner.mu.Unlock()

	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, 2, runner.calls())
	out := readOutput(t, ingest.OutputPath(note))
	require.Equal(t, constants.JobStateDone, out.Status.State)

	require.NoError(t, inbox.Process(t.Context(), async.Task{Path: note}))
	require.Equal(t, 2, runner.calls())
}
