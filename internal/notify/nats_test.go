package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
	"github.com/joseph-ayodele/notes-summarizer/internal/notify"
)

func TestNewEventPayload(t *testing.T) {
	t.Parallel()

	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	completed := started.Add(2 * time.Second)
	msg := "generation failed: timeout"

	b, err := json.Marshal(notify.NewEvent("abc", entity.JobStatus{
		State:       constants.JobStateError,
		Error:       &msg,
		StartedAt:   &started,
		CompletedAt: &completed,
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"jobId":"abc",
		"state":"Error",
		"error":"generation failed: timeout",
		"startedAt":"2025-01-02T03:04:05Z",
		"completedAt":"2025-01-02T03:04:07Z"
	}`, string(b))

	done, err := json.Marshal(notify.NewEvent("abc", entity.JobStatus{
		State:  constants.JobStateDone,
		Result: &entity.JobResult{Summary: "S"},
	}))
	require.NoError(t, err)
	require.JSONEq(t, `{"jobId":"abc","state":"Done"}`, string(done))
}

func TestConnectFailure(t *testing.T) {
	t.Parallel()

	_, err := notify.Connect("nats://127.0.0.1:1", "", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect nats")
}

func runServer(t *testing.T) *natsserver.Server {
	t.Helper()
	ns, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	require.True(t, ns.ReadyForConnections(5*time.Second), "nats server not ready")
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestPublisherJobFinished(t *testing.T) {
	t.Parallel()

	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	msgs := make(chan *nats.Msg, 4)
	_, err = sub.ChanSubscribe("jobs.test", msgs)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := notify.Connect(ns.ClientURL(), "jobs.test", nil)
	require.NoError(t, err)

	completed := time.Now().UTC().Truncate(time.Second)
	pub.JobFinished(t.Context(), "job-1", entity.JobStatus{
		State:       constants.JobStateDone,
		CompletedAt: &completed,
		Result:      &entity.JobResult{Summary: "S"},
	})
	pub.Close()

	select {
	case msg := <-msgs:
		var ev notify.Event
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		require.Equal(t, "job-1", ev.JobID)
		require.Equal(t, constants.JobStateDone, ev.State)
		require.Nil(t, ev.Error)
		require.NotNil(t, ev.CompletedAt)
		require.True(t, completed.Equal(*ev.CompletedAt))
	case <-time.After(5 * time.Second):
		t.Fatal("no completion event received")
	}
}

func TestPublisherDefaultSubject(t *testing.T) {
	t.Parallel()

	ns := runServer(t)

	sub, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	t.Cleanup(sub.Close)
	s, err := sub.SubscribeSync(notify.DefaultSubject)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	pub, err := notify.Connect(ns.ClientURL(), "", nil)
	require.NoError(t, err)
	msg := "generation failed: boom"
	pub.JobFinished(t.Context(), "job-2", entity.JobStatus{State: constants.JobStateError, Error: &msg})
	pub.Close()

	m, err := s.NextMsg(5 * time.Second)
	require.NoError(t, err)
	require.JSONEq(t, `{"jobId":"job-2","state":"Error","error":"generation failed: boom"}`, string(m.Data))
}
