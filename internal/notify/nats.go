package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

const DefaultSubject = "summary.jobs.completed"

// Event is the payload published for each terminal job transition.
type Event struct {
	JobID       string             `json:"jobId"`
	State       constants.JobState `json:"state"`
	Error       *string            `json:"error,omitempty"`
	StartedAt   *time.Time         `json:"startedAt,omitempty"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
}

// NewEvent builds the event for a job snapshot. The result body is left out.
func NewEvent(id string, st entity.JobStatus) Event {
	return Event{
		JobID:       id,
		State:       st.State,
		Error:       st.Error,
		StartedAt:   st.StartedAt,
		CompletedAt: st.CompletedAt,
	}
}

// Publisher sends job completion events over NATS. It satisfies async.Observer.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials NATS and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("notes-summarizer"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("notify.nats.disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("notify.nats.reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("notify.nats.connected", "url", nc.ConnectedUrl(), "subject", subject)
	return &Publisher{nc: nc, subject: subject, logger: logger}, nil
}

// JobFinished publishes the terminal status. Failures are logged, never returned.
func (p *Publisher) JobFinished(ctx context.Context, id string, st entity.JobStatus) {
	b, err := json.Marshal(NewEvent(id, st))
	if err != nil {
		p.logger.ErrorContext(ctx, "notify.encode_error", "job_id", id, "error", err)
		return
	}
	if err := p.nc.Publish(p.subject, b); err != nil {
		p.logger.ErrorContext(ctx, "notify.publish_error", "job_id", id, "error", err)
		return
	}
	p.logger.DebugContext(ctx, "notify.published", "job_id", id, "state", st.State)
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if err := p.nc.FlushTimeout(5 * time.Second); err != nil {
		p.logger.Warn("notify.nats.flush_error", "error", err)
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("notify.nats.drain_error", "error", err)
		p.nc.Close()
	}
}
