package main

import (
	"log/slog"

	"github.com/joseph-ayodele/notes-summarizer/internal/async"
	"github.com/joseph-ayodele/notes-summarizer/internal/cleaner"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/export"
	"github.com/joseph-ayodele/notes-summarizer/internal/llm/openai"
	"github.com/joseph-ayodele/notes-summarizer/internal/notify"
	"github.com/joseph-ayodele/notes-summarizer/internal/pipeline"
	"github.com/joseph-ayodele/notes-summarizer/internal/services/summary"
)

// app holds the wired services shared by every command.
type app struct {
	jobs      *summary.Service
	exports   *export.Service
	publisher *notify.Publisher
}

func newApp(cfg *common.Config, logger *slog.Logger) (*app, error) {
	completer := openai.NewClient(openai.ConfigFromApp(cfg.LLM), logger)

	var cl cleaner.Cleaner = cleaner.NewLocal()
	if cfg.Cleaner.URL != "" {
		cl = cleaner.NewHTTPClient(cfg.Cleaner.URL, cfg.Cleaner.Timeout, logger)
	} else {
		logger.Info("cleaner.local", "reason", "CLEANER_SERVICE_URL not set")
	}

	opts := []async.ActorOption{async.WithJobTimeout(cfg.Jobs.Timeout)}
	a := &app{}
	if cfg.Notify.NATSURL != "" {
		pub, err := notify.Connect(cfg.Notify.NATSURL, cfg.Notify.Subject, logger)
		if err != nil {
			return nil, err
		}
		a.publisher = pub
		opts = append(opts, async.WithObserver(pub))
	}

	registry := async.NewRegistry(pipeline.NewSummary(completer, logger), logger, opts...)
	a.jobs = summary.NewService(cl, registry, logger, cfg.Jobs.MaxTextChars)
	a.exports = export.NewService(a.jobs, logger)
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
}
