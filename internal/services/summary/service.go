package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/notes-summarizer/constants"
	"github.com/joseph-ayodele/notes-summarizer/internal/async"
	"github.com/joseph-ayodele/notes-summarizer/internal/cleaner"
	"github.com/joseph-ayodele/notes-summarizer/internal/common"
	"github.com/joseph-ayodele/notes-summarizer/internal/entity"
)

// EmptyTextMessage is returned to callers that submit blank text.
const EmptyTextMessage = "Empty text"

// Service is the caller-facing job API: it validates and cleans text, then
// hands the job to its actor.
type Service struct {
	cleaner  cleaner.Cleaner
	registry *async.Registry
	logger   *slog.Logger
	maxChars int
}

// NewService creates a new summary service. maxChars of zero disables the length check.
func NewService(c cleaner.Cleaner, reg *async.Registry, logger *slog.Logger, maxChars int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cleaner: c, registry: reg, logger: logger, maxChars: maxChars}
}

// Start cleans text and starts a new job, returning its id. It does not wait
// for the summary; InputError and UpstreamCleaningError mean no job was created.
func (s *Service) Start(ctx context.Context, text string) (string, error) {
	if common.NewValidator().Field("text", text, common.Required).HasErrors() {
		s.logger.WarnContext(ctx, "summary.start.empty_text")
		return "", common.InputError(EmptyTextMessage)
	}
	v := common.NewValidator().Field("text", text, common.MaxLength(s.maxChars))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.WarnContext(ctx, "summary.start.invalid", "error", err)
		return "", err
	}

	cleaned, err := s.cleaner.Clean(ctx, text)
	if err != nil {
		s.logger.ErrorContext(ctx, "summary.start.clean_failed", "error", err)
		return "", common.UpstreamCleaningError(err)
	}

	input := entity.JobInput{
		OriginalText:     text,
		CleanedText:      cleaned.CleanedText,
		Sections:         cleaned.Sections,
		DetectedLanguage: cleaned.DetectedLanguage,
	}
	if input.CleanedText == "" {
		input.CleanedText = text
	}
	if input.Sections == nil {
		input.Sections = []string{}
	}
	if input.DetectedLanguage == "" {
		input.DetectedLanguage = cleaner.UnknownLanguage
	}

	id := NewJobID()
	ctx = common.WithJobID(ctx, id)
	s.registry.GetOrCreate(id).Start(ctx, input)
	s.logger.InfoContext(ctx, "summary.job.started",
		"sections", len(input.Sections),
		"language", input.DetectedLanguage,
	)
	return id, nil
}

// Status returns the job's snapshot. Unknown ids read as Queued and are not
// registered.
func (s *Service) Status(id string) entity.JobStatus {
	if a, ok := s.registry.Lookup(id); ok {
		return a.Status()
	}
	return entity.JobStatus{State: constants.JobStateQueued}
}

// Wait blocks until the job's current attempt finishes or ctx is done.
func (s *Service) Wait(ctx context.Context, id string) (entity.JobStatus, error) {
	a, ok := s.registry.Lookup(id)
	if !ok {
		return entity.JobStatus{State: constants.JobStateQueued}, nil
	}
	return a.Wait(ctx)
}

// Job returns the input and status of a known job.
func (s *Service) Job(id string) (entity.JobInput, entity.JobStatus, error) {
	a, ok := s.registry.Lookup(id)
	if !ok {
		return entity.JobInput{}, entity.JobStatus{}, common.NewAppError(common.CodeNotFound,
			fmt.Sprintf("job %s not found", id), common.ErrNotFound)
	}
	return a.Input(), a.Status(), nil
}

// NewJobID returns a 32 hex character id.
func NewJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
