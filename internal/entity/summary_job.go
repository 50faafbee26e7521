package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/notes-summarizer/constants"
)

// JobInput is what a job is started with. Only CleanedText feeds the pipeline.
type JobInput struct {
	OriginalText     string   `json:"originalText"`
	CleanedText      string   `json:"cleanedText"`
	Sections         []string `json:"sections"`
	DetectedLanguage string   `json:"detectedLanguage"`
}

// JobResult is the structured outcome of one summarization.
type JobResult struct {
	Summary     string   `json:"summary"`
	Decisions   []string `json:"decisions"`
	ActionItems []string `json:"actionItems"`
	Risks       []string `json:"risks"`
}

// JobStatus is a point-in-time snapshot of a job.
// Result is set iff State is Done, Error iff State is Error.
type JobStatus struct {
	State       constants.JobState `json:"state"`
	Result      *JobResult         `json:"result,omitempty"`
	Error       *string            `json:"error,omitempty"`
	StartedAt   *time.Time         `json:"startedAt,omitempty"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
}

// Clone returns a deep copy so callers never share memory with the owner.
func (s JobStatus) Clone() JobStatus {
	out := JobStatus{State: s.State}
	if s.Result != nil {
		r := s.Result.Clone()
		out.Result = &r
	}
	if s.Error != nil {
		e := *s.Error
		out.Error = &e
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Clone copies the result; nil lists come back as empty lists.
func (r JobResult) Clone() JobResult {
	return JobResult{
		Summary:     r.Summary,
		Decisions:   cloneList(r.Decisions),
		ActionItems: cloneList(r.ActionItems),
		Risks:       cloneList(r.Risks),
	}
}

func cloneList(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
