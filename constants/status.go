package constants

// JobState is the canonical state of a summary job.
type JobState string

// Stable values (rendered exactly like this to callers).
const (
	JobStateQueued  JobState = "Queued"  // created, never started
	JobStateRunning JobState = "Running" // pipeline in flight
	JobStateDone    JobState = "Done"    // terminal, result present
	JobStateError   JobState = "Error"   // terminal, error message present
)

// IsTerminal reports whether no further transition happens for the current start attempt.
func (s JobState) IsTerminal() bool {
	return s == JobStateDone || s == JobStateError
}
