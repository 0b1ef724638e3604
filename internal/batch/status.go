package batch

// Status is the lifecycle state of a remote batch job as reported by the
// API. Jobs move from validating to in_progress (possibly through finalizing)
// and end in exactly one terminal state.
type Status string

const (
	StatusValidating Status = "validating"
	StatusInProgress Status = "in_progress"
	StatusFinalizing Status = "finalizing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusExpired    Status = "expired"
	StatusCancelling Status = "cancelling"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the job has finished and will never change state
// again. Polling stops at the first terminal status.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// HasOutput reports whether the job produced a downloadable output file.
// Only completed jobs do; failed, expired and cancelled jobs end the
// workflow without results.
func (s Status) HasOutput() bool {
	return s == StatusCompleted
}

// Known reports whether s is a status this package understands. Unknown
// statuses are treated as non-terminal so polling keeps going rather than
// abandoning a live job.
func (s Status) Known() bool {
	switch s {
	case StatusValidating, StatusInProgress, StatusFinalizing,
		StatusCompleted, StatusFailed, StatusExpired,
		StatusCancelling, StatusCancelled:
		return true
	}
	return false
}
