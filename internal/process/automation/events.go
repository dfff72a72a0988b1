package automation

import (
	"time"

	"github.com/lueurxax/perf-review-sync/internal/process/reportmatch"
)

// Stage names a step of a download run.
type Stage string

const (
	StageLogin    Stage = "login"
	StageCycles   Stage = "cycles"
	StageMatch    Stage = "match"
	StageSelect   Stage = "select"
	StageDownload Stage = "download"
	StageUpload   Stage = "upload"
	StageDone     Stage = "done"
)

// Status is the state of the run when an event was emitted.
type Status string

const (
	StatusRunning   Status = "running"
	StatusWaiting   Status = "waiting"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusStopped   Status = "stopped"
)

// Event reports progress of a run. Matches is only set while the run waits
// for a report to be chosen.
type Event struct {
	RunID   string                       `json:"run_id"`
	Time    time.Time                    `json:"time"`
	Stage   Stage                        `json:"stage"`
	Status  Status                       `json:"status"`
	Message string                       `json:"message"`
	Matches *reportmatch.SelectionResult `json:"matches,omitempty"`
	Err     string                       `json:"error,omitempty"`
}

// Terminal reports whether no further events follow e.
func (e Event) Terminal() bool {
	switch e.Status {
	case StatusCompleted, StatusFailed, StatusStopped:
		return true
	default:
		return false
	}
}
