package models

import "time"

// ProgressStatus is the lifecycle state of one ingestion task.
type ProgressStatus string

const (
	ProgressUploading  ProgressStatus = "UPLOADING"
	ProgressProcessing ProgressStatus = "PROCESSING"
	ProgressCompleted  ProgressStatus = "COMPLETED"
	ProgressFailed     ProgressStatus = "FAILED"
)

// ProgressStep records one completed step with the time it finished.
type ProgressStep struct {
	Label       string    `json:"label"`
	CompletedAt time.Time `json:"completed_at"`
}

// ProgressTask is the ephemeral record of one in-flight or recently
// finished ingestion. It lives only in the Store's in-process TTL table,
// never on disk.
type ProgressTask struct {
	TaskID      string         `json:"task_id"`
	FileName    string         `json:"file_name"`
	Status      ProgressStatus `json:"status"`
	Progress    int            `json:"progress"`
	CurrentStep string         `json:"current_step"`
	Steps       []ProgressStep `json:"steps"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsTerminal reports whether the task has already reached COMPLETED or
// FAILED. A retried job that mutates its ProgressTask after another
// attempt already settled it must not un-terminate it.
func (p *ProgressTask) IsTerminal() bool {
	return p.Status == ProgressCompleted || p.Status == ProgressFailed
}

// Start marks the task PROCESSING, leaving UPLOADING behind once the
// handler has taken custody of the payload and begun normalisation. A
// no-op once the task has already reached a terminal state.
func (p *ProgressTask) Start(now time.Time) {
	if p.IsTerminal() {
		return
	}
	p.Status = ProgressProcessing
	p.UpdatedAt = now
}

// Advance appends a completed step, updates the current step label and
// progress percentage, and bumps UpdatedAt. now is passed in rather than
// taken from time.Now() internally so callers control the clock. A no-op
// once the task has reached a terminal state.
func (p *ProgressTask) Advance(now time.Time, label string, progress int) {
	if p.IsTerminal() {
		return
	}
	if p.CurrentStep != "" {
		p.Steps = append(p.Steps, ProgressStep{Label: p.CurrentStep, CompletedAt: now})
	}
	p.CurrentStep = label
	p.Progress = progress
	p.UpdatedAt = now
}

// Fail marks the task FAILED with the given error message. A no-op once
// the task has already reached a terminal state.
func (p *ProgressTask) Fail(now time.Time, err string) {
	if p.IsTerminal() {
		return
	}
	p.Status = ProgressFailed
	p.Error = err
	p.UpdatedAt = now
}

// Complete marks the task COMPLETED at 100%. A no-op once the task has
// already reached a terminal state.
func (p *ProgressTask) Complete(now time.Time) {
	if p.IsTerminal() {
		return
	}
	if p.CurrentStep != "" {
		p.Steps = append(p.Steps, ProgressStep{Label: p.CurrentStep, CompletedAt: now})
	}
	p.Status = ProgressCompleted
	p.CurrentStep = ""
	p.Progress = 100
	p.UpdatedAt = now
}
