package domain

import "time"

// RunRecord mirrors one session for listing and inspection by the server.
// Records live in an in-memory database and vanish with the process.
type RunRecord struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	URL          string       `json:"url" gorm:"not null"`
	TargetDir    string       `json:"target_dir"`
	Mode         MediaMode    `json:"mode"`
	Quality      Quality      `json:"quality"`
	Turbo        bool         `json:"turbo"`
	Accelerated  bool         `json:"accelerated"`
	State        SessionState `json:"state" gorm:"not null;index"`
	Outcome      OutcomeKind  `json:"outcome,omitempty" gorm:"index"`
	ExitCode     int          `json:"exit_code"`
	Warnings     int          `json:"warnings"`
	Percent      float64      `json:"percent"`
	ErrorMessage string       `json:"error_message,omitempty" gorm:"type:text"`
	Summary      string       `json:"summary,omitempty" gorm:"type:text"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	FinishedAt   *time.Time   `json:"finished_at,omitempty"`
}

// NewRunRecord creates a record for a session that is about to start
func NewRunRecord(id string, cfg DownloadConfig) *RunRecord {
	now := time.Now()
	return &RunRecord{
		ID:          id,
		URL:         cfg.URL,
		TargetDir:   cfg.TargetDir,
		Mode:        cfg.Mode,
		Quality:     cfg.Quality,
		Turbo:       cfg.Turbo,
		Accelerated: cfg.Turbo && cfg.AcceleratorAvailable,
		State:       SessionRunning,
		ExitCode:    ExitCodeUnknown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkCancelling records that a cancel request was sent
func (r *RunRecord) MarkCancelling() {
	r.State = SessionCancelling
	r.UpdatedAt = time.Now()
}

// MarkProgress stores the latest known percentage
func (r *RunRecord) MarkProgress(percent float64) {
	r.Percent = percent
	r.UpdatedAt = time.Now()
}

// MarkFinished copies the terminal outcome onto the record
func (r *RunRecord) MarkFinished(outcome RunOutcome) {
	r.State = SessionFinished
	r.Outcome = outcome.Kind
	r.ExitCode = outcome.ExitCode
	r.Warnings = outcome.Warnings
	r.Summary = outcome.Summary()
	switch outcome.Kind {
	case OutcomeSucceeded:
		r.Percent = 100
	case OutcomeFailed:
		r.ErrorMessage = outcome.ErrorSummary()
	case OutcomeLaunchFailed:
		r.ErrorMessage = outcome.Reason
	}
	now := time.Now()
	r.FinishedAt = &now
	r.UpdatedAt = now
}

// IsTerminal checks if the run has finished
func (r *RunRecord) IsTerminal() bool {
	return r.State == SessionFinished
}
