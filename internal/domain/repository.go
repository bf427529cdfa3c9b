package domain

// RunRepository defines the interface for run record storage
type RunRepository interface {
	// Create stores a new run record
	Create(run *RunRecord) error

	// Update updates an existing run record
	Update(run *RunRecord) error

	// Delete deletes a run by ID
	Delete(id string) error

	// FindByID finds a run by ID
	FindByID(id string) (*RunRecord, error)

	// FindAll finds all runs matching the optional filters, newest first
	FindAll(filters map[string]interface{}) ([]*RunRecord, error)

	// GetStats returns run statistics
	GetStats() (*RunStats, error)
}

// RunStats represents run statistics
type RunStats struct {
	Total        int64 `json:"total"`
	Running      int64 `json:"running"`
	Succeeded    int64 `json:"succeeded"`
	Failed       int64 `json:"failed"`
	Cancelled    int64 `json:"cancelled"`
	LaunchFailed int64 `json:"launch_failed"`
}
