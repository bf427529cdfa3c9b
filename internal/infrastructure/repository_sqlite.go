package infrastructure

import (
	"errors"
	"fmt"

	"github.com/yourusername/vidgrab/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN returns a shared-cache in-memory database name. Every connection
// of the pool sees the same data and it is gone when the last one closes.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// runColumns are the filter keys FindAll accepts
var runColumns = map[string]bool{
	"state":   true,
	"outcome": true,
	"mode":    true,
	"url":     true,
}

// SQLiteRunRepository implements RunRepository on SQLite
type SQLiteRunRepository struct {
	db *gorm.DB
}

// NewSQLiteRunRepository opens dsn and migrates the run table
func NewSQLiteRunRepository(dsn string) (*SQLiteRunRepository, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows one writer, a single connection avoids "table is locked"
	// errors under shared cache and keeps the memory database alive
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.RunRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteRunRepository{db: db}, nil
}

// Create stores a new run record
func (r *SQLiteRunRepository) Create(run *domain.RunRecord) error {
	return r.db.Create(run).Error
}

// Update saves all fields of an existing record
func (r *SQLiteRunRepository) Update(run *domain.RunRecord) error {
	return r.db.Save(run).Error
}

// Delete deletes a run by ID
func (r *SQLiteRunRepository) Delete(id string) error {
	return r.db.Delete(&domain.RunRecord{}, "id = ?", id).Error
}

// FindByID finds a run by ID, returning domain.ErrRunNotFound when missing
func (r *SQLiteRunRepository) FindByID(id string) (*domain.RunRecord, error) {
	var run domain.RunRecord
	err := r.db.First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindAll finds runs matching the filters, newest first
func (r *SQLiteRunRepository) FindAll(filters map[string]interface{}) ([]*domain.RunRecord, error) {
	var runs []*domain.RunRecord
	query := r.db

	for key, value := range filters {
		if !runColumns[key] {
			return nil, fmt.Errorf("unsupported filter %q", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&runs).Error
	return runs, err
}

// GetStats returns run statistics
func (r *SQLiteRunRepository) GetStats() (*domain.RunStats, error) {
	stats := &domain.RunStats{}

	if err := r.db.Model(&domain.RunRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	if err := r.db.Model(&domain.RunRecord{}).
		Where("state <> ?", domain.SessionFinished).
		Count(&stats.Running).Error; err != nil {
		return nil, err
	}

	outcomeCounts := []struct {
		Outcome domain.OutcomeKind
		Count   int64
	}{}

	if err := r.db.Model(&domain.RunRecord{}).
		Select("outcome, count(*) as count").
		Where("state = ?", domain.SessionFinished).
		Group("outcome").
		Scan(&outcomeCounts).Error; err != nil {
		return nil, err
	}

	for _, oc := range outcomeCounts {
		switch oc.Outcome {
		case domain.OutcomeSucceeded:
			stats.Succeeded = oc.Count
		case domain.OutcomeFailed:
			stats.Failed = oc.Count
		case domain.OutcomeCancelled:
			stats.Cancelled = oc.Count
		case domain.OutcomeLaunchFailed:
			stats.LaunchFailed = oc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteRunRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
