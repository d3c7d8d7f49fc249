package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldpro-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeTracker starts and stops time entries. At most one entry per
// (work order, user) is open at a time.
type TimeTracker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTimeTracker(db *gorm.DB) *TimeTracker {
	return &TimeTracker{db: db, now: time.Now}
}

// StartTimer opens a new entry for user on job.
func (t *TimeTracker) StartTimer(ctx context.Context, job *models.WorkOrder, userID uuid.UUID) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{
		CompanyID:   job.CompanyID,
		WorkOrderID: job.ID,
		UserID:      userID,
		StartTime:   t.now(),
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.TimeEntry{}).
			Where("work_order_id = ? AND user_id = ? AND end_time IS NULL", job.ID, userID).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrTimerAlreadyActive
		}
		return tx.Create(entry).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost the race against a concurrent start; the index kept the invariant
		return nil, ErrTimerAlreadyActive
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// StopTimer closes entry, setting its end time and a duration of at least
// one minute.
func (t *TimeTracker) StopTimer(ctx context.Context, entry *models.TimeEntry) error {
	if entry.EndTime != nil {
		return ErrTimerAlreadyStopped
	}

	end := t.now()
	duration := DurationMinutes(entry.StartTime, end)

	res := t.db.WithContext(ctx).Model(&models.TimeEntry{}).
		Where("id = ? AND end_time IS NULL", entry.ID).
		Updates(map[string]interface{}{
			"end_time":         end,
			"duration_minutes": duration,
		})
	if res.Error != nil {
		return fmt.Errorf("stop timer: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTimerAlreadyStopped
	}

	entry.EndTime = &end
	entry.DurationMinutes = duration
	return nil
}

// FindEntry loads an entry belonging to the company.
func (t *TimeTracker) FindEntry(ctx context.Context, companyID, entryID uuid.UUID) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := t.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, entryID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTimeEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ActiveEntry returns the running entry for (job, user), or nil.
func (t *TimeTracker) ActiveEntry(ctx context.Context, jobID, userID uuid.UUID) (*models.TimeEntry, error) {
	var entries []models.TimeEntry
	if err := t.db.WithContext(ctx).
		Where("work_order_id = ? AND user_id = ? AND end_time IS NULL", jobID, userID).
		Limit(1).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// Entries lists every entry recorded against a job, oldest first.
func (t *TimeTracker) Entries(ctx context.Context, companyID, jobID uuid.UUID) ([]models.TimeEntry, error) {
	var entries []models.TimeEntry
	err := t.db.WithContext(ctx).
		Where("company_id = ? AND work_order_id = ?", companyID, jobID).
		Order("start_time ASC").
		Find(&entries).Error
	return entries, err
}

// DurationMinutes is the whole minutes between start and end, never below 1.
func DurationMinutes(start, end time.Time) int {
	minutes := int(end.Sub(start) / time.Minute)
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Elapsed is the wall-clock time since start, clamped at zero. It is only
// used for display and never persisted.
func Elapsed(start, now time.Time) time.Duration {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

func FormatElapsed(d time.Duration) string {
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// TotalHours sums recorded minutes over entries. A running entry counts with
// its elapsed whole minutes at now.
func TotalHours(entries []models.TimeEntry, now time.Time) float64 {
	minutes := 0
	for _, e := range entries {
		if e.EndTime == nil {
			minutes += int(Elapsed(e.StartTime, now) / time.Minute)
			continue
		}
		minutes += e.DurationMinutes
	}
	return float64(minutes) / 60
}
