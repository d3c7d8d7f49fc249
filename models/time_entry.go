package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeEntry is a recorded work interval. EndTime is nil while the timer runs;
// the partial unique index keeps one running entry per (work order, user).
type TimeEntry struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"companyId"`
	WorkOrderID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_active_timer,priority:1,where:end_time IS NULL" json:"workOrderId"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_active_timer,priority:2,where:end_time IS NULL" json:"userId"`
	StartTime       time.Time  `gorm:"not null" json:"startTime"`
	EndTime         *time.Time `json:"endTime"`
	DurationMinutes int        `gorm:"default:0" json:"durationMinutes"`
	Notes           string     `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *TimeEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

func (t *TimeEntry) Active() bool {
	return t.EndTime == nil
}
