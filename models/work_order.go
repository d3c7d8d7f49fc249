package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusOpen       = "open"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// WorkOrder is a job assigned to one technician.
type WorkOrder struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"companyId"`
	CustomerID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	ProjectID        *uuid.UUID `gorm:"type:uuid;index" json:"projectId"`
	AssignedToUserID *uuid.UUID `gorm:"type:uuid;index" json:"assignedToUserId"`

	Title         string     `gorm:"not null" json:"title"`
	Description   string     `json:"description"`
	Status        string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	Priority      string     `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	CompletedDate *time.Time `json:"completedDate"`
	ActualHours   float64    `gorm:"type:decimal(10,2);default:0" json:"actualHours"`
	Notes         string     `json:"notes"`

	Customer    Customer         `gorm:"foreignKey:CustomerID" json:"customer"`
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	TimeEntries []TimeEntry      `gorm:"foreignKey:WorkOrderID" json:"timeEntries,omitempty"`
	Photos      []WorkOrderPhoto `gorm:"foreignKey:WorkOrderID" json:"photos,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (w *WorkOrder) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return
}

func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
