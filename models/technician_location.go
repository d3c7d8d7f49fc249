package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TechnicianLocation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	TechnicianID uuid.UUID `gorm:"type:uuid;index;not null" json:"technicianId"`
	Latitude     float64   `gorm:"not null" json:"latitude"`
	Longitude    float64   `gorm:"not null" json:"longitude"`
	Accuracy     float64   `json:"accuracy"` // meters
	RecordedAt   time.Time `gorm:"index;not null" json:"recordedAt"`
}

func (l *TechnicianLocation) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return
}
