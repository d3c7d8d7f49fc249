package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkOrderPhoto references an already uploaded photo. Rows are never
// updated or deleted.
type WorkOrderPhoto struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	WorkOrderID      uuid.UUID `gorm:"type:uuid;index;not null" json:"workOrderId"`
	UploadedByUserID uuid.UUID `gorm:"type:uuid;not null" json:"uploadedByUserId"`
	PhotoURL         string    `gorm:"not null" json:"photoUrl"`
	Caption          string    `json:"caption"`
	TakenAt          time.Time `gorm:"not null" json:"takenAt"`
}

func (p *WorkOrderPhoto) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
