// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	Type         string    `gorm:"type:varchar(20)" json:"type"` // daily_digest
	Message      string    `gorm:"type:text" json:"message"`
	Status       string    `gorm:"type:varchar(20)" json:"status"` // sent, failed
	ErrorMessage string    `gorm:"type:text" json:"errorMessage,omitempty"`
	Channel      string    `gorm:"type:varchar(20)" json:"channel"` // sms
	SentAt       time.Time `json:"sentAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	n.ID = uuid.New()
	return
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&User{},
		&Customer{},
		&Project{},
		&WorkOrder{},
		&TimeEntry{},
		&InventoryItem{},
		&WorkOrderPhoto{},
		&TechnicianLocation{},
		&Invoice{},
		&InvoiceLineItem{},
		&NotificationLog{},
	}
}
