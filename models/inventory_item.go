package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryItem struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_company_sku,priority:1,where:deleted_at IS NULL" json:"companyId"`
	Name         string    `gorm:"not null" json:"name"`
	SKU          string    `gorm:"not null;uniqueIndex:idx_company_sku,priority:2,where:deleted_at IS NULL" json:"sku"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	UnitPrice    float64   `gorm:"type:decimal(10,2);not null;default:0" json:"unitPrice"`
	ReorderLevel int       `gorm:"default:0" json:"reorderLevel"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *InventoryItem) BeforeCreate(tx *gorm.DB) (err error) {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return
}
