package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"createdByUserId"`

	Name     string `gorm:"not null" json:"name"`
	Phone    string `gorm:"index" json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
	IsActive bool   `gorm:"default:true" json:"isActive"`

	Projects   []Project   `gorm:"foreignKey:CustomerID" json:"projects,omitempty"`
	WorkOrders []WorkOrder `gorm:"foreignKey:CustomerID" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (cu *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if cu.ID == uuid.Nil {
		cu.ID = uuid.New()
	}
	return
}

// Project groups work orders for one customer site or engagement.
type Project struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID  uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`
	Name       string    `gorm:"not null" json:"name"`
	Status     string    `gorm:"type:varchar(20);default:'active'" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
