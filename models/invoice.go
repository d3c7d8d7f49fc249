package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
	InvoiceVoid  = "void"
)

const (
	LineLabor   = "labor"
	LineService = "service"
	LinePart    = "part"
)

type Invoice struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID       uuid.UUID `gorm:"type:uuid;index;not null" json:"companyId"`
	CreatedByUserID uuid.UUID `gorm:"type:uuid;index;not null" json:"createdByUserId"`

	InvoiceNumber string     `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	WorkOrderID   *uuid.UUID `gorm:"type:uuid;index" json:"workOrderId"`
	IssueDate     time.Time  `gorm:"not null" json:"issueDate"`
	DueDate       time.Time  `gorm:"not null" json:"dueDate"`

	Subtotal    float64 `gorm:"type:decimal(12,4);not null" json:"subtotal"`
	TaxRate     float64 `gorm:"type:decimal(6,3);default:0" json:"taxRate"`
	TaxAmount   float64 `gorm:"type:decimal(12,4);default:0" json:"taxAmount"`
	TotalAmount float64 `gorm:"type:decimal(12,4);not null" json:"totalAmount"`

	Status string `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Notes  string `json:"notes"`

	Customer Customer          `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []InvoiceLineItem `gorm:"foreignKey:InvoiceID" json:"items"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (inv *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	return
}

type InvoiceLineItem struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"invoiceId"`
	ItemType        string     `gorm:"type:varchar(20);not null" json:"itemType"`
	Description     string     `gorm:"not null" json:"description"`
	InventoryItemID *uuid.UUID `gorm:"type:uuid" json:"inventoryItemId,omitempty"`
	Quantity        float64    `gorm:"type:decimal(12,4);not null" json:"quantity"`
	UnitPrice       float64    `gorm:"type:decimal(12,4);not null" json:"unitPrice"`
	TotalPrice      float64    `gorm:"type:decimal(12,4);not null" json:"totalPrice"`
}

func (li *InvoiceLineItem) BeforeCreate(tx *gorm.DB) (err error) {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return
}

func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceVoid:
		return true
	}
	return false
}
