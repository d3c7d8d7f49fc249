package services

import (
	"context"
	"fmt"
	"time"

	"fieldpro-backend/models"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultInvoiceDueDays = 30

var hundred = decimal.NewFromInt(100)

// ConversionInput is what the technician supplies when turning a job into
// an invoice.
type ConversionInput struct {
	LaborHours     float64
	LaborRate      float64
	ServiceCharge  float64
	TaxRatePercent float64
	Notes          string
	Parts          []PartLine
}

// Totals are the derived amounts of a conversion.
type Totals struct {
	LaborCost     decimal.Decimal `json:"laborCost"`
	ServiceCharge decimal.Decimal `json:"serviceCharge"`
	PartsCost     decimal.Decimal `json:"partsCost"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Total         decimal.Decimal `json:"total"`
}

// ComputeTotals derives labor cost, subtotal, tax and total.
func ComputeTotals(in ConversionInput) Totals {
	var t Totals
	t.LaborCost = decimal.NewFromFloat(in.LaborHours).Mul(decimal.NewFromFloat(in.LaborRate))
	t.ServiceCharge = decimal.NewFromFloat(in.ServiceCharge)
	t.PartsCost = decimal.Zero
	for _, p := range in.Parts {
		t.PartsCost = t.PartsCost.Add(p.Total)
	}
	t.Subtotal = t.LaborCost.Add(t.ServiceCharge).Add(t.PartsCost)
	t.TaxAmount, t.Total = ApplyTax(t.Subtotal, in.TaxRatePercent)
	return t
}

// ApplyTax returns the tax on subtotal at ratePercent and the taxed total.
func ApplyTax(subtotal decimal.Decimal, ratePercent float64) (tax, total decimal.Decimal) {
	tax = subtotal.Mul(decimal.NewFromFloat(ratePercent)).Div(hundred)
	return tax, subtotal.Add(tax)
}

func (in ConversionInput) validate() error {
	if in.LaborHours < 0 || in.LaborRate < 0 || in.ServiceCharge < 0 || in.TaxRatePercent < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// InvoiceConverter persists draft invoices for finished jobs.
type InvoiceConverter struct {
	db      *gorm.DB
	node    *snowflake.Node
	dueDays int
	now     func() time.Time
}

func NewInvoiceConverter(db *gorm.DB, node *snowflake.Node, dueDays int) *InvoiceConverter {
	if dueDays <= 0 {
		dueDays = DefaultInvoiceDueDays
	}
	return &InvoiceConverter{db: db, node: node, dueDays: dueDays, now: time.Now}
}

// NextInvoiceNumber returns a time-ordered unique number. Numbers are not
// sequential and may have gaps.
func (c *InvoiceConverter) NextInvoiceNumber() string {
	return "INV-" + c.node.Generate().String()
}

// BuildLineItems returns the labor, service and part lines for totals. Lines
// with a zero amount are left out.
func BuildLineItems(job *models.WorkOrder, in ConversionInput, t Totals) []models.InvoiceLineItem {
	var lines []models.InvoiceLineItem
	if t.LaborCost.IsPositive() {
		lines = append(lines, models.InvoiceLineItem{
			ItemType:    models.LineLabor,
			Description: "Labor - " + job.Title,
			Quantity:    in.LaborHours,
			UnitPrice:   in.LaborRate,
			TotalPrice:  t.LaborCost.InexactFloat64(),
		})
	}
	if t.ServiceCharge.IsPositive() {
		lines = append(lines, models.InvoiceLineItem{
			ItemType:    models.LineService,
			Description: "Service charge",
			Quantity:    1,
			UnitPrice:   in.ServiceCharge,
			TotalPrice:  t.ServiceCharge.InexactFloat64(),
		})
	}
	for _, p := range in.Parts {
		if p.Quantity <= 0 {
			continue
		}
		itemID := p.ItemID
		lines = append(lines, models.InvoiceLineItem{
			ItemType:        models.LinePart,
			Description:     fmt.Sprintf("%s (%s)", p.Name, p.SKU),
			InventoryItemID: &itemID,
			Quantity:        float64(p.Quantity),
			UnitPrice:       p.UnitPrice,
			TotalPrice:      p.Total.InexactFloat64(),
		})
	}
	return lines
}

// Convert creates a draft invoice for job. The header and its line items are
// written in one transaction.
func (c *InvoiceConverter) Convert(ctx context.Context, job *models.WorkOrder, userID uuid.UUID, in ConversionInput) (*models.Invoice, Totals, error) {
	if err := in.validate(); err != nil {
		return nil, Totals{}, err
	}

	totals := ComputeTotals(in)
	issued := c.now()
	jobID := job.ID

	invoice := &models.Invoice{
		CompanyID:       job.CompanyID,
		CreatedByUserID: userID,
		InvoiceNumber:   c.NextInvoiceNumber(),
		CustomerID:      job.CustomerID,
		WorkOrderID:     &jobID,
		IssueDate:       issued,
		DueDate:         issued.AddDate(0, 0, c.dueDays),
		Subtotal:        totals.Subtotal.InexactFloat64(),
		TaxRate:         in.TaxRatePercent,
		TaxAmount:       totals.TaxAmount.InexactFloat64(),
		TotalAmount:     totals.Total.InexactFloat64(),
		Status:          models.InvoiceDraft,
		Notes:           in.Notes,
	}
	lines := BuildLineItems(job, in, totals)

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(invoice).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].InvoiceID = invoice.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("create invoice items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, Totals{}, err
	}

	if lines == nil {
		lines = []models.InvoiceLineItem{}
	}
	invoice.Items = lines
	return invoice, totals, nil
}
