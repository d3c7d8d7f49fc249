// controllers/invoice.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConvertJobInput defines the labor figures a technician enters when billing
// a job. Rate and tax fall back to the company defaults when omitted.
type ConvertJobInput struct {
	LaborHours     float64  `json:"laborHours" binding:"min=0"`
	LaborRate      *float64 `json:"laborRate" binding:"omitempty,min=0"`
	ServiceCharge  float64  `json:"serviceCharge" binding:"min=0"`
	TaxRatePercent *float64 `json:"taxRate" binding:"omitempty,min=0"`
	Notes          string   `json:"notes"`
	IncludeParts   bool     `json:"includeParts"`
}

// UpdateInvoiceInput defines the expected JSON structure for updating an invoice
type UpdateInvoiceInput struct {
	Status  *string    `json:"status" binding:"omitempty,oneof=draft sent paid void"`
	DueDate *time.Time `json:"dueDate"`
	TaxRate *float64   `json:"taxRate" binding:"omitempty,min=0"`
	Notes   *string    `json:"notes"`
}

// ConvertJobToInvoice creates a draft invoice from a job's labor and
// optional service charge.
func (h *Handlers) ConvertJobToInvoice(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input ConvertJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", companyID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	conv := services.ConversionInput{
		LaborHours:     input.LaborHours,
		LaborRate:      company.SettingFloat("default_labor_rate", 0),
		ServiceCharge:  input.ServiceCharge,
		TaxRatePercent: company.SettingFloat("default_tax_rate", 0),
		Notes:          input.Notes,
	}
	if input.LaborRate != nil {
		conv.LaborRate = *input.LaborRate
	}
	if input.TaxRatePercent != nil {
		conv.TaxRatePercent = *input.TaxRatePercent
	}
	if input.IncludeParts {
		conv.Parts = h.Sessions.PartLines(userID, job.ID)
	}

	invoice, totals, err := h.Invoices.Convert(c.Request.Context(), job, userID, conv)
	if err != nil {
		respondServiceError(c, err, "Failed to create invoice")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": invoice, "totals": totals})
}

// GetInvoices retrieves all invoices for the company
func GetInvoices(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	q := config.DB.Preload("Items").Preload("Customer").Where("company_id = ?", companyID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var invoices []models.Invoice
	if err := q.Order("issue_date DESC").Find(&invoices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func findInvoice(c *gin.Context, db *gorm.DB) (*models.Invoice, bool) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return nil, false
	}
	invoiceID, ok := utils.ParamUUID(c, "id", "invoice")
	if !ok {
		return nil, false
	}

	var invoice models.Invoice
	if err := db.Preload("Items").Preload("Customer").
		Where("company_id = ? AND id = ?", companyID, invoiceID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Invoice not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &invoice, true
}

// GetInvoice retrieves a specific invoice by ID
func GetInvoice(c *gin.Context) {
	invoice, ok := findInvoice(c, config.DB)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice changes status, due date, tax rate or notes. A new tax rate
// recomputes tax and total from the stored subtotal.
func UpdateInvoice(c *gin.Context) {
	var input UpdateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, ok := findInvoice(c, config.DB)
	if !ok {
		return
	}

	if input.Status != nil {
		invoice.Status = *input.Status
	}
	if input.DueDate != nil {
		if input.DueDate.Before(invoice.IssueDate) {
			utils.RespondWithError(c, http.StatusBadRequest, "Due date cannot be before the issue date")
			return
		}
		invoice.DueDate = *input.DueDate
	}
	if input.TaxRate != nil {
		tax, total := services.ApplyTax(decimal.NewFromFloat(invoice.Subtotal), *input.TaxRate)
		invoice.TaxRate = *input.TaxRate
		invoice.TaxAmount = tax.InexactFloat64()
		invoice.TotalAmount = total.InexactFloat64()
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}

	if err := config.DB.Omit("Items", "Customer").Save(invoice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update invoice")
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice soft deletes a draft or void invoice along with its items
func DeleteInvoice(c *gin.Context) {
	tx := config.DB.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	invoice, ok := findInvoice(c, tx)
	if !ok {
		tx.Rollback()
		return
	}
	if invoice.Status == models.InvoiceSent || invoice.Status == models.InvoicePaid {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusConflict, "Only draft or void invoices can be deleted")
		return
	}

	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceLineItem{}).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice items")
		return
	}

	if err := tx.Delete(invoice).Error; err != nil {
		tx.Rollback()
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	if err := tx.Commit().Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete invoice")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}

// GetInvoicePDF renders the invoice as a PDF download.
func GetInvoicePDF(c *gin.Context) {
	invoice, ok := findInvoice(c, config.DB)
	if !ok {
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", invoice.CompanyID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	data, err := services.RenderInvoicePDF(invoice, &company)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to render invoice")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.InvoiceNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
