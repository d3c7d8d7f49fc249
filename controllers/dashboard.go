package controllers

import (
	"fmt"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type UpcomingJob struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Customer   string    `json:"customer"`
	Priority   string    `json:"priority"`
	Technician string    `json:"technician"`
	Date       string    `json:"date"` // e.g. "Today", "Tomorrow", "3 days"
}

type LowStockItem struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Quantity     int       `json:"quantity"`
	ReorderLevel int       `json:"reorderLevel"`
}

func relativeDay(now, date time.Time) string {
	days := int(utils.BeginningOfDay(date).Sub(utils.BeginningOfDay(now)).Hours() / 24)
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("%d days", days)
	}
}

func GetDashboardOverview(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// Jobs by status
	var byStatus []StatusCount
	if err := config.DB.Model(&models.WorkOrder{}).
		Select("status, COUNT(*) as count").
		Where("company_id = ?", companyID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to count jobs")
		return
	}
	openJobs := 0
	for _, s := range byStatus {
		if s.Status != models.StatusCompleted && s.Status != models.StatusCancelled {
			openJobs += s.Count
		}
	}

	// Jobs scheduled over the next 7 days
	var jobs []models.WorkOrder
	if err := config.DB.Preload("Customer").
		Where("company_id = ? AND scheduled_date BETWEEN ? AND ? AND status NOT IN ?",
			companyID, utils.BeginningOfDay(now), utils.EndOfDay(now.AddDate(0, 0, 6)),
			[]string{models.StatusCompleted, models.StatusCancelled}).
		Order("scheduled_date ASC").
		Limit(10).
		Find(&jobs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load upcoming jobs")
		return
	}

	techNames := map[uuid.UUID]string{}
	var techs []models.User
	config.DB.Where("company_id = ?", companyID).Find(&techs)
	for _, t := range techs {
		techNames[t.ID] = t.Name
	}

	var todaysJobs int64
	config.DB.Model(&models.WorkOrder{}).
		Where("company_id = ? AND scheduled_date BETWEEN ? AND ?", companyID, utils.BeginningOfDay(now), utils.EndOfDay(now)).
		Count(&todaysJobs)

	upcoming := make([]UpcomingJob, 0, len(jobs))
	for _, j := range jobs {
		label := relativeDay(now, *j.ScheduledDate)
		tech := ""
		if j.AssignedToUserID != nil {
			tech = techNames[*j.AssignedToUserID]
		}
		upcoming = append(upcoming, UpcomingJob{
			ID:         j.ID,
			Title:      j.Title,
			Customer:   j.Customer.Name,
			Priority:   j.Priority,
			Technician: tech,
			Date:       label,
		})
	}

	// Low stock
	var lowStock []LowStockItem
	config.DB.Model(&models.InventoryItem{}).
		Select("id, name, sku, quantity, reorder_level").
		Where("company_id = ? AND quantity <= reorder_level", companyID).
		Order("quantity ASC").
		Scan(&lowStock)

	// This Month's Revenue
	var monthlyRevenue float64
	config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND issue_date >= ? AND status <> ?", companyID, firstOfMonth, models.InvoiceVoid).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&monthlyRevenue)

	var draftInvoices int64
	config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status = ?", companyID, models.InvoiceDraft).
		Count(&draftInvoices)

	var totalCustomers int64
	config.DB.Model(&models.Customer{}).Where("company_id = ?", companyID).Count(&totalCustomers)

	if byStatus == nil {
		byStatus = []StatusCount{}
	}
	if lowStock == nil {
		lowStock = []LowStockItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalCustomers": totalCustomers,
		"openJobs":       openJobs,
		"todaysJobs":     todaysJobs,
		"jobsByStatus":   byStatus,
		"upcomingJobs":   upcoming,
		"lowStock":       lowStock,
		"monthlyRevenue": monthlyRevenue,
		"draftInvoices":  draftInvoices,
	})
}
