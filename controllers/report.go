// controllers/report.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportController handles all reporting functions
type ReportController struct{}

// AnalyticsSummary represents the Analytics data
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64             `json:"currentMonthRevenue"`
	MonthGrowth           float64             `json:"monthGrowth"`
	CurrentQuarterRevenue float64             `json:"currentQuarterRevenue"`
	QuarterGrowth         float64             `json:"quarterGrowth"`
	CurrentYearRevenue    float64             `json:"currentYearRevenue"`
	YearGrowth            float64             `json:"yearGrowth"`
	TopCustomers          []CustomerSummary   `json:"topCustomers"`
	TechnicianHours       []TechnicianSummary `json:"technicianHours"`
	QuickStats            QuickStatistics     `json:"quickStats"`
}

type CustomerSummary struct {
	Name     string  `json:"name"`
	Invoices int     `json:"invoices"`
	Spent    float64 `json:"spent"`
}

type TechnicianSummary struct {
	Name    string  `json:"name"`
	Minutes int     `json:"minutes"`
	Hours   float64 `json:"hours"`
}

type QuickStatistics struct {
	TotalCustomers  int     `json:"totalCustomers"`
	TotalInvoices   int     `json:"totalInvoices"`
	CompletedJobs   int     `json:"completedJobs"`
	AvgInvoiceValue float64 `json:"avgInvoiceValue"`
	Outstanding     float64 `json:"outstanding"`
}

// GetReportAnalytics returns revenue growth, top customers, technician
// hours for the current month and quick statistics.
func (rc *ReportController) GetReportAnalytics(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	// Get current time
	now := time.Now()
	currentYear, currentMonth, _ := now.Date()
	currentLocation := now.Location()

	// Calculate date ranges
	firstOfMonth := time.Date(currentYear, currentMonth, 1, 0, 0, 0, 0, currentLocation)
	lastOfMonth := utils.EndOfDay(firstOfMonth.AddDate(0, 1, -1))

	// Get revenue reports
	currentMonthRevenue, err := rc.getRevenue(companyID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get monthly revenue")
		return
	}

	lastMonthRevenue, err := rc.getRevenue(companyID,
		firstOfMonth.AddDate(0, -1, 0),
		firstOfMonth.Add(-time.Nanosecond))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last month revenue")
		return
	}

	quarterStart := rc.getQuarterStart(now)
	currentQuarterRevenue, err := rc.getRevenue(companyID, quarterStart, rc.getQuarterEnd(now))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quarterly revenue")
		return
	}

	lastQuarterRevenue, err := rc.getRevenue(companyID,
		quarterStart.AddDate(0, -3, 0),
		quarterStart.Add(-time.Nanosecond))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last quarter revenue")
		return
	}

	currentYearRevenue, err := rc.getRevenue(companyID,
		time.Date(currentYear, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get yearly revenue")
		return
	}

	lastYearRevenue, err := rc.getRevenue(companyID,
		time.Date(currentYear-1, 1, 1, 0, 0, 0, 0, currentLocation),
		time.Date(currentYear-1, 12, 31, 23, 59, 59, 0, currentLocation))
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get last year revenue")
		return
	}

	topCustomers, err := rc.getTopCustomers(companyID, firstOfMonth, lastOfMonth, 4)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get top customers")
		return
	}

	techHours, err := rc.getTechnicianHours(companyID, firstOfMonth, lastOfMonth)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get technician hours")
		return
	}

	quickStats, err := rc.getQuickStatistics(companyID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to get quick statistics")
		return
	}

	c.JSON(http.StatusOK, AnalyticsSummary{
		CurrentMonthRevenue:   currentMonthRevenue,
		MonthGrowth:           rc.calculateGrowthPercentage(currentMonthRevenue, lastMonthRevenue),
		CurrentQuarterRevenue: currentQuarterRevenue,
		QuarterGrowth:         rc.calculateGrowthPercentage(currentQuarterRevenue, lastQuarterRevenue),
		CurrentYearRevenue:    currentYearRevenue,
		YearGrowth:            rc.calculateGrowthPercentage(currentYearRevenue, lastYearRevenue),
		TopCustomers:          topCustomers,
		TechnicianHours:       techHours,
		QuickStats:            quickStats,
	})
}

type timesheetRecord struct {
	Technician      string
	Job             string
	Customer        string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
}

// GetTimesheet exports time entries between ?from and ?to (YYYY-MM-DD,
// default: current month) as an .xlsx workbook. ?technicianId narrows it
// to one technician.
func (rc *ReportController) GetTimesheet(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	from := utils.BeginningOfDay(utils.ParseDateParam(c.Query("from"), firstOfMonth))
	to := utils.EndOfDay(utils.ParseDateParam(c.Query("to"), now))
	if to.Before(from) {
		utils.RespondWithError(c, http.StatusBadRequest, "\"to\" must not be before \"from\"")
		return
	}

	q := config.DB.Table("time_entries").
		Select("users.name AS technician, work_orders.title AS job, customers.name AS customer, " +
			"time_entries.start_time, time_entries.end_time, time_entries.duration_minutes").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Joins("JOIN work_orders ON work_orders.id = time_entries.work_order_id").
		Joins("JOIN customers ON customers.id = work_orders.customer_id").
		Where("time_entries.company_id = ? AND time_entries.start_time BETWEEN ? AND ?", companyID, from, to)

	if raw := c.Query("technicianId"); raw != "" {
		techID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid technician ID format")
			return
		}
		q = q.Where("time_entries.user_id = ?", techID)
	}

	var records []timesheetRecord
	if err := q.Order("time_entries.start_time ASC").Scan(&records).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load time entries")
		return
	}

	rows := make([]services.TimesheetRow, 0, len(records))
	for _, r := range records {
		minutes := r.DurationMinutes
		if r.EndTime == nil {
			minutes = int(services.Elapsed(r.StartTime, now).Minutes())
		}
		rows = append(rows, services.TimesheetRow{
			Technician: r.Technician,
			Job:        r.Job,
			Customer:   r.Customer,
			Start:      r.StartTime,
			End:        r.EndTime,
			Minutes:    minutes,
		})
	}

	data, err := services.BuildTimesheet(rows)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build timesheet")
		return
	}

	filename := fmt.Sprintf("timesheet-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Helper functions for reports

func (rc *ReportController) getRevenue(companyID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64
	err := config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status <> ? AND issue_date BETWEEN ? AND ?", companyID, models.InvoiceVoid, start, end).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&total).Error
	return total, err
}

func (rc *ReportController) getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func (rc *ReportController) getQuarterEnd(date time.Time) time.Time {
	return utils.EndOfDay(rc.getQuarterStart(date).AddDate(0, 3, -1))
}

func (rc *ReportController) calculateGrowthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (rc *ReportController) getTopCustomers(companyID uuid.UUID, start, end time.Time, limit int) ([]CustomerSummary, error) {
	customers := []CustomerSummary{}

	err := config.DB.Table("invoices").
		Select("customers.name, COUNT(invoices.id) as invoices, SUM(invoices.total_amount) as spent").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Where("invoices.company_id = ? AND invoices.status <> ? AND invoices.issue_date BETWEEN ? AND ? AND invoices.deleted_at IS NULL",
			companyID, models.InvoiceVoid, start, end).
		Group("customers.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&customers).Error

	return customers, err
}

func (rc *ReportController) getTechnicianHours(companyID uuid.UUID, start, end time.Time) ([]TechnicianSummary, error) {
	summaries := []TechnicianSummary{}

	err := config.DB.Table("time_entries").
		Select("users.name, SUM(time_entries.duration_minutes) as minutes").
		Joins("JOIN users ON users.id = time_entries.user_id").
		Where("time_entries.company_id = ? AND time_entries.end_time IS NOT NULL AND time_entries.start_time BETWEEN ? AND ?",
			companyID, start, end).
		Group("users.name").
		Order("minutes DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}

	for i := range summaries {
		summaries[i].Hours = float64(summaries[i].Minutes) / 60
	}
	return summaries, nil
}

func (rc *ReportController) getQuickStatistics(companyID uuid.UUID) (QuickStatistics, error) {
	var stats QuickStatistics

	var totalCustomers int64
	if err := config.DB.Model(&models.Customer{}).
		Where("company_id = ?", companyID).
		Count(&totalCustomers).Error; err != nil {
		return stats, err
	}
	stats.TotalCustomers = int(totalCustomers)

	var totalInvoices int64
	if err := config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status <> ?", companyID, models.InvoiceVoid).
		Count(&totalInvoices).Error; err != nil {
		return stats, err
	}
	stats.TotalInvoices = int(totalInvoices)

	var completedJobs int64
	if err := config.DB.Model(&models.WorkOrder{}).
		Where("company_id = ? AND status = ?", companyID, models.StatusCompleted).
		Count(&completedJobs).Error; err != nil {
		return stats, err
	}
	stats.CompletedJobs = int(completedJobs)

	var totalRevenue float64
	if err := config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status <> ?", companyID, models.InvoiceVoid).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return stats, err
	}
	if stats.TotalInvoices > 0 {
		stats.AvgInvoiceValue = totalRevenue / float64(stats.TotalInvoices)
	}

	if err := config.DB.Model(&models.Invoice{}).
		Where("company_id = ? AND status IN ?", companyID, []string{models.InvoiceDraft, models.InvoiceSent}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.Outstanding).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
