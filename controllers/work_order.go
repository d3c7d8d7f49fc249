// controllers/work_order.go
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
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateJobInput defines the expected JSON structure for creating a work order
type CreateJobInput struct {
	CustomerID       uuid.UUID  `json:"customerId" binding:"required"`
	ProjectID        *uuid.UUID `json:"projectId"`
	AssignedToUserID *uuid.UUID `json:"assignedToUserId"`
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	Status           string     `json:"status" binding:"omitempty,oneof=open scheduled in_progress completed cancelled"`
	Priority         string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	ScheduledDate    *time.Time `json:"scheduledDate"`
	Notes            string     `json:"notes"`
}

// UpdateStatusInput is submitted when a technician saves a job.
type UpdateStatusInput struct {
	Status      string  `json:"status" binding:"required,oneof=open scheduled in_progress completed cancelled"`
	ActualHours float64 `json:"actualHours" binding:"min=0"`
	Notes       string  `json:"notes"`
}

type SetPartInput struct {
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
	Quantity int       `json:"quantity"`
}

// GetMyJobs lists the jobs assigned to the current user.
func (h *Handlers) GetMyJobs(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	jobs, err := h.Jobs.LoadAssignedJobs(c.Request.Context(), companyID, userID, c.Query("status"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve jobs")
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// GetJob returns a job with its time entries, photos and hour totals.
func (h *Handlers) GetJob(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	now := time.Now()
	resp := gin.H{
		"job":        job,
		"totalHours": services.TotalHours(job.TimeEntries, now),
	}
	for i := range job.TimeEntries {
		e := job.TimeEntries[i]
		if e.UserID == userID && e.Active() {
			resp["activeTimer"] = e
			resp["elapsed"] = services.FormatElapsed(services.Elapsed(e.StartTime, now))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// CreateJob creates a work order for a customer of the company.
func (h *Handlers) CreateJob(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input CreateJobInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var customer models.Customer
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusBadRequest, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.AssignedToUserID != nil {
		var count int64
		if err := config.DB.Model(&models.User{}).
			Where("company_id = ? AND id = ?", companyID, *input.AssignedToUserID).
			Count(&count).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		if count == 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Assigned user not found")
			return
		}
	}

	job := models.WorkOrder{
		CompanyID:        companyID,
		CustomerID:       customer.ID,
		ProjectID:        input.ProjectID,
		AssignedToUserID: input.AssignedToUserID,
		Title:            input.Title,
		Description:      input.Description,
		Status:           input.Status,
		Priority:         input.Priority,
		ScheduledDate:    input.ScheduledDate,
		Notes:            input.Notes,
	}
	if err := h.Jobs.CreateJob(c.Request.Context(), &job); err != nil {
		respondServiceError(c, err, "Failed to create job")
		return
	}
	job.Customer = customer

	c.JSON(http.StatusCreated, job)
}

// OpenJob starts an edit session on the job for the current user. Opening a
// different job resets the parts usage.
func (h *Handlers) OpenJob(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	stock, err := h.Jobs.Stock(ctx, companyID)
	if err != nil {
		respondServiceError(c, err, "Failed to load inventory")
		return
	}
	timer, err := h.Timer.ActiveEntry(ctx, job.ID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to load timer")
		return
	}

	h.Sessions.Open(userID, companyID, job, timer, stock)
	h.respondSession(c, companyID, userID)
}

// GetSession returns the current user's open job session.
func (h *Handlers) GetSession(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	h.respondSession(c, companyID, userID)
}

func (h *Handlers) respondSession(c *gin.Context, companyID, userID uuid.UUID) {
	tracking, _ := h.Tracking.Status(companyID, userID)
	view, ok := h.Sessions.View(userID, tracking)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "No job is open")
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetPartUsage records how many units of an item the open job consumed.
// Quantities are clamped to the stock seen when the job was opened.
func (h *Handlers) SetPartUsage(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	jobID, ok := utils.ParamUUID(c, "id", "job")
	if !ok {
		return
	}

	var input SetPartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	stored, known, err := h.Sessions.SetQuantityUsed(userID, jobID, input.ItemID, input.Quantity)
	if err != nil {
		respondServiceError(c, err, "Failed to record part usage")
		return
	}

	tracking, _ := h.Tracking.Status(companyID, userID)
	view, _ := h.Sessions.View(userID, tracking)
	c.JSON(http.StatusOK, gin.H{
		"itemId":   input.ItemID,
		"quantity": stored,
		"known":    known,
		"session":  view,
	})
}

// UpdateJobStatus saves the job: consumes parts from inventory and writes
// status, hours and notes.
func (h *Handlers) UpdateJobStatus(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	update := services.StatusUpdate{
		Status:      input.Status,
		ActualHours: input.ActualHours,
		Notes:       input.Notes,
		PartsUsed:   h.Sessions.Usage(userID, job.ID),
	}
	if err := h.Jobs.UpdateJobStatus(c.Request.Context(), job, update); err != nil {
		respondServiceError(c, err, "Failed to update job")
		return
	}
	h.Sessions.ClearParts(userID, job.ID)

	c.JSON(http.StatusOK, job)
}
