package controllers

import (
	"errors"
	"log"
	"net/http"

	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers carries the services used by the job execution endpoints.
type Handlers struct {
	Jobs          *services.JobService
	Timer         *services.TimeTracker
	Sessions      *services.SessionStore
	Invoices      *services.InvoiceConverter
	Tracking      *services.TrackingManager
	Locator       *services.DeviceLocator
	Notifications *services.NotificationService
}

// loadJob fetches the job named by the :id parameter for the caller's
// company, writing the error response itself on failure.
func (h *Handlers) loadJob(c *gin.Context, companyID uuid.UUID) (*models.WorkOrder, bool) {
	jobID, ok := utils.ParamUUID(c, "id", "job")
	if !ok {
		return nil, false
	}
	job, err := h.Jobs.LoadJob(c.Request.Context(), companyID, jobID)
	if err != nil {
		respondServiceError(c, err, "Failed to load job")
		return nil, false
	}
	return job, true
}

// respondServiceError maps service errors to HTTP statuses.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Job not found")
	case errors.Is(err, services.ErrTimeEntryNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Time entry not found")
	case errors.Is(err, services.ErrInventoryItemNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Inventory item not found")
	case errors.Is(err, services.ErrTimerAlreadyActive):
		utils.RespondWithError(c, http.StatusConflict, "A timer is already running for this job")
	case errors.Is(err, services.ErrTimerAlreadyStopped):
		utils.RespondWithError(c, http.StatusConflict, "Timer already stopped")
	case errors.Is(err, services.ErrNoSession):
		utils.RespondWithError(c, http.StatusConflict, "Open the job before recording parts")
	case errors.Is(err, services.ErrNegativeAmount):
		utils.RespondWithError(c, http.StatusBadRequest, "Amounts must not be negative")
	case errors.Is(err, services.ErrInvalidInventorySheet):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	default:
		log.Printf("%s: %v", fallback, err)
		utils.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
