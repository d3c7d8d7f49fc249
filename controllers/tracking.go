package controllers

import (
	"net/http"
	"time"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LocationReportInput struct {
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Accuracy         float64    `json:"accuracy" binding:"min=0"`
	Timestamp        *time.Time `json:"timestamp"`
	PermissionDenied bool       `json:"permissionDenied"`
}

// StartTracking begins periodic location sampling for the current user.
func (h *Handlers) StartTracking(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	state, err := h.Tracking.Start(companyID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to start tracking")
		return
	}
	_, notice := h.Tracking.Status(companyID, userID)
	c.JSON(http.StatusOK, gin.H{"state": state, "notice": notice})
}

// StopTracking cancels location sampling. Calling it while idle is fine.
func (h *Handlers) StopTracking(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	h.Tracking.Stop(companyID, userID)
	c.JSON(http.StatusOK, gin.H{"state": services.TrackingIdle})
}

// GetTrackingStatus returns the tracker state and, once, any notice raised
// since the last call.
func (h *Handlers) GetTrackingStatus(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	state, notice := h.Tracking.Status(companyID, userID)
	c.JSON(http.StatusOK, gin.H{"state": state, "notice": notice})
}

// ReportLocation receives the device's latest fix (or a permission denial)
// for the pinger to sample.
func (h *Handlers) ReportLocation(c *gin.Context) {
	userID, _, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input LocationReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.PermissionDenied {
		h.Locator.ReportDenied(userID)
		c.JSON(http.StatusAccepted, gin.H{"message": "Permission denial recorded"})
		return
	}
	if !utils.ValidCoordinates(input.Latitude, input.Longitude) {
		utils.RespondWithError(c, http.StatusBadRequest, "Coordinates out of range")
		return
	}

	pos := services.Position{
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		Accuracy:  input.Accuracy,
	}
	if input.Timestamp != nil {
		pos.At = *input.Timestamp
	}
	h.Locator.Report(userID, pos)
	c.JSON(http.StatusAccepted, gin.H{"message": "Location received"})
}

// GetLocations lists samples for a technician (default: the caller) in a
// date range.
func GetLocations(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	technicianID := userID
	if raw := c.Query("technicianId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid technician ID format")
			return
		}
		technicianID = parsed
	}

	now := time.Now()
	from := utils.BeginningOfDay(utils.ParseDateParam(c.Query("from"), now))
	to := utils.EndOfDay(utils.ParseDateParam(c.Query("to"), now))

	var samples []models.TechnicianLocation
	if err := config.DB.Where("company_id = ? AND technician_id = ? AND recorded_at BETWEEN ? AND ?",
		companyID, technicianID, from, to).
		Order("recorded_at ASC").
		Find(&samples).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve locations")
		return
	}
	c.JSON(http.StatusOK, samples)
}
