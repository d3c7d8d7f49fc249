// controllers/notification.go
package controllers

import (
	"net/http"
	"strconv"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetNotificationLogs lists recent digest messages, newest first.
// ?status=failed narrows to failures; ?limit caps the page (default 50).
func GetNotificationLogs(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n < 500 {
			limit = n
		} else {
			limit = 500
		}
	}

	q := config.DB.Where("company_id = ?", companyID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var logs []models.NotificationLog
	if err := q.Order("sent_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}

	c.JSON(http.StatusOK, logs)
}

// SendDigestNow runs today's technician digest for the caller's company
// outside the cron schedule.
func (h *Handlers) SendDigestNow(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	if h.Notifications == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Notifications are not configured")
		return
	}

	sent := h.Notifications.ProcessCompanyDigests(companyID)
	c.JSON(http.StatusOK, gin.H{"messages": sent})
}
