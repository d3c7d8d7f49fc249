package controllers

import (
	"net/http"
	"time"

	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

// StartTimer opens a time entry on the job for the current user.
func (h *Handlers) StartTimer(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	entry, err := h.Timer.StartTimer(c.Request.Context(), job, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to start timer")
		return
	}
	h.Sessions.SetTimer(userID, job.ID, entry)

	c.JSON(http.StatusCreated, entry)
}

// StopTimer closes a running time entry.
func (h *Handlers) StopTimer(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	entryID, ok := utils.ParamUUID(c, "id", "time entry")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	entry, err := h.Timer.FindEntry(ctx, companyID, entryID)
	if err != nil {
		respondServiceError(c, err, "Failed to load time entry")
		return
	}
	if entry.UserID != userID {
		utils.RespondWithError(c, http.StatusForbidden, "Time entry belongs to another user")
		return
	}

	if err := h.Timer.StopTimer(ctx, entry); err != nil {
		respondServiceError(c, err, "Failed to stop timer")
		return
	}
	h.Sessions.SetTimer(userID, entry.WorkOrderID, nil)

	c.JSON(http.StatusOK, entry)
}

// GetTimeEntries lists a job's entries with the running total.
func (h *Handlers) GetTimeEntries(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	jobID, ok := utils.ParamUUID(c, "id", "job")
	if !ok {
		return
	}

	entries, err := h.Timer.Entries(c.Request.Context(), companyID, jobID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve time entries")
		return
	}

	now := time.Now()
	resp := gin.H{
		"entries":    entries,
		"totalHours": services.TotalHours(entries, now),
	}
	for _, e := range entries {
		if e.UserID == userID && e.Active() {
			resp["activeEntryId"] = e.ID
			resp["elapsed"] = services.FormatElapsed(services.Elapsed(e.StartTime, now))
		}
	}
	c.JSON(http.StatusOK, resp)
}
