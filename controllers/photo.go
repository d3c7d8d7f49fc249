package controllers

import (
	"net/http"
	"time"

	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
)

type AddPhotoInput struct {
	PhotoURL string     `json:"photoUrl" binding:"required,url"`
	Caption  string     `json:"caption"`
	TakenAt  *time.Time `json:"takenAt"`
}

// AddPhoto appends a photo reference to the job's log. The file itself is
// uploaded to storage by the client beforehand.
func (h *Handlers) AddPhoto(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input AddPhotoInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	job, ok := h.loadJob(c, companyID)
	if !ok {
		return
	}

	photo, err := h.Jobs.AddPhoto(c.Request.Context(), job, userID, input.PhotoURL, input.Caption, input.TakenAt)
	if err != nil {
		respondServiceError(c, err, "Failed to add photo")
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *Handlers) GetPhotos(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	jobID, ok := utils.ParamUUID(c, "id", "job")
	if !ok {
		return
	}

	photos, err := h.Jobs.Photos(c.Request.Context(), companyID, jobID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve photos")
		return
	}
	c.JSON(http.StatusOK, photos)
}
