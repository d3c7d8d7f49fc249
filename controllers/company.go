package controllers

import (
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type UpdateCompanyInput struct {
	Name             *string  `json:"name"`
	Address          *string  `json:"address"`
	DefaultLaborRate *float64 `json:"defaultLaborRate" binding:"omitempty,min=0"`
	DefaultTaxRate   *float64 `json:"defaultTaxRate" binding:"omitempty,min=0,max=100"`
	DigestEnabled    *bool    `json:"digestEnabled"`
}

func companyResponse(company *models.Company) gin.H {
	return gin.H{
		"id":               company.ID,
		"name":             company.Name,
		"address":          company.Address,
		"defaultLaborRate": company.SettingFloat("default_labor_rate", 0),
		"defaultTaxRate":   company.SettingFloat("default_tax_rate", 0),
		"digestEnabled":    company.SettingBool("digest_enabled", true),
	}
}

func GetCompany(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", companyID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Company not found")
		return
	}

	c.JSON(http.StatusOK, companyResponse(&company))
}

func UpdateCompany(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var company models.Company
	if err := config.DB.First(&company, "id = ?", companyID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Company not found")
		return
	}

	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Address != nil {
		company.Address = *input.Address
	}

	settings := datatypes.JSONMap{}
	for k, v := range company.Settings {
		settings[k] = v
	}
	if input.DefaultLaborRate != nil {
		settings["default_labor_rate"] = *input.DefaultLaborRate
	}
	if input.DefaultTaxRate != nil {
		settings["default_tax_rate"] = *input.DefaultTaxRate
	}
	if input.DigestEnabled != nil {
		settings["digest_enabled"] = *input.DigestEnabled
	}
	company.Settings = settings

	if err := config.DB.Save(&company).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update company")
		return
	}

	c.JSON(http.StatusOK, companyResponse(&company))
}
