// controllers/inventory.go
package controllers

import (
	"errors"
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/services"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateInventoryInput defines the expected JSON structure for creating an item
type CreateInventoryInput struct {
	Name         string  `json:"name" binding:"required"`
	SKU          string  `json:"sku" binding:"required"`
	Quantity     int     `json:"quantity" binding:"min=0"`
	UnitPrice    float64 `json:"unitPrice" binding:"min=0"`
	ReorderLevel int     `json:"reorderLevel" binding:"min=0"`
}

// UpdateInventoryInput defines the expected JSON structure for updating an item
type UpdateInventoryInput struct {
	Name         *string  `json:"name"`
	SKU          *string  `json:"sku"`
	Quantity     *int     `json:"quantity" binding:"omitempty,min=0"`
	UnitPrice    *float64 `json:"unitPrice" binding:"omitempty,min=0"`
	ReorderLevel *int     `json:"reorderLevel" binding:"omitempty,min=0"`
}

// CreateInventoryItem adds an item to the company's stock
func CreateInventoryItem(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input CreateInventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item := models.InventoryItem{
		CompanyID:    companyID,
		Name:         input.Name,
		SKU:          input.SKU,
		Quantity:     input.Quantity,
		UnitPrice:    input.UnitPrice,
		ReorderLevel: input.ReorderLevel,
	}

	if err := config.DB.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "An item with this SKU already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create inventory item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetInventoryItems lists stock; ?lowStock=true keeps items at or below
// their reorder level.
func GetInventoryItems(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	q := config.DB.Where("company_id = ?", companyID)
	if c.Query("lowStock") == "true" {
		q = q.Where("quantity <= reorder_level")
	}

	var items []models.InventoryItem
	if err := q.Order("name ASC").Find(&items).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve inventory")
		return
	}

	c.JSON(http.StatusOK, items)
}

func findInventoryItem(c *gin.Context) (*models.InventoryItem, bool) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return nil, false
	}
	itemID, ok := utils.ParamUUID(c, "id", "inventory item")
	if !ok {
		return nil, false
	}

	var item models.InventoryItem
	if err := config.DB.Where("company_id = ? AND id = ?", companyID, itemID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Inventory item not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &item, true
}

// GetInventoryItem retrieves a specific item by ID
func GetInventoryItem(c *gin.Context) {
	item, ok := findInventoryItem(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateInventoryItem updates an existing item
func UpdateInventoryItem(c *gin.Context) {
	var input UpdateInventoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	item, ok := findInventoryItem(c)
	if !ok {
		return
	}

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.SKU != nil {
		item.SKU = *input.SKU
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.ReorderLevel != nil {
		item.ReorderLevel = *input.ReorderLevel
	}

	if err := config.DB.Save(item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.RespondWithError(c, http.StatusConflict, "An item with this SKU already exists")
			return
		}
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update inventory item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteInventoryItem soft deletes an item
func DeleteInventoryItem(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	itemID, ok := utils.ParamUUID(c, "id", "inventory item")
	if !ok {
		return
	}

	result := config.DB.Where("company_id = ? AND id = ?", companyID, itemID).
		Delete(&models.InventoryItem{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete inventory item")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Inventory item not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}

// ImportInventory upserts items from an uploaded .xlsx sheet (form field
// "file"), matching on SKU.
func ImportInventory(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Upload an .xlsx file in the \"file\" field")
		return
	}
	f, err := header.Open()
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Could not read upload")
		return
	}
	defer f.Close()

	rows, err := services.ParseInventorySheet(f)
	if err != nil {
		respondServiceError(c, err, "Failed to read inventory sheet")
		return
	}

	created, updated, err := services.ImportInventory(c.Request.Context(), config.DB, companyID, rows)
	if err != nil {
		respondServiceError(c, err, "Failed to import inventory")
		return
	}

	c.JSON(http.StatusOK, gin.H{"created": created, "updated": updated})
}
