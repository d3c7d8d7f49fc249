package controllers

import (
	"errors"
	"net/http"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name    string  `json:"name" binding:"required"`
	Phone   string  `json:"phone"`
	Email   *string `json:"email"` // Pointer to allow null
	Address string  `json:"address"`
	Notes   string  `json:"notes"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer
type UpdateCustomerInput struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"isActive"`
}

// CreateCustomer creates a new customer for the company
func CreateCustomer(c *gin.Context) {
	userID, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Phone != "" {
		if !utils.ValidatePhone(input.Phone) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
			return
		}
		if conflict, err := phoneTaken(companyID, input.Phone, uuid.Nil); err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		} else if conflict {
			utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
			return
		}
	}

	customer := models.Customer{
		CompanyID:       companyID,
		CreatedByUserID: userID,
		Name:            input.Name,
		Phone:           input.Phone,
		Address:         input.Address,
		Notes:           input.Notes,
		IsActive:        true,
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}

	if err := config.DB.Create(&customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

func phoneTaken(companyID uuid.UUID, phone string, except uuid.UUID) (bool, error) {
	var existing models.Customer
	err := config.DB.Where("company_id = ? AND phone = ? AND id <> ?", companyID, phone, except).
		First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// GetCustomers retrieves all customers for the company
func GetCustomers(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}

	q := config.DB.Where("company_id = ?", companyID)
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var customers []models.Customer
	if err := q.Order("name ASC").Find(&customers).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve customers")
		return
	}

	c.JSON(http.StatusOK, customers)
}

func findCustomer(c *gin.Context) (*models.Customer, bool) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return nil, false
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return nil, false
	}

	var customer models.Customer
	if err := config.DB.Preload("Projects").
		Where("company_id = ? AND id = ?", companyID, customerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &customer, true
}

// GetCustomer retrieves a specific customer by ID
func GetCustomer(c *gin.Context) {
	customer, ok := findCustomer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer updates an existing customer
func UpdateCustomer(c *gin.Context) {
	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer, ok := findCustomer(c)
	if !ok {
		return
	}

	if input.Name != nil {
		customer.Name = *input.Name
	}
	if input.Phone != nil && *input.Phone != customer.Phone {
		if *input.Phone != "" {
			if !utils.ValidatePhone(*input.Phone) {
				utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
				return
			}
			if conflict, err := phoneTaken(customer.CompanyID, *input.Phone, customer.ID); err != nil {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			} else if conflict {
				utils.RespondWithError(c, http.StatusConflict, "Another customer with this phone number already exists")
				return
			}
		}
		customer.Phone = *input.Phone
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.Notes != nil {
		customer.Notes = *input.Notes
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := config.DB.Omit("Projects").Save(customer).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer
func DeleteCustomer(c *gin.Context) {
	_, companyID, ok := utils.Identity(c)
	if !ok {
		return
	}
	customerID, ok := utils.ParamUUID(c, "id", "customer")
	if !ok {
		return
	}

	result := config.DB.Where("company_id = ? AND id = ?", companyID, customerID).
		Delete(&models.Customer{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete customer")
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
