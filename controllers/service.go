// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/config"
	"bookline-backend/models"
	"bookline-backend/utils"
)

type ServiceController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// CreateServiceInput defines the expected JSON structure for creating a service
type CreateServiceInput struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"durationMinutes" binding:"required,min=1"`
	Price           float64 `json:"price" binding:"min=0"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service
type UpdateServiceInput struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"durationMinutes"`
	Price           *float64 `json:"price"`
	IsActive        *bool    `json:"isActive"`
}

// ListPublic is the unauthenticated, subdomain-scoped service catalog.
func (s *ServiceController) ListPublic(c *gin.Context) {
	tenant, err := resolveTenantFromHost(c, s.DB, s.Cfg.BaseDomain)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	var services []models.Service
	if err := s.DB.Where("tenant_id = ? AND is_active = ?", tenant.ID, true).Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	c.JSON(http.StatusOK, services)
}

// Create creates a new service for the acting user's tenant
func (s *ServiceController) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	service := models.Service{
		TenantID:        user.TenantID,
		Name:            input.Name,
		Description:     input.Description,
		DurationMinutes: input.DurationMinutes,
		Price:           input.Price,
		IsActive:        true,
	}
	if err := s.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create service")
		return
	}
	c.JSON(http.StatusCreated, service)
}

// List retrieves all services for the acting user's tenant
func (s *ServiceController) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := s.DB.Where("tenant_id = ?", user.TenantID).Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve services")
		return
	}
	c.JSON(http.StatusOK, services)
}

// Get retrieves a specific service by ID
func (s *ServiceController) Get(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := s.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if err := utils.CheckPermission(user, service.TenantID, utils.ActionView); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, service)
}

// Update updates an existing service
func (s *ServiceController) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var service models.Service
	if err := s.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if err := utils.CheckPermission(user, service.TenantID, utils.ActionEdit); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	if input.Name != nil {
		service.Name = *input.Name
	}
	if input.Description != nil {
		service.Description = *input.Description
	}
	if input.DurationMinutes != nil {
		if *input.DurationMinutes <= 0 {
			utils.RespondWithError(c, http.StatusBadRequest, "Duration must be positive")
			return
		}
		service.DurationMinutes = *input.DurationMinutes
	}
	if input.Price != nil {
		service.Price = *input.Price
	}
	if input.IsActive != nil {
		service.IsActive = *input.IsActive
	}

	if err := s.DB.Save(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update service")
		return
	}
	c.JSON(http.StatusOK, service)
}

// Delete removes a service; requires role admin or above.
func (s *ServiceController) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	serviceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format")
		return
	}

	var service models.Service
	if err := s.DB.First(&service, "id = ?", serviceUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if err := utils.CheckPermission(user, service.TenantID, utils.ActionDelete); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	if err := s.DB.Delete(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete service")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service deleted successfully"})
}
