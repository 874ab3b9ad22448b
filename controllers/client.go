// controllers/client.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

type ClientController struct {
	DB *gorm.DB
}

// CreateClientInput defines the expected JSON structure for creating a client
type CreateClientInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber"`
	Notes       string `json:"notes"`
}

// UpdateClientInput defines the expected JSON structure for updating a client
type UpdateClientInput struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
	Notes       *string `json:"notes"`
	IsConfirmed *bool   `json:"isConfirmed"`
}

// Create adds a client manually; staff-created clients start confirmed.
func (cc *ClientController) Create(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Email must be unique among the tenant's non-deleted clients.
	var existing models.Client
	err := cc.DB.Where("tenant_id = ? AND email = ? AND is_deleted = ?", user.TenantID, email, false).
		First(&existing).Error
	if err == nil {
		utils.RespondWithError(c, http.StatusConflict, "An active client with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	client := models.Client{
		TenantID:    user.TenantID,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       email,
		PhoneNumber: input.PhoneNumber,
		Notes:       input.Notes,
		IsConfirmed: true,
	}
	if err := cc.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusConflict, "Could not create client due to conflicting data")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// List returns the tenant's clients, excluding soft-deleted ones unless
// ?include_deleted=true.
func (cc *ClientController) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	query := cc.DB.Where("tenant_id = ?", user.TenantID)
	if c.Query("include_deleted") != "true" {
		query = query.Where("is_deleted = ?", false)
	}

	var clients []models.Client
	if err := query.Order("last_name, first_name").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (cc *ClientController) Get(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	client, ok := cc.findClient(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, client)
}

func (cc *ClientController) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	client, ok := cc.findClient(c, user)
	if !ok {
		return
	}

	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.FirstName != nil {
		client.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		client.LastName = *input.LastName
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != client.Email {
			var existing models.Client
			err := cc.DB.Where("tenant_id = ? AND email = ? AND is_deleted = ? AND id <> ?",
				user.TenantID, email, false, client.ID).First(&existing).Error
			if err == nil {
				utils.RespondWithError(c, http.StatusConflict, "Another client with this email already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
			client.Email = email
		}
	}
	if input.PhoneNumber != nil {
		client.PhoneNumber = *input.PhoneNumber
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}
	if input.IsConfirmed != nil {
		client.IsConfirmed = *input.IsConfirmed
	}

	if err := cc.DB.Save(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// Delete soft-deletes a client; a later booking with the same email
// reactivates the row. Requires role admin or above.
func (cc *ClientController) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	client, ok := cc.findClient(c, user)
	if !ok {
		return
	}
	if err := utils.CheckPermission(user, client.TenantID, utils.ActionDelete); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	now := time.Now().UTC()
	client.IsDeleted = true
	client.DeletedAt = &now
	if err := cc.DB.Save(client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

func (cc *ClientController) findClient(c *gin.Context, user *models.User) (*models.Client, bool) {
	clientUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return nil, false
	}

	var client models.Client
	if err := cc.DB.First(&client, "id = ?", clientUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	if err := utils.CheckPermission(user, client.TenantID, utils.ActionView); err != nil {
		utils.RespondWithServiceError(c, err)
		return nil, false
	}
	return &client, true
}
