// controllers/communications.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/services"
	"bookline-backend/utils"
)

type CommunicationsController struct {
	DB       *gorm.DB
	Notifier *services.NotificationService
}

// List returns the tenant's communications log, newest first. Supports
// ?client_id=, ?type= and ?limit= filters.
func (cc *CommunicationsController) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	query := cc.DB.Where("tenant_id = ?", user.TenantID)

	if raw := c.Query("client_id"); raw != "" {
		clientUUID, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return
		}
		query = query.Where("client_id = ?", clientUUID)
	}
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			utils.RespondWithError(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	var logs []models.CommunicationsLog
	if err := query.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve communications log")
		return
	}
	c.JSON(http.StatusOK, logs)
}

type ManualSMSInput struct {
	ClientID string `json:"clientId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

// SendSMS sends a staff-initiated SMS to a client and records it in the
// communications log.
func (cc *CommunicationsController) SendSMS(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var input ManualSMSInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	clientUUID, err := uuid.Parse(input.ClientID)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var client models.Client
	if err := cc.DB.First(&client, "id = ?", clientUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}
	if err := utils.CheckPermission(user, client.TenantID, utils.ActionEdit); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	if client.PhoneNumber == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Client has no phone number on file")
		return
	}

	var tenant models.Tenant
	if err := cc.DB.First(&tenant, "id = ?", client.TenantID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	if err := cc.Notifier.SendManualSMS(&tenant, &client, user, input.Message); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to send SMS")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "SMS sent"})
}
