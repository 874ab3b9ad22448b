package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookline-backend/config"
	"bookline-backend/models"
	"bookline-backend/utils"
)

type TenantController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type UpdateTenantInput struct {
	Name                  *string       `json:"name"`
	ContactEmail          *string       `json:"contactEmail"`
	ContactPhone          *string       `json:"contactPhone"`
	WebsiteURL            *string       `json:"websiteUrl"`
	Timezone              *string       `json:"timezone"`
	DefaultCurrency       *string       `json:"defaultCurrency"`
	BusinessHours         *models.JSONB `json:"businessHours"`
	BookingWidgetConfig   *models.JSONB `json:"bookingWidgetConfig"`
	ReminderIntervalHours *int          `json:"reminderIntervalHours"`
	SlotStepMinutes       *int          `json:"slotStepMinutes"`
}

// List returns all tenants; super_admin only.
func (t *TenantController) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	if user.Role != models.RoleSuperAdmin {
		utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var tenants []models.Tenant
	if err := t.DB.Find(&tenants).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve tenants")
		return
	}
	c.JSON(http.StatusOK, tenants)
}

// GetProfile returns the acting user's tenant.
func (t *TenantController) GetProfile(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	var tenant models.Tenant
	if err := t.DB.First(&tenant, "id = ?", user.TenantID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Tenant not found")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// UpdateProfile applies partial updates to the tenant's operating
// parameters. The subdomain is immutable and deliberately absent from
// the input type.
func (t *TenantController) UpdateProfile(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	if utils.RoleRank(user.Role) < utils.RoleRank(models.RoleAdmin) {
		utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var tenant models.Tenant
	if err := t.DB.First(&tenant, "id = ?", user.TenantID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Tenant not found")
		return
	}

	var input UpdateTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	if input.Name != nil {
		tenant.Name = *input.Name
	}
	if input.ContactEmail != nil {
		tenant.ContactEmail = *input.ContactEmail
	}
	if input.ContactPhone != nil {
		tenant.ContactPhone = *input.ContactPhone
	}
	if input.WebsiteURL != nil {
		tenant.WebsiteURL = *input.WebsiteURL
	}
	if input.Timezone != nil {
		tenant.Timezone = *input.Timezone
	}
	if input.DefaultCurrency != nil {
		tenant.DefaultCurrency = *input.DefaultCurrency
	}
	if input.BusinessHours != nil {
		tenant.BusinessHours = *input.BusinessHours
	}
	if input.BookingWidgetConfig != nil {
		tenant.BookingWidgetConfig = *input.BookingWidgetConfig
	}
	if input.ReminderIntervalHours != nil {
		tenant.ReminderIntervalHours = input.ReminderIntervalHours
	}
	if input.SlotStepMinutes != nil && *input.SlotStepMinutes > 0 {
		tenant.SlotStepMinutes = *input.SlotStepMinutes
	}

	if err := t.DB.Save(&tenant).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update tenant")
		return
	}
	c.JSON(http.StatusOK, tenant)
}

// GetWidgetConfig is the public, subdomain-scoped booking-widget
// configuration endpoint.
func (t *TenantController) GetWidgetConfig(c *gin.Context) {
	tenant, err := resolveTenantFromHost(c, t.DB, t.Cfg.BaseDomain)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":     tenant.Name,
		"timezone": tenant.Timezone,
		"currency": tenant.DefaultCurrency,
		"widget":   tenant.BookingWidgetConfig,
	})
}
