package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookline-backend/config"
	"bookline-backend/models"
	"bookline-backend/utils"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

type RegisterInput struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name" binding:"required"`
	BusinessName string `json:"businessName" binding:"required"`
	Subdomain    string `json:"subdomain" binding:"required"`
	Timezone     string `json:"timezone"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates a tenant and its first admin user in one transaction.
func (a *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	subdomain := strings.ToLower(strings.TrimSpace(input.Subdomain))
	if _, err := utils.ExtractSubdomain(subdomain+"."+a.Cfg.BaseDomain, a.Cfg.BaseDomain); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid subdomain")
		return
	}

	var existing models.Tenant
	if err := a.DB.Where("subdomain = ? OR name = ?", subdomain, input.BusinessName).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Business name or subdomain already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown timezone")
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process password")
		return
	}

	tenant := models.Tenant{
		Name:            input.BusinessName,
		Subdomain:       subdomain,
		Timezone:        timezone,
		ContactEmail:    input.Email,
		BusinessHours:   utils.DefaultBusinessHours(),
		SlotStepMinutes: 15,
	}
	user := models.User{
		Name:     input.Name,
		Email:    strings.ToLower(input.Email),
		Password: hashed,
		Role:     models.RoleAdmin,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}
		user.TenantID = tenant.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusConflict, "Could not complete registration")
		return
	}

	token, err := utils.GenerateToken(&user, a.Cfg.JWTSecret, a.Cfg.JWTExpiryHours)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	a.setAuthCookie(c, token)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"role":      user.Role,
			"tenantId":  tenant.ID,
			"subdomain": tenant.Subdomain,
		},
	})
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	var user models.User
	err := a.DB.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(input.Email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// A portal login must belong to the portal's tenant; super_admin may
	// log in anywhere.
	if tenant, err := resolveTenantFromHost(c, a.DB, a.Cfg.BaseDomain); err == nil {
		if user.Role != models.RoleSuperAdmin && user.TenantID != tenant.ID {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
	}

	token, err := utils.GenerateToken(&user, a.Cfg.JWTSecret, a.Cfg.JWTExpiryHours)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	now := time.Now()
	a.DB.Model(&user).Update("last_login", &now)
	a.setAuthCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"role":     user.Role,
			"tenantId": user.TenantID,
		},
	})
}

func (a *AuthController) Me(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"name":     user.Name,
			"role":     user.Role,
			"tenantId": user.TenantID,
		},
	})
}

func (a *AuthController) setAuthCookie(c *gin.Context, token string) {
	maxAge := a.Cfg.JWTExpiryHours * 3600
	c.SetCookie("token", token, maxAge, "/", "", true, true)
}
