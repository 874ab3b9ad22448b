package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

// resolveTenantFromHost maps the request's Host header to the tenant it
// belongs to. Every public portal endpoint goes through this.
func resolveTenantFromHost(c *gin.Context, db *gorm.DB, baseDomain string) (*models.Tenant, error) {
	label, err := utils.ExtractSubdomain(c.Request.Host, baseDomain)
	if err != nil {
		return nil, err
	}

	var tenant models.Tenant
	if err := db.Where("LOWER(subdomain) = ?", label).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no portal for %q", utils.ErrTenantNotFound, label)
		}
		return nil, err
	}
	return &tenant, nil
}

// mustCurrentUser aborts with 401 when AuthMiddleware did not run.
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := utils.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return user, true
}
