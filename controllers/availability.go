// controllers/availability.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/config"
	"bookline-backend/services"
	"bookline-backend/utils"
)

type AvailabilityController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Availability *services.AvailabilityService
}

// GetSlots answers the public widget query
// GET /availability?date=YYYY-MM-DD&service_ids=a,b,c
// scoped to the tenant identified by the request's subdomain.
func (vc *AvailabilityController) GetSlots(c *gin.Context) {
	tenant, err := resolveTenantFromHost(c, vc.DB, vc.Cfg.BaseDomain)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	rawIDs := c.Query("service_ids")
	if rawIDs == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "service_ids query parameter is required")
		return
	}
	var serviceIDs []uuid.UUID
	for _, part := range strings.Split(rawIDs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format: "+part)
			return
		}
		serviceIDs = append(serviceIDs, id)
	}
	if len(serviceIDs) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "service_ids must contain at least one ID")
		return
	}

	result, err := vc.Availability.SlotsForDate(tenant, date, serviceIDs)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
