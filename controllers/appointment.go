// controllers/appointment.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/config"
	"bookline-backend/models"
	"bookline-backend/services"
	"bookline-backend/utils"
)

type AppointmentController struct {
	DB           *gorm.DB
	Cfg          *config.Config
	Appointments *services.AppointmentService
}

// BookAppointmentInput is the public booking payload submitted from a
// tenant's widget.
type BookAppointmentInput struct {
	ClientFirstName string   `json:"clientFirstName"`
	ClientLastName  string   `json:"clientLastName"`
	ClientEmail     string   `json:"clientEmail" binding:"required,email"`
	ClientPhone     string   `json:"clientPhone"`
	AppointmentTime string   `json:"appointmentTime" binding:"required"`
	ServiceIDs      []string `json:"serviceIds" binding:"required,min=1"`
	Notes           string   `json:"notes"`
}

// BookPublic creates a PENDING appointment on the portal identified by
// the request's subdomain. No authentication is required.
func (ac *AppointmentController) BookPublic(c *gin.Context) {
	tenant, err := resolveTenantFromHost(c, ac.DB, ac.Cfg.BaseDomain)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}

	var input BookAppointmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, input.AppointmentTime)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "appointmentTime must be RFC 3339, e.g. 2026-04-01T14:30:00Z")
		return
	}

	serviceIDs := make([]uuid.UUID, 0, len(input.ServiceIDs))
	for _, raw := range input.ServiceIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid service ID format: "+raw)
			return
		}
		serviceIDs = append(serviceIDs, id)
	}

	appt, err := ac.Appointments.Create(c.Request.Context(), tenant, services.CreateAppointmentInput{
		ClientFirstName: input.ClientFirstName,
		ClientLastName:  input.ClientLastName,
		ClientEmail:     input.ClientEmail,
		ClientPhone:     input.ClientPhone,
		StartTime:       start,
		ServiceIDs:      serviceIDs,
		Notes:           input.Notes,
	})
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// List returns the tenant's appointments, optionally filtered by status
// and/or a single local calendar date (?date=2026-04-01).
func (ac *AppointmentController) List(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	query := ac.DB.Preload("Client").Preload("Services").
		Where("tenant_id = ?", user.TenantID)

	if status := c.Query("status"); status != "" {
		s := models.AppointmentStatus(status)
		if !s.Valid() {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown status filter: "+status)
			return
		}
		query = query.Where("status = ?", s)
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		loc := ac.tenantLocation(user.TenantID)
		dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).UTC()
		query = query.Where("appointment_time >= ? AND appointment_time < ?", dayStart, dayStart.Add(24*time.Hour))
	}

	var appts []models.Appointment
	if err := query.Order("appointment_time").Find(&appts).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve appointments")
		return
	}
	c.JSON(http.StatusOK, appts)
}

func (ac *AppointmentController) Get(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var appt models.Appointment
	if err := ac.DB.Preload("Client").Preload("Services").
		First(&appt, "id = ?", apptUUID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Appointment not found")
		return
	}
	if err := utils.CheckPermission(user, appt.TenantID, utils.ActionView); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// UpdateAppointmentRequest carries the PATCHable fields. Absent fields
// are left unchanged.
type UpdateAppointmentRequest struct {
	Status          *string `json:"status"`
	AppointmentTime *string `json:"appointmentTime"`
}

func (ac *AppointmentController) Update(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var input services.UpdateAppointmentInput
	if req.Status != nil {
		status := models.AppointmentStatus(*req.Status)
		input.Status = &status
	}
	if req.AppointmentTime != nil {
		start, err := time.Parse(time.RFC3339, *req.AppointmentTime)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "appointmentTime must be RFC 3339")
			return
		}
		input.AppointmentTime = &start
	}

	appt, err := ac.Appointments.Update(user, apptUUID, input)
	if err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (ac *AppointmentController) Delete(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	apptUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid appointment ID format")
		return
	}

	if err := ac.Appointments.Delete(user, apptUUID); err != nil {
		utils.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

func (ac *AppointmentController) tenantLocation(tenantID uuid.UUID) *time.Location {
	var tenant models.Tenant
	if err := ac.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
