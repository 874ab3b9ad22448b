// controllers/dashboard.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

type DashboardController struct {
	DB *gorm.DB
}

// GetStats returns the tenant's overview numbers: today's load against
// yesterday's, expected revenue, backlog counts, and period aggregates
// selected by the `period` query parameter.
func (dc *DashboardController) GetStats(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	tenantID := user.TenantID
	loc := dc.tenantLocation(tenantID)
	now := time.Now().In(loc)

	period := c.DefaultQuery("period", "last_7_days")
	periodStart, periodEnd, ok := periodRange(period, now)
	if !ok {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown period: "+period)
		return
	}

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	todayEnd := todayStart.AddDate(0, 0, 1)
	yesterdayStart := todayStart.AddDate(0, 0, -1)

	live := func() *gorm.DB {
		return dc.DB.Model(&models.Appointment{}).
			Where("tenant_id = ? AND deleted_at IS NULL", tenantID)
	}

	var appointmentsToday int64
	live().
		Where("appointment_time >= ? AND appointment_time < ?", todayStart.UTC(), todayEnd.UTC()).
		Count(&appointmentsToday)

	var appointmentsYesterday int64
	live().
		Where("appointment_time >= ? AND appointment_time < ?", yesterdayStart.UTC(), todayStart.UTC()).
		Count(&appointmentsYesterday)

	var pctChange *float64
	if appointmentsYesterday > 0 {
		v := float64(appointmentsToday-appointmentsYesterday) / float64(appointmentsYesterday) * 100
		pctChange = &v
	}

	// Expected revenue counts pending and confirmed bookings still on
	// today's calendar, priced through the booked services.
	var expectedRevenueToday float64
	dc.DB.Model(&models.Appointment{}).
		Select("COALESCE(SUM(services.price), 0)").
		Joins("JOIN appointment_services ON appointment_services.appointment_id = appointments.id").
		Joins("JOIN services ON services.id = appointment_services.service_id").
		Where("appointments.tenant_id = ? AND appointments.deleted_at IS NULL", tenantID).
		Where("appointments.status IN ?", []models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed}).
		Where("appointments.appointment_time >= ? AND appointments.appointment_time < ?", todayStart.UTC(), todayEnd.UTC()).
		Scan(&expectedRevenueToday)

	var pendingTotal int64
	live().
		Where("status = ?", models.AppointmentPending).
		Count(&pendingTotal)

	var unconfirmedClients int64
	dc.DB.Model(&models.Client{}).
		Where("tenant_id = ? AND is_confirmed = ? AND is_deleted = ?", tenantID, false, false).
		Count(&unconfirmedClients)

	var upcomingNext7Days int64
	live().
		Where("status IN ?", []models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed}).
		Where("appointment_time >= ? AND appointment_time < ?", now.UTC(), now.AddDate(0, 0, 7).UTC()).
		Count(&upcomingNext7Days)

	periodAppts := live().
		Where("status = ?", models.AppointmentDone)
	periodClients := dc.DB.Model(&models.Client{}).
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false)
	periodRevenue := dc.DB.Model(&models.Appointment{}).
		Select("COALESCE(SUM(services.price), 0)").
		Joins("JOIN appointment_services ON appointment_services.appointment_id = appointments.id").
		Joins("JOIN services ON services.id = appointment_services.service_id").
		Where("appointments.tenant_id = ? AND appointments.deleted_at IS NULL", tenantID).
		Where("appointments.status = ?", models.AppointmentDone)
	if periodStart != nil {
		periodAppts = periodAppts.Where("appointment_time >= ? AND appointment_time < ?", periodStart.UTC(), periodEnd.UTC())
		periodClients = periodClients.Where("created_at >= ? AND created_at < ?", periodStart.UTC(), periodEnd.UTC())
		periodRevenue = periodRevenue.Where("appointments.appointment_time >= ? AND appointments.appointment_time < ?", periodStart.UTC(), periodEnd.UTC())
	}

	var completedPeriod int64
	periodAppts.Count(&completedPeriod)
	var newClientsPeriod int64
	periodClients.Count(&newClientsPeriod)
	var revenuePeriod float64
	periodRevenue.Scan(&revenuePeriod)

	c.JSON(http.StatusOK, gin.H{
		"appointmentsToday":     appointmentsToday,
		"appointmentsYesterday": appointmentsYesterday,
		"appointmentsPctChange": pctChange,
		"expectedRevenueToday":  expectedRevenueToday,
		"pendingAppointments":   pendingTotal,
		"unconfirmedClients":    unconfirmedClients,
		"upcomingNext7Days":     upcomingNext7Days,
		"period": gin.H{
			"name":                  period,
			"completedAppointments": completedPeriod,
			"revenue":               revenuePeriod,
			"newClients":            newClientsPeriod,
		},
	})
}

// periodRange translates a period name into a half-open [start, end)
// window in the tenant's local time. all_time returns nil bounds,
// meaning no filter.
func periodRange(period string, now time.Time) (start, end *time.Time, ok bool) {
	loc := now.Location()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var s, e time.Time
	switch period {
	case "yesterday":
		s, e = dayStart.AddDate(0, 0, -1), dayStart
	case "last_7_days":
		s, e = dayStart.AddDate(0, 0, -7), dayStart.AddDate(0, 0, 1)
	case "last_30_days":
		s, e = dayStart.AddDate(0, 0, -30), dayStart.AddDate(0, 0, 1)
	case "this_month":
		s = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		e = s.AddDate(0, 1, 0)
	case "last_month":
		e = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		s = e.AddDate(0, -1, 0)
	case "all_time":
		return nil, nil, true
	default:
		return nil, nil, false
	}
	return &s, &e, true
}

func (dc *DashboardController) tenantLocation(tenantID uuid.UUID) *time.Location {
	var tenant models.Tenant
	if err := dc.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(tenant.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
