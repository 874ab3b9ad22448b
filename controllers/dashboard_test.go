package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

func newDashboardRouter(db *gorm.DB) *gin.Engine {
	dc := DashboardController{DB: db}
	r := gin.New()
	api := r.Group("/api", utils.AuthMiddleware(db, testJWTSecret))
	api.GET("/dashboard", dc.GetStats)
	return r
}

func seedAppointment(t *testing.T, db *gorm.DB, tenantID, clientID uuid.UUID, svc *models.Service, start time.Time, status models.AppointmentStatus) *models.Appointment {
	t.Helper()

	appt := &models.Appointment{
		TenantID:        tenantID,
		ClientID:        clientID,
		AppointmentTime: start.UTC(),
		EndTime:         start.Add(time.Duration(svc.DurationMinutes) * time.Minute).UTC(),
		Status:          status,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("failed to create appointment: %v", err)
	}
	if err := db.Model(appt).Association("Services").Append(svc); err != nil {
		t.Fatalf("failed to attach service: %v", err)
	}
	return appt
}

func TestDashboardStats(t *testing.T) {
	db := openTestDB(t)
	r := newDashboardRouter(db)

	tenant := createTestTenant(t, db, "alpha")
	other := createTestTenant(t, db, "beta")
	admin := createTestUser(t, db, tenant.ID, "admin@example.com", models.RoleAdmin)

	svc := &models.Service{TenantID: tenant.ID, Name: "Cut", DurationMinutes: 30, Price: 40, IsActive: true}
	require.NoError(t, db.Create(svc).Error)
	otherSvc := &models.Service{TenantID: other.ID, Name: "Cut", DurationMinutes: 30, Price: 99, IsActive: true}
	require.NoError(t, db.Create(otherSvc).Error)

	client := &models.Client{TenantID: tenant.ID, FirstName: "Ada", Email: "ada@example.com", IsConfirmed: true}
	require.NoError(t, db.Create(client).Error)
	unconfirmed := &models.Client{TenantID: tenant.ID, FirstName: "Bob", Email: "bob@example.com"}
	require.NoError(t, db.Create(unconfirmed).Error)
	otherClient := &models.Client{TenantID: other.ID, FirstName: "Eve", Email: "eve@example.com"}
	require.NoError(t, db.Create(otherClient).Error)

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)

	// Two bookings today (one pending, one confirmed), one yesterday,
	// and one completed three days ago.
	seedAppointment(t, db, tenant.ID, client.ID, svc, today.Add(10*time.Hour), models.AppointmentPending)
	seedAppointment(t, db, tenant.ID, client.ID, svc, today.Add(14*time.Hour), models.AppointmentConfirmed)
	seedAppointment(t, db, tenant.ID, client.ID, svc, today.Add(-14*time.Hour), models.AppointmentConfirmed)
	seedAppointment(t, db, tenant.ID, client.ID, svc, today.AddDate(0, 0, -3).Add(10*time.Hour), models.AppointmentDone)

	// Another tenant's day must not leak into the numbers.
	seedAppointment(t, db, other.ID, otherClient.ID, otherSvc, today.Add(11*time.Hour), models.AppointmentPending)

	w := serve(r, newAuthedRequest(t, admin, http.MethodGet, "/api/dashboard", ""))
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	decodeJSON(t, w, &stats)
	require.EqualValues(t, 2, stats["appointmentsToday"])
	require.EqualValues(t, 1, stats["appointmentsYesterday"])
	require.EqualValues(t, 100, stats["appointmentsPctChange"])
	require.EqualValues(t, 80, stats["expectedRevenueToday"])
	require.EqualValues(t, 1, stats["pendingAppointments"])
	require.EqualValues(t, 1, stats["unconfirmedClients"])

	period, ok := stats["period"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "last_7_days", period["name"])
	require.EqualValues(t, 1, period["completedAppointments"])
	require.EqualValues(t, 40, period["revenue"])
	require.EqualValues(t, 2, period["newClients"])
}

func TestDashboardRejectsUnknownPeriod(t *testing.T) {
	db := openTestDB(t)
	r := newDashboardRouter(db)

	tenant := createTestTenant(t, db, "alpha")
	admin := createTestUser(t, db, tenant.ID, "admin@example.com", models.RoleAdmin)

	w := serve(r, newAuthedRequest(t, admin, http.MethodGet, "/api/dashboard?period=fortnight", ""))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardPeriodRanges(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 15, 13, 0, 0, 0, loc)

	start, end, ok := periodRange("yesterday", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), *start)
	require.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), *end)

	start, end, ok = periodRange("this_month", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), *start)
	require.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, loc), *end)

	start, end, ok = periodRange("last_month", now)
	require.True(t, ok)
	require.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, loc), *start)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), *end)

	start, end, ok = periodRange("all_time", now)
	require.True(t, ok)
	require.Nil(t, start)
	require.Nil(t, end)

	_, _, ok = periodRange("fortnight", now)
	require.False(t, ok)
}
