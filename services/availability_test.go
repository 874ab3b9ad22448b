package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookline-backend/models"
	"bookline-backend/utils"
)

// 2026-03-02 is a Monday.
var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func contains(slots []string, want string) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}

func TestSlotsForDateFullOpenDay(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)

	// 09:00 through 16:30 in 15-minute steps.
	assert.Len(t, result.AvailableSlots, 31)
	assert.Equal(t, "09:00", result.AvailableSlots[0])
	assert.Equal(t, "16:30", result.AvailableSlots[len(result.AvailableSlots)-1])
	assert.Equal(t, "2026-03-02", result.DateChecked)
	assert.Equal(t, "UTC", result.TimezoneQueried)
}

func TestSlotsForDateExcludesBusyOverlaps(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	client := models.Client{TenantID: tenant.ID, Email: "busy@example.com"}
	require.NoError(t, db.Create(&client).Error)
	appt := models.Appointment{
		TenantID:        tenant.ID,
		ClientID:        client.ID,
		AppointmentTime: testDate.Add(10 * time.Hour),
		EndTime:         testDate.Add(10*time.Hour + 30*time.Minute),
		Status:          models.AppointmentPending,
	}
	require.NoError(t, db.Create(&appt).Error)

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)

	// A 30-minute hold at 10:00 blocks any 30-minute start that would
	// touch it: 09:45, 10:00 and 10:15.
	assert.Len(t, result.AvailableSlots, 28)
	for _, blocked := range []string{"09:45", "10:00", "10:15"} {
		assert.False(t, contains(result.AvailableSlots, blocked), "slot %s should be blocked", blocked)
	}
	assert.True(t, contains(result.AvailableSlots, "09:30"))
	assert.True(t, contains(result.AvailableSlots, "10:30"))
}

func TestSlotsForDateCancelledDoesNotBlock(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	client := models.Client{TenantID: tenant.ID, Email: "gone@example.com"}
	require.NoError(t, db.Create(&client).Error)
	appt := models.Appointment{
		TenantID:        tenant.ID,
		ClientID:        client.ID,
		AppointmentTime: testDate.Add(10 * time.Hour),
		EndTime:         testDate.Add(10*time.Hour + 30*time.Minute),
		Status:          models.AppointmentCancelled,
	}
	require.NoError(t, db.Create(&appt).Error)

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Len(t, result.AvailableSlots, 31)
	assert.True(t, contains(result.AvailableSlots, "10:00"))
}

func TestSlotsForDateClosedDay(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", models.JSONB{
		"monday": map[string]interface{}{"isOpen": false, "intervals": []map[string]interface{}{}},
	})
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Empty(t, result.AvailableSlots)
	assert.Equal(t, "2026-03-02", result.DateChecked)
}

func TestSlotsForDateInvertedInterval(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("17:00", "09:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	// end <= start is skipped, not an error.
	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Empty(t, result.AvailableSlots)
}

func TestSlotsForDateDurationExceedsInterval(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "10:00"))
	svc := createTestService(t, db, tenant.ID, "Full Treatment", 90)
	availability := NewAvailabilityService(db, zap.NewNop())

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Empty(t, result.AvailableSlots)
}

func TestSlotsForDateCombinedDuration(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "10:00"))
	cut := createTestService(t, db, tenant.ID, "Haircut", 30)
	color := createTestService(t, db, tenant.ID, "Color", 20)
	availability := NewAvailabilityService(db, zap.NewNop())

	// Total 50 minutes in a one-hour window: only 09:00 fits
	// (09:15 + 50m = 10:05 runs past close).
	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{cut.ID, color.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00"}, result.AvailableSlots)
}

func TestSlotsForDateUnknownService(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	availability := NewAvailabilityService(db, zap.NewNop())

	_, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{uuid.New()})
	assert.True(t, errors.Is(err, utils.ErrServiceNotFound))
}

func TestSlotsForDateOtherTenantService(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	other := createTestTenant(t, db, "rival", "UTC", singleInterval("09:00", "17:00"))
	foreign := createTestService(t, db, other.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	_, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{foreign.ID})
	assert.True(t, errors.Is(err, utils.ErrServiceNotFound))
}

func TestSlotsForDateLocalTimezone(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "paris", "Europe/Paris", singleInterval("09:00", "10:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:15", "09:30"}, result.AvailableSlots)
	assert.Equal(t, "Europe/Paris", result.TimezoneQueried)
}

func TestSlotsForDateLocalTimezoneBusyStoredUTC(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "paris", "Europe/Paris", singleInterval("09:00", "10:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	client := models.Client{TenantID: tenant.ID, Email: "early@example.com"}
	require.NoError(t, db.Create(&client).Error)
	// 08:30 UTC is 09:30 in Paris in early March (CET, UTC+1).
	appt := models.Appointment{
		TenantID:        tenant.ID,
		ClientID:        client.ID,
		AppointmentTime: testDate.Add(8*time.Hour + 30*time.Minute),
		EndTime:         testDate.Add(9 * time.Hour),
		Status:          models.AppointmentConfirmed,
	}
	require.NoError(t, db.Create(&appt).Error)

	result, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	// 09:15 and 09:30 local would overlap the 09:30-10:00 local hold.
	assert.Equal(t, []string{"09:00"}, result.AvailableSlots)
}

func TestSlotsForDateRepeatable(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	svc := createTestService(t, db, tenant.ID, "Haircut", 30)
	availability := NewAvailabilityService(db, zap.NewNop())

	first, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	second, err := availability.SlotsForDate(tenant, testDate, []uuid.UUID{svc.ID})
	require.NoError(t, err)
	assert.Equal(t, first.AvailableSlots, second.AvailableSlots)
}

func TestSlotsForDateNoServices(t *testing.T) {
	db := openTestDB(t)
	tenant := createTestTenant(t, db, "acme", "UTC", singleInterval("09:00", "17:00"))
	availability := NewAvailabilityService(db, zap.NewNop())

	_, err := availability.SlotsForDate(tenant, testDate, nil)
	assert.True(t, errors.Is(err, utils.ErrInvalidInput))
}
