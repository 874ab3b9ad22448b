package services

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookline-backend/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Service{},
		&models.Client{},
		&models.Appointment{},
		&models.CommunicationsLog{},
		&models.Template{},
		&models.NotificationOutbox{},
	); err != nil {
		t.Fatalf("auto migration failed: %v", err)
	}
	return db
}

func createTestTenant(t *testing.T, db *gorm.DB, subdomain, timezone string, hours models.JSONB) *models.Tenant {
	t.Helper()

	interval := 24
	tenant := &models.Tenant{
		Name:                  subdomain + " studio",
		Subdomain:             subdomain,
		ContactEmail:          subdomain + "@example.com",
		Timezone:              timezone,
		BusinessHours:         hours,
		ReminderIntervalHours: &interval,
		SlotStepMinutes:       15,
	}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to create tenant: %v", err)
	}
	return tenant
}

func createTestService(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, minutes int) *models.Service {
	t.Helper()

	svc := &models.Service{
		TenantID:        tenantID,
		Name:            name,
		DurationMinutes: minutes,
		Price:           40,
		IsActive:        true,
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func createTestUser(t *testing.T, db *gorm.DB, tenantID uuid.UUID, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		TenantID: tenantID,
		Name:     "Test User",
		Email:    email,
		Password: "not-a-real-hash",
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// singleInterval builds a week where every day shares one open interval.
func singleInterval(start, end string) models.JSONB {
	day := map[string]interface{}{
		"isOpen":    true,
		"intervals": []map[string]interface{}{{"start": start, "end": end}},
	}
	return models.JSONB{
		"monday": day, "tuesday": day, "wednesday": day,
		"thursday": day, "friday": day, "saturday": day, "sunday": day,
	}
}

func newTestAppointmentService(db *gorm.DB) *AppointmentService {
	return NewAppointmentService(db, NewSlotLock(nil, zap.NewNop()), zap.NewNop())
}
