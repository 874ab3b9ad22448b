package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bookline-backend/models"
	"bookline-backend/utils"
)

const testJWTSecret = "controller-test-secret"

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

func createTestTenant(t *testing.T, db *gorm.DB, subdomain string) *models.Tenant {
	t.Helper()

	interval := 24
	tenant := &models.Tenant{
		Name:                  subdomain + " studio",
		Subdomain:             subdomain,
		ContactEmail:          subdomain + "@example.com",
		Timezone:              "UTC",
		ReminderIntervalHours: &interval,
		SlotStepMinutes:       15,
	}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to create tenant: %v", err)
	}
	return tenant
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

// newAuthedRequest builds a request authenticated as the given user,
// signed with the same secret the test router verifies with.
func newAuthedRequest(t *testing.T, user *models.User, method, target, body string) *http.Request {
	t.Helper()

	token, err := utils.GenerateToken(user, testJWTSecret, 1)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func init() {
	gin.SetMode(gin.TestMode)
}
