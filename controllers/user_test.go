package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

func newUserRouter(db *gorm.DB) *gin.Engine {
	uc := UserController{DB: db}
	r := gin.New()
	api := r.Group("/api", utils.AuthMiddleware(db, testJWTSecret))
	api.POST("/users", uc.Create)
	api.GET("/users", uc.List)
	api.PATCH("/users/:id", uc.Update)
	api.DELETE("/users/:id", uc.Delete)
	return r
}

func TestListUsersScopedByRole(t *testing.T) {
	db := openTestDB(t)
	r := newUserRouter(db)

	tenantA := createTestTenant(t, db, "alpha")
	tenantB := createTestTenant(t, db, "beta")
	super := createTestUser(t, db, tenantA.ID, "root@example.com", models.RoleSuperAdmin)
	admin := createTestUser(t, db, tenantA.ID, "admin-a@example.com", models.RoleAdmin)
	staff := createTestUser(t, db, tenantA.ID, "staff-a@example.com", models.RoleStaff)
	createTestUser(t, db, tenantB.ID, "staff-b@example.com", models.RoleStaff)

	w := serve(r, newAuthedRequest(t, super, http.MethodGet, "/api/users", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]interface{}
	decodeJSON(t, w, &all)
	require.Len(t, all, 4)

	w = serve(r, newAuthedRequest(t, admin, http.MethodGet, "/api/users", ""))
	require.Equal(t, http.StatusOK, w.Code)
	var own []map[string]interface{}
	decodeJSON(t, w, &own)
	require.Len(t, own, 3)
	for _, u := range own {
		require.Equal(t, tenantA.ID.String(), u["tenantId"])
	}

	w = serve(r, newAuthedRequest(t, staff, http.MethodGet, "/api/users", ""))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateUserTenantRules(t *testing.T) {
	db := openTestDB(t)
	r := newUserRouter(db)

	tenantA := createTestTenant(t, db, "alpha")
	tenantB := createTestTenant(t, db, "beta")
	admin := createTestUser(t, db, tenantA.ID, "admin-a@example.com", models.RoleAdmin)
	staff := createTestUser(t, db, tenantA.ID, "staff-a@example.com", models.RoleStaff)

	body := `{"name":"New Hire","email":"hire@example.com","password":"secret-pass"}`
	w := serve(r, newAuthedRequest(t, admin, http.MethodPost, "/api/users", body))
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.User
	require.NoError(t, db.Where("email = ?", "hire@example.com").First(&created).Error)
	require.Equal(t, tenantA.ID, created.TenantID)
	require.Equal(t, models.RoleStaff, created.Role)
	require.NotEqual(t, "secret-pass", created.Password)

	// Duplicate email is rejected.
	w = serve(r, newAuthedRequest(t, admin, http.MethodPost, "/api/users", body))
	require.Equal(t, http.StatusConflict, w.Code)

	// Admins cannot plant users in another tenant.
	other := `{"name":"Intruder","email":"intruder@example.com","password":"secret-pass","tenantId":"` + tenantB.ID.String() + `"}`
	w = serve(r, newAuthedRequest(t, admin, http.MethodPost, "/api/users", other))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Staff cannot create users at all.
	w = serve(r, newAuthedRequest(t, staff, http.MethodPost, "/api/users",
		`{"name":"Nope","email":"nope@example.com","password":"secret-pass"}`))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUpdateUserHonorsEditRules(t *testing.T) {
	db := openTestDB(t)
	r := newUserRouter(db)

	tenantA := createTestTenant(t, db, "alpha")
	tenantB := createTestTenant(t, db, "beta")
	admin := createTestUser(t, db, tenantA.ID, "admin-a@example.com", models.RoleAdmin)
	staff := createTestUser(t, db, tenantA.ID, "staff-a@example.com", models.RoleStaff)
	otherAdmin := createTestUser(t, db, tenantB.ID, "admin-b@example.com", models.RoleAdmin)

	// Admin renames a staff member of their own tenant.
	w := serve(r, newAuthedRequest(t, admin, http.MethodPatch, "/api/users/"+staff.ID.String(),
		`{"name":"Renamed"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded models.User
	require.NoError(t, db.First(&reloaded, "id = ?", staff.ID).Error)
	require.Equal(t, "Renamed", reloaded.Name)

	// Admin cannot touch an admin of another tenant.
	w = serve(r, newAuthedRequest(t, admin, http.MethodPatch, "/api/users/"+otherAdmin.ID.String(),
		`{"name":"Hijacked"}`))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Staff may edit their own record but not promote themselves.
	w = serve(r, newAuthedRequest(t, staff, http.MethodPatch, "/api/users/"+staff.ID.String(),
		`{"name":"Self Edit"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, newAuthedRequest(t, staff, http.MethodPatch, "/api/users/"+staff.ID.String(),
		`{"role":"admin"}`))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NoError(t, db.First(&reloaded, "id = ?", staff.ID).Error)
	require.Equal(t, models.RoleStaff, reloaded.Role)

	// Staff cannot edit a colleague.
	w = serve(r, newAuthedRequest(t, staff, http.MethodPatch, "/api/users/"+admin.ID.String(),
		`{"name":"Nope"}`))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteUserRules(t *testing.T) {
	db := openTestDB(t)
	r := newUserRouter(db)

	tenantA := createTestTenant(t, db, "alpha")
	tenantB := createTestTenant(t, db, "beta")
	super := createTestUser(t, db, tenantA.ID, "root@example.com", models.RoleSuperAdmin)
	admin := createTestUser(t, db, tenantA.ID, "admin-a@example.com", models.RoleAdmin)
	secondAdmin := createTestUser(t, db, tenantA.ID, "admin-a2@example.com", models.RoleAdmin)
	staff := createTestUser(t, db, tenantA.ID, "staff-a@example.com", models.RoleStaff)
	otherStaff := createTestUser(t, db, tenantB.ID, "staff-b@example.com", models.RoleStaff)

	// Staff cannot delete anyone.
	w := serve(r, newAuthedRequest(t, staff, http.MethodDelete, "/api/users/"+otherStaff.ID.String(), ""))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Admins cannot delete other admins, even in their own tenant.
	w = serve(r, newAuthedRequest(t, admin, http.MethodDelete, "/api/users/"+secondAdmin.ID.String(), ""))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Nor staff of another tenant.
	w = serve(r, newAuthedRequest(t, admin, http.MethodDelete, "/api/users/"+otherStaff.ID.String(), ""))
	require.Equal(t, http.StatusForbidden, w.Code)

	// Own-tenant staff is fair game.
	w = serve(r, newAuthedRequest(t, admin, http.MethodDelete, "/api/users/"+staff.ID.String(), ""))
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	db.Model(&models.User{}).Where("id = ?", staff.ID).Count(&count)
	require.Zero(t, count)

	// super_admin may remove an admin.
	w = serve(r, newAuthedRequest(t, super, http.MethodDelete, "/api/users/"+secondAdmin.ID.String(), ""))
	require.Equal(t, http.StatusOK, w.Code)
}
