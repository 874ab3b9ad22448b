// controllers/user.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

type UserController struct {
	DB *gorm.DB
}

// CreateUserInput defines the expected JSON structure for creating a user
type CreateUserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
	// Only honored for super_admin; everyone else creates within their
	// own tenant.
	TenantID string `json:"tenantId"`
}

// UpdateUserInput defines the expected JSON structure for updating a user
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

// Create adds a staff member. Requires role admin or above; admins may
// only create users for their own tenant.
func (uc *UserController) Create(c *gin.Context) {
	actor, ok := mustCurrentUser(c)
	if !ok {
		return
	}
	if utils.RoleRank(actor.Role) < utils.RoleRank(models.RoleAdmin) {
		utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
		return
	}

	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	role := models.Role(input.Role)
	if input.Role == "" {
		role = models.RoleStaff
	}
	if !role.Valid() {
		utils.RespondWithError(c, http.StatusBadRequest, "Unknown role: "+input.Role)
		return
	}
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		utils.RespondWithError(c, http.StatusForbidden, "Only super_admin may grant super_admin")
		return
	}

	tenantID := actor.TenantID
	if input.TenantID != "" {
		parsed, err := uuid.Parse(input.TenantID)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid tenant ID format")
			return
		}
		if actor.Role != models.RoleSuperAdmin && parsed != actor.TenantID {
			utils.RespondWithError(c, http.StatusForbidden, "Admins may only create users for their own tenant")
			return
		}
		tenantID = parsed
	}
	var tenant models.Tenant
	if err := uc.DB.First(&tenant, "id = ?", tenantID).Error; err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Tenant not found")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	var existing models.User
	if err := uc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "A user with this email already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process password")
		return
	}

	user := models.User{
		TenantID: tenantID,
		Name:     input.Name,
		Email:    email,
		Password: hashed,
		Role:     role,
		IsActive: true,
	}
	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	c.JSON(http.StatusCreated, userOut(&user))
}

// List returns users: all of them for super_admin, the tenant's own for
// admin. Staff may not enumerate users.
func (uc *UserController) List(c *gin.Context) {
	actor, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	query := uc.DB.Order("name")
	switch {
	case actor.Role == models.RoleSuperAdmin:
	case actor.Role == models.RoleAdmin:
		query = query.Where("tenant_id = ?", actor.TenantID)
	default:
		utils.RespondWithError(c, http.StatusForbidden, "Staff users are not allowed to list users")
		return
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, userOut(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Update applies partial changes to a user record, gated by
// utils.CanEditUser. The tenant is immutable and deliberately absent
// from the input type.
func (uc *UserController) Update(c *gin.Context) {
	actor, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	target, ok := uc.findUser(c)
	if !ok {
		return
	}
	if !utils.CanEditUser(actor, target) {
		utils.RespondWithError(c, http.StatusForbidden, "You are not allowed to update this user")
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Role and active-flag changes are admin operations even on one's
	// own record, so staff cannot elevate themselves.
	if (input.Role != nil || input.IsActive != nil) &&
		utils.RoleRank(actor.Role) < utils.RoleRank(models.RoleAdmin) {
		utils.RespondWithError(c, http.StatusForbidden, "Insufficient permissions to change role or status")
		return
	}

	if input.Name != nil {
		target.Name = *input.Name
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != target.Email {
			var existing models.User
			if err := uc.DB.Where("email = ? AND id <> ?", email, target.ID).First(&existing).Error; err == nil {
				utils.RespondWithError(c, http.StatusConflict, "A user with this email already exists")
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
				return
			}
			target.Email = email
		}
	}
	if input.Password != nil {
		hashed, err := utils.HashPassword(*input.Password)
		if err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to process password")
			return
		}
		target.Password = hashed
	}
	if input.Role != nil {
		role := models.Role(*input.Role)
		if !role.Valid() {
			utils.RespondWithError(c, http.StatusBadRequest, "Unknown role: "+*input.Role)
			return
		}
		if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
			utils.RespondWithError(c, http.StatusForbidden, "Only super_admin may grant super_admin")
			return
		}
		target.Role = role
	}
	if input.IsActive != nil {
		target.IsActive = *input.IsActive
	}

	if err := uc.DB.Save(target).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update user")
		return
	}
	c.JSON(http.StatusOK, userOut(target))
}

// Delete removes a user. Staff may not delete anyone; admins may delete
// non-admin users of their own tenant; super_admin may delete anyone.
func (uc *UserController) Delete(c *gin.Context) {
	actor, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	target, ok := uc.findUser(c)
	if !ok {
		return
	}

	switch actor.Role {
	case models.RoleSuperAdmin:
	case models.RoleAdmin:
		if actor.TenantID != target.TenantID {
			utils.RespondWithError(c, http.StatusForbidden, "You can only delete users from your own tenant")
			return
		}
		if target.Role != models.RoleStaff {
			utils.RespondWithError(c, http.StatusForbidden, "Admins cannot delete other admins")
			return
		}
	default:
		utils.RespondWithError(c, http.StatusForbidden, "Staff cannot delete users")
		return
	}

	if err := uc.DB.Unscoped().Delete(target).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (uc *UserController) findUser(c *gin.Context) (*models.User, bool) {
	userUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid user ID format")
		return nil, false
	}

	var user models.User
	if err := uc.DB.First(&user, "id = ?", userUUID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return nil, false
	}
	return &user, true
}

// userOut keeps the password hash out of responses.
func userOut(u *models.User) gin.H {
	return gin.H{
		"id":        u.ID,
		"tenantId":  u.TenantID,
		"name":      u.Name,
		"email":     u.Email,
		"role":      u.Role,
		"isActive":  u.IsActive,
		"lastLogin": u.LastLogin,
	}
}
