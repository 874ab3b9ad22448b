package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Client struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index:idx_clients_tenant_email;not null"`

	FirstName string
	LastName  string
	// Unique among non-deleted clients of a tenant; enforced in the
	// service layer because the uniqueness is conditional on IsDeleted.
	Email       string `gorm:"index:idx_clients_tenant_email"`
	PhoneNumber string
	Notes       string

	IsConfirmed bool `gorm:"not null;default:false"`

	IsDeleted bool `gorm:"not null;default:false;index"`
	DeletedAt *time.Time

	Appointments []Appointment `gorm:"foreignKey:ClientID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Client) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return
}

func (c *Client) FullName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return "Valued Customer"
	}
	return name
}
