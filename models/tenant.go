package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"uniqueIndex;not null"`
	Subdomain string    `gorm:"uniqueIndex;not null"` // immutable after creation

	ContactEmail string
	ContactPhone string
	WebsiteURL   string

	// IANA timezone name, e.g. "Europe/Paris"
	Timezone        string `gorm:"not null;default:'UTC'"`
	DefaultCurrency string `gorm:"type:varchar(3);not null;default:'USD'"`

	BusinessHours       JSONB `gorm:"type:jsonb;default:'{}'"`
	BookingWidgetConfig JSONB `gorm:"type:jsonb;default:'{}'"`

	// Hours before an appointment to send the reminder; nil disables reminders.
	ReminderIntervalHours *int `gorm:"default:24"`
	SlotStepMinutes       int  `gorm:"default:15"`

	Users        []User        `gorm:"foreignKey:TenantID"`
	Services     []Service     `gorm:"foreignKey:TenantID"`
	Clients      []Client      `gorm:"foreignKey:TenantID"`
	Appointments []Appointment `gorm:"foreignKey:TenantID"`
	Templates    []Template    `gorm:"foreignKey:TenantID"`

	gorm.Model
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Custom JSONB type for business hours and widget configuration
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, &j)
	case string:
		return json.Unmarshal([]byte(v), &j)
	default:
		return errors.New("unsupported type for JSONB scan")
	}
}
