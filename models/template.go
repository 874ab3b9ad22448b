package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventTrigger identifies the lifecycle event a template is rendered for.
type EventTrigger string

const (
	TriggerBookedClient    EventTrigger = "appointment_booked_client"
	TriggerBookedAdmin     EventTrigger = "appointment_booked_admin"
	TriggerConfirmedClient EventTrigger = "appointment_confirmed_client"
	TriggerCancelledClient EventTrigger = "appointment_cancelled_client"
	TriggerCancelledAdmin  EventTrigger = "appointment_cancelled_admin"
	TriggerReminderClient  EventTrigger = "appointment_reminder_client"
)

// Template is a tenant-specific notification template. When no active
// template exists for a trigger the built-in default is used instead.
type Template struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name         string       `gorm:"not null"`
	EventTrigger EventTrigger `gorm:"type:varchar(40);not null;index"`

	Subject  string `gorm:"not null"`
	Body     string `gorm:"type:text;not null"`
	IsActive bool   `gorm:"default:true"`

	gorm.Model
}

func (t *Template) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
