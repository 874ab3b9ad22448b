package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// NotificationOutbox rows are written in the same transaction as the
// business change they announce; a periodic worker drains them so a slow
// or failing transport can never roll back an appointment write.
type NotificationOutbox struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index;not null"`

	AppointmentID uuid.UUID  `gorm:"type:uuid;index;not null"`
	ClientID      *uuid.UUID `gorm:"type:uuid"`

	EventTrigger EventTrigger `gorm:"type:varchar(40);not null"`
	Status       OutboxStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts     int          `gorm:"not null;default:0"`
	LastError    string       `gorm:"type:text"`

	ProcessedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *NotificationOutbox) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}
