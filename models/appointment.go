package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentDone      AppointmentStatus = "done"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentDone:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are allowed.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentCancelled || s == AppointmentDone
}

type Appointment struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index;not null"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null"`

	// Stored in UTC; EndTime is derived from the sum of service durations.
	AppointmentTime time.Time `gorm:"not null;index"`
	EndTime         time.Time `gorm:"not null"`

	Status AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`

	Client   Client    `gorm:"foreignKey:ClientID"`
	Services []Service `gorm:"many2many:appointment_services"`

	gorm.Model
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
