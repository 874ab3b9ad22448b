package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index;not null"`

	Name        string `gorm:"not null"`
	Description string
	// Must be positive for availability math to be meaningful.
	DurationMinutes int     `gorm:"not null"`
	Price           float64 `gorm:"type:decimal(10,2);not null"`
	IsActive        bool    `gorm:"default:true"`

	Appointments []Appointment `gorm:"many2many:appointment_services"`

	gorm.Model
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
