package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunicationType string

const (
	CommConfirmation CommunicationType = "confirmation"
	CommReminder     CommunicationType = "reminder"
	CommCancellation CommunicationType = "cancellation"
	CommUpdate       CommunicationType = "update"
	CommManualEmail  CommunicationType = "manual_email"
	CommManualSMS    CommunicationType = "manual_sms"
)

type CommunicationChannel string

const (
	ChannelEmail  CommunicationChannel = "email"
	ChannelSMS    CommunicationChannel = "sms"
	ChannelSystem CommunicationChannel = "system"
)

type CommunicationDirection string

const (
	DirectionInbound  CommunicationDirection = "inbound"
	DirectionOutbound CommunicationDirection = "outbound"
	DirectionSystem   CommunicationDirection = "system"
)

type CommunicationStatus string

const (
	CommStatusSimulated CommunicationStatus = "simulated"
	CommStatusSent      CommunicationStatus = "sent"
	CommStatusFailed    CommunicationStatus = "failed"
	CommStatusLogged    CommunicationStatus = "logged"
)

// CommunicationsLog is append-only: rows are created by the lifecycle
// manager and the outbox worker and never updated or deleted.
type CommunicationsLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID uuid.UUID `gorm:"type:uuid;index;not null"`

	ClientID      *uuid.UUID `gorm:"type:uuid;index"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`
	UserID        *uuid.UUID `gorm:"type:uuid;index"`

	Type      CommunicationType      `gorm:"type:varchar(20);not null;index"`
	Channel   CommunicationChannel   `gorm:"type:varchar(20);not null"`
	Direction CommunicationDirection `gorm:"type:varchar(20);not null"`
	Status    CommunicationStatus    `gorm:"type:varchar(20);not null;index"`

	Subject   string
	Details   string    `gorm:"type:text"`
	Timestamp time.Time `gorm:"not null;index"`

	CreatedAt time.Time
}

func (l *CommunicationsLog) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return
}
