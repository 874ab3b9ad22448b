// services/appointment.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookline-backend/models"
	"bookline-backend/utils"
)

type AppointmentService struct {
	db    *gorm.DB
	locks *SlotLock
	log   *zap.Logger
}

func NewAppointmentService(db *gorm.DB, locks *SlotLock, log *zap.Logger) *AppointmentService {
	return &AppointmentService{db: db, locks: locks, log: log}
}

type CreateAppointmentInput struct {
	ClientFirstName string
	ClientLastName  string
	ClientEmail     string
	ClientPhone     string
	StartTime       time.Time
	ServiceIDs      []uuid.UUID
	Notes           string
}

// allowedTransitions encodes the lifecycle: CANCELLED and DONE are
// terminal.
var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentPending:   {models.AppointmentConfirmed, models.AppointmentCancelled},
	models.AppointmentConfirmed: {models.AppointmentCancelled, models.AppointmentDone},
}

func transitionAllowed(from, to models.AppointmentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Create books an appointment on a tenant's portal. The client row is
// resolved, created or reactivated by (tenant, email); the appointment,
// its service associations, any client change and the intended
// notifications are committed in a single transaction.
func (s *AppointmentService) Create(ctx context.Context, tenant *models.Tenant, in CreateAppointmentInput) (*models.Appointment, error) {
	email := strings.ToLower(strings.TrimSpace(in.ClientEmail))
	if email == "" {
		return nil, fmt.Errorf("%w: client email is required", utils.ErrInvalidInput)
	}
	if len(in.ServiceIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one service is required", utils.ErrInvalidInput)
	}

	services, totalMinutes, err := s.resolveServices(tenant.ID, in.ServiceIDs)
	if err != nil {
		return nil, err
	}

	start := in.StartTime.UTC()
	end := start.Add(time.Duration(totalMinutes) * time.Minute)

	release, err := s.locks.Acquire(ctx, tenant.ID, start, end)
	if err != nil {
		return nil, err
	}
	defer release()

	var appt *models.Appointment
	err = s.db.Transaction(func(tx *gorm.DB) error {
		client, err := s.resolveClient(tx, tenant.ID, email, in)
		if err != nil {
			return err
		}

		// The availability check is advisory; re-check under the lock.
		taken, err := s.hasConflict(tx, tenant.ID, start, end)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: requested slot is no longer available", utils.ErrConflict)
		}

		appt = &models.Appointment{
			TenantID:        tenant.ID,
			ClientID:        client.ID,
			AppointmentTime: start,
			EndTime:         end,
			Status:          models.AppointmentPending,
			Services:        services,
		}
		if err := tx.Create(appt).Error; err != nil {
			return err
		}
		appt.Client = *client

		return enqueueNotifications(tx, tenant.ID, appt,
			models.TriggerBookedClient, models.TriggerBookedAdmin)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("appointment created",
		zap.String("appointment", appt.ID.String()),
		zap.String("tenant", tenant.Subdomain),
		zap.Time("start", start))
	return appt, nil
}

type UpdateAppointmentInput struct {
	Status          *models.AppointmentStatus
	AppointmentTime *time.Time
}

// Update applies partial changes to status and/or time, enforcing the
// transition rules and recomputing the end time when the start moves.
func (s *AppointmentService) Update(actor *models.User, appointmentID uuid.UUID, in UpdateAppointmentInput) (*models.Appointment, error) {
	var appt models.Appointment
	if err := s.db.Preload("Services").Preload("Client").First(&appt, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: appointment", utils.ErrNotFound)
		}
		return nil, err
	}
	if err := utils.CheckPermission(actor, appt.TenantID, utils.ActionEdit); err != nil {
		return nil, err
	}

	statusChanged := in.Status != nil && *in.Status != appt.Status
	timeChanged := in.AppointmentTime != nil && !in.AppointmentTime.UTC().Equal(appt.AppointmentTime)
	if !statusChanged && !timeChanged {
		return &appt, nil
	}

	if statusChanged {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", utils.ErrInvalidInput, *in.Status)
		}
		if appt.Status.Terminal() || !transitionAllowed(appt.Status, *in.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", utils.ErrInvalidTransition, appt.Status, *in.Status)
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if timeChanged {
			totalMinutes := 0
			for _, svc := range appt.Services {
				totalMinutes += svc.DurationMinutes
			}
			appt.AppointmentTime = in.AppointmentTime.UTC()
			appt.EndTime = appt.AppointmentTime.Add(time.Duration(totalMinutes) * time.Minute)
		}
		if statusChanged {
			appt.Status = *in.Status
		}
		if err := tx.Save(&appt).Error; err != nil {
			return err
		}

		if statusChanged {
			// A staff-side status change records one derived notification:
			// cancellations announce to the business, confirmations to the
			// client.
			switch appt.Status {
			case models.AppointmentCancelled:
				return enqueueNotifications(tx, appt.TenantID, &appt,
					models.TriggerCancelledAdmin)
			case models.AppointmentConfirmed:
				return enqueueNotifications(tx, appt.TenantID, &appt,
					models.TriggerConfirmedClient)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Delete permanently removes an appointment and its service
// associations. Requires role admin or above.
func (s *AppointmentService) Delete(actor *models.User, appointmentID uuid.UUID) error {
	var appt models.Appointment
	if err := s.db.First(&appt, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: appointment", utils.ErrNotFound)
		}
		return err
	}
	if err := utils.CheckPermission(actor, appt.TenantID, utils.ActionDelete); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&appt).Association("Services").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(&appt).Error
	})
}

// resolveServices validates that every requested service belongs to the
// tenant and returns them with the summed duration.
func (s *AppointmentService) resolveServices(tenantID uuid.UUID, serviceIDs []uuid.UUID) ([]models.Service, int, error) {
	var services []models.Service
	if err := s.db.Where("id IN ?", serviceIDs).Find(&services).Error; err != nil {
		return nil, 0, err
	}

	found := make(map[uuid.UUID]models.Service, len(services))
	for _, svc := range services {
		found[svc.ID] = svc
	}

	total := 0
	resolved := make([]models.Service, 0, len(serviceIDs))
	for _, id := range serviceIDs {
		svc, ok := found[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", utils.ErrServiceNotFound, id)
		}
		if svc.TenantID != tenantID {
			return nil, 0, fmt.Errorf("%w: service %s belongs to another tenant", utils.ErrCrossTenant, id)
		}
		resolved = append(resolved, svc)
		total += svc.DurationMinutes
	}
	if total <= 0 {
		return nil, 0, utils.ErrInvalidDuration
	}
	return resolved, total, nil
}

// resolveClient implements the Active/Deleted client state machine:
// an active confirmed client is reused untouched, an active unconfirmed
// one gets its contact details refreshed, and a soft-deleted one is
// reactivated under the same ID.
func (s *AppointmentService) resolveClient(tx *gorm.DB, tenantID uuid.UUID, email string, in CreateAppointmentInput) (*models.Client, error) {
	var client models.Client
	err := tx.Where("tenant_id = ? AND email = ?", tenantID, email).First(&client).Error
	if err == gorm.ErrRecordNotFound {
		client = models.Client{
			TenantID:    tenantID,
			FirstName:   in.ClientFirstName,
			LastName:    in.ClientLastName,
			Email:       email,
			PhoneNumber: in.ClientPhone,
			Notes:       in.Notes,
			IsConfirmed: false,
		}
		if err := tx.Create(&client).Error; err != nil {
			return nil, fmt.Errorf("%w: could not create client", utils.ErrConflict)
		}
		return &client, nil
	}
	if err != nil {
		return nil, err
	}

	switch {
	case client.IsDeleted:
		wasUnconfirmed := !client.IsConfirmed
		client.IsDeleted = false
		client.DeletedAt = nil
		if wasUnconfirmed {
			refreshContactDetails(&client, in)
		}
	case !client.IsConfirmed:
		refreshContactDetails(&client, in)
	default:
		// Active and confirmed: never overwrite staff-curated details.
		return &client, nil
	}

	if err := tx.Save(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func refreshContactDetails(client *models.Client, in CreateAppointmentInput) {
	if in.ClientFirstName != "" {
		client.FirstName = in.ClientFirstName
	}
	if in.ClientLastName != "" {
		client.LastName = in.ClientLastName
	}
	if in.ClientPhone != "" {
		client.PhoneNumber = in.ClientPhone
	}
}

func (s *AppointmentService) hasConflict(tx *gorm.DB, tenantID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := tx.Model(&models.Appointment{}).
		Where("tenant_id = ? AND status IN ? AND appointment_time < ? AND end_time > ?",
			tenantID,
			[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed},
			end, start).
		Count(&count).Error
	return count > 0, err
}

// enqueueNotifications writes outbox rows in the caller's transaction so
// the intended notifications commit atomically with the business change.
func enqueueNotifications(tx *gorm.DB, tenantID uuid.UUID, appt *models.Appointment, triggers ...models.EventTrigger) error {
	for _, trigger := range triggers {
		clientID := appt.ClientID
		entry := models.NotificationOutbox{
			TenantID:      tenantID,
			AppointmentID: appt.ID,
			ClientID:      &clientID,
			EventTrigger:  trigger,
			Status:        models.OutboxPending,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
	}
	return nil
}
