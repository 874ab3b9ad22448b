// services/reminder.go
package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookline-backend/models"
)

// Check +/- this buffer around the exact reminder instant so a cron
// cadence coarser than a minute cannot skip appointments.
const reminderCheckBufferMinutes = 10

// ReminderService scans for appointments due a reminder and enqueues
// the notification. The scan is idempotent per appointment: anything
// with a successfully sent reminder log inside the lookback window, or
// a reminder already waiting in the outbox, is skipped.
type ReminderService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReminderService(db *gorm.DB, log *zap.Logger) *ReminderService {
	return &ReminderService{db: db, log: log}
}

// RunNow executes one reminder scan across all tenants. Invoked by the
// cron schedule; exposed for manual triggering.
func (s *ReminderService) RunNow() {
	s.runAt(time.Now().UTC())
}

func (s *ReminderService) runAt(now time.Time) {
	var tenants []models.Tenant
	err := s.db.Where("reminder_interval_hours IS NOT NULL AND reminder_interval_hours > 0").
		Find(&tenants).Error
	if err != nil {
		s.log.Error("failed to fetch tenants for reminder scan", zap.Error(err))
		return
	}

	enqueued := 0
	for i := range tenants {
		enqueued += s.processTenant(&tenants[i], now)
	}
	if enqueued > 0 {
		s.log.Info("reminder scan complete", zap.Int("enqueued", enqueued))
	}
}

func (s *ReminderService) processTenant(tenant *models.Tenant, now time.Time) int {
	interval := time.Duration(*tenant.ReminderIntervalHours) * time.Hour
	target := now.Add(interval)
	windowStart := target.Add(-reminderCheckBufferMinutes * time.Minute)
	windowEnd := target.Add(reminderCheckBufferMinutes * time.Minute)

	var appointments []models.Appointment
	err := s.db.
		Where("tenant_id = ? AND status IN ? AND appointment_time >= ? AND appointment_time < ?",
			tenant.ID,
			[]models.AppointmentStatus{models.AppointmentPending, models.AppointmentConfirmed},
			windowStart, windowEnd).
		Find(&appointments).Error
	if err != nil {
		s.log.Error("failed to fetch appointments for reminders",
			zap.String("tenant", tenant.Subdomain), zap.Error(err))
		return 0
	}

	lookback := now.Add(-(interval + time.Hour))
	enqueued := 0
	for i := range appointments {
		appt := &appointments[i]

		reminded, err := s.alreadyReminded(appt, lookback)
		if err != nil {
			s.log.Error("reminder dedup check failed",
				zap.String("appointment", appt.ID.String()), zap.Error(err))
			continue
		}
		if reminded {
			continue
		}

		clientID := appt.ClientID
		entry := models.NotificationOutbox{
			TenantID:      tenant.ID,
			AppointmentID: appt.ID,
			ClientID:      &clientID,
			EventTrigger:  models.TriggerReminderClient,
			Status:        models.OutboxPending,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			s.log.Error("failed to enqueue reminder",
				zap.String("appointment", appt.ID.String()), zap.Error(err))
			continue
		}
		enqueued++
	}
	return enqueued
}

// alreadyReminded is true when a reminder for the appointment was sent
// (or simulated) inside the lookback window, or is still pending in the
// outbox from an earlier scan.
func (s *ReminderService) alreadyReminded(appt *models.Appointment, since time.Time) (bool, error) {
	var logged int64
	err := s.db.Model(&models.CommunicationsLog{}).
		Where("tenant_id = ? AND appointment_id = ? AND type = ? AND status IN ? AND timestamp >= ?",
			appt.TenantID, appt.ID, models.CommReminder,
			[]models.CommunicationStatus{models.CommStatusSent, models.CommStatusSimulated},
			since).
		Count(&logged).Error
	if err != nil {
		return false, err
	}
	if logged > 0 {
		return true, nil
	}

	var queued int64
	err = s.db.Model(&models.NotificationOutbox{}).
		Where("appointment_id = ? AND event_trigger = ? AND status = ?",
			appt.ID, models.TriggerReminderClient, models.OutboxPending).
		Count(&queued).Error
	return queued > 0, err
}
