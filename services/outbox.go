// services/outbox.go
package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookline-backend/metrics"
	"bookline-backend/models"
)

const outboxMaxAttempts = 5

// OutboxWorker drains pending notification-outbox rows: render, send,
// append the communications-log row, mark the outbox row. Delivery
// failures are retried on later runs up to outboxMaxAttempts.
type OutboxWorker struct {
	db       *gorm.DB
	notifier *NotificationService
	log      *zap.Logger
}

func NewOutboxWorker(db *gorm.DB, notifier *NotificationService, log *zap.Logger) *OutboxWorker {
	return &OutboxWorker{db: db, notifier: notifier, log: log}
}

// Run processes one batch of pending rows. Safe to invoke from cron and
// from tests.
func (w *OutboxWorker) Run() {
	var entries []models.NotificationOutbox
	err := w.db.
		Where("status = ? AND attempts < ?", models.OutboxPending, outboxMaxAttempts).
		Order("created_at").
		Limit(100).
		Find(&entries).Error
	if err != nil {
		w.log.Error("failed to fetch outbox entries", zap.Error(err))
		return
	}

	for i := range entries {
		w.process(&entries[i])
	}
}

func (w *OutboxWorker) process(entry *models.NotificationOutbox) {
	entry.Attempts++

	var appt models.Appointment
	err := w.db.Preload("Client").Preload("Services").First(&appt, "id = ?", entry.AppointmentID).Error
	if err != nil {
		w.fail(entry, "appointment not found: "+err.Error())
		return
	}
	var tenant models.Tenant
	if err := w.db.First(&tenant, "id = ?", entry.TenantID).Error; err != nil {
		w.fail(entry, "tenant not found: "+err.Error())
		return
	}

	if err := w.notifier.NotifyAppointment(w.db, &tenant, &appt, entry.EventTrigger); err != nil {
		w.log.Error("failed to log notification",
			zap.String("outbox", entry.ID.String()), zap.Error(err))
		w.retryLater(entry, err.Error())
		return
	}

	now := time.Now().UTC()
	entry.Status = models.OutboxSent
	entry.ProcessedAt = &now
	entry.LastError = ""
	if err := w.db.Save(entry).Error; err != nil {
		w.log.Error("failed to mark outbox entry sent",
			zap.String("outbox", entry.ID.String()), zap.Error(err))
	}
	metrics.NotificationCounter.WithLabelValues("bookline-backend", string(entry.EventTrigger), "sent").Inc()
}

// fail marks an entry permanently failed; rows referencing vanished
// appointments can never succeed.
func (w *OutboxWorker) fail(entry *models.NotificationOutbox, reason string) {
	now := time.Now().UTC()
	entry.Status = models.OutboxFailed
	entry.ProcessedAt = &now
	entry.LastError = reason
	if err := w.db.Save(entry).Error; err != nil {
		w.log.Error("failed to mark outbox entry failed", zap.Error(err))
	}
	metrics.NotificationCounter.WithLabelValues("bookline-backend", string(entry.EventTrigger), "failed").Inc()
}

func (w *OutboxWorker) retryLater(entry *models.NotificationOutbox, reason string) {
	entry.LastError = reason
	if entry.Attempts >= outboxMaxAttempts {
		entry.Status = models.OutboxFailed
		now := time.Now().UTC()
		entry.ProcessedAt = &now
	}
	if err := w.db.Save(entry).Error; err != nil {
		w.log.Error("failed to update outbox entry", zap.Error(err))
	}
}
