// services/notification.go
package services

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bookline-backend/models"
)

// Sender is the outbound email capability. Failure is reported as a
// boolean and never raises into the caller.
type Sender interface {
	Send(to, subject, htmlBody string) bool
}

// SMTPSender delivers HTML mail through a plain SMTP relay.
type SMTPSender struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
	FromAddr string
	Log      *zap.Logger
}

func (s *SMTPSender) Send(to, subject, htmlBody string) bool {
	if s.Host == "" {
		s.Log.Error("mail server settings are not configured")
		return false
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.FromName, s.FromAddr),
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	var auth smtp.Auth
	if s.Username != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.FromAddr, []string{to}, []byte(msg)); err != nil {
		s.Log.Error("failed to send email", zap.String("to", to), zap.Error(err))
		return false
	}
	return true
}

// NotificationService renders templates and records every attempt in the
// communications log. With Simulate set (or no sender configured) the
// transport is skipped and rows get status "simulated".
type NotificationService struct {
	db       *gorm.DB
	sender   Sender
	sms      *twilio.RestClient
	smsFrom  string
	simulate bool
	log      *zap.Logger
}

func NewNotificationService(db *gorm.DB, sender Sender, sms *twilio.RestClient, smsFrom string, simulate bool, log *zap.Logger) *NotificationService {
	return &NotificationService{
		db:       db,
		sender:   sender,
		sms:      sms,
		smsFrom:  smsFrom,
		simulate: simulate || sender == nil,
		log:      log,
	}
}

// commTypeFor maps an event trigger to the communication-log type.
func commTypeFor(trigger models.EventTrigger) models.CommunicationType {
	switch trigger {
	case models.TriggerBookedClient, models.TriggerBookedAdmin, models.TriggerConfirmedClient:
		return models.CommConfirmation
	case models.TriggerCancelledClient, models.TriggerCancelledAdmin:
		return models.CommCancellation
	case models.TriggerReminderClient:
		return models.CommReminder
	}
	return models.CommUpdate
}

func clientFacing(trigger models.EventTrigger) bool {
	switch trigger {
	case models.TriggerBookedClient, models.TriggerConfirmedClient,
		models.TriggerCancelledClient, models.TriggerReminderClient:
		return true
	}
	return false
}

func renderPlaceholders(tpl string, appt *models.Appointment, loc *time.Location) string {
	serviceNames := make([]string, 0, len(appt.Services))
	for _, svc := range appt.Services {
		serviceNames = append(serviceNames, svc.Name)
	}
	local := appt.AppointmentTime.In(loc)

	r := strings.NewReplacer(
		"[ClientName]", appt.Client.FullName(),
		"[ClientFirstName]", firstNameOr(appt.Client.FirstName, "Customer"),
		"[ClientEmail]", appt.Client.Email,
		"[Date]", local.Format("January 2, 2006"),
		"[Time]", local.Format("15:04"),
		"[Services]", strings.Join(serviceNames, ", "),
	)
	return r.Replace(tpl)
}

func firstNameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

// NotifyAppointment renders, sends and logs one notification for an
// appointment event. The appointment must have Client loaded; tenant is
// passed separately so callers inside a transaction can reuse it. The
// log row is written through tx; send failures only affect the row's
// status, never the caller.
func (n *NotificationService) NotifyAppointment(tx *gorm.DB, tenant *models.Tenant, appt *models.Appointment, trigger models.EventTrigger) error {
	recipient := appt.Client.Email
	direction := models.DirectionOutbound
	if !clientFacing(trigger) {
		recipient = tenant.ContactEmail
		direction = models.DirectionSystem
	}
	if recipient == "" {
		n.log.Warn("no recipient for notification, skipping send",
			zap.String("trigger", string(trigger)), zap.String("tenant", tenant.Subdomain))
		return nil
	}

	loc := time.UTC
	if l, err := time.LoadLocation(tenant.Timezone); err == nil {
		loc = l
	}

	subject, body := n.renderFor(tenant, appt, trigger, loc)

	status := models.CommStatusSimulated
	if !n.simulate {
		if n.sender.Send(recipient, subject, body) {
			status = models.CommStatusSent
		} else {
			status = models.CommStatusFailed
		}
	}

	clientID := appt.ClientID
	apptID := appt.ID
	entry := models.CommunicationsLog{
		TenantID:      tenant.ID,
		ClientID:      &clientID,
		AppointmentID: &apptID,
		Type:          commTypeFor(trigger),
		Channel:       models.ChannelEmail,
		Direction:     direction,
		Status:        status,
		Subject:       subject,
		Details:       fmt.Sprintf("Trigger: %s. Recipient: %s", trigger, recipient),
	}
	if direction == models.DirectionSystem {
		entry.ClientID = nil
	}
	return tx.Create(&entry).Error
}

func (n *NotificationService) renderFor(tenant *models.Tenant, appt *models.Appointment, trigger models.EventTrigger, loc *time.Location) (string, string) {
	subject, body := defaultTemplate(trigger)

	var tpl models.Template
	err := n.db.Where("tenant_id = ? AND event_trigger = ? AND is_active = ?",
		tenant.ID, trigger, true).First(&tpl).Error
	if err == nil {
		subject, body = tpl.Subject, tpl.Body
	}

	tenantReplacer := strings.NewReplacer(
		"[BusinessName]", tenant.Name,
		"[BusinessEmail]", tenant.ContactEmail,
		"[BusinessPhone]", tenant.ContactPhone,
	)
	subject = tenantReplacer.Replace(renderPlaceholders(subject, appt, loc))
	body = tenantReplacer.Replace(renderPlaceholders(body, appt, loc))
	return subject, body
}

// SendManualSMS sends a staff-initiated SMS through Twilio and appends
// the manual-interaction log row.
func (n *NotificationService) SendManualSMS(tenant *models.Tenant, client *models.Client, user *models.User, message string) error {
	status := models.CommStatusSimulated
	details := message

	if !n.simulate && n.sms != nil {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(client.PhoneNumber)
		params.SetFrom(n.smsFrom)
		params.SetBody(message)

		if _, err := n.sms.Api.CreateMessage(params); err != nil {
			n.log.Error("failed to send SMS", zap.String("to", client.PhoneNumber), zap.Error(err))
			status = models.CommStatusFailed
			details = details + " | error: " + err.Error()
		} else {
			status = models.CommStatusSent
		}
	}

	clientID := client.ID
	userID := user.ID
	entry := models.CommunicationsLog{
		TenantID:  tenant.ID,
		ClientID:  &clientID,
		UserID:    &userID,
		Type:      models.CommManualSMS,
		Channel:   models.ChannelSMS,
		Direction: models.DirectionOutbound,
		Status:    status,
		Details:   details,
	}
	return n.db.Create(&entry).Error
}

func defaultTemplate(trigger models.EventTrigger) (string, string) {
	switch trigger {
	case models.TriggerBookedClient:
		return "Your appointment with [BusinessName] is booked",
			"<p>Hi [ClientFirstName],</p>" +
				"<p>Your appointment with [BusinessName] has been booked.</p>" +
				"<p>Date: [Date]<br>Time: [Time]<br>Services: [Services]</p>" +
				"<p>[BusinessName]<br>[BusinessEmail]<br>[BusinessPhone]</p>"
	case models.TriggerBookedAdmin:
		return "New booking: [ClientName] - [Date] [Time]",
			"<p>New appointment booked:</p>" +
				"<ul><li>Client: [ClientName] ([ClientEmail])</li>" +
				"<li>Time: [Date] [Time]</li><li>Services: [Services]</li></ul>"
	case models.TriggerConfirmedClient:
		return "Your appointment with [BusinessName] is confirmed",
			"<p>Hi [ClientFirstName],</p>" +
				"<p>Your appointment on [Date] at [Time] is confirmed.</p>" +
				"<p>[BusinessName]</p>"
	case models.TriggerCancelledClient:
		return "Your appointment with [BusinessName] has been cancelled",
			"<p>Hi [ClientFirstName],</p>" +
				"<p>Your appointment for [Services] on [Date] at [Time] has been cancelled.</p>" +
				"<p>If you did not request this cancellation, please contact us.</p>" +
				"<p>[BusinessName]</p>"
	case models.TriggerCancelledAdmin:
		return "Appointment cancelled: [ClientName] - [Date] [Time]",
			"<p>The following appointment has been cancelled:</p>" +
				"<ul><li>Client: [ClientName] ([ClientEmail])</li>" +
				"<li>Original time: [Date] [Time]</li><li>Services: [Services]</li></ul>"
	case models.TriggerReminderClient:
		return "Reminder: your appointment with [BusinessName] on [Date]",
			"<p>Hi [ClientFirstName],</p>" +
				"<p>This is a reminder about your upcoming appointment:</p>" +
				"<p>Date: [Date]<br>Time: [Time]<br>Services: [Services]</p>" +
				"<p>We look forward to seeing you!</p><p>[BusinessName]</p>"
	}
	return "Appointment update from [BusinessName]",
		"<p>Hi [ClientFirstName], there is an update to your appointment on [Date] at [Time].</p>"
}
