package domain

import (
	"strings"
	"time"
)

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
	ChannelSMS      Channel = "sms"
)

// ReminderLeadTimes are the lead times, in hours, offered to users.
var ReminderLeadTimes = []int{1, 2, 6, 12, 24, 48, 72}

const DefaultReminderMessage = "Le recordamos su turno para mañana. Por favor, confirme su asistencia."

// Placeholders understood by RenderReminder.
const (
	PlaceholderName = "{nombre}"
	PlaceholderDate = "{fecha}"
	PlaceholderTime = "{hora}"
)

type NotificationConfig struct {
	RemindersEnabled bool   `json:"recordatorioHabilitado"`
	LeadTimeHours    int    `json:"tiempoRecordatorio"`
	EmailEnabled     bool   `json:"recordatorioEmail"`
	WhatsAppEnabled  bool   `json:"recordatorioWhatsapp"`
	SMSEnabled       bool   `json:"recordatorioSms"`
	MessageTemplate  string `json:"mensajePersonalizado"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		RemindersEnabled: true,
		LeadTimeHours:    24,
		EmailEnabled:     true,
		WhatsAppEnabled:  true,
		MessageTemplate:  DefaultReminderMessage,
	}
}

func (c NotificationConfig) Channels() []Channel {
	var out []Channel
	if c.EmailEnabled {
		out = append(out, ChannelEmail)
	}
	if c.WhatsAppEnabled {
		out = append(out, ChannelWhatsApp)
	}
	if c.SMSEnabled {
		out = append(out, ChannelSMS)
	}
	return out
}

// NotificationPatch holds the fields to overwrite; nil fields are left alone.
type NotificationPatch struct {
	RemindersEnabled *bool   `json:"recordatorioHabilitado,omitempty"`
	LeadTimeHours    *int    `json:"tiempoRecordatorio,omitempty"`
	EmailEnabled     *bool   `json:"recordatorioEmail,omitempty"`
	WhatsAppEnabled  *bool   `json:"recordatorioWhatsapp,omitempty"`
	SMSEnabled       *bool   `json:"recordatorioSms,omitempty"`
	MessageTemplate  *string `json:"mensajePersonalizado,omitempty"`
}

func (p NotificationPatch) Apply(c NotificationConfig) NotificationConfig {
	if p.RemindersEnabled != nil {
		c.RemindersEnabled = *p.RemindersEnabled
	}
	if p.LeadTimeHours != nil {
		c.LeadTimeHours = *p.LeadTimeHours
	}
	if p.EmailEnabled != nil {
		c.EmailEnabled = *p.EmailEnabled
	}
	if p.WhatsAppEnabled != nil {
		c.WhatsAppEnabled = *p.WhatsAppEnabled
	}
	if p.SMSEnabled != nil {
		c.SMSEnabled = *p.SMSEnabled
	}
	if p.MessageTemplate != nil {
		c.MessageTemplate = *p.MessageTemplate
	}
	return c
}

// RenderReminder substitutes every placeholder in tmpl with the appointment's
// client name, date (DD/MM/YYYY) and start time.
func RenderReminder(tmpl string, a Appointment) string {
	r := strings.NewReplacer(
		PlaceholderName, a.Client.Name,
		PlaceholderDate, a.Date.In(time.UTC).Format("02/01/2006"),
		PlaceholderTime, a.StartTime.String(),
	)
	return r.Replace(tmpl)
}

// ReminderAt is the instant a reminder for a is due.
func (c NotificationConfig) ReminderAt(a Appointment, loc *time.Location) time.Time {
	return a.StartTime.On(a.Date, loc).Add(-time.Duration(c.LeadTimeHours) * time.Hour)
}
