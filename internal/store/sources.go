package store

import (
	"context"

	"citavista/backend/internal/domain"
)

// CreateAppointmentInput carries the raw creation form. Date and times are
// validated and parsed by the receiving source.
type CreateAppointmentInput struct {
	ID        string
	Client    domain.Client
	Date      string
	StartTime string
	EndTime   string
	Status    domain.Status
	Notes     string
	Service   string
}

// AppointmentSource is the service boundary the appointment store loads from.
type AppointmentSource interface {
	FetchAppointmentsForMonth(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error)
	FetchAppointmentsForDay(ctx context.Context, date domain.Date) ([]domain.Appointment, error)
	// FetchAppointmentByID returns nil without error when no appointment matches.
	FetchAppointmentByID(ctx context.Context, id string) (*domain.Appointment, error)
}

// ScheduleConfigInput is a schedule as submitted. Times stay raw HH:MM
// strings until the receiving source validates them.
type ScheduleConfigInput struct {
	AvailableDays   []int
	OpeningTime     string
	ClosingTime     string
	DurationMinutes int
	BufferMinutes   int
}

// ConfigSource loads and saves the two configuration documents.
type ConfigSource interface {
	FetchScheduleConfig(ctx context.Context) (domain.ScheduleConfig, error)
	SaveScheduleConfig(ctx context.Context, in ScheduleConfigInput) (domain.ScheduleConfig, error)
	FetchNotificationConfig(ctx context.Context) (domain.NotificationConfig, error)
	SaveNotificationConfig(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error)
}
