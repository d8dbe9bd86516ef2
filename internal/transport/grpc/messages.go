package grpc

import (
	"errors"
	"strings"
	"time"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/service/appointments"
	"citavista/backend/internal/store"
)

type Empty struct{}

type MonthRequest struct {
	Month int `json:"mes"`
	Year  int `json:"anio"`
}

func (r *MonthRequest) key() domain.MonthKey {
	return domain.MonthKey{Month: time.Month(r.Month), Year: r.Year}
}

type DateRequest struct {
	Date string `json:"fecha"`
}

type AppointmentsResponse struct {
	Appointments []domain.Appointment     `json:"turnos"`
	Load         *appointments.SliceState `json:"carga,omitempty"`
}

type AppointmentRequest struct {
	ID string `json:"id"`
}

type AppointmentResponse struct {
	Appointment *domain.Appointment `json:"turno"`
}

type UpdateStatusRequest struct {
	ID     string        `json:"id"`
	Status domain.Status `json:"estado"`
}

type CreateAppointmentRequest struct {
	ID        string        `json:"id,omitempty"`
	Client    domain.Client `json:"cliente"`
	Date      string        `json:"fecha"`
	StartTime string        `json:"horaInicio"`
	EndTime   string        `json:"horaFin"`
	Status    domain.Status `json:"estado,omitempty"`
	Notes     string        `json:"notas,omitempty"`
	Service   string        `json:"servicio,omitempty"`
}

func (r *CreateAppointmentRequest) input() store.CreateAppointmentInput {
	return store.CreateAppointmentInput{
		ID:        r.ID,
		Client:    r.Client,
		Date:      r.Date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    r.Status,
		Notes:     r.Notes,
		Service:   r.Service,
	}
}

type ScheduleConfigMessage struct {
	Config domain.ScheduleConfig `json:"horario"`
}

// ScheduleDraft mirrors domain.ScheduleConfig with times left as submitted.
type ScheduleDraft struct {
	AvailableDays   []int  `json:"diasDisponibles"`
	OpeningTime     string `json:"horaInicio"`
	ClosingTime     string `json:"horaFin"`
	DurationMinutes int    `json:"duracionTurnoPredeterminada"`
	BufferMinutes   int    `json:"descansoEntreTurnos"`
}

type SaveScheduleConfigRequest struct {
	Config ScheduleDraft `json:"horario"`
}

func (r *SaveScheduleConfigRequest) input() store.ScheduleConfigInput {
	return store.ScheduleConfigInput{
		AvailableDays:   r.Config.AvailableDays,
		OpeningTime:     r.Config.OpeningTime,
		ClosingTime:     r.Config.ClosingTime,
		DurationMinutes: r.Config.DurationMinutes,
		BufferMinutes:   r.Config.BufferMinutes,
	}
}

type NotificationConfigMessage struct {
	Config domain.NotificationConfig `json:"notificaciones"`
}

type PatchNotificationRequest struct {
	Patch domain.NotificationPatch `json:"cambios"`
}

// AppointmentDraft is an appointment with its date and times as submitted.
type AppointmentDraft struct {
	ID        string        `json:"id,omitempty"`
	Client    domain.Client `json:"cliente"`
	Date      string        `json:"fecha"`
	StartTime string        `json:"horaInicio"`
	EndTime   string        `json:"horaFin,omitempty"`
	Service   string        `json:"servicio,omitempty"`
}

type PreviewReminderRequest struct {
	Appointment AppointmentDraft `json:"turno"`
}

// appointment parses the draft. Messages match the ones the data service
// uses for the same fields.
func (r *PreviewReminderRequest) appointment() (domain.Appointment, error) {
	d := r.Appointment
	if strings.TrimSpace(d.Date) == "" || strings.TrimSpace(d.StartTime) == "" {
		return domain.Appointment{}, errors.New("la fecha y hora del turno son obligatorias")
	}
	date, err := domain.ParseDate(strings.TrimSpace(d.Date))
	if err != nil {
		return domain.Appointment{}, errors.New("la fecha del turno no es válida")
	}
	start, err := domain.ParseTimeOfDay(strings.TrimSpace(d.StartTime))
	if err != nil {
		return domain.Appointment{}, errors.New("la hora de inicio no es válida")
	}
	end := start
	if strings.TrimSpace(d.EndTime) != "" {
		if end, err = domain.ParseTimeOfDay(strings.TrimSpace(d.EndTime)); err != nil {
			return domain.Appointment{}, errors.New("la hora de fin no es válida")
		}
	}
	return domain.Appointment{
		ID:        d.ID,
		Client:    d.Client,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Service:   d.Service,
	}, nil
}

type StatisticsResponse struct {
	Stats domain.PeriodStats `json:"estadisticas"`
}

type ChartResponse struct {
	Points []domain.ChartPoint `json:"datos"`
}

type SlotsResponse struct {
	Slots []domain.Slot `json:"horarios"`
}
