package mockapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/store"
)

func (s *Service) FetchAppointmentsForMonth(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "mockapi.FetchAppointmentsForMonth",
		trace.WithAttributes(attribute.String("month", month.String())))
	defer span.End()

	if !month.Valid() {
		return nil, validationError(fmt.Sprintf("mes inválido: %s", month))
	}
	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}

	appts := s.generateMonth(month)
	s.log.Debug("month generated", slog.String("month", month.String()), slog.Int("count", len(appts)))
	return appts, nil
}

func (s *Service) FetchAppointmentsForDay(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "mockapi.FetchAppointmentsForDay",
		trace.WithAttributes(attribute.String("date", date.String())))
	defer span.End()

	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}

	appts := s.generateDayCollection(date)
	s.log.Debug("day generated", slog.String("date", date.String()), slog.Int("count", len(appts)))
	return appts, nil
}

// FetchAppointmentByID regenerates the current month and scans it. Fixtures
// are random, so an id returned by an earlier call may not be found again.
func (s *Service) FetchAppointmentByID(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "mockapi.FetchAppointmentByID",
		trace.WithAttributes(attribute.String("appointment_id", id)))
	defer span.End()

	appts, err := s.FetchAppointmentsForMonth(ctx, domain.DateOf(s.today()).MonthKey())
	if err != nil {
		return nil, err
	}
	for i := range appts {
		if appts[i].ID == id {
			a := appts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (s *Service) CreateAppointment(ctx context.Context, in store.CreateAppointmentInput) (domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "mockapi.CreateAppointment")
	defer span.End()

	if err := wait(ctx, s.writeLatency); err != nil {
		return domain.Appointment{}, err
	}

	appt, err := s.validateCreate(in)
	if err != nil {
		return domain.Appointment{}, err
	}

	err = s.kv.Update(ctx, store.KeyCreatedAppointments, func(cur []byte) ([]byte, error) {
		var saved []domain.Appointment
		if cur != nil {
			if err := json.Unmarshal(cur, &saved); err != nil {
				return nil, fmt.Errorf("decode %s: %w", store.KeyCreatedAppointments, err)
			}
		}
		return json.Marshal(append(saved, appt))
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID),
		slog.String("date", appt.Date.String()),
		slog.String("start_time", appt.StartTime.String()),
	)
	return appt, nil
}

func (s *Service) validateCreate(in store.CreateAppointmentInput) (domain.Appointment, error) {
	name := strings.TrimSpace(in.Client.Name)
	if name == "" {
		return domain.Appointment{}, validationError("el nombre del cliente es obligatorio")
	}
	if strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return domain.Appointment{}, validationError("la fecha y hora del turno son obligatorias")
	}

	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return domain.Appointment{}, validationError("la fecha del turno no es válida")
	}
	start, err := domain.ParseTimeOfDay(in.StartTime)
	if err != nil {
		return domain.Appointment{}, validationError("la hora de inicio no es válida")
	}
	end, err := domain.ParseTimeOfDay(in.EndTime)
	if err != nil {
		return domain.Appointment{}, validationError("la hora de fin no es válida")
	}

	status := in.Status
	if status == "" {
		status = domain.StatusPending
	}
	if !status.Valid() {
		return domain.Appointment{}, validationError(fmt.Sprintf("estado desconocido: %q", status))
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		id = u.String()
	}

	client := in.Client
	client.Name = name
	return domain.Appointment{
		ID:        id,
		Client:    client,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    status,
		Notes:     in.Notes,
		Service:   in.Service,
	}, nil
}

// ListCreatedAppointments returns the appointments stored by CreateAppointment.
func (s *Service) ListCreatedAppointments(ctx context.Context) ([]domain.Appointment, error) {
	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}
	saved := []domain.Appointment{}
	if _, err := store.GetJSON(ctx, s.kv, store.KeyCreatedAppointments, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}
