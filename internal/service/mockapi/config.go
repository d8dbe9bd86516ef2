package mockapi

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/store"
)

func (s *Service) FetchScheduleConfig(ctx context.Context) (domain.ScheduleConfig, error) {
	ctx, span := tracer.Start(ctx, "mockapi.FetchScheduleConfig")
	defer span.End()

	if err := wait(ctx, s.latency); err != nil {
		return domain.ScheduleConfig{}, err
	}

	cfg := domain.DefaultScheduleConfig()
	var saved domain.ScheduleConfig
	found, err := store.GetJSON(ctx, s.kv, store.KeyScheduleConfig, &saved)
	if err != nil {
		return domain.ScheduleConfig{}, err
	}
	if found {
		cfg = saved
	}
	return cfg, nil
}

// SaveScheduleConfig validates in and replaces the stored document with the
// parsed schedule, which is also returned.
func (s *Service) SaveScheduleConfig(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
	ctx, span := tracer.Start(ctx, "mockapi.SaveScheduleConfig")
	defer span.End()

	if err := wait(ctx, s.writeLatency); err != nil {
		return domain.ScheduleConfig{}, err
	}
	cfg, err := validateSchedule(in)
	if err != nil {
		return domain.ScheduleConfig{}, err
	}
	if err := store.SetJSON(ctx, s.kv, store.KeyScheduleConfig, cfg); err != nil {
		return domain.ScheduleConfig{}, err
	}

	s.log.Info(
		"schedule config saved",
		slog.String("opening_time", cfg.OpeningTime.String()),
		slog.String("closing_time", cfg.ClosingTime.String()),
		slog.Int("duration_minutes", cfg.DurationMinutes),
	)
	return cfg, nil
}

func validateSchedule(in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
	if strings.TrimSpace(in.OpeningTime) == "" || strings.TrimSpace(in.ClosingTime) == "" {
		return domain.ScheduleConfig{}, validationError("la hora de inicio y de fin son obligatorias")
	}
	opening, err := domain.ParseTimeOfDay(strings.TrimSpace(in.OpeningTime))
	if err != nil {
		return domain.ScheduleConfig{}, validationError("la hora de inicio no es válida")
	}
	closing, err := domain.ParseTimeOfDay(strings.TrimSpace(in.ClosingTime))
	if err != nil {
		return domain.ScheduleConfig{}, validationError("la hora de fin no es válida")
	}

	cfg := domain.ScheduleConfig{
		AvailableDays:   in.AvailableDays,
		OpeningTime:     opening,
		ClosingTime:     closing,
		DurationMinutes: in.DurationMinutes,
		BufferMinutes:   in.BufferMinutes,
	}
	if cfg.DurationMinutes < domain.MinAppointmentMinutes {
		return domain.ScheduleConfig{}, validationError("la duración mínima de un turno debe ser de 5 minutos")
	}
	if !cfg.OpeningTime.Before(cfg.ClosingTime) {
		return domain.ScheduleConfig{}, validationError("la hora de inicio debe ser anterior a la hora de fin")
	}
	if cfg.BufferMinutes < 0 {
		return domain.ScheduleConfig{}, validationError("el descanso entre turnos no puede ser negativo")
	}
	for _, d := range cfg.AvailableDays {
		if d < 0 || d > 6 {
			return domain.ScheduleConfig{}, validationError(fmt.Sprintf("día disponible inválido: %d", d))
		}
	}
	cfg.AvailableDays = cfg.NormalizedDays()
	return cfg, nil
}

func (s *Service) FetchNotificationConfig(ctx context.Context) (domain.NotificationConfig, error) {
	ctx, span := tracer.Start(ctx, "mockapi.FetchNotificationConfig")
	defer span.End()

	if err := wait(ctx, s.latency); err != nil {
		return domain.NotificationConfig{}, err
	}

	cfg := domain.DefaultNotificationConfig()
	var saved domain.NotificationConfig
	found, err := store.GetJSON(ctx, s.kv, store.KeyNotificationConfig, &saved)
	if err != nil {
		return domain.NotificationConfig{}, err
	}
	if found {
		cfg = saved
	}
	return cfg, nil
}

func (s *Service) SaveNotificationConfig(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
	ctx, span := tracer.Start(ctx, "mockapi.SaveNotificationConfig")
	defer span.End()

	if err := wait(ctx, s.writeLatency); err != nil {
		return domain.NotificationConfig{}, err
	}
	if cfg.LeadTimeHours < 1 {
		return domain.NotificationConfig{}, validationError("el tiempo de recordatorio debe ser al menos 1 hora")
	}
	if !slices.Contains(domain.ReminderLeadTimes, cfg.LeadTimeHours) {
		return domain.NotificationConfig{}, validationError(fmt.Sprintf("tiempo de recordatorio no ofrecido: %d horas", cfg.LeadTimeHours))
	}
	if err := store.SetJSON(ctx, s.kv, store.KeyNotificationConfig, cfg); err != nil {
		return domain.NotificationConfig{}, err
	}

	s.log.Info(
		"notification config saved",
		slog.Bool("reminders_enabled", cfg.RemindersEnabled),
		slog.Int("lead_time_hours", cfg.LeadTimeHours),
	)
	return cfg, nil
}
