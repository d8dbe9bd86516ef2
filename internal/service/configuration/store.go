// Package configuration holds the schedule and notification settings the
// application works with, loaded from and saved through a store.ConfigSource.
package configuration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/store"
)

var tracer = otel.Tracer("citavista/service/configuration")

// Fallback messages for errors that carry no text of their own.
const (
	loadScheduleError      = "Error al cargar la configuración de horarios"
	loadNotificationsError = "Error al cargar la configuración de notificaciones"
	saveScheduleError      = "Error al guardar la configuración de horarios"
	saveNotificationsError = "Error al guardar la configuración de notificaciones"
)

type State struct {
	Schedule      domain.ScheduleConfig     `json:"horario"`
	Notifications domain.NotificationConfig `json:"notificaciones"`

	LoadingSchedule      bool   `json:"cargandoHorario"`
	LoadingNotifications bool   `json:"cargandoNotificaciones"`
	Error                string `json:"error,omitempty"`
	// Saving is shared by both configurations.
	Saving bool `json:"guardando"`
}

func (s State) clone() State {
	out := s
	out.Schedule.AvailableDays = append([]int(nil), s.Schedule.AvailableDays...)
	return out
}

// ScheduleListener runs after a schedule save succeeds.
type ScheduleListener func(ctx context.Context, cfg domain.ScheduleConfig)

type Options struct {
	Location *time.Location
	Logger   *slog.Logger
}

type Store struct {
	source store.ConfigSource
	loc    *time.Location
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	saves     int
	listeners []ScheduleListener
}

func NewStore(source store.ConfigSource, opts Options) *Store {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		source: source,
		loc:    opts.Location,
		log:    opts.Logger.With(slog.String("component", "configuration")),
		state: State{
			Schedule:      domain.DefaultScheduleConfig(),
			Notifications: domain.DefaultNotificationConfig(),
		},
	}
}

// OnScheduleSaved registers fn to run, in registration order, after every
// successful SaveSchedule.
func (s *Store) OnScheduleSaved(fn ScheduleListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

func (s *Store) LoadSchedule(ctx context.Context) (domain.ScheduleConfig, error) {
	ctx, span := tracer.Start(ctx, "configuration.LoadSchedule")
	defer span.End()

	s.update(func(st *State) {
		st.LoadingSchedule = true
		st.Error = ""
	})

	cfg, err := s.source.FetchScheduleConfig(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("load schedule config failed", slog.Any("err", err))
		s.update(func(st *State) {
			st.LoadingSchedule = false
			st.Error = errorMessage(err, loadScheduleError)
		})
		return domain.ScheduleConfig{}, fmt.Errorf("load schedule config: %w", err)
	}

	s.update(func(st *State) {
		st.LoadingSchedule = false
		st.Schedule = cfg
		st.Schedule.AvailableDays = append([]int(nil), cfg.AvailableDays...)
	})
	return cfg, nil
}

func (s *Store) LoadNotifications(ctx context.Context) (domain.NotificationConfig, error) {
	ctx, span := tracer.Start(ctx, "configuration.LoadNotifications")
	defer span.End()

	s.update(func(st *State) {
		st.LoadingNotifications = true
		st.Error = ""
	})

	cfg, err := s.source.FetchNotificationConfig(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("load notification config failed", slog.Any("err", err))
		s.update(func(st *State) {
			st.LoadingNotifications = false
			st.Error = errorMessage(err, loadNotificationsError)
		})
		return domain.NotificationConfig{}, fmt.Errorf("load notification config: %w", err)
	}

	s.update(func(st *State) {
		st.LoadingNotifications = false
		st.Notifications = cfg
	})
	return cfg, nil
}

// beginSave raises the shared saving flag. endSave lowers it once every
// save in flight has finished.
func (s *Store) beginSave() {
	s.update(func(st *State) {
		s.saves++
		st.Saving = true
		st.Error = ""
	})
}

func (s *Store) endSave(fn func(st *State)) {
	s.update(func(st *State) {
		s.saves--
		st.Saving = s.saves > 0
		fn(st)
	})
}

// SaveSchedule sends in as a whole document and adopts the schedule the
// source parsed and echoed back.
func (s *Store) SaveSchedule(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
	ctx, span := tracer.Start(ctx, "configuration.SaveSchedule")
	defer span.End()

	s.beginSave()
	saved, err := s.source.SaveScheduleConfig(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("save schedule config failed", slog.Any("err", err))
		s.endSave(func(st *State) { st.Error = errorMessage(err, saveScheduleError) })
		return domain.ScheduleConfig{}, fmt.Errorf("save schedule config: %w", err)
	}

	var listeners []ScheduleListener
	s.endSave(func(st *State) {
		st.Schedule = saved
		st.Schedule.AvailableDays = append([]int(nil), saved.AvailableDays...)
		listeners = append(listeners, s.listeners...)
	})

	for _, fn := range listeners {
		fn(ctx, saved)
	}
	return saved, nil
}

func (s *Store) SaveNotifications(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
	ctx, span := tracer.Start(ctx, "configuration.SaveNotifications")
	defer span.End()

	s.beginSave()
	saved, err := s.source.SaveNotificationConfig(ctx, cfg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("save notification config failed", slog.Any("err", err))
		s.endSave(func(st *State) { st.Error = errorMessage(err, saveNotificationsError) })
		return domain.NotificationConfig{}, fmt.Errorf("save notification config: %w", err)
	}

	s.endSave(func(st *State) { st.Notifications = saved })
	return saved, nil
}

// PatchNotifications merges p into the held notification config. Nothing is
// persisted until SaveNotifications.
func (s *Store) PatchNotifications(p domain.NotificationPatch) domain.NotificationConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Notifications = p.Apply(s.state.Notifications)
	return s.state.Notifications
}

type ReminderPreview struct {
	Enabled  bool             `json:"habilitado"`
	Message  string           `json:"mensaje"`
	SendAt   time.Time        `json:"enviarEn"`
	Channels []domain.Channel `json:"canales"`
}

// PreviewReminder renders the reminder a would get under the held
// notification config.
func (s *Store) PreviewReminder(a domain.Appointment) ReminderPreview {
	s.mu.Lock()
	cfg := s.state.Notifications
	s.mu.Unlock()

	channels := cfg.Channels()
	if channels == nil {
		channels = []domain.Channel{}
	}
	return ReminderPreview{
		Enabled:  cfg.RemindersEnabled && len(channels) > 0,
		Message:  domain.RenderReminder(cfg.MessageTemplate, a),
		SendAt:   cfg.ReminderAt(a, s.loc),
		Channels: channels,
	}
}

func errorMessage(err error, fallback string) string {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
