// Package appointments holds the appointment state the application reads:
// the month being browsed, per-day collections and the selected appointment.
package appointments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/store"
)

var tracer = otel.Tracer("citavista/service/appointments")

const (
	DefaultCacheTTL  = 5 * time.Minute
	DefaultCacheSize = 24

	monthLoadError = "Error al cargar los turnos del mes"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

type Options struct {
	CacheTTL  time.Duration
	CacheSize int
	Now       func() time.Time
	Logger    *slog.Logger
}

// Store serializes state transitions behind a mutex that is never held
// across a call to the source.
type Store struct {
	source store.AppointmentSource
	log    *slog.Logger

	mu        sync.Mutex
	state     State
	cache     *monthCache
	lastToken uint64
}

func NewStore(source store.AppointmentSource, opts Options) (*Store, error) {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	cache, err := newMonthCache(opts.CacheSize, opts.CacheTTL, opts.Now)
	if err != nil {
		return nil, fmt.Errorf("month cache: %w", err)
	}
	return &Store{
		source: source,
		log:    opts.Logger.With(slog.String("component", "appointments")),
		state:  NewState(),
		cache:  cache,
	}, nil
}

// dispatchLocked applies a. s.mu must be held.
func (s *Store) dispatchLocked(a Action) {
	s.state = Reduce(s.state, a)
}

func (s *Store) dispatch(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(a)
}

// begin dispatches a pending action carrying a fresh token and returns it.
func (s *Store) begin(a Action) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastToken++
	a.Token = s.lastToken
	s.dispatchLocked(a)
	return a.Token
}

// LoadMonth makes month the current month collection, from the cache when
// the entry is still fresh and from the source otherwise.
func (s *Store) LoadMonth(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.LoadMonth",
		trace.WithAttributes(attribute.String("month", month.String())))
	defer span.End()

	if !month.Valid() {
		err := validationError(fmt.Sprintf("mes inválido: %s", month))
		token := s.begin(Action{Type: FetchMonthPending, Month: month})
		s.dispatch(Action{Type: FetchMonthRejected, Token: token, Month: month, Error: err.Error()})
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.cache.get(month); ok {
		s.lastToken++
		token := s.lastToken
		s.dispatchLocked(Action{Type: FetchMonthPending, Token: token, Month: month})
		s.dispatchLocked(Action{Type: FetchMonthFulfilled, Token: token, Month: month, Appointments: cached})
		s.mu.Unlock()

		span.SetAttributes(attribute.Bool("cache_hit", true))
		s.log.Debug("month served from cache", slog.String("month", month.String()))
		return cached, nil
	}
	s.mu.Unlock()
	span.SetAttributes(attribute.Bool("cache_hit", false))

	token := s.begin(Action{Type: FetchMonthPending, Month: month})
	appts, err := s.source.FetchAppointmentsForMonth(ctx, month)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("load month failed", slog.String("month", month.String()), slog.Any("err", err))
		s.dispatch(Action{Type: FetchMonthRejected, Token: token, Month: month, Error: monthLoadError})
		return nil, fmt.Errorf("load month %s: %w", month, err)
	}

	s.mu.Lock()
	// The data is correct for its key even when a newer request superseded it.
	s.cache.put(month, appts)
	s.dispatchLocked(Action{Type: FetchMonthFulfilled, Token: token, Month: month, Appointments: appts})
	s.mu.Unlock()

	return cloneAppointments(appts), nil
}

// LoadDay replaces the collection held for date, which must be YYYY-MM-DD
// or an RFC 3339 timestamp.
func (s *Store) LoadDay(ctx context.Context, date string) ([]domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.LoadDay",
		trace.WithAttributes(attribute.String("date", date)))
	defer span.End()

	d, err := domain.ParseDate(date)
	if err != nil {
		verr := validationError(fmt.Sprintf("fecha inválida: %q", strings.TrimSpace(date)))
		token := s.begin(Action{Type: FetchDayPending, Date: date})
		s.dispatch(Action{Type: FetchDayRejected, Token: token, Date: date, Error: verr.Error()})
		return nil, verr
	}
	key := d.String()

	token := s.begin(Action{Type: FetchDayPending, Date: key})
	appts, err := s.source.FetchAppointmentsForDay(ctx, d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("load day failed", slog.String("date", key), slog.Any("err", err))
		s.dispatch(Action{
			Type:  FetchDayRejected,
			Token: token,
			Date:  key,
			Error: fmt.Sprintf("Error al cargar los turnos para la fecha %s", key),
		})
		return nil, fmt.Errorf("load day %s: %w", key, err)
	}

	s.dispatch(Action{Type: FetchDayFulfilled, Token: token, Date: key, Appointments: appts})
	return cloneAppointments(appts), nil
}

// LoadDetail selects the appointment with id. A missing appointment clears
// the selection and is not an error.
func (s *Store) LoadDetail(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.LoadDetail",
		trace.WithAttributes(attribute.String("appointment_id", id)))
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, validationError("el id del turno es obligatorio")
	}

	token := s.begin(Action{Type: FetchDetailPending, ID: id})
	appt, err := s.source.FetchAppointmentByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("load detail failed", slog.String("appointment_id", id), slog.Any("err", err))
		s.dispatch(Action{
			Type:  FetchDetailRejected,
			Token: token,
			ID:    id,
			Error: fmt.Sprintf("Error al cargar el detalle del turno con ID %s", id),
		})
		return nil, fmt.Errorf("load appointment %s: %w", id, err)
	}

	s.dispatch(Action{Type: FetchDetailFulfilled, Token: token, ID: id, Appointment: appt})
	if appt == nil {
		return nil, nil
	}
	out := *appt
	return &out, nil
}

// UpdateStatus changes the status of id wherever the store holds it,
// cached months included. Nothing is sent to the source.
func (s *Store) UpdateStatus(id string, status domain.Status) error {
	if strings.TrimSpace(id) == "" {
		return validationError("el id del turno es obligatorio")
	}
	if !status.Valid() {
		return validationError(fmt.Sprintf("estado desconocido: %q", status))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispatchLocked(Action{Type: UpdateStatusAction, ID: id, Status: status})
	s.cache.updateStatus(id, status)

	s.log.Info("appointment status updated", slog.String("appointment_id", id), slog.String("status", string(status)))
	return nil
}

func (s *Store) ResetSelected() {
	s.dispatch(Action{Type: ResetSelectedAction})
}

// InvalidateCache forgets every cached month so the next LoadMonth refetches.
func (s *Store) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.purge()
	s.log.Debug("month cache invalidated")
}

// State returns a snapshot the caller may keep and modify.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}
