package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/service/appointments"
	"citavista/backend/internal/service/configuration"
	"citavista/backend/internal/service/mockapi"
	"citavista/backend/internal/store"
)

type appointmentStore interface {
	LoadMonth(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error)
	LoadDay(ctx context.Context, date string) ([]domain.Appointment, error)
	LoadDetail(ctx context.Context, id string) (*domain.Appointment, error)
	UpdateStatus(id string, status domain.Status) error
	ResetSelected()
	State() appointments.State
}

type configurationStore interface {
	LoadSchedule(ctx context.Context) (domain.ScheduleConfig, error)
	SaveSchedule(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error)
	LoadNotifications(ctx context.Context) (domain.NotificationConfig, error)
	SaveNotifications(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error)
	PatchNotifications(p domain.NotificationPatch) domain.NotificationConfig
	PreviewReminder(a domain.Appointment) configuration.ReminderPreview
}

// backend is the part of the data service the stores do not front.
type backend interface {
	CreateAppointment(ctx context.Context, in store.CreateAppointmentInput) (domain.Appointment, error)
	ListCreatedAppointments(ctx context.Context) ([]domain.Appointment, error)
	MonthStatistics(ctx context.Context, month domain.MonthKey) (domain.PeriodStats, error)
	WeeklyChart(ctx context.Context) ([]domain.ChartPoint, error)
	MonthlyChart(ctx context.Context, month domain.MonthKey) ([]domain.ChartPoint, error)
	AvailableSlots(ctx context.Context, date domain.Date) ([]domain.Slot, error)
}

type Server struct {
	appts   appointmentStore
	config  configurationStore
	backend backend
	log     *slog.Logger
}

var _ CitaVistaServer = (*Server)(nil)

func NewServer(appts appointmentStore, config configurationStore, backend backend, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		appts:   appts,
		config:  config,
		backend: backend,
		log:     log.With(slog.String("component", "grpc.citavista")),
	}
}

func (s *Server) rpcLog(ctx context.Context, rpc string) *slog.Logger {
	log := s.log.With(slog.String("rpc", rpc))
	if id := RequestIDFromContext(ctx); id != "" {
		log = log.With(slog.String("request_id", id))
	}
	return log
}

// statusError maps service errors onto gRPC codes. Only validation messages
// reach the caller verbatim.
func statusError(log *slog.Logger, err error, what string) error {
	var mErr *mockapi.ValidationError
	if errors.As(err, &mErr) {
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, mErr.Error())
	}
	var aErr *appointments.ValidationError
	if errors.As(err, &aErr) {
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, aErr.Error())
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info(what+" not found", slog.Any("err", err))
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, store.ErrConflict):
		log.Warn(what+" conflict", slog.Any("err", err))
		return status.Error(codes.Aborted, "concurrent update, try again")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(what+" timed out", slog.Any("err", err))
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		log.Info(what+" canceled")
		return status.Error(codes.Canceled, "canceled")
	}
	log.Error(what+" failed", slog.Any("err", err))
	return status.Error(codes.Internal, "internal error")
}

func requestRequired(log *slog.Logger) error {
	log.Warn("invalid request", slog.String("reason", "nil_request"))
	return status.Error(codes.InvalidArgument, "request is required")
}

func (s *Server) LoadMonth(ctx context.Context, req *MonthRequest) (*AppointmentsResponse, error) {
	log := s.rpcLog(ctx, "LoadMonth")
	if req == nil {
		return nil, requestRequired(log)
	}

	appts, err := s.appts.LoadMonth(ctx, req.key())
	if err != nil {
		return nil, statusError(log, err, "month load")
	}
	load := s.appts.State().MonthLoad

	log.Debug("month loaded", slog.Int("month", req.Month), slog.Int("year", req.Year), slog.Int("count", len(appts)))
	return &AppointmentsResponse{Appointments: appts, Load: &load}, nil
}

func (s *Server) LoadDay(ctx context.Context, req *DateRequest) (*AppointmentsResponse, error) {
	log := s.rpcLog(ctx, "LoadDay")
	if req == nil {
		return nil, requestRequired(log)
	}

	appts, err := s.appts.LoadDay(ctx, req.Date)
	if err != nil {
		return nil, statusError(log, err, "day load")
	}
	load := s.appts.State().DayLoad

	log.Debug("day loaded", slog.String("date", req.Date), slog.Int("count", len(appts)))
	return &AppointmentsResponse{Appointments: appts, Load: &load}, nil
}

func (s *Server) GetAppointment(ctx context.Context, req *AppointmentRequest) (*AppointmentResponse, error) {
	log := s.rpcLog(ctx, "GetAppointment")
	if req == nil {
		return nil, requestRequired(log)
	}

	appt, err := s.appts.LoadDetail(ctx, req.ID)
	if err != nil {
		return nil, statusError(log, err, "appointment load")
	}
	if appt == nil {
		log.Info("appointment not found", slog.String("appointment_id", req.ID))
	}
	return &AppointmentResponse{Appointment: appt}, nil
}

func (s *Server) UpdateStatus(ctx context.Context, req *UpdateStatusRequest) (*Empty, error) {
	log := s.rpcLog(ctx, "UpdateStatus")
	if req == nil {
		return nil, requestRequired(log)
	}

	if err := s.appts.UpdateStatus(req.ID, req.Status); err != nil {
		return nil, statusError(log, err, "status update")
	}
	return &Empty{}, nil
}

func (s *Server) ResetSelected(ctx context.Context, _ *Empty) (*Empty, error) {
	s.appts.ResetSelected()
	return &Empty{}, nil
}

func (s *Server) CreateAppointment(ctx context.Context, req *CreateAppointmentRequest) (*AppointmentResponse, error) {
	log := s.rpcLog(ctx, "CreateAppointment")
	if req == nil {
		return nil, requestRequired(log)
	}

	appt, err := s.backend.CreateAppointment(ctx, req.input())
	if err != nil {
		return nil, statusError(log, err, "appointment create")
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID),
		slog.String("date", appt.Date.String()),
		slog.String("start_time", appt.StartTime.String()),
	)
	return &AppointmentResponse{Appointment: &appt}, nil
}

func (s *Server) ListCreatedAppointments(ctx context.Context, _ *Empty) (*AppointmentsResponse, error) {
	log := s.rpcLog(ctx, "ListCreatedAppointments")

	appts, err := s.backend.ListCreatedAppointments(ctx)
	if err != nil {
		return nil, statusError(log, err, "created appointments list")
	}
	return &AppointmentsResponse{Appointments: appts}, nil
}

func (s *Server) GetScheduleConfig(ctx context.Context, _ *Empty) (*ScheduleConfigMessage, error) {
	log := s.rpcLog(ctx, "GetScheduleConfig")

	cfg, err := s.config.LoadSchedule(ctx)
	if err != nil {
		return nil, statusError(log, err, "schedule config load")
	}
	return &ScheduleConfigMessage{Config: cfg}, nil
}

func (s *Server) SaveScheduleConfig(ctx context.Context, req *SaveScheduleConfigRequest) (*ScheduleConfigMessage, error) {
	log := s.rpcLog(ctx, "SaveScheduleConfig")
	if req == nil {
		return nil, requestRequired(log)
	}

	cfg, err := s.config.SaveSchedule(ctx, req.input())
	if err != nil {
		return nil, statusError(log, err, "schedule config save")
	}
	log.Info("schedule config saved")
	return &ScheduleConfigMessage{Config: cfg}, nil
}

func (s *Server) GetNotificationConfig(ctx context.Context, _ *Empty) (*NotificationConfigMessage, error) {
	log := s.rpcLog(ctx, "GetNotificationConfig")

	cfg, err := s.config.LoadNotifications(ctx)
	if err != nil {
		return nil, statusError(log, err, "notification config load")
	}
	return &NotificationConfigMessage{Config: cfg}, nil
}

func (s *Server) SaveNotificationConfig(ctx context.Context, req *NotificationConfigMessage) (*NotificationConfigMessage, error) {
	log := s.rpcLog(ctx, "SaveNotificationConfig")
	if req == nil {
		return nil, requestRequired(log)
	}

	cfg, err := s.config.SaveNotifications(ctx, req.Config)
	if err != nil {
		return nil, statusError(log, err, "notification config save")
	}
	log.Info("notification config saved")
	return &NotificationConfigMessage{Config: cfg}, nil
}

func (s *Server) PatchNotificationConfig(ctx context.Context, req *PatchNotificationRequest) (*NotificationConfigMessage, error) {
	log := s.rpcLog(ctx, "PatchNotificationConfig")
	if req == nil {
		return nil, requestRequired(log)
	}
	return &NotificationConfigMessage{Config: s.config.PatchNotifications(req.Patch)}, nil
}

func (s *Server) PreviewReminder(ctx context.Context, req *PreviewReminderRequest) (*configuration.ReminderPreview, error) {
	log := s.rpcLog(ctx, "PreviewReminder")
	if req == nil {
		return nil, requestRequired(log)
	}
	appt, err := req.appointment()
	if err != nil {
		log.Warn("invalid request", slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	preview := s.config.PreviewReminder(appt)
	return &preview, nil
}

func (s *Server) GetMonthStatistics(ctx context.Context, req *MonthRequest) (*StatisticsResponse, error) {
	log := s.rpcLog(ctx, "GetMonthStatistics")
	if req == nil {
		return nil, requestRequired(log)
	}

	stats, err := s.backend.MonthStatistics(ctx, req.key())
	if err != nil {
		return nil, statusError(log, err, "month statistics")
	}
	return &StatisticsResponse{Stats: stats}, nil
}

func (s *Server) GetWeeklyChart(ctx context.Context, _ *Empty) (*ChartResponse, error) {
	log := s.rpcLog(ctx, "GetWeeklyChart")

	points, err := s.backend.WeeklyChart(ctx)
	if err != nil {
		return nil, statusError(log, err, "weekly chart")
	}
	return &ChartResponse{Points: points}, nil
}

func (s *Server) GetMonthlyChart(ctx context.Context, req *MonthRequest) (*ChartResponse, error) {
	log := s.rpcLog(ctx, "GetMonthlyChart")
	if req == nil {
		return nil, requestRequired(log)
	}

	points, err := s.backend.MonthlyChart(ctx, req.key())
	if err != nil {
		return nil, statusError(log, err, "monthly chart")
	}
	return &ChartResponse{Points: points}, nil
}

func (s *Server) GetAvailableSlots(ctx context.Context, req *DateRequest) (*SlotsResponse, error) {
	log := s.rpcLog(ctx, "GetAvailableSlots")
	if req == nil {
		return nil, requestRequired(log)
	}

	date, err := domain.ParseDate(req.Date)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", req.Date))
		return nil, status.Error(codes.InvalidArgument, "fecha inválida")
	}

	slots, err := s.backend.AvailableSlots(ctx, date)
	if err != nil {
		return nil, statusError(log, err, "available slots")
	}
	if slots == nil {
		slots = []domain.Slot{}
	}
	return &SlotsResponse{Slots: slots}, nil
}
