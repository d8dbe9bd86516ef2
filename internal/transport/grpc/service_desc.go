package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"citavista/backend/internal/service/configuration"
)

const ServiceName = "citavista.v1.CitaVista"

// CitaVistaServer is the server API of ServiceName.
type CitaVistaServer interface {
	LoadMonth(context.Context, *MonthRequest) (*AppointmentsResponse, error)
	LoadDay(context.Context, *DateRequest) (*AppointmentsResponse, error)
	GetAppointment(context.Context, *AppointmentRequest) (*AppointmentResponse, error)
	UpdateStatus(context.Context, *UpdateStatusRequest) (*Empty, error)
	ResetSelected(context.Context, *Empty) (*Empty, error)
	CreateAppointment(context.Context, *CreateAppointmentRequest) (*AppointmentResponse, error)
	ListCreatedAppointments(context.Context, *Empty) (*AppointmentsResponse, error)
	GetScheduleConfig(context.Context, *Empty) (*ScheduleConfigMessage, error)
	SaveScheduleConfig(context.Context, *SaveScheduleConfigRequest) (*ScheduleConfigMessage, error)
	GetNotificationConfig(context.Context, *Empty) (*NotificationConfigMessage, error)
	SaveNotificationConfig(context.Context, *NotificationConfigMessage) (*NotificationConfigMessage, error)
	PatchNotificationConfig(context.Context, *PatchNotificationRequest) (*NotificationConfigMessage, error)
	PreviewReminder(context.Context, *PreviewReminderRequest) (*configuration.ReminderPreview, error)
	GetMonthStatistics(context.Context, *MonthRequest) (*StatisticsResponse, error)
	GetWeeklyChart(context.Context, *Empty) (*ChartResponse, error)
	GetMonthlyChart(context.Context, *MonthRequest) (*ChartResponse, error)
	GetAvailableSlots(context.Context, *DateRequest) (*SlotsResponse, error)
}

var CitaVistaServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CitaVistaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("LoadMonth", CitaVistaServer.LoadMonth),
		unary("LoadDay", CitaVistaServer.LoadDay),
		unary("GetAppointment", CitaVistaServer.GetAppointment),
		unary("UpdateStatus", CitaVistaServer.UpdateStatus),
		unary("ResetSelected", CitaVistaServer.ResetSelected),
		unary("CreateAppointment", CitaVistaServer.CreateAppointment),
		unary("ListCreatedAppointments", CitaVistaServer.ListCreatedAppointments),
		unary("GetScheduleConfig", CitaVistaServer.GetScheduleConfig),
		unary("SaveScheduleConfig", CitaVistaServer.SaveScheduleConfig),
		unary("GetNotificationConfig", CitaVistaServer.GetNotificationConfig),
		unary("SaveNotificationConfig", CitaVistaServer.SaveNotificationConfig),
		unary("PatchNotificationConfig", CitaVistaServer.PatchNotificationConfig),
		unary("PreviewReminder", CitaVistaServer.PreviewReminder),
		unary("GetMonthStatistics", CitaVistaServer.GetMonthStatistics),
		unary("GetWeeklyChart", CitaVistaServer.GetWeeklyChart),
		unary("GetMonthlyChart", CitaVistaServer.GetMonthlyChart),
		unary("GetAvailableSlots", CitaVistaServer.GetAvailableSlots),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterCitaVistaServer(s grpc.ServiceRegistrar, srv CitaVistaServer) {
	s.RegisterService(&CitaVistaServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary adapts a typed server method to a grpc.MethodDesc, running the
// server's interceptor chain like generated handlers do.
func unary[Req, Resp any](name string, call func(CitaVistaServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, status.Error(codes.InvalidArgument, "malformed request: "+status.Convert(err).Message())
			}
			if interceptor == nil {
				return call(srv.(CitaVistaServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CitaVistaServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
