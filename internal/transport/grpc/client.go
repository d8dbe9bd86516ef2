package grpc

import (
	"context"

	"google.golang.org/grpc"

	"citavista/backend/internal/service/configuration"
)

// Client calls ServiceName over any connection, selecting the JSON codec on
// every call.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}

func (c *Client) LoadMonth(ctx context.Context, in *MonthRequest, opts ...grpc.CallOption) (*AppointmentsResponse, error) {
	out := new(AppointmentsResponse)
	if err := c.invoke(ctx, "LoadMonth", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) LoadDay(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*AppointmentsResponse, error) {
	out := new(AppointmentsResponse)
	if err := c.invoke(ctx, "LoadDay", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, in *AppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, "GetAppointment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateStatus(ctx context.Context, in *UpdateStatusRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "UpdateStatus", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResetSelected(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.invoke(ctx, "ResetSelected", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, in *CreateAppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	out := new(AppointmentResponse)
	if err := c.invoke(ctx, "CreateAppointment", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCreatedAppointments(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*AppointmentsResponse, error) {
	out := new(AppointmentsResponse)
	if err := c.invoke(ctx, "ListCreatedAppointments", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetScheduleConfig(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ScheduleConfigMessage, error) {
	out := new(ScheduleConfigMessage)
	if err := c.invoke(ctx, "GetScheduleConfig", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveScheduleConfig(ctx context.Context, in *SaveScheduleConfigRequest, opts ...grpc.CallOption) (*ScheduleConfigMessage, error) {
	out := new(ScheduleConfigMessage)
	if err := c.invoke(ctx, "SaveScheduleConfig", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetNotificationConfig(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*NotificationConfigMessage, error) {
	out := new(NotificationConfigMessage)
	if err := c.invoke(ctx, "GetNotificationConfig", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SaveNotificationConfig(ctx context.Context, in *NotificationConfigMessage, opts ...grpc.CallOption) (*NotificationConfigMessage, error) {
	out := new(NotificationConfigMessage)
	if err := c.invoke(ctx, "SaveNotificationConfig", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PatchNotificationConfig(ctx context.Context, in *PatchNotificationRequest, opts ...grpc.CallOption) (*NotificationConfigMessage, error) {
	out := new(NotificationConfigMessage)
	if err := c.invoke(ctx, "PatchNotificationConfig", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PreviewReminder(ctx context.Context, in *PreviewReminderRequest, opts ...grpc.CallOption) (*configuration.ReminderPreview, error) {
	out := new(configuration.ReminderPreview)
	if err := c.invoke(ctx, "PreviewReminder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMonthStatistics(ctx context.Context, in *MonthRequest, opts ...grpc.CallOption) (*StatisticsResponse, error) {
	out := new(StatisticsResponse)
	if err := c.invoke(ctx, "GetMonthStatistics", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetWeeklyChart(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ChartResponse, error) {
	out := new(ChartResponse)
	if err := c.invoke(ctx, "GetWeeklyChart", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetMonthlyChart(ctx context.Context, in *MonthRequest, opts ...grpc.CallOption) (*ChartResponse, error) {
	out := new(ChartResponse)
	if err := c.invoke(ctx, "GetMonthlyChart", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAvailableSlots(ctx context.Context, in *DateRequest, opts ...grpc.CallOption) (*SlotsResponse, error) {
	out := new(SlotsResponse)
	if err := c.invoke(ctx, "GetAvailableSlots", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
