package configuration

import (
	"context"
	"errors"
	"testing"
	"time"

	"citavista/backend/internal/domain"
	"citavista/backend/internal/store"
)

type fakeSource struct {
	fetchScheduleFn      func(ctx context.Context) (domain.ScheduleConfig, error)
	saveScheduleFn       func(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error)
	fetchNotificationsFn func(ctx context.Context) (domain.NotificationConfig, error)
	saveNotificationsFn  func(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error)
}

func (f *fakeSource) FetchScheduleConfig(ctx context.Context) (domain.ScheduleConfig, error) {
	if f.fetchScheduleFn == nil {
		panic("FetchScheduleConfig not configured")
	}
	return f.fetchScheduleFn(ctx)
}

func (f *fakeSource) SaveScheduleConfig(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
	if f.saveScheduleFn == nil {
		panic("SaveScheduleConfig not configured")
	}
	return f.saveScheduleFn(ctx, in)
}

func (f *fakeSource) FetchNotificationConfig(ctx context.Context) (domain.NotificationConfig, error) {
	if f.fetchNotificationsFn == nil {
		panic("FetchNotificationConfig not configured")
	}
	return f.fetchNotificationsFn(ctx)
}

func (f *fakeSource) SaveNotificationConfig(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
	if f.saveNotificationsFn == nil {
		panic("SaveNotificationConfig not configured")
	}
	return f.saveNotificationsFn(ctx, cfg)
}

func TestStoreLoadSchedule_FailureKeepsConfig(t *testing.T) {
	custom := domain.ScheduleConfig{
		AvailableDays:   []int{6},
		OpeningTime:     domain.NewTimeOfDay(10, 0),
		ClosingTime:     domain.NewTimeOfDay(14, 0),
		DurationMinutes: 60,
	}
	fail := false
	s := NewStore(&fakeSource{
		fetchScheduleFn: func(ctx context.Context) (domain.ScheduleConfig, error) {
			if fail {
				return domain.ScheduleConfig{}, errors.New("sin conexión")
			}
			return custom, nil
		},
	}, Options{})
	ctx := context.Background()

	if _, err := s.LoadSchedule(ctx); err != nil {
		t.Fatalf("LoadSchedule error: %v", err)
	}
	fail = true
	if _, err := s.LoadSchedule(ctx); err == nil {
		t.Fatalf("expected error")
	}

	st := s.State()
	if st.Error != "sin conexión" {
		t.Fatalf("error = %q, want %q", st.Error, "sin conexión")
	}
	if st.LoadingSchedule {
		t.Fatalf("loading flag left raised")
	}
	if st.Schedule.DurationMinutes != 60 || len(st.Schedule.AvailableDays) != 1 {
		t.Fatalf("schedule = %+v, want prior config kept", st.Schedule)
	}
}

func TestStoreLoadNotifications_CanceledUsesFallbackMessage(t *testing.T) {
	s := NewStore(&fakeSource{
		fetchNotificationsFn: func(ctx context.Context) (domain.NotificationConfig, error) {
			return domain.NotificationConfig{}, context.Canceled
		},
	}, Options{})

	_, err := s.LoadNotifications(context.Background())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := s.State().Error; got != loadNotificationsError {
		t.Fatalf("error = %q, want %q", got, loadNotificationsError)
	}
}

func TestStoreSaveSchedule_AdoptsEchoAndNotifies(t *testing.T) {
	var notified []domain.ScheduleConfig
	s := NewStore(&fakeSource{
		saveScheduleFn: func(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
			if in.OpeningTime != "08:00" {
				t.Fatalf("opening time sent = %q, want 08:00", in.OpeningTime)
			}
			cfg := domain.DefaultScheduleConfig()
			cfg.OpeningTime = domain.NewTimeOfDay(8, 0)
			cfg.BufferMinutes = 5
			return cfg, nil
		},
	}, Options{})
	s.OnScheduleSaved(func(ctx context.Context, cfg domain.ScheduleConfig) {
		notified = append(notified, cfg)
	})

	in := store.ScheduleConfigInput{
		AvailableDays:   []int{1, 2, 3, 4, 5},
		OpeningTime:     "08:00",
		ClosingTime:     "18:00",
		DurationMinutes: 30,
	}
	if _, err := s.SaveSchedule(context.Background(), in); err != nil {
		t.Fatalf("SaveSchedule error: %v", err)
	}

	st := s.State()
	if st.Schedule.BufferMinutes != 5 || st.Schedule.OpeningTime != domain.NewTimeOfDay(8, 0) {
		t.Fatalf("schedule = %+v, want echoed buffer 5 from 08:00", st.Schedule)
	}
	if st.Saving {
		t.Fatalf("saving flag left raised")
	}
	if len(notified) != 1 || notified[0].BufferMinutes != 5 {
		t.Fatalf("listener calls = %+v", notified)
	}
}

func TestStoreSaveSchedule_RejectionKeepsStateAndSkipsListeners(t *testing.T) {
	s := NewStore(&fakeSource{
		saveScheduleFn: func(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
			return domain.ScheduleConfig{}, errors.New("la duración mínima de un turno debe ser de 5 minutos")
		},
	}, Options{})
	s.OnScheduleSaved(func(ctx context.Context, cfg domain.ScheduleConfig) {
		t.Fatalf("listener must not run after a failed save")
	})

	in := store.ScheduleConfigInput{OpeningTime: "09:00", ClosingTime: "18:00", DurationMinutes: 1}
	if _, err := s.SaveSchedule(context.Background(), in); err == nil {
		t.Fatalf("expected error")
	}

	st := s.State()
	if st.Error != "la duración mínima de un turno debe ser de 5 minutos" {
		t.Fatalf("error = %q", st.Error)
	}
	if st.Schedule.DurationMinutes != 30 {
		t.Fatalf("duration = %d, want default kept", st.Schedule.DurationMinutes)
	}
}

func TestStoreSaving_StaysRaisedUntilLastSave(t *testing.T) {
	releaseSchedule := make(chan struct{})
	scheduleStarted := make(chan struct{})

	s := NewStore(&fakeSource{
		saveScheduleFn: func(ctx context.Context, in store.ScheduleConfigInput) (domain.ScheduleConfig, error) {
			close(scheduleStarted)
			<-releaseSchedule
			return domain.DefaultScheduleConfig(), nil
		},
		saveNotificationsFn: func(ctx context.Context, cfg domain.NotificationConfig) (domain.NotificationConfig, error) {
			return cfg, nil
		},
	}, Options{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveSchedule(ctx, store.ScheduleConfigInput{OpeningTime: "09:00", ClosingTime: "18:00", DurationMinutes: 30})
		done <- err
	}()
	<-scheduleStarted

	if _, err := s.SaveNotifications(ctx, domain.DefaultNotificationConfig()); err != nil {
		t.Fatalf("SaveNotifications error: %v", err)
	}
	if !s.State().Saving {
		t.Fatalf("saving cleared while schedule save still in flight")
	}

	close(releaseSchedule)
	if err := <-done; err != nil {
		t.Fatalf("SaveSchedule error: %v", err)
	}
	if s.State().Saving {
		t.Fatalf("saving flag left raised")
	}
}

func TestStorePatchNotifications_LeavesOtherFields(t *testing.T) {
	s := NewStore(&fakeSource{}, Options{})

	sms := true
	lead := 48
	got := s.PatchNotifications(domain.NotificationPatch{SMSEnabled: &sms, LeadTimeHours: &lead})

	if !got.SMSEnabled || got.LeadTimeHours != 48 {
		t.Fatalf("patched = %+v", got)
	}
	if !got.EmailEnabled || got.MessageTemplate != domain.DefaultReminderMessage {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
	if s.State().Notifications != got {
		t.Fatalf("state not updated")
	}
}

func TestStorePreviewReminder(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	s := NewStore(&fakeSource{}, Options{Location: loc})
	tmpl := "Hola {nombre}, su turno es el {fecha} a las {hora}. {nombre}, confirme."
	s.PatchNotifications(domain.NotificationPatch{MessageTemplate: &tmpl})

	a := domain.Appointment{
		ID:        "t1",
		Client:    domain.Client{Name: "Ana"},
		Date:      domain.NewDate(2024, time.March, 7),
		StartTime: domain.NewTimeOfDay(9, 30),
		EndTime:   domain.NewTimeOfDay(10, 0),
	}
	p := s.PreviewReminder(a)

	if want := "Hola Ana, su turno es el 07/03/2024 a las 09:30. Ana, confirme."; p.Message != want {
		t.Fatalf("message = %q, want %q", p.Message, want)
	}
	if want := time.Date(2024, time.March, 6, 9, 30, 0, 0, loc); !p.SendAt.Equal(want) {
		t.Fatalf("send at = %v, want %v", p.SendAt, want)
	}
	if !p.Enabled || len(p.Channels) != 2 {
		t.Fatalf("preview = %+v, want enabled on email and whatsapp", p)
	}

	off := false
	s.PatchNotifications(domain.NotificationPatch{EmailEnabled: &off, WhatsAppEnabled: &off})
	if p := s.PreviewReminder(a); p.Enabled || len(p.Channels) != 0 {
		t.Fatalf("preview = %+v, want disabled without channels", p)
	}
}
