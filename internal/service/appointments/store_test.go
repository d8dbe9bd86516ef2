package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"citavista/backend/internal/domain"
)

type fakeSource struct {
	mu sync.Mutex

	monthFn func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error)
	dayFn   func(ctx context.Context, date domain.Date) ([]domain.Appointment, error)
	byIDFn  func(ctx context.Context, id string) (*domain.Appointment, error)

	monthCalls int
}

func (f *fakeSource) FetchAppointmentsForMonth(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
	if f.monthFn == nil {
		panic("FetchAppointmentsForMonth not configured")
	}
	f.mu.Lock()
	f.monthCalls++
	f.mu.Unlock()
	return f.monthFn(ctx, month)
}

func (f *fakeSource) FetchAppointmentsForDay(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
	if f.dayFn == nil {
		panic("FetchAppointmentsForDay not configured")
	}
	return f.dayFn(ctx, date)
}

func (f *fakeSource) FetchAppointmentByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if f.byIDFn == nil {
		panic("FetchAppointmentByID not configured")
	}
	return f.byIDFn(ctx, id)
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.monthCalls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var march = domain.MonthKey{Month: time.March, Year: 2024}

func newTestStore(t *testing.T, src *fakeSource, clock *fakeClock) *Store {
	t.Helper()
	s, err := NewStore(src, Options{Now: clock.Now})
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return s
}

func TestStoreLoadMonth_CacheHitSkipsSource(t *testing.T) {
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			return []domain.Appointment{appt("t1", domain.StatusPending)}, nil
		},
	}
	clock := &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	s := newTestStore(t, src, clock)
	ctx := context.Background()

	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	clock.Advance(4*time.Minute + 59*time.Second)
	got, err := s.LoadMonth(ctx, march)
	if err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if src.calls() != 1 {
		t.Fatalf("source calls = %d, want 1", src.calls())
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("cached result = %+v", got)
	}
	if st := s.State(); st.MonthLoad.Status != LoadSucceeded || st.MonthKey != march {
		t.Fatalf("state = %+v", st.MonthLoad)
	}
}

func TestStoreLoadMonth_RefetchesAfterTTL(t *testing.T) {
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			return []domain.Appointment{appt("t1", domain.StatusPending)}, nil
		},
	}
	clock := &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	s := newTestStore(t, src, clock)
	ctx := context.Background()

	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	clock.Advance(DefaultCacheTTL)
	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if src.calls() != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls())
	}
}

func TestStoreLoadMonth_InvalidateCache(t *testing.T) {
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			return nil, nil
		},
	}
	clock := &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	s := newTestStore(t, src, clock)
	ctx := context.Background()

	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	s.InvalidateCache()
	if s.cache.len() != 0 {
		t.Fatalf("cache len = %d, want 0", s.cache.len())
	}
	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if src.calls() != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls())
	}
}

func TestStoreLoadMonth_FailureKeepsData(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			if fail {
				return nil, boom
			}
			return []domain.Appointment{appt("t1", domain.StatusPending)}, nil
		},
	}
	clock := &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	s := newTestStore(t, src, clock)
	ctx := context.Background()

	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	fail = true
	_, err := s.LoadMonth(ctx, domain.MonthKey{Month: time.April, Year: 2024})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}

	st := s.State()
	if st.MonthLoad.Status != LoadFailed || st.MonthLoad.Error != monthLoadError {
		t.Fatalf("month load = %+v", st.MonthLoad)
	}
	if len(st.Month) != 1 || st.MonthKey != march {
		t.Fatalf("prior month data not kept: %+v", st.Month)
	}
}

func TestStoreLoadMonth_LatestRequestWins(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	april := domain.MonthKey{Month: time.April, Year: 2024}

	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			if month == march {
				close(started)
				<-release
				return []domain.Appointment{appt("march", domain.StatusPending)}, nil
			}
			return []domain.Appointment{appt("april", domain.StatusPending)}, nil
		},
	}
	clock := &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)}
	s := newTestStore(t, src, clock)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.LoadMonth(ctx, march)
		done <- err
	}()
	<-started

	if _, err := s.LoadMonth(ctx, april); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}

	st := s.State()
	if st.MonthKey != april || st.Month[0].ID != "april" {
		t.Fatalf("month = %s %+v, want april result", st.MonthKey, st.Month)
	}

	// The superseded result is still cached for its own key.
	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if src.calls() != 2 {
		t.Fatalf("source calls = %d, want 2", src.calls())
	}
}

func TestStoreLoadMonth_InvalidMonth(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, &fakeClock{now: time.Now()})

	_, err := s.LoadMonth(context.Background(), domain.MonthKey{Month: 0, Year: 2024})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if st := s.State(); st.MonthLoad.Status != LoadFailed {
		t.Fatalf("month load = %s, want failed", st.MonthLoad.Status)
	}
}

func TestStoreLoadDay(t *testing.T) {
	var gotDate domain.Date
	src := &fakeSource{
		dayFn: func(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
			gotDate = date
			return []domain.Appointment{appt("d1", domain.StatusPending)}, nil
		},
	}
	s := newTestStore(t, src, &fakeClock{now: time.Now()})

	if _, err := s.LoadDay(context.Background(), "2024-03-06T15:04:05Z"); err != nil {
		t.Fatalf("LoadDay error: %v", err)
	}
	if gotDate != domain.NewDate(2024, time.March, 6) {
		t.Fatalf("source date = %s, want 2024-03-06", gotDate)
	}
	if day := s.State().Days["2024-03-06"]; len(day) != 1 {
		t.Fatalf("day collection = %+v", day)
	}
}

func TestStoreLoadDay_InvalidDate(t *testing.T) {
	s := newTestStore(t, &fakeSource{}, &fakeClock{now: time.Now()})

	_, err := s.LoadDay(context.Background(), "2024-02-30")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	st := s.State()
	if st.DayLoad.Status != LoadFailed || st.DayLoad.Error != vErr.Error() {
		t.Fatalf("day load = %+v", st.DayLoad)
	}
	if len(st.Days) != 0 {
		t.Fatalf("days = %v, want none", st.Days)
	}
}

func TestStoreLoadDay_FailureMessage(t *testing.T) {
	src := &fakeSource{
		dayFn: func(ctx context.Context, date domain.Date) ([]domain.Appointment, error) {
			return nil, errors.New("down")
		},
	}
	s := newTestStore(t, src, &fakeClock{now: time.Now()})

	if _, err := s.LoadDay(context.Background(), "2024-03-06"); err == nil {
		t.Fatalf("expected error")
	}
	if got, want := s.State().DayLoad.Error, "Error al cargar los turnos para la fecha 2024-03-06"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

func TestStoreLoadDetail(t *testing.T) {
	src := &fakeSource{
		byIDFn: func(ctx context.Context, id string) (*domain.Appointment, error) {
			if id == "t1" {
				a := appt("t1", domain.StatusConfirmed)
				return &a, nil
			}
			return nil, nil
		},
	}
	s := newTestStore(t, src, &fakeClock{now: time.Now()})
	ctx := context.Background()

	got, err := s.LoadDetail(ctx, "t1")
	if err != nil {
		t.Fatalf("LoadDetail error: %v", err)
	}
	if got == nil || s.State().Selected == nil || s.State().Selected.ID != "t1" {
		t.Fatalf("selected = %+v", s.State().Selected)
	}

	got, err = s.LoadDetail(ctx, "missing")
	if err != nil {
		t.Fatalf("LoadDetail error: %v", err)
	}
	if got != nil || s.State().Selected != nil {
		t.Fatalf("expected nil selection for missing id")
	}
	if st := s.State().DetailLoad; st.Status != LoadSucceeded || st.Error != "" {
		t.Fatalf("detail load = %+v, want success without error", st)
	}

	s.ResetSelected()
	if s.State().Selected != nil {
		t.Fatalf("expected selection cleared")
	}
}

func TestStoreUpdateStatus_RewritesCache(t *testing.T) {
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			return []domain.Appointment{appt("t1", domain.StatusPending)}, nil
		},
	}
	s := newTestStore(t, src, &fakeClock{now: time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)})
	ctx := context.Background()

	if _, err := s.LoadMonth(ctx, march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if err := s.UpdateStatus("t1", domain.StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if got := s.State().Month[0].Status; got != domain.StatusCompleted {
		t.Fatalf("month status = %s, want completado", got)
	}

	cached, err := s.LoadMonth(ctx, march)
	if err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	if cached[0].Status != domain.StatusCompleted {
		t.Fatalf("cached status = %s, want completado", cached[0].Status)
	}

	var vErr *ValidationError
	if err := s.UpdateStatus("t1", "archivado"); !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
}

func TestStoreState_IsACopy(t *testing.T) {
	src := &fakeSource{
		monthFn: func(ctx context.Context, month domain.MonthKey) ([]domain.Appointment, error) {
			return []domain.Appointment{appt("t1", domain.StatusPending)}, nil
		},
	}
	s := newTestStore(t, src, &fakeClock{now: time.Now()})

	if _, err := s.LoadMonth(context.Background(), march); err != nil {
		t.Fatalf("LoadMonth error: %v", err)
	}
	snap := s.State()
	snap.Month[0].Status = domain.StatusCanceled

	if got := s.State().Month[0].Status; got != domain.StatusPending {
		t.Fatalf("store state mutated through snapshot: %s", got)
	}
}
