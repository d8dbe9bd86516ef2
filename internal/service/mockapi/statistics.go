package mockapi

import (
	"context"
	"strconv"

	"citavista/backend/internal/domain"
)

// MonthStatistics counts the fixtures of a month per status.
func (s *Service) MonthStatistics(ctx context.Context, month domain.MonthKey) (domain.PeriodStats, error) {
	appts, err := s.FetchAppointmentsForMonth(ctx, month)
	if err != nil {
		return domain.PeriodStats{}, err
	}
	return domain.Summarize(appts), nil
}

// WeeklyChart covers the seven days ending today, oldest first.
func (s *Service) WeeklyChart(ctx context.Context) ([]domain.ChartPoint, error) {
	ctx, span := tracer.Start(ctx, "mockapi.WeeklyChart")
	defer span.End()

	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}

	today := domain.DateOf(s.today())
	points := make([]domain.ChartPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		d := today.AddDays(-i)
		points = append(points, domain.ChartPointFor(domain.ShortDayName(d), d, s.generateDayCollection(d)))
	}
	return points, nil
}

// MonthlyChart has one point per calendar day of month.
func (s *Service) MonthlyChart(ctx context.Context, month domain.MonthKey) ([]domain.ChartPoint, error) {
	ctx, span := tracer.Start(ctx, "mockapi.MonthlyChart")
	defer span.End()

	if !month.Valid() {
		return nil, validationError("mes inválido: " + month.String())
	}
	if err := wait(ctx, s.latency); err != nil {
		return nil, err
	}

	days := month.Days()
	points := make([]domain.ChartPoint, 0, len(days))
	for _, d := range days {
		var appts []domain.Appointment
		if !d.IsWeekend() {
			appts = s.generateDay(d, s.intN(9))
		}
		points = append(points, domain.ChartPointFor(strconv.Itoa(d.Day), d, appts))
	}
	return points, nil
}

// AvailableSlots lists the schedule's slots on date that no created
// appointment occupies.
func (s *Service) AvailableSlots(ctx context.Context, date domain.Date) ([]domain.Slot, error) {
	ctx, span := tracer.Start(ctx, "mockapi.AvailableSlots")
	defer span.End()

	cfg, err := s.FetchScheduleConfig(ctx)
	if err != nil {
		return nil, err
	}
	created, err := s.ListCreatedAppointments(ctx)
	if err != nil {
		return nil, err
	}

	var busy []domain.Appointment
	for _, a := range created {
		if a.Date == date {
			busy = append(busy, a)
		}
	}
	return domain.FreeSlots(cfg.Slots(date), busy), nil
}
