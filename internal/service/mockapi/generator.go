package mockapi

import (
	"fmt"
	"time"

	"citavista/backend/internal/domain"
)

var fixtureClients = []domain.Client{
	{ID: "1", Name: "Ana García", Phone: "612345678", Email: "ana@example.com"},
	{ID: "2", Name: "Carlos López", Phone: "623456789", Email: "carlos@example.com"},
	{ID: "3", Name: "Laura Martínez", Phone: "634567890", Email: "laura@example.com"},
	{ID: "4", Name: "Javier Rodríguez", Phone: "645678901", Email: "javier@example.com"},
	{ID: "5", Name: "María Sánchez", Phone: "656789012", Email: "maria@example.com"},
}

const (
	fixtureNotes    = "Notas importantes sobre este turno"
	servicePremium  = "Servicio Premium"
	serviceStandard = "Servicio Estándar"

	fixtureLength = 30 * time.Minute
)

// generatedID is stable for a (day, index) pair so a later scan can find it.
func (s *Service) generatedID(d domain.Date, index int) string {
	return fmt.Sprintf("turno-%d-%d", d.In(s.loc).UnixMilli(), index)
}

// generateAppointment builds the index-th fixture of a day. Appointments are
// laid out three per hour from 09:00 in 20 minute steps.
func (s *Service) generateAppointment(d domain.Date, index int) domain.Appointment {
	start := domain.NewTimeOfDay(9+index/3, (index%3)*20)

	a := domain.Appointment{
		ID:        s.generatedID(d, index),
		Client:    fixtureClients[s.intN(len(fixtureClients))],
		Date:      d,
		StartTime: start,
		EndTime:   start.Add(fixtureLength),
		Status:    domain.Statuses[s.intN(len(domain.Statuses))],
		Service:   serviceStandard,
	}
	if s.float() > 0.7 {
		a.Notes = fixtureNotes
	}
	if s.float() > 0.5 {
		a.Service = servicePremium
	}
	return a
}

func (s *Service) generateDay(d domain.Date, count int) []domain.Appointment {
	out := make([]domain.Appointment, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, s.generateAppointment(d, i))
	}
	return out
}

// generateMonth yields 0 to 8 fixtures per weekday and none on weekends.
func (s *Service) generateMonth(month domain.MonthKey) []domain.Appointment {
	out := []domain.Appointment{}
	for _, d := range month.Days() {
		if d.IsWeekend() {
			continue
		}
		out = append(out, s.generateDay(d, s.intN(9))...)
	}
	return out
}

// generateDayCollection yields 3 to 8 fixtures on weekdays and none on weekends.
func (s *Service) generateDayCollection(d domain.Date) []domain.Appointment {
	if d.IsWeekend() {
		return []domain.Appointment{}
	}
	return s.generateDay(d, 3+s.intN(6))
}
