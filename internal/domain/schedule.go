package domain

import (
	"sort"
	"time"
)

// ScheduleConfig describes when appointments can be booked.
type ScheduleConfig struct {
	AvailableDays   []int     `json:"diasDisponibles"`
	OpeningTime     TimeOfDay `json:"horaInicio"`
	ClosingTime     TimeOfDay `json:"horaFin"`
	DurationMinutes int       `json:"duracionTurnoPredeterminada"`
	BufferMinutes   int       `json:"descansoEntreTurnos"`
}

const MinAppointmentMinutes = 5

func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		AvailableDays:   []int{1, 2, 3, 4, 5},
		OpeningTime:     NewTimeOfDay(9, 0),
		ClosingTime:     NewTimeOfDay(18, 0),
		DurationMinutes: 30,
		BufferMinutes:   10,
	}
}

func (c ScheduleConfig) IsAvailable(wd time.Weekday) bool {
	for _, d := range c.AvailableDays {
		if d == int(wd) {
			return true
		}
	}
	return false
}

// NormalizedDays returns AvailableDays sorted and without duplicates.
func (c ScheduleConfig) NormalizedDays() []int {
	seen := make(map[int]struct{}, len(c.AvailableDays))
	out := make([]int, 0, len(c.AvailableDays))
	for _, d := range c.AvailableDays {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

type Slot struct {
	Start TimeOfDay `json:"horaInicio"`
	End   TimeOfDay `json:"horaFin"`
}

// Slots lays out back-to-back appointments of DurationMinutes separated by
// BufferMinutes between opening and closing time. Days outside AvailableDays
// have no slots.
func (c ScheduleConfig) Slots(d Date) []Slot {
	if c.DurationMinutes <= 0 || c.BufferMinutes < 0 {
		return nil
	}
	if !c.OpeningTime.Before(c.ClosingTime) || !c.IsAvailable(d.Weekday()) {
		return nil
	}

	duration := TimeOfDay(c.DurationMinutes)
	step := TimeOfDay(c.DurationMinutes + c.BufferMinutes)

	var slots []Slot
	for start := c.OpeningTime; start+duration <= c.ClosingTime; start += step {
		slots = append(slots, Slot{Start: start, End: start + duration})
	}
	return slots
}

// FreeSlots drops every slot that overlaps one of the busy appointments.
// Intervals are half-open, so a slot may start exactly when a booking ends.
func FreeSlots(slots []Slot, busy []Appointment) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if !overlapsAny(s, busy) {
			out = append(out, s)
		}
	}
	return out
}

func overlapsAny(s Slot, busy []Appointment) bool {
	for _, b := range busy {
		if b.Status == StatusCanceled {
			continue
		}
		if s.Start < b.EndTime && b.StartTime < s.End {
			return true
		}
	}
	return false
}
