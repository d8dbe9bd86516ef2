package appointments

import (
	"slices"

	"citavista/backend/internal/domain"
)

type LoadStatus string

const (
	LoadIdle      LoadStatus = "idle"
	LoadLoading   LoadStatus = "loading"
	LoadSucceeded LoadStatus = "succeeded"
	LoadFailed    LoadStatus = "failed"
)

// SliceState is the loading flag and last error of one collection.
type SliceState struct {
	Status LoadStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

func (s SliceState) Loading() bool {
	return s.Status == LoadLoading
}

// State is everything the appointment store holds. It only changes through
// Reduce.
type State struct {
	Month    []domain.Appointment            `json:"turnosDelMes"`
	MonthKey domain.MonthKey                 `json:"-"`
	Days     map[string][]domain.Appointment `json:"turnosPorDia"`
	Selected *domain.Appointment             `json:"turnoSeleccionado"`

	MonthLoad  SliceState `json:"cargaMes"`
	DayLoad    SliceState `json:"cargaDia"`
	DetailLoad SliceState `json:"cargaDetalle"`

	// requests holds the latest token issued per slot key.
	requests map[string]uint64
}

func NewState() State {
	return State{
		Month:      []domain.Appointment{},
		Days:       map[string][]domain.Appointment{},
		MonthLoad:  SliceState{Status: LoadIdle},
		DayLoad:    SliceState{Status: LoadIdle},
		DetailLoad: SliceState{Status: LoadIdle},
		requests:   map[string]uint64{},
	}
}

// Clone returns a deep copy that shares nothing with s.
func (s State) Clone() State {
	out := s
	out.Month = cloneAppointments(s.Month)
	out.Days = make(map[string][]domain.Appointment, len(s.Days))
	for k, v := range s.Days {
		out.Days[k] = cloneAppointments(v)
	}
	if s.Selected != nil {
		sel := *s.Selected
		out.Selected = &sel
	}
	out.requests = make(map[string]uint64, len(s.requests))
	for k, v := range s.requests {
		out.requests[k] = v
	}
	return out
}

func cloneAppointments(in []domain.Appointment) []domain.Appointment {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

type ActionType string

const (
	FetchMonthPending   ActionType = "turnos/fetchMonth/pending"
	FetchMonthFulfilled ActionType = "turnos/fetchMonth/fulfilled"
	FetchMonthRejected  ActionType = "turnos/fetchMonth/rejected"

	FetchDayPending   ActionType = "turnos/fetchDay/pending"
	FetchDayFulfilled ActionType = "turnos/fetchDay/fulfilled"
	FetchDayRejected  ActionType = "turnos/fetchDay/rejected"

	FetchDetailPending   ActionType = "turnos/fetchDetail/pending"
	FetchDetailFulfilled ActionType = "turnos/fetchDetail/fulfilled"
	FetchDetailRejected  ActionType = "turnos/fetchDetail/rejected"

	UpdateStatusAction  ActionType = "turnos/updateStatus"
	ResetSelectedAction ActionType = "turnos/resetSelected"
)

// Action describes one state transition. Only the fields relevant to Type
// are read.
type Action struct {
	Type  ActionType
	Token uint64

	Month        domain.MonthKey
	Date         string
	ID           string
	Status       domain.Status
	Appointments []domain.Appointment
	Appointment  *domain.Appointment
	Error        string
}

const (
	monthSlot  = "month"
	detailSlot = "detail"
)

func daySlot(date string) string {
	return "day:" + date
}

// Reduce returns the state after applying a. It never mutates s. Fulfilled
// and rejected actions whose token is no longer the latest for their slot
// are ignored.
func Reduce(s State, a Action) State {
	switch a.Type {
	case FetchMonthPending:
		next := s.Clone()
		next.requests[monthSlot] = a.Token
		next.MonthLoad = SliceState{Status: LoadLoading}
		return next

	case FetchMonthFulfilled:
		if !s.current(monthSlot, a.Token) {
			return s
		}
		next := s.Clone()
		next.Month = cloneAppointments(a.Appointments)
		if next.Month == nil {
			next.Month = []domain.Appointment{}
		}
		next.MonthKey = a.Month
		next.MonthLoad = SliceState{Status: LoadSucceeded}
		return next

	case FetchMonthRejected:
		if !s.current(monthSlot, a.Token) {
			return s
		}
		next := s.Clone()
		next.MonthLoad = SliceState{Status: LoadFailed, Error: a.Error}
		return next

	case FetchDayPending:
		next := s.Clone()
		next.requests[daySlot(a.Date)] = a.Token
		next.DayLoad = SliceState{Status: LoadLoading}
		return next

	case FetchDayFulfilled:
		if !s.current(daySlot(a.Date), a.Token) {
			return s
		}
		next := s.Clone()
		day := cloneAppointments(a.Appointments)
		if day == nil {
			day = []domain.Appointment{}
		}
		next.Days[a.Date] = day
		next.DayLoad = SliceState{Status: LoadSucceeded}
		return next

	case FetchDayRejected:
		if !s.current(daySlot(a.Date), a.Token) {
			return s
		}
		next := s.Clone()
		next.DayLoad = SliceState{Status: LoadFailed, Error: a.Error}
		return next

	case FetchDetailPending:
		next := s.Clone()
		next.requests[detailSlot] = a.Token
		next.DetailLoad = SliceState{Status: LoadLoading}
		return next

	case FetchDetailFulfilled:
		if !s.current(detailSlot, a.Token) {
			return s
		}
		next := s.Clone()
		next.Selected = nil
		if a.Appointment != nil {
			sel := *a.Appointment
			next.Selected = &sel
		}
		next.DetailLoad = SliceState{Status: LoadSucceeded}
		return next

	case FetchDetailRejected:
		if !s.current(detailSlot, a.Token) {
			return s
		}
		next := s.Clone()
		next.DetailLoad = SliceState{Status: LoadFailed, Error: a.Error}
		return next

	case UpdateStatusAction:
		next := s.Clone()
		setStatus(next.Month, a.ID, a.Status)
		for _, day := range next.Days {
			setStatus(day, a.ID, a.Status)
		}
		if next.Selected != nil && next.Selected.ID == a.ID {
			next.Selected.Status = a.Status
		}
		return next

	case ResetSelectedAction:
		next := s.Clone()
		next.Selected = nil
		// A detail fetch still in flight must not bring the selection back.
		delete(next.requests, detailSlot)
		next.DetailLoad = SliceState{Status: LoadIdle}
		return next
	}
	return s
}

func (s State) current(slot string, token uint64) bool {
	latest, ok := s.requests[slot]
	return ok && latest == token
}

// setStatus rewrites the status of every appointment with id in appts and
// reports whether one was found.
func setStatus(appts []domain.Appointment, id string, status domain.Status) bool {
	found := false
	for i := range appts {
		if appts[i].ID == id {
			appts[i].Status = status
			found = true
		}
	}
	return found
}
