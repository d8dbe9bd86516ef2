package domain

// PeriodStats counts appointments per status.
type PeriodStats struct {
	Total     int `json:"total"`
	Confirmed int `json:"confirmados"`
	Canceled  int `json:"cancelados"`
	Completed int `json:"completados"`
	NoShow    int `json:"ausentes"`
	Pending   int `json:"pendientes"`
}

func Summarize(appts []Appointment) PeriodStats {
	var s PeriodStats
	for _, a := range appts {
		s.Total++
		switch a.Status {
		case StatusConfirmed:
			s.Confirmed++
		case StatusCanceled:
			s.Canceled++
		case StatusCompleted:
			s.Completed++
		case StatusNoShow:
			s.NoShow++
		case StatusPending:
			s.Pending++
		}
	}
	return s
}

// ChartPoint is one day of a dashboard chart.
type ChartPoint struct {
	Label     string `json:"dia"`
	Date      Date   `json:"fecha"`
	Scheduled int    `json:"agendados"`
	Completed int    `json:"completados"`
	Canceled  int    `json:"cancelados"`
}

func ChartPointFor(label string, d Date, appts []Appointment) ChartPoint {
	s := Summarize(appts)
	return ChartPoint{
		Label:     label,
		Date:      d,
		Scheduled: s.Total,
		Completed: s.Completed,
		Canceled:  s.Canceled,
	}
}

var shortDayNames = [...]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// ShortDayName is the three letter Spanish weekday label used on charts.
func ShortDayName(d Date) string {
	return shortDayNames[d.Weekday()]
}
