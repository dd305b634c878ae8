package records

import (
	"time"
	"unicode"
	"unicode/utf8"
)

// Status es el estado de ciclo de vida de un registro.
// No todos aplican a todos los tipos: vacunas usan completed/overdue/due-soon/upcoming,
// medicaciones active/upcoming/completed, citas upcoming/completed.
type Status string

const (
	StatusActive    Status = "active"
	StatusUpcoming  Status = "upcoming"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusDueSoon   Status = "due-soon"
)

// Badge es la variante visual asociada a un estado.
type Badge string

const (
	BadgeDefault     Badge = "default"
	BadgeSecondary   Badge = "secondary"
	BadgeOutline     Badge = "outline"
	BadgeDestructive Badge = "destructive"
	BadgeWarning     Badge = "warning"
)

// DueSoonWindowDays es la ventana previa al vencimiento de una vacuna (inclusive).
const DueSoonWindowDays = 7

var statusLabels = map[Status]string{
	StatusActive:    "Active",
	StatusUpcoming:  "Upcoming",
	StatusCompleted: "Completed",
	StatusOverdue:   "Overdue",
	StatusDueSoon:   "Due Soon",
}

var statusBadges = map[Status]Badge{
	StatusActive:    BadgeDefault,
	StatusUpcoming:  BadgeSecondary,
	StatusCompleted: BadgeOutline,
	StatusOverdue:   BadgeDestructive,
	StatusDueSoon:   BadgeWarning,
}

// Label devuelve el texto para mostrar. Estados desconocidos se capitalizan tal cual.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(string(s))
	return string(unicode.ToUpper(r)) + string(s[size:])
}

// Badge devuelve la variante visual; outline para estados desconocidos.
func (s Status) Badge() Badge {
	if b, ok := statusBadges[s]; ok {
		return b
	}
	return BadgeOutline
}

// ClassifyVaccination: aplicada => completed; vencida antes de hoy => overdue;
// vence hoy o dentro de DueSoonWindowDays días => due-soon; si no, upcoming.
func ClassifyVaccination(v Vaccination, now time.Time) Status {
	if v.AdministeredDate != nil {
		return StatusCompleted
	}

	days := daysFromToday(v.DueDate, now)
	switch {
	case days < 0:
		return StatusOverdue
	case days <= DueSoonWindowDays:
		return StatusDueSoon
	default:
		return StatusUpcoming
	}
}

// ClassifyMedication: terminó antes de hoy => completed; empieza después de hoy => upcoming;
// si no, active (ambos extremos inclusive).
func ClassifyMedication(m Medication, now time.Time) Status {
	if daysFromToday(m.EndDate, now) < 0 {
		return StatusCompleted
	}
	if daysFromToday(m.StartDate, now) > 0 {
		return StatusUpcoming
	}
	return StatusActive
}

// ClassifyAppointment: hoy o futuro => upcoming; pasado => completed.
// Se compara por día calendario, así una cita de esta mañana sigue siendo upcoming.
func ClassifyAppointment(a Appointment, now time.Time) Status {
	if daysFromToday(a.Date, now) >= 0 {
		return StatusUpcoming
	}
	return StatusCompleted
}

// daysFromToday cuenta días calendario entre el día de now y el de t (negativo = pasado).
// Las fechas son "naive": se usan los campos de reloj de cada valor, sin convertir zonas.
func daysFromToday(t, now time.Time) int {
	return int(civilDay(t).Sub(civilDay(now)).Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
