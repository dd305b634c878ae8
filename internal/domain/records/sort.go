package records

import (
	"sort"
	"time"
)

// Los sorters devuelven un slice nuevo; el input no se modifica.
// Todos son estables: a igualdad de clave se respeta el orden de inserción.

// SortVaccinations: pendientes primero, aplicadas al final; dentro de cada grupo por DueDate asc.
func SortVaccinations(list []Vaccination) []Vaccination {
	out := make([]Vaccination, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].AdministeredDate != nil, out[j].AdministeredDate != nil
		if ai != aj {
			return !ai
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// medicationRank define el orden active < upcoming < completed.
func medicationRank(s Status) int {
	switch s {
	case StatusActive:
		return 0
	case StatusUpcoming:
		return 1
	default:
		return 2
	}
}

// SortMedications: active, upcoming, completed; a igual estado por StartDate asc.
func SortMedications(list []Medication, now time.Time) []Medication {
	type ranked struct {
		m    Medication
		rank int
	}

	tmp := make([]ranked, 0, len(list))
	for _, m := range list {
		tmp = append(tmp, ranked{m: m, rank: medicationRank(ClassifyMedication(m, now))})
	}

	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].rank != tmp[j].rank {
			return tmp[i].rank < tmp[j].rank
		}
		return tmp[i].m.StartDate.Before(tmp[j].m.StartDate)
	})

	out := make([]Medication, 0, len(tmp))
	for _, r := range tmp {
		out = append(out, r.m)
	}
	return out
}

// SortAppointments: próximas (hoy incluido) antes que pasadas.
// Próximas por fecha asc (la más cercana primero); pasadas por fecha desc (la más reciente primero).
func SortAppointments(list []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		ui := ClassifyAppointment(out[i], now) == StatusUpcoming
		uj := ClassifyAppointment(out[j], now) == StatusUpcoming
		if ui != uj {
			return ui
		}
		if ui {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out
}
