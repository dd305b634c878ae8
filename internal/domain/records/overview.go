package records

import "time"

// DefaultUpcomingLimit es la cantidad de items "próximos" que muestra el resumen de una mascota.
const DefaultUpcomingLimit = 3

// Summary agrupa los contadores del resumen de una mascota.
type Summary struct {
	VaccinationsOverdue   int `json:"vaccinationsOverdue"`
	VaccinationsDueSoon   int `json:"vaccinationsDueSoon"`
	VaccinationsCompleted int `json:"vaccinationsCompleted"`

	MedicationsActive    int `json:"medicationsActive"`
	MedicationsUpcoming  int `json:"medicationsUpcoming"`
	MedicationsCompleted int `json:"medicationsCompleted"`

	AppointmentsUpcoming int `json:"appointmentsUpcoming"`
	AppointmentsPast     int `json:"appointmentsPast"`
}

// Summarize cuenta estados usando las mismas reglas que los badges.
func Summarize(vs []Vaccination, ms []Medication, as []Appointment, now time.Time) Summary {
	var s Summary

	for _, v := range vs {
		switch ClassifyVaccination(v, now) {
		case StatusOverdue:
			s.VaccinationsOverdue++
		case StatusDueSoon:
			s.VaccinationsDueSoon++
		case StatusCompleted:
			s.VaccinationsCompleted++
		}
	}

	for _, m := range ms {
		switch ClassifyMedication(m, now) {
		case StatusActive:
			s.MedicationsActive++
		case StatusUpcoming:
			s.MedicationsUpcoming++
		case StatusCompleted:
			s.MedicationsCompleted++
		}
	}

	for _, a := range as {
		if ClassifyAppointment(a, now) == StatusUpcoming {
			s.AppointmentsUpcoming++
		} else {
			s.AppointmentsPast++
		}
	}

	return s
}

// needsAttention: estados que aparecen en "próximos".
func needsAttention(s Status) bool {
	return s == StatusUpcoming || s == StatusDueSoon || s == StatusActive
}

// UpcomingVaccinations devuelve hasta limit vacunas upcoming/due-soon, en el orden recibido.
// limit <= 0 usa DefaultUpcomingLimit.
func UpcomingVaccinations(list []Vaccination, now time.Time, limit int) []Vaccination {
	return upcoming(list, limit, func(v Vaccination) Status { return ClassifyVaccination(v, now) })
}

func UpcomingMedications(list []Medication, now time.Time, limit int) []Medication {
	return upcoming(list, limit, func(m Medication) Status { return ClassifyMedication(m, now) })
}

func UpcomingAppointments(list []Appointment, now time.Time, limit int) []Appointment {
	return upcoming(list, limit, func(a Appointment) Status { return ClassifyAppointment(a, now) })
}

func upcoming[T any](list []T, limit int, status func(T) Status) []T {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	out := make([]T, 0, limit)
	for _, item := range list {
		if len(out) == limit {
			break
		}
		if needsAttention(status(item)) {
			out = append(out, item)
		}
	}
	return out
}

// VaccinationsOf filtra por mascota. petID vacío => vacío.
func VaccinationsOf(list []Vaccination, petID string) []Vaccination {
	return filterByPet(list, petID, func(v Vaccination) string { return v.PetID })
}

func MedicationsOf(list []Medication, petID string) []Medication {
	return filterByPet(list, petID, func(m Medication) string { return m.PetID })
}

func AppointmentsOf(list []Appointment, petID string) []Appointment {
	return filterByPet(list, petID, func(a Appointment) string { return a.PetID })
}

func filterByPet[T any](list []T, petID string, petOf func(T) string) []T {
	out := make([]T, 0)
	if petID == "" {
		return out
	}
	for _, item := range list {
		if petOf(item) == petID {
			out = append(out, item)
		}
	}
	return out
}
