package records

import "time"

// Vaccination es una vacuna programada o aplicada. AdministeredDate nil = pendiente.
type Vaccination struct {
	ID    string `json:"id"`
	PetID string `json:"petId"`

	Name             string     `json:"name"`
	DueDate          time.Time  `json:"dueDate"`
	AdministeredDate *time.Time `json:"administeredDate,omitempty"`
	Notes            string     `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Medication es un tratamiento con rango de fechas [StartDate, EndDate].
type Medication struct {
	ID    string `json:"id"`
	PetID string `json:"petId"`

	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"` // ver Frequencies; se acepta texto libre

	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Notes     string    `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Appointment es una cita veterinaria (fecha + hora).
type Appointment struct {
	ID    string `json:"id"`
	PetID string `json:"petId"`

	VetName  string    `json:"vetName"`
	VetPhone string    `json:"vetPhone,omitempty"`
	Date     time.Time `json:"date"`
	Reason   string    `json:"reason"`
	Notes    string    `json:"notes,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Frequencies son las frecuencias sugeridas para medicaciones.
var Frequencies = []string{
	"Once daily",
	"Twice daily",
	"Three times daily",
	"Every other day",
	"Weekly",
	"As needed",
}

// AppointmentReasons son los motivos sugeridos para citas.
var AppointmentReasons = []string{
	"Wellness Exam",
	"Vaccination",
	"Illness",
	"Injury",
	"Surgery",
	"Dental",
	"Follow-up",
	"Other",
}

func (v Vaccination) Clone() Vaccination {
	out := v
	out.AdministeredDate = cloneTime(v.AdministeredDate)
	out.UpdatedAt = cloneTime(v.UpdatedAt)
	return out
}

func (m Medication) Clone() Medication {
	out := m
	out.UpdatedAt = cloneTime(m.UpdatedAt)
	return out
}

func (a Appointment) Clone() Appointment {
	out := a
	out.UpdatedAt = cloneTime(a.UpdatedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
