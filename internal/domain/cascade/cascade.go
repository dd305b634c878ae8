// Package cascade mantiene la integridad referencial entre una mascota y sus registros
// al borrarla y al restaurarla. No guarda estado entre llamadas.
package cascade

import (
	"errors"
	"fmt"

	"pet-health-tracker/internal/domain/pets"
	"pet-health-tracker/internal/domain/records"
)

var (
	ErrPetNotFound       = errors.New("pet not found")
	ErrMalformedSnapshot = errors.New("malformed pet snapshot")
)

// Collections son las cuatro colecciones planas del estado.
type Collections struct {
	Pets         []pets.Pet
	Vaccinations []records.Vaccination
	Medications  []records.Medication
	Appointments []records.Appointment
}

// Snapshot es una copia independiente de una mascota y todos sus registros.
// Se persiste tal cual como slot de "deshacer".
type Snapshot struct {
	Pet          *pets.Pet             `json:"pet"`
	Vaccinations []records.Vaccination `json:"vaccinations"`
	Medications  []records.Medication  `json:"medications"`
	Appointments []records.Appointment `json:"appointments"`
}

// Counts devuelve la cantidad de registros por tipo.
func (s Snapshot) Counts() (vaccinations, medications, appointments int) {
	return len(s.Vaccinations), len(s.Medications), len(s.Appointments)
}

// Clone devuelve una copia profunda: no comparte la mascota ni ningún registro con s.
// Las colecciones vacías salen como slices vacíos, nunca nil.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Vaccinations: make([]records.Vaccination, 0, len(s.Vaccinations)),
		Medications:  make([]records.Medication, 0, len(s.Medications)),
		Appointments: make([]records.Appointment, 0, len(s.Appointments)),
	}
	if s.Pet != nil {
		p := s.Pet.Clone()
		out.Pet = &p
	}
	for _, v := range s.Vaccinations {
		out.Vaccinations = append(out.Vaccinations, v.Clone())
	}
	for _, m := range s.Medications {
		out.Medications = append(out.Medications, m.Clone())
	}
	for _, a := range s.Appointments {
		out.Appointments = append(out.Appointments, a.Clone())
	}
	return out
}

// IsRestoredIn indica si la mascota del snapshot ya está en c.
// Es el guard que deben usar los callers antes de RestorePet.
func (s Snapshot) IsRestoredIn(c Collections) bool {
	if s.Pet == nil {
		return false
	}
	for _, p := range c.Pets {
		if p.ID == s.Pet.ID {
			return true
		}
	}
	return false
}

// DeletePet quita la mascota y todo registro con su PetID.
// Si la mascota no existe devuelve ErrPetNotFound y c queda sin tocar.
func DeletePet(petID string, c Collections) (Collections, Snapshot, error) {
	idx := -1
	for i, p := range c.Pets {
		if p.ID == petID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return c, Snapshot{}, fmt.Errorf("%w: %s", ErrPetNotFound, petID)
	}

	pet := c.Pets[idx].Clone()
	snap := Snapshot{
		Pet:          &pet,
		Vaccinations: make([]records.Vaccination, 0),
		Medications:  make([]records.Medication, 0),
		Appointments: make([]records.Appointment, 0),
	}

	out := Collections{
		Pets:         make([]pets.Pet, 0, len(c.Pets)-1),
		Vaccinations: make([]records.Vaccination, 0, len(c.Vaccinations)),
		Medications:  make([]records.Medication, 0, len(c.Medications)),
		Appointments: make([]records.Appointment, 0, len(c.Appointments)),
	}

	for i, p := range c.Pets {
		if i != idx {
			out.Pets = append(out.Pets, p.Clone())
		}
	}
	for _, v := range c.Vaccinations {
		if v.PetID == petID {
			snap.Vaccinations = append(snap.Vaccinations, v.Clone())
		} else {
			out.Vaccinations = append(out.Vaccinations, v.Clone())
		}
	}
	for _, m := range c.Medications {
		if m.PetID == petID {
			snap.Medications = append(snap.Medications, m.Clone())
		} else {
			out.Medications = append(out.Medications, m.Clone())
		}
	}
	for _, a := range c.Appointments {
		if a.PetID == petID {
			snap.Appointments = append(snap.Appointments, a.Clone())
		} else {
			out.Appointments = append(out.Appointments, a.Clone())
		}
	}

	return out, snap, nil
}

// RestorePet agrega la mascota y sus registros al final de cada colección.
// No deduplica: restaurar dos veces el mismo snapshot duplica ids (ver IsRestoredIn).
func RestorePet(s Snapshot, c Collections) (Collections, error) {
	if err := s.validate(); err != nil {
		return c, err
	}

	out := Collections{
		Pets:         make([]pets.Pet, 0, len(c.Pets)+1),
		Vaccinations: make([]records.Vaccination, 0, len(c.Vaccinations)+len(s.Vaccinations)),
		Medications:  make([]records.Medication, 0, len(c.Medications)+len(s.Medications)),
		Appointments: make([]records.Appointment, 0, len(c.Appointments)+len(s.Appointments)),
	}

	for _, p := range c.Pets {
		out.Pets = append(out.Pets, p.Clone())
	}
	out.Pets = append(out.Pets, s.Pet.Clone())

	for _, v := range c.Vaccinations {
		out.Vaccinations = append(out.Vaccinations, v.Clone())
	}
	for _, v := range s.Vaccinations {
		out.Vaccinations = append(out.Vaccinations, v.Clone())
	}

	for _, m := range c.Medications {
		out.Medications = append(out.Medications, m.Clone())
	}
	for _, m := range s.Medications {
		out.Medications = append(out.Medications, m.Clone())
	}

	for _, a := range c.Appointments {
		out.Appointments = append(out.Appointments, a.Clone())
	}
	for _, a := range s.Appointments {
		out.Appointments = append(out.Appointments, a.Clone())
	}

	return out, nil
}

func (s Snapshot) validate() error {
	if s.Pet == nil || s.Pet.ID == "" {
		return fmt.Errorf("%w: missing pet", ErrMalformedSnapshot)
	}
	petID := s.Pet.ID
	for _, v := range s.Vaccinations {
		if v.PetID != petID {
			return fmt.Errorf("%w: vaccination %s belongs to %s", ErrMalformedSnapshot, v.ID, v.PetID)
		}
	}
	for _, m := range s.Medications {
		if m.PetID != petID {
			return fmt.Errorf("%w: medication %s belongs to %s", ErrMalformedSnapshot, m.ID, m.PetID)
		}
	}
	for _, a := range s.Appointments {
		if a.PetID != petID {
			return fmt.Errorf("%w: appointment %s belongs to %s", ErrMalformedSnapshot, a.ID, a.PetID)
		}
	}
	return nil
}
