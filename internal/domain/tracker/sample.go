package tracker

import (
	"context"
	"time"

	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/domain/pets"
	"pet-health-tracker/internal/domain/records"
	"pet-health-tracker/internal/ports/kv"
)

// Counts es el tamaño de cada colección.
type Counts struct {
	Pets         int `json:"pets"`
	Vaccinations int `json:"vaccinations"`
	Medications  int `json:"medications"`
	Appointments int `json:"appointments"`
}

func countsOf(c cascade.Collections) Counts {
	return Counts{
		Pets:         len(c.Pets),
		Vaccinations: len(c.Vaccinations),
		Medications:  len(c.Medications),
		Appointments: len(c.Appointments),
	}
}

// LoadSampleData reemplaza todo el estado por un set de ejemplo relativo a now
// y descarta los slots de deshacer.
func (s *Service) LoadSampleData(ctx context.Context) (Counts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := sampleData(s.now(), s.newID)

	s.state = c
	s.deletedPet = nil
	s.deletedVaccination, s.deletedMedication, s.deletedAppointment = nil, nil, nil

	s.log.Info("sample data loaded", map[string]any{"pets": len(c.Pets)})

	return countsOf(c), s.persist(ctx, kv.KeyPets, kv.KeyVaccinations, kv.KeyMedications, kv.KeyAppointments, kv.KeyDeletedPet)
}

func sampleData(now time.Time, newID func() string) cascade.Collections {
	day := func(years, months, days int) time.Time {
		return now.AddDate(years, months, days)
	}
	at := func(t time.Time, hour int) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	}

	dog := pets.Pet{
		ID: newID(), Name: "Max", Species: pets.SpeciesDog, Breed: "Golden Retriever", Sex: pets.SexMale,
		BirthDate: day(-5, 0, 0), Weight: 32.4,
		Notes:     "Friendly and energetic. Allergic to chicken and beef.",
		CreatedAt: now,
	}
	luna := pets.Pet{
		ID: newID(), Name: "Luna", Species: pets.SpeciesCat, Breed: "Maine Coon", Sex: pets.SexFemale,
		BirthDate: day(-3, 0, 0), Weight: 6.8,
		Notes:     "Indoor-only. Long hair, brush three times a week.",
		CreatedAt: now,
	}
	spike := pets.Pet{
		ID: newID(), Name: "Spike", Species: pets.SpeciesReptile, Breed: "Bearded Dragon", Sex: pets.SexMale,
		BirthDate: day(-4, 0, 0), Weight: 0.48,
		CreatedAt: now,
	}

	vaccination := func(p pets.Pet, name string, due time.Time, administered *time.Time) records.Vaccination {
		return records.Vaccination{ID: newID(), PetID: p.ID, Name: name, DueDate: due, AdministeredDate: administered, CreatedAt: now}
	}
	medication := func(p pets.Pet, name, dosage, freq string, start, end time.Time) records.Medication {
		return records.Medication{ID: newID(), PetID: p.ID, Name: name, Dosage: dosage, Frequency: freq, StartDate: start, EndDate: end, CreatedAt: now}
	}
	appointment := func(p pets.Pet, vet, phone, reason string, date time.Time) records.Appointment {
		return records.Appointment{ID: newID(), PetID: p.ID, VetName: vet, VetPhone: phone, Reason: reason, Date: date, CreatedAt: now}
	}

	return cascade.Collections{
		Pets: []pets.Pet{dog, luna, spike},
		Vaccinations: []records.Vaccination{
			vaccination(dog, "Rabies", day(2, 0, 0), ptrTo(day(-1, 0, 0))),
			vaccination(dog, "Bordetella (Kennel Cough)", day(0, 0, 5), nil),
			vaccination(dog, "Leptospirosis", day(0, 0, -3), nil),
			vaccination(dog, "Lyme Disease", day(0, 3, 0), nil),
			vaccination(luna, "FVRCP", day(0, 1, 0), nil),
			vaccination(luna, "FeLV (Feline Leukemia Virus)", day(0, 0, 7), nil),
			vaccination(luna, "Rabies", day(1, 0, 0), ptrTo(day(0, -1, 0))),
			vaccination(spike, "Herpesvirus Vaccine", day(1, 0, 0), ptrTo(day(0, -6, 0))),
		},
		Medications: []records.Medication{
			medication(dog, "Heartgard Plus", "1 chewable tablet", "Once monthly", day(-5, 0, 0), day(5, 0, 0)),
			medication(dog, "Apoquel (Oclacitinib)", "16mg (1 tablet)", "Once daily", day(0, -3, 0), day(0, 1, 0)),
			medication(dog, "Clavamox", "375mg (1 tablet)", "Twice daily", day(0, -8, 0), day(0, -7, 0)),
			medication(dog, "Proin ER", "38mg (1/2 tablet)", "Once daily", day(0, 0, 2), day(1, 0, 0)),
			medication(luna, "Methimazole", "5mg (1 tablet)", "Twice daily", day(0, -1, 0), day(0, 5, 0)),
			medication(luna, "Lactulose", "0.5ml oral solution", "Twice daily", day(0, -4, 0), day(0, -3, 0)),
			medication(spike, "Calcium with Vitamin D3", "Small pinch", "As needed", day(-4, 0, 0), day(5, 0, 0)),
		},
		Appointments: []records.Appointment{
			appointment(dog, "Dr. Johnson", "555-123-4567", "Wellness Exam", at(day(0, 0, 14), 10)),
			appointment(dog, "Dr. Johnson", "555-123-4567", "Wellness Exam", at(day(-1, 0, 0), 10)),
			appointment(dog, "Emergency Vet Hospital", "555-911-0000", "Injury", at(day(0, -8, 0), 22)),
			appointment(luna, "Feline Care Clinic", "555-222-3333", "Follow-up", at(day(0, 0, 1), 9)),
			appointment(spike, "Exotic Animal Hospital", "555-777-8888", "Wellness Exam", at(day(0, 2, 0), 15)),
		},
	}
}
