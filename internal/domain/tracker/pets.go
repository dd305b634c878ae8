package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/domain/pets"
	"pet-health-tracker/internal/domain/records"
	"pet-health-tracker/internal/platform/metrics"
	"pet-health-tracker/internal/ports/kv"
)

type PetInput struct {
	Name           string
	Species        string
	Breed          string
	Sex            string
	BirthDate      time.Time
	Weight         float64
	ProfilePicture string
	Notes          string
}

// PetPatch: nil = no tocar.
type PetPatch struct {
	Name           *string
	Species        *string
	Breed          *string
	Sex            *string
	BirthDate      *time.Time
	Weight         *float64
	ProfilePicture *string
	Notes          *string
}

// PetOverview es el resumen de la pantalla principal de una mascota.
type PetOverview struct {
	Pet            pets.Pet        `json:"pet"`
	Age            string          `json:"age"`
	AvatarFallback string          `json:"avatarFallback"`
	Summary        records.Summary `json:"summary"`

	UpcomingVaccinations []records.Vaccination `json:"upcomingVaccinations"`
	UpcomingMedications  []records.Medication  `json:"upcomingMedications"`
	UpcomingAppointments []records.Appointment `json:"upcomingAppointments"`
}

// PetUndoResult: Restored=false cuando la mascota ya estaba presente (undo duplicado).
type PetUndoResult struct {
	Restored     bool     `json:"restored"`
	Pet          pets.Pet `json:"pet"`
	Vaccinations int      `json:"vaccinations"`
	Medications  int      `json:"medications"`
	Appointments int      `json:"appointments"`
}

func petID(p pets.Pet) string { return p.ID }

func (s *Service) buildPet(in PetInput, now time.Time) (pets.Pet, error) {
	if err := required("name", in.Name); err != nil {
		return pets.Pet{}, err
	}
	species, ok := pets.ParseSpecies(in.Species)
	if !ok {
		return pets.Pet{}, invalid("unknown pet type %q", in.Species)
	}
	sex, ok := pets.ParseSex(in.Sex)
	if !ok {
		return pets.Pet{}, invalid("unknown sex %q", in.Sex)
	}
	if err := requiredDate("birthDate", in.BirthDate); err != nil {
		return pets.Pet{}, err
	}
	if dayBefore(now, in.BirthDate) {
		return pets.Pet{}, invalid("birthDate cannot be in the future")
	}
	if in.Weight < 0 {
		return pets.Pet{}, invalid("weight cannot be negative")
	}

	breed := strings.TrimSpace(in.Breed)
	if breed == "" {
		breed = pets.DefaultBreed
	}

	return pets.Pet{
		Name:           strings.TrimSpace(in.Name),
		Species:        species,
		Breed:          breed,
		Sex:            sex,
		BirthDate:      in.BirthDate,
		Weight:         in.Weight,
		ProfilePicture: strings.TrimSpace(in.ProfilePicture),
		Notes:          strings.TrimSpace(in.Notes),
	}, nil
}

func (s *Service) CreatePet(ctx context.Context, in PetInput) (pets.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p, err := s.buildPet(in, now)
	if err != nil {
		return pets.Pet{}, err
	}
	p.ID = s.newID()
	p.CreatedAt = now

	s.state.Pets = append(s.state.Pets, p)
	s.log.Info("pet created", map[string]any{"pet_id": p.ID})

	return p.Clone(), s.persist(ctx, kv.KeyPets)
}

func (s *Service) UpdatePet(ctx context.Context, id string, patch PetPatch) (pets.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Pets, id, petID)
	if i < 0 {
		return pets.Pet{}, fmt.Errorf("%w: %s", cascade.ErrPetNotFound, id)
	}
	cur := s.state.Pets[i]

	in := PetInput{
		Name:           cur.Name,
		Species:        string(cur.Species),
		Breed:          cur.Breed,
		Sex:            string(cur.Sex),
		BirthDate:      cur.BirthDate,
		Weight:         cur.Weight,
		ProfilePicture: cur.ProfilePicture,
		Notes:          cur.Notes,
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Species != nil {
		in.Species = *patch.Species
	}
	if patch.Breed != nil {
		in.Breed = *patch.Breed
	}
	if patch.Sex != nil {
		in.Sex = *patch.Sex
	}
	if patch.BirthDate != nil {
		in.BirthDate = *patch.BirthDate
	}
	if patch.Weight != nil {
		in.Weight = *patch.Weight
	}
	if patch.ProfilePicture != nil {
		in.ProfilePicture = *patch.ProfilePicture
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}

	now := s.now()
	p, err := s.buildPet(in, now)
	if err != nil {
		return pets.Pet{}, err
	}
	p.ID = cur.ID
	p.CreatedAt = cur.CreatedAt
	p.UpdatedAt = &now

	pl := make([]pets.Pet, len(s.state.Pets))
	copy(pl, s.state.Pets)
	pl[i] = p
	s.state.Pets = pl

	return p.Clone(), s.persist(ctx, kv.KeyPets)
}

func (s *Service) GetPet(id string) (pets.Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Pets, id, petID)
	if i < 0 {
		return pets.Pet{}, fmt.Errorf("%w: %s", cascade.ErrPetNotFound, id)
	}
	return s.state.Pets[i].Clone(), nil
}

// ListPets devuelve las mascotas en orden de alta.
func (s *Service) ListPets() []pets.Pet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]pets.Pet, 0, len(s.state.Pets))
	for _, p := range s.state.Pets {
		out = append(out, p.Clone())
	}
	return out
}

func (s *Service) PetOverview(id string) (PetOverview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Pets, id, petID)
	if i < 0 {
		return PetOverview{}, fmt.Errorf("%w: %s", cascade.ErrPetNotFound, id)
	}
	p := s.state.Pets[i].Clone()
	now := s.now()

	vs := records.SortVaccinations(records.VaccinationsOf(s.state.Vaccinations, id))
	ms := records.SortMedications(records.MedicationsOf(s.state.Medications, id), now)
	as := records.SortAppointments(records.AppointmentsOf(s.state.Appointments, id), now)

	return PetOverview{
		Pet:            p,
		Age:            pets.Age(p.BirthDate, now),
		AvatarFallback: pets.AvatarFallback(p.Name),
		Summary:        records.Summarize(vs, ms, as, now),

		UpcomingVaccinations: records.UpcomingVaccinations(vs, now, records.DefaultUpcomingLimit),
		UpcomingMedications:  records.UpcomingMedications(ms, now, records.DefaultUpcomingLimit),
		UpcomingAppointments: records.UpcomingAppointments(as, now, records.DefaultUpcomingLimit),
	}, nil
}

// DeletePet borra la mascota en cascada y guarda el snapshot en el slot de deshacer,
// pisando el anterior. El slot guarda su propia copia: editar el snapshot devuelto no lo afecta.
func (s *Service) DeletePet(ctx context.Context, id string) (cascade.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, snap, err := cascade.DeletePet(id, s.state)
	if err != nil {
		return cascade.Snapshot{}, err
	}

	if s.deletedPet != nil && s.deletedPet.Pet != nil {
		s.log.Debug("pending pet undo replaced", map[string]any{"pet_id": s.deletedPet.Pet.ID})
	}
	s.state = out
	held := snap.Clone()
	s.deletedPet = &held

	nv, nm, na := snap.Counts()
	metrics.PetDeletes.Inc()
	metrics.CascadedRecords.WithLabelValues("vaccination").Add(float64(nv))
	metrics.CascadedRecords.WithLabelValues("medication").Add(float64(nm))
	metrics.CascadedRecords.WithLabelValues("appointment").Add(float64(na))
	s.log.Info("pet deleted", map[string]any{
		"pet_id":       id,
		"vaccinations": nv,
		"medications":  nm,
		"appointments": na,
	})

	return snap, s.persist(ctx, kv.KeyPets, kv.KeyVaccinations, kv.KeyMedications, kv.KeyAppointments, kv.KeyDeletedPet)
}

// UndoDeletePet restaura el último snapshot pendiente.
// Si la mascota ya está presente no hace nada (Restored=false) y limpia el slot.
func (s *Service) UndoDeletePet(ctx context.Context) (PetUndoResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedPet == nil {
		return PetUndoResult{}, fmt.Errorf("%w: no deleted pet", ErrNothingToUndo)
	}
	snap := *s.deletedPet

	if snap.IsRestoredIn(s.state) {
		s.deletedPet = nil
		metrics.Restores.WithLabelValues("pet", metrics.ResultDuplicate).Inc()
		s.log.Info("duplicate pet undo ignored", map[string]any{"pet_id": snap.Pet.ID})
		return PetUndoResult{Restored: false, Pet: snap.Pet.Clone()}, s.persist(ctx, kv.KeyDeletedPet)
	}

	out, err := cascade.RestorePet(snap, s.state)
	if err != nil {
		s.log.Error("pet undo failed", map[string]any{"err": err})
		return PetUndoResult{}, err
	}
	s.state = out
	s.deletedPet = nil

	nv, nm, na := snap.Counts()
	metrics.Restores.WithLabelValues("pet", metrics.ResultRestored).Inc()
	s.log.Info("pet restored", map[string]any{"pet_id": snap.Pet.ID})

	res := PetUndoResult{
		Restored:     true,
		Pet:          snap.Pet.Clone(),
		Vaccinations: nv,
		Medications:  nm,
		Appointments: na,
	}
	return res, s.persist(ctx, kv.KeyPets, kv.KeyVaccinations, kv.KeyMedications, kv.KeyAppointments, kv.KeyDeletedPet)
}

// PendingPetUndo devuelve una copia del snapshot pendiente, si hay.
func (s *Service) PendingPetUndo() (cascade.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedPet == nil {
		return cascade.Snapshot{}, false
	}
	return s.deletedPet.Clone(), true
}

// DiscardPetUndo vacía el slot (la ventana de deshacer expiró). Idempotente.
func (s *Service) DiscardPetUndo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedPet == nil {
		return nil
	}
	s.deletedPet = nil
	return s.persist(ctx, kv.KeyDeletedPet)
}
