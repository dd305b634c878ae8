package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/domain/records"
	"pet-health-tracker/internal/platform/metrics"
	"pet-health-tracker/internal/ports/kv"
)

type VaccinationInput struct {
	Name             string
	DueDate          time.Time
	AdministeredDate *time.Time
	Notes            string
}

// VaccinationPatch: nil = no tocar. ClearAdministered vuelve la vacuna a pendiente.
type VaccinationPatch struct {
	Name              *string
	DueDate           *time.Time
	AdministeredDate  *time.Time
	ClearAdministered bool
	Notes             *string
}

func vaccinationID(v records.Vaccination) string { return v.ID }

func (in VaccinationInput) validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	return requiredDate("dueDate", in.DueDate)
}

// requirePet debe llamarse con s.mu tomado.
func (s *Service) requirePet(id string) error {
	if indexOf(s.state.Pets, id, petID) < 0 {
		return fmt.Errorf("%w: %s", cascade.ErrPetNotFound, id)
	}
	return nil
}

func (s *Service) CreateVaccination(ctx context.Context, petID string, in VaccinationInput) (records.Vaccination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return records.Vaccination{}, err
	}
	if err := in.validate(); err != nil {
		return records.Vaccination{}, err
	}

	v := records.Vaccination{
		ID:               s.newID(),
		PetID:            petID,
		Name:             strings.TrimSpace(in.Name),
		DueDate:          in.DueDate,
		AdministeredDate: in.AdministeredDate,
		Notes:            strings.TrimSpace(in.Notes),
		CreatedAt:        s.now(),
	}
	s.state.Vaccinations = append(s.state.Vaccinations, v.Clone())

	return v, s.persist(ctx, kv.KeyVaccinations)
}

func (s *Service) UpdateVaccination(ctx context.Context, petID, id string, patch VaccinationPatch) (records.Vaccination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Vaccinations, id, vaccinationID)
	if i < 0 || s.state.Vaccinations[i].PetID != petID {
		return records.Vaccination{}, fmt.Errorf("%w: vaccination %s", ErrNotFound, id)
	}
	cur := s.state.Vaccinations[i].Clone()

	in := VaccinationInput{
		Name:             cur.Name,
		DueDate:          cur.DueDate,
		AdministeredDate: cur.AdministeredDate,
		Notes:            cur.Notes,
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.DueDate != nil {
		in.DueDate = *patch.DueDate
	}
	if patch.AdministeredDate != nil {
		in.AdministeredDate = ptrTo(*patch.AdministeredDate)
	}
	if patch.ClearAdministered {
		in.AdministeredDate = nil
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}
	if err := in.validate(); err != nil {
		return records.Vaccination{}, err
	}

	now := s.now()
	cur.Name = strings.TrimSpace(in.Name)
	cur.DueDate = in.DueDate
	cur.AdministeredDate = in.AdministeredDate
	cur.Notes = strings.TrimSpace(in.Notes)
	cur.UpdatedAt = &now

	vl := make([]records.Vaccination, len(s.state.Vaccinations))
	copy(vl, s.state.Vaccinations)
	vl[i] = cur
	s.state.Vaccinations = vl

	return cur.Clone(), s.persist(ctx, kv.KeyVaccinations)
}

// ListVaccinations devuelve las vacunas de la mascota ya ordenadas para mostrar.
func (s *Service) ListVaccinations(petID string) ([]records.Vaccination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return nil, err
	}
	return records.SortVaccinations(records.VaccinationsOf(s.state.Vaccinations, petID)), nil
}

func (s *Service) DeleteVaccination(ctx context.Context, petID, id string) (records.Vaccination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Vaccinations, id, vaccinationID)
	if i < 0 || s.state.Vaccinations[i].PetID != petID {
		return records.Vaccination{}, fmt.Errorf("%w: vaccination %s", ErrNotFound, id)
	}
	v := s.state.Vaccinations[i].Clone()

	s.state.Vaccinations = removeAt(s.state.Vaccinations, i)
	s.deletedVaccination = &v

	return v.Clone(), s.persist(ctx, kv.KeyVaccinations)
}

// UndoDeleteVaccination reinserta la última vacuna borrada.
// Si el id ya está presente es un no-op silencioso (restored=false).
func (s *Service) UndoDeleteVaccination(ctx context.Context) (records.Vaccination, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedVaccination == nil {
		return records.Vaccination{}, false, fmt.Errorf("%w: no deleted vaccination", ErrNothingToUndo)
	}
	v := s.deletedVaccination.Clone()

	if indexOf(s.state.Vaccinations, v.ID, vaccinationID) >= 0 {
		s.deletedVaccination = nil
		metrics.Restores.WithLabelValues("vaccination", metrics.ResultDuplicate).Inc()
		return v, false, nil
	}
	if err := s.requirePet(v.PetID); err != nil {
		return records.Vaccination{}, false, err
	}

	s.state.Vaccinations = append(s.state.Vaccinations, v.Clone())
	s.deletedVaccination = nil
	metrics.Restores.WithLabelValues("vaccination", metrics.ResultRestored).Inc()

	return v, true, s.persist(ctx, kv.KeyVaccinations)
}
