package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pet-health-tracker/internal/domain/records"
	"pet-health-tracker/internal/platform/metrics"
	"pet-health-tracker/internal/ports/kv"
)

type MedicationInput struct {
	Name      string
	Dosage    string
	Frequency string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
}

type MedicationPatch struct {
	Name      *string
	Dosage    *string
	Frequency *string
	StartDate *time.Time
	EndDate   *time.Time
	Notes     *string
}

func medicationID(m records.Medication) string { return m.ID }

// validate rechaza EndDate anterior a StartDate. El clasificador no valida:
// un rango invertido que ya llegó al motor se muestra como completed.
func (in MedicationInput) validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"dosage", in.Dosage},
		{"frequency", in.Frequency},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	if err := requiredDate("startDate", in.StartDate); err != nil {
		return err
	}
	if err := requiredDate("endDate", in.EndDate); err != nil {
		return err
	}
	if dayBefore(in.EndDate, in.StartDate) {
		return invalid("endDate cannot be before startDate")
	}
	return nil
}

func (s *Service) CreateMedication(ctx context.Context, petID string, in MedicationInput) (records.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return records.Medication{}, err
	}
	if err := in.validate(); err != nil {
		return records.Medication{}, err
	}

	m := records.Medication{
		ID:        s.newID(),
		PetID:     petID,
		Name:      strings.TrimSpace(in.Name),
		Dosage:    strings.TrimSpace(in.Dosage),
		Frequency: strings.TrimSpace(in.Frequency),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now(),
	}
	s.state.Medications = append(s.state.Medications, m)

	return m.Clone(), s.persist(ctx, kv.KeyMedications)
}

func (s *Service) UpdateMedication(ctx context.Context, petID, id string, patch MedicationPatch) (records.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Medications, id, medicationID)
	if i < 0 || s.state.Medications[i].PetID != petID {
		return records.Medication{}, fmt.Errorf("%w: medication %s", ErrNotFound, id)
	}
	cur := s.state.Medications[i].Clone()

	in := MedicationInput{
		Name:      cur.Name,
		Dosage:    cur.Dosage,
		Frequency: cur.Frequency,
		StartDate: cur.StartDate,
		EndDate:   cur.EndDate,
		Notes:     cur.Notes,
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Dosage != nil {
		in.Dosage = *patch.Dosage
	}
	if patch.Frequency != nil {
		in.Frequency = *patch.Frequency
	}
	if patch.StartDate != nil {
		in.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		in.EndDate = *patch.EndDate
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}
	if err := in.validate(); err != nil {
		return records.Medication{}, err
	}

	now := s.now()
	cur.Name = strings.TrimSpace(in.Name)
	cur.Dosage = strings.TrimSpace(in.Dosage)
	cur.Frequency = strings.TrimSpace(in.Frequency)
	cur.StartDate = in.StartDate
	cur.EndDate = in.EndDate
	cur.Notes = strings.TrimSpace(in.Notes)
	cur.UpdatedAt = &now

	ml := make([]records.Medication, len(s.state.Medications))
	copy(ml, s.state.Medications)
	ml[i] = cur
	s.state.Medications = ml

	return cur.Clone(), s.persist(ctx, kv.KeyMedications)
}

func (s *Service) ListMedications(petID string) ([]records.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return nil, err
	}
	return records.SortMedications(records.MedicationsOf(s.state.Medications, petID), s.now()), nil
}

func (s *Service) DeleteMedication(ctx context.Context, petID, id string) (records.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Medications, id, medicationID)
	if i < 0 || s.state.Medications[i].PetID != petID {
		return records.Medication{}, fmt.Errorf("%w: medication %s", ErrNotFound, id)
	}
	m := s.state.Medications[i].Clone()

	s.state.Medications = removeAt(s.state.Medications, i)
	s.deletedMedication = &m

	return m.Clone(), s.persist(ctx, kv.KeyMedications)
}

func (s *Service) UndoDeleteMedication(ctx context.Context) (records.Medication, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedMedication == nil {
		return records.Medication{}, false, fmt.Errorf("%w: no deleted medication", ErrNothingToUndo)
	}
	m := s.deletedMedication.Clone()

	if indexOf(s.state.Medications, m.ID, medicationID) >= 0 {
		s.deletedMedication = nil
		metrics.Restores.WithLabelValues("medication", metrics.ResultDuplicate).Inc()
		return m, false, nil
	}
	if err := s.requirePet(m.PetID); err != nil {
		return records.Medication{}, false, err
	}

	s.state.Medications = append(s.state.Medications, m.Clone())
	s.deletedMedication = nil
	metrics.Restores.WithLabelValues("medication", metrics.ResultRestored).Inc()

	return m, true, s.persist(ctx, kv.KeyMedications)
}
