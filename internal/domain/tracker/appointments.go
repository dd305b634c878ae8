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

type AppointmentInput struct {
	VetName  string
	VetPhone string
	Date     time.Time
	Reason   string
	Notes    string
}

type AppointmentPatch struct {
	VetName  *string
	VetPhone *string
	Date     *time.Time
	Reason   *string
	Notes    *string
}

func appointmentID(a records.Appointment) string { return a.ID }

func (in AppointmentInput) validate() error {
	if err := required("vetName", in.VetName); err != nil {
		return err
	}
	if err := requiredDate("date", in.Date); err != nil {
		return err
	}
	return required("reason", in.Reason)
}

func (s *Service) CreateAppointment(ctx context.Context, petID string, in AppointmentInput) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return records.Appointment{}, err
	}
	if err := in.validate(); err != nil {
		return records.Appointment{}, err
	}

	a := records.Appointment{
		ID:        s.newID(),
		PetID:     petID,
		VetName:   strings.TrimSpace(in.VetName),
		VetPhone:  strings.TrimSpace(in.VetPhone),
		Date:      in.Date,
		Reason:    strings.TrimSpace(in.Reason),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: s.now(),
	}
	s.state.Appointments = append(s.state.Appointments, a)

	return a.Clone(), s.persist(ctx, kv.KeyAppointments)
}

func (s *Service) UpdateAppointment(ctx context.Context, petID, id string, patch AppointmentPatch) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Appointments, id, appointmentID)
	if i < 0 || s.state.Appointments[i].PetID != petID {
		return records.Appointment{}, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	cur := s.state.Appointments[i].Clone()

	in := AppointmentInput{
		VetName:  cur.VetName,
		VetPhone: cur.VetPhone,
		Date:     cur.Date,
		Reason:   cur.Reason,
		Notes:    cur.Notes,
	}
	if patch.VetName != nil {
		in.VetName = *patch.VetName
	}
	if patch.VetPhone != nil {
		in.VetPhone = *patch.VetPhone
	}
	if patch.Date != nil {
		in.Date = *patch.Date
	}
	if patch.Reason != nil {
		in.Reason = *patch.Reason
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}
	if err := in.validate(); err != nil {
		return records.Appointment{}, err
	}

	now := s.now()
	cur.VetName = strings.TrimSpace(in.VetName)
	cur.VetPhone = strings.TrimSpace(in.VetPhone)
	cur.Date = in.Date
	cur.Reason = strings.TrimSpace(in.Reason)
	cur.Notes = strings.TrimSpace(in.Notes)
	cur.UpdatedAt = &now

	al := make([]records.Appointment, len(s.state.Appointments))
	copy(al, s.state.Appointments)
	al[i] = cur
	s.state.Appointments = al

	return cur.Clone(), s.persist(ctx, kv.KeyAppointments)
}

func (s *Service) ListAppointments(petID string) ([]records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requirePet(petID); err != nil {
		return nil, err
	}
	return records.SortAppointments(records.AppointmentsOf(s.state.Appointments, petID), s.now()), nil
}

func (s *Service) DeleteAppointment(ctx context.Context, petID, id string) (records.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.state.Appointments, id, appointmentID)
	if i < 0 || s.state.Appointments[i].PetID != petID {
		return records.Appointment{}, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	a := s.state.Appointments[i].Clone()

	s.state.Appointments = removeAt(s.state.Appointments, i)
	s.deletedAppointment = &a

	return a.Clone(), s.persist(ctx, kv.KeyAppointments)
}

func (s *Service) UndoDeleteAppointment(ctx context.Context) (records.Appointment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deletedAppointment == nil {
		return records.Appointment{}, false, fmt.Errorf("%w: no deleted appointment", ErrNothingToUndo)
	}
	a := s.deletedAppointment.Clone()

	if indexOf(s.state.Appointments, a.ID, appointmentID) >= 0 {
		s.deletedAppointment = nil
		metrics.Restores.WithLabelValues("appointment", metrics.ResultDuplicate).Inc()
		return a, false, nil
	}
	if err := s.requirePet(a.PetID); err != nil {
		return records.Appointment{}, false, err
	}

	s.state.Appointments = append(s.state.Appointments, a.Clone())
	s.deletedAppointment = nil
	metrics.Restores.WithLabelValues("appointment", metrics.ResultRestored).Inc()

	return a, true, s.persist(ctx, kv.KeyAppointments)
}
