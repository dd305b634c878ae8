// Package tracker es el dueño de las colecciones en memoria durante la vida del proceso:
// aplica las operaciones de usuario, mantiene los slots de deshacer y espeja el estado al kv.Store.
package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/domain/records"
	"pet-health-tracker/internal/platform/logger"
	"pet-health-tracker/internal/platform/metrics"
	"pet-health-tracker/internal/ports/kv"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrPersistence acompaña un resultado ya aplicado en memoria: no hay rollback.
	ErrPersistence = errors.New("persistence failed")
)

// allKeys en el orden en que se guardan.
var allKeys = []string{kv.KeyPets, kv.KeyVaccinations, kv.KeyMedications, kv.KeyAppointments}

type Service struct {
	mu sync.Mutex

	store kv.Store
	log   logger.Logger
	now   func() time.Time
	newID func() string

	state cascade.Collections

	// Slots de deshacer: uno por tipo, el último delete pisa al anterior.
	deletedPet         *cascade.Snapshot
	deletedVaccination *records.Vaccination
	deletedMedication  *records.Medication
	deletedAppointment *records.Appointment
}

func NewService(store kv.Store, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store: store,
		log:   log.With(map[string]any{"component": "tracker"}),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load reemplaza el estado en memoria con lo guardado en el store.
// Claves ausentes cuentan como colecciones vacías.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c cascade.Collections
	targets := map[string]any{
		kv.KeyPets:         &c.Pets,
		kv.KeyVaccinations: &c.Vaccinations,
		kv.KeyMedications:  &c.Medications,
		kv.KeyAppointments: &c.Appointments,
	}
	for _, key := range allKeys {
		if err := s.loadKey(ctx, key, targets[key]); err != nil && !errors.Is(err, kv.ErrNotFound) {
			return err
		}
	}

	var snap cascade.Snapshot
	pending := &snap
	if err := s.loadKey(ctx, kv.KeyDeletedPet, &snap); err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			return err
		}
		pending = nil
	}

	s.state = c
	s.deletedPet = pending
	s.deletedVaccination, s.deletedMedication, s.deletedAppointment = nil, nil, nil

	s.log.Info("state loaded", map[string]any{
		"pets":         len(c.Pets),
		"vaccinations": len(c.Vaccinations),
		"medications":  len(c.Medications),
		"appointments": len(c.Appointments),
		"pending_undo": pending != nil,
	})
	return nil
}

func (s *Service) loadKey(ctx context.Context, key string, dst any) error {
	b, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return err
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// persist guarda las claves indicadas. Debe llamarse con s.mu tomado.
// Los errores se loguean, se cuentan y se devuelven envueltos en ErrPersistence.
func (s *Service) persist(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := s.persistKey(ctx, key); err != nil {
			metrics.PersistFailures.WithLabelValues(key).Inc()
			s.log.Warn("persist failed", map[string]any{"key": key, "err": err})
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPersistence, errors.Join(errs...))
}

func (s *Service) persistKey(ctx context.Context, key string) error {
	var v any
	switch key {
	case kv.KeyPets:
		v = nonNil(s.state.Pets)
	case kv.KeyVaccinations:
		v = nonNil(s.state.Vaccinations)
	case kv.KeyMedications:
		v = nonNil(s.state.Medications)
	case kv.KeyAppointments:
		v = nonNil(s.state.Appointments)
	case kv.KeyDeletedPet:
		if s.deletedPet == nil {
			return s.store.Delete(ctx, key)
		}
		v = s.deletedPet
	default:
		return fmt.Errorf("unknown key %q", key)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.store.Save(ctx, key, b)
}

// nonNil para que una colección vacía se guarde como [] y no como null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return make([]T, 0)
	}
	return list
}
