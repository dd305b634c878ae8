package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"pet-health-tracker/internal/adapters/storage/memory"
	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/ports/kv"
)

var testNow = time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

// flakyStore envuelve el store en memoria y falla los Save cuando failing=true.
type flakyStore struct {
	*memory.StateStore

	mu      sync.Mutex
	failing bool
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyStore) Save(ctx context.Context, key string, payload []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return errors.New("disk full")
	}
	return f.StateStore.Save(ctx, key, payload)
}

func newTestService(t *testing.T, store kv.Store) *Service {
	t.Helper()
	if store == nil {
		store = memory.NewStateStore()
	}
	svc := NewService(store, nil)
	svc.now = func() time.Time { return testNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc
}

func day(offset int) time.Time { return testNow.AddDate(0, 0, offset) }

// seedMax crea a Max con 2 vacunas, 1 medicación y 1 cita.
func seedMax(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()

	p, err := svc.CreatePet(ctx, PetInput{Name: "Max", Species: "dog", Breed: "Beagle", Sex: "male", BirthDate: testNow.AddDate(-3, 0, 0), Weight: 12})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}
	if _, err := svc.CreateVaccination(ctx, p.ID, VaccinationInput{Name: "Rabies", DueDate: day(3)}); err != nil {
		t.Fatalf("create vaccination: %v", err)
	}
	if _, err := svc.CreateVaccination(ctx, p.ID, VaccinationInput{Name: "DHPP", DueDate: day(-2), AdministeredDate: ptrTo(day(-2))}); err != nil {
		t.Fatalf("create vaccination: %v", err)
	}
	if _, err := svc.CreateMedication(ctx, p.ID, MedicationInput{Name: "Apoquel", Dosage: "16mg", Frequency: "Once daily", StartDate: day(-1), EndDate: day(5)}); err != nil {
		t.Fatalf("create medication: %v", err)
	}
	if _, err := svc.CreateAppointment(ctx, p.ID, AppointmentInput{VetName: "Dr. Rivera", Date: day(1), Reason: "Wellness Exam"}); err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return p.ID
}

func TestCreatePet_Validation(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   PetInput
	}{
		{"missing name", PetInput{Species: "DOG", BirthDate: day(-10)}},
		{"unknown type", PetInput{Name: "X", Species: "DRAGON", BirthDate: day(-10)}},
		{"unknown sex", PetInput{Name: "X", Species: "DOG", Sex: "other", BirthDate: day(-10)}},
		{"missing birth date", PetInput{Name: "X", Species: "DOG"}},
		{"birth date in the future", PetInput{Name: "X", Species: "DOG", BirthDate: day(1)}},
		{"negative weight", PetInput{Name: "X", Species: "DOG", BirthDate: day(-10), Weight: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePet(ctx, tc.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if n := len(svc.ListPets()); n != 0 {
		t.Fatalf("expected no pets, got %d", n)
	}
}

func TestCreatePet_Defaults(t *testing.T) {
	svc := newTestService(t, nil)

	// nacido hoy más tarde que "now" sigue siendo hoy
	p, err := svc.CreatePet(context.Background(), PetInput{Name: " Luna ", Species: "cat", BirthDate: day(0).Add(3 * time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Luna" || p.Breed != "Mixed" || p.Sex != "UNKNOWN" || p.ID != "id-1" {
		t.Fatalf("unexpected pet: %+v", p)
	}
	if !p.CreatedAt.Equal(testNow) {
		t.Fatalf("createdAt=%v", p.CreatedAt)
	}
}

func TestUpdatePet_PatchesOnlyGivenFields(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	w := 13.5
	p, err := svc.UpdatePet(ctx, id, PetPatch{Weight: &w})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Weight != 13.5 || p.Name != "Max" || p.Breed != "Beagle" || p.UpdatedAt == nil {
		t.Fatalf("unexpected pet: %+v", p)
	}

	bad := "LIZARD"
	if _, err := svc.UpdatePet(ctx, id, PetPatch{Species: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdatePet(ctx, "nope", PetPatch{Weight: &w}); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
}

func TestRecords_RequireExistingPet(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.CreateVaccination(ctx, "ghost", VaccinationInput{Name: "Rabies", DueDate: day(1)}); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("vaccination: expected ErrPetNotFound, got %v", err)
	}
	if _, err := svc.ListMedications("ghost"); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("medications: expected ErrPetNotFound, got %v", err)
	}
	if _, err := svc.CreateAppointment(ctx, "ghost", AppointmentInput{VetName: "Dr", Date: day(1), Reason: "Other"}); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("appointment: expected ErrPetNotFound, got %v", err)
	}
}

func TestCreateMedication_RejectsEndBeforeStart(t *testing.T) {
	svc := newTestService(t, nil)
	id := seedMax(t, svc)

	_, err := svc.CreateMedication(context.Background(), id, MedicationInput{
		Name: "Clavamox", Dosage: "375mg", Frequency: "Twice daily", StartDate: day(5), EndDate: day(1),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// mismo día es válido (tratamiento de un día)
	if _, err := svc.CreateMedication(context.Background(), id, MedicationInput{
		Name: "Clavamox", Dosage: "375mg", Frequency: "Twice daily", StartDate: day(1), EndDate: day(1).Add(-time.Hour),
	}); err != nil {
		t.Fatalf("same-day medication: %v", err)
	}
}

func TestUpdateVaccination_ClearAdministered(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	list, _ := svc.ListVaccinations(id)
	done := list[len(list)-1]
	if done.AdministeredDate == nil {
		t.Fatalf("expected administered vaccination last, got %+v", list)
	}

	v, err := svc.UpdateVaccination(ctx, id, done.ID, VaccinationPatch{ClearAdministered: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if v.AdministeredDate != nil || v.UpdatedAt == nil {
		t.Fatalf("unexpected vaccination: %+v", v)
	}

	// otra mascota no puede tocarla
	if _, err := svc.UpdateVaccination(ctx, "other", done.ID, VaccinationPatch{ClearAdministered: true}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPetOverview(t *testing.T) {
	svc := newTestService(t, nil)
	id := seedMax(t, svc)

	ov, err := svc.PetOverview(id)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.AvatarFallback != "MA" {
		t.Fatalf("avatarFallback=%q", ov.AvatarFallback)
	}
	if ov.Age != "3 years" {
		t.Fatalf("age=%q", ov.Age)
	}
	if ov.Summary.VaccinationsDueSoon != 1 || ov.Summary.VaccinationsCompleted != 1 || ov.Summary.MedicationsActive != 1 {
		t.Fatalf("unexpected summary: %+v", ov.Summary)
	}
	if len(ov.UpcomingVaccinations) != 1 || ov.UpcomingVaccinations[0].Name != "Rabies" {
		t.Fatalf("unexpected upcoming vaccinations: %+v", ov.UpcomingVaccinations)
	}
	if len(ov.UpcomingAppointments) != 1 {
		t.Fatalf("unexpected upcoming appointments: %+v", ov.UpcomingAppointments)
	}
}

func TestDeletePet_CascadeAndUndo(t *testing.T) {
	store := memory.NewStateStore()
	svc := newTestService(t, store)
	ctx := context.Background()
	id := seedMax(t, svc)

	snap, err := svc.DeletePet(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if v, m, a := snap.Counts(); v != 2 || m != 1 || a != 1 {
		t.Fatalf("snapshot counts v=%d m=%d a=%d", v, m, a)
	}
	if len(svc.ListPets()) != 0 {
		t.Fatalf("pet still listed")
	}
	if _, err := store.Load(ctx, kv.KeyDeletedPet); err != nil {
		t.Fatalf("expected persisted snapshot: %v", err)
	}

	res, err := svc.UndoDeletePet(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !res.Restored || res.Pet.ID != id || res.Vaccinations != 2 || res.Medications != 1 || res.Appointments != 1 {
		t.Fatalf("unexpected undo result: %+v", res)
	}

	vs, _ := svc.ListVaccinations(id)
	ms, _ := svc.ListMedications(id)
	as, _ := svc.ListAppointments(id)
	if len(vs) != 2 || len(ms) != 1 || len(as) != 1 {
		t.Fatalf("records not restored: v=%d m=%d a=%d", len(vs), len(ms), len(as))
	}
	if _, err := store.Load(ctx, kv.KeyDeletedPet); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected snapshot key deleted, got %v", err)
	}

	if _, err := svc.UndoDeletePet(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestDeletePet_ReturnedSnapshotDoesNotAliasUndoSlot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	snap, err := svc.DeletePet(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap.Pet.Name = "MUTATED"
	snap.Vaccinations[0].Name = "MUTATED"
	*snap.Vaccinations[1].AdministeredDate = day(100)

	pending, ok := svc.PendingPetUndo()
	if !ok {
		t.Fatalf("expected pending undo")
	}
	if pending.Pet.Name != "Max" || pending.Vaccinations[0].Name != "Rabies" {
		t.Fatalf("pending slot changed through returned snapshot: pet=%q vaccination=%q", pending.Pet.Name, pending.Vaccinations[0].Name)
	}
	pending.Pet.Name = "MUTATED"
	pending.Medications[0].Name = "MUTATED"

	res, err := svc.UndoDeletePet(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.Pet.Name != "Max" {
		t.Fatalf("expected restored name Max, got %q", res.Pet.Name)
	}

	p, err := svc.GetPet(id)
	if err != nil || p.Name != "Max" {
		t.Fatalf("expected pet Max, got %+v err=%v", p, err)
	}
	vs, _ := svc.ListVaccinations(id)
	for _, v := range vs {
		if v.Name == "MUTATED" {
			t.Fatalf("vaccination restored with mutated name")
		}
		if v.AdministeredDate != nil && !v.AdministeredDate.Equal(day(-2)) {
			t.Fatalf("administered date restored as %v", v.AdministeredDate)
		}
	}
	ms, _ := svc.ListMedications(id)
	if len(ms) != 1 || ms[0].Name != "Apoquel" {
		t.Fatalf("expected medication Apoquel, got %+v", ms)
	}
}

func TestUndoDeletePet_DuplicateIsNoop(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	snap, err := svc.DeletePet(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	// la mascota vuelve por otro camino (p.ej. otra pestaña) antes del undo
	if _, err := svc.UndoDeletePet(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	svc.mu.Lock()
	svc.deletedPet = &snap
	svc.mu.Unlock()

	res, err := svc.UndoDeletePet(ctx)
	if err != nil {
		t.Fatalf("second undo: %v", err)
	}
	if res.Restored {
		t.Fatalf("expected restored=false on duplicate undo")
	}
	if n := len(svc.ListPets()); n != 1 {
		t.Fatalf("expected 1 pet, got %d", n)
	}
	vs, _ := svc.ListVaccinations(id)
	if len(vs) != 2 {
		t.Fatalf("vaccinations duplicated: %d", len(vs))
	}
	if _, ok := svc.PendingPetUndo(); ok {
		t.Fatalf("expected slot cleared")
	}
}

func TestDeletePet_SecondDeleteReplacesSlot(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	maxID := seedMax(t, svc)
	luna, err := svc.CreatePet(ctx, PetInput{Name: "Luna", Species: "CAT", BirthDate: day(-400)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.DeletePet(ctx, maxID); err != nil {
		t.Fatalf("delete max: %v", err)
	}
	if _, err := svc.DeletePet(ctx, luna.ID); err != nil {
		t.Fatalf("delete luna: %v", err)
	}

	res, err := svc.UndoDeletePet(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if res.Pet.ID != luna.ID {
		t.Fatalf("expected luna restored, got %s", res.Pet.ID)
	}
	if _, err := svc.GetPet(maxID); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("max should stay deleted, got %v", err)
	}
}

func TestDeletePet_NotFound(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.DeletePet(context.Background(), "nope"); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
	if _, ok := svc.PendingPetUndo(); ok {
		t.Fatalf("slot should stay empty")
	}
}

func TestDiscardPetUndo_Idempotent(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	if _, err := svc.DeletePet(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.DiscardPetUndo(ctx); err != nil {
			t.Fatalf("discard #%d: %v", i, err)
		}
	}
	if _, err := svc.UndoDeletePet(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestUndoDeletePet_MalformedSnapshotKeepsState(t *testing.T) {
	svc := newTestService(t, nil)
	seedMax(t, svc)

	svc.mu.Lock()
	svc.deletedPet = &cascade.Snapshot{}
	svc.mu.Unlock()

	if _, err := svc.UndoDeletePet(context.Background()); !errors.Is(err, cascade.ErrMalformedSnapshot) {
		t.Fatalf("expected ErrMalformedSnapshot, got %v", err)
	}
	if n := len(svc.ListPets()); n != 1 {
		t.Fatalf("state changed: %d pets", n)
	}
	if _, ok := svc.PendingPetUndo(); !ok {
		t.Fatalf("slot should be kept")
	}
}

func TestRecordUndo(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	ms, _ := svc.ListMedications(id)
	m, err := svc.DeleteMedication(ctx, id, ms[0].ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, restored, err := svc.UndoDeleteMedication(ctx)
	if err != nil || !restored || got.ID != m.ID {
		t.Fatalf("undo: restored=%v id=%s err=%v", restored, got.ID, err)
	}
	if _, _, err := svc.UndoDeleteMedication(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
}

func TestRecordUndo_DuplicateAndMissingPet(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)

	as, _ := svc.ListAppointments(id)
	a, err := svc.DeleteAppointment(ctx, id, as[0].ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	// reinsertada por fuera del undo: el undo no duplica
	svc.mu.Lock()
	svc.state.Appointments = append(svc.state.Appointments, a)
	svc.mu.Unlock()
	if _, restored, err := svc.UndoDeleteAppointment(ctx); err != nil || restored {
		t.Fatalf("expected silent no-op, restored=%v err=%v", restored, err)
	}
	if as, _ := svc.ListAppointments(id); len(as) != 1 {
		t.Fatalf("appointment duplicated: %d", len(as))
	}

	// la mascota dueña ya no existe: error y el slot se conserva
	vs, _ := svc.ListVaccinations(id)
	if _, err := svc.DeleteVaccination(ctx, id, vs[0].ID); err != nil {
		t.Fatalf("delete vaccination: %v", err)
	}
	if _, err := svc.DeletePet(ctx, id); err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	if _, _, err := svc.UndoDeleteVaccination(ctx); !errors.Is(err, cascade.ErrPetNotFound) {
		t.Fatalf("expected ErrPetNotFound, got %v", err)
	}
	if _, err := svc.UndoDeletePet(ctx); err != nil {
		t.Fatalf("undo pet: %v", err)
	}
	if _, restored, err := svc.UndoDeleteVaccination(ctx); err != nil || !restored {
		t.Fatalf("expected vaccination restored after pet, restored=%v err=%v", restored, err)
	}
}

func TestPersistenceFailure_KeepsChange(t *testing.T) {
	store := &flakyStore{StateStore: memory.NewStateStore()}
	svc := newTestService(t, store)
	ctx := context.Background()
	id := seedMax(t, svc)

	store.setFailing(true)
	snap, err := svc.DeletePet(ctx, id)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if snap.Pet == nil || snap.Pet.ID != id {
		t.Fatalf("expected snapshot despite persistence error: %+v", snap)
	}
	if len(svc.ListPets()) != 0 {
		t.Fatalf("in-memory delete should stand")
	}

	// el store sigue con la versión anterior
	b, err := store.Load(ctx, kv.KeyPets)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var stored []json.RawMessage
	if err := json.Unmarshal(b, &stored); err != nil || len(stored) != 1 {
		t.Fatalf("stored pets=%d err=%v", len(stored), err)
	}

	store.setFailing(false)
	if _, err := svc.UndoDeletePet(ctx); err != nil {
		t.Fatalf("undo after recovery: %v", err)
	}
}

func TestLoad_RoundTrip(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()

	first := newTestService(t, store)
	id := seedMax(t, first)
	other, err := first.CreatePet(ctx, PetInput{Name: "Luna", Species: "CAT", BirthDate: day(-400)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := first.DeletePet(ctx, other.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	second := newTestService(t, store)
	if err := second.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if pl := second.ListPets(); len(pl) != 1 || pl[0].ID != id {
		t.Fatalf("unexpected pets: %+v", pl)
	}
	vs, _ := second.ListVaccinations(id)
	if len(vs) != 2 {
		t.Fatalf("expected 2 vaccinations, got %d", len(vs))
	}

	// el slot de deshacer de mascota sobrevive el reinicio
	res, err := second.UndoDeletePet(ctx)
	if err != nil || !res.Restored || res.Pet.ID != other.ID {
		t.Fatalf("undo after reload: %+v err=%v", res, err)
	}
}

func TestLoad_EmptyStore(t *testing.T) {
	svc := newTestService(t, nil)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(svc.ListPets()) != 0 {
		t.Fatalf("expected empty state")
	}
	if _, ok := svc.PendingPetUndo(); ok {
		t.Fatalf("expected no pending undo")
	}
}

func TestLoad_CorruptPayload(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()
	if err := store.Save(ctx, kv.KeyPets, []byte("{not json")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := newTestService(t, store).Load(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadSampleData(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()
	id := seedMax(t, svc)
	if _, err := svc.DeletePet(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	c, err := svc.LoadSampleData(ctx)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if c.Pets != 3 || c.Vaccinations != 8 || c.Medications != 7 || c.Appointments != 5 {
		t.Fatalf("unexpected counts: %+v", c)
	}
	if _, err := svc.UndoDeletePet(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("sample data should clear undo, got %v", err)
	}
}
