package records

import (
	"testing"
)

func vaccinationIDs(list []Vaccination) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, v.ID)
	}
	return out
}

func medicationIDs(list []Medication) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.ID)
	}
	return out
}

func appointmentIDs(list []Appointment) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSortVaccinations_AdministeredDominatesDueDate(t *testing.T) {
	in := []Vaccination{
		{ID: "done", DueDate: day(10), AdministeredDate: ptr(day(-1))},
		{ID: "pending", DueDate: day(-5)},
	}

	got := SortVaccinations(in)
	assertOrder(t, vaccinationIDs(got), []string{"pending", "done"})

	// input intacto
	assertOrder(t, vaccinationIDs(in), []string{"done", "pending"})
}

func TestSortVaccinations_AscendingWithinPartition_StableTies(t *testing.T) {
	in := []Vaccination{
		{ID: "a2", DueDate: day(20), AdministeredDate: ptr(day(-2))},
		{ID: "p3", DueDate: day(9)},
		{ID: "a1", DueDate: day(-3), AdministeredDate: ptr(day(-9))},
		{ID: "p1", DueDate: day(1)},
		{ID: "p2", DueDate: day(1)}, // empate con p1: mantiene orden de inserción
	}

	got := SortVaccinations(in)
	assertOrder(t, vaccinationIDs(got), []string{"p1", "p2", "p3", "a1", "a2"})
}

func TestSortMedications_ActiveUpcomingCompleted(t *testing.T) {
	in := []Medication{
		{ID: "done-old", StartDate: day(-60), EndDate: day(-30)},
		{ID: "next", StartDate: day(2), EndDate: day(10)},
		{ID: "active-late", StartDate: day(-1), EndDate: day(5)},
		{ID: "done-new", StartDate: day(-20), EndDate: day(-1)},
		{ID: "active-early", StartDate: day(-9), EndDate: day(0)},
		{ID: "later", StartDate: day(1), EndDate: day(3)},
	}

	got := SortMedications(in, testNow)
	assertOrder(t, medicationIDs(got), []string{
		"active-early", "active-late",
		"later", "next",
		"done-old", "done-new",
	})
}

func TestSortAppointments_FutureAscThenPastDesc(t *testing.T) {
	in := []Appointment{
		{ID: "past-old", Date: day(-30)},
		{ID: "future-far", Date: day(40)},
		{ID: "today-early", Date: day(0).Add(8 * 3600 * 1e9)},
		{ID: "past-recent", Date: day(-2)},
		{ID: "future-near", Date: day(3)},
	}

	got := SortAppointments(in, testNow)
	assertOrder(t, appointmentIDs(got), []string{
		"today-early", "future-near", "future-far",
		"past-recent", "past-old",
	})
}

func TestSorters_EmptyInput(t *testing.T) {
	if got := SortVaccinations(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := SortMedications(nil, testNow); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
	if got := SortAppointments(nil, testNow); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
