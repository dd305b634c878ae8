package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pet-health-tracker/internal/middleware"
	"pet-health-tracker/internal/router"
)

func TestHTTP_EndToEnd_DeleteAndUndoPet(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	inDays := func(n int) string { return time.Now().AddDate(0, 0, n).Format("2006-01-02") }

	// 1) Crear mascota
	petID := createPet(t, ts.URL, map[string]any{
		"name":      "Max",
		"type":      "DOG",
		"breed":     "Beagle",
		"sex":       "MALE",
		"birthDate": time.Now().AddDate(-3, 0, 0).Format("2006-01-02"),
		"weight":    12.5,
	})

	// 2) Registros: 2 vacunas, 1 medicación, 1 cita
	rabies := createRecord(t, ts.URL, petID, "vaccinations", map[string]any{
		"name":    "Rabies",
		"dueDate": inDays(3),
	})
	createRecord(t, ts.URL, petID, "vaccinations", map[string]any{
		"name":             "DHPP",
		"dueDate":          inDays(-2),
		"administeredDate": inDays(-2),
	})
	createRecord(t, ts.URL, petID, "medications", map[string]any{
		"name":      "Apoquel",
		"dosage":    "16mg",
		"frequency": "Once daily",
		"startDate": inDays(-1),
		"endDate":   inDays(5),
	})
	createRecord(t, ts.URL, petID, "appointments", map[string]any{
		"vetName": "Dr. Rivera",
		"date":    time.Now().AddDate(0, 0, 1).Format("2006-01-02T15:04"),
		"reason":  "Wellness Exam",
	})

	// 3) Listado de vacunas: pendiente primero, con estado
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/vaccinations", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list vaccinations, got %d body=%s", st, string(body))
		}
		var list []struct {
			ID          string `json:"id"`
			Status      string `json:"status"`
			StatusLabel string `json:"statusLabel"`
			Badge       string `json:"badge"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 2 || list[0].ID != rabies {
			t.Fatalf("unexpected vaccinations order: %s", string(body))
		}
		if list[0].Status != "due-soon" || list[0].StatusLabel != "Due Soon" || list[0].Badge != "warning" {
			t.Fatalf("unexpected status fields: %+v", list[0])
		}
		if list[1].Status != "completed" {
			t.Fatalf("expected completed last, got %+v", list[1])
		}
	}

	// 4) Borrar mascota: cascada
	{
		st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete pet, got %d body=%s", st, string(body))
		}
		var resp struct {
			Vaccinations int `json:"vaccinations"`
			Medications  int `json:"medications"`
			Appointments int `json:"appointments"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Vaccinations != 2 || resp.Medications != 1 || resp.Appointments != 1 {
			t.Fatalf("unexpected cascade counts: %s", string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/pets/"+petID, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/undo/pet", nil)
		if st != http.StatusOK {
			t.Fatalf("expected pending undo, got %d", st)
		}
	}

	// 5) Deshacer: vuelve todo
	{
		st, body := doReq(t, ts.URL, "POST", "/undo/pet", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 undo pet, got %d body=%s", st, string(body))
		}
		var resp struct {
			Restored bool `json:"restored"`
		}
		_ = json.Unmarshal(body, &resp)
		if !resp.Restored {
			t.Fatalf("expected restored=true, body=%s", string(body))
		}
	}
	for kind, want := range map[string]int{"vaccinations": 2, "medications": 1, "appointments": 1} {
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/"+kind, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list %s, got %d", kind, st)
		}
		var list []json.RawMessage
		_ = json.Unmarshal(body, &list)
		if len(list) != want {
			t.Fatalf("expected %d %s after undo, got %d", want, kind, len(list))
		}
	}

	// 6) Segundo undo: el slot ya se vació
	{
		st, _ := doReq(t, ts.URL, "POST", "/undo/pet", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 on second undo, got %d", st)
		}
	}

	// 7) Overview
	{
		st, body := doReq(t, ts.URL, "GET", "/pets/"+petID+"/overview", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 overview, got %d body=%s", st, string(body))
		}
		var ov struct {
			AvatarFallback string `json:"avatarFallback"`
			Summary        struct {
				VaccinationsDueSoon int `json:"vaccinationsDueSoon"`
				MedicationsActive   int `json:"medicationsActive"`
			} `json:"summary"`
		}
		_ = json.Unmarshal(body, &ov)
		if ov.AvatarFallback != "MA" || ov.Summary.VaccinationsDueSoon != 1 || ov.Summary.MedicationsActive != 1 {
			t.Fatalf("unexpected overview: %s", string(body))
		}
	}
}

func TestHTTP_RecordDeleteAndUndo(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	petID := createPet(t, ts.URL, map[string]any{
		"name":      "Luna",
		"type":      "CAT",
		"birthDate": "2022-05-01",
	})
	medID := createRecord(t, ts.URL, petID, "medications", map[string]any{
		"name":      "Methimazole",
		"dosage":    "5mg",
		"frequency": "Twice daily",
		"startDate": "2026-01-01",
		"endDate":   "2026-02-01",
	})

	if st, body := doReq(t, ts.URL, "DELETE", "/pets/"+petID+"/medications/"+medID, nil); st != http.StatusOK {
		t.Fatalf("expected 200 delete medication, got %d body=%s", st, string(body))
	}
	st, body := doReq(t, ts.URL, "POST", "/undo/medication", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 undo medication, got %d body=%s", st, string(body))
	}
	var resp struct {
		Restored   bool `json:"restored"`
		Medication struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"medication"`
	}
	_ = json.Unmarshal(body, &resp)
	if !resp.Restored || resp.Medication.ID != medID {
		t.Fatalf("unexpected undo body=%s", string(body))
	}

	if st, _ := doReq(t, ts.URL, "POST", "/undo/medication", nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 nothing to undo, got %d", st)
	}
}

func TestHTTP_ValidationErrors(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	// fecha de nacimiento en el futuro => 400
	st, _ := doReq(t, ts.URL, "POST", "/pets", map[string]any{
		"name":      "Max",
		"type":      "DOG",
		"birthDate": time.Now().AddDate(0, 0, 2).Format("2006-01-02"),
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for future birth date, got %d", st)
	}

	petID := createPet(t, ts.URL, map[string]any{
		"name":      "Max",
		"type":      "DOG",
		"birthDate": "2020-01-01",
	})

	// fin antes del inicio => 400
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/medications", map[string]any{
		"name":      "Clavamox",
		"dosage":    "375mg",
		"frequency": "Twice daily",
		"startDate": "2026-03-10",
		"endDate":   "2026-03-01",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for end before start, got %d", st)
	}

	// fecha ilegible => 400
	st, _ = doReq(t, ts.URL, "POST", "/pets/"+petID+"/vaccinations", map[string]any{
		"name":    "Rabies",
		"dueDate": "next tuesday",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", st)
	}

	// mascota inexistente => 404
	st, _ = doReq(t, ts.URL, "GET", "/pets/nope/appointments", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pet, got %d", st)
	}
}

func TestHTTP_SampleData(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "POST", "/sample-data", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 sample data, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/pets", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list pets, got %d", st)
	}
	var list []struct {
		Name      string `json:"name"`
		TypeLabel string `json:"typeLabel"`
	}
	_ = json.Unmarshal(body, &list)
	if len(list) != 3 || list[0].Name != "Max" || list[0].TypeLabel != "dog" {
		t.Fatalf("unexpected pets: %s", string(body))
	}
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "custom_total", Help: "custom counter"}))

	ts := httptest.NewServer(router.NewRouter(router.Options{Metrics: reg}))
	defer ts.Close()

	if st, body := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %s", st, string(body))
	}
	st, body := doReq(t, ts.URL, "GET", "/metrics", nil)
	if st != http.StatusOK || !strings.Contains(string(body), "custom_total") {
		t.Fatalf("metrics: %d %s", st, string(body))
	}
}

func TestHTTP_RateLimit(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		Limiter: middleware.NewIPRateLimiter(0.001, 1),
	}))
	defer ts.Close()

	if st, _ := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusOK {
		t.Fatalf("first request: %d", st)
	}
	if st, _ := doReq(t, ts.URL, "GET", "/health", nil); st != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", st)
	}
}

func createPet(t *testing.T, baseURL string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create pet, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create pet: missing id body=%s", string(body))
	}
	return resp.ID
}

func createRecord(t *testing.T, baseURL, petID, kind string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/pets/"+petID+"/"+kind, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create %s, got %d body=%s", kind, st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create %s: missing id body=%s", kind, string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
