package tracker

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-tracker/internal/domain/cascade"
	"pet-health-tracker/internal/domain/pets"
	"pet-health-tracker/internal/domain/records"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/pets", func(pr chi.Router) {
		pr.Post("/", createPetHandler(svc))
		pr.Get("/", listPetsHandler(svc))

		pr.Get("/{petID}", getPetHandler(svc))
		pr.Patch("/{petID}", updatePetHandler(svc))
		pr.Delete("/{petID}", deletePetHandler(svc))
		pr.Get("/{petID}/overview", petOverviewHandler(svc))

		pr.Post("/{petID}/vaccinations", createVaccinationHandler(svc))
		pr.Get("/{petID}/vaccinations", listVaccinationsHandler(svc))
		pr.Patch("/{petID}/vaccinations/{id}", updateVaccinationHandler(svc))
		pr.Delete("/{petID}/vaccinations/{id}", deleteVaccinationHandler(svc))

		pr.Post("/{petID}/medications", createMedicationHandler(svc))
		pr.Get("/{petID}/medications", listMedicationsHandler(svc))
		pr.Patch("/{petID}/medications/{id}", updateMedicationHandler(svc))
		pr.Delete("/{petID}/medications/{id}", deleteMedicationHandler(svc))

		pr.Post("/{petID}/appointments", createAppointmentHandler(svc))
		pr.Get("/{petID}/appointments", listAppointmentsHandler(svc))
		pr.Patch("/{petID}/appointments/{id}", updateAppointmentHandler(svc))
		pr.Delete("/{petID}/appointments/{id}", deleteAppointmentHandler(svc))
	})

	r.Route("/undo", func(ur chi.Router) {
		ur.Get("/pet", pendingPetUndoHandler(svc))
		ur.Post("/pet", undoDeletePetHandler(svc))
		ur.Delete("/pet", discardPetUndoHandler(svc))

		ur.Post("/vaccination", undoDeleteVaccinationHandler(svc))
		ur.Post("/medication", undoDeleteMedicationHandler(svc))
		ur.Post("/appointment", undoDeleteAppointmentHandler(svc))
	})

	r.Post("/sample-data", loadSampleDataHandler(svc))
}

type createPetRequest struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`  // DOG, CAT, BIRD, SMALL_MAMMAL, REPTILE, FISH, OTHER
	Breed          string  `json:"breed"` // vacío => "Mixed"
	Sex            string  `json:"sex"`   // MALE, FEMALE, UNKNOWN (vacío => UNKNOWN)
	BirthDate      string  `json:"birthDate"`
	Weight         float64 `json:"weight"`
	ProfilePicture string  `json:"profilePicture"`
	Notes          string  `json:"notes"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name           *string  `json:"name"`
	Type           *string  `json:"type"`
	Breed          *string  `json:"breed"`
	Sex            *string  `json:"sex"`
	BirthDate      *string  `json:"birthDate"`
	Weight         *float64 `json:"weight"`
	ProfilePicture *string  `json:"profilePicture"`
	Notes          *string  `json:"notes"`
}

type petResponse struct {
	pets.Pet
	TypeLabel string `json:"typeLabel"`
	Age       string `json:"age"`
}

type deletePetResponse struct {
	Pet          pets.Pet `json:"pet"`
	Vaccinations int      `json:"vaccinations"`
	Medications  int      `json:"medications"`
	Appointments int      `json:"appointments"`
}

type overviewResponse struct {
	Pet            petResponse     `json:"pet"`
	AvatarFallback string          `json:"avatarFallback"`
	Summary        records.Summary `json:"summary"`

	UpcomingVaccinations []vaccinationResponse `json:"upcomingVaccinations"`
	UpcomingMedications  []medicationResponse  `json:"upcomingMedications"`
	UpcomingAppointments []appointmentResponse `json:"upcomingAppointments"`
}

// @Summary Crear mascota
// @Description Crea el perfil de una mascota. birthDate en YYYY-MM-DD o RFC3339, no puede estar en el futuro.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Router /pets [post]
func createPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := parseDate(req.BirthDate)
		if err != nil {
			http.Error(w, "birthDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
			return
		}

		p, err := svc.CreatePet(r.Context(), PetInput{
			Name:           req.Name,
			Species:        req.Type,
			Breed:          req.Breed,
			Sex:            req.Sex,
			BirthDate:      bd,
			Weight:         req.Weight,
			ProfilePicture: req.ProfilePicture,
			Notes:          req.Notes,
		})
		respond(w, http.StatusCreated, func() any { return toPetResponse(p, svc.now()) }, err)
	}
}

// @Summary Listar mascotas
// @Tags pets
// @Produce json
// @Success 200 {array} petResponse
// @Router /pets [get]
func listPetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := svc.ListPets()
		now := svc.now()

		out := make([]petResponse, 0, len(items))
		for _, p := range items {
			out = append(out, toPetResponse(p, now))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// @Summary Ver mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetPet(chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any { return toPetResponse(p, svc.now()) }, err)
	}
}

// @Summary Actualizar mascota
// @Description PATCH parcial: solo se modifican los campos enviados.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} petResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch := PetPatch{
			Name:           req.Name,
			Species:        req.Type,
			Breed:          req.Breed,
			Sex:            req.Sex,
			Weight:         req.Weight,
			ProfilePicture: req.ProfilePicture,
			Notes:          req.Notes,
		}
		if req.BirthDate != nil {
			bd, err := parseDate(*req.BirthDate)
			if err != nil {
				http.Error(w, "birthDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
				return
			}
			patch.BirthDate = &bd
		}

		p, err := svc.UpdatePet(r.Context(), chi.URLParam(r, "petID"), patch)
		respond(w, http.StatusOK, func() any { return toPetResponse(p, svc.now()) }, err)
	}
}

// @Summary Borrar mascota
// @Description Borra la mascota junto con sus vacunas, medicaciones y citas. Se puede deshacer con POST /undo/pet hasta el próximo borrado.
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} deletePetResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.DeletePet(r.Context(), chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any {
			nv, nm, na := snap.Counts()
			return deletePetResponse{Pet: *snap.Pet, Vaccinations: nv, Medications: nm, Appointments: na}
		}, err)
	}
}

// @Summary Resumen de mascota
// @Description Edad, contadores por estado y próximos items (máx. 3 por tipo).
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} overviewResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/overview [get]
func petOverviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ov, err := svc.PetOverview(chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any {
			now := svc.now()
			pr := toPetResponse(ov.Pet, now)
			pr.Age = ov.Age
			return overviewResponse{
				Pet:                  pr,
				AvatarFallback:       ov.AvatarFallback,
				Summary:              ov.Summary,
				UpcomingVaccinations: toVaccinationResponses(ov.UpcomingVaccinations, now),
				UpcomingMedications:  toMedicationResponses(ov.UpcomingMedications, now),
				UpcomingAppointments: toAppointmentResponses(ov.UpcomingAppointments, now),
			}
		}, err)
	}
}

// @Summary Ver borrado de mascota pendiente
// @Tags undo
// @Produce json
// @Success 200 {object} deletePetResponse
// @Failure 404 {string} string "nothing to undo"
// @Router /undo/pet [get]
func pendingPetUndoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, ok := svc.PendingPetUndo()
		if !ok || snap.Pet == nil {
			http.Error(w, "nothing to undo", http.StatusNotFound)
			return
		}
		nv, nm, na := snap.Counts()
		writeJSON(w, http.StatusOK, deletePetResponse{Pet: *snap.Pet, Vaccinations: nv, Medications: nm, Appointments: na})
	}
}

// @Summary Deshacer borrado de mascota
// @Description Restaura la última mascota borrada con todos sus registros. Si ya fue restaurada responde restored=false sin duplicar.
// @Tags undo
// @Produce json
// @Success 200 {object} PetUndoResult
// @Failure 404 {string} string "nothing to undo"
// @Failure 500 {string} string "malformed pet snapshot"
// @Router /undo/pet [post]
func undoDeletePetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.UndoDeletePet(r.Context())
		respond(w, http.StatusOK, func() any { return res }, err)
	}
}

// @Summary Descartar deshacer de mascota
// @Tags undo
// @Success 204
// @Router /undo/pet [delete]
func discardPetUndoHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DiscardPetUndo(r.Context()); err != nil {
			setPersistenceWarning(w, err)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary Cargar datos de ejemplo
// @Description Reemplaza todo el estado por mascotas y registros de ejemplo.
// @Tags sample
// @Produce json
// @Success 200 {object} Counts
// @Router /sample-data [post]
func loadSampleDataHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.LoadSampleData(r.Context())
		respond(w, http.StatusOK, func() any { return c }, err)
	}
}

func toPetResponse(p pets.Pet, now time.Time) petResponse {
	return petResponse{
		Pet:       p,
		TypeLabel: p.Species.Label(),
		Age:       pets.Age(p.BirthDate, now),
	}
}

// respond escribe body() con status, o el error mapeado.
// Un ErrPersistence no corta la respuesta: el cambio ya se aplicó en memoria.
func respond(w http.ResponseWriter, status int, body func() any, err error) {
	if err != nil && !errors.Is(err, ErrPersistence) {
		writeError(w, err)
		return
	}
	setPersistenceWarning(w, err)
	writeJSON(w, status, body())
}

func setPersistenceWarning(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrPersistence) {
		w.Header().Set("Warning", `199 - "changes applied but not persisted"`)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, cascade.ErrPetNotFound):
		http.Error(w, "pet not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNothingToUndo):
		http.Error(w, "nothing to undo", http.StatusNotFound)
	case errors.Is(err, cascade.ErrMalformedSnapshot):
		http.Error(w, "malformed pet snapshot", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseDate acepta YYYY-MM-DD, RFC3339 o fecha+hora sin zona (input datetime-local).
// Vacío devuelve la fecha cero; el service decide si es requerida.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// nullableDate distingue "no enviado" de null en un PATCH.
type nullableDate struct {
	Present bool
	Value   *string
}

func (d *nullableDate) UnmarshalJSON(b []byte) error {
	d.Present = true
	if string(b) == "null" {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d.Value = &s
	return nil
}
