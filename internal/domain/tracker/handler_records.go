package tracker

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-health-tracker/internal/domain/records"
)

// statusFields se agrega a cada registro en las respuestas.
type statusFields struct {
	Status      records.Status `json:"status"`
	StatusLabel string         `json:"statusLabel"`
	Badge       records.Badge  `json:"badge"`
}

func statusOf(s records.Status) statusFields {
	return statusFields{Status: s, StatusLabel: s.Label(), Badge: s.Badge()}
}

type vaccinationResponse struct {
	records.Vaccination
	statusFields
}

type medicationResponse struct {
	records.Medication
	statusFields
}

type appointmentResponse struct {
	records.Appointment
	statusFields
}

type vaccinationUndoResponse struct {
	Restored    bool                `json:"restored"`
	Vaccination vaccinationResponse `json:"vaccination"`
}

type medicationUndoResponse struct {
	Restored   bool               `json:"restored"`
	Medication medicationResponse `json:"medication"`
}

type appointmentUndoResponse struct {
	Restored    bool                `json:"restored"`
	Appointment appointmentResponse `json:"appointment"`
}

func toVaccinationResponse(v records.Vaccination, now time.Time) vaccinationResponse {
	return vaccinationResponse{Vaccination: v, statusFields: statusOf(records.ClassifyVaccination(v, now))}
}

func toMedicationResponse(m records.Medication, now time.Time) medicationResponse {
	return medicationResponse{Medication: m, statusFields: statusOf(records.ClassifyMedication(m, now))}
}

func toAppointmentResponse(a records.Appointment, now time.Time) appointmentResponse {
	return appointmentResponse{Appointment: a, statusFields: statusOf(records.ClassifyAppointment(a, now))}
}

func toVaccinationResponses(list []records.Vaccination, now time.Time) []vaccinationResponse {
	out := make([]vaccinationResponse, 0, len(list))
	for _, v := range list {
		out = append(out, toVaccinationResponse(v, now))
	}
	return out
}

func toMedicationResponses(list []records.Medication, now time.Time) []medicationResponse {
	out := make([]medicationResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMedicationResponse(m, now))
	}
	return out
}

func toAppointmentResponses(list []records.Appointment, now time.Time) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentResponse(a, now))
	}
	return out
}

// ---- vaccinations

type createVaccinationRequest struct {
	Name             string `json:"name"`
	DueDate          string `json:"dueDate"`
	AdministeredDate string `json:"administeredDate"` // vacío = pendiente
	Notes            string `json:"notes"`
}

type updateVaccinationRequest struct {
	Name    *string `json:"name"`
	DueDate *string `json:"dueDate"`
	// null => vuelve a pendiente
	AdministeredDate nullableDate `json:"administeredDate" swaggertype:"string"`
	Notes            *string      `json:"notes"`
}

// @Summary Registrar vacuna
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createVaccinationRequest true "Vacuna; fechas YYYY-MM-DD o RFC3339"
// @Success 201 {object} vaccinationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/vaccinations [post]
func createVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		due, err := parseDate(req.DueDate)
		if err != nil {
			http.Error(w, "dueDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
			return
		}
		in := VaccinationInput{Name: req.Name, DueDate: due, Notes: req.Notes}
		if req.AdministeredDate != "" {
			ad, err := parseDate(req.AdministeredDate)
			if err != nil {
				http.Error(w, "administeredDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
				return
			}
			in.AdministeredDate = &ad
		}

		v, err := svc.CreateVaccination(r.Context(), chi.URLParam(r, "petID"), in)
		respond(w, http.StatusCreated, func() any { return toVaccinationResponse(v, svc.now()) }, err)
	}
}

// @Summary Listar vacunas
// @Description Pendientes primero (por vencimiento), aplicadas al final.
// @Tags vaccinations
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} vaccinationResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/vaccinations [get]
func listVaccinationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListVaccinations(chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any { return toVaccinationResponses(list, svc.now()) }, err)
	}
}

// @Summary Actualizar vacuna
// @Tags vaccinations
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la vacuna"
// @Param payload body updateVaccinationRequest true "Campos a modificar; administeredDate null la vuelve pendiente"
// @Success 200 {object} vaccinationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/vaccinations/{id} [patch]
func updateVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateVaccinationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch := VaccinationPatch{Name: req.Name, Notes: req.Notes}
		if req.DueDate != nil {
			due, err := parseDate(*req.DueDate)
			if err != nil {
				http.Error(w, "dueDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
				return
			}
			patch.DueDate = &due
		}
		if req.AdministeredDate.Present {
			if req.AdministeredDate.Value == nil || *req.AdministeredDate.Value == "" {
				patch.ClearAdministered = true
			} else {
				ad, err := parseDate(*req.AdministeredDate.Value)
				if err != nil {
					http.Error(w, "administeredDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
					return
				}
				patch.AdministeredDate = &ad
			}
		}

		v, err := svc.UpdateVaccination(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"), patch)
		respond(w, http.StatusOK, func() any { return toVaccinationResponse(v, svc.now()) }, err)
	}
}

// @Summary Borrar vacuna
// @Description Se puede deshacer con POST /undo/vaccination hasta el próximo borrado de vacuna.
// @Tags vaccinations
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la vacuna"
// @Success 200 {object} vaccinationResponse
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/vaccinations/{id} [delete]
func deleteVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.DeleteVaccination(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"))
		respond(w, http.StatusOK, func() any { return toVaccinationResponse(v, svc.now()) }, err)
	}
}

// @Summary Deshacer borrado de vacuna
// @Tags undo
// @Produce json
// @Success 200 {object} vaccinationUndoResponse
// @Failure 404 {string} string "nothing to undo / pet not found"
// @Router /undo/vaccination [post]
func undoDeleteVaccinationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, restored, err := svc.UndoDeleteVaccination(r.Context())
		respond(w, http.StatusOK, func() any {
			return vaccinationUndoResponse{Restored: restored, Vaccination: toVaccinationResponse(v, svc.now())}
		}, err)
	}
}

// ---- medications

type createMedicationRequest struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"` // Once daily, Twice daily, ... o texto libre
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

type updateMedicationRequest struct {
	Name      *string `json:"name"`
	Dosage    *string `json:"dosage"`
	Frequency *string `json:"frequency"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Notes     *string `json:"notes"`
}

// @Summary Registrar medicación
// @Tags medications
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createMedicationRequest true "Medicación; endDate >= startDate"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		start, err := parseDate(req.StartDate)
		if err != nil {
			http.Error(w, "startDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			http.Error(w, "endDate must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
			return
		}

		m, err := svc.CreateMedication(r.Context(), chi.URLParam(r, "petID"), MedicationInput{
			Name:      req.Name,
			Dosage:    req.Dosage,
			Frequency: req.Frequency,
			StartDate: start,
			EndDate:   end,
			Notes:     req.Notes,
		})
		respond(w, http.StatusCreated, func() any { return toMedicationResponse(m, svc.now()) }, err)
	}
}

// @Summary Listar medicaciones
// @Description Activas, luego próximas, luego completadas; cada grupo por fecha de inicio.
// @Tags medications
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} medicationResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListMedications(chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any { return toMedicationResponses(list, svc.now()) }, err)
	}
}

// @Summary Actualizar medicación
// @Tags medications
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la medicación"
// @Param payload body updateMedicationRequest true "Campos a modificar"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/medications/{id} [patch]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch := MedicationPatch{Name: req.Name, Dosage: req.Dosage, Frequency: req.Frequency, Notes: req.Notes}
		for _, f := range []struct {
			name string
			in   *string
			out  **time.Time
		}{
			{"startDate", req.StartDate, &patch.StartDate},
			{"endDate", req.EndDate, &patch.EndDate},
		} {
			if f.in == nil {
				continue
			}
			t, err := parseDate(*f.in)
			if err != nil {
				http.Error(w, f.name+" must be YYYY-MM-DD or RFC3339", http.StatusBadRequest)
				return
			}
			*f.out = &t
		}

		m, err := svc.UpdateMedication(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"), patch)
		respond(w, http.StatusOK, func() any { return toMedicationResponse(m, svc.now()) }, err)
	}
}

// @Summary Borrar medicación
// @Tags medications
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/medications/{id} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.DeleteMedication(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"))
		respond(w, http.StatusOK, func() any { return toMedicationResponse(m, svc.now()) }, err)
	}
}

// @Summary Deshacer borrado de medicación
// @Tags undo
// @Produce json
// @Success 200 {object} medicationUndoResponse
// @Failure 404 {string} string "nothing to undo / pet not found"
// @Router /undo/medication [post]
func undoDeleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, restored, err := svc.UndoDeleteMedication(r.Context())
		respond(w, http.StatusOK, func() any {
			return medicationUndoResponse{Restored: restored, Medication: toMedicationResponse(m, svc.now())}
		}, err)
	}
}

// ---- appointments

type createAppointmentRequest struct {
	VetName  string `json:"vetName"`
	VetPhone string `json:"vetPhone"`
	Date     string `json:"date"` // fecha + hora, p.ej. 2026-10-20T10:30
	Reason   string `json:"reason"`
	Notes    string `json:"notes"`
}

type updateAppointmentRequest struct {
	VetName  *string `json:"vetName"`
	VetPhone *string `json:"vetPhone"`
	Date     *string `json:"date"`
	Reason   *string `json:"reason"`
	Notes    *string `json:"notes"`
}

// @Summary Agendar cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body createAppointmentRequest true "Cita"
// @Success 201 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		date, err := parseDate(req.Date)
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC3339", http.StatusBadRequest)
			return
		}

		a, err := svc.CreateAppointment(r.Context(), chi.URLParam(r, "petID"), AppointmentInput{
			VetName:  req.VetName,
			VetPhone: req.VetPhone,
			Date:     date,
			Reason:   req.Reason,
			Notes:    req.Notes,
		})
		respond(w, http.StatusCreated, func() any { return toAppointmentResponse(a, svc.now()) }, err)
	}
}

// @Summary Listar citas
// @Description Próximas (hoy incluido) de la más cercana a la más lejana, luego pasadas de la más reciente a la más vieja.
// @Tags appointments
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} appointmentResponse
// @Failure 404 {string} string "pet not found"
// @Router /pets/{petID}/appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListAppointments(chi.URLParam(r, "petID"))
		respond(w, http.StatusOK, func() any { return toAppointmentResponses(list, svc.now()) }, err)
	}
}

// @Summary Actualizar cita
// @Tags appointments
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la cita"
// @Param payload body updateAppointmentRequest true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/appointments/{id} [patch]
func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		patch := AppointmentPatch{VetName: req.VetName, VetPhone: req.VetPhone, Reason: req.Reason, Notes: req.Notes}
		if req.Date != nil {
			date, err := parseDate(*req.Date)
			if err != nil {
				http.Error(w, "date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC3339", http.StatusBadRequest)
				return
			}
			patch.Date = &date
		}

		a, err := svc.UpdateAppointment(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"), patch)
		respond(w, http.StatusOK, func() any { return toAppointmentResponse(a, svc.now()) }, err)
	}
}

// @Summary Cancelar cita
// @Tags appointments
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param id path string true "ID de la cita"
// @Success 200 {object} appointmentResponse
// @Failure 404 {string} string "not found"
// @Router /pets/{petID}/appointments/{id} [delete]
func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.DeleteAppointment(r.Context(), chi.URLParam(r, "petID"), chi.URLParam(r, "id"))
		respond(w, http.StatusOK, func() any { return toAppointmentResponse(a, svc.now()) }, err)
	}
}

// @Summary Deshacer borrado de cita
// @Tags undo
// @Produce json
// @Success 200 {object} appointmentUndoResponse
// @Failure 404 {string} string "nothing to undo / pet not found"
// @Router /undo/appointment [post]
func undoDeleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, restored, err := svc.UndoDeleteAppointment(r.Context())
		respond(w, http.StatusOK, func() any {
			return appointmentUndoResponse{Restored: restored, Appointment: toAppointmentResponse(a, svc.now())}
		}, err)
	}
}
