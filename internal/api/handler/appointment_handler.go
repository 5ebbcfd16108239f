package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/agendahub/booking-backend/internal/api/middleware"
	"github.com/agendahub/booking-backend/internal/booking"
	"github.com/agendahub/booking-backend/internal/domain"
)

// AppointmentHandler handles booking, cancellation, and listing.
type AppointmentHandler struct {
	svc    *booking.Service
	logger *zap.Logger
}

func NewAppointmentHandler(svc *booking.Service, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger}
}

// appointmentView is the compact representation returned by the API.
type appointmentView struct {
	ID     uuid.UUID                `json:"id"`
	Status domain.AppointmentStatus `json:"status"`
}

// Create handles POST /api/v1/appointments
//
// @Summary  Book a slot
// @Tags     appointments
// @Accept   json
// @Produce  json
// @Param    body  body      domain.CreateAppointmentRequest  true  "Slot to book"
// @Success  201   {object}  appointmentView
// @Failure  400   {object}  map[string]string
// @Failure  409   {object}  map[string]string
// @Router   /api/v1/appointments [post]
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	appt, err := h.svc.Create(r.Context(), apimw.GetUserID(r.Context()), req)
	if err != nil {
		h.logger.Warn("create appointment failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, appointmentView{ID: appt.ID, Status: appt.Status})
}

// Cancel handles DELETE /api/v1/appointments/{id}
//
// @Summary  Cancel an appointment
// @Tags     appointments
// @Produce  json
// @Param    id   path      string  true  "Appointment UUID"
// @Success  200  {object}  appointmentView
// @Failure  403  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/appointments/{id} [delete]
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}

	appt, err := h.svc.Cancel(r.Context(), id, apimw.GetUserID(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, appointmentView{ID: appt.ID, Status: appt.Status})
}

// List handles GET /api/v1/appointments
//
// @Summary  List the caller's appointments, newest start first
// @Tags     appointments
// @Produce  json
// @Success  200  {array}  appointmentView
// @Router   /api/v1/appointments [get]
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.svc.ListMine(r.Context(), apimw.GetUserID(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}

	views := make([]appointmentView, len(appts))
	for i, appt := range appts {
		views[i] = appointmentView{ID: appt.ID, Status: appt.Status}
	}
	respondJSON(w, http.StatusOK, views)
}
