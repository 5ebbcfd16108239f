package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apimw "github.com/agendahub/booking-backend/internal/api/middleware"
	"github.com/agendahub/booking-backend/internal/availability"
	"github.com/agendahub/booking-backend/internal/domain"
	"github.com/agendahub/booking-backend/internal/provider"
)

// ProviderHandler handles provider CRUD, work-hour management, and the
// availability endpoint.
type ProviderHandler struct {
	svc    *provider.Service
	avail  *availability.Engine
	logger *zap.Logger
}

func NewProviderHandler(svc *provider.Service, avail *availability.Engine, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{svc: svc, avail: avail, logger: logger}
}

// Create handles POST /api/v1/providers
//
// @Summary  Register a provider owned by the caller
// @Tags     providers
// @Accept   json
// @Produce  json
// @Param    body  body      domain.UpsertProviderRequest  true  "Provider details"
// @Success  201   {object}  domain.Provider
// @Router   /api/v1/providers [post]
func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.svc.Create(r.Context(), apimw.GetUserID(r.Context()), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

// List handles GET /api/v1/providers
//
// @Summary  List providers
// @Tags     providers
// @Produce  json
// @Success  200  {array}  domain.Provider
// @Router   /api/v1/providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	providers, err := h.svc.List(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, providers)
}

// Get handles GET /api/v1/providers/{id}
//
// @Summary  Get one provider
// @Tags     providers
// @Produce  json
// @Param    id   path      string  true  "Provider UUID"
// @Success  200  {object}  domain.Provider
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/providers/{id} [get]
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Update handles PATCH /api/v1/providers/{id}
//
// @Summary  Update a provider (owner only)
// @Tags     providers
// @Accept   json
// @Produce  json
// @Param    id    path      string                        true  "Provider UUID"
// @Param    body  body      domain.UpsertProviderRequest  true  "New details"
// @Success  200   {object}  domain.Provider
// @Failure  403   {object}  map[string]string
// @Router   /api/v1/providers/{id} [patch]
func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}
	var req domain.UpsertProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	p, err := h.svc.Update(r.Context(), id, apimw.GetUserID(r.Context()), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// Availability handles GET /api/v1/providers/{id}/availability
//
// @Summary  Free slot starts for a provider on a local date
// @Tags     providers
// @Produce  json
// @Param    id    path      string  true  "Provider UUID"
// @Param    date  query     string  true  "Local date, YYYY-MM-DD"
// @Param    tz    query     string  true  "IANA timezone"
// @Success  200   {array}   string
// @Failure  400   {object}  map[string]string
// @Router   /api/v1/providers/{id}/availability [get]
func (h *ProviderHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}

	slots, err := h.avail.FreeSlots(r.Context(), id, r.URL.Query().Get("date"), r.URL.Query().Get("tz"))
	if err != nil {
		h.logger.Warn("availability lookup failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

// AddWorkHour handles POST /api/v1/providers/{id}/work-hours
//
// @Summary  Add a weekly work-hour block (owner only)
// @Tags     providers
// @Accept   json
// @Produce  json
// @Param    id    path      string                       true  "Provider UUID"
// @Param    body  body      domain.CreateWorkHourRequest true  "Block to add"
// @Success  201   {object}  domain.WorkHourBlock
// @Failure  400   {object}  map[string]string
// @Failure  403   {object}  map[string]string
// @Router   /api/v1/providers/{id}/work-hours [post]
func (h *ProviderHandler) AddWorkHour(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}
	var req domain.CreateWorkHourRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	block, err := h.svc.AddWorkHour(r.Context(), id, apimw.GetUserID(r.Context()), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, block)
}

// ListWorkHours handles GET /api/v1/providers/{id}/work-hours
//
// @Summary  List a provider's weekly work-hour blocks
// @Tags     providers
// @Produce  json
// @Param    id   path     string  true  "Provider UUID"
// @Success  200  {array}  domain.WorkHourBlock
// @Router   /api/v1/providers/{id}/work-hours [get]
func (h *ProviderHandler) ListWorkHours(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}
	blocks, err := h.svc.ListWorkHours(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, blocks)
}

// DeleteWorkHour handles DELETE /api/v1/providers/{id}/work-hours/{whid}
//
// @Summary  Remove a work-hour block (owner only)
// @Tags     providers
// @Produce  json
// @Param    id    path      string  true  "Provider UUID"
// @Param    whid  path      int     true  "Work-hour block id"
// @Success  200   {object}  map[string]bool
// @Failure  403   {object}  map[string]string
// @Failure  404   {object}  map[string]string
// @Router   /api/v1/providers/{id}/work-hours/{whid} [delete]
func (h *ProviderHandler) DeleteWorkHour(w http.ResponseWriter, r *http.Request) {
	id, ok := h.providerID(w, r)
	if !ok {
		return
	}
	workHourID, err := strconv.ParseInt(chi.URLParam(r, "whid"), 10, 64)
	if err != nil {
		respondError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}

	if err := h.svc.DeleteWorkHour(r.Context(), id, apimw.GetUserID(r.Context()), workHourID); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *ProviderHandler) providerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}
