package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/agendahub/booking-backend/internal/api/middleware"
	"github.com/agendahub/booking-backend/internal/auth"
	"github.com/agendahub/booking-backend/internal/domain"
)

// AuthHandler handles signup, login, refresh rotation, and logout.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// Signup handles POST /api/v1/auth/signup
//
// @Summary  Create an account
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      domain.SignupRequest  true  "Account details"
// @Success  201   {object}  domain.TokenPair
// @Failure  409   {object}  map[string]string
// @Router   /api/v1/auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		h.logger.Warn("signup failed",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, pair)
}

// Login handles POST /api/v1/auth/login
//
// @Summary  Log in with email and password
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      domain.LoginRequest  true  "Credentials"
// @Success  200   {object}  domain.TokenPair
// @Failure  401   {object}  map[string]string
// @Router   /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.svc.Login(r.Context(), req)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh
//
// @Summary  Rotate a refresh token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      domain.RefreshRequest  true  "Refresh token"
// @Success  200   {object}  domain.TokenPair
// @Failure  401   {object}  map[string]string
// @Router   /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

// Logout handles POST /api/v1/auth/logout
//
// @Summary  Revoke a refresh token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body  body      domain.RefreshRequest  true  "Refresh token"
// @Success  200   {object}  map[string]bool
// @Router   /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.svc.Logout(r.Context(), req.RefreshToken); err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
