package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// logged and reported without detail.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, finance.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("Request failed: %v", err)
		writeJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func identity(r *http.Request) service.Identity {
	who, _ := middleware.IdentityFrom(r.Context())
	return who
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	token, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// QuoteEMI prices a loan without storing it
func (h *Handler) QuoteEMI(w http.ResponseWriter, r *http.Request) {
	var req models.EMIQuoteRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	quote, err := h.svc.QuoteEMI(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// CalculateScore scores credit factors without storing them
func (h *Handler) CalculateScore(w http.ResponseWriter, r *http.Request) {
	var req models.CibilFactorsRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	res, err := h.svc.CalculateScore(req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ScoreCategory bands a score given in the path
func (h *Handler) ScoreCategory(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.Atoi(mux.Vars(r)["score"])
	if err != nil {
		h.badRequest(w, "score must be an integer")
		return
	}
	writeJSON(w, http.StatusOK, models.ScoreResult{Score: score, Category: finance.Categorize(score)})
}

// Rates lists the annual rate per loan type
func (h *Handler) Rates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Rates())
}

// KeyRate returns the central bank key rate plus the bank margin
func (h *Handler) KeyRate(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.KeyRate(r.Context())
	if err != nil {
		h.log.Errorf("Failed to get key rate: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "key rate unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"key_rate": rate})
}
