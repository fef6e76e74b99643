package handler

import (
	"net/http"

	"github.com/Dan9191/loan-service/internal/models"
)

// GetCibilScore returns the caller's stored score
func (h *Handler) GetCibilScore(w http.ResponseWriter, r *http.Request) {
	who := identity(r)
	score, err := h.svc.GetCibilScore(r.Context(), who, who.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// ComputeCibilScore rescores the caller
func (h *Handler) ComputeCibilScore(w http.ResponseWriter, r *http.Request) {
	var req models.CibilFactorsRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	who := identity(r)
	score, err := h.svc.ComputeCibilScore(r.Context(), who, who.UserID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotifications(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if notes == nil {
		notes = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid notification id")
		return
	}
	if err := h.svc.MarkNotificationRead(r.Context(), identity(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
