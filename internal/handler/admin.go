package handler

import (
	"net/http"

	"github.com/Dan9191/loan-service/internal/models"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) LoanDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.svc.LoanDistribution(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dist)
}

func (h *Handler) DisbursementTrends(w http.ResponseWriter, r *http.Request) {
	trends, err := h.svc.DisbursementTrends(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trends)
}

func (h *Handler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	logs, err := h.svc.ActivityLog(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// DownloadReport handles GET /admin/report/download?month=YYYY-MM
func (h *Handler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.LoanReport(r.Context(), identity(r), r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=report.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(report); err != nil {
		h.log.Warnf("Failed to send loan report: %v", err)
	}
}

// Broadcast handles POST /admin/notifications/broadcast
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	sent, err := h.svc.Broadcast(r.Context(), identity(r), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recipients": sent})
}

// SetCibilScore handles PUT /admin/cibil/{userID}
func (h *Handler) SetCibilScore(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}
	var req models.CibilFactorsRequest
	if err := decode(r, &req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	score, err := h.svc.ComputeCibilScore(r.Context(), identity(r), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}
