package handler

import (
	"net/http"
	"strings"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// loanFilter reads ?status=&loan_type=&sort_by=&order=&user_id= into a filter
func loanFilter(r *http.Request) (models.LoanFilter, error) {
	q := r.URL.Query()
	filter := models.LoanFilter{
		Status: models.LoanStatus(strings.ToUpper(q.Get("status"))),
		SortBy: q.Get("sort_by"),
		Desc:   strings.EqualFold(q.Get("order"), "desc"),
	}
	if lt := q.Get("loan_type"); lt != "" {
		parsed, err := finance.ParseLoanType(lt)
		if err != nil {
			return filter, err
		}
		filter.LoanType = parsed
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.UserID = &id
	}
	return filter, nil
}

// ApplyForLoan handles POST /loans
func (h *Handler) ApplyForLoan(w http.ResponseWriter, r *http.Request) {
	var app models.LoanApplication
	if err := decode(r, &app); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	loan, err := h.svc.ApplyForLoan(r.Context(), identity(r), app)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ListLoans handles GET /loans and GET /admin/loans
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	filter, err := loanFilter(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	loans, err := h.svc.ListLoans(r.Context(), identity(r), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loans)
}

func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid loan id")
		return
	}
	loan, err := h.svc.GetLoan(r.Context(), identity(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) ListLoanPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid loan id")
		return
	}
	payments, err := h.svc.ListLoanPayments(r.Context(), identity(r), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// DecideLoan handles POST /admin/loans/{id}/decision
func (h *Handler) DecideLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid loan id")
		return
	}
	var decision models.LoanDecision
	if err := decode(r, &decision); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	loan, err := h.svc.DecideLoan(r.Context(), identity(r), id, decision)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid loan id")
		return
	}
	if err := h.svc.DeleteLoan(r.Context(), identity(r), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPendingPayments(r.Context(), identity(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// UpdatePaymentStatus handles PUT /admin/payments/{id}
func (h *Handler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid payment id")
		return
	}
	var update models.PaymentStatusUpdate
	if err := decode(r, &update); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	payment, err := h.svc.UpdatePaymentStatus(r.Context(), identity(r), id, update)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}
