package handler

import (
	"net/http"

	"github.com/Dan9191/loan-service/internal/middleware"
	"github.com/gorilla/mux"
)

// NewRouter wires every route. Authenticated routes need a bearer token;
// /admin routes additionally need the admin role.
func NewRouter(h *Handler, tokens middleware.TokenParser) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(h.log))

	// Public routes
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	r.HandleFunc("/emi/quote", h.QuoteEMI).Methods(http.MethodPost)
	r.HandleFunc("/cibil/calculate", h.CalculateScore).Methods(http.MethodPost)
	r.HandleFunc("/cibil/category/{score}", h.ScoreCategory).Methods(http.MethodGet)
	r.HandleFunc("/rates", h.Rates).Methods(http.MethodGet)
	r.HandleFunc("/key-rate", h.KeyRate).Methods(http.MethodGet)

	// Protected routes
	auth := r.NewRoute().Subrouter()
	auth.Use(middleware.AuthMiddleware(tokens))
	auth.HandleFunc("/loans", h.ApplyForLoan).Methods(http.MethodPost)
	auth.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	auth.HandleFunc("/loans/{id}", h.GetLoan).Methods(http.MethodGet)
	auth.HandleFunc("/loans/{id}/payments", h.ListLoanPayments).Methods(http.MethodGet)
	auth.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	auth.HandleFunc("/payments/pending", h.ListPendingPayments).Methods(http.MethodGet)
	auth.HandleFunc("/cibil", h.GetCibilScore).Methods(http.MethodGet)
	auth.HandleFunc("/cibil", h.ComputeCibilScore).Methods(http.MethodPost)
	auth.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	auth.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	// Admin routes
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(tokens), middleware.RequireAdmin)
	admin.HandleFunc("/loans", h.ListLoans).Methods(http.MethodGet)
	admin.HandleFunc("/loans/{id}/decision", h.DecideLoan).Methods(http.MethodPost)
	admin.HandleFunc("/loans/{id}", h.DeleteLoan).Methods(http.MethodDelete)
	admin.HandleFunc("/payments/{id}", h.UpdatePaymentStatus).Methods(http.MethodPut)
	admin.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/stats", h.DashboardStats).Methods(http.MethodGet)
	admin.HandleFunc("/distribution", h.LoanDistribution).Methods(http.MethodGet)
	admin.HandleFunc("/trends", h.DisbursementTrends).Methods(http.MethodGet)
	admin.HandleFunc("/logs", h.ActivityLog).Methods(http.MethodGet)
	admin.HandleFunc("/report/download", h.DownloadReport).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/broadcast", h.Broadcast).Methods(http.MethodPost)
	admin.HandleFunc("/cibil/{userID}", h.SetCibilScore).Methods(http.MethodPut)

	return r
}
