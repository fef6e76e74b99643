package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats represents the admin dashboard counters
type DashboardStats struct {
	TotalUsers      int             `json:"total_users"`
	TotalLoans      int             `json:"total_loans"`
	ActiveLoans     int             `json:"active_loans"`
	PendingLoans    int             `json:"pending_loans"`
	RejectedLoans   int             `json:"rejected_loans"`
	DefaultedLoans  int             `json:"defaulted_loans"`
	TotalPayments   int             `json:"total_payments"`
	PendingPayments int             `json:"pending_payments"` // Pending and overdue
	TotalDisbursed  decimal.Decimal `json:"total_disbursed"`
}

// LoanDistribution represents the number of loans of one type
type LoanDistribution struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthlyDisbursement is the principal of loans started in one month
type MonthlyDisbursement struct {
	Month  string          `json:"month"` // YYYY-MM
	Amount decimal.Decimal `json:"amount"`
}

// ActivityEntry is one line of the admin activity log
type ActivityEntry struct {
	Message string           `json:"msg"`
	Time    time.Time        `json:"time"`
	Type    NotificationType `json:"type"`
}
