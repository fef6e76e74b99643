package models

import (
	"time"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus tracks a loan from application to closure
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "PENDING"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusDefaulted LoanStatus = "DEFAULTED"
	LoanStatusRejected  LoanStatus = "REJECTED"
)

// Loan represents a loan in the system
type Loan struct {
	ID                 uuid.UUID        `json:"id"`
	UserID             uuid.UUID        `json:"user_id"`
	LoanType           finance.LoanType `json:"loan_type"`
	Principal          decimal.Decimal  `json:"principal"`
	InterestRate       float64          `json:"interest_rate"`
	TenureMonths       int              `json:"tenure_months"`
	StartDate          time.Time        `json:"start_date"`
	EMI                decimal.Decimal  `json:"emi"`
	Status             LoanStatus       `json:"status"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance"`
	RejectionReason    string           `json:"rejection_reason,omitempty"`
	UploadedFileName   string           `json:"uploaded_file_name,omitempty"`
	HMAC               string           `json:"hmac"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Terms returns the loan's amortization inputs
func (l *Loan) Terms() finance.LoanTerms {
	return finance.LoanTerms{
		Principal:         l.Principal.InexactFloat64(),
		AnnualRatePercent: l.InterestRate,
		TenureMonths:      l.TenureMonths,
	}
}

// LoanFilter narrows and orders a loan listing
type LoanFilter struct {
	UserID   *uuid.UUID
	Status   LoanStatus
	LoanType finance.LoanType
	SortBy   string // created_at, principal, emi or tenure_months
	Desc     bool
}
