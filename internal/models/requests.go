package models

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strings"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/shopspring/decimal"
)

// bcrypt refuses longer passwords
const maxPasswordBytes = 72

// RegisterRequest is the body of POST /register
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("invalid email %q", r.Email)
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(r.Password) > maxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

// EMIQuoteRequest prices a loan without storing it. InterestRate wins over
// the loan type's configured rate when both are given.
type EMIQuoteRequest struct {
	LoanType     string   `json:"loan_type,omitempty"`
	Principal    float64  `json:"principal"`
	InterestRate *float64 `json:"interest_rate,omitempty"`
	TenureMonths int      `json:"tenure_months"`
}

func (r EMIQuoteRequest) Validate() error {
	if r.InterestRate == nil && r.LoanType == "" {
		return errors.New("either interest_rate or loan_type is required")
	}
	return validateTenure(r.TenureMonths)
}

// EMIQuote is the priced loan
type EMIQuote struct {
	LoanType      finance.LoanType `json:"loan_type,omitempty"`
	Principal     float64          `json:"principal"`
	InterestRate  float64          `json:"interest_rate"`
	TenureMonths  int              `json:"tenure_months"`
	EMI           int64            `json:"emi"`
	TotalPayable  decimal.Decimal  `json:"total_payable"`
	TotalInterest decimal.Decimal  `json:"total_interest"`
}

// LoanApplication is the body of POST /loans
type LoanApplication struct {
	LoanType     string   `json:"loan_type"`
	Principal    float64  `json:"principal"`
	InterestRate *float64 `json:"interest_rate,omitempty"`
	TenureMonths int      `json:"tenure_months"`
}

func (a LoanApplication) Validate() error {
	if a.LoanType == "" {
		return errors.New("loan_type is required")
	}
	return validateTenure(a.TenureMonths)
}

func validateTenure(months int) error {
	if months > finance.MaxTenureMonths {
		return fmt.Errorf("tenure_months must be at most %d", finance.MaxTenureMonths)
	}
	return nil
}

// Decision actions accepted by LoanDecision
const (
	DecisionApprove = "approve"
	DecisionAccept  = "accept"
	DecisionReject  = "reject"
)

// LoanDecision is an admin's verdict on a pending loan
type LoanDecision struct {
	Action           string `json:"action"`
	RejectionReason  string `json:"rejection_reason,omitempty"`
	UploadedFileName string `json:"uploaded_file_name,omitempty"`
}

// Approves reports whether the decision activates the loan
func (d LoanDecision) Approves() bool {
	a := strings.ToLower(strings.TrimSpace(d.Action))
	return a == DecisionApprove || a == DecisionAccept
}

func (d LoanDecision) Validate() error {
	switch strings.ToLower(strings.TrimSpace(d.Action)) {
	case DecisionApprove, DecisionAccept:
		return nil
	case DecisionReject:
		if strings.TrimSpace(d.RejectionReason) == "" {
			return errors.New("rejection_reason is required when rejecting")
		}
		return nil
	default:
		return fmt.Errorf("invalid action %q; use 'approve' or 'reject'", d.Action)
	}
}

// PaymentStatusUpdate is the body of PUT /admin/payments/{id}
type PaymentStatusUpdate struct {
	Status PaymentStatus `json:"status"`
}

func (u PaymentStatusUpdate) Validate() error {
	switch u.Status {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusOverdue:
		return nil
	default:
		return fmt.Errorf("invalid payment status %q", u.Status)
	}
}

// BroadcastRequest is the body of POST /admin/notifications/broadcast
type BroadcastRequest struct {
	Message string `json:"message"`
}

func (b BroadcastRequest) Validate() error {
	if strings.TrimSpace(b.Message) == "" {
		return errors.New("message is required")
	}
	return nil
}

// CibilFactorsRequest is the body of the credit score endpoints
type CibilFactorsRequest struct {
	finance.CreditFactors
}

func (r CibilFactorsRequest) Validate() error {
	for _, v := range []float64{r.PaymentHistory, r.CreditUtilization, r.CreditAge, r.CreditMix, r.RecentInquiries} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("credit factors must be finite numbers")
		}
	}
	return nil
}

// ScoreResult is a computed score with its band
type ScoreResult struct {
	Score    int                   `json:"score"`
	Category finance.ScoreCategory `json:"category"`
}
