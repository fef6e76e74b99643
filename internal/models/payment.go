package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of one scheduled EMI
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// Payment represents a scheduled EMI payment for a loan
type Payment struct {
	ID          uuid.UUID       `json:"id"`
	LoanID      uuid.UUID       `json:"loan_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Installment int             `json:"installment"`
	Amount      decimal.Decimal `json:"amount"`
	Principal   decimal.Decimal `json:"principal"`
	DueDate     time.Time       `json:"due_date"`
	PaidDate    *time.Time      `json:"paid_date,omitempty"`
	Status      PaymentStatus   `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
