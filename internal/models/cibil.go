package models

import (
	"time"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/google/uuid"
)

// CibilScore is the stored credit score of a user
type CibilScore struct {
	UserID      uuid.UUID             `json:"user_id"`
	Score       int                   `json:"score"`
	Factors     finance.CreditFactors `json:"factors"`
	Category    finance.ScoreCategory `json:"category"` // Derived from Score, not stored
	LastUpdated time.Time             `json:"last_updated"`
}
