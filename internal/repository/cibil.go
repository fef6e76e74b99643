package repository

import (
	"context"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// UpsertCibilScore stores a user's score, replacing any previous one
func (r *Repository) UpsertCibilScore(ctx context.Context, s *models.CibilScore) error {
	query := `
		INSERT INTO lending.cibil_scores (user_id, score, payment_history, credit_utilization, credit_age, credit_mix,
			recent_inquiries, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			score = EXCLUDED.score,
			payment_history = EXCLUDED.payment_history,
			credit_utilization = EXCLUDED.credit_utilization,
			credit_age = EXCLUDED.credit_age,
			credit_mix = EXCLUDED.credit_mix,
			recent_inquiries = EXCLUDED.recent_inquiries,
			last_updated = EXCLUDED.last_updated`
	f := s.Factors
	_, err := r.db.ExecContext(ctx, query, s.UserID, s.Score, f.PaymentHistory, f.CreditUtilization, f.CreditAge,
		f.CreditMix, f.RecentInquiries, s.LastUpdated)
	if err != nil {
		return wrapWriteErr("failed to save cibil score", err)
	}
	return nil
}

// FindCibilScore retrieves the score of a user
func (r *Repository) FindCibilScore(ctx context.Context, userID uuid.UUID) (*models.CibilScore, error) {
	query := `
		SELECT user_id, score, payment_history, credit_utilization, credit_age, credit_mix, recent_inquiries, last_updated
		FROM lending.cibil_scores
		WHERE user_id = $1`
	s := &models.CibilScore{}
	f := &s.Factors
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&s.UserID, &s.Score, &f.PaymentHistory, &f.CreditUtilization, &f.CreditAge, &f.CreditMix,
			&f.RecentInquiries, &s.LastUpdated)
	if err != nil {
		return nil, wrapReadErr("failed to find cibil score", err)
	}
	return s, nil
}
