package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CalculateScore scores factors with the configured weights without storing
// anything
func (s *Service) CalculateScore(req models.CibilFactorsRequest) (*models.ScoreResult, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	score, err := s.scorer.Score(req.CreditFactors)
	if err != nil {
		return nil, invalid(err)
	}
	return &models.ScoreResult{Score: score, Category: finance.Categorize(score)}, nil
}

// ComputeCibilScore scores and stores the credit factors of a user. Users
// may only rescore themselves.
func (s *Service) ComputeCibilScore(ctx context.Context, who Identity, userID uuid.UUID, req models.CibilFactorsRequest) (*models.CibilScore, error) {
	if err := requireSelfOrAdmin(who, userID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		return nil, err
	}
	result, err := s.CalculateScore(req)
	if err != nil {
		return nil, err
	}

	record := &models.CibilScore{
		UserID:      userID,
		Score:       result.Score,
		Factors:     req.CreditFactors,
		Category:    result.Category,
		LastUpdated: s.now().UTC(),
	}
	if err := s.repo.UpsertCibilScore(ctx, record); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "score": record.Score, "by": who.UserID}).Info("CIBIL score updated")
	s.notify(ctx, userID, models.NotificationCibilUpdate,
		fmt.Sprintf("Your CIBIL score is now %d (%s).", record.Score, record.Category.Category))
	return record, nil
}

// GetCibilScore returns the stored score of a user with its category
func (s *Service) GetCibilScore(ctx context.Context, who Identity, userID uuid.UUID) (*models.CibilScore, error) {
	if err := requireSelfOrAdmin(who, userID); err != nil {
		return nil, err
	}
	record, err := s.repo.FindCibilScore(ctx, userID)
	if err != nil {
		return nil, err
	}
	record.Category = finance.Categorize(record.Score)
	return record, nil
}
