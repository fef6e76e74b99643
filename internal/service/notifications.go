package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ListNotifications returns the caller's notifications, newest first
func (s *Service) ListNotifications(ctx context.Context, who Identity) ([]models.Notification, error) {
	return s.repo.ListNotificationsByUser(ctx, who.UserID)
}

// MarkNotificationRead marks one of the caller's own notifications read
func (s *Service) MarkNotificationRead(ctx context.Context, who Identity, id uuid.UUID) error {
	n, err := s.repo.FindNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != who.UserID {
		return fmt.Errorf("%w: notification belongs to another user", ErrForbidden)
	}
	return s.repo.MarkNotificationRead(ctx, id)
}

// Broadcast sends a message to every user as a notification and an email
func (s *Service) Broadcast(ctx context.Context, who Identity, req models.BroadcastRequest) (int, error) {
	if err := requireAdmin(who); err != nil {
		return 0, err
	}
	if err := req.Validate(); err != nil {
		return 0, invalid(err)
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		s.notify(ctx, u.ID, models.NotificationBroadcast, req.Message)
		if err := s.mailer.SendBroadcast(u.Email, u.Name, req.Message); err != nil {
			s.log.Warnf("Failed to email broadcast to %s: %v", u.Email, err)
		}
	}

	s.log.WithFields(logrus.Fields{"admin_id": who.UserID, "recipients": len(users)}).Info("Broadcast sent")
	return len(users), nil
}
