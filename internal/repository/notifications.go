package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// CreateNotification stores a notification
func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO lending.notifications (id, user_id, type, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, n.ID, n.UserID, n.Type, n.Message, n.Read).Scan(&n.CreatedAt)
	if err != nil {
		return wrapWriteErr("failed to create notification", err)
	}
	return nil
}

// FindNotificationByID retrieves a notification by ID
func (r *Repository) FindNotificationByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	query := `SELECT id, user_id, type, message, is_read, created_at FROM lending.notifications WHERE id = $1`
	n := &models.Notification{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, wrapReadErr("failed to find notification", err)
	}
	return n, nil
}

// ListNotificationsByUser returns a user's notifications, newest first
func (r *Repository) ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, created_at
		FROM lending.notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotificationRead flags a notification as read
func (r *Repository) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE lending.notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to mark notification read: %w", ErrNotFound)
	}
	return nil
}

// ListRecentNotifications returns the newest notifications across all users
func (r *Repository) ListRecentNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, message, is_read, created_at
		FROM lending.notifications
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
