package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationPaymentDue     NotificationType = "payment_due"
	NotificationPaymentOverdue NotificationType = "payment_overdue"
	NotificationLoanApproved   NotificationType = "loan_approved"
	NotificationLoanRejected   NotificationType = "loan_rejected"
	NotificationLoanDefaulted  NotificationType = "loan_defaulted"
	NotificationCibilUpdate    NotificationType = "cibil_update"
	NotificationBroadcast      NotificationType = "broadcast"
)

// Notification is a message shown to a single user
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
