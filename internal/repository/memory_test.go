package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Users(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	u := &models.User{ID: uuid.New(), Email: "ravi@example.com", Name: "Ravi", Role: models.RoleUser}
	require.NoError(t, repo.CreateUser(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	dup := &models.User{ID: uuid.New(), Email: "RAVI@example.com"}
	assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrConflict)

	found, err := repo.FindUserByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_ActivateAndRecordPayment(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	userID := uuid.New()

	loan := &models.Loan{
		ID:                 uuid.New(),
		UserID:             userID,
		LoanType:           finance.LoanTypeCar,
		Principal:          decimal.NewFromInt(1000),
		Status:             models.LoanStatusPending,
		OutstandingBalance: decimal.NewFromInt(1000),
	}
	require.NoError(t, repo.CreateLoan(ctx, loan))

	due := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: uuid.New(), LoanID: loan.ID, UserID: userID, Installment: 2, DueDate: due.AddDate(0, 1, 0), Status: models.PaymentStatusPending},
		{ID: uuid.New(), LoanID: loan.ID, UserID: userID, Installment: 1, DueDate: due, Status: models.PaymentStatusPending},
	}
	loan.Status = models.LoanStatusActive
	require.NoError(t, repo.ActivateLoan(ctx, loan, payments))

	listed, err := repo.ListPaymentsByLoan(ctx, loan.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].Installment)

	p := listed[0]
	paidAt := due
	p.Status = models.PaymentStatusPaid
	p.PaidDate = &paidAt
	loan.OutstandingBalance = decimal.NewFromInt(500)
	require.NoError(t, repo.RecordPayment(ctx, &p, loan))

	stored, err := repo.FindLoanByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, stored.Status)
	assert.True(t, stored.OutstandingBalance.Equal(decimal.NewFromInt(500)))

	pending, err := repo.ListPaymentsByStatus(ctx, models.PaymentStatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, repo.DeleteLoan(ctx, loan.ID))
	all, err := repo.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.ErrorIs(t, repo.DeleteLoan(ctx, loan.ID), ErrNotFound)
}

func TestMemoryRepository_Notifications(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	userID := uuid.New()

	n := &models.Notification{ID: uuid.New(), UserID: userID, Type: models.NotificationBroadcast, Message: "hello"}
	require.NoError(t, repo.CreateNotification(ctx, n))
	require.NoError(t, repo.MarkNotificationRead(ctx, n.ID))

	list, err := repo.ListNotificationsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)

	assert.ErrorIs(t, repo.MarkNotificationRead(ctx, uuid.New()), ErrNotFound)
}

func TestMemoryRepository_RecentNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	for i := 0; i < 12; i++ {
		n := &models.Notification{ID: uuid.New(), UserID: uuid.New(), Type: models.NotificationBroadcast, Message: "hello"}
		require.NoError(t, repo.CreateNotification(ctx, n))
	}

	recent, err := repo.ListRecentNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	for i := 1; i < len(recent); i++ {
		assert.True(t, recent[i-1].CreatedAt.After(recent[i].CreatedAt))
	}
	assert.Equal(t, clock, recent[0].CreatedAt)
}
