package service

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) activeLoan(t *testing.T, who, admin Identity) (*models.Loan, []models.Payment) {
	t.Helper()
	ctx := context.Background()
	loan := f.apply(t, who, "personal", 12000, 3)
	loan, err := f.svc.DecideLoan(ctx, admin, loan.ID, models.LoanDecision{Action: "approve"})
	require.NoError(t, err)
	payments, err := f.svc.ListLoanPayments(ctx, who, loan.ID)
	require.NoError(t, err)
	return loan, payments
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)
	loan, payments := f.activeLoan(t, alice, admin)
	paid := models.PaymentStatusUpdate{Status: models.PaymentStatusPaid}

	_, err := f.svc.UpdatePaymentStatus(ctx, alice, payments[0].ID, paid)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.UpdatePaymentStatus(ctx, admin, payments[0].ID, models.PaymentStatusUpdate{Status: "refunded"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	p, err := f.svc.UpdatePaymentStatus(ctx, admin, payments[0].ID, paid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, p.Status)
	require.NotNil(t, p.PaidDate)
	assert.Equal(t, testNow, *p.PaidDate)

	got, err := f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, got.Status)
	assert.Equal(t, "8040", got.OutstandingBalance.String())

	// Repeating the same status changes nothing
	_, err = f.svc.UpdatePaymentStatus(ctx, admin, payments[0].ID, paid)
	require.NoError(t, err)
	got, err = f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "8040", got.OutstandingBalance.String())

	for _, p := range payments[1:] {
		_, err := f.svc.UpdatePaymentStatus(ctx, admin, p.ID, paid)
		require.NoError(t, err)
	}
	got, err = f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusCompleted, got.Status)
	assert.True(t, got.OutstandingBalance.IsZero())

	pending, err := f.svc.ListPendingPayments(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Reopening an installment reopens the loan
	p, err = f.svc.UpdatePaymentStatus(ctx, admin, payments[2].ID, models.PaymentStatusUpdate{Status: models.PaymentStatusPending})
	require.NoError(t, err)
	assert.Nil(t, p.PaidDate)
	got, err = f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, got.Status)
	assert.Equal(t, "4040.4", got.OutstandingBalance.String())
}

func TestListPaymentsOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	admin := f.admin(t)
	loan, _ := f.activeLoan(t, alice, admin)

	payments, err := f.svc.ListPayments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	for i, p := range payments {
		assert.Equal(t, i+1, p.Installment)
	}

	others, err := f.svc.ListPayments(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, others)

	_, err = f.svc.ListLoanPayments(ctx, bob, loan.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSweepPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)
	f.activeLoan(t, alice, admin)

	// First installment falls due 2025-02-10, three days ahead
	f.svc.now = func() time.Time { return time.Date(2025, time.February, 7, 6, 0, 0, 0, time.UTC) }
	res, err := f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Reminded: 1}, res)

	f.svc.now = func() time.Time { return time.Date(2025, time.February, 10, 23, 0, 0, 0, time.UTC) }
	res, err = f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	f.svc.now = func() time.Time { return time.Date(2025, time.February, 11, 0, 30, 0, 0, time.UTC) }
	res, err = f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Overdue: 1}, res)

	pending, err := f.svc.ListPendingPayments(ctx, alice)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, models.PaymentStatusOverdue, pending[0].Status)
	assert.Equal(t, models.PaymentStatusPending, pending[1].Status)

	// Overdue payments are not swept again
	res, err = f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	notes, err := f.svc.ListNotifications(ctx, alice)
	require.NoError(t, err)
	types := make(map[models.NotificationType]int)
	for _, n := range notes {
		types[n.Type]++
	}
	assert.Equal(t, 1, types[models.NotificationPaymentDue])
	assert.Equal(t, 1, types[models.NotificationPaymentOverdue])
	assert.Equal(t, 2, f.mailer.count("reminder"))
}

func TestSweepDefaultsLoanAfterRepeatedMisses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)
	loan, payments := f.activeLoan(t, alice, admin)

	// All three installments, due Feb 10 to Apr 10, are past due
	f.svc.now = func() time.Time { return time.Date(2025, time.April, 11, 8, 0, 0, 0, time.UTC) }
	res, err := f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{Overdue: 3, Defaulted: 1}, res)

	got, err := f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusDefaulted, got.Status)

	stats, err := f.svc.DashboardStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DefaultedLoans)
	assert.Zero(t, stats.RejectedLoans)
	assert.Zero(t, stats.ActiveLoans)
	assert.Equal(t, "12000", stats.TotalDisbursed.String())

	// A defaulted loan is not defaulted twice
	res, err = f.svc.SweepPayments(ctx)
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, res)

	paid := models.PaymentStatusUpdate{Status: models.PaymentStatusPaid}
	for _, p := range payments[:2] {
		_, err := f.svc.UpdatePaymentStatus(ctx, admin, p.ID, paid)
		require.NoError(t, err)
	}
	got, err = f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusDefaulted, got.Status)

	// Clearing the last arrear cures the default
	_, err = f.svc.UpdatePaymentStatus(ctx, admin, payments[2].ID, models.PaymentStatusUpdate{Status: models.PaymentStatusPending})
	require.NoError(t, err)
	got, err = f.svc.GetLoan(ctx, alice, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, got.Status)

	notes, err := f.svc.ListNotifications(ctx, alice)
	require.NoError(t, err)
	defaulted := 0
	for _, n := range notes {
		if n.Type == models.NotificationLoanDefaulted {
			defaulted++
		}
	}
	assert.Equal(t, 1, defaulted)
}
