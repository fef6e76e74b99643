package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStatsAndDistribution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	admin := f.admin(t)

	f.activeLoan(t, alice, admin)
	f.apply(t, bob, "car", 300000, 24)
	rejected := f.apply(t, bob, "business", 50000, 12)
	_, err := f.svc.DecideLoan(ctx, admin, rejected.ID, models.LoanDecision{Action: "reject", RejectionReason: "no collateral"})
	require.NoError(t, err)

	_, err = f.svc.DashboardStats(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	stats, err := f.svc.DashboardStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalUsers)
	assert.Equal(t, 3, stats.TotalLoans)
	assert.Equal(t, 1, stats.ActiveLoans)
	assert.Equal(t, 1, stats.PendingLoans)
	assert.Equal(t, 1, stats.RejectedLoans)
	assert.Zero(t, stats.DefaultedLoans)
	assert.Equal(t, 3, stats.TotalPayments)
	assert.Equal(t, 3, stats.PendingPayments)
	assert.Equal(t, "12000", stats.TotalDisbursed.String())

	dist, err := f.svc.LoanDistribution(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, []models.LoanDistribution{
		{Name: "PERSONAL", Value: 1},
		{Name: "HOME", Value: 0},
		{Name: "CAR", Value: 1},
		{Name: "EDUCATION", Value: 0},
		{Name: "BUSINESS", Value: 1},
	}, dist)
}

func TestListUsersDecryptsPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)

	_, err := f.svc.ListUsers(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	users, err := f.svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	byEmail := make(map[string]models.User)
	for _, u := range users {
		byEmail[u.Email] = u
	}
	assert.Equal(t, "+919800000000", byEmail["alice@example.com"].Phone)
	assert.Equal(t, models.RoleAdmin, byEmail["admin@example.com"].Role)
	assert.Empty(t, byEmail["admin@example.com"].Phone)
}

func TestNotificationsReadAndBroadcast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	bob := f.user(t, "bob@example.com")
	admin := f.admin(t)

	_, err := f.svc.Broadcast(ctx, alice, models.BroadcastRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Broadcast(ctx, admin, models.BroadcastRequest{Message: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	sent, err := f.svc.Broadcast(ctx, admin, models.BroadcastRequest{Message: "Branch closed on Friday"})
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, 3, f.mailer.count("broadcast"))

	notes, err := f.svc.ListNotifications(ctx, alice)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationBroadcast, notes[0].Type)
	assert.False(t, notes[0].Read)

	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, bob, notes[0].ID), ErrForbidden)
	assert.ErrorIs(t, f.svc.MarkNotificationRead(ctx, alice, uuid.New()), ErrNotFound)
	require.NoError(t, f.svc.MarkNotificationRead(ctx, alice, notes[0].ID))

	notes, err = f.svc.ListNotifications(ctx, alice)
	require.NoError(t, err)
	assert.True(t, notes[0].Read)
}

func TestDisbursementTrends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)
	f.activeLoan(t, alice, admin)
	f.apply(t, alice, "car", 300000, 24)

	_, err := f.svc.DisbursementTrends(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	trends, err := f.svc.DisbursementTrends(ctx, admin)
	require.NoError(t, err)
	require.Len(t, trends, 6)
	months := make([]string, 0, len(trends))
	for _, m := range trends {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2024-08", "2024-09", "2024-10", "2024-11", "2024-12", "2025-01"}, months)
	assert.Equal(t, "12000", trends[5].Amount.String())
	for _, m := range trends[:5] {
		assert.True(t, m.Amount.IsZero(), "month %s", m.Month)
	}

	// Seven months on, January has left the window
	f.svc.now = func() time.Time { return testNow.AddDate(0, 7, 0) }
	trends, err = f.svc.DisbursementTrends(ctx, admin)
	require.NoError(t, err)
	for _, m := range trends {
		assert.True(t, m.Amount.IsZero(), "month %s", m.Month)
	}
}

func TestActivityLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	f.user(t, "bob@example.com")
	admin := f.admin(t)

	_, err := f.svc.ActivityLog(ctx, alice)
	assert.ErrorIs(t, err, ErrForbidden)

	logs, err := f.svc.ActivityLog(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, logs)

	for i := 0; i < 4; i++ {
		_, err := f.svc.Broadcast(ctx, admin, models.BroadcastRequest{Message: "Rates revised"})
		require.NoError(t, err)
	}
	logs, err = f.svc.ActivityLog(ctx, admin)
	require.NoError(t, err)
	require.Len(t, logs, 10)
	for _, entry := range logs {
		assert.Equal(t, models.NotificationBroadcast, entry.Type)
		assert.Equal(t, "Rates revised", entry.Message)
		assert.False(t, entry.Time.IsZero())
	}
}

func TestLoanReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@example.com")
	admin := f.admin(t)
	active, _ := f.activeLoan(t, alice, admin)
	pending := f.apply(t, alice, "car", 300000, 24)

	_, err := f.svc.LoanReport(ctx, alice, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.LoanReport(ctx, admin, "Jan-2025")
	assert.ErrorIs(t, err, ErrInvalidInput)

	readRows := func(month string) map[string][]string {
		t.Helper()
		data, err := f.svc.LoanReport(ctx, admin, month)
		require.NoError(t, err)
		records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
		require.NoError(t, err)
		require.NotEmpty(t, records)
		assert.Equal(t, reportHeader, records[0])
		rows := make(map[string][]string)
		for _, r := range records[1:] {
			rows[r[0]] = r
		}
		return rows
	}

	rows := readRows("")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{active.ID.String(), "Test User", "PERSONAL", "12000.00", "ACTIVE", "2025-01-10"}, rows[active.ID.String()])
	assert.Equal(t, []string{pending.ID.String(), "Test User", "CAR", "300000.00", "PENDING", "2025-01-10"}, rows[pending.ID.String()])

	rows = readRows("2025-01")
	assert.Len(t, rows, 2)

	assert.Empty(t, readRows("2025-02"))
}
