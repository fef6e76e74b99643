package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListUsers returns every user with their phone number decrypted
func (s *Service) ListUsers(ctx context.Context, who Identity) ([]models.User, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		phone, err := utils.Decrypt(users[i].Phone, s.config.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt phone of user %s: %w", users[i].ID, err)
		}
		users[i].Phone = phone
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

// DashboardStats counts users, loans and payments for the admin dashboard
func (s *Service) DashboardStats(ctx context.Context, who Identity) (*models.DashboardStats, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPayments(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalUsers:     len(users),
		TotalLoans:     len(loans),
		TotalPayments:  len(payments),
		TotalDisbursed: decimal.Zero,
	}
	for _, l := range loans {
		switch l.Status {
		case models.LoanStatusActive:
			stats.ActiveLoans++
		case models.LoanStatusPending:
			stats.PendingLoans++
		case models.LoanStatusRejected:
			stats.RejectedLoans++
		case models.LoanStatusDefaulted:
			stats.DefaultedLoans++
		}
		if disbursed(l) {
			stats.TotalDisbursed = stats.TotalDisbursed.Add(l.Principal)
		}
	}
	for _, p := range payments {
		if p.Status != models.PaymentStatusPaid {
			stats.PendingPayments++
		}
	}
	return stats, nil
}

// LoanDistribution counts loans per loan type, every type listed
func (s *Service) LoanDistribution(ctx context.Context, who Identity) ([]models.LoanDistribution, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[finance.LoanType]int)
	for _, l := range loans {
		counts[l.LoanType]++
	}
	out := make([]models.LoanDistribution, 0, len(finance.LoanTypes()))
	for _, lt := range finance.LoanTypes() {
		out = append(out, models.LoanDistribution{Name: string(lt), Value: counts[lt]})
	}
	return out, nil
}

func disbursed(l models.Loan) bool {
	switch l.Status {
	case models.LoanStatusActive, models.LoanStatusCompleted, models.LoanStatusDefaulted:
		return true
	}
	return false
}

// trendMonths is the width of the disbursement trend window
const trendMonths = 6

// DisbursementTrends sums the principal of loans started in each of the last
// six months, the current month last
func (s *Service) DisbursementTrends(ctx context.Context, who Identity) ([]models.MonthlyDisbursement, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, err
	}

	y, m, _ := s.today().Date()
	current := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.MonthlyDisbursement, trendMonths)
	index := make(map[string]int, trendMonths)
	for i := range out {
		month := current.AddDate(0, i-trendMonths+1, 0).Format("2006-01")
		out[i] = models.MonthlyDisbursement{Month: month, Amount: decimal.Zero}
		index[month] = i
	}
	for _, l := range loans {
		if !disbursed(l) {
			continue
		}
		if i, ok := index[l.StartDate.UTC().Format("2006-01")]; ok {
			out[i].Amount = out[i].Amount.Add(l.Principal)
		}
	}
	return out, nil
}

// activityLogSize is how many notifications the activity log shows
const activityLogSize = 10

// ActivityLog returns the most recent notifications sent to any user
func (s *Service) ActivityLog(ctx context.Context, who Identity) ([]models.ActivityEntry, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListRecentNotifications(ctx, activityLogSize)
	if err != nil {
		return nil, err
	}
	out := make([]models.ActivityEntry, 0, len(notes))
	for _, n := range notes {
		out = append(out, models.ActivityEntry{Message: n.Message, Time: n.CreatedAt, Type: n.Type})
	}
	return out, nil
}

var reportHeader = []string{"Loan ID", "User", "Type", "Principal", "Status", "Date"}

// LoanReport renders every loan as CSV, oldest application first. A month in
// YYYY-MM form keeps only loans started in that month.
func (s *Service) LoanReport(ctx context.Context, who Identity, month string) ([]byte, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, invalid(errors.New("month must be in YYYY-MM form"))
		}
	}
	loans, err := s.repo.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	sort.SliceStable(loans, func(i, j int) bool { return loans[i].CreatedAt.Before(loans[j].CreatedAt) })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	for _, l := range loans {
		started := l.StartDate.UTC().Format("2006-01-02")
		if month != "" && !strings.HasPrefix(started, month) {
			continue
		}
		name, ok := names[l.UserID]
		if !ok {
			name = "Unknown"
		}
		row := []string{l.ID.String(), name, string(l.LoanType), l.Principal.StringFixed(2), string(l.Status), started}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	return buf.Bytes(), nil
}
