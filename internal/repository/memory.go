package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps all records in process memory. It backs
// STORAGE=memory deployments and tests; data is lost on restart.
type MemoryRepository struct {
	mu            sync.RWMutex
	now           func() time.Time
	users         map[uuid.UUID]models.User
	loans         map[uuid.UUID]models.Loan
	payments      map[uuid.UUID]models.Payment
	scores        map[uuid.UUID]models.CibilScore
	notifications map[uuid.UUID]models.Notification
}

// NewMemoryRepository initializes an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		now:           time.Now,
		users:         make(map[uuid.UUID]models.User),
		loans:         make(map[uuid.UUID]models.Loan),
		payments:      make(map[uuid.UUID]models.Payment),
		scores:        make(map[uuid.UUID]models.CibilScore),
		notifications: make(map[uuid.UUID]models.Notification),
	}
}

func (m *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("failed to create user: %w", ErrConflict)
		}
	}
	if _, ok := m.users[user.ID]; ok {
		return fmt.Errorf("failed to create user: %w", ErrConflict)
	}
	user.CreatedAt = m.now()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryRepository) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user: %w", ErrNotFound)
}

func (m *MemoryRepository) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user: %w", ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryRepository) ListUsers(_ context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *MemoryRepository) CreateLoan(_ context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; ok {
		return fmt.Errorf("failed to create loan: %w", ErrConflict)
	}
	now := m.now()
	loan.CreatedAt, loan.UpdatedAt = now, now
	m.loans[loan.ID] = *loan
	return nil
}

func (m *MemoryRepository) FindLoanByID(_ context.Context, id uuid.UUID) (*models.Loan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loans[id]
	if !ok {
		return nil, fmt.Errorf("failed to find loan: %w", ErrNotFound)
	}
	return &l, nil
}

func (m *MemoryRepository) ListLoans(_ context.Context) ([]models.Loan, error) {
	return m.filterLoans(func(models.Loan) bool { return true }), nil
}

func (m *MemoryRepository) ListLoansByUser(_ context.Context, userID uuid.UUID) ([]models.Loan, error) {
	return m.filterLoans(func(l models.Loan) bool { return l.UserID == userID }), nil
}

func (m *MemoryRepository) filterLoans(keep func(models.Loan) bool) []models.Loan {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []models.Loan
	for _, l := range m.loans {
		if keep(l) {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].CreatedAt.After(loans[j].CreatedAt) })
	return loans
}

func (m *MemoryRepository) updateLoanLocked(loan *models.Loan) error {
	stored, ok := m.loans[loan.ID]
	if !ok {
		return fmt.Errorf("failed to update loan: %w", ErrNotFound)
	}
	stored.StartDate = loan.StartDate
	stored.Status = loan.Status
	stored.OutstandingBalance = loan.OutstandingBalance
	stored.RejectionReason = loan.RejectionReason
	stored.UploadedFileName = loan.UploadedFileName
	stored.UpdatedAt = m.now()
	loan.UpdatedAt = stored.UpdatedAt
	m.loans[loan.ID] = stored
	return nil
}

func (m *MemoryRepository) UpdateLoan(_ context.Context, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLoanLocked(loan)
}

func (m *MemoryRepository) DeleteLoan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[id]; !ok {
		return fmt.Errorf("failed to delete loan: %w", ErrNotFound)
	}
	delete(m.loans, id)
	for pid, p := range m.payments {
		if p.LoanID == id {
			delete(m.payments, pid)
		}
	}
	return nil
}

func (m *MemoryRepository) ActivateLoan(_ context.Context, loan *models.Loan, payments []models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return fmt.Errorf("failed to update loan: %w", ErrNotFound)
	}
	for _, p := range payments {
		if _, ok := m.payments[p.ID]; ok {
			return fmt.Errorf("failed to create payment: %w", ErrConflict)
		}
	}
	if err := m.updateLoanLocked(loan); err != nil {
		return err
	}
	now := m.now()
	for i := range payments {
		payments[i].CreatedAt, payments[i].UpdatedAt = now, now
		m.payments[payments[i].ID] = payments[i]
	}
	return nil
}

func (m *MemoryRepository) FindPaymentByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, fmt.Errorf("failed to find payment: %w", ErrNotFound)
	}
	return &p, nil
}

func (m *MemoryRepository) ListPayments(_ context.Context) ([]models.Payment, error) {
	return m.filterPayments(func(models.Payment) bool { return true }), nil
}

func (m *MemoryRepository) ListPaymentsByUser(_ context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return m.filterPayments(func(p models.Payment) bool { return p.UserID == userID }), nil
}

func (m *MemoryRepository) ListPaymentsByLoan(_ context.Context, loanID uuid.UUID) ([]models.Payment, error) {
	return m.filterPayments(func(p models.Payment) bool { return p.LoanID == loanID }), nil
}

func (m *MemoryRepository) ListPaymentsByStatus(_ context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return m.filterPayments(func(p models.Payment) bool { return p.Status == status }), nil
}

func (m *MemoryRepository) filterPayments(keep func(models.Payment) bool) []models.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Payment
	for _, p := range m.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].Installment < out[j].Installment
	})
	return out
}

func (m *MemoryRepository) updatePaymentLocked(p *models.Payment) error {
	stored, ok := m.payments[p.ID]
	if !ok {
		return fmt.Errorf("failed to update payment: %w", ErrNotFound)
	}
	stored.Status = p.Status
	stored.PaidDate = p.PaidDate
	stored.UpdatedAt = m.now()
	p.UpdatedAt = stored.UpdatedAt
	m.payments[p.ID] = stored
	return nil
}

func (m *MemoryRepository) UpdatePayment(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatePaymentLocked(p)
}

func (m *MemoryRepository) RecordPayment(_ context.Context, p *models.Payment, loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return fmt.Errorf("failed to update loan: %w", ErrNotFound)
	}
	if err := m.updatePaymentLocked(p); err != nil {
		return err
	}
	return m.updateLoanLocked(loan)
}

func (m *MemoryRepository) UpsertCibilScore(_ context.Context, s *models.CibilScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[s.UserID] = *s
	return nil
}

func (m *MemoryRepository) FindCibilScore(_ context.Context, userID uuid.UUID) (*models.CibilScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[userID]
	if !ok {
		return nil, fmt.Errorf("failed to find cibil score: %w", ErrNotFound)
	}
	return &s, nil
}

func (m *MemoryRepository) CreateNotification(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notifications[n.ID]; ok {
		return fmt.Errorf("failed to create notification: %w", ErrConflict)
	}
	n.CreatedAt = m.now()
	m.notifications[n.ID] = *n
	return nil
}

func (m *MemoryRepository) FindNotificationByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notifications[id]
	if !ok {
		return nil, fmt.Errorf("failed to find notification: %w", ErrNotFound)
	}
	return &n, nil
}

func (m *MemoryRepository) ListNotificationsByUser(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepository) ListRecentNotifications(_ context.Context, limit int) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) MarkNotificationRead(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return fmt.Errorf("failed to mark notification read: %w", ErrNotFound)
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}
