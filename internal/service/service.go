package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrConflict     = repository.ErrConflict
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Store is the persistence the service needs; repository.Repository and
// repository.MemoryRepository both satisfy it
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateLoan(ctx context.Context, loan *models.Loan) error
	FindLoanByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	ListLoans(ctx context.Context) ([]models.Loan, error)
	ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]models.Loan, error)
	UpdateLoan(ctx context.Context, loan *models.Loan) error
	DeleteLoan(ctx context.Context, id uuid.UUID) error
	ActivateLoan(ctx context.Context, loan *models.Loan, payments []models.Payment) error

	FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error)
	ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]models.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	RecordPayment(ctx context.Context, p *models.Payment, loan *models.Loan) error

	UpsertCibilScore(ctx context.Context, s *models.CibilScore) error
	FindCibilScore(ctx context.Context, userID uuid.UUID) (*models.CibilScore, error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	FindNotificationByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	ListRecentNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) error
}

// Mailer delivers borrower emails
type Mailer interface {
	SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal, overdue bool) error
	SendLoanDecision(to, name string, loan *models.Loan) error
	SendBroadcast(to, name, message string) error
}

// KeyRateSource reports the current reference lending rate
type KeyRateSource interface {
	KeyRate(ctx context.Context) (float64, error)
}

// Identity is the authenticated caller of an operation
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

// IsAdmin reports whether the caller has the admin role
func (id Identity) IsAdmin() bool { return id.Role == models.RoleAdmin }

// Service handles business logic
type Service struct {
	repo     Store
	log      *logrus.Logger
	config   *config.Config
	scorer   *finance.Scorer
	mailer   Mailer
	keyRates KeyRateSource
	now      func() time.Time
}

// NewService initializes a new service
func NewService(repo Store, log *logrus.Logger, cfg *config.Config, mailer Mailer, keyRates KeyRateSource) (*Service, error) {
	scorer, err := finance.NewScorer(cfg.ScoreWeights, cfg.FactorPolicy)
	if err != nil {
		return nil, fmt.Errorf("failed to configure credit scorer: %w", err)
	}
	if err := cfg.Rates.Validate(); err != nil {
		return nil, fmt.Errorf("failed to configure loan rates: %w", err)
	}
	return &Service{
		repo:     repo,
		log:      log,
		config:   cfg,
		scorer:   scorer,
		mailer:   mailer,
		keyRates: keyRates,
		now:      time.Now,
	}, nil
}

func requireAdmin(who Identity) error {
	if !who.IsAdmin() {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

func requireSelfOrAdmin(who Identity, userID uuid.UUID) error {
	if who.UserID != userID && !who.IsAdmin() {
		return fmt.Errorf("%w: access to another user's records", ErrForbidden)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// notify stores an in-app notification. Failures are logged, not returned,
// so a notification never rolls back the operation that triggered it.
func (s *Service) notify(ctx context.Context, userID uuid.UUID, typ models.NotificationType, message string) {
	n := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    typ,
		Message: message,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		s.log.WithFields(logrus.Fields{"user_id": userID, "type": typ}).Warnf("Failed to store notification: %v", err)
	}
}

func (s *Service) today() time.Time {
	return dateOf(s.now())
}
