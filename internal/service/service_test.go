package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	kind    string
	to      string
	overdue bool
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) record(s sentMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, s)
	return nil
}

func (m *fakeMailer) SendPaymentReminder(to, _ string, _ time.Time, _ decimal.Decimal, overdue bool) error {
	return m.record(sentMail{kind: "reminder", to: to, overdue: overdue})
}

func (m *fakeMailer) SendLoanDecision(to, _ string, _ *models.Loan) error {
	return m.record(sentMail{kind: "decision", to: to})
}

func (m *fakeMailer) SendBroadcast(to, _, _ string) error {
	return m.record(sentMail{kind: "broadcast", to: to})
}

func (m *fakeMailer) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.sent {
		if s.kind == kind {
			n++
		}
	}
	return n
}

type fixedKeyRate struct {
	rate float64
	err  error
}

func (f fixedKeyRate) KeyRate(context.Context) (float64, error) { return f.rate, f.err }

var testNow = time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		TokenTTL:            time.Hour,
		HMACSecret:          "test-hmac",
		EncryptionKey:       []byte("0123456789abcdef0123456789abcdef"),
		ReminderDaysAhead:   3,
		DefaultAfterOverdue: 2,
		Rates:               finance.DefaultRates(),
		ScoreWeights:        finance.DefaultWeights(),
		FactorPolicy:        finance.PolicyPassThrough,
	}
}

type fixture struct {
	svc    *Service
	repo   *repository.MemoryRepository
	mailer *fakeMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := repository.NewMemoryRepository()
	mailer := &fakeMailer{}
	svc, err := NewService(repo, log, testConfig(), mailer, fixedKeyRate{rate: 21})
	require.NoError(t, err)
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, repo: repo, mailer: mailer}
}

func (f *fixture) user(t *testing.T, email string) Identity {
	t.Helper()
	u, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Email: email, Name: "Test User", Phone: "+919800000000", Password: "password123",
	})
	require.NoError(t, err)
	return Identity{UserID: u.ID, Role: u.Role}
}

func (f *fixture) admin(t *testing.T) Identity {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.EnsureAdmin(ctx, "admin@example.com", "adminpass123"))
	u, err := f.repo.FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	return Identity{UserID: u.ID, Role: u.Role}
}

func rate(v float64) *float64 { return &v }

func TestNewServiceRejectsBadWeights(t *testing.T) {
	cfg := testConfig()
	cfg.ScoreWeights.PaymentHistory = decimal.RequireFromString("0.5")
	_, err := NewService(repository.NewMemoryRepository(), logrus.New(), cfg, &fakeMailer{}, fixedKeyRate{})
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	who := f.user(t, "Alice@Example.com")

	_, err := f.svc.Register(ctx, models.RegisterRequest{
		Email: "alice@example.com", Name: "Again", Password: "password123",
	})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	token, err := f.svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	got, err := f.svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, who, got)
	assert.False(t, got.IsAdmin())

	f.svc.now = func() time.Time { return testNow.Add(2 * time.Hour) }
	_, err = f.svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterRejectsPasswordBcryptCannotHash(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), models.RegisterRequest{
		Email: "long@example.com", Name: "Long", Password: strings.Repeat("x", 73),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegisterEncryptsPhone(t *testing.T) {
	f := newFixture(t)
	who := f.user(t, "bob@example.com")

	stored, err := f.repo.FindUserByID(context.Background(), who.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, "+919800000000", stored.Phone)
	assert.NotEmpty(t, stored.Phone)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.admin(t)
	require.NoError(t, f.svc.EnsureAdmin(ctx, "ADMIN@example.com", "adminpass123"))

	users, err := f.svc.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.True(t, admin.IsAdmin())

	assert.NoError(t, f.svc.EnsureAdmin(ctx, "", ""))
}

func TestQuoteEMI(t *testing.T) {
	f := newFixture(t)

	q, err := f.svc.QuoteEMI(models.EMIQuoteRequest{Principal: 500000, InterestRate: rate(12.5), TenureMonths: 36})
	require.NoError(t, err)
	assert.Equal(t, int64(16727), q.EMI)
	assert.True(t, q.TotalPayable.Equal(decimal.NewFromInt(16727*36)))
	assert.True(t, q.TotalInterest.Equal(decimal.NewFromInt(16727*36-500000)))

	q, err = f.svc.QuoteEMI(models.EMIQuoteRequest{LoanType: "personal", Principal: 500000, TenureMonths: 36})
	require.NoError(t, err)
	assert.Equal(t, finance.LoanTypePersonal, q.LoanType)
	assert.Equal(t, 12.0, q.InterestRate)
	assert.Equal(t, int64(16607), q.EMI)

	_, err = f.svc.QuoteEMI(models.EMIQuoteRequest{Principal: 500000, TenureMonths: 36})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.QuoteEMI(models.EMIQuoteRequest{Principal: 500000, InterestRate: rate(10), TenureMonths: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestKeyRate(t *testing.T) {
	f := newFixture(t)
	got, err := f.svc.KeyRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 21.0, got)

	f.svc.keyRates = fixedKeyRate{err: errors.New("unreachable")}
	_, err = f.svc.KeyRate(context.Background())
	assert.Error(t, err)
}

func TestRatesReturnsCopy(t *testing.T) {
	f := newFixture(t)
	rates := f.svc.Rates()
	rates[finance.LoanTypeHome] = 99
	assert.Equal(t, 8.5, f.svc.Rates()[finance.LoanTypeHome])
}
