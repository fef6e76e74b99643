package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/Dan9191/loan-service/internal/finance"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/Dan9191/loan-service/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Rates returns the configured annual rate per loan type
func (s *Service) Rates() finance.RateTable {
	rates := make(finance.RateTable, len(s.config.Rates))
	for lt, r := range s.config.Rates {
		rates[lt] = r
	}
	return rates
}

// KeyRate returns the central bank key rate plus the bank margin
func (s *Service) KeyRate(ctx context.Context) (float64, error) {
	rate, err := s.keyRates.KeyRate(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get key rate: %w", err)
	}
	return rate, nil
}

// resolveRate picks the explicit rate when given, otherwise the loan type's
func (s *Service) resolveRate(loanType string, explicit *float64) (finance.LoanType, float64, error) {
	var lt finance.LoanType
	if loanType != "" {
		parsed, err := finance.ParseLoanType(loanType)
		if err != nil {
			return "", 0, err
		}
		lt = parsed
	}
	if explicit != nil {
		return lt, *explicit, nil
	}
	rate, err := s.config.Rates.Rate(lt)
	if err != nil {
		return "", 0, err
	}
	return lt, rate, nil
}

// QuoteEMI prices a loan without storing anything
func (s *Service) QuoteEMI(req models.EMIQuoteRequest) (*models.EMIQuote, error) {
	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	lt, rate, err := s.resolveRate(req.LoanType, req.InterestRate)
	if err != nil {
		return nil, invalid(err)
	}

	terms := finance.LoanTerms{Principal: req.Principal, AnnualRatePercent: rate, TenureMonths: req.TenureMonths}
	emi, err := terms.EMI()
	if err != nil {
		return nil, invalid(err)
	}
	total, err := finance.TotalPayable(terms)
	if err != nil {
		return nil, invalid(err)
	}

	return &models.EMIQuote{
		LoanType:      lt,
		Principal:     req.Principal,
		InterestRate:  rate,
		TenureMonths:  req.TenureMonths,
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: total.Sub(decimal.NewFromFloat(req.Principal)),
	}, nil
}

func (s *Service) sealLoan(l *models.Loan) string {
	return utils.SealLoanTerms(l.ID.String(), l.Principal.String(), strconv.FormatFloat(l.InterestRate, 'f', -1, 64),
		l.TenureMonths, l.EMI.String(), s.config.HMACSecret)
}

func (s *Service) verifyLoanSeal(l *models.Loan) bool {
	return utils.VerifySeal(l.HMAC, l.ID.String(), l.Principal.String(), strconv.FormatFloat(l.InterestRate, 'f', -1, 64),
		l.TenureMonths, l.EMI.String(), s.config.HMACSecret)
}

// ApplyForLoan records a pending loan application for the caller, pricing
// its EMI from the loan type's rate unless an explicit rate is given
func (s *Service) ApplyForLoan(ctx context.Context, who Identity, app models.LoanApplication) (*models.Loan, error) {
	if err := app.Validate(); err != nil {
		return nil, invalid(err)
	}
	lt, rate, err := s.resolveRate(app.LoanType, app.InterestRate)
	if err != nil {
		return nil, invalid(err)
	}
	if !decimal.NewFromFloat(app.Principal).IsPositive() {
		return nil, invalid(fmt.Errorf("principal must be a positive amount, got %v", app.Principal))
	}

	// Amounts are kept to the paisa; the EMI is priced on the stored principal
	principal := decimal.NewFromFloat(app.Principal).Round(2)
	terms := finance.LoanTerms{Principal: principal.InexactFloat64(), AnnualRatePercent: rate, TenureMonths: app.TenureMonths}
	emi, err := terms.EMI()
	if err != nil {
		return nil, invalid(err)
	}

	loan := &models.Loan{
		ID:                 uuid.New(),
		UserID:             who.UserID,
		LoanType:           lt,
		Principal:          principal,
		InterestRate:       rate,
		TenureMonths:       app.TenureMonths,
		StartDate:          s.today(),
		EMI:                decimal.NewFromInt(emi),
		Status:             models.LoanStatusPending,
		OutstandingBalance: principal,
	}
	loan.HMAC = s.sealLoan(loan)

	if err := s.repo.CreateLoan(ctx, loan); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"loan_id": loan.ID, "user_id": who.UserID, "emi": emi}).Info("Loan application received")
	return loan, nil
}

// GetLoan returns a loan visible to the caller
func (s *Service) GetLoan(ctx context.Context, who Identity, id uuid.UUID) (*models.Loan, error) {
	loan, err := s.repo.FindLoanByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireSelfOrAdmin(who, loan.UserID); err != nil {
		return nil, err
	}
	return loan, nil
}

// ListLoans filters and orders loans. Non-admin callers only ever see
// their own loans regardless of the filter's UserID.
func (s *Service) ListLoans(ctx context.Context, who Identity, filter models.LoanFilter) ([]models.Loan, error) {
	if !who.IsAdmin() {
		filter.UserID = &who.UserID
	}

	var (
		loans []models.Loan
		err   error
	)
	if filter.UserID != nil {
		loans, err = s.repo.ListLoansByUser(ctx, *filter.UserID)
	} else {
		loans, err = s.repo.ListLoans(ctx)
	}
	if err != nil {
		return nil, err
	}

	less, err := loanOrdering(filter.SortBy)
	if err != nil {
		return nil, invalid(err)
	}

	out := make([]models.Loan, 0, len(loans))
	for _, l := range loans {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		if filter.LoanType != "" && l.LoanType != filter.LoanType {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

func loanOrdering(sortBy string) (func(a, b models.Loan) bool, error) {
	switch sortBy {
	case "", "created_at":
		return func(a, b models.Loan) bool { return a.CreatedAt.Before(b.CreatedAt) }, nil
	case "principal":
		return func(a, b models.Loan) bool { return a.Principal.LessThan(b.Principal) }, nil
	case "emi":
		return func(a, b models.Loan) bool { return a.EMI.LessThan(b.EMI) }, nil
	case "tenure_months":
		return func(a, b models.Loan) bool { return a.TenureMonths < b.TenureMonths }, nil
	default:
		return nil, fmt.Errorf("cannot sort loans by %q", sortBy)
	}
}

// DecideLoan approves or rejects a pending loan. Approval activates the
// loan from today and generates its EMI payment schedule.
func (s *Service) DecideLoan(ctx context.Context, who Identity, id uuid.UUID, decision models.LoanDecision) (*models.Loan, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	if err := decision.Validate(); err != nil {
		return nil, invalid(err)
	}

	loan, err := s.repo.FindLoanByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loan.Status != models.LoanStatusPending {
		return nil, fmt.Errorf("%w: loan %s is %s, only pending loans can be decided", ErrConflict, id, loan.Status)
	}
	if decision.UploadedFileName != "" {
		loan.UploadedFileName = decision.UploadedFileName
	}

	logger := s.log.WithFields(logrus.Fields{"loan_id": loan.ID, "user_id": loan.UserID, "admin_id": who.UserID})

	if !decision.Approves() {
		loan.Status = models.LoanStatusRejected
		loan.RejectionReason = decision.RejectionReason
		if err := s.repo.UpdateLoan(ctx, loan); err != nil {
			return nil, err
		}
		logger.Info("Loan rejected")
		s.notify(ctx, loan.UserID, models.NotificationLoanRejected,
			fmt.Sprintf("Your %s loan application was rejected: %s", loan.LoanType, loan.RejectionReason))
		s.mailDecision(ctx, loan)
		return loan, nil
	}

	if !s.verifyLoanSeal(loan) {
		logger.Error("Loan terms failed integrity check")
		return nil, fmt.Errorf("%w: loan %s terms do not match their seal", ErrConflict, id)
	}

	loan.Status = models.LoanStatusActive
	loan.StartDate = s.today()
	loan.RejectionReason = ""

	schedule, err := finance.Schedule(loan.Terms(), loan.StartDate)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment schedule: %w", err)
	}
	payments := make([]models.Payment, 0, len(schedule))
	for _, inst := range schedule {
		payments = append(payments, models.Payment{
			ID:          uuid.New(),
			LoanID:      loan.ID,
			UserID:      loan.UserID,
			Installment: inst.Number,
			Amount:      inst.Amount,
			Principal:   inst.Principal,
			DueDate:     inst.DueDate,
			Status:      models.PaymentStatusPending,
		})
	}

	if err := s.repo.ActivateLoan(ctx, loan, payments); err != nil {
		return nil, err
	}

	logger.WithField("installments", len(payments)).Info("Loan approved")
	s.notify(ctx, loan.UserID, models.NotificationLoanApproved,
		fmt.Sprintf("Your %s loan of ₹%s has been approved. EMI ₹%s for %d months.",
			loan.LoanType, loan.Principal.StringFixed(2), loan.EMI.StringFixed(0), loan.TenureMonths))
	s.mailDecision(ctx, loan)
	return loan, nil
}

func (s *Service) mailDecision(ctx context.Context, loan *models.Loan) {
	user, err := s.repo.FindUserByID(ctx, loan.UserID)
	if err != nil {
		s.log.Warnf("Cannot email decision for loan %s: %v", loan.ID, err)
		return
	}
	if err := s.mailer.SendLoanDecision(user.Email, user.Name, loan); err != nil {
		s.log.Warnf("Failed to email decision for loan %s: %v", loan.ID, err)
	}
}

// DeleteLoan removes a loan and its schedule
func (s *Service) DeleteLoan(ctx context.Context, who Identity, id uuid.UUID) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if err := s.repo.DeleteLoan(ctx, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"loan_id": id, "admin_id": who.UserID}).Info("Loan deleted")
	return nil
}
