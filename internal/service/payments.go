package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func sortByDueDate(payments []models.Payment) []models.Payment {
	if payments == nil {
		return []models.Payment{}
	}
	sort.SliceStable(payments, func(i, j int) bool {
		if payments[i].DueDate.Equal(payments[j].DueDate) {
			return payments[i].Installment < payments[j].Installment
		}
		return payments[i].DueDate.Before(payments[j].DueDate)
	})
	return payments
}

// ListPayments returns the caller's scheduled payments ordered by due date
func (s *Service) ListPayments(ctx context.Context, who Identity) ([]models.Payment, error) {
	payments, err := s.repo.ListPaymentsByUser(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	return sortByDueDate(payments), nil
}

// ListPendingPayments returns the caller's unpaid installments, overdue included
func (s *Service) ListPendingPayments(ctx context.Context, who Identity) ([]models.Payment, error) {
	payments, err := s.repo.ListPaymentsByUser(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	out := payments[:0]
	for _, p := range payments {
		if p.Status != models.PaymentStatusPaid {
			out = append(out, p)
		}
	}
	return sortByDueDate(out), nil
}

// ListLoanPayments returns the schedule of one loan visible to the caller
func (s *Service) ListLoanPayments(ctx context.Context, who Identity, loanID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.GetLoan(ctx, who, loanID); err != nil {
		return nil, err
	}
	payments, err := s.repo.ListPaymentsByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return sortByDueDate(payments), nil
}

// UpdatePaymentStatus sets a payment's status. Marking it paid records the
// paid date and takes its principal off the loan's outstanding balance;
// once every installment is paid the loan is completed. A defaulted loan
// returns to active when none of its installments remain overdue.
func (s *Service) UpdatePaymentStatus(ctx context.Context, who Identity, id uuid.UUID, update models.PaymentStatusUpdate) (*models.Payment, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	if err := update.Validate(); err != nil {
		return nil, invalid(err)
	}

	payment, err := s.repo.FindPaymentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == update.Status {
		return payment, nil
	}
	loan, err := s.repo.FindLoanByID(ctx, payment.LoanID)
	if err != nil {
		return nil, err
	}

	wasPaid := payment.Status == models.PaymentStatusPaid
	payment.Status = update.Status
	switch {
	case update.Status == models.PaymentStatusPaid:
		paid := s.now().UTC()
		payment.PaidDate = &paid
		loan.OutstandingBalance = decimal.Max(loan.OutstandingBalance.Sub(payment.Principal), decimal.Zero)
	case wasPaid:
		payment.PaidDate = nil
		loan.OutstandingBalance = decimal.Min(loan.OutstandingBalance.Add(payment.Principal), loan.Principal)
	}

	schedule, err := s.repo.ListPaymentsByLoan(ctx, loan.ID)
	if err != nil {
		return nil, err
	}
	allPaid, overdue := true, 0
	for _, p := range schedule {
		status := p.Status
		if p.ID == payment.ID {
			status = payment.Status
		}
		if status != models.PaymentStatusPaid {
			allPaid = false
		}
		if status == models.PaymentStatusOverdue {
			overdue++
		}
	}
	switch {
	case allPaid:
		loan.Status = models.LoanStatusCompleted
		loan.OutstandingBalance = decimal.Zero
	case loan.Status == models.LoanStatusCompleted:
		loan.Status = models.LoanStatusActive
	case loan.Status == models.LoanStatusDefaulted && overdue == 0:
		loan.Status = models.LoanStatusActive
	}

	if err := s.repo.RecordPayment(ctx, payment, loan); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"payment_id":  payment.ID,
		"loan_id":     loan.ID,
		"status":      payment.Status,
		"outstanding": loan.OutstandingBalance.StringFixed(2),
	}).Info("Payment status updated")
	return payment, nil
}

// SweepResult counts what one payment sweep changed
type SweepResult struct {
	Overdue   int
	Reminded  int
	Defaulted int
}

// SweepPayments marks pending payments past their due date overdue and
// reminds borrowers of installments due in ReminderDaysAhead days. Active
// loans with DefaultAfterOverdue or more overdue installments are marked
// defaulted. Errors on single payments are logged and the sweep carries on.
func (s *Service) SweepPayments(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	pending, err := s.repo.ListPaymentsByStatus(ctx, models.PaymentStatusPending)
	if err != nil {
		return result, fmt.Errorf("failed to list pending payments: %w", err)
	}

	today := s.today()
	remindOn := today.AddDate(0, 0, s.config.ReminderDaysAhead)
	for i := range pending {
		p := &pending[i]
		due := dateOf(p.DueDate)
		logger := s.log.WithFields(logrus.Fields{"payment_id": p.ID, "loan_id": p.LoanID, "user_id": p.UserID})

		switch {
		case due.Before(today):
			p.Status = models.PaymentStatusOverdue
			if err := s.repo.UpdatePayment(ctx, p); err != nil {
				logger.Errorf("Failed to mark payment overdue: %v", err)
				continue
			}
			result.Overdue++
			s.notify(ctx, p.UserID, models.NotificationPaymentOverdue,
				fmt.Sprintf("Your EMI of ₹%s due on %s is overdue.", p.Amount.StringFixed(2), due.Format("2006-01-02")))
			s.remind(ctx, p, true, logger)
		case due.Equal(remindOn):
			result.Reminded++
			s.notify(ctx, p.UserID, models.NotificationPaymentDue,
				fmt.Sprintf("Your EMI of ₹%s is due on %s.", p.Amount.StringFixed(2), due.Format("2006-01-02")))
			s.remind(ctx, p, false, logger)
		}
	}

	result.Defaulted = s.markDefaults(ctx)

	s.log.WithFields(logrus.Fields{
		"overdue":   result.Overdue,
		"reminded":  result.Reminded,
		"defaulted": result.Defaulted,
	}).Info("Payment sweep finished")
	return result, nil
}

func (s *Service) markDefaults(ctx context.Context) int {
	threshold := s.config.DefaultAfterOverdue
	if threshold <= 0 {
		return 0
	}
	overdue, err := s.repo.ListPaymentsByStatus(ctx, models.PaymentStatusOverdue)
	if err != nil {
		s.log.Errorf("Failed to list overdue payments: %v", err)
		return 0
	}
	counts := make(map[uuid.UUID]int)
	for _, p := range overdue {
		counts[p.LoanID]++
	}

	defaulted := 0
	for loanID, n := range counts {
		if n < threshold {
			continue
		}
		logger := s.log.WithFields(logrus.Fields{"loan_id": loanID, "overdue": n})
		loan, err := s.repo.FindLoanByID(ctx, loanID)
		if err != nil {
			logger.Errorf("Failed to load loan: %v", err)
			continue
		}
		if loan.Status != models.LoanStatusActive {
			continue
		}
		loan.Status = models.LoanStatusDefaulted
		if err := s.repo.UpdateLoan(ctx, loan); err != nil {
			logger.Errorf("Failed to mark loan defaulted: %v", err)
			continue
		}
		defaulted++
		logger.Warn("Loan defaulted")
		s.notify(ctx, loan.UserID, models.NotificationLoanDefaulted,
			fmt.Sprintf("Your %s loan has %d overdue installments and is now in default.", loan.LoanType, n))
	}
	return defaulted
}

func (s *Service) remind(ctx context.Context, p *models.Payment, overdue bool, logger *logrus.Entry) {
	user, err := s.repo.FindUserByID(ctx, p.UserID)
	if err != nil {
		logger.Warnf("Cannot email payment reminder: %v", err)
		return
	}
	if err := s.mailer.SendPaymentReminder(user.Email, user.Name, p.DueDate, p.Amount, overdue); err != nil {
		logger.Warnf("Failed to email payment reminder: %v", err)
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
