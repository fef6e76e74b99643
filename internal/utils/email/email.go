package email

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const signature = "\nBest regards,\nLoan Service"

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender. With no SMTP_HOST configured every
// send is logged and skipped.
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends an upcoming or overdue EMI reminder
func (s *Sender) SendPaymentReminder(to, name string, dueDate time.Time, amount decimal.Decimal, overdue bool) error {
	return s.send(paymentReminder(s.cfg.SenderEmail, to, name, dueDate, amount, overdue))
}

// SendLoanDecision tells the borrower whether their loan was approved
func (s *Sender) SendLoanDecision(to, name string, loan *models.Loan) error {
	return s.send(loanDecision(s.cfg.SenderEmail, to, name, loan))
}

// SendBroadcast delivers an administrator announcement
func (s *Sender) SendBroadcast(to, name, message string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Announcement"
	e.Text = []byte(fmt.Sprintf("Dear %s,\n\n%s\n%s", name, message, signature))
	return s.send(e)
}

func paymentReminder(from, to, name string, dueDate time.Time, amount decimal.Decimal, overdue bool) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", name)
	if overdue {
		e.Subject = "Overdue EMI Payment Notification"
		fmt.Fprintf(&body,
			"Your EMI payment of ₹%s was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible to protect your credit score.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"))
	} else {
		e.Subject = "Upcoming EMI Payment Reminder"
		fmt.Fprintf(&body,
			"This is a reminder that your EMI payment of ₹%s is due on %s.\n"+
				"Please ensure sufficient funds are available in your account.\n",
			amount.StringFixed(2), dueDate.Format("2006-01-02"))
	}
	body.WriteString(signature)
	e.Text = []byte(body.String())
	return e
}

func loanDecision(from, to, name string, loan *models.Loan) *email.Email {
	e := email.NewEmail()
	e.From = from
	e.To = []string{to}

	var body strings.Builder
	fmt.Fprintf(&body, "Dear %s,\n\n", name)
	if loan.Status == models.LoanStatusActive {
		e.Subject = "Loan Approved"
		fmt.Fprintf(&body,
			"Your %s loan of ₹%s has been approved.\n"+
				"Your EMI is ₹%s for %d months at %.2f%% per annum, starting %s.\n",
			strings.ToLower(string(loan.LoanType)), loan.Principal.StringFixed(2), loan.EMI.StringFixed(2),
			loan.TenureMonths, loan.InterestRate, loan.StartDate.Format("2006-01-02"))
	} else {
		e.Subject = "Loan Application Update"
		fmt.Fprintf(&body,
			"We are unable to approve your %s loan application of ₹%s.\nReason: %s\n",
			strings.ToLower(string(loan.LoanType)), loan.Principal.StringFixed(2), loan.RejectionReason)
	}
	body.WriteString(signature)
	e.Text = []byte(body.String())
	return e
}

func (s *Sender) send(e *email.Email) error {
	if s.cfg.SMTPHost == "" {
		s.logger.Debugf("SMTP disabled, skipping email to %v: %s", e.To, e.Subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
