package repository

import (
	"context"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

const paymentColumns = `id, loan_id, user_id, installment, amount, principal, due_date, paid_date, status, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	p := &models.Payment{}
	err := row.Scan(&p.ID, &p.LoanID, &p.UserID, &p.Installment, &p.Amount, &p.Principal, &p.DueDate, &p.PaidDate,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func insertPayment(ctx context.Context, q execer, p *models.Payment) error {
	query := `
		INSERT INTO lending.payments (id, loan_id, user_id, installment, amount, principal, due_date, paid_date, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := q.QueryRowContext(ctx, query, p.ID, p.LoanID, p.UserID, p.Installment, p.Amount, p.Principal, p.DueDate,
		p.PaidDate, p.Status).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrapWriteErr("failed to create payment", err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by ID
func (r *Repository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM lending.payments WHERE id = $1`
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapReadErr("failed to find payment", err)
	}
	return p, nil
}

// ListPayments returns all payments ordered by due date
func (r *Repository) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM lending.payments ORDER BY due_date, installment`)
}

// ListPaymentsByUser returns a user's payments ordered by due date
func (r *Repository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	return r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM lending.payments WHERE user_id = $1 ORDER BY due_date, installment`, userID)
}

// ListPaymentsByLoan returns a loan's payments in installment order
func (r *Repository) ListPaymentsByLoan(ctx context.Context, loanID uuid.UUID) ([]models.Payment, error) {
	return r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM lending.payments WHERE loan_id = $1 ORDER BY installment`, loanID)
}

// ListPaymentsByStatus returns payments in the given status ordered by due date
func (r *Repository) ListPaymentsByStatus(ctx context.Context, status models.PaymentStatus) ([]models.Payment, error) {
	return r.queryPayments(ctx, `SELECT `+paymentColumns+` FROM lending.payments WHERE status = $1 ORDER BY due_date, installment`, status)
}

func (r *Repository) queryPayments(ctx context.Context, query string, args ...any) ([]models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func updatePayment(ctx context.Context, q execer, p *models.Payment) error {
	query := `
		UPDATE lending.payments
		SET status = $2, paid_date = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING updated_at`
	if err := q.QueryRowContext(ctx, query, p.ID, p.Status, p.PaidDate).Scan(&p.UpdatedAt); err != nil {
		return wrapReadErr("failed to update payment", err)
	}
	return nil
}

// UpdatePayment saves a payment's status and paid date
func (r *Repository) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return updatePayment(ctx, r.db, p)
}

// RecordPayment saves a payment together with the loan balance it changed
func (r *Repository) RecordPayment(ctx context.Context, p *models.Payment, loan *models.Loan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updatePayment(ctx, tx, p); err != nil {
		return err
	}
	if err := updateLoan(ctx, tx, loan); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}
