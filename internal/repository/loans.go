package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

const loanColumns = `id, user_id, loan_type, principal, interest_rate, tenure_months, start_date, emi, status,
	outstanding_balance, rejection_reason, uploaded_file_name, hmac, created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*models.Loan, error) {
	loan := &models.Loan{}
	err := row.Scan(&loan.ID, &loan.UserID, &loan.LoanType, &loan.Principal, &loan.InterestRate, &loan.TenureMonths,
		&loan.StartDate, &loan.EMI, &loan.Status, &loan.OutstandingBalance, &loan.RejectionReason,
		&loan.UploadedFileName, &loan.HMAC, &loan.CreatedAt, &loan.UpdatedAt)
	return loan, err
}

// CreateLoan creates a new loan in the database
func (r *Repository) CreateLoan(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO lending.loans (id, user_id, loan_type, principal, interest_rate, tenure_months, start_date, emi,
			status, outstanding_balance, rejection_reason, uploaded_file_name, hmac, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, loan.ID, loan.UserID, loan.LoanType, loan.Principal, loan.InterestRate,
		loan.TenureMonths, loan.StartDate, loan.EMI, loan.Status, loan.OutstandingBalance, loan.RejectionReason,
		loan.UploadedFileName, loan.HMAC).
		Scan(&loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return wrapWriteErr("failed to create loan", err)
	}
	return nil
}

// FindLoanByID retrieves a loan by ID
func (r *Repository) FindLoanByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM lending.loans WHERE id = $1`
	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapReadErr("failed to find loan", err)
	}
	return loan, nil
}

// ListLoans returns all loans, newest first
func (r *Repository) ListLoans(ctx context.Context) ([]models.Loan, error) {
	return r.queryLoans(ctx, `SELECT `+loanColumns+` FROM lending.loans ORDER BY created_at DESC`)
}

// ListLoansByUser returns a user's loans, newest first
func (r *Repository) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]models.Loan, error) {
	return r.queryLoans(ctx, `SELECT `+loanColumns+` FROM lending.loans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *Repository) queryLoans(ctx context.Context, query string, args ...any) ([]models.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

const updateLoanQuery = `
	UPDATE lending.loans
	SET start_date = $2, status = $3, outstanding_balance = $4, rejection_reason = $5,
		uploaded_file_name = $6, updated_at = CURRENT_TIMESTAMP
	WHERE id = $1
	RETURNING updated_at`

type execer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func updateLoan(ctx context.Context, q execer, loan *models.Loan) error {
	err := q.QueryRowContext(ctx, updateLoanQuery, loan.ID, loan.StartDate, loan.Status, loan.OutstandingBalance,
		loan.RejectionReason, loan.UploadedFileName).
		Scan(&loan.UpdatedAt)
	if err != nil {
		return wrapReadErr("failed to update loan", err)
	}
	return nil
}

// UpdateLoan saves the mutable fields of a loan
func (r *Repository) UpdateLoan(ctx context.Context, loan *models.Loan) error {
	return updateLoan(ctx, r.db, loan)
}

// DeleteLoan removes a loan and its payments
func (r *Repository) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lending.loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to delete loan: %w", ErrNotFound)
	}
	return nil
}

// ActivateLoan saves an approved loan together with its payment schedule
func (r *Repository) ActivateLoan(ctx context.Context, loan *models.Loan, payments []models.Payment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateLoan(ctx, tx, loan); err != nil {
		return err
	}
	for i := range payments {
		if err := insertPayment(ctx, tx, &payments[i]); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit loan activation: %w", err)
	}
	return nil
}
