// Package finance holds the loan arithmetic: EMI amortization, the weighted
// CIBIL-style credit score and its banding. Every function here is pure and
// safe for concurrent use.
package finance

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// LoanTerms describes an amortizing loan.
type LoanTerms struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent"`
	TenureMonths      int     `json:"tenureMonths"`
}

// Validate rejects terms the EMI formula is not defined for.
func (t LoanTerms) Validate() error {
	if !isFinite(t.Principal) || t.Principal <= 0 {
		return fmt.Errorf("%w: principal must be a positive amount, got %v", ErrInvalidArgument, t.Principal)
	}
	if !isFinite(t.AnnualRatePercent) || t.AnnualRatePercent < 0 {
		return fmt.Errorf("%w: annual rate must be a non-negative percentage, got %v", ErrInvalidArgument, t.AnnualRatePercent)
	}
	if t.TenureMonths <= 0 {
		return fmt.Errorf("%w: tenure must be a positive number of months, got %d", ErrInvalidArgument, t.TenureMonths)
	}
	return nil
}

// EMI returns the equated monthly installment rounded to the nearest whole
// currency unit, halves away from zero.
//
//	r   = annualRatePercent / 12 / 100
//	emi = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate degenerates to P / n. An EMI that rounds to zero is rejected.
func (t LoanTerms) EMI() (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	n := float64(t.TenureMonths)
	r := t.AnnualRatePercent / 12 / 100
	factor := math.Pow(1+r, n)

	var emi float64
	switch {
	case r == 0 || factor == 1:
		// Rates too small to move (1+r)^n behave as interest-free.
		emi = t.Principal / n
	case math.IsInf(factor, 1):
		emi = t.Principal * r
	default:
		emi = t.Principal * r * factor / (factor - 1)
	}

	rounded := math.Round(emi)
	if !isFinite(rounded) || rounded >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: emi for principal %v at %v%% over %d months overflows", ErrInvalidArgument, t.Principal, t.AnnualRatePercent, t.TenureMonths)
	}
	if rounded < 1 {
		return 0, fmt.Errorf("%w: principal %v is too small to amortize over %d months", ErrInvalidArgument, t.Principal, t.TenureMonths)
	}
	return int64(rounded), nil
}

// CalculateEMI is the function form of LoanTerms.EMI.
func CalculateEMI(principal, annualRatePercent float64, tenureMonths int) (int64, error) {
	return LoanTerms{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TenureMonths:      tenureMonths,
	}.EMI()
}

// TotalPayable is the sum of all installments: EMI * tenure.
func TotalPayable(t LoanTerms) (decimal.Decimal, error) {
	emi, err := t.EMI()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(emi).Mul(decimal.NewFromInt(int64(t.TenureMonths))), nil
}

// TotalInterest is TotalPayable minus the principal.
func TotalInterest(t LoanTerms) (decimal.Decimal, error) {
	total, err := TotalPayable(t)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Sub(decimal.NewFromFloat(t.Principal)), nil
}
