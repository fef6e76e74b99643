package finance

import (
	"fmt"
	"strings"
)

// LoanType is the product a loan is issued under.
type LoanType string

const (
	LoanTypePersonal  LoanType = "PERSONAL"
	LoanTypeHome      LoanType = "HOME"
	LoanTypeCar       LoanType = "CAR"
	LoanTypeEducation LoanType = "EDUCATION"
	LoanTypeBusiness  LoanType = "BUSINESS"
)

// LoanTypes lists every loan type in display order.
func LoanTypes() []LoanType {
	return []LoanType{LoanTypePersonal, LoanTypeHome, LoanTypeCar, LoanTypeEducation, LoanTypeBusiness}
}

// ParseLoanType accepts loan type names in any case.
func ParseLoanType(s string) (LoanType, error) {
	lt := LoanType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range LoanTypes() {
		if lt == known {
			return lt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown loan type %q", ErrInvalidArgument, s)
}

// RateTable maps loan types to annual interest rates in percent.
type RateTable map[LoanType]float64

// DefaultRates returns the illustrative policy rates.
func DefaultRates() RateTable {
	return RateTable{
		LoanTypePersonal:  12,
		LoanTypeHome:      8.5,
		LoanTypeCar:       9.5,
		LoanTypeEducation: 7,
		LoanTypeBusiness:  14,
	}
}

// Rate looks up the annual rate for a loan type.
func (t RateTable) Rate(lt LoanType) (float64, error) {
	rate, ok := t[lt]
	if !ok {
		return 0, fmt.Errorf("%w: no rate configured for loan type %q", ErrInvalidArgument, lt)
	}
	return rate, nil
}

// Validate requires a finite, non-negative rate for every loan type.
func (t RateTable) Validate() error {
	for _, lt := range LoanTypes() {
		rate, ok := t[lt]
		if !ok {
			return fmt.Errorf("%w: no rate configured for loan type %q", ErrInvalidArgument, lt)
		}
		if !isFinite(rate) || rate < 0 {
			return fmt.Errorf("%w: rate for %s must be a non-negative percentage, got %v", ErrInvalidArgument, lt, rate)
		}
	}
	return nil
}
