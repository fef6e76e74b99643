package finance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MaxTenureMonths is the longest loan a schedule is built for.
const MaxTenureMonths = 600

// Installment is one period of a repayment schedule.
type Installment struct {
	Number    int
	DueDate   time.Time
	Amount    decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Balance   decimal.Decimal
}

// Schedule splits a loan into monthly installments of its rounded EMI, the
// first due one month after start. Interest accrues on the remaining balance
// and is rounded to two places; the final installment settles whatever
// balance rounding has left, so the schedule always ends at zero. When EMI
// rounding pays the loan off early the schedule is shorter than the tenure.
func Schedule(t LoanTerms, start time.Time) ([]Installment, error) {
	if t.TenureMonths > MaxTenureMonths {
		return nil, fmt.Errorf("%w: tenure of %d months exceeds %d", ErrInvalidArgument, t.TenureMonths, MaxTenureMonths)
	}
	emi, err := t.EMI()
	if err != nil {
		return nil, err
	}

	payment := decimal.NewFromInt(emi)
	remaining := decimal.NewFromFloat(t.Principal)
	monthlyRate := decimal.NewFromFloat(t.AnnualRatePercent).Div(decimal.NewFromInt(1200))

	var schedule []Installment
	for period := 1; period <= t.TenureMonths && remaining.IsPositive(); period++ {
		interest := remaining.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		if period == t.TenureMonths || principalPart.GreaterThan(remaining) {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		schedule = append(schedule, Installment{
			Number:    period,
			DueDate:   start.AddDate(0, period, 0),
			Amount:    principalPart.Add(interest),
			Principal: principalPart,
			Interest:  interest,
			Balance:   remaining,
		})
	}
	return schedule, nil
}
