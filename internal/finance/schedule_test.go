package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedule(t *testing.T) {
	start := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	got, err := Schedule(LoanTerms{Principal: 12000, AnnualRatePercent: 12, TenureMonths: 3}, start)
	require.NoError(t, err)
	require.Len(t, got, 3)

	want := []struct {
		amount, principal, interest, balance string
	}{
		{"4080", "3960", "120", "8040"},
		{"4080", "3999.6", "80.4", "4040.4"},
		{"4080.8", "4040.4", "40.4", "0"},
	}
	for i, w := range want {
		assert.Equal(t, i+1, got[i].Number)
		assert.Equal(t, start.AddDate(0, i+1, 0), got[i].DueDate)
		assert.Equal(t, w.amount, got[i].Amount.String(), "amount of installment %d", i+1)
		assert.Equal(t, w.principal, got[i].Principal.String(), "principal of installment %d", i+1)
		assert.Equal(t, w.interest, got[i].Interest.String(), "interest of installment %d", i+1)
		assert.Equal(t, w.balance, got[i].Balance.String(), "balance after installment %d", i+1)
	}
}

func TestScheduleZeroRate(t *testing.T) {
	got, err := Schedule(LoanTerms{Principal: 1000, TenureMonths: 3}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "333", got[0].Amount.String())
	assert.Equal(t, "334", got[2].Amount.String())
	assert.True(t, got[2].Balance.IsZero())
}

func TestScheduleEndsEarlyWhenRoundingRepays(t *testing.T) {
	// round(6/4) = 2 repays the principal in three installments
	got, err := Schedule(LoanTerms{Principal: 6, TenureMonths: 4}, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[2].Balance.IsZero())
}

func TestScheduleRepaysPrincipal(t *testing.T) {
	terms := LoanTerms{Principal: 500000, AnnualRatePercent: 12.5, TenureMonths: 36}
	got, err := Schedule(terms, time.Now())
	require.NoError(t, err)
	require.Len(t, got, 36)

	total := decimal.Zero
	for _, inst := range got {
		total = total.Add(inst.Principal)
		assert.False(t, inst.Interest.IsNegative())
	}
	assert.True(t, total.Equal(decimal.NewFromInt(500000)))
	assert.True(t, got[35].Balance.IsZero())
}

func TestScheduleRejectsInvalidTerms(t *testing.T) {
	_, err := Schedule(LoanTerms{Principal: 0, AnnualRatePercent: 10, TenureMonths: 12}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestScheduleRejectsOverlongTenure(t *testing.T) {
	terms := LoanTerms{Principal: 100000, AnnualRatePercent: 12, TenureMonths: 1 << 40}
	_, err := terms.EMI()
	require.NoError(t, err)

	_, err = Schedule(terms, time.Now())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	got, err := Schedule(LoanTerms{Principal: 100000, AnnualRatePercent: 12, TenureMonths: MaxTenureMonths}, time.Now())
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), MaxTenureMonths)
}
