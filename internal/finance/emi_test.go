package finance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateEMI_KnownValues(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		tenure    int
		want      int64
	}{
		{"sample personal loan", 500000, 12.5, 36, 16727},
		{"one year at 12%", 100000, 12, 12, 8885},
		{"home loan 20 years", 1000000, 8.5, 240, 8678},
		{"car loan 5 years", 500000, 9.5, 60, 10501},
		{"education 10 years", 200000, 7, 120, 2322},
		{"small loan", 10000, 12, 24, 471},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateEMI(tt.principal, tt.rate, tt.tenure)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculateEMI_SampleDataTolerance(t *testing.T) {
	// The dashboard sample data shows 16,680 for this loan.
	got, err := CalculateEMI(500000, 12.5, 36)
	require.NoError(t, err)
	assert.InEpsilon(t, 16680, float64(got), 0.005)
}

func TestCalculateEMI_ZeroRate(t *testing.T) {
	tests := []struct {
		principal float64
		tenure    int
		want      int64
	}{
		{1200, 12, 100},
		{1000, 3, 333},
		{1000, 6, 167},
		{5, 2, 3},
		{250000, 1, 250000},
	}

	for _, tt := range tests {
		got, err := CalculateEMI(tt.principal, 0, tt.tenure)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "principal %v tenure %d", tt.principal, tt.tenure)
		assert.Equal(t, int64(math.Round(tt.principal/float64(tt.tenure))), got)
	}
}

func TestCalculateEMI_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		tenure    int
	}{
		{"zero principal", 0, 10, 12},
		{"negative principal", -1000, 10, 12},
		{"zero tenure", 1000, 10, 0},
		{"negative tenure", 1000, 10, -6},
		{"negative rate", 1000, -1, 12},
		{"NaN principal", math.NaN(), 10, 12},
		{"infinite principal", math.Inf(1), 10, 12},
		{"NaN rate", 1000, math.NaN(), 12},
		{"infinite rate", 1000, math.Inf(1), 12},
		{"emi rounds to zero", 0.3, 1, 1},
		{"interest-free emi rounds to zero", 10, 0, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateEMI(tt.principal, tt.rate, tt.tenure)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestCalculateEMI_RepaysAtLeastPrincipal(t *testing.T) {
	for _, principal := range []float64{1000, 50000, 750000} {
		for _, rate := range []float64{0.5, 7, 12.5, 24} {
			for _, tenure := range []int{1, 6, 36, 120, 360} {
				emi, err := CalculateEMI(principal, rate, tenure)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, float64(emi*int64(tenure)), principal,
					"principal %v rate %v tenure %d", principal, rate, tenure)
			}
		}
	}
}

func TestCalculateEMI_NonDecreasingInRate(t *testing.T) {
	for _, tenure := range []int{12, 60, 240} {
		prev, err := CalculateEMI(500000, 0, tenure)
		require.NoError(t, err)
		for rate := 0.25; rate <= 30; rate += 0.25 {
			emi, err := CalculateEMI(500000, rate, tenure)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, emi, prev, "rate %v tenure %d", rate, tenure)
			prev = emi
		}
	}
}

func TestCalculateEMI_DecreasingInTenure(t *testing.T) {
	for _, rate := range []float64{6, 12.5, 18} {
		prev, err := CalculateEMI(1000000, rate, 12)
		require.NoError(t, err)
		for tenure := 24; tenure <= 360; tenure += 12 {
			emi, err := CalculateEMI(1000000, rate, tenure)
			require.NoError(t, err)
			assert.Less(t, emi, prev, "rate %v tenure %d", rate, tenure)
			prev = emi
		}
	}
}

func TestCalculateEMI_ExtremeTerms(t *testing.T) {
	// (1+r)^n overflows; the payment tends to the interest-only amount.
	emi, err := CalculateEMI(1000, 1200, 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), emi)

	// (1+r) rounds to 1 in float64.
	emi, err = CalculateEMI(1200, 1e-300, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(100), emi)

	_, err = CalculateEMI(1e300, 12, 12)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTotals(t *testing.T) {
	terms := LoanTerms{Principal: 100000, AnnualRatePercent: 12, TenureMonths: 12}

	total, err := TotalPayable(terms)
	require.NoError(t, err)
	assert.Equal(t, "106620", total.String())

	interest, err := TotalInterest(terms)
	require.NoError(t, err)
	assert.Equal(t, "6620", interest.String())

	_, err = TotalPayable(LoanTerms{Principal: 100, TenureMonths: 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
