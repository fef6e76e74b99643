package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLoanType(t *testing.T) {
	lt, err := ParseLoanType(" home ")
	require.NoError(t, err)
	assert.Equal(t, LoanTypeHome, lt)

	_, err = ParseLoanType("gold")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDefaultRates(t *testing.T) {
	rates := DefaultRates()
	require.NoError(t, rates.Validate())

	rate, err := rates.Rate(LoanTypeEducation)
	require.NoError(t, err)
	assert.Equal(t, 7.0, rate)

	delete(rates, LoanTypeCar)
	_, err = rates.Rate(LoanTypeCar)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, rates.Validate(), ErrInvalidArgument)
}
