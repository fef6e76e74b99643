package finance

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	scoreFloor = decimal.NewFromInt(300)
	scoreSpan  = decimal.NewFromInt(600)
	hundred    = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)

	maxScore = decimal.NewFromInt(math.MaxInt32)
)

// CreditFactors are the five normalized sub-scores, nominally in [0,100].
type CreditFactors struct {
	PaymentHistory    float64 `json:"paymentHistory"`
	CreditUtilization float64 `json:"creditUtilization"`
	CreditAge         float64 `json:"creditAge"`
	CreditMix         float64 `json:"creditMix"`
	RecentInquiries   float64 `json:"recentInquiries"`
}

var factorNames = [5]string{"paymentHistory", "creditUtilization", "creditAge", "creditMix", "recentInquiries"}

func (f CreditFactors) values() [5]float64 {
	return [5]float64{f.PaymentHistory, f.CreditUtilization, f.CreditAge, f.CreditMix, f.RecentInquiries}
}

// Weights assigns each factor its share of the composite. The weights must
// be non-negative and sum to exactly one.
type Weights struct {
	PaymentHistory    decimal.Decimal
	CreditUtilization decimal.Decimal
	CreditAge         decimal.Decimal
	CreditMix         decimal.Decimal
	RecentInquiries   decimal.Decimal
}

// DefaultWeights returns the shipped factor importances.
func DefaultWeights() Weights {
	return Weights{
		PaymentHistory:    decimal.RequireFromString("0.35"),
		CreditUtilization: decimal.RequireFromString("0.30"),
		CreditAge:         decimal.RequireFromString("0.15"),
		CreditMix:         decimal.RequireFromString("0.10"),
		RecentInquiries:   decimal.RequireFromString("0.10"),
	}
}

// ParseWeights reads five comma-separated decimals in factor order.
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != len(factorNames) {
		return Weights{}, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidArgument, len(factorNames), len(parts))
	}
	var ws [5]decimal.Decimal
	for i, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSpace(p))
		if err != nil {
			return Weights{}, fmt.Errorf("%w: weight for %s: %v", ErrInvalidArgument, factorNames[i], err)
		}
		ws[i] = d
	}
	w := Weights{
		PaymentHistory:    ws[0],
		CreditUtilization: ws[1],
		CreditAge:         ws[2],
		CreditMix:         ws[3],
		RecentInquiries:   ws[4],
	}
	return w, w.Validate()
}

func (w Weights) values() [5]decimal.Decimal {
	return [5]decimal.Decimal{w.PaymentHistory, w.CreditUtilization, w.CreditAge, w.CreditMix, w.RecentInquiries}
}

// Sum is the exact total of all weights.
func (w Weights) Sum() decimal.Decimal {
	return decimal.Sum(w.PaymentHistory, w.CreditUtilization, w.CreditAge, w.CreditMix, w.RecentInquiries)
}

// Validate enforces non-negative weights summing to exactly one.
func (w Weights) Validate() error {
	for i, v := range w.values() {
		if v.IsNegative() {
			return fmt.Errorf("%w: weight for %s is negative: %s", ErrInvalidArgument, factorNames[i], v)
		}
	}
	if sum := w.Sum(); !sum.Equal(one) {
		return fmt.Errorf("%w: weights must sum to 1, got %s", ErrInvalidArgument, sum)
	}
	return nil
}

// FactorPolicy decides what happens to factors outside [0,100].
type FactorPolicy string

const (
	// PolicyPassThrough weights factors as given; scores may leave [300,900].
	PolicyPassThrough FactorPolicy = "passthrough"
	// PolicyClamp pins each factor into [0,100] before weighting.
	PolicyClamp FactorPolicy = "clamp"
	// PolicyReject fails with ErrInvalidArgument on an out-of-range factor.
	PolicyReject FactorPolicy = "reject"
)

// ParseFactorPolicy accepts the policy names case-insensitively. An empty
// string selects PolicyPassThrough.
func ParseFactorPolicy(s string) (FactorPolicy, error) {
	switch p := FactorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyPassThrough, nil
	case PolicyPassThrough, PolicyClamp, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown factor policy %q", ErrInvalidArgument, s)
	}
}

// Scorer computes credit scores with a fixed weight set and factor policy.
type Scorer struct {
	weights Weights
	policy  FactorPolicy
}

// NewScorer validates the weights and policy.
func NewScorer(w Weights, policy FactorPolicy) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	p, err := ParseFactorPolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Scorer{weights: w, policy: p}, nil
}

// Weights returns the scorer's weight set.
func (s *Scorer) Weights() Weights { return s.weights }

// Policy returns the scorer's factor policy.
func (s *Scorer) Policy() FactorPolicy { return s.policy }

// Score maps the weighted factor composite onto the 300-900 scale:
//
//	score = round(300 + (Σ factor_i*weight_i / 100) * 600)
//
// The arithmetic is exact decimal and rounds halves away from zero.
func (s *Scorer) Score(f CreditFactors) (int, error) {
	ws := s.weights.values()
	sum := decimal.Zero
	for i, v := range f.values() {
		if !isFinite(v) {
			return 0, fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidArgument, factorNames[i], v)
		}
		if v < 0 || v > 100 {
			switch s.policy {
			case PolicyReject:
				return 0, fmt.Errorf("%w: %s must lie in [0,100], got %v", ErrInvalidArgument, factorNames[i], v)
			case PolicyClamp:
				v = min(max(v, 0), 100)
			}
		}
		sum = sum.Add(decimal.NewFromFloat(v).Mul(ws[i]))
	}
	score := scoreFloor.Add(sum.Div(hundred).Mul(scoreSpan)).Round(0)
	if score.Abs().GreaterThan(maxScore) {
		return 0, fmt.Errorf("%w: score %s is out of range", ErrInvalidArgument, score)
	}
	return int(score.IntPart()), nil
}

var defaultScorer = &Scorer{weights: DefaultWeights(), policy: PolicyPassThrough}

// CalculateCreditScore scores factors with DefaultWeights and no clamping.
func CalculateCreditScore(f CreditFactors) (int, error) {
	return defaultScorer.Score(f)
}
