package money

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
	ErrNothingToSplit   = errors.New("money: no positive weights to distribute over")
)

// INR is the base currency for all property rates.
const INR = "INR"

// Money keeps amounts in integer paise to avoid floating point issues.
type Money struct {
	Amount   int64
	Currency string
}

// New constructs a Money value validating minimal invariants.
func New(amount int64, currency string) (Money, error) {
	if len(currency) != 3 {
		return Money{}, ErrInvalidCurrency
	}
	currency = strings.ToUpper(currency)
	return Money{Amount: amount, Currency: currency}, nil
}

// Must creates Money and panics if validation fails; useful in tests and fixtures.
func Must(amount int64, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Rupees builds an INR amount from whole rupees.
func Rupees(rupees int64) Money {
	return Money{Amount: rupees * 100, Currency: INR}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub subtracts other from the receiver.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.ensureSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Neg returns the negated amount preserving currency.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// Percent returns pct% of the amount, rounded half away from zero.
func (m Money) Percent(pct float64) Money {
	raw := float64(m.Amount) * pct / 100
	return Money{Amount: int64(math.Round(raw)), Currency: m.Currency}
}

// ClampNonNegative floors the amount at zero.
func (m Money) ClampNonNegative() Money {
	if m.Amount < 0 {
		return Money{Amount: 0, Currency: m.Currency}
	}
	return m
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) String() string {
	return fmt.Sprintf("%s %d.%02d", m.Currency, m.Amount/100, abs(m.Amount%100))
}

// Distribute splits total across the weights proportionally using the
// largest-remainder method. The parts always sum to total exactly.
func Distribute(total Money, weights []int64) ([]Money, error) {
	var weightSum int64
	for _, w := range weights {
		if w > 0 {
			weightSum += w
		}
	}
	if weightSum <= 0 {
		return nil, ErrNothingToSplit
	}

	parts := make([]Money, len(weights))
	remainders := make([]int64, len(weights))
	divisor := big.NewInt(weightSum)
	var assigned int64
	for i, w := range weights {
		if w <= 0 {
			parts[i] = Money{Amount: 0, Currency: total.Currency}
			continue
		}
		// total*weight can exceed int64 for large paise totals, so the
		// product goes through big.Int. Quotient and remainder both fit.
		share := new(big.Int).Mul(big.NewInt(total.Amount), big.NewInt(w))
		quo, rem := new(big.Int).QuoRem(share, divisor, new(big.Int))
		parts[i] = Money{Amount: quo.Int64(), Currency: total.Currency}
		remainders[i] = rem.Int64()
		assigned += parts[i].Amount
	}

	// Hand the leftover paise to the largest remainders first.
	for leftover := total.Amount - assigned; leftover > 0; leftover-- {
		best := -1
		for i, r := range remainders {
			if r > 0 && (best < 0 || r > remainders[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		parts[best].Amount++
		remainders[best] = 0
	}
	return parts, nil
}

func (m Money) ensureSameCurrency(other Money) error {
	if m.Currency == "" || other.Currency == "" {
		return ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return ErrCurrencyMismatch
	}
	return nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
