// Package decay implements the continuous demurrage applied to all balances.
// The configured annual decay rate is converted into per-second compounding:
//
//	factor(d) = (1 - annualRate) ^ (seconds(d) / secondsPerYear)
//
// The same formula is applied to every gap, whether it spans one second or
// several years, so decay composes: decaying over [t1,t2] and then [t2,t3]
// equals decaying over [t1,t3] within precision tolerance. All arithmetic is
// arbitrary precision; results are rounded only at presentation.
package decay

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInterval is returned when the decay interval end precedes its
// start.
var ErrInvalidInterval = errors.New("decay interval end precedes start")

// secondsPerYear is the average Gregorian year (365.2425 days).
const secondsPerYear = 31556952

// powPrecision bounds the internal precision of the exponentiation. Balances
// are presented with far fewer digits; the surplus absorbs drift across long
// entry chains.
const powPrecision = 30

// Result describes a decay computation over an interval.
type Result struct {
	// Balance is the decayed balance at the interval end.
	Balance decimal.Decimal
	// Decay is the amount lost, as a non-positive value.
	Decay decimal.Decimal
	// Start is when decay began within the interval; nil if none applied.
	Start *time.Time
	// End is the interval end the balance is valid at.
	End time.Time
	// Duration is how long decay was applied.
	Duration time.Duration
}

// Calculator computes balance decay. It is pure and safe for concurrent use.
type Calculator struct {
	retention decimal.Decimal // 1 - annual rate
	startTime *time.Time      // demurrage activation; nil means always active
}

// NewCalculator creates a Calculator for the given annual decay rate
// (0 <= rate < 1, e.g. "0.50" halves a balance over one year). If startTime
// is non-nil, no decay is applied to time before it.
func NewCalculator(annualRate decimal.Decimal, startTime *time.Time) (*Calculator, error) {
	if annualRate.IsNegative() || annualRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("annual decay rate %s outside [0,1)", annualRate)
	}

	return &Calculator{
		retention: decimal.NewFromInt(1).Sub(annualRate),
		startTime: startTime,
	}, nil
}

// Decay returns the balance after decaying from `from` to `to`. It fails with
// ErrInvalidInterval when to < from and is the identity when the effective
// interval is empty.
func (c *Calculator) Decay(balance decimal.Decimal, from, to time.Time) (Result, error) {
	if to.Before(from) {
		return Result{}, fmt.Errorf("%w: %s > %s", ErrInvalidInterval, from, to)
	}

	start := from
	if c.startTime != nil && start.Before(*c.startTime) {
		start = *c.startTime
	}

	if !to.After(start) {
		return Result{Balance: balance, Decay: decimal.Zero, End: to}, nil
	}

	interval := to.Sub(start)

	factor, err := c.Factor(interval)
	if err != nil {
		return Result{}, err
	}

	decayed := balance.Mul(factor)

	return Result{
		Balance:  decayed,
		Decay:    decayed.Sub(balance),
		Start:    &start,
		End:      to,
		Duration: interval,
	}, nil
}

// Factor returns the multiplicative decay factor for the given interval.
func (c *Calculator) Factor(interval time.Duration) (decimal.Decimal, error) {
	// Millisecond granularity; the division by 1000 is exact.
	seconds := decimal.NewFromInt(interval.Milliseconds()).Div(decimal.NewFromInt(1000))
	exponent := seconds.DivRound(decimal.NewFromInt(secondsPerYear), powPrecision)

	factor, err := c.retention.PowWithPrecision(exponent, powPrecision)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("decay factor for %s: %w", interval, err)
	}

	return factor, nil
}
