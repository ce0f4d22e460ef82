package decay_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/commledger/internal/decay"
)

const secondsPerYear = 31556952

func newCalculator(t *testing.T, rate string) *decay.Calculator {
	t.Helper()

	calc, err := decay.NewCalculator(decimal.RequireFromString(rate), nil)
	require.NoError(t, err)

	return calc
}

func TestNewCalculator_RejectsInvalidRate(t *testing.T) {
	_, err := decay.NewCalculator(decimal.NewFromInt(1), nil)
	assert.Error(t, err)

	_, err = decay.NewCalculator(decimal.RequireFromString("-0.1"), nil)
	assert.Error(t, err)
}

func TestDecay_InvalidInterval(t *testing.T) {
	calc := newCalculator(t, "0.50")
	now := time.Now()

	_, err := calc.Decay(decimal.NewFromInt(100), now, now.Add(-time.Second))
	assert.ErrorIs(t, err, decay.ErrInvalidInterval)
}

func TestDecay_ZeroGapIdentity(t *testing.T) {
	calc := newCalculator(t, "0.50")
	now := time.Now()
	balance := decimal.RequireFromString("123.456789")

	res, err := calc.Decay(balance, now, now)
	require.NoError(t, err)

	assert.True(t, res.Balance.Equal(balance), "got %s", res.Balance)
	assert.True(t, res.Decay.IsZero())
	assert.Nil(t, res.Start)
}

func TestDecay_OneYearMatchesAnnualRate(t *testing.T) {
	calc := newCalculator(t, "0.10")
	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(secondsPerYear * time.Second)

	res, err := calc.Decay(decimal.NewFromInt(150), from, to)
	require.NoError(t, err)

	diff := res.Balance.Sub(decimal.NewFromInt(135)).Abs()
	assert.True(t, diff.LessThan(decimal.RequireFromString("0.000001")),
		"one year at 10%% should leave 135, got %s", res.Balance)

	assert.True(t, res.Decay.IsNegative())
	require.NotNil(t, res.Start)
	assert.True(t, res.Start.Equal(from))
}

func TestDecay_Composition(t *testing.T) {
	calc := newCalculator(t, "0.50")
	t1 := time.Date(2022, 3, 14, 9, 26, 53, 0, time.UTC)

	intervals := []struct {
		name   string
		middle time.Duration
		rest   time.Duration
	}{
		{"seconds", 1 * time.Second, 59 * time.Second},
		{"hours and days", 7 * time.Hour, 90 * 24 * time.Hour},
		{"years", 365 * 24 * time.Hour, 3 * 365 * 24 * time.Hour},
	}

	tolerance := decimal.RequireFromString("0.0000000001")
	balance := decimal.RequireFromString("1000.25")

	for _, tc := range intervals {
		t.Run(tc.name, func(t *testing.T) {
			t2 := t1.Add(tc.middle)
			t3 := t2.Add(tc.rest)

			stepped, err := calc.Decay(balance, t1, t2)
			require.NoError(t, err)
			stepped, err = calc.Decay(stepped.Balance, t2, t3)
			require.NoError(t, err)

			direct, err := calc.Decay(balance, t1, t3)
			require.NoError(t, err)

			diff := stepped.Balance.Sub(direct.Balance).Abs()
			assert.True(t, diff.LessThan(tolerance),
				"stepped %s vs direct %s", stepped.Balance, direct.Balance)
		})
	}
}

func TestDecay_StartTime(t *testing.T) {
	startTime := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	calc, err := decay.NewCalculator(decimal.RequireFromString("0.50"), &startTime)
	require.NoError(t, err)

	balance := decimal.NewFromInt(100)

	t.Run("interval before activation decays nothing", func(t *testing.T) {
		from := startTime.Add(-48 * time.Hour)
		to := startTime.Add(-24 * time.Hour)

		res, err := calc.Decay(balance, from, to)
		require.NoError(t, err)

		assert.True(t, res.Balance.Equal(balance))
		assert.Nil(t, res.Start)
	})

	t.Run("straddling interval decays from activation", func(t *testing.T) {
		from := startTime.Add(-24 * time.Hour)
		to := startTime.Add(24 * time.Hour)

		res, err := calc.Decay(balance, from, to)
		require.NoError(t, err)

		require.NotNil(t, res.Start)
		assert.True(t, res.Start.Equal(startTime))
		assert.Equal(t, 24*time.Hour, res.Duration)
		assert.True(t, res.Balance.LessThan(balance))
	})
}

func TestDecay_ZeroRateIsIdentity(t *testing.T) {
	calc := newCalculator(t, "0")
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	balance := decimal.RequireFromString("42.42")

	res, err := calc.Decay(balance, from, from.AddDate(5, 0, 0))
	require.NoError(t, err)

	assert.True(t, res.Balance.Equal(balance))
	assert.True(t, res.Decay.IsZero())
}
