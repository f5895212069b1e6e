package utils

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// Property: FormatMoney groups thousands, keeps two decimals and preserves the
// rounded value.
func TestProperty_MoneyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	grouping := regexp.MustCompile(`^-?\d{1,3}(,\d{3})*\.\d{2}$`)

	properties.Property("FormatMoney produces grouped output", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatMoney(amount, "")
			if !grouping.MatchString(formatted) {
				t.Logf("bad grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatMoney preserves value", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatMoney(amount, "USD")
			parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSuffix(formatted, " USD"), ",", ""), 64)
			if err != nil {
				return false
			}
			return math.Abs(parsed-math.Round(amount*100)/100) <= 0.01
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.TestingRun(t)
}

func TestFormatUnsetValues(t *testing.T) {
	assert.Equal(t, Placeholder, FormatMoney(math.MaxFloat64, "USD"))
	assert.Equal(t, Placeholder, FormatPrice(math.MaxFloat64))
	assert.Equal(t, Placeholder, FormatInt(math.MaxInt32))
	assert.Equal(t, Placeholder, FormatQuantity(unsetDecimal))
	assert.Equal(t, "Infinity", FormatPrice(math.Inf(1)))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1,234,567.89 USD", FormatMoney(1234567.891, "USD"))
	assert.Equal(t, "-999.50", FormatMoney(-999.5, ""))
	assert.Equal(t, "+12.00", FormatPnL(12))
	assert.Equal(t, "-3.25%", FormatPercent(-3.25))
	assert.Equal(t, "187.25", FormatPrice(187.25))
	assert.Equal(t, "1.2345", FormatPrice(1.2345))
	assert.Equal(t, "100", FormatQuantity(decimal.NewFromInt(100)))
	assert.Equal(t, "42", FormatInt(42))
	assert.Equal(t, "1.50M", FormatCompact(1.5e6))
	assert.Equal(t, "abc...", TruncateString("abcdefghij", 6))
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	var retried []int
	cfg := RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2,
		OnRetry:       func(attempt int, _ time.Duration, _ error) { retried = append(retried, attempt) },
	}
	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("refused")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetryNonRetryable(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")
	cfg := RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond,
		BackoffFactor: 2, RetryableErrors: []error{transient}}

	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Second, MaxDelay: time.Second, BackoffFactor: 2}
	err := Retry(ctx, cfg, func() error { return errors.New("down") })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, CalculateBackoff(0, 100*time.Millisecond, time.Second, 2))
	assert.Equal(t, 400*time.Millisecond, CalculateBackoff(2, 100*time.Millisecond, time.Second, 2))
	assert.Equal(t, time.Second, CalculateBackoff(10, 100*time.Millisecond, time.Second, 2))
}
