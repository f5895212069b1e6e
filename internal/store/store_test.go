package store

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/decoder"
	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "trader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func generateBars(count int, basePrice float64, baseVolume int64) []models.BarData {
	bars := make([]models.BarData, count)
	start := time.Date(2026, 1, 5, 9, 30, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		variation := float64(i%10) * 0.01 * basePrice
		open := roundTo(basePrice+variation, 2)
		closePrice := roundTo(basePrice+variation*0.5, 2)
		bars[i] = models.BarData{
			Date:     start.Add(time.Duration(i) * time.Minute).Format("20060102 15:04:05"),
			Open:     open,
			High:     roundTo(math.Max(open, closePrice)*1.01, 2),
			Low:      roundTo(math.Min(open, closePrice)*0.99, 2),
			Close:    closePrice,
			Volume:   decimal.NewFromInt(baseVolume + int64(i*100)),
			WAP:      decimal.NewFromFloat(roundTo(basePrice, 3)),
			BarCount: int64(i + 1),
		}
	}
	return bars
}

func roundTo(v float64, places int) float64 {
	m := math.Pow(10, float64(places))
	return math.Round(v*m) / m
}

// Property: bars saved for a symbol and bar size come back unchanged and in
// date order.
func TestProperty_BarRoundTrip(t *testing.T) {
	s := newTestStore(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	symbols := []string{"AAPL", "MSFT", "IBM", "SPY", "ES"}
	run := 0

	properties.Property("save then get returns the same bars", prop.ForAll(
		func(symbolIdx int, barSize string, count int, basePrice float64, baseVolume int64) bool {
			ctx := context.Background()
			run++
			symbol := fmt.Sprintf("%s_%d", symbols[symbolIdx%len(symbols)], run)
			bars := generateBars(count, basePrice, baseVolume)

			if err := s.SaveBars(ctx, symbol, barSize, bars); err != nil {
				t.Logf("save: %v", err)
				return false
			}
			got, err := s.GetBars(ctx, symbol, barSize)
			if err != nil || len(got) != len(bars) {
				t.Logf("get: %v (%d bars)", err, len(got))
				return false
			}
			for i, want := range bars {
				g := got[i]
				if g.Date != want.Date || g.Open != want.Open || g.High != want.High ||
					g.Low != want.Low || g.Close != want.Close || g.BarCount != want.BarCount ||
					!g.Volume.Equal(want.Volume) || !g.WAP.Equal(want.WAP) {
					t.Logf("bar %d: want %+v got %+v", i, want, g.BarData)
					return false
				}
			}
			return true
		},
		gen.IntRange(0, len(symbols)-1),
		gen.OneConstOf("1 min", "5 mins", "1 hour", "1 day"),
		gen.IntRange(1, 20),
		gen.Float64Range(1.0, 5000.0),
		gen.Int64Range(100, 1000000),
	))

	properties.TestingRun(t)
}

func TestSaveBarsUpsertsByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bars := generateBars(3, 100, 1000)
	require.NoError(t, s.SaveBars(ctx, "AAPL", "1 min", bars))

	bars[1].Close = 250
	require.NoError(t, s.SaveBars(ctx, "AAPL", "1 min", bars[1:2]))

	got, err := s.GetBars(ctx, "AAPL", "1 min")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 250.0, got[1].Close)

	require.NoError(t, s.SaveBars(ctx, "AAPL", "1 min", nil))
}

func TestSaveBarsKeepsUnsetVolume(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bar := models.BarData{Date: "20260105", Open: 1, High: 2, Low: 1, Close: 2,
		Volume: models.UnsetDecimal, WAP: models.UnsetDecimal, BarCount: -1}
	require.NoError(t, s.SaveBars(ctx, "EUR", "1 day", []models.BarData{bar}))

	got, err := s.GetBars(ctx, "EUR", "1 day")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, models.IsUnsetDecimal(got[0].Volume))
	assert.True(t, models.IsUnsetDecimal(got[0].WAP))
}

func testExecution(id, t string) *models.Execution {
	return &models.Execution{
		ExecID:     id,
		Time:       t,
		AcctNumber: "DU123456",
		Exchange:   "ISLAND",
		Side:       "BOT",
		Shares:     decimal.NewFromInt(100),
		Price:      187.25,
		PermID:     99,
		ClientID:   7,
		OrderID:    12,
		CumQty:     decimal.NewFromInt(100),
		AvgPrice:   187.25,
		OrderRef:   "ref",
	}
}

func TestExecutionsWithCommission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	contract := &models.Contract{ConID: 265598, Symbol: "AAPL", SecType: "STK", Currency: "USD"}

	require.NoError(t, s.SaveExecution(ctx, contract, testExecution("0001.01", "20261018 09:31:00")))
	require.NoError(t, s.SaveExecution(ctx, contract, testExecution("0002.01", "20261018 09:32:00")))
	require.NoError(t, s.SaveCommissionReport(ctx, models.CommissionAndFeesReport{
		ExecID: "0001.01", CommissionAndFees: 1.05, Currency: "USD", RealizedPNL: models.UnsetFloat,
	}))

	rows, err := s.GetExecutions(ctx, ExecutionQuery{Symbol: "AAPL"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "0002.01", rows[0].Execution.ExecID)
	assert.False(t, rows[0].HasCommission)

	assert.Equal(t, "0001.01", rows[1].Execution.ExecID)
	assert.True(t, rows[1].HasCommission)
	assert.Equal(t, 1.05, rows[1].Commission)
	assert.Equal(t, models.UnsetFloat, rows[1].RealizedPNL)
	assert.Equal(t, int64(265598), rows[1].ConID)
	assert.Equal(t, "100", rows[1].Execution.Shares.String())
	assert.Equal(t, "DU123456", rows[1].Execution.AcctNumber)

	rows, err = s.GetExecutions(ctx, ExecutionQuery{Symbol: "MSFT"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = s.GetExecutions(ctx, ExecutionQuery{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSaveExecutionRequiresID(t *testing.T) {
	s := newTestStore(t)
	err := s.SaveExecution(context.Background(), nil, &models.Execution{})
	var verr *errors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

type barCounter struct {
	decoder.NopWrapper
	bars, ends, execs, reports int
}

func (w *barCounter) HistoricalData(int64, models.BarData)                   { w.bars++ }
func (w *barCounter) HistoricalDataEnd(int64, string, string)                { w.ends++ }
func (w *barCounter) ExecDetails(int64, *models.Contract, *models.Execution) { w.execs++ }
func (w *barCounter) CommissionAndFeesReport(models.CommissionAndFeesReport) { w.reports++ }

func TestRecorderPersistsAndForwards(t *testing.T) {
	s := newTestStore(t)
	down := &barCounter{}
	rec := NewRecorder(s, down, zerolog.Nop())
	ctx := context.Background()

	rec.Track(5, "AAPL", "1 hour", true)
	for _, b := range generateBars(4, 180, 5000) {
		rec.HistoricalData(5, b)
	}
	// Untracked requests are forwarded but not stored.
	rec.HistoricalData(6, generateBars(1, 10, 10)[0])

	got, err := s.GetBars(ctx, "AAPL", "1 hour")
	require.NoError(t, err)
	assert.Empty(t, got)

	rec.HistoricalDataEnd(5, "20260105 09:30:00", "20260105 09:33:00")
	got, err = s.GetBars(ctx, "AAPL", "1 hour")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	rec.HistoricalDataUpdate(5, models.BarData{Date: "20260105 09:34:00", Open: 1, High: 1, Low: 1, Close: 1,
		Volume: decimal.NewFromInt(1), WAP: decimal.NewFromInt(1), BarCount: 1})
	got, err = s.GetBars(ctx, "AAPL", "1 hour")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	contract := &models.Contract{ConID: 265598, Symbol: "AAPL", SecType: "STK", Currency: "USD"}
	rec.ExecDetails(-1, contract, testExecution("0003.01", "20261018 10:00:00"))
	rec.CommissionAndFeesReport(models.CommissionAndFeesReport{ExecID: "0003.01", CommissionAndFees: 0.5})

	rows, err := s.GetExecutions(ctx, ExecutionQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].HasCommission)

	assert.Equal(t, 5, down.bars)
	assert.Equal(t, 1, down.ends)
	assert.Equal(t, 1, down.execs)
	assert.Equal(t, 1, down.reports)
}

func TestRecorderForgetsFinishedRequests(t *testing.T) {
	s := newTestStore(t)
	rec := NewRecorder(s, &barCounter{}, zerolog.Nop())
	ctx := context.Background()

	rec.Track(7, "MSFT", "1 day", false)
	rec.Track(8, "MSFT", "1 hour", true)
	for _, b := range generateBars(2, 400, 1000) {
		rec.HistoricalData(7, b)
	}
	rec.HistoricalDataEnd(7, "", "")
	rec.HistoricalDataEnd(8, "", "")
	assert.Equal(t, 1, rec.Tracked(), "only the keep-up-to-date request stays tracked")

	// Updates after the end of a one-shot request are not stored.
	rec.HistoricalDataUpdate(7, models.BarData{Date: "20990101", Open: 1, High: 1, Low: 1, Close: 1,
		Volume: decimal.NewFromInt(1), WAP: decimal.NewFromInt(1), BarCount: 1})
	got, err := s.GetBars(ctx, "MSFT", "1 day")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	rec.Untrack(8)
	assert.Zero(t, rec.Tracked())
}
