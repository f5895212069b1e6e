package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ib-trader/internal/decoder"
	"ib-trader/internal/models"
)

type barRequest struct {
	symbol       string
	barSize      string
	keepUpToDate bool
	bars         []models.BarData
}

// Recorder persists bars, fills and commission reports as they are decoded and
// forwards every callback to the downstream wrapper. Historical bars are
// buffered per request and written on HistoricalDataEnd; keep-up-to-date
// updates are written one by one.
type Recorder struct {
	decoder.Wrapper
	store   *Store
	logger  zerolog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[int64]*barRequest
}

// NewRecorder wraps downstream.
func NewRecorder(store *Store, downstream decoder.Wrapper, logger zerolog.Logger) *Recorder {
	return &Recorder{
		Wrapper: downstream,
		store:   store,
		logger:  logger.With().Str("component", "recorder").Logger(),
		timeout: 5 * time.Second,
		pending: make(map[int64]*barRequest),
	}
}

// Track names the symbol and bar size of a historical data request. Bars of
// untracked requests are not stored. A request is forgotten on HistoricalDataEnd
// unless keepUpToDate is set, in which case updates are stored until Untrack.
func (r *Recorder) Track(reqID int64, symbol, barSize string, keepUpToDate bool) {
	r.mu.Lock()
	r.pending[reqID] = &barRequest{symbol: symbol, barSize: barSize, keepUpToDate: keepUpToDate}
	r.mu.Unlock()
}

// Tracked returns the number of requests being recorded.
func (r *Recorder) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Untrack forgets reqID, dropping buffered bars.
func (r *Recorder) Untrack(reqID int64) {
	r.mu.Lock()
	delete(r.pending, reqID)
	r.mu.Unlock()
}

func (r *Recorder) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

func (r *Recorder) HistoricalData(reqID int64, bar models.BarData) {
	r.mu.Lock()
	if req, ok := r.pending[reqID]; ok {
		req.bars = append(req.bars, bar)
	}
	r.mu.Unlock()
	r.Wrapper.HistoricalData(reqID, bar)
}

func (r *Recorder) HistoricalDataEnd(reqID int64, start, end string) {
	r.mu.Lock()
	req, ok := r.pending[reqID]
	var bars []models.BarData
	if ok {
		bars = req.bars
		req.bars = nil
		if !req.keepUpToDate {
			delete(r.pending, reqID)
		}
	}
	r.mu.Unlock()

	if ok && len(bars) > 0 {
		ctx, cancel := r.ctx()
		if err := r.store.SaveBars(ctx, req.symbol, req.barSize, bars); err != nil {
			r.logger.Error().Err(err).Int64("req_id", reqID).Msg("Failed to store bars")
		} else {
			r.logger.Debug().Int64("req_id", reqID).Str("symbol", req.symbol).Int("bars", len(bars)).Msg("Stored bars")
		}
		cancel()
	}
	r.Wrapper.HistoricalDataEnd(reqID, start, end)
}

func (r *Recorder) HistoricalDataUpdate(reqID int64, bar models.BarData) {
	r.mu.Lock()
	req, ok := r.pending[reqID]
	r.mu.Unlock()

	if ok {
		ctx, cancel := r.ctx()
		if err := r.store.SaveBars(ctx, req.symbol, req.barSize, []models.BarData{bar}); err != nil {
			r.logger.Error().Err(err).Int64("req_id", reqID).Msg("Failed to store bar update")
		}
		cancel()
	}
	r.Wrapper.HistoricalDataUpdate(reqID, bar)
}

func (r *Recorder) ExecDetails(reqID int64, contract *models.Contract, execution *models.Execution) {
	ctx, cancel := r.ctx()
	if err := r.store.SaveExecution(ctx, contract, execution); err != nil {
		r.logger.Error().Err(err).Int64("req_id", reqID).Msg("Failed to store execution")
	}
	cancel()
	r.Wrapper.ExecDetails(reqID, contract, execution)
}

func (r *Recorder) CommissionAndFeesReport(report models.CommissionAndFeesReport) {
	ctx, cancel := r.ctx()
	if err := r.store.SaveCommissionReport(ctx, report); err != nil {
		r.logger.Error().Err(err).Str("exec_id", report.ExecID).Msg("Failed to store commission report")
	}
	cancel()
	r.Wrapper.CommissionAndFeesReport(report)
}
