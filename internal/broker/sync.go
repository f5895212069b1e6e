package broker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ib-trader/internal/decoder"
	"ib-trader/internal/errors"
	"ib-trader/internal/logging"
	"ib-trader/internal/models"
)

// Keys for requests TWS answers without a request id. At most one of each may be
// in flight.
const (
	keyCurrentTime int64 = -(iota + 1)
	keyCurrentTimeInMillis
	keyNextValidID
	keyManagedAccounts
	keyPositions
	keyOpenOrders
	keyCompletedOrders
	keyMarketRuleBase
)

// Position is one row of a positions request.
type Position struct {
	Account  string
	Contract *models.Contract
	Position decimal.Decimal
	AvgCost  float64
}

// AccountValue is one tag of an account summary.
type AccountValue struct {
	Account  string
	Tag      string
	Value    string
	Currency string
}

// OrderRecord is an open or completed order.
type OrderRecord struct {
	Contract *models.Contract
	Order    *models.Order
	State    *models.OrderState
}

// ExecutionRecord is a fill together with its contract.
type ExecutionRecord struct {
	Contract  *models.Contract
	Execution *models.Execution
}

// PnLValue is the first PnL update of a subscription.
type PnLValue struct {
	Daily      float64
	Unrealized float64
	Realized   float64
}

// Snapshot collects the ticks of a market data snapshot.
type Snapshot struct {
	Prices   map[models.TickType]float64
	Sizes    map[models.TickType]decimal.Decimal
	Strings  map[models.TickType]string
	Generics map[models.TickType]float64
}

func newSnapshot() Snapshot {
	return Snapshot{
		Prices:   make(map[models.TickType]float64),
		Sizes:    make(map[models.TickType]decimal.Decimal),
		Strings:  make(map[models.TickType]string),
		Generics: make(map[models.TickType]float64),
	}
}

type pendingRequest interface {
	fail(err error)
}

// slot accumulates the answer to one request until it is finished or failed.
type slot[T any] struct {
	mu     sync.Mutex
	value  T
	err    error
	closed bool
	done   chan struct{}
}

func newSlot[T any](initial T) *slot[T] {
	return &slot[T]{value: initial, done: make(chan struct{})}
}

func (s *slot[T]) update(fn func(v *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		fn(&s.value)
	}
}

func (s *slot[T]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
}

func (s *slot[T]) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.err = err
		s.closed = true
		close(s.done)
	}
}

func (s *slot[T]) result() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, s.err
}

type requestTable struct {
	mu      sync.Mutex
	pending map[int64]pendingRequest
}

// SyncClient is a blocking facade over Client. It answers requests from the
// callbacks it sees and forwards every callback to the downstream wrapper.
type SyncClient struct {
	client *Client
	logger zerolog.Logger
	reqs   *requestTable
}

// NewSyncClient creates a SyncClient and its Client. downstream receives every
// callback; pass a LoggingWrapper or decoder.NopWrapper.
func NewSyncClient(cfg Config, downstream decoder.Wrapper, logger zerolog.Logger) *SyncClient {
	reqs := &requestTable{pending: make(map[int64]pendingRequest)}
	return &SyncClient{
		client: NewClient(cfg, &syncWrapper{Wrapper: downstream, reqs: reqs}, logger),
		logger: logger.With().Str("component", "sync").Logger(),
		reqs:   reqs,
	}
}

// Client returns the underlying connection for requests without a blocking form.
func (s *SyncClient) Client() *Client { return s.client }

func (s *SyncClient) Connect(ctx context.Context) error { return s.client.Connect(ctx) }

func (s *SyncClient) Disconnect() error { return s.client.Disconnect() }

func register[T any](t *requestTable, key int64, initial T) (*slot[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[key]; ok {
		return nil, errors.ErrRequestInFlight
	}
	sl := newSlot(initial)
	t.pending[key] = sl
	return sl, nil
}

func lookup[T any](t *requestTable, key int64) *slot[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	sl, _ := t.pending[key].(*slot[T])
	return sl
}

func (t *requestTable) remove(key int64) {
	t.mu.Lock()
	delete(t.pending, key)
	t.mu.Unlock()
}

// call registers a slot under key, sends the request and waits for the answer.
func call[T any](ctx context.Context, s *SyncClient, operation string, key int64, initial T, send func() error) (T, error) {
	start := time.Now()
	var zero T

	sl, err := register(s.reqs, key, initial)
	if err != nil {
		return zero, errors.Wrap(err, operation)
	}
	defer s.reqs.remove(key)

	if err := send(); err != nil {
		logging.LogRequest(s.logger, operation, key, time.Since(start), err)
		return zero, err
	}

	select {
	case <-sl.done:
	case <-ctx.Done():
		err := errors.ErrRequestCancelled
		if ctx.Err() == context.DeadlineExceeded {
			err = errors.ErrTimeout
		}
		logging.LogRequest(s.logger, operation, key, time.Since(start), err)
		return zero, errors.Wrap(err, operation)
	}

	v, err := sl.result()
	logging.LogRequest(s.logger, operation, key, time.Since(start), err)
	if err != nil {
		return zero, err
	}
	return v, nil
}

// CurrentTime returns the server clock.
func (s *SyncClient) CurrentTime(ctx context.Context) (time.Time, error) {
	secs, err := call(ctx, s, "current_time", keyCurrentTime, int64(0), func() error {
		return s.client.ReqCurrentTime(ctx)
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(secs, 0), nil
}

// CurrentTimeInMillis returns the server clock with millisecond precision.
func (s *SyncClient) CurrentTimeInMillis(ctx context.Context) (time.Time, error) {
	ms, err := call(ctx, s, "current_time_millis", keyCurrentTimeInMillis, int64(0), func() error {
		return s.client.ReqCurrentTimeInMillis(ctx)
	})
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}

// NextValidID returns the next order id TWS will accept.
func (s *SyncClient) NextValidID(ctx context.Context) (int64, error) {
	return call(ctx, s, "next_valid_id", keyNextValidID, int64(0), func() error {
		return s.client.ReqIDs(ctx, 1)
	})
}

// ManagedAccounts returns the comma separated account list.
func (s *SyncClient) ManagedAccounts(ctx context.Context) (string, error) {
	return call(ctx, s, "managed_accounts", keyManagedAccounts, "", func() error {
		return s.client.ReqManagedAccts(ctx)
	})
}

func (s *SyncClient) ContractDetails(ctx context.Context, contract *models.Contract) ([]*models.ContractDetails, error) {
	reqID := s.client.NextReqID()
	return call(ctx, s, "contract_details", reqID, []*models.ContractDetails(nil), func() error {
		return s.client.ReqContractDetails(ctx, reqID, contract)
	})
}

// HistoricalData returns the bars of a one-shot historical request.
func (s *SyncClient) HistoricalData(ctx context.Context, contract *models.Contract, req HistoricalDataRequest) ([]models.BarData, error) {
	return s.HistoricalDataWithID(ctx, s.client.NextReqID(), contract, req)
}

// HistoricalDataWithID is HistoricalData with a caller chosen request id, for
// callers that register the id elsewhere first (see store.Recorder.Track).
func (s *SyncClient) HistoricalDataWithID(ctx context.Context, reqID int64, contract *models.Contract, req HistoricalDataRequest) ([]models.BarData, error) {
	return call(ctx, s, "historical_data", reqID, []models.BarData(nil), func() error {
		return s.client.ReqHistoricalData(ctx, reqID, contract, req, false)
	})
}

func (s *SyncClient) HeadTimestamp(ctx context.Context, contract *models.Contract, whatToShow string, useRTH bool) (string, error) {
	reqID := s.client.NextReqID()
	return call(ctx, s, "head_timestamp", reqID, "", func() error {
		return s.client.ReqHeadTimestamp(ctx, reqID, contract, whatToShow, useRTH, 1)
	})
}

// Positions returns current positions and stops the subscription.
func (s *SyncClient) Positions(ctx context.Context) ([]Position, error) {
	positions, err := call(ctx, s, "positions", keyPositions, []Position(nil), func() error {
		return s.client.ReqPositions(ctx)
	})
	if cerr := s.client.CancelPositions(context.WithoutCancel(ctx)); cerr != nil {
		s.logger.Debug().Err(cerr).Msg("Cancel positions failed")
	}
	return positions, err
}

// AccountSummary returns the requested tags for group ("All" for every account).
func (s *SyncClient) AccountSummary(ctx context.Context, group, tags string) ([]AccountValue, error) {
	reqID := s.client.NextReqID()
	values, err := call(ctx, s, "account_summary", reqID, []AccountValue(nil), func() error {
		return s.client.ReqAccountSummary(ctx, reqID, group, tags)
	})
	if cerr := s.client.CancelAccountSummary(context.WithoutCancel(ctx), reqID); cerr != nil {
		s.logger.Debug().Err(cerr).Msg("Cancel account summary failed")
	}
	return values, err
}

// OpenOrders returns open orders from every client.
func (s *SyncClient) OpenOrders(ctx context.Context) ([]OrderRecord, error) {
	return call(ctx, s, "open_orders", keyOpenOrders, []OrderRecord(nil), func() error {
		return s.client.ReqAllOpenOrders(ctx)
	})
}

func (s *SyncClient) CompletedOrders(ctx context.Context, apiOnly bool) ([]OrderRecord, error) {
	return call(ctx, s, "completed_orders", keyCompletedOrders, []OrderRecord(nil), func() error {
		return s.client.ReqCompletedOrders(ctx, apiOnly)
	})
}

func (s *SyncClient) Executions(ctx context.Context, filter models.ExecutionFilter) ([]ExecutionRecord, error) {
	reqID := s.client.NextReqID()
	return call(ctx, s, "executions", reqID, []ExecutionRecord(nil), func() error {
		return s.client.ReqExecutions(ctx, reqID, filter)
	})
}

func (s *SyncClient) MatchingSymbols(ctx context.Context, pattern string) ([]models.ContractDescription, error) {
	reqID := s.client.NextReqID()
	return call(ctx, s, "matching_symbols", reqID, []models.ContractDescription(nil), func() error {
		return s.client.ReqMatchingSymbols(ctx, reqID, pattern)
	})
}

func (s *SyncClient) MarketRule(ctx context.Context, marketRuleID int64) ([]models.PriceIncrement, error) {
	return call(ctx, s, "market_rule", keyMarketRuleBase-marketRuleID, []models.PriceIncrement(nil), func() error {
		return s.client.ReqMarketRule(ctx, marketRuleID)
	})
}

// PnL returns the first P&L update for account and cancels the subscription.
func (s *SyncClient) PnL(ctx context.Context, account, modelCode string) (PnLValue, error) {
	reqID := s.client.NextReqID()
	v, err := call(ctx, s, "pnl", reqID, PnLValue{}, func() error {
		return s.client.ReqPnL(ctx, reqID, account, modelCode)
	})
	if cerr := s.client.CancelPnL(context.WithoutCancel(ctx), reqID); cerr != nil {
		s.logger.Debug().Err(cerr).Msg("Cancel PnL failed")
	}
	return v, err
}

// Snapshot requests a market data snapshot and returns the ticks received before
// TICK_SNAPSHOT_END.
func (s *SyncClient) Snapshot(ctx context.Context, contract *models.Contract) (Snapshot, error) {
	reqID := s.client.NextReqID()
	return call(ctx, s, "snapshot", reqID, newSnapshot(), func() error {
		return s.client.ReqMktData(ctx, reqID, contract, "", true, false)
	})
}

// syncWrapper completes or extends pending slots from callbacks and passes every
// callback downstream.
type syncWrapper struct {
	decoder.Wrapper
	reqs *requestTable
}

func (w *syncWrapper) CurrentTime(t int64) {
	if sl := lookup[int64](w.reqs, keyCurrentTime); sl != nil {
		sl.update(func(v *int64) { *v = t })
		sl.finish()
	}
	w.Wrapper.CurrentTime(t)
}

func (w *syncWrapper) CurrentTimeInMillis(t int64) {
	if sl := lookup[int64](w.reqs, keyCurrentTimeInMillis); sl != nil {
		sl.update(func(v *int64) { *v = t })
		sl.finish()
	}
	w.Wrapper.CurrentTimeInMillis(t)
}

func (w *syncWrapper) NextValidID(orderID int64) {
	if sl := lookup[int64](w.reqs, keyNextValidID); sl != nil {
		sl.update(func(v *int64) { *v = orderID })
		sl.finish()
	}
	w.Wrapper.NextValidID(orderID)
}

func (w *syncWrapper) ManagedAccounts(accountsList string) {
	if sl := lookup[string](w.reqs, keyManagedAccounts); sl != nil {
		sl.update(func(v *string) { *v = accountsList })
		sl.finish()
	}
	w.Wrapper.ManagedAccounts(accountsList)
}

func (w *syncWrapper) ContractDetails(reqID int64, details *models.ContractDetails) {
	w.appendDetails(reqID, details)
	w.Wrapper.ContractDetails(reqID, details)
}

func (w *syncWrapper) BondContractDetails(reqID int64, details *models.ContractDetails) {
	w.appendDetails(reqID, details)
	w.Wrapper.BondContractDetails(reqID, details)
}

func (w *syncWrapper) appendDetails(reqID int64, details *models.ContractDetails) {
	if sl := lookup[[]*models.ContractDetails](w.reqs, reqID); sl != nil {
		sl.update(func(v *[]*models.ContractDetails) { *v = append(*v, details) })
	}
}

func (w *syncWrapper) ContractDetailsEnd(reqID int64) {
	if sl := lookup[[]*models.ContractDetails](w.reqs, reqID); sl != nil {
		sl.finish()
	}
	w.Wrapper.ContractDetailsEnd(reqID)
}

func (w *syncWrapper) HistoricalData(reqID int64, bar models.BarData) {
	if sl := lookup[[]models.BarData](w.reqs, reqID); sl != nil {
		sl.update(func(v *[]models.BarData) { *v = append(*v, bar) })
	}
	w.Wrapper.HistoricalData(reqID, bar)
}

func (w *syncWrapper) HistoricalDataEnd(reqID int64, start, end string) {
	if sl := lookup[[]models.BarData](w.reqs, reqID); sl != nil {
		sl.finish()
	}
	w.Wrapper.HistoricalDataEnd(reqID, start, end)
}

func (w *syncWrapper) HeadTimestamp(reqID int64, headTimestamp string) {
	if sl := lookup[string](w.reqs, reqID); sl != nil {
		sl.update(func(v *string) { *v = headTimestamp })
		sl.finish()
	}
	w.Wrapper.HeadTimestamp(reqID, headTimestamp)
}

func (w *syncWrapper) Position(account string, contract *models.Contract, position decimal.Decimal, avgCost float64) {
	if sl := lookup[[]Position](w.reqs, keyPositions); sl != nil {
		sl.update(func(v *[]Position) {
			*v = append(*v, Position{Account: account, Contract: contract, Position: position, AvgCost: avgCost})
		})
	}
	w.Wrapper.Position(account, contract, position, avgCost)
}

func (w *syncWrapper) PositionEnd() {
	if sl := lookup[[]Position](w.reqs, keyPositions); sl != nil {
		sl.finish()
	}
	w.Wrapper.PositionEnd()
}

func (w *syncWrapper) AccountSummary(reqID int64, account, tag, value, currency string) {
	if sl := lookup[[]AccountValue](w.reqs, reqID); sl != nil {
		sl.update(func(v *[]AccountValue) {
			*v = append(*v, AccountValue{Account: account, Tag: tag, Value: value, Currency: currency})
		})
	}
	w.Wrapper.AccountSummary(reqID, account, tag, value, currency)
}

func (w *syncWrapper) AccountSummaryEnd(reqID int64) {
	if sl := lookup[[]AccountValue](w.reqs, reqID); sl != nil {
		sl.finish()
	}
	w.Wrapper.AccountSummaryEnd(reqID)
}

func (w *syncWrapper) OpenOrder(orderID int64, contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	if sl := lookup[[]OrderRecord](w.reqs, keyOpenOrders); sl != nil {
		sl.update(func(v *[]OrderRecord) {
			*v = append(*v, OrderRecord{Contract: contract, Order: order, State: orderState})
		})
	}
	w.Wrapper.OpenOrder(orderID, contract, order, orderState)
}

func (w *syncWrapper) OpenOrderEnd() {
	if sl := lookup[[]OrderRecord](w.reqs, keyOpenOrders); sl != nil {
		sl.finish()
	}
	w.Wrapper.OpenOrderEnd()
}

func (w *syncWrapper) CompletedOrder(contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	if sl := lookup[[]OrderRecord](w.reqs, keyCompletedOrders); sl != nil {
		sl.update(func(v *[]OrderRecord) {
			*v = append(*v, OrderRecord{Contract: contract, Order: order, State: orderState})
		})
	}
	w.Wrapper.CompletedOrder(contract, order, orderState)
}

func (w *syncWrapper) CompletedOrdersEnd() {
	if sl := lookup[[]OrderRecord](w.reqs, keyCompletedOrders); sl != nil {
		sl.finish()
	}
	w.Wrapper.CompletedOrdersEnd()
}

func (w *syncWrapper) ExecDetails(reqID int64, contract *models.Contract, execution *models.Execution) {
	if sl := lookup[[]ExecutionRecord](w.reqs, reqID); sl != nil {
		sl.update(func(v *[]ExecutionRecord) {
			*v = append(*v, ExecutionRecord{Contract: contract, Execution: execution})
		})
	}
	w.Wrapper.ExecDetails(reqID, contract, execution)
}

func (w *syncWrapper) ExecDetailsEnd(reqID int64) {
	if sl := lookup[[]ExecutionRecord](w.reqs, reqID); sl != nil {
		sl.finish()
	}
	w.Wrapper.ExecDetailsEnd(reqID)
}

func (w *syncWrapper) SymbolSamples(reqID int64, descriptions []models.ContractDescription) {
	if sl := lookup[[]models.ContractDescription](w.reqs, reqID); sl != nil {
		sl.update(func(v *[]models.ContractDescription) { *v = descriptions })
		sl.finish()
	}
	w.Wrapper.SymbolSamples(reqID, descriptions)
}

func (w *syncWrapper) MarketRule(marketRuleID int64, increments []models.PriceIncrement) {
	if sl := lookup[[]models.PriceIncrement](w.reqs, keyMarketRuleBase-marketRuleID); sl != nil {
		sl.update(func(v *[]models.PriceIncrement) { *v = increments })
		sl.finish()
	}
	w.Wrapper.MarketRule(marketRuleID, increments)
}

func (w *syncWrapper) PnL(reqID int64, dailyPnL, unrealizedPnL, realizedPnL float64) {
	if sl := lookup[PnLValue](w.reqs, reqID); sl != nil {
		sl.update(func(v *PnLValue) {
			*v = PnLValue{Daily: dailyPnL, Unrealized: unrealizedPnL, Realized: realizedPnL}
		})
		sl.finish()
	}
	w.Wrapper.PnL(reqID, dailyPnL, unrealizedPnL, realizedPnL)
}

func (w *syncWrapper) TickPrice(reqID int64, tickType models.TickType, price float64, attrib models.TickAttrib) {
	if sl := lookup[Snapshot](w.reqs, reqID); sl != nil {
		sl.update(func(v *Snapshot) { v.Prices[tickType] = price })
	}
	w.Wrapper.TickPrice(reqID, tickType, price, attrib)
}

func (w *syncWrapper) TickSize(reqID int64, tickType models.TickType, size decimal.Decimal) {
	if sl := lookup[Snapshot](w.reqs, reqID); sl != nil {
		sl.update(func(v *Snapshot) { v.Sizes[tickType] = size })
	}
	w.Wrapper.TickSize(reqID, tickType, size)
}

func (w *syncWrapper) TickString(reqID int64, tickType models.TickType, value string) {
	if sl := lookup[Snapshot](w.reqs, reqID); sl != nil {
		sl.update(func(v *Snapshot) { v.Strings[tickType] = value })
	}
	w.Wrapper.TickString(reqID, tickType, value)
}

func (w *syncWrapper) TickGeneric(reqID int64, tickType models.TickType, value float64) {
	if sl := lookup[Snapshot](w.reqs, reqID); sl != nil {
		sl.update(func(v *Snapshot) { v.Generics[tickType] = value })
	}
	w.Wrapper.TickGeneric(reqID, tickType, value)
}

func (w *syncWrapper) TickSnapshotEnd(reqID int64) {
	if sl := lookup[Snapshot](w.reqs, reqID); sl != nil {
		sl.finish()
	}
	w.Wrapper.TickSnapshotEnd(reqID)
}

// Error fails the pending request with reqID. Informational notices never do.
func (w *syncWrapper) Error(reqID int64, errorTime int64, errorCode int64, errorString, advancedOrderRejectJSON string) {
	apiErr := errors.NewAPIError(reqID, int(errorCode), errorString, advancedOrderRejectJSON, errorTime)
	if !apiErr.IsInformational() && reqID >= 0 {
		w.reqs.mu.Lock()
		p, ok := w.reqs.pending[reqID]
		w.reqs.mu.Unlock()
		if ok {
			p.fail(apiErr)
		}
	}
	w.Wrapper.Error(reqID, errorTime, errorCode, errorString, advancedOrderRejectJSON)
}

// ConnectionClosed fails every pending request.
func (w *syncWrapper) ConnectionClosed() {
	w.reqs.mu.Lock()
	pending := make([]pendingRequest, 0, len(w.reqs.pending))
	for _, p := range w.reqs.pending {
		pending = append(pending, p)
	}
	w.reqs.mu.Unlock()

	for _, p := range pending {
		p.fail(errors.ErrNotConnected)
	}
	w.Wrapper.ConnectionClosed()
}
