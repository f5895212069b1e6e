package decoder

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/scmhub/ibapi/protobuf"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

type call struct {
	name string
	args []any
}

// recorder captures the callbacks the tests care about. Decimals are recorded as
// strings so calls can be compared with assert.Equal.
type recorder struct {
	NopWrapper
	calls []call
}

func (w *recorder) add(name string, args ...any) {
	for i, a := range args {
		if d, ok := a.(decimal.Decimal); ok {
			args[i] = d.String()
		}
	}
	w.calls = append(w.calls, call{name: name, args: args})
}

func (w *recorder) names() []string {
	out := make([]string, len(w.calls))
	for i, c := range w.calls {
		out[i] = c.name
	}
	return out
}

func (w *recorder) TickPrice(reqID int64, tickType models.TickType, price float64, attrib models.TickAttrib) {
	w.add("TickPrice", reqID, tickType, price, attrib)
}

func (w *recorder) TickSize(reqID int64, tickType models.TickType, size decimal.Decimal) {
	w.add("TickSize", reqID, tickType, size)
}

func (w *recorder) NextValidID(orderID int64) { w.add("NextValidID", orderID) }

func (w *recorder) OrderStatus(orderID int64, status string, filled, remaining decimal.Decimal, avgFillPrice float64, permID, parentID int64, lastFillPrice float64, clientID int64, whyHeld string, mktCapPrice float64) {
	w.add("OrderStatus", orderID, status, filled, remaining, avgFillPrice, permID, parentID, lastFillPrice, clientID, whyHeld, mktCapPrice)
}

func (w *recorder) OpenOrder(orderID int64, contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	w.add("OpenOrder", orderID, contract, order, orderState)
}

func (w *recorder) OpenOrderEnd() { w.add("OpenOrderEnd") }

func (w *recorder) CompletedOrder(contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	w.add("CompletedOrder", contract, order, orderState)
}

func (w *recorder) CompletedOrdersEnd() { w.add("CompletedOrdersEnd") }

func (w *recorder) OrderBound(permID, clientID, orderID int64) {
	w.add("OrderBound", permID, clientID, orderID)
}

func (w *recorder) TickOptionComputation(reqID int64, tickType models.TickType, tickAttrib int64, impliedVol, delta, optPrice, pvDividend, gamma, vega, theta, undPrice float64) {
	w.add("TickOptionComputation", reqID, tickType, tickAttrib, impliedVol, delta, optPrice, pvDividend, gamma, vega, theta, undPrice)
}

func (w *recorder) TickByTickAllLast(reqID int64, tickType int64, time int64, price float64, size decimal.Decimal, attrib models.TickAttribLast, exchange, specialConditions string) {
	w.add("TickByTickAllLast", reqID, tickType, time, price, size, attrib, exchange, specialConditions)
}

func (w *recorder) VerifyCompleted(isSuccessful bool, errorText string) {
	w.add("VerifyCompleted", isSuccessful, errorText)
}

func (w *recorder) PnL(reqID int64, dailyPnL, unrealizedPnL, realizedPnL float64) {
	w.add("PnL", reqID, dailyPnL, unrealizedPnL, realizedPnL)
}

func (w *recorder) ExecDetails(reqID int64, contract *models.Contract, execution *models.Execution) {
	w.add("ExecDetails", reqID, contract, execution)
}

func (w *recorder) HistoricalData(reqID int64, bar models.BarData) {
	w.add("HistoricalData", reqID, bar)
}

func (w *recorder) HistoricalDataEnd(reqID int64, start, end string) {
	w.add("HistoricalDataEnd", reqID, start, end)
}

func (w *recorder) UpdateAccountValue(key, value, currency, accountName string) {
	w.add("UpdateAccountValue", key, value, currency, accountName)
}

func (w *recorder) ContractDetails(reqID int64, details *models.ContractDetails) {
	w.add("ContractDetails", reqID, details)
}

func (w *recorder) ContractDetailsEnd(reqID int64) { w.add("ContractDetailsEnd", reqID) }

func (w *recorder) ScannerData(reqID int64, rank int64, details *models.ContractDetails, distance, benchmark, projection, legsStr string) {
	w.add("ScannerData", reqID, rank, details.Contract.Symbol)
}

func (w *recorder) ScannerDataEnd(reqID int64) { w.add("ScannerDataEnd", reqID) }

func (w *recorder) TickByTickMidPoint(reqID int64, time int64, midPoint float64) {
	w.add("TickByTickMidPoint", reqID, time, midPoint)
}

func (w *recorder) Error(reqID int64, errorTime int64, errorCode int64, errorString, advancedOrderRejectJSON string) {
	w.add("Error", reqID, errorTime, errorCode, errorString, advancedOrderRejectJSON)
}

func newTestDecoder(sv int) (*Decoder, *recorder) {
	w := &recorder{}
	return New(w, sv, zerolog.Nop()), w
}

func TestTickPriceEmitsImpliedSize(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	err := d.Interpret(wire.InTickPrice, []string{"6", "5", "1", "10.5", "100", "7"})
	require.NoError(t, err)

	require.Equal(t, []string{"TickPrice", "TickSize"}, w.names())
	assert.Equal(t, []any{int64(5), models.TickBid, 10.5, models.TickAttrib{CanAutoExecute: true, PastLimit: true, PreOpen: true}}, w.calls[0].args)
	assert.Equal(t, []any{int64(5), models.TickBidSize, "100"}, w.calls[1].args)
}

func TestTickPriceAttribGating(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerPastLimit)

	require.NoError(t, d.Interpret(wire.InTickPrice, []string{"6", "5", "1", "10.5", "100", "7"}))
	assert.Equal(t, models.TickAttrib{CanAutoExecute: true, PastLimit: true}, w.calls[0].args[3], "pre-open bit ignored before its version")
}

func TestErrorVersionGating(t *testing.T) {
	t.Run("with version field", func(t *testing.T) {
		d, w := newTestDecoder(wire.MinServerVerErrorTime - 1)
		require.NoError(t, d.Interpret(wire.InErrMsg, []string{"2", "7", "200", "No security definition", ""}))
		require.Len(t, w.calls, 1)
		assert.Equal(t, []any{int64(7), int64(0), int64(200), "No security definition", ""}, w.calls[0].args)
	})

	t.Run("with error time", func(t *testing.T) {
		d, w := newTestDecoder(wire.MinServerVerErrorTime)
		require.NoError(t, d.Interpret(wire.InErrMsg, []string{"7", "201", "Order rejected", `{"reason":"x"}`, "1700000000000"}))
		require.Len(t, w.calls, 1)
		assert.Equal(t, []any{int64(7), int64(1700000000000), int64(201), "Order rejected", `{"reason":"x"}`}, w.calls[0].args)
	})

	t.Run("before advanced reject", func(t *testing.T) {
		d, w := newTestDecoder(wire.MinServerVerAdvancedOrderReject - 1)
		require.NoError(t, d.Interpret(wire.InErrMsg, []string{"2", "-1", "2104", "Market data farm connection is OK"}))
		require.Len(t, w.calls, 1)
		assert.Equal(t, "", w.calls[0].args[4])
	})
}

func TestShortMessageSkipsCallback(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	err := d.Interpret(wire.InTickPrice, []string{"6", "5", "1", "10.5"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrShortMessage))
	assert.Empty(t, w.calls)
}

func TestBadFieldSkipsCallback(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	err := d.Interpret(wire.InTickSize, []string{"6", "5", "0", "lots"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadField))
	assert.Empty(t, w.calls)
}

func TestUnknownMessageID(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	err := d.Interpret(999, []string{"1"})
	assert.True(t, errors.Is(err, errors.ErrUnknownMessage))
	assert.Empty(t, w.calls)

	err = d.InterpretProto(999, nil)
	assert.True(t, errors.Is(err, errors.ErrUnknownMessage))
}

func TestReflectiveDispatch(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	require.NoError(t, d.Interpret(wire.InNextValidID, []string{"1", "42"}))
	require.NoError(t, d.Interpret(wire.InAcctValue, []string{"2", "NetLiquidation", "1000.5", "USD", "DU123"}))
	assert.Equal(t, []call{
		{name: "NextValidID", args: []any{int64(42)}},
		{name: "UpdateAccountValue", args: []any{"NetLiquidation", "1000.5", "USD", "DU123"}},
	}, w.calls)

	err := d.Interpret(wire.InNextValidID, []string{"1"})
	assert.True(t, errors.Is(err, errors.ErrShortMessage))

	err = d.Interpret(wire.InNextValidID, []string{"1", "42", "43"})
	assert.True(t, errors.Is(err, errors.ErrBadField))

	err = d.Interpret(wire.InNextValidID, []string{"1", "x"})
	assert.True(t, errors.Is(err, errors.ErrBadField))

	assert.Len(t, w.calls, 2)
}

func TestReflectiveBoolMatchesFieldReader(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	for _, v := range []string{"1", "2", "true", "0", "", "false"} {
		require.NoError(t, d.Interpret(wire.InVerifyCompleted, []string{"1", v, ""}), v)
	}
	got := make([]any, len(w.calls))
	for i, c := range w.calls {
		got[i] = c.args[0]
	}
	assert.Equal(t, []any{true, true, true, false, false, false}, got)

	err := d.Interpret(wire.InVerifyCompleted, []string{"1", "x", ""})
	assert.True(t, errors.Is(err, errors.ErrBadField))
	assert.Len(t, w.calls, 6)
}

func TestHistoricalDataEndGating(t *testing.T) {
	bar := []string{"20240102", "1", "3", "0.5", "2", "1000", "1.75", "12"}

	t.Run("inline end", func(t *testing.T) {
		d, w := newTestDecoder(wire.MinServerVerHistoricalDataEnd - 1)
		fields := append([]string{"9", "20240101", "20240103", "1"}, bar...)
		require.NoError(t, d.Interpret(wire.InHistoricalData, fields))
		assert.Equal(t, []string{"HistoricalData", "HistoricalDataEnd"}, w.names())
		assert.Equal(t, []any{int64(9), "20240101", "20240103"}, w.calls[1].args)

		got := w.calls[0].args[1].(models.BarData)
		assert.Equal(t, "20240102", got.Date)
		assert.Equal(t, 3.0, got.High)
		assert.Equal(t, int64(12), got.BarCount)
		assert.True(t, decimal.RequireFromString("1.75").Equal(got.WAP))
	})

	t.Run("separate end message", func(t *testing.T) {
		d, w := newTestDecoder(wire.MinServerVerHistoricalDataEnd)
		fields := append([]string{"9", "1"}, bar...)
		require.NoError(t, d.Interpret(wire.InHistoricalData, fields))
		require.NoError(t, d.Interpret(wire.InHistoricalDataEnd, []string{"9", "20240101", "20240103"}))
		assert.Equal(t, []string{"HistoricalData", "HistoricalDataEnd"}, w.names())
	})
}

func TestScannerDataCallsEndAfterRows(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	row := func(rank, symbol string) []string {
		return []string{rank, "1", symbol, "STK", "", "0", "", "SMART", "USD", symbol, "NMS", symbol, "", "", "", ""}
	}
	fields := []string{"3", "4", "2"}
	fields = append(fields, row("0", "AAPL")...)
	fields = append(fields, row("1", "MSFT")...)

	require.NoError(t, d.Interpret(wire.InScannerData, fields))
	assert.Equal(t, []call{
		{name: "ScannerData", args: []any{int64(4), int64(0), "AAPL"}},
		{name: "ScannerData", args: []any{int64(4), int64(1), "MSFT"}},
		{name: "ScannerDataEnd", args: []any{int64(4)}},
	}, w.calls)
}

func TestTickByTickMidPoint(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	require.NoError(t, d.Interpret(wire.InTickByTick, []string{"3", "4", "1700000000", "101.25"}))
	assert.Equal(t, []call{{name: "TickByTickMidPoint", args: []any{int64(3), int64(1700000000), 101.25}}}, w.calls)
}

func TestContractDataLastTradeDate(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerSizeRules)

	fields := []string{
		"11",
		"ES", "FUT", "20240315 09:30 US/Central",
		"0", "", "CME", "USD", "ESH4", "E-mini S&P", "ES", "495512563", "0.25",
		"50", "LMT,MKT", "CME", "1", "0",
		"E-mini S&P 500", "",
		"202403", "", "", "", "US/Central", "", "",
		"", "",
		"0",
		"1", "", "", "", "",
		"",
		"1", "1", "1",
	}
	require.NoError(t, d.Interpret(wire.InContractData, fields))
	require.Len(t, w.calls, 1)

	cd := w.calls[0].args[1].(*models.ContractDetails)
	assert.Equal(t, "20240315", cd.Contract.LastTradeDateOrContractMonth)
	assert.Equal(t, "09:30", cd.LastTradeTime)
	assert.Equal(t, int64(495512563), cd.Contract.ConID)
	assert.Equal(t, 0.25, cd.MinTick)
	assert.Equal(t, "E-mini S&P 500", cd.LongName)
	assert.True(t, decimal.NewFromInt(1).Equal(cd.MinSize))
}

// openOrderFields builds an OPEN_ORDER body for server version 100 and message
// version 34, the oldest layout the decoder supports without optional blocks.
func openOrderFields() []string {
	return []string{
		"34", "17",
		// contract
		"265598", "AAPL", "STK", "", "0", "", "", "SMART", "USD", "AAPL", "NMS",
		// action through auxPrice
		"BUY", "100", "LMT", "150.5", "",
		// tif through goodAfterTime, then sharesAllocation
		"DAY", "", "DU123", "O", "0", "ref-1", "3", "99", "0", "0", "0", "", "",
		// fa params and profile, goodTillDate through settlingFirm
		"", "", "", "", "", "", "", "",
		// short sale, auction strategy, box, peg to stock
		"0", "", "-1", "0", "", "", "", "", "",
		// displaySize through ocaType, deprecated flags, parentId, triggerMethod
		"", "0", "0", "0", "", "0", "0", "0", "", "0", "0",
		// volatility, trail, basis points
		"", "0", "", "", "0", "0", "", "", "", "",
		// combo legs, smart combo routing, scale, hedge
		"", "0", "0", "0", "", "", "", "",
		// optOutSmartRouting, clearing, notHeld, delta neutral, algo, solicited
		"0", "", "", "0", "0", "", "0",
		// what-if block
		"0", "Submitted", "", "", "", "", "", "", "", "",
		// randomize flags
		"0", "0",
	}
}

func TestOpenOrderLegacy(t *testing.T) {
	d, w := newTestDecoder(100)

	require.NoError(t, d.Interpret(wire.InOpenOrder, openOrderFields()))
	require.Len(t, w.calls, 1)

	args := w.calls[0].args
	assert.Equal(t, int64(17), args[0])
	c := args[1].(*models.Contract)
	o := args[2].(*models.Order)
	s := args[3].(*models.OrderState)
	assert.Equal(t, "AAPL", c.Symbol)
	assert.Equal(t, "NMS", c.TradingClass)
	assert.Equal(t, "BUY", o.Action)
	assert.True(t, decimal.NewFromInt(100).Equal(o.TotalQuantity))
	assert.Equal(t, 150.5, o.LmtPrice)
	assert.Equal(t, models.UnsetFloat, o.AuxPrice)
	assert.Equal(t, int64(99), o.PermID)
	assert.Equal(t, int64(-1), o.ExemptCode)
	assert.Equal(t, "Submitted", s.Status)
	assert.Equal(t, models.UnsetFloat, s.CommissionAndFees)
}

func TestOpenOrderTruncated(t *testing.T) {
	d, w := newTestDecoder(100)
	fields := openOrderFields()

	err := d.Interpret(wire.InOpenOrder, fields[:len(fields)-1])
	assert.True(t, errors.Is(err, errors.ErrShortMessage))
	assert.Empty(t, w.calls)
}

func TestReadConditions(t *testing.T) {
	r := wire.NewFieldReader(wire.InOpenOrder, []string{
		"2",
		"1", "a", "1", "100.5", "265598", "SMART", "2",
		"3", "o", "0", "20240102 10:00:00",
		"1", "0",
	})
	od := newOrderDecoder(r, 34, wire.MinServerVerPeggedToBenchmark)
	od.conditions()
	require.NoError(t, r.Err())

	require.Len(t, od.order.Conditions, 2)
	price, ok := od.order.Conditions[0].(*models.PriceCondition)
	require.True(t, ok)
	assert.True(t, price.Conjunction())
	assert.True(t, price.IsMore)
	assert.Equal(t, 100.5, price.Price)
	assert.Equal(t, int64(265598), price.ConID)
	assert.Equal(t, int64(2), price.TriggerMethod)

	tc, ok := od.order.Conditions[1].(*models.TimeCondition)
	require.True(t, ok)
	assert.False(t, tc.Conjunction())
	assert.Equal(t, "20240102 10:00:00", tc.Time)

	assert.True(t, od.order.ConditionsIgnoreRTH)
	assert.False(t, od.order.ConditionsCancelOrder)
}

func TestUnknownConditionType(t *testing.T) {
	r := wire.NewFieldReader(wire.InOpenOrder, []string{"1", "9"})
	od := newOrderDecoder(r, 34, wire.MinServerVerPeggedToBenchmark)
	od.conditions()
	assert.True(t, errors.Is(r.Err(), errors.ErrBadField))
}

func TestOrderStatusLegacyAndProtoAgree(t *testing.T) {
	legacy, lw := newTestDecoder(wire.MinServerVerBondIssuerID)
	require.NoError(t, legacy.Interpret(wire.InOrderStatus, []string{
		"3", "Filled", "100", "0", "10.5", "0", "0", "10.5", "1", "", "0",
	}))

	payload, err := proto.Marshal(&protobuf.OrderStatus{
		OrderId:       proto.Int32(3),
		Status:        proto.String("Filled"),
		Filled:        proto.String("100"),
		Remaining:     proto.String("0"),
		AvgFillPrice:  proto.Float64(10.5),
		ParentId:      proto.Int32(0),
		LastFillPrice: proto.Float64(10.5),
		ClientId:      proto.Int32(1),
		WhyHeld:       proto.String(""),
	})
	require.NoError(t, err)

	pd, pw := newTestDecoder(wire.MinServerVerProtobuf)
	msg := append(wire.EncodeMsgID(wire.ProtobufMsgID+wire.InOrderStatus, wire.MinServerVerProtobuf), payload...)
	require.NoError(t, pd.ProcessMessage(msg))

	assert.Equal(t, lw.calls, pw.calls)
}

func TestProtoError(t *testing.T) {
	payload, err := proto.Marshal(&protobuf.ErrorMessage{
		Id:        proto.Int32(12),
		ErrorCode: proto.Int32(200),
		ErrorMsg:  proto.String("No security definition has been found"),
	})
	require.NoError(t, err)

	d, w := newTestDecoder(wire.MinServerVerProtobuf)
	require.NoError(t, d.InterpretProto(wire.InErrMsg, payload))
	assert.Equal(t, []call{{name: "Error", args: []any{int64(12), int64(0), int64(200), "No security definition has been found", ""}}}, w.calls)
}

func TestProtoContractData(t *testing.T) {
	payload, err := proto.Marshal(&protobuf.ContractData{
		ReqId: proto.Int32(5),
		Contract: &protobuf.Contract{
			ConId:    proto.Int32(265598),
			Symbol:   proto.String("AAPL"),
			SecType:  proto.String("STK"),
			Exchange: proto.String("SMART"),
		},
		ContractDetails: &protobuf.ContractDetails{
			MarketName: proto.String("NMS"),
			MinTick:    proto.String("0.01"),
			LongName:   proto.String("APPLE INC"),
		},
	})
	require.NoError(t, err)

	d, w := newTestDecoder(wire.MinServerVerProtobuf)
	require.NoError(t, d.InterpretProto(wire.InContractData, payload))
	require.Len(t, w.calls, 1)

	cd := w.calls[0].args[1].(*models.ContractDetails)
	assert.Equal(t, int64(5), w.calls[0].args[0])
	assert.Equal(t, "AAPL", cd.Contract.Symbol)
	assert.Equal(t, int64(265598), cd.Contract.ConID)
	assert.Equal(t, 0.01, cd.MinTick)
	assert.Equal(t, "APPLE INC", cd.LongName)
	assert.True(t, models.IsUnsetDecimal(cd.MinSize))
}

func TestExecutionLegacyAndProtoAgree(t *testing.T) {
	legacy, lw := newTestDecoder(wire.MinServerVerBondIssuerID)
	require.NoError(t, legacy.Interpret(wire.InExecutionData, []string{
		"7", "3",
		"265598", "AAPL", "STK", "", "0", "", "", "SMART", "USD", "AAPL", "NMS",
		"0001f4e8.65", "20261018 09:30:01", "DU123", "ISLAND", "BOT", "100", "187.25",
		"0", "1", "0", "100", "187.25", "", "", "", "", "0",
	}))

	payload, err := proto.Marshal(&protobuf.ExecutionDetails{
		ReqId: proto.Int32(7),
		Contract: &protobuf.Contract{
			ConId:        proto.Int32(265598),
			Symbol:       proto.String("AAPL"),
			SecType:      proto.String("STK"),
			Exchange:     proto.String("SMART"),
			Currency:     proto.String("USD"),
			LocalSymbol:  proto.String("AAPL"),
			TradingClass: proto.String("NMS"),
		},
		Execution: &protobuf.Execution{
			ExecId:     proto.String("0001f4e8.65"),
			OrderId:    proto.Int32(3),
			Time:       proto.String("20261018 09:30:01"),
			AcctNumber: proto.String("DU123"),
			Exchange:   proto.String("ISLAND"),
			Side:       proto.String("BOT"),
			Shares:     proto.String("100"),
			Price:      proto.Float64(187.25),
			ClientId:   proto.Int32(1),
			CumQty:     proto.String("100"),
			AvgPrice:   proto.Float64(187.25),
		},
	})
	require.NoError(t, err)

	pd, pw := newTestDecoder(wire.MinServerVerProtobuf)
	require.NoError(t, pd.InterpretProto(wire.InExecutionData, payload))

	require.Len(t, lw.calls, 1)
	assert.Equal(t, lw.calls, pw.calls)
}

func TestProtoOpenOrder(t *testing.T) {
	payload, err := proto.Marshal(&protobuf.OpenOrder{
		Contract: &protobuf.Contract{
			ConId:    proto.Int32(265598),
			Symbol:   proto.String("AAPL"),
			SecType:  proto.String("STK"),
			Exchange: proto.String("SMART"),
		},
		Order: &protobuf.Order{
			OrderId:       proto.Int32(17),
			Action:        proto.String("BUY"),
			TotalQuantity: proto.String("100"),
			OrderType:     proto.String("LMT"),
			LmtPrice:      proto.Float64(150.5),
			Account:       proto.String("DU123"),
		},
		OrderState: &protobuf.OrderState{Status: proto.String("Submitted")},
	})
	require.NoError(t, err)

	d, w := newTestDecoder(wire.MinServerVerProtobuf)
	require.NoError(t, d.InterpretProto(wire.InOpenOrder, payload))
	require.Len(t, w.calls, 1)

	args := w.calls[0].args
	assert.Equal(t, int64(17), args[0])
	o := args[2].(*models.Order)
	assert.Equal(t, "AAPL", args[1].(*models.Contract).Symbol)
	assert.Equal(t, "BUY", o.Action)
	assert.True(t, decimal.NewFromInt(100).Equal(o.TotalQuantity))
	assert.Equal(t, 150.5, o.LmtPrice)
	assert.Equal(t, models.UnsetFloat, o.AuxPrice)
	assert.Equal(t, "Submitted", args[3].(*models.OrderState).Status)
}

func TestProtoMalformedPayload(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerProtobuf)

	err := d.InterpretProto(wire.InOrderStatus, []byte{0xff, 0xff, 0xff})
	assert.True(t, errors.Is(err, errors.ErrBadField))
	assert.Empty(t, w.calls)
}

func TestProcessMessageLegacyID(t *testing.T) {
	d, w := newTestDecoder(wire.MinServerVerBondIssuerID)

	payload := wire.NewMessage(wire.InNextValidID, d.ServerVersion()).Int(1).Int(8).Payload()
	require.NoError(t, d.ProcessMessage(payload))
	assert.Equal(t, []call{{name: "NextValidID", args: []any{int64(8)}}}, w.calls)
}

// Property: a truncated TICK_SIZE message never reaches the wrapper
func TestTruncatedMessagesNeverDispatch(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("prefixes of a valid message fail without callbacks", prop.ForAll(
		func(reqID int64, size int64, cut int) bool {
			d, w := newTestDecoder(wire.MinServerVerBondIssuerID)
			fields := []string{"6", fmt.Sprint(reqID), "0", fmt.Sprint(size)}
			err := d.Interpret(wire.InTickSize, fields[:cut])
			return errors.Is(err, errors.ErrShortMessage) && len(w.calls) == 0
		},
		gen.Int64Range(0, 1<<31),
		gen.Int64Range(0, 1<<40),
		gen.IntRange(0, 3),
	))

	properties.Property("complete messages dispatch exactly once", prop.ForAll(
		func(reqID int64, size int64) bool {
			d, w := newTestDecoder(wire.MinServerVerBondIssuerID)
			fields := []string{"6", fmt.Sprint(reqID), "0", fmt.Sprint(size)}
			if err := d.Interpret(wire.InTickSize, fields); err != nil {
				return false
			}
			return len(w.calls) == 1 && w.calls[0].args[2] == fmt.Sprint(size)
		},
		gen.Int64Range(0, 1<<31),
		gen.Int64Range(0, 1<<40),
	))

	properties.TestingRun(t)
}
