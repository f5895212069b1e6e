package broker

import (
	"context"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

func stock(symbol string) *models.Contract {
	return &models.Contract{
		ConID:           265598,
		Symbol:          symbol,
		SecType:         "STK",
		Exchange:        "SMART",
		PrimaryExchange: "NASDAQ",
		Currency:        "USD",
	}
}

func withTimeout(t *testing.T, d time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

func TestSyncCurrentTimeIgnoresFarmNotices(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqCurrentTime, func(in inbound) {
		g.send(wire.InErrMsg, "2", "-1", "2104", "Market data farm connection is OK:usfarm", "")
		g.send(wire.InCurrentTime, "1", "1760780000")
	})
	sc := newTestSyncClient(t, g)

	got, err := sc.CurrentTime(withTimeout(t, 2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1760780000, 0), got)
}

func TestSyncContractDetailsFailsOnAPIError(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqContractData, func(in inbound) {
		g.send(wire.InErrMsg, "2", in.fields[1], "200", "No security definition has been found for the request", "")
	})
	sc := newTestSyncClient(t, g)

	_, err := sc.ContractDetails(withTimeout(t, 2*time.Second), stock("NOPE"))
	require.Error(t, err)

	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 200, apiErr.Code)
}

func TestSyncHistoricalData(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqHistoricalData, func(in inbound) {
		g.send(wire.InHistoricalData, in.fields[0], "20261017 09:30:00", "20261018 09:30:00", "2",
			"20261017", "100.5", "102.25", "99.75", "101", "12000", "100.9", "340",
			"20261018", "101", "103", "100.5", "102.5", "9000", "101.8", "210")
	})
	sc := newTestSyncClient(t, g)

	req := HistoricalDataRequest{Duration: "2 D", BarSize: "1 day", WhatToShow: "TRADES", UseRTH: true, FormatDate: 1}
	bars, err := sc.HistoricalData(withTimeout(t, 2*time.Second), stock("AAPL"), req)
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "20261017", bars[0].Date)
	assert.Equal(t, 102.25, bars[0].High)
	assert.Equal(t, "12000", bars[0].Volume.String())
	assert.Equal(t, int64(210), bars[1].BarCount)
}

func TestSyncPositionsCancelsSubscription(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqPositions, func(in inbound) {
		g.send(wire.InPositionData, "3", "DU123",
			"265598", "AAPL", "STK", "", "0", "", "", "NASDAQ", "USD", "AAPL", "NMS",
			"150", "187.25")
		g.send(wire.InPositionEnd, "1")
	})
	sc := newTestSyncClient(t, g)

	positions, err := sc.Positions(withTimeout(t, 2*time.Second))
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, "DU123", positions[0].Account)
	assert.Equal(t, "AAPL", positions[0].Contract.Symbol)
	assert.Equal(t, "150", positions[0].Position.String())
	assert.Equal(t, 187.25, positions[0].AvgCost)

	g.waitFor(t, wire.OutCancelPositions)
}

func TestSyncAccountSummary(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqAccountSummary, func(in inbound) {
		reqID := in.fields[1]
		g.send(wire.InAccountSummary, "1", reqID, "DU123", "NetLiquidation", "100000.50", "USD")
		g.send(wire.InAccountSummary, "1", reqID, "DU123", "BuyingPower", "400002.00", "USD")
		g.send(wire.InAccountSummaryEnd, "1", reqID)
	})
	sc := newTestSyncClient(t, g)

	values, err := sc.AccountSummary(withTimeout(t, 2*time.Second), "All", "NetLiquidation,BuyingPower")
	require.NoError(t, err)
	assert.Equal(t, []AccountValue{
		{Account: "DU123", Tag: "NetLiquidation", Value: "100000.50", Currency: "USD"},
		{Account: "DU123", Tag: "BuyingPower", Value: "400002.00", Currency: "USD"},
	}, values)

	g.waitFor(t, wire.OutCancelAccountSummary)
}

func TestSyncSnapshot(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqMktData, func(in inbound) {
		reqID := in.fields[1]
		g.send(wire.InTickPrice, "6", reqID, "1", "101.5", "300", "1")
		g.send(wire.InTickString, "6", reqID, "45", "1760780000")
		g.send(wire.InTickSnapshotEnd, "1", reqID)
	})
	sc := newTestSyncClient(t, g)

	snap, err := sc.Snapshot(withTimeout(t, 2*time.Second), stock("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, 101.5, snap.Prices[models.TickBid])
	assert.Equal(t, "300", snap.Sizes[models.TickBidSize].String())
	assert.Equal(t, "1760780000", snap.Strings[models.TickType(45)])
}

func TestSyncTimeout(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	sc := newTestSyncClient(t, g)

	_, err := sc.ManagedAccounts(withTimeout(t, 50*time.Millisecond))
	assert.True(t, errors.Is(err, errors.ErrTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sc.ManagedAccounts(ctx)
	assert.True(t, errors.Is(err, errors.ErrRequestCancelled))
}

func TestSyncConnectionLossFailsPending(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	g.handle(wire.OutReqCurrentTime, func(in inbound) {
		g.drop()
	})
	sc := newTestSyncClient(t, g)

	_, err := sc.CurrentTime(withTimeout(t, 2*time.Second))
	assert.True(t, errors.Is(err, errors.ErrNotConnected))
	assert.False(t, sc.Client().IsConnected())
}

func TestSyncRejectsDuplicateUnkeyedRequest(t *testing.T) {
	g := newFakeGateway(t, testServerVersion)
	release := make(chan struct{})
	g.handle(wire.OutReqIDs, func(in inbound) {
		go func() {
			<-release
			g.send(wire.InNextValidID, "1", "1001")
		}()
	})
	sc := newTestSyncClient(t, g)

	ctx := withTimeout(t, 2*time.Second)
	result := make(chan int64, 1)
	go func() {
		id, _ := sc.NextValidID(ctx)
		result <- id
	}()
	g.waitFor(t, wire.OutReqIDs)

	_, err := sc.NextValidID(ctx)
	assert.True(t, errors.Is(err, errors.ErrRequestInFlight))

	close(release)
	assert.Equal(t, int64(1001), <-result)
}

func TestSlotIgnoresUpdatesAfterFinish(t *testing.T) {
	sl := newSlot(0)
	sl.update(func(v *int) { *v = 1 })
	sl.finish()
	sl.update(func(v *int) { *v = 2 })
	sl.fail(errors.ErrTimeout)

	v, err := sl.result()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

// Property: the contract block always spans the same number of fields, so the
// fields after it stay aligned whatever the contract holds.
func TestProperty_ContractBlockWidth(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("contract block has twelve fields with primary exchange", prop.ForAll(
		func(conID int64, symbol, exchange string, strike float64) bool {
			c := &models.Contract{ConID: conID, Symbol: symbol, SecType: "OPT", Exchange: exchange, Strike: strike}
			msg := wire.NewMessage(wire.OutReqMktData, testServerVersion)
			writeContract(msg, c, true)
			msg.String("tail")

			_, rest, err := wire.SplitMsgID(msg.Payload(), testServerVersion)
			if err != nil {
				return false
			}
			fields := wire.SplitFields(rest)
			return len(fields) == 13 && fields[1] == symbol && fields[12] == "tail"
		},
		gen.Int64Range(0, 1<<40),
		gen.AlphaString(),
		gen.OneConstOf("SMART", "CBOE", "ISE"),
		gen.Float64Range(0, 5000),
	))

	properties.TestingRun(t)
}
