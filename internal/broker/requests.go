package broker

import (
	"context"
	"fmt"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

// writeContract writes the common contract block from conId through tradingClass.
func writeContract(msg *wire.FieldWriter, c *models.Contract, primaryExchange bool) {
	msg.Int(c.ConID).
		String(c.Symbol).
		String(c.SecType).
		String(c.LastTradeDateOrContractMonth).
		FloatMax(c.Strike).
		String(c.Right).
		String(c.Multiplier).
		String(c.Exchange)
	if primaryExchange {
		msg.String(c.PrimaryExchange)
	}
	msg.String(c.Currency).
		String(c.LocalSymbol).
		String(c.TradingClass)
}

func writeComboLegs(msg *wire.FieldWriter, c *models.Contract) {
	if c.SecType != "BAG" {
		return
	}
	msg.Int(int64(len(c.ComboLegs)))
	for _, leg := range c.ComboLegs {
		msg.Int(leg.ConID).
			Int(leg.Ratio).
			String(leg.Action).
			String(leg.Exchange)
	}
}

func validContract(c *models.Contract) error {
	if c == nil {
		return errors.NewValidationError("contract", nil, "contract is required")
	}
	if c.ConID == 0 && c.Symbol == "" && c.LocalSymbol == "" {
		return errors.NewValidationError("contract", c.String(), "needs a conId, symbol or local symbol")
	}
	return nil
}

// ReqCurrentTime asks for the server clock in seconds (CURRENT_TIME).
func (c *Client) ReqCurrentTime(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutReqCurrentTime).Int(1))
}

// ReqCurrentTimeInMillis asks for the server clock in milliseconds.
func (c *Client) ReqCurrentTimeInMillis(ctx context.Context) error {
	if err := c.requireVersion(wire.MinServerVerCurrentTimeInMillis, "current time in millis"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqCurrentTimeInMillis))
}

// ReqIDs asks for the next valid order id (NEXT_VALID_ID).
func (c *Client) ReqIDs(ctx context.Context, numIDs int64) error {
	return c.send(ctx, c.newMessage(wire.OutReqIDs).Int(1).Int(numIDs))
}

// ReqManagedAccts asks for the comma separated account list.
func (c *Client) ReqManagedAccts(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutReqManagedAccts).Int(1))
}

// ReqPositions subscribes to positions across all accounts.
func (c *Client) ReqPositions(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutReqPositions).Int(1))
}

func (c *Client) CancelPositions(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutCancelPositions).Int(1))
}

// ReqAccountSummary subscribes to summary tags for an account group ("All").
func (c *Client) ReqAccountSummary(ctx context.Context, reqID int64, group, tags string) error {
	return c.send(ctx, c.newMessage(wire.OutReqAccountSummary).
		Int(1).
		Int(reqID).
		String(group).
		String(tags))
}

func (c *Client) CancelAccountSummary(ctx context.Context, reqID int64) error {
	return c.send(ctx, c.newMessage(wire.OutCancelAccountSummary).Int(1).Int(reqID))
}

// ReqAccountUpdates starts or stops account and portfolio updates for acctCode.
func (c *Client) ReqAccountUpdates(ctx context.Context, subscribe bool, acctCode string) error {
	return c.send(ctx, c.newMessage(wire.OutReqAcctData).
		Int(2).
		Bool(subscribe).
		String(acctCode))
}

// ReqOpenOrders asks for open orders placed by this client.
func (c *Client) ReqOpenOrders(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutReqOpenOrders).Int(1))
}

// ReqAllOpenOrders asks for open orders from every client and TWS.
func (c *Client) ReqAllOpenOrders(ctx context.Context) error {
	return c.send(ctx, c.newMessage(wire.OutReqAllOpenOrders).Int(1))
}

// ReqCompletedOrders asks for filled and cancelled orders of the session.
func (c *Client) ReqCompletedOrders(ctx context.Context, apiOnly bool) error {
	if err := c.requireVersion(wire.MinServerVerCompletedOrders, "completed orders"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqCompletedOrders).Bool(apiOnly))
}

// ReqExecutions asks for executions matching filter.
func (c *Client) ReqExecutions(ctx context.Context, reqID int64, filter models.ExecutionFilter) error {
	sv := c.ServerVersion()
	hasDayFilter := filter.LastNDays != models.UnsetInt || len(filter.SpecificDates) > 0
	if hasDayFilter && sv < wire.MinServerVerParametrizedDaysOfExecs {
		return fmt.Errorf("%w: execution day filters need server version %d", errors.ErrUnsupportedVersion, wire.MinServerVerParametrizedDaysOfExecs)
	}

	msg := c.newMessage(wire.OutReqExecutions).
		Int(3).
		Int(reqID).
		Int(filter.ClientID).
		String(filter.AcctCode).
		String(filter.Time).
		String(filter.Symbol).
		String(filter.SecType).
		String(filter.Exchange).
		String(filter.Side)
	if sv >= wire.MinServerVerParametrizedDaysOfExecs {
		msg.IntMax(filter.LastNDays)
		msg.Int(int64(len(filter.SpecificDates)))
		for _, d := range filter.SpecificDates {
			msg.Int(d)
		}
	}
	return c.send(ctx, msg)
}

// ReqContractDetails asks for every contract matching the description.
func (c *Client) ReqContractDetails(ctx context.Context, reqID int64, contract *models.Contract) error {
	if err := validContract(contract); err != nil {
		return err
	}
	msg := c.newMessage(wire.OutReqContractData).Int(8).Int(reqID)
	writeContract(msg, contract, true)
	msg.Bool(contract.IncludeExpired).
		String(contract.SecIDType).
		String(contract.SecID)
	if c.ServerVersion() >= wire.MinServerVerBondIssuerID {
		msg.String(contract.IssuerID)
	}
	return c.send(ctx, msg)
}

// ReqMktData subscribes to top of book data, or requests a one-off snapshot.
func (c *Client) ReqMktData(ctx context.Context, reqID int64, contract *models.Contract, genericTicks string, snapshot, regulatorySnapshot bool) error {
	if err := validContract(contract); err != nil {
		return err
	}
	msg := c.newMessage(wire.OutReqMktData).Int(11).Int(reqID)
	writeContract(msg, contract, true)
	writeComboLegs(msg, contract)

	if dn := contract.DeltaNeutralContract; dn != nil {
		msg.Bool(true).Int(dn.ConID).Float(dn.Delta).Float(dn.Price)
	} else {
		msg.Bool(false)
	}

	msg.String(genericTicks).Bool(snapshot)
	if c.ServerVersion() >= wire.MinServerVerReqSmartComponents {
		msg.Bool(regulatorySnapshot)
	}
	msg.String("")
	return c.send(ctx, msg)
}

func (c *Client) CancelMktData(ctx context.Context, reqID int64) error {
	return c.send(ctx, c.newMessage(wire.OutCancelMktData).Int(2).Int(reqID))
}

// ReqMarketDataType switches between live (1), frozen (2), delayed (3) and
// delayed frozen (4) data.
func (c *Client) ReqMarketDataType(ctx context.Context, marketDataType int64) error {
	if marketDataType < 1 || marketDataType > 4 {
		return errors.NewValidationError("marketDataType", marketDataType, "must be 1..4")
	}
	return c.send(ctx, c.newMessage(wire.OutReqMarketDataType).Int(1).Int(marketDataType))
}

// ReqMktDepth subscribes to order book updates.
func (c *Client) ReqMktDepth(ctx context.Context, reqID int64, contract *models.Contract, numRows int64, isSmartDepth bool) error {
	if err := validContract(contract); err != nil {
		return err
	}
	sv := c.ServerVersion()
	if isSmartDepth && sv < wire.MinServerVerSmartDepth {
		return fmt.Errorf("%w: smart depth needs server version %d", errors.ErrUnsupportedVersion, wire.MinServerVerSmartDepth)
	}

	msg := c.newMessage(wire.OutReqMktDepth).Int(5).Int(reqID)
	writeContract(msg, contract, sv >= wire.MinServerVerMktDepthPrimExchange)
	msg.Int(numRows)
	if sv >= wire.MinServerVerSmartDepth {
		msg.Bool(isSmartDepth)
	}
	msg.String("")
	return c.send(ctx, msg)
}

func (c *Client) CancelMktDepth(ctx context.Context, reqID int64, isSmartDepth bool) error {
	msg := c.newMessage(wire.OutCancelMktDepth).Int(1).Int(reqID)
	if c.ServerVersion() >= wire.MinServerVerSmartDepth {
		msg.Bool(isSmartDepth)
	}
	return c.send(ctx, msg)
}

// ReqHistoricalData asks for bars. With keepUpToDate the request stays open and
// HISTORICAL_DATA_UPDATE follows.
func (c *Client) ReqHistoricalData(ctx context.Context, reqID int64, contract *models.Contract, req HistoricalDataRequest, keepUpToDate bool) error {
	if err := validContract(contract); err != nil {
		return err
	}
	if req.Duration == "" || req.BarSize == "" || req.WhatToShow == "" {
		return errors.NewValidationError("historicalData", req, "duration, bar size and whatToShow are required")
	}
	sv := c.ServerVersion()

	msg := c.newMessage(wire.OutReqHistoricalData)
	if sv < wire.MinServerVerSyntRealtimeBars {
		msg.Int(6)
	}
	msg.Int(reqID)
	writeContract(msg, contract, true)
	msg.Bool(contract.IncludeExpired).
		String(req.EndDateTime).
		String(req.BarSize).
		String(req.Duration).
		Bool(req.UseRTH).
		String(req.WhatToShow).
		Int(req.FormatDate)
	writeComboLegs(msg, contract)
	if sv >= wire.MinServerVerSyntRealtimeBars {
		msg.Bool(keepUpToDate)
	}
	msg.String("")
	return c.send(ctx, msg)
}

func (c *Client) CancelHistoricalData(ctx context.Context, reqID int64) error {
	return c.send(ctx, c.newMessage(wire.OutCancelHistoricalData).Int(1).Int(reqID))
}

// ReqHeadTimestamp asks for the earliest available data point.
func (c *Client) ReqHeadTimestamp(ctx context.Context, reqID int64, contract *models.Contract, whatToShow string, useRTH bool, formatDate int64) error {
	if err := c.requireVersion(wire.MinServerVerReqHeadTimestamp, "head timestamp"); err != nil {
		return err
	}
	if err := validContract(contract); err != nil {
		return err
	}
	msg := c.newMessage(wire.OutReqHeadTimestamp).Int(reqID)
	writeContract(msg, contract, true)
	msg.Bool(contract.IncludeExpired).
		Bool(useRTH).
		String(whatToShow).
		Int(formatDate)
	return c.send(ctx, msg)
}

// ReqRealTimeBars subscribes to 5 second bars.
func (c *Client) ReqRealTimeBars(ctx context.Context, reqID int64, contract *models.Contract, barSize int64, whatToShow string, useRTH bool) error {
	if err := validContract(contract); err != nil {
		return err
	}
	msg := c.newMessage(wire.OutReqRealTimeBars).Int(3).Int(reqID)
	writeContract(msg, contract, true)
	msg.Int(barSize).
		String(whatToShow).
		Bool(useRTH).
		String("")
	return c.send(ctx, msg)
}

func (c *Client) CancelRealTimeBars(ctx context.Context, reqID int64) error {
	return c.send(ctx, c.newMessage(wire.OutCancelRealTimeBars).Int(1).Int(reqID))
}

// ReqTickByTickData subscribes to tick-by-tick data. tickType is one of "Last",
// "AllLast", "BidAsk" or "MidPoint".
func (c *Client) ReqTickByTickData(ctx context.Context, reqID int64, contract *models.Contract, tickType string, numberOfTicks int64, ignoreSize bool) error {
	if err := c.requireVersion(wire.MinServerVerTickByTick, "tick-by-tick data"); err != nil {
		return err
	}
	if err := validContract(contract); err != nil {
		return err
	}
	sv := c.ServerVersion()
	if (numberOfTicks != 0 || ignoreSize) && sv < wire.MinServerVerTickByTickIgnoreSize {
		return fmt.Errorf("%w: numberOfTicks and ignoreSize need server version %d", errors.ErrUnsupportedVersion, wire.MinServerVerTickByTickIgnoreSize)
	}

	msg := c.newMessage(wire.OutReqTickByTickData).Int(reqID)
	writeContract(msg, contract, true)
	msg.String(tickType)
	if sv >= wire.MinServerVerTickByTickIgnoreSize {
		msg.Int(numberOfTicks).Bool(ignoreSize)
	}
	return c.send(ctx, msg)
}

func (c *Client) CancelTickByTickData(ctx context.Context, reqID int64) error {
	if err := c.requireVersion(wire.MinServerVerTickByTick, "tick-by-tick data"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutCancelTickByTickData).Int(reqID))
}

// ReqMatchingSymbols searches contracts by symbol or company name.
func (c *Client) ReqMatchingSymbols(ctx context.Context, reqID int64, pattern string) error {
	if err := c.requireVersion(wire.MinServerVerReqMatchingSymbols, "matching symbols"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqMatchingSymbols).Int(reqID).String(pattern))
}

// ReqPnL subscribes to daily P&L for an account and optional model code.
func (c *Client) ReqPnL(ctx context.Context, reqID int64, account, modelCode string) error {
	if err := c.requireVersion(wire.MinServerVerPnL, "PnL"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqPnL).
		Int(reqID).
		String(account).
		String(modelCode))
}

func (c *Client) CancelPnL(ctx context.Context, reqID int64) error {
	if err := c.requireVersion(wire.MinServerVerPnL, "PnL"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutCancelPnL).Int(reqID))
}

// ReqMarketRule asks for the price increments of a market rule id.
func (c *Client) ReqMarketRule(ctx context.Context, marketRuleID int64) error {
	if err := c.requireVersion(wire.MinServerVerMarketRules, "market rules"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqMarketRule).Int(marketRuleID))
}

func (c *Client) ReqFamilyCodes(ctx context.Context) error {
	if err := c.requireVersion(wire.MinServerVerReqFamilyCodes, "family codes"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqFamilyCodes))
}

func (c *Client) ReqUserInfo(ctx context.Context, reqID int64) error {
	if err := c.requireVersion(wire.MinServerVerUserInfo, "user info"); err != nil {
		return err
	}
	return c.send(ctx, c.newMessage(wire.OutReqUserInfo).Int(reqID))
}

// CancelOrder cancels one order.
func (c *Client) CancelOrder(ctx context.Context, orderID int64, cancel OrderCancel) error {
	sv := c.ServerVersion()
	if cancel.ManualOrderCancelTime != "" && sv < wire.MinServerVerManualOrderTime {
		return fmt.Errorf("%w: manual order cancel time needs server version %d", errors.ErrUnsupportedVersion, wire.MinServerVerManualOrderTime)
	}

	msg := c.newMessage(wire.OutCancelOrder)
	if sv < wire.MinServerVerCMETaggingFields {
		msg.Int(1)
	}
	msg.Int(orderID)
	if sv >= wire.MinServerVerManualOrderTime {
		msg.String(cancel.ManualOrderCancelTime)
	}
	if sv >= wire.MinServerVerRFQFields && sv < wire.MinServerVerUndoRFQFields {
		// Unused RFQ fields.
		msg.String("").String("").Int(models.UnsetInt)
	}
	if sv >= wire.MinServerVerCMETaggingFields {
		msg.String(cancel.ExtOperator).IntMax(cancel.ManualOrderIndicator)
	}
	return c.send(ctx, msg)
}

// ReqGlobalCancel cancels every open order, including ones placed in TWS.
func (c *Client) ReqGlobalCancel(ctx context.Context, cancel OrderCancel) error {
	sv := c.ServerVersion()
	msg := c.newMessage(wire.OutReqGlobalCancel)
	if sv < wire.MinServerVerCMETaggingFields {
		msg.Int(1)
	} else {
		msg.String(cancel.ExtOperator).IntMax(cancel.ManualOrderIndicator)
	}
	return c.send(ctx, msg)
}
