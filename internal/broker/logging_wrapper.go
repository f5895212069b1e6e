package broker

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ib-trader/internal/decoder"
	"ib-trader/internal/errors"
	"ib-trader/internal/logging"
	"ib-trader/internal/models"
)

// LoggingWrapper logs every callback through zerolog. API errors go through
// logging.LogAPIError; everything else is logged at debug level.
type LoggingWrapper struct {
	logger zerolog.Logger
}

var _ decoder.Wrapper = (*LoggingWrapper)(nil)

// NewLoggingWrapper creates a wrapper that logs to logger.
func NewLoggingWrapper(logger zerolog.Logger) *LoggingWrapper {
	return &LoggingWrapper{logger: logger.With().Str("component", "wrapper").Logger()}
}

func (w *LoggingWrapper) TickPrice(reqID int64, tickType models.TickType, price float64, attrib models.TickAttrib) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Float64("price", price).
		Interface("attrib", attrib).
		Msg("TickPrice")
}

func (w *LoggingWrapper) TickSize(reqID int64, tickType models.TickType, size decimal.Decimal) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Stringer("size", size).
		Msg("TickSize")
}

func (w *LoggingWrapper) TickOptionComputation(reqID int64, tickType models.TickType, tickAttrib int64, impliedVol, delta, optPrice, pvDividend, gamma, vega, theta, undPrice float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Int64("tick_attrib", tickAttrib).
		Float64("implied_vol", impliedVol).
		Float64("delta", delta).
		Float64("opt_price", optPrice).
		Float64("pv_dividend", pvDividend).
		Float64("gamma", gamma).
		Float64("vega", vega).
		Float64("theta", theta).
		Float64("und_price", undPrice).
		Msg("TickOptionComputation")
}

func (w *LoggingWrapper) TickGeneric(reqID int64, tickType models.TickType, value float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Float64("value", value).
		Msg("TickGeneric")
}

func (w *LoggingWrapper) TickString(reqID int64, tickType models.TickType, value string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Str("value", value).
		Msg("TickString")
}

func (w *LoggingWrapper) TickEFP(reqID int64, tickType models.TickType, basisPoints float64, formattedBasisPoints string, totalDividends float64, holdDays int64, futureLastTradeDate string, dividendImpact, dividendsToLastTradeDate float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("tick_type", tickType).
		Float64("basis_points", basisPoints).
		Str("formatted_basis_points", formattedBasisPoints).
		Float64("total_dividends", totalDividends).
		Int64("hold_days", holdDays).
		Str("future_last_trade_date", futureLastTradeDate).
		Float64("dividend_impact", dividendImpact).
		Float64("dividends_to_last_trade_date", dividendsToLastTradeDate).
		Msg("TickEFP")
}

func (w *LoggingWrapper) TickSnapshotEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("TickSnapshotEnd")
}

func (w *LoggingWrapper) MarketDataType(reqID int64, marketDataType int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("market_data_type", marketDataType).
		Msg("MarketDataType")
}

func (w *LoggingWrapper) TickReqParams(reqID int64, minTick float64, bboExchange string, snapshotPermissions int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Float64("min_tick", minTick).
		Str("bbo_exchange", bboExchange).
		Int64("snapshot_permissions", snapshotPermissions).
		Msg("TickReqParams")
}

func (w *LoggingWrapper) TickByTickAllLast(reqID int64, tickType int64, time int64, price float64, size decimal.Decimal, attrib models.TickAttribLast, exchange, specialConditions string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("tick_type", tickType).
		Int64("time", time).
		Float64("price", price).
		Stringer("size", size).
		Interface("attrib", attrib).
		Str("exchange", exchange).
		Str("special_conditions", specialConditions).
		Msg("TickByTickAllLast")
}

func (w *LoggingWrapper) TickByTickBidAsk(reqID int64, time int64, bidPrice, askPrice float64, bidSize, askSize decimal.Decimal, attrib models.TickAttribBidAsk) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("time", time).
		Float64("bid_price", bidPrice).
		Float64("ask_price", askPrice).
		Stringer("bid_size", bidSize).
		Stringer("ask_size", askSize).
		Interface("attrib", attrib).
		Msg("TickByTickBidAsk")
}

func (w *LoggingWrapper) TickByTickMidPoint(reqID int64, time int64, midPoint float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("time", time).
		Float64("mid_point", midPoint).
		Msg("TickByTickMidPoint")
}

func (w *LoggingWrapper) UpdateMktDepth(reqID int64, position, operation, side int64, price float64, size decimal.Decimal) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("position", position).
		Int64("operation", operation).
		Int64("side", side).
		Float64("price", price).
		Stringer("size", size).
		Msg("UpdateMktDepth")
}

func (w *LoggingWrapper) UpdateMktDepthL2(reqID int64, position int64, marketMaker string, operation, side int64, price float64, size decimal.Decimal, isSmartDepth bool) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("position", position).
		Str("market_maker", marketMaker).
		Int64("operation", operation).
		Int64("side", side).
		Float64("price", price).
		Stringer("size", size).
		Bool("is_smart_depth", isSmartDepth).
		Msg("UpdateMktDepthL2")
}

func (w *LoggingWrapper) MktDepthExchanges(descriptions []models.DepthMktDataDescription) {
	w.logger.Debug().
		Int("descriptions", len(descriptions)).
		Msg("MktDepthExchanges")
}

func (w *LoggingWrapper) RerouteMktDataReq(reqID int64, conID int64, exchange string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("con_id", conID).
		Str("exchange", exchange).
		Msg("RerouteMktDataReq")
}

func (w *LoggingWrapper) RerouteMktDepthReq(reqID int64, conID int64, exchange string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("con_id", conID).
		Str("exchange", exchange).
		Msg("RerouteMktDepthReq")
}

func (w *LoggingWrapper) RealtimeBar(reqID int64, bar models.RealTimeBar) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("bar", bar).
		Msg("RealtimeBar")
}

func (w *LoggingWrapper) DeltaNeutralValidation(reqID int64, contract models.DeltaNeutralContract) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("contract", contract).
		Msg("DeltaNeutralValidation")
}

func (w *LoggingWrapper) SmartComponents(reqID int64, components []models.SmartComponent) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("components", len(components)).
		Msg("SmartComponents")
}

func (w *LoggingWrapper) NextValidID(orderID int64) {
	w.logger.Debug().
		Int64("order_id", orderID).
		Msg("NextValidID")
}

func (w *LoggingWrapper) OrderStatus(orderID int64, status string, filled, remaining decimal.Decimal, avgFillPrice float64, permID, parentID int64, lastFillPrice float64, clientID int64, whyHeld string, mktCapPrice float64) {
	w.logger.Debug().
		Int64("order_id", orderID).
		Str("status", status).
		Stringer("filled", filled).
		Stringer("remaining", remaining).
		Float64("avg_fill_price", avgFillPrice).
		Int64("perm_id", permID).
		Int64("parent_id", parentID).
		Float64("last_fill_price", lastFillPrice).
		Int64("client_id", clientID).
		Str("why_held", whyHeld).
		Float64("mkt_cap_price", mktCapPrice).
		Msg("OrderStatus")
}

func (w *LoggingWrapper) OpenOrder(orderID int64, contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	logging.LogOrder(w.logger, orderID, contract.Symbol, order.Action, orderState.Status)
}

func (w *LoggingWrapper) OpenOrderEnd() {
	w.logger.Debug().Msg("OpenOrderEnd")
}

func (w *LoggingWrapper) OrderBound(permID, clientID, orderID int64) {
	w.logger.Debug().
		Int64("perm_id", permID).
		Int64("client_id", clientID).
		Int64("order_id", orderID).
		Msg("OrderBound")
}

func (w *LoggingWrapper) CompletedOrder(contract *models.Contract, order *models.Order, orderState *models.OrderState) {
	w.logger.Debug().
		Interface("contract", contract).
		Interface("order", order).
		Interface("order_state", orderState).
		Msg("CompletedOrder")
}

func (w *LoggingWrapper) CompletedOrdersEnd() {
	w.logger.Debug().Msg("CompletedOrdersEnd")
}

func (w *LoggingWrapper) ExecDetails(reqID int64, contract *models.Contract, execution *models.Execution) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("contract", contract).
		Interface("execution", execution).
		Msg("ExecDetails")
}

func (w *LoggingWrapper) ExecDetailsEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("ExecDetailsEnd")
}

func (w *LoggingWrapper) CommissionAndFeesReport(report models.CommissionAndFeesReport) {
	w.logger.Debug().
		Interface("report", report).
		Msg("CommissionAndFeesReport")
}

func (w *LoggingWrapper) ManagedAccounts(accountsList string) {
	w.logger.Debug().
		Str("accounts_list", accountsList).
		Msg("ManagedAccounts")
}

func (w *LoggingWrapper) UpdateAccountValue(key, value, currency, accountName string) {
	w.logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("currency", currency).
		Str("account_name", accountName).
		Msg("UpdateAccountValue")
}

func (w *LoggingWrapper) UpdatePortfolio(contract *models.Contract, position decimal.Decimal, marketPrice, marketValue, averageCost, unrealizedPNL, realizedPNL float64, accountName string) {
	w.logger.Debug().
		Interface("contract", contract).
		Stringer("position", position).
		Float64("market_price", marketPrice).
		Float64("market_value", marketValue).
		Float64("average_cost", averageCost).
		Float64("unrealized_pnl", unrealizedPNL).
		Float64("realized_pnl", realizedPNL).
		Str("account_name", accountName).
		Msg("UpdatePortfolio")
}

func (w *LoggingWrapper) UpdateAccountTime(timestamp string) {
	w.logger.Debug().
		Str("timestamp", timestamp).
		Msg("UpdateAccountTime")
}

func (w *LoggingWrapper) AccountDownloadEnd(accountName string) {
	w.logger.Debug().
		Str("account_name", accountName).
		Msg("AccountDownloadEnd")
}

func (w *LoggingWrapper) Position(account string, contract *models.Contract, position decimal.Decimal, avgCost float64) {
	w.logger.Debug().
		Str("account", account).
		Interface("contract", contract).
		Stringer("position", position).
		Float64("avg_cost", avgCost).
		Msg("Position")
}

func (w *LoggingWrapper) PositionEnd() {
	w.logger.Debug().Msg("PositionEnd")
}

func (w *LoggingWrapper) AccountSummary(reqID int64, account, tag, value, currency string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("account", account).
		Str("tag", tag).
		Str("value", value).
		Str("currency", currency).
		Msg("AccountSummary")
}

func (w *LoggingWrapper) AccountSummaryEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("AccountSummaryEnd")
}

func (w *LoggingWrapper) PositionMulti(reqID int64, account, modelCode string, contract *models.Contract, position decimal.Decimal, avgCost float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("account", account).
		Str("model_code", modelCode).
		Interface("contract", contract).
		Stringer("position", position).
		Float64("avg_cost", avgCost).
		Msg("PositionMulti")
}

func (w *LoggingWrapper) PositionMultiEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("PositionMultiEnd")
}

func (w *LoggingWrapper) AccountUpdateMulti(reqID int64, account, modelCode, key, value, currency string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("account", account).
		Str("model_code", modelCode).
		Str("key", key).
		Str("value", value).
		Str("currency", currency).
		Msg("AccountUpdateMulti")
}

func (w *LoggingWrapper) AccountUpdateMultiEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("AccountUpdateMultiEnd")
}

func (w *LoggingWrapper) PnL(reqID int64, dailyPnL, unrealizedPnL, realizedPnL float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Float64("daily_pnl", dailyPnL).
		Float64("unrealized_pnl", unrealizedPnL).
		Float64("realized_pnl", realizedPnL).
		Msg("PnL")
}

func (w *LoggingWrapper) PnLSingle(reqID int64, position decimal.Decimal, dailyPnL, unrealizedPnL, realizedPnL, value float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Stringer("position", position).
		Float64("daily_pnl", dailyPnL).
		Float64("unrealized_pnl", unrealizedPnL).
		Float64("realized_pnl", realizedPnL).
		Float64("value", value).
		Msg("PnLSingle")
}

func (w *LoggingWrapper) FamilyCodes(codes []models.FamilyCode) {
	w.logger.Debug().
		Int("codes", len(codes)).
		Msg("FamilyCodes")
}

func (w *LoggingWrapper) UserInfo(reqID int64, whiteBrandingID string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("white_branding_id", whiteBrandingID).
		Msg("UserInfo")
}

func (w *LoggingWrapper) ContractDetails(reqID int64, details *models.ContractDetails) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("details", details).
		Msg("ContractDetails")
}

func (w *LoggingWrapper) BondContractDetails(reqID int64, details *models.ContractDetails) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("details", details).
		Msg("BondContractDetails")
}

func (w *LoggingWrapper) ContractDetailsEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("ContractDetailsEnd")
}

func (w *LoggingWrapper) SymbolSamples(reqID int64, descriptions []models.ContractDescription) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("descriptions", len(descriptions)).
		Msg("SymbolSamples")
}

func (w *LoggingWrapper) SecurityDefinitionOptionParameter(reqID int64, exchange string, underlyingConID int64, tradingClass, multiplier string, expirations []string, strikes []float64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("exchange", exchange).
		Int64("underlying_con_id", underlyingConID).
		Str("trading_class", tradingClass).
		Str("multiplier", multiplier).
		Int("expirations", len(expirations)).
		Int("strikes", len(strikes)).
		Msg("SecurityDefinitionOptionParameter")
}

func (w *LoggingWrapper) SecurityDefinitionOptionParameterEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("SecurityDefinitionOptionParameterEnd")
}

func (w *LoggingWrapper) MarketRule(marketRuleID int64, increments []models.PriceIncrement) {
	w.logger.Debug().
		Int64("market_rule_id", marketRuleID).
		Int("increments", len(increments)).
		Msg("MarketRule")
}

func (w *LoggingWrapper) SoftDollarTiers(reqID int64, tiers []models.SoftDollarTier) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("tiers", len(tiers)).
		Msg("SoftDollarTiers")
}

func (w *LoggingWrapper) HistoricalData(reqID int64, bar models.BarData) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("bar", bar).
		Msg("HistoricalData")
}

func (w *LoggingWrapper) HistoricalDataUpdate(reqID int64, bar models.BarData) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Interface("bar", bar).
		Msg("HistoricalDataUpdate")
}

func (w *LoggingWrapper) HistoricalDataEnd(reqID int64, start, end string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("start", start).
		Str("end", end).
		Msg("HistoricalDataEnd")
}

func (w *LoggingWrapper) HeadTimestamp(reqID int64, headTimestamp string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("head_timestamp", headTimestamp).
		Msg("HeadTimestamp")
}

func (w *LoggingWrapper) HistogramData(reqID int64, items []models.HistogramEntry) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("items", len(items)).
		Msg("HistogramData")
}

func (w *LoggingWrapper) HistoricalTicks(reqID int64, ticks []models.HistoricalTick, done bool) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("ticks", len(ticks)).
		Bool("done", done).
		Msg("HistoricalTicks")
}

func (w *LoggingWrapper) HistoricalTicksBidAsk(reqID int64, ticks []models.HistoricalTickBidAsk, done bool) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("ticks", len(ticks)).
		Bool("done", done).
		Msg("HistoricalTicksBidAsk")
}

func (w *LoggingWrapper) HistoricalTicksLast(reqID int64, ticks []models.HistoricalTickLast, done bool) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int("ticks", len(ticks)).
		Bool("done", done).
		Msg("HistoricalTicksLast")
}

func (w *LoggingWrapper) HistoricalSchedule(reqID int64, startDateTime, endDateTime, timeZone string, sessions []models.HistoricalSession) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("start_date_time", startDateTime).
		Str("end_date_time", endDateTime).
		Str("time_zone", timeZone).
		Int("sessions", len(sessions)).
		Msg("HistoricalSchedule")
}

func (w *LoggingWrapper) ScannerParameters(xml string) {
	w.logger.Debug().
		Str("xml", xml).
		Msg("ScannerParameters")
}

func (w *LoggingWrapper) ScannerData(reqID int64, rank int64, details *models.ContractDetails, distance, benchmark, projection, legsStr string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("rank", rank).
		Interface("details", details).
		Str("distance", distance).
		Str("benchmark", benchmark).
		Str("projection", projection).
		Str("legs_str", legsStr).
		Msg("ScannerData")
}

func (w *LoggingWrapper) ScannerDataEnd(reqID int64) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Msg("ScannerDataEnd")
}

func (w *LoggingWrapper) UpdateNewsBulletin(msgID, msgType int64, newsMessage, originExch string) {
	w.logger.Debug().
		Int64("msg_id", msgID).
		Int64("msg_type", msgType).
		Str("news_message", newsMessage).
		Str("origin_exch", originExch).
		Msg("UpdateNewsBulletin")
}

func (w *LoggingWrapper) TickNews(reqID int64, timestamp int64, providerCode, articleID, headline, extraData string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("timestamp", timestamp).
		Str("provider_code", providerCode).
		Str("article_id", articleID).
		Str("headline", headline).
		Str("extra_data", extraData).
		Msg("TickNews")
}

func (w *LoggingWrapper) NewsProviders(providers []models.NewsProvider) {
	w.logger.Debug().
		Int("providers", len(providers)).
		Msg("NewsProviders")
}

func (w *LoggingWrapper) NewsArticle(reqID int64, articleType int64, articleText string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Int64("article_type", articleType).
		Str("article_text", articleText).
		Msg("NewsArticle")
}

func (w *LoggingWrapper) HistoricalNews(reqID int64, time, providerCode, articleID, headline string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("time", time).
		Str("provider_code", providerCode).
		Str("article_id", articleID).
		Str("headline", headline).
		Msg("HistoricalNews")
}

func (w *LoggingWrapper) HistoricalNewsEnd(reqID int64, hasMore bool) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Bool("has_more", hasMore).
		Msg("HistoricalNewsEnd")
}

func (w *LoggingWrapper) FundamentalData(reqID int64, data string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("data", data).
		Msg("FundamentalData")
}

func (w *LoggingWrapper) ReceiveFA(faDataType int64, xml string) {
	w.logger.Debug().
		Int64("fa_data_type", faDataType).
		Str("xml", xml).
		Msg("ReceiveFA")
}

func (w *LoggingWrapper) ReplaceFAEnd(reqID int64, text string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("text", text).
		Msg("ReplaceFAEnd")
}

func (w *LoggingWrapper) VerifyMessageAPI(apiData string) {
	w.logger.Debug().
		Str("api_data", apiData).
		Msg("VerifyMessageAPI")
}

func (w *LoggingWrapper) VerifyCompleted(isSuccessful bool, errorText string) {
	w.logger.Debug().
		Bool("is_successful", isSuccessful).
		Str("error_text", errorText).
		Msg("VerifyCompleted")
}

func (w *LoggingWrapper) VerifyAndAuthMessageAPI(apiData, xyzChallenge string) {
	w.logger.Debug().
		Str("api_data", apiData).
		Str("xyz_challenge", xyzChallenge).
		Msg("VerifyAndAuthMessageAPI")
}

func (w *LoggingWrapper) VerifyAndAuthCompleted(isSuccessful bool, errorText string) {
	w.logger.Debug().
		Bool("is_successful", isSuccessful).
		Str("error_text", errorText).
		Msg("VerifyAndAuthCompleted")
}

func (w *LoggingWrapper) DisplayGroupList(reqID int64, groups string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("groups", groups).
		Msg("DisplayGroupList")
}

func (w *LoggingWrapper) DisplayGroupUpdated(reqID int64, contractInfo string) {
	w.logger.Debug().
		Int64("req_id", reqID).
		Str("contract_info", contractInfo).
		Msg("DisplayGroupUpdated")
}

func (w *LoggingWrapper) CurrentTime(t int64) {
	w.logger.Debug().
		Int64("time", t).
		Msg("CurrentTime")
}

func (w *LoggingWrapper) CurrentTimeInMillis(t int64) {
	w.logger.Debug().
		Int64("time", t).
		Msg("CurrentTimeInMillis")
}

func (w *LoggingWrapper) Error(reqID int64, errorTime int64, errorCode int64, errorString, advancedOrderRejectJSON string) {
	logging.LogAPIError(w.logger, errors.NewAPIError(reqID, int(errorCode), errorString, advancedOrderRejectJSON, errorTime))
}

func (w *LoggingWrapper) ConnectionClosed() {
	w.logger.Warn().Msg("Connection closed")
}
