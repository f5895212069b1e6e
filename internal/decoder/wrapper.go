// Package decoder turns TWS API messages into domain objects and delivers them to a
// Wrapper.
package decoder

import (
	"github.com/shopspring/decimal"

	"ib-trader/internal/models"
)

// Wrapper receives decoded messages. Invoking these methods is the decoder's only
// observable effect. Optional numeric values that were not sent arrive as the
// models.Unset* sentinels.
type Wrapper interface {
	// Market data
	TickPrice(reqID int64, tickType models.TickType, price float64, attrib models.TickAttrib)
	TickSize(reqID int64, tickType models.TickType, size decimal.Decimal)
	TickOptionComputation(reqID int64, tickType models.TickType, tickAttrib int64, impliedVol, delta, optPrice, pvDividend, gamma, vega, theta, undPrice float64)
	TickGeneric(reqID int64, tickType models.TickType, value float64)
	TickString(reqID int64, tickType models.TickType, value string)
	TickEFP(reqID int64, tickType models.TickType, basisPoints float64, formattedBasisPoints string, totalDividends float64, holdDays int64, futureLastTradeDate string, dividendImpact, dividendsToLastTradeDate float64)
	TickSnapshotEnd(reqID int64)
	MarketDataType(reqID int64, marketDataType int64)
	TickReqParams(reqID int64, minTick float64, bboExchange string, snapshotPermissions int64)
	TickByTickAllLast(reqID int64, tickType int64, time int64, price float64, size decimal.Decimal, attrib models.TickAttribLast, exchange, specialConditions string)
	TickByTickBidAsk(reqID int64, time int64, bidPrice, askPrice float64, bidSize, askSize decimal.Decimal, attrib models.TickAttribBidAsk)
	TickByTickMidPoint(reqID int64, time int64, midPoint float64)
	UpdateMktDepth(reqID int64, position, operation, side int64, price float64, size decimal.Decimal)
	UpdateMktDepthL2(reqID int64, position int64, marketMaker string, operation, side int64, price float64, size decimal.Decimal, isSmartDepth bool)
	MktDepthExchanges(descriptions []models.DepthMktDataDescription)
	RerouteMktDataReq(reqID int64, conID int64, exchange string)
	RerouteMktDepthReq(reqID int64, conID int64, exchange string)
	RealtimeBar(reqID int64, bar models.RealTimeBar)
	DeltaNeutralValidation(reqID int64, contract models.DeltaNeutralContract)
	SmartComponents(reqID int64, components []models.SmartComponent)

	// Orders
	NextValidID(orderID int64)
	OrderStatus(orderID int64, status string, filled, remaining decimal.Decimal, avgFillPrice float64, permID, parentID int64, lastFillPrice float64, clientID int64, whyHeld string, mktCapPrice float64)
	OpenOrder(orderID int64, contract *models.Contract, order *models.Order, orderState *models.OrderState)
	OpenOrderEnd()
	OrderBound(permID, clientID, orderID int64)
	CompletedOrder(contract *models.Contract, order *models.Order, orderState *models.OrderState)
	CompletedOrdersEnd()
	ExecDetails(reqID int64, contract *models.Contract, execution *models.Execution)
	ExecDetailsEnd(reqID int64)
	CommissionAndFeesReport(report models.CommissionAndFeesReport)

	// Account and portfolio
	ManagedAccounts(accountsList string)
	UpdateAccountValue(key, value, currency, accountName string)
	UpdatePortfolio(contract *models.Contract, position decimal.Decimal, marketPrice, marketValue, averageCost, unrealizedPNL, realizedPNL float64, accountName string)
	UpdateAccountTime(timestamp string)
	AccountDownloadEnd(accountName string)
	Position(account string, contract *models.Contract, position decimal.Decimal, avgCost float64)
	PositionEnd()
	AccountSummary(reqID int64, account, tag, value, currency string)
	AccountSummaryEnd(reqID int64)
	PositionMulti(reqID int64, account, modelCode string, contract *models.Contract, position decimal.Decimal, avgCost float64)
	PositionMultiEnd(reqID int64)
	AccountUpdateMulti(reqID int64, account, modelCode, key, value, currency string)
	AccountUpdateMultiEnd(reqID int64)
	PnL(reqID int64, dailyPnL, unrealizedPnL, realizedPnL float64)
	PnLSingle(reqID int64, position decimal.Decimal, dailyPnL, unrealizedPnL, realizedPnL, value float64)
	FamilyCodes(codes []models.FamilyCode)
	UserInfo(reqID int64, whiteBrandingID string)

	// Contracts
	ContractDetails(reqID int64, details *models.ContractDetails)
	BondContractDetails(reqID int64, details *models.ContractDetails)
	ContractDetailsEnd(reqID int64)
	SymbolSamples(reqID int64, descriptions []models.ContractDescription)
	SecurityDefinitionOptionParameter(reqID int64, exchange string, underlyingConID int64, tradingClass, multiplier string, expirations []string, strikes []float64)
	SecurityDefinitionOptionParameterEnd(reqID int64)
	MarketRule(marketRuleID int64, increments []models.PriceIncrement)
	SoftDollarTiers(reqID int64, tiers []models.SoftDollarTier)

	// Historical data
	HistoricalData(reqID int64, bar models.BarData)
	HistoricalDataUpdate(reqID int64, bar models.BarData)
	HistoricalDataEnd(reqID int64, start, end string)
	HeadTimestamp(reqID int64, headTimestamp string)
	HistogramData(reqID int64, items []models.HistogramEntry)
	HistoricalTicks(reqID int64, ticks []models.HistoricalTick, done bool)
	HistoricalTicksBidAsk(reqID int64, ticks []models.HistoricalTickBidAsk, done bool)
	HistoricalTicksLast(reqID int64, ticks []models.HistoricalTickLast, done bool)
	HistoricalSchedule(reqID int64, startDateTime, endDateTime, timeZone string, sessions []models.HistoricalSession)

	// Scanner, news and fundamentals
	ScannerParameters(xml string)
	ScannerData(reqID int64, rank int64, details *models.ContractDetails, distance, benchmark, projection, legsStr string)
	ScannerDataEnd(reqID int64)
	UpdateNewsBulletin(msgID, msgType int64, newsMessage, originExch string)
	TickNews(reqID int64, timestamp int64, providerCode, articleID, headline, extraData string)
	NewsProviders(providers []models.NewsProvider)
	NewsArticle(reqID int64, articleType int64, articleText string)
	HistoricalNews(reqID int64, time, providerCode, articleID, headline string)
	HistoricalNewsEnd(reqID int64, hasMore bool)
	FundamentalData(reqID int64, data string)

	// Financial advisors, verification and display groups
	ReceiveFA(faDataType int64, xml string)
	ReplaceFAEnd(reqID int64, text string)
	VerifyMessageAPI(apiData string)
	VerifyCompleted(isSuccessful bool, errorText string)
	VerifyAndAuthMessageAPI(apiData, xyzChallenge string)
	VerifyAndAuthCompleted(isSuccessful bool, errorText string)
	DisplayGroupList(reqID int64, groups string)
	DisplayGroupUpdated(reqID int64, contractInfo string)

	// Session
	CurrentTime(t int64)
	CurrentTimeInMillis(t int64)
	Error(reqID int64, errorTime int64, errorCode int64, errorString, advancedOrderRejectJSON string)
	ConnectionClosed()
}

// NopWrapper implements Wrapper by ignoring every callback. Embed it to handle only
// the messages you care about.
type NopWrapper struct{}

var _ Wrapper = NopWrapper{}

func (NopWrapper) TickPrice(int64, models.TickType, float64, models.TickAttrib)     {}
func (NopWrapper) TickSize(int64, models.TickType, decimal.Decimal)                 {}
func (NopWrapper) TickGeneric(int64, models.TickType, float64)                      {}
func (NopWrapper) TickString(int64, models.TickType, string)                        {}
func (NopWrapper) TickSnapshotEnd(int64)                                            {}
func (NopWrapper) MarketDataType(int64, int64)                                      {}
func (NopWrapper) TickReqParams(int64, float64, string, int64)                      {}
func (NopWrapper) TickByTickMidPoint(int64, int64, float64)                         {}
func (NopWrapper) MktDepthExchanges([]models.DepthMktDataDescription)               {}
func (NopWrapper) RerouteMktDataReq(int64, int64, string)                           {}
func (NopWrapper) RerouteMktDepthReq(int64, int64, string)                          {}
func (NopWrapper) RealtimeBar(int64, models.RealTimeBar)                            {}
func (NopWrapper) DeltaNeutralValidation(int64, models.DeltaNeutralContract)        {}
func (NopWrapper) SmartComponents(int64, []models.SmartComponent)                   {}
func (NopWrapper) NextValidID(int64)                                                {}
func (NopWrapper) OpenOrderEnd()                                                    {}
func (NopWrapper) OrderBound(int64, int64, int64)                                   {}
func (NopWrapper) CompletedOrdersEnd()                                              {}
func (NopWrapper) ExecDetailsEnd(int64)                                             {}
func (NopWrapper) CommissionAndFeesReport(models.CommissionAndFeesReport)           {}
func (NopWrapper) ManagedAccounts(string)                                           {}
func (NopWrapper) UpdateAccountValue(string, string, string, string)                {}
func (NopWrapper) UpdateAccountTime(string)                                         {}
func (NopWrapper) AccountDownloadEnd(string)                                        {}
func (NopWrapper) PositionEnd()                                                     {}
func (NopWrapper) AccountSummary(int64, string, string, string, string)             {}
func (NopWrapper) AccountSummaryEnd(int64)                                          {}
func (NopWrapper) PositionMultiEnd(int64)                                           {}
func (NopWrapper) AccountUpdateMulti(int64, string, string, string, string, string) {}
func (NopWrapper) AccountUpdateMultiEnd(int64)                                      {}
func (NopWrapper) PnL(int64, float64, float64, float64)                             {}
func (NopWrapper) FamilyCodes([]models.FamilyCode)                                  {}
func (NopWrapper) UserInfo(int64, string)                                           {}
func (NopWrapper) ContractDetails(int64, *models.ContractDetails)                   {}
func (NopWrapper) BondContractDetails(int64, *models.ContractDetails)               {}
func (NopWrapper) ContractDetailsEnd(int64)                                         {}
func (NopWrapper) SymbolSamples(int64, []models.ContractDescription)                {}
func (NopWrapper) SecurityDefinitionOptionParameterEnd(int64)                       {}
func (NopWrapper) MarketRule(int64, []models.PriceIncrement)                        {}
func (NopWrapper) SoftDollarTiers(int64, []models.SoftDollarTier)                   {}
func (NopWrapper) HistoricalData(int64, models.BarData)                             {}
func (NopWrapper) HistoricalDataUpdate(int64, models.BarData)                       {}
func (NopWrapper) HistoricalDataEnd(int64, string, string)                          {}
func (NopWrapper) HeadTimestamp(int64, string)                                      {}
func (NopWrapper) HistogramData(int64, []models.HistogramEntry)                     {}
func (NopWrapper) HistoricalTicks(int64, []models.HistoricalTick, bool)             {}
func (NopWrapper) HistoricalTicksBidAsk(int64, []models.HistoricalTickBidAsk, bool) {}
func (NopWrapper) HistoricalTicksLast(int64, []models.HistoricalTickLast, bool)     {}
func (NopWrapper) ScannerParameters(string)                                         {}
func (NopWrapper) ScannerDataEnd(int64)                                             {}
func (NopWrapper) UpdateNewsBulletin(int64, int64, string, string)                  {}
func (NopWrapper) TickNews(int64, int64, string, string, string, string)            {}
func (NopWrapper) NewsProviders([]models.NewsProvider)                              {}
func (NopWrapper) NewsArticle(int64, int64, string)                                 {}
func (NopWrapper) HistoricalNews(int64, string, string, string, string)             {}
func (NopWrapper) HistoricalNewsEnd(int64, bool)                                    {}
func (NopWrapper) FundamentalData(int64, string)                                    {}
func (NopWrapper) ReceiveFA(int64, string)                                          {}
func (NopWrapper) ReplaceFAEnd(int64, string)                                       {}
func (NopWrapper) VerifyMessageAPI(string)                                          {}
func (NopWrapper) VerifyCompleted(bool, string)                                     {}
func (NopWrapper) VerifyAndAuthMessageAPI(string, string)                           {}
func (NopWrapper) VerifyAndAuthCompleted(bool, string)                              {}
func (NopWrapper) DisplayGroupList(int64, string)                                   {}
func (NopWrapper) DisplayGroupUpdated(int64, string)                                {}
func (NopWrapper) CurrentTime(int64)                                                {}
func (NopWrapper) CurrentTimeInMillis(int64)                                        {}
func (NopWrapper) Error(int64, int64, int64, string, string)                        {}
func (NopWrapper) ConnectionClosed()                                                {}

func (NopWrapper) TickOptionComputation(int64, models.TickType, int64, float64, float64, float64, float64, float64, float64, float64, float64) {
}

func (NopWrapper) TickEFP(int64, models.TickType, float64, string, float64, int64, string, float64, float64) {
}

func (NopWrapper) TickByTickAllLast(int64, int64, int64, float64, decimal.Decimal, models.TickAttribLast, string, string) {
}

func (NopWrapper) TickByTickBidAsk(int64, int64, float64, float64, decimal.Decimal, decimal.Decimal, models.TickAttribBidAsk) {
}

func (NopWrapper) UpdateMktDepth(int64, int64, int64, int64, float64, decimal.Decimal) {}

func (NopWrapper) UpdateMktDepthL2(int64, int64, string, int64, int64, float64, decimal.Decimal, bool) {
}

func (NopWrapper) OrderStatus(int64, string, decimal.Decimal, decimal.Decimal, float64, int64, int64, float64, int64, string, float64) {
}

func (NopWrapper) OpenOrder(int64, *models.Contract, *models.Order, *models.OrderState) {}

func (NopWrapper) CompletedOrder(*models.Contract, *models.Order, *models.OrderState) {}

func (NopWrapper) ExecDetails(int64, *models.Contract, *models.Execution) {}

func (NopWrapper) UpdatePortfolio(*models.Contract, decimal.Decimal, float64, float64, float64, float64, float64, string) {
}

func (NopWrapper) Position(string, *models.Contract, decimal.Decimal, float64) {}

func (NopWrapper) PositionMulti(int64, string, string, *models.Contract, decimal.Decimal, float64) {}

func (NopWrapper) PnLSingle(int64, decimal.Decimal, float64, float64, float64, float64) {}

func (NopWrapper) SecurityDefinitionOptionParameter(int64, string, int64, string, string, []string, []float64) {
}

func (NopWrapper) HistoricalSchedule(int64, string, string, string, []models.HistoricalSession) {}

func (NopWrapper) ScannerData(int64, int64, *models.ContractDetails, string, string, string, string) {
}
