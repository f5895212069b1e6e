package decoder

import "ib-trader/internal/wire"

func wrap(name string) handleInfo { return handleInfo{wrapName: name} }

func proc(fn func(d *Decoder, r *wire.FieldReader) error) handleInfo {
	return handleInfo{proc: fn}
}

// legacyHandlers maps inbound message ids of the delimited-field format.
var legacyHandlers = map[int]handleInfo{
	wire.InTickPrice:               proc((*Decoder).processTickPrice),
	wire.InTickSize:                proc((*Decoder).processTickSize),
	wire.InOrderStatus:             proc((*Decoder).processOrderStatus),
	wire.InErrMsg:                  proc((*Decoder).processError),
	wire.InOpenOrder:               proc((*Decoder).processOpenOrder),
	wire.InAcctValue:               wrap("UpdateAccountValue"),
	wire.InPortfolioValue:          proc((*Decoder).processPortfolioValue),
	wire.InAcctUpdateTime:          wrap("UpdateAccountTime"),
	wire.InNextValidID:             wrap("NextValidID"),
	wire.InContractData:            proc((*Decoder).processContractData),
	wire.InExecutionData:           proc((*Decoder).processExecutionData),
	wire.InMarketDepth:             proc((*Decoder).processMarketDepth),
	wire.InMarketDepthL2:           proc((*Decoder).processMarketDepthL2),
	wire.InNewsBulletins:           wrap("UpdateNewsBulletin"),
	wire.InManagedAccts:            wrap("ManagedAccounts"),
	wire.InReceiveFA:               wrap("ReceiveFA"),
	wire.InHistoricalData:          proc((*Decoder).processHistoricalData),
	wire.InHistoricalDataUpdate:    proc((*Decoder).processHistoricalDataUpdate),
	wire.InHistoricalDataEnd:       proc((*Decoder).processHistoricalDataEnd),
	wire.InBondContractData:        proc((*Decoder).processBondContractData),
	wire.InScannerParameters:       wrap("ScannerParameters"),
	wire.InScannerData:             proc((*Decoder).processScannerData),
	wire.InTickOptionComputation:   proc((*Decoder).processTickOptionComputation),
	wire.InTickGeneric:             wrap("TickGeneric"),
	wire.InTickString:              wrap("TickString"),
	wire.InTickEFP:                 wrap("TickEFP"),
	wire.InCurrentTime:             wrap("CurrentTime"),
	wire.InCurrentTimeInMillis:     proc((*Decoder).processCurrentTimeInMillis),
	wire.InRealTimeBars:            proc((*Decoder).processRealTimeBar),
	wire.InFundamentalData:         wrap("FundamentalData"),
	wire.InContractDataEnd:         wrap("ContractDetailsEnd"),
	wire.InOpenOrderEnd:            wrap("OpenOrderEnd"),
	wire.InAcctDownloadEnd:         wrap("AccountDownloadEnd"),
	wire.InExecutionDataEnd:        wrap("ExecDetailsEnd"),
	wire.InDeltaNeutralValidation:  proc((*Decoder).processDeltaNeutralValidation),
	wire.InTickSnapshotEnd:         wrap("TickSnapshotEnd"),
	wire.InMarketDataType:          wrap("MarketDataType"),
	wire.InCommissionReport:        proc((*Decoder).processCommissionReport),
	wire.InPositionData:            proc((*Decoder).processPosition),
	wire.InPositionEnd:             wrap("PositionEnd"),
	wire.InAccountSummary:          wrap("AccountSummary"),
	wire.InAccountSummaryEnd:       wrap("AccountSummaryEnd"),
	wire.InVerifyMessageAPI:        wrap("VerifyMessageAPI"),
	wire.InVerifyCompleted:         wrap("VerifyCompleted"),
	wire.InDisplayGroupList:        wrap("DisplayGroupList"),
	wire.InDisplayGroupUpdated:     wrap("DisplayGroupUpdated"),
	wire.InVerifyAndAuthMessageAPI: wrap("VerifyAndAuthMessageAPI"),
	wire.InVerifyAndAuthCompleted:  wrap("VerifyAndAuthCompleted"),
	wire.InPositionMulti:           proc((*Decoder).processPositionMulti),
	wire.InPositionMultiEnd:        wrap("PositionMultiEnd"),
	wire.InAccountUpdateMulti:      wrap("AccountUpdateMulti"),
	wire.InAccountUpdateMultiEnd:   wrap("AccountUpdateMultiEnd"),

	wire.InSecurityDefinitionOptParam:    proc((*Decoder).processSecDefOptParam),
	wire.InSecurityDefinitionOptParamEnd: proc((*Decoder).processSecDefOptParamEnd),

	wire.InSoftDollarTiers:       proc((*Decoder).processSoftDollarTiers),
	wire.InFamilyCodes:           proc((*Decoder).processFamilyCodes),
	wire.InSymbolSamples:         proc((*Decoder).processSymbolSamples),
	wire.InMktDepthExchanges:     proc((*Decoder).processMktDepthExchanges),
	wire.InTickReqParams:         proc((*Decoder).processTickReqParams),
	wire.InSmartComponents:       proc((*Decoder).processSmartComponents),
	wire.InNewsArticle:           proc((*Decoder).processNewsArticle),
	wire.InTickNews:              proc((*Decoder).processTickNews),
	wire.InNewsProviders:         proc((*Decoder).processNewsProviders),
	wire.InHistoricalNews:        proc((*Decoder).processHistoricalNews),
	wire.InHistoricalNewsEnd:     proc((*Decoder).processHistoricalNewsEnd),
	wire.InHeadTimestamp:         proc((*Decoder).processHeadTimestamp),
	wire.InHistogramData:         proc((*Decoder).processHistogramData),
	wire.InRerouteMktDataReq:     proc((*Decoder).processRerouteMktDataReq),
	wire.InRerouteMktDepthReq:    proc((*Decoder).processRerouteMktDepthReq),
	wire.InMarketRule:            proc((*Decoder).processMarketRule),
	wire.InPnL:                   proc((*Decoder).processPnL),
	wire.InPnLSingle:             proc((*Decoder).processPnLSingle),
	wire.InHistoricalTicks:       proc((*Decoder).processHistoricalTicks),
	wire.InHistoricalTicksBidAsk: proc((*Decoder).processHistoricalTicksBidAsk),
	wire.InHistoricalTicksLast:   proc((*Decoder).processHistoricalTicksLast),
	wire.InTickByTick:            proc((*Decoder).processTickByTick),
	wire.InOrderBound:            proc((*Decoder).processOrderBound),
	wire.InCompletedOrder:        proc((*Decoder).processCompletedOrder),
	wire.InCompletedOrdersEnd:    proc((*Decoder).processCompletedOrdersEnd),
	wire.InReplaceFAEnd:          proc((*Decoder).processReplaceFAEnd),
	wire.InHistoricalSchedule:    proc((*Decoder).processHistoricalSchedule),
	wire.InUserInfo:              proc((*Decoder).processUserInfo),
}

// protobufHandlers maps inbound message ids (without the protobuf offset) to the
// protobuf message carrying them. BOND_CONTRACT_DATA reuses ContractData.
var protobufHandlers = newProtoHandlers(map[int]protoEntry{
	wire.InTickPrice:                     {"TickPrice", (*Decoder).tickPriceProto},
	wire.InTickSize:                      {"TickSize", (*Decoder).tickSizeProto},
	wire.InOrderStatus:                   {"OrderStatus", (*Decoder).orderStatusProto},
	wire.InErrMsg:                        {"ErrorMessage", (*Decoder).errorProto},
	wire.InOpenOrder:                     {"OpenOrder", (*Decoder).openOrderProto},
	wire.InAcctValue:                     {"AccountValue", (*Decoder).accountValueProto},
	wire.InPortfolioValue:                {"PortfolioValue", (*Decoder).portfolioValueProto},
	wire.InAcctUpdateTime:                {"AccountUpdateTime", (*Decoder).accountUpdateTimeProto},
	wire.InNextValidID:                   {"NextValidId", (*Decoder).nextValidIDProto},
	wire.InContractData:                  {"ContractData", (*Decoder).contractDataProto},
	wire.InExecutionData:                 {"ExecutionDetails", (*Decoder).executionDataProto},
	wire.InMarketDepth:                   {"MarketDepth", (*Decoder).marketDepthProto},
	wire.InMarketDepthL2:                 {"MarketDepthL2", (*Decoder).marketDepthL2Proto},
	wire.InNewsBulletins:                 {"NewsBulletin", (*Decoder).newsBulletinProto},
	wire.InManagedAccts:                  {"ManagedAccounts", (*Decoder).managedAccountsProto},
	wire.InReceiveFA:                     {"ReceiveFA", (*Decoder).receiveFAProto},
	wire.InHistoricalData:                {"HistoricalData", (*Decoder).historicalDataProto},
	wire.InHistoricalDataUpdate:          {"HistoricalDataUpdate", (*Decoder).historicalDataUpdateProto},
	wire.InHistoricalDataEnd:             {"HistoricalDataEnd", (*Decoder).historicalDataEndProto},
	wire.InBondContractData:              {"ContractData", (*Decoder).bondContractDataProto},
	wire.InScannerParameters:             {"ScannerParameters", (*Decoder).scannerParametersProto},
	wire.InScannerData:                   {"ScannerData", (*Decoder).scannerDataProto},
	wire.InTickOptionComputation:         {"TickOptionComputation", (*Decoder).tickOptionComputationProto},
	wire.InTickGeneric:                   {"TickGeneric", (*Decoder).tickGenericProto},
	wire.InTickString:                    {"TickString", (*Decoder).tickStringProto},
	wire.InCurrentTime:                   {"CurrentTime", (*Decoder).currentTimeProto},
	wire.InCurrentTimeInMillis:           {"CurrentTimeInMillis", (*Decoder).currentTimeInMillisProto},
	wire.InRealTimeBars:                  {"RealTimeBarTick", (*Decoder).realTimeBarProto},
	wire.InFundamentalData:               {"FundamentalsData", (*Decoder).fundamentalDataProto},
	wire.InContractDataEnd:               {"ContractDataEnd", (*Decoder).contractDataEndProto},
	wire.InOpenOrderEnd:                  {"OpenOrdersEnd", (*Decoder).openOrderEndProto},
	wire.InAcctDownloadEnd:               {"AccountDataEnd", (*Decoder).accountDataEndProto},
	wire.InExecutionDataEnd:              {"ExecutionDetailsEnd", (*Decoder).executionDataEndProto},
	wire.InTickSnapshotEnd:               {"TickSnapshotEnd", (*Decoder).tickSnapshotEndProto},
	wire.InMarketDataType:                {"MarketDataType", (*Decoder).marketDataTypeProto},
	wire.InCommissionReport:              {"CommissionAndFeesReport", (*Decoder).commissionReportProto},
	wire.InPositionData:                  {"Position", (*Decoder).positionProto},
	wire.InPositionEnd:                   {"PositionEnd", (*Decoder).positionEndProto},
	wire.InAccountSummary:                {"AccountSummary", (*Decoder).accountSummaryProto},
	wire.InAccountSummaryEnd:             {"AccountSummaryEnd", (*Decoder).accountSummaryEndProto},
	wire.InVerifyMessageAPI:              {"VerifyMessageApi", (*Decoder).verifyMessageAPIProto},
	wire.InVerifyCompleted:               {"VerifyCompleted", (*Decoder).verifyCompletedProto},
	wire.InDisplayGroupList:              {"DisplayGroupList", (*Decoder).displayGroupListProto},
	wire.InDisplayGroupUpdated:           {"DisplayGroupUpdated", (*Decoder).displayGroupUpdatedProto},
	wire.InPositionMulti:                 {"PositionMulti", (*Decoder).positionMultiProto},
	wire.InPositionMultiEnd:              {"PositionMultiEnd", (*Decoder).positionMultiEndProto},
	wire.InAccountUpdateMulti:            {"AccountUpdateMulti", (*Decoder).accountUpdateMultiProto},
	wire.InAccountUpdateMultiEnd:         {"AccountUpdateMultiEnd", (*Decoder).accountUpdateMultiEndProto},
	wire.InSecurityDefinitionOptParam:    {"SecDefOptParameter", (*Decoder).secDefOptParamProto},
	wire.InSecurityDefinitionOptParamEnd: {"SecDefOptParameterEnd", (*Decoder).secDefOptParamEndProto},
	wire.InSoftDollarTiers:               {"SoftDollarTiers", (*Decoder).softDollarTiersProto},
	wire.InFamilyCodes:                   {"FamilyCodes", (*Decoder).familyCodesProto},
	wire.InSymbolSamples:                 {"SymbolSamples", (*Decoder).symbolSamplesProto},
	wire.InMktDepthExchanges:             {"MarketDepthExchanges", (*Decoder).mktDepthExchangesProto},
	wire.InTickReqParams:                 {"TickReqParams", (*Decoder).tickReqParamsProto},
	wire.InSmartComponents:               {"SmartComponents", (*Decoder).smartComponentsProto},
	wire.InNewsArticle:                   {"NewsArticle", (*Decoder).newsArticleProto},
	wire.InTickNews:                      {"TickNews", (*Decoder).tickNewsProto},
	wire.InNewsProviders:                 {"NewsProviders", (*Decoder).newsProvidersProto},
	wire.InHistoricalNews:                {"HistoricalNews", (*Decoder).historicalNewsProto},
	wire.InHistoricalNewsEnd:             {"HistoricalNewsEnd", (*Decoder).historicalNewsEndProto},
	wire.InHeadTimestamp:                 {"HeadTimestamp", (*Decoder).headTimestampProto},
	wire.InHistogramData:                 {"HistogramData", (*Decoder).histogramDataProto},
	wire.InRerouteMktDataReq:             {"RerouteMarketDataRequest", (*Decoder).rerouteMktDataReqProto},
	wire.InRerouteMktDepthReq:            {"RerouteMarketDepthRequest", (*Decoder).rerouteMktDepthReqProto},
	wire.InMarketRule:                    {"MarketRule", (*Decoder).marketRuleProto},
	wire.InPnL:                           {"PnL", (*Decoder).pnlProto},
	wire.InPnLSingle:                     {"PnLSingle", (*Decoder).pnlSingleProto},
	wire.InHistoricalTicks:               {"HistoricalTicks", (*Decoder).historicalTicksProto},
	wire.InHistoricalTicksBidAsk:         {"HistoricalTicksBidAsk", (*Decoder).historicalTicksBidAskProto},
	wire.InHistoricalTicksLast:           {"HistoricalTicksLast", (*Decoder).historicalTicksLastProto},
	wire.InTickByTick:                    {"TickByTickData", (*Decoder).tickByTickProto},
	wire.InOrderBound:                    {"OrderBound", (*Decoder).orderBoundProto},
	wire.InCompletedOrder:                {"CompletedOrder", (*Decoder).completedOrderProto},
	wire.InCompletedOrdersEnd:            {"CompletedOrdersEnd", (*Decoder).completedOrdersEndProto},
	wire.InReplaceFAEnd:                  {"ReplaceFAEnd", (*Decoder).replaceFAEndProto},
	wire.InHistoricalSchedule:            {"HistoricalSchedule", (*Decoder).historicalScheduleProto},
	wire.InUserInfo:                      {"UserInfo", (*Decoder).userInfoProto},
})
