package wire

// ProtobufMsgID is added to a message id when its payload is protobuf encoded.
const ProtobufMsgID = 200

// Incoming message ids.
const (
	InTickPrice                     = 1
	InTickSize                      = 2
	InOrderStatus                   = 3
	InErrMsg                        = 4
	InOpenOrder                     = 5
	InAcctValue                     = 6
	InPortfolioValue                = 7
	InAcctUpdateTime                = 8
	InNextValidID                   = 9
	InContractData                  = 10
	InExecutionData                 = 11
	InMarketDepth                   = 12
	InMarketDepthL2                 = 13
	InNewsBulletins                 = 14
	InManagedAccts                  = 15
	InReceiveFA                     = 16
	InHistoricalData                = 17
	InBondContractData              = 18
	InScannerParameters             = 19
	InScannerData                   = 20
	InTickOptionComputation         = 21
	InTickGeneric                   = 45
	InTickString                    = 46
	InTickEFP                       = 47
	InCurrentTime                   = 49
	InRealTimeBars                  = 50
	InFundamentalData               = 51
	InContractDataEnd               = 52
	InOpenOrderEnd                  = 53
	InAcctDownloadEnd               = 54
	InExecutionDataEnd              = 55
	InDeltaNeutralValidation        = 56
	InTickSnapshotEnd               = 57
	InMarketDataType                = 58
	InCommissionReport              = 59
	InPositionData                  = 61
	InPositionEnd                   = 62
	InAccountSummary                = 63
	InAccountSummaryEnd             = 64
	InVerifyMessageAPI              = 65
	InVerifyCompleted               = 66
	InDisplayGroupList              = 67
	InDisplayGroupUpdated           = 68
	InVerifyAndAuthMessageAPI       = 69
	InVerifyAndAuthCompleted        = 70
	InPositionMulti                 = 71
	InPositionMultiEnd              = 72
	InAccountUpdateMulti            = 73
	InAccountUpdateMultiEnd         = 74
	InSecurityDefinitionOptParam    = 75
	InSecurityDefinitionOptParamEnd = 76
	InSoftDollarTiers               = 77
	InFamilyCodes                   = 78
	InSymbolSamples                 = 79
	InMktDepthExchanges             = 80
	InTickReqParams                 = 81
	InSmartComponents               = 82
	InNewsArticle                   = 83
	InTickNews                      = 84
	InNewsProviders                 = 85
	InHistoricalNews                = 86
	InHistoricalNewsEnd             = 87
	InHeadTimestamp                 = 88
	InHistogramData                 = 89
	InHistoricalDataUpdate          = 90
	InRerouteMktDataReq             = 91
	InRerouteMktDepthReq            = 92
	InMarketRule                    = 93
	InPnL                           = 94
	InPnLSingle                     = 95
	InHistoricalTicks               = 96
	InHistoricalTicksBidAsk         = 97
	InHistoricalTicksLast           = 98
	InTickByTick                    = 99
	InOrderBound                    = 100
	InCompletedOrder                = 101
	InCompletedOrdersEnd            = 102
	InReplaceFAEnd                  = 103
	InHistoricalSchedule            = 106
	InUserInfo                      = 107
	InHistoricalDataEnd             = 108
	InCurrentTimeInMillis           = 109
)

// Outgoing message ids.
const (
	OutReqMktData             = 1
	OutCancelMktData          = 2
	OutPlaceOrder             = 3
	OutCancelOrder            = 4
	OutReqOpenOrders          = 5
	OutReqAcctData            = 6
	OutReqExecutions          = 7
	OutReqIDs                 = 8
	OutReqContractData        = 9
	OutReqMktDepth            = 10
	OutCancelMktDepth         = 11
	OutReqAllOpenOrders       = 16
	OutReqManagedAccts        = 17
	OutReqHistoricalData      = 20
	OutCancelHistoricalData   = 25
	OutReqCurrentTime         = 49
	OutReqRealTimeBars        = 50
	OutCancelRealTimeBars     = 51
	OutReqGlobalCancel        = 58
	OutReqMarketDataType      = 59
	OutReqPositions           = 61
	OutReqAccountSummary      = 62
	OutCancelAccountSummary   = 63
	OutCancelPositions        = 64
	OutStartAPI               = 71
	OutReqFamilyCodes         = 80
	OutReqMatchingSymbols     = 81
	OutReqHeadTimestamp       = 87
	OutReqMarketRule          = 91
	OutReqPnL                 = 92
	OutCancelPnL              = 93
	OutReqTickByTickData      = 97
	OutCancelTickByTickData   = 98
	OutReqCompletedOrders     = 99
	OutReqUserInfo            = 104
	OutReqCurrentTimeInMillis = 105
)
