package wire

// Server versions at which protocol features appeared. Field layouts are gated on
// the version negotiated during the handshake.
const (
	MinServerVerPTAOrders               = 39
	MinServerVerSShortXOld              = 51
	MinServerVerOptionalCapabilities    = 72
	MinServerVerPeggedToBenchmark       = 102
	MinServerVerModelsSupport           = 103
	MinServerVerSoftDollarTier          = 106
	MinServerVerReqFamilyCodes          = 107
	MinServerVerReqMatchingSymbols      = 108
	MinServerVerPastLimit               = 109
	MinServerVerMDSizeMultiplier        = 110
	MinServerVerCashQty                 = 111
	MinServerVerReqMktDepthExchanges    = 112
	MinServerVerTickNews                = 113
	MinServerVerReqSmartComponents      = 114
	MinServerVerReqHeadTimestamp        = 118
	MinServerVerServiceDataType         = 120
	MinServerVerAggGroup                = 121
	MinServerVerUnderlyingInfo          = 122
	MinServerVerSyntRealtimeBars        = 124
	MinServerVerMarketRules             = 126
	MinServerVerPnL                     = 127
	MinServerVerUnrealizedPnL           = 129
	MinServerVerHistoricalTicks         = 130
	MinServerVerMarketCapPrice          = 131
	MinServerVerPreOpenBidAsk           = 132
	MinServerVerRealExpirationDate      = 134
	MinServerVerRealizedPnL             = 135
	MinServerVerLastLiquidity           = 136
	MinServerVerTickByTick              = 137
	MinServerVerTickByTickIgnoreSize    = 140
	MinServerVerAutoPriceForHedge       = 141
	MinServerVerWhatIfExtFields         = 142
	MinServerVerOrderContainer          = 145
	MinServerVerSmartDepth              = 146
	MinServerVerDPegOrders              = 148
	MinServerVerMktDepthPrimExchange    = 149
	MinServerVerCompletedOrders         = 150
	MinServerVerPriceMgmtAlgo           = 151
	MinServerVerStockType               = 152
	MinServerVerEncodeMsgASCII7         = 153
	MinServerVerPriceBasedVolatility    = 156
	MinServerVerDuration                = 158
	MinServerVerPostToATS               = 160
	MinServerVerAutoCancelParent        = 162
	MinServerVerFractionalSizeSupport   = 163
	MinServerVerSizeRules               = 164
	MinServerVerAdvancedOrderReject     = 166
	MinServerVerUserInfo                = 167
	MinServerVerManualOrderTime         = 169
	MinServerVerPegBestPegMidOffsets    = 170
	MinServerVerBondIssuerID            = 176
	MinServerVerFAProfileDesupport      = 177
	MinServerVerPendingPriceRevision    = 178
	MinServerVerFundDataFields          = 179
	MinServerVerLastTradeDate           = 182
	MinServerVerCustomerAccount         = 183
	MinServerVerProfessionalCustomer    = 184
	MinServerVerBondAccruedInterest     = 185
	MinServerVerIneligibilityReasons    = 186
	MinServerVerRFQFields               = 187
	MinServerVerPermIDAsLong            = 188
	MinServerVerIncludeOvernight        = 189
	MinServerVerUndoRFQFields           = 189
	MinServerVerCMETaggingFields        = 190
	MinServerVerErrorTime               = 191
	MinServerVerFullOrderPreviewFields  = 192
	MinServerVerHistoricalDataEnd       = 196
	MinServerVerCurrentTimeInMillis     = 197
	MinServerVerSubmitter               = 198
	MinServerVerImbalanceOnly           = 199
	MinServerVerParametrizedDaysOfExecs = 200
	MinServerVerProtobuf                = 201
)

// Client version range offered in the handshake.
const (
	MinClientVer = 100
	MaxClientVer = MinServerVerProtobuf
)
