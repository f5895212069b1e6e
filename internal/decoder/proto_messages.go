package decoder

import (
	"fmt"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

func (d *Decoder) tickPriceProto(m protoMsg) error {
	reqID := m.reqID()
	tickType := models.TickType(m.intOr("tickType", models.UnsetInt))
	mask := m.int("attrMask")
	attrib := models.TickAttrib{
		CanAutoExecute: mask&1 != 0,
		PastLimit:      mask&2 != 0,
		PreOpen:        mask&4 != 0,
	}
	d.wrapper.TickPrice(reqID, tickType, m.float("price"), attrib)

	if sizeTick := models.SizeTickFor(tickType); sizeTick != models.TickNotSet {
		d.wrapper.TickSize(reqID, sizeTick, m.decimal("size"))
	}
	return nil
}

func (d *Decoder) tickSizeProto(m protoMsg) error {
	d.wrapper.TickSize(m.reqID(), models.TickType(m.intOr("tickType", models.UnsetInt)), m.decimal("size"))
	return nil
}

func (d *Decoder) tickOptionComputationProto(m protoMsg) error {
	greek := func(name string, unset float64) float64 {
		v := m.floatOr(name, models.UnsetFloat)
		if v == unset {
			return models.UnsetFloat
		}
		return v
	}
	impliedVol := m.floatOr("impliedVol", models.UnsetFloat)
	if impliedVol < 0 {
		impliedVol = models.UnsetFloat
	}
	d.wrapper.TickOptionComputation(
		m.reqID(),
		models.TickType(m.intOr("tickType", models.UnsetInt)),
		m.int("tickAttrib"),
		impliedVol,
		greek("delta", -2),
		greek("optPrice", -1),
		greek("pvDividend", -1),
		greek("gamma", -2),
		greek("vega", -2),
		greek("theta", -2),
		greek("undPrice", -1),
	)
	return nil
}

func (d *Decoder) tickGenericProto(m protoMsg) error {
	d.wrapper.TickGeneric(m.reqID(), models.TickType(m.intOr("tickType", models.UnsetInt)), m.float("value"))
	return nil
}

func (d *Decoder) tickStringProto(m protoMsg) error {
	d.wrapper.TickString(m.reqID(), models.TickType(m.intOr("tickType", models.UnsetInt)), m.str("value"))
	return nil
}

func (d *Decoder) tickSnapshotEndProto(m protoMsg) error {
	d.wrapper.TickSnapshotEnd(m.reqID())
	return nil
}

func (d *Decoder) marketDataTypeProto(m protoMsg) error {
	d.wrapper.MarketDataType(m.reqID(), m.int("marketDataType"))
	return nil
}

func (d *Decoder) tickReqParamsProto(m protoMsg) error {
	d.wrapper.TickReqParams(m.reqID(), m.float("minTick"), m.str("bboExchange"), m.int("snapshotPermissions"))
	return nil
}

func (d *Decoder) tickByTickProto(m protoMsg) error {
	reqID := m.reqID()
	tickType := m.int("tickType")
	switch tickType {
	case tickByTickLast, tickByTickAllLast:
		t := historicalTickLastFromProto(m.msg("historicalTickLast"))
		d.wrapper.TickByTickAllLast(reqID, tickType, t.Time, t.Price, t.Size, t.TickAttribLast, t.Exchange, t.SpecialConditions)
	case tickByTickBidAsk:
		t := historicalTickBidAskFromProto(m.msg("historicalTickBidAsk"))
		d.wrapper.TickByTickBidAsk(reqID, t.Time, t.PriceBid, t.PriceAsk, t.SizeBid, t.SizeAsk, t.TickAttribBidAsk)
	case tickByTickMidPoint:
		t := historicalTickFromProto(m.msg("historicalTickMidPoint"))
		d.wrapper.TickByTickMidPoint(reqID, t.Time, t.Price)
	}
	return nil
}

func (d *Decoder) marketDepthProto(m protoMsg) error {
	md := m.msg("marketDepthData")
	d.wrapper.UpdateMktDepth(m.reqID(), md.int("position"), md.int("operation"), md.int("side"), md.float("price"), md.decimal("size"))
	return nil
}

func (d *Decoder) marketDepthL2Proto(m protoMsg) error {
	md := m.msg("marketDepthData")
	d.wrapper.UpdateMktDepthL2(m.reqID(), md.int("position"), md.str("marketMaker"), md.int("operation"), md.int("side"),
		md.float("price"), md.decimal("size"), md.bool("isSmartDepth"))
	return nil
}

func (d *Decoder) mktDepthExchangesProto(m protoMsg) error {
	var descs []models.DepthMktDataDescription
	for _, e := range m.list("depthMarketDataDescriptions") {
		descs = append(descs, models.DepthMktDataDescription{
			Exchange:        e.str("exchange"),
			SecType:         e.str("secType"),
			ListingExch:     e.str("listingExch"),
			ServiceDataType: e.str("serviceDataType"),
			AggGroup:        e.intOr("aggGroup", models.UnsetInt),
		})
	}
	d.wrapper.MktDepthExchanges(descs)
	return nil
}

func (d *Decoder) rerouteMktDataReqProto(m protoMsg) error {
	d.wrapper.RerouteMktDataReq(m.reqID(), m.int("conId"), m.str("exchange"))
	return nil
}

func (d *Decoder) rerouteMktDepthReqProto(m protoMsg) error {
	d.wrapper.RerouteMktDepthReq(m.reqID(), m.int("conId"), m.str("exchange"))
	return nil
}

func (d *Decoder) realTimeBarProto(m protoMsg) error {
	d.wrapper.RealtimeBar(m.reqID(), models.RealTimeBar{
		Time:   m.int("time"),
		Open:   m.float("open"),
		High:   m.float("high"),
		Low:    m.float("low"),
		Close:  m.float("close"),
		Volume: m.decimal("volume"),
		WAP:    m.decimal("WAP"),
		Count:  m.int("count"),
	})
	return nil
}

func (d *Decoder) smartComponentsProto(m protoMsg) error {
	var comps []models.SmartComponent
	for _, c := range m.list("smartComponents") {
		comps = append(comps, models.SmartComponent{
			BitNumber:      c.int("bitNumber"),
			Exchange:       c.str("exchange"),
			ExchangeLetter: c.str("exchangeLetter"),
		})
	}
	d.wrapper.SmartComponents(m.reqID(), comps)
	return nil
}

func (d *Decoder) nextValidIDProto(m protoMsg) error {
	d.wrapper.NextValidID(m.int("orderId"))
	return nil
}

func (d *Decoder) orderStatusProto(m protoMsg) error {
	d.wrapper.OrderStatus(
		m.int("orderId"),
		m.str("status"),
		m.decimal("filled"),
		m.decimal("remaining"),
		m.float("avgFillPrice"),
		m.int("permId"),
		m.int("parentId"),
		m.float("lastFillPrice"),
		m.int("clientId"),
		m.str("whyHeld"),
		m.float("mktCapPrice"),
	)
	return nil
}

func (d *Decoder) openOrderProto(m protoMsg) error {
	contract := m.msg("contract")
	order, err := orderFromProto(m.msg("order"), contract)
	if err != nil {
		return err
	}
	orderID := m.intOr("orderId", order.OrderID)
	d.wrapper.OpenOrder(orderID, contractFromProto(contract), order, orderStateFromProto(m.msg("orderState")))
	return nil
}

func (d *Decoder) openOrderEndProto(protoMsg) error {
	d.wrapper.OpenOrderEnd()
	return nil
}

func (d *Decoder) completedOrderProto(m protoMsg) error {
	contract := m.msg("contract")
	order, err := orderFromProto(m.msg("order"), contract)
	if err != nil {
		return err
	}
	d.wrapper.CompletedOrder(contractFromProto(contract), order, orderStateFromProto(m.msg("orderState")))
	return nil
}

func (d *Decoder) completedOrdersEndProto(protoMsg) error {
	d.wrapper.CompletedOrdersEnd()
	return nil
}

func (d *Decoder) orderBoundProto(m protoMsg) error {
	d.wrapper.OrderBound(m.int("permId"), m.int("clientId"), m.int("orderId"))
	return nil
}

func (d *Decoder) executionDataProto(m protoMsg) error {
	d.wrapper.ExecDetails(m.reqID(), contractFromProto(m.msg("contract")), executionFromProto(m.msg("execution")))
	return nil
}

func (d *Decoder) executionDataEndProto(m protoMsg) error {
	d.wrapper.ExecDetailsEnd(m.reqID())
	return nil
}

func (d *Decoder) commissionReportProto(m protoMsg) error {
	d.wrapper.CommissionAndFeesReport(models.CommissionAndFeesReport{
		ExecID:              m.str("execId"),
		CommissionAndFees:   m.float("commissionAndFees"),
		Currency:            m.str("currency"),
		RealizedPNL:         m.floatOr("realizedPNL", models.UnsetFloat),
		Yield:               m.floatOr("bondYield", models.UnsetFloat),
		YieldRedemptionDate: m.int("yieldRedemptionDate"),
	})
	return nil
}

func (d *Decoder) managedAccountsProto(m protoMsg) error {
	d.wrapper.ManagedAccounts(m.str("accountsList"))
	return nil
}

func (d *Decoder) accountValueProto(m protoMsg) error {
	d.wrapper.UpdateAccountValue(m.str("key"), m.str("value"), m.str("currency"), m.str("accountName"))
	return nil
}

func (d *Decoder) portfolioValueProto(m protoMsg) error {
	d.wrapper.UpdatePortfolio(
		contractFromProto(m.msg("contract")),
		m.decimal("position"),
		m.float("marketPrice"),
		m.float("marketValue"),
		m.float("averageCost"),
		m.float("unrealizedPNL"),
		m.float("realizedPNL"),
		m.str("accountName"),
	)
	return nil
}

func (d *Decoder) accountUpdateTimeProto(m protoMsg) error {
	d.wrapper.UpdateAccountTime(m.str("timeStamp"))
	return nil
}

func (d *Decoder) accountDataEndProto(m protoMsg) error {
	d.wrapper.AccountDownloadEnd(m.str("accountName"))
	return nil
}

func (d *Decoder) positionProto(m protoMsg) error {
	d.wrapper.Position(m.str("account"), contractFromProto(m.msg("contract")), m.decimal("position"), m.float("avgCost"))
	return nil
}

func (d *Decoder) positionEndProto(protoMsg) error {
	d.wrapper.PositionEnd()
	return nil
}

func (d *Decoder) accountSummaryProto(m protoMsg) error {
	d.wrapper.AccountSummary(m.reqID(), m.str("account"), m.str("tag"), m.str("value"), m.str("currency"))
	return nil
}

func (d *Decoder) accountSummaryEndProto(m protoMsg) error {
	d.wrapper.AccountSummaryEnd(m.reqID())
	return nil
}

func (d *Decoder) positionMultiProto(m protoMsg) error {
	d.wrapper.PositionMulti(m.reqID(), m.str("account"), m.str("modelCode"), contractFromProto(m.msg("contract")),
		m.decimal("position"), m.float("avgCost"))
	return nil
}

func (d *Decoder) positionMultiEndProto(m protoMsg) error {
	d.wrapper.PositionMultiEnd(m.reqID())
	return nil
}

func (d *Decoder) accountUpdateMultiProto(m protoMsg) error {
	d.wrapper.AccountUpdateMulti(m.reqID(), m.str("account"), m.str("modelCode"), m.str("key"), m.str("value"), m.str("currency"))
	return nil
}

func (d *Decoder) accountUpdateMultiEndProto(m protoMsg) error {
	d.wrapper.AccountUpdateMultiEnd(m.reqID())
	return nil
}

func (d *Decoder) pnlProto(m protoMsg) error {
	d.wrapper.PnL(m.reqID(),
		m.floatOr("dailyPnL", models.UnsetFloat),
		m.floatOr("unrealizedPnL", models.UnsetFloat),
		m.floatOr("realizedPnL", models.UnsetFloat))
	return nil
}

func (d *Decoder) pnlSingleProto(m protoMsg) error {
	d.wrapper.PnLSingle(m.reqID(),
		m.decimal("position"),
		m.floatOr("dailyPnL", models.UnsetFloat),
		m.floatOr("unrealizedPnL", models.UnsetFloat),
		m.floatOr("realizedPnL", models.UnsetFloat),
		m.floatOr("value", models.UnsetFloat))
	return nil
}

func (d *Decoder) familyCodesProto(m protoMsg) error {
	var codes []models.FamilyCode
	for _, c := range m.list("familyCodes") {
		codes = append(codes, models.FamilyCode{AccountID: c.str("accountId"), FamilyCode: c.str("familyCode")})
	}
	d.wrapper.FamilyCodes(codes)
	return nil
}

func (d *Decoder) userInfoProto(m protoMsg) error {
	d.wrapper.UserInfo(m.reqID(), m.str("whiteBrandingId"))
	return nil
}

func (d *Decoder) contractDataProto(m protoMsg) error {
	d.wrapper.ContractDetails(m.reqID(), contractDetailsFromProto(m.msg("contract"), m.msg("contractDetails"), false))
	return nil
}

func (d *Decoder) bondContractDataProto(m protoMsg) error {
	d.wrapper.BondContractDetails(m.reqID(), contractDetailsFromProto(m.msg("contract"), m.msg("contractDetails"), true))
	return nil
}

func (d *Decoder) contractDataEndProto(m protoMsg) error {
	d.wrapper.ContractDetailsEnd(m.reqID())
	return nil
}

func (d *Decoder) symbolSamplesProto(m protoMsg) error {
	var descs []models.ContractDescription
	for _, cd := range m.list("contractDescriptions") {
		descs = append(descs, models.ContractDescription{
			Contract:           *contractFromProto(cd.msg("contract")),
			DerivativeSecTypes: cd.strs("derivativeSecTypes"),
		})
	}
	d.wrapper.SymbolSamples(m.reqID(), descs)
	return nil
}

func (d *Decoder) secDefOptParamProto(m protoMsg) error {
	d.wrapper.SecurityDefinitionOptionParameter(m.reqID(), m.str("exchange"), m.int("underlyingConId"),
		m.str("tradingClass"), m.str("multiplier"), m.strs("expirations"), m.floats("strikes"))
	return nil
}

func (d *Decoder) secDefOptParamEndProto(m protoMsg) error {
	d.wrapper.SecurityDefinitionOptionParameterEnd(m.reqID())
	return nil
}

func (d *Decoder) marketRuleProto(m protoMsg) error {
	var increments []models.PriceIncrement
	for _, pi := range m.list("priceIncrements") {
		increments = append(increments, models.PriceIncrement{LowEdge: pi.float("lowEdge"), Increment: pi.float("increment")})
	}
	d.wrapper.MarketRule(m.int("marketRuleId"), increments)
	return nil
}

func (d *Decoder) softDollarTiersProto(m protoMsg) error {
	var tiers []models.SoftDollarTier
	for _, t := range m.list("softDollarTiers") {
		tiers = append(tiers, softDollarTierFromProto(t))
	}
	d.wrapper.SoftDollarTiers(m.reqID(), tiers)
	return nil
}

func (d *Decoder) historicalDataProto(m protoMsg) error {
	reqID := m.reqID()
	for _, bar := range m.list("historicalDataBars") {
		d.wrapper.HistoricalData(reqID, barFromProto(bar))
	}
	return nil
}

func (d *Decoder) historicalDataUpdateProto(m protoMsg) error {
	d.wrapper.HistoricalDataUpdate(m.reqID(), barFromProto(m.msg("historicalDataBar")))
	return nil
}

func (d *Decoder) historicalDataEndProto(m protoMsg) error {
	d.wrapper.HistoricalDataEnd(m.reqID(), m.str("startDateStr"), m.str("endDateStr"))
	return nil
}

func (d *Decoder) headTimestampProto(m protoMsg) error {
	d.wrapper.HeadTimestamp(m.reqID(), m.str("headTimestamp"))
	return nil
}

func (d *Decoder) histogramDataProto(m protoMsg) error {
	var items []models.HistogramEntry
	for _, e := range m.list("histogramDataEntries") {
		items = append(items, models.HistogramEntry{Price: e.float("price"), Size: e.decimal("size")})
	}
	d.wrapper.HistogramData(m.reqID(), items)
	return nil
}

func (d *Decoder) historicalTicksProto(m protoMsg) error {
	var ticks []models.HistoricalTick
	for _, t := range m.list("historicalTicks") {
		ticks = append(ticks, historicalTickFromProto(t))
	}
	d.wrapper.HistoricalTicks(m.reqID(), ticks, m.bool("isDone"))
	return nil
}

func (d *Decoder) historicalTicksBidAskProto(m protoMsg) error {
	var ticks []models.HistoricalTickBidAsk
	for _, t := range m.list("historicalTicksBidAsk") {
		ticks = append(ticks, historicalTickBidAskFromProto(t))
	}
	d.wrapper.HistoricalTicksBidAsk(m.reqID(), ticks, m.bool("isDone"))
	return nil
}

func (d *Decoder) historicalTicksLastProto(m protoMsg) error {
	var ticks []models.HistoricalTickLast
	for _, t := range m.list("historicalTicksLast") {
		ticks = append(ticks, historicalTickLastFromProto(t))
	}
	d.wrapper.HistoricalTicksLast(m.reqID(), ticks, m.bool("isDone"))
	return nil
}

func (d *Decoder) historicalScheduleProto(m protoMsg) error {
	var sessions []models.HistoricalSession
	for _, s := range m.list("historicalSessions") {
		sessions = append(sessions, models.HistoricalSession{
			StartDateTime: s.str("startDateTime"),
			EndDateTime:   s.str("endDateTime"),
			RefDate:       s.str("refDate"),
		})
	}
	d.wrapper.HistoricalSchedule(m.reqID(), m.str("startDateTime"), m.str("endDateTime"), m.str("timeZone"), sessions)
	return nil
}

func (d *Decoder) scannerParametersProto(m protoMsg) error {
	d.wrapper.ScannerParameters(m.str("xml"))
	return nil
}

func (d *Decoder) scannerDataProto(m protoMsg) error {
	reqID := m.reqID()
	for _, e := range m.list("scannerDataElement") {
		var cd models.ContractDetails
		cd.Contract = *contractFromProto(e.msg("contract"))
		cd.MarketName = e.str("marketName")
		d.wrapper.ScannerData(reqID, e.int("rank"), &cd, e.str("distance"), e.str("benchmark"), e.str("projection"), e.str("comboKey"))
	}
	d.wrapper.ScannerDataEnd(reqID)
	return nil
}

func (d *Decoder) newsBulletinProto(m protoMsg) error {
	d.wrapper.UpdateNewsBulletin(m.int("newsMsgId"), m.int("newsMsgType"), m.str("newsMessage"), m.str("originatingExch"))
	return nil
}

func (d *Decoder) tickNewsProto(m protoMsg) error {
	d.wrapper.TickNews(m.reqID(), m.int("timestamp"), m.str("providerCode"), m.str("articleId"), m.str("headline"), m.str("extraData"))
	return nil
}

func (d *Decoder) newsProvidersProto(m protoMsg) error {
	var providers []models.NewsProvider
	for _, p := range m.list("newsProviders") {
		providers = append(providers, models.NewsProvider{Code: p.str("providerCode"), Name: p.str("providerName")})
	}
	d.wrapper.NewsProviders(providers)
	return nil
}

func (d *Decoder) newsArticleProto(m protoMsg) error {
	d.wrapper.NewsArticle(m.reqID(), m.int("articleType"), m.str("articleText"))
	return nil
}

func (d *Decoder) historicalNewsProto(m protoMsg) error {
	d.wrapper.HistoricalNews(m.reqID(), m.str("time"), m.str("providerCode"), m.str("articleId"), m.str("headline"))
	return nil
}

func (d *Decoder) historicalNewsEndProto(m protoMsg) error {
	d.wrapper.HistoricalNewsEnd(m.reqID(), m.bool("hasMore"))
	return nil
}

func (d *Decoder) fundamentalDataProto(m protoMsg) error {
	d.wrapper.FundamentalData(m.reqID(), m.str("data"))
	return nil
}

func (d *Decoder) receiveFAProto(m protoMsg) error {
	d.wrapper.ReceiveFA(m.int("faDataType"), m.str("xml"))
	return nil
}

func (d *Decoder) replaceFAEndProto(m protoMsg) error {
	d.wrapper.ReplaceFAEnd(m.reqID(), m.str("text"))
	return nil
}

func (d *Decoder) verifyMessageAPIProto(m protoMsg) error {
	d.wrapper.VerifyMessageAPI(m.str("apiData"))
	return nil
}

func (d *Decoder) verifyCompletedProto(m protoMsg) error {
	d.wrapper.VerifyCompleted(m.bool("isSuccessful"), m.str("errorText"))
	return nil
}

func (d *Decoder) displayGroupListProto(m protoMsg) error {
	d.wrapper.DisplayGroupList(m.reqID(), m.str("groups"))
	return nil
}

func (d *Decoder) displayGroupUpdatedProto(m protoMsg) error {
	d.wrapper.DisplayGroupUpdated(m.reqID(), m.str("contractInfo"))
	return nil
}

func (d *Decoder) currentTimeProto(m protoMsg) error {
	d.wrapper.CurrentTime(m.int("currentTime"))
	return nil
}

func (d *Decoder) currentTimeInMillisProto(m protoMsg) error {
	d.wrapper.CurrentTimeInMillis(m.int("currentTimeInMillis"))
	return nil
}

func (d *Decoder) errorProto(m protoMsg) error {
	d.wrapper.Error(m.intOr("id", -1), m.int("errorTime"), m.int("errorCode"), m.str("errorMsg"), m.str("advancedOrderRejectJson"))
	return nil
}

func barFromProto(m protoMsg) models.BarData {
	return models.BarData{
		Date:     m.str("date"),
		Open:     m.float("open"),
		High:     m.float("high"),
		Low:      m.float("low"),
		Close:    m.float("close"),
		Volume:   m.decimal("volume"),
		WAP:      m.decimal("WAP"),
		BarCount: m.int("barCount"),
	}
}

func historicalTickFromProto(m protoMsg) models.HistoricalTick {
	return models.HistoricalTick{Time: m.int("time"), Price: m.float("price"), Size: m.decimal("size")}
}

func historicalTickBidAskFromProto(m protoMsg) models.HistoricalTickBidAsk {
	attrib := m.msg("tickAttribBidAsk")
	return models.HistoricalTickBidAsk{
		Time: m.int("time"),
		TickAttribBidAsk: models.TickAttribBidAsk{
			BidPastLow:  attrib.bool("bidPastLow"),
			AskPastHigh: attrib.bool("askPastHigh"),
		},
		PriceBid: m.float("priceBid"),
		PriceAsk: m.float("priceAsk"),
		SizeBid:  m.decimal("sizeBid"),
		SizeAsk:  m.decimal("sizeAsk"),
	}
}

func historicalTickLastFromProto(m protoMsg) models.HistoricalTickLast {
	attrib := m.msg("tickAttribLast")
	return models.HistoricalTickLast{
		Time: m.int("time"),
		TickAttribLast: models.TickAttribLast{
			PastLimit:  attrib.bool("pastLimit"),
			Unreported: attrib.bool("unreported"),
		},
		Price:             m.float("price"),
		Size:              m.decimal("size"),
		Exchange:          m.str("exchange"),
		SpecialConditions: m.str("specialConditions"),
	}
}

func softDollarTierFromProto(m protoMsg) models.SoftDollarTier {
	return models.SoftDollarTier{Name: m.str("name"), Value: m.str("value"), DisplayName: m.str("displayName")}
}

func contractFromProto(m protoMsg) *models.Contract {
	c := &models.Contract{
		ConID:                        m.int("conId"),
		Symbol:                       m.str("symbol"),
		SecType:                      m.str("secType"),
		LastTradeDateOrContractMonth: m.str("lastTradeDateOrContractMonth"),
		LastTradeDate:                m.str("lastTradeDate"),
		Strike:                       m.float("strike"),
		Right:                        m.str("right"),
		Multiplier:                   m.str("multiplier"),
		Exchange:                     m.str("exchange"),
		PrimaryExchange:              m.str("primaryExch"),
		Currency:                     m.str("currency"),
		LocalSymbol:                  m.str("localSymbol"),
		TradingClass:                 m.str("tradingClass"),
		IncludeExpired:               m.bool("includeExpired"),
		SecIDType:                    m.str("secIdType"),
		SecID:                        m.str("secId"),
		Description:                  m.str("description"),
		IssuerID:                     m.str("issuerId"),
		ComboLegsDescrip:             m.str("comboLegsDescrip"),
	}
	for _, leg := range m.list("comboLegs") {
		c.ComboLegs = append(c.ComboLegs, models.ComboLeg{
			ConID:              leg.int("conId"),
			Ratio:              leg.int("ratio"),
			Action:             leg.str("action"),
			Exchange:           leg.str("exchange"),
			OpenClose:          leg.int("openClose"),
			ShortSaleSlot:      leg.int("shortSalesSlot"),
			DesignatedLocation: leg.str("designatedLocation"),
			ExemptCode:         leg.intOr("exemptCode", -1),
		})
	}
	if dn := m.msg("deltaNeutralContract"); dn.present() {
		c.DeltaNeutralContract = &models.DeltaNeutralContract{
			ConID: dn.int("conId"),
			Delta: dn.float("delta"),
			Price: dn.float("price"),
		}
	}
	return c
}

func contractDetailsFromProto(c, m protoMsg, isBond bool) *models.ContractDetails {
	cd := models.NewContractDetails()
	cd.Contract = *contractFromProto(c)
	cd.Contract.LastTradeDateOrContractMonth = ""
	setLastTradeDate(c.str("lastTradeDateOrContractMonth"), cd, isBond)

	m.setStr(&cd.MarketName, "marketName")
	m.setFloat(&cd.MinTick, "minTick")
	m.setStr(&cd.OrderTypes, "orderTypes")
	m.setStr(&cd.ValidExchanges, "validExchanges")
	m.setInt(&cd.PriceMagnifier, "priceMagnifier")
	m.setInt(&cd.UnderConID, "underConId")
	m.setStr(&cd.LongName, "longName")
	m.setStr(&cd.ContractMonth, "contractMonth")
	m.setStr(&cd.Industry, "industry")
	m.setStr(&cd.Category, "category")
	m.setStr(&cd.Subcategory, "subcategory")
	m.setStr(&cd.TimeZoneID, "timeZoneId")
	m.setStr(&cd.TradingHours, "tradingHours")
	m.setStr(&cd.LiquidHours, "liquidHours")
	m.setStr(&cd.EvRule, "evRule")
	m.setFloat(&cd.EvMultiplier, "evMultiplier")
	cd.SecIDList = m.tagValues("secIdList")
	m.setInt(&cd.AggGroup, "aggGroup")
	m.setStr(&cd.UnderSymbol, "underSymbol")
	m.setStr(&cd.UnderSecType, "underSecType")
	m.setStr(&cd.MarketRuleIDs, "marketRuleIds")
	m.setStr(&cd.RealExpirationDate, "realExpirationDate")
	m.setStr(&cd.LastTradeTime, "lastTradeTime")
	m.setStr(&cd.StockType, "stockType")
	m.setDecimal(&cd.MinSize, "minSize")
	m.setDecimal(&cd.SizeIncrement, "sizeIncrement")
	m.setDecimal(&cd.SuggestedSizeIncrement, "suggestedSizeIncrement")

	m.setStr(&cd.Cusip, "cusip")
	m.setStr(&cd.Ratings, "ratings")
	m.setStr(&cd.DescAppend, "descAppend")
	m.setStr(&cd.BondType, "bondType")
	m.setStr(&cd.CouponType, "couponType")
	m.setBool(&cd.Callable, "callable")
	m.setBool(&cd.Putable, "putable")
	m.setFloat(&cd.Coupon, "coupon")
	m.setBool(&cd.Convertible, "convertible")
	m.setStr(&cd.Maturity, "maturity")
	m.setStr(&cd.IssueDate, "issueDate")
	m.setStr(&cd.NextOptionDate, "nextOptionDate")
	m.setStr(&cd.NextOptionType, "nextOptionType")
	m.setBool(&cd.NextOptionPartial, "nextOptionPartial")
	m.setStr(&cd.Notes, "bondNotes")

	m.setStr(&cd.FundName, "fundName")
	m.setStr(&cd.FundFamily, "fundFamily")
	m.setStr(&cd.FundType, "fundType")
	m.setStr(&cd.FundFrontLoad, "fundFrontLoad")
	m.setStr(&cd.FundBackLoad, "fundBackLoad")
	m.setStr(&cd.FundBackLoadTimeInterval, "fundBackLoadTimeInterval")
	m.setStr(&cd.FundManagementFee, "fundManagementFee")
	m.setBool(&cd.FundClosed, "fundClosed")
	m.setBool(&cd.FundClosedForNewInvestors, "fundClosedForNewInvestors")
	m.setBool(&cd.FundClosedForNewMoney, "fundClosedForNewMoney")
	m.setStr(&cd.FundNotifyAmount, "fundNotifyAmount")
	m.setStr(&cd.FundMinimumInitialPurchase, "fundMinimumInitialPurchase")
	m.setStr(&cd.FundSubsequentMinimumPurchase, "fundSubsequentMinimumPurchase")
	m.setStr(&cd.FundBlueSkyStates, "fundBlueSkyStates")
	m.setStr(&cd.FundBlueSkyTerritories, "fundBlueSkyTerritories")
	m.setStr(&cd.FundDistributionPolicyIndicator, "fundDistributionPolicyIndicator")
	m.setStr(&cd.FundAssetType, "fundAssetType")

	for _, r := range m.list("ineligibilityReasonList") {
		cd.IneligibilityReasons = append(cd.IneligibilityReasons, models.IneligibilityReason{
			ID:          r.str("id"),
			Description: r.str("description"),
		})
	}
	return cd
}

func executionFromProto(m protoMsg) *models.Execution {
	e := models.NewExecution()
	m.setInt(&e.OrderID, "orderId")
	m.setStr(&e.ExecID, "execId")
	m.setStr(&e.Time, "time")
	m.setStr(&e.AcctNumber, "acctNumber")
	m.setStr(&e.Exchange, "exchange")
	m.setStr(&e.Side, "side")
	m.setDecimal(&e.Shares, "shares")
	m.setFloat(&e.Price, "price")
	m.setInt(&e.PermID, "permId")
	m.setInt(&e.ClientID, "clientId")
	m.setInt(&e.Liquidation, "isLiquidation")
	m.setDecimal(&e.CumQty, "cumQty")
	m.setFloat(&e.AvgPrice, "avgPrice")
	m.setStr(&e.OrderRef, "orderRef")
	m.setStr(&e.EvRule, "evRule")
	m.setFloat(&e.EvMultiplier, "evMultiplier")
	m.setStr(&e.ModelCode, "modelCode")
	m.setInt(&e.LastLiquidity, "lastLiquidity")
	m.setBool(&e.PendingPriceRevision, "isPriceRevisionPending")
	m.setStr(&e.Submitter, "submitter")
	return e
}

// orderFromProto maps an Order message. Per-leg prices travel on the contract's
// combo legs.
func orderFromProto(m, contract protoMsg) (*models.Order, error) {
	o := models.NewOrder()

	m.setInt(&o.OrderID, "orderId")
	m.setInt(&o.ClientID, "clientId")
	m.setInt(&o.PermID, "permId")
	m.setInt(&o.ParentID, "parentId")
	m.setInt(&o.ParentPermID, "parentPermId")

	m.setStr(&o.Action, "action")
	m.setDecimal(&o.TotalQuantity, "totalQuantity")
	m.setStr(&o.OrderType, "orderType")
	m.setFloat(&o.LmtPrice, "lmtPrice")
	m.setFloat(&o.AuxPrice, "auxPrice")

	m.setStr(&o.TIF, "tif")
	m.setStr(&o.ActiveStartTime, "activeStartTime")
	m.setStr(&o.ActiveStopTime, "activeStopTime")
	m.setStr(&o.OcaGroup, "ocaGroup")
	m.setInt(&o.OcaType, "ocaType")
	m.setStr(&o.OrderRef, "orderRef")
	m.setBool(&o.Transmit, "transmit")
	m.setBool(&o.BlockOrder, "blockOrder")
	m.setBool(&o.SweepToFill, "sweepToFill")
	m.setInt(&o.DisplaySize, "displaySize")
	m.setInt(&o.TriggerMethod, "triggerMethod")
	m.setBool(&o.OutsideRTH, "outsideRth")
	m.setBool(&o.Hidden, "hidden")
	m.setStr(&o.GoodAfterTime, "goodAfterTime")
	m.setStr(&o.GoodTillDate, "goodTillDate")
	m.setStr(&o.Rule80A, "rule80A")
	m.setBool(&o.AllOrNone, "allOrNone")
	m.setInt(&o.MinQty, "minQty")
	m.setFloat(&o.PercentOffset, "percentOffset")
	m.setFloat(&o.TrailStopPrice, "trailStopPrice")
	m.setFloat(&o.TrailingPercent, "trailingPercent")
	m.setStr(&o.Account, "account")
	m.setStr(&o.SettlingFirm, "settlingFirm")
	m.setStr(&o.ClearingAccount, "clearingAccount")
	m.setStr(&o.ClearingIntent, "clearingIntent")
	m.setStr(&o.OpenClose, "openClose")
	m.setInt(&o.Origin, "origin")
	m.setInt(&o.ShortSaleSlot, "shortSaleSlot")
	m.setStr(&o.DesignatedLocation, "designatedLocation")
	m.setInt(&o.ExemptCode, "exemptCode")
	m.setFloat(&o.DiscretionaryAmt, "discretionaryAmt")
	m.setBool(&o.OptOutSmartRouting, "optOutSmartRouting")
	m.setInt(&o.AuctionStrategy, "auctionStrategy")
	m.setFloat(&o.StartingPrice, "startingPrice")
	m.setFloat(&o.StockRefPrice, "stockRefPrice")
	m.setFloat(&o.Delta, "delta")
	m.setFloat(&o.StockRangeLower, "stockRangeLower")
	m.setFloat(&o.StockRangeUpper, "stockRangeUpper")
	m.setBool(&o.RandomizeSize, "randomizeSize")
	m.setBool(&o.RandomizePrice, "randomizePrice")
	m.setBool(&o.WhatIf, "whatIf")
	m.setBool(&o.NotHeld, "notHeld")
	m.setBool(&o.Solicited, "solicited")
	m.setStr(&o.ModelCode, "modelCode")
	m.setFloat(&o.CashQty, "cashQty")
	m.setDecimal(&o.FilledQuantity, "filledQuantity")
	m.setInt(&o.RefFuturesConID, "refFuturesConId")
	m.setStr(&o.AutoCancelDate, "autoCancelDate")
	m.setBool(&o.AutoCancelParent, "autoCancelParent")
	m.setStr(&o.Shareholder, "shareholder")
	m.setBool(&o.ImbalanceOnly, "imbalanceOnly")
	m.setBool(&o.RouteMarketableToBbo, "routeMarketableToBbo")
	m.setBool(&o.UsePriceMgmtAlgo, "usePriceMgmtAlgo")
	m.setInt(&o.Duration, "duration")
	m.setInt(&o.PostToAts, "postToAts")
	m.setStr(&o.CustomerAccount, "customerAccount")
	m.setBool(&o.ProfessionalCustomer, "professionalCustomer")
	m.setStr(&o.BondAccruedInterest, "bondAccruedInterest")
	m.setBool(&o.IncludeOvernight, "includeOvernight")
	m.setInt(&o.ManualOrderIndicator, "manualOrderIndicator")
	m.setStr(&o.ExtOperator, "extOperator")
	m.setStr(&o.Submitter, "submitter")

	m.setStr(&o.FAGroup, "faGroup")
	m.setStr(&o.FAMethod, "faMethod")
	m.setStr(&o.FAPercentage, "faPercentage")

	m.setFloat(&o.Volatility, "volatility")
	m.setInt(&o.VolatilityType, "volatilityType")
	m.setStr(&o.DeltaNeutralOrderType, "deltaNeutralOrderType")
	m.setFloat(&o.DeltaNeutralAuxPrice, "deltaNeutralAuxPrice")
	m.setInt(&o.DeltaNeutralConID, "deltaNeutralConId")
	m.setStr(&o.DeltaNeutralSettlingFirm, "deltaNeutralSettlingFirm")
	m.setStr(&o.DeltaNeutralClearingAccount, "deltaNeutralClearingAccount")
	m.setStr(&o.DeltaNeutralClearingIntent, "deltaNeutralClearingIntent")
	m.setStr(&o.DeltaNeutralOpenClose, "deltaNeutralOpenClose")
	m.setBool(&o.DeltaNeutralShortSale, "deltaNeutralShortSale")
	m.setInt(&o.DeltaNeutralShortSaleSlot, "deltaNeutralShortSaleSlot")
	m.setStr(&o.DeltaNeutralDesignatedLocation, "deltaNeutralDesignatedLocation")
	m.setBool(&o.ContinuousUpdate, "continuousUpdate")
	m.setInt(&o.ReferencePriceType, "referencePriceType")

	m.setFloat(&o.BasisPoints, "basisPoints")
	m.setInt(&o.BasisPointsType, "basisPointsType")
	for _, leg := range contract.list("comboLegs") {
		o.OrderComboLegs = append(o.OrderComboLegs, models.OrderComboLeg{Price: leg.floatOr("perLegPrice", models.UnsetFloat)})
	}
	o.SmartComboRoutingParams = m.tagValues("smartComboRoutingParams")

	m.setInt(&o.ScaleInitLevelSize, "scaleInitLevelSize")
	m.setInt(&o.ScaleSubsLevelSize, "scaleSubsLevelSize")
	m.setFloat(&o.ScalePriceIncrement, "scalePriceIncrement")
	m.setFloat(&o.ScalePriceAdjustValue, "scalePriceAdjustValue")
	m.setInt(&o.ScalePriceAdjustInterval, "scalePriceAdjustInterval")
	m.setFloat(&o.ScaleProfitOffset, "scaleProfitOffset")
	m.setBool(&o.ScaleAutoReset, "scaleAutoReset")
	m.setInt(&o.ScaleInitPosition, "scaleInitPosition")
	m.setInt(&o.ScaleInitFillQty, "scaleInitFillQty")
	m.setBool(&o.ScaleRandomPercent, "scaleRandomPercent")

	m.setStr(&o.HedgeType, "hedgeType")
	m.setStr(&o.HedgeParam, "hedgeParam")
	m.setBool(&o.DontUseAutoPriceForHedge, "dontUseAutoPriceForHedge")

	m.setStr(&o.AlgoStrategy, "algoStrategy")
	o.AlgoParams = m.tagValues("algoParams")

	m.setInt(&o.ReferenceContractID, "referenceContractId")
	m.setBool(&o.IsPeggedChangeAmountDecrease, "isPeggedChangeAmountDecrease")
	m.setFloat(&o.PeggedChangeAmount, "peggedChangeAmount")
	m.setFloat(&o.ReferenceChangeAmount, "referenceChangeAmount")
	m.setStr(&o.ReferenceExchangeID, "referenceExchangeId")

	m.setStr(&o.AdjustedOrderType, "adjustedOrderType")
	m.setFloat(&o.TriggerPrice, "triggerPrice")
	m.setFloat(&o.LmtPriceOffset, "lmtPriceOffset")
	m.setFloat(&o.AdjustedStopPrice, "adjustedStopPrice")
	m.setFloat(&o.AdjustedStopLimitPrice, "adjustedStopLimitPrice")
	m.setFloat(&o.AdjustedTrailingAmount, "adjustedTrailingAmount")
	m.setInt(&o.AdjustableTrailingUnit, "adjustableTrailingUnit")

	for _, c := range m.list("conditions") {
		cond, err := conditionFromProto(c)
		if err != nil {
			return nil, err
		}
		o.Conditions = append(o.Conditions, cond)
	}
	m.setBool(&o.ConditionsIgnoreRTH, "conditionsIgnoreRth")
	m.setBool(&o.ConditionsCancelOrder, "conditionsCancelOrder")

	if tier := m.msg("softDollarTier"); tier.present() {
		o.SoftDollarTier = softDollarTierFromProto(tier)
	}
	m.setBool(&o.IsOmsContainer, "isOmsContainer")
	m.setBool(&o.DiscretionaryUpToLimitPrice, "discretionaryUpToLimitPrice")

	m.setInt(&o.MinTradeQty, "minTradeQty")
	m.setInt(&o.MinCompeteSize, "minCompeteSize")
	m.setFloat(&o.CompeteAgainstBestOffset, "competeAgainstBestOffset")
	m.setFloat(&o.MidOffsetAtWhole, "midOffsetAtWhole")
	m.setFloat(&o.MidOffsetAtHalf, "midOffsetAtHalf")
	return o, nil
}

// conditionFromProto maps one flattened OrderCondition message.
func conditionFromProto(m protoMsg) (models.OrderCondition, error) {
	t := m.int("type")
	cond, err := models.NewCondition(models.ConditionType(t))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrBadField, err)
	}
	conj := m.bool("isConjunctionConnection")
	isMore := m.bool("isMore")
	contractCond := func(c *models.ContractCondition) {
		c.IsConjunction = conj
		c.IsMore = isMore
		c.ConID = m.int("conId")
		c.Exchange = m.str("exchange")
	}
	switch c := cond.(type) {
	case *models.PriceCondition:
		contractCond(&c.ContractCondition)
		c.Price = m.float("price")
		c.TriggerMethod = m.int("triggerMethod")
	case *models.TimeCondition:
		c.IsConjunction = conj
		c.IsMore = isMore
		c.Time = m.str("time")
	case *models.MarginCondition:
		c.IsConjunction = conj
		c.IsMore = isMore
		c.Percent = m.int("percent")
	case *models.ExecutionCondition:
		c.IsConjunction = conj
		c.SecType = m.str("secType")
		c.Exchange = m.str("exchange")
		c.Symbol = m.str("symbol")
	case *models.VolumeCondition:
		contractCond(&c.ContractCondition)
		c.Volume = m.int("volume")
	case *models.PercentChangeCondition:
		contractCond(&c.ContractCondition)
		c.ChangePercent = m.float("changePercent")
	}
	return cond, nil
}

func orderStateFromProto(m protoMsg) *models.OrderState {
	s := models.NewOrderState()
	m.setStr(&s.Status, "status")

	m.setStr(&s.InitMarginBefore, "initMarginBefore")
	m.setStr(&s.MaintMarginBefore, "maintMarginBefore")
	m.setStr(&s.EquityWithLoanBefore, "equityWithLoanBefore")
	m.setStr(&s.InitMarginChange, "initMarginChange")
	m.setStr(&s.MaintMarginChange, "maintMarginChange")
	m.setStr(&s.EquityWithLoanChange, "equityWithLoanChange")
	m.setStr(&s.InitMarginAfter, "initMarginAfter")
	m.setStr(&s.MaintMarginAfter, "maintMarginAfter")
	m.setStr(&s.EquityWithLoanAfter, "equityWithLoanAfter")

	m.setFloat(&s.CommissionAndFees, "commissionAndFees")
	m.setFloat(&s.MinCommissionAndFees, "minCommissionAndFees")
	m.setFloat(&s.MaxCommissionAndFees, "maxCommissionAndFees")
	m.setStr(&s.CommissionAndFeesCurrency, "commissionAndFeesCurrency")
	m.setStr(&s.MarginCurrency, "marginCurrency")

	m.setFloat(&s.InitMarginBeforeOutsideRTH, "initMarginBeforeOutsideRTH")
	m.setFloat(&s.MaintMarginBeforeOutsideRTH, "maintMarginBeforeOutsideRTH")
	m.setFloat(&s.EquityWithLoanBeforeOutsideRTH, "equityWithLoanBeforeOutsideRTH")
	m.setFloat(&s.InitMarginChangeOutsideRTH, "initMarginChangeOutsideRTH")
	m.setFloat(&s.MaintMarginChangeOutsideRTH, "maintMarginChangeOutsideRTH")
	m.setFloat(&s.EquityWithLoanChangeOutsideRTH, "equityWithLoanChangeOutsideRTH")
	m.setFloat(&s.InitMarginAfterOutsideRTH, "initMarginAfterOutsideRTH")
	m.setFloat(&s.MaintMarginAfterOutsideRTH, "maintMarginAfterOutsideRTH")
	m.setFloat(&s.EquityWithLoanAfterOutsideRTH, "equityWithLoanAfterOutsideRTH")

	m.setDecimal(&s.SuggestedSize, "suggestedSize")
	m.setStr(&s.RejectReason, "rejectReason")
	for _, a := range m.list("orderAllocations") {
		s.OrderAllocations = append(s.OrderAllocations, models.OrderAllocation{
			Account:         a.str("account"),
			Position:        a.decimal("position"),
			PositionDesired: a.decimal("positionDesired"),
			PositionAfter:   a.decimal("positionAfter"),
			DesiredAllocQty: a.decimal("desiredAllocQty"),
			AllowedAllocQty: a.decimal("allowedAllocQty"),
			IsMonetary:      a.bool("isMonetary"),
		})
	}
	m.setStr(&s.WarningText, "warningText")
	m.setStr(&s.CompletedTime, "completedTime")
	m.setStr(&s.CompletedStatus, "completedStatus")
	return s
}
