package decoder

import (
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

// orderDecoder reads the long field sequence shared by OPEN_ORDER and
// COMPLETED_ORDER. Each step reads one group of fields; the steps run in wire
// order and the reader's sticky error is checked by the caller at the end.
type orderDecoder struct {
	r             *wire.FieldReader
	contract      *models.Contract
	order         *models.Order
	state         *models.OrderState
	version       int64
	serverVersion int
}

func newOrderDecoder(r *wire.FieldReader, version int64, serverVersion int) *orderDecoder {
	return &orderDecoder{
		r:             r,
		contract:      &models.Contract{},
		order:         models.NewOrder(),
		state:         models.NewOrderState(),
		version:       version,
		serverVersion: serverVersion,
	}
}

func (od *orderDecoder) decodeOpenOrder() {
	steps := []func(){
		od.orderID,
		od.contractFields,
		od.mainFields,
		od.tif,
		od.ocaGroup,
		od.account,
		od.openClose,
		od.origin,
		od.orderRef,
		od.clientID,
		od.permID,
		od.outsideRTH,
		od.hidden,
		od.discretionaryAmt,
		od.goodAfterTime,
		od.skipSharesAllocation,
		od.faParams,
		od.modelCode,
		od.goodTillDate,
		od.rule80A,
		od.percentOffset,
		od.settlingFirm,
		od.shortSaleParams,
		od.auctionStrategy,
		od.boxOrderParams,
		od.pegToStkOrVolParams,
		od.displaySize,
		od.blockOrder,
		od.sweepToFill,
		od.allOrNone,
		od.minQty,
		od.ocaType,
		od.skipDeprecatedFlags,
		od.parentID,
		od.triggerMethod,
		func() { od.volOrderParams(true) },
		od.trailParams,
		od.basisPoints,
		od.comboLegs,
		od.smartComboRoutingParams,
		od.scaleOrderParams,
		od.hedgeParams,
		od.optOutSmartRouting,
		od.clearingParams,
		od.notHeld,
		od.deltaNeutral,
		od.algoParams,
		od.solicited,
		od.whatIfInfoAndCommission,
		od.volRandomizeFlags,
		od.pegToBenchParams,
		od.conditions,
		od.adjustedOrderParams,
		od.softDollarTier,
		od.cashQty,
		od.dontUseAutoPriceForHedge,
		od.isOmsContainer,
		od.discretionaryUpToLimitPrice,
		od.usePriceMgmtAlgo,
		od.duration,
		od.postToAts,
		func() { od.autoCancelParent(wire.MinServerVerAutoCancelParent) },
		od.pegBestPegMidAttributes,
		od.customerAccount,
		od.professionalCustomer,
		od.bondAccruedInterest,
		od.includeOvernight,
		od.cmeTaggingFields,
		od.submitter,
		func() { od.imbalanceOnly(wire.MinServerVerImbalanceOnly) },
	}
	od.run(steps)
}

func (od *orderDecoder) decodeCompletedOrder() {
	steps := []func(){
		od.contractFields,
		od.mainFields,
		od.tif,
		od.ocaGroup,
		od.account,
		od.openClose,
		od.origin,
		od.orderRef,
		od.permID,
		od.outsideRTH,
		od.hidden,
		od.discretionaryAmt,
		od.goodAfterTime,
		od.faParams,
		od.modelCode,
		od.goodTillDate,
		od.rule80A,
		od.percentOffset,
		od.settlingFirm,
		od.shortSaleParams,
		od.boxOrderParams,
		od.pegToStkOrVolParams,
		od.displaySize,
		od.sweepToFill,
		od.allOrNone,
		od.minQty,
		od.ocaType,
		od.triggerMethod,
		func() { od.volOrderParams(false) },
		od.trailParams,
		od.comboLegs,
		od.smartComboRoutingParams,
		od.scaleOrderParams,
		od.hedgeParams,
		od.clearingParams,
		od.notHeld,
		od.deltaNeutral,
		od.algoParams,
		od.solicited,
		od.orderStatus,
		od.volRandomizeFlags,
		od.pegToBenchParams,
		od.conditions,
		od.stopPriceAndLmtPriceOffset,
		od.cashQty,
		od.dontUseAutoPriceForHedge,
		od.isOmsContainer,
		od.autoCancelDate,
		od.filledQuantity,
		od.refFuturesConID,
		func() { od.autoCancelParent(0) },
		od.shareholder,
		func() { od.imbalanceOnly(0) },
		od.routeMarketableToBbo,
		od.parentPermID,
		od.completedTime,
		od.completedStatus,
		od.pegBestPegMidAttributes,
		od.customerAccount,
		od.professionalCustomer,
		od.submitter,
	}
	od.run(steps)
}

func (od *orderDecoder) run(steps []func()) {
	for _, step := range steps {
		if od.r.Err() != nil {
			return
		}
		step()
	}
}

func (od *orderDecoder) orderID() { od.order.OrderID = od.r.Int() }

func (od *orderDecoder) contractFields() {
	r, c := od.r, od.contract
	c.ConID = r.Int()
	c.Symbol = r.Str()
	c.SecType = r.Str()
	c.LastTradeDateOrContractMonth = r.Str()
	c.Strike = r.Float()
	c.Right = r.Str()
	if od.version >= 32 {
		c.Multiplier = r.Str()
	}
	c.Exchange = r.Str()
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	if od.version >= 32 {
		c.TradingClass = r.Str()
	}
}

func (od *orderDecoder) mainFields() {
	r, o := od.r, od.order
	o.Action = r.Str()
	o.TotalQuantity = r.Decimal()
	o.OrderType = r.Str()
	if od.version < 29 {
		o.LmtPrice = r.Float()
		o.AuxPrice = r.Float()
		return
	}
	o.LmtPrice = r.FloatMax()
	o.AuxPrice = r.FloatMax()
}

func (od *orderDecoder) tif()              { od.order.TIF = od.r.Str() }
func (od *orderDecoder) ocaGroup()         { od.order.OcaGroup = od.r.Str() }
func (od *orderDecoder) account()          { od.order.Account = od.r.Str() }
func (od *orderDecoder) openClose()        { od.order.OpenClose = od.r.Str() }
func (od *orderDecoder) origin()           { od.order.Origin = od.r.Int() }
func (od *orderDecoder) orderRef()         { od.order.OrderRef = od.r.Str() }
func (od *orderDecoder) clientID()         { od.order.ClientID = od.r.Int() }
func (od *orderDecoder) permID()           { od.order.PermID = od.r.Int() }
func (od *orderDecoder) outsideRTH()       { od.order.OutsideRTH = od.r.Bool() }
func (od *orderDecoder) hidden()           { od.order.Hidden = od.r.Bool() }
func (od *orderDecoder) discretionaryAmt() { od.order.DiscretionaryAmt = od.r.Float() }
func (od *orderDecoder) goodAfterTime()    { od.order.GoodAfterTime = od.r.Str() }
func (od *orderDecoder) goodTillDate()     { od.order.GoodTillDate = od.r.Str() }
func (od *orderDecoder) rule80A()          { od.order.Rule80A = od.r.Str() }
func (od *orderDecoder) percentOffset()    { od.order.PercentOffset = od.r.FloatMax() }
func (od *orderDecoder) settlingFirm()     { od.order.SettlingFirm = od.r.Str() }
func (od *orderDecoder) auctionStrategy()  { od.order.AuctionStrategy = od.r.Int() }
func (od *orderDecoder) displaySize()      { od.order.DisplaySize = od.r.IntMax() }
func (od *orderDecoder) blockOrder()       { od.order.BlockOrder = od.r.Bool() }
func (od *orderDecoder) sweepToFill()      { od.order.SweepToFill = od.r.Bool() }
func (od *orderDecoder) allOrNone()        { od.order.AllOrNone = od.r.Bool() }
func (od *orderDecoder) minQty()           { od.order.MinQty = od.r.IntMax() }
func (od *orderDecoder) ocaType()          { od.order.OcaType = od.r.Int() }
func (od *orderDecoder) parentID()         { od.order.ParentID = od.r.Int() }
func (od *orderDecoder) triggerMethod()    { od.order.TriggerMethod = od.r.Int() }
func (od *orderDecoder) orderStatus()      { od.state.Status = od.r.Str() }

// skipSharesAllocation drops the deprecated shares allocation field.
func (od *orderDecoder) skipSharesAllocation() { od.r.Str() }

// skipDeprecatedFlags drops eTradeOnly, firmQuoteOnly and nbboPriceCap.
func (od *orderDecoder) skipDeprecatedFlags() {
	od.r.Bool()
	od.r.Bool()
	od.r.FloatMax()
}

func (od *orderDecoder) faParams() {
	o := od.order
	o.FAGroup = od.r.Str()
	o.FAMethod = od.r.Str()
	o.FAPercentage = od.r.Str()
	if od.serverVersion < wire.MinServerVerFAProfileDesupport {
		od.r.Str() // faProfile
	}
}

func (od *orderDecoder) modelCode() {
	if od.serverVersion >= wire.MinServerVerModelsSupport {
		od.order.ModelCode = od.r.Str()
	}
}

func (od *orderDecoder) shortSaleParams() {
	o := od.order
	o.ShortSaleSlot = od.r.Int()
	o.DesignatedLocation = od.r.Str()
	if od.serverVersion == wire.MinServerVerSShortXOld {
		od.r.Int()
	} else if od.version >= 23 {
		o.ExemptCode = od.r.Int()
	}
}

func (od *orderDecoder) boxOrderParams() {
	o := od.order
	o.StartingPrice = od.r.FloatMax()
	o.StockRefPrice = od.r.FloatMax()
	o.Delta = od.r.FloatMax()
}

func (od *orderDecoder) pegToStkOrVolParams() {
	od.order.StockRangeLower = od.r.FloatMax()
	od.order.StockRangeUpper = od.r.FloatMax()
}

func (od *orderDecoder) volOrderParams(readOpenOrderAttribs bool) {
	r, o := od.r, od.order
	o.Volatility = r.FloatMax()
	o.VolatilityType = r.Int()
	o.DeltaNeutralOrderType = r.Str()
	o.DeltaNeutralAuxPrice = r.FloatMax()

	if od.version >= 27 && o.DeltaNeutralOrderType != "" {
		o.DeltaNeutralConID = r.Int()
		if readOpenOrderAttribs {
			o.DeltaNeutralSettlingFirm = r.Str()
			o.DeltaNeutralClearingAccount = r.Str()
			o.DeltaNeutralClearingIntent = r.Str()
		}
	}
	if od.version >= 31 && o.DeltaNeutralOrderType != "" {
		if readOpenOrderAttribs {
			o.DeltaNeutralOpenClose = r.Str()
		}
		o.DeltaNeutralShortSale = r.Bool()
		o.DeltaNeutralShortSaleSlot = r.Int()
		o.DeltaNeutralDesignatedLocation = r.Str()
	}

	o.ContinuousUpdate = r.Bool()
	o.ReferencePriceType = r.Int()
}

func (od *orderDecoder) trailParams() {
	od.order.TrailStopPrice = od.r.FloatMax()
	if od.version >= 30 {
		od.order.TrailingPercent = od.r.FloatMax()
	}
}

func (od *orderDecoder) basisPoints() {
	od.order.BasisPoints = od.r.FloatMax()
	od.order.BasisPointsType = od.r.IntMax()
}

func (od *orderDecoder) comboLegs() {
	r := od.r
	od.contract.ComboLegsDescrip = r.Str()
	if od.version < 29 {
		return
	}

	n := r.Int()
	for i := int64(0); i < n && r.Err() == nil; i++ {
		od.contract.ComboLegs = append(od.contract.ComboLegs, models.ComboLeg{
			ConID:              r.Int(),
			Ratio:              r.Int(),
			Action:             r.Str(),
			Exchange:           r.Str(),
			OpenClose:          r.Int(),
			ShortSaleSlot:      r.Int(),
			DesignatedLocation: r.Str(),
			ExemptCode:         r.Int(),
		})
	}

	n = r.Int()
	for i := int64(0); i < n && r.Err() == nil; i++ {
		od.order.OrderComboLegs = append(od.order.OrderComboLegs, models.OrderComboLeg{Price: r.FloatMax()})
	}
}

func (od *orderDecoder) smartComboRoutingParams() {
	if od.version >= 26 {
		od.order.SmartComboRoutingParams = readTagValues(od.r, od.r.Int())
	}
}

func (od *orderDecoder) scaleOrderParams() {
	r, o := od.r, od.order
	if od.version >= 20 {
		o.ScaleInitLevelSize = r.IntMax()
		o.ScaleSubsLevelSize = r.IntMax()
	} else {
		r.IntMax() // notSuppScaleNumComponents
		o.ScaleInitLevelSize = r.IntMax()
	}
	o.ScalePriceIncrement = r.FloatMax()

	if od.version >= 28 && o.ScalePriceIncrement != models.UnsetFloat && o.ScalePriceIncrement > 0 {
		o.ScalePriceAdjustValue = r.FloatMax()
		o.ScalePriceAdjustInterval = r.IntMax()
		o.ScaleProfitOffset = r.FloatMax()
		o.ScaleAutoReset = r.Bool()
		o.ScaleInitPosition = r.IntMax()
		o.ScaleInitFillQty = r.IntMax()
		o.ScaleRandomPercent = r.Bool()
	}
}

func (od *orderDecoder) hedgeParams() {
	if od.version < 24 {
		return
	}
	od.order.HedgeType = od.r.Str()
	if od.order.HedgeType != "" {
		od.order.HedgeParam = od.r.Str()
	}
}

func (od *orderDecoder) optOutSmartRouting() {
	if od.version >= 25 {
		od.order.OptOutSmartRouting = od.r.Bool()
	}
}

func (od *orderDecoder) clearingParams() {
	od.order.ClearingAccount = od.r.Str()
	od.order.ClearingIntent = od.r.Str()
}

func (od *orderDecoder) notHeld() {
	if od.version >= 22 {
		od.order.NotHeld = od.r.Bool()
	}
}

func (od *orderDecoder) deltaNeutral() {
	if od.version < 20 || !od.r.Bool() {
		return
	}
	od.contract.DeltaNeutralContract = &models.DeltaNeutralContract{
		ConID: od.r.Int(),
		Delta: od.r.Float(),
		Price: od.r.Float(),
	}
}

func (od *orderDecoder) algoParams() {
	if od.version < 21 {
		return
	}
	od.order.AlgoStrategy = od.r.Str()
	if od.order.AlgoStrategy != "" {
		od.order.AlgoParams = readTagValues(od.r, od.r.Int())
	}
}

func (od *orderDecoder) solicited() {
	if od.version >= 33 {
		od.order.Solicited = od.r.Bool()
	}
}

func (od *orderDecoder) whatIfInfoAndCommission() {
	r, s := od.r, od.state
	od.order.WhatIf = r.Bool()
	od.orderStatus()

	if od.serverVersion >= wire.MinServerVerWhatIfExtFields {
		s.InitMarginBefore = r.Str()
		s.MaintMarginBefore = r.Str()
		s.EquityWithLoanBefore = r.Str()
		s.InitMarginChange = r.Str()
		s.MaintMarginChange = r.Str()
		s.EquityWithLoanChange = r.Str()
	}
	s.InitMarginAfter = r.Str()
	s.MaintMarginAfter = r.Str()
	s.EquityWithLoanAfter = r.Str()

	s.CommissionAndFees = r.FloatMax()
	s.MinCommissionAndFees = r.FloatMax()
	s.MaxCommissionAndFees = r.FloatMax()
	s.CommissionAndFeesCurrency = r.Str()

	if od.serverVersion >= wire.MinServerVerFullOrderPreviewFields {
		s.MarginCurrency = r.Str()
		s.InitMarginBeforeOutsideRTH = r.FloatMax()
		s.MaintMarginBeforeOutsideRTH = r.FloatMax()
		s.EquityWithLoanBeforeOutsideRTH = r.FloatMax()
		s.InitMarginChangeOutsideRTH = r.FloatMax()
		s.MaintMarginChangeOutsideRTH = r.FloatMax()
		s.EquityWithLoanChangeOutsideRTH = r.FloatMax()
		s.InitMarginAfterOutsideRTH = r.FloatMax()
		s.MaintMarginAfterOutsideRTH = r.FloatMax()
		s.EquityWithLoanAfterOutsideRTH = r.FloatMax()
		s.SuggestedSize = r.Decimal()
		s.RejectReason = r.Str()

		n := r.Int()
		for i := int64(0); i < n && r.Err() == nil; i++ {
			s.OrderAllocations = append(s.OrderAllocations, models.OrderAllocation{
				Account:         r.Str(),
				Position:        r.Decimal(),
				PositionDesired: r.Decimal(),
				PositionAfter:   r.Decimal(),
				DesiredAllocQty: r.Decimal(),
				AllowedAllocQty: r.Decimal(),
				IsMonetary:      r.Bool(),
			})
		}
	}
	s.WarningText = r.Str()
}

func (od *orderDecoder) volRandomizeFlags() {
	if od.version >= 34 {
		od.order.RandomizeSize = od.r.Bool()
		od.order.RandomizePrice = od.r.Bool()
	}
}

func (od *orderDecoder) pegToBenchParams() {
	if od.serverVersion < wire.MinServerVerPeggedToBenchmark || od.order.OrderType != "PEG BENCH" {
		return
	}
	o := od.order
	o.ReferenceContractID = od.r.Int()
	o.IsPeggedChangeAmountDecrease = od.r.Bool()
	o.PeggedChangeAmount = od.r.Float()
	o.ReferenceChangeAmount = od.r.Float()
	o.ReferenceExchangeID = od.r.Str()
}

func (od *orderDecoder) conditions() {
	if od.serverVersion < wire.MinServerVerPeggedToBenchmark {
		return
	}
	r := od.r
	n := r.Int()
	if n <= 0 {
		return
	}
	for i := int64(0); i < n && r.Err() == nil; i++ {
		cond, err := models.NewCondition(models.ConditionType(r.Int()))
		if err != nil {
			r.Fail(err)
			return
		}
		readCondition(r, cond)
		od.order.Conditions = append(od.order.Conditions, cond)
	}
	od.order.ConditionsIgnoreRTH = r.Bool()
	od.order.ConditionsCancelOrder = r.Bool()
}

// readCondition fills cond from the wire. The layout is the connector, then for
// operator conditions the direction and threshold, then for contract conditions
// the contract id and exchange.
func readCondition(r *wire.FieldReader, cond models.OrderCondition) {
	conj := func(b *models.ConditionBase) { b.IsConjunction = r.Str() == "a" }
	switch c := cond.(type) {
	case *models.PriceCondition:
		conj(&c.ConditionBase)
		c.IsMore = r.Bool()
		c.Price = r.Float()
		c.ConID = r.Int()
		c.Exchange = r.Str()
		c.TriggerMethod = r.Int()
	case *models.TimeCondition:
		conj(&c.ConditionBase)
		c.IsMore = r.Bool()
		c.Time = r.Str()
	case *models.MarginCondition:
		conj(&c.ConditionBase)
		c.IsMore = r.Bool()
		c.Percent = r.Int()
	case *models.ExecutionCondition:
		conj(&c.ConditionBase)
		c.SecType = r.Str()
		c.Exchange = r.Str()
		c.Symbol = r.Str()
	case *models.VolumeCondition:
		conj(&c.ConditionBase)
		c.IsMore = r.Bool()
		c.Volume = r.Int()
		c.ConID = r.Int()
		c.Exchange = r.Str()
	case *models.PercentChangeCondition:
		conj(&c.ConditionBase)
		c.IsMore = r.Bool()
		c.ChangePercent = r.Float()
		c.ConID = r.Int()
		c.Exchange = r.Str()
	}
}

func (od *orderDecoder) stopPriceAndLmtPriceOffset() {
	od.order.TrailStopPrice = od.r.Float()
	od.order.LmtPriceOffset = od.r.Float()
}

func (od *orderDecoder) adjustedOrderParams() {
	if od.serverVersion < wire.MinServerVerPeggedToBenchmark {
		return
	}
	o := od.order
	o.AdjustedOrderType = od.r.Str()
	o.TriggerPrice = od.r.Float()
	od.stopPriceAndLmtPriceOffset()
	o.AdjustedStopPrice = od.r.Float()
	o.AdjustedStopLimitPrice = od.r.Float()
	o.AdjustedTrailingAmount = od.r.Float()
	o.AdjustableTrailingUnit = od.r.Int()
}

func (od *orderDecoder) softDollarTier() {
	if od.serverVersion >= wire.MinServerVerSoftDollarTier {
		od.order.SoftDollarTier = models.SoftDollarTier{
			Name:        od.r.Str(),
			Value:       od.r.Str(),
			DisplayName: od.r.Str(),
		}
	}
}

func (od *orderDecoder) cashQty() {
	if od.serverVersion >= wire.MinServerVerCashQty {
		od.order.CashQty = od.r.FloatMax()
	}
}

func (od *orderDecoder) dontUseAutoPriceForHedge() {
	if od.serverVersion >= wire.MinServerVerAutoPriceForHedge {
		od.order.DontUseAutoPriceForHedge = od.r.Bool()
	}
}

func (od *orderDecoder) isOmsContainer() {
	if od.serverVersion >= wire.MinServerVerOrderContainer {
		od.order.IsOmsContainer = od.r.Bool()
	}
}

func (od *orderDecoder) discretionaryUpToLimitPrice() {
	if od.serverVersion >= wire.MinServerVerDPegOrders {
		od.order.DiscretionaryUpToLimitPrice = od.r.Bool()
	}
}

func (od *orderDecoder) usePriceMgmtAlgo() {
	if od.serverVersion >= wire.MinServerVerPriceMgmtAlgo {
		od.order.UsePriceMgmtAlgo = od.r.Bool()
	}
}

func (od *orderDecoder) duration() {
	if od.serverVersion >= wire.MinServerVerDuration {
		od.order.Duration = od.r.IntMax()
	}
}

func (od *orderDecoder) postToAts() {
	if od.serverVersion >= wire.MinServerVerPostToATS {
		od.order.PostToAts = od.r.IntMax()
	}
}

func (od *orderDecoder) autoCancelParent(minVersion int) {
	if od.serverVersion >= minVersion {
		od.order.AutoCancelParent = od.r.Bool()
	}
}

func (od *orderDecoder) pegBestPegMidAttributes() {
	if od.serverVersion < wire.MinServerVerPegBestPegMidOffsets {
		return
	}
	o := od.order
	o.MinTradeQty = od.r.IntMax()
	o.MinCompeteSize = od.r.IntMax()
	o.CompeteAgainstBestOffset = od.r.FloatMax()
	o.MidOffsetAtWhole = od.r.FloatMax()
	o.MidOffsetAtHalf = od.r.FloatMax()
}

func (od *orderDecoder) customerAccount() {
	if od.serverVersion >= wire.MinServerVerCustomerAccount {
		od.order.CustomerAccount = od.r.Str()
	}
}

func (od *orderDecoder) professionalCustomer() {
	if od.serverVersion >= wire.MinServerVerProfessionalCustomer {
		od.order.ProfessionalCustomer = od.r.Bool()
	}
}

func (od *orderDecoder) bondAccruedInterest() {
	if od.serverVersion >= wire.MinServerVerBondAccruedInterest {
		od.order.BondAccruedInterest = od.r.Str()
	}
}

func (od *orderDecoder) includeOvernight() {
	if od.serverVersion >= wire.MinServerVerIncludeOvernight {
		od.order.IncludeOvernight = od.r.Bool()
	}
}

func (od *orderDecoder) cmeTaggingFields() {
	if od.serverVersion >= wire.MinServerVerCMETaggingFields {
		od.order.ExtOperator = od.r.Str()
		od.order.ManualOrderIndicator = od.r.IntMax()
	}
}

func (od *orderDecoder) submitter() {
	if od.serverVersion >= wire.MinServerVerSubmitter {
		od.order.Submitter = od.r.Str()
	}
}

func (od *orderDecoder) imbalanceOnly(minVersion int) {
	if od.serverVersion >= minVersion {
		od.order.ImbalanceOnly = od.r.Bool()
	}
}

func (od *orderDecoder) autoCancelDate()       { od.order.AutoCancelDate = od.r.Str() }
func (od *orderDecoder) filledQuantity()       { od.order.FilledQuantity = od.r.Decimal() }
func (od *orderDecoder) refFuturesConID()      { od.order.RefFuturesConID = od.r.Int() }
func (od *orderDecoder) shareholder()          { od.order.Shareholder = od.r.Str() }
func (od *orderDecoder) routeMarketableToBbo() { od.order.RouteMarketableToBbo = od.r.Bool() }
func (od *orderDecoder) parentPermID()         { od.order.ParentPermID = od.r.LongMax() }
func (od *orderDecoder) completedTime()        { od.state.CompletedTime = od.r.Str() }
func (od *orderDecoder) completedStatus()      { od.state.CompletedStatus = od.r.Str() }
