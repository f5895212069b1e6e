package decoder

import (
	"strings"

	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

func readTagValues(r *wire.FieldReader, n int64) []models.TagValue {
	if n <= 0 {
		return nil
	}
	tvs := make([]models.TagValue, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		tvs = append(tvs, models.TagValue{Tag: r.Str(), Value: r.Str()})
	}
	return tvs
}

// sliceCap bounds a count read off the wire by the fields left to read.
func sliceCap(r *wire.FieldReader, n int64) int {
	if n <= 0 {
		return 0
	}
	return int(min(n, int64(r.Remaining())))
}

// setLastTradeDate splits "date[ time[ zone]]" (space or dash separated).
func setLastTradeDate(s string, cd *models.ContractDetails, isBond bool) {
	if s == "" {
		return
	}
	var parts []string
	if strings.Contains(s, "-") {
		parts = strings.Split(s, "-")
	} else {
		parts = strings.Fields(s)
	}
	if len(parts) > 0 {
		if isBond {
			cd.Maturity = parts[0]
		} else {
			cd.Contract.LastTradeDateOrContractMonth = parts[0]
		}
	}
	if len(parts) > 1 {
		cd.LastTradeTime = parts[1]
	}
	if isBond && len(parts) > 2 {
		cd.TimeZoneID = parts[2]
	}
}

func (d *Decoder) processTickPrice(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	tickType := models.TickType(r.Int())
	price := r.Float()
	size := r.Decimal()
	mask := r.Int()
	if err := r.Err(); err != nil {
		return err
	}

	var attrib models.TickAttrib
	attrib.CanAutoExecute = mask == 1
	if d.serverVersion >= wire.MinServerVerPastLimit {
		attrib.CanAutoExecute = mask&1 != 0
		attrib.PastLimit = mask&2 != 0
		if d.serverVersion >= wire.MinServerVerPreOpenBidAsk {
			attrib.PreOpen = mask&4 != 0
		}
	}
	d.wrapper.TickPrice(reqID, tickType, price, attrib)

	if sizeTick := models.SizeTickFor(tickType); sizeTick != models.TickNotSet {
		d.wrapper.TickSize(reqID, sizeTick, size)
	}
	return nil
}

func (d *Decoder) processTickSize(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	tickType := models.TickType(r.Int())
	size := r.Decimal()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.TickSize(reqID, tickType, size)
	return nil
}

func (d *Decoder) processTickOptionComputation(r *wire.FieldReader) error {
	version := int64(d.serverVersion)
	if d.serverVersion < wire.MinServerVerPriceBasedVolatility {
		version = r.Int()
	}
	reqID := r.Int()
	tickType := models.TickType(r.Int())
	var tickAttrib int64
	if d.serverVersion >= wire.MinServerVerPriceBasedVolatility {
		tickAttrib = r.Int()
	}

	impliedVol := r.Float()
	delta := r.Float()
	if impliedVol < 0 {
		impliedVol = models.UnsetFloat
	}
	if delta == -2 {
		delta = models.UnsetFloat
	}

	optPrice, pvDividend := models.UnsetFloat, models.UnsetFloat
	gamma, vega, theta, undPrice := models.UnsetFloat, models.UnsetFloat, models.UnsetFloat, models.UnsetFloat
	if version >= 6 || tickType == models.TickModelOption || tickType == models.TickDelayedModelOption {
		optPrice = r.Float()
		pvDividend = r.Float()
		if optPrice == -1 {
			optPrice = models.UnsetFloat
		}
		if pvDividend == -1 {
			pvDividend = models.UnsetFloat
		}
	}
	if version >= 6 {
		gamma = r.Float()
		vega = r.Float()
		theta = r.Float()
		undPrice = r.Float()
		if gamma == -2 {
			gamma = models.UnsetFloat
		}
		if vega == -2 {
			vega = models.UnsetFloat
		}
		if theta == -2 {
			theta = models.UnsetFloat
		}
		if undPrice == -1 {
			undPrice = models.UnsetFloat
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.TickOptionComputation(reqID, tickType, tickAttrib, impliedVol, delta, optPrice, pvDividend, gamma, vega, theta, undPrice)
	return nil
}

func (d *Decoder) processOrderStatus(r *wire.FieldReader) error {
	if d.serverVersion < wire.MinServerVerMarketCapPrice {
		r.Int() // version
	}
	orderID := r.Int()
	status := r.Str()
	filled := r.Decimal()
	remaining := r.Decimal()
	avgFillPrice := r.Float()
	permID := r.Int()
	parentID := r.Int()
	lastFillPrice := r.Float()
	clientID := r.Int()
	whyHeld := r.Str()
	var mktCapPrice float64
	if d.serverVersion >= wire.MinServerVerMarketCapPrice {
		mktCapPrice = r.Float()
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.OrderStatus(orderID, status, filled, remaining, avgFillPrice, permID, parentID, lastFillPrice, clientID, whyHeld, mktCapPrice)
	return nil
}

func (d *Decoder) processError(r *wire.FieldReader) error {
	if d.serverVersion < wire.MinServerVerErrorTime {
		r.Int() // version
	}
	reqID := r.Int()
	code := r.Int()
	text := r.Text()
	var rejectJSON string
	if d.serverVersion >= wire.MinServerVerAdvancedOrderReject {
		rejectJSON = r.Text()
	}
	var errorTime int64
	if d.serverVersion >= wire.MinServerVerErrorTime {
		errorTime = r.Int()
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.Error(reqID, errorTime, code, text, rejectJSON)
	return nil
}

func (d *Decoder) processOpenOrder(r *wire.FieldReader) error {
	version := int64(d.serverVersion)
	if d.serverVersion < wire.MinServerVerOrderContainer {
		version = r.Int()
	}

	od := newOrderDecoder(r, version, d.serverVersion)
	od.decodeOpenOrder()
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.OpenOrder(od.order.OrderID, od.contract, od.order, od.state)
	return nil
}

func (d *Decoder) processCompletedOrder(r *wire.FieldReader) error {
	od := newOrderDecoder(r, models.UnsetInt, d.serverVersion)
	od.decodeCompletedOrder()
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.CompletedOrder(od.contract, od.order, od.state)
	return nil
}

func (d *Decoder) processCompletedOrdersEnd(r *wire.FieldReader) error {
	d.wrapper.CompletedOrdersEnd()
	return nil
}

func (d *Decoder) processOrderBound(r *wire.FieldReader) error {
	permID := r.Int()
	clientID := r.Int()
	orderID := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.OrderBound(permID, clientID, orderID)
	return nil
}

func (d *Decoder) processPortfolioValue(r *wire.FieldReader) error {
	version := r.Int()

	c := &models.Contract{}
	c.ConID = r.Int()
	c.Symbol = r.Str()
	c.SecType = r.Str()
	c.LastTradeDateOrContractMonth = r.Str()
	c.Strike = r.Float()
	c.Right = r.Str()
	if version >= 7 {
		c.Multiplier = r.Str()
		c.PrimaryExchange = r.Str()
	}
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	if version >= 8 {
		c.TradingClass = r.Str()
	}

	position := r.Decimal()
	marketPrice := r.Float()
	marketValue := r.Float()
	averageCost := r.Float()
	unrealizedPNL := r.Float()
	realizedPNL := r.Float()
	accountName := r.Str()
	if version == 6 && d.serverVersion == wire.MinServerVerPTAOrders {
		c.PrimaryExchange = r.Str()
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.UpdatePortfolio(c, position, marketPrice, marketValue, averageCost, unrealizedPNL, realizedPNL, accountName)
	return nil
}

func (d *Decoder) processContractData(r *wire.FieldReader) error {
	version := int64(8)
	if d.serverVersion < wire.MinServerVerSizeRules {
		version = r.Int()
	}
	reqID := int64(-1)
	if version >= 3 {
		reqID = r.Int()
	}

	cd := models.NewContractDetails()
	c := &cd.Contract
	c.Symbol = r.Str()
	c.SecType = r.Str()
	setLastTradeDate(r.Str(), cd, false)
	if d.serverVersion >= wire.MinServerVerLastTradeDate {
		c.LastTradeDate = r.Str()
	}
	c.Strike = r.Float()
	c.Right = r.Str()
	c.Exchange = r.Str()
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	cd.MarketName = r.Str()
	c.TradingClass = r.Str()
	c.ConID = r.Int()
	cd.MinTick = r.Float()
	if d.serverVersion >= wire.MinServerVerMDSizeMultiplier && d.serverVersion < wire.MinServerVerSizeRules {
		r.Int() // mdSizeMultiplier
	}
	c.Multiplier = r.Str()
	cd.OrderTypes = r.Str()
	cd.ValidExchanges = r.Str()
	cd.PriceMagnifier = r.Int()
	if version >= 4 {
		cd.UnderConID = r.Int()
	}
	if version >= 5 {
		cd.LongName = r.Text()
		c.PrimaryExchange = r.Str()
	}
	if version >= 6 {
		cd.ContractMonth = r.Str()
		cd.Industry = r.Str()
		cd.Category = r.Str()
		cd.Subcategory = r.Str()
		cd.TimeZoneID = r.Str()
		cd.TradingHours = r.Str()
		cd.LiquidHours = r.Str()
	}
	if version >= 8 {
		cd.EvRule = r.Str()
		cd.EvMultiplier = r.Float()
	}
	if version >= 7 {
		cd.SecIDList = readTagValues(r, r.Int())
	}
	if d.serverVersion >= wire.MinServerVerAggGroup {
		cd.AggGroup = r.Int()
	}
	if d.serverVersion >= wire.MinServerVerUnderlyingInfo {
		cd.UnderSymbol = r.Str()
		cd.UnderSecType = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerMarketRules {
		cd.MarketRuleIDs = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerRealExpirationDate {
		cd.RealExpirationDate = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerStockType {
		cd.StockType = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerFractionalSizeSupport && d.serverVersion < wire.MinServerVerSizeRules {
		r.Decimal() // sizeMinTick
	}
	if d.serverVersion >= wire.MinServerVerSizeRules {
		cd.MinSize = r.Decimal()
		cd.SizeIncrement = r.Decimal()
		cd.SuggestedSizeIncrement = r.Decimal()
	}
	if d.serverVersion >= wire.MinServerVerFundDataFields && c.SecType == "FUND" {
		cd.FundName = r.Str()
		cd.FundFamily = r.Str()
		cd.FundType = r.Str()
		cd.FundFrontLoad = r.Str()
		cd.FundBackLoad = r.Str()
		cd.FundBackLoadTimeInterval = r.Str()
		cd.FundManagementFee = r.Str()
		cd.FundClosed = r.Bool()
		cd.FundClosedForNewInvestors = r.Bool()
		cd.FundClosedForNewMoney = r.Bool()
		cd.FundNotifyAmount = r.Str()
		cd.FundMinimumInitialPurchase = r.Str()
		cd.FundSubsequentMinimumPurchase = r.Str()
		cd.FundBlueSkyStates = r.Str()
		cd.FundBlueSkyTerritories = r.Str()
		cd.FundDistributionPolicyIndicator = r.Str()
		cd.FundAssetType = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerIneligibilityReasons {
		n := r.Int()
		for i := int64(0); i < n && r.Err() == nil; i++ {
			cd.IneligibilityReasons = append(cd.IneligibilityReasons, models.IneligibilityReason{
				ID:          r.Str(),
				Description: r.Str(),
			})
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.ContractDetails(reqID, cd)
	return nil
}

func (d *Decoder) processBondContractData(r *wire.FieldReader) error {
	version := int64(6)
	if d.serverVersion < wire.MinServerVerSizeRules {
		version = r.Int()
	}
	reqID := int64(-1)
	if version >= 3 {
		reqID = r.Int()
	}

	cd := models.NewContractDetails()
	c := &cd.Contract
	c.Symbol = r.Str()
	c.SecType = r.Str()
	cd.Cusip = r.Str()
	cd.Coupon = r.Float()
	setLastTradeDate(r.Str(), cd, true)
	cd.IssueDate = r.Str()
	cd.Ratings = r.Str()
	cd.BondType = r.Str()
	cd.CouponType = r.Str()
	cd.Convertible = r.Bool()
	cd.Callable = r.Bool()
	cd.Putable = r.Bool()
	cd.DescAppend = r.Str()
	c.Exchange = r.Str()
	c.Currency = r.Str()
	cd.MarketName = r.Str()
	c.TradingClass = r.Str()
	c.ConID = r.Int()
	cd.MinTick = r.Float()
	if d.serverVersion >= wire.MinServerVerMDSizeMultiplier && d.serverVersion < wire.MinServerVerSizeRules {
		r.Int() // mdSizeMultiplier
	}
	cd.OrderTypes = r.Str()
	cd.ValidExchanges = r.Str()
	if version >= 2 {
		cd.NextOptionDate = r.Str()
		cd.NextOptionType = r.Str()
		cd.NextOptionPartial = r.Bool()
		cd.Notes = r.Str()
	}
	if version >= 4 {
		cd.LongName = r.Text()
	}
	if version >= 6 {
		cd.EvRule = r.Str()
		cd.EvMultiplier = r.Float()
	}
	if version >= 5 {
		cd.SecIDList = readTagValues(r, r.Int())
	}
	if d.serverVersion >= wire.MinServerVerAggGroup {
		cd.AggGroup = r.Int()
	}
	if d.serverVersion >= wire.MinServerVerMarketRules {
		cd.MarketRuleIDs = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerSizeRules {
		cd.MinSize = r.Decimal()
		cd.SizeIncrement = r.Decimal()
		cd.SuggestedSizeIncrement = r.Decimal()
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.BondContractDetails(reqID, cd)
	return nil
}

func (d *Decoder) processExecutionData(r *wire.FieldReader) error {
	version := int64(d.serverVersion)
	if d.serverVersion < wire.MinServerVerLastLiquidity {
		version = r.Int()
	}
	reqID := int64(-1)
	if version >= 7 {
		reqID = r.Int()
	}
	orderID := r.Int()

	c := &models.Contract{}
	c.ConID = r.Int()
	c.Symbol = r.Str()
	c.SecType = r.Str()
	c.LastTradeDateOrContractMonth = r.Str()
	c.Strike = r.Float()
	c.Right = r.Str()
	if version >= 9 {
		c.Multiplier = r.Str()
	}
	c.Exchange = r.Str()
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	if version >= 10 {
		c.TradingClass = r.Str()
	}

	e := models.NewExecution()
	e.OrderID = orderID
	e.ExecID = r.Str()
	e.Time = r.Str()
	e.AcctNumber = r.Str()
	e.Exchange = r.Str()
	e.Side = r.Str()
	e.Shares = r.Decimal()
	e.Price = r.Float()
	e.PermID = r.Int()
	e.ClientID = r.Int()
	e.Liquidation = r.Int()
	if version >= 6 {
		e.CumQty = r.Decimal()
		e.AvgPrice = r.Float()
	}
	if version >= 8 {
		e.OrderRef = r.Str()
	}
	if version >= 9 {
		e.EvRule = r.Str()
		e.EvMultiplier = r.Float()
	}
	if d.serverVersion >= wire.MinServerVerModelsSupport {
		e.ModelCode = r.Str()
	}
	if d.serverVersion >= wire.MinServerVerLastLiquidity {
		e.LastLiquidity = r.Int()
	}
	if d.serverVersion >= wire.MinServerVerPendingPriceRevision {
		e.PendingPriceRevision = r.Bool()
	}
	if d.serverVersion >= wire.MinServerVerSubmitter {
		e.Submitter = r.Str()
	}
	if err := r.Err(); err != nil {
		return err
	}

	d.wrapper.ExecDetails(reqID, c, e)
	return nil
}

func (d *Decoder) processCommissionReport(r *wire.FieldReader) error {
	r.Int() // version
	report := models.CommissionAndFeesReport{
		ExecID:              r.Str(),
		CommissionAndFees:   r.Float(),
		Currency:            r.Str(),
		RealizedPNL:         r.Float(),
		Yield:               r.Float(),
		YieldRedemptionDate: r.Int(),
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.CommissionAndFeesReport(report)
	return nil
}

func (d *Decoder) processMarketDepth(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	position := r.Int()
	operation := r.Int()
	side := r.Int()
	price := r.Float()
	size := r.Decimal()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.UpdateMktDepth(reqID, position, operation, side, price, size)
	return nil
}

func (d *Decoder) processMarketDepthL2(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	position := r.Int()
	marketMaker := r.Str()
	operation := r.Int()
	side := r.Int()
	price := r.Float()
	size := r.Decimal()
	var isSmartDepth bool
	if d.serverVersion >= wire.MinServerVerSmartDepth {
		isSmartDepth = r.Bool()
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.UpdateMktDepthL2(reqID, position, marketMaker, operation, side, price, size, isSmartDepth)
	return nil
}

func (d *Decoder) processHistoricalData(r *wire.FieldReader) error {
	if d.serverVersion < wire.MinServerVerSyntRealtimeBars {
		r.Int() // version
	}
	reqID := r.Int()
	var start, end string
	if d.serverVersion < wire.MinServerVerHistoricalDataEnd {
		start = r.Str()
		end = r.Str()
	}

	n := r.Int()
	bars := make([]models.BarData, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		bar := models.BarData{
			Date:   r.Str(),
			Open:   r.Float(),
			High:   r.Float(),
			Low:    r.Float(),
			Close:  r.Float(),
			Volume: r.Decimal(),
			WAP:    r.Decimal(),
		}
		if d.serverVersion < wire.MinServerVerSyntRealtimeBars {
			r.Str() // hasGaps
		}
		bar.BarCount = r.Int()
		bars = append(bars, bar)
	}
	if err := r.Err(); err != nil {
		return err
	}

	for _, bar := range bars {
		d.wrapper.HistoricalData(reqID, bar)
	}
	if d.serverVersion < wire.MinServerVerHistoricalDataEnd {
		d.wrapper.HistoricalDataEnd(reqID, start, end)
	}
	return nil
}

func (d *Decoder) processHistoricalDataEnd(r *wire.FieldReader) error {
	reqID := r.Int()
	start := r.Str()
	end := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalDataEnd(reqID, start, end)
	return nil
}

func (d *Decoder) processHistoricalDataUpdate(r *wire.FieldReader) error {
	reqID := r.Int()
	bar := models.BarData{BarCount: r.Int()}
	bar.Date = r.Str()
	bar.Open = r.Float()
	bar.Close = r.Float()
	bar.High = r.Float()
	bar.Low = r.Float()
	bar.WAP = r.Decimal()
	bar.Volume = r.Decimal()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalDataUpdate(reqID, bar)
	return nil
}

func (d *Decoder) processRealTimeBar(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	bar := models.RealTimeBar{
		Time:   r.Int(),
		Open:   r.Float(),
		High:   r.Float(),
		Low:    r.Float(),
		Close:  r.Float(),
		Volume: r.Decimal(),
		WAP:    r.Decimal(),
		Count:  r.Int(),
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.RealtimeBar(reqID, bar)
	return nil
}

func (d *Decoder) processScannerData(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	n := r.Int()

	rows := make([]models.ScanData, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		row := models.ScanData{Rank: r.Int()}
		cd := &row.ContractDetails
		cd.Contract.ConID = r.Int()
		cd.Contract.Symbol = r.Str()
		cd.Contract.SecType = r.Str()
		cd.Contract.LastTradeDateOrContractMonth = r.Str()
		cd.Contract.Strike = r.Float()
		cd.Contract.Right = r.Str()
		cd.Contract.Exchange = r.Str()
		cd.Contract.Currency = r.Str()
		cd.Contract.LocalSymbol = r.Str()
		cd.MarketName = r.Str()
		cd.Contract.TradingClass = r.Str()
		row.Distance = r.Str()
		row.Benchmark = r.Str()
		row.Projection = r.Str()
		row.LegsStr = r.Str()
		rows = append(rows, row)
	}
	if err := r.Err(); err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		d.wrapper.ScannerData(reqID, row.Rank, &row.ContractDetails, row.Distance, row.Benchmark, row.Projection, row.LegsStr)
	}
	d.wrapper.ScannerDataEnd(reqID)
	return nil
}

func (d *Decoder) processDeltaNeutralValidation(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	dnc := models.DeltaNeutralContract{
		ConID: r.Int(),
		Delta: r.Float(),
		Price: r.Float(),
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.DeltaNeutralValidation(reqID, dnc)
	return nil
}

func (d *Decoder) processPosition(r *wire.FieldReader) error {
	version := r.Int()
	account := r.Str()

	c := &models.Contract{}
	c.ConID = r.Int()
	c.Symbol = r.Str()
	c.SecType = r.Str()
	c.LastTradeDateOrContractMonth = r.Str()
	c.Strike = r.Float()
	c.Right = r.Str()
	c.Multiplier = r.Str()
	c.Exchange = r.Str()
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	if version >= 2 {
		c.TradingClass = r.Str()
	}

	position := r.Decimal()
	var avgCost float64
	if version >= 3 {
		avgCost = r.Float()
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.Position(account, c, position, avgCost)
	return nil
}

func (d *Decoder) processPositionMulti(r *wire.FieldReader) error {
	r.Int() // version
	reqID := r.Int()
	account := r.Str()

	c := &models.Contract{}
	c.ConID = r.Int()
	c.Symbol = r.Str()
	c.SecType = r.Str()
	c.LastTradeDateOrContractMonth = r.Str()
	c.Strike = r.Float()
	c.Right = r.Str()
	c.Multiplier = r.Str()
	c.Exchange = r.Str()
	c.Currency = r.Str()
	c.LocalSymbol = r.Str()
	c.TradingClass = r.Str()

	position := r.Decimal()
	avgCost := r.Float()
	modelCode := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.PositionMulti(reqID, account, modelCode, c, position, avgCost)
	return nil
}

func (d *Decoder) processSecDefOptParam(r *wire.FieldReader) error {
	reqID := r.Int()
	exchange := r.Str()
	underlyingConID := r.Int()
	tradingClass := r.Str()
	multiplier := r.Str()

	n := r.Int()
	expirations := make([]string, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		expirations = append(expirations, r.Str())
	}
	n = r.Int()
	strikes := make([]float64, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		strikes = append(strikes, r.Float())
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.SecurityDefinitionOptionParameter(reqID, exchange, underlyingConID, tradingClass, multiplier, expirations, strikes)
	return nil
}

func (d *Decoder) processSecDefOptParamEnd(r *wire.FieldReader) error {
	reqID := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.SecurityDefinitionOptionParameterEnd(reqID)
	return nil
}

func (d *Decoder) processSoftDollarTiers(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	tiers := make([]models.SoftDollarTier, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		tiers = append(tiers, models.SoftDollarTier{Name: r.Str(), Value: r.Str(), DisplayName: r.Str()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.SoftDollarTiers(reqID, tiers)
	return nil
}

func (d *Decoder) processFamilyCodes(r *wire.FieldReader) error {
	n := r.Int()
	codes := make([]models.FamilyCode, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		codes = append(codes, models.FamilyCode{AccountID: r.Str(), FamilyCode: r.Str()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.FamilyCodes(codes)
	return nil
}

func (d *Decoder) processSymbolSamples(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	descs := make([]models.ContractDescription, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		var desc models.ContractDescription
		desc.Contract.ConID = r.Int()
		desc.Contract.Symbol = r.Str()
		desc.Contract.SecType = r.Str()
		desc.Contract.PrimaryExchange = r.Str()
		desc.Contract.Currency = r.Str()
		m := r.Int()
		for j := int64(0); j < m && r.Err() == nil; j++ {
			desc.DerivativeSecTypes = append(desc.DerivativeSecTypes, r.Str())
		}
		if d.serverVersion >= wire.MinServerVerBondIssuerID {
			desc.Contract.Description = r.Str()
			desc.Contract.IssuerID = r.Str()
		}
		descs = append(descs, desc)
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.SymbolSamples(reqID, descs)
	return nil
}

func (d *Decoder) processMktDepthExchanges(r *wire.FieldReader) error {
	n := r.Int()
	descs := make([]models.DepthMktDataDescription, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		desc := models.DepthMktDataDescription{
			Exchange: r.Str(),
			SecType:  r.Str(),
		}
		if d.serverVersion >= wire.MinServerVerServiceDataType {
			desc.ListingExch = r.Str()
			desc.ServiceDataType = r.Str()
			desc.AggGroup = r.IntMax()
		} else {
			desc.ServiceDataType = "Deep"
			if r.Bool() {
				desc.ServiceDataType = "Deep2"
			}
			desc.AggGroup = models.UnsetInt
		}
		descs = append(descs, desc)
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.MktDepthExchanges(descs)
	return nil
}

func (d *Decoder) processTickReqParams(r *wire.FieldReader) error {
	reqID := r.Int()
	minTick := r.Float()
	bboExchange := r.Str()
	snapshotPermissions := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.TickReqParams(reqID, minTick, bboExchange, snapshotPermissions)
	return nil
}

func (d *Decoder) processSmartComponents(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	comps := make([]models.SmartComponent, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		comps = append(comps, models.SmartComponent{
			BitNumber:      r.Int(),
			Exchange:       r.Str(),
			ExchangeLetter: r.Str(),
		})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.SmartComponents(reqID, comps)
	return nil
}

func (d *Decoder) processNewsArticle(r *wire.FieldReader) error {
	reqID := r.Int()
	articleType := r.Int()
	text := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.NewsArticle(reqID, articleType, text)
	return nil
}

func (d *Decoder) processTickNews(r *wire.FieldReader) error {
	reqID := r.Int()
	timestamp := r.Int()
	providerCode := r.Str()
	articleID := r.Str()
	headline := r.Str()
	extraData := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.TickNews(reqID, timestamp, providerCode, articleID, headline, extraData)
	return nil
}

func (d *Decoder) processNewsProviders(r *wire.FieldReader) error {
	n := r.Int()
	providers := make([]models.NewsProvider, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		providers = append(providers, models.NewsProvider{Code: r.Str(), Name: r.Str()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.NewsProviders(providers)
	return nil
}

func (d *Decoder) processHistoricalNews(r *wire.FieldReader) error {
	reqID := r.Int()
	time := r.Str()
	providerCode := r.Str()
	articleID := r.Str()
	headline := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalNews(reqID, time, providerCode, articleID, headline)
	return nil
}

func (d *Decoder) processHistoricalNewsEnd(r *wire.FieldReader) error {
	reqID := r.Int()
	hasMore := r.Bool()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalNewsEnd(reqID, hasMore)
	return nil
}

func (d *Decoder) processHeadTimestamp(r *wire.FieldReader) error {
	reqID := r.Int()
	ts := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HeadTimestamp(reqID, ts)
	return nil
}

func (d *Decoder) processHistogramData(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	items := make([]models.HistogramEntry, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		items = append(items, models.HistogramEntry{Price: r.Float(), Size: r.Decimal()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistogramData(reqID, items)
	return nil
}

func (d *Decoder) processRerouteMktDataReq(r *wire.FieldReader) error {
	reqID := r.Int()
	conID := r.Int()
	exchange := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.RerouteMktDataReq(reqID, conID, exchange)
	return nil
}

func (d *Decoder) processRerouteMktDepthReq(r *wire.FieldReader) error {
	reqID := r.Int()
	conID := r.Int()
	exchange := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.RerouteMktDepthReq(reqID, conID, exchange)
	return nil
}

func (d *Decoder) processMarketRule(r *wire.FieldReader) error {
	ruleID := r.Int()
	n := r.Int()
	increments := make([]models.PriceIncrement, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		increments = append(increments, models.PriceIncrement{LowEdge: r.Float(), Increment: r.Float()})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.MarketRule(ruleID, increments)
	return nil
}

func (d *Decoder) processPnL(r *wire.FieldReader) error {
	reqID := r.Int()
	daily := r.Float()
	unrealized, realized := models.UnsetFloat, models.UnsetFloat
	if d.serverVersion >= wire.MinServerVerUnrealizedPnL {
		unrealized = r.Float()
	}
	if d.serverVersion >= wire.MinServerVerRealizedPnL {
		realized = r.Float()
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.PnL(reqID, daily, unrealized, realized)
	return nil
}

func (d *Decoder) processPnLSingle(r *wire.FieldReader) error {
	reqID := r.Int()
	position := r.Decimal()
	daily := r.Float()
	unrealized, realized := models.UnsetFloat, models.UnsetFloat
	if d.serverVersion >= wire.MinServerVerUnrealizedPnL {
		unrealized = r.Float()
	}
	if d.serverVersion >= wire.MinServerVerRealizedPnL {
		realized = r.Float()
	}
	value := r.Float()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.PnLSingle(reqID, position, daily, unrealized, realized, value)
	return nil
}

func (d *Decoder) processHistoricalTicks(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	ticks := make([]models.HistoricalTick, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		t := models.HistoricalTick{Time: r.Int()}
		r.Skip(1)
		t.Price = r.Float()
		t.Size = r.Decimal()
		ticks = append(ticks, t)
	}
	done := r.Bool()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalTicks(reqID, ticks, done)
	return nil
}

func (d *Decoder) processHistoricalTicksBidAsk(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	ticks := make([]models.HistoricalTickBidAsk, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		t := models.HistoricalTickBidAsk{Time: r.Int()}
		mask := r.Int()
		t.TickAttribBidAsk = models.TickAttribBidAsk{BidPastLow: mask&1 != 0, AskPastHigh: mask&2 != 0}
		t.PriceBid = r.Float()
		t.PriceAsk = r.Float()
		t.SizeBid = r.Decimal()
		t.SizeAsk = r.Decimal()
		ticks = append(ticks, t)
	}
	done := r.Bool()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalTicksBidAsk(reqID, ticks, done)
	return nil
}

func (d *Decoder) processHistoricalTicksLast(r *wire.FieldReader) error {
	reqID := r.Int()
	n := r.Int()
	ticks := make([]models.HistoricalTickLast, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		t := models.HistoricalTickLast{Time: r.Int()}
		mask := r.Int()
		t.TickAttribLast = models.TickAttribLast{PastLimit: mask&1 != 0, Unreported: mask&2 != 0}
		t.Price = r.Float()
		t.Size = r.Decimal()
		t.Exchange = r.Str()
		t.SpecialConditions = r.Str()
		ticks = append(ticks, t)
	}
	done := r.Bool()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalTicksLast(reqID, ticks, done)
	return nil
}

// Tick-by-tick types.
const (
	tickByTickNone     = 0
	tickByTickLast     = 1
	tickByTickAllLast  = 2
	tickByTickBidAsk   = 3
	tickByTickMidPoint = 4
)

func (d *Decoder) processTickByTick(r *wire.FieldReader) error {
	reqID := r.Int()
	tickType := r.Int()
	t := r.Int()

	switch tickType {
	case tickByTickNone:
		return r.Err()
	case tickByTickLast, tickByTickAllLast:
		price := r.Float()
		size := r.Decimal()
		mask := r.Int()
		attrib := models.TickAttribLast{PastLimit: mask&1 != 0, Unreported: mask&2 != 0}
		exchange := r.Str()
		special := r.Str()
		if err := r.Err(); err != nil {
			return err
		}
		d.wrapper.TickByTickAllLast(reqID, tickType, t, price, size, attrib, exchange, special)
	case tickByTickBidAsk:
		bidPrice := r.Float()
		askPrice := r.Float()
		bidSize := r.Decimal()
		askSize := r.Decimal()
		mask := r.Int()
		attrib := models.TickAttribBidAsk{BidPastLow: mask&1 != 0, AskPastHigh: mask&2 != 0}
		if err := r.Err(); err != nil {
			return err
		}
		d.wrapper.TickByTickBidAsk(reqID, t, bidPrice, askPrice, bidSize, askSize, attrib)
	case tickByTickMidPoint:
		mid := r.Float()
		if err := r.Err(); err != nil {
			return err
		}
		d.wrapper.TickByTickMidPoint(reqID, t, mid)
	default:
		return r.Err()
	}
	return nil
}

func (d *Decoder) processReplaceFAEnd(r *wire.FieldReader) error {
	reqID := r.Int()
	text := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.ReplaceFAEnd(reqID, text)
	return nil
}

func (d *Decoder) processHistoricalSchedule(r *wire.FieldReader) error {
	reqID := r.Int()
	start := r.Str()
	end := r.Str()
	tz := r.Str()
	n := r.Int()
	sessions := make([]models.HistoricalSession, 0, sliceCap(r, n))
	for i := int64(0); i < n && r.Err() == nil; i++ {
		sessions = append(sessions, models.HistoricalSession{
			StartDateTime: r.Str(),
			EndDateTime:   r.Str(),
			RefDate:       r.Str(),
		})
	}
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.HistoricalSchedule(reqID, start, end, tz, sessions)
	return nil
}

func (d *Decoder) processUserInfo(r *wire.FieldReader) error {
	reqID := r.Int()
	brandingID := r.Str()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.UserInfo(reqID, brandingID)
	return nil
}

func (d *Decoder) processCurrentTimeInMillis(r *wire.FieldReader) error {
	ms := r.Int()
	if err := r.Err(); err != nil {
		return err
	}
	d.wrapper.CurrentTimeInMillis(ms)
	return nil
}
