package models

import "github.com/shopspring/decimal"

// Order origin codes.
const (
	OriginCustomer int64 = 0
	OriginFirm     int64 = 1
)

// OrderComboLeg carries the per-leg price of a combo order.
type OrderComboLeg struct {
	Price float64
}

// SoftDollarTier identifies a soft dollar commission tier.
type SoftDollarTier struct {
	Name        string
	Value       string
	DisplayName string
}

// Order is an order as reported back by OPEN_ORDER and COMPLETED_ORDER.
type Order struct {
	// Identity
	OrderID      int64
	ClientID     int64
	PermID       int64
	ParentID     int64
	ParentPermID int64

	// Main order fields
	Action        string
	TotalQuantity decimal.Decimal
	OrderType     string
	LmtPrice      float64
	AuxPrice      float64

	// Extended order fields
	TIF                  string
	ActiveStartTime      string
	ActiveStopTime       string
	OcaGroup             string
	OcaType              int64
	OrderRef             string
	Transmit             bool
	BlockOrder           bool
	SweepToFill          bool
	DisplaySize          int64
	TriggerMethod        int64
	OutsideRTH           bool
	Hidden               bool
	GoodAfterTime        string
	GoodTillDate         string
	Rule80A              string
	AllOrNone            bool
	MinQty               int64
	PercentOffset        float64
	TrailStopPrice       float64
	TrailingPercent      float64
	Account              string
	SettlingFirm         string
	ClearingAccount      string
	ClearingIntent       string
	OpenClose            string
	Origin               int64
	ShortSaleSlot        int64
	DesignatedLocation   string
	ExemptCode           int64
	DiscretionaryAmt     float64
	OptOutSmartRouting   bool
	AuctionStrategy      int64
	StartingPrice        float64
	StockRefPrice        float64
	Delta                float64
	StockRangeLower      float64
	StockRangeUpper      float64
	RandomizeSize        bool
	RandomizePrice       bool
	WhatIf               bool
	NotHeld              bool
	Solicited            bool
	ModelCode            string
	CashQty              float64
	FilledQuantity       decimal.Decimal
	RefFuturesConID      int64
	AutoCancelDate       string
	AutoCancelParent     bool
	Shareholder          string
	ImbalanceOnly        bool
	RouteMarketableToBbo bool
	UsePriceMgmtAlgo     bool
	Duration             int64
	PostToAts            int64
	CustomerAccount      string
	ProfessionalCustomer bool
	BondAccruedInterest  string
	IncludeOvernight     bool
	ManualOrderIndicator int64
	ExtOperator          string
	Submitter            string

	// Financial advisor
	FAGroup      string
	FAMethod     string
	FAPercentage string

	// Volatility orders
	Volatility                     float64
	VolatilityType                 int64
	DeltaNeutralOrderType          string
	DeltaNeutralAuxPrice           float64
	DeltaNeutralConID              int64
	DeltaNeutralSettlingFirm       string
	DeltaNeutralClearingAccount    string
	DeltaNeutralClearingIntent     string
	DeltaNeutralOpenClose          string
	DeltaNeutralShortSale          bool
	DeltaNeutralShortSaleSlot      int64
	DeltaNeutralDesignatedLocation string
	ContinuousUpdate               bool
	ReferencePriceType             int64

	// Combo orders
	BasisPoints             float64
	BasisPointsType         int64
	OrderComboLegs          []OrderComboLeg
	SmartComboRoutingParams []TagValue

	// Scale orders
	ScaleInitLevelSize       int64
	ScaleSubsLevelSize       int64
	ScalePriceIncrement      float64
	ScalePriceAdjustValue    float64
	ScalePriceAdjustInterval int64
	ScaleProfitOffset        float64
	ScaleAutoReset           bool
	ScaleInitPosition        int64
	ScaleInitFillQty         int64
	ScaleRandomPercent       bool

	// Hedge orders
	HedgeType                string
	HedgeParam               string
	DontUseAutoPriceForHedge bool

	// Algo orders
	AlgoStrategy string
	AlgoParams   []TagValue

	// Pegged to benchmark
	ReferenceContractID          int64
	IsPeggedChangeAmountDecrease bool
	PeggedChangeAmount           float64
	ReferenceChangeAmount        float64
	ReferenceExchangeID          string

	// Adjusted orders
	AdjustedOrderType      string
	TriggerPrice           float64
	LmtPriceOffset         float64
	AdjustedStopPrice      float64
	AdjustedStopLimitPrice float64
	AdjustedTrailingAmount float64
	AdjustableTrailingUnit int64

	// Conditions
	Conditions            []OrderCondition
	ConditionsIgnoreRTH   bool
	ConditionsCancelOrder bool

	SoftDollarTier              SoftDollarTier
	IsOmsContainer              bool
	DiscretionaryUpToLimitPrice bool

	// Peg best / peg mid
	MinTradeQty              int64
	MinCompeteSize           int64
	CompeteAgainstBestOffset float64
	MidOffsetAtWhole         float64
	MidOffsetAtHalf          float64
}

// NewOrder returns an order with every optional numeric field unset.
func NewOrder() *Order {
	return &Order{
		TotalQuantity:            UnsetDecimal,
		LmtPrice:                 UnsetFloat,
		AuxPrice:                 UnsetFloat,
		Transmit:                 true,
		MinQty:                   UnsetInt,
		PercentOffset:            UnsetFloat,
		TrailStopPrice:           UnsetFloat,
		TrailingPercent:          UnsetFloat,
		ExemptCode:               -1,
		StartingPrice:            UnsetFloat,
		StockRefPrice:            UnsetFloat,
		Delta:                    UnsetFloat,
		StockRangeLower:          UnsetFloat,
		StockRangeUpper:          UnsetFloat,
		Volatility:               UnsetFloat,
		VolatilityType:           UnsetInt,
		DeltaNeutralAuxPrice:     UnsetFloat,
		ReferencePriceType:       UnsetInt,
		BasisPoints:              UnsetFloat,
		BasisPointsType:          UnsetInt,
		ScaleInitLevelSize:       UnsetInt,
		ScaleSubsLevelSize:       UnsetInt,
		ScalePriceIncrement:      UnsetFloat,
		ScalePriceAdjustValue:    UnsetFloat,
		ScalePriceAdjustInterval: UnsetInt,
		ScaleProfitOffset:        UnsetFloat,
		ScaleInitPosition:        UnsetInt,
		ScaleInitFillQty:         UnsetInt,
		TriggerPrice:             UnsetFloat,
		LmtPriceOffset:           UnsetFloat,
		AdjustedStopPrice:        UnsetFloat,
		AdjustedStopLimitPrice:   UnsetFloat,
		AdjustedTrailingAmount:   UnsetFloat,
		CashQty:                  UnsetFloat,
		FilledQuantity:           UnsetDecimal,
		ParentPermID:             UnsetLong,
		Duration:                 UnsetInt,
		PostToAts:                UnsetInt,
		MinTradeQty:              UnsetInt,
		MinCompeteSize:           UnsetInt,
		CompeteAgainstBestOffset: UnsetFloat,
		MidOffsetAtWhole:         UnsetFloat,
		MidOffsetAtHalf:          UnsetFloat,
		ManualOrderIndicator:     UnsetInt,
	}
}

// OrderAllocation is the per-account allocation preview of an FA order.
type OrderAllocation struct {
	Account         string
	Position        decimal.Decimal
	PositionDesired decimal.Decimal
	PositionAfter   decimal.Decimal
	DesiredAllocQty decimal.Decimal
	AllowedAllocQty decimal.Decimal
	IsMonetary      bool
}

// OrderState is the status and margin impact of an order.
type OrderState struct {
	Status string

	InitMarginBefore     string
	MaintMarginBefore    string
	EquityWithLoanBefore string
	InitMarginChange     string
	MaintMarginChange    string
	EquityWithLoanChange string
	InitMarginAfter      string
	MaintMarginAfter     string
	EquityWithLoanAfter  string

	CommissionAndFees         float64
	MinCommissionAndFees      float64
	MaxCommissionAndFees      float64
	CommissionAndFeesCurrency string
	MarginCurrency            string

	InitMarginBeforeOutsideRTH     float64
	MaintMarginBeforeOutsideRTH    float64
	EquityWithLoanBeforeOutsideRTH float64
	InitMarginChangeOutsideRTH     float64
	MaintMarginChangeOutsideRTH    float64
	EquityWithLoanChangeOutsideRTH float64
	InitMarginAfterOutsideRTH      float64
	MaintMarginAfterOutsideRTH     float64
	EquityWithLoanAfterOutsideRTH  float64

	SuggestedSize    decimal.Decimal
	RejectReason     string
	OrderAllocations []OrderAllocation
	WarningText      string
	CompletedTime    string
	CompletedStatus  string
}

// NewOrderState returns a state with commission and outside-RTH margins unset.
func NewOrderState() *OrderState {
	return &OrderState{
		CommissionAndFees:              UnsetFloat,
		MinCommissionAndFees:           UnsetFloat,
		MaxCommissionAndFees:           UnsetFloat,
		InitMarginBeforeOutsideRTH:     UnsetFloat,
		MaintMarginBeforeOutsideRTH:    UnsetFloat,
		EquityWithLoanBeforeOutsideRTH: UnsetFloat,
		InitMarginChangeOutsideRTH:     UnsetFloat,
		MaintMarginChangeOutsideRTH:    UnsetFloat,
		EquityWithLoanChangeOutsideRTH: UnsetFloat,
		InitMarginAfterOutsideRTH:      UnsetFloat,
		MaintMarginAfterOutsideRTH:     UnsetFloat,
		EquityWithLoanAfterOutsideRTH:  UnsetFloat,
		SuggestedSize:                  UnsetDecimal,
	}
}
