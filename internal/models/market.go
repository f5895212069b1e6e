package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BarData is one historical bar.
type BarData struct {
	Date     string
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   decimal.Decimal
	WAP      decimal.Decimal
	BarCount int64
}

// RealTimeBar is a 5 second bar from REAL_TIME_BARS.
type RealTimeBar struct {
	Time   int64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume decimal.Decimal
	WAP    decimal.Decimal
	Count  int64
}

// TickAttrib flags attached to a price tick.
type TickAttrib struct {
	CanAutoExecute bool
	PastLimit      bool
	PreOpen        bool
}

// TickAttribLast flags attached to a last-trade tick.
type TickAttribLast struct {
	PastLimit  bool
	Unreported bool
}

// TickAttribBidAsk flags attached to a bid/ask tick.
type TickAttribBidAsk struct {
	BidPastLow  bool
	AskPastHigh bool
}

type HistoricalTick struct {
	Time  int64
	Price float64
	Size  decimal.Decimal
}

type HistoricalTickBidAsk struct {
	Time             int64
	TickAttribBidAsk TickAttribBidAsk
	PriceBid         float64
	PriceAsk         float64
	SizeBid          decimal.Decimal
	SizeAsk          decimal.Decimal
}

type HistoricalTickLast struct {
	Time              int64
	TickAttribLast    TickAttribLast
	Price             float64
	Size              decimal.Decimal
	Exchange          string
	SpecialConditions string
}

type HistogramEntry struct {
	Price float64
	Size  decimal.Decimal
}

type PriceIncrement struct {
	LowEdge   float64
	Increment float64
}

type FamilyCode struct {
	AccountID  string
	FamilyCode string
}

type DepthMktDataDescription struct {
	Exchange        string
	SecType         string
	ListingExch     string
	ServiceDataType string
	AggGroup        int64
}

type NewsProvider struct {
	Code string
	Name string
}

// SmartComponent maps a SMART routing bit to an exchange.
type SmartComponent struct {
	BitNumber      int64
	Exchange       string
	ExchangeLetter string
}

type HistoricalSession struct {
	StartDateTime string
	EndDateTime   string
	RefDate       string
}

// ScanData is one row of a market scanner result.
type ScanData struct {
	Rank            int64
	ContractDetails ContractDetails
	Distance        string
	Benchmark       string
	Projection      string
	LegsStr         string
}

// TickKind classifies a TickEvent.
type TickKind string

const (
	TickKindPrice    TickKind = "price"
	TickKindSize     TickKind = "size"
	TickKindLast     TickKind = "last"
	TickKindBidAsk   TickKind = "bidask"
	TickKindMidPoint TickKind = "midpoint"
	TickKindRealTime TickKind = "bar"
)

// TickEvent is a normalized market data update keyed by request id.
type TickEvent struct {
	ReqID     int64
	Kind      TickKind
	TickType  TickType
	Price     float64
	Size      decimal.Decimal
	BidPrice  float64
	AskPrice  float64
	BidSize   decimal.Decimal
	AskSize   decimal.Decimal
	Bar       *RealTimeBar
	Timestamp time.Time
}
