package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ComboLeg is one leg of a BAG contract.
type ComboLeg struct {
	ConID              int64
	Ratio              int64
	Action             string // BUY, SELL, SSHORT
	Exchange           string
	OpenClose          int64
	ShortSaleSlot      int64
	DesignatedLocation string
	ExemptCode         int64
}

// DeltaNeutralContract describes the hedge leg of a delta neutral order.
type DeltaNeutralContract struct {
	ConID int64
	Delta float64
	Price float64
}

// Contract identifies a tradeable instrument.
type Contract struct {
	ConID                        int64
	Symbol                       string
	SecType                      string
	LastTradeDateOrContractMonth string
	LastTradeDate                string
	Strike                       float64
	Right                        string
	Multiplier                   string
	Exchange                     string
	PrimaryExchange              string
	Currency                     string
	LocalSymbol                  string
	TradingClass                 string
	IncludeExpired               bool
	SecIDType                    string
	SecID                        string
	Description                  string
	IssuerID                     string

	ComboLegsDescrip     string
	ComboLegs            []ComboLeg
	DeltaNeutralContract *DeltaNeutralContract
}

func (c Contract) String() string {
	s := fmt.Sprintf("%d,%s,%s", c.ConID, c.Symbol, c.SecType)
	if c.LastTradeDateOrContractMonth != "" {
		s += "," + c.LastTradeDateOrContractMonth
	}
	if c.Strike != 0 {
		s += fmt.Sprintf(",%g", c.Strike)
	}
	if c.Right != "" {
		s += "," + c.Right
	}
	if c.Exchange != "" {
		s += "," + c.Exchange
	}
	if c.Currency != "" {
		s += "," + c.Currency
	}
	return s
}

// IneligibilityReason explains why a contract cannot be traded by this account.
type IneligibilityReason struct {
	ID          string
	Description string
}

// ContractDetails carries everything CONTRACT_DATA sends about a contract.
type ContractDetails struct {
	Contract               Contract
	MarketName             string
	MinTick                float64
	OrderTypes             string
	ValidExchanges         string
	PriceMagnifier         int64
	UnderConID             int64
	LongName               string
	ContractMonth          string
	Industry               string
	Category               string
	Subcategory            string
	TimeZoneID             string
	TradingHours           string
	LiquidHours            string
	EvRule                 string
	EvMultiplier           float64
	AggGroup               int64
	UnderSymbol            string
	UnderSecType           string
	MarketRuleIDs          string
	RealExpirationDate     string
	LastTradeTime          string
	StockType              string
	MinSize                decimal.Decimal
	SizeIncrement          decimal.Decimal
	SuggestedSizeIncrement decimal.Decimal
	SecIDList              []TagValue

	// Bond fields.
	Cusip             string
	Ratings           string
	DescAppend        string
	BondType          string
	CouponType        string
	Callable          bool
	Putable           bool
	Coupon            float64
	Convertible       bool
	Maturity          string
	IssueDate         string
	NextOptionDate    string
	NextOptionType    string
	NextOptionPartial bool
	Notes             string

	// Fund fields.
	FundName                        string
	FundFamily                      string
	FundType                        string
	FundFrontLoad                   string
	FundBackLoad                    string
	FundBackLoadTimeInterval        string
	FundManagementFee               string
	FundClosed                      bool
	FundClosedForNewInvestors       bool
	FundClosedForNewMoney           bool
	FundNotifyAmount                string
	FundMinimumInitialPurchase      string
	FundSubsequentMinimumPurchase   string
	FundBlueSkyStates               string
	FundBlueSkyTerritories          string
	FundDistributionPolicyIndicator string
	FundAssetType                   string

	IneligibilityReasons []IneligibilityReason
}

// NewContractDetails returns details with decimal sizes unset.
func NewContractDetails() *ContractDetails {
	return &ContractDetails{
		MinSize:                UnsetDecimal,
		SizeIncrement:          UnsetDecimal,
		SuggestedSizeIncrement: UnsetDecimal,
	}
}

// ContractDescription is one match returned by a symbol search.
type ContractDescription struct {
	Contract           Contract
	DerivativeSecTypes []string
}
