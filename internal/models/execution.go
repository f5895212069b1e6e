package models

import "github.com/shopspring/decimal"

// Execution is a single fill reported by EXECUTION_DATA.
type Execution struct {
	ExecID               string
	Time                 string
	AcctNumber           string
	Exchange             string
	Side                 string
	Shares               decimal.Decimal
	Price                float64
	PermID               int64
	ClientID             int64
	OrderID              int64
	Liquidation          int64
	CumQty               decimal.Decimal
	AvgPrice             float64
	OrderRef             string
	EvRule               string
	EvMultiplier         float64
	ModelCode            string
	LastLiquidity        int64
	PendingPriceRevision bool
	Submitter            string
}

// NewExecution returns an execution with decimal quantities unset.
func NewExecution() *Execution {
	return &Execution{
		Shares: UnsetDecimal,
		CumQty: UnsetDecimal,
	}
}

// ExecutionFilter narrows a REQ_EXECUTIONS request.
type ExecutionFilter struct {
	ClientID      int64
	AcctCode      string
	Time          string
	Symbol        string
	SecType       string
	Exchange      string
	Side          string
	LastNDays     int64
	SpecificDates []int64
}

// NewExecutionFilter returns a filter that matches everything.
func NewExecutionFilter() ExecutionFilter {
	return ExecutionFilter{LastNDays: UnsetInt}
}

// CommissionAndFeesReport is sent after each execution once commissions are known.
type CommissionAndFeesReport struct {
	ExecID              string
	CommissionAndFees   float64
	Currency            string
	RealizedPNL         float64
	Yield               float64
	YieldRedemptionDate int64
}
