package models

import "fmt"

// ConditionType is the wire code of an order condition.
type ConditionType int

const (
	ConditionPrice         ConditionType = 1
	ConditionTime          ConditionType = 3
	ConditionMargin        ConditionType = 4
	ConditionExecution     ConditionType = 5
	ConditionVolume        ConditionType = 6
	ConditionPercentChange ConditionType = 7
)

// OrderCondition is a condition attached to a conditional order.
type OrderCondition interface {
	Type() ConditionType
	Conjunction() bool
}

// ConditionBase holds the connector shared by every condition ("a" = and, "o" = or).
type ConditionBase struct {
	IsConjunction bool
}

// Conjunction reports whether the condition is and-ed with the next one.
func (c ConditionBase) Conjunction() bool { return c.IsConjunction }

// OperatorCondition compares a value against a threshold.
type OperatorCondition struct {
	ConditionBase
	IsMore bool
}

// ContractCondition is an operator condition on a contract's market data.
type ContractCondition struct {
	OperatorCondition
	ConID    int64
	Exchange string
}

type PriceCondition struct {
	ContractCondition
	Price         float64
	TriggerMethod int64
}

func (*PriceCondition) Type() ConditionType { return ConditionPrice }

type TimeCondition struct {
	OperatorCondition
	Time string
}

func (*TimeCondition) Type() ConditionType { return ConditionTime }

type MarginCondition struct {
	OperatorCondition
	Percent int64
}

func (*MarginCondition) Type() ConditionType { return ConditionMargin }

type ExecutionCondition struct {
	ConditionBase
	SecType  string
	Exchange string
	Symbol   string
}

func (*ExecutionCondition) Type() ConditionType { return ConditionExecution }

type VolumeCondition struct {
	ContractCondition
	Volume int64
}

func (*VolumeCondition) Type() ConditionType { return ConditionVolume }

type PercentChangeCondition struct {
	ContractCondition
	ChangePercent float64
}

func (*PercentChangeCondition) Type() ConditionType { return ConditionPercentChange }

// NewCondition creates an empty condition of the given wire type.
func NewCondition(t ConditionType) (OrderCondition, error) {
	switch t {
	case ConditionPrice:
		return &PriceCondition{}, nil
	case ConditionTime:
		return &TimeCondition{}, nil
	case ConditionMargin:
		return &MarginCondition{}, nil
	case ConditionExecution:
		return &ExecutionCondition{}, nil
	case ConditionVolume:
		return &VolumeCondition{}, nil
	case ConditionPercentChange:
		return &PercentChangeCondition{}, nil
	}
	return nil, fmt.Errorf("unknown order condition type %d", int(t))
}
