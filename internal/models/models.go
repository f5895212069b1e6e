// Package models provides domain models decoded from the TWS API.
package models

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Unset sentinels. The protocol distinguishes "never set" from an explicit zero, so
// numeric fields that can be absent carry these values instead of 0.
const (
	UnsetInt   = math.MaxInt32
	UnsetLong  = math.MaxInt64
	UnsetFloat = math.MaxFloat64
)

// UnsetDecimal marks a decimal quantity that was not sent (2^127-1).
var UnsetDecimal = decimal.RequireFromString("170141183460469231731687303715884105727")

// IsUnsetDecimal reports whether d is the unset decimal sentinel.
func IsUnsetDecimal(d decimal.Decimal) bool {
	return d.Equal(UnsetDecimal)
}

// TagValue is a generic key/value pair used for algo params, sec id lists and options.
type TagValue struct {
	Tag   string
	Value string
}

func (tv TagValue) String() string {
	return tv.Tag + "=" + tv.Value + ";"
}

// TickType identifies the market data field a tick updates.
type TickType int

const (
	TickBidSize              TickType = 0
	TickBid                  TickType = 1
	TickAsk                  TickType = 2
	TickAskSize              TickType = 3
	TickLast                 TickType = 4
	TickLastSize             TickType = 5
	TickHigh                 TickType = 6
	TickLow                  TickType = 7
	TickVolume               TickType = 8
	TickClose                TickType = 9
	TickBidOptComp           TickType = 10
	TickAskOptComp           TickType = 11
	TickLastOptComp          TickType = 12
	TickModelOption          TickType = 13
	TickOpen                 TickType = 14
	TickLow13Week            TickType = 15
	TickHigh13Week           TickType = 16
	TickLow26Week            TickType = 17
	TickHigh26Week           TickType = 18
	TickLow52Week            TickType = 19
	TickHigh52Week           TickType = 20
	TickAvgVolume            TickType = 21
	TickOpenInterest         TickType = 22
	TickOptionHistoricalVol  TickType = 23
	TickOptionImpliedVol     TickType = 24
	TickIndexFuturePremium   TickType = 31
	TickBidExch              TickType = 32
	TickAskExch              TickType = 33
	TickAuctionVolume        TickType = 34
	TickAuctionPrice         TickType = 35
	TickAuctionImbalance     TickType = 36
	TickMarkPrice            TickType = 37
	TickLastTimestamp        TickType = 45
	TickShortable            TickType = 46
	TickRTVolume             TickType = 48
	TickHalted               TickType = 49
	TickTradeCount           TickType = 54
	TickTradeRate            TickType = 55
	TickVolumeRate           TickType = 56
	TickLastRTHTrade         TickType = 57
	TickRTHistoricalVol      TickType = 58
	TickIBDividends          TickType = 59
	TickNews                 TickType = 62
	TickShortTermVolume3Min  TickType = 63
	TickShortTermVolume5Min  TickType = 64
	TickShortTermVolume10Min TickType = 65
	TickDelayedBid           TickType = 66
	TickDelayedAsk           TickType = 67
	TickDelayedLast          TickType = 68
	TickDelayedBidSize       TickType = 69
	TickDelayedAskSize       TickType = 70
	TickDelayedLastSize      TickType = 71
	TickDelayedHigh          TickType = 72
	TickDelayedLow           TickType = 73
	TickDelayedVolume        TickType = 74
	TickDelayedClose         TickType = 75
	TickDelayedOpen          TickType = 76
	TickDelayedModelOption   TickType = 83
	TickShortableShares      TickType = 89
	TickNotSet               TickType = 90
)

var tickTypeNames = map[TickType]string{
	TickBidSize:              "bidSize",
	TickBid:                  "bidPrice",
	TickAsk:                  "askPrice",
	TickAskSize:              "askSize",
	TickLast:                 "lastPrice",
	TickLastSize:             "lastSize",
	TickHigh:                 "high",
	TickLow:                  "low",
	TickVolume:               "volume",
	TickClose:                "close",
	TickBidOptComp:           "bidOptComp",
	TickAskOptComp:           "askOptComp",
	TickLastOptComp:          "lastOptComp",
	TickModelOption:          "modelOptComp",
	TickOpen:                 "open",
	TickLow13Week:            "13WeekLow",
	TickHigh13Week:           "13WeekHigh",
	TickLow26Week:            "26WeekLow",
	TickHigh26Week:           "26WeekHigh",
	TickLow52Week:            "52WeekLow",
	TickHigh52Week:           "52WeekHigh",
	TickAvgVolume:            "AvgVolume",
	TickOpenInterest:         "OpenInterest",
	TickOptionHistoricalVol:  "OptionHistoricalVolatility",
	TickOptionImpliedVol:     "OptionImpliedVolatility",
	TickIndexFuturePremium:   "indexFuturePremium",
	TickBidExch:              "bidExch",
	TickAskExch:              "askExch",
	TickAuctionVolume:        "auctionVolume",
	TickAuctionPrice:         "auctionPrice",
	TickAuctionImbalance:     "auctionImbalance",
	TickMarkPrice:            "markPrice",
	TickLastTimestamp:        "lastTimestamp",
	TickShortable:            "shortable",
	TickRTVolume:             "RTVolume",
	TickHalted:               "halted",
	TickTradeCount:           "tradeCount",
	TickTradeRate:            "tradeRate",
	TickVolumeRate:           "volumeRate",
	TickLastRTHTrade:         "lastRTHTrade",
	TickRTHistoricalVol:      "RTHistoricalVol",
	TickIBDividends:          "IBDividends",
	TickNews:                 "newsTick",
	TickShortTermVolume3Min:  "shortTermVolume3Min",
	TickShortTermVolume5Min:  "shortTermVolume5Min",
	TickShortTermVolume10Min: "shortTermVolume10Min",
	TickDelayedBid:           "delayedBid",
	TickDelayedAsk:           "delayedAsk",
	TickDelayedLast:          "delayedLast",
	TickDelayedBidSize:       "delayedBidSize",
	TickDelayedAskSize:       "delayedAskSize",
	TickDelayedLastSize:      "delayedLastSize",
	TickDelayedHigh:          "delayedHigh",
	TickDelayedLow:           "delayedLow",
	TickDelayedVolume:        "delayedVolume",
	TickDelayedClose:         "delayedClose",
	TickDelayedOpen:          "delayedOpen",
	TickDelayedModelOption:   "delayedModelOption",
	TickShortableShares:      "shortableShares",
	TickNotSet:               "notSet",
}

func (t TickType) String() string {
	if name, ok := tickTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tickType(%d)", int(t))
}

// SizeTickFor returns the size tick TWS implies alongside a price tick, or TickNotSet.
func SizeTickFor(priceTick TickType) TickType {
	switch priceTick {
	case TickBid:
		return TickBidSize
	case TickAsk:
		return TickAskSize
	case TickLast:
		return TickLastSize
	case TickDelayedBid:
		return TickDelayedBidSize
	case TickDelayedAsk:
		return TickDelayedAskSize
	case TickDelayedLast:
		return TickDelayedLastSize
	}
	return TickNotSet
}
