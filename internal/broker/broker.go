// Package broker connects to TWS or IB Gateway: it owns the socket, encodes
// requests and offers a blocking facade over the callback API.
package broker

import (
	"time"

	"ib-trader/internal/models"
	"ib-trader/internal/wire"
	"ib-trader/pkg/utils"
)

// Config holds connection settings for a Client.
type Config struct {
	Host     string
	Port     int
	ClientID int64

	// ConnectOptions is appended to the handshake version range (e.g. "+PACEAPI").
	ConnectOptions string
	// OptionalCapabilities is sent with START_API.
	OptionalCapabilities string

	MinVersion     int
	MaxVersion     int
	ConnectTimeout time.Duration

	// MessagesPerSecond throttles outbound messages. TWS disconnects clients that
	// exceed 50 per second.
	MessagesPerSecond float64

	// CapturePath, when set, receives every inbound frame for later replay.
	CapturePath string

	Reconnect bool
	Retry     utils.RetryConfig
}

// DefaultConfig returns settings for a local TWS paper session.
func DefaultConfig() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              7497,
		ClientID:          0,
		MinVersion:        wire.MinClientVer,
		MaxVersion:        wire.MaxClientVer,
		ConnectTimeout:    10 * time.Second,
		MessagesPerSecond: 45,
		Retry:             utils.DefaultRetryConfig(),
	}
}

// HistoricalDataRequest describes a REQ_HISTORICAL_DATA call.
type HistoricalDataRequest struct {
	EndDateTime string
	Duration    string
	BarSize     string
	WhatToShow  string
	UseRTH      bool
	FormatDate  int64
}

// OrderCancel carries the optional fields of a cancel request.
type OrderCancel struct {
	ManualOrderCancelTime string
	ExtOperator           string
	ManualOrderIndicator  int64
}

// NewOrderCancel returns a cancel with no manual order indicator.
func NewOrderCancel() OrderCancel {
	return OrderCancel{ManualOrderIndicator: models.UnsetInt}
}
