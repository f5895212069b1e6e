package stream

import (
	"time"

	"github.com/shopspring/decimal"

	"ib-trader/internal/decoder"
	"ib-trader/internal/models"
)

// TickWrapper turns market data callbacks into TickEvents on a Hub and passes
// every callback on to the downstream wrapper.
type TickWrapper struct {
	decoder.Wrapper
	hub *Hub
	now func() time.Time
}

// NewTickWrapper wraps downstream, publishing to hub.
func NewTickWrapper(hub *Hub, downstream decoder.Wrapper) *TickWrapper {
	return &TickWrapper{Wrapper: downstream, hub: hub, now: time.Now}
}

func (w *TickWrapper) TickPrice(reqID int64, tickType models.TickType, price float64, attrib models.TickAttrib) {
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindPrice,
		TickType:  tickType,
		Price:     price,
		Size:      models.UnsetDecimal,
		Timestamp: w.now(),
	})
	w.Wrapper.TickPrice(reqID, tickType, price, attrib)
}

func (w *TickWrapper) TickSize(reqID int64, tickType models.TickType, size decimal.Decimal) {
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindSize,
		TickType:  tickType,
		Price:     models.UnsetFloat,
		Size:      size,
		Timestamp: w.now(),
	})
	w.Wrapper.TickSize(reqID, tickType, size)
}

func (w *TickWrapper) TickByTickAllLast(reqID int64, tickType int64, t int64, price float64, size decimal.Decimal, attrib models.TickAttribLast, exchange, specialConditions string) {
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindLast,
		TickType:  models.TickNotSet,
		Price:     price,
		Size:      size,
		Timestamp: time.Unix(t, 0),
	})
	w.Wrapper.TickByTickAllLast(reqID, tickType, t, price, size, attrib, exchange, specialConditions)
}

func (w *TickWrapper) TickByTickBidAsk(reqID int64, t int64, bidPrice, askPrice float64, bidSize, askSize decimal.Decimal, attrib models.TickAttribBidAsk) {
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindBidAsk,
		TickType:  models.TickNotSet,
		BidPrice:  bidPrice,
		AskPrice:  askPrice,
		BidSize:   bidSize,
		AskSize:   askSize,
		Timestamp: time.Unix(t, 0),
	})
	w.Wrapper.TickByTickBidAsk(reqID, t, bidPrice, askPrice, bidSize, askSize, attrib)
}

func (w *TickWrapper) TickByTickMidPoint(reqID int64, t int64, midPoint float64) {
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindMidPoint,
		TickType:  models.TickNotSet,
		Price:     midPoint,
		Size:      models.UnsetDecimal,
		Timestamp: time.Unix(t, 0),
	})
	w.Wrapper.TickByTickMidPoint(reqID, t, midPoint)
}

func (w *TickWrapper) RealtimeBar(reqID int64, bar models.RealTimeBar) {
	b := bar
	w.hub.Publish(models.TickEvent{
		ReqID:     reqID,
		Kind:      models.TickKindRealTime,
		TickType:  models.TickNotSet,
		Price:     bar.Close,
		Size:      bar.Volume,
		Bar:       &b,
		Timestamp: time.Unix(bar.Time, 0),
	})
	w.Wrapper.RealtimeBar(reqID, bar)
}
