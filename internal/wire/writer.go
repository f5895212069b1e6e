package wire

import (
	"bytes"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"ib-trader/internal/models"
)

// FieldWriter builds an outbound message. Each value is written followed by a
// NUL terminator.
type FieldWriter struct {
	buf bytes.Buffer
}

// NewMessage starts a message with msgID encoded for serverVersion.
func NewMessage(msgID, serverVersion int) *FieldWriter {
	w := &FieldWriter{}
	w.buf.Write(EncodeMsgID(msgID, serverVersion))
	return w
}

func (w *FieldWriter) field(s string) *FieldWriter {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
	return w
}

// String writes s.
func (w *FieldWriter) String(s string) *FieldWriter { return w.field(s) }

// Int writes v.
func (w *FieldWriter) Int(v int64) *FieldWriter { return w.field(strconv.FormatInt(v, 10)) }

// IntMax writes v, or an empty field when v is unset.
func (w *FieldWriter) IntMax(v int64) *FieldWriter {
	if v == models.UnsetInt || v == models.UnsetLong {
		return w.field("")
	}
	return w.Int(v)
}

// Float writes v.
func (w *FieldWriter) Float(v float64) *FieldWriter {
	if math.IsInf(v, 1) {
		return w.field("Infinity")
	}
	return w.field(strconv.FormatFloat(v, 'f', -1, 64))
}

// FloatMax writes v, or an empty field when v is unset.
func (w *FieldWriter) FloatMax(v float64) *FieldWriter {
	if v == models.UnsetFloat {
		return w.field("")
	}
	return w.Float(v)
}

// Bool writes 1 or 0.
func (w *FieldWriter) Bool(v bool) *FieldWriter {
	if v {
		return w.field("1")
	}
	return w.field("0")
}

// Decimal writes d, or an empty field when d is unset.
func (w *FieldWriter) Decimal(d decimal.Decimal) *FieldWriter {
	if models.IsUnsetDecimal(d) {
		return w.field("")
	}
	return w.field(d.String())
}

// TagValues writes a tag/value list as a single "tag=value;" field.
func (w *FieldWriter) TagValues(tvs []models.TagValue) *FieldWriter {
	var b bytes.Buffer
	for _, tv := range tvs {
		b.WriteString(tv.String())
	}
	return w.field(b.String())
}

// Payload returns the message body without the length prefix.
func (w *FieldWriter) Payload() []byte { return w.buf.Bytes() }

// Frame returns the length-prefixed message ready to send.
func (w *FieldWriter) Frame() []byte { return MakeMsg(w.buf.Bytes()) }
