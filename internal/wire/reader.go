package wire

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

// Wire spellings that mean "no decimal value".
var unsetDecimalTokens = map[string]struct{}{
	"":                       {},
	"2147483647":             {},
	"9223372036854775807":    {},
	"1.7976931348623157E308": {},
	"-9223372036854775808":   {},
}

// FieldReader walks the fields of one message. The first failure is sticky:
// later reads return zero values and Err reports the original problem.
type FieldReader struct {
	msgID   int
	fields  []string
	pos     int
	err     error
	unicode bool
}

// NewFieldReader returns a reader over fields of message msgID.
func NewFieldReader(msgID int, fields []string) *FieldReader {
	return &FieldReader{msgID: msgID, fields: fields}
}

// DecodeUnicodeEscapes enables \uXXXX decoding for Text fields.
func (r *FieldReader) DecodeUnicodeEscapes(enabled bool) {
	r.unicode = enabled
}

// Err returns the first decode failure, if any.
func (r *FieldReader) Err() error { return r.err }

// Remaining returns the number of unread fields.
func (r *FieldReader) Remaining() int { return len(r.fields) - r.pos }

// Pos returns the index of the next field.
func (r *FieldReader) Pos() int { return r.pos }

func (r *FieldReader) next() (string, bool) {
	if r.err != nil {
		return "", false
	}
	if r.pos >= len(r.fields) {
		r.err = errors.NewDecodeError(r.msgID, fieldName(r.pos), "", errors.ErrShortMessage)
		return "", false
	}
	s := r.fields[r.pos]
	r.pos++
	return s, true
}

func (r *FieldReader) fail(s string) {
	r.err = errors.NewDecodeError(r.msgID, fieldName(r.pos-1), s, errors.ErrBadField)
}

// Fail records err against the last field read unless a failure is already set.
func (r *FieldReader) Fail(err error) {
	if r.err != nil {
		return
	}
	var value string
	if r.pos > 0 && r.pos <= len(r.fields) {
		value = r.fields[r.pos-1]
	}
	r.err = errors.NewDecodeError(r.msgID, fieldName(r.pos-1), value, fmt.Errorf("%w: %v", errors.ErrBadField, err))
}

func fieldName(pos int) string { return fmt.Sprintf("#%d", pos) }

// Skip discards n fields.
func (r *FieldReader) Skip(n int) {
	for i := 0; i < n; i++ {
		if _, ok := r.next(); !ok {
			return
		}
	}
}

// Str returns the next field verbatim.
func (r *FieldReader) Str() string {
	s, _ := r.next()
	return s
}

// Text returns the next field, decoding unicode escapes when enabled.
func (r *FieldReader) Text() string {
	s, ok := r.next()
	if !ok || !r.unicode {
		return s
	}
	return UnescapeASCII7(s)
}

// Int returns the next field as an integer; empty means 0.
func (r *FieldReader) Int() int64 {
	s, ok := r.next()
	if !ok || s == "" {
		return 0
	}
	return r.parseInt(s)
}

// IntMax returns the next field as an integer; empty means models.UnsetInt.
func (r *FieldReader) IntMax() int64 {
	s, ok := r.next()
	if !ok {
		return 0
	}
	if s == "" {
		return models.UnsetInt
	}
	return r.parseInt(s)
}

// LongMax returns the next field as an integer; empty means models.UnsetLong.
func (r *FieldReader) LongMax() int64 {
	s, ok := r.next()
	if !ok {
		return 0
	}
	if s == "" {
		return models.UnsetLong
	}
	return r.parseInt(s)
}

func (r *FieldReader) parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		r.fail(s)
		return 0
	}
	return v
}

// Float returns the next field as a float; empty means 0.
func (r *FieldReader) Float() float64 {
	s, ok := r.next()
	if !ok || s == "" {
		return 0
	}
	return r.parseFloat(s)
}

// FloatMax returns the next field as a float; empty means models.UnsetFloat.
func (r *FieldReader) FloatMax() float64 {
	s, ok := r.next()
	if !ok {
		return 0
	}
	if s == "" {
		return models.UnsetFloat
	}
	return r.parseFloat(s)
}

func (r *FieldReader) parseFloat(s string) float64 {
	if s == "Infinity" {
		return math.Inf(1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(s)
		return 0
	}
	return v
}

// Bool returns the next field as a boolean. Any non-zero integer is true, and
// VERIFY_COMPLETED style "true"/"false" spellings are accepted.
func (r *FieldReader) Bool() bool {
	s, ok := r.next()
	if !ok || s == "" {
		return false
	}
	switch {
	case strings.EqualFold(s, "true"):
		return true
	case strings.EqualFold(s, "false"):
		return false
	}
	return r.parseInt(s) != 0
}

// Decimal returns the next field as a decimal, mapping unset spellings to
// models.UnsetDecimal.
func (r *FieldReader) Decimal() decimal.Decimal {
	s, ok := r.next()
	if !ok {
		return models.UnsetDecimal
	}
	return r.parseDecimal(s)
}

func (r *FieldReader) parseDecimal(s string) decimal.Decimal {
	if _, unset := unsetDecimalTokens[s]; unset {
		return models.UnsetDecimal
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		r.fail(s)
		return models.UnsetDecimal
	}
	return d
}

// ParseDecimal converts a decimal string outside of a message context.
func ParseDecimal(s string) (decimal.Decimal, error) {
	if _, unset := unsetDecimalTokens[s]; unset {
		return models.UnsetDecimal, nil
	}
	return decimal.NewFromString(s)
}
