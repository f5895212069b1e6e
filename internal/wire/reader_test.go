package wire

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
)

func TestFieldReaderScalars(t *testing.T) {
	r := NewFieldReader(1, []string{"42", "", "1.5", "", "Infinity", "1", "0", "", "abc"})

	assert.Equal(t, int64(42), r.Int())
	assert.Equal(t, int64(models.UnsetInt), r.IntMax())
	assert.Equal(t, 1.5, r.Float())
	assert.Equal(t, models.UnsetFloat, r.FloatMax())
	assert.True(t, math.IsInf(r.Float(), 1))
	assert.True(t, r.Bool())
	assert.False(t, r.Bool())
	assert.Equal(t, int64(models.UnsetLong), r.LongMax())
	assert.Equal(t, "abc", r.Str())
	assert.Equal(t, 0, r.Remaining())
	assert.NoError(t, r.Err())
}

func TestFieldReaderDecimalUnsetSpellings(t *testing.T) {
	spellings := []string{"", "2147483647", "9223372036854775807", "1.7976931348623157E308", "-9223372036854775808"}
	for _, s := range spellings {
		r := NewFieldReader(2, []string{s})
		assert.True(t, models.IsUnsetDecimal(r.Decimal()), "spelling %q", s)
		assert.NoError(t, r.Err())
	}

	r := NewFieldReader(2, []string{"0.25"})
	assert.True(t, decimal.RequireFromString("0.25").Equal(r.Decimal()))
}

func TestFieldReaderBoolSpellings(t *testing.T) {
	r := NewFieldReader(5, []string{"true", "FALSE", "2", "", "-1"})
	assert.True(t, r.Bool())
	assert.False(t, r.Bool())
	assert.True(t, r.Bool())
	assert.False(t, r.Bool())
	assert.True(t, r.Bool())
	assert.NoError(t, r.Err())

	r = NewFieldReader(5, []string{"yes"})
	r.Bool()
	assert.True(t, errors.Is(r.Err(), errors.ErrBadField))
}

func TestFieldReaderShortMessageIsSticky(t *testing.T) {
	r := NewFieldReader(3, []string{"7"})
	assert.Equal(t, int64(7), r.Int())
	assert.Equal(t, "", r.Str())
	assert.Equal(t, int64(0), r.Int())

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrShortMessage))

	var de *errors.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 3, de.MsgID)
	assert.Equal(t, "#1", de.Field)
}

func TestFieldReaderBadField(t *testing.T) {
	r := NewFieldReader(4, []string{"1", "x1", "3"})
	r.Int()
	r.Int()
	assert.Equal(t, int64(0), r.Int(), "reads after a failure return zero values")

	err := r.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadField))

	var de *errors.DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "x1", de.Value)
}

func TestFieldReaderText(t *testing.T) {
	r := NewFieldReader(4, []string{`Caf\u00e9`, `Caf\u00e9`})
	assert.Equal(t, `Caf\u00e9`, r.Text())
	r.DecodeUnicodeEscapes(true)
	assert.Equal(t, "Café", r.Text())
}

func TestUnescapeASCII7(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`\u00e9t\u00e9`, "été"},
		{`\ud83d\ude00`, "😀"},
		{`bad \u12`, `bad \u12`},
		{`\uzzzz`, `\uzzzz`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UnescapeASCII7(tt.in), tt.in)
	}
}

func TestFieldWriter(t *testing.T) {
	w := NewMessage(OutReqMktData, MinServerVerProtobuf-1).
		Int(11).
		IntMax(models.UnsetInt).
		Float(1.25).
		FloatMax(models.UnsetFloat).
		Float(math.Inf(1)).
		Bool(true).
		Decimal(models.UnsetDecimal).
		Decimal(decimal.RequireFromString("100")).
		TagValues([]models.TagValue{{Tag: "a", Value: "1"}, {Tag: "b", Value: "2"}})

	assert.Equal(t, []string{"1", "11", "", "1.25", "", "Infinity", "1", "", "100", "a=1;b=2;"}, SplitFields(w.Payload()))

	size, payload, _ := ReadMsg(w.Frame())
	assert.Equal(t, len(w.Payload()), size)
	assert.Equal(t, w.Payload(), payload)
}
