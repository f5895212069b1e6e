package decoder

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/scmhub/ibapi/protobuf"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"

	"ib-trader/internal/errors"
	"ib-trader/internal/models"
	"ib-trader/internal/wire"
)

// protoPackage is the proto package of the generated TWS API messages.
var protoPackage = (&protobuf.OrderStatus{}).ProtoReflect().Descriptor().ParentFile().Package()

// findProtoType resolves a TWS API message type by its short name.
func findProtoType(name string) (protoreflect.MessageType, bool) {
	mt, err := protoregistry.GlobalTypes.FindMessageByName(protoPackage.Append(protoreflect.Name(name)))
	if err != nil {
		return nil, false
	}
	return mt, true
}

// protoEntry binds an inbound message id to its protobuf message name and the
// function that turns the decoded message into wrapper calls.
type protoEntry struct {
	name   string
	decode func(d *Decoder, m protoMsg) error
}

// newProtoHandlers builds the protobuf dispatch table. Messages the linked
// protobuf package does not define are left out and reported as unknown.
func newProtoHandlers(entries map[int]protoEntry) map[int]protoHandler {
	handlers := make(map[int]protoHandler, len(entries))
	for id, e := range entries {
		mt, ok := findProtoType(e.name)
		if !ok {
			continue
		}
		handlers[id] = func(d *Decoder, payload []byte) error {
			m := mt.New()
			if err := proto.Unmarshal(payload, m.Interface()); err != nil {
				return errors.NewDecodeError(id, "payload", "", fmt.Errorf("%w: %v", errors.ErrBadField, err))
			}
			if err := e.decode(d, protoMsg{m: m}); err != nil {
				return errors.NewDecodeError(id, e.name, "", err)
			}
			return nil
		}
	}
	return handlers
}

// protoMsg reads a decoded protobuf message by field name. Every accessor checks
// presence first. An absent field yields what the legacy decoder produces for an
// empty field: zero for plain numbers and the models.Unset* sentinels for the
// optional ones. A protoMsg with no message reports every field absent, so nested
// lookups can be chained.
type protoMsg struct {
	m protoreflect.Message
}

func (p protoMsg) present() bool { return p.m != nil && p.m.IsValid() }

func (p protoMsg) field(name string) (protoreflect.FieldDescriptor, bool) {
	if !p.present() {
		return nil, false
	}
	fd := p.m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil || !p.m.Has(fd) {
		return nil, false
	}
	return fd, true
}

func (p protoMsg) has(name string) bool {
	_, ok := p.field(name)
	return ok
}

func (p protoMsg) getInt(name string) (int64, bool) {
	fd, ok := p.field(name)
	if !ok || fd.IsList() || fd.IsMap() {
		return 0, false
	}
	return scalarInt(fd, p.m.Get(fd))
}

func (p protoMsg) getFloat(name string) (float64, bool) {
	fd, ok := p.field(name)
	if !ok || fd.IsList() || fd.IsMap() {
		return 0, false
	}
	return scalarFloat(fd, p.m.Get(fd))
}

func (p protoMsg) getStr(name string) (string, bool) {
	fd, ok := p.field(name)
	if !ok || fd.IsList() || fd.IsMap() {
		return "", false
	}
	return scalarStr(fd, p.m.Get(fd))
}

func (p protoMsg) getBool(name string) (bool, bool) {
	fd, ok := p.field(name)
	if !ok || fd.IsList() || fd.IsMap() {
		return false, false
	}
	v := p.m.Get(fd)
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool(), true
	case protoreflect.StringKind:
		s := v.String()
		return s == "1" || strings.EqualFold(s, "true"), true
	}
	n, ok := scalarInt(fd, v)
	return n != 0, ok
}

func (p protoMsg) getDecimal(name string) (decimal.Decimal, bool) {
	fd, ok := p.field(name)
	if !ok || fd.IsList() || fd.IsMap() {
		return models.UnsetDecimal, false
	}
	v := p.m.Get(fd)
	switch fd.Kind() {
	case protoreflect.StringKind:
		d, err := wire.ParseDecimal(v.String())
		if err != nil {
			return models.UnsetDecimal, false
		}
		return d, true
	case protoreflect.DoubleKind, protoreflect.FloatKind:
		if v.Float() == math.MaxFloat64 {
			return models.UnsetDecimal, true
		}
		return decimal.NewFromFloat(v.Float()), true
	}
	n, ok := scalarInt(fd, v)
	if !ok {
		return models.UnsetDecimal, false
	}
	return decimal.NewFromInt(n), true
}

func (p protoMsg) int(name string) int64 { return p.intOr(name, 0) }

func (p protoMsg) intOr(name string, def int64) int64 {
	if v, ok := p.getInt(name); ok {
		return v
	}
	return def
}

func (p protoMsg) float(name string) float64 { return p.floatOr(name, 0) }

func (p protoMsg) floatOr(name string, def float64) float64 {
	if v, ok := p.getFloat(name); ok {
		return v
	}
	return def
}

func (p protoMsg) str(name string) string {
	s, _ := p.getStr(name)
	return s
}

func (p protoMsg) bool(name string) bool {
	b, _ := p.getBool(name)
	return b
}

func (p protoMsg) decimal(name string) decimal.Decimal {
	d, _ := p.getDecimal(name)
	return d
}

// reqID returns the request id, or -1 when none was sent.
func (p protoMsg) reqID() int64 { return p.intOr("reqId", -1) }

func (p protoMsg) setInt(dst *int64, name string) {
	if v, ok := p.getInt(name); ok {
		*dst = v
	}
}

func (p protoMsg) setFloat(dst *float64, name string) {
	if v, ok := p.getFloat(name); ok {
		*dst = v
	}
}

func (p protoMsg) setStr(dst *string, name string) {
	if v, ok := p.getStr(name); ok {
		*dst = v
	}
}

func (p protoMsg) setBool(dst *bool, name string) {
	if v, ok := p.getBool(name); ok {
		*dst = v
	}
}

func (p protoMsg) setDecimal(dst *decimal.Decimal, name string) {
	if v, ok := p.getDecimal(name); ok {
		*dst = v
	}
}

// msg returns a nested message. The result is empty when the field is absent.
func (p protoMsg) msg(name string) protoMsg {
	fd, ok := p.field(name)
	if !ok || fd.Kind() != protoreflect.MessageKind || fd.IsList() || fd.IsMap() {
		return protoMsg{}
	}
	return protoMsg{m: p.m.Get(fd).Message()}
}

// list returns the elements of a repeated message field.
func (p protoMsg) list(name string) []protoMsg {
	fd, ok := p.field(name)
	if !ok || !fd.IsList() || fd.Kind() != protoreflect.MessageKind {
		return nil
	}
	l := p.m.Get(fd).List()
	out := make([]protoMsg, l.Len())
	for i := range out {
		out[i] = protoMsg{m: l.Get(i).Message()}
	}
	return out
}

// strs returns a repeated scalar field as strings.
func (p protoMsg) strs(name string) []string {
	fd, ok := p.field(name)
	if !ok {
		return nil
	}
	if !fd.IsList() {
		s, _ := scalarStr(fd, p.m.Get(fd))
		return []string{s}
	}
	l := p.m.Get(fd).List()
	out := make([]string, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		s, _ := scalarStr(fd, l.Get(i))
		out = append(out, s)
	}
	return out
}

// floats returns a repeated scalar field as floats.
func (p protoMsg) floats(name string) []float64 {
	fd, ok := p.field(name)
	if !ok || !fd.IsList() {
		return nil
	}
	l := p.m.Get(fd).List()
	out := make([]float64, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		f, _ := scalarFloat(fd, l.Get(i))
		out = append(out, f)
	}
	return out
}

// tagValues reads a string map or a repeated {tag, value} message. Map entries
// come back sorted by tag.
func (p protoMsg) tagValues(name string) []models.TagValue {
	fd, ok := p.field(name)
	if !ok {
		return nil
	}
	switch {
	case fd.IsMap():
		mp := p.m.Get(fd).Map()
		out := make([]models.TagValue, 0, mp.Len())
		mp.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
			out = append(out, models.TagValue{Tag: k.String(), Value: v.String()})
			return true
		})
		slices.SortFunc(out, func(a, b models.TagValue) int { return strings.Compare(a.Tag, b.Tag) })
		return out
	case fd.IsList() && fd.Kind() == protoreflect.MessageKind:
		var out []models.TagValue
		for _, tv := range p.list(name) {
			out = append(out, models.TagValue{Tag: tv.str("tag"), Value: tv.str("value")})
		}
		return out
	}
	return nil
}

func scalarInt(fd protoreflect.FieldDescriptor, v protoreflect.Value) (int64, bool) {
	switch fd.Kind() {
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int(), true
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind, protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return int64(v.Uint()), true
	case protoreflect.EnumKind:
		return int64(v.Enum()), true
	case protoreflect.BoolKind:
		if v.Bool() {
			return 1, true
		}
		return 0, true
	case protoreflect.DoubleKind, protoreflect.FloatKind:
		return int64(v.Float()), true
	case protoreflect.StringKind:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func scalarFloat(fd protoreflect.FieldDescriptor, v protoreflect.Value) (float64, bool) {
	switch fd.Kind() {
	case protoreflect.DoubleKind, protoreflect.FloatKind:
		return v.Float(), true
	case protoreflect.StringKind:
		s := v.String()
		if s == "Infinity" {
			return math.Inf(1), true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	n, ok := scalarInt(fd, v)
	return float64(n), ok
}

func scalarStr(fd protoreflect.FieldDescriptor, v protoreflect.Value) (string, bool) {
	switch fd.Kind() {
	case protoreflect.StringKind:
		return v.String(), true
	case protoreflect.BytesKind:
		return string(v.Bytes()), true
	case protoreflect.DoubleKind, protoreflect.FloatKind:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true
	case protoreflect.BoolKind:
		if v.Bool() {
			return "1", true
		}
		return "0", true
	}
	n, ok := scalarInt(fd, v)
	if !ok {
		return "", false
	}
	return strconv.FormatInt(n, 10), true
}
