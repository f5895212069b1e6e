package decoder

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ib-trader/internal/errors"
	"ib-trader/internal/wire"
)

// handleInfo describes how to decode one message id. Exactly one of wrapName or
// proc is set. wrapName entries are called reflectively: after the version field,
// every remaining field maps to one parameter of the named Wrapper method.
type handleInfo struct {
	wrapName string
	proc     func(d *Decoder, r *wire.FieldReader) error
}

// protoHandler decodes a protobuf payload.
type protoHandler func(d *Decoder, payload []byte) error

// Decoder dispatches inbound messages to a Wrapper.
type Decoder struct {
	wrapper       Wrapper
	serverVersion int
	logger        zerolog.Logger

	handlers      map[int]handleInfo
	protoHandlers map[int]protoHandler
}

// New creates a decoder for a connection negotiated at serverVersion.
func New(wrapper Wrapper, serverVersion int, logger zerolog.Logger) *Decoder {
	return &Decoder{
		wrapper:       wrapper,
		serverVersion: serverVersion,
		logger:        logger.With().Str("component", "decoder").Logger(),
		handlers:      legacyHandlers,
		protoHandlers: protobufHandlers,
	}
}

// ServerVersion returns the negotiated server version.
func (d *Decoder) ServerVersion() int { return d.serverVersion }

// SetServerVersion updates the version used for field gating.
func (d *Decoder) SetServerVersion(v int) { d.serverVersion = v }

// ProcessMessage decodes a whole frame payload. The message id is read according to
// the server version and the body is routed to the legacy or protobuf path.
func (d *Decoder) ProcessMessage(payload []byte) error {
	msgID, body, err := wire.SplitMsgID(payload, d.serverVersion)
	if err != nil {
		d.logger.Error().Err(err).Msg("Failed to read message id")
		return err
	}
	if id, ok := wire.IsProtobuf(msgID); ok {
		return d.InterpretProto(id, body)
	}
	return d.Interpret(msgID, wire.SplitFields(body))
}

// Interpret decodes a legacy message. fields holds everything after the message id.
// On failure the wrapper is not called.
func (d *Decoder) Interpret(msgID int, fields []string) error {
	info, ok := d.handlers[msgID]
	if !ok {
		d.logger.Warn().Int("msg_id", msgID).Int("fields", len(fields)).Msg("Unknown message id")
		return fmt.Errorf("%w: %d", errors.ErrUnknownMessage, msgID)
	}

	var err error
	if info.wrapName != "" {
		err = d.callWrapper(msgID, info.wrapName, fields)
	} else {
		r := wire.NewFieldReader(msgID, fields)
		r.DecodeUnicodeEscapes(d.serverVersion >= wire.MinServerVerEncodeMsgASCII7)
		err = info.proc(d, r)
	}
	if err != nil {
		d.logger.Error().Err(err).Int("msg_id", msgID).Msg("Failed to decode message")
	}
	return err
}

// InterpretProto decodes a protobuf message.
func (d *Decoder) InterpretProto(msgID int, payload []byte) error {
	handler, ok := d.protoHandlers[msgID]
	if !ok {
		d.logger.Warn().Int("msg_id", msgID).Int("bytes", len(payload)).Msg("Unknown protobuf message id")
		return fmt.Errorf("%w: protobuf %d", errors.ErrUnknownMessage, msgID)
	}
	if err := handler(d, payload); err != nil {
		d.logger.Error().Err(err).Int("msg_id", msgID).Msg("Failed to decode protobuf message")
		return err
	}
	return nil
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func (d *Decoder) callWrapper(msgID int, name string, fields []string) error {
	method := reflect.ValueOf(d.wrapper).MethodByName(name)
	if !method.IsValid() {
		return fmt.Errorf("wrapper has no method %s", name)
	}
	if len(fields) == 0 {
		return errors.NewDecodeError(msgID, "version", "", errors.ErrShortMessage)
	}

	mt := method.Type()
	args := fields[1:]
	if len(args) != mt.NumIn() {
		cause := errors.ErrBadField
		if len(args) < mt.NumIn() {
			cause = errors.ErrShortMessage
		}
		return errors.NewDecodeError(msgID, "count", strconv.Itoa(len(args)),
			fmt.Errorf("%s expects %d fields: %w", name, mt.NumIn(), cause))
	}

	r := wire.NewFieldReader(msgID, args)
	r.DecodeUnicodeEscapes(d.serverVersion >= wire.MinServerVerEncodeMsgASCII7)
	in := make([]reflect.Value, mt.NumIn())
	for i := range in {
		pt := mt.In(i)
		switch {
		case pt == decimalType:
			in[i] = reflect.ValueOf(r.Decimal())
		case pt.Kind() == reflect.String:
			in[i] = reflect.ValueOf(r.Text()).Convert(pt)
		case pt.Kind() == reflect.Bool:
			in[i] = reflect.ValueOf(r.Bool()).Convert(pt)
		case pt.Kind() >= reflect.Int && pt.Kind() <= reflect.Int64:
			in[i] = reflect.ValueOf(r.Int()).Convert(pt)
		case pt.Kind() == reflect.Float64 || pt.Kind() == reflect.Float32:
			in[i] = reflect.ValueOf(r.Float()).Convert(pt)
		default:
			return fmt.Errorf("%s: unsupported parameter type %s", name, pt)
		}
	}
	if err := r.Err(); err != nil {
		return err
	}

	method.Call(in)
	return nil
}
