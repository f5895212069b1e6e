// Package wire implements the TWS API framing and field encoding.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ib-trader/internal/errors"
)

const (
	// APIPrefix opens every client connection.
	APIPrefix = "API\x00"

	// MaxFrameSize bounds a single inbound frame (TWS caps messages at 16MB).
	MaxFrameSize = 0xFFFFFF

	headerLen = 4
)

// MakeMsg prefixes payload with its 4-byte big-endian length.
func MakeMsg(payload []byte) []byte {
	msg := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(msg, uint32(len(payload)))
	copy(msg[headerLen:], payload)
	return msg
}

// ReadMsg extracts the first complete frame from buf. When buf does not yet hold a
// full frame it returns size 0, a nil payload and buf unchanged.
func ReadMsg(buf []byte) (size int, payload []byte, rest []byte) {
	if len(buf) < headerLen {
		return 0, nil, buf
	}
	size = int(binary.BigEndian.Uint32(buf))
	if len(buf)-headerLen < size {
		return size, nil, buf
	}
	return size, buf[headerLen : headerLen+size], buf[headerLen+size:]
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", errors.ErrFrameTooLarge, size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// MakeHandshake builds the bytes a client sends right after connecting:
// the API prefix followed by the framed "v<min>..<max>" version range.
func MakeHandshake(minVersion, maxVersion int, options string) []byte {
	versions := fmt.Sprintf("v%d..%d", minVersion, maxVersion)
	if options != "" {
		versions += " " + options
	}
	var b bytes.Buffer
	b.WriteString(APIPrefix)
	b.Write(MakeMsg([]byte(versions)))
	return b.Bytes()
}

// SplitFields splits a NUL-delimited payload. The terminating NUL produces an
// empty trailing element which is dropped.
func SplitFields(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	fields := strings.Split(string(payload), "\x00")
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}

// SplitMsgID separates the message id from the rest of a frame payload. Before
// MinServerVerProtobuf the id is the first text field, afterwards it is a raw
// 4-byte big-endian integer.
func SplitMsgID(payload []byte, serverVersion int) (int, []byte, error) {
	if serverVersion >= MinServerVerProtobuf {
		if len(payload) < headerLen {
			return 0, nil, errors.NewDecodeError(0, "msgId", "", errors.ErrShortMessage)
		}
		return int(binary.BigEndian.Uint32(payload)), payload[headerLen:], nil
	}

	idx := bytes.IndexByte(payload, 0)
	if idx < 0 {
		idx = len(payload)
	}
	raw := string(payload[:idx])
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, nil, errors.NewDecodeError(0, "msgId", raw, errors.ErrBadField)
	}
	if idx == len(payload) {
		return id, nil, nil
	}
	return id, payload[idx+1:], nil
}

// EncodeMsgID renders a message id the way the negotiated server version expects.
func EncodeMsgID(msgID, serverVersion int) []byte {
	if serverVersion >= MinServerVerProtobuf {
		var b [headerLen]byte
		binary.BigEndian.PutUint32(b[:], uint32(msgID))
		return b[:]
	}
	return []byte(strconv.Itoa(msgID) + "\x00")
}

// IsProtobuf reports whether an inbound id carries a protobuf payload, and returns
// the underlying message id.
func IsProtobuf(msgID int) (int, bool) {
	if msgID > ProtobufMsgID {
		return msgID - ProtobufMsgID, true
	}
	return msgID, false
}
