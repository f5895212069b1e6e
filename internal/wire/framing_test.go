package wire

import (
	"bytes"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property: For any sequence of payloads written back to back, ReadMsg yields the
// payloads in order and leaves nothing behind.
func TestProperty_FramesSplitBackToBack(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("concatenated frames are read back in order", prop.ForAll(
		func(payloads []string) bool {
			var stream []byte
			for _, p := range payloads {
				stream = append(stream, MakeMsg([]byte(p))...)
			}

			rest := stream
			for _, want := range payloads {
				size, payload, next := ReadMsg(rest)
				if size != len(want) || string(payload) != want {
					return false
				}
				rest = next
			}
			return len(rest) == 0
		},
		gen.SliceOf(gen.AlphaString()),
	))

	// Property: A frame cut anywhere before its end is reported as incomplete and
	// the buffer is returned untouched.
	properties.Property("partial frames are not consumed", prop.ForAll(
		func(payload string, cut int) bool {
			frame := MakeMsg([]byte(payload))
			if cut >= len(frame) {
				cut = len(frame) - 1
			}
			partial := frame[:cut]
			_, got, rest := ReadMsg(partial)
			return got == nil && bytes.Equal(rest, partial)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.IntRange(0, 64),
	))

	properties.TestingRun(t)
}

func TestReadFrame(t *testing.T) {
	var stream bytes.Buffer
	stream.Write(MakeMsg([]byte("4\x002\x00-1\x002104\x00ok\x00")))
	stream.Write(MakeMsg([]byte("49\x001\x001700000000\x00")))

	first, err := ReadFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "2", "-1", "2104", "ok"}, SplitFields(first))

	second, err := ReadFrame(&stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"49", "1", "1700000000"}, SplitFields(second))

	_, err = ReadFrame(&stream)
	assert.Error(t, err)
}

func TestReadFrameRejectsOversizedFrames(t *testing.T) {
	header := []byte{0x7f, 0xff, 0xff, 0xff}
	_, err := ReadFrame(bytes.NewReader(header))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame exceeds maximum size")
}

func TestMakeHandshake(t *testing.T) {
	hs := MakeHandshake(MinClientVer, MaxClientVer, "")
	require.True(t, bytes.HasPrefix(hs, []byte(APIPrefix)))

	_, payload, rest := ReadMsg(hs[len(APIPrefix):])
	assert.Equal(t, "v100..201", string(payload))
	assert.Empty(t, rest)

	hs = MakeHandshake(MinClientVer, MaxClientVer, "+PACEAPI")
	_, payload, _ = ReadMsg(hs[len(APIPrefix):])
	assert.Equal(t, "v100..201 +PACEAPI", string(payload))
}

func TestSplitFields(t *testing.T) {
	assert.Nil(t, SplitFields(nil))
	assert.Equal(t, []string{"1", "", "x"}, SplitFields([]byte("1\x00\x00x\x00")))
	assert.Equal(t, []string{"1", "2"}, SplitFields([]byte("1\x002")))
}

func TestSplitMsgID(t *testing.T) {
	t.Run("text id before protobuf", func(t *testing.T) {
		id, rest, err := SplitMsgID([]byte("9\x001\x0042\x00"), MinServerVerProtobuf-1)
		require.NoError(t, err)
		assert.Equal(t, InNextValidID, id)
		assert.Equal(t, []string{"1", "42"}, SplitFields(rest))
	})

	t.Run("raw id from protobuf on", func(t *testing.T) {
		payload := append(EncodeMsgID(InNextValidID, MinServerVerProtobuf), []byte("1\x0042\x00")...)
		id, rest, err := SplitMsgID(payload, MinServerVerProtobuf)
		require.NoError(t, err)
		assert.Equal(t, InNextValidID, id)
		assert.Equal(t, []string{"1", "42"}, SplitFields(rest))
	})

	t.Run("bad text id", func(t *testing.T) {
		_, _, err := SplitMsgID([]byte("x\x00"), 150)
		assert.Error(t, err)
	})

	t.Run("short raw id", func(t *testing.T) {
		_, _, err := SplitMsgID([]byte{0, 1}, MinServerVerProtobuf)
		assert.Error(t, err)
	})
}

func TestIsProtobuf(t *testing.T) {
	id, ok := IsProtobuf(ProtobufMsgID + InOrderStatus)
	assert.True(t, ok)
	assert.Equal(t, InOrderStatus, id)

	id, ok = IsProtobuf(InOrderStatus)
	assert.False(t, ok)
	assert.Equal(t, InOrderStatus, id)
}
