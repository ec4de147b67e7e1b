package rfc6464

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/aulev/internal/core"
	"firestige.xyz/aulev/pkg/rtpext"
)

func packetWithMeta(level uint8, voice bool) *core.MediaPacket {
	p := &core.MediaPacket{}
	p.SetAudioLevel(level, voice)
	return p
}

func TestIdentity(t *testing.T) {
	e := New()
	assert.Equal(t, "rfc6464", e.Name())
	assert.Equal(t, "urn:ietf:params:rtp-hdrext:ssrc-audio-level", e.URI())
}

func TestSupportedFlags(t *testing.T) {
	e := New()
	want := rtpext.FlagOneByte | rtpext.FlagTwoByte

	assert.Equal(t, want, e.SupportedFlags())

	// Independent of configuration.
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.Equal(t, want, e.SupportedFlags())
}

func TestMaxSize(t *testing.T) {
	e := New()
	assert.Equal(t, 2, e.MaxSize(nil))
	assert.Equal(t, 2, e.MaxSize(packetWithMeta(5, true)))

	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.Equal(t, 2, e.MaxSize(nil))
}

func TestRoundTripOneByte(t *testing.T) {
	e := New()
	buf := make([]byte, 2)

	for level := 0; level <= 127; level++ {
		for _, voice := range []bool{false, true} {
			n, err := e.Write(packetWithMeta(uint8(level), voice), rtpext.FlagOneByte, buf)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			target := &core.MediaPacket{}
			require.NoError(t, e.Read(rtpext.FlagOneByte, buf[:n], target))

			meta := target.AudioLevel()
			require.NotNil(t, meta)
			assert.Equal(t, uint8(level), meta.Level)
			assert.Equal(t, voice, meta.Voice)
		}
	}
}

func TestRoundTripTwoByte(t *testing.T) {
	e := New()
	buf := make([]byte, 2)

	for level := 0; level <= 127; level++ {
		for _, voice := range []bool{false, true} {
			n, err := e.Write(packetWithMeta(uint8(level), voice), rtpext.FlagTwoByte, buf)
			require.NoError(t, err)
			require.Equal(t, 2, n)
			require.Equal(t, uint8(0), buf[1], "pad byte must be zero")

			target := &core.MediaPacket{}
			require.NoError(t, e.Read(rtpext.FlagTwoByte, buf[:n], target))

			meta := target.AudioLevel()
			require.NotNil(t, meta)
			assert.Equal(t, uint8(level), meta.Level)
			assert.Equal(t, voice, meta.Voice)
		}
	}
}

func TestWriteClampsLevel(t *testing.T) {
	e := New()

	for _, level := range []uint8{128, 130, 200, 255} {
		for _, voice := range []bool{false, true} {
			got := make([]byte, 2)
			n, err := e.Write(packetWithMeta(level, voice), rtpext.FlagOneByte, got)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			want := make([]byte, 2)
			n, err = e.Write(packetWithMeta(127, voice), rtpext.FlagOneByte, want)
			require.NoError(t, err)
			require.Equal(t, 1, n)

			assert.Equal(t, want[0], got[0], "level %d should encode like 127", level)
		}
	}
}

func TestWriteNoMeta(t *testing.T) {
	e := New()
	buf := []byte{0xAA, 0xBB}

	n, err := e.Write(&core.MediaPacket{}, rtpext.FlagOneByte, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, []byte{0xAA, 0xBB}, buf, "buffer must not be touched")

	n, err = e.Write(nil, rtpext.FlagTwoByte, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestWriteContractViolations(t *testing.T) {
	e := New()

	_, err := e.Write(packetWithMeta(1, true), rtpext.FlagOneByte, make([]byte, 1))
	assert.ErrorIs(t, err, core.ErrShortBuffer)

	_, err = e.Write(packetWithMeta(1, true), 0, make([]byte, 2))
	assert.ErrorIs(t, err, core.ErrUnsupportedFlags)
}

func TestReadContractViolations(t *testing.T) {
	e := New()
	target := &core.MediaPacket{}

	err := e.Read(0, []byte{0x00}, target)
	assert.ErrorIs(t, err, core.ErrUnsupportedFlags)

	err = e.Read(rtpext.FlagOneByte, nil, target)
	assert.ErrorIs(t, err, core.ErrShortBuffer)

	assert.Nil(t, target.AudioLevel())
}

func TestReadIgnoresPadByte(t *testing.T) {
	e := New()
	target := &core.MediaPacket{}

	// Non-zero pad byte from a sloppy sender must not change the result.
	require.NoError(t, e.Read(rtpext.FlagTwoByte, []byte{0x2D, 0xFF}, target))
	meta := target.AudioLevel()
	require.NotNil(t, meta)
	assert.Equal(t, uint8(45), meta.Level)
	assert.False(t, meta.Voice)
}

func TestReadOverwritesExistingMeta(t *testing.T) {
	e := New()
	target := &core.MediaPacket{}
	target.SetAudioLevel(3, false)

	require.NoError(t, e.Read(rtpext.FlagOneByte, []byte{0xAD}, target))

	meta := target.AudioLevel()
	require.NotNil(t, meta)
	assert.Equal(t, uint8(45), meta.Level)
	assert.True(t, meta.Voice)
}

// Concrete vector: (level=45, voice=true) in one-byte framing is 0xAD.
func TestVectorVoice45(t *testing.T) {
	e := New()
	buf := make([]byte, 2)

	n, err := e.Write(packetWithMeta(45, true), rtpext.FlagOneByte, buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, uint8(0xAD), buf[0])

	target := &core.MediaPacket{}
	require.NoError(t, e.Read(rtpext.FlagOneByte, []byte{0xAD}, target))
	meta := target.AudioLevel()
	require.NotNil(t, meta)
	assert.Equal(t, uint8(45), meta.Level)
	assert.True(t, meta.Voice)
}

// Concrete vector: (level=130, voice=false) in two-byte framing clamps
// to [0x7F, 0x00].
func TestVectorClamped130(t *testing.T) {
	e := New()
	buf := make([]byte, 2)

	n, err := e.Write(packetWithMeta(130, false), rtpext.FlagTwoByte, buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.Equal(t, []byte{0x7F, 0x00}, buf[:n])

	target := &core.MediaPacket{}
	require.NoError(t, e.Read(rtpext.FlagTwoByte, []byte{0x7F, 0x00}, target))
	meta := target.AudioLevel()
	require.NotNil(t, meta)
	assert.Equal(t, uint8(127), meta.Level)
	assert.False(t, meta.Voice)
}

func TestSetAttributes(t *testing.T) {
	tests := []struct {
		attributes string
		wantErr    bool
		wantVAD    bool
	}{
		{attributes: "", wantVAD: true},
		{attributes: "vad=on", wantVAD: true},
		{attributes: "vad=off", wantVAD: false},
		{attributes: "garbage", wantErr: true},
		{attributes: "vad=maybe", wantErr: true},
		{attributes: "vad=on extra", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.attributes), func(t *testing.T) {
			e := New()
			err := e.SetAttributes(rtpext.DirectionSendRecv, tt.attributes)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrInvalidAttribute)
				assert.True(t, e.VAD(), "failed configure must leave state unchanged")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVAD, e.VAD())
		})
	}
}

func TestSetAttributesKeepsPriorStateOnError(t *testing.T) {
	e := New()
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))

	err := e.SetAttributes(rtpext.DirectionSendRecv, "bogus")
	require.Error(t, err)
	assert.False(t, e.VAD())
}

func TestAttributes(t *testing.T) {
	e := New()
	assert.Equal(t, "vad=on", e.Attributes())

	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.Equal(t, "vad=off", e.Attributes())

	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=on"))
	assert.Equal(t, "vad=on", e.Attributes())
}

func TestVADChangeNotification(t *testing.T) {
	e := New()
	var fired int
	e.OnVADChange(func(bool) { fired++ })

	// Same as default: no notification.
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=on"))
	assert.Equal(t, 0, fired)

	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.Equal(t, 1, fired)

	// Idempotent: repeating the same value fires nothing.
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.Equal(t, 1, fired)
}

func TestVADDoesNotGateCodec(t *testing.T) {
	// The attribute is advisory: encode and decode behave identically
	// with VAD advertised off.
	e := New()
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))

	buf := make([]byte, 2)
	n, err := e.Write(packetWithMeta(45, true), rtpext.FlagOneByte, buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, uint8(0xAD), buf[0])

	target := &core.MediaPacket{}
	require.NoError(t, e.Read(rtpext.FlagOneByte, buf[:n], target))
	require.NotNil(t, target.AudioLevel())
	assert.True(t, target.AudioLevel().Voice)
}

func TestInit(t *testing.T) {
	e := New()
	require.NoError(t, e.Init(map[string]any{"vad": false}))
	assert.False(t, e.VAD())

	// Absent key keeps the default.
	e = New()
	require.NoError(t, e.Init(nil))
	assert.True(t, e.VAD())

	e = New()
	err := e.Init(map[string]any{"vad": "sometimes"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestSetCapsFromAttributes(t *testing.T) {
	e := New()
	require.NoError(t, e.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))

	caps := rtpext.NewCaps()
	require.NoError(t, e.SetCapsFromAttributes(caps, 3))

	m, ok := caps.Extmap(3)
	require.True(t, ok)
	assert.Equal(t, URI, m.URI)
	assert.Equal(t, "vad=off", m.Attributes)

	// ID 0 is never valid.
	assert.Error(t, e.SetCapsFromAttributes(caps, 0))
}

func TestRegistryLookup(t *testing.T) {
	ext, err := rtpext.Lookup(URI)
	require.NoError(t, err)
	assert.Equal(t, Name, ext.Name())

	// Every lookup yields a fresh instance.
	other, err := rtpext.Lookup(URI)
	require.NoError(t, err)
	require.NoError(t, other.SetAttributes(rtpext.DirectionSendRecv, "vad=off"))
	assert.True(t, ext.(*Extension).VAD())
}

func TestNewFromExtmap(t *testing.T) {
	m, err := rtpext.ParseExtmap("a=extmap:4 " + URI + " vad=off")
	require.NoError(t, err)

	ext, err := rtpext.NewFromExtmap(m)
	require.NoError(t, err)
	assert.False(t, ext.(*Extension).VAD())

	_, err = rtpext.NewFromExtmap(rtpext.Extmap{ID: 1, URI: URI, Attributes: "nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidAttribute))
}
