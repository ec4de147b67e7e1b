// Package rfc6464 implements the Client-to-Mixer Audio Level Indication
// RTP header extension (RFC 6464).
//
// The element payload is a single byte: the voice-activity flag in the
// high bit and a 7-bit level (0 = loudest, 127 = silence) below it.
// Under two-byte framing a zero pad byte follows. Encoding is identical
// either way, so both framing modes are supported.
//
//	One-byte:  [ V | LLLLLLL ]
//	Two-byte:  [ V | LLLLLLL ] [ 0 0 0 0 0 0 0 0 ]
//
// The "vad" extmap attribute ("vad=on" / "vad=off") advertises whether
// the voice-activity bit is meaningful. It is advisory: the bit is
// written and read regardless of the negotiated value, matching RFC 6464
// §4 where VAD describes the signal, not a switch that suppresses it.
package rfc6464

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"firestige.xyz/aulev/internal/core"
	"firestige.xyz/aulev/pkg/log"
	"firestige.xyz/aulev/pkg/rtpext"
)

// URI is the header extension identifier defined by RFC 6464.
const URI = "urn:ietf:params:rtp-hdrext:ssrc-audio-level"

// Name is the short identifier used in task configuration.
const Name = "rfc6464"

const (
	maxLevel   = 127
	defaultVAD = true
)

func init() {
	rtpext.MustRegister(URI, func() rtpext.Extension { return New() })
}

// Config is the component configuration decoded by Init.
type Config struct {
	VAD bool `mapstructure:"vad"`
}

// Extension is the RFC 6464 codec. One instance serves one negotiated
// stream direction; it performs no internal locking.
type Extension struct {
	vad      bool
	onChange func(vad bool)
	log      log.Logger
}

// New creates an extension instance with VAD signalling advertised.
func New() *Extension {
	return &Extension{
		vad: defaultVAD,
		log: log.GetLogger().WithField("ext", Name),
	}
}

// Name returns the short plugin identifier.
func (e *Extension) Name() string { return Name }

// URI returns the RFC 6464 extension URI.
func (e *Extension) URI() string { return URI }

// Init applies a component configuration map ({vad: bool}).
func (e *Extension) Init(config map[string]any) error {
	cfg := Config{VAD: defaultVAD}
	if err := mapstructure.Decode(config, &cfg); err != nil {
		return fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	e.SetVAD(cfg.VAD)
	return nil
}

// SupportedFlags reports both framing modes: the payload never exceeds
// one data byte, so either header form can carry it.
func (e *Extension) SupportedFlags() rtpext.Flags {
	return rtpext.FlagOneByte | rtpext.FlagTwoByte
}

// MaxSize returns the worst case of 2 bytes (two-byte framing with its
// pad byte), independent of the input packet.
func (e *Extension) MaxSize(_ *core.MediaPacket) int { return 2 }

// VAD reports whether voice-activity signalling is advertised.
func (e *Extension) VAD() bool { return e.vad }

// SetVAD updates the advertised VAD state and reports whether the value
// changed. Setting the current value is a no-op and fires no
// notification.
func (e *Extension) SetVAD(vad bool) bool {
	if e.vad == vad {
		return false
	}
	e.log.Debugf("vad: %t", vad)
	e.vad = vad
	if e.onChange != nil {
		e.onChange(vad)
	}
	return true
}

// OnVADChange registers a callback fired whenever the advertised VAD
// state changes. Intended for configuration listeners; at most one
// callback is held.
func (e *Extension) OnVADChange(fn func(vad bool)) {
	e.onChange = fn
}

// SetAttributes configures the extension from an extmap attribute
// string. The direction is irrelevant here: VAD advertisement is not
// direction-specific.
func (e *Extension) SetAttributes(_ rtpext.Direction, attributes string) error {
	switch attributes {
	case "", "vad=on":
		e.SetVAD(true)
	case "vad=off":
		e.SetVAD(false)
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidAttribute, attributes)
	}
	return nil
}

// Attributes derives the extmap attribute string from the current
// configuration.
func (e *Extension) Attributes() string {
	if e.vad {
		return "vad=on"
	}
	return "vad=off"
}

// SetCapsFromAttributes embeds the derived attribute string into caps
// under id via the shared composition helper.
func (e *Extension) SetCapsFromAttributes(caps *rtpext.Caps, id uint8) error {
	return rtpext.SetCapsFromAttributesHelper(e, caps, id, e.Attributes())
}

// Write encodes the audio-level meta of input into out, returning the
// number of bytes written: 0 when the packet carries no meta, 1 under
// one-byte framing, 2 under two-byte framing. Levels above 127 saturate
// to 127.
func (e *Extension) Write(input *core.MediaPacket, flags rtpext.Flags, out []byte) (int, error) {
	if len(out) < e.MaxSize(input) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", core.ErrShortBuffer, e.MaxSize(input), len(out))
	}
	if !flags.Intersects(e.SupportedFlags()) {
		return 0, fmt.Errorf("%w: %#x", core.ErrUnsupportedFlags, flags)
	}

	meta := input.AudioLevel()
	if meta == nil {
		e.log.Trace("no audio-level meta")
		return 0, nil
	}

	level := meta.Level
	if level > maxLevel {
		e.log.Debugf("level from meta is higher than %d: %d, cropping", maxLevel, meta.Level)
		level = maxLevel
	}

	var voice uint8
	if meta.Voice {
		voice = 0x80
	}

	// Both one & two byte framing use the same format, the second byte
	// being padding.
	out[0] = (level & 0x7F) | voice
	if flags.Has(rtpext.FlagOneByte) {
		return 1, nil
	}
	out[1] = 0
	return 2, nil
}

// Read decodes an element payload and attaches the resulting
// audio-level meta to target. Every 1-byte value is a valid
// (level, voice) pair, so there is no malformed-payload path; the pad
// byte of two-byte framing is ignored.
func (e *Extension) Read(flags rtpext.Flags, data []byte, target *core.MediaPacket) error {
	if !flags.Intersects(e.SupportedFlags()) {
		return fmt.Errorf("%w: %#x", core.ErrUnsupportedFlags, flags)
	}
	if len(data) < 1 {
		return fmt.Errorf("%w: empty extension payload", core.ErrShortBuffer)
	}

	level := data[0] & 0x7F
	voice := data[0]&0x80 != 0

	target.SetAudioLevel(level, voice)
	return nil
}
