// Package rtpext defines the RTP header extension interface and the
// session-description plumbing (extmap / caps) used to negotiate
// extensions between peers.
//
// Extensions implement a small codec contract: capability queries
// (supported framing flags, maximum encoded size), attribute-string
// negotiation, and per-packet Write / Read of the extension element
// payload. The RFC 8285 container framing itself is delegated to
// github.com/pion/rtp; see packet.go.
package rtpext

import (
	"firestige.xyz/aulev/internal/core"
)

// Flags is the set of RFC 8285 header framing modes an extension element
// can be carried under.
type Flags uint8

const (
	// FlagOneByte is the one-byte header form (profile 0xBEDE),
	// extension IDs 1-14, payloads up to 16 bytes.
	FlagOneByte Flags = 1 << iota
	// FlagTwoByte is the two-byte header form (profile 0x1000),
	// extension IDs 1-255, payloads up to 255 bytes.
	FlagTwoByte
)

// RFC 8285 extension profile values, matching pion/rtp.
const (
	ProfileOneByte uint16 = 0xBEDE
	ProfileTwoByte uint16 = 0x1000
)

// Has reports whether f contains every flag in other.
func (f Flags) Has(other Flags) bool { return f&other == other }

// Intersects reports whether f and other share at least one flag.
func (f Flags) Intersects(other Flags) bool { return f&other != 0 }

// Profile maps the framing flag to its RTP extension profile value.
// When both flags are set the one-byte profile wins, it being the
// cheaper encoding.
func (f Flags) Profile() uint16 {
	if f.Has(FlagOneByte) {
		return ProfileOneByte
	}
	return ProfileTwoByte
}

// FlagsFromProfile maps an RTP extension profile value back to a framing
// flag. Unknown profiles yield 0.
func FlagsFromProfile(profile uint16) Flags {
	switch profile {
	case ProfileOneByte:
		return FlagOneByte
	case ProfileTwoByte:
		return FlagTwoByte
	default:
		return 0
	}
}

// Extension is an RTP header extension codec.
//
// One instance serves one negotiated stream direction and is not safe
// for concurrent use; callers drive it from a single packet-processing
// goroutine.
type Extension interface {
	// Name returns the short identifier used in configuration.
	Name() string
	// URI returns the extension URI advertised in extmap entries.
	URI() string
	// Init applies a component configuration map.
	Init(config map[string]any) error

	// SupportedFlags returns the framing modes this extension can be
	// carried under.
	SupportedFlags() Flags
	// MaxSize returns the worst-case encoded size in bytes for the
	// given input packet (which may be nil).
	MaxSize(input *core.MediaPacket) int

	// SetAttributes configures the extension from an extmap attribute
	// string for the given direction. An unrecognized attribute string
	// returns an error wrapping core.ErrInvalidAttribute and leaves the
	// configuration unchanged.
	SetAttributes(dir Direction, attributes string) error
	// SetCapsFromAttributes derives the attribute string from the
	// current configuration and embeds it into caps under id.
	SetCapsFromAttributes(caps *Caps, id uint8) error

	// Write encodes the extension element payload for input into out
	// under the requested framing flags, returning the number of bytes
	// written. Zero means the packet has nothing to signal and no
	// element should be attached.
	Write(input *core.MediaPacket, flags Flags, out []byte) (int, error)
	// Read decodes an extension element payload received under the
	// given framing flags and annotates target.
	Read(flags Flags, data []byte, target *core.MediaPacket) error
}
