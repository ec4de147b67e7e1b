package rtpext

import (
	"fmt"

	"github.com/pion/rtp"

	"firestige.xyz/aulev/internal/core"
)

// WriteToPacket encodes ext for src and attaches the resulting element
// to rp under the negotiated id, using the framing selected by flags.
// When the extension has nothing to signal (Write returns 0) the packet
// is left untouched.
func WriteToPacket(ext Extension, id uint8, src *core.MediaPacket, rp *rtp.Packet, flags Flags) error {
	buf := make([]byte, ext.MaxSize(src))
	n, err := ext.Write(src, flags, buf)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	// Pin the profile before SetExtension so pion does not pick one
	// based on payload size.
	rp.Header.Extension = true
	rp.Header.ExtensionProfile = flags.Profile()
	if err := rp.Header.SetExtension(id, buf[:n]); err != nil {
		return fmt.Errorf("attaching extension %d: %w", id, err)
	}
	return nil
}

// ReadFromPacket extracts the extension element registered under id from
// rp and decodes it into dst via ext. The first return value reports
// whether the packet carried the element at all.
func ReadFromPacket(ext Extension, id uint8, rp *rtp.Packet, dst *core.MediaPacket) (bool, error) {
	if !rp.Header.Extension {
		return false, nil
	}
	payload := rp.Header.GetExtension(id)
	if payload == nil {
		return false, nil
	}

	flags := FlagsFromProfile(rp.Header.ExtensionProfile)
	if flags == 0 {
		return true, fmt.Errorf("%w: profile 0x%04X", core.ErrUnsupportedFlags, rp.Header.ExtensionProfile)
	}
	if err := ext.Read(flags, payload, dst); err != nil {
		return true, err
	}
	return true, nil
}
