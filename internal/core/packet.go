// Package core defines core data structures with zero external dependencies.
package core

import "time"

// AudioLevelMeta is the audio-level fact carried by the RFC 6464 header
// extension: a 7-bit level in the dBov-derived scale (0 = loudest,
// 127 = silence) and the voice-activity flag.
type AudioLevelMeta struct {
	Level uint8 // 0-127 as stored; values above 127 are clamped on encode
	Voice bool  // voice activity detected
}

// MediaPacket is a media frame travelling through the pipeline together
// with the metadata extensions annotate it with.
type MediaPacket struct {
	Payload   []byte    // Media payload, zero-copy slice
	Timestamp time.Time // Capture or synthesis timestamp

	audioLevel *AudioLevelMeta
}

// SetAudioLevel attaches an audio-level meta to the packet.
// A packet carries at most one such meta: an existing one is replaced.
func (p *MediaPacket) SetAudioLevel(level uint8, voice bool) {
	p.audioLevel = &AudioLevelMeta{Level: level, Voice: voice}
}

// AudioLevel returns the attached audio-level meta, or nil when the
// packet carries none.
func (p *MediaPacket) AudioLevel() *AudioLevelMeta {
	if p == nil {
		return nil
	}
	return p.audioLevel
}

// ClearAudioLevel removes the audio-level meta from the packet.
func (p *MediaPacket) ClearAudioLevel() {
	p.audioLevel = nil
}
