// Package core defines core types.
package core

// Labels represents key-value metadata attached by the inspector.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelRTPPayloadType = "rtp.payload_type" // RTP payload type number (0-127)
	LabelRTPSeq         = "rtp.seq"          // Sequence number (decimal)
	LabelRTPTimestamp   = "rtp.timestamp"    // RTP timestamp (decimal)
	LabelRTPSSRC        = "rtp.ssrc"         // Synchronization source (hex, 0xXXXXXXXX)
	LabelRTPExtension   = "rtp.has_ext"      // Header extension present ("true"/"false")

	LabelAudioLevel = "audiolevel.level" // 0-127, 0 loudest, 127 silence
	LabelAudioVoice = "audiolevel.voice" // Voice activity ("true"/"false")
)
