// Package inspect walks a pcap file, identifies RTP datagrams and
// decodes the RFC 6464 audio-level header extension they carry.
//
// RTP detection uses a lightweight header heuristic (V=2, payload-type
// range, minimum length) optionally narrowed to configured UDP ports.
// RTCP is recognized by its 200-209 packet-type range and skipped.
package inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pion/rtp"

	"firestige.xyz/aulev/internal/config"
	"firestige.xyz/aulev/internal/core"
	"firestige.xyz/aulev/pkg/log"
	"firestige.xyz/aulev/pkg/rtpext"
)

// rtcpPayloadTypeMin / Max define the RTCP PT range per RFC 5761 / RFC 3550.
const (
	rtcpPayloadTypeMin = 200
	rtcpPayloadTypeMax = 209

	rtpMinLength = 12 // Fixed RTP header size (RFC 3550 §5.1)
)

// Summary aggregates what a capture contained.
type Summary struct {
	Frames         int // frames in the capture
	UDP            int // UDP datagrams seen
	RTP            int // datagrams detected as RTP
	WithAudioLevel int // RTP packets carrying the extension
	Voice          int // packets with the voice-activity bit set
	MinLevel       uint8
	MaxLevel       uint8

	levelSum int
}

// AvgLevel returns the mean level over packets carrying the extension,
// or 0 when none did.
func (s *Summary) AvgLevel() float64 {
	if s.WithAudioLevel == 0 {
		return 0
	}
	return float64(s.levelSum) / float64(s.WithAudioLevel)
}

// VoiceRatio returns the fraction of extension-carrying packets with
// voice activity set.
func (s *Summary) VoiceRatio() float64 {
	if s.WithAudioLevel == 0 {
		return 0
	}
	return float64(s.Voice) / float64(s.WithAudioLevel)
}

func (s *Summary) observe(meta *core.AudioLevelMeta) {
	if s.WithAudioLevel == 0 || meta.Level < s.MinLevel {
		s.MinLevel = meta.Level
	}
	if s.WithAudioLevel == 0 || meta.Level > s.MaxLevel {
		s.MaxLevel = meta.Level
	}
	s.WithAudioLevel++
	s.levelSum += int(meta.Level)
	if meta.Voice {
		s.Voice++
	}
}

// Inspector decodes audio-level extensions out of a capture file.
type Inspector struct {
	ext   rtpext.Extension
	extID uint8
	ports map[int]struct{}
	log   log.Logger
}

// New wires an inspector from configuration: the extension instance is
// built from the negotiated extmap entry.
func New(cfg *config.Config) (*Inspector, error) {
	entry, err := cfg.Extmap.Entry()
	if err != nil {
		return nil, err
	}
	ext, err := rtpext.NewFromExtmap(entry)
	if err != nil {
		return nil, err
	}

	var ports map[int]struct{}
	if len(cfg.Inspect.Ports) > 0 {
		ports = make(map[int]struct{}, len(cfg.Inspect.Ports))
		for _, p := range cfg.Inspect.Ports {
			ports[p] = struct{}{}
		}
	}

	return &Inspector{
		ext:   ext,
		extID: entry.ID,
		ports: ports,
		log:   log.GetLogger().WithField("component", "inspect"),
	}, nil
}

// Run walks the pcap at path and returns the aggregate summary.
func (i *Inspector) Run(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r, err := pcapgo.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading pcap %s: %w", path, err)
	}

	summary := &Summary{}
	for {
		data, _, err := r.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return summary, fmt.Errorf("reading packet: %w", err)
		}
		summary.Frames++
		i.handleFrame(data, r.LinkType(), summary)
	}

	i.log.WithFields(map[string]interface{}{
		"frames":      summary.Frames,
		"rtp":         summary.RTP,
		"audio_level": summary.WithAudioLevel,
	}).Info("capture processed")
	return summary, nil
}

func (i *Inspector) handleFrame(data []byte, linkType layers.LinkType, summary *Summary) {
	pkt := gopacket.NewPacket(data, linkType, gopacket.Default)

	udpLayer := pkt.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return
	}
	udp := udpLayer.(*layers.UDP)
	summary.UDP++

	if i.ports != nil {
		if _, ok := i.ports[int(udp.DstPort)]; !ok {
			return
		}
	}
	if !looksLikeRTP(udp.Payload) {
		return
	}

	var rp rtp.Packet
	if err := rp.Unmarshal(udp.Payload); err != nil {
		i.log.WithError(err).Debug("datagram passed heuristic but is not RTP")
		return
	}
	summary.RTP++

	mp := &core.MediaPacket{Payload: rp.Payload}
	found, err := rtpext.ReadFromPacket(i.ext, i.extID, &rp, mp)
	if err != nil {
		i.log.WithError(err).Debug("decoding audio-level extension")
		return
	}
	if !found {
		return
	}

	meta := mp.AudioLevel()
	summary.observe(meta)

	if i.log.IsDebugEnabled() {
		i.log.WithFields(map[string]interface{}{
			core.LabelRTPSSRC:        fmt.Sprintf("0x%08X", rp.SSRC),
			core.LabelRTPSeq:         fmt.Sprintf("%d", rp.SequenceNumber),
			core.LabelRTPTimestamp:   fmt.Sprintf("%d", rp.Timestamp),
			core.LabelRTPPayloadType: fmt.Sprintf("%d", rp.PayloadType),
			core.LabelAudioLevel:     fmt.Sprintf("%d", meta.Level),
			core.LabelAudioVoice:     fmt.Sprintf("%t", meta.Voice),
		}).Debug("audio level")
	}
}

// looksLikeRTP returns true when the datagram passes lightweight RTP
// header checks. RTCP (packet types 200-209) is rejected here.
func looksLikeRTP(payload []byte) bool {
	if len(payload) < rtpMinLength {
		return false
	}
	if (payload[0]>>6)&0x3 != 2 {
		return false
	}
	pt := payload[1]
	if pt >= rtcpPayloadTypeMin && pt <= rtcpPayloadTypeMax {
		return false
	}
	return true
}
