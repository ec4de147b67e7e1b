// Package generate synthesizes a pcap file carrying an RTP stream whose
// packets are annotated with the RFC 6464 audio-level header extension.
// It exists to produce deterministic input for the inspector and for
// interop testing against real endpoints.
package generate

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pion/rtp"

	"firestige.xyz/aulev/internal/config"
	"firestige.xyz/aulev/internal/core"
	"firestige.xyz/aulev/pkg/log"
	"firestige.xyz/aulev/pkg/rtpext"
)

const (
	frameSamples = 160 // 20 ms at 8 kHz
	frameGap     = 20 * time.Millisecond
	snapLen      = 65536

	// Talk-spurt shape: voicePackets active packets followed by
	// silencePackets of comfort silence, repeated.
	voicePackets   = 25
	silencePackets = 15

	// Every metaGap-th packet carries no audio-level meta at all,
	// modelling a sender that only measures part of the stream.
	metaGap = 10
)

// Generator writes synthetic RTP traffic with audio-level annotations.
type Generator struct {
	cfg   config.GenerateConfig
	ext   rtpext.Extension
	extID uint8
	flags rtpext.Flags
	log   log.Logger
}

// New wires a generator from configuration: the extension instance is
// built from the negotiated extmap entry.
func New(cfg *config.Config) (*Generator, error) {
	entry, err := cfg.Extmap.Entry()
	if err != nil {
		return nil, err
	}
	ext, err := rtpext.NewFromExtmap(entry)
	if err != nil {
		return nil, err
	}
	flags, err := cfg.Generate.Flags()
	if err != nil {
		return nil, err
	}
	if !flags.Intersects(ext.SupportedFlags()) {
		return nil, fmt.Errorf("%w: %s cannot use mode %s", core.ErrUnsupportedFlags, entry.URI, cfg.Generate.Mode)
	}

	return &Generator{
		cfg:   cfg.Generate,
		ext:   ext,
		extID: entry.ID,
		flags: flags,
		log:   log.GetLogger().WithField("component", "generate"),
	}, nil
}

// Run writes the configured number of packets to a pcap file at path
// and returns the number of packets written.
func (g *Generator) Run(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return 0, fmt.Errorf("writing pcap header: %w", err)
	}

	sequencer := rtp.NewFixedSequencer(1)
	base := time.Now()

	for i := 0; i < g.cfg.Count; i++ {
		data, err := g.buildFrame(i, sequencer)
		if err != nil {
			return i, fmt.Errorf("building packet %d: %w", i, err)
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * frameGap),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			return i, fmt.Errorf("writing packet %d: %w", i, err)
		}
	}

	g.log.WithFields(map[string]interface{}{
		"path":  path,
		"count": g.cfg.Count,
		"ssrc":  fmt.Sprintf("0x%08X", g.cfg.SSRC),
	}).Info("pcap written")
	return g.cfg.Count, nil
}

// buildFrame produces one Ethernet/IPv4/UDP/RTP frame.
func (g *Generator) buildFrame(i int, sequencer rtp.Sequencer) ([]byte, error) {
	mp := &core.MediaPacket{Payload: make([]byte, frameSamples)}
	if i%metaGap != metaGap-1 {
		level, voice := levelAt(i)
		mp.SetAudioLevel(level, voice)
	}

	rp := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			PayloadType:    uint8(g.cfg.PayloadType),
			SequenceNumber: sequencer.NextSequenceNumber(),
			Timestamp:      uint32(i) * frameSamples,
			SSRC:           g.cfg.SSRC,
		},
		Payload: mp.Payload,
	}
	if err := rtpext.WriteToPacket(g.ext, g.extID, mp, rp, g.flags); err != nil {
		return nil, err
	}

	rtpBytes, err := rp.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshalling rtp: %w", err)
	}

	eth := layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.ParseIP(g.cfg.SrcIP),
		DstIP:    net.ParseIP(g.cfg.DstIP),
	}
	udp := layers.UDP{
		SrcPort: layers.UDPPort(g.cfg.SrcPort),
		DstPort: layers.UDPPort(g.cfg.DstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(&ip); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, &eth, &ip, &udp, gopacket.Payload(rtpBytes)); err != nil {
		return nil, fmt.Errorf("serializing frame: %w", err)
	}
	return buf.Bytes(), nil
}

// levelAt returns the deterministic level/voice pattern for packet i:
// talk-spurts of rising loudness separated by silence at the RFC scale
// floor (127 dBov attenuation).
func levelAt(i int) (uint8, bool) {
	pos := i % (voicePackets + silencePackets)
	if pos < voicePackets {
		return uint8(30 + pos*2), true
	}
	return 127, false
}
