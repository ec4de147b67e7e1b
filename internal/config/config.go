// Package config handles configuration loading using viper.
package config

import (
	"fmt"
	"net/netip"

	"firestige.xyz/aulev/pkg/log"
	"firestige.xyz/aulev/pkg/rtpext"
	"firestige.xyz/aulev/pkg/rtpext/rfc6464"
)

// Config is the top-level aulev configuration.
type Config struct {
	Log      log.Config     `mapstructure:"log"`
	Extmap   ExtmapConfig   `mapstructure:"extmap"`
	Inspect  InspectConfig  `mapstructure:"inspect"`
	Generate GenerateConfig `mapstructure:"generate"`
}

// ExtmapConfig describes the negotiated audio-level extension entry.
type ExtmapConfig struct {
	ID         int    `mapstructure:"id"`         // 1-14 one-byte, 1-255 two-byte
	URI        string `mapstructure:"uri"`        // extension URI
	Direction  string `mapstructure:"direction"`  // sendrecv | sendonly | recvonly | inactive
	Attributes string `mapstructure:"attributes"` // "" | vad=on | vad=off
}

// Entry converts the section into an rtpext.Extmap.
func (c ExtmapConfig) Entry() (rtpext.Extmap, error) {
	dir, err := rtpext.ParseDirection(c.Direction)
	if err != nil {
		return rtpext.Extmap{}, err
	}
	if c.ID < 1 || c.ID > 255 {
		return rtpext.Extmap{}, fmt.Errorf("extmap id %d out of range", c.ID)
	}
	return rtpext.Extmap{
		ID:         uint8(c.ID),
		Direction:  dir,
		URI:        c.URI,
		Attributes: c.Attributes,
	}, nil
}

// InspectConfig tunes pcap inspection.
type InspectConfig struct {
	// Ports restricts RTP detection to these UDP destination ports.
	// Empty means apply the header heuristic to every UDP datagram.
	Ports []int `mapstructure:"ports"`
}

// GenerateConfig drives synthetic stream generation.
type GenerateConfig struct {
	Count       int    `mapstructure:"count"`
	Mode        string `mapstructure:"mode"` // one-byte | two-byte
	PayloadType int    `mapstructure:"payload_type"`
	SSRC        uint32 `mapstructure:"ssrc"`
	SrcIP       string `mapstructure:"src_ip"`
	DstIP       string `mapstructure:"dst_ip"`
	SrcPort     int    `mapstructure:"src_port"`
	DstPort     int    `mapstructure:"dst_port"`
}

// Flags maps the configured framing mode to rtpext flags.
func (c GenerateConfig) Flags() (rtpext.Flags, error) {
	switch c.Mode {
	case "", "one-byte":
		return rtpext.FlagOneByte, nil
	case "two-byte":
		return rtpext.FlagTwoByte, nil
	default:
		return 0, fmt.Errorf("unknown framing mode: %s (must be one-byte or two-byte)", c.Mode)
	}
}

// Validate checks cross-field consistency after loading.
func (cfg *Config) Validate() error {
	if _, err := cfg.Extmap.Entry(); err != nil {
		return fmt.Errorf("extmap: %w", err)
	}
	if cfg.Extmap.URI == "" {
		return fmt.Errorf("extmap: uri must not be empty")
	}

	for _, p := range cfg.Inspect.Ports {
		if p < 1 || p > 65535 {
			return fmt.Errorf("inspect: port %d out of range", p)
		}
	}

	g := cfg.Generate
	if g.Count < 1 {
		return fmt.Errorf("generate: count must be positive")
	}
	if _, err := g.Flags(); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	if g.PayloadType < 0 || g.PayloadType > 127 {
		return fmt.Errorf("generate: payload type %d out of range", g.PayloadType)
	}
	if _, err := netip.ParseAddr(g.SrcIP); err != nil {
		return fmt.Errorf("generate: bad src_ip %q: %w", g.SrcIP, err)
	}
	if _, err := netip.ParseAddr(g.DstIP); err != nil {
		return fmt.Errorf("generate: bad dst_ip %q: %w", g.DstIP, err)
	}
	if g.SrcPort < 1 || g.SrcPort > 65535 || g.DstPort < 1 || g.DstPort > 65535 {
		return fmt.Errorf("generate: ports must be in 1-65535")
	}
	return nil
}

// Defaults returns the built-in configuration: RFC 6464 on extmap ID 1,
// VAD advertised, info-level console logging.
func Defaults() *Config {
	return &Config{
		Log: log.Config{
			Level:  "info",
			Format: "text",
		},
		Extmap: ExtmapConfig{
			ID:        1,
			URI:       rfc6464.URI,
			Direction: "sendrecv",
		},
		Generate: GenerateConfig{
			Count:       50,
			Mode:        "one-byte",
			PayloadType: 0,
			SSRC:        0x1234ABCD,
			SrcIP:       "10.0.0.1",
			DstIP:       "10.0.0.2",
			SrcPort:     5004,
			DstPort:     5004,
		},
	}
}
