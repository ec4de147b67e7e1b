package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/aulev/internal/core"
)

// Load reads the configuration file at path on top of the built-in
// defaults and AULEV_* environment overrides. An empty path loads
// defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("AULEV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfigInvalid, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file.enabled", false)

	v.SetDefault("extmap.id", d.Extmap.ID)
	v.SetDefault("extmap.uri", d.Extmap.URI)
	v.SetDefault("extmap.direction", d.Extmap.Direction)
	v.SetDefault("extmap.attributes", d.Extmap.Attributes)

	v.SetDefault("generate.count", d.Generate.Count)
	v.SetDefault("generate.mode", d.Generate.Mode)
	v.SetDefault("generate.payload_type", d.Generate.PayloadType)
	v.SetDefault("generate.ssrc", d.Generate.SSRC)
	v.SetDefault("generate.src_ip", d.Generate.SrcIP)
	v.SetDefault("generate.dst_ip", d.Generate.DstIP)
	v.SetDefault("generate.src_port", d.Generate.SrcPort)
	v.SetDefault("generate.dst_port", d.Generate.DstPort)
}
