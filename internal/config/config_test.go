package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/aulev/internal/core"
	"firestige.xyz/aulev/pkg/rtpext"
	"firestige.xyz/aulev/pkg/rtpext/rfc6464"
)

func writeConfig(t *testing.T, doc map[string]any) string {
	t.Helper()
	data, err := yaml.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1, cfg.Extmap.ID)
	assert.Equal(t, rfc6464.URI, cfg.Extmap.URI)
	assert.Equal(t, "sendrecv", cfg.Extmap.Direction)
	assert.Equal(t, "", cfg.Extmap.Attributes)
	assert.Equal(t, 50, cfg.Generate.Count)
	assert.Equal(t, "one-byte", cfg.Generate.Mode)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, map[string]any{
		"log": map[string]any{"level": "debug"},
		"extmap": map[string]any{
			"id":         3,
			"attributes": "vad=off",
		},
		"generate": map[string]any{
			"count": 10,
			"mode":  "two-byte",
		},
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Extmap.ID)
	assert.Equal(t, "vad=off", cfg.Extmap.Attributes)
	// Untouched sections fall back to defaults.
	assert.Equal(t, rfc6464.URI, cfg.Extmap.URI)
	assert.Equal(t, 10, cfg.Generate.Count)

	flags, err := cfg.Generate.Flags()
	require.NoError(t, err)
	assert.Equal(t, rtpext.FlagTwoByte, flags)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"bad extmap id", map[string]any{"extmap": map[string]any{"id": 0}}},
		{"bad direction", map[string]any{"extmap": map[string]any{"direction": "upward"}}},
		{"bad mode", map[string]any{"generate": map[string]any{"mode": "three-byte"}}},
		{"bad count", map[string]any{"generate": map[string]any{"count": 0}}},
		{"bad payload type", map[string]any{"generate": map[string]any{"payload_type": 200}}},
		{"bad src ip", map[string]any{"generate": map[string]any{"src_ip": "not-an-ip"}}},
		{"bad inspect port", map[string]any{"inspect": map[string]any{"ports": []int{70000}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfigInvalid)
		})
	}
}

func TestExtmapEntry(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	entry, err := cfg.Extmap.Entry()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), entry.ID)
	assert.Equal(t, rtpext.DirectionSendRecv, entry.Direction)
	assert.Equal(t, rfc6464.URI, entry.URI)
}
