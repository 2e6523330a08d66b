package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cortex-bridge/errors"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{
			name: "defaults",
			env:  nil,
			want: DefaultConfig(),
		},
		{
			name: "all set",
			env: map[string]string{
				EnvTickRate:         "50",
				EnvHeartbeatTimeout: "5",
				EnvInboundCapacity:  "8",
				EnvOutboundCapacity: " 16 ",
				EnvPluginPath:       "/tmp/plugin.wasm",
			},
			want: Config{
				TickInterval:     50 * time.Millisecond,
				HeartbeatTimeout: 5 * time.Second,
				InboundCapacity:  8,
				OutboundCapacity: 16,
				PluginPath:       "/tmp/plugin.wasm",
			},
		},
		{
			name: "legacy rate spelling",
			env:  map[string]string{EnvTickRateLegacy: "75"},
			want: func() Config {
				c := DefaultConfig()
				c.TickInterval = 75 * time.Millisecond
				return c
			}(),
		},
		{
			name: "current spelling wins",
			env:  map[string]string{EnvTickRate: "10", EnvTickRateLegacy: "75"},
			want: func() Config {
				c := DefaultConfig()
				c.TickInterval = 10 * time.Millisecond
				return c
			}(),
		},
		{
			name: "malformed keeps defaults",
			env: map[string]string{
				EnvTickRate:         "fast",
				EnvHeartbeatTimeout: "-1",
				EnvInboundCapacity:  "",
			},
			want: DefaultConfig(),
		},
		{
			name: "zero timeout disables gate",
			env:  map[string]string{EnvHeartbeatTimeout: "0"},
			want: func() Config {
				c := DefaultConfig()
				c.HeartbeatTimeout = 0
				return c
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFromEnv(mapLookup(tt.env)))
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 2*time.Minute, cfg.HeartbeatTimeout)
	assert.Equal(t, 100, cfg.InboundCapacity)
	assert.Equal(t, 100, cfg.OutboundCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	plugin := filepath.Join(t.TempDir(), "plugin.wasm")
	require.NoError(t, os.WriteFile(plugin, []byte{0x00, 0x61, 0x73, 0x6d}, 0o600))

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"existing plugin", func(c *Config) { c.PluginPath = plugin }, false},
		{"missing plugin", func(c *Config) { c.PluginPath = plugin + ".missing" }, true},
		{"zero tick", func(c *Config) { c.TickInterval = 0 }, true},
		{"negative timeout", func(c *Config) { c.HeartbeatTimeout = -time.Second }, true},
		{"negative inbound", func(c *Config) { c.InboundCapacity = -1 }, true},
		{"huge outbound", func(c *Config) { c.OutboundCapacity = 1 << 21 }, true},
		{"zero inbound", func(c *Config) { c.InboundCapacity = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, &errors.Error{Kind: errors.KindInvalidConfig})
		})
	}
}
