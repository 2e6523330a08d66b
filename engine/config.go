package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wippyai/cortex-bridge/channel"
	"github.com/wippyai/cortex-bridge/errors"
	"github.com/wippyai/cortex-bridge/heartbeat"
	"github.com/wippyai/cortex-bridge/schedule"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvTickRate         = "CORTEX_AUTORUN_RATE_MILLISECONDS"
	EnvTickRateLegacy   = "CORTEX_AUTORUN_RATE_MILISECONDS"
	EnvHeartbeatTimeout = "CORTEX_AUTORUN_HEARTBEAT_TIMEOUT_SECONDS"
	EnvInboundCapacity  = "CORTEX_INBOUND_CAPACITY"
	EnvOutboundCapacity = "CORTEX_OUTBOUND_CAPACITY"
	EnvPluginPath       = "CORTEX_PLUGIN_PATH"
)

// validate is shared; validator caches struct metadata.
var validate = validator.New()

// Config holds the tunables of an engine run.
type Config struct {
	// PluginPath points at an optional wasm decision plugin.
	PluginPath string `validate:"omitempty,file"`

	// TickInterval is the period of the run loop.
	TickInterval time.Duration `validate:"gt=0"`

	// HeartbeatTimeout is how long the engine runs without a heartbeat.
	// Zero disables the liveness gate.
	HeartbeatTimeout time.Duration `validate:"gte=0"`

	InboundCapacity  int `validate:"gte=0,lte=1048576"`
	OutboundCapacity int `validate:"gte=0,lte=1048576"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		TickInterval:     schedule.DefaultInterval,
		HeartbeatTimeout: heartbeat.DefaultTimeout,
		InboundCapacity:  channel.DefaultInboundCapacity,
		OutboundCapacity: channel.DefaultOutboundCapacity,
	}
}

// Validate checks the configuration bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.InvalidConfig("config validation failed", err)
	}
	return nil
}

// LookupFunc has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ConfigFromEnv builds a Config from the environment. Unset variables keep
// their defaults; malformed ones are logged and also keep their defaults.
// The result is not validated.
func ConfigFromEnv(lookup LookupFunc) Config {
	cfg := DefaultConfig()
	log := Logger()

	rateKey := EnvTickRate
	if _, ok := lookup(rateKey); !ok {
		if _, legacy := lookup(EnvTickRateLegacy); legacy {
			rateKey = EnvTickRateLegacy
		}
	}
	if ms, ok := envInt(lookup, rateKey, log); ok {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if secs, ok := envInt(lookup, EnvHeartbeatTimeout, log); ok {
		cfg.HeartbeatTimeout = time.Duration(secs) * time.Second
	}
	if n, ok := envInt(lookup, EnvInboundCapacity, log); ok {
		cfg.InboundCapacity = int(n)
	}
	if n, ok := envInt(lookup, EnvOutboundCapacity, log); ok {
		cfg.OutboundCapacity = int(n)
	}
	if path, ok := lookup(EnvPluginPath); ok {
		cfg.PluginPath = strings.TrimSpace(path)
	}

	return cfg
}

// envInt reads a non-negative integer. ok is false when the variable is
// unset or malformed.
func envInt(lookup LookupFunc, key string, log *zap.Logger) (uint64, bool) {
	raw, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		log.Warn("ignoring malformed environment value",
			zap.String("key", key),
			zap.String("value", raw),
			zap.Error(err))
		return 0, false
	}
	return n, true
}

func (c Config) String() string {
	return fmt.Sprintf("tick=%s heartbeat=%s inbound=%d outbound=%d plugin=%q",
		c.TickInterval, c.HeartbeatTimeout, c.InboundCapacity, c.OutboundCapacity, c.PluginPath)
}

// Fields renders the config as zap fields.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.Duration("tick_interval", c.TickInterval),
		zap.Duration("heartbeat_timeout", c.HeartbeatTimeout),
		zap.Int("inbound_capacity", c.InboundCapacity),
		zap.Int("outbound_capacity", c.OutboundCapacity),
		zap.String("plugin_path", c.PluginPath),
	}
}
