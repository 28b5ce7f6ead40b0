package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
)

// LoadFromEnv loads configuration from environment variables.
// Environment variables override default values; malformed values are ignored.
func LoadFromEnv(cfg *Config) {
	// Device configuration
	if addr := os.Getenv("TVMON_DEVICE"); addr != "" {
		cfg.Device.Address = addr
	}
	if adb := os.Getenv("TVMON_ADB"); adb != "" {
		cfg.Device.ADBPath = adb
		cfg.Device.ConnectCommand = adb + " connect " + AddressPlaceholder
		cfg.Device.DumpCommand = adb + " shell dumpsys window"
	}
	if cmd := os.Getenv("TVMON_CONNECT_COMMAND"); cmd != "" {
		cfg.Device.ConnectCommand = cmd
	}
	if cmd := os.Getenv("TVMON_DUMP_COMMAND"); cmd != "" {
		cfg.Device.DumpCommand = cmd
	}
	if d, ok := durationEnv("TVMON_COMMAND_TIMEOUT"); ok && d >= 0 {
		cfg.Device.CommandTimeout = d
	}

	// Watcher configuration
	if d, ok := durationEnv("TVMON_POLL_INTERVAL"); ok && d > 0 {
		cfg.Watcher.PollInterval = d
	}
	if d, ok := durationEnv("TVMON_RECONNECT_INTERVAL"); ok && d >= 0 {
		cfg.Watcher.ReconnectInterval = d
	}

	// Policy configuration
	if id := os.Getenv("TVMON_POLICY"); id != "" {
		cfg.Policy.ID = id
	}
	if kw := os.Getenv("TVMON_TARGET_KEYWORD"); kw != "" {
		cfg.Policy.Overrides.TargetKeyword = kw
	}
	if cmd := os.Getenv("TVMON_DISABLE_COMMAND"); cmd != "" {
		cfg.Policy.Overrides.DisableCommand = cmd
	}
	if cmd := os.Getenv("TVMON_LAUNCH_COMMAND"); cmd != "" {
		cfg.Policy.Overrides.LaunchCommand = cmd
	}
	if cmd := os.Getenv("TVMON_ENABLE_COMMAND"); cmd != "" {
		cfg.Policy.Overrides.EnableCommand = cmd
	}

	// Log configuration
	if lvl := os.Getenv("TVMON_LOG_LEVEL"); lvl != "" {
		if n, err := strconv.Atoi(lvl); err == nil && logging.Level(n).Valid() {
			cfg.Log.Level = logging.Level(n)
		}
	}
	if file := os.Getenv("TVMON_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}

	if dir := os.Getenv("TVMON_STATE_DIR"); dir != "" {
		cfg.State.Dir = dir
	}
}

// New creates a new Config with default values and loads from environment.
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}

func durationEnv(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

// ParseDuration accepts Go duration syntax ("250ms", "1m") or plain,
// possibly fractional, seconds ("0.1", "5").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(secs) || math.IsInf(secs, 0) {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(s)
}
