// Package config holds process-wide settings, read once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tv_mon/internal/policy"
)

// AddressPlaceholder is replaced with the device address in ConnectCommand.
const AddressPlaceholder = "{address}"

// Config holds all application configuration.
type Config struct {
	Device  DeviceConfig
	Watcher WatcherConfig
	Policy  PolicyConfig
	Log     LogConfig
	State   StateConfig
}

// DeviceConfig holds debug-bridge connection settings.
type DeviceConfig struct {
	Address        string        // host:port of the device
	ADBPath        string        // adb binary used by the preset commands
	ConnectCommand string        // may contain {address}
	DumpCommand    string        // window-state query
	CommandTimeout time.Duration // per child process; 0 disables
}

// WatcherConfig holds poll loop timing.
type WatcherConfig struct {
	PollInterval      time.Duration
	ReconnectInterval time.Duration
	HeartbeatInterval time.Duration
}

// PolicyConfig selects a preset and optionally overrides it.
type PolicyConfig struct {
	ID        string
	Overrides policy.Overrides
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level logging.Level
	File  string // empty means stdout
}

// StateConfig holds where the instance registry lives.
type StateConfig struct {
	Dir string // empty means the exec-mode default
}

// Default returns a Config with the stock Xiaomi TV settings.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			Address:        "192.168.1.146:5555",
			ADBPath:        "adb",
			ConnectCommand: "adb connect " + AddressPlaceholder,
			DumpCommand:    "adb shell dumpsys window",
			CommandTimeout: 30 * time.Second,
		},
		Watcher: WatcherConfig{
			PollInterval:      100 * time.Millisecond,
			ReconnectInterval: 100 * time.Millisecond,
			HeartbeatInterval: 30 * time.Second,
		},
		Policy: PolicyConfig{
			ID: policy.DefaultPolicyID,
		},
		Log: LogConfig{
			Level: logging.DefaultLevel,
		},
	}
}

// Validate checks the configuration for values the loop cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Device.Address) == "" {
		return fmt.Errorf("device address must not be empty")
	}
	if c.Device.ConnectCommand == "" {
		return fmt.Errorf("connect command must not be empty")
	}
	if c.Device.DumpCommand == "" {
		return fmt.Errorf("dump command must not be empty")
	}
	if c.Device.CommandTimeout < 0 {
		return fmt.Errorf("command timeout must not be negative: %v", c.Device.CommandTimeout)
	}
	if c.Watcher.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %v", c.Watcher.PollInterval)
	}
	if c.Watcher.ReconnectInterval < 0 {
		return fmt.Errorf("reconnect interval must not be negative: %v", c.Watcher.ReconnectInterval)
	}
	if c.Watcher.HeartbeatInterval <= 0 {
		return fmt.Errorf("heartbeat interval must be positive: %v", c.Watcher.HeartbeatInterval)
	}
	if !c.Log.Level.Valid() {
		return fmt.Errorf("log level must be between %d and %d: %d", logging.MinLevel, logging.MaxLevel, c.Log.Level)
	}
	return nil
}

// RenderConnectCommand substitutes the device address into ConnectCommand.
func (c *Config) RenderConnectCommand() string {
	return strings.ReplaceAll(c.Device.ConnectCommand, AddressPlaceholder, c.Device.Address)
}

// String returns a human-readable summary.
func (c *Config) String() string {
	return fmt.Sprintf(`  Device:             %s
  Connect command:    %s
  Dump command:       %s
  Command timeout:    %v
  Poll interval:      %v
  Reconnect interval: %v
  Policy:             %s
  Log level:          %d (%s)`,
		c.Device.Address,
		c.RenderConnectCommand(),
		c.Device.DumpCommand,
		c.Device.CommandTimeout,
		c.Watcher.PollInterval,
		c.Watcher.ReconnectInterval,
		c.Policy.ID,
		int(c.Log.Level), c.Log.Level)
}
