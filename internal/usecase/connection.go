package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tv_mon/internal/decode"
	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
)

// DefaultSuccessMarker is searched for in `adb connect` output. It also
// matches "disconnected".
const DefaultSuccessMarker = "connected"

// ConnectionConfig holds connection manager configuration.
type ConnectionConfig struct {
	Target            domain.DeviceTarget
	Command           string // rendered connect command, e.g. "adb connect 192.168.1.146:5555"
	SuccessMarker     string
	ReconnectInterval time.Duration
}

// ConnectionManager decides once per poll cycle whether a (re)connect is due
// and tracks the resulting state. It is owned by a single goroutine.
type ConnectionManager struct {
	config ConnectionConfig
	runner domain.CommandRunner
	logger *logging.Logger
	now    func() time.Time

	state       domain.ConnectionState
	attempted   bool
	lastAttempt time.Time
}

// NewConnectionManager creates a connection manager using the wall clock.
func NewConnectionManager(config ConnectionConfig, runner domain.CommandRunner, logger *logging.Logger) *ConnectionManager {
	return NewConnectionManagerWithClock(config, runner, logger, time.Now)
}

// NewConnectionManagerWithClock creates a connection manager with a custom clock (for testing).
func NewConnectionManagerWithClock(
	config ConnectionConfig,
	runner domain.CommandRunner,
	logger *logging.Logger,
	now func() time.Time,
) *ConnectionManager {
	if config.SuccessMarker == "" {
		config.SuccessMarker = DefaultSuccessMarker
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ConnectionManager{
		config: config,
		runner: runner,
		logger: logger,
		now:    now,
		state:  domain.Disconnected,
	}
}

// State returns the state set by the most recent attempt.
func (c *ConnectionManager) State() domain.ConnectionState {
	return c.state
}

// LastAttempt returns when the last attempt started, zero if none yet.
func (c *ConnectionManager) LastAttempt() time.Time {
	return c.lastAttempt
}

// Due reports whether an attempt should be made now: never attempted, or
// at least ReconnectInterval since the last attempt.
func (c *ConnectionManager) Due() bool {
	if !c.attempted {
		return true
	}
	return c.now().Sub(c.lastAttempt) >= c.config.ReconnectInterval
}

// Refresh attempts a connection if one is due and updates State.
// The last-attempt time advances after every attempt, whatever the outcome.
func (c *ConnectionManager) Refresh(ctx context.Context) (outcome domain.ConnectOutcome) {
	if !c.Due() {
		return domain.ConnectSkipped
	}

	started := c.now()
	defer func() {
		c.lastAttempt = started
		c.attempted = true
		if r := recover(); r != nil {
			c.logger.Error("connect attempt panicked",
				zap.String("device", c.config.Target.Address),
				zap.Error(fmt.Errorf("%v", r)))
			c.state = domain.Disconnected
			outcome = domain.ConnectFailed
		}
	}()

	c.logger.Connection("Connecting to device...", zap.String("device", c.config.Target.Address))

	result := c.runner.Run(ctx, c.config.Command)
	out, ok := result.Output()
	if !ok {
		c.state = domain.Disconnected
		if result.Err != nil {
			c.logger.Error("connect attempt failed",
				zap.String("device", c.config.Target.Address),
				zap.Error(result.Err))
			return domain.ConnectFailed
		}
		return domain.ConnectRejected
	}

	text := decode.Trimmed(out)
	if text != "" {
		c.logger.Connection(text)
	}

	if text != "" && strings.Contains(text, c.config.SuccessMarker) {
		c.state = domain.Connected
		return domain.ConnectSucceeded
	}

	c.state = domain.Disconnected
	return domain.ConnectRejected
}
