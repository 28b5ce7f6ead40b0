// Package daemon implements the poll loop that keeps the unwanted launcher
// out of the foreground.
package daemon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tv_mon/internal/policy"
	"github.com/eliteGoblin/focusd/tv_mon/internal/usecase"
)

// WatcherConfig holds watcher daemon configuration.
type WatcherConfig struct {
	PollInterval      time.Duration // Sleep between poll cycles
	HeartbeatInterval time.Duration // How often to refresh the instance registry
	DumpCommand       string        // Window-state query
}

// DefaultWatcherConfig returns default watcher configuration.
func DefaultWatcherConfig() WatcherConfig {
	return WatcherConfig{
		PollInterval:      100 * time.Millisecond,
		HeartbeatInterval: 30 * time.Second,
		DumpCommand:       "adb shell dumpsys window",
	}
}

// Connector keeps the device link up. Implemented by usecase.ConnectionManager.
type Connector interface {
	Refresh(ctx context.Context) domain.ConnectOutcome
	State() domain.ConnectionState
}

// Watcher is the enforcement loop. Each cycle refreshes the connection, reads
// the foreground app when connected, and enforces the policy on a match.
// Cycles never overlap.
type Watcher struct {
	config       WatcherConfig
	connection   Connector
	runner       domain.CommandRunner
	enforcer     domain.Enforcer
	registry     domain.InstanceRegistry
	daemon       domain.Daemon
	logger       *logging.Logger
	enforcements int
}

// NewWatcher creates a new watcher. registry may be nil.
func NewWatcher(
	config WatcherConfig,
	connection Connector,
	runner domain.CommandRunner,
	enforcer domain.Enforcer,
	registry domain.InstanceRegistry,
	daemon domain.Daemon,
	logger *logging.Logger,
) *Watcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Watcher{
		config:     config,
		connection: connection,
		runner:     runner,
		enforcer:   enforcer,
		registry:   registry,
		daemon:     daemon,
		logger:     logger,
	}
}

// Enforcements returns how many enforcement actions have run.
func (w *Watcher) Enforcements() int {
	return w.enforcements
}

// Run starts the watcher loop.
// This blocks until context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.registry != nil {
		if err := w.registry.Register(w.daemon); err != nil {
			w.logger.Error("failed to register watcher", zap.Error(err))
			return err
		}
		defer w.unregister()
	}

	w.logger.Notice("watcher started",
		zap.Int("pid", w.daemon.PID),
		zap.String("device", w.daemon.Device.Address),
		zap.String("policy", w.enforcer.Policy().ID))

	heartbeatTicker := time.NewTicker(w.config.HeartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		report := w.Cycle(ctx)

		sleep := time.NewTimer(w.config.PollInterval)
	wait:
		for {
			select {
			case <-ctx.Done():
				sleep.Stop()
				w.logger.Notice("watcher stopping")
				return ctx.Err()

			case <-heartbeatTicker.C:
				w.heartbeat(report)

			case <-sleep.C:
				break wait
			}
		}
	}
}

// Cycle runs one poll cycle: connectivity check, foreground check, and at
// most one enforcement action.
func (w *Watcher) Cycle(ctx context.Context) (report domain.CycleReport) {
	report.StartedAt = time.Now()
	report.Connect = w.connection.Refresh(ctx)
	report.State = w.connection.State()

	if report.State != domain.Connected {
		return report
	}

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("foreground check panicked: %v", r)
			w.logger.Error("poll cycle aborted", zap.Error(err))
			report.Recovered = err
		}
	}()

	w.checkForeground(ctx, &report)
	return report
}

// checkForeground reads the focused package and enforces on a match.
func (w *Watcher) checkForeground(ctx context.Context, report *domain.CycleReport) {
	out, ok := w.runner.Run(ctx, w.config.DumpCommand).Output()
	if !ok {
		return
	}
	report.DumpOK = true

	fg := usecase.ParseForegroundPackage(out)
	report.Foreground = fg

	if !policy.Matches(w.enforcer.Policy(), fg) {
		w.logger.Info("Active package '"+string(fg)+"' is not the target.",
			zap.String("keyword", w.enforcer.Policy().TargetKeyword))
		return
	}

	report.Matched = true
	report.Enforcement = w.enforcer.Enforce(ctx, fg)
	w.enforcements++
}

func (w *Watcher) heartbeat(report domain.CycleReport) {
	if w.registry == nil {
		return
	}
	if err := w.registry.UpdateHeartbeat(report, w.enforcements); err != nil {
		w.logger.Error("failed to update heartbeat", zap.Error(err))
	}
}

// unregister clears the registry if it still names this process.
func (w *Watcher) unregister() {
	entry, err := w.registry.GetAll()
	if err != nil || entry == nil || entry.PID != w.daemon.PID {
		return
	}
	if err := w.registry.Clear(); err != nil {
		w.logger.Error("failed to clear registry", zap.Error(err))
	}
}
