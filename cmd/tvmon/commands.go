package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tv_mon/internal/config"
	"github.com/eliteGoblin/focusd/tv_mon/internal/daemon"
	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/infra"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
	"github.com/eliteGoblin/focusd/tv_mon/internal/policy"
	"github.com/eliteGoblin/focusd/tv_mon/internal/usecase"
)

// components is everything a poll cycle needs, wired from cfg.
type components struct {
	logger     *logging.Logger
	runner     *infra.ShellRunner
	policy     domain.Policy
	connection *usecase.ConnectionManager
	enforcer   domain.Enforcer
	watcher    *daemon.Watcher
}

// buildComponents validates cfg and wires the watchdog. registry may be nil.
func buildComponents(cfg *config.Config, registry domain.InstanceRegistry) (*components, error) {
	cfg.Log.Level = logging.Level(logLevel)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	presets := policy.NewRegistryWithADB(cfg.Device.ADBPath)
	p, err := presets.Resolve(cfg.Policy.ID, cfg.Policy.Overrides)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err,
			strings.Join(policy.NewPolicyStore(presets).List(), ", "))
	}

	logger := logging.NewFromPath(cfg.Log.File, cfg.Log.Level)
	runner := infra.NewShellRunner(cfg.Device.CommandTimeout, logger)
	target := domain.DeviceTarget{Address: cfg.Device.Address}

	connection := usecase.NewConnectionManager(usecase.ConnectionConfig{
		Target:            target,
		Command:           cfg.RenderConnectCommand(),
		SuccessMarker:     usecase.DefaultSuccessMarker,
		ReconnectInterval: cfg.Watcher.ReconnectInterval,
	}, runner, logger)
	enforcer := usecase.NewEnforcer(runner, p, logger)

	d := domain.Daemon{
		PID:        infra.NewProcessManager().GetCurrentPID(),
		Device:     target,
		StartedAt:  time.Now(),
		AppVersion: Version,
	}
	watcher := daemon.NewWatcher(daemon.WatcherConfig{
		PollInterval:      cfg.Watcher.PollInterval,
		HeartbeatInterval: cfg.Watcher.HeartbeatInterval,
		DumpCommand:       cfg.Device.DumpCommand,
	}, connection, runner, enforcer, registry, d, logger)

	return &components{
		logger:     logger,
		runner:     runner,
		policy:     p,
		connection: connection,
		enforcer:   enforcer,
		watcher:    watcher,
	}, nil
}

// stateDir returns the configured registry directory or the exec-mode default.
func stateDir(cfg *config.Config) string {
	if cfg.State.Dir != "" {
		return cfg.State.Dir
	}
	return infra.DetectExecMode().DataDir
}

func newRegistry(cfg *config.Config) domain.InstanceRegistry {
	return infra.NewFileRegistry(stateDir(cfg), infra.NewProcessManager())
}

func runRun(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(cfg, newRegistry(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = c.logger.Sync() }()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			c.logger.Notice("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	c.logger.Notice("starting tvmon", zap.String("config", "\n"+cfg.String()))

	if err := c.watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = c.logger.Sync() }()

	report := c.watcher.Cycle(cmd.Context())
	printReport(report, c.policy)
	return nil
}

func printReport(r domain.CycleReport, p domain.Policy) {
	fmt.Println("\n=== Poll Cycle ===")
	fmt.Printf("Connect:    %s\n", r.Connect)
	fmt.Printf("State:      %s\n", r.State)
	if r.State != domain.Connected {
		fmt.Println("Foreground: (skipped, not connected)")
		fmt.Println("==================")
		return
	}
	if !r.DumpOK {
		fmt.Println("Foreground: (window dump failed)")
	} else if r.Foreground == "" {
		fmt.Println("Foreground: (undetermined)")
	} else {
		fmt.Printf("Foreground: %s\n", r.Foreground)
	}
	fmt.Printf("Target:     %s (matched: %v)\n", p.TargetKeyword, r.Matched)

	if e := r.Enforcement; e != nil {
		fmt.Printf("\n[%s] enforced in %dms\n", e.PolicyID, e.DurationMs)
		fmt.Printf("  disable: %s\n", okString(e.Disable))
		fmt.Printf("  launch:  %s\n", okString(e.Launch))
		fmt.Printf("  enable:  %s\n", okString(e.Enable))
	}
	if r.Recovered != nil {
		fmt.Printf("\nCycle aborted: %v\n", r.Recovered)
	}
	fmt.Println("==================")
}

func okString(r domain.CommandResult) string {
	if r.Success {
		return "ok"
	}
	if r.Err != nil {
		return fmt.Sprintf("failed (%v)", r.Err)
	}
	return fmt.Sprintf("failed (exit %d)", r.ExitCode)
}

func runFocus(cmd *cobra.Command, args []string) error {
	c, err := buildComponents(cfg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = c.logger.Sync() }()

	ctx := cmd.Context()
	c.connection.Refresh(ctx)
	if c.connection.State() != domain.Connected {
		return fmt.Errorf("could not connect to %s", cfg.Device.Address)
	}

	out, ok := c.runner.Output(ctx, cfg.Device.DumpCommand)
	if !ok {
		return fmt.Errorf("window dump failed")
	}

	fg := usecase.ParseForegroundPackage(out)
	if fg == "" {
		fmt.Println("(undetermined)")
		return nil
	}
	fmt.Println(fg)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	registry := newRegistry(cfg)

	fmt.Println("\n=== tvmon Status ===")

	alive, entry, err := registry.IsAlive()
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}
	if entry == nil {
		fmt.Println("Status: NOT RUNNING")
		fmt.Println("\nRun 'tvmon run' to start the watchdog.")
		return nil
	}
	if !alive {
		fmt.Printf("Status: NOT RUNNING (stale entry for PID %d)\n", entry.PID)
		return nil
	}

	fmt.Printf("Status: RUNNING (PID: %d)\n", entry.PID)
	fmt.Printf("Device: %s\n", entry.Device)
	if entry.State != "" {
		fmt.Printf("Link: %s\n", entry.State)
	}
	if entry.Foreground != "" {
		fmt.Printf("Foreground: %s\n", entry.Foreground)
	}
	fmt.Printf("Enforcements: %d\n", entry.Enforcements)
	if entry.StartedAt > 0 {
		fmt.Printf("Uptime: %s\n", time.Since(time.Unix(entry.StartedAt, 0)).Round(time.Second))
	}
	if entry.LastHeartbeat > 0 {
		lastBeat := time.Unix(entry.LastHeartbeat, 0)
		fmt.Printf("Last heartbeat: %s ago\n", time.Since(lastBeat).Round(time.Second))
	}
	fmt.Printf("Registry: %s\n", registry.GetRegistryPath())
	fmt.Println("====================")
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store := policy.NewPolicyStore(policy.NewRegistryWithADB(cfg.Device.ADBPath))

	policies := store.GetAll()
	if len(args) == 1 {
		p, err := store.GetByID(args[0])
		if err != nil {
			return err
		}
		policies = []domain.Policy{*p}
	}

	fmt.Println("\n=== Launcher Policies ===")
	for _, p := range policies {
		fmt.Printf("\n[%s] %s\n", p.ID, p.Name)
		fmt.Printf("  Target keyword: %s\n", p.TargetKeyword)
		fmt.Printf("  Disable: %s\n", p.DisableCommand)
		fmt.Printf("  Launch:  %s\n", p.LaunchCommand)
		fmt.Printf("  Enable:  %s\n", p.EnableCommand)
	}
	fmt.Println("\n=========================")
	return nil
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("tvmon %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
