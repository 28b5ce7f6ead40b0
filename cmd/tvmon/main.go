// Package main is the CLI entry point for tvmon.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eliteGoblin/focusd/tv_mon/internal/config"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tvmon",
	Short: "TV launcher watchdog - keeps the stock home screen away",
	Long: `tvmon keeps an adb connection to an Android TV and polls which app
owns window focus. When the unwanted launcher (com.mitv.tvhome by default)
comes to the foreground it is disabled, the replacement launcher is started,
and the original is re-enabled for next time.

Settings come from TVMON_* environment variables, overridden by flags.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the watchdog loop in the foreground until signalled",
	RunE:  runRun,
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single poll cycle and print what happened",
	Long: `Runs one poll cycle immediately: connect, read the foreground app,
and enforce the policy if the target app has focus.`,
	RunE: runScan,
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Print the package that currently has window focus",
	RunE:  runFocus,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether a watchdog is running",
	RunE:  runStatus,
}

var listCmd = &cobra.Command{
	Use:   "list [policy-id]",
	Short: "List launcher policy presets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	cfg        = config.New()
	logLevel   int
	jsonOutput bool
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.Device.Address, "device", cfg.Device.Address, "Device address (host:port)")
	flags.StringVar(&cfg.Device.ConnectCommand, "connect-command", cfg.Device.ConnectCommand, "Connect command; {address} is replaced with --device")
	flags.StringVar(&cfg.Device.DumpCommand, "dump-command", cfg.Device.DumpCommand, "Window-state query command")
	flags.DurationVar(&cfg.Device.CommandTimeout, "command-timeout", cfg.Device.CommandTimeout, "Per-command timeout (0 disables)")
	flags.DurationVar(&cfg.Watcher.PollInterval, "poll-interval", cfg.Watcher.PollInterval, "Sleep between poll cycles")
	flags.DurationVar(&cfg.Watcher.ReconnectInterval, "reconnect-interval", cfg.Watcher.ReconnectInterval, "Minimum time between connect attempts")
	flags.StringVar(&cfg.Policy.ID, "policy", cfg.Policy.ID, "Policy preset ID (see 'tvmon list')")
	flags.StringVar(&cfg.Policy.Overrides.TargetKeyword, "keyword", cfg.Policy.Overrides.TargetKeyword, "Override the target package keyword")
	flags.StringVar(&cfg.Policy.Overrides.DisableCommand, "disable-command", cfg.Policy.Overrides.DisableCommand, "Override the disable command")
	flags.StringVar(&cfg.Policy.Overrides.LaunchCommand, "launch-command", cfg.Policy.Overrides.LaunchCommand, "Override the launch command")
	flags.StringVar(&cfg.Policy.Overrides.EnableCommand, "enable-command", cfg.Policy.Overrides.EnableCommand, "Override the enable command")
	flags.IntVar(&logLevel, "log-level", int(cfg.Log.Level), "Log tier to show (1-5, exact match; 4 = errors)")
	flags.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Write logs to this file instead of stdout")
	flags.StringVar(&cfg.State.Dir, "state-dir", cfg.State.Dir, "Directory for the instance registry")

	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(focusCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(versionCmd)
}
