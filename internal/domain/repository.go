package domain

import "context"

// CommandRunner executes shell command strings on the host.
// Implementations never return an error: failures are carried in the result.
type CommandRunner interface {
	// Run executes command and waits for it to finish.
	Run(ctx context.Context, command string) CommandResult
}

// ProcessManager handles OS process operations.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// InstanceRegistry records the running watchdog so that a second one refuses
// to start and the status command can find it.
type InstanceRegistry interface {
	// Register saves the current daemon's PID and device.
	Register(daemon Daemon) error

	// UpdateHeartbeat refreshes the liveness timestamp and latest cycle state.
	UpdateHeartbeat(report CycleReport, enforcements int) error

	// IsAlive reports whether a registered instance is still running.
	IsAlive() (bool, *RegistryEntry, error)

	// GetAll returns the full snapshot (for status command).
	GetAll() (*RegistryEntry, error)

	// Clear removes the registry file.
	Clear() error

	// GetRegistryPath returns the registry file path (for tests).
	GetRegistryPath() string
}

// PolicyStore provides access to launcher policies.
type PolicyStore interface {
	// GetAll returns all registered policies.
	GetAll() []Policy

	// GetByID returns the policy with the given ID.
	GetByID(id string) (*Policy, error)

	// List returns IDs of all policies.
	List() []string
}

// Enforcer evicts the unwanted foreground app.
type Enforcer interface {
	// Enforce disables the target and launches the replacement concurrently,
	// then re-enables the target.
	Enforce(ctx context.Context, fg ForegroundApp) *EnforcementResult

	// Policy returns the policy being enforced.
	Policy() Policy
}
