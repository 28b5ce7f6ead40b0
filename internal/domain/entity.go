// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import "time"

// DeviceTarget is the network address (host:port) of the supervised device.
type DeviceTarget struct {
	Address string
}

// ConnectionState is the logical link state to the device.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connected
)

func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// ConnectOutcome reports what a single connection refresh did.
type ConnectOutcome int

const (
	// ConnectSkipped means no attempt was due this cycle.
	ConnectSkipped ConnectOutcome = iota
	// ConnectSucceeded means the connect output carried the success marker.
	ConnectSucceeded
	// ConnectRejected means the command ran but reported no success marker or no output.
	ConnectRejected
	// ConnectFailed means the command could not be run at all.
	ConnectFailed
)

func (o ConnectOutcome) String() string {
	switch o {
	case ConnectSkipped:
		return "skipped"
	case ConnectSucceeded:
		return "connected"
	case ConnectRejected:
		return "rejected"
	case ConnectFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommandResult captures one child process invocation.
// Stdout is only meaningful when Success is true.
type CommandResult struct {
	Command    string
	Success    bool
	ExitCode   int
	Stdout     []byte
	Stderr     []byte
	Err        error // spawn failure or timeout, nil for a plain non-zero exit
	StartedAt  time.Time
	FinishedAt time.Time
}

// Output returns stdout and true on success, nil and false otherwise.
func (r CommandResult) Output() ([]byte, bool) {
	if !r.Success {
		return nil, false
	}
	return r.Stdout, true
}

// ForegroundApp is the package identifier owning window focus, empty if undetermined.
type ForegroundApp string

// Policy describes which foreground package to evict and how.
type Policy struct {
	ID             string
	Name           string
	TargetKeyword  string // matched as a substring of the foreground package
	DisableCommand string
	LaunchCommand  string
	EnableCommand  string
}

// EnforcementResult captures what happened during a single enforcement action.
type EnforcementResult struct {
	PolicyID   string
	Foreground ForegroundApp
	Disable    CommandResult
	Launch     CommandResult
	Enable     CommandResult
	ExecutedAt time.Time
	DurationMs int64
}

// CycleReport summarizes one poll cycle.
type CycleReport struct {
	Connect     ConnectOutcome
	State       ConnectionState
	Foreground  ForegroundApp
	DumpOK      bool // window dump produced output
	Matched     bool
	Enforcement *EnforcementResult
	Recovered   error // panic recovered inside the foreground branch
	StartedAt   time.Time
}

// Daemon represents the running watchdog process.
type Daemon struct {
	PID        int
	Device     DeviceTarget
	StartedAt  time.Time
	AppVersion string
}

// RegistryEntry is the status snapshot of the running watchdog.
// Persisted to a JSON file so the CLI can report on it.
type RegistryEntry struct {
	Version       int    `json:"version"`
	PID           int    `json:"pid"`
	Device        string `json:"device"`
	StartedAt     int64  `json:"started_at"`
	LastHeartbeat int64  `json:"last_heartbeat"`
	State         string `json:"state,omitempty"`
	Foreground    string `json:"foreground,omitempty"`
	Enforcements  int    `json:"enforcements"`
	Mode          string `json:"mode,omitempty"`
	AppVersion    string `json:"app_version,omitempty"`
}
