package infra

import (
	"os"
	"path/filepath"
)

// ExecMode represents the execution mode of the application.
type ExecMode string

const (
	// ExecModeUser keeps state under the user's home directory
	ExecModeUser ExecMode = "user"
	// ExecModeSystem keeps state under /var/lib (running as root)
	ExecModeSystem ExecMode = "system"
)

// ExecModeConfig holds paths and settings based on execution mode.
type ExecModeConfig struct {
	Mode    ExecMode
	DataDir string // Where the instance registry lives
}

// DetectExecMode determines the execution mode based on effective UID.
func DetectExecMode() *ExecModeConfig {
	if os.Geteuid() == 0 {
		return &ExecModeConfig{
			Mode:    ExecModeSystem,
			DataDir: "/var/lib/tvmon",
		}
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.TempDir()
	}
	return &ExecModeConfig{
		Mode:    ExecModeUser,
		DataDir: filepath.Join(home, ".tvmon"),
	}
}

// String returns a human-readable description of the mode.
func (m ExecMode) String() string {
	switch m {
	case ExecModeSystem:
		return "system (root)"
	case ExecModeUser:
		return "user (non-root)"
	default:
		return "unknown"
	}
}
