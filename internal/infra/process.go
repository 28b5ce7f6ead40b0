package infra

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

// ProcessManagerImpl implements domain.ProcessManager using gopsutil.
type ProcessManagerImpl struct{}

// NewProcessManager creates a new process manager.
func NewProcessManager() domain.ProcessManager {
	return &ProcessManagerImpl{}
}

// IsRunning checks if a PID exists and is not a zombie.
func (pm *ProcessManagerImpl) IsRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	exists, err := process.PidExists(int32(pid))
	if err != nil || !exists {
		return false
	}

	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	statuses, err := p.Status()
	if err != nil {
		return true // Exists but status unreadable (e.g. other user)
	}
	for _, s := range statuses {
		if s == process.Zombie {
			return false
		}
	}
	return true
}

// GetCurrentPID returns the current process PID.
func (pm *ProcessManagerImpl) GetCurrentPID() int {
	return os.Getpid()
}

// Ensure ProcessManagerImpl implements domain.ProcessManager.
var _ domain.ProcessManager = (*ProcessManagerImpl)(nil)
