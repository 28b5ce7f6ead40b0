package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

const registryFileName = "instance.json"

// FileRegistry implements domain.InstanceRegistry using a JSON file.
type FileRegistry struct {
	path           string
	processManager domain.ProcessManager
	now            func() time.Time
}

// NewFileRegistry creates a registry inside dataDir.
func NewFileRegistry(dataDir string, pm domain.ProcessManager) domain.InstanceRegistry {
	return NewFileRegistryWithPath(filepath.Join(dataDir, registryFileName), pm)
}

// NewFileRegistryWithPath creates a registry at a specific path (for testing).
func NewFileRegistryWithPath(path string, pm domain.ProcessManager) domain.InstanceRegistry {
	return &FileRegistry{
		path:           path,
		processManager: pm,
		now:            time.Now,
	}
}

// GetRegistryPath returns the registry file path.
func (r *FileRegistry) GetRegistryPath() string {
	return r.path
}

// Register saves the current daemon's PID and device.
// It fails if another live instance is already registered.
func (r *FileRegistry) Register(daemon domain.Daemon) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	// Lock so two instances starting together cannot both win
	lockPath := r.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer func() { _ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN) }()

	alive, existing, err := r.IsAlive()
	if err != nil {
		return err
	}
	if alive && existing.PID != daemon.PID {
		return fmt.Errorf("tvmon already running (PID: %d, device: %s)", existing.PID, existing.Device)
	}

	now := r.now().Unix()
	entry := &domain.RegistryEntry{
		Version:       1,
		PID:           daemon.PID,
		Device:        daemon.Device.Address,
		StartedAt:     daemon.StartedAt.Unix(),
		LastHeartbeat: now,
		State:         domain.Disconnected.String(),
		AppVersion:    daemon.AppVersion,
		Mode:          string(DetectExecMode().Mode),
	}

	return r.atomicWrite(entry)
}

// UpdateHeartbeat refreshes the liveness timestamp and latest cycle state.
func (r *FileRegistry) UpdateHeartbeat(report domain.CycleReport, enforcements int) error {
	entry, err := r.GetAll()
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("instance not registered")
	}

	entry.LastHeartbeat = r.now().Unix()
	entry.State = report.State.String()
	entry.Foreground = string(report.Foreground)
	entry.Enforcements = enforcements
	return r.atomicWrite(entry)
}

// IsAlive reports whether the registered PID is still running.
func (r *FileRegistry) IsAlive() (bool, *domain.RegistryEntry, error) {
	entry, err := r.GetAll()
	if err != nil {
		return false, nil, err
	}
	if entry == nil {
		return false, nil, nil
	}
	return r.processManager.IsRunning(entry.PID), entry, nil
}

// GetAll returns the full snapshot, or nil if nothing is registered.
func (r *FileRegistry) GetAll() (*domain.RegistryEntry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entry domain.RegistryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("corrupt registry %s: %w", r.path, err)
	}

	return &entry, nil
}

// Clear removes the registry file.
func (r *FileRegistry) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// atomicWrite writes registry to file atomically (write + rename).
func (r *FileRegistry) atomicWrite(entry *domain.RegistryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", r.path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return err
	}
	return nil
}

// Ensure FileRegistry implements domain.InstanceRegistry.
var _ domain.InstanceRegistry = (*FileRegistry)(nil)
