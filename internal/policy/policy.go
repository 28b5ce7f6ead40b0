// Package policy implements the Strategy pattern for launcher eviction rules.
// Each policy names the foreground package to evict, the replacement to launch,
// and the commands that do it.
package policy

import (
	"strings"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

// AppPolicy defines the strategy interface for evicting a foreground app.
type AppPolicy interface {
	// ID returns unique identifier (e.g., "mitv-home").
	ID() string

	// Name returns human-readable name for display.
	Name() string

	// TargetKeyword is matched as a substring of the foreground package.
	TargetKeyword() string

	// DisableCommand disables the target app.
	DisableCommand() string

	// LaunchCommand starts the replacement app.
	LaunchCommand() string

	// EnableCommand re-enables the target app after eviction.
	EnableCommand() string
}

// ToPolicy converts an AppPolicy to a domain.Policy entity.
func ToPolicy(ap AppPolicy) domain.Policy {
	return domain.Policy{
		ID:             ap.ID(),
		Name:           ap.Name(),
		TargetKeyword:  ap.TargetKeyword(),
		DisableCommand: ap.DisableCommand(),
		LaunchCommand:  ap.LaunchCommand(),
		EnableCommand:  ap.EnableCommand(),
	}
}

// Matches reports whether fg contains the policy's target keyword.
// Substring containment tolerates variant suffixes on the package name.
// An empty keyword never matches.
func Matches(p domain.Policy, fg domain.ForegroundApp) bool {
	if p.TargetKeyword == "" {
		return false
	}
	return strings.Contains(string(fg), p.TargetKeyword)
}
