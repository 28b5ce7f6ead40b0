// Package usecase contains application business logic.
package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
)

// EnforcerImpl implements domain.Enforcer.
type EnforcerImpl struct {
	runner domain.CommandRunner
	policy domain.Policy
	logger *logging.Logger
}

// NewEnforcer creates a new policy enforcer.
func NewEnforcer(runner domain.CommandRunner, policy domain.Policy, logger *logging.Logger) domain.Enforcer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &EnforcerImpl{
		runner: runner,
		policy: policy,
		logger: logger,
	}
}

// Policy returns the policy being enforced.
func (e *EnforcerImpl) Policy() domain.Policy {
	return e.policy
}

// Enforce disables the target and launches the replacement concurrently,
// waits for both, then re-enables the target. Command failures are recorded
// in the result and never stop the sequence.
func (e *EnforcerImpl) Enforce(ctx context.Context, fg domain.ForegroundApp) *domain.EnforcementResult {
	start := time.Now()
	result := &domain.EnforcementResult{
		PolicyID:   e.policy.ID,
		Foreground: fg,
		ExecutedAt: start,
	}

	e.logger.Info("Target package '"+string(fg)+"' detected, disabling the app and launching new app...",
		zap.String("policy", e.policy.ID))

	var g errgroup.Group
	g.Go(func() error {
		result.Disable = e.run(ctx, e.policy.DisableCommand)
		return nil
	})
	g.Go(func() error {
		result.Launch = e.run(ctx, e.policy.LaunchCommand)
		return nil
	})
	_ = g.Wait()

	e.logger.Info("Enabling "+e.policy.TargetKeyword+" again...",
		zap.String("policy", e.policy.ID))
	result.Enable = e.run(ctx, e.policy.EnableCommand)

	result.DurationMs = time.Since(start).Milliseconds()

	e.logger.Verbose("enforcement completed",
		zap.String("policy", e.policy.ID),
		zap.Bool("disabled", result.Disable.Success),
		zap.Bool("launched", result.Launch.Success),
		zap.Bool("enabled", result.Enable.Success),
		zap.Int64("duration_ms", result.DurationMs))

	return result
}

// run executes one command, turning a runner panic into a failed result.
// Disable and launch run on their own goroutines, out of reach of the
// caller's recover.
func (e *EnforcerImpl) run(ctx context.Context, command string) (result domain.CommandResult) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("command panicked: %v", r)
			e.logger.Error("command failed",
				zap.String("command", command),
				zap.String("policy", e.policy.ID),
				zap.Error(err))
			result = domain.CommandResult{
				Command:    command,
				ExitCode:   -1,
				Err:        err,
				FinishedAt: time.Now(),
			}
		}
	}()
	return e.runner.Run(ctx, command)
}

// Ensure EnforcerImpl implements domain.Enforcer.
var _ domain.Enforcer = (*EnforcerImpl)(nil)
