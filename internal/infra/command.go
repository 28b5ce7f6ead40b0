// Package infra implements infrastructure concerns (commands, processes, registry).
package infra

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/focusd/tv_mon/internal/decode"
	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
)

// DefaultShell interprets command strings.
const DefaultShell = "/bin/sh"

// waitDelay bounds how long a killed command's grandchildren may hold its pipes.
const waitDelay = time.Second

// ShellRunner implements domain.CommandRunner by running `sh -c <command>`.
// A failed command is logged at the error tier and reported as absent output;
// it never aborts the caller.
type ShellRunner struct {
	shell   string
	timeout time.Duration
	logger  *logging.Logger
}

// NewShellRunner creates a runner. A zero timeout lets commands run unbounded.
func NewShellRunner(timeout time.Duration, logger *logging.Logger) *ShellRunner {
	return NewShellRunnerWithShell(DefaultShell, timeout, logger)
}

// NewShellRunnerWithShell creates a runner with a custom interpreter (for testing).
func NewShellRunnerWithShell(shell string, timeout time.Duration, logger *logging.Logger) *ShellRunner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ShellRunner{shell: shell, timeout: timeout, logger: logger}
}

// Run executes command and waits for completion.
func (r *ShellRunner) Run(ctx context.Context, command string) domain.CommandResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	cmd.Stdin = nil // Prevent any interactive prompts
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	result := domain.CommandResult{
		Command:   command,
		StartedAt: time.Now(),
	}
	err := cmd.Run()
	result.FinishedAt = time.Now()
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()

	if err == nil {
		result.Success = true
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
		result.Err = err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.Err = ctxErr
	}

	fields := []zap.Field{
		zap.String("command", command),
		zap.String("stderr", decode.Trimmed(result.Stderr)),
		zap.Int("exit_code", result.ExitCode),
	}
	if result.Err != nil {
		fields = append(fields, zap.Error(result.Err))
	}
	r.logger.Error("command failed", fields...)

	return result
}

// Output runs command and returns stdout, or false when the command failed.
func (r *ShellRunner) Output(ctx context.Context, command string) ([]byte, bool) {
	return r.Run(ctx, command).Output()
}

// Ensure ShellRunner implements domain.CommandRunner.
var _ domain.CommandRunner = (*ShellRunner)(nil)
