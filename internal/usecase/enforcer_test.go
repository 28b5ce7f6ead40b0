package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
	"github.com/eliteGoblin/focusd/tv_mon/internal/logging"
)

var testPolicy = domain.Policy{
	ID:             "mitv-home",
	Name:           "Test",
	TargetKeyword:  "com.mitv.tvhome",
	DisableCommand: "adb shell pm disable-user --user 0 com.mitv.tvhome",
	LaunchCommand:  "adb shell am start -n com.dangbei.tvlauncher/com.dangbei.launcher.ui.main.MainActivity",
	EnableCommand:  "adb shell pm enable com.mitv.tvhome",
}

// TestNewEnforcer verifies enforcer creation
func TestNewEnforcer(t *testing.T) {
	runner := newMockRunner()

	enforcer := NewEnforcer(runner, testPolicy, nil)

	assert.NotNil(t, enforcer)
	impl := enforcer.(*EnforcerImpl)
	assert.Equal(t, runner, impl.runner)
	assert.Equal(t, testPolicy, enforcer.Policy())
}

// TestEnforce_RunsAllThreeCommands verifies the disable, launch, enable sequence
func TestEnforce_RunsAllThreeCommands(t *testing.T) {
	runner := newMockRunner()
	enforcer := NewEnforcer(runner, testPolicy, nil)

	result := enforcer.Enforce(context.Background(), "com.mitv.tvhome")

	require.NotNil(t, result)
	assert.Equal(t, "mitv-home", result.PolicyID)
	assert.Equal(t, domain.ForegroundApp("com.mitv.tvhome"), result.Foreground)
	assert.True(t, result.Disable.Success)
	assert.True(t, result.Launch.Success)
	assert.True(t, result.Enable.Success)
	assert.NotZero(t, result.ExecutedAt)
	assert.GreaterOrEqual(t, result.DurationMs, int64(0))

	cmds := runner.commands()
	require.Len(t, cmds, 3)
	assert.ElementsMatch(t, []string{testPolicy.DisableCommand, testPolicy.LaunchCommand}, cmds[:2])
	assert.Equal(t, testPolicy.EnableCommand, cmds[2])
}

// TestEnforce_DisableAndLaunchOverlap verifies neither blocks the other's start
// and enable waits for both
func TestEnforce_DisableAndLaunchOverlap(t *testing.T) {
	runner := newMockRunner()
	runner.delays[testPolicy.DisableCommand] = 200 * time.Millisecond
	runner.delays[testPolicy.LaunchCommand] = 150 * time.Millisecond
	enforcer := NewEnforcer(runner, testPolicy, nil)

	enforcer.Enforce(context.Background(), "com.mitv.tvhome")

	disable, ok := runner.call(testPolicy.DisableCommand)
	require.True(t, ok)
	launch, ok := runner.call(testPolicy.LaunchCommand)
	require.True(t, ok)
	enable, ok := runner.call(testPolicy.EnableCommand)
	require.True(t, ok)

	// Overlapping intervals
	assert.True(t, launch.start.Before(disable.end), "launch should start before disable finishes")
	assert.True(t, disable.start.Before(launch.end), "disable should start before launch finishes")

	// Enable strictly after both
	latestEnd := disable.end
	if launch.end.After(latestEnd) {
		latestEnd = launch.end
	}
	assert.False(t, enable.start.Before(latestEnd), "enable must start after disable and launch finish")
}

// TestEnforce_FailuresDoNotStopSequence verifies run-and-swallow semantics
func TestEnforce_FailuresDoNotStopSequence(t *testing.T) {
	runner := newMockRunner()
	runner.failures[testPolicy.DisableCommand] = true
	runner.spawnErrs[testPolicy.LaunchCommand] = errSpawn
	enforcer := NewEnforcer(runner, testPolicy, nil)

	result := enforcer.Enforce(context.Background(), "com.mitv.tvhome")

	assert.False(t, result.Disable.Success)
	assert.False(t, result.Launch.Success)
	assert.ErrorIs(t, result.Launch.Err, errSpawn)
	assert.True(t, result.Enable.Success)
	assert.Equal(t, 1, runner.count(testPolicy.EnableCommand))
}

// TestEnforce_LogsAtInfoTier verifies the two info lines
func TestEnforce_LogsAtInfoTier(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.New(zap.New(core), logging.LevelInfo)
	enforcer := NewEnforcer(newMockRunner(), testPolicy, logger)

	enforcer.Enforce(context.Background(), "com.mitv.tvhome")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "Target package 'com.mitv.tvhome' detected, disabling the app and launching new app...", logs.All()[0].Message)
	assert.Equal(t, "Enabling com.mitv.tvhome again...", logs.All()[1].Message)
}

// TestEnforce_PanicInConcurrentCommandRecovered verifies a panicking disable
// is recorded as a failure and enable still runs
func TestEnforce_PanicInConcurrentCommandRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.New(zap.New(core), logging.LevelError)
	runner := newMockRunner()
	runner.panics[testPolicy.DisableCommand] = true
	enforcer := NewEnforcer(runner, testPolicy, logger)

	var result *domain.EnforcementResult
	require.NotPanics(t, func() { result = enforcer.Enforce(context.Background(), "com.mitv.tvhome") })

	assert.False(t, result.Disable.Success)
	assert.Equal(t, -1, result.Disable.ExitCode)
	assert.ErrorContains(t, result.Disable.Err, "runner exploded")
	assert.True(t, result.Launch.Success)
	assert.True(t, result.Enable.Success)
	assert.Equal(t, 1, runner.count(testPolicy.EnableCommand))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "command failed", logs.All()[0].Message)
	assert.Equal(t, testPolicy.DisableCommand, logs.All()[0].ContextMap()["command"])
}
