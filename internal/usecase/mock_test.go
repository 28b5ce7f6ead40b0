package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

// commandCall records one invocation seen by mockRunner.
type commandCall struct {
	command string
	start   time.Time
	end     time.Time
}

// mockRunner implements domain.CommandRunner for testing.
// Responses are keyed by exact command string.
type mockRunner struct {
	mu        sync.Mutex
	outputs   map[string]string
	failures  map[string]bool
	spawnErrs map[string]error
	delays    map[string]time.Duration
	panics    map[string]bool
	calls     []commandCall
}

func newMockRunner() *mockRunner {
	return &mockRunner{
		outputs:   map[string]string{},
		failures:  map[string]bool{},
		spawnErrs: map[string]error{},
		delays:    map[string]time.Duration{},
		panics:    map[string]bool{},
	}
}

func (m *mockRunner) Run(ctx context.Context, command string) domain.CommandResult {
	m.mu.Lock()
	delay := m.delays[command]
	shouldPanic := m.panics[command]
	m.mu.Unlock()

	if shouldPanic {
		panic("runner exploded")
	}

	start := time.Now()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
		}
	}
	end := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, commandCall{command: command, start: start, end: end})

	result := domain.CommandResult{Command: command, StartedAt: start, FinishedAt: end}
	if err := m.spawnErrs[command]; err != nil {
		result.ExitCode = -1
		result.Err = err
		return result
	}
	if m.failures[command] {
		result.ExitCode = 1
		result.Stderr = []byte("error: device offline")
		return result
	}
	result.Success = true
	result.Stdout = []byte(m.outputs[command])
	return result
}

func (m *mockRunner) commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.command
	}
	return out
}

func (m *mockRunner) call(command string) (commandCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.command == command {
			return c, true
		}
	}
	return commandCall{}, false
}

func (m *mockRunner) count(command string) int {
	n := 0
	for _, c := range m.commands() {
		if c == command {
			n++
		}
	}
	return n
}

var errSpawn = errors.New("exec: \"adb\": executable file not found in $PATH")

// fakeClock is a manually advanced clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
