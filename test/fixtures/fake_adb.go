// Package fixtures provides test helpers for integration tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fakeADBScript answers the subset of adb used by tvmon. Every invocation is
// appended to calls.log with start and end markers. The focused component is
// read from focus.txt; "offline" makes connect fail.
const fakeADBScript = `#!/bin/sh
dir="$(dirname "$0")"
echo "start $*" >> "$dir/calls.log"
case "$1" in
connect)
	if [ -f "$dir/offline" ]; then
		echo "failed to connect to '$2': Connection refused"
	else
		echo "connected to $2"
	fi
	;;
shell)
	shift
	case "$1 $2" in
	"dumpsys window")
		echo "WINDOW MANAGER WINDOWS (dumpsys window windows)"
		echo "  mCurrentFocus=Window{5d1e7f0 u0 $(cat "$dir/focus.txt")}"
		;;
	"pm disable-user"|"pm enable")
		sleep "$(cat "$dir/delay" 2>/dev/null || echo 0)"
		echo "Package state changed"
		;;
	"am start")
		sleep "$(cat "$dir/delay" 2>/dev/null || echo 0)"
		echo "Starting: Intent { }"
		;;
	*)
		echo "unknown shell command: $*" >&2
		exit 1
		;;
	esac
	;;
*)
	echo "unknown command: $1" >&2
	exit 1
	;;
esac
echo "end $*" >> "$dir/calls.log"
`

// FakeADB is a shell script standing in for the adb binary.
type FakeADB struct {
	Dir string
}

// NewFakeADB writes the script into dir.
func NewFakeADB(dir string) (*FakeADB, error) {
	f := &FakeADB{Dir: dir}
	if err := os.WriteFile(f.Path(), []byte(fakeADBScript), 0755); err != nil {
		return nil, err
	}
	if err := f.SetFocus("com.other.app/com.other.app.MainActivity"); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the script path, usable wherever "adb" is expected.
func (f *FakeADB) Path() string {
	return filepath.Join(f.Dir, "adb")
}

// SetFocus sets the component reported by `dumpsys window`.
func (f *FakeADB) SetFocus(component string) error {
	return os.WriteFile(filepath.Join(f.Dir, "focus.txt"), []byte(component), 0644)
}

// SetOffline makes connect fail (true) or succeed (false).
func (f *FakeADB) SetOffline(offline bool) error {
	path := filepath.Join(f.Dir, "offline")
	if !offline {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return os.WriteFile(path, nil, 0644)
}

// SetDelay makes package and activity commands sleep for seconds.
func (f *FakeADB) SetDelay(seconds float64) error {
	return os.WriteFile(filepath.Join(f.Dir, "delay"), []byte(fmt.Sprintf("%.2f", seconds)), 0644)
}

// Calls returns the call log lines ("start ..." / "end ...") in order.
func (f *FakeADB) Calls() []string {
	data, err := os.ReadFile(filepath.Join(f.Dir, "calls.log"))
	if err != nil {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Count returns how many times a call with the given argument prefix started.
func (f *FakeADB) Count(argsPrefix string) int {
	n := 0
	for _, line := range f.Calls() {
		if strings.HasPrefix(line, "start "+argsPrefix) {
			n++
		}
	}
	return n
}

// Index returns the position of the first log line equal to line, or -1.
func (f *FakeADB) Index(line string) int {
	for i, l := range f.Calls() {
		if l == line {
			return i
		}
	}
	return -1
}
