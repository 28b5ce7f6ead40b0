package usecase

import (
	"strings"

	"github.com/eliteGoblin/focusd/tv_mon/internal/decode"
	"github.com/eliteGoblin/focusd/tv_mon/internal/domain"
)

// FocusMarker identifies the focus line in `dumpsys window` output, e.g.
//
//	mCurrentFocus=Window{1a2b3c u0 com.mitv.tvhome/com.mitv.tvhome.MainActivity}
const FocusMarker = "mCurrentFocus"

// ParseForegroundPackage extracts the focused package from a window dump.
// Ill-formed bytes in the dump are dropped.
// The first focus line carrying a component token wins; the package is the
// part of that token before '/'. Focus lines without a component (such as
// "mCurrentFocus=null") are passed over. Returns "" when nothing qualifies.
func ParseForegroundPackage(output []byte) domain.ForegroundApp {
	for _, line := range strings.Split(decode.Lossy(output), "\n") {
		if !strings.Contains(line, FocusMarker) {
			continue
		}
		for _, part := range strings.Fields(line) {
			if pkg, _, found := strings.Cut(part, "/"); found {
				return domain.ForegroundApp(pkg)
			}
		}
	}
	return ""
}
