package policy

import "fmt"

// Package names for the Xiaomi TV stock launcher and its replacement.
const (
	MiTVHomePackage     = "com.mitv.tvhome"
	DangbeiLauncherPkg  = "com.dangbei.tvlauncher"
	dangbeiMainActivity = "com.dangbei.launcher.ui.main.MainActivity"
)

// MiTVHomePolicy evicts the stock Xiaomi TV home screen in favour of the
// Dangbei launcher. The stock launcher is re-enabled right after so that the
// device stays recoverable.
type MiTVHomePolicy struct {
	adb string
}

// NewMiTVHomePolicy creates the policy using the adb binary on PATH.
func NewMiTVHomePolicy() *MiTVHomePolicy {
	return NewMiTVHomePolicyWithADB("adb")
}

// NewMiTVHomePolicyWithADB creates the policy with a custom adb path.
func NewMiTVHomePolicyWithADB(adb string) *MiTVHomePolicy {
	return &MiTVHomePolicy{adb: adb}
}

func (p *MiTVHomePolicy) ID() string {
	return "mitv-home"
}

func (p *MiTVHomePolicy) Name() string {
	return "Xiaomi TV home -> Dangbei launcher"
}

func (p *MiTVHomePolicy) TargetKeyword() string {
	return MiTVHomePackage
}

func (p *MiTVHomePolicy) DisableCommand() string {
	return fmt.Sprintf("%s shell pm disable-user --user 0 %s", p.adb, MiTVHomePackage)
}

// LaunchCommand starts the Dangbei main activity as a new launcher task.
func (p *MiTVHomePolicy) LaunchCommand() string {
	return fmt.Sprintf("%s shell am start -n %s/%s -a android.intent.action.MAIN -c android.intent.category.LAUNCHER -f 0x10000000",
		p.adb, DangbeiLauncherPkg, dangbeiMainActivity)
}

func (p *MiTVHomePolicy) EnableCommand() string {
	return fmt.Sprintf("%s shell pm enable %s", p.adb, MiTVHomePackage)
}

// Ensure MiTVHomePolicy implements AppPolicy.
var _ AppPolicy = (*MiTVHomePolicy)(nil)
