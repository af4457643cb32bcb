package phase

import (
	"github.com/archup/archup/pkg/runner"
)

// RefreshUserDirs regenerates the XDG user directories for the target user.
// Best-effort, the tool may not be installed yet on a minimal selection.
type RefreshUserDirs struct {
	GenericPhase
}

// Title for the phase
func (p *RefreshUserDirs) Title() string {
	return "Refresh user directories"
}

// ShouldRun is true when a target user is known.
func (p *RefreshUserDirs) ShouldRun() bool {
	return p.Config.User != ""
}

// Run the phase
func (p *RefreshUserDirs) Run() error {
	if !p.Config.Runner.CommandExists("xdg-user-dirs-update") {
		p.Config.Report.Warnf("xdg-user-dirs-update not found, skipping user directory refresh")
		return nil
	}
	err := p.Config.Runner.Run(runner.New("sudo", "-u", p.Config.User, "xdg-user-dirs-update"))
	if err != nil {
		p.Config.Report.Warnf("user directory refresh for %s failed: %v", p.Config.User, err)
	}
	return nil
}
