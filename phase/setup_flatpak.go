package phase

import (
	"github.com/archup/archup/pkg/runner"
)

// SetupFlatpak installs flatpak and registers the flathub remote. Both steps
// are best-effort: a failure is recorded as a warning and the run continues.
type SetupFlatpak struct {
	GenericPhase
}

// Title for the phase
func (p *SetupFlatpak) Title() string {
	return "Set up Flatpak"
}

// ShouldRun is true when the flatpak module is enabled.
func (p *SetupFlatpak) ShouldRun() bool {
	return p.Config.Modules.Flatpak
}

// Run the phase
func (p *SetupFlatpak) Run() error {
	if err := p.Config.Packages.Install("flatpak"); err != nil {
		p.Config.Report.Warnf("flatpak install failed: %v", err)
		return nil
	}
	err := p.Config.Runner.Run(runner.New(
		"flatpak", "remote-add", "--if-not-exists", "flathub",
		"https://dl.flathub.org/repo/flathub.flatpakrepo",
	))
	if err != nil {
		p.Config.Report.Warnf("flathub remote registration failed: %v", err)
	}
	return nil
}
