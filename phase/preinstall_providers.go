package phase

import (
	log "github.com/sirupsen/logrus"
)

// PreinstallProviders installs packages that would otherwise trigger an
// interactive "choose a provider" prompt during later installs, keeping the
// whole run non-interactive. It also resolves the JACK provider conflict:
// when the legacy jack2 provider is already installed it is kept, and
// pipewire-jack is left out of the install set so pacman is never asked to
// swap providers mid-run.
type PreinstallProviders struct {
	GenericPhase
}

// Title for the phase
func (p *PreinstallProviders) Title() string {
	return "Preinstall providers"
}

// Packages computes the provider preinstall set against the current system
// state.
func (p *PreinstallProviders) Packages() []string {
	pkgs := []string{"ttf-liberation", "noto-fonts", "phonon-qt6-vlc"}

	pkgs = append(pkgs, "pipewire", "pipewire-alsa", "pipewire-pulse", "wireplumber")
	if p.Config.Packages.IsInstalled("jack2") {
		log.Infof("jack2 already installed, keeping it instead of pipewire-jack")
	} else {
		pkgs = append(pkgs, "pipewire-jack")
	}
	return pkgs
}

// Run the phase
func (p *PreinstallProviders) Run() error {
	pkgs := p.Config.Packages.FilterAvailable(p.Packages())
	return p.Config.Packages.Install(pkgs...)
}
