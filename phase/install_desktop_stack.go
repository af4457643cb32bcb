package phase

// desktopStack is the display/session repair set reinstalled as a batch.
var desktopStack = []string{"plasma-meta", "sddm", "konsole", "dolphin", "xorg-xwayland"}

// InstallDesktopStack reinstalls the desktop and display manager packages a
// login-loop recovery needs in place.
type InstallDesktopStack struct {
	GenericPhase
}

// Title for the phase
func (p *InstallDesktopStack) Title() string {
	return "Install desktop stack"
}

// Run the phase
func (p *InstallDesktopStack) Run() error {
	pkgs := p.Config.Packages.FilterAvailable(desktopStack)
	return p.Config.Packages.Install(pkgs...)
}
