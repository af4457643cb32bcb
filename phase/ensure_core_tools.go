package phase

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// coreTools maps commands the repair flow relies on to the packages that
// provide them.
var coreTools = map[string]string{
	"xdg-user-dirs-update": "xdg-user-dirs",
	"lspci":                "pciutils",
	"mkinitcpio":           "mkinitcpio",
}

// EnsureCoreTools installs packages providing commands the later repair
// phases need but that are missing from a broken install.
type EnsureCoreTools struct {
	GenericPhase
}

// Title for the phase
func (p *EnsureCoreTools) Title() string {
	return "Ensure core tools"
}

// Run the phase
func (p *EnsureCoreTools) Run() error {
	missing := p.Config.Packages.MissingCommands(coreTools)
	if len(missing) == 0 {
		log.Debugf("all core tools present")
		return nil
	}
	log.Infof("installing missing tools: %s", strings.Join(missing, " "))
	return p.Config.Packages.Install(missing...)
}
