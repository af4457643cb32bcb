package phase

import (
	log "github.com/sirupsen/logrus"
)

// EnableMultilib activates the multilib repository section in pacman.conf and
// refreshes the package databases when a change was made. A backup copy of
// the configuration is taken before editing.
type EnableMultilib struct {
	GenericPhase
}

// Title for the phase
func (p *EnableMultilib) Title() string {
	return "Enable multilib repository"
}

// Run the phase
func (p *EnableMultilib) Run() error {
	enabled, err := p.Config.Packages.MultilibEnabled()
	if err != nil {
		return err
	}
	if enabled {
		log.Debugf("multilib repository already enabled")
		return nil
	}

	err = p.Wet("enable [multilib] in pacman.conf", func() error {
		changed, err := p.Config.Packages.EnableMultilib()
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		log.Infof("multilib repository enabled")
		return nil
	})
	if err != nil {
		return err
	}

	return p.Config.Packages.Refresh()
}
