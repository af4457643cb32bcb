package phase

import (
	log "github.com/sirupsen/logrus"
)

// EnableServices enables the units mapped to the enabled modules. Units whose
// file is not present on the host are skipped, and enable failures are
// recorded as warnings instead of aborting the run.
type EnableServices struct {
	GenericPhase

	// Units overrides the module-derived unit list when non-nil.
	Units []string
}

// Title for the phase
func (p *EnableServices) Title() string {
	return "Enable services"
}

// Run the phase
func (p *EnableServices) Run() error {
	units := p.Units
	if units == nil {
		units = p.Config.Modules.Services()
	}
	for _, unit := range units {
		if !p.Config.Services.Exists(unit) {
			log.Debugf("unit %s not present, skipping", unit)
			continue
		}
		log.Infof("enabling %s", unit)
		if err := p.Config.Services.Enable(unit); err != nil {
			p.Config.Report.Warnf("failed to enable %s: %v", unit, err)
		}
	}
	return nil
}
