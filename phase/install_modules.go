package phase

import (
	"strings"

	"github.com/archup/archup/pkg/config"
	log "github.com/sirupsen/logrus"
)

// InstallModules resolves the enabled modules into per-module package plans
// and installs each plan in one batched package manager invocation.
type InstallModules struct {
	GenericPhase

	plans []config.ModulePlan
}

// Title for the phase
func (p *InstallModules) Title() string {
	return "Install modules"
}

// Prepare resolves the plans so availability probing happens before any
// mutation.
func (p *InstallModules) Prepare(c *config.Run) error {
	p.Config = c
	p.plans = c.Modules.Resolve(c.Packages)
	return nil
}

// ShouldRun is true when at least one module is enabled.
func (p *InstallModules) ShouldRun() bool {
	return len(p.plans) > 0
}

// Run the phase
func (p *InstallModules) Run() error {
	for _, plan := range p.plans {
		for _, skipped := range plan.Skipped {
			p.Config.Report.Warnf("module %s: package %s is unavailable, skipping", plan.Name, skipped)
		}
		if len(plan.Packages) == 0 {
			log.Warnf("module %s has no installable packages, skipping module", plan.Name)
			continue
		}
		log.Infof("module %s: installing %s", plan.Name, strings.Join(plan.Packages, " "))
		if err := p.Config.Packages.Install(plan.Packages...); err != nil {
			return err
		}
	}
	return nil
}
