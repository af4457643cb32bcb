package action

import (
	"time"

	"github.com/archup/archup/phase"
	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
)

// ProvisionUser is the account provisioner flow.
type ProvisionUser struct {
	// Manager is the phase manager
	Manager *phase.Manager
}

// Run the action
func (p ProvisionUser) Run() error {
	start := time.Now()

	p.Manager.AddPhase(
		&phase.RequireRoot{},
		&phase.EnsureAccount{},
		&phase.EnsureHomeLayout{},
		&phase.CopySkeleton{},
		&phase.FixStrayOwnership{},
		&phase.LockPassword{},
	)

	if err := p.Manager.Run(); err != nil {
		return err
	}

	duration := time.Since(start).Truncate(time.Second)
	text := aurora.Green("==> Account %s ready in %s").String()
	log.Infof(text, p.Manager.Config.User, duration)
	warn(p.Manager.Config.Report.Warnings())
	return nil
}
