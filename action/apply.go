// Package action assembles the phase lists for each subcommand and runs them.
package action

import (
	"errors"
	"time"

	"github.com/archup/archup/phase"
	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
)

// Apply is the installer flow: confirmations, locale and timezone, module
// package installation, service enablement and the optional post-steps.
type Apply struct {
	// Manager is the phase manager
	Manager *phase.Manager
}

// Run the action
func (a Apply) Run() error {
	start := time.Now()

	a.Manager.AddPhase(
		&phase.RequireRoot{},
		&phase.Confirm{
			Question: "Partitions are mounted and the system is ready for installation. Continue?",
			Default:  true,
		},
		&phase.SetLocale{},
		&phase.SetTimezone{},
		&phase.Confirm{
			Question: "Proceed with package installation?",
			Default:  true,
		},
		&phase.InstallModules{},
		&phase.EnableServices{},
		&phase.SetupFlatpak{},
		&phase.RefreshUserDirs{},
	)

	if err := a.Manager.Run(); err != nil {
		if errors.Is(err, phase.ErrAborted) {
			log.Infof("aborted on user request")
			return nil
		}
		return err
	}

	duration := time.Since(start).Truncate(time.Second)
	text := aurora.Green("==> Finished in %s").String()
	log.Infof(text, duration)
	warn(a.Manager.Config.Report.Warnings())
	return nil
}

// warn summarizes the advisory warnings collected during a run.
func warn(warnings []string) {
	if len(warnings) == 0 {
		return
	}
	log.Warnf("%d non-fatal issue(s) during the run:", len(warnings))
	for _, w := range warnings {
		log.Warnf("  - %s", w)
	}
}
