package action

import (
	"errors"
	"time"

	"github.com/archup/archup/phase"
	"github.com/logrusorgru/aurora"
	log "github.com/sirupsen/logrus"
)

// Repair is the post-install recovery flow for login loops, missing drivers
// and provider conflicts.
type Repair struct {
	// Manager is the phase manager
	Manager *phase.Manager
}

// Run the action
func (r Repair) Run() error {
	start := time.Now()

	r.Manager.AddPhase(
		&phase.RequireRoot{},
		&phase.Confirm{
			Question: "Apply the post-install repair sequence to this system?",
			Default:  true,
		},
		&phase.EnableMultilib{},
		&phase.EnsureCoreTools{},
		&phase.PreinstallProviders{},
		&phase.InstallDrivers{},
		&phase.InstallDesktopStack{},
		&phase.FixSessionFiles{},
		&phase.WriteFallbackSession{},
		&phase.PatchKernelParams{},
		&phase.RebuildBoot{},
		&phase.EnableServices{
			Units: []string{"sddm.service", "NetworkManager.service", "bluetooth.service"},
		},
		&phase.CollectDiagnostics{},
	)

	if err := r.Manager.Run(); err != nil {
		if errors.Is(err, phase.ErrAborted) {
			log.Infof("aborted on user request")
			return nil
		}
		return err
	}

	duration := time.Since(start).Truncate(time.Second)
	text := aurora.Green("==> Repair finished in %s, reboot to apply").String()
	log.Infof(text, duration)
	warn(r.Manager.Config.Report.Warnings())
	return nil
}
