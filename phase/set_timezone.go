package phase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/archup/archup/pkg/retry"
	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// SetTimezone validates the configured timezone against the host's zoneinfo
// database and links /etc/localtime to it.
type SetTimezone struct {
	GenericPhase

	// ZoneinfoDir is overridable for tests.
	ZoneinfoDir string

	timezone string
}

// Title for the phase
func (p *SetTimezone) Title() string {
	return "Set timezone"
}

func (p *SetTimezone) zoneinfoDir() string {
	if p.ZoneinfoDir != "" {
		return p.ZoneinfoDir
	}
	return "/usr/share/zoneinfo"
}

func (p *SetTimezone) valid(tz string) bool {
	if tz == "" || filepath.IsAbs(tz) {
		return false
	}
	info, err := os.Stat(filepath.Join(p.zoneinfoDir(), tz))
	return err == nil && !info.IsDir()
}

// Run the phase
func (p *SetTimezone) Run() error {
	p.timezone = p.Config.Config.Timezone
	err := retry.Times(3, func() error {
		if p.valid(p.timezone) {
			return nil
		}
		if p.Config.AssumeYes || p.Config.DryRun || !p.Config.Interactive {
			return fmt.Errorf("%w: timezone %q not found under %s", retry.ErrAbort, p.timezone, p.zoneinfoDir())
		}
		log.Warnf("timezone %q not found under %s", p.timezone, p.zoneinfoDir())
		prompt := &survey.Input{
			Message: "Timezone (Region/City):",
			Default: "UTC",
		}
		if err := survey.AskOne(prompt, &p.timezone); err != nil {
			return fmt.Errorf("%w: prompt failed: %s", retry.ErrAbort, err)
		}
		return fmt.Errorf("timezone %q not validated yet", p.timezone)
	})
	if err != nil && !p.valid(p.timezone) {
		return err
	}

	target := filepath.Join(p.zoneinfoDir(), p.timezone)
	if err := p.Config.Runner.Run(runner.New("ln", "-sf", target, "/etc/localtime")); err != nil {
		return err
	}

	// sync the hardware clock, not critical when unavailable
	if err := p.Config.Runner.Run(runner.New("hwclock", "--systohc")); err != nil {
		p.Config.Report.Warnf("hardware clock sync failed: %v", err)
	}
	return nil
}
