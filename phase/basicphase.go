package phase

import (
	"github.com/archup/archup/pkg/account"
	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// GenericPhase gets the run state via Prepare and makes it available to the
// embedding phase as p.Config.
type GenericPhase struct {
	Config *config.Run
}

// Prepare the phase
func (p *GenericPhase) Prepare(c *config.Run) error {
	p.Config = c
	return nil
}

// Wet guards a direct filesystem mutation that does not go through the
// runner. In dry-run mode the message is printed instead of calling f.
func (p *GenericPhase) Wet(msg string, f func() error) error {
	if p.Config.DryRun {
		log.Infof("%s %s", runner.DryRunPrefix, msg)
		return nil
	}
	return f()
}

// LookupTarget resolves the target account's ids and home directory. In
// dry-run mode an account that does not exist yet returns ok false, so the
// phase can print its plan and move on instead of failing on the lookup of a
// user whose useradd was only printed.
func (p *GenericPhase) LookupTarget() (uid, gid int, home string, ok bool, err error) {
	svc := account.NewService(p.Config.Runner)
	if p.Config.DryRun && !svc.Exists(p.Config.User) {
		return 0, 0, "", false, nil
	}
	uid, gid, home, err = svc.Lookup(p.Config.User)
	if err != nil {
		return 0, 0, "", false, err
	}
	return uid, gid, home, true, nil
}
