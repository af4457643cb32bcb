package phase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/archup/archup/pkg/account"
	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// FixSessionFiles re-owns the per-user session files a failed graphical login
// commonly leaves behind as root-owned, and resets the user's login shell if
// it points at something that is not executable.
type FixSessionFiles struct {
	GenericPhase
}

// Title for the phase
func (p *FixSessionFiles) Title() string {
	return "Fix session files"
}

// ShouldRun is true when a target user is known.
func (p *FixSessionFiles) ShouldRun() bool {
	return p.Config.User != ""
}

// Run the phase
func (p *FixSessionFiles) Run() error {
	name := p.Config.User
	svc := account.NewService(p.Config.Runner)
	if !svc.Exists(name) {
		if p.Config.DryRun {
			log.Infof("%s fix session file ownership for %s", runner.DryRunPrefix, name)
			return nil
		}
		return fmt.Errorf("user %s does not exist", name)
	}
	_, _, home, err := svc.Lookup(name)
	if err != nil {
		return err
	}

	owner := name + ":" + name
	for _, entry := range []string{".Xauthority", ".xsession-errors"} {
		path := filepath.Join(home, entry)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := p.Config.Runner.Run(runner.New("chown", owner, path)); err != nil {
			return err
		}
		if err := p.Config.Runner.Run(runner.New("chmod", "0600", path)); err != nil {
			return err
		}
	}
	for _, entry := range []string{".config", ".cache", ".local"} {
		path := filepath.Join(home, entry)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := p.Config.Runner.Run(runner.New("chown", "-R", owner, path)); err != nil {
			return err
		}
	}

	shell, err := svc.Shell(name)
	if err != nil {
		p.Config.Report.Warnf("could not determine shell for %s: %v", name, err)
		return nil
	}
	if info, err := os.Stat(shell); err != nil || info.Mode()&0111 == 0 {
		log.Warnf("shell %s for %s is not executable, resetting to %s", shell, name, account.DefaultShell)
		return svc.SetShell(name, account.DefaultShell)
	}
	return nil
}
