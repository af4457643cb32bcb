package phase

import (
	"fmt"
	"os"

	"github.com/archup/archup/pkg/account"
	log "github.com/sirupsen/logrus"
)

// EnsureAccount creates the target account if it does not exist, or patches
// its shell and home directory to the requested values if it does. The wheel
// group membership is added either way, existing memberships are kept.
type EnsureAccount struct {
	GenericPhase
}

// Title for the phase
func (p *EnsureAccount) Title() string {
	return "Ensure user account"
}

// Run the phase
func (p *EnsureAccount) Run() error {
	name := p.Config.User
	if !account.ValidUsername(name) {
		return fmt.Errorf("invalid username %q", name)
	}

	shell := p.Config.Shell
	if shell == "" {
		shell = account.DefaultShell
	}
	if info, err := os.Stat(shell); err != nil || info.Mode()&0111 == 0 {
		log.Warnf("requested shell %s not found, falling back to %s", shell, account.DefaultShell)
		shell = account.DefaultShell
	}

	svc := account.NewService(p.Config.Runner)
	if !svc.Exists(name) {
		if err := svc.Create(name, shell, p.Config.Home); err != nil {
			return err
		}
	} else {
		log.Infof("account %s exists, reconciling", name)
		current, err := svc.Shell(name)
		if err != nil {
			return err
		}
		if current != shell {
			if err := svc.SetShell(name, shell); err != nil {
				return err
			}
		}
		if p.Config.Home != "" {
			_, _, home, err := svc.Lookup(name)
			if err != nil {
				return err
			}
			if home != p.Config.Home {
				if err := svc.SetHome(name, p.Config.Home); err != nil {
					return err
				}
			}
		}
	}

	return svc.AddGroups(name, "wheel")
}
