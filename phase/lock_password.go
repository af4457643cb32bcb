package phase

import (
	"github.com/archup/archup/pkg/account"
)

// LockPassword leaves the account without password login, the default for
// provisioned accounts. Skipped with --keep-password.
type LockPassword struct {
	GenericPhase
}

// Title for the phase
func (p *LockPassword) Title() string {
	return "Lock password"
}

// ShouldRun is false when the password state should be kept for manual setup.
func (p *LockPassword) ShouldRun() bool {
	return !p.Config.KeepPassword
}

// Run the phase
func (p *LockPassword) Run() error {
	return account.NewService(p.Config.Runner).LockPassword(p.Config.User)
}
