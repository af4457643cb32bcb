package phase

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// FixStrayOwnership re-owns root-owned entries directly under the home
// directory to the user. Privileged tooling run with sudo commonly leaves
// such strays behind.
type FixStrayOwnership struct {
	GenericPhase
}

// Title for the phase
func (p *FixStrayOwnership) Title() string {
	return "Fix stray ownership"
}

// Run the phase
func (p *FixStrayOwnership) Run() error {
	uid, gid, home, ok, err := p.LookupTarget()
	if err != nil {
		return err
	}
	if !ok {
		log.Infof("%s re-own root-owned entries in the home directory of %s", runner.DryRunPrefix, p.Config.User)
		return nil
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		return fmt.Errorf("read %s: %w", home, err)
	}
	for _, entry := range entries {
		path := filepath.Join(home, entry.Name())
		info, err := os.Lstat(path)
		if err != nil {
			continue
		}
		stat, ok := info.Sys().(*syscall.Stat_t)
		if !ok || stat.Uid != 0 {
			continue
		}
		log.Infof("re-owning %s to %s", path, p.Config.User)
		err = p.Wet(fmt.Sprintf("chown %s", path), func() error {
			return os.Lchown(path, uid, gid)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
