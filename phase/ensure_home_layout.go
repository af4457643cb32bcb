package phase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// dotDirs are created at a restrictive mode.
var dotDirs = []string{".config", ".cache", filepath.Join(".local", "state")}

// xdgDirs are the standard visible folders.
var xdgDirs = []string{
	"Desktop", "Documents", "Downloads", "Music", "Pictures", "Public",
	"Templates", "Videos",
}

// EnsureHomeLayout guarantees the home directory and its standard
// subdirectories exist with the right ownership and modes.
type EnsureHomeLayout struct {
	GenericPhase
}

// Title for the phase
func (p *EnsureHomeLayout) Title() string {
	return "Ensure home layout"
}

// Run the phase
func (p *EnsureHomeLayout) Run() error {
	uid, gid, home, ok, err := p.LookupTarget()
	if err != nil {
		return err
	}
	if !ok {
		log.Infof("%s create home layout for %s", runner.DryRunPrefix, p.Config.User)
		return nil
	}

	err = p.Wet(fmt.Sprintf("ensure home directory %s", home), func() error {
		if err := os.MkdirAll(home, 0700); err != nil {
			return err
		}
		if err := os.Chmod(home, 0700); err != nil {
			return err
		}
		return os.Chown(home, uid, gid)
	})
	if err != nil {
		return err
	}

	mkdir := func(rel string, mode os.FileMode) error {
		path := filepath.Join(home, rel)
		return p.Wet(fmt.Sprintf("ensure %s (%o)", path, mode), func() error {
			if err := os.MkdirAll(path, mode); err != nil {
				return err
			}
			if err := os.Chmod(path, mode); err != nil {
				return err
			}
			return os.Chown(path, uid, gid)
		})
	}

	for _, rel := range dotDirs {
		if err := mkdir(rel, 0700); err != nil {
			return err
		}
	}
	// the intermediate .local directory needs owning too
	local := filepath.Join(home, ".local")
	err = p.Wet(fmt.Sprintf("own %s", local), func() error {
		if _, err := os.Stat(local); err != nil {
			return nil
		}
		return os.Chown(local, uid, gid)
	})
	if err != nil {
		return err
	}
	for _, rel := range xdgDirs {
		if err := mkdir(rel, 0755); err != nil {
			return err
		}
	}
	return nil
}
