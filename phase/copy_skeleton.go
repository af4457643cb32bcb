package phase

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// CopySkeleton copies the default skeleton files into the home directory.
// Existing files are never overwritten, so a customized home survives
// repeated provisioning runs.
type CopySkeleton struct {
	GenericPhase

	// SkelDir is overridable for tests.
	SkelDir string
}

// Title for the phase
func (p *CopySkeleton) Title() string {
	return "Copy skeleton files"
}

func (p *CopySkeleton) skelDir() string {
	if p.SkelDir != "" {
		return p.SkelDir
	}
	return "/etc/skel"
}

// Run the phase
func (p *CopySkeleton) Run() error {
	uid, gid, home, ok, err := p.LookupTarget()
	if err != nil {
		return err
	}
	if !ok {
		log.Infof("%s copy %s into the home directory of %s", runner.DryRunPrefix, p.skelDir(), p.Config.User)
		return nil
	}

	skel := p.skelDir()
	if _, err := os.Stat(skel); err != nil {
		log.Debugf("%s not present, nothing to copy", skel)
		return nil
	}

	return filepath.Walk(skel, func(src string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(skel, src)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dst := filepath.Join(home, rel)

		if info.IsDir() {
			return p.Wet(fmt.Sprintf("ensure directory %s", dst), func() error {
				if _, err := os.Stat(dst); err == nil {
					return nil
				}
				if err := os.Mkdir(dst, info.Mode().Perm()); err != nil {
					return err
				}
				return os.Chown(dst, uid, gid)
			})
		}

		if _, err := os.Stat(dst); err == nil {
			log.Debugf("%s exists, not overwriting", dst)
			return nil
		}
		return p.Wet(fmt.Sprintf("copy %s to %s", src, dst), func() error {
			if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
				return err
			}
			return os.Chown(dst, uid, gid)
		})
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
