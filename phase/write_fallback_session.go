package phase

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

const fallbackSessionConf = `[General]
DisplayServer=wayland

[Theme]
Current=breeze

[Wayland]
SessionDir=/usr/share/wayland-sessions
`

// WriteFallbackSession drops a minimal display manager configuration that
// forces a known-good Wayland session, plus a last-session hint in the target
// user's state directory so the greeter preselects it.
type WriteFallbackSession struct {
	GenericPhase

	// ConfDir is overridable for tests.
	ConfDir string
}

// Title for the phase
func (p *WriteFallbackSession) Title() string {
	return "Write fallback session config"
}

func (p *WriteFallbackSession) confDir() string {
	if p.ConfDir != "" {
		return p.ConfDir
	}
	return "/etc/sddm.conf.d"
}

// Run the phase
func (p *WriteFallbackSession) Run() error {
	confPath := filepath.Join(p.confDir(), "10-archup-fallback.conf")
	err := p.Wet(fmt.Sprintf("write %s", confPath), func() error {
		if err := os.MkdirAll(p.confDir(), 0755); err != nil {
			return err
		}
		return os.WriteFile(confPath, []byte(fallbackSessionConf), 0644)
	})
	if err != nil {
		return err
	}

	if p.Config.User == "" {
		return nil
	}
	_, _, home, ok, err := p.LookupTarget()
	if err != nil {
		p.Config.Report.Warnf("last-session hint skipped: %v", err)
		return nil
	}
	if !ok {
		log.Infof("%s write last-session hint for %s", runner.DryRunPrefix, p.Config.User)
		return nil
	}
	stateDir := filepath.Join(home, ".local", "state")
	hintPath := filepath.Join(stateDir, "last-session")
	return p.Wet(fmt.Sprintf("write %s", hintPath), func() error {
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			return err
		}
		if err := os.WriteFile(hintPath, []byte("plasma.desktop\n"), 0644); err != nil {
			return err
		}
		return p.Config.Runner.Run(runner.New("chown", "-R", p.Config.User+":"+p.Config.User, stateDir))
	})
}
