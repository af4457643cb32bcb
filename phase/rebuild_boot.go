package phase

import (
	"os"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// RebuildBoot regenerates the initramfs and, when GRUB is in use, its
// configuration so the patched kernel parameters take effect on next boot.
type RebuildBoot struct {
	GenericPhase

	// GrubDir is overridable for tests.
	GrubDir string
}

// Title for the phase
func (p *RebuildBoot) Title() string {
	return "Rebuild boot artifacts"
}

func (p *RebuildBoot) grubDir() string {
	if p.GrubDir != "" {
		return p.GrubDir
	}
	return "/boot/grub"
}

// Run the phase
func (p *RebuildBoot) Run() error {
	cmd := runner.New("mkinitcpio", "-P")
	cmd.Stream = true
	if err := p.Config.Runner.Run(cmd); err != nil {
		return err
	}

	if !p.Config.Runner.CommandExists("grub-mkconfig") {
		log.Debugf("grub-mkconfig not found, skipping grub config")
		return nil
	}
	if _, err := os.Stat(p.grubDir()); err != nil {
		log.Debugf("%s not present, skipping grub config", p.grubDir())
		return nil
	}
	grub := runner.New("grub-mkconfig", "-o", p.grubDir()+"/grub.cfg")
	grub.Stream = true
	return p.Config.Runner.Run(grub)
}
