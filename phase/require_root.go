package phase

import (
	"fmt"
	"os"
	"strings"
)

// RequireRoot verifies the process runs with administrative privileges on an
// Arch Linux host before any mutating phase gets a chance to run.
type RequireRoot struct {
	GenericPhase

	// OSReleasePath is overridable for tests.
	OSReleasePath string
}

// Title for the phase
func (p *RequireRoot) Title() string {
	return "Check privileges"
}

// Run the phase
func (p *RequireRoot) Run() error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("this command must be run as root")
	}

	path := p.OSReleasePath
	if path == "" {
		path = "/etc/os-release"
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "ID=arch" {
			return nil
		}
	}
	return fmt.Errorf("this command only supports Arch Linux hosts")
}
