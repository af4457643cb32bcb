package phase

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/archup/archup/pkg/account"
	"github.com/archup/archup/pkg/runner"
	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// CollectDiagnostics snapshots the state useful for offline login-loop
// debugging: display manager journal tail, boot log grep, the user's session
// files and the installed graphics packages. Everything here is best-effort,
// a failing collector is recorded as a warning and never fails the run.
type CollectDiagnostics struct {
	GenericPhase

	// OutDir is overridable for tests; a timestamped directory under
	// /var/log/archup by default.
	OutDir string
}

// Title for the phase
func (p *CollectDiagnostics) Title() string {
	return "Collect diagnostics"
}

func (p *CollectDiagnostics) outDir() string {
	if p.OutDir != "" {
		return p.OutDir
	}
	return filepath.Join("/var/log/archup", "diag-"+time.Now().Format("20060102-150405"))
}

// Run the phase
func (p *CollectDiagnostics) Run() error {
	if p.Config.DryRun {
		log.Infof("%s collect diagnostics snapshot", runner.DryRunPrefix)
		return nil
	}

	dir := p.outDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		p.Config.Report.Warnf("diagnostics directory: %v", err)
		return nil
	}
	log.Infof("collecting diagnostics into %s", dir)

	p.collect(dir, "sddm-journal.log", runner.New("journalctl", "-u", "sddm", "-n", "200", "--no-pager"))
	p.collect(dir, "boot-errors.log", runner.New("journalctl", "-b", "--no-pager", "-g", "nvidia|sddm|drm"))
	p.collectPackages(dir)
	p.collectSessionFiles(dir)
	return nil
}

// collect runs a probe command and writes its output to a file in the
// snapshot directory.
func (p *CollectDiagnostics) collect(dir, name string, cmd runner.Command) {
	out, err := p.Config.Runner.Output(cmd)
	if err != nil {
		p.Config.Report.Warnf("diagnostics %s: %v", name, err)
		return
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(out+"\n"), 0644); err != nil {
		p.Config.Report.Warnf("diagnostics %s: %v", name, err)
	}
}

// collectPackages writes the installed packages related to the graphics and
// session stack.
func (p *CollectDiagnostics) collectPackages(dir string) {
	out, err := p.Config.Runner.Output(runner.New("pacman", "-Qq"))
	if err != nil {
		p.Config.Report.Warnf("diagnostics packages: %v", err)
		return
	}
	var relevant []string
	for _, pkg := range strings.Split(out, "\n") {
		for _, keyword := range []string{"nvidia", "sddm", "plasma", "pipewire", "mesa"} {
			if strings.Contains(pkg, keyword) {
				relevant = append(relevant, pkg)
				break
			}
		}
	}
	content := strings.Join(relevant, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "packages.txt"), []byte(content), 0644); err != nil {
		p.Config.Report.Warnf("diagnostics packages: %v", err)
	}
}

// collectSessionFiles lists the target user's session files with ownership
// and mode.
func (p *CollectDiagnostics) collectSessionFiles(dir string) {
	if p.Config.User == "" {
		return
	}
	svc := account.NewService(p.Config.Runner)
	_, _, home, err := svc.Lookup(p.Config.User)
	if err != nil {
		p.Config.Report.Warnf("diagnostics session files: %v", err)
		return
	}

	var listing []string
	for _, pattern := range []string{".Xauthority", ".xsession-errors*", ".local/state/**"} {
		matches, err := doublestar.FilepathGlob(filepath.Join(home, pattern))
		if err != nil {
			continue
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			listing = append(listing, fmt.Sprintf("%s %s", info.Mode(), match))
		}
	}
	content := strings.Join(listing, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "session-files.txt"), []byte(content), 0644); err != nil {
		p.Config.Report.Warnf("diagnostics session files: %v", err)
	}
}
