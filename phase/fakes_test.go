package phase

import (
	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/runner"
)

// fakeSource implements config.PackageSource against in-memory state.
type fakeSource struct {
	available map[string]bool
	installed map[string]bool
	commands  map[string]bool
	multilib  bool

	installCalls [][]string
	refreshed    int
}

func (f *fakeSource) IsAvailable(name string) bool { return f.available[name] }
func (f *fakeSource) IsInstalled(name string) bool { return f.installed[name] }

func (f *fakeSource) Install(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	f.installCalls = append(f.installCalls, names)
	return nil
}

func (f *fakeSource) Refresh() error { f.refreshed++; return nil }

func (f *fakeSource) FilterAvailable(names []string) []string {
	var out []string
	for _, name := range names {
		if f.available[name] {
			out = append(out, name)
		}
	}
	return out
}

func (f *fakeSource) MissingCommands(cmdToPkg map[string]string) []string {
	seen := make(map[string]bool)
	var pkgs []string
	for cmd, pkg := range cmdToPkg {
		if f.commands[cmd] || seen[pkg] {
			continue
		}
		seen[pkg] = true
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

func (f *fakeSource) MultilibEnabled() (bool, error) { return f.multilib, nil }

func (f *fakeSource) EnableMultilib() (bool, error) {
	if f.multilib {
		return false, nil
	}
	f.multilib = true
	return true, nil
}

func (f *fakeSource) installedAll() []string {
	var all []string
	for _, call := range f.installCalls {
		all = append(all, call...)
	}
	return all
}

// fakeServices implements config.ServiceManager.
type fakeServices struct {
	units   map[string]bool
	enabled []string
}

func (f *fakeServices) Exists(unit string) bool { return f.units[unit] }

func (f *fakeServices) Enable(unit string) error {
	f.enabled = append(f.enabled, unit)
	return nil
}

func (f *fakeServices) EnableNow(unit string) error { return f.Enable(unit) }
func (f *fakeServices) IsActive(unit string) bool   { return false }

// nopRunner satisfies runner.Runner for phases that should not execute
// anything in these tests.
type nopRunner struct{}

func (nopRunner) Run(runner.Command) error              { return nil }
func (nopRunner) Output(runner.Command) (string, error) { return "", nil }
func (nopRunner) CommandExists(string) bool             { return false }

func testRun(src *fakeSource, svc *fakeServices) *config.Run {
	return &config.Run{
		Config:   config.Default(),
		Runner:   nopRunner{},
		Packages: src,
		Services: svc,
		Report:   &config.Report{},
	}
}
