package config

import (
	"fmt"
	"sync"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// PackageSource is the capability surface phases use to query and mutate the
// package state of the host. Implemented by pacman.Client, faked in tests.
type PackageSource interface {
	IsAvailable(name string) bool
	IsInstalled(name string) bool
	Install(names ...string) error
	Refresh() error
	FilterAvailable(names []string) []string
	MissingCommands(cmdToPkg map[string]string) []string
	MultilibEnabled() (bool, error)
	EnableMultilib() (bool, error)
}

// ServiceManager is the capability surface for service units. Implemented by
// systemd.Client, faked in tests.
type ServiceManager interface {
	Exists(unit string) bool
	Enable(unit string) error
	EnableNow(unit string) error
	IsActive(unit string) bool
}

// Run is the immutable state for a single invocation, built once from flags
// and the optional config file and passed to every phase.
type Run struct {
	// Config is the file-backed configuration.
	Config *Config
	// Modules is the resolved module selection.
	Modules Modules
	// DryRun prints mutating actions instead of performing them.
	DryRun bool
	// AssumeYes answers every confirmation with its default.
	AssumeYes bool
	// Interactive is true when stdout is a terminal.
	Interactive bool
	// User is the target user for account provisioning and per-user fixes.
	User string
	// Shell is the requested login shell for account provisioning.
	Shell string
	// Home is the requested home directory override for account provisioning.
	Home string
	// KeepPassword leaves the account's password state untouched instead of
	// locking it.
	KeepPassword bool
	// ProjectDir is the repository root shared into the test VM.
	ProjectDir string

	Runner   runner.Runner
	Packages PackageSource
	Services ServiceManager
	Report   *Report
}

// Report collects advisory warnings raised by best-effort operations so
// callers and tests can distinguish them from fatal errors.
type Report struct {
	mu       sync.Mutex
	warnings []string
}

// Warnf logs and records an advisory warning. The run continues.
func (r *Report) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Warn(msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
}

// Warnings returns the recorded warnings.
func (r *Report) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.warnings...)
}
