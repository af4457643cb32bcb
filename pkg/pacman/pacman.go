// Package pacman drives the Arch Linux package manager through the runner
// abstraction.
package pacman

import (
	"fmt"
	"strings"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// DefaultConfPath is the pacman configuration file location.
const DefaultConfPath = "/etc/pacman.conf"

// Client wraps pacman invocations. All mutations go through the Runner so
// dry-run mode works without special handling here.
type Client struct {
	// ConfPath is the pacman.conf location, overridable for tests.
	ConfPath string

	runner runner.Runner
}

// NewClient returns a pacman client using the given runner.
func NewClient(r runner.Runner) *Client {
	return &Client{ConfPath: DefaultConfPath, runner: r}
}

// IsAvailable reports whether the named package exists in the configured
// repositories.
func (c *Client) IsAvailable(name string) bool {
	_, err := c.runner.Output(runner.New("pacman", "-Si", name))
	return err == nil
}

// IsInstalled reports whether the named package is installed.
func (c *Client) IsInstalled(name string) bool {
	_, err := c.runner.Output(runner.New("pacman", "-Qq", name))
	return err == nil
}

// Install installs the given packages in one batched invocation. Already
// installed packages are skipped by pacman via --needed, which keeps repeated
// runs from reinstalling anything.
func (c *Client) Install(names ...string) error {
	if len(names) == 0 {
		return nil
	}
	log.Debugf("installing packages: %s", strings.Join(names, ", "))
	args := append([]string{"-S", "--needed", "--noconfirm"}, names...)
	cmd := runner.New("pacman", args...)
	cmd.Stream = true
	return c.runner.Run(cmd)
}

// Refresh synchronizes the package databases.
func (c *Client) Refresh() error {
	cmd := runner.New("pacman", "-Sy")
	cmd.Stream = true
	return c.runner.Run(cmd)
}

// FilterAvailable returns the names that exist in the repositories, in the
// input order, and logs a warning for every dropped name.
func (c *Client) FilterAvailable(names []string) []string {
	var available []string
	for _, name := range names {
		if c.IsAvailable(name) {
			available = append(available, name)
			continue
		}
		log.Warnf("package %s not found in the configured repositories, skipping", name)
	}
	return available
}

// MissingCommands returns the names from the given command→package map whose
// command is not found in PATH, as a deduplicated package list.
func (c *Client) MissingCommands(cmdToPkg map[string]string) []string {
	seen := make(map[string]bool)
	var pkgs []string
	for cmd, pkg := range cmdToPkg {
		if c.runner.CommandExists(cmd) {
			continue
		}
		if !seen[pkg] {
			seen[pkg] = true
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs
}

// Error type for conf editing problems.
type ConfError struct {
	Path string
	Err  error
}

func (e *ConfError) Error() string {
	return fmt.Sprintf("pacman configuration %s: %s", e.Path, e.Err)
}

func (e *ConfError) Unwrap() error {
	return e.Err
}
