// Package systemd manages service units through systemctl.
package systemd

import (
	"strings"

	"github.com/archup/archup/pkg/runner"
)

// Client wraps systemctl invocations.
type Client struct {
	runner runner.Runner
}

// NewClient returns a systemd client using the given runner.
func NewClient(r runner.Runner) *Client {
	return &Client{runner: r}
}

// Exists reports whether a unit file for the named unit is installed on the
// host. A unit without a unit file can not be enabled.
func (c *Client) Exists(unit string) bool {
	out, err := c.runner.Output(runner.New("systemctl", "list-unit-files", "--no-legend", unit))
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) != ""
}

// Enable enables the unit so it starts on boot.
func (c *Client) Enable(unit string) error {
	return c.runner.Run(runner.New("systemctl", "enable", unit))
}

// EnableNow enables and immediately starts the unit.
func (c *Client) EnableNow(unit string) error {
	return c.runner.Run(runner.New("systemctl", "enable", "--now", unit))
}

// IsActive reports whether the unit is currently running.
func (c *Client) IsActive(unit string) bool {
	_, err := c.runner.Output(runner.New("systemctl", "is-active", unit))
	return err == nil
}
