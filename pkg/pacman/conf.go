package pacman

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

const multilibSection = "[multilib]"
const multilibInclude = "Include = /etc/pacman.d/mirrorlist"

// MultilibEnabled reports whether the multilib repository section is active
// in pacman.conf.
func (c *Client) MultilibEnabled() (bool, error) {
	content, err := os.ReadFile(c.ConfPath)
	if err != nil {
		return false, &ConfError{Path: c.ConfPath, Err: err}
	}
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == multilibSection {
			return true, nil
		}
	}
	return false, nil
}

// EnableMultilib activates the multilib repository section, uncommenting it
// when it is present but commented out and appending it when it is missing
// entirely. The original file is backed up next to it before the first edit.
// Returns true when the file was modified. Safe to call repeatedly.
func (c *Client) EnableMultilib() (bool, error) {
	content, err := os.ReadFile(c.ConfPath)
	if err != nil {
		return false, &ConfError{Path: c.ConfPath, Err: err}
	}

	lines := strings.Split(string(content), "\n")
	changed := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == multilibSection {
			// already active
			return false, nil
		}
		if uncommented(trimmed) == multilibSection {
			lines[i] = multilibSection
			// the Include line(s) of the section follow until the next
			// blank line or section header
			for j := i + 1; j < len(lines); j++ {
				t := strings.TrimSpace(lines[j])
				if t == "" || strings.HasPrefix(t, "[") {
					break
				}
				if body := uncommented(t); strings.HasPrefix(body, "Include") {
					lines[j] = body
				}
			}
			changed = true
			break
		}
	}

	if !changed {
		// section absent entirely, append it
		for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, "", multilibSection, multilibInclude, "")
	}

	if err := c.backupConf(content); err != nil {
		return false, err
	}

	if err := os.WriteFile(c.ConfPath, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return false, &ConfError{Path: c.ConfPath, Err: err}
	}

	log.Infof("enabled %s section in %s", multilibSection, c.ConfPath)
	return true, nil
}

func (c *Client) backupConf(content []byte) error {
	backup := c.ConfPath + ".bak"
	if _, err := os.Stat(backup); err == nil {
		// keep the oldest backup, it is the closest to a known-good state
		return nil
	}
	if err := os.WriteFile(backup, content, 0644); err != nil {
		return &ConfError{Path: backup, Err: fmt.Errorf("backup failed: %w", err)}
	}
	log.Debugf("backed up %s to %s", c.ConfPath, backup)
	return nil
}

func uncommented(line string) string {
	if !strings.HasPrefix(line, "#") {
		return line
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "#"))
}
