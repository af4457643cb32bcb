// Package account manages local user accounts through the useradd family of
// tools.
package account

import (
	"fmt"
	"os/user"
	"regexp"
	"strconv"
	"strings"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// DefaultShell is used when no shell is requested or the requested one does
// not exist.
const DefaultShell = "/bin/bash"

var usernameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

// ValidUsername reports whether the name matches the accepted useradd
// pattern.
func ValidUsername(name string) bool {
	return name != "" && len(name) <= 32 && usernameRe.MatchString(name)
}

// Service performs account operations through the runner.
type Service struct {
	runner runner.Runner
}

// NewService returns an account service using the given runner.
func NewService(r runner.Runner) *Service {
	return &Service{runner: r}
}

// Exists reports whether the named account exists.
func (s *Service) Exists(name string) bool {
	_, err := user.Lookup(name)
	return err == nil
}

// Lookup resolves the account's numeric uid/gid and home directory.
func (s *Service) Lookup(name string) (uid, gid int, home string, err error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, 0, "", fmt.Errorf("lookup user %s: %w", name, err)
	}
	uid, err = strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, "", fmt.Errorf("parse uid for %s: %w", name, err)
	}
	gid, err = strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, "", fmt.Errorf("parse gid for %s: %w", name, err)
	}
	return uid, gid, u.HomeDir, nil
}

// Create creates the account with a home directory and a matching primary
// group.
func (s *Service) Create(name, shell, home string) error {
	if !ValidUsername(name) {
		return fmt.Errorf("invalid username %q", name)
	}
	args := []string{"-m", "-U", "-s", shell}
	if home != "" {
		args = append(args, "-d", home)
	}
	args = append(args, name)
	log.Infof("creating user account %s", name)
	return s.runner.Run(runner.New("useradd", args...))
}

// SetShell changes the account's login shell.
func (s *Service) SetShell(name, shell string) error {
	return s.runner.Run(runner.New("usermod", "-s", shell, name))
}

// SetHome moves the account's home directory.
func (s *Service) SetHome(name, home string) error {
	return s.runner.Run(runner.New("usermod", "-d", home, "-m", name))
}

// AddGroups adds the account to the given supplementary groups. Additive,
// existing memberships are kept.
func (s *Service) AddGroups(name string, groups ...string) error {
	if len(groups) == 0 {
		return nil
	}
	return s.runner.Run(runner.New("usermod", "-aG", strings.Join(groups, ","), name))
}

// LockPassword disables password login for the account.
func (s *Service) LockPassword(name string) error {
	return s.runner.Run(runner.New("passwd", "-l", name))
}

// Shell returns the account's current login shell from the passwd database.
func (s *Service) Shell(name string) (string, error) {
	out, err := s.runner.Output(runner.New("getent", "passwd", name))
	if err != nil {
		return "", fmt.Errorf("getent passwd %s: %w", name, err)
	}
	fields := strings.Split(strings.TrimSpace(out), ":")
	if len(fields) < 7 {
		return "", fmt.Errorf("unexpected passwd entry for %s", name)
	}
	return fields[6], nil
}
