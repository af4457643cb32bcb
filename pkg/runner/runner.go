// Package runner executes local commands through a narrow interface so that
// the mutating parts of a run can be swapped for a printing no-op in dry-run
// mode.
package runner

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DryRunPrefix is printed in place of execution for every mutating command
// when running in dry-run mode.
const DryRunPrefix = "[DRY-RUN]"

// Runner runs commands. Output and CommandExists are read-only probes and are
// safe in any mode; Run is a mutation and is suppressed by the dry-run
// implementation.
type Runner interface {
	Run(cmd Command) error
	Output(cmd Command) (string, error)
	CommandExists(name string) bool
}

// Starter can launch a command in the background without waiting for it,
// returning the process id.
type Starter interface {
	Start(cmd Command) (int, error)
}

// Exec is the real subprocess runner.
type Exec struct{}

// Run executes the command and waits for it to finish.
func (e Exec) Run(cmd Command) error {
	log.Debugf("executing: %s", cmd)
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}

	if cmd.Stream {
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("command `%s` failed: %w", cmd, err)
		}
		return nil
	}

	out, err := c.CombinedOutput()
	if err != nil {
		return fmt.Errorf("command `%s` failed: %w (%s)", cmd, err, lastLines(string(out), 5))
	}
	if len(out) > 0 {
		log.Tracef("command `%s` output: %s", cmd, strings.TrimSpace(string(out)))
	}
	return nil
}

// Output executes the command and returns its trimmed standard output.
func (e Exec) Output(cmd Command) (string, error) {
	log.Tracef("probing: %s", cmd)
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if cmd.Stdin != "" {
		c.Stdin = strings.NewReader(cmd.Stdin)
	}
	out, err := c.Output()
	if err != nil {
		return "", fmt.Errorf("command `%s` failed: %w", cmd, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CommandExists reports whether the named executable is found in PATH.
func (e Exec) CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Start launches the command in the background and returns its pid.
func (e Exec) Start(cmd Command) (int, error) {
	log.Debugf("starting in background: %s", cmd)
	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("command `%s` failed to start: %w", cmd, err)
	}
	pid := c.Process.Pid
	// reap the child when it exits on its own
	go func() { _ = c.Wait() }()
	return pid, nil
}

// DryRun prints every mutating command with the DryRunPrefix instead of
// executing it and records it for inspection. Read-only probes are delegated
// to the wrapped runner so availability checks keep working during a dry run.
type DryRun struct {
	Probe Runner

	mu       sync.Mutex
	commands []Command
}

// Run records and prints the command without executing it.
func (d *DryRun) Run(cmd Command) error {
	d.mu.Lock()
	d.commands = append(d.commands, cmd)
	d.mu.Unlock()
	log.Infof("%s %s", DryRunPrefix, cmd)
	return nil
}

// Output delegates to the probe runner.
func (d *DryRun) Output(cmd Command) (string, error) {
	if d.Probe == nil {
		return "", nil
	}
	return d.Probe.Output(cmd)
}

// CommandExists delegates to the probe runner.
func (d *DryRun) CommandExists(name string) bool {
	if d.Probe == nil {
		return false
	}
	return d.Probe.CommandExists(name)
}

// Start records and prints the command without launching it.
func (d *DryRun) Start(cmd Command) (int, error) {
	if err := d.Run(cmd); err != nil {
		return 0, err
	}
	return 0, nil
}

// Commands returns the commands that would have been executed.
func (d *DryRun) Commands() []Command {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Command(nil), d.commands...)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "; ")
}
