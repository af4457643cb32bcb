package vm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// ErrBridgeUnavailable is returned when the browser display bridge can not
// be started because its dependencies are missing on the host.
var ErrBridgeUnavailable = fmt.Errorf("websockify not found in PATH")

// StartBridge launches websockify to expose the guest's VNC display over
// HTTP and records its pid so a later run can tear it down. A single pid file
// is used, so concurrent harness invocations are not supported.
func (h *Harness) StartBridge() error {
	if !h.Runner.CommandExists("websockify") {
		return ErrBridgeUnavailable
	}

	starter, ok := h.Runner.(runner.Starter)
	if !ok {
		return fmt.Errorf("runner can not start background processes")
	}

	vncPort := 5900 + h.VNCDisplay
	cmd := runner.New("websockify",
		"--web", "/usr/share/webapps/novnc",
		strconv.Itoa(h.NoVNCPort),
		fmt.Sprintf("localhost:%d", vncPort),
	)

	pid, err := starter.Start(cmd)
	if err != nil {
		return fmt.Errorf("start display bridge: %w", err)
	}
	if pid == 0 {
		// dry run, nothing to track
		return nil
	}

	if err := os.WriteFile(h.PIDFilePath(), []byte(strconv.Itoa(pid)), 0644); err != nil {
		return fmt.Errorf("write bridge pid file: %w", err)
	}

	log.Infof("browser display available at http://localhost:%d/vnc.html", h.NoVNCPort)
	return nil
}

// StopBridge terminates the tracked bridge process and removes the pid file.
// A stale or missing pid file is not an error.
func (h *Harness) StopBridge() error {
	content, err := os.ReadFile(h.PIDFilePath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bridge pid file: %w", err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		log.Warnf("malformed bridge pid file %s, removing", h.PIDFilePath())
		return os.Remove(h.PIDFilePath())
	}

	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		if err == syscall.ESRCH {
			log.Debugf("bridge process %d already gone", pid)
		} else {
			log.Warnf("failed to stop bridge process %d: %v", pid, err)
		}
	} else {
		log.Infof("stopped display bridge (pid %d)", pid)
	}

	return os.Remove(h.PIDFilePath())
}

// Reset tears down the disposable state: the bridge process and the overlay
// disk. With all set the base image is deleted too, forcing a full rebuild on
// the next run.
func (h *Harness) Reset(all bool) error {
	if err := h.StopBridge(); err != nil {
		log.Warnf("bridge teardown: %v", err)
	}
	if err := h.RemoveOverlay(); err != nil {
		return err
	}
	log.Infof("removed overlay image")
	if all {
		if err := h.RemoveBase(); err != nil {
			return err
		}
		log.Infof("removed base image")
	}
	return nil
}
