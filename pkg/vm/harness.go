// Package vm provisions a disposable QEMU virtual machine for dry-running
// the provisioning flows against a clean Arch install. A cached base disk
// carries the installed system; a copy-on-write overlay takes all changes and
// can be thrown away between runs.
package vm

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/archup/archup/pkg/runner"
	log "github.com/sirupsen/logrus"
)

// ISOName is the installation image file name on the mirrors.
const ISOName = "archlinux-x86_64.iso"

// SumsName is the checksum manifest file name on the mirrors.
const SumsName = "sha256sums.txt"

// MountTag is the shared-filesystem tag under which the project tree is
// exposed to the guest (mount -t 9p -o trans=virtio archup /mnt).
const MountTag = "archup"

// hostPackages are required on the host before a VM can be launched.
var hostPackages = []string{"qemu-full", "edk2-ovmf"}

// Harness manages the VM artifacts in a cache directory and launches QEMU.
type Harness struct {
	// CacheDir holds the ISO, checksum manifest, disk images and pid file.
	CacheDir string
	// Mirror is the base URL for the installation image downloads.
	Mirror string
	// DiskSize for the base image, in qemu-img syntax.
	DiskSize string
	// RAM for the guest, in QEMU -m syntax.
	RAM string
	// CPUs for the guest.
	CPUs int
	// SSHPort is forwarded from the host to guest port 22.
	SSHPort int
	// VNCDisplay is the QEMU VNC display number.
	VNCDisplay int
	// NoVNCPort is the local port of the browser display bridge.
	NoVNCPort int
	// ProjectDir is shared into the guest under MountTag.
	ProjectDir string
	// ExtraArgs are appended verbatim to the QEMU command line.
	ExtraArgs []string

	Runner runner.Runner
	// HTTPClient for downloads, http.DefaultClient when nil.
	HTTPClient *http.Client
}

// ISOPath is the cached installation image location.
func (h *Harness) ISOPath() string { return filepath.Join(h.CacheDir, ISOName) }

// SumsPath is the cached checksum manifest location.
func (h *Harness) SumsPath() string { return filepath.Join(h.CacheDir, SumsName) }

// BasePath is the cached base disk image location.
func (h *Harness) BasePath() string { return filepath.Join(h.CacheDir, "base.qcow2") }

// OverlayPath is the disposable overlay disk location.
func (h *Harness) OverlayPath() string { return filepath.Join(h.CacheDir, "overlay.qcow2") }

// PIDFilePath tracks the background display bridge process.
func (h *Harness) PIDFilePath() string { return filepath.Join(h.CacheDir, "novnc.pid") }

// MissingHostPackages returns the host dependencies that are not installed.
func (h *Harness) MissingHostPackages(installed func(string) bool) []string {
	var missing []string
	for _, pkg := range hostPackages {
		if !installed(pkg) {
			missing = append(missing, pkg)
		}
	}
	return missing
}

// EnsureBaseImage creates the base disk image if it does not exist.
func (h *Harness) EnsureBaseImage() error {
	if _, err := os.Stat(h.BasePath()); err == nil {
		log.Debugf("base image %s already exists", h.BasePath())
		return nil
	}
	log.Infof("creating base image %s (%s)", h.BasePath(), h.DiskSize)
	return h.Runner.Run(runner.New("qemu-img", "create", "-f", "qcow2", h.BasePath(), h.DiskSize))
}

// EnsureOverlay creates the copy-on-write overlay referencing the base image
// if it does not exist. Returns true when a new overlay was created, which
// means the guest has no installed system yet and should boot the ISO.
func (h *Harness) EnsureOverlay() (bool, error) {
	if _, err := os.Stat(h.OverlayPath()); err == nil {
		log.Debugf("overlay %s already exists", h.OverlayPath())
		return false, nil
	}
	log.Infof("creating overlay image %s", h.OverlayPath())
	err := h.Runner.Run(runner.New(
		"qemu-img", "create", "-f", "qcow2", "-F", "qcow2", "-b", h.BasePath(), h.OverlayPath(),
	))
	return err == nil, err
}

// RemoveOverlay deletes the overlay disk if present.
func (h *Harness) RemoveOverlay() error {
	if err := os.Remove(h.OverlayPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove overlay: %w", err)
	}
	return nil
}

// RemoveBase deletes the base disk if present.
func (h *Harness) RemoveBase() error {
	if err := os.Remove(h.BasePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove base image: %w", err)
	}
	return nil
}

// LaunchCommand builds the QEMU invocation. When bootISO is true the guest
// boots from the installation image, otherwise from the overlay disk. The
// display argument is a QEMU -display/-vnc selection produced by the caller.
func (h *Harness) LaunchCommand(bootISO bool, vnc bool) runner.Command {
	args := []string{
		"-enable-kvm",
		"-cpu", "host",
		"-m", h.RAM,
		"-smp", strconv.Itoa(h.CPUs),
		"-drive", "file=" + h.OverlayPath() + ",format=qcow2,if=virtio",
		"-netdev", fmt.Sprintf("user,id=n0,hostfwd=tcp::%d-:22", h.SSHPort),
		"-device", "virtio-net-pci,netdev=n0",
		"-virtfs", fmt.Sprintf("local,path=%s,mount_tag=%s,security_model=mapped-xattr", h.ProjectDir, MountTag),
	}
	if bootISO {
		args = append(args, "-cdrom", h.ISOPath(), "-boot", "order=d")
	}
	if vnc {
		args = append(args, "-vnc", fmt.Sprintf(":%d", h.VNCDisplay))
	} else {
		args = append(args, "-display", "gtk")
	}
	args = append(args, h.ExtraArgs...)
	cmd := runner.New("qemu-system-x86_64", args...)
	cmd.Stream = true
	return cmd
}

// Launch starts the guest and blocks until it exits.
func (h *Harness) Launch(bootISO bool, vnc bool) error {
	return h.Runner.Run(h.LaunchCommand(bootISO, vnc))
}
