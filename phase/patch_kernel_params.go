package phase

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// kernelParam enables NVIDIA DRM kernel mode setting, required for Wayland
// sessions on the proprietary driver.
const kernelParam = "nvidia_drm.modeset=1"

// nvidiaModules are added to the initramfs MODULES list.
var nvidiaModules = []string{"nvidia", "nvidia_modeset", "nvidia_uvm", "nvidia_drm"}

// PatchKernelParams ensures the DRM modeset parameter is present in every
// boot configuration location the host may use: the initramfs module list,
// the GRUB default command line and any systemd-boot loader entries. Each
// file is only rewritten when the parameter is actually missing, so re-running
// the patch on an already-patched system produces no diff.
type PatchKernelParams struct {
	GenericPhase

	// MkinitcpioPath is overridable for tests.
	MkinitcpioPath string
	// GrubDefaultPath is overridable for tests.
	GrubDefaultPath string
	// LoaderEntriesGlob is overridable for tests.
	LoaderEntriesGlob string
	// ModprobeConfPath is overridable for tests.
	ModprobeConfPath string
}

// Title for the phase
func (p *PatchKernelParams) Title() string {
	return "Patch kernel parameters"
}

func (p *PatchKernelParams) mkinitcpioPath() string {
	if p.MkinitcpioPath != "" {
		return p.MkinitcpioPath
	}
	return "/etc/mkinitcpio.conf"
}

func (p *PatchKernelParams) grubDefaultPath() string {
	if p.GrubDefaultPath != "" {
		return p.GrubDefaultPath
	}
	return "/etc/default/grub"
}

func (p *PatchKernelParams) loaderEntriesGlob() string {
	if p.LoaderEntriesGlob != "" {
		return p.LoaderEntriesGlob
	}
	return "/boot/loader/entries/*.conf"
}

func (p *PatchKernelParams) modprobeConfPath() string {
	if p.ModprobeConfPath != "" {
		return p.ModprobeConfPath
	}
	return "/etc/modprobe.d/nvidia.conf"
}

// Run the phase
func (p *PatchKernelParams) Run() error {
	if err := p.patchMkinitcpio(); err != nil {
		return err
	}
	if err := p.patchGrubDefault(); err != nil {
		return err
	}
	if err := p.patchLoaderEntries(); err != nil {
		return err
	}
	return p.writeModprobeConf()
}

// patchMkinitcpio adds the nvidia modules to the MODULES=() list, keeping any
// modules already listed.
func (p *PatchKernelParams) patchMkinitcpio() error {
	path := p.mkinitcpioPath()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("%s not present, skipping", path)
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	changed := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "MODULES=(") || !strings.HasSuffix(trimmed, ")") {
			continue
		}
		existing := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(trimmed, "MODULES=("), ")"))
		present := make(map[string]bool, len(existing))
		for _, mod := range existing {
			present[mod] = true
		}
		for _, mod := range nvidiaModules {
			if !present[mod] {
				existing = append(existing, mod)
				changed = true
			}
		}
		lines[i] = "MODULES=(" + strings.Join(existing, " ") + ")"
		break
	}
	if !changed {
		log.Debugf("%s already lists the nvidia modules", path)
		return nil
	}

	return p.Wet(fmt.Sprintf("add nvidia modules to %s", path), func() error {
		return p.rewrite(path, lines)
	})
}

// patchGrubDefault appends the parameter to GRUB_CMDLINE_LINUX_DEFAULT.
func (p *PatchKernelParams) patchGrubDefault() error {
	path := p.grubDefaultPath()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("%s not present, skipping", path)
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	changed := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "GRUB_CMDLINE_LINUX_DEFAULT=") {
			continue
		}
		if strings.Contains(trimmed, kernelParam) {
			break
		}
		// value is quoted, insert before the closing quote
		for _, quote := range []string{`"`, `'`} {
			if strings.HasSuffix(trimmed, quote) {
				value := strings.TrimSuffix(trimmed, quote)
				lines[i] = value + " " + kernelParam + quote
				changed = true
				break
			}
		}
		break
	}
	if !changed {
		log.Debugf("%s already carries %s", path, kernelParam)
		return nil
	}

	return p.Wet(fmt.Sprintf("add %s to %s", kernelParam, path), func() error {
		return p.rewrite(path, lines)
	})
}

// patchLoaderEntries appends the parameter to the options line of every
// systemd-boot loader entry that does not already carry it.
func (p *PatchKernelParams) patchLoaderEntries() error {
	matches, err := doublestar.FilepathGlob(p.loaderEntriesGlob())
	if err != nil {
		return fmt.Errorf("glob loader entries: %w", err)
	}
	for _, entry := range matches {
		content, err := os.ReadFile(entry)
		if err != nil {
			return fmt.Errorf("read %s: %w", entry, err)
		}
		lines := strings.Split(string(content), "\n")
		changed := false
		for i, line := range lines {
			if !strings.HasPrefix(strings.TrimSpace(line), "options ") {
				continue
			}
			if strings.Contains(line, kernelParam) {
				continue
			}
			lines[i] = strings.TrimRight(line, " ") + " " + kernelParam
			changed = true
		}
		if !changed {
			log.Debugf("%s already carries %s", entry, kernelParam)
			continue
		}
		err = p.Wet(fmt.Sprintf("add %s to %s", kernelParam, entry), func() error {
			return p.rewrite(entry, lines)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// writeModprobeConf drops the module option so the parameter also applies
// when the module is loaded late.
func (p *PatchKernelParams) writeModprobeConf() error {
	path := p.modprobeConfPath()
	want := "options nvidia_drm modeset=1\n"
	if content, err := os.ReadFile(path); err == nil && strings.Contains(string(content), "nvidia_drm modeset=1") {
		log.Debugf("%s already present", path)
		return nil
	}
	return p.Wet(fmt.Sprintf("write %s", path), func() error {
		return os.WriteFile(path, []byte(want), 0644)
	})
}

func (p *PatchKernelParams) rewrite(path string, lines []string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode())
}
