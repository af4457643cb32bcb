package phase

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// driverPriority is checked in order; the first package available in the
// repositories wins.
var driverPriority = []string{"nvidia", "nvidia-open", "nvidia-lts"}

// InstallDrivers picks the hardware-appropriate NVIDIA driver package by
// repository availability and installs it together with its userspace
// libraries. The 32-bit libraries are added when the multilib repository is
// active.
type InstallDrivers struct {
	GenericPhase
}

// Title for the phase
func (p *InstallDrivers) Title() string {
	return "Install graphics drivers"
}

// Run the phase
func (p *InstallDrivers) Run() error {
	var driver string
	for _, candidate := range driverPriority {
		if p.Config.Packages.IsAvailable(candidate) {
			driver = candidate
			break
		}
	}
	if driver == "" {
		return fmt.Errorf("no driver package available, tried %v", driverPriority)
	}
	log.Infof("selected driver package %s", driver)

	pkgs := []string{driver, "nvidia-utils", "egl-wayland"}
	multilib, err := p.Config.Packages.MultilibEnabled()
	if err != nil {
		return err
	}
	if multilib {
		pkgs = append(pkgs, "lib32-nvidia-utils")
	}

	return p.Config.Packages.Install(p.Config.Packages.FilterAvailable(pkgs)...)
}
