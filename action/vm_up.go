package action

import (
	"errors"
	"strings"

	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/runner"
	"github.com/archup/archup/pkg/vm"
	log "github.com/sirupsen/logrus"
)

// VmUp prepares the VM artifacts and boots the test guest. The flow is
// linear: host dependencies, installation image, disks, optional browser
// display bridge, then the blocking QEMU process.
type VmUp struct {
	// Harness manages the VM artifacts.
	Harness *vm.Harness
	// Config is the run state.
	Config *config.Run
	// Fresh discards an existing overlay disk before booting.
	Fresh bool
	// NoVNC exposes the display through a browser bridge instead of a local
	// window.
	NoVNC bool
}

// Run the action
func (v VmUp) Run() error {
	if err := v.ensureHostDeps(); err != nil {
		return err
	}

	if v.Config.DryRun {
		log.Infof("%s fetch and verify %s", runner.DryRunPrefix, vm.ISOName)
	} else {
		if err := v.Harness.FetchISO(); err != nil {
			return err
		}
	}

	if v.Fresh {
		if v.Config.DryRun {
			log.Infof("%s discard overlay %s", runner.DryRunPrefix, v.Harness.OverlayPath())
		} else {
			if err := v.Harness.RemoveOverlay(); err != nil {
				return err
			}
			log.Infof("discarded previous overlay")
		}
	}

	if err := v.Harness.EnsureBaseImage(); err != nil {
		return err
	}
	fresh, err := v.Harness.EnsureOverlay()
	if err != nil {
		return err
	}
	if v.Fresh && v.Config.DryRun {
		// the overlay was kept above, but a real run would have recreated it
		fresh = true
	}
	if fresh {
		log.Infof("fresh overlay, guest will boot the installation image")
	}

	vnc := v.NoVNC
	if v.NoVNC {
		err := v.Harness.StartBridge()
		if errors.Is(err, vm.ErrBridgeUnavailable) {
			log.Warnf("websockify not available, falling back to a local display window")
			vnc = false
		} else if err != nil {
			return err
		} else {
			defer func() {
				if err := v.Harness.StopBridge(); err != nil {
					log.Warnf("bridge teardown: %v", err)
				}
			}()
		}
	}

	return v.Harness.Launch(fresh, vnc)
}

// ensureHostDeps installs the missing host packages needed to run the guest.
func (v VmUp) ensureHostDeps() error {
	missing := v.Harness.MissingHostPackages(v.Config.Packages.IsInstalled)
	if len(missing) == 0 {
		return nil
	}
	log.Infof("installing host dependencies: %s", strings.Join(missing, " "))
	return v.Config.Packages.Install(missing...)
}
