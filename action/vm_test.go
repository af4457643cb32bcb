package action

import (
	"os"
	"testing"

	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/runner"
	"github.com/archup/archup/pkg/vm"
	"github.com/stretchr/testify/require"
)

// stubPackages reports every package as installed so the host dependency
// check is a no-op.
type stubPackages struct{}

func (stubPackages) IsAvailable(string) bool                    { return true }
func (stubPackages) IsInstalled(string) bool                    { return true }
func (stubPackages) Install(...string) error                    { return nil }
func (stubPackages) Refresh() error                             { return nil }
func (stubPackages) FilterAvailable(names []string) []string    { return names }
func (stubPackages) MissingCommands(map[string]string) []string { return nil }
func (stubPackages) MultilibEnabled() (bool, error)             { return true, nil }
func (stubPackages) EnableMultilib() (bool, error)              { return false, nil }

func testHarness(t *testing.T, r runner.Runner) *vm.Harness {
	t.Helper()
	h := &vm.Harness{
		CacheDir: t.TempDir(),
		DiskSize: "40G",
		RAM:      "4G",
		CPUs:     4,
		SSHPort:  2222,
		Runner:   r,
	}
	require.NoError(t, os.WriteFile(h.BasePath(), []byte("base"), 0644))
	require.NoError(t, os.WriteFile(h.OverlayPath(), []byte("overlay"), 0644))
	return h
}

func TestVmUpDryRunFreshKeepsOverlay(t *testing.T) {
	dry := &runner.DryRun{}
	h := testHarness(t, dry)

	up := VmUp{
		Harness: h,
		Config:  &config.Run{DryRun: true, Packages: stubPackages{}, Report: &config.Report{}},
		Fresh:   true,
	}
	require.NoError(t, up.Run())

	content, err := os.ReadFile(h.OverlayPath())
	require.NoError(t, err)
	require.Equal(t, "overlay", string(content))
	require.NotEmpty(t, dry.Commands())
}

func TestVmResetDryRunKeepsDisks(t *testing.T) {
	h := testHarness(t, &runner.DryRun{})

	reset := VmReset{
		Harness: h,
		Config:  &config.Run{DryRun: true, AssumeYes: true},
		All:     true,
	}
	require.NoError(t, reset.Run())

	require.FileExists(t, h.OverlayPath())
	require.FileExists(t, h.BasePath())
}
