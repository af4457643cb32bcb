package phase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func patchPhase(t *testing.T) (*PatchKernelParams, string) {
	t.Helper()
	dir := t.TempDir()
	p := &PatchKernelParams{
		MkinitcpioPath:    filepath.Join(dir, "mkinitcpio.conf"),
		GrubDefaultPath:   filepath.Join(dir, "grub"),
		LoaderEntriesGlob: filepath.Join(dir, "entries", "*.conf"),
		ModprobeConfPath:  filepath.Join(dir, "nvidia.conf"),
	}
	require.NoError(t, p.Prepare(testRun(&fakeSource{}, &fakeServices{})))
	return p, dir
}

func TestPatchMkinitcpioAddsModules(t *testing.T) {
	p, _ := patchPhase(t)
	require.NoError(t, os.WriteFile(p.MkinitcpioPath, []byte("MODULES=(ext4)\nHOOKS=(base udev)\n"), 0644))

	require.NoError(t, p.Run())

	content, err := os.ReadFile(p.MkinitcpioPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "MODULES=(ext4 nvidia nvidia_modeset nvidia_uvm nvidia_drm)")
	require.Contains(t, string(content), "HOOKS=(base udev)")
}

func TestPatchGrubAppendsParam(t *testing.T) {
	p, _ := patchPhase(t)
	require.NoError(t, os.WriteFile(p.GrubDefaultPath, []byte(`GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3 quiet"`+"\n"), 0644))

	require.NoError(t, p.Run())

	content, err := os.ReadFile(p.GrubDefaultPath)
	require.NoError(t, err)
	require.Contains(t, string(content), `GRUB_CMDLINE_LINUX_DEFAULT="loglevel=3 quiet nvidia_drm.modeset=1"`)
}

func TestPatchLoaderEntries(t *testing.T) {
	p, dir := patchPhase(t)
	entries := filepath.Join(dir, "entries")
	require.NoError(t, os.MkdirAll(entries, 0755))
	entry := filepath.Join(entries, "arch.conf")
	require.NoError(t, os.WriteFile(entry, []byte("title Arch Linux\nlinux /vmlinuz-linux\noptions root=/dev/sda2 rw\n"), 0644))

	require.NoError(t, p.Run())

	content, err := os.ReadFile(entry)
	require.NoError(t, err)
	require.Contains(t, string(content), "options root=/dev/sda2 rw nvidia_drm.modeset=1")
}

func TestPatchKernelParamsIdempotent(t *testing.T) {
	p, dir := patchPhase(t)
	require.NoError(t, os.WriteFile(p.MkinitcpioPath, []byte("MODULES=(ext4)\n"), 0644))
	require.NoError(t, os.WriteFile(p.GrubDefaultPath, []byte(`GRUB_CMDLINE_LINUX_DEFAULT="quiet"`+"\n"), 0644))
	entries := filepath.Join(dir, "entries")
	require.NoError(t, os.MkdirAll(entries, 0755))
	entry := filepath.Join(entries, "arch.conf")
	require.NoError(t, os.WriteFile(entry, []byte("options root=/dev/sda2 rw\n"), 0644))

	require.NoError(t, p.Run())

	snapshot := func() map[string]string {
		out := make(map[string]string)
		for _, path := range []string{p.MkinitcpioPath, p.GrubDefaultPath, entry, p.ModprobeConfPath} {
			content, err := os.ReadFile(path)
			require.NoError(t, err)
			out[path] = string(content)
		}
		return out
	}
	first := snapshot()

	// a second run must not change a single byte
	require.NoError(t, p.Run())
	require.Equal(t, first, snapshot())
}

func TestPatchKernelParamsMissingFilesSkipped(t *testing.T) {
	p, _ := patchPhase(t)
	require.NoError(t, p.Run())

	// only the modprobe drop-in is created from scratch
	content, err := os.ReadFile(p.ModprobeConfPath)
	require.NoError(t, err)
	require.Equal(t, "options nvidia_drm modeset=1\n", string(content))
}

func TestPatchKernelParamsDryRun(t *testing.T) {
	p, _ := patchPhase(t)
	p.Config.DryRun = true
	require.NoError(t, os.WriteFile(p.MkinitcpioPath, []byte("MODULES=(ext4)\n"), 0644))

	require.NoError(t, p.Run())

	content, err := os.ReadFile(p.MkinitcpioPath)
	require.NoError(t, err)
	require.Equal(t, "MODULES=(ext4)\n", string(content), "dry run must not modify files")
	_, err = os.Stat(p.ModprobeConfPath)
	require.True(t, os.IsNotExist(err))
}
