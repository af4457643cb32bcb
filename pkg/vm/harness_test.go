package vm

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/archup/archup/pkg/runner"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	run      []runner.Command
	started  []runner.Command
	commands map[string]bool
}

func (f *fakeRunner) Run(cmd runner.Command) error { f.run = append(f.run, cmd); return nil }

func (f *fakeRunner) Output(runner.Command) (string, error) { return "", nil }

func (f *fakeRunner) CommandExists(name string) bool { return f.commands[name] }

func (f *fakeRunner) Start(cmd runner.Command) (int, error) {
	f.started = append(f.started, cmd)
	return 12345, nil
}

func testHarness(t *testing.T) (*Harness, *fakeRunner) {
	t.Helper()
	f := &fakeRunner{commands: map[string]bool{}}
	return &Harness{
		CacheDir:   t.TempDir(),
		Mirror:     "https://geo.mirror.pkgbuild.com/iso/latest",
		DiskSize:   "40G",
		RAM:        "4G",
		CPUs:       4,
		SSHPort:    2222,
		VNCDisplay: 1,
		NoVNCPort:  6080,
		ProjectDir: "/src/archup",
		Runner:     f,
	}, f
}

func writeISO(t *testing.T, h *Harness, content, manifestHash string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.ISOPath(), []byte(content), 0644))
	manifest := fmt.Sprintf("%s  %s\n0123abc  some-other-file.iso\n", manifestHash, ISOName)
	require.NoError(t, os.WriteFile(h.SumsPath(), []byte(manifest), 0644))
}

func TestVerifyISOAccepts(t *testing.T) {
	h, _ := testHarness(t)
	content := "fake iso payload"
	sum := sha256.Sum256([]byte(content))
	writeISO(t, h, content, hex.EncodeToString(sum[:]))

	require.NoError(t, h.VerifyISO())
	_, err := os.Stat(h.ISOPath())
	require.NoError(t, err, "verified image must be kept")
}

func TestVerifyISODeletesOnMismatch(t *testing.T) {
	h, _ := testHarness(t)
	writeISO(t, h, "corrupted payload", "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	err := h.VerifyISO()
	require.ErrorIs(t, err, ErrChecksumMismatch)
	_, statErr := os.Stat(h.ISOPath())
	require.True(t, os.IsNotExist(statErr), "corrupt image must be deleted")
}

func TestVerifyISOMissingManifestEntry(t *testing.T) {
	h, _ := testHarness(t)
	require.NoError(t, os.WriteFile(h.ISOPath(), []byte("payload"), 0644))
	require.NoError(t, os.WriteFile(h.SumsPath(), []byte("abc123  unrelated.iso\n"), 0644))

	err := h.VerifyISO()
	require.Error(t, err)
	require.Contains(t, err.Error(), "no manifest entry")
}

func TestEnsureBaseImage(t *testing.T) {
	h, f := testHarness(t)

	require.NoError(t, h.EnsureBaseImage())
	require.Len(t, f.run, 1)
	require.Equal(t, "qemu-img", f.run[0].Path)
	require.Equal(t, []string{"create", "-f", "qcow2", h.BasePath(), "40G"}, f.run[0].Args)

	// existing image is left alone
	require.NoError(t, os.WriteFile(h.BasePath(), []byte("qcow2"), 0644))
	require.NoError(t, h.EnsureBaseImage())
	require.Len(t, f.run, 1)
}

func TestEnsureOverlayReferencesBase(t *testing.T) {
	h, f := testHarness(t)

	fresh, err := h.EnsureOverlay()
	require.NoError(t, err)
	require.True(t, fresh)
	require.Equal(t, []string{"create", "-f", "qcow2", "-F", "qcow2", "-b", h.BasePath(), h.OverlayPath()}, f.run[0].Args)

	require.NoError(t, os.WriteFile(h.OverlayPath(), []byte("qcow2"), 0644))
	fresh, err = h.EnsureOverlay()
	require.NoError(t, err)
	require.False(t, fresh, "existing overlay must be reused")
	require.Len(t, f.run, 1)
}

func TestLaunchCommand(t *testing.T) {
	h, _ := testHarness(t)
	cmd := h.LaunchCommand(true, true)

	require.Equal(t, "qemu-system-x86_64", cmd.Path)
	require.True(t, cmd.Stream)
	require.Contains(t, cmd.Args, "-enable-kvm")
	require.Contains(t, cmd.Args, "user,id=n0,hostfwd=tcp::2222-:22")
	require.Contains(t, cmd.Args, "local,path=/src/archup,mount_tag=archup,security_model=mapped-xattr")
	require.Contains(t, cmd.Args, "-cdrom")
	require.Contains(t, cmd.Args, ":1")

	// installed system boots from disk without the ISO
	cmd = h.LaunchCommand(false, false)
	require.NotContains(t, cmd.Args, "-cdrom")
	require.Contains(t, cmd.Args, "gtk")
}

func TestLaunchCommandExtraArgs(t *testing.T) {
	h, _ := testHarness(t)
	h.ExtraArgs = []string{"-audiodev", "pa,id=snd0"}
	cmd := h.LaunchCommand(false, true)
	require.Equal(t, "pa,id=snd0", cmd.Args[len(cmd.Args)-1])
}

func TestMissingHostPackages(t *testing.T) {
	h, _ := testHarness(t)
	installed := map[string]bool{"qemu-full": true}
	missing := h.MissingHostPackages(func(name string) bool { return installed[name] })
	require.Equal(t, []string{"edk2-ovmf"}, missing)
}

func TestStartBridgeRequiresWebsockify(t *testing.T) {
	h, _ := testHarness(t)
	require.ErrorIs(t, h.StartBridge(), ErrBridgeUnavailable)
}

func TestStartBridgeWritesPIDFile(t *testing.T) {
	h, f := testHarness(t)
	f.commands["websockify"] = true

	require.NoError(t, h.StartBridge())
	require.Len(t, f.started, 1)
	require.Equal(t, "websockify", f.started[0].Path)

	content, err := os.ReadFile(h.PIDFilePath())
	require.NoError(t, err)
	require.Equal(t, "12345", string(content))
}

func TestStopBridgeToleratesMissingPIDFile(t *testing.T) {
	h, _ := testHarness(t)
	require.NoError(t, h.StopBridge())
}

func TestStopBridgeRemovesMalformedPIDFile(t *testing.T) {
	h, _ := testHarness(t)
	require.NoError(t, os.WriteFile(h.PIDFilePath(), []byte("not-a-pid"), 0644))
	require.NoError(t, h.StopBridge())
	_, err := os.Stat(h.PIDFilePath())
	require.True(t, os.IsNotExist(err))
}

func TestResetRemovesOverlayKeepsBase(t *testing.T) {
	h, _ := testHarness(t)
	require.NoError(t, os.WriteFile(h.BasePath(), []byte("base"), 0644))
	require.NoError(t, os.WriteFile(h.OverlayPath(), []byte("overlay"), 0644))

	require.NoError(t, h.Reset(false))
	_, err := os.Stat(h.OverlayPath())
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(h.BasePath())
	require.NoError(t, err, "base image survives a plain reset")

	require.NoError(t, h.Reset(true))
	_, err = os.Stat(h.BasePath())
	require.True(t, os.IsNotExist(err))
}

func TestPathsLiveInCacheDir(t *testing.T) {
	h, _ := testHarness(t)
	for _, p := range []string{h.ISOPath(), h.SumsPath(), h.BasePath(), h.OverlayPath(), h.PIDFilePath()} {
		require.Equal(t, h.CacheDir, filepath.Dir(p))
	}
}
