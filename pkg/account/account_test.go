package account

import (
	"testing"

	"github.com/archup/archup/pkg/runner"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	run     []runner.Command
	outputs map[string]string
}

func (f *fakeRunner) Run(cmd runner.Command) error {
	f.run = append(f.run, cmd)
	return nil
}

func (f *fakeRunner) Output(cmd runner.Command) (string, error) {
	return f.outputs[cmd.String()], nil
}

func (f *fakeRunner) CommandExists(string) bool { return true }

func TestValidUsername(t *testing.T) {
	for _, name := range []string{"alice", "bob_smith", "dev-user", "_svc", "host$", "u2"} {
		require.True(t, ValidUsername(name), name)
	}
	for _, name := range []string{"", "Alice", "9lives", "bad name", "root!", "-dash", "waytoolongusernamewaytoolongusername"} {
		require.False(t, ValidUsername(name), name)
	}
}

func TestCreateCommand(t *testing.T) {
	f := &fakeRunner{}
	s := NewService(f)

	require.NoError(t, s.Create("alice", "/bin/zsh", ""))
	require.Len(t, f.run, 1)
	require.Equal(t, "useradd", f.run[0].Path)
	require.Equal(t, []string{"-m", "-U", "-s", "/bin/zsh", "alice"}, f.run[0].Args)
}

func TestCreateWithHomeOverride(t *testing.T) {
	f := &fakeRunner{}
	s := NewService(f)

	require.NoError(t, s.Create("builder", "/bin/bash", "/srv/builder"))
	require.Equal(t, []string{"-m", "-U", "-s", "/bin/bash", "-d", "/srv/builder", "builder"}, f.run[0].Args)
}

func TestCreateRejectsInvalidName(t *testing.T) {
	f := &fakeRunner{}
	s := NewService(f)
	require.Error(t, s.Create("Not Valid", "/bin/bash", ""))
	require.Empty(t, f.run)
}

func TestAddGroupsAdditive(t *testing.T) {
	f := &fakeRunner{}
	s := NewService(f)

	require.NoError(t, s.AddGroups("alice", "wheel", "video"))
	require.Equal(t, []string{"-aG", "wheel,video", "alice"}, f.run[0].Args)

	require.NoError(t, s.AddGroups("alice"))
	require.Len(t, f.run, 1, "no groups means no command")
}

func TestLockPassword(t *testing.T) {
	f := &fakeRunner{}
	s := NewService(f)
	require.NoError(t, s.LockPassword("alice"))
	require.Equal(t, []string{"-l", "alice"}, f.run[0].Args)
}

func TestShellFromPasswd(t *testing.T) {
	f := &fakeRunner{outputs: map[string]string{
		"getent passwd alice": "alice:x:1000:1000::/home/alice:/bin/zsh",
	}}
	s := NewService(f)
	shell, err := s.Shell("alice")
	require.NoError(t, err)
	require.Equal(t, "/bin/zsh", shell)
}
