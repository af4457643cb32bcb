package phase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/archup/archup/pkg/runner"
	"github.com/stretchr/testify/require"
)

type recRunner struct {
	nopRunner
	commands []runner.Command
}

func (r *recRunner) Run(cmd runner.Command) error {
	r.commands = append(r.commands, cmd)
	return nil
}

const localeGenFixture = `# Configuration file for locale-gen
#de_DE.UTF-8 UTF-8
#en_US.UTF-8 UTF-8
fi_FI.UTF-8 UTF-8
`

func localePhase(t *testing.T) (*SetLocale, *recRunner) {
	t.Helper()
	dir := t.TempDir()
	p := &SetLocale{
		LocaleGenPath:  filepath.Join(dir, "locale.gen"),
		LocaleConfPath: filepath.Join(dir, "locale.conf"),
	}
	require.NoError(t, os.WriteFile(p.LocaleGenPath, []byte(localeGenFixture), 0644))
	r := &recRunner{}
	run := testRun(&fakeSource{}, &fakeServices{})
	run.Runner = r
	run.AssumeYes = true
	require.NoError(t, p.Prepare(run))
	return p, r
}

func TestSetLocaleUncommentsAndCommits(t *testing.T) {
	p, r := localePhase(t)
	p.Config.Config.Locale = "en_US.UTF-8"

	require.NoError(t, p.Run())

	content, err := os.ReadFile(p.LocaleGenPath)
	require.NoError(t, err)
	require.Contains(t, string(content), "\nen_US.UTF-8 UTF-8")
	require.NotContains(t, string(content), "#en_US.UTF-8")
	// the comment header and other locales are untouched
	require.Contains(t, string(content), "#de_DE.UTF-8 UTF-8")

	require.Len(t, r.commands, 1)
	require.Equal(t, "locale-gen", r.commands[0].Path)

	conf, err := os.ReadFile(p.LocaleConfPath)
	require.NoError(t, err)
	require.Equal(t, "LANG=en_US.UTF-8\n", string(conf))
}

func TestSetLocaleAlreadyActive(t *testing.T) {
	p, _ := localePhase(t)
	p.Config.Config.Locale = "fi_FI.UTF-8"

	before, err := os.ReadFile(p.LocaleGenPath)
	require.NoError(t, err)
	require.NoError(t, p.Run())
	after, err := os.ReadFile(p.LocaleGenPath)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestSetLocaleUnknownAborts(t *testing.T) {
	p, r := localePhase(t)
	p.Config.Config.Locale = "xx_XX.UTF-8"

	require.Error(t, p.Run())
	require.Empty(t, r.commands, "nothing may be committed for an invalid locale")
}

func TestSetTimezoneValidatesAgainstZoneinfo(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Europe"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Europe", "Helsinki"), []byte("TZif"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "UTC"), []byte("TZif"), 0644))

	r := &recRunner{}
	run := testRun(&fakeSource{}, &fakeServices{})
	run.Runner = r
	run.AssumeYes = true
	run.Config.Timezone = "Europe/Helsinki"

	p := &SetTimezone{ZoneinfoDir: dir}
	require.NoError(t, p.Prepare(run))
	require.NoError(t, p.Run())

	require.Equal(t, "ln", r.commands[0].Path)
	require.Equal(t, []string{"-sf", filepath.Join(dir, "Europe", "Helsinki"), "/etc/localtime"}, r.commands[0].Args)

	run.Config.Timezone = "Nowhere/Nothing"
	p2 := &SetTimezone{ZoneinfoDir: dir}
	require.NoError(t, p2.Prepare(run))
	require.Error(t, p2.Run())
}
