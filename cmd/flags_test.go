package cmd

import (
	"flag"
	"testing"

	"github.com/archup/archup/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func moduleFlagCtx(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, name := range config.ModuleNames {
		set.Bool("with-"+name, false, "")
		set.Bool("skip-"+name, false, "")
	}
	for _, arg := range args {
		require.NoError(t, set.Set(arg, "true"))
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestModulesFromFlagsDefaultsToAll(t *testing.T) {
	ctx := moduleFlagCtx(t)
	m := modulesFromFlags(ctx, config.Default())
	require.Equal(t, config.AllModules(), m)
}

func TestModulesFromFlagsExplicitSelection(t *testing.T) {
	ctx := moduleFlagCtx(t, "with-kde", "with-audio")
	m := modulesFromFlags(ctx, config.Default())
	require.Equal(t, []string{"kde", "audio"}, m.Enabled())
}

func TestModulesFromFlagsSkipSubtracts(t *testing.T) {
	ctx := moduleFlagCtx(t, "skip-base", "skip-zerotier")
	m := modulesFromFlags(ctx, config.Default())
	require.False(t, m.Base)
	require.False(t, m.Zerotier)
	require.True(t, m.KDE)
}

func TestModulesFromFlagsWithAndSkipCombined(t *testing.T) {
	// the scenario from the install guide: --with-kde --with-audio --skip-base
	ctx := moduleFlagCtx(t, "with-kde", "with-audio", "skip-base")
	m := modulesFromFlags(ctx, config.Default())
	require.Equal(t, []string{"kde", "audio"}, m.Enabled())
}

func TestModulesFromFlagsConfigPreselection(t *testing.T) {
	cfg := config.Default()
	cfg.Modules = &config.Modules{Base: true, Dev: true}

	m := modulesFromFlags(moduleFlagCtx(t), cfg)
	require.Equal(t, []string{"base", "dev"}, m.Enabled())

	// an explicit --with flag overrides the preselection entirely
	m = modulesFromFlags(moduleFlagCtx(t, "with-kde"), cfg)
	require.Equal(t, []string{"kde"}, m.Enabled())
}

func TestWizardDefaults(t *testing.T) {
	m, err := wizardModules(true)
	require.NoError(t, err)
	require.Equal(t, []string{"base", "kde", "qol", "audio", "hw"}, m.Enabled())
}

func TestWizardCoversAllModules(t *testing.T) {
	for _, name := range config.ModuleNames {
		_, ok := wizardDefaults[name]
		require.True(t, ok, "module %s has no wizard default", name)
		_, ok = moduleQuestions[name]
		require.True(t, ok, "module %s has no wizard question", name)
	}
}
