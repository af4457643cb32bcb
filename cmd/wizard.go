package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/archup/archup/action"
	"github.com/archup/archup/phase"
	"github.com/archup/archup/pkg/config"
	"github.com/urfave/cli/v2"
)

// wizardDefaults is the answer suggested for each module question.
var wizardDefaults = map[string]bool{
	"base":     true,
	"kde":      true,
	"dev":      false,
	"gaming":   false,
	"qol":      true,
	"gpu":      false,
	"audio":    true,
	"hw":       true,
	"printing": false,
	"flatpak":  false,
	"zerotier": false,
}

// moduleQuestions describes each module in the prompt.
var moduleQuestions = map[string]string{
	"base":     "Install the base system tools (network, ssh, editors)?",
	"kde":      "Install the KDE Plasma desktop?",
	"dev":      "Install development tools (compilers, docker)?",
	"gaming":   "Install gaming support (steam, wine)?",
	"qol":      "Install quality of life tools (htop, fonts, archives)?",
	"gpu":      "Install NVIDIA graphics drivers?",
	"audio":    "Install the PipeWire audio stack?",
	"hw":       "Install hardware support (bluetooth, filesystems)?",
	"printing": "Install printing support?",
	"flatpak":  "Set up Flatpak with the Flathub remote?",
	"zerotier": "Install the ZeroTier network client?",
}

// wizardModules collects the module selection, one yes/no question per
// module. With assumeYes every question takes its default silently.
func wizardModules(assumeYes bool) (config.Modules, error) {
	var m config.Modules
	for _, name := range config.ModuleNames {
		answer := wizardDefaults[name]
		if !assumeYes {
			prompt := &survey.Confirm{
				Message: moduleQuestions[name],
				Default: wizardDefaults[name],
			}
			if err := survey.AskOne(prompt, &answer); err != nil {
				return m, fmt.Errorf("prompt failed: %w", err)
			}
		}
		m.Set(name, answer)
	}
	return m, nil
}

var wizardCommand = &cli.Command{
	Name:  "wizard",
	Usage: "Select modules interactively and run the installation",
	Flags: []cli.Flag{
		configFlag,
		dryRunFlag,
		yesFlag,
		userFlag,
		&cli.StringFlag{
			Name:  "locale",
			Usage: "System locale, must be listed in locale.gen",
		},
		&cli.StringFlag{
			Name:  "timezone",
			Usage: "Timezone as Region/City",
		},
		debugFlag,
		traceFlag,
	},
	Before: actions(initLogging, initConfig, initRun),
	Action: func(ctx *cli.Context) error {
		run := runFromCtx(ctx)
		if !run.AssumeYes && !run.Interactive {
			return fmt.Errorf("wizard needs a terminal, use 'archup apply' or --yes")
		}

		modules, err := wizardModules(run.AssumeYes)
		if err != nil {
			return err
		}
		run.Modules = modules

		applyAction := action.Apply{
			Manager: &phase.Manager{Config: run},
		}
		return applyAction.Run()
	},
}
