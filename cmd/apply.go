package cmd

import (
	"fmt"

	"github.com/archup/archup/action"
	"github.com/archup/archup/phase"
	"github.com/urfave/cli/v2"
)

func applyFlags() []cli.Flag {
	flags := []cli.Flag{
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
	}
	return append(flags, moduleFlags()...)
}

var applyCommand = &cli.Command{
	Name:   "apply",
	Usage:  "Install the selected modules and configure the system",
	Flags:  applyFlags(),
	Before: actions(initLogging, initConfig, initRun),
	Action: func(ctx *cli.Context) error {
		applyAction := action.Apply{
			Manager: &phase.Manager{Config: runFromCtx(ctx)},
		}

		if err := applyAction.Run(); err != nil {
			return fmt.Errorf("apply failed - log file saved to %s: %w", ctx.Context.Value(ctxLogFileKey{}).(string), err)
		}

		return nil
	},
}
