package cmd

import (
	"fmt"
	"os"

	"github.com/archup/archup/action"
	"github.com/archup/archup/phase"
	"github.com/urfave/cli/v2"
)

var repairCommand = &cli.Command{
	Name:  "repair",
	Usage: "Recover a broken post-install state (login loop, missing driver)",
	Flags: []cli.Flag{
		configFlag,
		dryRunFlag,
		yesFlag,
		userFlag,
		debugFlag,
		traceFlag,
	},
	Before: actions(initLogging, initConfig, initRun),
	Action: func(ctx *cli.Context) error {
		run := runFromCtx(ctx)
		if run.User == "" {
			// per-user fixes target the invoking user behind sudo
			run.User = os.Getenv("SUDO_USER")
		}

		repairAction := action.Repair{
			Manager: &phase.Manager{Config: run},
		}

		if err := repairAction.Run(); err != nil {
			return fmt.Errorf("repair failed - log file saved to %s: %w", ctx.Context.Value(ctxLogFileKey{}).(string), err)
		}

		return nil
	},
}
