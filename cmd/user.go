package cmd

import (
	"fmt"

	"github.com/archup/archup/action"
	"github.com/archup/archup/phase"
	"github.com/urfave/cli/v2"
)

var userCommand = &cli.Command{
	Name:  "user",
	Usage: "Create or repair a user account",
	Flags: []cli.Flag{
		configFlag,
		dryRunFlag,
		userFlag,
		&cli.StringFlag{
			Name:  "shell",
			Usage: "Login shell for the account",
		},
		&cli.StringFlag{
			Name:      "home",
			Usage:     "Home directory override",
			TakesFile: true,
		},
		&cli.BoolFlag{
			Name:  "keep-password",
			Usage: "Leave the password state untouched instead of locking it",
		},
		debugFlag,
		traceFlag,
	},
	Before: actions(initLogging, initConfig, initRun),
	Action: func(ctx *cli.Context) error {
		run := runFromCtx(ctx)
		if run.User == "" {
			return fmt.Errorf("--user is required")
		}

		userAction := action.ProvisionUser{
			Manager: &phase.Manager{Config: run},
		}
		return userAction.Run()
	},
}
