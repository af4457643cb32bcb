package cmd

import (
	"github.com/urfave/cli/v2"
)

// App is the main urfave/cli.App for archup
var App = &cli.App{
	Name:  "archup",
	Usage: "Arch Linux provisioning tool",
	Flags: []cli.Flag{
		debugFlag,
		traceFlag,
	},
	Commands: []*cli.Command{
		versionCommand,
		applyCommand,
		wizardCommand,
		userCommand,
		repairCommand,
		vmCommand,
	},
}
