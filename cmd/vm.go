package cmd

import (
	"fmt"

	"github.com/archup/archup/action"
	"github.com/archup/archup/cache"
	"github.com/archup/archup/internal/shell"
	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/vm"
	"github.com/urfave/cli/v2"
)

// newHarness builds the VM harness from the run state and flag overrides.
func newHarness(ctx *cli.Context, run *config.Run) (*vm.Harness, error) {
	dir := cache.File("vm")
	if err := cache.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create vm cache directory %s: %w", dir, err)
	}

	cfg := run.Config.VM
	if ctx.IsSet("ram") {
		cfg.RAM = ctx.String("ram")
	}
	if ctx.IsSet("cpus") {
		cfg.CPUs = ctx.Int("cpus")
	}

	extraArgs, err := shell.Split(cfg.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("parse vm extra_args: %w", err)
	}

	return &vm.Harness{
		CacheDir:   dir,
		Mirror:     cfg.Mirror,
		DiskSize:   cfg.DiskSize,
		RAM:        cfg.RAM,
		CPUs:       cfg.CPUs,
		SSHPort:    cfg.SSHPort,
		VNCDisplay: cfg.VNCDisplay,
		NoVNCPort:  cfg.NoVNCPort,
		ProjectDir: run.ProjectDir,
		ExtraArgs:  extraArgs,
		Runner:     run.Runner,
	}, nil
}

var vmCommand = &cli.Command{
	Name:  "vm",
	Usage: "Manage the disposable test VM",
	Subcommands: []*cli.Command{
		{
			Name:  "up",
			Usage: "Boot the test VM, preparing images as needed",
			Flags: []cli.Flag{
				configFlag,
				dryRunFlag,
				&cli.BoolFlag{
					Name:  "fresh",
					Usage: "Discard the overlay disk before booting",
				},
				&cli.BoolFlag{
					Name:  "novnc",
					Usage: "Expose the display through a browser bridge",
				},
				&cli.StringFlag{
					Name:  "ram",
					Usage: "Guest memory in QEMU -m syntax",
				},
				&cli.IntFlag{
					Name:  "cpus",
					Usage: "Guest CPU count",
				},
				debugFlag,
				traceFlag,
			},
			Before: actions(initLogging, initConfig, initRun),
			Action: func(ctx *cli.Context) error {
				run := runFromCtx(ctx)
				harness, err := newHarness(ctx, run)
				if err != nil {
					return err
				}

				up := action.VmUp{
					Harness: harness,
					Config:  run,
					Fresh:   ctx.Bool("fresh"),
					NoVNC:   ctx.Bool("novnc"),
				}
				return up.Run()
			},
		},
		{
			Name:  "reset",
			Usage: "Stop the display bridge and delete the overlay disk",
			Flags: []cli.Flag{
				configFlag,
				dryRunFlag,
				yesFlag,
				&cli.BoolFlag{
					Name:  "all",
					Usage: "Also delete the cached base image",
				},
				debugFlag,
				traceFlag,
			},
			Before: actions(initLogging, initConfig, initRun),
			Action: func(ctx *cli.Context) error {
				run := runFromCtx(ctx)
				harness, err := newHarness(ctx, run)
				if err != nil {
					return err
				}

				reset := action.VmReset{
					Harness: harness,
					Config:  run,
					All:     ctx.Bool("all"),
				}
				return reset.Run()
			},
		},
	},
}
