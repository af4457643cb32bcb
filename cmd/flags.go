package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/archup/archup/cache"
	"github.com/archup/archup/pkg/config"
	"github.com/archup/archup/pkg/pacman"
	"github.com/archup/archup/pkg/runner"
	"github.com/archup/archup/pkg/systemd"
	"github.com/mattn/go-isatty"
	"github.com/shiena/ansicolor"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	debugFlag = &cli.BoolFlag{
		Name:    "debug",
		Usage:   "Enable debug logging",
		Aliases: []string{"d"},
		EnvVars: []string{"DEBUG"},
	}

	traceFlag = &cli.BoolFlag{
		Name:    "trace",
		Usage:   "Enable trace logging",
		Aliases: []string{"dd"},
		EnvVars: []string{"TRACE"},
		Hidden:  true,
	}

	configFlag = &cli.StringFlag{
		Name:      "config",
		Usage:     "Path to archup config yaml. Use '-' to read from stdin.",
		Aliases:   []string{"c"},
		Value:     "archup.yaml",
		TakesFile: true,
	}

	dryRunFlag = &cli.BoolFlag{
		Name:    "dry-run",
		Usage:   "Print mutating commands instead of executing them",
		Aliases: []string{"dry"},
	}

	yesFlag = &cli.BoolFlag{
		Name:    "yes",
		Usage:   "Assume yes on all confirmation prompts",
		Aliases: []string{"y"},
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Usage:   "Target user account",
		Aliases: []string{"u"},
	}
)

// moduleFlags builds the --with-<module> / --skip-<module> toggle pairs.
func moduleFlags() []cli.Flag {
	var flags []cli.Flag
	for _, name := range config.ModuleNames {
		flags = append(flags,
			&cli.BoolFlag{
				Name:  "with-" + name,
				Usage: fmt.Sprintf("Enable the %s module", name),
			},
			&cli.BoolFlag{
				Name:    "skip-" + name,
				Usage:   fmt.Sprintf("Disable the %s module", name),
				Aliases: []string{"no-" + name},
			},
		)
	}
	return flags
}

// modulesFromFlags resolves the module selection: the config file preselection
// or the all-on legacy default is the base, any --with-* flag switches to an
// explicit empty base, and --skip-* always subtracts.
func modulesFromFlags(ctx *cli.Context, cfg *config.Config) config.Modules {
	var anyWith bool
	for _, name := range config.ModuleNames {
		if ctx.Bool("with-" + name) {
			anyWith = true
			break
		}
	}

	var m config.Modules
	switch {
	case anyWith:
		// explicit selection starts from nothing
	case cfg.Modules != nil:
		m = *cfg.Modules
	default:
		m = config.AllModules()
	}

	for _, name := range config.ModuleNames {
		if ctx.Bool("with-" + name) {
			m.Set(name, true)
		}
		if ctx.Bool("skip-" + name) {
			m.Set(name, false)
		}
	}
	return m
}

// actions can be used to chain action functions (for urfave/cli's Before, After, etc)
func actions(funcs ...func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		for _, f := range funcs {
			if err := f(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// initConfig takes the config flag and replaces the value with the file
// contents. The default config file is optional; an explicitly given one must
// exist.
func initConfig(ctx *cli.Context) error {
	f := ctx.String("config")
	if f == "" {
		return nil
	}

	file, err := configReader(f)
	if err != nil {
		if f == configFlag.Value && !ctx.IsSet("config") {
			log.Debugf("no config file found, using defaults")
			return ctx.Set("config", "")
		}
		return err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return ctx.Set("config", string(content))
}

type ctxRunKey struct{}
type ctxLogFileKey struct{}

// initRun builds the immutable run state from the parsed flags and config
// file contents and stores it in the context for the command action.
func initRun(ctx *cli.Context) error {
	cfg := config.Default()
	if content := ctx.String("config"); content != "" {
		loaded, err := config.Load(strings.NewReader(content))
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if ctx.IsSet("locale") {
		cfg.Locale = ctx.String("locale")
	}
	if ctx.IsSet("timezone") {
		cfg.Timezone = ctx.String("timezone")
	}

	exec := runner.Exec{}
	var r runner.Runner = exec
	if ctx.Bool("dry-run") {
		r = &runner.DryRun{Probe: exec}
	}

	user := ctx.String("user")
	if user == "" {
		user = cfg.User
	}

	projectDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	run := &config.Run{
		Config:       cfg,
		Modules:      modulesFromFlags(ctx, cfg),
		DryRun:       ctx.Bool("dry-run"),
		AssumeYes:    ctx.Bool("yes"),
		Interactive:  isatty.IsTerminal(os.Stdout.Fd()),
		User:         user,
		Shell:        ctx.String("shell"),
		Home:         ctx.String("home"),
		KeepPassword: ctx.Bool("keep-password"),
		ProjectDir:   projectDir,
		Runner:       r,
		Packages:     pacman.NewClient(r),
		Services:     systemd.NewClient(r),
		Report:       &config.Report{},
	}

	ctx.Context = context.WithValue(ctx.Context, ctxRunKey{}, run)
	return nil
}

// runFromCtx returns the run state stored by initRun.
func runFromCtx(ctx *cli.Context) *config.Run {
	return ctx.Context.Value(ctxRunKey{}).(*config.Run)
}

// initLogging initializes the logger
func initLogging(ctx *cli.Context) error {
	log.SetLevel(log.TraceLevel)
	log.SetOutput(io.Discard)
	initScreenLogger(logLevelFromCtx(ctx, log.InfoLevel))
	return initFileLogger(ctx)
}

func logLevelFromCtx(ctx *cli.Context, defaultLevel log.Level) log.Level {
	if ctx.Bool("debug") {
		return log.DebugLevel
	} else if ctx.Bool("trace") {
		return log.TraceLevel
	} else {
		return defaultLevel
	}
}

func initScreenLogger(lvl log.Level) {
	log.AddHook(screenLoggerHook(lvl))
}

func initFileLogger(ctx *cli.Context) error {
	fn, lf, err := logFile()
	if err != nil {
		return err
	}
	log.AddHook(fileLoggerHook(lf))
	ctx.Context = context.WithValue(ctx.Context, ctxLogFileKey{}, fn)
	return nil
}

// logDir is /var/log/archup when writable, the cache directory otherwise.
func logDir() string {
	dir := "/var/log/archup"
	if err := cache.EnsureDir(dir); err == nil {
		return dir
	}
	return cache.Dir()
}

func logFile() (string, io.Writer, error) {
	dir := logDir()
	if err := cache.EnsureDir(dir); err != nil {
		return "", nil, fmt.Errorf("error while creating log directory %s: %w", dir, err)
	}

	fn := path.Join(dir, "archup.log")
	f, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_SYNC, 0600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open log %s: %w", fn, err)
	}

	_, _ = fmt.Fprintf(f, "time=\"%s\" level=info msg=\"###### New session ######\"\n", time.Now().Format(time.RFC822))

	return fn, f, nil
}

func configReader(f string) (io.ReadCloser, error) {
	if f == "-" {
		stat, err := os.Stdin.Stat()
		if err != nil {
			return nil, fmt.Errorf("can't stat stdin: %w", err)
		}
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			return os.Stdin, nil
		}
		return nil, fmt.Errorf("can't read stdin")
	}

	variants := []string{f}
	// add .yml to default value lookup
	if f == "archup.yaml" {
		variants = append(variants, "archup.yml")
	}

	for _, fn := range variants {
		if _, err := os.Stat(fn); err != nil {
			continue
		}

		fp, err := filepath.Abs(fn)
		if err != nil {
			return nil, err
		}
		file, err := os.Open(fp)
		if err != nil {
			return nil, err
		}

		return file, nil
	}

	return nil, fmt.Errorf("failed to locate configuration")
}

type loghook struct {
	Writer    io.Writer
	Formatter log.Formatter

	levels []log.Level
}

func (h *loghook) SetLevel(level log.Level) {
	h.levels = []log.Level{}
	for _, l := range log.AllLevels {
		if level >= l {
			h.levels = append(h.levels, l)
		}
	}
}

func (h *loghook) Levels() []log.Level {
	return h.levels
}

func (h *loghook) Fire(entry *log.Entry) error {
	line, err := h.Formatter.Format(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to format log entry: %v", err)
		return err
	}
	_, err = h.Writer.Write(line)
	return err
}

func screenLoggerHook(lvl log.Level) *loghook {
	l := &loghook{Formatter: &log.TextFormatter{DisableTimestamp: lvl < log.DebugLevel, ForceColors: true}}

	if runtime.GOOS == "windows" {
		l.Writer = ansicolor.NewAnsiColorWriter(os.Stdout)
	} else {
		l.Writer = os.Stdout
	}

	l.SetLevel(lvl)

	return l
}

func fileLoggerHook(logFile io.Writer) *loghook {
	l := &loghook{
		Formatter: &log.TextFormatter{
			FullTimestamp:          true,
			TimestampFormat:        time.RFC822,
			DisableLevelTruncation: true,
		},
		Writer: logFile,
	}

	l.SetLevel(log.DebugLevel)

	return l
}
