package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/1broseidon/wsorg/internal/config"
	"github.com/1broseidon/wsorg/internal/daemon"
	"github.com/1broseidon/wsorg/internal/logging"
	"github.com/1broseidon/wsorg/internal/placement"
	"github.com/1broseidon/wsorg/internal/platform"
	"github.com/1broseidon/wsorg/internal/shell"
	"github.com/1broseidon/wsorg/internal/snapshot"
	"github.com/1broseidon/wsorg/internal/state"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

// deps are the process-level collaborators, swapped out in tests.
type deps struct {
	stdout io.Writer
	stderr io.Writer
	// runner overrides the exec-backed runner when set.
	runner shell.Runner
	// now and sleep drive the control loop clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func newDeps() *deps {
	return &deps{stdout: os.Stdout, stderr: os.Stderr}
}

type options struct {
	input          string
	output         string
	logFile        string
	verbose        bool
	dryRun         bool
	commandTimeout time.Duration
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.input, "input", "i", "", "rules file to enforce (TOML, or YAML by extension)")
	fs.StringVarP(&o.output, "output", "o", "", "write the current window layout to this file")
	fs.StringVarP(&o.logFile, "logfile", "l", "", "append logs to this file (rotated, 2 backups)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "print debug logs to stdout")
	fs.BoolVar(&o.dryRun, "dry-run", false, "log window commands instead of running them")
	fs.DurationVar(&o.commandTimeout, "command-timeout", 0, "kill wmctrl/xrandr after this long (0 disables, overrides [Setup] CommandTimeout)")
}

func newRootCmd(d *deps) *cobra.Command {
	var o options

	cmd := &cobra.Command{
		Use:   "wsorg",
		Short: "Keep windows on their configured desktops, positions and sizes",
		Long: `wsorg polls wmctrl for the window list, matches windows against the
[Apps] rules of a configuration file and moves them to their desktop,
position and size. It runs for [Setup] MaxTime seconds, sleeping
SleepTime seconds between passes.

With --output the current layout is written as a rules skeleton first.`,
		Example: `  wsorg -i ~/.config/wsorg/rules.toml
  wsorg -o layout.toml
  wsorg -i rules.yaml -l ~/.cache/wsorg.log -v --dry-run
  wsorg list`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.input == "" && o.output == "" {
				return cmd.Help()
			}
			return runOrganise(cmd.Context(), d, o)
		},
	}
	cmd.SetOut(d.stdout)
	cmd.SetErr(d.stderr)
	bindFlags(cmd.Flags(), &o)

	cmd.AddCommand(newListCmd(d))
	return cmd
}

// execute runs the CLI and maps the outcome to an exit code.
func execute(args []string, d *deps) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(d)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(d.stderr, "wsorg:", err)
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			return exitConfig
		}
		return exitFailure
	}
	return exitOK
}

func (d *deps) newRunner(timeout time.Duration) (shell.Runner, *shell.ExecRunner) {
	if d.runner != nil {
		return d.runner, nil
	}
	r := shell.NewExecRunner(timeout)
	return r, r
}

func runOrganise(ctx context.Context, d *deps, o options) (err error) {
	var console io.Writer
	if o.verbose {
		console = d.stdout
	}
	logger, err := logging.New(logging.Options{
		Console: console,
		Verbose: o.verbose,
		File:    o.logFile,
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("unexpected panic", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
		logError(logger, err)
		logger.Info("done")
	}()

	logger.Info("starting", "input", o.input, "output", o.output, "dry_run", o.dryRun)

	runner, execRunner := d.newRunner(o.commandTimeout)
	backend := platform.NewWmctrlBackend(runner)

	desktops, err := state.LoadDesktops(ctx, backend)
	if err != nil {
		return err
	}
	for _, dt := range desktops.Sorted() {
		logger.Debug("desktop", "index", dt.Index, "name", dt.Name, "width", dt.Width, "height", dt.Height)
	}
	logMonitors(ctx, logger, backend)

	var cfg *config.Config
	if o.input != "" {
		res, err := config.LoadFromPath(o.input, desktops)
		if err != nil {
			return err
		}
		for _, key := range res.Undecoded {
			logger.Warn("unknown configuration key ignored", "key", key, "file", res.File)
		}
		cfg = res.Config
		logger.Info("configuration loaded", "file", res.File, "format", res.Format, "rules", cfg.Rules.Len())
		for _, r := range cfg.Rules.Rules() {
			logger.Debug("rule", "rule", r.String())
		}
		if execRunner != nil && o.commandTimeout == 0 {
			execRunner.Timeout = cfg.Setup.CommandTimeout
		}
	}

	tracker := state.NewTracker(backend, logger.Logger)

	if o.output != "" {
		if _, err := tracker.Refresh(ctx); err != nil {
			return err
		}
		if err := snapshot.Dump(tracker.Buckets(), o.output); err != nil {
			return err
		}
		logger.Info("layout written", "file", o.output, "windows", tracker.Len())
	}

	if cfg == nil {
		return nil
	}

	engine := placement.New(backend, placement.Options{
		Demaximise: cfg.Setup.Demaximise,
		DryRun:     o.dryRun,
	}, logger.Logger)
	loop := daemon.NewLoop(daemon.LoopConfig{
		MaxTime:   cfg.Setup.MaxTime,
		SleepTime: cfg.Setup.SleepTime,
		Rules:     cfg.Rules.Rules(),
		Desktops:  desktops,
		Logger:    logger.Logger,
		Now:       d.now,
		Sleep:     d.sleep,
	}, backend, tracker, engine)

	_, err = loop.Run(ctx)
	return err
}

func logMonitors(ctx context.Context, logger *logging.Logger, backend *platform.WmctrlBackend) {
	monitors, err := backend.Monitors(ctx)
	if err != nil {
		logger.Warn("monitor listing failed", "error", err)
		return
	}
	for _, m := range monitors {
		logger.Debug("monitor",
			"connector", m.Connector,
			"hardware_id", m.HardwareID,
			"width", m.Width,
			"height", m.Height,
			"x", m.OffsetX,
			"y", m.OffsetY)
	}
}

func logError(logger *logging.Logger, err error) {
	if err == nil {
		return
	}
	var (
		cfgErr   *config.ConfigError
		cmdErr   *platform.CommandError
		parseErr *platform.ParseError
	)
	switch {
	case errors.As(err, &cfgErr):
		logger.Error("configuration error", "error", err)
	case errors.As(err, &cmdErr):
		logger.Error("window command failed",
			"command", cmdErr.Command,
			"exit_code", cmdErr.ExitCode,
			"stderr", cmdErr.Stderr,
			"error", err)
	case errors.As(err, &parseErr):
		logger.Error("unexpected command output", "command", parseErr.Command, "line", parseErr.Line, "error", err)
	default:
		logger.Error("run failed", "error", err)
	}
}
