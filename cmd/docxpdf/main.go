package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docxpdf/internal/config"
	"docxpdf/internal/convert"
	"docxpdf/internal/state"
)

// initializeAppContext prepares the run's LocalEnv before any subcommand
// runs, the way fbc's initializeAppContext loads configuration and builds
// the logger ahead of its convert subcommand (cmd/fbc/main.go).
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	cfg, err := config.LoadConfiguration(configFile)
	if err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	env.Cfg = cfg
	env.Log = cfg.Logging.Prepare()

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("runtime", runtime.Version()))
	if configFile == "" {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, _ *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()))
		_ = env.Log.Sync()
	}
	return nil
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)
	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background(), state.NewEnv(nil, nil)), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            "docxpdf",
		Usage:           "renders WordprocessingML (.docx) documents to PDF",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
		},
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "converts a .docx file to PDF",
				Action:    runConvert,
				ArgsUsage: "SOURCE [DESTINATION]",
			},
			{
				Name:   "dumpconfig",
				Usage:  "dumps the effective configuration (YAML)",
				Action: runDumpConfig,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "dump the embedded default configuration instead of the active one"},
				},
				ArgsUsage: "DESTINATION",
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func runConvert(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.NArg() == 0 {
		return fmt.Errorf("missing SOURCE argument")
	}
	src := cmd.Args().Get(0)
	dst := cmd.Args().Get(1)
	if dst == "" {
		dst = trimExt(src) + ".pdf"
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("unable to open source file '%s': %w", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("unable to stat source file '%s': %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", dst, err)
	}

	env.Log.Info("Converting", zap.String("source", src), zap.String("destination", dst))
	convErr := convert.Run(ctx, in, info.Size(), src, out, &env.Cfg.Document, env.Log)
	closeErr := out.Close()
	if convErr != nil {
		return multierr.Append(fmt.Errorf("conversion failed: %w", convErr), closeErr)
	}
	return closeErr
}

func runDumpConfig(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	var (
		data []byte
		err  error
	)
	if cmd.Bool("default") {
		data, err = config.Dump(mustDefaultConfig())
	} else {
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	fname := cmd.Args().Get(0)
	out := os.Stdout
	if fname != "" {
		f, err := os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer f.Close()
		out = f
	}
	_, err = out.Write(data)
	return err
}

func mustDefaultConfig() *config.Config {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		panic(err)
	}
	return cfg
}

func trimExt(path string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i]
		}
	}
	return path
}
