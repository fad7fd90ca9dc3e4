package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/clipkit/config"
	"github.com/kbukum/clipkit/errors"
	"github.com/kbukum/clipkit/logger"
	"github.com/kbukum/clipkit/media"
	"github.com/kbukum/clipkit/observability"
	"github.com/kbukum/clipkit/studio"
	"github.com/kbukum/clipkit/version"
)

// app carries the state shared by every subcommand.
type app struct {
	configFile string
	envFile    string
	verbose    bool
	compact    bool

	cfg      config.Config
	studio   *studio.Studio
	shutdown observability.ShutdownFunc

	// newMedia builds the codec backend; tests replace it.
	newMedia func(config.Config) studio.Media
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

// execute runs the command line and flushes telemetry whatever the outcome.
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	if args != nil {
		root.SetArgs(args)
	}
	err := root.ExecuteContext(ctx)
	a.close(ctx)
	return err
}

func newApp() *app {
	return &app{
		newMedia: func(cfg config.Config) studio.Media { return media.New(cfg.Media.Config) },
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clipkit",
		Short: "Caption, tighten, compile and reframe talking-head videos",
		Long: `clipkit transcribes videos with word timestamps and uses them to burn
animated captions, cut out silences, build best-of compilations and
produce vertical shorts. It also writes chapter lists and mixes background
music. Results are printed as JSON on stdout.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd.Context()) },
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.configFile, "config", "c", "", "config file (default: ./cmd/clipkit/config.yml or ./config.yml)")
	f.StringVar(&a.envFile, "env-file", "", "env file loaded before the process environment")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&a.compact, "compact", false, "print results as single-line JSON")

	root.AddCommand(
		a.captionsCmd(),
		a.silenceCmd(),
		a.gapsCmd(),
		a.compileCmd(),
		a.shortsCmd(),
		a.exportCmd(),
		a.sliceCmd(),
		a.chaptersCmd(),
		a.musicCmd(),
		a.batchCmd(),
		a.doctorCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads configuration, starts logging and telemetry and builds the studio.
func (a *app) setup(ctx context.Context) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	if err := config.LoadConfig("clipkit", &a.cfg, opts...); err != nil {
		return errors.Configuration("config", err.Error())
	}
	if a.verbose {
		a.cfg.Logging.Level = "debug"
	}
	a.cfg.ApplyDefaults()
	logger.Init(a.cfg.Logging)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, a.cfg.Observability, observability.Resource{
		Service:     a.cfg.Name,
		Version:     version.Get().Short(),
		Environment: a.cfg.Environment,
	})
	if err != nil {
		return errors.ExternalServiceError("otlp", err)
	}
	a.shutdown = shutdown

	metrics, err := observability.NewMetrics(observability.Meter(a.cfg.Name))
	if err != nil {
		return errors.Internal(err)
	}
	a.studio = studio.New(a.cfg, a.newMedia(a.cfg), studio.WithMetrics(metrics))
	logger.Debug("clipkit ready", logger.Fields(
		"transcription", a.cfg.Transcription.Provider,
		"llm", a.cfg.LLM.Provider,
		"fonts_dir", a.cfg.Media.FontsDir,
	))
	return nil
}

func (a *app) close(ctx context.Context) {
	if a.shutdown == nil {
		return
	}
	if err := a.shutdown(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("telemetry shutdown failed", logger.ErrorFields("shutdown", err))
	}
	a.shutdown = nil
}

// print writes v as JSON to the command's stdout.
func (a *app) print(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if !a.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// readJSON decodes the JSON file at path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.InvalidInput(path, err.Error())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.InvalidInput(path, "invalid JSON: "+err.Error())
	}
	return nil
}
