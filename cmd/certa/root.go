package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ohkbilal/certa/internal/archive"
	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/config"
	"github.com/ohkbilal/certa/internal/runctx"
)

// version is set at build time via -ldflags.
var version = "dev"

var errGateFailed = errors.New("golden gate failed: deployment blocked")

// app carries what every subcommand needs after flags are parsed.
type app struct {
	configPath string
	verbose    bool
	jsonOut    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "certa",
		Short: "Deterministic fail-closed chemical compatibility core",
		Long: "certa classifies a fluid at a temperature, resolves seal eligibility\n" +
			"and evaluates material compatibility. Unknown or invalid input is\n" +
			"never silently accepted.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.configPath, "config", "c", envOr("CERTA_CONFIG", "certa.yaml"), "config file (missing file means defaults)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&a.jsonOut, "json", false, "output as JSON instead of tables")

	root.AddCommand(
		newAssessCmd(a),
		newServeCmd(a),
		newGoldenCmd(a),
		newInspectCmd(a),
		newExportCmd(a),
		newPromoteCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg.Logging, a.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	return nil
}

// #region wiring

func (a *app) engine() *assess.Engine {
	return assess.NewEngine(nil, runctx.WithPolicyVersion(a.cfg.PolicyVersion))
}

func (a *app) openStore(ctx context.Context) (*audit.Store, error) {
	return audit.Open(ctx, a.cfg.Database.Driver, a.cfg.Database.DSN, a.log)
}

// openArchiver returns nil when no archive endpoint is configured.
func (a *app) openArchiver(ctx context.Context) (*archive.Archiver, error) {
	if !a.cfg.Archive.Enabled() {
		return nil, nil
	}
	client, err := archive.NewMinIOClient(a.cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return archive.New(client, a.cfg.Archive.Bucket, a.cfg.Archive.Region, a.log), nil
}

// #endregion wiring

// #region logger

// newLogger builds a production zap logger at the configured level, or a
// development logger when requested. verbose forces debug level.
func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse level %q: %w", cfg.Level, err)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// #endregion logger
