// sgfdata converts, inspects and validates SGF borehole files.
//
// Usage:
//
//	sgfdata convert <in> <out> [--to sgf|json|json-tables|sqlite|postgres] [--normalize] [--validate]
//	sgfdata batch <in-dir> <out-dir> [--to sgf|json] [--normalize] [--validate]
//	sgfdata inspect <in> [--validate] [--json]
//	sgfdata tables [--block main|method|data] [--labels methods|comments|data-flags]
//
// Inputs and outputs are local paths, s3://bucket/key or mem://key
// locations; "-" reads stdin or writes stdout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/sgfdata/i18n"
	"github.com/reoring/sgfdata/internal/blob"
	"github.com/reoring/sgfdata/internal/config"
	"github.com/reoring/sgfdata/internal/logging"
	"github.com/reoring/sgfdata/internal/telemetry"
	"github.com/reoring/sgfdata/metadata"
)

// version is set at build time via -ldflags.
var version = "dev"

// app is the state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	cfg     config.Config
	reg     *metadata.Registry
	log     *slog.Logger
	metrics *telemetry.Metrics
	blobs   blob.Options
}

var rootFlags struct {
	config      string
	logLevel    string
	logFormat   string
	lang        string
	metadataDir string
	metricsFile string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "sgfdata",
		Short: "Read, normalize and write SGF borehole files",
		Long: "sgfdata decodes SGF geotechnical sounding files, optionally normalizes and\n" +
			"validates them, and writes SGF, JSON, SQLite or PostgreSQL output.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.flushMetrics()
		},
	}
	f := root.PersistentFlags()
	f.StringVar(&rootFlags.config, "config", "", "YAML config file (default $SGFDATA_CONFIG or ./"+config.DefaultFile+")")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "text or json")
	f.StringVar(&rootFlags.lang, "lang", "", "message language (en, sv)")
	f.StringVar(&rootFlags.metadataDir, "metadata-dir", "", "directory with metadata tables replacing the embedded ones")
	f.StringVar(&rootFlags.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newBatchCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newTablesCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(rootFlags.config)
	if err != nil {
		return err
	}
	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = rootFlags.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = rootFlags.logFormat
	}
	if f.Changed("lang") {
		cfg.Language = rootFlags.lang
	}
	if f.Changed("metadata-dir") {
		cfg.MetadataDir = rootFlags.metadataDir
	}
	if f.Changed("metrics-file") {
		cfg.MetricsFile = rootFlags.metricsFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.LogFormat, cmd.ErrOrStderr())
	i18n.SetLanguage(cfg.Language)

	reg, err := loadRegistry(cfg.MetadataDir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.reg = reg
	a.log = logging.New("cli")
	a.metrics = telemetry.New()
	a.blobs = blob.Options{S3: cfg.S3, Memory: sharedMemory}
	a.log.Debug("configured", "metadata_dir", cfg.MetadataDir, "parallelism", cfg.Parallelism, "lang", cfg.Language)
	return nil
}

// sharedMemory backs every mem:// location of one process.
var sharedMemory = blob.NewMemory()

func loadRegistry(dir string) (*metadata.Registry, error) {
	if dir == "" {
		return metadata.LoadDefault()
	}
	reg, err := metadata.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load metadata from %s: %w", dir, err)
	}
	return reg, nil
}

func (a *app) flushMetrics() error {
	if a.metrics == nil || a.cfg.MetricsFile == "" {
		return nil
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
