package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meshnum/pkg/config"
	"github.com/meshnum/pkg/telemetry"
	"github.com/meshnum/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	logger     utils.Logger
	configPath string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "meshnum",
	Short: "A distributed quadtree-forest node-numbering tool",
	Long: `meshnum builds a globally-consistent node numbering over a 2:1-balanced
quadtree-forest triangular sub-mesh, split across simulated ranks.

It runs the six-phase algorithm (traverse, elect, allgather, peer exchange,
drain, finalize) over a named forest scenario, can persist the result to
local disk or Tencent COS and a run-history database, and can serve a small
web summary of a completed run.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logLevel := utils.ParseLogLevel(cfg.Log.Level)
		if verbose {
			logLevel = utils.LevelDebug
		}

		switch {
		case cfg.Log.OutputPath != "":
			fileLogger, err := utils.NewFileLogger(logLevel, cfg.Log.OutputPath)
			if err != nil {
				return err
			}
			logger = fileLogger
		case cfg.Log.Format == "std":
			logger = utils.NewStdLogger(logLevel, os.Stdout)
		default:
			logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		}
		utils.SetGlobalLogger(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it,
// bracketing the run with telemetry.Init/shutdown so every span a
// subcommand opens (numbering.run, numbering.rank, ...) reaches the
// configured OTLP collector when OTEL_ENABLED=true.
func Execute() {
	ctx := context.Background()
	shutdown, err := telemetry.Init(ctx)
	if err != nil {
		logger := utils.NewDefaultLogger(utils.LevelInfo, os.Stdout)
		logger.Warn("telemetry initialization failed, continuing without tracing: %v", err)
	}
	defer shutdown(ctx)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	binName := BinName()
	rootCmd.Example = `  # Run the single-element full-style scenario across one rank
  ` + binName + ` run --scenario single --full-style

  # Run the two-rank strip scenario, persist the checkpoint and record the run history
  ` + binName + ` run --scenario strip2 --store --history --run-id demo

  # Validate a previously persisted run
  ` + binName + ` validate --run-id demo

  # Serve the last run's ownership/sharer summary
  ` + binName + ` serve --run-id demo`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
