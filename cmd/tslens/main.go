package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/tslens/internal/config"
	tserrors "github.com/rohankatakam/tslens/internal/errors"
	"github.com/rohankatakam/tslens/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile       string
	verbose       bool
	workspaceFlag string
	format        string
	limit         int

	logger    *logrus.Logger
	logCloser func() error
	cfg       *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logCloser != nil {
		logCloser()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describeError(err, verbose))
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "tslens",
	Short: "tslens - TypeScript migration progress for JavaScript projects",
	Long: `tslens measures how much of a project's src/ tree is written in TypeScript
and ranks the JavaScript files that change most often, so you know what to
convert next.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			if cfgFile != "" {
				return err
			}
			fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
			cfg = config.Default()
		}

		if err := applyFlagOverrides(cmd); err != nil {
			return err
		}

		// Initialize logger
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{
			Level:      level,
			OutputFile: cfg.Logging.File,
			JSONFormat: cfg.Logging.JSON,
		})
		if err != nil {
			return err
		}
		logger = l.Logger
		logCloser = l.Close
		return nil
	},
}

// applyFlagOverrides lets explicit flags win over file and environment
// values, then validates the merged result.
func applyFlagOverrides(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("workspace") {
		cfg.Workspace = workspaceFlag
	}
	if flags.Changed("format") {
		cfg.Output.Format = format
	}
	if flags.Changed("limit") {
		cfg.Output.Limit = limit
	}

	if result := cfg.Validate(); result.HasErrors() {
		return tserrors.ValidationErrorf("%s", strings.TrimSpace(result.Error()))
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .tslens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "project root (default: detected from the working directory)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "output format: text, json, yaml")
	rootCmd.PersistentFlags().IntVarP(&limit, "limit", "n", 0, "maximum churn rows to show (0 = all)")

	// Set custom version template
	rootCmd.SetVersionTemplate(`tslens {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	// Add subcommands
	rootCmd.AddCommand(percentageCmd)
	rootCmd.AddCommand(churnCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
}
