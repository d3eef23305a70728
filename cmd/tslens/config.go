package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/tslens/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tslens configuration",
	Long:  `View and initialize tslens configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print configuration after merging defaults, config file, environment
(TSLENS_*) and flags.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var (
	configPath string
	force      bool
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long: `Write a configuration file with default settings.

Examples:
  # Project-local config
  tslens config init

  # Per-user config
  tslens config init --path ~/.tslens/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().StringVar(&configPath, "path", filepath.Join(".tslens", "config.yaml"), "where to write the config file")
	configInitCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprint(out, string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	path := configPath
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Default().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s\n", path)
	return nil
}
