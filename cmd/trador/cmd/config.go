package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bogdanmosica/trador/config"
	"github.com/bogdanmosica/trador/risk"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate, validate or inspect configuration files",
	Long: `Manage configuration files for scenario runs.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file
  show     - Print the effective configuration after env overrides
  rules    - List the registered risk rules

Examples:
  trador config init -o my-config.yaml
  trador config validate -f my-config.yaml
  trador config show -f my-config.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration after env overrides",
	RunE:  runConfigShow,
}

var configRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the registered risk rules",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range risk.Names() {
			fmt.Println(name)
		}
	},
}

var (
	configInitOutput string
	configPath       string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configRulesCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "trador.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configPath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
	configShowCmd.Flags().StringVarP(&configPath, "file", "f", "", "path to config file (required)")
	configShowCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  trador run -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configPath)
	fmt.Printf("  Account: %s ($%.2f %s)\n", cfg.Account.ID, cfg.Account.InitialEquity, cfg.Account.Currency)
	fmt.Printf("  Rules: %d, Steps: %d\n", len(cfg.Risk.Rules), len(cfg.Scenario.Steps))
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	os.Stdout.Write(data)
	return nil
}
