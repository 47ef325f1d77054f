package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/k2shbwi/k2sh/pkg/config"
	"github.com/k2shbwi/k2sh/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container (overridable in tests).
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "k2sh",
	Short: "K2SH container tool",
	Long: `k2sh creates, inspects, validates and converts K2SH container files,
and batch-processes whole directories of them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container != nil {
			return nil
		}

		cfgPath, _ := cmd.Flags().GetString("config")
		cfg := config.DefaultConfig()
		if cfgPath != "" {
			loaded, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
		} else if path := config.DefaultConfigPath(); fileExists(path) {
			loaded, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}

		SetContainer(di.NewContainer(cfg))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
