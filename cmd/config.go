package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bnema/autonet/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Resolve AUTONET_* environment variables (and .env) exactly as the watcher
would and print the result, so mapping mistakes surface before deploying.`,
	Run: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("No usable configuration", "error", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		log.Fatal("Failed to render configuration", "error", err)
	}
	fmt.Print(string(out))
}
