package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/bnema/autonet/internal/config"
	"github.com/bnema/autonet/internal/watcher"
	"github.com/bnema/autonet/pkg/docker"
	"github.com/bnema/autonet/pkg/logger"
)

// Build metadata, injected through main at link time.
var (
	BuildVersion = "dev"
	BuildCommit  = "none"
	BuildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "autonet",
	Short: "Keep container network attachments in sync with container labels",
	Long: `autonet watches the Docker daemon and connects or disconnects containers
from networks based on declarative labels. Mappings come from AUTONET_<n>_KEY /
AUTONET_<n>_NET environment variable pairs; run 'autonet config' to see the
resolved configuration.`,
	Run: runWatch,
}

// Execute wires build metadata and runs the CLI. Without a subcommand the
// watcher daemon itself runs.
func Execute(version, commit, date string) {
	if version != "" {
		BuildVersion = version
	}
	if commit != "" {
		BuildCommit = commit
	}
	if date != "" {
		BuildDate = date
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, args []string) {
	logger.SetupFromEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("No usable configuration", "error", err)
	}
	cfg.LogSummary()

	runtime, err := docker.NewRuntime()
	if err != nil {
		log.Fatal("Failed to create Docker client", "error", err)
	}

	ctx := context.Background()
	if err := runtime.Ping(ctx); err != nil {
		log.Fatal("Docker daemon is unreachable", "error", err)
	}

	w := watcher.New(cfg, runtime)
	w.InitialSweep(ctx)

	// The rescan loop runs for the process lifetime; the event loop keeps the
	// main goroutine. Exiting the process is the only shutdown path, and the
	// watcher holds nothing that needs a graceful drain.
	go w.RescanLoop(ctx)
	w.EventLoop(ctx)
}
