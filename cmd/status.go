package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bnema/autonet/internal/config"
	"github.com/bnema/autonet/internal/watcher"
	"github.com/bnema/autonet/pkg/docker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the watcher would do for every container",
	Long: `List every container with its per-mapping state: whether its labels ask for
an attachment, whether it is attached, and the action a reconcile pass would
take. Read-only; nothing is changed.`,
	Run: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("No usable configuration", "error", err)
	}

	runtime, err := docker.NewRuntime()
	if err != nil {
		log.Fatal("Failed to create Docker client", "error", err)
	}
	defer runtime.Close() //nolint:errcheck

	ctx := context.Background()
	containers, err := runtime.ListContainers(ctx, true)
	if err != nil {
		log.Fatal("Failed to list containers", "error", err)
	}

	var rows [][]string
	for _, c := range containers {
		ports, err := runtime.ContainerPorts(ctx, c.ID)
		if err != nil {
			ports = ""
		}

		if watcher.UnattachableMode(c.NetworkMode) {
			rows = append(rows, []string{c.Name, c.ShortID(), ports, "-", "-", "-", "skip (" + c.NetworkMode + ")"})
			continue
		}

		for _, m := range cfg.Mappings {
			wants := watcher.LabelTruthy(c.Labels[m.LabelKey])
			connected := c.Connected(m.Network)

			action := "none"
			switch {
			case wants && !connected:
				action = "connect"
			case !wants && connected && cfg.AutoDisconnect:
				action = "disconnect"
			}

			rows = append(rows, []string{c.Name, c.ShortID(), ports, m.Network, yesNo(wants), yesNo(connected), action})
		}
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("CONTAINER", "ID", "PORTS", "NETWORK", "WANTS", "ATTACHED", "ACTION").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Println(t)
	fmt.Printf("%d containers, %d mappings\n", len(containers), len(cfg.Mappings))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
