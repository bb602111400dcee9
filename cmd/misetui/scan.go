package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"misetui/internal/config"
	"misetui/internal/logging"
	"misetui/internal/model"
	"misetui/internal/scanner"
	"misetui/internal/ui"
)

var scanDepth int

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [dir...]",
		Short: "Print the health of every project under the scan roots",
		Long: `Scan walks the configured project directories (or the given ones),
grades every manifest against the installed tools and prints a report.
It exits with status 1 when any project is missing tools.`,
		RunE: runScan,
	}
	cmd.Flags().IntVar(&scanDepth, "depth", 0, "maximum directory depth (default from config)")
	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, _, err := setup()
	if err != nil {
		return err
	}
	defer logging.Close()

	opts := scanner.Options{
		Roots:    cfg.ScanRoots(),
		MaxDepth: cfg.Scan.MaxDepth,
		Skip:     cfg.Scan.Skip,
	}
	if len(args) > 0 {
		opts.Roots = make([]string, len(args))
		for i, a := range args {
			opts.Roots[i] = config.ExpandHome(a)
		}
	}
	if scanDepth > 0 {
		opts.MaxDepth = config.ClampDepth(scanDepth)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	tools, err := newGateway(cfg).ListTools(ctx)
	if err != nil {
		return fmt.Errorf("failed to list installed tools: %w", err)
	}

	projects := scanner.Scan(opts, tools)
	if report(cmd.OutOrStdout(), projects) {
		return fmt.Errorf("some projects are missing tools")
	}
	return nil
}

// report prints one line per project followed by its unhealthy tools. It
// returns true when a project is missing tools.
func report(w io.Writer, projects []model.Project) bool {
	styles := ui.DefaultStyles()
	if len(projects) == 0 {
		fmt.Fprintln(w, styles.Dim.Render("No projects found"))
		return false
	}

	nameWidth := 0
	for _, p := range projects {
		nameWidth = max(nameWidth, len(p.Name))
	}

	missing := false
	for _, p := range projects {
		health := styles.HealthStyle(p.Health).Render(fmt.Sprintf("%-9s", p.Health))
		fmt.Fprintf(w, "%-*s  %s  %s\n", nameWidth, p.Name, health, styles.Dim.Render(p.Path))
		for _, t := range p.Tools {
			if t.Status == model.Healthy {
				continue
			}
			installed := t.Installed
			if installed == "" {
				installed = "none"
			}
			line := fmt.Sprintf("  %s %s (installed: %s)", t.Tool, t.Required, installed)
			fmt.Fprintln(w, lipgloss.NewStyle().PaddingLeft(nameWidth).Render(styles.HealthStyle(t.Status).Render(line)))
		}
		if p.Health == model.Missing {
			missing = true
		}
	}
	return missing
}
