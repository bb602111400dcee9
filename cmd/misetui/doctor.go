package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"misetui/internal/gateway"
	"misetui/internal/logging"
	"misetui/internal/model"
	"misetui/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print mise diagnostics and the drift state of the current directory",
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, workDir, err := setup()
	if err != nil {
		return err
	}
	defer logging.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	gw := newGateway(cfg)
	lines, err := gw.Doctor(ctx)
	if err != nil {
		return fmt.Errorf("mise doctor failed: %s", gateway.Message(err))
	}
	drift, err := gw.CheckDrift(ctx, workDir)
	if err != nil {
		logging.Warn("drift check failed", "dir", workDir, "error", err)
		drift = model.DriftNoConfig
	}
	printDoctor(cmd.OutOrStdout(), lines, drift)
	return nil
}

func printDoctor(w io.Writer, lines []string, drift model.DriftState) {
	styles := ui.DefaultStyles()
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	fmt.Fprintf(w, "\n%s %s\n", styles.Header.Render("current directory:"), styles.DriftStyle(drift).Render(drift.String()))
}
