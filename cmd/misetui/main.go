package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"misetui/internal/app"
	"misetui/internal/config"
	"misetui/internal/gateway"
	"misetui/internal/logging"
	"misetui/internal/manifest"
	"misetui/internal/ui"
	"misetui/internal/watcher"
)

// Launch failures before the gateway pauses, and the pause length.
const (
	breakerThreshold = 3
	breakerReset     = 30 * time.Second
)

var (
	version  = "0.1.0"
	cfgFile  string
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "misetui",
		Short: "Terminal dashboard for mise",
		Long: `misetui is a terminal dashboard for the mise tool manager.
It lists installed tools, outdated versions, the registry, tasks, environment
and settings, and scans your project directories for manifest health.`,
		RunE:         runApp,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/misetui/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("misetui version %s\n", version)
		},
	})
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newDoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and starts logging.
func setup() (*config.Config, string, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if cfg.Logging.File {
		dir := filepath.Dir(configPath())
		if err := logging.EnableFileLogging(dir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
			return nil, "", fmt.Errorf("failed to open log file: %w", err)
		}
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return cfg, workDir, nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetConfigPath()
}

func newGateway(cfg *config.Config) gateway.Gateway {
	runner := gateway.NewBreakerRunner(gateway.NewExecRunner(cfg.Gateway.Binary), breakerThreshold, breakerReset)
	cli := gateway.NewCLI(runner, cfg.Gateway.VersionsLimit)
	return gateway.NewCached(cli, cfg.Gateway.CacheSize, cfg.Gateway.CacheTTL)
}

func runApp(cmd *cobra.Command, args []string) error {
	cfg, workDir, err := setup()
	if err != nil {
		return err
	}
	defer logging.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := app.New(cfg, workDir)
	disp := app.NewDispatcher(newGateway(cfg), cfg, cfgFile)
	dashboard := ui.NewModel(ctx, ctrl, disp)

	p := tea.NewProgram(dashboard, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if cfg.Watcher.Enabled {
		w, err := startWatcher(cfg, workDir, p)
		if err != nil {
			logging.Warn("drift watcher disabled", "error", err)
		} else {
			defer w.Stop()
		}
	}

	logging.Info("starting", "version", version, "dir", workDir)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// startWatcher re-checks drift whenever the local or global manifest changes.
func startWatcher(cfg *config.Config, workDir string, p *tea.Program) (*watcher.Watcher, error) {
	files := []string{manifest.Path(workDir)}
	if global := gateway.GlobalConfigPath(); global != "" {
		files = append(files, global)
	}
	w, err := watcher.New(files, cfg.Watcher.Debounce())
	if err != nil {
		return nil, err
	}
	w.SetOnChange(func(path string, op watcher.Operation) {
		logging.Debug("manifest changed", "path", path, "op", op.String())
		p.Send(app.CheckDrift{})
	})
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
