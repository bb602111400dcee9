package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"misetui/internal/config"
	"misetui/internal/gateway"
	"misetui/internal/logging"
	"misetui/internal/manifest"
	"misetui/internal/model"
	"misetui/internal/scanner"
)

// Dispatcher runs Commands. Each command performs one unit of work and
// yields exactly one Action; failures become OperationFailed (or LoadFailed
// for collection fetches) and never escape.
type Dispatcher struct {
	gw         gateway.Gateway
	cfg        config.Config
	configPath string

	// copy writes to the system clipboard.
	copy func(string) error
}

// NewDispatcher creates a dispatcher. cfg is the base configuration scan
// settings are saved into; configPath empty means the default location.
func NewDispatcher(gw gateway.Gateway, cfg *config.Config, configPath string) *Dispatcher {
	return &Dispatcher{
		gw:         gw,
		cfg:        *cfg,
		configPath: configPath,
		copy:       clipboard.WriteAll,
	}
}

// Cmd wraps cmd as a bubbletea command.
func (d *Dispatcher) Cmd(ctx context.Context, cmd Command) tea.Cmd {
	return func() tea.Msg {
		return d.Execute(ctx, cmd)
	}
}

// Batch wraps every command; they run concurrently and complete in any
// order.
func (d *Dispatcher) Batch(ctx context.Context, cmds []Command) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	out := make([]tea.Cmd, len(cmds))
	for i, cmd := range cmds {
		out[i] = d.Cmd(ctx, cmd)
	}
	return tea.Batch(out...)
}

// Execute runs one command to completion.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) Action {
	logging.Debug("dispatch", "op", opName(cmd))

	switch c := cmd.(type) {
	case FetchToolsCmd:
		tools, err := d.gw.ListTools(ctx)
		if err != nil {
			return loadFailed(TabTools, err)
		}
		return ToolsLoaded{Tools: tools}
	case FetchRegistryCmd:
		entries, err := d.gw.ListRegistry(ctx)
		if err != nil {
			return loadFailed(TabRegistry, err)
		}
		return RegistryLoaded{Entries: entries}
	case FetchConfigsCmd:
		configs, err := d.gw.ListConfigs(ctx)
		if err != nil {
			return loadFailed(TabConfig, err)
		}
		return ConfigLoaded{Configs: configs}
	case FetchDoctorCmd:
		lines, err := d.gw.Doctor(ctx)
		if err != nil {
			return loadFailed(TabDoctor, err)
		}
		return DoctorLoaded{Lines: lines}
	case FetchOutdatedCmd:
		tools, err := d.gw.ListOutdated(ctx)
		if err != nil {
			return loadFailed(TabOutdated, err)
		}
		return OutdatedLoaded{Tools: tools}
	case FetchTasksCmd:
		tasks, err := d.gw.ListTasks(ctx)
		if err != nil {
			return loadFailed(TabTasks, err)
		}
		return TasksLoaded{Tasks: tasks}
	case FetchEnvCmd:
		vars, err := d.gw.ListEnv(ctx)
		if err != nil {
			return loadFailed(TabEnvironment, err)
		}
		return EnvLoaded{Vars: vars}
	case FetchSettingsCmd:
		settings, err := d.gw.ListSettings(ctx)
		if err != nil {
			return loadFailed(TabSettings, err)
		}
		return SettingsLoaded{Settings: settings}

	case FetchVersionsCmd:
		versions, err := d.gw.FetchVersions(ctx, c.Tool)
		if err != nil {
			return failed(cmd, err)
		}
		return VersionsLoaded{Request: c.Request, Tool: c.Tool, Mode: c.Mode, Versions: versions}
	case FetchToolDetailCmd:
		info, err := d.gw.ToolDetail(ctx, c.Tool)
		if err != nil {
			return failed(cmd, err)
		}
		return ToolInfoLoaded{Request: c.Request, Tool: c.Tool, Info: info}
	case PruneDryRunCmd:
		candidates, err := d.gw.PruneDryRun(ctx)
		if err != nil {
			return failed(cmd, err)
		}
		return PruneLoaded{Request: c.Request, Candidates: candidates}
	case LoadEditorCmd:
		ed, err := manifest.LoadEditor(c.Path)
		if err != nil {
			return failed(cmd, err)
		}
		return EditorLoaded{Request: c.Request, Editor: ed}
	case SaveScanConfigCmd:
		if err := d.saveScan(c.Dirs, c.MaxDepth); err != nil {
			return failed(cmd, err)
		}
		return ScanConfigSaved{Request: c.Request, Dirs: c.Dirs, MaxDepth: c.MaxDepth}

	case InstallCmd:
		return outcome(cmd)(d.gw.Install(ctx, c.Tool, c.Version))
	case UseGlobalCmd:
		return outcome(cmd)(d.gw.UseGlobal(ctx, c.Tool, c.Version))
	case UninstallCmd:
		return outcome(cmd)(d.gw.Uninstall(ctx, c.Tool, c.Version))
	case UpgradeCmd:
		return outcome(cmd)(d.gw.Upgrade(ctx, c.Tool))
	case RunTaskCmd:
		return outcome(cmd)(d.gw.RunTask(ctx, c.Name))
	case PruneCmd:
		return outcome(cmd)(d.gw.Prune(ctx))
	case TrustCmd:
		return outcome(cmd)(d.gw.Trust(ctx, c.Path))
	case InstallInCmd:
		return outcome(cmd)(d.gw.InstallIn(ctx, c.Dir))
	case UpgradePinsInCmd:
		return outcome(cmd)(d.gw.UpgradePinsIn(ctx, c.Dir))
	case WriteEditorCmd:
		return outcome(cmd)(c.Editor.Write())

	case CheckDriftCmd:
		state, err := d.gw.CheckDrift(ctx, c.Dir)
		if err != nil {
			logging.Warn("drift check failed", "dir", c.Dir, "error", err)
			state = model.DriftNoConfig
		}
		return DriftChecked{State: state}
	case ScanProjectsCmd:
		return ProjectsLoaded{Projects: scanner.Scan(c.Options, c.Tools)}
	case DetectToolsCmd:
		if manifest.Exists(c.Dir) {
			return WizardDetected{Existing: manifest.Path(c.Dir)}
		}
		return WizardDetected{Tools: manifest.Detect(c.Dir, c.Inventory)}
	case WriteBootstrapCmd:
		if err := manifest.WriteBootstrap(c.Dir, c.Tools, c.AgentFiles); err != nil {
			return failed(cmd, err)
		}
		return WizardCompleted{Message: "Wrote " + manifest.Path(c.Dir)}
	case CopyCmd:
		if err := d.copy(c.Text); err != nil {
			logging.Warn("clipboard write failed", "error", err)
			return StatusNotice{Message: "Clipboard unavailable: " + err.Error()}
		}
		return StatusNotice{Message: "Copied " + c.Text}
	}

	logging.Error("unknown command", "op", opName(cmd))
	return StatusNotice{Message: "Unknown command " + opName(cmd)}
}

// saveScan persists new scan settings on top of the base configuration.
func (d *Dispatcher) saveScan(dirs []string, depth int) error {
	next := d.cfg
	next.Scan.Dirs = append([]string(nil), dirs...)
	next.Scan.MaxDepth = config.ClampDepth(depth)
	if d.configPath != "" {
		return next.SaveTo(d.configPath)
	}
	return next.Save()
}

func outcome(cmd Command) func(string, error) Action {
	return func(msg string, err error) Action {
		if err != nil {
			return failed(cmd, err)
		}
		return OperationComplete{Message: msg}
	}
}

func failed(cmd Command, err error) Action {
	logFailure("operation failed", err, "op", opName(cmd))
	return OperationFailed{Message: gateway.Message(err)}
}

func loadFailed(t Tab, err error) Action {
	logFailure("fetch failed", err, "tab", t.String())
	return LoadFailed{Tab: t, Message: gateway.Message(err)}
}

// logFailure logs unreadable mise output at error level; anything else is a
// warning.
func logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if gateway.IsParse(err) {
		logging.Error(msg+": unexpected mise output", args...)
		return
	}
	logging.Warn(msg, args...)
}

func opName(cmd Command) string {
	name := fmt.Sprintf("%T", cmd)
	name = strings.TrimPrefix(name, "app.")
	return strings.TrimSuffix(name, "Cmd")
}
