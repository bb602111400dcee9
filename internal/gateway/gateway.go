// Package gateway talks to the mise command-line tool. Every operation runs
// one (rarely two) child processes and returns decoded records or a typed
// *Error; nothing here touches application state.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"misetui/internal/logging"
	"misetui/internal/model"
)

// Gateway is the set of operations the dashboard requests from mise.
type Gateway interface {
	ListTools(ctx context.Context) ([]model.InstalledTool, error)
	ListRegistry(ctx context.Context) ([]model.RegistryEntry, error)
	ListConfigs(ctx context.Context) ([]model.ConfigFile, error)
	Doctor(ctx context.Context) ([]string, error)
	ListOutdated(ctx context.Context) ([]model.OutdatedTool, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListEnv(ctx context.Context) ([]model.EnvVar, error)
	ListSettings(ctx context.Context) ([]model.Setting, error)

	FetchVersions(ctx context.Context, tool string) ([]string, error)
	ToolDetail(ctx context.Context, tool string) (string, error)

	Install(ctx context.Context, tool, version string) (string, error)
	Uninstall(ctx context.Context, tool, version string) (string, error)
	// Upgrade upgrades one tool, or every tool when tool is empty.
	Upgrade(ctx context.Context, tool string) (string, error)
	UseGlobal(ctx context.Context, tool, version string) (string, error)
	RunTask(ctx context.Context, name string) (string, error)
	PruneDryRun(ctx context.Context) ([]model.PruneCandidate, error)
	Prune(ctx context.Context) (string, error)
	Trust(ctx context.Context, path string) (string, error)

	CheckDrift(ctx context.Context, cwd string) (model.DriftState, error)
	InstallIn(ctx context.Context, dir string) (string, error)
	UpgradePinsIn(ctx context.Context, dir string) (string, error)
}

// CLI implements Gateway on top of a Runner.
type CLI struct {
	runner        Runner
	versionsLimit int
	globalConfig  string
}

// NewCLI creates a gateway. versionsLimit caps remote version lists.
func NewCLI(runner Runner, versionsLimit int) *CLI {
	return &CLI{
		runner:        runner,
		versionsLimit: versionsLimit,
		globalConfig:  GlobalConfigPath(),
	}
}

// GlobalConfigPath returns the location of mise's global config file.
func GlobalConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mise", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "mise", "config.toml")
}

// run executes mise and fails on a non-zero exit.
func (c *CLI) run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	op := strings.Join(args, " ")
	logging.Debug("running mise", "args", op, "dir", dir)

	res, err := c.runner.Run(ctx, dir, args...)
	if err != nil {
		return nil, gatewayError(op, err, "Failed to run mise: %v", err)
	}
	if !res.Success() {
		stderr := strings.TrimSpace(string(res.Stderr))
		logging.Warn("mise failed", "args", op, "exit", res.ExitCode, "stderr", stderr)
		return nil, gatewayError(op, nil, "mise %s failed: %s", op, stderr)
	}
	return res.Stdout, nil
}

func decode[T any](op string, data []byte, parse func([]byte) (T, error)) (T, error) {
	v, err := parse(data)
	if err != nil {
		var zero T
		return zero, parseError(op, err)
	}
	return v, nil
}

func (c *CLI) ListTools(ctx context.Context) ([]model.InstalledTool, error) {
	out, err := c.run(ctx, "", "ls", "-J")
	if err != nil {
		return nil, err
	}
	return decode("ls", out, ParseTools)
}

func (c *CLI) ListRegistry(ctx context.Context) ([]model.RegistryEntry, error) {
	out, err := c.run(ctx, "", "registry", "-J")
	if err != nil {
		return nil, err
	}
	return decode("registry", out, ParseRegistry)
}

func (c *CLI) ListConfigs(ctx context.Context) ([]model.ConfigFile, error) {
	out, err := c.run(ctx, "", "config", "ls", "-J")
	if err != nil {
		return nil, err
	}
	return decode("config ls", out, ParseConfigs)
}

// Doctor returns doctor's report. The report is shown even when doctor exits
// non-zero, since that is exactly when it has something to say.
func (c *CLI) Doctor(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, "", "doctor")
	if err != nil {
		return nil, gatewayError("doctor", err, "Failed to run mise doctor: %v", err)
	}
	return ParseDoctor(res.Stdout), nil
}

func (c *CLI) ListOutdated(ctx context.Context) ([]model.OutdatedTool, error) {
	out, err := c.run(ctx, "", "outdated", "-J")
	if err != nil {
		return nil, err
	}
	return decode("outdated", out, ParseOutdated)
}

func (c *CLI) ListTasks(ctx context.Context) ([]model.Task, error) {
	out, err := c.run(ctx, "", "tasks", "ls", "-J")
	if err != nil {
		return nil, err
	}
	return decode("tasks ls", out, ParseTasks)
}

func (c *CLI) ListEnv(ctx context.Context) ([]model.EnvVar, error) {
	out, err := c.run(ctx, "", "env", "--json-extended")
	if err != nil {
		return nil, err
	}
	return decode("env", out, ParseEnv)
}

func (c *CLI) ListSettings(ctx context.Context) ([]model.Setting, error) {
	out, err := c.run(ctx, "", "settings", "ls", "-J", "--all")
	if err != nil {
		return nil, err
	}
	return decode("settings ls", out, ParseSettings)
}

func (c *CLI) FetchVersions(ctx context.Context, tool string) ([]string, error) {
	out, err := c.run(ctx, "", "ls-remote", tool)
	if err != nil {
		return nil, err
	}
	return ParseVersions(out, c.versionsLimit), nil
}

func (c *CLI) ToolDetail(ctx context.Context, tool string) (string, error) {
	out, err := c.run(ctx, "", "tool", tool, "-J")
	if err != nil {
		return "", err
	}
	return PrettyJSON(out), nil
}

func (c *CLI) Install(ctx context.Context, tool, version string) (string, error) {
	spec := tool + "@" + version
	if _, err := c.run(ctx, "", "install", spec); err != nil {
		return "", err
	}
	return "Installed " + spec, nil
}

func (c *CLI) Uninstall(ctx context.Context, tool, version string) (string, error) {
	spec := tool + "@" + version
	if _, err := c.run(ctx, "", "uninstall", spec); err != nil {
		return "", err
	}
	return "Uninstalled " + spec, nil
}

func (c *CLI) Upgrade(ctx context.Context, tool string) (string, error) {
	if tool == "" {
		if _, err := c.run(ctx, "", "upgrade"); err != nil {
			return "", err
		}
		return "Upgraded all tools", nil
	}
	if _, err := c.run(ctx, "", "upgrade", tool); err != nil {
		return "", err
	}
	return "Upgraded " + tool, nil
}

func (c *CLI) UseGlobal(ctx context.Context, tool, version string) (string, error) {
	spec := tool + "@" + version
	if _, err := c.run(ctx, "", "use", "--global", spec); err != nil {
		return "", err
	}
	return "Now using " + spec, nil
}

func (c *CLI) RunTask(ctx context.Context, name string) (string, error) {
	if _, err := c.run(ctx, "", "run", name); err != nil {
		return "", err
	}
	return fmt.Sprintf("Task '%s' completed", name), nil
}

// PruneDryRun lists what prune would remove. The exit status is ignored;
// mise reports candidates on stdout either way.
func (c *CLI) PruneDryRun(ctx context.Context) ([]model.PruneCandidate, error) {
	res, err := c.runner.Run(ctx, "", "prune", "--dry-run")
	if err != nil {
		return nil, gatewayError("prune --dry-run", err, "Failed to run mise prune: %v", err)
	}
	return ParsePrune(res.Stdout), nil
}

func (c *CLI) Prune(ctx context.Context) (string, error) {
	if _, err := c.run(ctx, "", "prune", "-y"); err != nil {
		return "", err
	}
	return "Pruned unused tool versions", nil
}

func (c *CLI) Trust(ctx context.Context, path string) (string, error) {
	if _, err := c.run(ctx, "", "trust", path); err != nil {
		return "", err
	}
	return "Trusted " + path, nil
}

func (c *CLI) InstallIn(ctx context.Context, dir string) (string, error) {
	if _, err := c.run(ctx, dir, "install"); err != nil {
		return "", err
	}
	return "Installed tools in " + dir, nil
}

func (c *CLI) UpgradePinsIn(ctx context.Context, dir string) (string, error) {
	if _, err := c.run(ctx, dir, "upgrade"); err != nil {
		return "", err
	}
	return "Updated tool pins in " + dir, nil
}

// CheckDrift reports whether the tools required by local (non-global) config
// files in cwd are installed.
func (c *CLI) CheckDrift(ctx context.Context, cwd string) (model.DriftState, error) {
	res, err := c.runner.Run(ctx, cwd, "config", "ls", "--json")
	if err != nil {
		return model.DriftChecking, gatewayError("config ls", err, "Failed to run mise config ls: %v", err)
	}
	if !res.Success() {
		if untrusted(res.Stderr) {
			return model.DriftUntrusted, nil
		}
		return model.DriftNoConfig, nil
	}

	local := localConfigPaths(res.Stdout, c.globalConfig)
	if len(local) == 0 {
		return model.DriftNoConfig, nil
	}

	res, err = c.runner.Run(ctx, cwd, "ls", "--current", "--json")
	if err != nil {
		return model.DriftChecking, gatewayError("ls --current", err, "Failed to run mise ls: %v", err)
	}
	if !res.Success() {
		if untrusted(res.Stderr) {
			return model.DriftUntrusted, nil
		}
		return model.DriftChecking, gatewayError("ls --current", nil, "%s", strings.TrimSpace(string(res.Stderr)))
	}

	if missingLocalTools(res.Stdout, local) {
		return model.DriftMissing, nil
	}
	return model.DriftHealthy, nil
}

func untrusted(stderr []byte) bool {
	return strings.Contains(string(stderr), "not trusted")
}

func localConfigPaths(data []byte, global string) map[string]bool {
	var entries []struct {
		Path string `json:"path"`
	}
	// Malformed output is treated as "no config".
	_ = json.Unmarshal(data, &entries)

	local := make(map[string]bool)
	for _, e := range entries {
		if e.Path == "" || e.Path == global {
			continue
		}
		local[e.Path] = true
	}
	return local
}

func missingLocalTools(data []byte, local map[string]bool) bool {
	var byName map[string][]installedVersion
	_ = json.Unmarshal(data, &byName)

	for _, versions := range byName {
		for _, v := range versions {
			if local[string(v.Source)] && !v.Installed {
				return true
			}
		}
	}
	return false
}
