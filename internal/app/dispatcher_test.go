package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misetui/internal/config"
	"misetui/internal/gateway"
	"misetui/internal/manifest"
	"misetui/internal/model"
	"misetui/internal/scanner"
)

// fakeGateway answers the calls a test cares about. Anything else panics
// through the nil embedded interface.
type fakeGateway struct {
	gateway.Gateway

	tools    []model.InstalledTool
	toolsErr error
	versions []string
	install  func(tool, version string) (string, error)
	drift    model.DriftState
	driftErr error
}

func (f *fakeGateway) ListTools(context.Context) ([]model.InstalledTool, error) {
	return f.tools, f.toolsErr
}

func (f *fakeGateway) FetchVersions(context.Context, string) ([]string, error) {
	return f.versions, nil
}

func (f *fakeGateway) Install(_ context.Context, tool, version string) (string, error) {
	return f.install(tool, version)
}

func (f *fakeGateway) CheckDrift(context.Context, string) (model.DriftState, error) {
	return f.drift, f.driftErr
}

func newTestDispatcher(gw gateway.Gateway, configPath string) *Dispatcher {
	return NewDispatcher(gw, config.DefaultConfig(""), configPath)
}

func TestDispatchFetch(t *testing.T) {
	gw := &fakeGateway{tools: sampleTools}
	d := newTestDispatcher(gw, "")

	got := d.Execute(context.Background(), FetchToolsCmd{})
	assert.Equal(t, ToolsLoaded{Tools: sampleTools}, got)

	gw.toolsErr = errors.New("mise not found")
	got = d.Execute(context.Background(), FetchToolsCmd{})
	assert.Equal(t, LoadFailed{Tab: TabTools, Message: "mise not found"}, got)
}

func TestDispatchCarriesRequest(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{versions: []string{"1.0", "2.0"}}, "")
	got := d.Execute(context.Background(), FetchVersionsCmd{Request: "r", Tool: "node", Mode: PickUseGlobal})
	assert.Equal(t, VersionsLoaded{Request: "r", Tool: "node", Mode: PickUseGlobal, Versions: []string{"1.0", "2.0"}}, got)
}

func TestDispatchOperationOutcome(t *testing.T) {
	gw := &fakeGateway{install: func(tool, version string) (string, error) {
		return "Installed " + tool + "@" + version, nil
	}}
	d := newTestDispatcher(gw, "")
	got := d.Execute(context.Background(), InstallCmd{Tool: "node", Version: "20"})
	assert.Equal(t, OperationComplete{Message: "Installed node@20"}, got)

	gw.install = func(string, string) (string, error) {
		return "", errors.New("exit status 1: no such version")
	}
	got = d.Execute(context.Background(), InstallCmd{Tool: "node", Version: "99"})
	assert.Equal(t, OperationFailed{Message: "exit status 1: no such version"}, got)
}

func TestDispatchDrift(t *testing.T) {
	gw := &fakeGateway{drift: model.DriftMissing}
	d := newTestDispatcher(gw, "")
	assert.Equal(t, DriftChecked{State: model.DriftMissing}, d.Execute(context.Background(), CheckDriftCmd{Dir: "/x"}))

	gw.driftErr = errors.New("boom")
	assert.Equal(t, DriftChecked{State: model.DriftNoConfig}, d.Execute(context.Background(), CheckDriftCmd{Dir: "/x"}))
}

func TestDispatchSaveScanConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "misetui", "config.yaml")
	d := newTestDispatcher(&fakeGateway{}, path)

	got := d.Execute(context.Background(), SaveScanConfigCmd{Request: "r", Dirs: []string{"/src"}, MaxDepth: 42})
	assert.Equal(t, ScanConfigSaved{Request: "r", Dirs: []string{"/src"}, MaxDepth: 42}, got)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/src"}, cfg.Scan.Dirs)
	assert.Equal(t, config.MaxDepth, cfg.Scan.MaxDepth)
}

func TestDispatchEditorRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := manifest.Path(dir)
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))
	d := newTestDispatcher(&fakeGateway{}, "")

	got := d.Execute(context.Background(), LoadEditorCmd{Request: "r", Path: path})
	loaded, ok := got.(EditorLoaded)
	require.True(t, ok)
	assert.Equal(t, RequestID("r"), loaded.Request)
	require.Len(t, loaded.Editor.Tools, 2)

	loaded.Editor.Tools[0].SetValue("22")
	got = d.Execute(context.Background(), WriteEditorCmd{Editor: loaded.Editor})
	assert.Equal(t, OperationComplete{Message: "Saved " + path}, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"22"`)
	assert.Contains(t, string(data), "# lts")

	got = d.Execute(context.Background(), LoadEditorCmd{Request: "r", Path: filepath.Join(dir, "missing.toml")})
	assert.IsType(t, OperationFailed{}, got)
}

func TestDispatchDetectTools(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(&fakeGateway{}, "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".nvmrc"), []byte("20\n"), 0o644))

	got := d.Execute(context.Background(), DetectToolsCmd{Dir: dir})
	detected, ok := got.(WizardDetected)
	require.True(t, ok)
	assert.Empty(t, detected.Existing)
	assert.NotEmpty(t, detected.Tools)

	require.NoError(t, os.WriteFile(manifest.Path(dir), []byte("[tools]\n"), 0o644))
	got = d.Execute(context.Background(), DetectToolsCmd{Dir: dir})
	assert.Equal(t, WizardDetected{Existing: manifest.Path(dir)}, got)
}

func TestDispatchWriteBootstrap(t *testing.T) {
	dir := t.TempDir()
	d := newTestDispatcher(&fakeGateway{}, "")

	got := d.Execute(context.Background(), WriteBootstrapCmd{
		Dir:        dir,
		Tools:      []model.DetectedTool{{Name: "go", Version: "1.22", Enabled: true}},
		AgentFiles: true,
	})
	assert.Equal(t, WizardCompleted{Message: "Wrote " + manifest.Path(dir)}, got)

	data, err := os.ReadFile(manifest.Path(dir))
	require.NoError(t, err)
	assert.Equal(t, "[tools]\ngo = \"1.22\"\n", string(data))
	assert.FileExists(t, filepath.Join(dir, "AGENTS.md"))
	assert.FileExists(t, filepath.Join(dir, "CLAUDE.md"))
}

func TestDispatchScanProjects(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	require.NoError(t, os.MkdirAll(app, 0o755))
	require.NoError(t, os.WriteFile(manifest.Path(app), []byte("[tools]\nnode = \"20\"\n"), 0o644))
	d := newTestDispatcher(&fakeGateway{}, "")

	got := d.Execute(context.Background(), ScanProjectsCmd{
		Options: scanner.Options{Roots: []string{root}, MaxDepth: 3},
		Tools:   []model.InstalledTool{{Name: "node", Version: "20.1.0", Installed: true}},
	})
	loaded, ok := got.(ProjectsLoaded)
	require.True(t, ok)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, "app", loaded.Projects[0].Name)
	assert.Equal(t, model.Healthy, loaded.Projects[0].Health)
}

func TestDispatchCopy(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{}, "")
	var copied string
	d.copy = func(s string) error {
		copied = s
		return nil
	}
	assert.Equal(t, StatusNotice{Message: "Copied node@20"}, d.Execute(context.Background(), CopyCmd{Text: "node@20"}))
	assert.Equal(t, "node@20", copied)

	d.copy = func(string) error { return errors.New("no display") }
	assert.Equal(t, StatusNotice{Message: "Clipboard unavailable: no display"}, d.Execute(context.Background(), CopyCmd{Text: "x"}))
}

func TestDispatchCmdWrapsExecute(t *testing.T) {
	d := newTestDispatcher(&fakeGateway{tools: sampleTools}, "")
	msg := d.Cmd(context.Background(), FetchToolsCmd{})()
	assert.Equal(t, ToolsLoaded{Tools: sampleTools}, msg)
	assert.Nil(t, d.Batch(context.Background(), nil))
}

func TestOpName(t *testing.T) {
	assert.Equal(t, "Install", opName(InstallCmd{}))
	assert.Equal(t, "FetchVersions", opName(FetchVersionsCmd{}))
}
