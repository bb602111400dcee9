package app

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misetui/internal/config"
	"misetui/internal/filter"
	"misetui/internal/model"
)

const testCwd = "/work/app"

func newTestController(t *testing.T) *Controller {
	t.Helper()
	c := New(config.DefaultConfig(""), testCwd)
	n := 0
	c.newID = func() RequestID {
		n++
		return RequestID(fmt.Sprintf("req-%d", n))
	}
	return c
}

var sampleTools = []model.InstalledTool{
	{Name: "node", Version: "20.1.0", Active: true, Source: "~/.config/mise/config.toml"},
	{Name: "go", Version: "1.22.0", Active: true, Source: "/work/app/.mise.toml"},
	{Name: "python", Version: "3.12.1", Source: ""},
}

var sampleRegistry = []model.RegistryEntry{
	{Short: "python"},
	{Short: "pytest-tool", Description: "Python test runner"},
	{Short: "ruby"},
}

func loadAll(c *Controller) {
	c.Handle(ToolsLoaded{Tools: sampleTools})
	c.Handle(RegistryLoaded{Entries: sampleRegistry})
	c.Handle(ConfigLoaded{Configs: []model.ConfigFile{{Path: "/work/app/.mise.toml", Tools: []string{"go"}}}})
	c.Handle(DoctorLoaded{Lines: []string{"version: 2025.1.0", "activated: yes"}})
	c.Handle(OutdatedLoaded{Tools: []model.OutdatedTool{{Name: "node", Current: "20.1.0", Latest: "22.0.0"}}})
	c.Handle(TasksLoaded{Tasks: []model.Task{{Name: "build"}, {Name: "test"}}})
	c.Handle(EnvLoaded{Vars: []model.EnvVar{{Name: "PATH", Value: "/bin"}}})
	c.Handle(SettingsLoaded{Settings: []model.Setting{{Key: "experimental", Value: "true", ValueType: "bool"}}})
}

func commandTypes(cmds []Command) []string {
	out := make([]string, len(cmds))
	for i, cmd := range cmds {
		out[i] = fmt.Sprintf("%T", cmd)
	}
	return out
}

func TestInitFetchesEverythingAndChecksDrift(t *testing.T) {
	c := newTestController(t)
	cmds := c.Init()
	require.Len(t, cmds, 9)
	assert.Contains(t, cmds, Command(CheckDriftCmd{Dir: testCwd}))
	assert.True(t, c.State.Loading())
	assert.Equal(t, model.DriftChecking, c.State.Drift)
}

func TestRefreshWhileLoading(t *testing.T) {
	c := newTestController(t)
	require.Equal(t, filter.Loading, c.State.Tools.State)

	cmds := c.Handle(Refresh{})

	for _, st := range c.State.loadStates() {
		assert.Equal(t, filter.Loading, st)
	}
	require.NotNil(t, c.State.Status)
	assert.Equal(t, "Refreshing...", c.State.Status.Text)
	assert.Equal(t, 10, c.State.Status.TTL)
	assert.ElementsMatch(t, commandTypes(fetchAll()), commandTypes(cmds))
	assert.Len(t, cmds, 8)
}

func TestRefreshAfterLoad(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	assert.False(t, c.State.Loading())

	c.Handle(Refresh{})
	assert.True(t, c.State.Loading())
	// Rows stay visible until replaced.
	assert.Equal(t, 3, c.State.Tools.Len())
}

func TestToolsLoadedRescansProjects(t *testing.T) {
	c := newTestController(t)
	cmds := c.Handle(ToolsLoaded{Tools: sampleTools})

	require.Len(t, cmds, 1)
	scan, ok := cmds[0].(ScanProjectsCmd)
	require.True(t, ok)
	assert.Equal(t, sampleTools, scan.Tools)
	assert.Equal(t, config.DefaultMaxDepth, scan.Options.MaxDepth)
	assert.Equal(t, filter.Loading, c.State.Projects.State)

	c.Handle(ProjectsLoaded{Projects: []model.Project{{Name: "app", Path: testCwd}}})
	assert.Equal(t, filter.Loaded, c.State.Projects.State)
	assert.Equal(t, 1, c.State.Projects.Len())
}

func TestLoadFailedKeepsRows(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(Refresh{})

	c.Handle(LoadFailed{Tab: TabRegistry, Message: "mise not found"})

	assert.Equal(t, filter.Loaded, c.State.Registry.State)
	assert.Equal(t, 3, c.State.Registry.Len())
	assert.Equal(t, "Error: mise not found", c.State.Status.Text)
	assert.Equal(t, filter.Loading, c.State.Tools.State)
}

func TestSearchRegistry(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	c.Handle(MoveDown{})
	c.Handle(MoveDown{})
	require.Equal(t, 2, c.State.Registry.Selected)

	c.Handle(EnterSearch{})
	for _, r := range "pyt" {
		c.Handle(SearchInput{Char: r})
	}

	var names []string
	for i := 0; i < c.State.Registry.Len(); i++ {
		e, _ := c.State.Registry.At(i)
		names = append(names, e.Short)
		assert.Len(t, c.State.Registry.Highlight(i), 3)
	}
	assert.ElementsMatch(t, []string{"python", "pytest-tool"}, names)
	assert.Equal(t, 0, c.State.Registry.Selected)

	c.Handle(SearchBackspace{})
	assert.Equal(t, "py", c.State.Query)

	c.Handle(CancelPopup{})
	assert.False(t, c.State.SearchActive)
	assert.Empty(t, c.State.Query)
	assert.Equal(t, 3, c.State.Registry.Len())
	assert.Nil(t, c.State.Registry.Highlights)
}

func TestSearchIgnoredWithoutSearchMode(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SearchInput{Char: 'x'})
	assert.Empty(t, c.State.Query)
	assert.Equal(t, 3, c.State.Tools.Len())
}

func TestSelectionStaysInRange(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	for i := 0; i < 5; i++ {
		c.Handle(PageDown{})
	}
	assert.Equal(t, 2, c.State.Tools.Selected)

	c.Handle(EnterSearch{})
	for _, r := range "zzz" {
		c.Handle(SearchInput{Char: r})
	}
	assert.Equal(t, 0, c.State.Tools.Len())
	assert.Equal(t, 0, c.State.Tools.Selected)
	c.Handle(MoveDown{})
	assert.Equal(t, 0, c.State.Tools.Selected)
}

func TestCycleSortOrder(t *testing.T) {
	c := newTestController(t)
	loadAll(c)

	names := func() []string {
		var out []string
		for i := 0; i < c.State.Tools.Len(); i++ {
			tool, _ := c.State.Tools.At(i)
			out = append(out, tool.Name)
		}
		return out
	}

	c.Handle(CycleSortOrder{})
	assert.Equal(t, SortState{Column: 0, Ascending: false}, c.State.Sort)
	assert.Equal(t, []string{"python", "node", "go"}, names())

	c.Handle(CycleSortOrder{})
	assert.Equal(t, SortState{Column: 1, Ascending: true}, c.State.Sort)
	assert.Equal(t, []string{"go", "node", "python"}, names())

	// The order survives a reload.
	c.Handle(ToolsLoaded{Tools: sampleTools})
	assert.Equal(t, []string{"go", "node", "python"}, names())

	c.Handle(NextTab{})
	c.Handle(PrevTab{})
	assert.Equal(t, SortState{Ascending: true}, c.State.Sort)
	assert.Equal(t, []string{"node", "go", "python"}, names())
}

func TestCycleSortWrapsColumns(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	for i := 0; i < 4; i++ {
		c.Handle(CycleSortOrder{})
	}
	assert.Equal(t, SortState{Column: 0, Ascending: true}, c.State.Sort)
	assert.True(t, c.State.Registry.Sorted())
}

func TestCycleSortNoopOnDoctor(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabDoctor})
	c.Handle(CycleSortOrder{})
	assert.Equal(t, SortState{Ascending: true}, c.State.Sort)
}

func TestTabCyclingWraps(t *testing.T) {
	c := newTestController(t)
	c.Handle(PrevTab{})
	assert.Equal(t, TabBootstrap, c.State.Tab)
	assert.Equal(t, len(Tabs)-1, c.State.Sidebar)
	c.Handle(NextTab{})
	assert.Equal(t, TabTools, c.State.Tab)
}

func TestSidebarNavigationSwitchesTab(t *testing.T) {
	c := newTestController(t)
	c.Handle(FocusSidebar{})
	c.Handle(MoveDown{})
	c.Handle(MoveDown{})
	assert.Equal(t, TabRegistry, c.State.Tab)
	c.Handle(MoveUp{})
	c.Handle(MoveUp{})
	c.Handle(MoveUp{})
	assert.Equal(t, TabTools, c.State.Tab)
}

func TestMouseClick(t *testing.T) {
	c := newTestController(t)
	c.Handle(FocusSidebar{})

	c.Handle(MouseClick{X: 3, Y: 6})
	assert.Equal(t, TabRegistry, c.State.Tab)

	c.Handle(MouseClick{X: 3, Y: 100})
	assert.Equal(t, TabRegistry, c.State.Tab)
	c.Handle(MouseClick{X: 3, Y: 1})
	assert.Equal(t, TabRegistry, c.State.Tab)

	c.Handle(MouseClick{X: 40, Y: 6})
	assert.Equal(t, PaneContent, c.State.Focus)
}

func TestTickExpiresStatus(t *testing.T) {
	c := newTestController(t)
	c.State.setStatus("hello", 2)

	c.Handle(Tick{})
	require.NotNil(t, c.State.Status)
	assert.Equal(t, 1, c.State.Status.TTL)
	c.Handle(Tick{})
	assert.Nil(t, c.State.Status)

	for i := 0; i < SpinnerFrames-2; i++ {
		c.Handle(Tick{})
	}
	assert.Equal(t, 0, c.State.Spinner)
}

func TestStatusVisibleForExactlyTTLTicks(t *testing.T) {
	c := newTestController(t)
	c.State.setStatus("Installed node@22", outcomeTTL)

	for i := 1; i < outcomeTTL; i++ {
		c.Handle(Tick{})
		require.NotNil(t, c.State.Status, "tick %d", i)
	}
	c.Handle(Tick{})
	assert.Nil(t, c.State.Status)
}

func TestQuitUnwindsPopupThenSearch(t *testing.T) {
	c := newTestController(t)
	c.Handle(EnterSearch{})
	c.Handle(SearchInput{Char: 'n'})
	c.State.Popup = &HelpPopup{}

	c.Handle(Quit{})
	assert.Nil(t, c.State.Popup)
	assert.False(t, c.Quitting())

	c.Handle(Quit{})
	assert.False(t, c.State.SearchActive)
	assert.False(t, c.Quitting())

	c.Handle(Quit{})
	assert.True(t, c.Quitting())
}

func TestStatusNoticeTTL(t *testing.T) {
	c := newTestController(t)
	c.Handle(StatusNotice{Message: "Copied node@20"})
	assert.Equal(t, &StatusMessage{Text: "Copied node@20", TTL: 18}, c.State.Status)
}

func TestDrift(t *testing.T) {
	c := newTestController(t)
	c.Handle(DriftChecked{State: model.DriftMissing})
	assert.Equal(t, model.DriftMissing, c.State.Drift)

	cmds := c.Handle(CheckDrift{})
	assert.Equal(t, model.DriftChecking, c.State.Drift)
	assert.Equal(t, []Command{CheckDriftCmd{Dir: testCwd}}, cmds)
}

func TestJumpToDriftProject(t *testing.T) {
	c := newTestController(t)
	c.Handle(ProjectsLoaded{Projects: []model.Project{
		{Name: "other", Path: "/work/other"},
		{Name: "app", Path: testCwd},
	}})
	c.Handle(EnterSearch{})
	for _, r := range "oth" {
		c.Handle(SearchInput{Char: r})
	}
	c.Handle(ExitSearch{})

	c.Handle(JumpToDriftProject{})

	assert.Equal(t, TabProjects, c.State.Tab)
	assert.Empty(t, c.State.Query)
	p, ok := c.State.Projects.Current()
	require.True(t, ok)
	assert.Equal(t, testCwd, p.Path)
}

func TestJumpToDriftProjectNotScanned(t *testing.T) {
	c := newTestController(t)
	c.Handle(ProjectsLoaded{})
	c.Handle(JumpToDriftProject{})
	assert.Equal(t, TabTools, c.State.Tab)
	require.NotNil(t, c.State.Status)
	assert.Contains(t, c.State.Status.Text, testCwd)
}

func TestYank(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	assert.Equal(t, []Command{CopyCmd{Text: "node@20.1.0"}}, c.Handle(Yank{}))

	c.Handle(SelectTab{Tab: TabEnvironment})
	assert.Equal(t, []Command{CopyCmd{Text: "PATH=/bin"}}, c.Handle(Yank{}))

	c.Handle(FocusSidebar{})
	assert.Nil(t, c.Handle(Yank{}))
}

func TestUnknownCombinationsAreNoops(t *testing.T) {
	c := newTestController(t)
	// Nothing loaded, nothing selected.
	for _, a := range []Action{
		InstallTool{}, UninstallTool{}, UpdateTool{}, UpgradeAll{}, RunTask{},
		TrustConfig{}, ShowToolDetail{}, Confirm{}, EditorWrite{}, EditorInput{Char: 'x'},
		ScanConfigInput{Char: 'x'}, WizardToggleTool{}, PopupSearchInput{Char: '1'},
		InstallProjectTools{}, UpdateProjectPins{}, OpenEditor{},
	} {
		assert.Nil(t, c.Handle(a), "%T", a)
		assert.Nil(t, c.State.Popup, "%T", a)
	}
}
