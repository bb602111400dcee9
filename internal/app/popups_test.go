package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"misetui/internal/manifest"
	"misetui/internal/model"
)

func TestVersionPickerInstallFlow(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})

	cmds := c.Handle(InstallTool{})
	require.Equal(t, []Command{FetchVersionsCmd{Request: "req-1", Tool: "python", Mode: PickInstall}}, cmds)
	progress, ok := c.State.Popup.(*ProgressPopup)
	require.True(t, ok)
	assert.Equal(t, "Fetching versions for python...", progress.Message)
	assert.Equal(t, PurposeVersions, progress.Purpose)

	c.Handle(VersionsLoaded{Request: "req-1", Tool: "python", Mode: PickInstall, Versions: []string{"3.11.9", "3.12.1", "3.13.0"}})
	picker, ok := c.State.Popup.(*PickerPopup)
	require.True(t, ok)
	assert.Len(t, picker.Filtered, 3)

	c.Handle(PopupSearchInput{Char: '2'})
	require.Len(t, picker.Filtered, 1)
	v, ok := picker.Current()
	require.True(t, ok)
	assert.Equal(t, "3.12.1", v)

	// The dashboard query is untouched by the picker search.
	assert.Empty(t, c.State.Query)

	cmds = c.Handle(Confirm{})
	assert.Equal(t, []Command{InstallCmd{Tool: "python", Version: "3.12.1"}}, cmds)
	progress, ok = c.State.Popup.(*ProgressPopup)
	require.True(t, ok)
	assert.Equal(t, "Installing python@3.12.1...", progress.Message)

	cmds = c.Handle(OperationComplete{Message: "Installed python@3.12.1"})
	assert.Nil(t, c.State.Popup)
	assert.Equal(t, "Installed python@3.12.1", c.State.Status.Text)
	assert.Equal(t, 20, c.State.Status.TTL)
	assert.Len(t, cmds, 9)
	assert.True(t, c.State.Loading())
}

func TestUseGlobalPicker(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	c.Handle(UseTool{})
	c.Handle(VersionsLoaded{Request: "req-1", Tool: "python", Mode: PickUseGlobal, Versions: []string{"3.12.1"}})

	cmds := c.Handle(Confirm{})
	assert.Equal(t, []Command{UseGlobalCmd{Tool: "python", Version: "3.12.1"}}, cmds)
	assert.Equal(t, "Setting python@3.12.1 globally...", c.State.Popup.(*ProgressPopup).Message)
}

func TestPickerWithNoMatchesCloses(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	c.Handle(InstallTool{})
	c.Handle(VersionsLoaded{Request: "req-1", Tool: "python", Versions: []string{"3.12.1"}})
	c.Handle(PopupSearchInput{Char: 'x'})

	assert.Nil(t, c.Handle(Confirm{}))
	assert.Nil(t, c.State.Popup)
}

func TestStaleCompletionDropped(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	c.Handle(InstallTool{})
	c.Handle(CancelPopup{})
	c.Handle(MoveDown{})
	c.Handle(InstallTool{})

	c.Handle(VersionsLoaded{Request: "req-1", Tool: "python", Versions: []string{"3.12.1"}})
	progress, ok := c.State.Popup.(*ProgressPopup)
	require.True(t, ok)
	assert.Equal(t, RequestID("req-2"), progress.Request)

	c.Handle(VersionsLoaded{Request: "req-2", Tool: "pytest-tool", Versions: []string{"1.0"}})
	picker, ok := c.State.Popup.(*PickerPopup)
	require.True(t, ok)
	assert.Equal(t, "pytest-tool", picker.Tool)
}

func TestCompletionAfterCancelIsIgnored(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(ShowToolDetail{})
	c.Handle(CancelPopup{})

	c.Handle(ToolInfoLoaded{Request: "req-1", Tool: "node", Info: "{}"})
	assert.Nil(t, c.State.Popup)
}

func TestEmptyVersions(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabRegistry})
	c.Handle(InstallTool{})
	c.Handle(VersionsLoaded{Request: "req-1", Tool: "python"})

	assert.Nil(t, c.State.Popup)
	assert.Equal(t, "No versions found", c.State.Status.Text)
}

func TestToolDetail(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	cmds := c.Handle(Confirm{})
	require.Equal(t, []Command{FetchToolDetailCmd{Request: "req-1", Tool: "node"}}, cmds)

	c.Handle(ToolInfoLoaded{Request: "req-1", Tool: "node", Info: "line1\nline2\nline3"})
	detail, ok := c.State.Popup.(*DetailPopup)
	require.True(t, ok)
	assert.Equal(t, "node", detail.Title)

	for i := 0; i < 10; i++ {
		c.Handle(MoveDown{})
	}
	assert.Equal(t, 2, detail.Scroll)
	c.Handle(PageUp{})
	assert.Equal(t, 0, detail.Scroll)

	c.Handle(Confirm{})
	assert.Nil(t, c.State.Popup)
}

func candidates(n int) []model.PruneCandidate {
	out := make([]model.PruneCandidate, n)
	for i := range out {
		out[i] = model.PruneCandidate{Tool: "node", Version: string(rune('a' + i))}
	}
	return out
}

func TestPruneConfirmation(t *testing.T) {
	c := newTestController(t)
	cmds := c.Handle(PruneTool{})
	require.Equal(t, []Command{PruneDryRunCmd{Request: "req-1"}}, cmds)

	c.Handle(PruneLoaded{Request: "req-1", Candidates: candidates(7)})
	confirm, ok := c.State.Popup.(*ConfirmPopup)
	require.True(t, ok)
	assert.Equal(t, "Prune 7 versions? (node@a, node@b, node@c, node@d, node@e, ...)", confirm.Message)

	cmds = c.Handle(Confirm{})
	assert.Equal(t, []Command{PruneCmd{}}, cmds)
	assert.Equal(t, "Pruning unused versions...", c.State.Popup.(*ProgressPopup).Message)
}

func TestPruneShortList(t *testing.T) {
	c := newTestController(t)
	c.Handle(PruneTool{})
	c.Handle(PruneLoaded{Request: "req-1", Candidates: candidates(2)})
	assert.Equal(t, "Prune 2 versions? (node@a, node@b)", c.State.Popup.(*ConfirmPopup).Message)
}

func TestPruneNothing(t *testing.T) {
	c := newTestController(t)
	c.Handle(PruneTool{})
	c.Handle(PruneLoaded{Request: "req-1"})
	assert.Nil(t, c.State.Popup)
	assert.Equal(t, "No unused tool versions to prune", c.State.Status.Text)
}

func TestUninstallConfirmFlow(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(MoveDown{})

	c.Handle(UninstallTool{})
	confirm, ok := c.State.Popup.(*ConfirmPopup)
	require.True(t, ok)
	assert.Equal(t, "Uninstall go@1.22.0?", confirm.Message)

	cmds := c.Handle(Confirm{})
	assert.Equal(t, []Command{UninstallCmd{Tool: "go", Version: "1.22.0"}}, cmds)
	assert.Equal(t, "Uninstalling go@1.22.0...", c.State.Popup.(*ProgressPopup).Message)
}

func TestOperationsByTab(t *testing.T) {
	c := newTestController(t)
	loadAll(c)

	c.Handle(SelectTab{Tab: TabOutdated})
	assert.Equal(t, []Command{UpgradeCmd{Tool: "node"}}, c.Handle(UpdateTool{}))
	assert.Equal(t, "Upgrading node...", c.State.Popup.(*ProgressPopup).Message)
	c.Handle(OperationFailed{Message: "boom"})

	assert.Equal(t, []Command{UpgradeCmd{}}, c.Handle(UseTool{}))
	assert.Equal(t, "Upgrading all tools...", c.State.Popup.(*ProgressPopup).Message)
	c.Handle(OperationFailed{Message: "boom"})

	c.Handle(SelectTab{Tab: TabTasks})
	c.Handle(Confirm{})
	require.IsType(t, &ConfirmPopup{}, c.State.Popup)
	assert.Equal(t, "Run task 'build'?", c.State.Popup.(*ConfirmPopup).Message)
	assert.Equal(t, []Command{RunTaskCmd{Name: "build"}}, c.Handle(Confirm{}))
	c.Handle(OperationFailed{Message: "boom"})

	c.Handle(SelectTab{Tab: TabConfig})
	c.Handle(TrustConfig{})
	assert.Equal(t, "Trust config: /work/app/.mise.toml?", c.State.Popup.(*ConfirmPopup).Message)
	assert.Equal(t, []Command{TrustCmd{Path: "/work/app/.mise.toml"}}, c.Handle(Confirm{}))
}

func TestProjectOperations(t *testing.T) {
	c := newTestController(t)
	c.Handle(ProjectsLoaded{Projects: []model.Project{{Name: "app", Path: testCwd}}})
	c.Handle(SelectTab{Tab: TabProjects})

	c.Handle(InstallProjectTools{})
	assert.Equal(t, "Install missing tools in /work/app?", c.State.Popup.(*ConfirmPopup).Message)
	assert.Equal(t, []Command{InstallInCmd{Dir: testCwd}}, c.Handle(Confirm{}))
	c.Handle(OperationFailed{Message: "boom"})

	c.Handle(UpdateProjectPins{Path: "/elsewhere"})
	assert.Equal(t, "Update tool pins in /elsewhere?", c.State.Popup.(*ConfirmPopup).Message)
	assert.Equal(t, []Command{UpgradePinsInCmd{Dir: "/elsewhere"}}, c.Handle(Confirm{}))
}

func TestOperationFailedClearsAnyPopup(t *testing.T) {
	for _, p := range []Popup{
		&ProgressPopup{Request: "x"},
		&ConfirmPopup{OnConfirm: ConfirmPrune{}},
		&PickerPopup{},
		&DetailPopup{},
		&HelpPopup{},
		&ScanConfigPopup{},
	} {
		c := newTestController(t)
		c.State.Popup = p
		c.Handle(OperationFailed{Message: "exit status 1"})
		assert.Nil(t, c.State.Popup, "%T", p)
		assert.Equal(t, "Error: exit status 1", c.State.Status.Text)
	}
}

func TestPopupBlocksTabChanges(t *testing.T) {
	c := newTestController(t)
	c.Handle(ShowHelp{})
	require.IsType(t, &HelpPopup{}, c.State.Popup)

	c.Handle(NextTab{})
	c.Handle(SelectTab{Tab: TabDoctor})
	c.Handle(MouseClick{X: 2, Y: 5})
	assert.Equal(t, TabTools, c.State.Tab)

	c.Handle(CancelPopup{})
	assert.Nil(t, c.State.Popup)
}

const sampleManifest = "[tools]\nnode = \"20\"  # lts\npython = \"3.12\"\n"

func openSampleEditor(t *testing.T, c *Controller) *EditorPopup {
	t.Helper()
	return openEditorWith(t, c, sampleManifest)
}

func openEditorWith(t *testing.T, c *Controller, content string) *EditorPopup {
	t.Helper()
	c.Handle(ProjectsLoaded{Projects: []model.Project{{Name: "app", Path: testCwd}}})
	c.Handle(SelectTab{Tab: TabProjects})

	cmds := c.Handle(Confirm{})
	path := manifest.Path(testCwd)
	require.Equal(t, []Command{LoadEditorCmd{Request: "req-1", Path: path}}, cmds)

	ed, err := manifest.ParseEditor(path, []byte(content))
	require.NoError(t, err)
	c.Handle(EditorLoaded{Request: "req-1", Editor: ed})

	p, ok := c.State.Popup.(*EditorPopup)
	require.True(t, ok)
	return p
}

func typeInto(c *Controller, text string) {
	for _, r := range text {
		c.Handle(EditorInput{Char: r})
	}
}

func TestEditorEditAndWrite(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)
	require.Len(t, p.Rows(), 2)

	assert.Equal(t, []Command(nil), c.Handle(EditorWrite{}))
	assert.Equal(t, "No changes to write", c.State.Status.Text)

	c.Handle(EditorToggleDiff{})
	c.Handle(MoveDown{})
	c.Handle(EditorStartEdit{})
	require.True(t, p.Editing)
	assert.Equal(t, "3.12", p.Buffer())

	c.Handle(EditorBackspace{})
	typeInto(c, "3")
	c.Handle(EditorConfirmEdit{})

	assert.False(t, p.Editing)
	assert.True(t, p.Dirty())
	assert.Equal(t, manifest.Modified, p.Rows()[1].Status)
	var added []string
	for _, l := range p.Diff {
		if l.Kind == manifest.DiffAdded {
			added = append(added, l.Text)
		}
	}
	require.Len(t, added, 1)
	assert.Contains(t, added[0], `"3.13"`)

	cmds := c.Handle(EditorWrite{})
	require.Len(t, cmds, 1)
	write, ok := cmds[0].(WriteEditorCmd)
	require.True(t, ok)
	assert.NotSame(t, p.Editor, write.Editor)
	assert.Equal(t, "3.13", write.Editor.Tools[1].Value)
	assert.Equal(t, "Writing "+manifest.Path(testCwd)+"...", c.State.Popup.(*ProgressPopup).Message)
}

func TestEditorRenameOntoDeletedKey(t *testing.T) {
	c := newTestController(t)
	p := openEditorWith(t, c, "[tools]\nnode = \"20\"\ngo = \"1.22\"\n")

	c.Handle(MoveDown{})
	c.Handle(EditorDeleteRow{})
	require.Equal(t, manifest.Deleted, p.Rows()[1].Status)

	c.Handle(MoveUp{})
	c.Handle(EditorStartEdit{})
	c.Handle(EditorNextField{})
	for range "node" {
		c.Handle(EditorBackspace{})
	}
	typeInto(c, "go")
	c.Handle(EditorConfirmEdit{})
	require.False(t, p.Editing)

	cmds := c.Handle(EditorWrite{})
	require.Len(t, cmds, 1)
	write := cmds[0].(WriteEditorCmd)
	out, err := write.Editor.Render()
	require.NoError(t, err)
	assert.Equal(t, "[tools]\ngo = \"20\"\n", out)
}

func TestEditorWriteSkipsNoOpRename(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)

	rename := func(from, to string) {
		c.Handle(EditorStartEdit{})
		c.Handle(EditorNextField{})
		for range from {
			c.Handle(EditorBackspace{})
		}
		typeInto(c, to)
		c.Handle(EditorConfirmEdit{})
	}
	c.Handle(MoveDown{})
	rename("python", "py")
	rename("py", "python")
	require.True(t, p.Dirty())

	assert.Nil(t, c.Handle(EditorWrite{}))
	assert.Equal(t, "No changes to write", c.State.Status.Text)
	assert.Same(t, p, c.State.Popup)
}

func TestEditorAddAndCancel(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)

	c.Handle(EditorAddRow{})
	require.Len(t, p.Rows(), 3)
	assert.Equal(t, ColumnKey, p.Column)
	assert.Equal(t, 2, p.Selected)

	c.Handle(EditorCancelEdit{})
	assert.Len(t, p.Rows(), 2)
	assert.False(t, p.Dirty())

	c.Handle(EditorAddRow{})
	typeInto(c, "go")
	c.Handle(EditorNextField{})
	typeInto(c, "1.22")
	c.Handle(EditorConfirmEdit{})
	row := p.Rows()[2]
	assert.Equal(t, manifest.Row{Key: "go", Value: "1.22", Status: manifest.Added}, row)

	// Cancel outside editing closes the editor.
	c.Handle(EditorCancelEdit{})
	assert.Nil(t, c.State.Popup)
}

func TestEditorRejectsBadKeys(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)

	c.Handle(EditorAddRow{})
	c.Handle(EditorConfirmEdit{})
	assert.True(t, p.Editing)
	assert.Equal(t, "Key cannot be empty", c.State.Status.Text)

	typeInto(c, "node")
	c.Handle(EditorConfirmEdit{})
	assert.True(t, p.Editing)
	assert.Equal(t, "Duplicate key node", c.State.Status.Text)
}

func TestEditorDeleteToggle(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)

	c.Handle(EditorDeleteRow{})
	assert.Equal(t, manifest.Deleted, p.Rows()[0].Status)
	assert.True(t, p.Dirty())

	// Deleted rows cannot be edited.
	c.Handle(EditorStartEdit{})
	assert.False(t, p.Editing)

	c.Handle(EditorDeleteRow{})
	assert.Equal(t, manifest.Unchanged, p.Rows()[0].Status)
	assert.False(t, p.Dirty())

	c.Handle(EditorAddRow{})
	typeInto(c, "go")
	c.Handle(EditorConfirmEdit{})
	c.Handle(EditorDeleteRow{})
	assert.Len(t, p.Rows(), 2)
}

func TestEditorSections(t *testing.T) {
	c := newTestController(t)
	p := openSampleEditor(t, c)
	c.Handle(MoveDown{})

	c.Handle(EditorSwitchSection{})
	assert.Equal(t, manifest.SectionEnv, p.Section)
	assert.Equal(t, 0, p.Selected)
	assert.Empty(t, p.Rows())

	c.Handle(EditorSwitchSection{})
	c.Handle(EditorSwitchSection{})
	assert.Equal(t, manifest.SectionTools, p.Section)
}

func TestScanConfigFlow(t *testing.T) {
	c := newTestController(t)
	c.Handle(OpenScanConfig{})
	p, ok := c.State.Popup.(*ScanConfigPopup)
	require.True(t, ok)
	assert.Equal(t, []string{"~/projects"}, p.Dirs)

	c.Handle(ScanConfigAddDir{})
	for _, r := range "/src" {
		c.Handle(ScanConfigInput{Char: r})
	}
	c.Handle(Confirm{})
	assert.False(t, p.Adding)
	assert.Equal(t, []string{"~/projects", "/src"}, p.Dirs)
	assert.Equal(t, 1, p.Selected)

	// Duplicates and blanks are ignored.
	c.Handle(ScanConfigAddDir{})
	for _, r := range "/src" {
		c.Handle(ScanConfigInput{Char: r})
	}
	c.Handle(Confirm{})
	c.Handle(ScanConfigAddDir{})
	c.Handle(ScanConfigInput{Char: ' '})
	c.Handle(Confirm{})
	assert.Len(t, p.Dirs, 2)

	c.Handle(MoveUp{})
	c.Handle(ScanConfigRemoveDir{})
	assert.Equal(t, []string{"/src"}, p.Dirs)

	for i := 0; i < 20; i++ {
		c.Handle(ScanConfigDepth{Delta: 1})
	}
	assert.Equal(t, 10, p.MaxDepth)

	// The stored settings change only after a successful save.
	assert.Equal(t, []string{"~/projects"}, c.State.Scan.Dirs)

	cmds := c.Handle(SaveScanConfig{})
	require.Equal(t, []Command{SaveScanConfigCmd{Request: "req-1", Dirs: []string{"/src"}, MaxDepth: 10}}, cmds)

	cmds = c.Handle(ScanConfigSaved{Request: "req-1", Dirs: []string{"/src"}, MaxDepth: 10})
	assert.Nil(t, c.State.Popup)
	assert.Equal(t, "Scan settings saved", c.State.Status.Text)
	require.Len(t, cmds, 1)
	scan, ok := cmds[0].(ScanProjectsCmd)
	require.True(t, ok)
	assert.Equal(t, 10, scan.Options.MaxDepth)
	assert.Equal(t, []string{"/src"}, scan.Options.Roots)
}

func TestScanConfigDepthFloor(t *testing.T) {
	c := newTestController(t)
	c.Handle(OpenScanConfig{})
	for i := 0; i < 5; i++ {
		c.Handle(ScanConfigDepth{Delta: -1})
	}
	assert.Equal(t, 1, c.State.Popup.(*ScanConfigPopup).MaxDepth)
}

func TestWizardFlow(t *testing.T) {
	c := newTestController(t)
	loadAll(c)
	c.Handle(SelectTab{Tab: TabBootstrap})

	cmds := c.Handle(Confirm{})
	require.Len(t, cmds, 1)
	detect, ok := cmds[0].(DetectToolsCmd)
	require.True(t, ok)
	assert.Equal(t, testCwd, detect.Dir)
	assert.Len(t, detect.Inventory, 3)
	assert.Equal(t, WizardDetecting, c.State.Wizard.Step)

	c.Handle(WizardDetected{Tools: []model.DetectedTool{
		{Name: "node", Version: "20", Enabled: true},
		{Name: "go", Version: "1.22", Enabled: true},
	}})
	require.Equal(t, WizardReview, c.State.Wizard.Step)

	c.Handle(WizardToggleTool{})
	c.Handle(MoveDown{})
	c.Handle(WizardToggleTool{})
	assert.Nil(t, c.Handle(WizardNextStep{}))
	assert.Equal(t, "Select at least one tool", c.State.Status.Text)
	assert.Equal(t, WizardReview, c.State.Wizard.Step)

	c.Handle(WizardToggleTool{})
	c.Handle(WizardToggleAgentFiles{})
	c.Handle(WizardNextStep{})
	assert.Equal(t, WizardPreview, c.State.Wizard.Step)
	assert.Equal(t, "[tools]\ngo = \"1.22\"\n", c.State.Wizard.Preview)

	c.Handle(WizardPrevStep{})
	assert.Equal(t, WizardReview, c.State.Wizard.Step)
	c.Handle(WizardNextStep{})

	cmds = c.Handle(WizardNextStep{})
	require.Len(t, cmds, 1)
	write, ok := cmds[0].(WriteBootstrapCmd)
	require.True(t, ok)
	assert.True(t, write.AgentFiles)
	assert.Equal(t, WizardWriting, c.State.Wizard.Step)

	cmds = c.Handle(WizardCompleted{Message: "Wrote /work/app/.mise.toml"})
	assert.Equal(t, WizardIdle, c.State.Wizard.Step)
	assert.Len(t, cmds, 2)
}

func TestWizardRefusesExistingManifest(t *testing.T) {
	c := newTestController(t)
	c.Handle(SelectTab{Tab: TabBootstrap})
	c.Handle(WizardNextStep{})
	c.Handle(WizardDetected{Existing: "/work/app/.mise.toml"})

	assert.Equal(t, WizardIdle, c.State.Wizard.Step)
	assert.Contains(t, c.State.Status.Text, "already exists")
}

func TestWizardCancel(t *testing.T) {
	c := newTestController(t)
	c.Handle(SelectTab{Tab: TabBootstrap})
	c.Handle(WizardNextStep{})
	c.Handle(WizardDetected{Tools: []model.DetectedTool{{Name: "node", Enabled: true}}})

	c.Handle(CancelPopup{})
	assert.Equal(t, WizardIdle, c.State.Wizard.Step)

	c.Handle(WizardNextStep{})
	c.Handle(OperationFailed{Message: "boom"})
	assert.Equal(t, WizardIdle, c.State.Wizard.Step)
}
