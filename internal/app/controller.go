// Package app is the dashboard's controller. Controller.Handle is the single
// reducer: it consumes one Action at a time, mutates State, and returns the
// Commands the dispatcher should run. It never blocks and never performs I/O.
package app

import (
	"strings"

	"github.com/google/uuid"

	"misetui/internal/config"
	"misetui/internal/filter"
	"misetui/internal/logging"
	"misetui/internal/model"
	"misetui/internal/scanner"
)

// Controller owns State.
type Controller struct {
	State *State

	newID func() RequestID
	quit  bool
}

// New creates a controller for the given configuration. cwd is the directory
// watched for drift and offered to the bootstrap wizard.
func New(cfg *config.Config, cwd string) *Controller {
	scan := cfg.Scan
	scan.Dirs = append([]string(nil), cfg.Scan.Dirs...)
	scan.MaxDepth = config.ClampDepth(scan.MaxDepth)
	return &Controller{
		State: NewState(scan, cwd),
		newID: func() RequestID { return RequestID(uuid.NewString()) },
	}
}

// Init returns the commands issued at startup: every fetch plus a drift check.
func (c *Controller) Init() []Command {
	return append(fetchAll(), CheckDriftCmd{Dir: c.State.Cwd})
}

// Quitting reports whether the user asked to leave.
func (c *Controller) Quitting() bool {
	return c.quit
}

// Handle applies one action.
func (c *Controller) Handle(a Action) []Command {
	s := c.State
	switch a := a.(type) {
	case Quit:
		c.handleQuit()
	case MoveUp:
		c.move(-1)
	case MoveDown:
		c.move(1)
	case PageUp:
		c.move(-pageSize)
	case PageDown:
		c.move(pageSize)
	case NextTab:
		c.cycleTab(1)
	case PrevTab:
		c.cycleTab(-1)
	case FocusSidebar:
		s.Focus = PaneSidebar
	case FocusContent:
		s.Focus = PaneContent
	case SelectTab:
		if s.Popup == nil {
			c.switchTab(a.Tab)
		}
	case MouseClick:
		c.click(a.X, a.Y)

	case EnterSearch:
		if s.Popup == nil {
			s.SearchActive = true
			s.Query = ""
			c.refilterAll()
		}
	case ExitSearch:
		s.SearchActive = false
	case SearchInput:
		if s.SearchActive {
			s.Query += string(a.Char)
			c.refilterAll()
			c.resetSelection()
		}
	case SearchBackspace:
		if s.SearchActive {
			s.Query = dropLastRune(s.Query)
			c.refilterAll()
			c.resetSelection()
		}
	case PopupSearchInput:
		if p, ok := s.Popup.(*PickerPopup); ok {
			p.Search += string(a.Char)
			p.refilter()
		}
	case PopupSearchBackspace:
		if p, ok := s.Popup.(*PickerPopup); ok {
			p.Search = dropLastRune(p.Search)
			p.refilter()
		}

	case ToolsLoaded:
		s.Tools.Replace(a.Tools, s.Query)
		return c.rescan(a.Tools)
	case RegistryLoaded:
		s.Registry.Replace(a.Entries, s.Query)
	case ConfigLoaded:
		s.Configs.Replace(a.Configs, s.Query)
	case DoctorLoaded:
		s.Doctor.Replace(a.Lines, s.Query)
	case OutdatedLoaded:
		s.OutdatedByName = make(map[string]model.OutdatedTool, len(a.Tools))
		for _, o := range a.Tools {
			s.OutdatedByName[o.Name] = o
		}
		s.Outdated.Replace(a.Tools, s.Query)
	case TasksLoaded:
		s.Tasks.Replace(a.Tasks, s.Query)
	case EnvLoaded:
		s.Env.Replace(a.Vars, s.Query)
	case SettingsLoaded:
		s.Settings.Replace(a.Settings, s.Query)
	case ProjectsLoaded:
		s.Projects.Replace(a.Projects, s.Query)
	case LoadFailed:
		c.loadFailed(a.Tab)
		s.setStatus("Error: "+a.Message, outcomeTTL)

	case VersionsLoaded:
		c.versionsLoaded(a)
	case ToolInfoLoaded:
		if c.awaiting(a.Request) {
			s.Popup = &DetailPopup{Title: a.Tool, Text: a.Info}
		}
	case PruneLoaded:
		c.pruneLoaded(a)
	case EditorLoaded:
		if c.awaiting(a.Request) && a.Editor != nil {
			s.Popup = &EditorPopup{Editor: a.Editor}
		}
	case ScanConfigSaved:
		return c.scanConfigSaved(a)

	case InstallTool:
		return c.installTool(PickInstall)
	case UseTool:
		if s.Popup == nil && s.Tab == TabOutdated {
			return c.upgradeAll()
		}
		return c.installTool(PickUseGlobal)
	case UninstallTool:
		c.uninstallTool()
	case UpdateTool:
		return c.updateTool()
	case UpgradeAll:
		return c.upgradeAll()
	case RunTask:
		c.runTask()
	case PruneTool:
		return c.pruneTool()
	case TrustConfig:
		c.trustConfig()
	case ShowToolDetail:
		return c.showToolDetail()
	case InstallProjectTools:
		c.confirmProject(a.Path, "Install missing tools in %s?", func(p string) ConfirmAction {
			return ConfirmInstallIn{Path: p}
		})
	case UpdateProjectPins:
		c.confirmProject(a.Path, "Update tool pins in %s?", func(p string) ConfirmAction {
			return ConfirmUpgradePins{Path: p}
		})
	case CycleSortOrder:
		if s.Popup == nil {
			c.cycleSort()
		}
	case Refresh:
		return c.refresh()
	case Confirm:
		return c.confirm()
	case CancelPopup:
		c.cancel()
	case ShowHelp:
		if s.Popup == nil {
			s.Popup = &HelpPopup{}
		}
	case Yank:
		return c.yank()

	case OperationComplete:
		s.Popup = nil
		s.setStatus(a.Message, outcomeTTL)
		return append(c.reload(), CheckDriftCmd{Dir: s.Cwd})
	case OperationFailed:
		s.Popup = nil
		s.setStatus("Error: "+a.Message, outcomeTTL)
		if s.Wizard.Step == WizardDetecting || s.Wizard.Step == WizardWriting {
			s.Wizard = Wizard{}
		}
	case StatusNotice:
		s.setStatus(a.Message, noticeTTL)
	case Tick:
		c.tick()

	case CheckDrift:
		s.Drift = model.DriftChecking
		return []Command{CheckDriftCmd{Dir: s.Cwd}}
	case DriftChecked:
		s.Drift = a.State
	case JumpToDriftProject:
		c.jumpToDriftProject()

	case WizardDetected:
		c.wizardDetected(a)
	case WizardToggleTool:
		c.wizardToggleTool()
	case WizardToggleAgentFiles:
		if s.Wizard.Step == WizardReview {
			s.Wizard.AgentFiles = !s.Wizard.AgentFiles
		}
	case WizardNextStep:
		return c.wizardNext()
	case WizardPrevStep:
		c.wizardPrev()
	case WizardCompleted:
		s.Wizard = Wizard{}
		s.setStatus(a.Message, outcomeTTL)
		return []Command{c.scanCommand(), CheckDriftCmd{Dir: s.Cwd}}

	case OpenEditor:
		return c.openEditor(a.Path)
	case EditorSwitchSection:
		c.editorSwitchSection()
	case EditorStartEdit:
		c.editorStartEdit()
	case EditorNextField:
		c.editorNextField()
	case EditorInput:
		c.editorInput(a.Char)
	case EditorBackspace:
		c.editorBackspace()
	case EditorConfirmEdit:
		c.editorConfirmEdit()
	case EditorCancelEdit:
		c.editorCancelEdit()
	case EditorDeleteRow:
		c.editorDeleteRow()
	case EditorAddRow:
		c.editorAddRow()
	case EditorToggleDiff:
		c.editorToggleDiff()
	case EditorWrite:
		return c.editorWrite()
	case EditorClose:
		if _, ok := s.Popup.(*EditorPopup); ok {
			s.Popup = nil
		}

	case OpenScanConfig:
		c.openScanConfig()
	case ScanConfigAddDir:
		c.scanConfigAddDir()
	case ScanConfigRemoveDir:
		c.scanConfigRemoveDir()
	case ScanConfigInput:
		c.scanConfigInput(a.Char)
	case ScanConfigBackspace:
		c.scanConfigBackspace()
	case ScanConfigDepth:
		c.scanConfigDepth(a.Delta)
	case SaveScanConfig:
		return c.saveScanConfig()
	}
	return nil
}

func (c *Controller) handleQuit() {
	s := c.State
	switch {
	case s.Popup != nil:
		s.Popup = nil
	case s.SearchActive:
		c.clearSearch()
	default:
		c.quit = true
	}
}

func (c *Controller) cancel() {
	s := c.State
	switch {
	case s.Popup != nil:
		s.Popup = nil
	case s.SearchActive:
		c.clearSearch()
	case s.Tab == TabBootstrap && s.Wizard.Active():
		s.Wizard = Wizard{}
	}
}

func (c *Controller) clearSearch() {
	c.State.SearchActive = false
	c.State.Query = ""
	c.refilterAll()
}

// awaiting reports whether the visible popup is the Progress popup of id.
// Completions for anything else are stale and dropped.
func (c *Controller) awaiting(id RequestID) bool {
	p, ok := c.State.Popup.(*ProgressPopup)
	if ok && p.Request == id {
		return true
	}
	logging.Debug("dropping stale completion", "request", string(id))
	return false
}

// progress opens a Progress popup for a new request and returns its id.
func (c *Controller) progress(message string, purpose Purpose) RequestID {
	id := c.newID()
	c.State.Popup = &ProgressPopup{Message: message, Request: id, Purpose: purpose}
	return id
}

// refresh marks every collection loading and refetches them.
func (c *Controller) refresh() []Command {
	c.State.setStatus("Refreshing...", refreshTTL)
	return c.reload()
}

func (c *Controller) reload() []Command {
	s := c.State
	s.Tools.State = filter.Loading
	s.Registry.State = filter.Loading
	s.Configs.State = filter.Loading
	s.Doctor.State = filter.Loading
	s.Outdated.State = filter.Loading
	s.Tasks.State = filter.Loading
	s.Env.State = filter.Loading
	s.Settings.State = filter.Loading
	return fetchAll()
}

func (c *Controller) loadFailed(t Tab) {
	s := c.State
	switch t {
	case TabTools:
		s.Tools.State = filter.Loaded
	case TabRegistry:
		s.Registry.State = filter.Loaded
	case TabConfig:
		s.Configs.State = filter.Loaded
	case TabDoctor:
		s.Doctor.State = filter.Loaded
	case TabOutdated:
		s.Outdated.State = filter.Loaded
	case TabTasks:
		s.Tasks.State = filter.Loaded
	case TabEnvironment:
		s.Env.State = filter.Loaded
	case TabSettings:
		s.Settings.State = filter.Loaded
	case TabProjects:
		s.Projects.State = filter.Loaded
	}
}

// rescan re-grades projects against a fresh inventory.
func (c *Controller) rescan(tools []model.InstalledTool) []Command {
	c.State.Projects.State = filter.Loading
	return []Command{ScanProjectsCmd{
		Options: c.State.ScanOptions(),
		Tools:   append([]model.InstalledTool(nil), tools...),
	}}
}

// scanCommand rescans with the inventory already loaded.
func (c *Controller) scanCommand() Command {
	return c.rescan(c.State.Tools.Items)[0]
}

func (c *Controller) tick() {
	s := c.State
	s.Spinner = (s.Spinner + 1) % SpinnerFrames
	if s.Status == nil {
		return
	}
	s.Status.TTL--
	if s.Status.TTL <= 0 {
		s.Status = nil
	}
}

func (c *Controller) move(delta int) {
	s := c.State
	if s.Popup != nil {
		switch p := s.Popup.(type) {
		case *PickerPopup:
			p.Selected = clampIndex(p.Selected+delta, len(p.Filtered))
		case *DetailPopup:
			p.Scroll = clampIndex(p.Scroll+delta, p.Lines())
		case *EditorPopup:
			if !p.Editing {
				p.Selected = clampIndex(p.Selected+delta, len(p.Rows()))
			}
		case *ScanConfigPopup:
			if !p.Adding {
				p.Selected = clampIndex(p.Selected+delta, len(p.Dirs))
			}
		}
		return
	}

	if s.Focus == PaneSidebar {
		c.switchTab(Tabs[clampIndex(s.Sidebar+delta, len(Tabs))])
		return
	}

	switch s.Tab {
	case TabTools:
		moveBy(s.Tools, delta)
	case TabOutdated:
		moveBy(s.Outdated, delta)
	case TabRegistry:
		moveBy(s.Registry, delta)
	case TabTasks:
		moveBy(s.Tasks, delta)
	case TabEnvironment:
		moveBy(s.Env, delta)
	case TabSettings:
		moveBy(s.Settings, delta)
	case TabConfig:
		moveBy(s.Configs, delta)
	case TabDoctor:
		moveBy(s.Doctor, delta)
	case TabProjects:
		moveBy(s.Projects, delta)
	case TabBootstrap:
		if s.Wizard.Step == WizardReview {
			s.Wizard.Selected = clampIndex(s.Wizard.Selected+delta, len(s.Wizard.Tools))
		}
	}
}

func moveBy[T any](c *filter.Collection[T], delta int) {
	switch {
	case delta == -1:
		c.MoveUp()
	case delta == 1:
		c.MoveDown()
	case delta < 0:
		c.PageUp(-delta)
	default:
		c.PageDown(delta)
	}
}

func clampIndex(i, n int) int {
	switch {
	case n == 0 || i < 0:
		return 0
	case i >= n:
		return n - 1
	default:
		return i
	}
}

func (c *Controller) cycleTab(delta int) {
	if c.State.Popup != nil {
		return
	}
	n := len(Tabs)
	i := ((c.State.Tab.index()+delta)%n + n) % n
	c.switchTab(Tabs[i])
}

func (c *Controller) switchTab(t Tab) {
	s := c.State
	s.Tab = t
	s.Sidebar = t.index()
	c.resetSort()
}

func (c *Controller) click(x, y int) {
	s := c.State
	if s.Popup != nil {
		return
	}
	if x >= SidebarWidth {
		s.Focus = PaneContent
		return
	}
	if i := y - sidebarTop; i >= 0 && i < len(Tabs) {
		c.switchTab(Tabs[i])
	}
}

func (c *Controller) refilterAll() {
	s := c.State
	q := s.Query
	s.Tools.Refilter(q)
	s.Registry.Refilter(q)
	s.Configs.Refilter(q)
	s.Doctor.Refilter(q)
	s.Outdated.Refilter(q)
	s.Tasks.Refilter(q)
	s.Env.Refilter(q)
	s.Settings.Refilter(q)
	s.Projects.Refilter(q)
}

// resetSelection moves the current tab's cursor to the best match.
func (c *Controller) resetSelection() {
	s := c.State
	switch s.Tab {
	case TabTools:
		s.Tools.Select(0)
	case TabOutdated:
		s.Outdated.Select(0)
	case TabRegistry:
		s.Registry.Select(0)
	case TabTasks:
		s.Tasks.Select(0)
	case TabEnvironment:
		s.Env.Select(0)
	case TabSettings:
		s.Settings.Select(0)
	case TabConfig:
		s.Configs.Select(0)
	case TabDoctor:
		s.Doctor.Select(0)
	case TabProjects:
		s.Projects.Select(0)
	}
}

func (c *Controller) jumpToDriftProject() {
	s := c.State
	if s.Popup != nil {
		return
	}
	if scanner.Find(s.Projects.Items, s.Cwd) < 0 {
		s.setStatus("No scanned project at "+s.Cwd+"; press c to add its parent to the scan roots", outcomeTTL)
		return
	}
	c.switchTab(TabProjects)
	s.Focus = PaneContent
	if !selectProject(s.Projects, s.Cwd) {
		// Hidden by the search: clear it and look again.
		c.clearSearch()
		selectProject(s.Projects, s.Cwd)
	}
}

func selectProject(c *filter.Collection[model.Project], path string) bool {
	for i := 0; i < c.Len(); i++ {
		if p, _ := c.At(i); p.Path == path {
			c.Select(i)
			return true
		}
	}
	return false
}

// yank copies a short identifier of the selected row.
func (c *Controller) yank() []Command {
	s := c.State
	if s.Popup != nil || s.Focus != PaneContent {
		return nil
	}
	var text string
	switch s.Tab {
	case TabTools:
		if t, ok := s.Tools.Current(); ok {
			text = t.Spec()
		}
	case TabOutdated:
		if o, ok := s.Outdated.Current(); ok {
			text = o.Name + "@" + o.Latest
		}
	case TabRegistry:
		if e, ok := s.Registry.Current(); ok {
			text = e.Short
		}
	case TabTasks:
		if t, ok := s.Tasks.Current(); ok {
			text = t.Name
		}
	case TabEnvironment:
		if e, ok := s.Env.Current(); ok {
			text = e.Name + "=" + e.Value
		}
	case TabSettings:
		if st, ok := s.Settings.Current(); ok {
			text = st.Key
		}
	case TabConfig:
		if cf, ok := s.Configs.Current(); ok {
			text = cf.Path
		}
	case TabDoctor:
		text, _ = s.Doctor.Current()
	case TabProjects:
		if p, ok := s.Projects.Current(); ok {
			text = p.Path
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return []Command{CopyCmd{Text: text}}
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}
