package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"misetui/internal/app"
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Sidebar  key.Binding
	Content  key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	Quit     key.Binding
	Search   key.Binding
	Help     key.Binding
	Refresh  key.Binding

	Install     key.Binding
	Use         key.Binding
	Update      key.Binding
	UpgradeAll  key.Binding
	Uninstall   key.Binding
	Detail      key.Binding
	Prune       key.Binding
	Trust       key.Binding
	Sort        key.Binding
	Yank        key.Binding
	Edit        key.Binding
	InstallIn   key.Binding
	UpdatePins  key.Binding
	JumpDrift   key.Binding
	CheckDrift  key.Binding
	ScanConfig  key.Binding
	TabNumbers  []key.Binding
	Backspace   key.Binding
	Space       key.Binding
	Add         key.Binding
	Delete      key.Binding
	Diff        key.Binding
	Write       key.Binding
	NextField   key.Binding
	DepthUp     key.Binding
	DepthDown   key.Binding
	WizardNext  key.Binding
	WizardPrev  key.Binding
	AgentFiles  key.Binding
	ConfirmYes  key.Binding
	ConfirmNo   key.Binding
	ArrowUp     key.Binding
	ArrowDown   key.Binding
	ForceQuit   key.Binding
	EditorClose key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/↑", "move up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/↓", "move down")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Sidebar:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("h/←", "focus sidebar")),
	Content:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("l/→", "focus content")),
	NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
	PrevTab:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous tab")),
	Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm / default action")),
	Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close popup / clear search")),
	Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),

	Install:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "install (Registry)")),
	Use:        key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "use globally (Registry) / upgrade all (Outdated)")),
	Update:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update tool")),
	UpgradeAll: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "upgrade all (Outdated)")),
	Uninstall:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "uninstall (Tools)")),
	Detail:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "tool detail")),
	Prune:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prune unused versions")),
	Trust:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trust config (Config)")),
	Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle sort column")),
	Yank:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy selected row")),
	Edit:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit manifest (Projects)")),
	InstallIn:  key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "install missing tools (Projects)")),
	UpdatePins: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "update tool pins (Projects)")),
	JumpDrift:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "jump to current project")),
	CheckDrift: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "re-check drift")),
	ScanConfig: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "scan settings")),
	TabNumbers: tabNumberBindings(),

	Backspace:   key.NewBinding(key.WithKeys("backspace")),
	Space:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete / restore")),
	Diff:        key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "toggle diff")),
	Write:       key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write")),
	NextField:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch field / section")),
	DepthUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "deeper scan")),
	DepthDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shallower scan")),
	WizardNext:  key.NewBinding(key.WithKeys("n", "enter"), key.WithHelp("n/enter", "next step")),
	WizardPrev:  key.NewBinding(key.WithKeys("p", "backspace"), key.WithHelp("p", "previous step")),
	AgentFiles:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle agent files")),
	ConfirmYes:  key.NewBinding(key.WithKeys("y")),
	ConfirmNo:   key.NewBinding(key.WithKeys("n")),
	ArrowUp:     key.NewBinding(key.WithKeys("up")),
	ArrowDown:   key.NewBinding(key.WithKeys("down")),
	ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
	EditorClose: key.NewBinding(key.WithKeys("esc", "q")),
}

func tabNumberBindings() []key.Binding {
	out := make([]key.Binding, len(app.Tabs))
	for i := range app.Tabs {
		k := string(rune('1' + i))
		if i == 9 {
			k = "0"
		}
		out[i] = key.NewBinding(key.WithKeys(k))
	}
	return out
}

// actionsFor translates a key press into actions for the current mode. The
// mode is picked in order: editor, version picker, scan settings, wizard,
// other popups, search, normal.
func actionsFor(s *app.State, msg tea.KeyMsg) []app.Action {
	switch p := s.Popup.(type) {
	case *app.EditorPopup:
		if p.Editing {
			return editingKeys(msg)
		}
		return one(editorKeys(msg))
	case *app.PickerPopup:
		return pickerKeys(msg)
	case *app.ScanConfigPopup:
		if p.Adding {
			return addingDirKeys(msg)
		}
		return one(scanConfigKeys(msg))
	case nil:
		switch {
		case s.Tab == app.TabBootstrap && s.Wizard.Active():
			return one(wizardKeys(msg))
		case s.SearchActive:
			return searchKeys(msg)
		default:
			return one(normalKeys(msg))
		}
	default:
		return one(popupKeys(p, msg))
	}
}

func one(a app.Action) []app.Action {
	if a == nil {
		return nil
	}
	return []app.Action{a}
}

// moveKeys handles navigation shared by every list-like mode.
func moveKeys(msg tea.KeyMsg, arrowsOnly bool) app.Action {
	up, down := keys.Up, keys.Down
	if arrowsOnly {
		up, down = keys.ArrowUp, keys.ArrowDown
	}
	switch {
	case key.Matches(msg, up):
		return app.MoveUp{}
	case key.Matches(msg, down):
		return app.MoveDown{}
	case key.Matches(msg, keys.PageUp):
		return app.PageUp{}
	case key.Matches(msg, keys.PageDown):
		return app.PageDown{}
	}
	return nil
}

// textInput turns typed runes into one action per rune.
func textInput(msg tea.KeyMsg, input func(rune) app.Action) []app.Action {
	if msg.Type != tea.KeyRunes && msg.Type != tea.KeySpace {
		return nil
	}
	runes := msg.Runes
	if msg.Type == tea.KeySpace {
		runes = []rune{' '}
	}
	out := make([]app.Action, 0, len(runes))
	for _, r := range runes {
		out = append(out, input(r))
	}
	return out
}

func normalKeys(msg tea.KeyMsg) app.Action {
	if a := moveKeys(msg, false); a != nil {
		return a
	}
	for i, b := range keys.TabNumbers {
		if key.Matches(msg, b) {
			return app.SelectTab{Tab: app.Tabs[i]}
		}
	}
	switch {
	case key.Matches(msg, keys.Quit):
		return app.Quit{}
	case key.Matches(msg, keys.Sidebar):
		return app.FocusSidebar{}
	case key.Matches(msg, keys.Content):
		return app.FocusContent{}
	case key.Matches(msg, keys.NextTab):
		return app.NextTab{}
	case key.Matches(msg, keys.PrevTab):
		return app.PrevTab{}
	case key.Matches(msg, keys.Confirm):
		return app.Confirm{}
	case key.Matches(msg, keys.Cancel):
		return app.CancelPopup{}
	case key.Matches(msg, keys.Search):
		return app.EnterSearch{}
	case key.Matches(msg, keys.Help):
		return app.ShowHelp{}
	case key.Matches(msg, keys.Refresh):
		return app.Refresh{}
	case key.Matches(msg, keys.Install):
		return app.InstallTool{}
	case key.Matches(msg, keys.Use):
		return app.UseTool{}
	case key.Matches(msg, keys.Update):
		return app.UpdateTool{}
	case key.Matches(msg, keys.UpgradeAll):
		return app.UpgradeAll{}
	case key.Matches(msg, keys.Uninstall):
		return app.UninstallTool{}
	case key.Matches(msg, keys.Detail):
		return app.ShowToolDetail{}
	case key.Matches(msg, keys.Prune):
		return app.PruneTool{}
	case key.Matches(msg, keys.Trust):
		return app.TrustConfig{}
	case key.Matches(msg, keys.Sort):
		return app.CycleSortOrder{}
	case key.Matches(msg, keys.Yank):
		return app.Yank{}
	case key.Matches(msg, keys.Edit):
		return app.OpenEditor{}
	case key.Matches(msg, keys.InstallIn):
		return app.InstallProjectTools{}
	case key.Matches(msg, keys.UpdatePins):
		return app.UpdateProjectPins{}
	case key.Matches(msg, keys.JumpDrift):
		return app.JumpToDriftProject{}
	case key.Matches(msg, keys.CheckDrift):
		return app.CheckDrift{}
	case key.Matches(msg, keys.ScanConfig):
		return app.OpenScanConfig{}
	}
	// Unbound characters do nothing; use / to search.
	return nil
}

func searchKeys(msg tea.KeyMsg) []app.Action {
	if a := moveKeys(msg, true); a != nil {
		return one(a)
	}
	switch {
	case key.Matches(msg, keys.Confirm):
		return one(app.ExitSearch{})
	case key.Matches(msg, keys.Cancel):
		return one(app.CancelPopup{})
	case key.Matches(msg, keys.Backspace):
		return one(app.SearchBackspace{})
	}
	return textInput(msg, func(r rune) app.Action { return app.SearchInput{Char: r} })
}

// popupKeys serves the confirm, progress, detail and help popups.
func popupKeys(p app.Popup, msg tea.KeyMsg) app.Action {
	if a := moveKeys(msg, false); a != nil {
		return a
	}
	if _, ok := p.(*app.ConfirmPopup); ok {
		switch {
		case key.Matches(msg, keys.ConfirmYes):
			return app.Confirm{}
		case key.Matches(msg, keys.ConfirmNo):
			return app.CancelPopup{}
		}
	}
	switch {
	case key.Matches(msg, keys.Confirm):
		return app.Confirm{}
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		return app.CancelPopup{}
	}
	return nil
}

func pickerKeys(msg tea.KeyMsg) []app.Action {
	if a := moveKeys(msg, false); a != nil {
		return one(a)
	}
	switch {
	case key.Matches(msg, keys.Confirm):
		return one(app.Confirm{})
	case key.Matches(msg, keys.Cancel):
		return one(app.CancelPopup{})
	case key.Matches(msg, keys.Backspace):
		return one(app.PopupSearchBackspace{})
	}
	return textInput(msg, func(r rune) app.Action { return app.PopupSearchInput{Char: r} })
}

func scanConfigKeys(msg tea.KeyMsg) app.Action {
	if a := moveKeys(msg, false); a != nil {
		return a
	}
	switch {
	case key.Matches(msg, keys.Add):
		return app.ScanConfigAddDir{}
	case key.Matches(msg, keys.Delete):
		return app.ScanConfigRemoveDir{}
	case key.Matches(msg, keys.DepthUp):
		return app.ScanConfigDepth{Delta: 1}
	case key.Matches(msg, keys.DepthDown):
		return app.ScanConfigDepth{Delta: -1}
	case key.Matches(msg, keys.Confirm):
		return app.Confirm{}
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		return app.CancelPopup{}
	}
	return nil
}

func addingDirKeys(msg tea.KeyMsg) []app.Action {
	switch {
	case key.Matches(msg, keys.Confirm):
		return one(app.Confirm{})
	case key.Matches(msg, keys.Cancel):
		return one(app.CancelPopup{})
	case key.Matches(msg, keys.Backspace):
		return one(app.ScanConfigBackspace{})
	}
	return textInput(msg, func(r rune) app.Action { return app.ScanConfigInput{Char: r} })
}

func editorKeys(msg tea.KeyMsg) app.Action {
	if a := moveKeys(msg, false); a != nil {
		return a
	}
	switch {
	case key.Matches(msg, keys.NextField):
		return app.EditorSwitchSection{}
	case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.Edit):
		return app.EditorStartEdit{}
	case key.Matches(msg, keys.Add):
		return app.EditorAddRow{}
	case key.Matches(msg, keys.Delete):
		return app.EditorDeleteRow{}
	case key.Matches(msg, keys.Diff):
		return app.EditorToggleDiff{}
	case key.Matches(msg, keys.Write):
		return app.EditorWrite{}
	case key.Matches(msg, keys.EditorClose):
		return app.EditorClose{}
	}
	return nil
}

func editingKeys(msg tea.KeyMsg) []app.Action {
	switch {
	case key.Matches(msg, keys.Confirm):
		return one(app.EditorConfirmEdit{})
	case key.Matches(msg, keys.Cancel):
		return one(app.EditorCancelEdit{})
	case key.Matches(msg, keys.NextField):
		return one(app.EditorNextField{})
	case key.Matches(msg, keys.Backspace):
		return one(app.EditorBackspace{})
	}
	return textInput(msg, func(r rune) app.Action { return app.EditorInput{Char: r} })
}

func wizardKeys(msg tea.KeyMsg) app.Action {
	if a := moveKeys(msg, false); a != nil {
		return a
	}
	switch {
	case key.Matches(msg, keys.Space):
		return app.WizardToggleTool{}
	case key.Matches(msg, keys.AgentFiles):
		return app.WizardToggleAgentFiles{}
	case key.Matches(msg, keys.WizardNext):
		return app.WizardNextStep{}
	case key.Matches(msg, keys.WizardPrev):
		return app.WizardPrevStep{}
	case key.Matches(msg, keys.Cancel), key.Matches(msg, keys.Quit):
		return app.CancelPopup{}
	}
	return nil
}

// mouseAction translates a mouse event. Only left presses and the wheel are
// used.
func mouseAction(msg tea.MouseMsg) app.Action {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return app.MoveUp{}
	case tea.MouseButtonWheelDown:
		return app.MoveDown{}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress {
			return app.MouseClick{X: msg.X, Y: msg.Y}
		}
	}
	return nil
}
