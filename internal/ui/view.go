package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"misetui/internal/app"
	"misetui/internal/filter"
	"misetui/internal/manifest"
	"misetui/internal/model"
)

// Layout rows: title, search line, blank, then the bordered panes.
const (
	headerHeight = 3
	footerHeight = 1
	minPopupW    = 40
)

var spinnerFrames = spinner.MiniDot.Frames

func (m *Model) spinnerFrame() string {
	s := m.ctrl.State
	return spinnerFrames[s.Spinner%len(spinnerFrames)]
}

// View renders the dashboard, or the open popup centered over a blank screen.
func (m *Model) View() string {
	if m.ctrl.Quitting() {
		return ""
	}
	s := m.ctrl.State
	if s.Popup != nil {
		box := m.styles.Modal.Render(m.renderPopup(s.Popup))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	bodyHeight := max(m.height-headerHeight-footerHeight, 4)
	sidebar := m.renderSidebar(bodyHeight)
	contentWidth := max(m.width-lipgloss.Width(sidebar), 20)
	content := m.renderContent(contentWidth, bodyHeight)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content),
		m.renderFooter(),
	)
}

func (m *Model) renderHeader() string {
	s := m.ctrl.State
	title := m.styles.Title.Render("mise")
	drift := m.styles.DriftStyle(s.Drift).Render("● " + s.Drift.String())
	line := title + "  " + drift
	if s.Loading() {
		line += "  " + m.styles.Spinner.Render(m.spinnerFrame()) + m.styles.Dim.Render(" loading")
	}

	search := ""
	switch {
	case s.SearchActive:
		search = m.styles.Search.Render("/ " + s.Query + "▏")
	case s.Query != "":
		search = m.styles.Dim.Render("/ " + s.Query)
	}
	return line + "\n" + search + "\n"
}

func (m *Model) renderSidebar(height int) string {
	s := m.ctrl.State
	var lines []string
	for i, t := range app.Tabs {
		label := fmt.Sprintf("%d %s", (i+1)%10, t)
		if t == s.Tab {
			lines = append(lines, m.styles.SidebarActive.Render("▸"+label))
		} else {
			lines = append(lines, m.styles.SidebarTab.Render(" "+label))
		}
	}
	style := m.styles.Sidebar
	if s.Focus == app.PaneSidebar {
		style = m.styles.SidebarFocused
	}
	return style.Width(app.SidebarWidth - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderContent(width, height int) string {
	s := m.ctrl.State
	innerW := width - 2
	innerH := height - 2

	var body string
	switch s.Tab {
	case app.TabBootstrap:
		body = m.renderWizard(innerW)
	default:
		body = m.renderTable(m.tableFor(s, innerH-1), innerW)
	}

	style := m.styles.Content
	if s.Focus == app.PaneContent {
		style = m.styles.ContentFocused
	}
	return style.Width(innerW).Height(innerH).MaxHeight(height).Render(body)
}

func (m *Model) renderFooter() string {
	s := m.ctrl.State
	if s.Status != nil {
		text := s.Status.Text
		if strings.HasPrefix(text, "Error") {
			return m.styles.StatusBar.Render(m.styles.Error.Render(text))
		}
		return m.styles.StatusBar.Render(text)
	}
	return m.styles.StatusBar.Render(hintsFor(s))
}

func hintsFor(s *app.State) string {
	if s.SearchActive {
		return "type to filter · enter keep · esc clear"
	}
	switch s.Tab {
	case app.TabTools:
		return "u update · d uninstall · v detail · p prune · s sort · ? help"
	case app.TabOutdated:
		return "u update · U upgrade all · s sort · ? help"
	case app.TabRegistry:
		return "i install · U use globally · / search · ? help"
	case app.TabTasks:
		return "enter run · s sort · ? help"
	case app.TabConfig:
		return "t trust · y copy path · ? help"
	case app.TabProjects:
		return "e edit · I install · X update pins · P current · c scan settings · ? help"
	case app.TabBootstrap:
		return "enter start · ? help"
	default:
		return "r refresh · / search · ? help · q quit"
	}
}

// cell is one table cell. Styled cells keep their own color; plain cells take
// the row style.
type cell struct {
	text  string
	style *lipgloss.Style
}

func plain(texts ...string) []cell {
	out := make([]cell, len(texts))
	for i, t := range texts {
		out[i] = cell{text: t}
	}
	return out
}

// table is the visible window of one collection.
type table struct {
	headers    []string
	sortColumn int
	sortArrow  string
	rows       [][]cell
	highlights [][]int
	selected   int // within rows, -1 when nothing is selected
	state      filter.LoadState
	total      int
	empty      string
}

func windowStart(selected, total, height int) int {
	if height <= 0 || total <= height || selected < height/2 {
		return 0
	}
	return min(selected-height/2, total-height)
}

func tableOf[T any](c *filter.Collection[T], height int, cells func(T) []cell) table {
	t := table{state: c.State, total: c.Len(), selected: -1, sortColumn: -1}
	start := windowStart(c.Selected, c.Len(), height)
	for i := start; i < c.Len() && i < start+height; i++ {
		item, _ := c.At(i)
		t.rows = append(t.rows, cells(item))
		t.highlights = append(t.highlights, c.Highlight(i))
		if i == c.Selected {
			t.selected = i - start
		}
	}
	if c.Sorted() {
		t.sortColumn = 0
	}
	return t
}

func (m *Model) tableFor(s *app.State, height int) table {
	var t table
	switch s.Tab {
	case app.TabTools:
		t = tableOf(s.Tools, height, func(tool model.InstalledTool) []cell {
			version := tool.Version
			if o, ok := s.OutdatedByName[tool.Name]; ok && o.Latest != "" && o.Latest != tool.Version {
				version += " ↑" + o.Latest
			}
			active := ""
			if tool.Active {
				active = "✓"
			}
			return plain(tool.Name, version, active, tool.Source)
		})
		t.empty = "No tools installed"
	case app.TabOutdated:
		t = tableOf(s.Outdated, height, func(o model.OutdatedTool) []cell {
			return plain(o.Name, o.Current, o.Latest, o.Requested)
		})
		t.empty = "Everything is up to date"
	case app.TabRegistry:
		t = tableOf(s.Registry, height, func(e model.RegistryEntry) []cell {
			return plain(e.Short, e.Description)
		})
	case app.TabTasks:
		t = tableOf(s.Tasks, height, func(task model.Task) []cell {
			return plain(task.Name, task.Description, task.Source)
		})
		t.empty = "No tasks defined"
	case app.TabEnvironment:
		t = tableOf(s.Env, height, func(v model.EnvVar) []cell {
			return plain(v.Name, v.Value, v.Source, v.Tool)
		})
	case app.TabSettings:
		t = tableOf(s.Settings, height, func(st model.Setting) []cell {
			return plain(st.Key, st.Value, st.ValueType)
		})
	case app.TabConfig:
		t = tableOf(s.Configs, height+1, func(c model.ConfigFile) []cell {
			return plain(c.Path, strings.Join(c.Tools, ", "))
		})
		t.empty = "No configuration files"
	case app.TabDoctor:
		t = tableOf(s.Doctor, height+1, func(line string) []cell {
			return plain(line)
		})
	case app.TabProjects:
		t = tableOf(s.Projects, height, func(p model.Project) []cell {
			hs := m.styles.HealthStyle(p.Health)
			return []cell{{text: p.Name}, {text: p.Health.String(), style: &hs}, {text: p.Path}}
		})
		t.empty = "No projects found · c to change scan settings"
	}

	t.headers = s.Tab.Columns()
	if t.sortColumn >= 0 {
		t.sortColumn = s.Sort.Column
		t.sortArrow = "▲"
		if !s.Sort.Ascending {
			t.sortArrow = "▼"
		}
	}
	if t.empty == "" {
		t.empty = "Nothing to show"
	}
	if s.Query != "" {
		t.empty = "No matches for " + s.Query
	}
	return t
}

func (m *Model) renderTable(t table, width int) string {
	if len(t.rows) == 0 {
		if t.state == filter.Loading {
			return m.styles.Spinner.Render(m.spinnerFrame()) + m.styles.Dim.Render(" Loading…")
		}
		return m.styles.Dim.Render(t.empty)
	}

	widths := columnWidths(t, width)
	var lines []string
	if len(t.headers) > 0 {
		hdr := make([]string, len(t.headers))
		for i, h := range t.headers {
			if i == t.sortColumn {
				h += " " + t.sortArrow
			}
			hdr[i] = pad(m.styles.Header.Render(truncate(h, widths[i])), widths[i])
		}
		lines = append(lines, strings.Join(hdr, " "))
	}

	for r, row := range t.rows {
		base := m.styles.Text
		if r == t.selected {
			base = m.styles.Selected
		}
		parts := make([]string, len(row))
		for i, c := range row {
			if i >= len(widths) {
				break
			}
			text := truncate(c.text, widths[i])
			switch {
			case i == 0:
				parts[i] = renderMatches(text, t.highlights[r], base, m.styles.Match)
			case c.style != nil:
				parts[i] = c.style.Render(text)
			default:
				parts[i] = base.Render(text)
			}
			parts[i] = pad(parts[i], widths[i])
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// columnWidths sizes columns to their content, shrinking the widest until
// the row fits.
func columnWidths(t table, width int) []int {
	n := len(t.headers)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	widths := make([]int, n)
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h) + 2
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], lipgloss.Width(c.text))
		}
	}
	total := func() int {
		sum := n - 1
		for _, w := range widths {
			sum += w
		}
		return sum
	}
	for over := total() - width; over > 0; over = total() - width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 4 {
			break
		}
		widths[widest] = max(widths[widest]-over, 4)
	}
	return widths
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// renderMatches styles the runes at positions with match and the rest with
// base.
func renderMatches(text string, positions []int, base, match lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	hit := make(map[int]bool, len(positions))
	for _, p := range positions {
		hit[p] = true
	}
	var sb strings.Builder
	var run []rune
	runMatch := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runMatch {
			sb.WriteString(match.Render(string(run)))
		} else {
			sb.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for i, r := range []rune(text) {
		if hit[i] != runMatch {
			flush()
			runMatch = hit[i]
		}
		run = append(run, r)
	}
	flush()
	return sb.String()
}

func (m *Model) renderWizard(width int) string {
	s := m.ctrl.State
	w := s.Wizard
	st := m.styles
	switch w.Step {
	case app.WizardIdle:
		return st.Header.Render("Bootstrap") + "\n\n" +
			st.Text.Render("Detect the tools used in "+s.Cwd+" and write a mise.toml.") + "\n\n" +
			st.Dim.Render("enter to start")
	case app.WizardDetecting:
		return st.Spinner.Render(m.spinnerFrame()) + st.Dim.Render(" Detecting tools…")
	case app.WizardWriting:
		return st.Spinner.Render(m.spinnerFrame()) + st.Dim.Render(" Writing manifest…")
	case app.WizardPreview:
		return st.Header.Render("Preview") + "\n\n" + m.hl.TOML(w.Preview) + "\n" +
			st.Dim.Render("n/enter write · p back · q cancel")
	}

	lines := []string{st.Header.Render("Detected tools"), ""}
	for i, t := range w.Tools {
		box := "[ ]"
		if t.Enabled {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s", box, t.Name, t.Version)
		if t.Source != "" {
			line += "  (" + t.Source + ")"
		}
		line = truncate(line, width)
		if i == w.Selected {
			lines = append(lines, st.Selected.Render(line))
		} else {
			lines = append(lines, st.Text.Render(line))
		}
	}
	agent := "[ ]"
	if w.AgentFiles {
		agent = "[x]"
	}
	lines = append(lines, "", st.Text.Render(agent+" write AGENTS.md and CLAUDE.md"), "",
		st.Dim.Render("space toggle · a agent files · n next · q cancel"))
	return strings.Join(lines, "\n")
}

func (m *Model) popupWidth() int {
	return max(min(m.width-10, 90), minPopupW)
}

func (m *Model) popupRows() int {
	return max(m.height-10, 3)
}

func (m *Model) renderPopup(p app.Popup) string {
	st := m.styles
	switch p := p.(type) {
	case *app.PickerPopup:
		return m.renderPicker(p)
	case *app.ConfirmPopup:
		return st.ModalTitle.Render("Confirm") + "\n\n" + st.Text.Render(p.Message) + "\n\n" +
			st.ModalMuted.Render("y/enter confirm · n/esc cancel")
	case *app.ProgressPopup:
		return st.Spinner.Render(m.spinnerFrame()) + " " + st.Text.Render(p.Message)
	case *app.DetailPopup:
		return m.renderDetail(p)
	case *app.EditorPopup:
		return m.renderEditor(p)
	case *app.ScanConfigPopup:
		return m.renderScanConfig(p)
	case *app.HelpPopup:
		return m.help.Render(m.popupWidth())
	}
	return ""
}

func (m *Model) renderPicker(p *app.PickerPopup) string {
	st := m.styles
	title := "Install " + p.Tool
	if p.Mode == app.PickUseGlobal {
		title = "Use " + p.Tool + " globally"
	}
	lines := []string{st.ModalTitle.Render(title), st.Search.Render("/ " + p.Search + "▏"), ""}

	rows := m.popupRows() - 3
	start := windowStart(p.Selected, len(p.Filtered), rows)
	for i := start; i < len(p.Filtered) && i < start+rows; i++ {
		var hl []int
		if i < len(p.Highlights) {
			hl = p.Highlights[i]
		}
		base := st.Text
		prefix := "  "
		if i == p.Selected {
			base = st.ModalSelected
			prefix = "▸ "
		}
		lines = append(lines, prefix+renderMatches(p.Versions[p.Filtered[i]], hl, base, st.Match))
	}
	if len(p.Filtered) == 0 {
		lines = append(lines, st.ModalMuted.Render("no matching versions"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderDetail(p *app.DetailPopup) string {
	st := m.styles
	all := strings.Split(m.hl.Detail(p.Text), "\n")
	rows := m.popupRows() - 2
	start := min(p.Scroll, max(len(all)-1, 0))
	end := min(start+rows, len(all))
	body := strings.Join(all[start:end], "\n")
	footer := fmt.Sprintf("%d-%d of %d · j/k scroll · esc close", start+1, end, len(all))
	return st.ModalTitle.Render(p.Title) + "\n" + body + "\n" + st.ModalMuted.Render(footer)
}

var rowMarkers = map[manifest.RowStatus]string{
	manifest.Unchanged: " ",
	manifest.Modified:  "~",
	manifest.Added:     "+",
	manifest.Deleted:   "-",
}

func (m *Model) renderEditor(p *app.EditorPopup) string {
	st := m.styles
	title := p.Editor.Path
	if p.Dirty() {
		title += " *"
	}
	lines := []string{st.ModalTitle.Render(title)}

	if p.ShowDiff {
		lines = append(lines, st.Header.Render("Pending changes"), "")
		if len(p.Diff) == 0 {
			lines = append(lines, st.ModalMuted.Render("no changes"))
		} else {
			lines = append(lines, m.hl.Diff(p.Diff))
		}
		lines = append(lines, "", st.ModalMuted.Render("D back · w write · esc close"))
		return strings.Join(lines, "\n")
	}

	var tabs []string
	for _, sec := range manifest.Sections {
		if sec == p.Section {
			tabs = append(tabs, st.SidebarActive.Render("["+sec.String()+"]"))
		} else {
			tabs = append(tabs, st.SidebarTab.Render(" "+sec.String()+" "))
		}
	}
	lines = append(lines, strings.Join(tabs, " "), "")

	rows := p.Rows()
	if len(rows) == 0 {
		lines = append(lines, st.ModalMuted.Render("empty · a to add"))
	}
	width := m.popupWidth() - 4
	for i, r := range rows {
		key, value := r.Key, r.Value
		if p.Editing && i == p.Selected {
			if p.Column == app.ColumnKey {
				key = p.KeyBuffer + "▏"
				value = p.ValueBuffer
			} else {
				key = p.KeyBuffer
				value = p.ValueBuffer + "▏"
			}
		}
		line := truncate(rowMarkers[r.Status]+" "+key+" = "+value, width)
		switch {
		case i == p.Selected:
			lines = append(lines, st.ModalSelected.Render(line))
		case r.Status == manifest.Deleted:
			lines = append(lines, st.Dim.Strikethrough(true).Render(line))
		default:
			lines = append(lines, st.Text.Render(line))
		}
	}

	hint := "enter edit · a add · d delete · tab section · D diff · w write · esc close"
	if p.Editing {
		hint = "tab switch field · enter apply · esc discard"
	}
	lines = append(lines, "", st.ModalMuted.Render(hint))
	return strings.Join(lines, "\n")
}

func (m *Model) renderScanConfig(p *app.ScanConfigPopup) string {
	st := m.styles
	lines := []string{st.ModalTitle.Render("Scan settings"), "", st.Header.Render("Directories")}
	for i, d := range p.Dirs {
		if i == p.Selected && !p.Adding {
			lines = append(lines, st.ModalSelected.Render("▸ "+d))
		} else {
			lines = append(lines, st.Text.Render("  "+d))
		}
	}
	if len(p.Dirs) == 0 {
		lines = append(lines, st.ModalMuted.Render("  none"))
	}
	if p.Adding {
		lines = append(lines, st.Search.Render("+ "+p.NewDir+"▏"))
	}
	lines = append(lines, "", st.Text.Render(fmt.Sprintf("Max depth: %d", p.MaxDepth)), "")
	if p.Adding {
		lines = append(lines, st.ModalMuted.Render("enter add · esc cancel"))
	} else {
		lines = append(lines, st.ModalMuted.Render("a add · d remove · +/- depth · enter save · esc cancel"))
	}
	return strings.Join(lines, "\n")
}
