package app

import (
	"misetui/internal/filter"
	"misetui/internal/manifest"
)

// Popup is the modal dialog overlaying the dashboard. State holds at most one.
// Every variant is a pointer so the reducer can advance it in place.
type Popup interface {
	popup()
}

// PickerMode tells what confirming a version picker does.
type PickerMode int

const (
	PickInstall PickerMode = iota
	PickUseGlobal
)

// PickerPopup lists remote versions of a tool, narrowed by its own search.
type PickerPopup struct {
	Tool       string
	Versions   []string
	Mode       PickerMode
	Search     string
	Filtered   []int
	Highlights [][]int
	Selected   int
}

func newPicker(tool string, versions []string, mode PickerMode) *PickerPopup {
	p := &PickerPopup{Tool: tool, Versions: versions, Mode: mode}
	p.refilter()
	return p
}

func (p *PickerPopup) refilter() {
	p.Filtered, p.Highlights = filter.Apply(p.Versions, p.Search, func(v string) []string {
		return []string{v}
	})
	p.Selected = 0
}

// Current returns the version under the cursor.
func (p *PickerPopup) Current() (string, bool) {
	if p.Selected < 0 || p.Selected >= len(p.Filtered) {
		return "", false
	}
	return p.Versions[p.Filtered[p.Selected]], true
}

// ConfirmPopup asks a yes/no question before a destructive operation.
type ConfirmPopup struct {
	Message   string
	OnConfirm ConfirmAction
}

// ConfirmAction is what a ConfirmPopup runs when accepted.
type ConfirmAction interface {
	confirm()
}

type (
	ConfirmUninstall   struct{ Tool, Version string }
	ConfirmPrune       struct{}
	ConfirmTrust       struct{ Path string }
	ConfirmRunTask     struct{ Task string }
	ConfirmInstallIn   struct{ Path string }
	ConfirmUpgradePins struct{ Path string }
)

func (ConfirmUninstall) confirm()   {}
func (ConfirmPrune) confirm()       {}
func (ConfirmTrust) confirm()       {}
func (ConfirmRunTask) confirm()     {}
func (ConfirmInstallIn) confirm()   {}
func (ConfirmUpgradePins) confirm() {}

// Purpose names what a Progress popup is waiting for.
type Purpose int

const (
	PurposeOperation Purpose = iota
	PurposeVersions
	PurposeDetail
	PurposePrune
	PurposeEditor
	PurposeScanConfig
)

// ProgressPopup is shown while a request is in flight. Only completions that
// carry Request may replace it.
type ProgressPopup struct {
	Message string
	Request RequestID
	Purpose Purpose
}

// DetailPopup is a scrollable read-only text view.
type DetailPopup struct {
	Title  string
	Text   string
	Scroll int
}

// Lines returns the number of lines in Text.
func (p *DetailPopup) Lines() int {
	if p.Text == "" {
		return 0
	}
	n := 1
	for _, c := range p.Text {
		if c == '\n' {
			n++
		}
	}
	return n
}

// EditColumn is the field being edited in the manifest editor.
type EditColumn int

const (
	ColumnKey EditColumn = iota
	ColumnValue
)

// EditorPopup edits one manifest in place.
type EditorPopup struct {
	Editor   *manifest.Editor
	Section  manifest.Section
	Selected int

	Editing     bool
	Column      EditColumn
	KeyBuffer   string
	ValueBuffer string

	ShowDiff bool
	Diff     []manifest.DiffLine
}

// Rows returns the rows of the active section.
func (p *EditorPopup) Rows() []manifest.Row {
	return p.Editor.Rows(p.Section)
}

// Dirty reports whether there are unwritten changes.
func (p *EditorPopup) Dirty() bool {
	return p.Editor.Changed()
}

// Buffer returns the text of the field being edited.
func (p *EditorPopup) Buffer() string {
	if p.Column == ColumnKey {
		return p.KeyBuffer
	}
	return p.ValueBuffer
}

// ScanConfigPopup edits the scan roots and depth.
type ScanConfigPopup struct {
	Dirs     []string
	Selected int
	Adding   bool
	NewDir   string
	MaxDepth int
}

// HelpPopup shows the key bindings.
type HelpPopup struct{}

func (*PickerPopup) popup()     {}
func (*ConfirmPopup) popup()    {}
func (*ProgressPopup) popup()   {}
func (*DetailPopup) popup()     {}
func (*EditorPopup) popup()     {}
func (*ScanConfigPopup) popup() {}
func (*HelpPopup) popup()       {}
