package app

import (
	"strings"

	"misetui/internal/manifest"
)

func (c *Controller) openEditor(path string) []Command {
	s := c.State
	if s.Popup != nil {
		return nil
	}
	if path == "" {
		if s.Tab != TabProjects {
			return nil
		}
		p, ok := s.Projects.Current()
		if !ok {
			return nil
		}
		path = manifest.Path(p.Path)
	}
	id := c.progress("Loading "+path+"...", PurposeEditor)
	return []Command{LoadEditorCmd{Request: id, Path: path}}
}

// editor returns the visible editor popup, if any.
func (c *Controller) editor() *EditorPopup {
	p, _ := c.State.Popup.(*EditorPopup)
	return p
}

// idleEditor returns the editor popup when no field is being edited.
func (c *Controller) idleEditor() *EditorPopup {
	if p := c.editor(); p != nil && !p.Editing {
		return p
	}
	return nil
}

// editingEditor returns the editor popup when a field is being edited.
func (c *Controller) editingEditor() *EditorPopup {
	if p := c.editor(); p != nil && p.Editing {
		return p
	}
	return nil
}

func (c *Controller) editorSwitchSection() {
	if p := c.idleEditor(); p != nil {
		p.Section = p.Section.Next()
		p.Selected = 0
	}
}

func (c *Controller) editorStartEdit() {
	p := c.idleEditor()
	if p == nil {
		return
	}
	rows := p.Rows()
	if p.Selected >= len(rows) || rows[p.Selected].Status == manifest.Deleted {
		return
	}
	r := rows[p.Selected]
	p.Editing = true
	p.Column = ColumnValue
	p.KeyBuffer = r.Key
	p.ValueBuffer = r.Value
}

func (c *Controller) editorNextField() {
	if p := c.editingEditor(); p != nil {
		if p.Column == ColumnKey {
			p.Column = ColumnValue
		} else {
			p.Column = ColumnKey
		}
	}
}

func (c *Controller) editorInput(ch rune) {
	p := c.editingEditor()
	if p == nil {
		return
	}
	if p.Column == ColumnKey {
		p.KeyBuffer += string(ch)
	} else {
		p.ValueBuffer += string(ch)
	}
}

func (c *Controller) editorBackspace() {
	p := c.editingEditor()
	if p == nil {
		return
	}
	if p.Column == ColumnKey {
		p.KeyBuffer = dropLastRune(p.KeyBuffer)
	} else {
		p.ValueBuffer = dropLastRune(p.ValueBuffer)
	}
}

func (c *Controller) editorConfirmEdit() {
	p := c.editingEditor()
	if p == nil {
		return
	}
	rows := p.Rows()
	if p.Selected >= len(rows) {
		p.Editing = false
		return
	}

	key := strings.TrimSpace(p.KeyBuffer)
	if key == "" {
		c.State.setStatus("Key cannot be empty", noticeTTL)
		return
	}
	for i, r := range rows {
		if i != p.Selected && r.Status != manifest.Deleted && r.Key == key {
			c.State.setStatus("Duplicate key "+key, noticeTTL)
			return
		}
	}

	rows[p.Selected].SetKey(key)
	rows[p.Selected].SetValue(p.ValueBuffer)
	p.Editing = false
	p.refreshDiff()
}

// editorCancelEdit abandons the field being edited. A row added and never
// named is dropped. Outside of editing it closes the editor.
func (c *Controller) editorCancelEdit() {
	p := c.editor()
	if p == nil {
		return
	}
	if !p.Editing {
		c.State.Popup = nil
		return
	}
	p.Editing = false
	rows := p.Rows()
	if p.Selected < len(rows) && rows[p.Selected].Status == manifest.Added && rows[p.Selected].Key == "" {
		p.removeRow(p.Selected)
	}
}

func (c *Controller) editorDeleteRow() {
	p := c.idleEditor()
	if p == nil || p.Selected >= len(p.Rows()) {
		return
	}
	rows := p.Rows()
	if !rows[p.Selected].ToggleDelete() {
		p.removeRow(p.Selected)
	}
	p.refreshDiff()
}

func (c *Controller) editorAddRow() {
	p := c.idleEditor()
	if p == nil {
		return
	}
	rows := append(p.Rows(), manifest.Row{Status: manifest.Added})
	p.Editor.SetRows(p.Section, rows)
	p.Selected = len(rows) - 1
	p.Editing = true
	p.Column = ColumnKey
	p.KeyBuffer = ""
	p.ValueBuffer = ""
}

func (c *Controller) editorToggleDiff() {
	if p := c.idleEditor(); p != nil {
		p.ShowDiff = !p.ShowDiff
		p.refreshDiff()
	}
}

func (c *Controller) editorWrite() []Command {
	p := c.idleEditor()
	if p == nil {
		return nil
	}
	if !p.Dirty() || !p.rendersChange() {
		c.State.setStatus("No changes to write", noticeTTL)
		return nil
	}
	ed := p.Editor.Clone()
	c.progress("Writing "+ed.Path+"...", PurposeOperation)
	return []Command{WriteEditorCmd{Editor: ed}}
}

func (p *EditorPopup) removeRow(i int) {
	rows := p.Rows()
	rows = append(rows[:i:i], rows[i+1:]...)
	p.Editor.SetRows(p.Section, rows)
	p.Selected = clampIndex(p.Selected, len(rows))
}

// rendersChange reports whether the pending rows change the file. A render
// error counts as a change so the write reports it.
func (p *EditorPopup) rendersChange() bool {
	out, err := p.Editor.Render()
	if err != nil {
		return true
	}
	return manifest.HasChanges(manifest.LineDiff(p.Editor.Original, out))
}

// refreshDiff recomputes the change preview while it is shown.
func (p *EditorPopup) refreshDiff() {
	if !p.ShowDiff {
		p.Diff = nil
		return
	}
	p.Diff = p.Editor.Diff()
}
