package manifest

import (
	"fmt"
	"os"
	"strings"

	"misetui/internal/fileutil"
)

// RowStatus tracks what the user did to a row since it was loaded.
type RowStatus int

const (
	Unchanged RowStatus = iota
	Modified
	Added
	Deleted
)

func (s RowStatus) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Modified:
		return "modified"
	case Added:
		return "added"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Section is one editable table of the manifest.
type Section int

const (
	SectionTools Section = iota
	SectionEnv
	SectionTasks
)

// Sections lists every editable section in display order.
var Sections = []Section{SectionTools, SectionEnv, SectionTasks}

// Table returns the TOML table name backing the section.
func (s Section) Table() string {
	switch s {
	case SectionEnv:
		return "env"
	case SectionTasks:
		return "tasks"
	default:
		return "tools"
	}
}

func (s Section) String() string {
	switch s {
	case SectionEnv:
		return "Env"
	case SectionTasks:
		return "Tasks"
	default:
		return "Tools"
	}
}

// Next returns the following section, wrapping around.
func (s Section) Next() Section {
	return Sections[(int(s)+1)%len(Sections)]
}

// Row is one key/value pair of a section. For tasks the value is the command.
type Row struct {
	Key         string
	Value       string
	OriginalKey string
	Status      RowStatus
	// Prior is the status to restore when a deletion is undone.
	Prior RowStatus
}

// SetKey renames the row.
func (r *Row) SetKey(key string) {
	if key == r.Key {
		return
	}
	r.Key = key
	r.touch()
}

// SetValue changes the row's value.
func (r *Row) SetValue(value string) {
	if value == r.Value {
		return
	}
	r.Value = value
	r.touch()
}

func (r *Row) touch() {
	if r.Status == Unchanged {
		r.Status = Modified
	}
}

// ToggleDelete marks the row deleted, or restores it. It reports false when
// the row is new and should be dropped instead.
func (r *Row) ToggleDelete() bool {
	switch r.Status {
	case Added:
		return false
	case Deleted:
		r.Status = r.Prior
	default:
		r.Prior = r.Status
		r.Status = Deleted
	}
	return true
}

// Editor is an in-memory, round-trippable view of one manifest.
type Editor struct {
	Path     string
	Tools    []Row
	Env      []Row
	Tasks    []Row
	Original string
}

// LoadEditor reads and decodes the manifest at path.
func LoadEditor(path string) (*Editor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	ed, err := ParseEditor(path, data)
	if err != nil {
		return nil, err
	}
	return ed, nil
}

// ParseEditor builds an Editor from manifest content.
func ParseEditor(path string, data []byte) (*Editor, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	ed := &Editor{Path: path, Original: string(data)}

	tools, keys := doc.table("tools")
	for _, k := range keys {
		ed.Tools = append(ed.Tools, loadedRow(k, versionString(tools[k])))
	}

	env, keys := doc.table("env")
	for _, k := range keys {
		ed.Env = append(ed.Env, loadedRow(k, scalarString(env[k])))
	}

	tasks, keys := doc.table("tasks")
	for _, k := range keys {
		ed.Tasks = append(ed.Tasks, loadedRow(k, taskCommand(tasks[k])))
	}
	return ed, nil
}

func loadedRow(key, value string) Row {
	return Row{Key: key, Value: value, OriginalKey: key}
}

func scalarString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func taskCommand(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if run, ok := val["run"].(string); ok {
			return run
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// Clone returns a deep copy that shares no row slices with e.
func (e *Editor) Clone() *Editor {
	c := *e
	c.Tools = append([]Row(nil), e.Tools...)
	c.Env = append([]Row(nil), e.Env...)
	c.Tasks = append([]Row(nil), e.Tasks...)
	return &c
}

// Rows returns the rows of a section.
func (e *Editor) Rows(s Section) []Row {
	switch s {
	case SectionEnv:
		return e.Env
	case SectionTasks:
		return e.Tasks
	default:
		return e.Tools
	}
}

// SetRows replaces the rows of a section.
func (e *Editor) SetRows(s Section, rows []Row) {
	switch s {
	case SectionEnv:
		e.Env = rows
	case SectionTasks:
		e.Tasks = rows
	default:
		e.Tools = rows
	}
}

// Changed reports whether any row differs from the loaded document.
func (e *Editor) Changed() bool {
	for _, s := range Sections {
		for _, r := range e.Rows(s) {
			if r.Status != Unchanged {
				return true
			}
		}
	}
	return false
}

// Render applies the pending row changes to the original document.
func (e *Editor) Render() (string, error) {
	p := newPatcher(e.Original)
	for _, s := range Sections {
		if err := p.apply(s, e.Rows(s)); err != nil {
			return "", err
		}
	}
	out := p.String()
	if _, err := decode([]byte(out)); err != nil {
		return "", fmt.Errorf("edited manifest is not valid TOML: %w", err)
	}
	return out, nil
}

// Write renders the changes and atomically replaces the manifest. On success
// the editor is reset to the written content.
func (e *Editor) Write() (string, error) {
	content, err := e.Render()
	if err != nil {
		return "", err
	}
	if err := fileutil.ReplaceFile(e.Path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", e.Path, err)
	}

	fresh, err := ParseEditor(e.Path, []byte(content))
	if err == nil {
		*e = *fresh
	}
	return "Saved " + e.Path, nil
}

// Diff returns a line diff between the original document and the rendered
// result. A render failure is reported as a single line.
func (e *Editor) Diff() []DiffLine {
	content, err := e.Render()
	if err != nil {
		return []DiffLine{{Kind: DiffContext, Text: strings.TrimSpace(err.Error())}}
	}
	return LineDiff(e.Original, content)
}
