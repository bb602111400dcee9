// Package scanner walks directory trees looking for projects that carry a
// manifest and grades each declared tool requirement against the installed
// inventory.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"misetui/internal/logging"
	"misetui/internal/manifest"
	"misetui/internal/model"
)

// Options bounds a scan.
type Options struct {
	Roots    []string
	MaxDepth int
	// Skip holds doublestar patterns matched against directory names.
	Skip []string
}

// Inventory maps a tool name to its installed versions in listing order.
type Inventory map[string][]string

// NewInventory indexes installed tools by name, active or not.
func NewInventory(tools []model.InstalledTool) Inventory {
	inv := make(Inventory)
	for _, t := range tools {
		inv[t.Name] = append(inv[t.Name], t.Version)
	}
	return inv
}

// Scan walks every root and returns one record per project, deduplicated by
// absolute path and sorted by name. Unreadable directories are skipped.
func Scan(opts Options, tools []model.InstalledTool) []model.Project {
	inv := NewInventory(tools)
	w := &walker{opts: opts, inv: inv, seen: make(map[string]bool)}
	for _, root := range opts.Roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			logging.Debug("skipping scan root", "root", root, "error", err)
			continue
		}
		w.walk(abs, 0)
	}

	sort.SliceStable(w.projects, func(i, j int) bool {
		a, b := w.projects[i], w.projects[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Path < b.Path
	})
	return w.projects
}

type walker struct {
	opts     Options
	inv      Inventory
	seen     map[string]bool
	projects []model.Project
}

func (w *walker) walk(dir string, depth int) {
	if manifest.Exists(dir) {
		if !w.seen[dir] {
			w.seen[dir] = true
			w.projects = append(w.projects, Evaluate(dir, w.inv))
		}
		// The first manifest found walking down is the project boundary.
		return
	}
	if depth >= w.opts.MaxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Debug("skipping unreadable directory", "dir", dir, "error", err)
		return
	}
	for _, e := range entries {
		if !e.IsDir() || w.skip(e.Name()) {
			continue
		}
		w.walk(filepath.Join(dir, e.Name()), depth+1)
	}
}

func (w *walker) skip(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range w.opts.Skip {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Evaluate grades the project in dir. A manifest that cannot be read or
// parsed yields NoConfig with no tools.
func Evaluate(dir string, inv Inventory) model.Project {
	p := model.Project{
		Name:   filepath.Base(dir),
		Path:   dir,
		Health: model.NoConfig,
	}

	reqs, err := manifest.ReadRequirements(manifest.Path(dir))
	if err != nil {
		logging.Debug("manifest unreadable", "dir", dir, "error", err)
		return p
	}

	p.Health = model.Healthy
	p.ToolCount = len(reqs)
	for _, r := range reqs {
		th := grade(r, inv)
		p.Health = model.Worse(p.Health, th.Status)
		p.Tools = append(p.Tools, th)
	}
	return p
}

func grade(r manifest.Requirement, inv Inventory) model.ProjectToolHealth {
	th := model.ProjectToolHealth{Tool: r.Tool, Required: r.Version}

	versions, ok := inv[r.Tool]
	if !ok || len(versions) == 0 {
		th.Status = model.Missing
		return th
	}

	// Shown version: the first satisfying one, else the first installed.
	th.Status = model.Outdated
	th.Installed = versions[0]
	for _, v := range versions {
		if model.SatisfiesRequirement(r.Version, v) {
			th.Installed = v
			th.Status = model.Healthy
			break
		}
	}
	return th
}

// Find returns the index of the project at path, or -1.
func Find(projects []model.Project, path string) int {
	for i, p := range projects {
		if p.Path == path {
			return i
		}
	}
	return -1
}
