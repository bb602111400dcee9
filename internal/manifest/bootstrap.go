package manifest

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"misetui/internal/fileutil"
	"misetui/internal/model"
)

// LegacyPinsFile is the asdf-style pin file migrated by the bootstrap wizard.
const LegacyPinsFile = ".tool-versions"

// indicator maps a project file to the tool it implies. pin, when set, is a
// version file that overrides the default version.
type indicator struct {
	files   []string
	tool    string
	version string
	pin     string
}

var indicators = []indicator{
	{files: []string{"package.json"}, tool: "node", version: "lts", pin: ".nvmrc"},
	{files: []string{"Cargo.toml"}, tool: "rust", version: "stable"},
	{files: []string{"pyproject.toml", "requirements.txt"}, tool: "python", version: "latest", pin: ".python-version"},
	{files: []string{"go.mod"}, tool: "go", version: "latest"},
	{files: []string{"Gemfile"}, tool: "ruby", version: "latest", pin: ".ruby-version"},
	{files: []string{"composer.json"}, tool: "php", version: "latest"},
}

// Detect suggests tools for dir from well-known project files. Entries from
// .tool-versions have the lowest priority; a pin file without its indicator
// still yields a tool. Results are sorted by name and marked installed when
// the inventory satisfies them.
func Detect(dir string, inventory []model.InstalledTool) []model.DetectedTool {
	found := make(map[string]model.DetectedTool)
	for _, t := range MigrateLegacyPins(dir) {
		found[t.Name] = t
	}

	for _, ind := range indicators {
		src := firstExisting(dir, ind.files)
		if src == "" {
			continue
		}
		version, source := ind.version, src
		if ind.pin != "" {
			if v := readFirstLine(filepath.Join(dir, ind.pin)); v != "" {
				version, source = v, ind.pin
			}
		}
		found[ind.tool] = detected(ind.tool, version, source)
	}

	for _, ind := range indicators {
		if ind.pin == "" {
			continue
		}
		if _, ok := found[ind.tool]; ok {
			continue
		}
		if v := readFirstLine(filepath.Join(dir, ind.pin)); v != "" {
			found[ind.tool] = detected(ind.tool, v, ind.pin)
		}
	}

	out := make([]model.DetectedTool, 0, len(found))
	for _, t := range found {
		t.Installed = installed(t, inventory)
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func detected(name, version, source string) model.DetectedTool {
	return model.DetectedTool{Name: name, Version: version, Source: source, Enabled: true}
}

func installed(t model.DetectedTool, inventory []model.InstalledTool) bool {
	for _, inv := range inventory {
		if inv.Name != t.Name {
			continue
		}
		switch t.Version {
		case "latest", "stable", "lts":
			return true
		}
		if model.SatisfiesRequirement(t.Version, inv.Version) {
			return true
		}
	}
	return false
}

func firstExisting(dir string, names []string) string {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err == nil {
			return n
		}
	}
	return ""
}

// readFirstLine returns the first non-empty, non-comment line of a file.
func readFirstLine(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return ""
}

// MigrateLegacyPins reads .tool-versions in dir: one "tool version" per line.
func MigrateLegacyPins(dir string) []model.DetectedTool {
	f, err := os.Open(filepath.Join(dir, LegacyPinsFile))
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []model.DetectedTool
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		version := "latest"
		if len(fields) > 1 {
			version = fields[1]
		}
		out = append(out, detected(fields[0], version, LegacyPinsFile))
	}
	return out
}

// Render produces a fresh manifest for the enabled tools.
func Render(tools []model.DetectedTool) string {
	var b strings.Builder
	b.WriteString("[tools]\n")
	for _, t := range tools {
		if !t.Enabled {
			continue
		}
		version := t.Version
		if version == "" {
			version = "latest"
		}
		b.WriteString(keyLine(t.Name, version))
		b.WriteByte('\n')
	}
	return b.String()
}

const agentsDoc = `# Agent Instructions

This project uses [mise](https://mise.jdx.dev/) to manage tool versions.
Tool versions are pinned in ` + "`.mise.toml`" + `; always use these exact versions.

- ` + "`mise install`" + `: install pinned tools
- ` + "`mise run <task>`" + `: run a task
- ` + "`mise ls`" + `: list installed tools
`

const claudeDoc = `# CLAUDE.md

Uses mise for tool versions. Run ` + "`mise install`" + ` first.
See ` + "`.mise.toml`" + ` for pinned versions and do not deviate from them.
Run tasks with ` + "`mise run <task>`" + `, list with ` + "`mise tasks ls`" + `.
`

// AgentFiles maps the agent instruction files written next to a new manifest
// to their content.
var AgentFiles = map[string]string{
	"AGENTS.md": agentsDoc,
	"CLAUDE.md": claudeDoc,
}

// agentFileNames is the write order of AgentFiles.
var agentFileNames = []string{"AGENTS.md", "CLAUDE.md"}

// WriteBootstrap writes a fresh manifest for the enabled tools into dir,
// replacing any existing one, plus the agent instruction files when
// withAgents is set. Either every file is written or none is.
func WriteBootstrap(dir string, tools []model.DetectedTool, withAgents bool) error {
	tx, err := fileutil.NewTransaction()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := tx.Write(Path(dir), []byte(Render(tools)), 0o644); err != nil {
		return err
	}
	if withAgents {
		for _, name := range agentFileNames {
			if err := tx.Write(filepath.Join(dir, name), []byte(AgentFiles[name]), 0o644); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}
