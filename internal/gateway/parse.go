package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"misetui/internal/model"
)

// source decodes mise's "source" field, which is either a plain string or an
// object carrying a path.
type source string

func (s *source) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = source(str)
		return nil
	}
	var obj struct {
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Path != "" {
		*s = source(obj.Path)
	} else {
		*s = source(obj.Type)
	}
	return nil
}

type installedVersion struct {
	Version          string `json:"version"`
	RequestedVersion string `json:"requested_version"`
	Source           source `json:"source"`
	Installed        bool   `json:"installed"`
	Active           bool   `json:"active"`
}

// ParseTools decodes `mise ls -J`: a map of tool name to its versions,
// flattened into one row per version ordered by tool name.
func ParseTools(data []byte) ([]model.InstalledTool, error) {
	var byName map[string][]installedVersion
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, err
	}

	names := sortedKeys(byName)
	var tools []model.InstalledTool
	for _, name := range names {
		for _, v := range byName[name] {
			tools = append(tools, model.InstalledTool{
				Name:             name,
				Version:          v.Version,
				RequestedVersion: v.RequestedVersion,
				Source:           string(v.Source),
				Active:           v.Active,
				Installed:        v.Installed,
			})
		}
	}
	return tools, nil
}

// ParseRegistry decodes `mise registry -J`.
func ParseRegistry(data []byte) ([]model.RegistryEntry, error) {
	var entries []model.RegistryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ParseConfigs decodes `mise config ls -J`.
func ParseConfigs(data []byte) ([]model.ConfigFile, error) {
	var configs []model.ConfigFile
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// ParseDoctor splits doctor output into display lines.
func ParseDoctor(data []byte) []string {
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// ParseOutdated decodes `mise outdated -J`.
func ParseOutdated(data []byte) ([]model.OutdatedTool, error) {
	var byName map[string]struct {
		Name      string `json:"name"`
		Requested string `json:"requested"`
		Current   string `json:"current"`
		Latest    string `json:"latest"`
		Source    source `json:"source"`
	}
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, err
	}

	out := make([]model.OutdatedTool, 0, len(byName))
	for _, key := range sortedKeys(byName) {
		e := byName[key]
		name := e.Name
		if name == "" {
			name = key
		}
		out = append(out, model.OutdatedTool{
			Name:      name,
			Requested: e.Requested,
			Current:   e.Current,
			Latest:    e.Latest,
			Source:    string(e.Source),
		})
	}
	return out, nil
}

// ParseTasks decodes `mise tasks ls -J`.
func ParseTasks(data []byte) ([]model.Task, error) {
	var raw []struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Source      source   `json:"source"`
		Aliases     []string `json:"aliases"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(raw))
	for _, t := range raw {
		tasks = append(tasks, model.Task{
			Name:        t.Name,
			Description: t.Description,
			Source:      string(t.Source),
			Aliases:     t.Aliases,
		})
	}
	return tasks, nil
}

// ParseEnv decodes `mise env --json-extended`.
func ParseEnv(data []byte) ([]model.EnvVar, error) {
	var byName map[string]struct {
		Value  string `json:"value"`
		Source source `json:"source"`
		Tool   string `json:"tool"`
	}
	if err := json.Unmarshal(data, &byName); err != nil {
		return nil, err
	}

	vars := make([]model.EnvVar, 0, len(byName))
	for _, name := range sortedKeys(byName) {
		e := byName[name]
		vars = append(vars, model.EnvVar{
			Name:   name,
			Value:  e.Value,
			Source: string(e.Source),
			Tool:   e.Tool,
		})
	}
	return vars, nil
}

// ParseSettings decodes `mise settings ls -J --all`, a nested object, into
// dotted keys in lexical order.
func ParseSettings(data []byte) ([]model.Setting, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	var settings []model.Setting
	flattenSettings("", root, &settings)
	sort.SliceStable(settings, func(i, j int) bool {
		return settings[i].Key < settings[j].Key
	})
	return settings, nil
}

func flattenSettings(prefix string, obj map[string]any, out *[]model.Setting) {
	for key, value := range obj {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flattenSettings(full, nested, out)
			continue
		}
		*out = append(*out, model.Setting{
			Key:       full,
			Value:     settingValue(value),
			ValueType: settingType(value),
		})
	}
}

func settingValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func settingType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number:
		return "number"
	case []any:
		return "array"
	default:
		return "object"
	}
}

// ParseVersions turns `mise ls-remote` output (oldest first) into at most
// limit versions, newest first.
func ParseVersions(data []byte, limit int) []string {
	lines := strings.Split(string(data), "\n")
	versions := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		v := strings.TrimSpace(lines[i])
		if v == "" {
			continue
		}
		versions = append(versions, v)
		if limit > 0 && len(versions) == limit {
			break
		}
	}
	return versions
}

// ParsePrune reads `mise prune --dry-run` output. Lines name a version as
// tool@version, possibly surrounded by other words, or as "tool version".
func ParsePrune(data []byte) []model.PruneCandidate {
	var out []model.PruneCandidate
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, parsePruneLine(line))
	}
	return out
}

func parsePruneLine(line string) model.PruneCandidate {
	fields := strings.Fields(line)
	for _, f := range fields {
		if tool, version, ok := strings.Cut(f, "@"); ok && tool != "" {
			return model.PruneCandidate{Tool: tool, Version: version}
		}
	}
	if len(fields) == 2 {
		return model.PruneCandidate{Tool: fields[0], Version: fields[1]}
	}
	return model.PruneCandidate{Tool: line}
}

// PrettyJSON indents JSON for display, returning the input unchanged if it is
// not valid JSON.
func PrettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return string(data)
	}
	return buf.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
