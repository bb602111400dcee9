// Package manifest reads and writes .mise.toml project manifests.
//
// Decoding goes through BurntSushi/toml. Writing never re-serializes the whole
// document: edits are spliced into the original text line by line so that
// comments, ordering and formatting outside the edited rows survive.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked for in project directories.
const FileName = ".mise.toml"

// Requirement is one declared tool requirement.
type Requirement struct {
	Tool    string
	Version string
}

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Exists reports whether dir holds a manifest.
func Exists(dir string) bool {
	info, err := os.Stat(Path(dir))
	return err == nil && !info.IsDir()
}

type document struct {
	raw  map[string]any
	meta toml.MetaData
}

func decode(data []byte) (*document, error) {
	doc := &document{}
	meta, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc.raw)
	if err != nil {
		return nil, err
	}
	doc.meta = meta
	return doc, nil
}

// table returns a top-level table and its keys in file order.
func (d *document) table(name string) (map[string]any, []string) {
	t, ok := d.raw[name].(map[string]any)
	if !ok {
		return nil, nil
	}
	seen := make(map[string]bool, len(t))
	var keys []string
	for _, k := range d.meta.Keys() {
		if len(k) < 2 || k[0] != name || seen[k[1]] {
			continue
		}
		if _, ok := t[k[1]]; !ok {
			continue
		}
		seen[k[1]] = true
		keys = append(keys, k[1])
	}
	return t, keys
}

// ParseRequirements extracts the [tools] table in file order. An array value
// contributes its first element.
func ParseRequirements(data []byte) ([]Requirement, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, err
	}

	tools, keys := doc.table("tools")
	reqs := make([]Requirement, 0, len(keys))
	for _, k := range keys {
		reqs = append(reqs, Requirement{Tool: k, Version: versionString(tools[k])})
	}
	return reqs, nil
}

// ReadRequirements parses the manifest at path.
func ReadRequirements(path string) ([]Requirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRequirements(data)
}

func versionString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return "?"
	case []map[string]any:
		return "?"
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			return s
		}
		return "?"
	default:
		return fmt.Sprint(val)
	}
}
