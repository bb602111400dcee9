package manifest

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// maxValueLines bounds how far a multi-line value is followed.
const maxValueLines = 200

type span struct{ start, end int }

// layout locates tables and key/value pairs in a document. Paths are joined
// with pathSep.
type layout struct {
	headers map[string]int
	keys    map[string]span
	// every key/value pair in file order
	entries []keyEntry
}

type keyEntry struct {
	path  []string
	table string
	span  span
}

const pathSep = "\x00"

func joinPath(p ...string) string { return strings.Join(p, pathSep) }

type patcher struct {
	lines    []string
	trailing bool
}

func newPatcher(text string) *patcher {
	p := &patcher{trailing: strings.HasSuffix(text, "\n")}
	if text != "" {
		p.lines = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	}
	return p
}

func (p *patcher) String() string {
	if len(p.lines) == 0 {
		return ""
	}
	out := strings.Join(p.lines, "\n")
	if p.trailing {
		out += "\n"
	}
	return out
}

func (p *patcher) scan() *layout {
	l := &layout{headers: map[string]int{}, keys: map[string]span{}}
	var table []string
	tableName := ""
	for i := 0; i < len(p.lines); i++ {
		if path, array, ok := parseHeader(p.lines[i]); ok {
			if array {
				table = append(path, "[]")
			} else {
				table = path
				if _, seen := l.headers[joinPath(path...)]; !seen {
					l.headers[joinPath(path...)] = i
				}
			}
			tableName = joinPath(table...)
			continue
		}
		kp, ok := parseKey(p.lines[i])
		if !ok {
			continue
		}
		full := append(append([]string(nil), table...), kp...)
		sp := span{start: i, end: p.valueEnd(i)}
		if _, seen := l.keys[joinPath(full...)]; !seen {
			l.keys[joinPath(full...)] = sp
		}
		l.entries = append(l.entries, keyEntry{path: full, table: tableName, span: sp})
		i = sp.end - 1
	}
	return l
}

// valueEnd returns the exclusive end of the key/value pair starting at line
// i, following multi-line arrays and strings until the pair decodes.
func (p *patcher) valueEnd(i int) int {
	limit := min(len(p.lines), i+maxValueLines)
	var buf strings.Builder
	for j := i; j < limit; j++ {
		buf.WriteString(p.lines[j])
		buf.WriteByte('\n')
		var v map[string]any
		if _, err := toml.Decode(buf.String(), &v); err == nil {
			return j + 1
		}
	}
	return i + 1
}

func (p *patcher) splice(start, end int, repl []string) {
	out := make([]string, 0, len(p.lines)-(end-start)+len(repl))
	out = append(out, p.lines[:start]...)
	out = append(out, repl...)
	out = append(out, p.lines[end:]...)
	p.lines = out
	p.trailing = true
}

// edit is a located change; at is the first line it touches.
type edit struct {
	at  int
	run func()
}

// apply locates every row by its original key in one scan, then edits from
// the bottom up so a located span never shifts or points at a rewritten line.
func (p *patcher) apply(s Section, rows []Row) error {
	table := s.Table()
	l := p.scan()
	var edits []edit
	var added []string
	for _, r := range rows {
		switch r.Status {
		case Deleted:
			if r.OriginalKey == "" {
				continue
			}
			if e, ok := p.removal(l, table, r.OriginalKey); ok {
				edits = append(edits, e)
			}
		case Modified:
			if r.Key == "" {
				return fmt.Errorf("%s row has an empty name", strings.ToLower(s.String()))
			}
			if r.OriginalKey != "" {
				if e, ok := p.replacement(l, table, r); ok {
					edits = append(edits, e)
					continue
				}
			}
			added = append(added, keyLine(r.Key, r.Value))
		case Added:
			if r.Key == "" {
				return fmt.Errorf("%s row has an empty name", strings.ToLower(s.String()))
			}
			added = append(added, keyLine(r.Key, r.Value))
		}
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].at > edits[j].at })
	for _, e := range edits {
		e.run()
	}
	if len(added) > 0 {
		p.insert(table, added)
	}
	return nil
}

func (p *patcher) removal(l *layout, table, key string) (edit, bool) {
	if sp, ok := l.keys[joinPath(table, key)]; ok {
		return edit{at: sp.start, run: func() { p.splice(sp.start, sp.end, nil) }}, true
	}
	if h, ok := l.headers[joinPath(table, key)]; ok {
		end := l.lastEntryEnd(joinPath(table, key), h+1)
		return edit{at: h, run: func() { p.splice(h, end, nil) }}, true
	}
	return edit{}, false
}

func (p *patcher) replacement(l *layout, table string, r Row) (edit, bool) {
	if sp, ok := l.keys[joinPath(table, r.OriginalKey)]; ok {
		return edit{at: sp.start, run: func() {
			p.splice(sp.start, sp.end, []string{rewriteLine(p.lines[sp.start], sp, keyLine(r.Key, r.Value))})
		}}, true
	}

	// A sub-table such as [tasks.build] keeps its command under "run".
	h, ok := l.headers[joinPath(table, r.OriginalKey)]
	if !ok {
		return edit{}, false
	}
	runSpan, hasRun := l.keys[joinPath(table, r.OriginalKey, "run")]
	return edit{at: h, run: func() {
		run := keyLine("run", r.Value)
		if hasRun {
			p.splice(runSpan.start, runSpan.end, []string{rewriteLine(p.lines[runSpan.start], runSpan, run)})
		} else {
			p.splice(h+1, h+1, []string{run})
		}
		if r.Key != r.OriginalKey {
			_, comment := splitComment(p.lines[h])
			line := "[" + table + "." + encodeKey(r.Key) + "]"
			if comment != "" {
				line += " " + comment
			}
			p.splice(h, h+1, []string{leadingSpace(p.lines[h]) + line})
		}
	}}, true
}

func (p *patcher) insert(table string, lines []string) {
	l := p.scan()
	if h, ok := l.headers[table]; ok {
		at := l.lastEntryEnd(table, h+1)
		p.splice(at, at, lines)
		return
	}

	// Dotted keys at the root, e.g. tools.node = "20".
	last := -1
	for _, e := range l.entries {
		if len(e.path) == 2 && e.path[0] == table && e.table == "" {
			last = e.span.end
		}
	}
	if last >= 0 {
		dotted := make([]string, len(lines))
		for i, line := range lines {
			dotted[i] = table + "." + line
		}
		p.splice(last, last, dotted)
		return
	}

	block := []string{"[" + table + "]"}
	if n := len(p.lines); n > 0 && strings.TrimSpace(p.lines[n-1]) != "" {
		block = append([]string{""}, block...)
	}
	block = append(block, lines...)
	p.splice(len(p.lines), len(p.lines), block)
}

// lastEntryEnd returns the end of the last key/value pair belonging directly
// to table, or fallback when it has none.
func (l *layout) lastEntryEnd(table string, fallback int) int {
	end := fallback
	for _, e := range l.entries {
		if e.table == table && e.span.end > end {
			end = e.span.end
		}
	}
	return end
}

// keyLine renders key = "value" with TOML quoting.
func keyLine(key, value string) string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]string{key: value}); err != nil {
		return fmt.Sprintf("%q = %q", key, value)
	}
	return strings.TrimRight(buf.String(), "\n")
}

// encodeKey renders a key, quoting it when it is not a bare key.
func encodeKey(key string) string {
	line := keyLine(key, "")
	k, _, _ := strings.Cut(line, " = ")
	return k
}

// rewriteLine replaces a key/value line keeping indentation and, for single
// line values, a trailing comment.
func rewriteLine(orig string, sp span, kv string) string {
	line := leadingSpace(orig) + kv
	if sp.end-sp.start == 1 {
		if _, comment := splitComment(orig); comment != "" {
			line += " " + comment
		}
	}
	return line
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}

// splitComment separates a line into code and a trailing # comment, ignoring
// # inside quoted strings.
func splitComment(line string) (code, comment string) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == '"' && c == '\\':
			i++
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote == 0 && c == '#':
			return line[:i], line[i:]
		}
	}
	return line, ""
}

// parseHeader recognizes [table] and [[array]] headers.
func parseHeader(line string) (path []string, array, ok bool) {
	code, _ := splitComment(line)
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "[") || !strings.HasSuffix(code, "]") {
		return nil, false, false
	}
	inner := code[1 : len(code)-1]
	if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
		array = true
		inner = inner[1 : len(inner)-1]
	}
	path, rest, ok := parseKeyPath(strings.TrimSpace(inner))
	if !ok || strings.TrimSpace(rest) != "" {
		return nil, false, false
	}
	return path, array, true
}

// parseKey returns the dotted key path of a key/value line.
func parseKey(line string) ([]string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' || trimmed[0] == '[' {
		return nil, false
	}
	path, rest, ok := parseKeyPath(trimmed)
	if !ok || !strings.HasPrefix(strings.TrimSpace(rest), "=") {
		return nil, false
	}
	return path, true
}

// parseKeyPath reads a possibly dotted, possibly quoted key and returns the
// remaining text.
func parseKeyPath(s string) (path []string, rest string, ok bool) {
	for {
		s = strings.TrimLeft(s, " \t")
		part, r, ok := parseSimpleKey(s)
		if !ok {
			return nil, s, false
		}
		path = append(path, part)
		r = strings.TrimLeft(r, " \t")
		if !strings.HasPrefix(r, ".") {
			return path, r, true
		}
		s = r[1:]
	}
}

func parseSimpleKey(s string) (key, rest string, ok bool) {
	if s == "" {
		return "", s, false
	}
	switch s[0] {
	case '"':
		var b strings.Builder
		for i := 1; i < len(s); i++ {
			switch s[i] {
			case '\\':
				if i+1 < len(s) {
					i++
					b.WriteByte(s[i])
				}
			case '"':
				return b.String(), s[i+1:], true
			default:
				b.WriteByte(s[i])
			}
		}
		return "", s, false
	case '\'':
		end := strings.IndexByte(s[1:], '\'')
		if end < 0 {
			return "", s, false
		}
		return s[1 : end+1], s[end+2:], true
	}
	i := 0
	for i < len(s) && isBareKeyChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", s, false
	}
	return s[:i], s[i:], true
}

func isBareKeyChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}
