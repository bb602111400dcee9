package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"

	"misetui/internal/logging"
)

type helpSection struct {
	title    string
	bindings []key.Binding
}

func helpSections() []helpSection {
	return []helpSection{
		{"Navigation", []key.Binding{
			keys.Up, keys.Down, keys.PageUp, keys.PageDown,
			keys.Sidebar, keys.Content, keys.NextTab, keys.PrevTab,
			keys.Confirm, keys.Cancel, keys.Search, keys.Sort, keys.Quit,
		}},
		{"Tools", []key.Binding{
			keys.Install, keys.Use, keys.Update, keys.UpgradeAll, keys.Uninstall,
			keys.Detail, keys.Prune, keys.Trust, keys.Yank, keys.Refresh,
		}},
		{"Projects", []key.Binding{
			keys.Edit, keys.InstallIn, keys.UpdatePins, keys.JumpDrift,
			keys.CheckDrift, keys.ScanConfig,
		}},
		{"Editor", []key.Binding{
			keys.NextField, keys.Add, keys.Delete, keys.Diff, keys.Write,
		}},
		{"Bootstrap", []key.Binding{
			keys.Space, keys.AgentFiles, keys.WizardNext, keys.WizardPrev,
		}},
	}
}

// helpMarkdown renders the key bindings as a markdown document.
func helpMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Keys\n")
	for _, sec := range helpSections() {
		fmt.Fprintf(&sb, "\n## %s\n\n| Key | Action |\n| --- | --- |\n", sec.title)
		for _, b := range sec.bindings {
			h := b.Help()
			if h.Key == "" {
				continue
			}
			fmt.Fprintf(&sb, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	return sb.String()
}

// helpRenderer renders the help document with glamour, caching the output
// per width.
type helpRenderer struct {
	width    int
	rendered string
}

func newHelpRenderer() *helpRenderer {
	return &helpRenderer{}
}

func (h *helpRenderer) Render(width int) string {
	if width == h.width && h.rendered != "" {
		return h.rendered
	}
	md := helpMarkdown()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		logging.Warn("help renderer unavailable", "error", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		logging.Warn("failed to render help", "error", err)
		return md
	}
	h.width = width
	h.rendered = strings.TrimRight(out, "\n")
	return h.rendered
}
