package ui

import (
	"github.com/charmbracelet/lipgloss"

	"misetui/internal/model"
)

// Colors for the UI theme - Muted Professional Palette
var (
	ColorPrimary   = lipgloss.Color("#A78BFA") // Soft Purple (Lavender 400)
	ColorSecondary = lipgloss.Color("#22D3EE") // Bright Cyan (Cyan 400)
	ColorSuccess   = lipgloss.Color("#059669") // Emerald 600
	ColorWarning   = lipgloss.Color("#D97706") // Amber 600
	ColorError     = lipgloss.Color("#DC2626") // Red 600
	ColorMuted     = lipgloss.Color("#9CA3AF") // Gray 400
	ColorText      = lipgloss.Color("#F1F5F9") // Slate 100
	ColorBg        = lipgloss.Color("#0F172A") // Slate 900

	ColorBorder    = lipgloss.Color("#334155") // Slate 700
	ColorHighlight = lipgloss.Color("#E9D5FF") // Purple 200
	ColorDim       = lipgloss.Color("#6B7280") // Gray 500
	ColorAccent    = lipgloss.Color("#F472B6") // Pink 400
	ColorInfo      = lipgloss.Color("#2DD4BF") // Teal 400
	ColorGolden    = lipgloss.Color("#FCD34D") // Amber 300
)

// Styles contains all UI styles.
type Styles struct {
	Title     lipgloss.Style
	Header    lipgloss.Style
	Dim       lipgloss.Style
	Text      lipgloss.Style
	Match     lipgloss.Style
	Selected  lipgloss.Style
	Search    lipgloss.Style
	Spinner   lipgloss.Style
	StatusBar lipgloss.Style
	Error     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style

	Sidebar        lipgloss.Style
	SidebarFocused lipgloss.Style
	SidebarTab     lipgloss.Style
	SidebarActive  lipgloss.Style
	Content        lipgloss.Style
	ContentFocused lipgloss.Style

	// Modal styles
	Modal         lipgloss.Style
	ModalTitle    lipgloss.Style
	ModalSelected lipgloss.Style
	ModalMuted    lipgloss.Style
}

// DefaultStyles returns the default UI styles.
func DefaultStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary),

		Dim: lipgloss.NewStyle().
			Foreground(ColorDim),

		Text: lipgloss.NewStyle().
			Foreground(ColorText),

		Match: lipgloss.NewStyle().
			Foreground(ColorGolden).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(ColorHighlight).
			Background(lipgloss.Color("#1E293B")).
			Bold(true),

		Search: lipgloss.NewStyle().
			Foreground(ColorAccent),

		Spinner: lipgloss.NewStyle().
			Foreground(ColorPrimary),

		StatusBar: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),

		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder),

		SidebarFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary),

		SidebarTab: lipgloss.NewStyle().
			Foreground(ColorMuted),

		SidebarActive: lipgloss.NewStyle().
			Foreground(ColorSecondary).
			Bold(true),

		Content: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder),

		ContentFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary),

		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSecondary).
			Padding(0, 1),

		ModalTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary),

		ModalSelected: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorSecondary),

		ModalMuted: lipgloss.NewStyle().
			Foreground(ColorDim).
			Italic(true),
	}
}

// HealthStyle colors a project health status.
func (s *Styles) HealthStyle(h model.HealthStatus) lipgloss.Style {
	switch h {
	case model.Healthy:
		return s.Success
	case model.Outdated:
		return s.Warning
	case model.Missing:
		return s.Error
	default:
		return s.Dim
	}
}

// DriftStyle colors the drift indicator.
func (s *Styles) DriftStyle(d model.DriftState) lipgloss.Style {
	switch d {
	case model.DriftHealthy:
		return s.Success
	case model.DriftMissing:
		return s.Error
	case model.DriftUntrusted:
		return s.Warning
	default:
		return s.Dim
	}
}
