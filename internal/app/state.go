package app

import (
	"strings"

	"misetui/internal/config"
	"misetui/internal/filter"
	"misetui/internal/model"
	"misetui/internal/scanner"
)

// Status TTLs in ticks.
const (
	refreshTTL = 10
	noticeTTL  = 18
	outcomeTTL = 20
)

// SpinnerFrames is the number of frames the spinner cycles through.
const SpinnerFrames = 10

// pageSize is the distance PageUp/PageDown move.
const pageSize = 10

// StatusMessage is a transient line under the content pane.
type StatusMessage struct {
	Text string
	TTL  int
}

// SortState is the active column order of the current tab. Column 0
// ascending is the initial, unsorted state.
type SortState struct {
	Column    int
	Ascending bool
}

// WizardStep is the position in the bootstrap flow.
type WizardStep int

const (
	WizardIdle WizardStep = iota
	WizardDetecting
	WizardReview
	WizardPreview
	WizardWriting
)

func (s WizardStep) String() string {
	switch s {
	case WizardDetecting:
		return "detecting"
	case WizardReview:
		return "review"
	case WizardPreview:
		return "preview"
	case WizardWriting:
		return "writing"
	default:
		return "idle"
	}
}

// Wizard is the bootstrap flow that writes a first manifest into the working
// directory.
type Wizard struct {
	Step       WizardStep
	Tools      []model.DetectedTool
	Selected   int
	AgentFiles bool
	Preview    string
}

// Active reports whether the wizard has left the idle step.
func (w *Wizard) Active() bool {
	return w.Step != WizardIdle
}

// State is everything the dashboard shows. Only the controller mutates it.
type State struct {
	Tools    *filter.Collection[model.InstalledTool]
	Registry *filter.Collection[model.RegistryEntry]
	Configs  *filter.Collection[model.ConfigFile]
	Doctor   *filter.Collection[string]
	Outdated *filter.Collection[model.OutdatedTool]
	Tasks    *filter.Collection[model.Task]
	Env      *filter.Collection[model.EnvVar]
	Settings *filter.Collection[model.Setting]
	Projects *filter.Collection[model.Project]

	// OutdatedByName indexes Outdated for the Tools tab.
	OutdatedByName map[string]model.OutdatedTool

	Tab     Tab
	Focus   Focus
	Sidebar int

	SearchActive bool
	Query        string

	Sort    SortState
	Popup   Popup
	Status  *StatusMessage
	Spinner int

	Drift  model.DriftState
	Wizard Wizard

	// Scan is the scanner configuration the next rescan uses.
	Scan config.ScanConfig
	// Cwd is the directory the drift indicator and the wizard look at.
	Cwd string
}

// NewState creates a state with every collection loading.
func NewState(scan config.ScanConfig, cwd string) *State {
	return &State{
		Tools:          filter.NewCollection(toolFields),
		Registry:       filter.NewCollection(registryFields),
		Configs:        filter.NewCollection(configFields),
		Doctor:         filter.NewCollection(func(line string) []string { return []string{line} }),
		Outdated:       filter.NewCollection(outdatedFields),
		Tasks:          filter.NewCollection(taskFields),
		Env:            filter.NewCollection(envFields),
		Settings:       filter.NewCollection(settingFields),
		Projects:       filter.NewCollection(projectFields),
		OutdatedByName: map[string]model.OutdatedTool{},
		Sort:           SortState{Ascending: true},
		Drift:          model.DriftChecking,
		Scan:           scan,
		Cwd:            cwd,
	}
}

// ScanOptions returns the scanner options for the current scan settings.
func (s *State) ScanOptions() scanner.Options {
	roots := make([]string, 0, len(s.Scan.Dirs))
	for _, d := range s.Scan.Dirs {
		if d = strings.TrimSpace(d); d != "" {
			roots = append(roots, config.ExpandHome(d))
		}
	}
	return scanner.Options{
		Roots:    roots,
		MaxDepth: s.Scan.MaxDepth,
		Skip:     append([]string(nil), s.Scan.Skip...),
	}
}

// Loading reports whether any refresh-owned collection is still loading.
func (s *State) Loading() bool {
	for _, st := range s.loadStates() {
		if st == filter.Loading {
			return true
		}
	}
	return false
}

func (s *State) loadStates() []filter.LoadState {
	return []filter.LoadState{
		s.Tools.State,
		s.Registry.State,
		s.Configs.State,
		s.Doctor.State,
		s.Outdated.State,
		s.Tasks.State,
		s.Env.State,
		s.Settings.State,
	}
}

func (s *State) setStatus(text string, ttl int) {
	s.Status = &StatusMessage{Text: text, TTL: ttl}
}

func toolFields(t model.InstalledTool) []string {
	return []string{t.Name, t.Version}
}

func registryFields(e model.RegistryEntry) []string {
	return append([]string{e.Short, e.Description}, e.Aliases...)
}

func configFields(c model.ConfigFile) []string {
	return append([]string{c.Path}, c.Tools...)
}

func outdatedFields(o model.OutdatedTool) []string {
	return []string{o.Name, o.Current, o.Latest}
}

func taskFields(t model.Task) []string {
	return append([]string{t.Name, t.Description, t.Source}, t.Aliases...)
}

func envFields(e model.EnvVar) []string {
	return []string{e.Name, e.Value, e.Source}
}

func settingFields(s model.Setting) []string {
	return []string{s.Key, s.Value}
}

func projectFields(p model.Project) []string {
	return []string{p.Name, p.Path}
}
