package app

// Tab is one page of the dashboard.
type Tab int

const (
	TabTools Tab = iota
	TabOutdated
	TabRegistry
	TabTasks
	TabEnvironment
	TabSettings
	TabConfig
	TabDoctor
	TabProjects
	TabBootstrap
)

// Tabs lists every tab in sidebar order.
var Tabs = []Tab{
	TabTools,
	TabOutdated,
	TabRegistry,
	TabTasks,
	TabEnvironment,
	TabSettings,
	TabConfig,
	TabDoctor,
	TabProjects,
	TabBootstrap,
}

var tabNames = map[Tab]string{
	TabTools:       "Tools",
	TabOutdated:    "Outdated",
	TabRegistry:    "Registry",
	TabTasks:       "Tasks",
	TabEnvironment: "Env",
	TabSettings:    "Settings",
	TabConfig:      "Config",
	TabDoctor:      "Doctor",
	TabProjects:    "Projects",
	TabBootstrap:   "Bootstrap",
}

func (t Tab) String() string {
	if name, ok := tabNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Columns returns the column headers of the tab. Only tabs with sortable
// columns report any.
func (t Tab) Columns() []string {
	switch t {
	case TabTools:
		return []string{"Name", "Version", "Active", "Source"}
	case TabOutdated:
		return []string{"Name", "Current", "Latest", "Requested"}
	case TabRegistry:
		return []string{"Name", "Description"}
	case TabTasks:
		return []string{"Name", "Description", "Source"}
	case TabEnvironment:
		return []string{"Name", "Value", "Source", "Tool"}
	case TabSettings:
		return []string{"Key", "Value", "Type"}
	case TabProjects:
		return []string{"Name", "Health", "Path"}
	default:
		return nil
	}
}

// SortColumns is the number of columns CycleSortOrder walks through.
func (t Tab) SortColumns() int {
	return len(t.Columns())
}

func (t Tab) index() int {
	for i, tab := range Tabs {
		if tab == t {
			return i
		}
	}
	return 0
}

// Focus is the pane receiving navigation.
type Focus int

const (
	PaneContent Focus = iota
	PaneSidebar
)

// SidebarWidth is the width of the tab sidebar in cells. Mouse clicks left of
// it select tabs.
const SidebarWidth = 16

// sidebarTop is the screen row of the first sidebar entry (header plus border).
const sidebarTop = 4
