package app

import (
	"cmp"

	"misetui/internal/filter"
	"misetui/internal/model"
)

// cycleSort advances the sort of the current tab: ascending, then descending,
// then the next column ascending. Tabs without columns are left alone.
func (c *Controller) cycleSort() {
	s := c.State
	n := s.Tab.SortColumns()
	if n == 0 {
		return
	}
	if s.Sort.Ascending {
		s.Sort.Ascending = false
	} else {
		s.Sort.Ascending = true
		s.Sort.Column = (s.Sort.Column + 1) % n
	}
	c.applySort()
}

// applySort installs the current column order on the current tab's
// collection. The order sticks through later filters and reloads.
func (c *Controller) applySort() {
	s := c.State
	desc := !s.Sort.Ascending
	col := s.Sort.Column
	switch s.Tab {
	case TabTools:
		s.Tools.SetOrder(toolOrder(col), desc)
	case TabOutdated:
		s.Outdated.SetOrder(outdatedOrder(col), desc)
	case TabRegistry:
		s.Registry.SetOrder(registryOrder(col), desc)
	case TabTasks:
		s.Tasks.SetOrder(taskOrder(col), desc)
	case TabEnvironment:
		s.Env.SetOrder(envOrder(col), desc)
	case TabSettings:
		s.Settings.SetOrder(settingOrder(col), desc)
	case TabProjects:
		s.Projects.SetOrder(projectOrder(col), desc)
	}
}

// resetSort returns to the unsorted state for the current tab.
func (c *Controller) resetSort() {
	s := c.State
	s.Sort = SortState{Ascending: true}
	switch s.Tab {
	case TabTools:
		unsort(s.Tools, s.Query)
	case TabOutdated:
		unsort(s.Outdated, s.Query)
	case TabRegistry:
		unsort(s.Registry, s.Query)
	case TabTasks:
		unsort(s.Tasks, s.Query)
	case TabEnvironment:
		unsort(s.Env, s.Query)
	case TabSettings:
		unsort(s.Settings, s.Query)
	case TabProjects:
		unsort(s.Projects, s.Query)
	}
}

func unsort[T any](c *filter.Collection[T], query string) {
	if !c.Sorted() {
		return
	}
	c.SetOrder(nil, false)
	c.Refilter(query)
}

func toolOrder(col int) filter.CompareFunc[model.InstalledTool] {
	return func(a, b model.InstalledTool) int {
		switch col {
		case 1:
			return filter.CompareFold(a.Version, b.Version)
		case 2:
			return filter.CompareBool(a.Active, b.Active)
		case 3:
			return filter.CompareFold(a.Source, b.Source)
		default:
			return filter.CompareFold(a.Name, b.Name)
		}
	}
}

func outdatedOrder(col int) filter.CompareFunc[model.OutdatedTool] {
	return func(a, b model.OutdatedTool) int {
		switch col {
		case 1:
			return filter.CompareFold(a.Current, b.Current)
		case 2:
			return filter.CompareFold(a.Latest, b.Latest)
		case 3:
			return filter.CompareFold(a.Requested, b.Requested)
		default:
			return filter.CompareFold(a.Name, b.Name)
		}
	}
}

func registryOrder(col int) filter.CompareFunc[model.RegistryEntry] {
	return func(a, b model.RegistryEntry) int {
		if col == 1 {
			return filter.CompareFold(a.Description, b.Description)
		}
		return filter.CompareFold(a.Short, b.Short)
	}
}

func taskOrder(col int) filter.CompareFunc[model.Task] {
	return func(a, b model.Task) int {
		switch col {
		case 1:
			return filter.CompareFold(a.Description, b.Description)
		case 2:
			return filter.CompareFold(a.Source, b.Source)
		default:
			return filter.CompareFold(a.Name, b.Name)
		}
	}
}

func envOrder(col int) filter.CompareFunc[model.EnvVar] {
	return func(a, b model.EnvVar) int {
		switch col {
		case 1:
			return filter.CompareFold(a.Value, b.Value)
		case 2:
			return filter.CompareFold(a.Source, b.Source)
		case 3:
			return filter.CompareFold(a.Tool, b.Tool)
		default:
			return filter.CompareFold(a.Name, b.Name)
		}
	}
}

func settingOrder(col int) filter.CompareFunc[model.Setting] {
	return func(a, b model.Setting) int {
		switch col {
		case 1:
			return filter.CompareFold(a.Value, b.Value)
		case 2:
			return filter.CompareFold(a.ValueType, b.ValueType)
		default:
			return filter.CompareFold(a.Key, b.Key)
		}
	}
}

func projectOrder(col int) filter.CompareFunc[model.Project] {
	return func(a, b model.Project) int {
		switch col {
		case 1:
			return cmp.Compare(a.Health, b.Health)
		case 2:
			return filter.CompareFold(a.Path, b.Path)
		default:
			return filter.CompareFold(a.Name, b.Name)
		}
	}
}
