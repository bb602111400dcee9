package app

import (
	"fmt"
	"strings"
)

// maxPruneNames is how many candidates the prune confirmation names.
const maxPruneNames = 5

func (c *Controller) versionsLoaded(a VersionsLoaded) {
	if !c.awaiting(a.Request) {
		return
	}
	s := c.State
	if len(a.Versions) == 0 {
		s.Popup = nil
		s.setStatus("No versions found", outcomeTTL)
		return
	}
	s.Popup = newPicker(a.Tool, a.Versions, a.Mode)
}

func (c *Controller) pruneLoaded(a PruneLoaded) {
	if !c.awaiting(a.Request) {
		return
	}
	s := c.State
	if len(a.Candidates) == 0 {
		s.Popup = nil
		s.setStatus("No unused tool versions to prune", outcomeTTL)
		return
	}

	names := make([]string, 0, maxPruneNames)
	for i, cand := range a.Candidates {
		if i == maxPruneNames {
			break
		}
		names = append(names, cand.String())
	}
	msg := fmt.Sprintf("Prune %d versions? (%s", len(a.Candidates), strings.Join(names, ", "))
	if len(a.Candidates) > maxPruneNames {
		msg += ", ..."
	}
	s.Popup = &ConfirmPopup{Message: msg + ")", OnConfirm: ConfirmPrune{}}
}

// installTool fetches versions of the selected registry entry for a picker.
func (c *Controller) installTool(mode PickerMode) []Command {
	s := c.State
	if s.Popup != nil || s.Tab != TabRegistry {
		return nil
	}
	entry, ok := s.Registry.Current()
	if !ok {
		return nil
	}
	id := c.progress("Fetching versions for "+entry.Short+"...", PurposeVersions)
	return []Command{FetchVersionsCmd{Request: id, Tool: entry.Short, Mode: mode}}
}

func (c *Controller) uninstallTool() {
	s := c.State
	if s.Popup != nil || s.Tab != TabTools {
		return
	}
	if t, ok := s.Tools.Current(); ok {
		s.Popup = &ConfirmPopup{
			Message:   "Uninstall " + t.Spec() + "?",
			OnConfirm: ConfirmUninstall{Tool: t.Name, Version: t.Version},
		}
	}
}

func (c *Controller) updateTool() []Command {
	s := c.State
	if s.Popup != nil {
		return nil
	}
	switch s.Tab {
	case TabTools:
		if t, ok := s.Tools.Current(); ok {
			c.progress("Updating "+t.Name+"...", PurposeOperation)
			return []Command{UpgradeCmd{Tool: t.Name}}
		}
	case TabOutdated:
		if o, ok := s.Outdated.Current(); ok {
			c.progress("Upgrading "+o.Name+"...", PurposeOperation)
			return []Command{UpgradeCmd{Tool: o.Name}}
		}
	}
	return nil
}

func (c *Controller) upgradeAll() []Command {
	s := c.State
	if s.Popup != nil || s.Tab != TabOutdated {
		return nil
	}
	c.progress("Upgrading all tools...", PurposeOperation)
	return []Command{UpgradeCmd{}}
}

func (c *Controller) runTask() {
	s := c.State
	if s.Popup != nil || s.Tab != TabTasks {
		return
	}
	if t, ok := s.Tasks.Current(); ok {
		s.Popup = &ConfirmPopup{
			Message:   fmt.Sprintf("Run task '%s'?", t.Name),
			OnConfirm: ConfirmRunTask{Task: t.Name},
		}
	}
}

func (c *Controller) pruneTool() []Command {
	if c.State.Popup != nil {
		return nil
	}
	id := c.progress("Checking for unused versions...", PurposePrune)
	return []Command{PruneDryRunCmd{Request: id}}
}

func (c *Controller) trustConfig() {
	s := c.State
	if s.Popup != nil || s.Tab != TabConfig {
		return
	}
	if cf, ok := s.Configs.Current(); ok {
		s.Popup = &ConfirmPopup{
			Message:   "Trust config: " + cf.Path + "?",
			OnConfirm: ConfirmTrust{Path: cf.Path},
		}
	}
}

func (c *Controller) showToolDetail() []Command {
	s := c.State
	if s.Popup != nil {
		return nil
	}
	switch s.Tab {
	case TabTools:
		if t, ok := s.Tools.Current(); ok {
			id := c.progress("Fetching info for "+t.Name+"...", PurposeDetail)
			return []Command{FetchToolDetailCmd{Request: id, Tool: t.Name}}
		}
	case TabTasks:
		c.runTask()
	}
	return nil
}

// confirmProject asks before running a project-wide operation on path, or on
// the selected project when path is empty.
func (c *Controller) confirmProject(path, format string, action func(string) ConfirmAction) {
	s := c.State
	if s.Popup != nil {
		return
	}
	if path == "" {
		if s.Tab != TabProjects {
			return
		}
		p, ok := s.Projects.Current()
		if !ok {
			return
		}
		path = p.Path
	}
	s.Popup = &ConfirmPopup{Message: fmt.Sprintf(format, path), OnConfirm: action(path)}
}

// confirm accepts the visible popup, or runs the tab's default action when
// there is none.
func (c *Controller) confirm() []Command {
	s := c.State
	switch p := s.Popup.(type) {
	case nil:
		switch s.Tab {
		case TabTools:
			return c.showToolDetail()
		case TabTasks:
			c.runTask()
		case TabProjects:
			return c.openEditor("")
		case TabBootstrap:
			return c.wizardNext()
		}
	case *PickerPopup:
		version, ok := p.Current()
		if !ok {
			s.Popup = nil
			return nil
		}
		spec := p.Tool + "@" + version
		if p.Mode == PickUseGlobal {
			c.progress("Setting "+spec+" globally...", PurposeOperation)
			return []Command{UseGlobalCmd{Tool: p.Tool, Version: version}}
		}
		c.progress("Installing "+spec+"...", PurposeOperation)
		return []Command{InstallCmd{Tool: p.Tool, Version: version}}
	case *ConfirmPopup:
		return c.runConfirmed(p.OnConfirm)
	case *DetailPopup, *HelpPopup:
		s.Popup = nil
	case *EditorPopup:
		if p.Editing {
			c.editorConfirmEdit()
		} else {
			c.editorStartEdit()
		}
	case *ScanConfigPopup:
		if p.Adding {
			c.scanConfigCommitDir()
			return nil
		}
		return c.saveScanConfig()
	case *ProgressPopup:
		// Still waiting.
	}
	return nil
}

func (c *Controller) runConfirmed(action ConfirmAction) []Command {
	switch a := action.(type) {
	case ConfirmUninstall:
		c.progress("Uninstalling "+a.Tool+"@"+a.Version+"...", PurposeOperation)
		return []Command{UninstallCmd{Tool: a.Tool, Version: a.Version}}
	case ConfirmPrune:
		c.progress("Pruning unused versions...", PurposeOperation)
		return []Command{PruneCmd{}}
	case ConfirmTrust:
		c.progress("Trusting "+a.Path+"...", PurposeOperation)
		return []Command{TrustCmd{Path: a.Path}}
	case ConfirmRunTask:
		c.progress(fmt.Sprintf("Running task '%s'...", a.Task), PurposeOperation)
		return []Command{RunTaskCmd{Name: a.Task}}
	case ConfirmInstallIn:
		c.progress("Installing tools in "+a.Path+"...", PurposeOperation)
		return []Command{InstallInCmd{Dir: a.Path}}
	case ConfirmUpgradePins:
		c.progress("Updating tool pins in "+a.Path+"...", PurposeOperation)
		return []Command{UpgradePinsInCmd{Dir: a.Path}}
	}
	c.State.Popup = nil
	return nil
}
