package app

import (
	"misetui/internal/manifest"
	"misetui/internal/model"
)

func (c *Controller) wizardNext() []Command {
	s := c.State
	if s.Tab != TabBootstrap || s.Popup != nil {
		return nil
	}
	w := &s.Wizard
	switch w.Step {
	case WizardIdle:
		w.Step = WizardDetecting
		return []Command{DetectToolsCmd{
			Dir:       s.Cwd,
			Inventory: append([]model.InstalledTool(nil), s.Tools.Items...),
		}}
	case WizardReview:
		if !anyEnabled(w.Tools) {
			s.setStatus("Select at least one tool", noticeTTL)
			return nil
		}
		w.Preview = manifest.Render(w.Tools)
		w.Step = WizardPreview
	case WizardPreview:
		w.Step = WizardWriting
		return []Command{WriteBootstrapCmd{
			Dir:        s.Cwd,
			Tools:      append([]model.DetectedTool(nil), w.Tools...),
			AgentFiles: w.AgentFiles,
		}}
	}
	return nil
}

func (c *Controller) wizardPrev() {
	s := c.State
	if s.Tab != TabBootstrap || s.Popup != nil {
		return
	}
	switch s.Wizard.Step {
	case WizardReview:
		s.Wizard = Wizard{}
	case WizardPreview:
		s.Wizard.Step = WizardReview
		s.Wizard.Preview = ""
	}
}

func (c *Controller) wizardDetected(a WizardDetected) {
	s := c.State
	if s.Wizard.Step != WizardDetecting {
		return
	}
	switch {
	case a.Existing != "":
		s.Wizard = Wizard{}
		s.setStatus(a.Existing+" already exists; edit it from the Projects tab", outcomeTTL)
	case len(a.Tools) == 0:
		s.Wizard = Wizard{}
		s.setStatus("No tools detected in "+s.Cwd, outcomeTTL)
	default:
		s.Wizard = Wizard{Step: WizardReview, Tools: a.Tools}
	}
}

func (c *Controller) wizardToggleTool() {
	w := &c.State.Wizard
	if w.Step != WizardReview || w.Selected >= len(w.Tools) {
		return
	}
	w.Tools[w.Selected].Enabled = !w.Tools[w.Selected].Enabled
}

func anyEnabled(tools []model.DetectedTool) bool {
	for _, t := range tools {
		if t.Enabled {
			return true
		}
	}
	return false
}
