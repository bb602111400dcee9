package app

import (
	"strings"

	"misetui/internal/config"
)

func (c *Controller) openScanConfig() {
	s := c.State
	if s.Popup != nil {
		return
	}
	s.Popup = &ScanConfigPopup{
		Dirs:     append([]string(nil), s.Scan.Dirs...),
		MaxDepth: config.ClampDepth(s.Scan.MaxDepth),
	}
}

func (c *Controller) scanConfig() *ScanConfigPopup {
	p, _ := c.State.Popup.(*ScanConfigPopup)
	return p
}

func (c *Controller) scanConfigAddDir() {
	if p := c.scanConfig(); p != nil && !p.Adding {
		p.Adding = true
		p.NewDir = ""
	}
}

func (c *Controller) scanConfigRemoveDir() {
	p := c.scanConfig()
	if p == nil || p.Adding || p.Selected >= len(p.Dirs) {
		return
	}
	p.Dirs = append(p.Dirs[:p.Selected:p.Selected], p.Dirs[p.Selected+1:]...)
	p.Selected = clampIndex(p.Selected, len(p.Dirs))
}

func (c *Controller) scanConfigInput(ch rune) {
	if p := c.scanConfig(); p != nil && p.Adding {
		p.NewDir += string(ch)
	}
}

func (c *Controller) scanConfigBackspace() {
	if p := c.scanConfig(); p != nil && p.Adding {
		p.NewDir = dropLastRune(p.NewDir)
	}
}

// scanConfigCommitDir appends the typed directory. Blank and duplicate
// entries are discarded.
func (c *Controller) scanConfigCommitDir() {
	p := c.scanConfig()
	if p == nil || !p.Adding {
		return
	}
	dir := strings.TrimSpace(p.NewDir)
	p.Adding = false
	p.NewDir = ""
	if dir == "" {
		return
	}
	for _, d := range p.Dirs {
		if d == dir {
			return
		}
	}
	p.Dirs = append(p.Dirs, dir)
	p.Selected = len(p.Dirs) - 1
}

func (c *Controller) scanConfigDepth(delta int) {
	if p := c.scanConfig(); p != nil && !p.Adding {
		p.MaxDepth = config.ClampDepth(p.MaxDepth + delta)
	}
}

func (c *Controller) saveScanConfig() []Command {
	p := c.scanConfig()
	if p == nil || p.Adding {
		return nil
	}
	dirs := append([]string(nil), p.Dirs...)
	depth := p.MaxDepth
	id := c.progress("Saving scan settings...", PurposeScanConfig)
	return []Command{SaveScanConfigCmd{Request: id, Dirs: dirs, MaxDepth: depth}}
}

func (c *Controller) scanConfigSaved(a ScanConfigSaved) []Command {
	if !c.awaiting(a.Request) {
		return nil
	}
	s := c.State
	s.Popup = nil
	s.Scan.Dirs = append([]string(nil), a.Dirs...)
	s.Scan.MaxDepth = a.MaxDepth
	s.setStatus("Scan settings saved", outcomeTTL)
	return []Command{c.scanCommand()}
}
