package app

import (
	"misetui/internal/manifest"
	"misetui/internal/model"
	"misetui/internal/scanner"
)

// Command is a side effect requested by the reducer. The dispatcher runs each
// one independently and turns its outcome into exactly one Action. Commands
// carry copies of everything they need and never reference State.
type Command interface {
	command()
}

// Collection fetches.
type (
	FetchToolsCmd    struct{}
	FetchRegistryCmd struct{}
	FetchConfigsCmd  struct{}
	FetchDoctorCmd   struct{}
	FetchOutdatedCmd struct{}
	FetchTasksCmd    struct{}
	FetchEnvCmd      struct{}
	FetchSettingsCmd struct{}
)

// Popup-bound requests.
type (
	FetchVersionsCmd struct {
		Request RequestID
		Tool    string
		Mode    PickerMode
	}
	FetchToolDetailCmd struct {
		Request RequestID
		Tool    string
	}
	PruneDryRunCmd struct{ Request RequestID }
	LoadEditorCmd  struct {
		Request RequestID
		Path    string
	}
	SaveScanConfigCmd struct {
		Request  RequestID
		Dirs     []string
		MaxDepth int
	}
)

// Operations reported through OperationComplete / OperationFailed.
type (
	InstallCmd   struct{ Tool, Version string }
	UseGlobalCmd struct{ Tool, Version string }
	UninstallCmd struct{ Tool, Version string }
	// UpgradeCmd upgrades Tool, or everything when Tool is empty.
	UpgradeCmd       struct{ Tool string }
	RunTaskCmd       struct{ Name string }
	PruneCmd         struct{}
	TrustCmd         struct{ Path string }
	InstallInCmd     struct{ Dir string }
	UpgradePinsInCmd struct{ Dir string }
	WriteEditorCmd   struct{ Editor *manifest.Editor }
)

// Background work.
type (
	CheckDriftCmd   struct{ Dir string }
	ScanProjectsCmd struct {
		Options scanner.Options
		Tools   []model.InstalledTool
	}
	DetectToolsCmd struct {
		Dir       string
		Inventory []model.InstalledTool
	}
	WriteBootstrapCmd struct {
		Dir        string
		Tools      []model.DetectedTool
		AgentFiles bool
	}
	CopyCmd struct{ Text string }
)

func (FetchToolsCmd) command()    {}
func (FetchRegistryCmd) command() {}
func (FetchConfigsCmd) command()  {}
func (FetchDoctorCmd) command()   {}
func (FetchOutdatedCmd) command() {}
func (FetchTasksCmd) command()    {}
func (FetchEnvCmd) command()      {}
func (FetchSettingsCmd) command() {}

func (FetchVersionsCmd) command()   {}
func (FetchToolDetailCmd) command() {}
func (PruneDryRunCmd) command()     {}
func (LoadEditorCmd) command()      {}
func (SaveScanConfigCmd) command()  {}

func (InstallCmd) command()       {}
func (UseGlobalCmd) command()     {}
func (UninstallCmd) command()     {}
func (UpgradeCmd) command()       {}
func (RunTaskCmd) command()       {}
func (PruneCmd) command()         {}
func (TrustCmd) command()         {}
func (InstallInCmd) command()     {}
func (UpgradePinsInCmd) command() {}
func (WriteEditorCmd) command()   {}

func (CheckDriftCmd) command()     {}
func (ScanProjectsCmd) command()   {}
func (DetectToolsCmd) command()    {}
func (WriteBootstrapCmd) command() {}
func (CopyCmd) command()           {}

// fetchAll requests every collection the refresh cycle owns.
func fetchAll() []Command {
	return []Command{
		FetchToolsCmd{},
		FetchRegistryCmd{},
		FetchConfigsCmd{},
		FetchDoctorCmd{},
		FetchOutdatedCmd{},
		FetchTasksCmd{},
		FetchEnvCmd{},
		FetchSettingsCmd{},
	}
}
