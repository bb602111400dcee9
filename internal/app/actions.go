package app

import (
	"misetui/internal/manifest"
	"misetui/internal/model"
)

// Action is an event consumed by the controller. The set of actions is closed:
// only types in this package implement it.
type Action interface {
	action()
}

// RequestID correlates an asynchronous completion with the popup that is
// waiting for it.
type RequestID string

// Navigation.
type (
	Quit         struct{}
	MoveUp       struct{}
	MoveDown     struct{}
	PageUp       struct{}
	PageDown     struct{}
	NextTab      struct{}
	PrevTab      struct{}
	FocusSidebar struct{}
	FocusContent struct{}
	SelectTab    struct{ Tab Tab }
	MouseClick   struct{ X, Y int }
)

// Search.
type (
	EnterSearch          struct{}
	ExitSearch           struct{}
	SearchInput          struct{ Char rune }
	SearchBackspace      struct{}
	PopupSearchInput     struct{ Char rune }
	PopupSearchBackspace struct{}
)

// Collection loads. Each replaces the whole collection.
type (
	ToolsLoaded    struct{ Tools []model.InstalledTool }
	RegistryLoaded struct{ Entries []model.RegistryEntry }
	ConfigLoaded   struct{ Configs []model.ConfigFile }
	DoctorLoaded   struct{ Lines []string }
	OutdatedLoaded struct{ Tools []model.OutdatedTool }
	TasksLoaded    struct{ Tasks []model.Task }
	EnvLoaded      struct{ Vars []model.EnvVar }
	SettingsLoaded struct{ Settings []model.Setting }
	ProjectsLoaded struct{ Projects []model.Project }
	// LoadFailed ends the loading state of the tab's collection, keeping the
	// rows it had.
	LoadFailed struct {
		Tab     Tab
		Message string
	}
)

// Completions bound to a Progress popup.
type (
	VersionsLoaded struct {
		Request  RequestID
		Tool     string
		Mode     PickerMode
		Versions []string
	}
	ToolInfoLoaded struct {
		Request RequestID
		Tool    string
		Info    string
	}
	PruneLoaded struct {
		Request    RequestID
		Candidates []model.PruneCandidate
	}
	EditorLoaded struct {
		Request RequestID
		Editor  *manifest.Editor
	}
	ScanConfigSaved struct {
		Request  RequestID
		Dirs     []string
		MaxDepth int
	}
)

// Operations.
type (
	InstallTool   struct{}
	UninstallTool struct{}
	UpdateTool    struct{}
	UpgradeAll    struct{}
	UseTool       struct{}
	RunTask       struct{}
	PruneTool     struct{}
	TrustConfig   struct{}
	// ShowToolDetail opens the detail view of the selected tool.
	ShowToolDetail struct{}
	// InstallProjectTools and UpdateProjectPins act on Path, or on the
	// selected project when Path is empty.
	InstallProjectTools struct{ Path string }
	UpdateProjectPins   struct{ Path string }
	CycleSortOrder      struct{}
	Refresh             struct{}
	Confirm             struct{}
	CancelPopup         struct{}
	ShowHelp            struct{}
	Yank                struct{}
)

// Lifecycle.
type (
	OperationComplete struct{ Message string }
	OperationFailed   struct{ Message string }
	StatusNotice      struct{ Message string }
	Tick              struct{}
)

// Drift.
type (
	CheckDrift         struct{}
	DriftChecked       struct{ State model.DriftState }
	JumpToDriftProject struct{}
)

// Bootstrap wizard.
type (
	// WizardDetected reports detection results. Existing is set instead when
	// the directory already has a manifest.
	WizardDetected struct {
		Tools    []model.DetectedTool
		Existing string
	}
	WizardToggleTool       struct{}
	WizardToggleAgentFiles struct{}
	WizardNextStep         struct{}
	WizardPrevStep         struct{}
	WizardCompleted        struct{ Message string }
)

// Inline manifest editor.
type (
	// OpenEditor opens Path, or the selected project's manifest when Path is
	// empty.
	OpenEditor          struct{ Path string }
	EditorSwitchSection struct{}
	EditorStartEdit     struct{}
	EditorNextField     struct{}
	EditorInput         struct{ Char rune }
	EditorBackspace     struct{}
	EditorConfirmEdit   struct{}
	EditorCancelEdit    struct{}
	EditorDeleteRow     struct{}
	EditorAddRow        struct{}
	EditorToggleDiff    struct{}
	EditorWrite         struct{}
	EditorClose         struct{}
)

// Scan settings popup.
type (
	OpenScanConfig      struct{}
	ScanConfigAddDir    struct{}
	ScanConfigRemoveDir struct{}
	ScanConfigInput     struct{ Char rune }
	ScanConfigBackspace struct{}
	ScanConfigDepth     struct{ Delta int }
	SaveScanConfig      struct{}
)

func (Quit) action()         {}
func (MoveUp) action()       {}
func (MoveDown) action()     {}
func (PageUp) action()       {}
func (PageDown) action()     {}
func (NextTab) action()      {}
func (PrevTab) action()      {}
func (FocusSidebar) action() {}
func (FocusContent) action() {}
func (SelectTab) action()    {}
func (MouseClick) action()   {}

func (EnterSearch) action()          {}
func (ExitSearch) action()           {}
func (SearchInput) action()          {}
func (SearchBackspace) action()      {}
func (PopupSearchInput) action()     {}
func (PopupSearchBackspace) action() {}

func (ToolsLoaded) action()    {}
func (RegistryLoaded) action() {}
func (ConfigLoaded) action()   {}
func (DoctorLoaded) action()   {}
func (OutdatedLoaded) action() {}
func (TasksLoaded) action()    {}
func (EnvLoaded) action()      {}
func (SettingsLoaded) action() {}
func (ProjectsLoaded) action() {}
func (LoadFailed) action()     {}

func (VersionsLoaded) action()  {}
func (ToolInfoLoaded) action()  {}
func (PruneLoaded) action()     {}
func (EditorLoaded) action()    {}
func (ScanConfigSaved) action() {}

func (InstallTool) action()         {}
func (UninstallTool) action()       {}
func (UpdateTool) action()          {}
func (UpgradeAll) action()          {}
func (UseTool) action()             {}
func (RunTask) action()             {}
func (PruneTool) action()           {}
func (TrustConfig) action()         {}
func (ShowToolDetail) action()      {}
func (InstallProjectTools) action() {}
func (UpdateProjectPins) action()   {}
func (CycleSortOrder) action()      {}
func (Refresh) action()             {}
func (Confirm) action()             {}
func (CancelPopup) action()         {}
func (ShowHelp) action()            {}
func (Yank) action()                {}

func (OperationComplete) action() {}
func (OperationFailed) action()   {}
func (StatusNotice) action()      {}
func (Tick) action()              {}

func (CheckDrift) action()         {}
func (DriftChecked) action()       {}
func (JumpToDriftProject) action() {}

func (WizardDetected) action()         {}
func (WizardToggleTool) action()       {}
func (WizardToggleAgentFiles) action() {}
func (WizardNextStep) action()         {}
func (WizardPrevStep) action()         {}
func (WizardCompleted) action()        {}

func (OpenEditor) action()          {}
func (EditorSwitchSection) action() {}
func (EditorStartEdit) action()     {}
func (EditorNextField) action()     {}
func (EditorInput) action()         {}
func (EditorBackspace) action()     {}
func (EditorConfirmEdit) action()   {}
func (EditorCancelEdit) action()    {}
func (EditorDeleteRow) action()     {}
func (EditorAddRow) action()        {}
func (EditorToggleDiff) action()    {}
func (EditorWrite) action()         {}
func (EditorClose) action()         {}

func (OpenScanConfig) action()      {}
func (ScanConfigAddDir) action()    {}
func (ScanConfigRemoveDir) action() {}
func (ScanConfigInput) action()     {}
func (ScanConfigBackspace) action() {}
func (ScanConfigDepth) action()     {}
func (SaveScanConfig) action()      {}
