// Package model holds the domain records shown by the dashboard. Records are
// plain values: the controller replaces whole collections on every refresh and
// never patches them in place.
package model

import "strings"

// InstalledTool is one installed version of one tool, flattened for display.
type InstalledTool struct {
	Name             string
	Version          string
	RequestedVersion string
	Source           string
	Active           bool
	Installed        bool
}

// Spec returns the tool@version form used by the external tool.
func (t InstalledTool) Spec() string {
	return t.Name + "@" + t.Version
}

// RegistryEntry is a tool that can be installed from the registry.
type RegistryEntry struct {
	Short       string   `json:"short"`
	Backends    []string `json:"backends"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
}

// ConfigFile is a configuration file known to the external tool.
type ConfigFile struct {
	Path  string   `json:"path"`
	Tools []string `json:"tools"`
}

// OutdatedTool is a tool whose installed version lags the latest release.
type OutdatedTool struct {
	Name      string
	Requested string
	Current   string
	Latest    string
	Source    string
}

// Task is a runnable task declared in some configuration file.
type Task struct {
	Name        string
	Description string
	Source      string
	Aliases     []string
}

// EnvVar is one variable of the resolved environment.
type EnvVar struct {
	Name   string
	Value  string
	Source string
	Tool   string
}

// Setting is one flattened configuration setting.
type Setting struct {
	Key       string
	Value     string
	ValueType string
}

// PruneCandidate is a tool version that prune would remove.
type PruneCandidate struct {
	Tool    string
	Version string
}

// String renders the candidate as tool@version, or just the tool when the
// version is unknown.
func (c PruneCandidate) String() string {
	if c.Version == "" {
		return c.Tool
	}
	return c.Tool + "@" + c.Version
}

// HealthStatus is the health of one tool requirement or of a whole project.
// Values are ordered so that a larger value is a worse status.
type HealthStatus int

const (
	Healthy HealthStatus = iota
	Outdated
	Missing
	NoConfig
)

func (h HealthStatus) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case Outdated:
		return "outdated"
	case Missing:
		return "missing"
	case NoConfig:
		return "no config"
	default:
		return "unknown"
	}
}

// Worse returns the worse of two tool statuses. NoConfig is a project-level
// status and never wins here.
func Worse(a, b HealthStatus) HealthStatus {
	if a == NoConfig {
		return b
	}
	if b == NoConfig {
		return a
	}
	if b > a {
		return b
	}
	return a
}

// ProjectToolHealth is the resolved status of one declared requirement.
type ProjectToolHealth struct {
	Tool      string
	Required  string
	Installed string
	Status    HealthStatus
}

// Project is a directory carrying a manifest.
type Project struct {
	Name      string
	Path      string
	ToolCount int
	Health    HealthStatus
	Tools     []ProjectToolHealth
}

// DriftState summarizes the health of the working directory.
type DriftState int

const (
	DriftChecking DriftState = iota
	DriftHealthy
	DriftMissing
	DriftUntrusted
	DriftNoConfig
)

func (d DriftState) String() string {
	switch d {
	case DriftChecking:
		return "checking"
	case DriftHealthy:
		return "healthy"
	case DriftMissing:
		return "missing tools"
	case DriftUntrusted:
		return "untrusted"
	case DriftNoConfig:
		return "no config"
	default:
		return "unknown"
	}
}

// DetectedTool is a tool suggested by the bootstrap detector.
type DetectedTool struct {
	Name      string
	Version   string
	Source    string
	Enabled   bool
	Installed bool
}

// SatisfiesRequirement reports whether an installed version satisfies a
// declared requirement: "latest" matches anything, otherwise an exact match or
// a dotted prefix family ("3.12" is satisfied by "3.12.12").
func SatisfiesRequirement(required, installed string) bool {
	if required == "latest" {
		return true
	}
	return installed == required || strings.HasPrefix(installed, required+".")
}
