package config

import "time"

// Default configuration values.
const (
	DefaultScanDir       = "~/projects"
	DefaultMaxDepth      = 3
	MinDepth             = 1
	MaxDepth             = 10
	DefaultBinary        = "mise"
	DefaultVersionsLimit = 50
	DefaultCacheTTL      = 5 * time.Minute
	DefaultCacheSize     = 256
	DefaultDebounce      = 200 * time.Millisecond
)

// DefaultSkipPatterns lists build and dependency directories that are never
// projects in their own right. Hidden directories are always skipped.
var DefaultSkipPatterns = []string{
	"node_modules",
	"target",
	"vendor",
	"dist",
	"build",
	"__pycache__",
	".venv",
	"venv",
}
