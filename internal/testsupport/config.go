package testsupport

import (
	"path/filepath"
	"testing"

	"polereview/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithWorkerCount overrides the decode worker pool size on the test config.
func WithWorkerCount(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Viewer.WorkerCount = n
	}
}

// WithChecklist overrides the checklist items on the test config.
func WithChecklist(items ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Checklist.Items = items
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
