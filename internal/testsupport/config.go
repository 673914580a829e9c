package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"forge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The input directory is created; output, state, and log directories are left
// for the code under test to create.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	if err := os.MkdirAll(cfgVal.Paths.InputDir, 0o755); err != nil {
		t.Fatalf("mkdir input dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithInputFilter sets the build input filter on the test config.
func WithInputFilter(filter string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.InputFilter = filter
	}
}

// WithMaxConcurrentFiles bounds per-pipeline fan-out on the test config.
func WithMaxConcurrentFiles(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.MaxConcurrentFiles = n
	}
}

// WithoutIndex disables the assets.json index.
func WithoutIndex() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Build.WriteIndex = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.InputDir)
}
