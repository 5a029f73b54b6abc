package testsupport

import (
	"path/filepath"
	"testing"

	"bidsmeta/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CatalogPath = filepath.Join(base, "catalog", "catalog.db")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

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

// WithStrict sets the abort-on-first-failure policy.
func WithStrict(strict bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Strict = strict
	}
}

// WithVocabularyOverrides writes data to a YAML file and points the config
// at it.
func WithVocabularyOverrides(data string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "vocabulary.yaml")
		WriteBytes(b.t, path, []byte(data))
		b.cfg.Vocabulary.OverridesPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
