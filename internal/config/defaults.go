package config

import "path/filepath"

const (
	defaultConfigPath   = "~/.config/bidsmeta/config.toml"
	projectConfigName   = "bidsmeta.toml"
	defaultCatalogName  = "catalog.db"
	defaultOutputDir    = "."
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	envCatalogPath      = "BIDSMETA_CATALOG_PATH"
	envLogLevel         = "BIDSMETA_LOG_LEVEL"
	envVocabularyFile   = "BIDSMETA_VOCABULARY_OVERRIDES"
	defaultStoreRuns    = true
	defaultHashFiles    = true
	defaultStrictPolicy = false
)

var (
	defaultExtensions = []string{".nii", ".nii.gz"}
	defaultSkipDirs   = []string{"derivatives", "sourcedata", "code"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Paths: Paths{
			CatalogPath: filepath.Join(dataDir, defaultCatalogName),
			OutputDir:   defaultOutputDir,
			LogDir:      filepath.Join(dataDir, "logs"),
		},
		Conversion: Conversion{
			Extensions: append([]string(nil), defaultExtensions...),
			Strict:     defaultStrictPolicy,
			HashFiles:  defaultHashFiles,
			SkipDirs:   append([]string(nil), defaultSkipDirs...),
			StoreRuns:  defaultStoreRuns,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
