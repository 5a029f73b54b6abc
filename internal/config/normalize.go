package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	if err := c.normalizeVocabulary(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv(envCatalogPath); ok && strings.TrimSpace(value) != "" {
		c.Paths.CatalogPath = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = Default().Paths.CatalogPath
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}

	var err error
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	exts := make([]string, 0, len(c.Conversion.Extensions))
	seen := make(map[string]struct{}, len(c.Conversion.Extensions))
	for _, ext := range c.Conversion.Extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Conversion.Extensions = exts

	dirs := make([]string, 0, len(c.Conversion.SkipDirs))
	for _, dir := range c.Conversion.SkipDirs {
		if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	c.Conversion.SkipDirs = dirs
}

func (c *Config) normalizeVocabulary() error {
	if value, ok := os.LookupEnv(envVocabularyFile); ok && strings.TrimSpace(value) != "" {
		c.Vocabulary.OverridesPath = strings.TrimSpace(value)
	}
	var err error
	if c.Vocabulary.OverridesPath, err = expandPath(strings.TrimSpace(c.Vocabulary.OverridesPath)); err != nil {
		return fmt.Errorf("vocabulary.overrides_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
