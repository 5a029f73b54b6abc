package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Conversion.StoreRuns && strings.TrimSpace(c.Paths.CatalogPath) == "" {
		return errors.New("paths.catalog_path must be set when conversion.store_runs is true")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if len(c.Conversion.Extensions) == 0 {
		return errors.New("conversion.extensions must include at least one extension")
	}
	for _, ext := range c.Conversion.Extensions {
		if strings.ContainsAny(ext, "*?[/") {
			return fmt.Errorf("conversion.extensions: %q must be a plain file extension", ext)
		}
	}
	for _, dir := range c.Conversion.SkipDirs {
		if strings.Contains(dir, "/") {
			return fmt.Errorf("conversion.skip_dirs: %q must be a top-level directory name", dir)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
