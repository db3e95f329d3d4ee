package config

import (
	"maps"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FindProjectDir walks up from startDir looking for a DirName directory that
// holds a config file. It returns the directory path or "" when none is found.
func FindProjectDir(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		candidate := filepath.Join(dir, DirName)
		if info, statErr := os.Stat(filepath.Join(candidate, FileName)); statErr == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func (c *Config) mergeProject(projectDir string, logger zerolog.Logger) {
	overlayPath := filepath.Join(projectDir, FileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return
	}

	merged := *c
	merged.explicit = maps.Clone(c.explicit)
	if err := ShallowMergeYAML(&merged, overlayPath); err != nil {
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global config")
		return
	}
	*c = merged
}
