package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shipmate/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadDefinitions loads server definitions from a directory of YAML
// files. Files that fail to parse are logged and skipped so one broken
// definition does not take down the rest. A missing directory yields an
// empty result, not an error.
func LoadDefinitions(dir string) ([]Definition, error) {
	if dir == "" {
		return []Definition{}, nil
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logging.Warn("Bridge", "Server definition directory does not exist: %s", dir)
		return []Definition{}, nil
	}

	var definitions []Definition

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(path), ".yaml") && !strings.HasSuffix(strings.ToLower(path), ".yml") {
			return nil
		}

		def, err := LoadDefinitionFromFile(path)
		if err != nil {
			logging.Error("Bridge", err, "Failed to load server definition from %s", path)
			return nil // Continue with other files
		}

		definitions = append(definitions, *def)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk definition directory: %w", err)
	}

	logging.Info("Bridge", "Loaded %d server definitions from %s", len(definitions), dir)
	return definitions, nil
}

// LoadDefinitionFromFile loads and validates a single server definition.
func LoadDefinitionFromFile(path string) (*Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(content, &def); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}

	if def.Name == "" {
		def.Name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".yaml"), ".yml")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	logging.Debug("Bridge", "Loaded definition for %s from %s", def.Name, path)
	return &def, nil
}

// SaveDefinitionToFile writes a server definition to a YAML file.
func SaveDefinitionToFile(def *Definition, path string) error {
	content, err := yaml.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	logging.Debug("Bridge", "Saved definition for %s to %s", def.Name, path)
	return nil
}
