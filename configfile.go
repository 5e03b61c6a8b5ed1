package entkit

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// =====================================
// Declarative Configuration Files
// =====================================

// ConfigFile is the YAML document shape of declarative entity
// configurations.
type ConfigFile struct {
	Entities []EntityConfiguration `yaml:"entities"`
}

// LoadConfigurations reads entity configurations from a YAML file, or from
// every *.yaml/*.yml file under a directory. Each configuration is
// normalized before it is returned.
func LoadConfigurations(path string) ([]EntityConfiguration, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return loadConfigFile(path)
	}

	var configs []EntityConfiguration
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		loaded, err := loadConfigFile(p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		configs = append(configs, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return configs, nil
}

func loadConfigFile(path string) ([]EntityConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file ConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	configs := make([]EntityConfiguration, 0, len(file.Entities))
	for _, config := range file.Entities {
		if config.Name == "" && config.Slug == "" {
			return nil, fmt.Errorf("%s: entity with neither name nor slug", path)
		}
		configs = append(configs, config.Normalize())
	}
	return configs, nil
}

// RegisterFromPath loads configurations from a file or directory and
// registers every one of them. Returns the number registered.
func RegisterFromPath(registry *Registry, path string) (int, error) {
	configs, err := LoadConfigurations(path)
	if err != nil {
		return 0, err
	}
	for _, config := range configs {
		registry.Register(config)
	}
	return len(configs), nil
}
