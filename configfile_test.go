package entkit

import (
	"os"
	"path/filepath"
	"testing"
)

const usersYAML = `
entities:
  - name: User
    slug: users
    plural_name: Users
    endpoints:
      base: /api/users
    fields:
      - key: name
        label: Name
        type: text
        validation:
          required: true
      - key: email
        type: email
    default_page_size: 50
`

func writeTempYAML(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestLoadConfigurationsFile(t *testing.T) {
	path := writeTempYAML(t, t.TempDir(), "users.yaml", usersYAML)

	configs, err := LoadConfigurations(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(configs) != 1 {
		t.Fatalf("Expected 1 configuration, got %d", len(configs))
	}

	config := configs[0]
	if config.Slug != "users" || config.DefaultPageSize != 50 {
		t.Errorf("Unexpected configuration: %+v", config)
	}
	if config.Endpoints.Base != "/api/users" {
		t.Errorf("Unexpected base endpoint: %q", config.Endpoints.Base)
	}
	if len(config.Fields) != 2 {
		t.Fatalf("Expected 2 fields, got %d", len(config.Fields))
	}
	name := config.Fields[0]
	if name.Type != FieldTypeText || name.Validation == nil || !name.Validation.Required {
		t.Errorf("Unexpected name field: %+v", name)
	}
	// Normalized: absent paging options take the defaults.
	if len(config.PageSizeOptions) != len(DefaultPageSizeOptions) {
		t.Errorf("Expected default page size options, got %v", config.PageSizeOptions)
	}
}

func TestLoadConfigurationsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTempYAML(t, dir, "users.yaml", usersYAML)
	writeTempYAML(t, dir, "listings.yml", "entities:\n  - name: Listing\n")
	writeTempYAML(t, dir, "notes.txt", "not yaml, ignored")

	configs, err := LoadConfigurations(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configurations from 2 yaml files, got %d", len(configs))
	}
}

func TestLoadConfigurationsRejectsAnonymousEntity(t *testing.T) {
	path := writeTempYAML(t, t.TempDir(), "bad.yaml", "entities:\n  - description: nameless\n")

	if _, err := LoadConfigurations(path); err == nil {
		t.Error("Expected error for entity with neither name nor slug")
	}
}

func TestLoadConfigurationsMissingPath(t *testing.T) {
	if _, err := LoadConfigurations(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Expected error for missing path")
	}
}

func TestRegisterFromPath(t *testing.T) {
	path := writeTempYAML(t, t.TempDir(), "users.yaml", usersYAML)

	registry := NewRegistry()
	n, err := RegisterFromPath(registry, path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 1 || !registry.Has("users") {
		t.Errorf("Expected users registered, got n=%d", n)
	}
}
