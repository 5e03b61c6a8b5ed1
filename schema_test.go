package entkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCoerceFieldType(t *testing.T) {
	cases := map[string]FieldType{
		"dropdown":     FieldTypeSelect,
		"DROPDOWN":     FieldTypeSelect,
		"multi-select": FieldTypeMultiSelect,
		"multi_select": FieldTypeMultiSelect,
		"bool":         FieldTypeBoolean,
		"checkbox":     FieldTypeBoolean,
		"int":          FieldTypeNumber,
		"timestamp":    FieldTypeDateTime,
		"string":       FieldTypeText,
		"":             FieldTypeText,
		"hologram":     FieldTypeText,
	}
	for raw, want := range cases {
		if got := CoerceFieldType(raw); got != want {
			t.Errorf("CoerceFieldType(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestConfigurationFromSchemaDefaults(t *testing.T) {
	config := ConfigurationFromSchema("articles", map[string]interface{}{})

	if config.Slug != "articles" {
		t.Errorf("Expected request slug as fallback, got %q", config.Slug)
	}
	if config.Name != "articles" {
		t.Errorf("Expected name fallback to slug, got %q", config.Name)
	}
	if config.PluralName != "articless" && config.PluralName != "articles" {
		// name "articles" -> plural "articless" per the name+"s" rule
		t.Errorf("Unexpected plural: %q", config.PluralName)
	}
	if config.DefaultPageSize != 25 {
		t.Errorf("Expected default page size 25, got %d", config.DefaultPageSize)
	}
	want := []int{5, 10, 25, 50, 100}
	if len(config.PageSizeOptions) != len(want) {
		t.Fatalf("Expected default page size options, got %v", config.PageSizeOptions)
	}
	for i, n := range want {
		if config.PageSizeOptions[i] != n {
			t.Errorf("PageSizeOptions[%d] = %d, want %d", i, config.PageSizeOptions[i], n)
		}
	}
	if config.Endpoints.Base != "/articles" {
		t.Errorf("Expected base endpoint /articles, got %q", config.Endpoints.Base)
	}
	if !config.Features.Pagination || !config.Features.Sorting {
		t.Error("Expected all features enabled by default")
	}
}

func TestConfigurationFromSchemaFields(t *testing.T) {
	raw := map[string]interface{}{
		"name":       "Listing",
		"pluralName": "Listings",
		"fields": []interface{}{
			map[string]interface{}{
				"key":      "title",
				"label":    "Title",
				"type":     "string",
				"required": true,
			},
			map[string]interface{}{
				"key":  "status",
				"type": "dropdown",
				"options": []interface{}{
					"draft",
					map[string]interface{}{"value": "live", "label": "Live"},
				},
			},
			map[string]interface{}{
				"key":  "price",
				"type": "decimal",
				"validation": map[string]interface{}{
					"required": true,
					"min":      float64(0),
					"message":  "price must not be negative",
				},
			},
		},
	}

	config := ConfigurationFromSchema("listings", raw)

	if len(config.Fields) != 3 {
		t.Fatalf("Expected 3 fields, got %d", len(config.Fields))
	}
	title := config.Fields[0]
	if title.Type != FieldTypeText || title.Validation == nil || !title.Validation.Required {
		t.Errorf("Unexpected title field: %+v", title)
	}
	status := config.Fields[1]
	if status.Type != FieldTypeSelect || len(status.Options) != 2 {
		t.Errorf("Unexpected status field: %+v", status)
	}
	if status.Options[0].Label != "draft" || status.Options[1].Label != "Live" {
		t.Errorf("Unexpected option labels: %+v", status.Options)
	}
	price := config.Fields[2]
	if price.Type != FieldTypeNumber || price.Validation == nil || price.Validation.Min == nil {
		t.Fatalf("Unexpected price field: %+v", price)
	}
	if msg := ValidateField(price, -1, Record{}); msg != "price must not be negative" {
		t.Errorf("Expected configured message, got %q", msg)
	}

	// No columns declared: derived from visible fields.
	if len(config.Columns) != 3 {
		t.Errorf("Expected derived columns, got %d", len(config.Columns))
	}
}

func TestConfigurationFromSchemaEndpointPlaceholder(t *testing.T) {
	raw := map[string]interface{}{
		"endpoints": map[string]interface{}{
			"base":       "/api/listings",
			"updateById": "/api/listings/{id}/edit",
		},
	}
	config := ConfigurationFromSchema("listings", raw)

	if got := config.Endpoints.UpdatePath("42"); got != "/api/listings/42/edit" {
		t.Errorf("Expected placeholder substitution, got %q", got)
	}
	if got := config.Endpoints.DetailPath("42"); got != "/api/listings/42" {
		t.Errorf("Expected base/:id fallback, got %q", got)
	}
}

func TestResolverStaticWins(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EntityConfiguration{Name: "User", Slug: "users"})

	// A nil transport proves the remote is never consulted for static hits.
	resolver := NewResolver(registry, nil)
	config, err := resolver.Resolve(context.Background(), "users")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Name != "User" {
		t.Errorf("Expected static configuration, got %+v", config)
	}
}

func TestResolverRemoteSynthesis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/schema/articles" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"name": "Article",
				"fields": []interface{}{
					map[string]interface{}{"key": "title", "type": "string"},
				},
			},
		})
	}))
	defer server.Close()

	registry := NewRegistry()
	resolver := NewResolver(registry, NewHTTPTransport(server.URL))

	config, err := resolver.Resolve(context.Background(), "articles")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Name != "Article" || config.Slug != "articles" {
		t.Errorf("Unexpected synthesized configuration: %+v", config)
	}

	// The synthesized configuration is registered: later lookups are static.
	if !registry.Has("articles") {
		t.Error("Expected synthesized configuration to be registered")
	}
}

func TestResolverNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	resolver := NewResolver(NewRegistry(), NewHTTPTransport(server.URL))
	_, err := resolver.Resolve(context.Background(), "ghosts")
	if !IsEntityNotFound(err) {
		t.Errorf("Expected entity-not-found error, got %v", err)
	}
}

func TestResolverTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	resolver := NewResolver(NewRegistry(), NewHTTPTransport(server.URL))
	_, err := resolver.Resolve(context.Background(), "articles")
	if !IsConfigLoad(err) {
		t.Errorf("Expected config-load error, got %v", err)
	}
}
