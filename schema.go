package entkit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// =====================================
// Schema Transformer
// =====================================

// DefaultSchemaPath is the remote describe-entity endpoint prefix. The slug
// is appended as a path segment.
const DefaultSchemaPath = "/admin/schema"

// fieldTypeAliases maps the loosely-typed type strings a remote schema may
// use onto the closed FieldType set. Lookup is case-insensitive; anything
// unknown or missing maps to text, never to a failure.
var fieldTypeAliases = map[string]FieldType{
	"text":         FieldTypeText,
	"string":       FieldTypeText,
	"str":          FieldTypeText,
	"char":         FieldTypeText,
	"varchar":      FieldTypeText,
	"email":        FieldTypeEmail,
	"password":     FieldTypePassword,
	"url":          FieldTypeURL,
	"link":         FieldTypeURL,
	"number":       FieldTypeNumber,
	"int":          FieldTypeNumber,
	"integer":      FieldTypeNumber,
	"float":        FieldTypeNumber,
	"decimal":      FieldTypeNumber,
	"numeric":      FieldTypeNumber,
	"textarea":     FieldTypeTextarea,
	"longtext":     FieldTypeTextarea,
	"richtext":     FieldTypeTextarea,
	"select":       FieldTypeSelect,
	"dropdown":     FieldTypeSelect,
	"enum":         FieldTypeSelect,
	"multiselect":  FieldTypeMultiSelect,
	"multi-select": FieldTypeMultiSelect,
	"multi_select": FieldTypeMultiSelect,
	"tags":         FieldTypeMultiSelect,
	"date":         FieldTypeDate,
	"datetime":     FieldTypeDateTime,
	"timestamp":    FieldTypeDateTime,
	"boolean":      FieldTypeBoolean,
	"bool":         FieldTypeBoolean,
	"checkbox":     FieldTypeBoolean,
	"json":         FieldTypeJSON,
	"object":       FieldTypeJSON,
	"color":        FieldTypeColor,
	"file":         FieldTypeFile,
	"upload":       FieldTypeFile,
	"image":        FieldTypeFile,
	"reference":    FieldTypeReference,
	"ref":          FieldTypeReference,
	"relation":     FieldTypeReference,
	"belongs_to":   FieldTypeReference,
}

// CoerceFieldType maps a remote type string onto the closed FieldType set,
// defaulting to text.
func CoerceFieldType(raw string) FieldType {
	if t, ok := fieldTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t
	}
	return FieldTypeText
}

// ConfigurationFromSchema synthesizes a fully-typed configuration from a
// loosely-typed schema description. Every unknown or missing attribute takes
// an explicit safe default; the function never returns a partially-typed
// configuration and never fails.
func ConfigurationFromSchema(slug string, raw map[string]interface{}) EntityConfiguration {
	config := EntityConfiguration{
		Name:        asString(raw["name"]),
		PluralName:  asString(raw["pluralName"], asString(raw["plural_name"])),
		Slug:        asString(raw["slug"]),
		Description: asString(raw["description"]),
	}
	if config.Slug == "" {
		config.Slug = slug
	}
	if config.Name == "" {
		config.Name = config.Slug
	}

	if endpoints, ok := raw["endpoints"].(map[string]interface{}); ok {
		config.Endpoints = Endpoints{
			Base:       normalizeTemplate(asString(endpoints["base"])),
			Create:     normalizeTemplate(asString(endpoints["create"])),
			GetByID:    normalizeTemplate(asString(endpoints["getById"], asString(endpoints["get_by_id"]))),
			UpdateByID: normalizeTemplate(asString(endpoints["updateById"], asString(endpoints["update_by_id"]))),
			DeleteByID: normalizeTemplate(asString(endpoints["deleteById"], asString(endpoints["delete_by_id"]))),
		}
	}

	for _, item := range asSlice(raw["fields"]) {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		config.Fields = append(config.Fields, fieldFromSchema(m))
	}
	for _, item := range asSlice(raw["columns"]) {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		config.Columns = append(config.Columns, ColumnDescriptor{
			AccessorKey: asString(m["accessorKey"], asString(m["accessor_key"], asString(m["key"]))),
			ID:          asString(m["id"]),
			Header:      asString(m["header"], asString(m["label"])),
			Size:        asInt(m["size"], 0),
			Sortable:    asBool(m["sortable"], true),
			Filterable:  asBool(m["filterable"], false),
		})
	}
	for _, item := range asSlice(raw["filters"]) {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		op := FilterOperator(asString(m["operator"]))
		if op == "" {
			op = OpEqual
		}
		config.Filters = append(config.Filters, FilterDescriptor{
			Key:          asString(m["key"], asString(m["field"])),
			Label:        asString(m["label"]),
			Type:         CoerceFieldType(asString(m["type"])),
			Operator:     op,
			Options:      optionsFromSchema(m["options"]),
			DefaultValue: m["defaultValue"],
		})
	}

	// When the schema declares no columns, derive them from the visible
	// fields so the list view is never empty.
	if len(config.Columns) == 0 {
		for _, f := range config.Fields {
			if f.Hidden {
				continue
			}
			config.Columns = append(config.Columns, ColumnDescriptor{
				AccessorKey: f.Key,
				Header:      f.DisplayLabel(),
				Sortable:    true,
			})
		}
	}

	config.DefaultPageSize = asInt(raw["defaultPageSize"], asInt(raw["default_page_size"], 0))
	for _, v := range asSlice(raw["pageSizeOptions"]) {
		if n := asInt(v, 0); n > 0 {
			config.PageSizeOptions = append(config.PageSizeOptions, n)
		}
	}

	if features, ok := raw["features"].(map[string]interface{}); ok {
		config.Features = Features{
			Sorting:    asBool(features["sorting"], true),
			Filtering:  asBool(features["filtering"], true),
			Selection:  asBool(features["selection"], true),
			Pagination: asBool(features["pagination"], true),
		}
	} else {
		config.Features = AllFeatures()
	}

	return config.Normalize()
}

func fieldFromSchema(m map[string]interface{}) FieldDescriptor {
	field := FieldDescriptor{
		Key:          asString(m["key"], asString(m["name"])),
		Label:        asString(m["label"]),
		Type:         CoerceFieldType(asString(m["type"])),
		Description:  asString(m["description"]),
		Placeholder:  asString(m["placeholder"]),
		DefaultValue: m["defaultValue"],
		Options:      optionsFromSchema(m["options"]),
		Hidden:       asBool(m["hidden"], false),
		Disabled:     asBool(m["disabled"], false),
		ReadOnly:     asBool(m["readOnly"], asBool(m["read_only"], false)),
		Layout:       LayoutHint(asString(m["layout"])),
	}

	if ref, ok := m["reference"].(map[string]interface{}); ok {
		field.Reference = &Reference{
			Entity:   asString(ref["entity"]),
			ValueKey: asString(ref["valueKey"], asString(ref["value_key"], "id")),
			LabelKey: asString(ref["labelKey"], asString(ref["label_key"], "name")),
		}
	}

	if v, ok := m["validation"].(map[string]interface{}); ok {
		rule := ValidationRule{
			Required: asBool(v["required"], false),
			Pattern:  asString(v["pattern"]),
			Message:  asString(v["message"]),
		}
		if n, ok := asFloat(v["min"]); ok {
			rule.Min = &n
		}
		if n, ok := asFloat(v["max"]); ok {
			rule.Max = &n
		}
		if n := asInt(v["minLength"], asInt(v["min_length"], -1)); n >= 0 {
			rule.MinLength = &n
		}
		if n := asInt(v["maxLength"], asInt(v["max_length"], -1)); n >= 0 {
			rule.MaxLength = &n
		}
		if b, ok := v["email"].(bool); ok {
			rule.Email = &b
		}
		if b, ok := v["url"].(bool); ok {
			rule.URL = &b
		}
		field.Validation = &rule
	} else if asBool(m["required"], false) {
		field.Validation = &ValidationRule{Required: true}
	}

	return field
}

func optionsFromSchema(raw interface{}) []FieldOption {
	var options []FieldOption
	for _, item := range asSlice(raw) {
		switch v := item.(type) {
		case string:
			options = append(options, FieldOption{Value: v, Label: v})
		case map[string]interface{}:
			opt := FieldOption{
				Value: asString(v["value"]),
				Label: asString(v["label"]),
			}
			if opt.Label == "" {
				opt.Label = opt.Value
			}
			options = append(options, opt)
		}
	}
	return options
}

// normalizeTemplate rewrites the "{id}" placeholder style some remotes use
// into the engine's ":id" token.
func normalizeTemplate(template string) string {
	return strings.ReplaceAll(template, "{id}", IDPlaceholder)
}

// =====================================
// Configuration Resolver
// =====================================

// Resolver resolves an entity slug to a configuration: a static registry
// entry is authoritative and returned immediately; otherwise the remote
// describe-entity endpoint is consulted and the synthesized configuration is
// registered so later lookups are static hits.
type Resolver struct {
	registry   *Registry
	transport  Transport
	schemaPath string
}

// NewResolver creates a resolver over the given registry and transport.
func NewResolver(registry *Registry, transport Transport) *Resolver {
	return &Resolver{
		registry:   registry,
		transport:  transport,
		schemaPath: DefaultSchemaPath,
	}
}

// WithSchemaPath overrides the describe-entity endpoint prefix.
func (r *Resolver) WithSchemaPath(path string) *Resolver {
	r.schemaPath = strings.TrimRight(path, "/")
	return r
}

// Resolve returns the configuration for slug. A remote is consulted only
// when no static configuration is registered. A 404 from the describe
// endpoint yields an entity-not-found error; any other failure a config-load
// error. Both are terminal for this attempt — retry is the caller's call.
func (r *Resolver) Resolve(ctx context.Context, slug string) (EntityConfiguration, error) {
	if config, ok := r.registry.Get(slug); ok {
		return config, nil
	}
	if r.transport == nil {
		return EntityConfiguration{}, NewEntityNotFoundError(slug)
	}

	body, status, err := r.transport.Do(ctx, http.MethodGet, r.schemaPath+"/"+slug, nil, nil)
	if err != nil {
		return EntityConfiguration{}, NewConfigLoadError(slug, err)
	}
	if status == http.StatusNotFound {
		return EntityConfiguration{}, NewEntityNotFoundError(slug)
	}
	if status < 200 || status >= 300 {
		return EntityConfiguration{}, NewConfigLoadError(slug, fmt.Errorf("describe endpoint returned status %d", status))
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return EntityConfiguration{}, NewConfigLoadError(slug, err)
	}
	// Some remotes wrap the description in a data or schema envelope.
	if inner, ok := raw["data"].(map[string]interface{}); ok {
		raw = inner
	} else if inner, ok := raw["schema"].(map[string]interface{}); ok {
		raw = inner
	}

	config := ConfigurationFromSchema(slug, raw)
	return r.registry.Register(config), nil
}

// =====================================
// Loose Value Coercion
// =====================================

func asString(v interface{}, fallback ...string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func asBool(v interface{}, fallback bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	if s, ok := v.(string); ok {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return fallback
}

func asInt(v interface{}, fallback int) int {
	if f, ok := asFloat(v); ok {
		return int(f)
	}
	return fallback
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return nil
}
