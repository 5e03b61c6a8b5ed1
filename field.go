package entkit

import (
	"regexp"
	"strings"
)

// =====================================
// Field, Column and Filter Descriptors
// =====================================

// FieldDescriptor describes one editable attribute of an entity.
type FieldDescriptor struct {
	Key          string          `json:"key" yaml:"key"`
	Label        string          `json:"label" yaml:"label"`
	Type         FieldType       `json:"type" yaml:"type"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder  string          `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	DefaultValue interface{}     `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Validation   *ValidationRule `json:"validation,omitempty" yaml:"validation,omitempty"`
	Options      []FieldOption   `json:"options,omitempty" yaml:"options,omitempty"`
	Reference    *Reference      `json:"reference,omitempty" yaml:"reference,omitempty"`
	Hidden       bool            `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Disabled     bool            `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	ReadOnly     bool            `json:"read_only,omitempty" yaml:"read_only,omitempty"`
	Layout       LayoutHint      `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// DisplayLabel returns the configured label, falling back to a humanized key.
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return humanize(f.Key)
}

// FieldOption is one choice of a select or multiselect field.
type FieldOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Reference points a reference-typed field at another entity. LabelKey names
// the field of the target entity used to render a chosen record.
type Reference struct {
	Entity   string `json:"entity" yaml:"entity"`
	ValueKey string `json:"value_key" yaml:"value_key"`
	LabelKey string `json:"label_key" yaml:"label_key"`
}

// ValidationRule carries the declarative constraints of one field. Custom
// runs last and its verdict is authoritative; it receives the full candidate
// record so cross-field rules are possible.
type ValidationRule struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Email     *bool    `json:"email,omitempty" yaml:"email,omitempty"`
	URL       *bool    `json:"url,omitempty" yaml:"url,omitempty"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty"`

	Custom func(value interface{}, record Record) string `json:"-" yaml:"-"`
}

// ColumnDescriptor describes one list-view column.
type ColumnDescriptor struct {
	AccessorKey string `json:"accessor_key" yaml:"accessor_key"`
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Header      string `json:"header" yaml:"header"`
	Size        int    `json:"size,omitempty" yaml:"size,omitempty"`
	Sortable    bool   `json:"sortable,omitempty" yaml:"sortable,omitempty"`
	Filterable  bool   `json:"filterable,omitempty" yaml:"filterable,omitempty"`

	// Renderer formats a cell value for display. Optional; nil means the raw
	// value is rendered by the view layer.
	Renderer func(value interface{}, record Record) string `json:"-" yaml:"-"`
}

// ColumnID returns the column's address: the explicit ID when set, else the
// accessor key, else a slug of the header. Every column is addressable even
// when partially specified.
func (c ColumnDescriptor) ColumnID() string {
	if c.ID != "" {
		return c.ID
	}
	if c.AccessorKey != "" {
		return c.AccessorKey
	}
	return Slugify(c.Header)
}

// FilterDescriptor describes one query filter offered by a list view.
type FilterDescriptor struct {
	Key          string         `json:"key" yaml:"key"`
	Label        string         `json:"label" yaml:"label"`
	Type         FieldType      `json:"type" yaml:"type"`
	Operator     FilterOperator `json:"operator,omitempty" yaml:"operator,omitempty"`
	Options      []FieldOption  `json:"options,omitempty" yaml:"options,omitempty"`
	DefaultValue interface{}    `json:"default_value,omitempty" yaml:"default_value,omitempty"`
}

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// Slugify lowercases s and replaces every non-alphanumeric run with a single
// hyphen. Used for derived column IDs and entity slugs.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalidRe.ReplaceAllString(s, "-")
	s = slugCollapseRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// humanize turns "created_at" or "createdAt" into "Created At".
func humanize(key string) string {
	if key == "" {
		return ""
	}
	var b strings.Builder
	prevLower := false
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(' ')
			prevLower = false
		case r >= 'A' && r <= 'Z' && prevLower:
			b.WriteRune(' ')
			b.WriteRune(r)
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
