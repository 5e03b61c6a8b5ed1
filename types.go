package entkit

// =====================================
// Core Types and Constants
// =====================================

// Record is the dynamic representation of one remote entity record.
// The engine never maps records onto Go structs; the remote surface is
// schema-driven and only known at runtime.
type Record = map[string]interface{}

// FieldType identifies the edit-form widget and the validation rules that
// apply to a field. The set is closed: unknown remote type strings are
// coerced to FieldTypeText by the schema transformer.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeURL         FieldType = "url"
	FieldTypeNumber      FieldType = "number"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multiselect"
	FieldTypeDate        FieldType = "date"
	FieldTypeDateTime    FieldType = "datetime"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeJSON        FieldType = "json"
	FieldTypeColor       FieldType = "color"
	FieldTypeFile        FieldType = "file"
	FieldTypeReference   FieldType = "reference"
)

// FieldTypes returns every member of the closed FieldType set.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeURL,
		FieldTypeNumber, FieldTypeTextarea, FieldTypeSelect, FieldTypeMultiSelect,
		FieldTypeDate, FieldTypeDateTime, FieldTypeBoolean, FieldTypeJSON,
		FieldTypeColor, FieldTypeFile, FieldTypeReference,
	}
}

// IsTextual reports whether the type carries free text and is therefore
// subject to length and pattern rules.
func (t FieldType) IsTextual() bool {
	switch t {
	case FieldTypeText, FieldTypeEmail, FieldTypePassword, FieldTypeURL, FieldTypeTextarea:
		return true
	}
	return false
}

// FilterOperator is the comparison applied by a list filter.
type FilterOperator string

const (
	OpEqual              FilterOperator = "eq"
	OpNotEqual           FilterOperator = "neq"
	OpGreaterThan        FilterOperator = "gt"
	OpGreaterThanOrEqual FilterOperator = "gte"
	OpLessThan           FilterOperator = "lt"
	OpLessThanOrEqual    FilterOperator = "lte"
	OpContains           FilterOperator = "contains"
	OpStartsWith         FilterOperator = "startsWith"
	OpEndsWith           FilterOperator = "endsWith"
	OpIn                 FilterOperator = "in"
	OpBetween            FilterOperator = "between"
)

// SortDirection represents sort direction on a list request.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// LayoutHint suggests how wide a field renders in an edit form. The engine
// passes it through untouched; interpretation belongs to the rendering layer.
type LayoutHint string

const (
	LayoutDefault LayoutHint = ""
	LayoutFull    LayoutHint = "full"
	LayoutHalf    LayoutHint = "half"
	LayoutThird   LayoutHint = "third"
)

// ErrorType represents the classes of failure the engine can surface.
type ErrorType string

const (
	ErrorTypeEntityNotFound ErrorType = "entity_not_found"
	ErrorTypeConfigLoad     ErrorType = "config_load"
	ErrorTypeFetch          ErrorType = "fetch"
	ErrorTypeMutation       ErrorType = "mutation"
	ErrorTypeValidation     ErrorType = "validation"
)
