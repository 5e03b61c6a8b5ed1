package entkit

import (
	"strings"
	"testing"
)

func requiredField(key string, fieldType FieldType) FieldDescriptor {
	return FieldDescriptor{
		Key:        key,
		Type:       fieldType,
		Validation: &ValidationRule{Required: true},
	}
}

func TestValidateFieldRequired(t *testing.T) {
	field := requiredField("name", FieldTypeText)

	for _, empty := range []interface{}{nil, "", []interface{}{}, []string{}} {
		if msg := ValidateField(field, empty, Record{}); msg == "" {
			t.Errorf("Expected required failure for %#v, got none", empty)
		}
	}
	if msg := ValidateField(field, "Ada", Record{}); msg != "" {
		t.Errorf("Expected valid value to pass, got %q", msg)
	}
}

func TestValidateFieldEmptyNotRequiredSkipsChecks(t *testing.T) {
	called := false
	field := FieldDescriptor{
		Key:  "email",
		Type: FieldTypeEmail,
		Validation: &ValidationRule{
			Custom: func(value interface{}, record Record) string {
				called = true
				return "custom should not run"
			},
		},
	}

	if msg := ValidateField(field, "", Record{}); msg != "" {
		t.Errorf("Expected empty non-required value to pass, got %q", msg)
	}
	if called {
		t.Error("Expected custom rule to be skipped for empty non-required value")
	}
}

func TestValidateFieldEmail(t *testing.T) {
	field := FieldDescriptor{Key: "email", Type: FieldTypeEmail, Validation: &ValidationRule{}}

	msg := ValidateField(field, "not-an-email", Record{})
	if msg == "" {
		t.Fatal("Expected failure for invalid email")
	}
	if !strings.Contains(msg, "valid email address") {
		t.Errorf("Expected default email message, got %q", msg)
	}
	if msg := ValidateField(field, "a@b.com", Record{}); msg != "" {
		t.Errorf("Expected a@b.com to pass, got %q", msg)
	}
}

func TestValidateFieldEmailDisabled(t *testing.T) {
	disabled := false
	field := FieldDescriptor{
		Key:        "email",
		Type:       FieldTypeEmail,
		Validation: &ValidationRule{Email: &disabled},
	}

	if msg := ValidateField(field, "not-an-email", Record{}); msg != "" {
		t.Errorf("Expected disabled email check to pass, got %q", msg)
	}
}

func TestValidateFieldURL(t *testing.T) {
	field := FieldDescriptor{Key: "homepage", Type: FieldTypeURL, Validation: &ValidationRule{}}

	if msg := ValidateField(field, "not a url", Record{}); msg == "" {
		t.Error("Expected failure for unparseable URL")
	}
	if msg := ValidateField(field, "https://example.com/x", Record{}); msg != "" {
		t.Errorf("Expected valid URL to pass, got %q", msg)
	}
}

func TestValidateFieldNumberBounds(t *testing.T) {
	min, max := 1.0, 10.0
	field := FieldDescriptor{
		Key:        "age",
		Type:       FieldTypeNumber,
		Validation: &ValidationRule{Min: &min, Max: &max},
	}

	if msg := ValidateField(field, 0.5, Record{}); msg == "" {
		t.Error("Expected below-min failure")
	}
	if msg := ValidateField(field, 11, Record{}); msg == "" {
		t.Error("Expected above-max failure")
	}
	if msg := ValidateField(field, 5, Record{}); msg != "" {
		t.Errorf("Expected in-range value to pass, got %q", msg)
	}
	if msg := ValidateField(field, "nope", Record{}); msg == "" {
		t.Error("Expected non-numeric failure")
	}
}

func TestValidateFieldTextLengthAndPattern(t *testing.T) {
	minLen, maxLen := 3, 5
	field := FieldDescriptor{
		Key:  "code",
		Type: FieldTypeText,
		Validation: &ValidationRule{
			MinLength: &minLen,
			MaxLength: &maxLen,
			Pattern:   `^[A-Z]+$`,
		},
	}

	if msg := ValidateField(field, "AB", Record{}); msg == "" {
		t.Error("Expected min-length failure")
	}
	if msg := ValidateField(field, "ABCDEF", Record{}); msg == "" {
		t.Error("Expected max-length failure")
	}
	if msg := ValidateField(field, "abcd", Record{}); msg == "" {
		t.Error("Expected pattern failure")
	}
	if msg := ValidateField(field, "ABCD", Record{}); msg != "" {
		t.Errorf("Expected valid code to pass, got %q", msg)
	}
}

func TestValidateFieldConfiguredMessageWins(t *testing.T) {
	field := FieldDescriptor{
		Key:        "email",
		Type:       FieldTypeEmail,
		Validation: &ValidationRule{Message: "please check the address"},
	}

	if msg := ValidateField(field, "broken", Record{}); msg != "please check the address" {
		t.Errorf("Expected configured message, got %q", msg)
	}
}

func TestValidateFieldCustomRunsLast(t *testing.T) {
	field := FieldDescriptor{
		Key:  "confirm",
		Type: FieldTypeText,
		Validation: &ValidationRule{
			Custom: func(value interface{}, record Record) string {
				if value != record["password"] {
					return "passwords do not match"
				}
				return ""
			},
		},
	}

	record := Record{"password": "secret"}
	if msg := ValidateField(field, "other", record); msg != "passwords do not match" {
		t.Errorf("Expected custom failure, got %q", msg)
	}
	if msg := ValidateField(field, "secret", record); msg != "" {
		t.Errorf("Expected matching value to pass, got %q", msg)
	}
}

func TestValidateFieldSelectOptions(t *testing.T) {
	field := FieldDescriptor{
		Key:  "status",
		Type: FieldTypeSelect,
		Options: []FieldOption{
			{Value: "active", Label: "Active"},
			{Value: "archived", Label: "Archived"},
		},
		Validation: &ValidationRule{},
	}

	if msg := ValidateField(field, "deleted", Record{}); msg == "" {
		t.Error("Expected failure for value outside options")
	}
	if msg := ValidateField(field, "active", Record{}); msg != "" {
		t.Errorf("Expected listed option to pass, got %q", msg)
	}
}

func TestValidateFieldDate(t *testing.T) {
	field := FieldDescriptor{Key: "born", Type: FieldTypeDate, Validation: &ValidationRule{}}

	if msg := ValidateField(field, "2026-13-40", Record{}); msg == "" {
		t.Error("Expected failure for impossible date")
	}
	if msg := ValidateField(field, "1990-06-15", Record{}); msg != "" {
		t.Errorf("Expected valid date to pass, got %q", msg)
	}
}

func TestValidateFieldNoRule(t *testing.T) {
	field := FieldDescriptor{Key: "notes", Type: FieldTypeTextarea}
	if msg := ValidateField(field, "anything", Record{}); msg != "" {
		t.Errorf("Expected field without rule to pass, got %q", msg)
	}
}

func TestValidateRecord(t *testing.T) {
	config := EntityConfiguration{
		Name: "User",
		Fields: []FieldDescriptor{
			requiredField("name", FieldTypeText),
			{Key: "email", Type: FieldTypeEmail, Validation: &ValidationRule{Required: true}},
		},
	}.Normalize()

	errs := ValidateRecord(config, Record{"email": "bad"})
	if len(errs) != 2 {
		t.Fatalf("Expected 2 failures, got %d: %v", len(errs), errs)
	}
	if _, ok := errs["name"]; !ok {
		t.Error("Expected failure for missing name")
	}
	if _, ok := errs["email"]; !ok {
		t.Error("Expected failure for invalid email")
	}

	errs = ValidateRecord(config, Record{"name": "Ada", "email": "ada@example.com"})
	if len(errs) != 0 {
		t.Errorf("Expected valid record, got %v", errs)
	}
}
