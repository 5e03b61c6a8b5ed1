package entkit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"time"
)

// =====================================
// Validation Engine
// =====================================

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateField evaluates one field's value against its validation rule and
// returns an error message, or "" when the value is valid. It is a pure
// function: no I/O, no mutation of the record. The record gives cross-field
// rules access to the full candidate.
//
// Check order, each short-circuiting on first failure:
// required, empty-pass, type-specific, custom.
func ValidateField(field FieldDescriptor, value interface{}, record Record) string {
	rule := field.Validation
	if rule == nil {
		return ""
	}

	empty := isEmptyValue(value)
	if rule.Required && empty {
		return ruleMessage(rule, "%s is required", field.DisplayLabel())
	}
	// An empty, non-required value passes with no further checks.
	if empty {
		return ""
	}

	if msg := validateTyped(field, rule, value); msg != "" {
		return msg
	}

	if rule.Custom != nil {
		return rule.Custom(value, record)
	}
	return ""
}

// ValidateRecord runs ValidateField for every declared field of the
// configuration and returns the failures keyed by field key. An empty map
// means the record is valid.
func ValidateRecord(config EntityConfiguration, record Record) map[string]string {
	errs := make(map[string]string)
	for _, f := range config.Fields {
		if msg := ValidateField(f, record[f.Key], record); msg != "" {
			errs[f.Key] = msg
		}
	}
	return errs
}

// validateTyped applies the checks fixed by the field's type. The switch is
// exhaustive over the closed FieldType set so a new type is a compile-visible
// change here, not a silent fall-through.
func validateTyped(field FieldDescriptor, rule *ValidationRule, value interface{}) string {
	label := field.DisplayLabel()

	switch field.Type {
	case FieldTypeEmail:
		// Applies unless explicitly disabled on the rule.
		if rule.Email == nil || *rule.Email {
			if msg := checkEmail(rule, label, value); msg != "" {
				return msg
			}
		}
		return checkText(rule, label, value)

	case FieldTypeURL:
		if rule.URL == nil || *rule.URL {
			if msg := checkURL(rule, label, value); msg != "" {
				return msg
			}
		}
		return checkText(rule, label, value)

	case FieldTypeText, FieldTypePassword, FieldTypeTextarea:
		// Opt-in email/url rules are honored on plain text fields too.
		if rule.Email != nil && *rule.Email {
			if msg := checkEmail(rule, label, value); msg != "" {
				return msg
			}
		}
		if rule.URL != nil && *rule.URL {
			if msg := checkURL(rule, label, value); msg != "" {
				return msg
			}
		}
		return checkText(rule, label, value)

	case FieldTypeNumber:
		return checkNumber(rule, label, value)

	case FieldTypeSelect:
		return checkOption(field, rule, label, value)

	case FieldTypeMultiSelect:
		values, ok := value.([]interface{})
		if !ok {
			if strs, sok := value.([]string); sok {
				values = make([]interface{}, len(strs))
				for i, s := range strs {
					values[i] = s
				}
			} else {
				return ruleMessage(rule, "%s must be a list of values", label)
			}
		}
		for _, v := range values {
			if msg := checkOption(field, rule, label, v); msg != "" {
				return msg
			}
		}
		return ""

	case FieldTypeDate:
		s := fmt.Sprintf("%v", value)
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return ruleMessage(rule, "%s must be a date in YYYY-MM-DD format", label)
		}
		return ""

	case FieldTypeDateTime:
		s := fmt.Sprintf("%v", value)
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return ruleMessage(rule, "%s must be an RFC3339 datetime", label)
		}
		return ""

	case FieldTypeBoolean:
		switch value.(type) {
		case bool:
			return ""
		}
		return ruleMessage(rule, "%s must be true or false", label)

	case FieldTypeJSON:
		if s, ok := value.(string); ok && !json.Valid([]byte(s)) {
			return ruleMessage(rule, "%s must be valid JSON", label)
		}
		return ""

	case FieldTypeColor, FieldTypeFile, FieldTypeReference:
		// No built-in checks; custom rules still run after.
		return ""
	}
	return ""
}

func checkEmail(rule *ValidationRule, label string, value interface{}) string {
	s, ok := value.(string)
	if !ok || !emailRe.MatchString(s) {
		return ruleMessage(rule, "%s must be a valid email address", label)
	}
	return ""
}

func checkURL(rule *ValidationRule, label string, value interface{}) string {
	s, ok := value.(string)
	if !ok {
		return ruleMessage(rule, "%s must be a valid URL", label)
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ruleMessage(rule, "%s must be a valid URL", label)
	}
	return ""
}

func checkText(rule *ValidationRule, label string, value interface{}) string {
	s := fmt.Sprintf("%v", value)
	if rule.MinLength != nil && len([]rune(s)) < *rule.MinLength {
		return ruleMessage(rule, "%s must be at least %d characters", label, *rule.MinLength)
	}
	if rule.MaxLength != nil && len([]rune(s)) > *rule.MaxLength {
		return ruleMessage(rule, "%s must be at most %d characters", label, *rule.MaxLength)
	}
	if rule.Pattern != "" {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil || !re.MatchString(s) {
			return ruleMessage(rule, "%s has an invalid format", label)
		}
	}
	return ""
}

func checkNumber(rule *ValidationRule, label string, value interface{}) string {
	n, ok := toFloat(value)
	if !ok {
		return ruleMessage(rule, "%s must be a number", label)
	}
	if rule.Min != nil && n < *rule.Min {
		return ruleMessage(rule, "%s must be at least %v", label, *rule.Min)
	}
	if rule.Max != nil && n > *rule.Max {
		return ruleMessage(rule, "%s must be at most %v", label, *rule.Max)
	}
	return ""
}

func checkOption(field FieldDescriptor, rule *ValidationRule, label string, value interface{}) string {
	if len(field.Options) == 0 {
		return ""
	}
	s := fmt.Sprintf("%v", value)
	for _, opt := range field.Options {
		if opt.Value == s {
			return ""
		}
	}
	return ruleMessage(rule, "%s has an invalid value", label)
}

// ruleMessage returns the rule's configured message when present, else the
// generated default for the violated constraint.
func ruleMessage(rule *ValidationRule, format string, args ...interface{}) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fmt.Sprintf(format, args...)
}

// isEmptyValue reports whether a value counts as unset for the required
// check. Zero numbers and false are deliberate values, not empty ones.
func isEmptyValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	}
	return false
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}
