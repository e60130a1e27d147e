package validation

import (
	"fmt"
	"regexp"
)

// JSONSchema defines the structure for worker input schemas.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

type Property struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Pattern     *string  `json:"pattern,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (r *ValidationResult) GetErrorMessages() []string {
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return msgs
}

// ValidateInput validates input against a schema with detailed errors.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	errors := []ValidationError{}

	for _, requiredField := range schema.Required {
		if _, exists := input[requiredField]; !exists {
			errors = append(errors, ValidationError{
				Field:   requiredField,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for fieldName, value := range input {
		prop, exists := schema.Properties[fieldName]
		if !exists {
			if !schema.AdditionalProperties {
				errors = append(errors, ValidationError{
					Field:   fieldName,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}

		errors = append(errors, validateField(fieldName, value, prop)...)
	}

	return &ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func validateField(name string, value interface{}, prop Property) []ValidationError {
	var errs []ValidationError

	switch prop.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return append(errs, ValidationError{Field: name, Message: "expected string", Code: "TYPE_MISMATCH"})
		}
		if prop.MinLength != nil && len(s) < *prop.MinLength {
			errs = append(errs, ValidationError{Field: name, Message: fmt.Sprintf("shorter than minLength %d", *prop.MinLength), Code: "MIN_LENGTH"})
		}
		if prop.MaxLength != nil && len(s) > *prop.MaxLength {
			errs = append(errs, ValidationError{Field: name, Message: fmt.Sprintf("longer than maxLength %d", *prop.MaxLength), Code: "MAX_LENGTH"})
		}
		if prop.Pattern != nil {
			re, err := regexp.Compile(*prop.Pattern)
			if err == nil && !re.MatchString(s) {
				errs = append(errs, ValidationError{Field: name, Message: "does not match pattern", Code: "PATTERN_MISMATCH"})
			}
		}
		if len(prop.Enum) > 0 && !contains(prop.Enum, s) {
			errs = append(errs, ValidationError{Field: name, Message: "value not in enum", Code: "ENUM_MISMATCH"})
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			errs = append(errs, ValidationError{Field: name, Message: "expected boolean", Code: "TYPE_MISMATCH"})
		}
	case "number":
		switch value.(type) {
		case float64, int, int64:
		default:
			errs = append(errs, ValidationError{Field: name, Message: "expected number", Code: "TYPE_MISMATCH"})
		}
	}

	return errs
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
