package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// JSON size limits (in bytes)
const (
	MaxJSONSize   = 1 * 1024 * 1024 // 1MB - maximum JSON payload size
	MaxConfigSize = 256 * 1024      // 256KB - one widget's configuration bag
	MaxFieldsSize = 64 * 1024       // 64KB - update request fields payload
)

// String length limits
const (
	MaxContextLength = 64
	MaxAliasLength   = 128
	MaxClassLength   = 128
	MaxUserLength    = 128
)

// Regular expressions for validation
var (
	// ContextPattern allows lowercase alphanumeric, hyphens, underscores
	ContextPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	// AliasPattern allows alphanumeric, hyphens, underscores, dots
	AliasPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	// ClassPattern additionally allows slashes (vendor/group/name format)
	ClassPattern = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)
	// UserPattern allows alphanumeric, hyphens, underscores, dots, @
	UserPattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]+$`)
)

// JSONSizeValidator validates JSON size limits
type JSONSizeValidator struct {
	maxSize int
}

// NewJSONSizeValidator creates a new validator with the specified max size
func NewJSONSizeValidator(maxSize int) *JSONSizeValidator {
	return &JSONSizeValidator{maxSize: maxSize}
}

// DefaultJSONValidator returns a validator with the default 1MB limit
func DefaultJSONValidator() *JSONSizeValidator {
	return NewJSONSizeValidator(MaxJSONSize)
}

// ValidateSize checks if the data size is within limits
func (v *JSONSizeValidator) ValidateSize(data []byte) error {
	size := len(data)
	if size > v.maxSize {
		return fmt.Errorf("JSON size %d bytes exceeds maximum %d bytes", size, v.maxSize)
	}
	return nil
}

// ValidateJSON validates both size and JSON structure
func (v *JSONSizeValidator) ValidateJSON(data []byte) error {
	// Check size first (faster than parsing)
	if err := v.ValidateSize(data); err != nil {
		return err
	}

	// Validate it's valid JSON
	var js interface{}
	if err := json.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// ValidateJSONString validates a JSON string
func (v *JSONSizeValidator) ValidateJSONString(jsonStr string) error {
	return v.ValidateJSON([]byte(jsonStr))
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateConfiguration validates a widget configuration bag before storing
func ValidateConfiguration(config map[string]interface{}) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	validator := NewJSONSizeValidator(MaxConfigSize)
	if err := validator.ValidateSize(data); err != nil {
		return err
	}

	// Check nesting depth (prevent DoS from deeply nested structures)
	return ValidateJSONDepth(config, 20)
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateContextName validates a container context name
func ValidateContextName(context string) error {
	if err := ValidateString(context, "context", 1, MaxContextLength, true); err != nil {
		return err
	}

	if !ContextPattern.MatchString(context) {
		return fmt.Errorf("context contains invalid characters (only lowercase alphanumeric, hyphens, and underscores allowed)")
	}

	return nil
}

// ValidateAlias validates a widget alias
func ValidateAlias(alias string, required bool) error {
	if err := ValidateString(alias, "alias", 1, MaxAliasLength, required); err != nil {
		return err
	}

	if alias != "" && !AliasPattern.MatchString(alias) {
		return fmt.Errorf("alias contains invalid characters (only alphanumeric, dots, hyphens, and underscores allowed)")
	}

	return nil
}

// ValidateClassName validates a widget class identifier
func ValidateClassName(class string, required bool) error {
	if err := ValidateString(class, "className", 1, MaxClassLength, required); err != nil {
		return err
	}

	if class != "" && !ClassPattern.MatchString(class) {
		return fmt.Errorf("className contains invalid characters")
	}

	return nil
}

// ValidateUserID validates a preference store user identifier
func ValidateUserID(user string) error {
	if err := ValidateString(user, "user", 1, MaxUserLength, true); err != nil {
		return err
	}

	if !UserPattern.MatchString(user) {
		return fmt.Errorf("user contains invalid characters")
	}

	return nil
}
