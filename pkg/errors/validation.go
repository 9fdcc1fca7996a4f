package errors

import (
	"strings"
	"unicode"
)

// maxIdentifierLength bounds connector, cable and harness identifiers.
const maxIdentifierLength = 128

// ValidateIdentifier validates a connector or cable identifier.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or surrounding whitespace
//   - No Graphviz port separator (":") since identifiers become node IDs
//   - Maximum length of 128 characters
//
// The template separator is checked separately by the harness builder because
// it is configurable.
func ValidateIdentifier(id string) error {
	if id == "" {
		return New(ErrCodeSchema, "identifier cannot be empty")
	}
	if len(id) > maxIdentifierLength {
		return Schema(id, "identifier too long (max %d characters)", maxIdentifierLength)
	}
	if strings.TrimSpace(id) != id {
		return Schema(id, "identifier has leading or trailing whitespace")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return Schema(id, "identifier contains invalid control characters")
		}
	}
	if strings.Contains(id, ":") {
		return Schema(id, "identifier cannot contain %q", ":")
	}
	return nil
}

// ValidateDesignator validates a pin or wire designator: a pin ID, a pin or
// wire label, or a designator written in a connection row. Designators are
// free text, so only empty and control-character values are rejected.
func ValidateDesignator(entity, designator string) error {
	if designator == "" {
		return Schema(entity, "designator cannot be empty")
	}
	if len(designator) > maxIdentifierLength {
		return Schema(entity, "designator too long (max %d characters)", maxIdentifierLength)
	}
	for _, r := range designator {
		if unicode.IsControl(r) {
			return Schema(entity, "designator %q contains control characters", designator)
		}
	}
	return nil
}
