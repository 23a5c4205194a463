package validation

import (
	"regexp"
	"strconv"
)

// DefaultLimit is applied when a list request carries no limit.
const DefaultLimit = 25

// MaxLimit is the largest accepted list limit.
const MaxLimit = 100

var snowflakePattern = regexp.MustCompile(`^\d{5,}$`)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateTeamID checks that id looks like a platform role id.
func ValidateTeamID(id string) []FieldError {
	if id == "" {
		return []FieldError{{Field: "id", Message: "id is required"}}
	}
	if !snowflakePattern.MatchString(id) {
		return []FieldError{{Field: "id", Message: "id must be a numeric role id"}}
	}
	return nil
}

// ParseLimit parses the limit query parameter, defaulting to DefaultLimit.
func ParseLimit(raw string) (int, []FieldError) {
	if raw == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, []FieldError{{Field: "limit", Message: "limit must be an integer between 1 and 100"}}
	}
	return limit, nil
}
