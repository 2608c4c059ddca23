/*
errors.go - Error types for the practical-hours engine

ERROR CATEGORIES:
  1. DuplicateKey     - student insert with an existing StudentID
  2. Validation       - hours-log entry or form input breaks an acceptance rule
  3. SchemaMismatch   - roster lacks required columns; nothing imported
  4. MalformedInput   - roster file cannot be parsed at all
  5. Not found        - rename/delete/log against a missing student or site

None of these are fatal. Callers recover at the operation boundary and show
err.Error() to the user (see ResultFromError in service.go).

USAGE:
  if errors.Is(err, practrack.ErrDuplicateKey) {
      var dup *practrack.DuplicateKeyError
      errors.As(err, &dup) // dup.StudentID names the conflict
  }
*/
package practrack

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateKey is returned when a student with the same StudentID
	// already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrValidation is returned when an entry fails an acceptance rule.
	ErrValidation = errors.New("validation failed")

	// ErrSchemaMismatch is returned when a roster lacks required columns.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrMalformedInput is returned when a roster file cannot be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrStudentNotFound is returned when a referenced student doesn't exist.
	ErrStudentNotFound = errors.New("student not found")

	// ErrSiteNotFound is returned when a referenced site requirement doesn't exist.
	ErrSiteNotFound = errors.New("site not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateKeyError names the conflicting StudentID.
type DuplicateKeyError struct {
	StudentID string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("Student ID %s already exists", e.StudentID)
}

func (e *DuplicateKeyError) Unwrap() error {
	return ErrDuplicateKey
}

// Rule identifies which class of acceptance rule failed.
type Rule string

const (
	RuleNonPositiveDuration Rule = "non_positive_duration"
	RuleMissingField        Rule = "missing_field"
	RuleNegativeHours       Rule = "negative_hours"
)

// ValidationError reports a rejected entry. Field is set for field rules.
type ValidationError struct {
	Rule  Rule
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleNonPositiveDuration:
		return "cannot log 0 or negative hours: check start and end times"
	case RuleMissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case RuleNegativeHours:
		return fmt.Sprintf("%s cannot be negative", e.Field)
	}
	return fmt.Sprintf("validation failed: %s", e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// SchemaMismatchError lists the required roster columns that were not found.
type SchemaMismatchError struct {
	Missing []string
	Found   []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("roster headers must contain %s (found: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

// MalformedInputError wraps the parser failure for an unreadable roster.
type MalformedInputError struct {
	Source string
	Err    error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("could not read file %s: %v", e.Source, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid user input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrMalformedInput)
}

// IsNotFound returns true if the error indicates a missing student or site.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSiteNotFound)
}
