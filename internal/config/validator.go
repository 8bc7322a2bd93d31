package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "max_concurrent")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidAuthStrategies returns the list of valid auth strategy identifiers.
func ValidAuthStrategies() []string {
	return []string{"gh-cli", "env", "token"}
}

// ValidValidationModes returns the list of valid plan validation modes.
func ValidValidationModes() []string {
	return []string{"strict", "partial"}
}

// Validate checks the Config for invalid values and cross-field violations,
// returning all validation errors found rather than failing on the first.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, c.validateProvider()...)
	errs = append(errs, c.validateAuth()...)
	errs = append(errs, c.validatePlanPaths()...)
	errs = append(errs, c.validateValidationMode()...)
	errs = append(errs, c.validateConcurrency()...)
	errs = append(errs, c.validateSyncPath()...)

	return errs
}

func (c *Config) validateProvider() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(c.Provider) == "" {
		errs = append(errs, ValidationError{
			Field:   "provider",
			Value:   c.Provider,
			Message: "cannot be empty",
		})
	}
	if strings.TrimSpace(c.Target) == "" {
		errs = append(errs, ValidationError{
			Field:   "target",
			Value:   c.Target,
			Message: "cannot be empty",
		})
	}
	return errs
}

// validateAuth enforces that token is non-empty if and only if
// auth == "token", per the external interfaces contract.
func (c *Config) validateAuth() ValidationErrors {
	var errs ValidationErrors

	if !slices.Contains(ValidAuthStrategies(), c.Auth) {
		errs = append(errs, ValidationError{
			Field:   "auth",
			Value:   c.Auth,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidAuthStrategies(), ", ")),
		})
	}

	tokenSet := strings.TrimSpace(c.Token) != ""
	if c.Auth == "token" && !tokenSet {
		errs = append(errs, ValidationError{
			Field:   "token",
			Value:   c.Token,
			Message: "must be non-empty when auth is 'token'",
		})
	}
	if c.Auth != "token" && tokenSet {
		errs = append(errs, ValidationError{
			Field:   "token",
			Value:   "<redacted>",
			Message: "must be empty unless auth is 'token'",
		})
	}

	return errs
}

// validatePlanPaths enforces that unified mode and multi-file mode are
// mutually exclusive, and that at least one plan source is configured.
func (c *Config) validatePlanPaths() ValidationErrors {
	var errs ValidationErrors

	unified := strings.TrimSpace(c.PlanPaths.Unified) != ""
	multi := strings.TrimSpace(c.PlanPaths.Epics) != "" ||
		strings.TrimSpace(c.PlanPaths.Stories) != "" ||
		strings.TrimSpace(c.PlanPaths.Tasks) != ""

	if unified && multi {
		errs = append(errs, ValidationError{
			Field:   "plan_paths",
			Value:   c.PlanPaths,
			Message: "unified and multi-file plan paths are mutually exclusive",
		})
	}
	if !unified && !multi {
		errs = append(errs, ValidationError{
			Field:   "plan_paths",
			Value:   c.PlanPaths,
			Message: "at least one of unified, epics, stories, or tasks must be set",
		})
	}

	return errs
}

func (c *Config) validateValidationMode() ValidationErrors {
	var errs ValidationErrors
	if !slices.Contains(ValidValidationModes(), c.ValidationMode) {
		errs = append(errs, ValidationError{
			Field:   "validation_mode",
			Value:   c.ValidationMode,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidValidationModes(), ", ")),
		})
	}
	return errs
}

func (c *Config) validateConcurrency() ValidationErrors {
	var errs ValidationErrors
	if c.MaxConcurrent < 0 {
		errs = append(errs, ValidationError{
			Field:   "max_concurrent",
			Value:   c.MaxConcurrent,
			Message: "must be non-negative (0 falls back to the default of 5)",
		})
	}
	return errs
}

func (c *Config) validateSyncPath() ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(c.SyncPath) == "" {
		errs = append(errs, ValidationError{
			Field:   "sync_path",
			Value:   c.SyncPath,
			Message: "cannot be empty",
		})
	}
	return errs
}
