package errors

import (
	"errors"
	"testing"
	"time"
)

// -----------------------------------------------------------------------------
// Severity Tests
// -----------------------------------------------------------------------------

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityDebug, "debug"},
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// PlanLoadError Tests
// -----------------------------------------------------------------------------

func TestNewPlanLoadError(t *testing.T) {
	cause := ErrPlanFileMissing
	err := NewPlanLoadError("failed to read plan file", cause).WithPath("plans/epics.json")

	if err.message != "failed to read plan file" {
		t.Errorf("message = %q, want %q", err.message, "failed to read plan file")
	}
	if err.Path != "plans/epics.json" {
		t.Errorf("Path = %q, want %q", err.Path, "plans/epics.json")
	}
	if err.IsRetryable() {
		t.Error("IsRetryable() = true, want false")
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
	want := "plan load error [path=plans/epics.json]: failed to read plan file: plan file missing"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPlanLoadError_Is(t *testing.T) {
	err := NewPlanLoadError("test", nil)
	if !Is(err, &PlanLoadError{}) {
		t.Error("Is(&PlanLoadError{}) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// PlanValidationError Tests
// -----------------------------------------------------------------------------

func TestNewPlanValidationError(t *testing.T) {
	issues := []string{"duplicate id T1", "T2 parent_id resolves to a task, not a story"}
	err := NewPlanValidationError(issues)

	if len(err.Issues) != 2 {
		t.Fatalf("len(Issues) = %d, want 2", len(err.Issues))
	}
	want := "plan validation error: 2 validation issue(s): duplicate id T1; T2 parent_id resolves to a task, not a story"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// ConfigError Tests
// -----------------------------------------------------------------------------

func TestConfigError_WithKey(t *testing.T) {
	err := NewConfigError("token must be empty unless auth is token", nil).WithKey("token")
	want := "config error [key=token]: token must be empty unless auth is token"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// AuthenticationError Tests
// -----------------------------------------------------------------------------

func TestAuthenticationError_WithStrategy(t *testing.T) {
	err := NewAuthenticationError("no token resolved", nil).WithStrategy("gh-cli")
	want := "authentication error [strategy=gh-cli]: no token resolved"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// ProviderCapabilityError Tests
// -----------------------------------------------------------------------------

func TestNewProviderCapabilityError(t *testing.T) {
	err := NewProviderCapabilityError("supports_dependency_relation")

	if err.Capability != "supports_dependency_relation" {
		t.Errorf("Capability = %q, want %q", err.Capability, "supports_dependency_relation")
	}
	if !Is(err, ErrMissingCapability) {
		t.Error("Is(ErrMissingCapability) = false, want true")
	}
	want := `provider capability error [capability=supports_dependency_relation]: missing required capability "supports_dependency_relation"`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// ProviderError Tests
// -----------------------------------------------------------------------------

func TestProviderError_WithOperation(t *testing.T) {
	err := NewProviderError("rate limited", nil).WithOperation("create_item").WithRetryable(true)

	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	want := "provider error [op=create_item]: rate limited"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// CreateItemPartialFailureError Tests
// -----------------------------------------------------------------------------

func TestCreateItemPartialFailureError(t *testing.T) {
	err := NewCreateItemPartialFailureError("board add failed", nil, true).
		WithCreatedIdentity("I_123", "ORG-42", "https://example.com/issues/42").
		WithCompletedSteps([]string{"create", "set_type"})

	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if err.CreatedItemKey != "ORG-42" {
		t.Errorf("CreatedItemKey = %q, want %q", err.CreatedItemKey, "ORG-42")
	}
	want := "partial create failure [id=I_123, steps=create,set_type]: board add failed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// SyncError Tests
// -----------------------------------------------------------------------------

func TestSyncError_WithPhase(t *testing.T) {
	inner := NewCreateItemPartialFailureError("board add failed", nil, false)
	err := NewSyncError("upsert failed", inner).WithPhase("upsert")

	if err.Severity() != SeverityCritical {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityCritical)
	}
	var partial *CreateItemPartialFailureError
	if !As(err, &partial) {
		t.Error("As(*CreateItemPartialFailureError) = false, want true")
	}
	want := "sync error [phase=upsert]: upsert failed: partial create failure: board add failed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

// -----------------------------------------------------------------------------
// Semantic Error Tests
// -----------------------------------------------------------------------------

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("item", "T1")
	want := "item 'T1' not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsUserFacing() {
		t.Error("IsUserFacing() = false, want true")
	}
}

func TestAlreadyExistsError(t *testing.T) {
	err := NewAlreadyExistsError("item", "T1")
	want := "item 'T1' already exists"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError_WithFieldAndValue(t *testing.T) {
	err := NewValidationError("goal cannot be empty").WithField("goal").WithValue("")
	want := `validation error [field=goal, value=]: goal cannot be empty`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Is(ErrInvalidInput) = false, want true")
	}
}

func TestTimeoutError(t *testing.T) {
	err := NewTimeoutError("waiting for provider response", 30*time.Second)
	want := "timeout error: waiting for provider response (timeout: 30s)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
	if !Is(err, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}
}

// -----------------------------------------------------------------------------
// Classification Helper Tests
// -----------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	if IsRetryable(nil) {
		t.Error("IsRetryable(nil) = true, want false")
	}
	if !IsRetryable(NewProviderError("x", nil).WithRetryable(true)) {
		t.Error("IsRetryable(retryable ProviderError) = false, want true")
	}
	if IsRetryable(NewConfigError("x", nil)) {
		t.Error("IsRetryable(ConfigError) = true, want false")
	}
	if !IsRetryable(errors.New("wrapped: " + ErrTimeout.Error())) && !IsRetryable(ErrTimeout) {
		t.Error("IsRetryable(ErrTimeout) = false, want true")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true, want false")
	}
	if !IsUserFacing(NewNotFoundError("item", "T1")) {
		t.Error("IsUserFacing(NotFoundError) = false, want true")
	}
	if !IsUserFacing(NewConfigError("x", nil)) {
		t.Error("IsUserFacing(ConfigError) = false, want true")
	}
}

func TestGetSeverity(t *testing.T) {
	if GetSeverity(nil) != SeverityDebug {
		t.Errorf("GetSeverity(nil) = %v, want %v", GetSeverity(nil), SeverityDebug)
	}
	if GetSeverity(NewSyncError("x", nil)) != SeverityCritical {
		t.Error("GetSeverity(SyncError) != SeverityCritical")
	}
	if GetSeverity(errors.New("plain")) != SeverityError {
		t.Error("GetSeverity(plain error) != SeverityError")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plan load", NewPlanLoadError("x", nil), 1},
		{"plan validation", NewPlanValidationError(nil), 1},
		{"config", NewConfigError("x", nil), 1},
		{"auth", NewAuthenticationError("x", nil), 2},
		{"capability", NewProviderCapabilityError("x"), 2},
		{"project url", NewProjectURLError("x", "", nil), 2},
		{"provider", NewProviderError("x", nil), 3},
		{"sync", NewSyncError("x", nil), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(NewSyncError("x", nil)) {
		t.Error("IsDomainError(SyncError) = false, want true")
	}
	if IsDomainError(NewNotFoundError("item", "T1")) {
		t.Error("IsDomainError(NotFoundError) = true, want false")
	}
	if IsDomainError(nil) {
		t.Error("IsDomainError(nil) = true, want false")
	}
}

func TestIsSemanticError(t *testing.T) {
	if !IsSemanticError(NewValidationError("x")) {
		t.Error("IsSemanticError(ValidationError) = false, want true")
	}
	if IsSemanticError(NewSyncError("x", nil)) {
		t.Error("IsSemanticError(SyncError) = true, want false")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "msg") != nil {
		t.Error("Wrap(nil, ...) != nil")
	}
	err := Wrap(ErrTimeout, "sync failed")
	if err.Error() != "sync failed: operation timed out" {
		t.Errorf("Wrap() = %q", err.Error())
	}
	if !Is(err, ErrTimeout) {
		t.Error("Is(ErrTimeout) = false, want true")
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrCycleDetected, "item %s", "T1")
	want := "item T1: dependency cycle detected"
	if got := err.Error(); got != want {
		t.Errorf("Wrapf() = %q, want %q", got, want)
	}
}
