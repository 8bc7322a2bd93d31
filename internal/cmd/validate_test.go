package cmd

import (
	"strings"
	"testing"
)

func TestValidateCommand_ValidPlan(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir)

	out, err := captureStdout(func() error {
		_, execErr := executeCommand(rootCmd, "validate", "--config", configPath)
		return execErr
	})
	if err != nil {
		t.Fatalf("validate command error = %v, output = %s", err, out)
	}
	if !strings.HasPrefix(out, "valid: plan ") {
		t.Errorf("output = %q, want prefix %q", out, "valid: plan ")
	}
}

func TestValidateCommand_InvalidPlan(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "plan.json", `{"items": [{"id": "E1", "type": "EPIC"}]}`)
	configPath := writeTestFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
plan_paths:
  unified: plan.json
`)

	out, err := captureStdout(func() error {
		_, execErr := executeCommand(rootCmd, "validate", "--config", configPath)
		return execErr
	})
	if err == nil {
		t.Fatal("validate command error = nil, want error for invalid plan")
	}
	if !strings.Contains(out, "invalid:") {
		t.Errorf("output = %q, want to contain %q", out, "invalid:")
	}
}

func TestValidateCommand_MissingConfig(t *testing.T) {
	dir := t.TempDir()

	_, err := executeCommand(rootCmd, "validate", "--config", dir+"/does-not-exist.yaml")
	if err == nil {
		t.Fatal("validate command error = nil, want error for missing config")
	}
}
