package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Auth != "gh-cli" {
		t.Errorf("Auth = %q, want %q", cfg.Auth, "gh-cli")
	}
	if cfg.ValidationMode != "strict" {
		t.Errorf("ValidationMode = %q, want %q", cfg.ValidationMode, "strict")
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want 5", cfg.MaxConcurrent)
	}
	if cfg.Label != "planpilot" {
		t.Errorf("Label = %q, want %q", cfg.Label, "planpilot")
	}
	if cfg.LogDir != "logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "logs")
	}
	if cfg.LogLevel != "INFO" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "INFO")
	}
}

func TestLoad_LogDirResolvedRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "plan.json", `{"items": []}`)
	configPath := writeConfigFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
plan_paths:
  unified: plan.json
log_dir: run-logs
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := filepath.Join(dir, "run-logs")
	if cfg.LogDir != want {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, want)
	}
}

func TestLoad_UnifiedMode(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "plan.json", `{"items": []}`)
	configPath := writeConfigFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
auth: gh-cli
plan_paths:
  unified: plan.json
label: planpilot
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Provider != "github" {
		t.Errorf("Provider = %q, want %q", cfg.Provider, "github")
	}
	wantPlan := filepath.Join(dir, "plan.json")
	if cfg.PlanPaths.Unified != wantPlan {
		t.Errorf("PlanPaths.Unified = %q, want %q", cfg.PlanPaths.Unified, wantPlan)
	}
	wantSync := filepath.Join(dir, "sync-map.json")
	if cfg.SyncPath != wantSync {
		t.Errorf("SyncPath = %q, want %q", cfg.SyncPath, wantSync)
	}
	if cfg.MaxConcurrent != 5 {
		t.Errorf("MaxConcurrent = %d, want default 5", cfg.MaxConcurrent)
	}
}

func TestLoad_MultiFileMode(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfigFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
auth: env
plan_paths:
  epics: plans/epics.json
  stories: plans/stories.json
  tasks: plans/tasks.json
sync_path: out/sync-map.json
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantEpics := filepath.Join(dir, "plans/epics.json")
	if cfg.PlanPaths.Epics != wantEpics {
		t.Errorf("PlanPaths.Epics = %q, want %q", cfg.PlanPaths.Epics, wantEpics)
	}
	wantSync := filepath.Join(dir, "out/sync-map.json")
	if cfg.SyncPath != wantSync {
		t.Errorf("SyncPath = %q, want %q", cfg.SyncPath, wantSync)
	}
}

func TestLoad_AbsolutePathsNotRewritten(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfigFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
auth: env
plan_paths:
  unified: /abs/plan.json
sync_path: /abs/sync-map.json
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PlanPaths.Unified != "/abs/plan.json" {
		t.Errorf("PlanPaths.Unified = %q, want unchanged absolute path", cfg.PlanPaths.Unified)
	}
	if cfg.SyncPath != "/abs/sync-map.json" {
		t.Errorf("SyncPath = %q, want unchanged absolute path", cfg.SyncPath)
	}
}

func TestLoad_InvalidConfigFailsValidation(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfigFile(t, dir, "planpilot.yaml", `
provider: github
target: acme/widgets
auth: token
plan_paths:
  unified: plan.json
`)

	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() error = nil, want error (token required when auth=token)")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestConcurrencyLimit(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"unset", Config{}, 5},
		{"negative", Config{MaxConcurrent: -1}, 5},
		{"set", Config{MaxConcurrent: 12}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ConcurrencyLimit(); got != tt.want {
				t.Errorf("ConcurrencyLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}
