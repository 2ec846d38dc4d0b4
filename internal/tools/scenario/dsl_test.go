package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadScenarioBuildsSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local scene = Scenario.new("steps")
scene:press("12.5 *", "4")
scene:operate("=")
scene:restore(1)
scene:expect_display("50")
scene:expect_last("12.5 × 4", "50")

return scene
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "steps" {
		t.Fatalf("name = %q, want steps", scenario.Name)
	}
	if len(scenario.Steps) != 5 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 5)
	}

	press := scenario.Steps[0]
	if press.Kind != "press" {
		t.Fatalf("step kind = %q, want press", press.Kind)
	}
	keys, ok := press.Args["keys"].([]string)
	if !ok || strings.Join(keys, " ") != "1 2 . 5 * 4" {
		t.Fatalf("keys = %v", press.Args["keys"])
	}
	if got := scenario.Steps[1].Args["operator"]; got != "none" {
		t.Fatalf("operator = %v, want none", got)
	}
	if got := scenario.Steps[2].Args["index"]; got != 1 {
		t.Fatalf("restore index = %v, want 1", got)
	}
	last := scenario.Steps[4]
	if last.Args["expression"] != "12.5 × 4" || last.Args["result"] != "50" {
		t.Fatalf("expect_last args = %v", last.Args)
	}
}

func TestLoadScenarioDefaultsNameToFile(t *testing.T) {
	scenario, err := LoadScenarioFromFile(filepath.Join("testdata", "grouping.lua"))
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "grouping" {
		t.Fatalf("name = %q, want grouping", scenario.Name)
	}
}

func TestLoadScenarioRejectsInvalidSteps(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{name: "unknown key", script: `scene:press("5 Tab")`, want: `unknown key "Tab"`},
		{name: "no keys", script: `scene:press()`, want: "press needs at least one key"},
		{name: "bad digit", script: `scene:digit("12")`, want: "digit must be 0-9"},
		{name: "bad operator", script: `scene:operate("mod")`, want: `unknown operator "mod"`},
		{name: "bad restore", script: `scene:restore(0)`, want: "history index starts at 1"},
		{name: "negative history", script: `scene:expect_history(-1)`, want: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenarioFixture(t, "local scene = Scenario.new(\"bad\")\n"+tt.script+"\nreturn scene\n")
			_, err := LoadScenarioFromFile(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoadScenarioRequiresScenarioReturn(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new("none")
scene:clear()
return 42
`)
	_, err := LoadScenarioFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "must return Scenario") {
		t.Fatalf("error = %v, want must return Scenario", err)
	}
}

func TestLoadScenarioReportsSyntaxErrors(t *testing.T) {
	path := writeScenarioFixture(t, `local scene = Scenario.new(`)
	if _, err := LoadScenarioFromFile(path); err == nil {
		t.Fatal("expected syntax error")
	}
}

func writeScenarioFixture(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
