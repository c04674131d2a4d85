package config

import (
	"strings"
	"testing"
)

func TestParseFile_ValidYAML(t *testing.T) {
	result := ParseFile("testdata/valid-view.yaml")

	if !result.IsValid() {
		t.Fatalf("expected valid result, got errors: %v", result.AllErrors())
	}
	if result.Format != FormatYAML {
		t.Errorf("expected format %q, got %q", FormatYAML, result.Format)
	}
	if result.FilePath != "testdata/valid-view.yaml" {
		t.Errorf("unexpected file path %q", result.FilePath)
	}

	view, ok := result.Data["view"].(map[string]interface{})
	if !ok {
		t.Fatal("expected view to be a map")
	}
	if view["name"] != "recent-hits" {
		t.Errorf("expected view.name 'recent-hits', got %v", view["name"])
	}
}

func TestParseFile_ValidJSON(t *testing.T) {
	result := ParseFile("testdata/valid-view.json")

	if !result.IsValid() {
		t.Fatalf("expected valid result, got errors: %v", result.AllErrors())
	}
	if result.Format != FormatJSON {
		t.Errorf("expected format %q, got %q", FormatJSON, result.Format)
	}
}

func TestParseFile_DetectsFormatFromContent(t *testing.T) {
	result := ParseFile("testdata/no-extension")

	if !result.IsValid() {
		t.Fatalf("expected valid result, got errors: %v", result.AllErrors())
	}
	if result.Format != FormatYAML {
		t.Errorf("expected format %q, got %q", FormatYAML, result.Format)
	}
}

func TestParseFile_InvalidJSON(t *testing.T) {
	result := ParseFile("testdata/invalid-json.json")

	if result.IsValid() {
		t.Fatal("expected parsing to fail for invalid JSON")
	}
	err := result.ParseErrors[0]
	if err.Type != ErrorTypeSyntax {
		t.Errorf("expected error type %q, got %q", ErrorTypeSyntax, err.Type)
	}
	if err.Line != 5 {
		t.Errorf("expected error on line 5, got %d", err.Line)
	}
	if err.Path != "testdata/invalid-json.json" {
		t.Errorf("expected error path to be set, got %q", err.Path)
	}
	if len(result.ValidationErrors) != 0 {
		t.Error("validation must not run after a parse error")
	}
}

func TestParseFile_InvalidYAML(t *testing.T) {
	result := ParseFile("testdata/invalid-yaml.yaml")

	if result.IsValid() {
		t.Fatal("expected parsing to fail for invalid YAML")
	}
	if result.ParseErrors[0].Line == 0 {
		t.Errorf("expected a line number, got error %v", result.ParseErrors[0])
	}
}

func TestParseFile_Missing(t *testing.T) {
	result := ParseFile("testdata/does-not-exist.yaml")

	if len(result.ParseErrors) != 1 || result.ParseErrors[0].Type != ErrorTypeIO {
		t.Fatalf("expected one io error, got %v", result.ParseErrors)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		format    string
		wantParse bool
		wantValid bool
	}{
		{"empty", "", "", true, false},
		{"whitespace json", "   ", FormatJSON, true, false},
		{"array document", `[1, 2]`, FormatJSON, true, false},
		{"yaml scalar", "just text", FormatYAML, true, false},
		{"unsupported format", `{}`, "toml", true, false},
		{"schema violation", `{"schemaVersion": "1.0.0"}`, "", false, false},
		{"valid inline", `{"schemaVersion":"1.0.0","view":{"name":"v","source":{"type":"inline","records":[]}}}`, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseString(tt.content, tt.format)
			if got := len(result.ParseErrors) > 0; got != tt.wantParse {
				t.Errorf("parse errors = %v, want errors: %v", result.ParseErrors, tt.wantParse)
			}
			if result.IsValid() != tt.wantValid {
				t.Errorf("IsValid() = %v, want %v (errors: %v)", result.IsValid(), tt.wantValid, result.AllErrors())
			}
		})
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"view.json":     FormatJSON,
		"view.YAML":     FormatYAML,
		"dir/view.yml":  FormatYAML,
		"view.txt":      "",
		"no-extension":  "",
		"archive.json.": "",
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestParseError_Error(t *testing.T) {
	err := ParseError{Path: "view.json", Line: 3, Column: 7, Message: "unexpected comma"}
	if got := err.Error(); got != "view.json: line 3, column 7: unexpected comma" {
		t.Errorf("unexpected message %q", got)
	}
	if got := (ParseError{Message: "boom"}).Error(); got != "boom" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestOffsetToLineColumn(t *testing.T) {
	content := "ab\ncd\nef"
	line, col := offsetToLineColumn(content, 4)
	if line != 2 || col != 2 {
		t.Errorf("got line %d column %d, want 2, 2", line, col)
	}
	line, col = offsetToLineColumn(content, 0)
	if line != 1 || col != 1 {
		t.Errorf("got line %d column %d, want 1, 1", line, col)
	}
}

func TestResult_Err(t *testing.T) {
	result := ParseString(`{"schemaVersion": "1.0.0"}`, "")
	err := result.Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "view") {
		t.Errorf("expected error to mention 'view', got %v", err)
	}

	valid := ParseFile("testdata/valid-view.json")
	if valid.Err() != nil {
		t.Errorf("expected nil error, got %v", valid.Err())
	}
}
