package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseFile reads, decodes and validates a view file.
// The format comes from the extension (.json, .yaml, .yml) and falls back
// to content sniffing.
func ParseFile(path string) *Result {
	result := &Result{FilePath: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.ParseErrors = append(result.ParseErrors, ParseError{
			Path:    path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Type:    ErrorTypeIO,
		})
		return result
	}

	parsed := ParseString(string(content), DetectFormat(path))
	parsed.FilePath = path
	for i := range parsed.ParseErrors {
		parsed.ParseErrors[i].Path = path
	}
	return parsed
}

// ParseString decodes and validates view content. An empty format is
// detected from the content.
func ParseString(content string, format string) *Result {
	result := &Result{Format: format}

	if format == "" {
		switch {
		case IsJSON(content):
			format = FormatJSON
		case IsYAML(content):
			format = FormatYAML
		default:
			result.ParseErrors = append(result.ParseErrors, ParseError{
				Message: "unable to detect view format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			})
			return result
		}
		result.Format = format
	}

	var (
		data     map[string]interface{}
		parseErr *ParseError
	)
	switch format {
	case FormatJSON:
		data, parseErr = decodeJSON(content)
	case FormatYAML:
		data, parseErr = decodeYAML(content)
	default:
		parseErr = &ParseError{Message: fmt.Sprintf("unsupported format: %s", format), Type: ErrorTypeFormat}
	}
	if parseErr != nil {
		result.ParseErrors = append(result.ParseErrors, *parseErr)
		return result
	}

	result.Data = data
	result.ValidationErrors = ValidateView(data).Errors
	return result
}

// DetectFormat returns the format implied by the file extension, or "".
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON reports whether content looks like a JSON document.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML reports whether content decodes as a non-empty YAML document.
// JSON is valid YAML, so this is also true for most JSON content.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}

func decodeJSON(content string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Message: "empty content: expected JSON object", Type: ErrorTypeSyntax}
	}

	var data interface{}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return nil, jsonParseError(err, content)
	}
	return asDocument(data, "JSON object")
}

func decodeYAML(content string) (map[string]interface{}, *ParseError) {
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Message: "empty content: expected YAML document", Type: ErrorTypeSyntax}
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		return nil, yamlParseError(err)
	}
	return asDocument(data, "YAML mapping")
}

func asDocument(data interface{}, expected string) (map[string]interface{}, *ParseError) {
	doc, ok := data.(map[string]interface{})
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid view: expected %s, got %T", expected, data),
			Type:    ErrorTypeFormat,
		}
	}
	return doc, nil
}

func jsonParseError(err error, content string) *ParseError {
	parseErr := &ParseError{Message: err.Error(), Type: ErrorTypeSyntax}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error: %s", syntaxErr.Error())
	}
	return parseErr
}

func yamlParseError(err error) *ParseError {
	parseErr := &ParseError{Message: err.Error(), Type: ErrorTypeSyntax}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports "yaml: line N: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}
