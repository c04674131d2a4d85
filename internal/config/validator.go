package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/view-schema.json
var embeddedSchema []byte

const schemaURL = "https://gridfilter.canectors.io/schemas/view/v1.0.0/view-schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// ValidationResult is the outcome of schema validation.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// GetEmbeddedSchema returns the embedded view schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema compiles the embedded schema once.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
		if schemaInitErr != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", schemaInitErr)
		}
	})
	return compiledSchema, schemaInitErr
}

// ValidateView validates a decoded view document against the view schema.
func ValidateView(data map[string]interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(data) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "required",
			Message: "view document is empty",
		})
		return result
	}

	schema, err := getCompiledSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", err),
		})
		return result
	}

	if err := schema.Validate(data); err != nil {
		result.Valid = false
		var detailed *jsonschema.ValidationError
		if errors.As(err, &detailed) {
			result.Errors = flattenValidationError(detailed)
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, ValidationError{
				Path:    "/",
				Type:    "validation",
				Message: err.Error(),
			})
		}
	}

	return result
}

// flattenValidationError collects the leaf causes, which carry the
// specific messages.
func flattenValidationError(err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		msg := leafMessage(err.Error())
		return []ValidationError{{
			Path:    instancePath(err.InstanceLocation),
			Type:    errorType(msg),
			Message: msg,
		}}
	}

	var errs []ValidationError
	for _, cause := range err.Causes {
		errs = append(errs, flattenValidationError(cause)...)
	}
	return errs
}

// leafMessage drops the "at '/pointer': " prefix of a leaf error.
func leafMessage(msg string) string {
	if strings.HasPrefix(msg, "at '") {
		if i := strings.Index(msg, "': "); i >= 0 {
			return msg[i+3:]
		}
	}
	return msg
}

func instancePath(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

func errorType(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "missing propert"):
		return "required"
	case strings.Contains(msg, "additional propert"):
		return "additionalProperties"
	case strings.Contains(msg, "got ") && strings.Contains(msg, "want "):
		return "type"
	case strings.Contains(msg, "value must be one of"), strings.Contains(msg, "value must be "):
		return "enum"
	case strings.Contains(msg, "pattern"):
		return "pattern"
	case strings.Contains(msg, "minimum"), strings.Contains(msg, "maximum"), strings.Contains(msg, "minitems"), strings.Contains(msg, "length"):
		return "range"
	default:
		return "validation"
	}
}
