// Package grid provides public types for filtering record lists behind data grids.
// This package is intended to be importable by UI backends that drive an
// entity list from user-selected filter criteria.
package grid

import "time"

// Record is the loosely-typed record shape produced by JSON/YAML decoding.
// Struct records are supported as well; see the entitylist package.
type Record = map[string]interface{}

// DescriptorKind is the kind tag carried by a filter descriptor.
type DescriptorKind string

// Descriptor kinds.
const (
	// KindValuesSet is the untagged descriptor: a field and a list of acceptable values.
	KindValuesSet DescriptorKind = ""
	// KindEquality matches a field against one scalar value.
	KindEquality DescriptorKind = "equality"
	// KindRange matches a numeric field against an inclusive [value, valueTo] range.
	KindRange DescriptorKind = "range"
)

// Tags used by older grid front-ends, accepted as aliases when parsing descriptor maps.
const (
	LegacyEqualityTag = "equalityFilter"
	LegacyRangeTag    = "rangeFilter"
)

// DefaultSearchField is the field used by search when no field name is given.
const DefaultSearchField = "name"

// FilterDescriptor is the caller-facing representation of a filter request.
//
// Tagged form: Kind is KindEquality (FieldName, Value) or KindRange
// (FieldName, Value, ValueTo). Untagged form: Kind is empty and Values holds
// the acceptable values.
type FilterDescriptor struct {
	Kind      DescriptorKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	FieldName string         `json:"fieldName" yaml:"fieldName"`
	Value     interface{}    `json:"value,omitempty" yaml:"value,omitempty"`
	ValueTo   interface{}    `json:"valueTo,omitempty" yaml:"valueTo,omitempty"`
	Values    []interface{}  `json:"values,omitempty" yaml:"values,omitempty"`
}

// IsTagged reports whether the descriptor carries a kind tag.
func (d FilterDescriptor) IsTagged() bool {
	return d.Kind != KindValuesSet
}

// Equality builds an equality descriptor.
func Equality(fieldName string, value interface{}) FilterDescriptor {
	return FilterDescriptor{Kind: KindEquality, FieldName: fieldName, Value: value}
}

// Range builds an inclusive range descriptor.
func Range(fieldName string, low, high interface{}) FilterDescriptor {
	return FilterDescriptor{Kind: KindRange, FieldName: fieldName, Value: low, ValueTo: high}
}

// ValuesSet builds an untagged set-membership descriptor.
func ValuesSet(fieldName string, values ...interface{}) FilterDescriptor {
	if values == nil {
		values = []interface{}{}
	}
	return FilterDescriptor{FieldName: fieldName, Values: values}
}

// View describes a saved grid view: where records come from, the sequence of
// search/filter operations to replay, and where the result goes.
type View struct {
	// Name is the human-readable name of the view
	Name string `json:"name"`

	// Description provides additional context about the view
	Description string `json:"description,omitempty"`

	// SearchField overrides the default search field for this view
	SearchField string `json:"searchField,omitempty"`

	// Permissive treats unrecognized descriptor tags as values-set descriptors
	Permissive bool `json:"permissive,omitempty"`

	// Source defines the records source module
	Source *ModuleConfig `json:"source"`

	// Steps is the ordered list of operations applied to the entity list
	Steps []Step `json:"steps,omitempty"`

	// Output defines the result destination module (optional)
	Output *ModuleConfig `json:"output,omitempty"`
}

// ModuleConfig represents the configuration for a source or output module.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "file", "inline", "xlsx")
	Type string `json:"type"`

	// Config contains the module-specific configuration
	Config map[string]interface{} `json:"config"`
}

// StepKind identifies the entity list operation a step replays.
type StepKind string

// Step kinds.
const (
	StepSearch  StepKind = "search"
	StepFilters StepKind = "filters"
)

// Step is one entity list operation.
// A filters step with no descriptors resets the list.
type Step struct {
	Kind    StepKind           `json:"kind"`
	Search  SearchStep         `json:"search,omitempty"`
	Filters []FilterDescriptor `json:"filters,omitempty"`
}

// SearchStep holds the arguments of a search operation.
type SearchStep struct {
	Value     interface{} `json:"value"`
	FieldName string      `json:"fieldName,omitempty"`
}

// ExecutionResult represents the result of running a view.
type ExecutionResult struct {
	// RunID identifies this run in logs
	RunID string `json:"runId"`

	// ViewName is the name of the executed view
	ViewName string `json:"viewName"`

	// Status is the execution status ("success", "error")
	Status string `json:"status"`

	// StartedAt is when execution started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when execution completed
	CompletedAt time.Time `json:"completedAt"`

	// RecordsLoaded is the size of the original list
	RecordsLoaded int `json:"recordsLoaded"`

	// RecordsMatched is the size of the final filtered list
	RecordsMatched int `json:"recordsMatched"`

	// RecordsWritten is the number of records handed to the output module
	RecordsWritten int `json:"recordsWritten"`

	// Steps holds the result size after each step
	Steps []StepResult `json:"steps,omitempty"`

	// Error contains error details if execution failed
	Error *ExecutionError `json:"error,omitempty"`
}

// StepResult records the outcome of one step.
type StepResult struct {
	Index         int      `json:"index"`
	Kind          StepKind `json:"kind"`
	ActiveFilters int      `json:"activeFilters"`
	Records       int      `json:"records"`
}

// ExecutionError contains details about a run failure.
type ExecutionError struct {
	// Code is the error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Stage is where the error occurred (source, step, output)
	Stage string `json:"stage,omitempty"`

	// StepIndex is the failing step index, -1 when not applicable
	StepIndex int `json:"stepIndex"`
}
