package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canectors/gridfilter/internal/errhandling"
	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/pkg/grid"
)

// recordingOutput captures the records it is sent.
type recordingOutput struct {
	records []grid.Record
	err     error
	closed  bool
}

func (o *recordingOutput) Send(_ context.Context, records []grid.Record) (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	o.records = records
	return len(records), nil
}

func (o *recordingOutput) Close() error {
	o.closed = true
	return nil
}

// failingInput returns err from Fetch.
type failingInput struct {
	err    error
	closed bool
}

func (i *failingInput) Fetch(context.Context) ([]grid.Record, error) { return nil, i.err }
func (i *failingInput) Close() error {
	i.closed = true
	return nil
}

func movies() []grid.Record {
	return []grid.Record{
		{"name": "Alien", "year": 1979, "rate": 8.5, "genre": "sci-fi"},
		{"name": "Aliens", "year": 1986, "rate": 8.4, "genre": "sci-fi"},
		{"name": "Heat", "year": 1995, "rate": 8.3, "genre": "crime"},
		{"name": "Brazil", "year": 1985, "rate": 7.9, "genre": "sci-fi"},
	}
}

func names(records []grid.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r["name"].(string))
	}
	return out
}

func TestExecute_ReplaysSteps(t *testing.T) {
	out := &recordingOutput{}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{})

	view := &grid.View{
		Name: "scifi",
		Steps: []grid.Step{
			{Kind: grid.StepFilters, Filters: []grid.FilterDescriptor{grid.Equality("genre", "sci-fi")}},
			{Kind: grid.StepFilters, Filters: []grid.FilterDescriptor{grid.Range("year", 1980, 1990)}},
		},
	}

	result, err := exec.Execute(view)
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "scifi", result.ViewName)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 4, result.RecordsLoaded)
	assert.Equal(t, 2, result.RecordsMatched)
	assert.Equal(t, 2, result.RecordsWritten)
	assert.Nil(t, result.Error)
	assert.Equal(t, []grid.StepResult{
		{Index: 0, Kind: grid.StepFilters, ActiveFilters: 1, Records: 3},
		{Index: 1, Kind: grid.StepFilters, ActiveFilters: 2, Records: 2},
	}, result.Steps)
	assert.Equal(t, []string{"Aliens", "Brazil"}, names(out.records))
	assert.True(t, out.closed, "output module should be closed")
}

func TestExecute_SearchUsesViewSearchField(t *testing.T) {
	out := &recordingOutput{}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{SearchField: "name"})

	view := &grid.View{
		Name:        "crime",
		SearchField: "genre",
		Steps:       []grid.Step{{Kind: grid.StepSearch, Search: grid.SearchStep{Value: "crime"}}},
	}

	_, err := exec.Execute(view)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, names(out.records))
}

func TestExecute_SearchWithExplicitField(t *testing.T) {
	out := &recordingOutput{}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{})

	view := &grid.View{
		Name: "by-year",
		Steps: []grid.Step{
			{Kind: grid.StepSearch, Search: grid.SearchStep{Value: "Heat"}},
			{Kind: grid.StepSearch, Search: grid.SearchStep{Value: 1995, FieldName: "year"}},
		},
	}

	result, err := exec.Execute(view)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, names(out.records))
	assert.Equal(t, 2, result.Steps[1].ActiveFilters)
}

func TestExecute_EmptyFiltersStepResets(t *testing.T) {
	out := &recordingOutput{}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{})

	view := &grid.View{
		Name: "reset",
		Steps: []grid.Step{
			{Kind: grid.StepSearch, Search: grid.SearchStep{Value: "Heat"}},
			{Kind: grid.StepFilters, Filters: nil},
		},
	}

	result, err := exec.Execute(view)
	require.NoError(t, err)
	assert.Equal(t, 4, result.RecordsMatched)
	assert.Equal(t, 0, result.Steps[1].ActiveFilters)
}

func TestExecute_RejectedStep(t *testing.T) {
	out := &recordingOutput{}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{})

	view := &grid.View{
		Name: "bad",
		Steps: []grid.Step{
			{Kind: grid.StepSearch, Search: grid.SearchStep{Value: "Heat"}},
			{Kind: grid.StepFilters, Filters: []grid.FilterDescriptor{grid.Equality("director", "Mann")}},
		},
	}

	result, err := exec.Execute(view)
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrInvalidField)
	assert.Equal(t, errhandling.CategoryDescriptor, errhandling.GetErrorCategory(err))
	assert.Equal(t, errhandling.ExitValidationError, errhandling.ExitCode(err))

	assert.Equal(t, StatusError, result.Status)
	require.NotNil(t, result.Error)
	assert.Equal(t, errhandling.CodeInvalidField, result.Error.Code)
	assert.Equal(t, StageStep, result.Error.Stage)
	assert.Equal(t, 1, result.Error.StepIndex)
	assert.Len(t, result.Steps, 1)
	assert.Nil(t, out.records, "output must not run after a rejected step")
}

func TestExecute_UnknownKindPermissive(t *testing.T) {
	view := &grid.View{
		Name: "legacy",
		Steps: []grid.Step{{Kind: grid.StepFilters, Filters: []grid.FilterDescriptor{
			{Kind: "contains", FieldName: "genre", Values: []interface{}{"crime"}},
		}}},
	}

	strict := NewExecutorWithModules(input.NewInline(movies()), &recordingOutput{}, Options{})
	_, err := strict.Execute(view)
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrUnknownDescriptorKind)

	out := &recordingOutput{}
	permissive := NewExecutorWithModules(input.NewInline(movies()), out, Options{Permissive: true})
	_, err = permissive.Execute(view)
	require.NoError(t, err)
	assert.Equal(t, []string{"Heat"}, names(out.records))
}

func TestExecute_DryRunSkipsOutput(t *testing.T) {
	exec := NewExecutorWithModules(input.NewInline(movies()), nil, Options{DryRun: true})

	result, err := exec.Execute(&grid.View{Name: "dry"})
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, 4, result.RecordsMatched)
	assert.Equal(t, 0, result.RecordsWritten)
}

func TestExecute_SourceFailure(t *testing.T) {
	in := &failingInput{err: errors.New("disk on fire")}
	exec := NewExecutorWithModules(in, &recordingOutput{}, Options{})

	result, err := exec.Execute(&grid.View{Name: "broken"})
	require.Error(t, err)
	assert.True(t, in.closed, "source module should be closed after a failed fetch")
	assert.Equal(t, errhandling.CategoryInput, errhandling.GetErrorCategory(err))
	require.NotNil(t, result.Error)
	assert.Equal(t, errhandling.CodeInputFailed, result.Error.Code)
	assert.Equal(t, StageSource, result.Error.Stage)
	assert.Equal(t, -1, result.Error.StepIndex)
}

func TestExecute_OutputFailure(t *testing.T) {
	out := &recordingOutput{err: errors.New("disk full")}
	exec := NewExecutorWithModules(input.NewInline(movies()), out, Options{})

	result, err := exec.Execute(&grid.View{Name: "out"})
	require.Error(t, err)
	assert.Equal(t, errhandling.CategoryOutput, errhandling.GetErrorCategory(err))
	assert.Equal(t, StageOutput, result.Error.Stage)
	assert.Equal(t, errhandling.ExitRuntimeError, errhandling.ExitCode(err))
}

func TestExecute_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := NewExecutorWithModules(input.NewInline(movies()), &recordingOutput{}, Options{})
	result, err := exec.ExecuteWithContext(ctx, &grid.View{Name: "canceled"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errhandling.CodeCanceled, result.Error.Code)
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name string
		exec *Executor
		view *grid.View
		want error
	}{
		{"nil view", NewExecutorWithModules(input.NewInline(nil), &recordingOutput{}, Options{}), nil, ErrNilView},
		{"nil source", NewExecutorWithModules(nil, &recordingOutput{}, Options{}), &grid.View{Name: "v"}, ErrNilInputModule},
		{"nil output", NewExecutorWithModules(input.NewInline(nil), nil, Options{}), &grid.View{Name: "v"}, ErrNilOutputModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.exec.Execute(tt.view)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, errhandling.CategoryConfig, errhandling.GetErrorCategory(err))
			require.NotNil(t, result)
			assert.Equal(t, StatusError, result.Status)
			require.NotNil(t, result.Error)
			assert.Equal(t, errhandling.CodeInvalidConfig, result.Error.Code)
		})
	}
}

func TestExecute_UnknownStepKind(t *testing.T) {
	exec := NewExecutorWithModules(input.NewInline(movies()), &recordingOutput{}, Options{})

	result, err := exec.Execute(&grid.View{Name: "v", Steps: []grid.Step{{Kind: "sort"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStep)
	assert.Equal(t, 0, result.Error.StepIndex)
}

func TestNewExecutorForView(t *testing.T) {
	var console bytes.Buffer
	view := &grid.View{
		Name: "inline-json",
		Source: &grid.ModuleConfig{Type: "inline", Config: map[string]interface{}{
			"records": []interface{}{
				map[string]interface{}{"name": "Alien", "rate": 8.5},
				map[string]interface{}{"name": "Brazil", "rate": 7.9},
			},
		}},
		Steps: []grid.Step{
			{Kind: grid.StepFilters, Filters: []grid.FilterDescriptor{grid.Range("rate", 8, 10)}},
		},
		Output: &grid.ModuleConfig{Type: "json", Config: map[string]interface{}{}},
	}

	exec, err := NewExecutorForView(view, &console, Options{})
	require.NoError(t, err)

	result, err := exec.Execute(view)
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsWritten)

	var written []grid.Record
	require.NoError(t, json.Unmarshal(console.Bytes(), &written))
	assert.Equal(t, []string{"Alien"}, names(written))
}

func TestNewExecutorForView_Errors(t *testing.T) {
	_, err := NewExecutorForView(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNilView)

	_, err = NewExecutorForView(&grid.View{Name: "v", Source: &grid.ModuleConfig{Type: "kafka"}}, nil, Options{})
	require.Error(t, err)
	assert.Equal(t, errhandling.CategoryConfig, errhandling.GetErrorCategory(err))

	_, err = NewExecutorForView(&grid.View{
		Name:   "v",
		Source: &grid.ModuleConfig{Type: "inline", Config: map[string]interface{}{"records": []interface{}{}}},
		Output: &grid.ModuleConfig{Type: "csv", Config: map[string]interface{}{}},
	}, nil, Options{})
	require.Error(t, err)

	// dry run never builds the output module
	_, err = NewExecutorForView(&grid.View{
		Name:   "v",
		Source: &grid.ModuleConfig{Type: "inline", Config: map[string]interface{}{"records": []interface{}{}}},
		Output: &grid.ModuleConfig{Type: "csv", Config: map[string]interface{}{}},
	}, nil, Options{DryRun: true})
	require.NoError(t, err)
}
