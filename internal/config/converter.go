package config

import (
	"fmt"

	"github.com/canectors/gridfilter/pkg/grid"
)

// ConvertToView converts a validated view document to a grid.View.
//
// The document is expected to have this structure:
//
//	{
//	  "schemaVersion": "1.0.0",
//	  "view": {
//	    "name": "...",
//	    "source": {"type": "file", "paths": [...]},
//	    "steps": [{"search": {...}}, {"filters": [...]}],
//	    "output": {"type": "json"}
//	  }
//	}
func ConvertToView(data map[string]interface{}) (*grid.View, error) {
	if data == nil {
		return nil, fmt.Errorf("view document is nil")
	}

	viewData, ok := data["view"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'view' section")
	}

	view := &grid.View{}
	if view.Name, ok = viewData["name"].(string); !ok || view.Name == "" {
		return nil, fmt.Errorf("missing required field 'view.name'")
	}
	view.Description, _ = viewData["description"].(string)
	view.SearchField, _ = viewData["searchField"].(string)
	view.Permissive, _ = viewData["permissive"].(bool)

	sourceData, ok := viewData["source"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'view.source' section")
	}
	source, err := convertModuleConfig(sourceData)
	if err != nil {
		return nil, fmt.Errorf("invalid source config: %w", err)
	}
	view.Source = source

	if stepsData, has := viewData["steps"]; has {
		stepList, ok := stepsData.([]interface{})
		if !ok {
			return nil, fmt.Errorf("'view.steps' must be a list, got %T", stepsData)
		}
		for i, raw := range stepList {
			step, err := convertStep(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid step at index %d: %w", i, err)
			}
			view.Steps = append(view.Steps, step)
		}
	}

	if outputData, has := viewData["output"].(map[string]interface{}); has {
		output, err := convertModuleConfig(outputData)
		if err != nil {
			return nil, fmt.Errorf("invalid output config: %w", err)
		}
		view.Output = output
	}

	return view, nil
}

// convertModuleConfig moves every key except 'type' into Config.
func convertModuleConfig(data map[string]interface{}) (*grid.ModuleConfig, error) {
	moduleType, ok := data["type"].(string)
	if !ok || moduleType == "" {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	cfg := &grid.ModuleConfig{
		Type:   moduleType,
		Config: make(map[string]interface{}, len(data)),
	}
	for key, value := range data {
		if key != "type" {
			cfg.Config[key] = value
		}
	}
	return cfg, nil
}

func convertStep(raw interface{}) (grid.Step, error) {
	data, ok := raw.(map[string]interface{})
	if !ok {
		return grid.Step{}, fmt.Errorf("expected an object, got %T", raw)
	}

	if searchData, has := data["search"]; has {
		search, ok := searchData.(map[string]interface{})
		if !ok {
			return grid.Step{}, fmt.Errorf("'search' must be an object, got %T", searchData)
		}
		value, has := search["value"]
		if !has {
			return grid.Step{}, fmt.Errorf("'search.value' is required")
		}
		fieldName, _ := search["fieldName"].(string)
		return grid.Step{
			Kind:   grid.StepSearch,
			Search: grid.SearchStep{Value: value, FieldName: fieldName},
		}, nil
	}

	if filtersData, has := data["filters"]; has {
		descs, err := grid.ParseDescriptors(filtersData)
		if err != nil {
			return grid.Step{}, err
		}
		return grid.Step{Kind: grid.StepFilters, Filters: descs}, nil
	}

	return grid.Step{}, fmt.Errorf("step must contain 'search' or 'filters'")
}
