package input

import (
	"context"
	"testing"

	"github.com/canectors/gridfilter/pkg/grid"
)

func TestInline_Fetch(t *testing.T) {
	m, err := NewInlineFromConfig(&grid.ModuleConfig{
		Type: "inline",
		Config: map[string]interface{}{
			"records": []interface{}{
				map[string]interface{}{"name": "Alien"},
				map[string]interface{}{"name": "Heat"},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewInlineFromConfig failed: %v", err)
	}

	records, err := m.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	assertNames(t, records, "Alien", "Heat")

	// The returned slice is a copy.
	records[0] = grid.Record{"name": "changed"}
	again, _ := m.Fetch(context.Background())
	assertNames(t, again, "Alien", "Heat")
}

func TestInline_Fetch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewInline(nil).Fetch(ctx); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestNewInlineFromConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]interface{}
	}{
		{"missing records", map[string]interface{}{}},
		{"records not a list", map[string]interface{}{"records": "x"}},
		{"record not an object", map[string]interface{}{"records": []interface{}{"x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewInlineFromConfig(&grid.ModuleConfig{Type: "inline", Config: tt.config}); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
