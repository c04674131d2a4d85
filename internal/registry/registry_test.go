package registry

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/canectors/gridfilter/internal/modules/input"
	"github.com/canectors/gridfilter/internal/modules/output"
	"github.com/canectors/gridfilter/pkg/grid"
)

type fakeOutput struct{}

func (fakeOutput) Send(_ context.Context, records []grid.Record) (int, error) {
	return len(records), nil
}
func (fakeOutput) Close() error { return nil }

func TestRegisterInput(t *testing.T) {
	ClearRegistries()
	defer RegisterBuiltins()

	called := false
	RegisterInput("testInput", func(cfg *grid.ModuleConfig) (input.Module, error) {
		called = true
		return input.NewInline(nil), nil
	})

	got := GetInputConstructor("testInput")
	if got == nil {
		t.Fatal("expected constructor, got nil")
	}
	_, _ = got(nil)
	if !called {
		t.Error("constructor was not called")
	}
}

func TestRegisterOutput(t *testing.T) {
	ClearRegistries()
	defer RegisterBuiltins()

	called := false
	RegisterOutput("testOutput", func(cfg *grid.ModuleConfig, _ io.Writer) (output.Module, error) {
		called = true
		return fakeOutput{}, nil
	})

	got := GetOutputConstructor("testOutput")
	if got == nil {
		t.Fatal("expected constructor, got nil")
	}
	_, _ = got(nil, nil)
	if !called {
		t.Error("constructor was not called")
	}
}

func TestGetConstructor_Unregistered(t *testing.T) {
	if GetInputConstructor("kafka") != nil {
		t.Error("expected nil for unregistered input type")
	}
	if GetOutputConstructor("csv") != nil {
		t.Error("expected nil for unregistered output type")
	}
}

func TestRegister_Overwrite(t *testing.T) {
	ClearRegistries()
	defer RegisterBuiltins()

	RegisterOutput("dup", func(*grid.ModuleConfig, io.Writer) (output.Module, error) { return nil, nil })
	RegisterOutput("dup", func(*grid.ModuleConfig, io.Writer) (output.Module, error) { return fakeOutput{}, nil })

	m, _ := GetOutputConstructor("dup")(nil, nil)
	if _, ok := m.(fakeOutput); !ok {
		t.Errorf("expected the second constructor to win, got %T", m)
	}
}

func TestBuiltins(t *testing.T) {
	ClearRegistries()
	RegisterBuiltins()

	if got := ListInputTypes(); !reflect.DeepEqual(got, []string{"file", "inline"}) {
		t.Errorf("ListInputTypes() = %v", got)
	}
	if got := ListOutputTypes(); !reflect.DeepEqual(got, []string{"json", "table", "xlsx", "yaml"}) {
		t.Errorf("ListOutputTypes() = %v", got)
	}
}

func TestClearRegistries(t *testing.T) {
	ClearRegistries()
	defer RegisterBuiltins()

	if len(ListInputTypes()) != 0 || len(ListOutputTypes()) != 0 {
		t.Error("expected empty registries after ClearRegistries")
	}
}
