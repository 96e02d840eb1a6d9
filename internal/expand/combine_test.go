package expand

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/jackzampolin/easel/internal/store"
)

type fakePools struct {
	pools   map[string][]string
	err     error
	touched []string
}

func (f *fakePools) VariableValues(name string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	values, ok := f.pools[name]
	if !ok {
		return nil, fmt.Errorf("variable %q: %w", name, store.ErrNotFound)
	}
	return values, nil
}

func (f *fakePools) TouchVariable(name string) error {
	f.touched = append(f.touched, name)
	return nil
}

func TestGenerateAll(t *testing.T) {
	g := NewGenerator(&fakePools{pools: map[string][]string{
		"animal": {"cat", "dog"},
		"place":  {"forest", "beach"},
	}})

	got, err := g.GenerateAll([]string{"animal", "place"}, 10)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}

	want := []Assignment{
		{"animal": "cat", "place": "forest"},
		{"animal": "cat", "place": "beach"},
		{"animal": "dog", "place": "forest"},
		{"animal": "dog", "place": "beach"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateAll() = %v, want %v", got, want)
	}
}

func TestGenerateAll_CapAppliesPerStep(t *testing.T) {
	g := NewGenerator(&fakePools{pools: map[string][]string{
		"animal": {"a1", "a2", "a3", "a4", "a5"},
		"place":  {"p1", "p2", "p3"},
	}})

	got, err := g.GenerateAll([]string{"animal", "place"}, 10)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}

	// The cap cuts the crossed set in order, so the tail of the first pool
	// never appears.
	last := Assignment{"animal": "a4", "place": "p1"}
	if !reflect.DeepEqual(got[9], last) {
		t.Errorf("got[9] = %v, want %v", got[9], last)
	}
	for i, combo := range got {
		if combo["animal"] == "a5" {
			t.Errorf("got[%d] uses a5, which the cap should exclude", i)
		}
	}
}

func TestGenerateAll_CapsFirstName(t *testing.T) {
	values := make([]string, 15)
	for i := range values {
		values[i] = fmt.Sprintf("v%02d", i)
	}
	g := NewGenerator(&fakePools{pools: map[string][]string{"x": values}})

	got, err := g.GenerateAll([]string{"x"}, 10)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0]["x"] != "v00" || got[9]["x"] != "v09" {
		t.Errorf("capped values = %v..%v, want v00..v09 in order", got[0]["x"], got[9]["x"])
	}
}

func TestGenerateAll_DefaultLimit(t *testing.T) {
	values := make([]string, 12)
	for i := range values {
		values[i] = fmt.Sprintf("v%02d", i)
	}
	g := NewGenerator(&fakePools{pools: map[string][]string{"x": values}})

	got, err := g.GenerateAll([]string{"x"}, 0)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got) != DefaultLimit {
		t.Errorf("len = %d, want DefaultLimit %d", len(got), DefaultLimit)
	}
}

func TestGenerateAll_MissingPools(t *testing.T) {
	tests := []struct {
		name  string
		pools map[string][]string
	}{
		{"unknown name", map[string][]string{}},
		{"empty pool", map[string][]string{"animal": {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(&fakePools{pools: tt.pools})
			got, err := g.GenerateAll([]string{"animal"}, 10)
			if err != nil {
				t.Fatalf("GenerateAll() error = %v", err)
			}
			want := []Assignment{{"animal": "[animal]"}}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("GenerateAll() = %v, want %v", got, want)
			}
		})
	}
}

func TestGenerateAll_NoNames(t *testing.T) {
	g := NewGenerator(&fakePools{})

	got, err := g.GenerateAll(nil, 10)
	if err != nil {
		t.Fatalf("GenerateAll() error = %v", err)
	}
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("GenerateAll(nil) = %v, want one empty assignment", got)
	}
}

func TestGenerateAll_PoolError(t *testing.T) {
	g := NewGenerator(&fakePools{err: errors.New("database locked")})

	if _, err := g.GenerateAll([]string{"animal"}, 10); err == nil {
		t.Error("GenerateAll() should surface pool read failures")
	}
}

func TestGenerateSelected(t *testing.T) {
	g := NewGenerator(&fakePools{})

	got := g.GenerateSelected([]string{"animal", "place"}, map[string][]string{
		"animal": {"cat", "dog"},
		"place":  {"forest", "beach"},
	})

	want := []Assignment{
		{"animal": "cat", "place": "forest"},
		{"animal": "cat", "place": "beach"},
		{"animal": "dog", "place": "forest"},
		{"animal": "dog", "place": "beach"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateSelected() = %v, want %v", got, want)
	}
}

func TestGenerateSelected_Uncapped(t *testing.T) {
	g := NewGenerator(&fakePools{})

	got := g.GenerateSelected([]string{"a", "b"}, map[string][]string{
		"a": {"1", "2", "3", "4"},
		"b": {"x", "y", "z"},
	})
	if len(got) != 12 {
		t.Errorf("len = %d, want the exact product 12", len(got))
	}
}

func TestGenerateSelected_EmptySubset(t *testing.T) {
	g := NewGenerator(&fakePools{})

	got := g.GenerateSelected([]string{"animal", "place"}, map[string][]string{
		"animal": {"cat"},
	})

	want := []Assignment{{"animal": "cat", "place": ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GenerateSelected() = %v, want %v", got, want)
	}
}

func TestGenerateSelected_NoNames(t *testing.T) {
	g := NewGenerator(&fakePools{})

	got := g.GenerateSelected(nil, nil)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Errorf("GenerateSelected(nil) = %v, want one empty assignment", got)
	}
}
