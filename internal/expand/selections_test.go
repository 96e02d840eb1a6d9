package expand

import (
	"reflect"
	"testing"
)

func TestParseSelections(t *testing.T) {
	got, err := ParseSelections([]string{"animal=cat,dog", "place=forest"})
	if err != nil {
		t.Fatalf("ParseSelections() error = %v", err)
	}
	want := map[string][]string{
		"animal": {"cat", "dog"},
		"place":  {"forest"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseSelections_Empty(t *testing.T) {
	got, err := ParseSelections(nil)
	if err != nil {
		t.Fatalf("ParseSelections() error = %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestParseSelections_BareValue(t *testing.T) {
	got, err := ParseSelections([]string{"mood="})
	if err != nil {
		t.Fatalf("ParseSelections() error = %v", err)
	}
	if !reflect.DeepEqual(got["mood"], []string{""}) {
		t.Errorf(`got %v, want [""]`, got["mood"])
	}
}

func TestParseSelections_Invalid(t *testing.T) {
	for _, arg := range []string{"animal", "=cat"} {
		if _, err := ParseSelections([]string{arg}); err == nil {
			t.Errorf("ParseSelections(%q) should fail", arg)
		}
	}
}
