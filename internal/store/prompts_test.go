package store

import (
	"errors"
	"reflect"
	"testing"
)

func TestAddPrompt(t *testing.T) {
	s := newTestStore(t)

	first, err := s.AddPrompt("a lighthouse at dusk")
	if err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	if first.UsageCount != 1 {
		t.Errorf("UsageCount = %d, want 1", first.UsageCount)
	}
	if first.IsTemplate {
		t.Error("plain prompt should not be a template")
	}
	if first.CreationDate.IsZero() || first.LastUsed.IsZero() {
		t.Error("timestamps should be set on insert")
	}

	second, err := s.AddPrompt("a lighthouse at dusk")
	if err != nil {
		t.Fatalf("AddPrompt() repeat error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat ID = %d, want %d", second.ID, first.ID)
	}
	if second.UsageCount != 2 {
		t.Errorf("repeat UsageCount = %d, want 2", second.UsageCount)
	}
	if second.LastUsed.Before(first.LastUsed) {
		t.Error("repeat should refresh last_used")
	}

	var count int64
	if err := s.db.Model(&Prompt{}).Count(&count).Error; err != nil {
		t.Fatalf("count prompts: %v", err)
	}
	if count != 1 {
		t.Errorf("prompt rows = %d, want 1", count)
	}
}

func TestSaveTemplate(t *testing.T) {
	s := newTestStore(t)

	tpl, err := s.SaveTemplate("a {{animal}} in {{place}}, {{animal}} closeup")
	if err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}
	if !tpl.IsTemplate {
		t.Error("saved template should have is_template set")
	}
	want := []string{"animal", "place"}
	if got := tpl.VariableNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("VariableNames() = %v, want %v", got, want)
	}
}

func TestSaveTemplate_PromotesExistingPrompt(t *testing.T) {
	s := newTestStore(t)

	text := "a {{animal}} portrait"
	added, err := s.AddPrompt(text)
	if err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	if added.IsTemplate {
		t.Fatal("prompt should start untemplated")
	}

	tpl, err := s.SaveTemplate(text)
	if err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}
	if tpl.ID != added.ID {
		t.Errorf("template ID = %d, want %d", tpl.ID, added.ID)
	}
	if !tpl.IsTemplate {
		t.Error("existing prompt should be promoted to template")
	}
	if tpl.UsageCount != 2 {
		t.Errorf("UsageCount = %d, want 2", tpl.UsageCount)
	}
	if got := tpl.VariableNames(); !reflect.DeepEqual(got, []string{"animal"}) {
		t.Errorf("VariableNames() = %v, want [animal]", got)
	}
}

func TestGetPrompt_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetPrompt(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPrompt(42) error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetPromptByText("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPromptByText() error = %v, want ErrNotFound", err)
	}
}

func TestListPrompts(t *testing.T) {
	s := newTestStore(t)

	older, err := s.AddPrompt("city street at night")
	if err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	tpl, err := s.SaveTemplate("a {{animal}} in the rain")
	if err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}
	if err := s.SetFavorite(tpl.ID, true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}
	// Re-add the first prompt so it becomes most recently used.
	if _, err := s.AddPrompt("city street at night"); err != nil {
		t.Fatalf("AddPrompt() repeat error = %v", err)
	}

	t.Run("order", func(t *testing.T) {
		prompts, err := s.ListPrompts(PromptFilter{})
		if err != nil {
			t.Fatalf("ListPrompts() error = %v", err)
		}
		if len(prompts) != 2 {
			t.Fatalf("got %d prompts, want 2", len(prompts))
		}
		if prompts[0].ID != older.ID {
			t.Errorf("first listed ID = %d, want most recently used %d", prompts[0].ID, older.ID)
		}
	})

	t.Run("favorites only", func(t *testing.T) {
		prompts, err := s.ListPrompts(PromptFilter{FavoritesOnly: true})
		if err != nil {
			t.Fatalf("ListPrompts() error = %v", err)
		}
		if len(prompts) != 1 || prompts[0].ID != tpl.ID {
			t.Errorf("favorites = %v, want only prompt %d", promptIDs(prompts), tpl.ID)
		}
	})

	t.Run("templates only", func(t *testing.T) {
		prompts, err := s.ListPrompts(PromptFilter{TemplatesOnly: true})
		if err != nil {
			t.Fatalf("ListPrompts() error = %v", err)
		}
		if len(prompts) != 1 || !prompts[0].IsTemplate {
			t.Errorf("templates = %v, want only the template row", promptIDs(prompts))
		}
	})

	t.Run("search", func(t *testing.T) {
		prompts, err := s.ListPrompts(PromptFilter{Search: "rain"})
		if err != nil {
			t.Fatalf("ListPrompts() error = %v", err)
		}
		if len(prompts) != 1 || prompts[0].ID != tpl.ID {
			t.Errorf("search hits = %v, want only prompt %d", promptIDs(prompts), tpl.ID)
		}
	})

	t.Run("limit", func(t *testing.T) {
		prompts, err := s.ListPrompts(PromptFilter{Limit: 1})
		if err != nil {
			t.Fatalf("ListPrompts() error = %v", err)
		}
		if len(prompts) != 1 {
			t.Errorf("got %d prompts, want 1", len(prompts))
		}
	})
}

func promptIDs(prompts []Prompt) []int64 {
	ids := make([]int64, len(prompts))
	for i, p := range prompts {
		ids[i] = p.ID
	}
	return ids
}

func TestSetFavorite_NotFound(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetFavorite(99, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetFavorite(99) error = %v, want ErrNotFound", err)
	}
}

func TestSetTags(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddPrompt("tagged prompt")
	if err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	if err := s.SetTags(p.ID, []string{"landscape", "night"}); err != nil {
		t.Fatalf("SetTags() error = %v", err)
	}

	got, err := s.GetPrompt(p.ID)
	if err != nil {
		t.Fatalf("GetPrompt() error = %v", err)
	}
	if want := []string{"landscape", "night"}; !reflect.DeepEqual(got.TagList(), want) {
		t.Errorf("TagList() = %v, want %v", got.TagList(), want)
	}

	if err := s.SetTags(99, []string{"x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTags(99) error = %v, want ErrNotFound", err)
	}
}

func TestDeletePrompt(t *testing.T) {
	s := newTestStore(t)

	p, err := s.AddPrompt("doomed prompt")
	if err != nil {
		t.Fatalf("AddPrompt() error = %v", err)
	}
	if _, err := s.RecordGeneration(GenerationRecord{PromptID: p.ID, ImagePath: "x.png"}); err != nil {
		t.Fatalf("RecordGeneration() error = %v", err)
	}

	if err := s.DeletePrompt(p.ID); err != nil {
		t.Fatalf("DeletePrompt() error = %v", err)
	}
	if _, err := s.GetPrompt(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPrompt() after delete error = %v, want ErrNotFound", err)
	}

	gens, err := s.ListGenerations(p.ID, 0)
	if err != nil {
		t.Fatalf("ListGenerations() error = %v", err)
	}
	if len(gens) != 0 {
		t.Errorf("got %d generations after prompt delete, want 0", len(gens))
	}

	if err := s.DeletePrompt(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePrompt() error = %v, want ErrNotFound", err)
	}
}
