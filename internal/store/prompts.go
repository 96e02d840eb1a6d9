package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jackzampolin/easel/internal/template"
)

// PromptFilter narrows ListPrompts.
type PromptFilter struct {
	// FavoritesOnly keeps only favorited prompts.
	FavoritesOnly bool
	// TemplatesOnly keeps only prompts saved as templates.
	TemplatesOnly bool
	// Search keeps prompts whose text contains the given substring.
	Search string
	// Limit caps the number of rows returned; zero means no cap.
	Limit int
}

// AddPrompt records a use of text. An existing row with the same text has
// its usage count incremented and last-used time refreshed; otherwise a new
// row is inserted with a usage count of one. The returned prompt reflects
// the stored row either way.
func (s *Store) AddPrompt(text string) (*Prompt, error) {
	var out Prompt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return upsertPrompt(tx, text, false, &out)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("prompt recorded", "id", out.ID, "usage_count", out.UsageCount)
	return &out, nil
}

// SaveTemplate records text like AddPrompt and additionally marks the row
// as a template, re-deriving its placeholder list from the text. Saving a
// prompt that already exists promotes it to a template in place.
func (s *Store) SaveTemplate(text string) (*Prompt, error) {
	var out Prompt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return upsertPrompt(tx, text, true, &out)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("template saved", "id", out.ID, "variables", out.VariableNames())
	return &out, nil
}

// upsertPrompt looks text up by its unique column and either bumps the
// existing row or inserts a fresh one, leaving the final row in out.
func upsertPrompt(tx *gorm.DB, text string, markTemplate bool, out *Prompt) error {
	now := time.Now()

	err := tx.Where("prompt_text = ?", text).First(out).Error
	switch {
	case err == nil:
		updates := map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"last_used":   now,
		}
		if markTemplate {
			updates["is_template"] = true
			updates["template_variables"] = encodeStringList(template.ExtractVariables(text))
		}
		if err := tx.Model(out).Updates(updates).Error; err != nil {
			return fmt.Errorf("update prompt %d: %w", out.ID, err)
		}
		return tx.First(out, out.ID).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		*out = Prompt{
			PromptText:        text,
			CreationDate:      now,
			LastUsed:          now,
			UsageCount:        1,
			Tags:              encodeStringList(nil),
			TemplateVariables: encodeStringList(nil),
		}
		if markTemplate {
			out.IsTemplate = true
			out.TemplateVariables = encodeStringList(template.ExtractVariables(text))
		}
		if err := tx.Create(out).Error; err != nil {
			return fmt.Errorf("insert prompt: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("look up prompt: %w", err)
	}
}

// GetPrompt fetches a prompt by id. A missing id yields ErrNotFound.
func (s *Store) GetPrompt(id int64) (*Prompt, error) {
	var p Prompt
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("prompt %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt %d: %w", id, err)
	}
	return &p, nil
}

// GetPromptByText fetches a prompt by its exact text. A missing prompt
// yields ErrNotFound.
func (s *Store) GetPromptByText(text string) (*Prompt, error) {
	var p Prompt
	err := s.db.Where("prompt_text = ?", text).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("prompt: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get prompt by text: %w", err)
	}
	return &p, nil
}

// ListPrompts returns prompts matching the filter, most recently used
// first.
func (s *Store) ListPrompts(filter PromptFilter) ([]Prompt, error) {
	q := s.db.Order("last_used DESC")
	if filter.FavoritesOnly {
		q = q.Where("favorite = ?", true)
	}
	if filter.TemplatesOnly {
		q = q.Where("is_template = ?", true)
	}
	if filter.Search != "" {
		q = q.Where("prompt_text LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var prompts []Prompt
	if err := q.Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	return prompts, nil
}

// SetFavorite flips the favorite flag on a prompt.
func (s *Store) SetFavorite(id int64, favorite bool) error {
	res := s.db.Model(&Prompt{}).Where("id = ?", id).Update("favorite", favorite)
	if res.Error != nil {
		return fmt.Errorf("set favorite on prompt %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("prompt %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetTags replaces the tag list on a prompt.
func (s *Store) SetTags(id int64, tags []string) error {
	res := s.db.Model(&Prompt{}).Where("id = ?", id).Update("tags", encodeStringList(tags))
	if res.Error != nil {
		return fmt.Errorf("set tags on prompt %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("prompt %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeletePrompt removes a prompt and its generation records in one
// transaction. Deleting an unknown id yields ErrNotFound.
func (s *Store) DeletePrompt(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("prompt_id = ?", id).Delete(&Generation{}).Error; err != nil {
			return fmt.Errorf("delete generations for prompt %d: %w", id, err)
		}
		res := tx.Delete(&Prompt{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete prompt %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("prompt %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
