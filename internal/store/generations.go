package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// GenerationRecord is the input to RecordGeneration.
type GenerationRecord struct {
	PromptID   int64
	ImagePath  string
	Params     GenerationParams
	TokenUsage int
	Cost       float64
}

// RecordGeneration inserts a generation row and folds its tokens and cost
// into today's usage aggregate in the same transaction.
func (s *Store) RecordGeneration(rec GenerationRecord) (*Generation, error) {
	table := s.aggregateTableName()
	today := time.Now().Format("2006-01-02")

	var out Generation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		out = Generation{
			PromptID:     rec.PromptID,
			ImagePath:    rec.ImagePath,
			TokenUsage:   rec.TokenUsage,
			Cost:         rec.Cost,
			CreationDate: time.Now(),
		}
		out.SetParams(rec.Params)
		if err := tx.Create(&out).Error; err != nil {
			return fmt.Errorf("insert generation: %w", err)
		}
		return incrementDailyUsage(tx, table, today, rec.TokenUsage, rec.Cost)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("generation recorded",
		"id", out.ID, "prompt_id", out.PromptID, "cost", out.Cost)
	return &out, nil
}

// incrementDailyUsage adds one generation's tokens and cost to the row for
// date, inserting the row if the date has no aggregate yet.
func incrementDailyUsage(tx *gorm.DB, table, date string, tokens int, cost float64) error {
	res := tx.Table(table).Where("date = ?", date).Updates(map[string]any{
		"total_tokens":      gorm.Expr("total_tokens + ?", tokens),
		"total_cost":        gorm.Expr("total_cost + ?", cost),
		"generations_count": gorm.Expr("generations_count + 1"),
	})
	if res.Error != nil {
		return fmt.Errorf("update %s for %s: %w", table, date, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	err := tx.Table(table).Create(map[string]any{
		"date":              date,
		"total_tokens":      tokens,
		"total_cost":        cost,
		"generations_count": 1,
	}).Error
	if err != nil {
		return fmt.Errorf("insert %s for %s: %w", table, date, err)
	}
	return nil
}

// GetGeneration fetches a generation by id. A missing id yields
// ErrNotFound.
func (s *Store) GetGeneration(id int64) (*Generation, error) {
	var g Generation
	err := s.db.First(&g, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("generation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get generation %d: %w", id, err)
	}
	return &g, nil
}

// ListGenerations returns generation rows newest first. A zero promptID
// lists across all prompts; a zero limit applies no cap.
func (s *Store) ListGenerations(promptID int64, limit int) ([]Generation, error) {
	q := s.db.Order("creation_date DESC")
	if promptID > 0 {
		q = q.Where("prompt_id = ?", promptID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var gens []Generation
	if err := q.Find(&gens).Error; err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return gens, nil
}

// RateGeneration sets a 1-5 rating on a generation and recomputes the
// owning prompt's average rating over its rated generations.
func (s *Store) RateGeneration(id int64, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating %d out of range 1-5", rating)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var gen Generation
		err := tx.First(&gen, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("generation %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get generation %d: %w", id, err)
		}

		if err := tx.Model(&gen).Update("user_rating", rating).Error; err != nil {
			return fmt.Errorf("rate generation %d: %w", id, err)
		}

		var avg float64
		err = tx.Model(&Generation{}).
			Where("prompt_id = ? AND user_rating > 0", gen.PromptID).
			Select("COALESCE(AVG(user_rating), 0)").
			Scan(&avg).Error
		if err != nil {
			return fmt.Errorf("average rating for prompt %d: %w", gen.PromptID, err)
		}

		err = tx.Model(&Prompt{}).Where("id = ?", gen.PromptID).
			Update("average_rating", avg).Error
		if err != nil {
			return fmt.Errorf("update prompt %d rating: %w", gen.PromptID, err)
		}
		return nil
	})
}
