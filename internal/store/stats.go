package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// UsageSummary is the rollup of daily aggregates over a window.
type UsageSummary struct {
	Days             int     `json:"days"`
	TotalTokens      int     `json:"total_tokens"`
	TotalCost        float64 `json:"total_cost"`
	TotalGenerations int     `json:"total_generations"`
	ActiveDays       int     `json:"active_days"`
}

// Totals counts the stored rows per kind.
type Totals struct {
	Prompts     int64 `json:"prompts"`
	Templates   int64 `json:"templates"`
	Favorites   int64 `json:"favorites"`
	Variables   int64 `json:"variables"`
	Generations int64 `json:"generations"`
}

// UsageHistory returns the daily aggregates for the last days calendar
// days, newest first. A non-positive days returns all recorded days.
func (s *Store) UsageHistory(days int) ([]DailyUsage, error) {
	q := s.db.Table(s.aggregateTableName()).Order("date DESC")
	if days > 0 {
		q = q.Where("date >= ?", windowStart(days))
	}

	var rows []DailyUsage
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("usage history: %w", err)
	}
	return rows, nil
}

// UsageOn returns the aggregate row for one date (YYYY-MM-DD). A date with
// no recorded usage yields ErrNotFound.
func (s *Store) UsageOn(date string) (*DailyUsage, error) {
	var row DailyUsage
	err := s.db.Table(s.aggregateTableName()).Where("date = ?", date).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("usage for %s: %w", date, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("usage for %s: %w", date, err)
	}
	return &row, nil
}

// Summarize rolls the last days of aggregates into a single summary. A
// non-positive days summarizes everything on record.
func (s *Store) Summarize(days int) (*UsageSummary, error) {
	q := s.db.Table(s.aggregateTableName())
	if days > 0 {
		q = q.Where("date >= ?", windowStart(days))
	}

	var row struct {
		TotalTokens      int
		TotalCost        float64
		TotalGenerations int
		ActiveDays       int
	}
	err := q.Select(
		"COALESCE(SUM(total_tokens), 0) AS total_tokens, " +
			"COALESCE(SUM(total_cost), 0) AS total_cost, " +
			"COALESCE(SUM(generations_count), 0) AS total_generations, " +
			"COUNT(*) AS active_days").
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("summarize usage: %w", err)
	}

	return &UsageSummary{
		Days:             days,
		TotalTokens:      row.TotalTokens,
		TotalCost:        row.TotalCost,
		TotalGenerations: row.TotalGenerations,
		ActiveDays:       row.ActiveDays,
	}, nil
}

// Counts tallies stored prompts, templates, favorites, variables, and
// generations.
func (s *Store) Counts() (*Totals, error) {
	var t Totals

	if err := s.db.Model(&Prompt{}).Count(&t.Prompts).Error; err != nil {
		return nil, fmt.Errorf("count prompts: %w", err)
	}
	err := s.db.Model(&Prompt{}).Where("is_template = ?", true).Count(&t.Templates).Error
	if err != nil {
		return nil, fmt.Errorf("count templates: %w", err)
	}
	err = s.db.Model(&Prompt{}).Where("favorite = ?", true).Count(&t.Favorites).Error
	if err != nil {
		return nil, fmt.Errorf("count favorites: %w", err)
	}
	if err := s.db.Model(&Variable{}).Count(&t.Variables).Error; err != nil {
		return nil, fmt.Errorf("count variables: %w", err)
	}
	if err := s.db.Model(&Generation{}).Count(&t.Generations).Error; err != nil {
		return nil, fmt.Errorf("count generations: %w", err)
	}
	return &t, nil
}

// windowStart formats the first date inside a days-long window ending
// today.
func windowStart(days int) string {
	return time.Now().AddDate(0, 0, -(days - 1)).Format("2006-01-02")
}
