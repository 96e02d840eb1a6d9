// Package store persists prompts, templates, variable pools, generation
// records, and daily usage aggregates in SQLite.
package store

import (
	"encoding/json"
	"time"
)

// Prompt is a row in prompt_history. A template is a prompt with
// IsTemplate set; TemplateVariables is derived from the text and refreshed
// on every save. Tags and TemplateVariables are stored as JSON arrays and
// only (de)serialized at this boundary.
type Prompt struct {
	ID                int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PromptText        string    `gorm:"column:prompt_text;uniqueIndex;not null" json:"prompt_text"`
	CreationDate      time.Time `gorm:"column:creation_date" json:"creation_date"`
	LastUsed          time.Time `gorm:"column:last_used" json:"last_used"`
	Favorite          bool      `gorm:"column:favorite" json:"favorite"`
	Tags              string    `gorm:"column:tags" json:"-"`
	UsageCount        int       `gorm:"column:usage_count" json:"usage_count"`
	AverageRating     float64   `gorm:"column:average_rating" json:"average_rating"`
	IsTemplate        bool      `gorm:"column:is_template" json:"is_template"`
	TemplateVariables string    `gorm:"column:template_variables" json:"-"`
}

// TableName sets the prompt_history table name.
func (Prompt) TableName() string { return "prompt_history" }

// TagList decodes the stored tags.
func (p *Prompt) TagList() []string { return decodeStringList(p.Tags) }

// SetTagList encodes tags for storage.
func (p *Prompt) SetTagList(tags []string) { p.Tags = encodeStringList(tags) }

// VariableNames decodes the stored placeholder names of a template.
func (p *Prompt) VariableNames() []string { return decodeStringList(p.TemplateVariables) }

// Variable is a row in template_variables: a named, ordered pool of
// candidate values. The value list is stored as a JSON array; duplicates
// are allowed and order is preserved.
type Variable struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;uniqueIndex;not null" json:"name"`
	ValueList    string    `gorm:"column:value_list" json:"-"`
	CreationDate time.Time `gorm:"column:creation_date" json:"creation_date"`
	LastUsed     time.Time `gorm:"column:last_used" json:"last_used"`
	UsageCount   int       `gorm:"column:usage_count" json:"usage_count"`
}

// TableName sets the template_variables table name.
func (Variable) TableName() string { return "template_variables" }

// Values decodes the stored value list.
func (v *Variable) Values() []string { return decodeStringList(v.ValueList) }

// SetValues encodes a value list for storage.
func (v *Variable) SetValues(values []string) { v.ValueList = encodeStringList(values) }

// GenerationParams are the request parameters recorded with a generation.
type GenerationParams struct {
	Size    string `json:"size,omitempty"`
	Model   string `json:"model,omitempty"`
	Quality string `json:"quality,omitempty"`
	Style   string `json:"style,omitempty"`
}

// Generation is a row in generation_history. Rows are append-only; only
// UserRating is ever updated after insert.
type Generation struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PromptID     int64     `gorm:"column:prompt_id;index;not null" json:"prompt_id"`
	ImagePath    string    `gorm:"column:image_path" json:"image_path"`
	Parameters   string    `gorm:"column:parameters" json:"-"`
	TokenUsage   int       `gorm:"column:token_usage" json:"token_usage"`
	Cost         float64   `gorm:"column:cost" json:"cost"`
	CreationDate time.Time `gorm:"column:creation_date" json:"creation_date"`
	UserRating   int       `gorm:"column:user_rating" json:"user_rating"`
}

// TableName sets the generation_history table name.
func (Generation) TableName() string { return "generation_history" }

// Params decodes the stored generation parameters.
func (g *Generation) Params() GenerationParams {
	var p GenerationParams
	if g.Parameters != "" {
		_ = json.Unmarshal([]byte(g.Parameters), &p)
	}
	return p
}

// SetParams encodes generation parameters for storage.
func (g *Generation) SetParams(p GenerationParams) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	g.Parameters = string(data)
}

// DailyUsage is a row in usage_statistics: the per-date rollup of token
// count, cost, and generation count. Date is a calendar date formatted
// YYYY-MM-DD, unique per row.
type DailyUsage struct {
	ID               int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Date             string  `gorm:"column:date;uniqueIndex;not null" json:"date"`
	TotalTokens      int     `gorm:"column:total_tokens" json:"total_tokens"`
	TotalCost        float64 `gorm:"column:total_cost" json:"total_cost"`
	GenerationsCount int     `gorm:"column:generations_count" json:"generations_count"`
}

// TableName sets the usage_statistics table name.
func (DailyUsage) TableName() string { return "usage_statistics" }

// SchemaVersion is a row in schema_version. One row is appended per applied
// migration; the current version is the maximum.
type SchemaVersion struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Version   int       `gorm:"column:version;not null" json:"version"`
	AppliedAt time.Time `gorm:"column:applied_at" json:"applied_at"`
}

// TableName sets the schema_version table name.
func (SchemaVersion) TableName() string { return "schema_version" }

// encodeStringList serializes a string list as a JSON array. A nil or
// empty list encodes as the empty array so stored values are never NULL.
func encodeStringList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeStringList deserializes a JSON array column. Malformed or empty
// content decodes to nil rather than failing.
func decodeStringList(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
