// Package expand turns prompt templates into sequences of concrete
// prompts by crossing stored variable pools and substituting the results
// into the template text.
package expand

import (
	"fmt"
	"math/rand"

	"github.com/jackzampolin/easel/internal/template"
)

// Options control one expansion run. Both modes produce total
// assignments, so per-item substitution never needs pool fallbacks;
// random resolution of partially assigned templates is the engine's
// Substitute with useRandom set.
type Options struct {
	// Limit caps the capped-product mode; zero means DefaultLimit.
	Limit int
	// Selections, when non-nil, expands the given per-name value subsets
	// as a full uncapped product instead of the stored pools.
	Selections map[string][]string
}

// Expansion is one expanded prompt in a sequence. Index counts from 1.
type Expansion struct {
	Index   int      `json:"index"`
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Outcome Outcome  `json:"outcome"`
	Missing []string `json:"missing,omitempty"`
}

// Expander wires the generator and the substitution engine together.
type Expander struct {
	generator *Generator
	engine    *Engine
}

// NewExpander returns an Expander over the given pools. rng seeds random
// draws; nil gets a time-seeded source.
func NewExpander(src PoolSource, rng *rand.Rand) *Expander {
	return &Expander{
		generator: NewGenerator(src),
		engine:    NewEngine(src, rng),
	}
}

// Expand validates text and prepares its expansion sequence. Assignments
// are computed up front; substitution happens step by step as the sequence
// is consumed.
func (e *Expander) Expand(text string, opts Options) (*Sequence, error) {
	if ok, reason := template.Validate(text); !ok {
		return nil, fmt.Errorf("invalid template: %s", reason)
	}

	names := template.ExtractVariables(text)

	var assignments []Assignment
	if opts.Selections != nil {
		assignments = e.generator.GenerateSelected(names, opts.Selections)
	} else {
		var err error
		assignments, err = e.generator.GenerateAll(names, opts.Limit)
		if err != nil {
			return nil, err
		}
	}

	return &Sequence{
		engine:      e.engine,
		text:        text,
		assignments: assignments,
	}, nil
}

// ExpandRandom validates text and prepares a sequence of count items,
// each resolving every placeholder with an independent random draw from
// its stored pool. Count values below 1 yield a single item.
func (e *Expander) ExpandRandom(text string, count int) (*Sequence, error) {
	if ok, reason := template.Validate(text); !ok {
		return nil, fmt.Errorf("invalid template: %s", reason)
	}
	if count < 1 {
		count = 1
	}

	return &Sequence{
		engine:      e.engine,
		text:        text,
		assignments: make([]Assignment, count),
		useRandom:   true,
	}, nil
}

// Engine exposes the substitution engine for single-prompt resolution
// outside a generated sequence.
func (e *Expander) Engine() *Engine { return e.engine }

// Sequence iterates a run's expansions in order, in the scanner style:
// Next advances and reports whether an item is available, Item returns it.
// Abandoning a sequence early holds no resources.
type Sequence struct {
	engine      *Engine
	text        string
	assignments []Assignment
	useRandom   bool
	pos         int
	current     Expansion
}

// Total reports how many expansions the sequence yields.
func (s *Sequence) Total() int { return len(s.assignments) }

// Next computes the next expansion, reporting false once the sequence is
// exhausted.
func (s *Sequence) Next() bool {
	if s.pos >= len(s.assignments) {
		return false
	}
	res := s.engine.Substitute(s.text, s.assignments[s.pos], s.useRandom)
	s.pos++
	s.current = Expansion{
		Index:   s.pos,
		Total:   len(s.assignments),
		Text:    res.Text,
		Outcome: res.Outcome,
		Missing: res.Missing,
	}
	return true
}

// Item returns the expansion produced by the last true Next.
func (s *Sequence) Item() Expansion { return s.current }

// Collect drains the rest of the sequence into a slice.
func (s *Sequence) Collect() []Expansion {
	out := make([]Expansion, 0, len(s.assignments)-s.pos)
	for s.Next() {
		out = append(out, s.Item())
	}
	return out
}
