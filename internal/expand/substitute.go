package expand

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/jackzampolin/easel/internal/store"
	"github.com/jackzampolin/easel/internal/template"
)

// Outcome classifies how completely a substitution resolved a template.
type Outcome string

const (
	// OutcomeResolved means every placeholder received a real value.
	OutcomeResolved Outcome = "resolved"
	// OutcomePartiallyResolved means at least one placeholder fell back to
	// its bracketed name.
	OutcomePartiallyResolved Outcome = "partially_resolved"
	// OutcomeUnchanged means the text was returned as given because pool
	// lookups failed.
	OutcomeUnchanged Outcome = "unchanged"
)

// Result is the outcome of substituting one assignment into a template.
type Result struct {
	Text    string   `json:"text"`
	Outcome Outcome  `json:"outcome"`
	Missing []string `json:"missing,omitempty"`
}

// Engine fills template placeholders from an assignment, falling back to
// stored pools or bracketed names. It never returns an error; failures
// degrade to the original text.
type Engine struct {
	pools PoolSource
	rng   *rand.Rand
}

// NewEngine returns an Engine drawing random values with rng, which may be
// seeded for reproducible runs. A nil rng gets a time-seeded one.
func NewEngine(src PoolSource, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{pools: src, rng: rng}
}

// Substitute resolves every placeholder in text. An assignment value wins
// even when empty. Unassigned names draw uniformly from their stored pool
// when useRandom is set; otherwise, and when no usable pool exists, the
// bracketed name is substituted and recorded in Missing. Replacement is
// literal token replacement, keeping any whitespace inside the braces
// significant.
func (e *Engine) Substitute(text string, assignment Assignment, useRandom bool) Result {
	names := template.ExtractVariables(text)
	if len(names) == 0 {
		return Result{Text: text, Outcome: OutcomeResolved}
	}

	out := text
	var missing []string
	for _, name := range names {
		value, ok := assignment[name]
		if !ok && useRandom {
			values, err := e.pools.VariableValues(name)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return Result{Text: text, Outcome: OutcomeUnchanged}
			}
			if len(values) > 0 {
				value = values[e.rng.Intn(len(values))]
				ok = true
				_ = e.pools.TouchVariable(name)
			}
		}
		if !ok {
			value = fallbackValue(name)
			missing = append(missing, name)
		}
		out = strings.ReplaceAll(out, template.Placeholder(name), value)
	}

	outcome := OutcomeResolved
	if len(missing) > 0 {
		outcome = OutcomePartiallyResolved
	}
	return Result{Text: out, Outcome: outcome, Missing: missing}
}

// fallbackValue is what an unresolvable placeholder becomes in the output.
func fallbackValue(name string) string {
	return "[" + name + "]"
}
