package expand

import (
	"errors"
	"fmt"

	"github.com/jackzampolin/easel/internal/store"
)

// DefaultLimit caps GenerateAll output when the caller does not set a
// limit.
const DefaultLimit = 10

// Assignment maps placeholder names to the values chosen for one
// expansion.
type Assignment map[string]string

// PoolSource supplies stored values for named pools. *store.Store
// satisfies it.
type PoolSource interface {
	VariableValues(name string) ([]string, error)
	TouchVariable(name string) error
}

// Generator builds value assignments for a template's placeholder names.
type Generator struct {
	pools PoolSource
}

// NewGenerator returns a Generator drawing pools from src.
func NewGenerator(src PoolSource) *Generator {
	return &Generator{pools: src}
}

// GenerateAll crosses the stored pools of the given names, capping the
// working set at limit after every step. The cap keeps huge pools from
// exploding the product, at the cost of undersampling later names once the
// running total hits the limit; callers relying on full coverage should
// use GenerateSelected. A name without a usable pool contributes its
// bracketed placeholder value. No names yields one empty assignment.
func (g *Generator) GenerateAll(names []string, limit int) ([]Assignment, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	combos := []Assignment{{}}
	for _, name := range names {
		values, err := g.poolValues(name)
		if err != nil {
			return nil, err
		}

		next := make([]Assignment, 0, len(combos)*len(values))
		for _, combo := range combos {
			for _, value := range values {
				grown := combo.clone()
				grown[name] = value
				next = append(next, grown)
			}
		}
		if len(next) > limit {
			next = next[:limit]
		}
		combos = next
	}
	return combos, nil
}

// GenerateSelected crosses caller-chosen value subsets into the exact full
// product, uncapped. Names are crossed in the order given, last name
// varying fastest. A name with no selected values contributes the single
// empty string.
func (g *Generator) GenerateSelected(names []string, selected map[string][]string) []Assignment {
	pools := make([][]string, len(names))
	total := 1
	for i, name := range names {
		values := selected[name]
		if len(values) == 0 {
			values = []string{""}
		}
		pools[i] = values
		total *= len(values)
	}

	combos := make([]Assignment, 0, total)
	counters := make([]int, len(names))
	for i := 0; i < total; i++ {
		combo := make(Assignment, len(names))
		for j, name := range names {
			combo[name] = pools[j][counters[j]]
		}
		combos = append(combos, combo)

		for j := len(counters) - 1; j >= 0; j-- {
			counters[j]++
			if counters[j] < len(pools[j]) {
				break
			}
			counters[j] = 0
		}
	}
	return combos
}

// poolValues fetches the stored pool for name. A missing or empty pool
// yields the bracketed placeholder as the only value.
func (g *Generator) poolValues(name string) ([]string, error) {
	values, err := g.pools.VariableValues(name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("pool for %q: %w", name, err)
	}
	if len(values) == 0 {
		return []string{fallbackValue(name)}, nil
	}
	return values, nil
}

func (a Assignment) clone() Assignment {
	out := make(Assignment, len(a)+1)
	for k, v := range a {
		out[k] = v
	}
	return out
}
