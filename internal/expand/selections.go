package expand

import (
	"fmt"
	"strings"
)

// ParseSelections parses repeated name=v1,v2 selector arguments into the
// per-name value subsets GenerateSelected expands. A bare "name=" selects
// the single empty value for that name.
func ParseSelections(args []string) (map[string][]string, error) {
	if len(args) == 0 {
		return nil, nil
	}

	out := make(map[string][]string, len(args))
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid selection %q, want name=value[,value...]", arg)
		}
		out[parts[0]] = strings.Split(parts[1], ",")
	}
	return out, nil
}
